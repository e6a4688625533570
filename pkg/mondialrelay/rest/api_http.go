package rest

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultBaseURL is the production endpoint of the carrier API V2.
const DefaultBaseURL = "https://connect-api.mondialrelay.com/api"

// HTTPAPIClient is the production implementation of APIClient, posting
// XML documents to the carrier API V2. It retains the last raw exchange
// for diagnostics, which makes it unsafe for concurrent use; give each
// worker its own instance.
type HTTPAPIClient struct {
	baseURL      string
	httpClient   *http.Client
	lastRequest  string
	lastResponse string
}

// HTTPAPIClientConfig holds configuration for the API V2 transport.
type HTTPAPIClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// NewHTTPAPIClient creates a new API V2 transport for production use.
func NewHTTPAPIClient(cfg HTTPAPIClientConfig) *HTTPAPIClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &HTTPAPIClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// LastRequest returns the raw document of the most recent call.
func (c *HTTPAPIClient) LastRequest() string {
	return c.lastRequest
}

// LastResponse returns the raw body of the most recent call.
func (c *HTTPAPIClient) LastResponse() string {
	return c.lastResponse
}

// CreateShipment posts the shipment creation document to /shipment and
// decodes the carrier's answer.
func (c *HTTPAPIClient) CreateShipment(ctx context.Context, req *ShipmentCreationRequest) (*ShipmentCreationResponse, error) {
	body, err := xml.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal shipment request: %w", err)
	}
	document := xml.Header + string(body)
	c.lastRequest = document

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/shipment", bytes.NewBufferString(document))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "text/xml")
	httpReq.Header.Set("Accept", "application/xml")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call API V2: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read API V2 response: %w", err)
	}
	c.lastResponse = string(respBody)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API V2 returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result ShipmentCreationResponse
	if err := xml.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal API V2 response: %w", err)
	}

	return &result, nil
}

var (
	_ APIClient   = (*HTTPAPIClient)(nil)
	_ RawRecorder = (*HTTPAPIClient)(nil)
)
