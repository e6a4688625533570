package soap

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"text/template"
	"time"

	"github.com/tournevent/mondialrelay/pkg/mondialrelay"
)

// DefaultAPIURL is the production endpoint of the carrier web services.
const DefaultAPIURL = "https://api.mondialrelay.com/Web_Services.asmx"

const soapNamespace = "http://www.mondialrelay.fr/webservice/"

// SOAPAPIClient is the production implementation of APIClient, speaking
// SOAP 1.2 to the carrier endpoint. It retains the last raw exchange
// for diagnostics, which makes it unsafe for concurrent use; give each
// worker its own instance.
type SOAPAPIClient struct {
	apiURL       string
	httpClient   *http.Client
	lastRequest  string
	lastResponse string
}

// SOAPAPIClientConfig holds configuration for the SOAP transport.
type SOAPAPIClientConfig struct {
	APIURL  string
	Timeout time.Duration
}

// NewSOAPAPIClient creates a new SOAP transport for production use.
func NewSOAPAPIClient(cfg SOAPAPIClientConfig) *SOAPAPIClient {
	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &SOAPAPIClient{
		apiURL: apiURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// LastRequest returns the raw envelope of the most recent call.
func (c *SOAPAPIClient) LastRequest() string {
	return c.lastRequest
}

// LastResponse returns the raw body of the most recent response.
func (c *SOAPAPIClient) LastResponse() string {
	return c.lastResponse
}

// SearchRelayPoints calls WSI4_PointRelais_Recherche.
func (c *SOAPAPIClient) SearchRelayPoints(ctx context.Context, fields *mondialrelay.Fields) (*RelaySearchResult, error) {
	env, err := c.call(ctx, "WSI4_PointRelais_Recherche", fields)
	if err != nil {
		return nil, err
	}
	if env.Body.RelaySearch == nil {
		return nil, fmt.Errorf("no WSI4_PointRelais_RechercheResult in response")
	}
	return &env.Body.RelaySearch.Result, nil
}

// CreateExpedition calls WSI2_CreationExpedition.
func (c *SOAPAPIClient) CreateExpedition(ctx context.Context, fields *mondialrelay.Fields) (*ExpeditionResult, error) {
	env, err := c.call(ctx, "WSI2_CreationExpedition", fields)
	if err != nil {
		return nil, err
	}
	if env.Body.CreateExpedition == nil {
		return nil, fmt.Errorf("no WSI2_CreationExpeditionResult in response")
	}
	return &env.Body.CreateExpedition.Result, nil
}

// CreateExpeditionWithLabel calls WSI2_CreationEtiquette.
func (c *SOAPAPIClient) CreateExpeditionWithLabel(ctx context.Context, fields *mondialrelay.Fields) (*ExpeditionWithLabelResult, error) {
	env, err := c.call(ctx, "WSI2_CreationEtiquette", fields)
	if err != nil {
		return nil, err
	}
	if env.Body.CreateLabel == nil {
		return nil, fmt.Errorf("no WSI2_CreationEtiquetteResult in response")
	}
	return &env.Body.CreateLabel.Result, nil
}

// GetLabels calls WSI3_GetEtiquettes.
func (c *SOAPAPIClient) GetLabels(ctx context.Context, fields *mondialrelay.Fields) (*LabelBatchResult, error) {
	env, err := c.call(ctx, "WSI3_GetEtiquettes", fields)
	if err != nil {
		return nil, err
	}
	if env.Body.GetLabels == nil {
		return nil, fmt.Errorf("no WSI3_GetEtiquettesResult in response")
	}
	return &env.Body.GetLabels.Result, nil
}

// TrackPackage calls WSI2_TracingColisDetaille.
func (c *SOAPAPIClient) TrackPackage(ctx context.Context, fields *mondialrelay.Fields) (*TracingResult, error) {
	env, err := c.call(ctx, "WSI2_TracingColisDetaille", fields)
	if err != nil {
		return nil, err
	}
	if env.Body.Tracing == nil {
		return nil, fmt.Errorf("no WSI2_TracingColisDetailleResult in response")
	}
	return &env.Body.Tracing.Result, nil
}

// ============================================================================
// SOAP Envelope Building
// ============================================================================

const soapEnvelopeTemplate = `<?xml version="1.0" encoding="utf-8"?>
<soap12:Envelope xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xmlns:xsd="http://www.w3.org/2001/XMLSchema" xmlns:soap12="http://www.w3.org/2003/05/soap-envelope">
  <soap12:Body>
    <{{.Method}} xmlns="http://www.mondialrelay.fr/webservice/">
{{- range .Fields}}
      <{{.Key}}>{{.Value}}</{{.Key}}>
{{- end}}
    </{{.Method}}>
  </soap12:Body>
</soap12:Envelope>`

var envelopeTmpl = template.Must(template.New("envelope").Parse(soapEnvelopeTemplate))

type fieldPair struct {
	Key   string
	Value string
}

func buildEnvelope(method string, fields *mondialrelay.Fields) ([]byte, error) {
	keys := fields.Keys()
	pairs := make([]fieldPair, len(keys))
	for i, key := range keys {
		value, _ := fields.Get(key)
		pairs[i] = fieldPair{Key: key, Value: xmlEscape(value)}
	}

	data := struct {
		Method string
		Fields []fieldPair
	}{Method: method, Fields: pairs}

	var buf bytes.Buffer
	if err := envelopeTmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func xmlEscape(s string) string {
	var buf bytes.Buffer
	if err := xml.EscapeText(&buf, []byte(s)); err != nil {
		return s
	}
	return buf.String()
}

// ============================================================================
// Transport
// ============================================================================

func (c *SOAPAPIClient) call(ctx context.Context, method string, fields *mondialrelay.Fields) (*soapEnvelope, error) {
	body, err := buildEnvelope(method, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	c.lastRequest = string(body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", fmt.Sprintf(`application/soap+xml; charset=utf-8; action=%q`, soapNamespace+method))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	c.lastResponse = string(data)

	var env soapEnvelope
	if err := xml.Unmarshal(data, &env); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, method)
		}
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if env.Body.Fault != nil {
		return nil, &Fault{
			Code:   env.Body.Fault.Code.Value,
			Reason: env.Body.Fault.Reason.Text,
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, method)
	}
	return &env, nil
}

// Fault is a SOAP-level fault returned before the carrier could produce
// a STAT code.
type Fault struct {
	Code   string
	Reason string
}

// Error implements the error interface.
func (f *Fault) Error() string {
	return fmt.Sprintf("soap fault %s: %s", f.Code, f.Reason)
}

// ============================================================================
// Response Envelope Types
// ============================================================================

type soapEnvelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    soapBody `xml:"Body"`
}

type soapBody struct {
	Fault            *soapFault                `xml:"Fault,omitempty"`
	RelaySearch      *relaySearchResponse      `xml:"WSI4_PointRelais_RechercheResponse,omitempty"`
	CreateExpedition *createExpeditionResponse `xml:"WSI2_CreationExpeditionResponse,omitempty"`
	CreateLabel      *createLabelResponse      `xml:"WSI2_CreationEtiquetteResponse,omitempty"`
	GetLabels        *getLabelsResponse        `xml:"WSI3_GetEtiquettesResponse,omitempty"`
	Tracing          *tracingResponse          `xml:"WSI2_TracingColisDetailleResponse,omitempty"`
}

type soapFault struct {
	Code   soapFaultCode   `xml:"Code"`
	Reason soapFaultReason `xml:"Reason"`
}

type soapFaultCode struct {
	Value string `xml:"Value"`
}

type soapFaultReason struct {
	Text string `xml:"Text"`
}

type relaySearchResponse struct {
	Result RelaySearchResult `xml:"WSI4_PointRelais_RechercheResult"`
}

type createExpeditionResponse struct {
	Result ExpeditionResult `xml:"WSI2_CreationExpeditionResult"`
}

type createLabelResponse struct {
	Result ExpeditionWithLabelResult `xml:"WSI2_CreationEtiquetteResult"`
}

type getLabelsResponse struct {
	Result LabelBatchResult `xml:"WSI3_GetEtiquettesResult"`
}

type tracingResponse struct {
	Result TracingResult `xml:"WSI2_TracingColisDetailleResult"`
}

var _ APIClient = (*SOAPAPIClient)(nil)
var _ RawRecorder = (*SOAPAPIClient)(nil)
