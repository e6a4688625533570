package rest

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/tournevent/mondialrelay/pkg/mondialrelay"
)

// Operation names used in error context.
const (
	opCreateExpedition          = "createExpedition"
	opCreateExpeditionWithLabel = "createExpeditionWithLabel"
)

// Config holds the API V2 account and endpoint settings.
type Config struct {
	BaseURL      string
	Login        string
	Password     string
	CustomerID   string
	OutputFormat string
	UseMock      bool
}

// Client implements mondialrelay.ExpeditionCreator over the carrier
// API V2: it validates input, builds the XML shipment document and
// normalizes responses into the library models. Relay search, batch
// labels and tracking have no API V2 equivalent and stay on the SOAP
// gateway; mondialrelay.Hybrid does the routing.
type Client struct {
	config    Config
	apiClient APIClient
	logger    *otelzap.Logger
	tracer    trace.Tracer
}

// New creates a new API V2 client.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	var apiClient APIClient

	if cfg.UseMock {
		apiClient = NewMockAPIClient()
	} else {
		apiClient = NewHTTPAPIClient(HTTPAPIClientConfig{
			BaseURL: cfg.BaseURL,
			Timeout: 30 * time.Second,
		})
	}

	return NewWithAPIClient(cfg, apiClient, logger, tracer)
}

// NewWithAPIClient creates a new client over a custom transport.
func NewWithAPIClient(cfg Config, apiClient APIClient, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = "10x15"
	}
	return &Client{
		config:    cfg,
		apiClient: apiClient,
		logger:    logger,
		tracer:    tracer,
	}
}

// LastExchange returns the raw request and response of the most recent
// call when the transport records them, empty strings otherwise.
func (c *Client) LastExchange() (request, response string) {
	if rec, ok := c.apiClient.(RawRecorder); ok {
		return rec.LastRequest(), rec.LastResponse()
	}
	return "", ""
}

func (c *Client) rawResponse() string {
	if rec, ok := c.apiClient.(RawRecorder); ok {
		return rec.LastResponse()
	}
	return ""
}

// CreateExpedition registers a shipment. The API V2 always renders a
// label; this call simply discards it.
func (c *Client) CreateExpedition(ctx context.Context, req *mondialrelay.ExpeditionRequest) (*mondialrelay.Expedition, error) {
	c.logger.Ctx(ctx).Info("Creating expedition via API V2",
		zap.String("delivery_mode", string(req.DeliveryMode)),
		zap.Int("weight_grams", req.WeightGrams),
	)

	shipment, err := c.createShipment(ctx, opCreateExpedition, req)
	if err != nil {
		return nil, err
	}

	return &mondialrelay.Expedition{
		Number:       shipment.number,
		DeliveryMode: req.DeliveryMode,
		Barcodes:     shipment.barcodes,
	}, nil
}

// CreateExpeditionWithLabel registers a shipment and returns it with
// its label link. The API V2 renders a single PDF in the configured
// output format; its link fills every format variant.
func (c *Client) CreateExpeditionWithLabel(ctx context.Context, req *mondialrelay.ExpeditionRequest) (*mondialrelay.ExpeditionWithLabel, error) {
	c.logger.Ctx(ctx).Info("Creating expedition with label via API V2",
		zap.String("delivery_mode", string(req.DeliveryMode)),
		zap.Int("weight_grams", req.WeightGrams),
	)

	shipment, err := c.createShipment(ctx, opCreateExpeditionWithLabel, req)
	if err != nil {
		return nil, err
	}

	return &mondialrelay.ExpeditionWithLabel{
		ExpeditionNumber: shipment.number,
		Label: mondialrelay.Label{
			ExpeditionNumber: shipment.number,
			URLA4:            shipment.labelURL,
			URLA5:            shipment.labelURL,
			URL10x15:         shipment.labelURL,
		},
	}, nil
}

// createdShipment is the normalized outcome of a shipment creation.
type createdShipment struct {
	number   string
	labelURL string
	barcodes []string
}

func (c *Client) createShipment(ctx context.Context, operation string, req *mondialrelay.ExpeditionRequest) (*createdShipment, error) {
	if issues := req.Validate(); len(issues) > 0 {
		return nil, mondialrelay.NewValidationError(operation, issues)
	}

	document := c.buildRequest(req)

	result, err := c.apiClient.CreateShipment(ctx, document)
	if err != nil {
		c.logger.Ctx(ctx).Error("API V2 shipment creation failed", zap.Error(err))
		if mrErr, ok := err.(*mondialrelay.Error); ok {
			return nil, mrErr
		}
		return nil, mondialrelay.NewTransportError(operation, err, nil)
	}

	if len(result.Statuses) > 0 {
		return nil, apiErrorFromStatuses(operation, result.Statuses, c.rawResponse())
	}

	shipment := extractShipment(result)
	if shipment.number == "" {
		return nil, mondialrelay.NewAPIError(operation, 99, nil, c.rawResponse())
	}
	return shipment, nil
}

// ============================================================================
// Request Building
// ============================================================================

// buildRequest maps an expedition request onto the API V2 document.
// Credentials travel in the Context element; there is no security hash
// on this generation of the API.
func (c *Client) buildRequest(req *mondialrelay.ExpeditionRequest) *ShipmentCreationRequest {
	shipment := Shipment{
		OrderNo:             req.OrderNumber,
		CustomerNo:          req.CustomerReference,
		ParcelCount:         1,
		DeliveryInstruction: req.DeliveryInstruction,
		DeliveryMode:        DeliveryMode{Mode: string(req.DeliveryMode)},
		CollectionMode:      CollectionMode{Mode: "CCC"},
		Sender:              addressNode(req.Sender),
		Recipient:           addressNode(req.Recipient),
	}

	if req.RelayNumber != "" {
		relayCountry := req.RelayCountry
		if relayCountry == "" {
			relayCountry = "FR"
		}
		shipment.DeliveryMode.Location = relayCountry + req.RelayNumber
	}

	if req.CODAmount > 0 {
		shipment.Options = append(shipment.Options, Option{Key: "CRT", Value: formatAmount(req.CODAmount)})
	}
	if req.InsuranceLevel != "" {
		shipment.Options = append(shipment.Options, Option{Key: "ASS", Value: req.InsuranceLevel})
	}
	language := req.Recipient.Language
	if language == "" {
		language = "FR"
	}
	shipment.Options = append(shipment.Options, Option{Key: "LNG", Value: language})

	content := req.ArticlesDescription
	if content == "" {
		content = "Produit e-commerce"
	}
	shipment.Parcels = []Parcel{
		{
			Content: content,
			Weight:  ParcelWeight{Value: req.WeightGrams, Unit: "gr"},
		},
	}

	return &ShipmentCreationRequest{
		Context: Context{
			Login:      c.config.Login,
			Password:   c.config.Password,
			CustomerID: c.config.CustomerID,
			Culture:    "fr-FR",
			VersionAPI: "1.0",
		},
		OutputOptions: OutputOptions{
			OutputFormat: c.config.OutputFormat,
			OutputType:   "PdfUrl",
		},
		Shipments: []Shipment{shipment},
	}
}

func addressNode(a mondialrelay.Address) AddressNode {
	country := a.Country
	if country == "" {
		country = "FR"
	}
	return AddressNode{
		Address: AddressDetails{
			Firstname:   a.Line1,
			Streetname:  a.Line3,
			CountryCode: country,
			PostCode:    a.PostalCode,
			City:        a.City,
			AddressAdd1: a.Line2,
			AddressAdd3: a.Line4,
			PhoneNo:     a.Phone,
			MobileNo:    a.Phone2,
			Email:       a.Email,
		},
	}
}

func formatAmount(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// ============================================================================
// Response Mapping
// ============================================================================

// apiErrorFromStatuses folds the rejection statuses into the library
// error type. The first status supplies the code; every message is kept
// in the error text.
func apiErrorFromStatuses(operation string, statuses []Status, rawResponse string) *mondialrelay.Error {
	code := 99
	if parsed, err := strconv.Atoi(statuses[0].Code); err == nil {
		code = parsed
	}

	messages := make([]string, 0, len(statuses))
	for _, s := range statuses {
		if s.Message != "" {
			messages = append(messages, s.Message)
		}
	}
	message := strings.Join(messages, ", ")
	if message == "" {
		message = mondialrelay.StatusMessage(code)
	}

	return &mondialrelay.Error{
		Code:      code,
		Message:   "Erreur lors de la création de l'expédition: " + message,
		Operation: operation,
		Response:  rawResponse,
	}
}

func extractShipment(result *ShipmentCreationResponse) *createdShipment {
	shipment := &createdShipment{}
	if len(result.Shipments) == 0 {
		return shipment
	}

	first := result.Shipments[0]
	if len(first.Labels) > 0 {
		shipment.number = first.Labels[0].ExpeditionNumber()
		shipment.labelURL = first.Labels[0].Output
	}
	for _, group := range first.Barcodes {
		if group.Barcode.Value != "" {
			shipment.barcodes = append(shipment.barcodes, group.Barcode.Value)
		}
	}
	return shipment
}

var _ mondialrelay.ExpeditionCreator = (*Client)(nil)
