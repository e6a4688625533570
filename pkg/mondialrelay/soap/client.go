package soap

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
	opSearchRelayPoints         = "searchRelayPoints"
	opCreateExpedition          = "createExpedition"
	opCreateExpeditionWithLabel = "createExpeditionWithLabel"
	opGetLabels                 = "getLabelBatch"
	opTrackPackage              = "trackPackage"
)

// Config holds the carrier account and endpoint settings.
type Config struct {
	Enseigne   string
	PrivateKey string
	APIURL     string
	UseMock    bool
}

// Client implements mondialrelay.Gateway over the carrier's SOAP web
// services: it validates input, builds and signs the ordered request
// fields, and normalizes responses into the library models.
type Client struct {
	config    Config
	apiClient APIClient
	logger    *otelzap.Logger
	tracer    trace.Tracer
}

// New creates a new SOAP gateway client.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	var apiClient APIClient

	if cfg.UseMock {
		apiClient = NewMockAPIClient()
	} else {
		apiClient = NewSOAPAPIClient(SOAPAPIClientConfig{
			APIURL:  cfg.APIURL,
			Timeout: 30 * time.Second,
		})
	}

	return NewWithAPIClient(cfg, apiClient, logger, tracer)
}

// NewWithAPIClient creates a new client over a custom transport.
func NewWithAPIClient(cfg Config, apiClient APIClient, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
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

func (c *Client) baseURL() string {
	return strings.TrimSuffix(c.config.APIURL, "/Web_Services.asmx")
}

// rawResponse pulls the last raw body for error context when available.
func (c *Client) rawResponse() string {
	if rec, ok := c.apiClient.(RawRecorder); ok {
		return rec.LastResponse()
	}
	return ""
}

// wrapTransport converts transport-level failures into the library
// error type, passing through errors that already carry a STAT code.
func wrapTransport(operation string, err error, fields *mondialrelay.Fields) error {
	if mrErr, ok := err.(*mondialrelay.Error); ok {
		return mrErr
	}
	var params map[string]string
	if fields != nil {
		params = fields.Map()
	}
	return mondialrelay.NewTransportError(operation, err, params)
}

// SearchRelayPoints finds relay points around a postal code.
func (c *Client) SearchRelayPoints(ctx context.Context, req *mondialrelay.RelaySearchRequest) ([]mondialrelay.RelayPoint, error) {
	c.logger.Ctx(ctx).Info("Searching relay points",
		zap.String("postal_code", req.PostalCode),
		zap.String("country", req.Country),
	)

	if issues := req.Validate(); len(issues) > 0 {
		return nil, mondialrelay.NewValidationError(opSearchRelayPoints, issues)
	}

	fields := relaySearchFields(c.config.Enseigne, req)
	mondialrelay.SignAndSeal(fields, c.config.PrivateKey)

	result, err := c.apiClient.SearchRelayPoints(ctx, fields)
	if err != nil {
		c.logger.Ctx(ctx).Error("Relay point search failed", zap.Error(err))
		return nil, wrapTransport(opSearchRelayPoints, err, fields)
	}

	if result.Stat != "0" {
		return nil, mondialrelay.NewAPIError(opSearchRelayPoints, parseStat(result.Stat), fields.Map(), c.rawResponse())
	}

	points := make([]mondialrelay.RelayPoint, len(result.RelayPoints))
	for i := range result.RelayPoints {
		points[i] = relayPointFromDetails(&result.RelayPoints[i])
	}
	return points, nil
}

// CreateExpedition registers a shipment without generating its label.
func (c *Client) CreateExpedition(ctx context.Context, req *mondialrelay.ExpeditionRequest) (*mondialrelay.Expedition, error) {
	c.logger.Ctx(ctx).Info("Creating expedition",
		zap.String("delivery_mode", string(req.DeliveryMode)),
		zap.Int("weight_grams", req.WeightGrams),
	)

	if issues := req.Validate(); len(issues) > 0 {
		return nil, mondialrelay.NewValidationError(opCreateExpedition, issues)
	}

	fields := expeditionFields(c.config.Enseigne, req)
	mondialrelay.SignAndSeal(fields, c.config.PrivateKey)

	result, err := c.apiClient.CreateExpedition(ctx, fields)
	if err != nil {
		c.logger.Ctx(ctx).Error("Expedition creation failed", zap.Error(err))
		return nil, wrapTransport(opCreateExpedition, err, fields)
	}

	if result.Stat != "0" {
		return nil, mondialrelay.NewAPIError(opCreateExpedition, parseStat(result.Stat), fields.Map(), c.rawResponse())
	}

	return expeditionFromResult(result), nil
}

// CreateExpeditionWithLabel registers a shipment and returns it with
// its label URLs. The free-text article description goes on the wire
// after the signature, outside the hashed fields.
func (c *Client) CreateExpeditionWithLabel(ctx context.Context, req *mondialrelay.ExpeditionRequest) (*mondialrelay.ExpeditionWithLabel, error) {
	c.logger.Ctx(ctx).Info("Creating expedition with label",
		zap.String("delivery_mode", string(req.DeliveryMode)),
		zap.Int("weight_grams", req.WeightGrams),
	)

	if issues := req.Validate(); len(issues) > 0 {
		return nil, mondialrelay.NewValidationError(opCreateExpeditionWithLabel, issues)
	}

	fields := expeditionFields(c.config.Enseigne, req)
	mondialrelay.SignAndSeal(fields, c.config.PrivateKey)

	description := req.ArticlesDescription
	if description == "" {
		description = "Produit e-commerce"
	}
	fields.Add("Texte", description)

	result, err := c.apiClient.CreateExpeditionWithLabel(ctx, fields)
	if err != nil {
		c.logger.Ctx(ctx).Error("Expedition with label creation failed", zap.Error(err))
		return nil, wrapTransport(opCreateExpeditionWithLabel, err, fields)
	}

	if result.Stat != "0" {
		return nil, mondialrelay.NewAPIError(opCreateExpeditionWithLabel, parseStat(result.Stat), fields.Map(), c.rawResponse())
	}

	return &mondialrelay.ExpeditionWithLabel{
		ExpeditionNumber: result.ExpeditionNum,
		Label:            labelFromURL(result.ExpeditionNum, c.baseURL(), result.URLEtiquette),
	}, nil
}

// GetLabels regroups the labels of several expeditions into one PDF per
// format.
func (c *Client) GetLabels(ctx context.Context, expeditionNumbers []string) (*mondialrelay.LabelBatch, error) {
	c.logger.Ctx(ctx).Info("Fetching label batch",
		zap.Int("expedition_count", len(expeditionNumbers)),
	)

	if len(expeditionNumbers) == 0 {
		return nil, mondialrelay.NewValidationError(opGetLabels, []string{"Au moins un numéro d'expédition est requis"})
	}
	var issues []string
	for _, number := range expeditionNumbers {
		issues = append(issues, mondialrelay.ValidateExpeditionNumber(number)...)
	}
	if len(issues) > 0 {
		return nil, mondialrelay.NewValidationError(opGetLabels, issues)
	}

	fields := labelBatchFields(c.config.Enseigne, expeditionNumbers)
	mondialrelay.SignAndSeal(fields, c.config.PrivateKey)

	result, err := c.apiClient.GetLabels(ctx, fields)
	if err != nil {
		c.logger.Ctx(ctx).Error("Label batch retrieval failed", zap.Error(err))
		return nil, wrapTransport(opGetLabels, err, fields)
	}

	if result.Stat != "0" {
		return nil, mondialrelay.NewAPIError(opGetLabels, parseStat(result.Stat), fields.Map(), c.rawResponse())
	}

	base := c.baseURL()
	return &mondialrelay.LabelBatch{
		ExpeditionNumbers: expeditionNumbers,
		PDFURLA4:          base + result.URLPDFA4,
		PDFURLA5:          base + result.URLPDFA5,
		PDFURL10x15:       base + result.URLPDF10x15,
	}, nil
}

// trackingStats are the STAT codes that still carry a valid tracing
// payload: success plus the delivered states.
var trackingStats = map[string]struct{}{
	"0": {}, "80": {}, "81": {}, "82": {}, "83": {},
}

// TrackPackage returns the tracing state and scan history of an
// expedition.
func (c *Client) TrackPackage(ctx context.Context, expeditionNumber string) (*mondialrelay.TrackingInfo, error) {
	c.logger.Ctx(ctx).Info("Tracking package",
		zap.String("expedition_number", expeditionNumber),
	)

	if issues := mondialrelay.ValidateExpeditionNumber(expeditionNumber); len(issues) > 0 {
		return nil, mondialrelay.NewValidationError(opTrackPackage, issues)
	}

	fields := trackingFields(c.config.Enseigne, expeditionNumber)
	mondialrelay.SignAndSeal(fields, c.config.PrivateKey)

	result, err := c.apiClient.TrackPackage(ctx, fields)
	if err != nil {
		c.logger.Ctx(ctx).Error("Package tracking failed", zap.Error(err))
		return nil, wrapTransport(opTrackPackage, err, fields)
	}

	if _, ok := trackingStats[result.Stat]; !ok {
		return nil, mondialrelay.NewAPIError(opTrackPackage, parseStat(result.Stat), fields.Map(), c.rawResponse())
	}

	return trackingFromResult(result), nil
}

// ============================================================================
// Response Mapping
// ============================================================================

func parseStat(stat string) int {
	code, err := strconv.Atoi(stat)
	if err != nil {
		return 99
	}
	return code
}

func relayPointFromDetails(d *RelayPointDetails) mondialrelay.RelayPoint {
	return mondialrelay.RelayPoint{
		Number:         d.Num,
		Name:           strings.TrimSpace(d.LgAdr1 + " " + d.LgAdr2),
		Address:        strings.TrimSpace(d.LgAdr3 + " " + d.LgAdr4),
		PostalCode:     d.CP,
		City:           d.Ville,
		Country:        d.Pays,
		Latitude:       parseCoordinate(d.Latitude),
		Longitude:      parseCoordinate(d.Longitude),
		DistanceMeters: parseCoordinate(d.Distance),
		OpeningHours: map[time.Weekday][]mondialrelay.OpeningSlot{
			time.Monday:    openingSlots(d.Lundi),
			time.Tuesday:   openingSlots(d.Mardi),
			time.Wednesday: openingSlots(d.Mercredi),
			time.Thursday:  openingSlots(d.Jeudi),
			time.Friday:    openingSlots(d.Vendredi),
			time.Saturday:  openingSlots(d.Samedi),
			time.Sunday:    openingSlots(d.Dimanche),
		},
		PhotoURL: d.URLPhoto,
		MapURL:   d.URLPlan,
	}
}

// parseCoordinate reads the carrier's comma-decimal numbers.
func parseCoordinate(s string) float64 {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	if err != nil {
		return 0
	}
	return v
}

// openingSlots pairs the raw HHMM markers into open/close windows,
// dropping "0000" closed markers.
func openingSlots(schedule DaySchedule) []mondialrelay.OpeningSlot {
	var slots []mondialrelay.OpeningSlot
	for i := 0; i+1 < len(schedule.Slots); i += 2 {
		open, close := schedule.Slots[i], schedule.Slots[i+1]
		if open == "" || open == "0000" || close == "" || close == "0000" {
			continue
		}
		slots = append(slots, mondialrelay.OpeningSlot{Open: open, Close: close})
	}
	return slots
}

func expeditionFromResult(r *ExpeditionResult) *mondialrelay.Expedition {
	return &mondialrelay.Expedition{
		Number:       r.ExpeditionNum,
		AgencyCode:   r.TRIAgenceCode,
		Group:        r.TRIGroupe,
		Shuttle:      r.TRINavette,
		Agency:       r.TRIAgence,
		TourCode:     r.TRITourneeCode,
		DeliveryMode: mondialrelay.DeliveryMode(r.TRILivraisonMode),
		Barcodes:     r.CodesBarres,
	}
}

// labelFromURL expands the carrier's relative label URL into the three
// format variants.
func labelFromURL(expeditionNumber, baseURL, relativeURL string) mondialrelay.Label {
	full := baseURL + relativeURL
	return mondialrelay.Label{
		ExpeditionNumber: expeditionNumber,
		URLA4:            full + "&format=A4",
		URLA5:            full + "&format=A5",
		URL10x15:         full + "&format=10x15",
	}
}

func trackingFromResult(r *TracingResult) *mondialrelay.TrackingInfo {
	events := make([]mondialrelay.TrackingEvent, len(r.Tracing))
	for i, e := range r.Tracing {
		events[i] = mondialrelay.TrackingEvent{
			Label:       e.Libelle,
			Date:        e.Date,
			Time:        e.Heure,
			Location:    e.Lieu,
			RelayNumber: e.Relais,
			Country:     e.Pays,
		}
	}
	return &mondialrelay.TrackingInfo{
		Status:      r.Stat,
		StatusLabel: r.Libelle01,
		RelayName:   r.RelaisLibelle,
		RelayNumber: r.RelaisNum,
		Events:      events,
	}
}

var _ mondialrelay.Gateway = (*Client)(nil)
