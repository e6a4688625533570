package mondialrelay

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// RelaySearchRequest describes a relay point search around a postal
// code. Zero values fall back to carrier defaults: 20km radius, 10
// results, the 24R delivery mode and no weight filter.
type RelaySearchRequest struct {
	PostalCode     string
	Country        string
	WeightGrams    int
	DeliveryMode   DeliveryMode
	SearchRadiusKm int
	MaxResults     int
}

// Validate returns the constraint violations of the search request.
func (r *RelaySearchRequest) Validate() []string {
	var errs []string
	errs = append(errs, ValidatePostalCode(r.PostalCode, r.Country)...)
	errs = append(errs, ValidateCountryCode(r.Country)...)
	if r.WeightGrams != 0 {
		errs = append(errs, ValidateWeight(r.WeightGrams)...)
	}
	if r.DeliveryMode != "" {
		errs = append(errs, ValidateDeliveryMode(r.DeliveryMode)...)
	}
	return errs
}

// ExpeditionRequest describes an expedition to create. RelayNumber and
// RelayCountry are mandatory for relay delivery modes and ignored for
// home delivery.
type ExpeditionRequest struct {
	DeliveryMode        DeliveryMode
	WeightGrams         int
	OrderNumber         string
	CustomerReference   string
	Sender              Address
	Recipient           Address
	RelayNumber         string
	RelayCountry        string
	LengthCm            int
	PackageCount        int
	CODAmount           float64
	CODCurrency         string
	DeclaredValue       float64
	DeclaredCurrency    string
	InsuranceLevel      string
	DeliveryInstruction string
	ArticlesDescription string
}

// Validate returns the constraint violations of the expedition
// request, each prefixed with the side it concerns.
func (r *ExpeditionRequest) Validate() []string {
	var errs []string
	errs = append(errs, ValidateDeliveryMode(r.DeliveryMode)...)
	errs = append(errs, ValidateWeight(r.WeightGrams)...)
	errs = append(errs, prefixIssues("Expéditeur: ", ValidateAddress(r.Sender, false))...)
	errs = append(errs, prefixIssues("Destinataire: ", ValidateAddress(r.Recipient, true))...)
	if r.DeliveryMode.RequiresRelay() {
		errs = append(errs, ValidateRelayNumber(r.RelayNumber)...)
		if r.RelayCountry == "" {
			errs = append(errs, "Code pays du point relais requis")
		} else {
			errs = append(errs, ValidateCountryCode(r.RelayCountry)...)
		}
	}
	if r.CODAmount != 0 {
		errs = append(errs, ValidateCODAmount(r.CODAmount)...)
	}
	if r.InsuranceLevel != "" {
		errs = append(errs, ValidateInsurance(r.InsuranceLevel)...)
	}
	return errs
}

// Gateway is the full carrier surface: relay search, expedition
// creation with or without label, batch label retrieval and tracking.
type Gateway interface {
	// SearchRelayPoints finds relay points around a postal code.
	SearchRelayPoints(ctx context.Context, req *RelaySearchRequest) ([]RelayPoint, error)

	// CreateExpedition registers a shipment and returns its sort plan
	// routing.
	CreateExpedition(ctx context.Context, req *ExpeditionRequest) (*Expedition, error)

	// CreateExpeditionWithLabel registers a shipment and returns it with
	// its PDF label URLs.
	CreateExpeditionWithLabel(ctx context.Context, req *ExpeditionRequest) (*ExpeditionWithLabel, error)

	// GetLabels regroups the labels of several expeditions into a single
	// PDF per format.
	GetLabels(ctx context.Context, expeditionNumbers []string) (*LabelBatch, error)

	// TrackPackage returns the tracing state and scan history of an
	// expedition.
	TrackPackage(ctx context.Context, expeditionNumber string) (*TrackingInfo, error)
}

// ExpeditionCreator is the subset of Gateway the REST generation of the
// carrier API covers.
type ExpeditionCreator interface {
	CreateExpedition(ctx context.Context, req *ExpeditionRequest) (*Expedition, error)
	CreateExpeditionWithLabel(ctx context.Context, req *ExpeditionRequest) (*ExpeditionWithLabel, error)
}

// Hybrid routes expedition creation to the REST gateway when one is
// configured and preferred, and everything else to the SOAP gateway.
// It implements Gateway.
type Hybrid struct {
	soap       Gateway
	rest       ExpeditionCreator
	preferRest bool
}

// NewHybrid builds a Hybrid over a mandatory SOAP gateway and an
// optional REST creator.
func NewHybrid(soap Gateway, rest ExpeditionCreator, preferRest bool) *Hybrid {
	return &Hybrid{soap: soap, rest: rest, preferRest: preferRest}
}

// UsesRest reports whether creation calls currently go through REST.
func (h *Hybrid) UsesRest() bool {
	return h.preferRest && h.rest != nil
}

// SearchRelayPoints always goes through SOAP.
func (h *Hybrid) SearchRelayPoints(ctx context.Context, req *RelaySearchRequest) ([]RelayPoint, error) {
	return h.soap.SearchRelayPoints(ctx, req)
}

// CreateExpedition routes to REST when preferred, SOAP otherwise.
func (h *Hybrid) CreateExpedition(ctx context.Context, req *ExpeditionRequest) (*Expedition, error) {
	if h.UsesRest() {
		return h.rest.CreateExpedition(ctx, req)
	}
	return h.soap.CreateExpedition(ctx, req)
}

// CreateExpeditionWithLabel routes to REST when preferred, SOAP
// otherwise.
func (h *Hybrid) CreateExpeditionWithLabel(ctx context.Context, req *ExpeditionRequest) (*ExpeditionWithLabel, error) {
	if h.UsesRest() {
		return h.rest.CreateExpeditionWithLabel(ctx, req)
	}
	return h.soap.CreateExpeditionWithLabel(ctx, req)
}

// GetLabels always goes through SOAP.
func (h *Hybrid) GetLabels(ctx context.Context, expeditionNumbers []string) (*LabelBatch, error) {
	return h.soap.GetLabels(ctx, expeditionNumbers)
}

// TrackPackage always goes through SOAP.
func (h *Hybrid) TrackPackage(ctx context.Context, expeditionNumber string) (*TrackingInfo, error) {
	return h.soap.TrackPackage(ctx, expeditionNumber)
}

// CreateMultiParcelExpedition validates the aggregate and books it
// through the creator as one expedition with label.
func CreateMultiParcelExpedition(ctx context.Context, g ExpeditionCreator, m *MultiParcelExpedition) (*ExpeditionWithLabel, error) {
	if issues := m.Validate(); len(issues) > 0 {
		return nil, NewValidationError("createMultiParcelExpedition", issues)
	}
	return g.CreateExpeditionWithLabel(ctx, m.ToExpeditionRequest())
}

// TrackAll tracks several expeditions in parallel. Failures on
// individual expeditions don't abort the others; they come back in the
// error slice alongside the successful results.
func TrackAll(ctx context.Context, g Gateway, expeditionNumbers []string) (map[string]*TrackingInfo, []error) {
	results := make(map[string]*TrackingInfo, len(expeditionNumbers))
	errs := make([]error, 0)
	mu := &sync.Mutex{}

	eg, ctx := errgroup.WithContext(ctx)

	for _, number := range expeditionNumbers {
		number := number // capture loop variable
		eg.Go(func() error {
			info, err := g.TrackPackage(ctx, number)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", number, err))
				return nil // keep tracking the other expeditions
			}
			results[number] = info
			return nil
		})
	}

	_ = eg.Wait() // goroutines never return an error; failures land in errs
	return results, errs
}
