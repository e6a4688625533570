package mondialrelay_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tournevent/mondialrelay/pkg/mondialrelay"
)

// stubGateway counts calls and returns canned answers, with per-number
// failures for TrackPackage.
type stubGateway struct {
	searchCalls int32
	createCalls int32
	labelCalls  int32
	trackCalls  int32
	failNumbers map[string]bool
}

func (s *stubGateway) SearchRelayPoints(ctx context.Context, req *mondialrelay.RelaySearchRequest) ([]mondialrelay.RelayPoint, error) {
	atomic.AddInt32(&s.searchCalls, 1)
	return []mondialrelay.RelayPoint{{Number: "015035"}}, nil
}

func (s *stubGateway) CreateExpedition(ctx context.Context, req *mondialrelay.ExpeditionRequest) (*mondialrelay.Expedition, error) {
	atomic.AddInt32(&s.createCalls, 1)
	return &mondialrelay.Expedition{Number: "11111111"}, nil
}

func (s *stubGateway) CreateExpeditionWithLabel(ctx context.Context, req *mondialrelay.ExpeditionRequest) (*mondialrelay.ExpeditionWithLabel, error) {
	atomic.AddInt32(&s.createCalls, 1)
	return &mondialrelay.ExpeditionWithLabel{ExpeditionNumber: "11111111"}, nil
}

func (s *stubGateway) GetLabels(ctx context.Context, expeditionNumbers []string) (*mondialrelay.LabelBatch, error) {
	atomic.AddInt32(&s.labelCalls, 1)
	return &mondialrelay.LabelBatch{ExpeditionNumbers: expeditionNumbers}, nil
}

func (s *stubGateway) TrackPackage(ctx context.Context, expeditionNumber string) (*mondialrelay.TrackingInfo, error) {
	atomic.AddInt32(&s.trackCalls, 1)
	if s.failNumbers[expeditionNumber] {
		return nil, errors.New("tracking unavailable")
	}
	return &mondialrelay.TrackingInfo{Status: "82"}, nil
}

// stubCreator records whether REST creation was used.
type stubCreator struct {
	createCalls int32
}

func (s *stubCreator) CreateExpedition(ctx context.Context, req *mondialrelay.ExpeditionRequest) (*mondialrelay.Expedition, error) {
	atomic.AddInt32(&s.createCalls, 1)
	return &mondialrelay.Expedition{Number: "22222222"}, nil
}

func (s *stubCreator) CreateExpeditionWithLabel(ctx context.Context, req *mondialrelay.ExpeditionRequest) (*mondialrelay.ExpeditionWithLabel, error) {
	atomic.AddInt32(&s.createCalls, 1)
	return &mondialrelay.ExpeditionWithLabel{ExpeditionNumber: "22222222"}, nil
}

func TestRelaySearchRequest_Validate(t *testing.T) {
	valid := mondialrelay.RelaySearchRequest{PostalCode: "75001", Country: "FR"}
	assert.Empty(t, valid.Validate())

	badPostal := mondialrelay.RelaySearchRequest{PostalCode: "75", Country: "FR"}
	assert.NotEmpty(t, badPostal.Validate())

	badMode := mondialrelay.RelaySearchRequest{PostalCode: "75001", Country: "FR", DeliveryMode: "XXX"}
	assert.NotEmpty(t, badMode.Validate())

	badWeight := mondialrelay.RelaySearchRequest{PostalCode: "75001", Country: "FR", WeightGrams: -1}
	assert.NotEmpty(t, badWeight.Validate())
}

func validExpeditionRequest() *mondialrelay.ExpeditionRequest {
	return &mondialrelay.ExpeditionRequest{
		DeliveryMode: mondialrelay.ModeRelay,
		WeightGrams:  1500,
		OrderNumber:  "CMD-1001",
		Sender: mondialrelay.Address{
			Line1:      "Ma Boutique",
			Line3:      "1 rue du Commerce",
			City:       "Paris",
			PostalCode: "75001",
			Country:    "FR",
		},
		Recipient: mondialrelay.Address{
			Line1:      "Jean Dupont",
			Line3:      "12 rue de la République",
			City:       "Lille",
			PostalCode: "59000",
			Country:    "FR",
			Phone:      "0612345678",
			Email:      "jean@example.com",
		},
		RelayNumber:  "015035",
		RelayCountry: "FR",
	}
}

func TestExpeditionRequest_Validate(t *testing.T) {
	assert.Empty(t, validExpeditionRequest().Validate())
}

func TestExpeditionRequest_Validate_MissingRelay(t *testing.T) {
	req := validExpeditionRequest()
	req.RelayNumber = ""
	assert.Contains(t, req.Validate(), "Numéro de point relais requis")
}

func TestExpeditionRequest_Validate_MissingRelayCountry(t *testing.T) {
	req := validExpeditionRequest()
	req.RelayCountry = ""
	assert.Contains(t, req.Validate(), "Code pays du point relais requis")

	req.RelayCountry = "XX"
	assert.Contains(t, req.Validate(), "Code pays non supporté: XX")
}

func TestExpeditionRequest_Validate_RelayIgnoredForHome(t *testing.T) {
	req := validExpeditionRequest()
	req.DeliveryMode = mondialrelay.ModeHome
	req.RelayNumber = ""
	assert.Empty(t, req.Validate())
}

func TestExpeditionRequest_Validate_PrefixesSide(t *testing.T) {
	req := validExpeditionRequest()
	req.Sender.City = ""
	req.Recipient.Phone = ""

	issues := req.Validate()
	assert.Contains(t, issues, "Expéditeur: Ville requise")
	assert.Contains(t, issues, "Destinataire: Numéro de téléphone requis")
}

func TestExpeditionRequest_Validate_Options(t *testing.T) {
	req := validExpeditionRequest()
	req.CODAmount = 5000
	req.InsuranceLevel = "9"

	issues := req.Validate()
	assert.Contains(t, issues, "Montant contre-remboursement maximum dépassé (3000€)")
	assert.Contains(t, issues, "Niveau d'assurance invalide: 9")
}

func TestHybrid_SoapOnlyRouting(t *testing.T) {
	soap := &stubGateway{}
	hybrid := mondialrelay.NewHybrid(soap, nil, true)

	assert.False(t, hybrid.UsesRest())

	ctx := context.Background()
	_, err := hybrid.CreateExpedition(ctx, validExpeditionRequest())
	require.NoError(t, err)
	assert.Equal(t, int32(1), soap.createCalls)
}

func TestHybrid_PrefersRestForCreation(t *testing.T) {
	soap := &stubGateway{}
	rest := &stubCreator{}
	hybrid := mondialrelay.NewHybrid(soap, rest, true)

	assert.True(t, hybrid.UsesRest())

	ctx := context.Background()
	exp, err := hybrid.CreateExpedition(ctx, validExpeditionRequest())
	require.NoError(t, err)
	assert.Equal(t, "22222222", exp.Number)

	withLabel, err := hybrid.CreateExpeditionWithLabel(ctx, validExpeditionRequest())
	require.NoError(t, err)
	assert.Equal(t, "22222222", withLabel.ExpeditionNumber)

	assert.Equal(t, int32(2), rest.createCalls)
	assert.Equal(t, int32(0), soap.createCalls)
}

func TestHybrid_RestConfiguredButNotPreferred(t *testing.T) {
	soap := &stubGateway{}
	rest := &stubCreator{}
	hybrid := mondialrelay.NewHybrid(soap, rest, false)

	ctx := context.Background()
	_, err := hybrid.CreateExpedition(ctx, validExpeditionRequest())
	require.NoError(t, err)
	assert.Equal(t, int32(0), rest.createCalls)
	assert.Equal(t, int32(1), soap.createCalls)
}

func TestHybrid_NonCreationAlwaysSoap(t *testing.T) {
	soap := &stubGateway{}
	rest := &stubCreator{}
	hybrid := mondialrelay.NewHybrid(soap, rest, true)

	ctx := context.Background()
	_, err := hybrid.SearchRelayPoints(ctx, &mondialrelay.RelaySearchRequest{PostalCode: "75001", Country: "FR"})
	require.NoError(t, err)

	_, err = hybrid.GetLabels(ctx, []string{"11111111"})
	require.NoError(t, err)

	_, err = hybrid.TrackPackage(ctx, "11111111")
	require.NoError(t, err)

	assert.Equal(t, int32(1), soap.searchCalls)
	assert.Equal(t, int32(1), soap.labelCalls)
	assert.Equal(t, int32(1), soap.trackCalls)
	assert.Equal(t, int32(0), rest.createCalls)
}

func TestCreateMultiParcelExpedition(t *testing.T) {
	gateway := &stubGateway{}

	exp := &mondialrelay.MultiParcelExpedition{
		DeliveryMode: mondialrelay.ModeHome,
		Sender:       mondialrelay.Address{Line1: "Ma Boutique", City: "Paris"},
		Recipient:    mondialrelay.Address{Line1: "Jean Dupont", City: "Lille"},
	}
	exp.AddParcel(mondialrelay.Parcel{WeightGrams: 1000, Content: "Livres"})
	exp.AddParcel(mondialrelay.Parcel{WeightGrams: 2000, Content: "Vêtements"})

	created, err := mondialrelay.CreateMultiParcelExpedition(context.Background(), gateway, exp)
	require.NoError(t, err)
	assert.Equal(t, "11111111", created.ExpeditionNumber)
	assert.Equal(t, int32(1), gateway.createCalls)
}

func TestCreateMultiParcelExpedition_InvalidAggregate(t *testing.T) {
	gateway := &stubGateway{}

	exp := &mondialrelay.MultiParcelExpedition{DeliveryMode: mondialrelay.ModeRelay}
	exp.AddParcel(mondialrelay.Parcel{WeightGrams: 1000, Content: "Livres"})

	_, err := mondialrelay.CreateMultiParcelExpedition(context.Background(), gateway, exp)

	var mrErr *mondialrelay.Error
	require.ErrorAs(t, err, &mrErr)
	assert.Equal(t, mondialrelay.CategoryValidation, mrErr.Category())
	assert.Contains(t, mrErr.Message, "Numéro de point relais requis pour ce mode de livraison")
	assert.Equal(t, int32(0), gateway.createCalls)
}

func TestTrackAll(t *testing.T) {
	gateway := &stubGateway{}

	results, errs := mondialrelay.TrackAll(context.Background(), gateway, []string{"11111111", "22222222", "33333333"})

	assert.Empty(t, errs)
	assert.Len(t, results, 3)
	assert.Equal(t, int32(3), gateway.trackCalls)
}

func TestTrackAll_PartialFailure(t *testing.T) {
	gateway := &stubGateway{failNumbers: map[string]bool{"22222222": true}}

	results, errs := mondialrelay.TrackAll(context.Background(), gateway, []string{"11111111", "22222222"})

	assert.Len(t, results, 1)
	assert.Contains(t, results, "11111111")
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "22222222")
}

func TestTrackAll_Empty(t *testing.T) {
	gateway := &stubGateway{}
	results, errs := mondialrelay.TrackAll(context.Background(), gateway, nil)
	assert.Empty(t, results)
	assert.Empty(t, errs)
}
