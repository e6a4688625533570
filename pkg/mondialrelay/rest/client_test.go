package rest_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/tournevent/mondialrelay/pkg/mondialrelay"
	"github.com/tournevent/mondialrelay/pkg/mondialrelay/rest"
)

func newTestClient(mockClient *rest.MockAPIClient) *rest.Client {
	logger := otelzap.New(zap.NewNop())
	return rest.NewWithAPIClient(
		rest.Config{
			Login:      "user@example.com",
			Password:   "secret",
			CustomerID: "BDTEST13",
		},
		mockClient,
		logger,
		nil,
	)
}

func newTestClientOver(baseURL string) *rest.Client {
	logger := otelzap.New(zap.NewNop())
	return rest.NewWithAPIClient(
		rest.Config{
			BaseURL:    baseURL,
			Login:      "user@example.com",
			Password:   "secret",
			CustomerID: "BDTEST13",
		},
		rest.NewHTTPAPIClient(rest.HTTPAPIClientConfig{BaseURL: baseURL}),
		logger,
		nil,
	)
}

func expeditionRequest() *mondialrelay.ExpeditionRequest {
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

func TestClient_CreateExpedition_Success(t *testing.T) {
	mockAPI := rest.NewMockAPIClient()
	client := newTestClient(mockAPI)

	exp, err := client.CreateExpedition(context.Background(), expeditionRequest())

	require.NoError(t, err)
	assert.Len(t, exp.Number, 8)
	assert.Equal(t, mondialrelay.ModeRelay, exp.DeliveryMode)
	require.Len(t, exp.Barcodes, 1)
	assert.Contains(t, exp.Barcodes[0], exp.Number)
}

func TestClient_CreateExpeditionWithLabel_Success(t *testing.T) {
	mockAPI := rest.NewMockAPIClient()
	client := newTestClient(mockAPI)

	exp, err := client.CreateExpeditionWithLabel(context.Background(), expeditionRequest())

	require.NoError(t, err)
	assert.Len(t, exp.ExpeditionNumber, 8)
	// A single rendered PDF backs every format variant.
	assert.NotEmpty(t, exp.Label.URLA4)
	assert.Equal(t, exp.Label.URLA4, exp.Label.URLA5)
	assert.Equal(t, exp.Label.URLA4, exp.Label.URL10x15)
}

func TestClient_CreateExpedition_DocumentShape(t *testing.T) {
	mockAPI := rest.NewMockAPIClient()

	var captured *rest.ShipmentCreationRequest
	mockAPI.OnCreateShipment = func(ctx context.Context, req *rest.ShipmentCreationRequest) (*rest.ShipmentCreationResponse, error) {
		captured = req
		return rest.NewMockAPIClient().CreateShipment(ctx, req)
	}
	client := newTestClient(mockAPI)

	req := expeditionRequest()
	req.CODAmount = 49.90
	req.InsuranceLevel = "2"
	req.DeliveryInstruction = "Sonner deux fois"

	_, err := client.CreateExpedition(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, captured)

	assert.Equal(t, "user@example.com", captured.Context.Login)
	assert.Equal(t, "BDTEST13", captured.Context.CustomerID)
	assert.Equal(t, "fr-FR", captured.Context.Culture)
	assert.Equal(t, "1.0", captured.Context.VersionAPI)
	assert.Equal(t, "10x15", captured.OutputOptions.OutputFormat)
	assert.Equal(t, "PdfUrl", captured.OutputOptions.OutputType)

	require.Len(t, captured.Shipments, 1)
	shipment := captured.Shipments[0]
	assert.Equal(t, "CMD-1001", shipment.OrderNo)
	assert.Equal(t, 1, shipment.ParcelCount)
	assert.Equal(t, "Sonner deux fois", shipment.DeliveryInstruction)
	assert.Equal(t, "24R", shipment.DeliveryMode.Mode)
	assert.Equal(t, "FR015035", shipment.DeliveryMode.Location)
	assert.Equal(t, "CCC", shipment.CollectionMode.Mode)

	assert.Equal(t, []rest.Option{
		{Key: "CRT", Value: "49.9"},
		{Key: "ASS", Value: "2"},
		{Key: "LNG", Value: "FR"},
	}, shipment.Options)

	require.Len(t, shipment.Parcels, 1)
	assert.Equal(t, "Produit e-commerce", shipment.Parcels[0].Content)
	assert.Equal(t, 1500, shipment.Parcels[0].Weight.Value)
	assert.Equal(t, "gr", shipment.Parcels[0].Weight.Unit)

	recipient := shipment.Recipient.Address
	assert.Equal(t, "Jean Dupont", recipient.Firstname)
	assert.Equal(t, "12 rue de la République", recipient.Streetname)
	assert.Equal(t, "59000", recipient.PostCode)
	assert.Equal(t, "FR", recipient.CountryCode)
	assert.Equal(t, "0612345678", recipient.PhoneNo)
	assert.Equal(t, "jean@example.com", recipient.Email)
}

func TestClient_CreateExpedition_HomeDeliveryHasNoLocation(t *testing.T) {
	mockAPI := rest.NewMockAPIClient()

	var captured *rest.ShipmentCreationRequest
	mockAPI.OnCreateShipment = func(ctx context.Context, req *rest.ShipmentCreationRequest) (*rest.ShipmentCreationResponse, error) {
		captured = req
		return rest.NewMockAPIClient().CreateShipment(ctx, req)
	}
	client := newTestClient(mockAPI)

	req := expeditionRequest()
	req.DeliveryMode = mondialrelay.ModeHome
	req.RelayNumber = ""
	req.RelayCountry = ""

	_, err := client.CreateExpedition(context.Background(), req)
	require.NoError(t, err)

	shipment := captured.Shipments[0]
	assert.Equal(t, "24L", shipment.DeliveryMode.Mode)
	assert.Empty(t, shipment.DeliveryMode.Location)
	// LNG stays even without COD or insurance.
	assert.Equal(t, []rest.Option{{Key: "LNG", Value: "FR"}}, shipment.Options)
}

func TestClient_CreateExpedition_ValidationFailsFast(t *testing.T) {
	mockAPI := rest.NewMockAPIClient()
	mockAPI.OnCreateShipment = func(ctx context.Context, req *rest.ShipmentCreationRequest) (*rest.ShipmentCreationResponse, error) {
		t.Fatal("transport must not be called on invalid input")
		return nil, nil
	}
	client := newTestClient(mockAPI)

	req := expeditionRequest()
	req.WeightGrams = 0

	_, err := client.CreateExpedition(context.Background(), req)

	var mrErr *mondialrelay.Error
	require.ErrorAs(t, err, &mrErr)
	assert.Equal(t, 98, mrErr.Code)
}

func TestClient_CreateExpedition_StatusesAreErrors(t *testing.T) {
	mockAPI := rest.NewMockAPIClient()
	mockAPI.SimulateStatuses = []rest.Status{
		{Code: "36", Message: "Code postal invalide", Level: "Error"},
		{Code: "38", Message: "Numéro de téléphone invalide", Level: "Error"},
	}
	client := newTestClient(mockAPI)

	_, err := client.CreateExpedition(context.Background(), expeditionRequest())

	var mrErr *mondialrelay.Error
	require.ErrorAs(t, err, &mrErr)
	assert.Equal(t, 36, mrErr.Code)
	assert.Contains(t, mrErr.Message, "Code postal invalide")
	assert.Contains(t, mrErr.Message, "Numéro de téléphone invalide")
	assert.Equal(t, mondialrelay.CategoryValidation, mrErr.Category())
}

func TestClient_CreateExpedition_TransportError(t *testing.T) {
	mockAPI := rest.NewMockAPIClient()
	mockAPI.SimulateErrors = true
	client := newTestClient(mockAPI)

	_, err := client.CreateExpedition(context.Background(), expeditionRequest())

	var mrErr *mondialrelay.Error
	require.ErrorAs(t, err, &mrErr)
	assert.True(t, mrErr.Transport)
	assert.True(t, mrErr.Recoverable())
}

func TestClient_CreateExpedition_MissingShipmentNumber(t *testing.T) {
	mockAPI := rest.NewMockAPIClient()
	mockAPI.OnCreateShipment = func(ctx context.Context, req *rest.ShipmentCreationRequest) (*rest.ShipmentCreationResponse, error) {
		return &rest.ShipmentCreationResponse{}, nil
	}
	client := newTestClient(mockAPI)

	_, err := client.CreateExpedition(context.Background(), expeditionRequest())

	var mrErr *mondialrelay.Error
	require.ErrorAs(t, err, &mrErr)
	assert.Equal(t, 99, mrErr.Code)
}

func TestHybridWithRestClient(t *testing.T) {
	restClient := newTestClient(rest.NewMockAPIClient())
	hybrid := mondialrelay.NewHybrid(nil, restClient, true)

	require.True(t, hybrid.UsesRest())

	exp, err := hybrid.CreateExpedition(context.Background(), expeditionRequest())
	require.NoError(t, err)
	assert.Len(t, exp.Number, 8)
}
