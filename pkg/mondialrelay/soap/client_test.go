package soap_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/tournevent/mondialrelay/pkg/mondialrelay"
	"github.com/tournevent/mondialrelay/pkg/mondialrelay/soap"
)

func newTestClient(mockClient *soap.MockAPIClient) *soap.Client {
	logger := otelzap.New(zap.NewNop())
	return soap.NewWithAPIClient(
		soap.Config{Enseigne: "BDTEST13", PrivateKey: "PrivateK"},
		mockClient,
		logger,
		nil,
	)
}

func searchRequest() *mondialrelay.RelaySearchRequest {
	return &mondialrelay.RelaySearchRequest{
		PostalCode: "59000",
		Country:    "FR",
	}
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

func TestClient_SearchRelayPoints_Success(t *testing.T) {
	mockAPI := soap.NewMockAPIClient()
	client := newTestClient(mockAPI)

	points, err := client.SearchRelayPoints(context.Background(), searchRequest())

	require.NoError(t, err)
	require.Len(t, points, 2)

	first := points[0]
	assert.Equal(t, "015035", first.Number)
	assert.Equal(t, "TABAC PRESSE DU CENTRE", first.Name)
	assert.Equal(t, "59000", first.PostalCode)
	// Comma decimal coordinates get parsed.
	assert.InDelta(t, 50.6365654, first.Latitude, 0.0001)
	assert.InDelta(t, 3.0635282, first.Longitude, 0.0001)
	assert.InDelta(t, 250, first.DistanceMeters, 0.001)
}

func TestClient_SearchRelayPoints_OpeningHours(t *testing.T) {
	mockAPI := soap.NewMockAPIClient()
	client := newTestClient(mockAPI)

	points, err := client.SearchRelayPoints(context.Background(), searchRequest())
	require.NoError(t, err)

	hours := points[0].OpeningHours
	require.Len(t, hours[time.Monday], 2)
	assert.Equal(t, mondialrelay.OpeningSlot{Open: "0900", Close: "1200"}, hours[time.Monday][0])
	assert.Equal(t, mondialrelay.OpeningSlot{Open: "1400", Close: "1900"}, hours[time.Monday][1])
	// The closed afternoon markers get dropped.
	require.Len(t, hours[time.Saturday], 1)
	assert.Empty(t, hours[time.Sunday])
}

func TestClient_SearchRelayPoints_ValidationFailsFast(t *testing.T) {
	mockAPI := soap.NewMockAPIClient()
	mockAPI.OnSearchRelayPoints = func(ctx context.Context, fields *mondialrelay.Fields) (*soap.RelaySearchResult, error) {
		t.Fatal("transport must not be called on invalid input")
		return nil, nil
	}
	client := newTestClient(mockAPI)

	_, err := client.SearchRelayPoints(context.Background(), &mondialrelay.RelaySearchRequest{
		PostalCode: "59",
		Country:    "FR",
	})

	var mrErr *mondialrelay.Error
	require.ErrorAs(t, err, &mrErr)
	assert.Equal(t, 98, mrErr.Code)
	assert.Equal(t, mondialrelay.CategoryValidation, mrErr.Category())
}

func TestClient_SearchRelayPoints_FieldOrder(t *testing.T) {
	mockAPI := soap.NewMockAPIClient()

	var keys []string
	mockAPI.OnSearchRelayPoints = func(ctx context.Context, fields *mondialrelay.Fields) (*soap.RelaySearchResult, error) {
		keys = fields.Keys()
		return &soap.RelaySearchResult{Stat: "0"}, nil
	}
	client := newTestClient(mockAPI)

	_, err := client.SearchRelayPoints(context.Background(), searchRequest())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Enseigne", "Pays", "NumPointRelais", "Ville", "CP",
		"Latitude", "Longitude", "Taille", "Poids", "Action",
		"DelaiEnvoi", "RayonRecherche", "TypeActivite", "NombreResultats",
		"Security",
	}, keys)
}

func TestClient_SearchRelayPoints_Defaults(t *testing.T) {
	mockAPI := soap.NewMockAPIClient()

	var captured *mondialrelay.Fields
	mockAPI.OnSearchRelayPoints = func(ctx context.Context, fields *mondialrelay.Fields) (*soap.RelaySearchResult, error) {
		captured = fields
		return &soap.RelaySearchResult{Stat: "0"}, nil
	}
	client := newTestClient(mockAPI)

	_, err := client.SearchRelayPoints(context.Background(), searchRequest())
	require.NoError(t, err)

	action, _ := captured.Get("Action")
	radius, _ := captured.Get("RayonRecherche")
	results, _ := captured.Get("NombreResultats")
	assert.Equal(t, "24R", action)
	assert.Equal(t, "20", radius)
	assert.Equal(t, "10", results)
}

func TestClient_SearchRelayPoints_TransportError(t *testing.T) {
	mockAPI := soap.NewMockAPIClient()
	mockAPI.SimulateErrors = true
	client := newTestClient(mockAPI)

	_, err := client.SearchRelayPoints(context.Background(), searchRequest())

	var mrErr *mondialrelay.Error
	require.ErrorAs(t, err, &mrErr)
	assert.True(t, mrErr.Transport)
	assert.Equal(t, mondialrelay.CategoryTransport, mrErr.Category())
	assert.True(t, mrErr.Recoverable())
}

func TestClient_SearchRelayPoints_AuthenticationStat(t *testing.T) {
	mockAPI := soap.NewMockAPIClient()
	mockAPI.SimulateStat = "8"
	client := newTestClient(mockAPI)

	_, err := client.SearchRelayPoints(context.Background(), searchRequest())

	var mrErr *mondialrelay.Error
	require.ErrorAs(t, err, &mrErr)
	assert.Equal(t, 8, mrErr.Code)
	assert.Equal(t, mondialrelay.CategoryAuthentication, mrErr.Category())
	assert.False(t, mrErr.Recoverable())
}

func TestClient_SearchRelayPoints_PostalCodeStat(t *testing.T) {
	mockAPI := soap.NewMockAPIClient()
	mockAPI.SimulateStat = "36"
	client := newTestClient(mockAPI)

	_, err := client.SearchRelayPoints(context.Background(), searchRequest())

	var mrErr *mondialrelay.Error
	require.ErrorAs(t, err, &mrErr)
	assert.Contains(t, mrErr.Message, "Code postal invalide")
	assert.Contains(t, mrErr.Message, "Code postal: 59000")
	assert.Contains(t, mrErr.Message, "Enseigne: BDTEST13")
}

func TestClient_CreateExpedition_Success(t *testing.T) {
	mockAPI := soap.NewMockAPIClient()
	client := newTestClient(mockAPI)

	exp, err := client.CreateExpedition(context.Background(), expeditionRequest())

	require.NoError(t, err)
	assert.Len(t, exp.Number, 8)
	assert.Equal(t, "59", exp.AgencyCode)
	assert.Equal(t, "LILLE EUROPE", exp.Agency)
	assert.Equal(t, mondialrelay.ModeRelay, exp.DeliveryMode)
	require.Len(t, exp.Barcodes, 1)
	assert.Contains(t, exp.Barcodes[0], exp.Number)
}

func TestClient_CreateExpedition_FieldOrderAndDefaults(t *testing.T) {
	mockAPI := soap.NewMockAPIClient()

	var captured *mondialrelay.Fields
	mockAPI.OnCreateExpedition = func(ctx context.Context, fields *mondialrelay.Fields) (*soap.ExpeditionResult, error) {
		captured = fields
		return &soap.ExpeditionResult{Stat: "0", ExpeditionNum: "12345678"}, nil
	}
	client := newTestClient(mockAPI)

	_, err := client.CreateExpedition(context.Background(), expeditionRequest())
	require.NoError(t, err)

	keys := captured.Keys()
	assert.Equal(t, "Enseigne", keys[0])
	assert.Equal(t, "Security", keys[len(keys)-1])

	modeCol, _ := captured.Get("ModeCol")
	length, _ := captured.Get("Longueur")
	declared, _ := captured.Get("Exp_Valeur")
	cod, _ := captured.Get("CRT_Valeur")
	relayCountry, _ := captured.Get("LIV_Rel_Pays")
	relay, _ := captured.Get("LIV_Rel")
	assert.Equal(t, "CCC", modeCol)
	assert.Equal(t, "20", length)
	assert.Equal(t, "50", declared)
	assert.Equal(t, "0", cod)
	assert.Equal(t, "FR", relayCountry)
	assert.Equal(t, "015035", relay)
}

func TestClient_CreateExpedition_CODAndInsurance(t *testing.T) {
	mockAPI := soap.NewMockAPIClient()

	var captured *mondialrelay.Fields
	mockAPI.OnCreateExpedition = func(ctx context.Context, fields *mondialrelay.Fields) (*soap.ExpeditionResult, error) {
		captured = fields
		return &soap.ExpeditionResult{Stat: "0", ExpeditionNum: "12345678"}, nil
	}
	client := newTestClient(mockAPI)

	req := expeditionRequest()
	req.CODAmount = 49.90
	req.InsuranceLevel = "2"

	_, err := client.CreateExpedition(context.Background(), req)
	require.NoError(t, err)

	cod, _ := captured.Get("CRT_Valeur")
	currency, _ := captured.Get("CRT_Devise")
	insurance, _ := captured.Get("Assurance")
	assert.Equal(t, "49.9", cod)
	assert.Equal(t, "EUR", currency)
	assert.Equal(t, "2", insurance)
}

func TestClient_CreateExpedition_SignatureCoversFields(t *testing.T) {
	mockAPI := soap.NewMockAPIClient()

	var captured *mondialrelay.Fields
	mockAPI.OnCreateExpedition = func(ctx context.Context, fields *mondialrelay.Fields) (*soap.ExpeditionResult, error) {
		captured = fields
		return &soap.ExpeditionResult{Stat: "0", ExpeditionNum: "12345678"}, nil
	}
	client := newTestClient(mockAPI)

	_, err := client.CreateExpedition(context.Background(), expeditionRequest())
	require.NoError(t, err)

	security, ok := captured.Get("Security")
	require.True(t, ok)
	assert.Regexp(t, `^[0-9A-F]{32}$`, security)
}

func TestClient_CreateExpeditionWithLabel_Success(t *testing.T) {
	mockAPI := soap.NewMockAPIClient()
	client := newTestClient(mockAPI)

	exp, err := client.CreateExpeditionWithLabel(context.Background(), expeditionRequest())

	require.NoError(t, err)
	assert.Len(t, exp.ExpeditionNumber, 8)
	assert.True(t, strings.HasPrefix(exp.Label.URLA4, "https://api.mondialrelay.com/ww2/PDF/StickerPrint.aspx"))
	assert.True(t, strings.HasSuffix(exp.Label.URLA4, "&format=A4"))
	assert.True(t, strings.HasSuffix(exp.Label.URLA5, "&format=A5"))
	assert.True(t, strings.HasSuffix(exp.Label.URL10x15, "&format=10x15"))
}

func TestClient_CreateExpeditionWithLabel_TexteOutsideSignature(t *testing.T) {
	mockAPI := soap.NewMockAPIClient()

	var keys []string
	var texte string
	mockAPI.OnCreateExpeditionWithLabel = func(ctx context.Context, fields *mondialrelay.Fields) (*soap.ExpeditionWithLabelResult, error) {
		keys = fields.Keys()
		texte, _ = fields.Get("Texte")
		return &soap.ExpeditionWithLabelResult{Stat: "0", ExpeditionNum: "12345678", URLEtiquette: "/x?y=1"}, nil
	}
	client := newTestClient(mockAPI)

	_, err := client.CreateExpeditionWithLabel(context.Background(), expeditionRequest())
	require.NoError(t, err)

	// The free text rides after the Security field, outside the hash.
	require.GreaterOrEqual(t, len(keys), 2)
	assert.Equal(t, "Security", keys[len(keys)-2])
	assert.Equal(t, "Texte", keys[len(keys)-1])
	assert.Equal(t, "Produit e-commerce", texte)
}

func TestClient_CreateExpeditionWithLabel_CustomDescription(t *testing.T) {
	mockAPI := soap.NewMockAPIClient()

	var texte string
	mockAPI.OnCreateExpeditionWithLabel = func(ctx context.Context, fields *mondialrelay.Fields) (*soap.ExpeditionWithLabelResult, error) {
		texte, _ = fields.Get("Texte")
		return &soap.ExpeditionWithLabelResult{Stat: "0", ExpeditionNum: "12345678", URLEtiquette: "/x?y=1"}, nil
	}
	client := newTestClient(mockAPI)

	req := expeditionRequest()
	req.ArticlesDescription = "Livres et papeterie"

	_, err := client.CreateExpeditionWithLabel(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Livres et papeterie", texte)
}

func TestClient_GetLabels_Success(t *testing.T) {
	mockAPI := soap.NewMockAPIClient()
	client := newTestClient(mockAPI)

	batch, err := client.GetLabels(context.Background(), []string{"11111111", "22222222"})

	require.NoError(t, err)
	assert.Equal(t, []string{"11111111", "22222222"}, batch.ExpeditionNumbers)
	assert.True(t, strings.HasPrefix(batch.PDFURLA4, "https://api.mondialrelay.com/ww2/PDF/GetStickers.aspx?format=A4"))
	assert.Contains(t, batch.PDFURLA5, "format=A5")
	assert.Contains(t, batch.PDFURL10x15, "format=10x15")
}

func TestClient_GetLabels_JoinsNumbers(t *testing.T) {
	mockAPI := soap.NewMockAPIClient()

	var expeditions string
	mockAPI.OnGetLabels = func(ctx context.Context, fields *mondialrelay.Fields) (*soap.LabelBatchResult, error) {
		expeditions, _ = fields.Get("Expeditions")
		return &soap.LabelBatchResult{Stat: "0"}, nil
	}
	client := newTestClient(mockAPI)

	_, err := client.GetLabels(context.Background(), []string{"11111111", "22222222", "33333333"})
	require.NoError(t, err)
	assert.Equal(t, "11111111;22222222;33333333", expeditions)
}

func TestClient_GetLabels_EmptyList(t *testing.T) {
	mockAPI := soap.NewMockAPIClient()
	client := newTestClient(mockAPI)

	_, err := client.GetLabels(context.Background(), nil)

	var mrErr *mondialrelay.Error
	require.ErrorAs(t, err, &mrErr)
	assert.Equal(t, 98, mrErr.Code)
}

func TestClient_GetLabels_InvalidNumber(t *testing.T) {
	mockAPI := soap.NewMockAPIClient()
	client := newTestClient(mockAPI)

	_, err := client.GetLabels(context.Background(), []string{"11111111", "bad"})

	var mrErr *mondialrelay.Error
	require.ErrorAs(t, err, &mrErr)
	assert.Equal(t, 98, mrErr.Code)
}

func TestClient_TrackPackage_Success(t *testing.T) {
	mockAPI := soap.NewMockAPIClient()
	client := newTestClient(mockAPI)

	info, err := client.TrackPackage(context.Background(), "12345678")

	require.NoError(t, err)
	assert.Equal(t, "82", info.Status)
	assert.True(t, info.IsDelivered())
	assert.Equal(t, "015035", info.RelayNumber)
	require.NotEmpty(t, info.Events)
	assert.Equal(t, "Colis livré au destinataire", info.Events[0].Label)
}

func TestClient_TrackPackage_DeliveredStatNotAnError(t *testing.T) {
	mockAPI := soap.NewMockAPIClient()

	for _, stat := range []string{"0", "80", "81", "82", "83"} {
		mockAPI.OnTrackPackage = func(ctx context.Context, fields *mondialrelay.Fields) (*soap.TracingResult, error) {
			return &soap.TracingResult{Stat: stat}, nil
		}
		client := newTestClient(mockAPI)

		_, err := client.TrackPackage(context.Background(), "12345678")
		assert.NoError(t, err, "stat %s", stat)
	}
}

func TestClient_TrackPackage_UnknownPackage(t *testing.T) {
	mockAPI := soap.NewMockAPIClient()
	mockAPI.SimulateStat = "94"
	client := newTestClient(mockAPI)

	_, err := client.TrackPackage(context.Background(), "12345678")

	var mrErr *mondialrelay.Error
	require.ErrorAs(t, err, &mrErr)
	assert.Equal(t, 94, mrErr.Code)
	assert.Equal(t, mondialrelay.CategoryBusiness, mrErr.Category())
}

func TestClient_TrackPackage_InvalidNumber(t *testing.T) {
	mockAPI := soap.NewMockAPIClient()
	client := newTestClient(mockAPI)

	_, err := client.TrackPackage(context.Background(), "not-a-number")

	var mrErr *mondialrelay.Error
	require.ErrorAs(t, err, &mrErr)
	assert.Equal(t, 98, mrErr.Code)
}

func TestClient_CustomMockFault(t *testing.T) {
	mockAPI := soap.NewMockAPIClient()
	mockAPI.OnTrackPackage = func(ctx context.Context, fields *mondialrelay.Fields) (*soap.TracingResult, error) {
		return nil, errors.New("upstream gone")
	}
	client := newTestClient(mockAPI)

	_, err := client.TrackPackage(context.Background(), "12345678")

	var mrErr *mondialrelay.Error
	require.ErrorAs(t, err, &mrErr)
	assert.True(t, mrErr.Transport)
	assert.Contains(t, err.Error(), "upstream gone")
}
