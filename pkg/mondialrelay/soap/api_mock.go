package soap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tournevent/mondialrelay/pkg/mondialrelay"
)

// MockAPIClient is a mock implementation of APIClient for testing.
// SimulateStat, when set, makes every call return a result carrying
// that STAT code instead of the canned success payload; SimulateErrors
// makes every call fail at the transport level.
type MockAPIClient struct {
	SimulateErrors  bool
	SimulateLatency time.Duration
	SimulateStat    string

	OnSearchRelayPoints         func(ctx context.Context, fields *mondialrelay.Fields) (*RelaySearchResult, error)
	OnCreateExpedition          func(ctx context.Context, fields *mondialrelay.Fields) (*ExpeditionResult, error)
	OnCreateExpeditionWithLabel func(ctx context.Context, fields *mondialrelay.Fields) (*ExpeditionWithLabelResult, error)
	OnGetLabels                 func(ctx context.Context, fields *mondialrelay.Fields) (*LabelBatchResult, error)
	OnTrackPackage              func(ctx context.Context, fields *mondialrelay.Fields) (*TracingResult, error)
}

// NewMockAPIClient creates a new mock API client with default behavior.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{}
}

func (m *MockAPIClient) simulate() error {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}
	if m.SimulateErrors {
		return &Fault{Code: "soap12:Receiver", Reason: "Simulated SOAP fault"}
	}
	return nil
}

// SearchRelayPoints returns two canned relay points around the
// requested postal code.
func (m *MockAPIClient) SearchRelayPoints(ctx context.Context, fields *mondialrelay.Fields) (*RelaySearchResult, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnSearchRelayPoints != nil {
		return m.OnSearchRelayPoints(ctx, fields)
	}
	if m.SimulateStat != "" {
		return &RelaySearchResult{Stat: m.SimulateStat}, nil
	}

	cp, _ := fields.Get("CP")
	pays, _ := fields.Get("Pays")
	weekdays := DaySchedule{Slots: []string{"0900", "1200", "1400", "1900"}}
	saturday := DaySchedule{Slots: []string{"0900", "1230", "0000", "0000"}}
	closed := DaySchedule{Slots: []string{"0000", "0000", "0000", "0000"}}

	return &RelaySearchResult{
		Stat: "0",
		RelayPoints: []RelayPointDetails{
			{
				Num:       "015035",
				LgAdr1:    "TABAC PRESSE DU CENTRE",
				LgAdr3:    "12 RUE DE LA REPUBLIQUE",
				CP:        cp,
				Ville:     "LILLE",
				Pays:      pays,
				Latitude:  "50,6365654",
				Longitude: "3,0635282",
				Distance:  "250",
				URLPhoto:  "https://www.mondialrelay.com/img/dynamique/pr.aspx?id=FR015035",
				Lundi:     weekdays,
				Mardi:     weekdays,
				Mercredi:  weekdays,
				Jeudi:     weekdays,
				Vendredi:  weekdays,
				Samedi:    saturday,
				Dimanche:  closed,
			},
			{
				Num:       "062718",
				LgAdr1:    "EPICERIE DES HALLES",
				LgAdr3:    "4 PLACE DES HALLES",
				CP:        cp,
				Ville:     "LILLE",
				Pays:      pays,
				Latitude:  "50,6401230",
				Longitude: "3,0588577",
				Distance:  "1320",
				Lundi:     weekdays,
				Mardi:     weekdays,
				Mercredi:  weekdays,
				Jeudi:     weekdays,
				Vendredi:  weekdays,
				Samedi:    weekdays,
				Dimanche:  closed,
			},
		},
	}, nil
}

// CreateExpedition returns a canned sort plan routing.
func (m *MockAPIClient) CreateExpedition(ctx context.Context, fields *mondialrelay.Fields) (*ExpeditionResult, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnCreateExpedition != nil {
		return m.OnCreateExpedition(ctx, fields)
	}
	if m.SimulateStat != "" {
		return &ExpeditionResult{Stat: m.SimulateStat}, nil
	}

	number := mockExpeditionNumber()
	mode, _ := fields.Get("ModeLiv")
	return &ExpeditionResult{
		Stat:             "0",
		ExpeditionNum:    number,
		TRIAgenceCode:    "59",
		TRIGroupe:        "B2",
		TRINavette:       "N02",
		TRIAgence:        "LILLE EUROPE",
		TRITourneeCode:   "T105",
		TRILivraisonMode: mode,
		CodesBarres:      []string{"%0059" + number + "24R01"},
	}, nil
}

// CreateExpeditionWithLabel returns a canned expedition with a relative
// label URL the way the carrier does.
func (m *MockAPIClient) CreateExpeditionWithLabel(ctx context.Context, fields *mondialrelay.Fields) (*ExpeditionWithLabelResult, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnCreateExpeditionWithLabel != nil {
		return m.OnCreateExpeditionWithLabel(ctx, fields)
	}
	if m.SimulateStat != "" {
		return &ExpeditionWithLabelResult{Stat: m.SimulateStat}, nil
	}

	number := mockExpeditionNumber()
	enseigne, _ := fields.Get("Enseigne")
	return &ExpeditionWithLabelResult{
		Stat:          "0",
		ExpeditionNum: number,
		URLEtiquette:  fmt.Sprintf("/ww2/PDF/StickerPrint.aspx?ens=%s&expedition=%s&securite=%s", enseigne, number, mockToken()),
	}, nil
}

// GetLabels returns canned batch PDF URLs.
func (m *MockAPIClient) GetLabels(ctx context.Context, fields *mondialrelay.Fields) (*LabelBatchResult, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnGetLabels != nil {
		return m.OnGetLabels(ctx, fields)
	}
	if m.SimulateStat != "" {
		return &LabelBatchResult{Stat: m.SimulateStat}, nil
	}

	token := mockToken()
	return &LabelBatchResult{
		Stat:        "0",
		URLPDFA4:    "/ww2/PDF/GetStickers.aspx?format=A4&securite=" + token,
		URLPDFA5:    "/ww2/PDF/GetStickers.aspx?format=A5&securite=" + token,
		URLPDF10x15: "/ww2/PDF/GetStickers.aspx?format=10x15&securite=" + token,
	}, nil
}

// TrackPackage returns a canned delivered tracing history, newest scan
// first.
func (m *MockAPIClient) TrackPackage(ctx context.Context, fields *mondialrelay.Fields) (*TracingResult, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnTrackPackage != nil {
		return m.OnTrackPackage(ctx, fields)
	}
	if m.SimulateStat != "" {
		return &TracingResult{Stat: m.SimulateStat}, nil
	}

	now := time.Now()
	return &TracingResult{
		Stat:          "82",
		Libelle01:     "Colis livré",
		RelaisLibelle: "TABAC PRESSE DU CENTRE",
		RelaisNum:     "015035",
		Tracing: []TracingEventDetails{
			{
				Libelle: "Colis livré au destinataire",
				Date:    now.Format("02012006"),
				Heure:   now.Format("1504"),
				Lieu:    "LILLE",
				Relais:  "015035",
				Pays:    "FR",
			},
			{
				Libelle: "Colis disponible au Point Relais",
				Date:    now.Add(-24 * time.Hour).Format("02012006"),
				Heure:   "0915",
				Lieu:    "LILLE",
				Relais:  "015035",
				Pays:    "FR",
			},
			{
				Libelle: "Colis en acheminement",
				Date:    now.Add(-48 * time.Hour).Format("02012006"),
				Heure:   "2140",
				Lieu:    "HEM",
				Pays:    "FR",
			},
			{
				Libelle: "Colis pris en charge par Mondial Relay",
				Date:    now.Add(-72 * time.Hour).Format("02012006"),
				Heure:   "1802",
				Lieu:    "PARIS",
				Pays:    "FR",
			},
		},
	}, nil
}

// mockExpeditionNumber derives an 8-digit expedition number from a
// random UUID, matching the carrier's format.
func mockExpeditionNumber() string {
	var digits strings.Builder
	for _, r := range uuid.New().String() {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
			if digits.Len() == 8 {
				break
			}
		}
	}
	for digits.Len() < 8 {
		digits.WriteByte('3')
	}
	return digits.String()
}

func mockToken() string {
	return strings.ToUpper(uuid.New().String()[:8])
}

var _ APIClient = (*MockAPIClient)(nil)
