// Package soap implements the mondialrelay.Gateway interface over the
// carrier's signed SOAP web services.
package soap

import (
	"context"

	"github.com/tournevent/mondialrelay/pkg/mondialrelay"
)

// APIClient abstracts the carrier SOAP transport so the gateway logic
// can be tested against a mock. Every call takes the already-ordered
// and signed request fields.
type APIClient interface {
	// SearchRelayPoints calls WSI4_PointRelais_Recherche.
	SearchRelayPoints(ctx context.Context, fields *mondialrelay.Fields) (*RelaySearchResult, error)

	// CreateExpedition calls WSI2_CreationExpedition.
	CreateExpedition(ctx context.Context, fields *mondialrelay.Fields) (*ExpeditionResult, error)

	// CreateExpeditionWithLabel calls WSI2_CreationEtiquette.
	CreateExpeditionWithLabel(ctx context.Context, fields *mondialrelay.Fields) (*ExpeditionWithLabelResult, error)

	// GetLabels calls WSI3_GetEtiquettes.
	GetLabels(ctx context.Context, fields *mondialrelay.Fields) (*LabelBatchResult, error)

	// TrackPackage calls WSI2_TracingColisDetaille.
	TrackPackage(ctx context.Context, fields *mondialrelay.Fields) (*TracingResult, error)
}

// RawRecorder is implemented by transports that retain the last raw
// exchange for diagnostics.
type RawRecorder interface {
	LastRequest() string
	LastResponse() string
}

// RelaySearchResult is the WSI4_PointRelais_RechercheResult payload.
type RelaySearchResult struct {
	Stat        string              `xml:"STAT"`
	RelayPoints []RelayPointDetails `xml:"PointsRelais>PointRelais_Details"`
}

// RelayPointDetails is one PointRelais_Details entry. Opening hours
// come as pairs of HHMM strings per weekday.
type RelayPointDetails struct {
	Num       string      `xml:"Num"`
	LgAdr1    string      `xml:"LgAdr1"`
	LgAdr2    string      `xml:"LgAdr2"`
	LgAdr3    string      `xml:"LgAdr3"`
	LgAdr4    string      `xml:"LgAdr4"`
	CP        string      `xml:"CP"`
	Ville     string      `xml:"Ville"`
	Pays      string      `xml:"Pays"`
	Latitude  string      `xml:"Latitude"`
	Longitude string      `xml:"Longitude"`
	Distance  string      `xml:"Distance"`
	URLPhoto  string      `xml:"URL_Photo"`
	URLPlan   string      `xml:"URL_Plan"`
	Lundi     DaySchedule `xml:"Horaire_Lundi"`
	Mardi     DaySchedule `xml:"Horaire_Mardi"`
	Mercredi  DaySchedule `xml:"Horaire_Mercredi"`
	Jeudi     DaySchedule `xml:"Horaire_Jeudi"`
	Vendredi  DaySchedule `xml:"Horaire_Vendredi"`
	Samedi    DaySchedule `xml:"Horaire_Samedi"`
	Dimanche  DaySchedule `xml:"Horaire_Dimanche"`
}

// DaySchedule carries the raw HHMM open/close markers of one weekday,
// in pairs. "0000" entries are closed slots.
type DaySchedule struct {
	Slots []string `xml:"string"`
}

// ExpeditionResult is the WSI2_CreationExpeditionResult payload with
// the sort plan routing of the created shipment.
type ExpeditionResult struct {
	Stat             string   `xml:"STAT"`
	ExpeditionNum    string   `xml:"ExpeditionNum"`
	TRIAgenceCode    string   `xml:"TRI_AgenceCode"`
	TRIGroupe        string   `xml:"TRI_Groupe"`
	TRINavette       string   `xml:"TRI_Navette"`
	TRIAgence        string   `xml:"TRI_Agence"`
	TRITourneeCode   string   `xml:"TRI_TourneeCode"`
	TRILivraisonMode string   `xml:"TRI_LivraisonMode"`
	CodesBarres      []string `xml:"CodesBarres>string"`
}

// ExpeditionWithLabelResult is the WSI2_CreationEtiquetteResult
// payload. URLEtiquette is relative to the web service host and takes a
// format query parameter.
type ExpeditionWithLabelResult struct {
	Stat          string `xml:"STAT"`
	ExpeditionNum string `xml:"ExpeditionNum"`
	URLEtiquette  string `xml:"URL_Etiquette"`
}

// LabelBatchResult is the WSI3_GetEtiquettesResult payload with one
// regrouped PDF URL per format.
type LabelBatchResult struct {
	Stat        string `xml:"STAT"`
	URLPDFA4    string `xml:"URL_PDF_A4"`
	URLPDFA5    string `xml:"URL_PDF_A5"`
	URLPDF10x15 string `xml:"URL_PDF_10x15"`
}

// TracingResult is the WSI2_TracingColisDetailleResult payload.
type TracingResult struct {
	Stat          string                `xml:"STAT"`
	Libelle01     string                `xml:"Libelle01"`
	RelaisLibelle string                `xml:"Relais_Libelle"`
	RelaisNum     string                `xml:"Relais_Num"`
	Tracing       []TracingEventDetails `xml:"Tracing>ret_WSI2_sub_TracingColisDetaille"`
}

// TracingEventDetails is one scan of the tracing history, with the
// carrier's DDMMYYYY date and HHMM time encodings.
type TracingEventDetails struct {
	Libelle string `xml:"Tracing_Libelle"`
	Date    string `xml:"Tracing_Date"`
	Heure   string `xml:"Tracing_Heure"`
	Lieu    string `xml:"Tracing_Lieu"`
	Relais  string `xml:"Tracing_Relais"`
	Pays    string `xml:"Tracing_Pays"`
}
