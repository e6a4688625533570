// Package mondialrelay is a client library for the Mondial Relay parcel
// carrier: relay point search, expedition creation, label retrieval and
// package tracking over the carrier's signed SOAP web services, with an
// optional REST gateway for label generation.
package mondialrelay

import (
	"fmt"
	"strings"
	"time"
)

// DeliveryMode is a Mondial Relay service-level code.
type DeliveryMode string

const (
	// ModeRelay delivers to a relay point within 24-48h.
	ModeRelay DeliveryMode = "24R"
	// ModeHome delivers to the recipient's address within 24-48h.
	ModeHome DeliveryMode = "24L"
	// ModeRelayExpress delivers to a relay point with express handling.
	ModeRelayExpress DeliveryMode = "24X"
	// ModeHomeNextDay delivers to the recipient's address the next day.
	ModeHomeNextDay DeliveryMode = "LD1"
	// ModeHomeSaturday delivers to the recipient's address on Saturday.
	ModeHomeSaturday DeliveryMode = "LDS"
	// ModeDrive delivers to a drive pickup location.
	ModeDrive DeliveryMode = "DRI"
	// ModeHomeStandard is standard home delivery.
	ModeHomeStandard DeliveryMode = "HOM"
)

// DeliveryModes lists every service-level code the carrier accepts.
var DeliveryModes = []DeliveryMode{
	ModeRelay, ModeHome, ModeRelayExpress, ModeHomeNextDay,
	ModeHomeSaturday, ModeDrive, ModeHomeStandard,
}

// Valid reports whether the mode is one the carrier accepts.
func (m DeliveryMode) Valid() bool {
	for _, mode := range DeliveryModes {
		if m == mode {
			return true
		}
	}
	return false
}

// RequiresRelay reports whether the mode needs a destination relay point.
func (m DeliveryMode) RequiresRelay() bool {
	return m == ModeRelay || m == ModeRelayExpress
}

// IsHomeDelivery reports whether the mode delivers to the recipient's address.
func (m DeliveryMode) IsHomeDelivery() bool {
	return m == ModeHome || m == ModeHomeNextDay || m == ModeHomeSaturday || m == ModeHomeStandard
}

// Label returns the human-readable French description of the mode.
func (m DeliveryMode) Label() string {
	switch m {
	case ModeRelay:
		return "Livraison en point relais (24h-48h)"
	case ModeHome:
		return "Livraison à domicile (24h-48h)"
	case ModeRelayExpress:
		return "Livraison express en point relais"
	case ModeHomeNextDay:
		return "Livraison à domicile (J+1)"
	case ModeHomeSaturday:
		return "Livraison à domicile le samedi"
	case ModeDrive:
		return "Drive"
	case ModeHomeStandard:
		return "Livraison à domicile"
	default:
		return string(m)
	}
}

// Address identifies a sender or recipient for an expedition. Line1 and
// Line3 are the carrier's required lines (recipient or company name, and
// street); Line2 and Line4 are optional complements.
type Address struct {
	Line1      string
	Line2      string
	Line3      string
	Line4      string
	City       string
	PostalCode string
	Country    string
	Phone      string
	Phone2     string
	Email      string
	Language   string
}

// OpeningSlot is one open/close window of a relay point, both bounds as
// carrier "HHMM" strings.
type OpeningSlot struct {
	Open  string
	Close string
}

// Open24h reports whether the slot encodes the carrier's all-day marker.
func (s OpeningSlot) Open24h() bool {
	return s.Open == "0001" && s.Close == "2359"
}

// Contains reports whether the clock time hhmm falls inside the slot.
func (s OpeningSlot) Contains(hhmm int) bool {
	open := hhmmToInt(s.Open)
	close := hhmmToInt(s.Close)
	return open > 0 && close > 0 && hhmm >= open && hhmm <= close
}

// String formats the slot as "HH:MM-HH:MM".
func (s OpeningSlot) String() string {
	return formatHHMM(s.Open) + "-" + formatHHMM(s.Close)
}

func formatHHMM(v string) string {
	if len(v) != 4 {
		return v
	}
	return v[:2] + ":" + v[2:]
}

func hhmmToInt(v string) int {
	n := 0
	for _, r := range v {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}

// RelayPoint is a Mondial Relay pickup and dropoff location.
type RelayPoint struct {
	Number         string
	Name           string
	Address        string
	PostalCode     string
	City           string
	Country        string
	Latitude       float64
	Longitude      float64
	DistanceMeters float64
	OpeningHours   map[time.Weekday][]OpeningSlot
	PhotoURL       string
	MapURL         string
}

// FullAddress returns "address, postal code city".
func (r *RelayPoint) FullAddress() string {
	return fmt.Sprintf("%s, %s %s", r.Address, r.PostalCode, r.City)
}

// FormattedDistance renders the distance as meters below 1km and as
// kilometers with one decimal above.
func (r *RelayPoint) FormattedDistance() string {
	if r.DistanceMeters < 1000 {
		return fmt.Sprintf("%.0f m", r.DistanceMeters)
	}
	return fmt.Sprintf("%.1f km", r.DistanceMeters/1000)
}

// IsOpenOn reports whether the relay point has any opening slot that day.
func (r *RelayPoint) IsOpenOn(day time.Weekday) bool {
	return len(r.OpeningHours[day]) > 0
}

// IsOpenAt reports whether the relay point is open at the given moment.
func (r *RelayPoint) IsOpenAt(t time.Time) bool {
	hhmm := t.Hour()*100 + t.Minute()
	for _, slot := range r.OpeningHours[t.Weekday()] {
		if slot.Contains(hhmm) {
			return true
		}
	}
	return false
}

// GoogleMapsURL returns a maps link to the relay point coordinates.
func (r *RelayPoint) GoogleMapsURL() string {
	return fmt.Sprintf("https://www.google.com/maps/search/?api=1&query=%g,%g", r.Latitude, r.Longitude)
}

// Parcel is one package of an expedition. Dimensions are optional; when
// all three are set they contribute a volumetric weight.
type Parcel struct {
	WeightGrams int
	Content     string
	LengthCm    int
	WidthCm     int
	HeightCm    int
	Value       float64
	Currency    string
	Reference   string
}

// VolumeCm3 returns the parcel volume, or 0 when a dimension is missing.
func (p *Parcel) VolumeCm3() int {
	if p.LengthCm <= 0 || p.WidthCm <= 0 || p.HeightCm <= 0 {
		return 0
	}
	return p.LengthCm * p.WidthCm * p.HeightCm
}

// VolumetricWeightGrams converts volume to weight at 5000cm³ per kg,
// rounded up to the next whole kilogram. Returns 0 without dimensions.
func (p *Parcel) VolumetricWeightGrams() int {
	volume := p.VolumeCm3()
	if volume == 0 {
		return 0
	}
	return ((volume + 4999) / 5000) * 1000
}

// BillableWeightGrams returns the higher of the actual and volumetric
// weights.
func (p *Parcel) BillableWeightGrams() int {
	if vw := p.VolumetricWeightGrams(); vw > p.WeightGrams {
		return vw
	}
	return p.WeightGrams
}

// FormattedWeight renders the weight in grams or kilograms.
func (p *Parcel) FormattedWeight() string {
	if p.WeightGrams < 1000 {
		return fmt.Sprintf("%dg", p.WeightGrams)
	}
	return fmt.Sprintf("%.2fkg", float64(p.WeightGrams)/1000)
}

// Validate returns the list of constraint violations for the parcel.
func (p *Parcel) Validate() []string {
	var errs []string
	if p.WeightGrams <= 0 {
		errs = append(errs, "Le poids doit être supérieur à 0")
	}
	if p.WeightGrams > MaxWeightGrams {
		errs = append(errs, "Le poids maximum est de 30kg")
	}
	if p.Content == "" {
		errs = append(errs, "Le contenu du colis est requis")
	}
	if len([]rune(p.Content)) > 50 {
		errs = append(errs, "La description du contenu ne peut pas dépasser 50 caractères")
	}
	for _, d := range []struct {
		name  string
		value int
	}{
		{"longueur", p.LengthCm},
		{"largeur", p.WidthCm},
		{"hauteur", p.HeightCm},
	} {
		if d.value < 0 {
			errs = append(errs, fmt.Sprintf("La %s doit être supérieure à 0", d.name))
		}
		if d.value > MaxDimensionCm {
			errs = append(errs, fmt.Sprintf("La %s maximum est de %dcm", d.name, MaxDimensionCm))
		}
	}
	if p.Value < 0 {
		errs = append(errs, "La valeur du colis ne peut pas être négative")
	}
	return errs
}

// Expedition is a shipment created at the carrier, with its sort plan
// routing details.
type Expedition struct {
	Number       string
	AgencyCode   string
	Group        string
	Shuttle      string
	Agency       string
	TourCode     string
	DeliveryMode DeliveryMode
	Barcodes     []string
}

// TrackingURL returns the carrier's public tracking page for the
// expedition.
func (e *Expedition) TrackingURL() string {
	return PublicTrackingURL(e.Number)
}

// PublicTrackingURL returns the carrier's public tracking page for an
// expedition number. No authentication is needed to open it.
func PublicTrackingURL(expeditionNumber string) string {
	return "https://www.mondialrelay.fr/suivi-de-colis/?numeroExpedition=" + expeditionNumber
}

// Label holds the download URLs of one expedition's PDF label in the
// three formats the carrier produces.
type Label struct {
	ExpeditionNumber string
	URLA4            string
	URLA5            string
	URL10x15         string
}

// LabelFormats lists the supported label formats in their canonical
// spelling.
var LabelFormats = []string{"A4", "A5", "10x15"}

// URLByFormat returns the download URL for a format. The lookup is
// case-insensitive; an unsupported format yields ErrUnknownLabelFormat.
func (l *Label) URLByFormat(format string) (string, error) {
	switch strings.ToUpper(format) {
	case "A4":
		return l.URLA4, nil
	case "A5":
		return l.URLA5, nil
	case "10X15":
		return l.URL10x15, nil
	default:
		return "", fmt.Errorf("%w: %s (supported: A4, A5, 10x15)", ErrUnknownLabelFormat, format)
	}
}

// AllURLs returns every format with its download URL.
func (l *Label) AllURLs() map[string]string {
	return map[string]string{
		"A4":    l.URLA4,
		"A5":    l.URLA5,
		"10x15": l.URL10x15,
	}
}

// ExpeditionWithLabel is an expedition created together with its label.
type ExpeditionWithLabel struct {
	ExpeditionNumber string
	Label            Label
}

// TrackingURL returns the carrier's public tracking page.
func (e *ExpeditionWithLabel) TrackingURL() string {
	return PublicTrackingURL(e.ExpeditionNumber)
}

// LabelURL returns the label download URL for a format.
func (e *ExpeditionWithLabel) LabelURL(format string) (string, error) {
	return e.Label.URLByFormat(format)
}

// LabelBatch is a single PDF regrouping the labels of several
// expeditions.
type LabelBatch struct {
	ExpeditionNumbers []string
	PDFURLA4          string
	PDFURLA5          string
	PDFURL10x15       string
}

// URLByFormat returns the batch PDF URL for a format, case-insensitive.
func (b *LabelBatch) URLByFormat(format string) (string, error) {
	switch strings.ToUpper(format) {
	case "A4":
		return b.PDFURLA4, nil
	case "A5":
		return b.PDFURLA5, nil
	case "10X15":
		return b.PDFURL10x15, nil
	default:
		return "", fmt.Errorf("%w: %s (supported: A4, A5, 10x15)", ErrUnknownLabelFormat, format)
	}
}

// Contains reports whether the batch includes an expedition number.
func (b *LabelBatch) Contains(expeditionNumber string) bool {
	for _, n := range b.ExpeditionNumbers {
		if n == expeditionNumber {
			return true
		}
	}
	return false
}

// TrackingEvent is one scan in a package's tracing history. Date and
// Time keep the carrier's raw "DDMMYYYY" and "HHMM" encodings.
type TrackingEvent struct {
	Label       string
	Date        string
	Time        string
	Location    string
	RelayNumber string
	Country     string
}

// Timestamp parses the carrier date and time encoding. ok is false when
// either part is missing or malformed.
func (e *TrackingEvent) Timestamp() (ts time.Time, ok bool) {
	if e.Date == "" || e.Time == "" {
		return time.Time{}, false
	}
	ts, err := time.Parse("02012006 1504", e.Date+" "+e.Time)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// FormattedDateTime renders the event moment as "dd/mm/yyyy hh:mm", or
// empty when the carrier encoding cannot be parsed.
func (e *TrackingEvent) FormattedDateTime() string {
	ts, ok := e.Timestamp()
	if !ok {
		return ""
	}
	return ts.Format("02/01/2006 15:04")
}

var deliveredKeywords = []string{"livré", "delivered", "remis", "distribué"}

// IsDelivered reports whether the event label describes a delivery.
func (e *TrackingEvent) IsDelivered() bool {
	return containsAnyFold(e.Label, deliveredKeywords)
}

// IsInTransit reports whether the event label describes transport
// between sites.
func (e *TrackingEvent) IsInTransit() bool {
	return containsAnyFold(e.Label, []string{"transit", "acheminement", "transport", "expédié"})
}

// IsAtRelay reports whether the event places the package at a relay
// point.
func (e *TrackingEvent) IsAtRelay() bool {
	if containsAnyFold(e.Label, []string{"point relais", "relay", "disponible", "arrivé"}) {
		return true
	}
	return e.RelayNumber != ""
}

func containsAnyFold(s string, keywords []string) bool {
	lower := strings.ToLower(s)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// TrackingInfo is the tracing state of one expedition. Status keeps the
// raw STAT string the carrier returned; Events are ordered newest first.
type TrackingInfo struct {
	Status      string
	StatusLabel string
	RelayName   string
	RelayNumber string
	Events      []TrackingEvent
}

// IsDelivered reports delivery either through the STAT code or through
// the most recent event label.
func (t *TrackingInfo) IsDelivered() bool {
	switch t.Status {
	case "80", "81", "82", "83":
		return true
	}
	if latest := t.LatestEvent(); latest != nil {
		return latest.IsDelivered()
	}
	return false
}

// IsInTransit reports whether the package is still moving.
func (t *TrackingInfo) IsInTransit() bool {
	return t.Status == "0" && !t.IsDelivered()
}

// LatestEvent returns the most recent event, or nil without history.
func (t *TrackingInfo) LatestEvent() *TrackingEvent {
	if len(t.Events) == 0 {
		return nil
	}
	return &t.Events[0]
}

// DeliveryEvent returns the event that recorded the delivery, or nil.
func (t *TrackingInfo) DeliveryEvent() *TrackingEvent {
	for i := range t.Events {
		if t.Events[i].IsDelivered() {
			return &t.Events[i]
		}
	}
	return nil
}

// StatusMessage returns a short French description of the tracing
// status, falling back to the carrier's own label.
func (t *TrackingInfo) StatusMessage() string {
	switch t.Status {
	case "0":
		return "Colis en cours de traitement"
	case "80":
		return "Colis livré"
	case "81":
		return "Colis livré avec signature"
	case "82":
		return "Colis livré sans signature"
	case "83":
		return "Colis livré avec anomalie"
	default:
		return t.StatusLabel
	}
}

// HasRelay reports whether the package is associated with a relay point.
func (t *TrackingInfo) HasRelay() bool {
	return t.RelayNumber != ""
}

// MultiParcelExpedition groups several parcels shipped together to the
// same recipient. Relay delivery modes only accept a single parcel.
type MultiParcelExpedition struct {
	Sender              Address
	Recipient           Address
	DeliveryMode        DeliveryMode
	RelayNumber         string
	RelayCountry        string
	OrderNumber         string
	CustomerReference   string
	DeliveryInstruction string
	CODAmount           float64
	CODCurrency         string
	InsuranceLevel      string
	Parcels             []Parcel
}

// MaxParcels is the carrier limit on parcels per expedition.
const MaxParcels = 10

// AddParcel appends a parcel to the expedition.
func (m *MultiParcelExpedition) AddParcel(p Parcel) *MultiParcelExpedition {
	m.Parcels = append(m.Parcels, p)
	return m
}

// TotalWeightGrams sums the actual weights of every parcel.
func (m *MultiParcelExpedition) TotalWeightGrams() int {
	total := 0
	for i := range m.Parcels {
		total += m.Parcels[i].WeightGrams
	}
	return total
}

// TotalBillableWeightGrams sums the billable weights of every parcel.
func (m *MultiParcelExpedition) TotalBillableWeightGrams() int {
	total := 0
	for i := range m.Parcels {
		total += m.Parcels[i].BillableWeightGrams()
	}
	return total
}

// TotalValue sums the declared values of every parcel.
func (m *MultiParcelExpedition) TotalValue() float64 {
	total := 0.0
	for i := range m.Parcels {
		total += m.Parcels[i].Value
	}
	return total
}

// Validate returns the list of constraint violations for the whole
// expedition, each parcel issue prefixed with its position.
func (m *MultiParcelExpedition) Validate() []string {
	if len(m.Parcels) == 0 {
		return []string{"Au moins un colis est requis"}
	}

	var errs []string
	if len(m.Parcels) > MaxParcels {
		errs = append(errs, fmt.Sprintf("Maximum %d colis par expédition", MaxParcels))
	}
	for i := range m.Parcels {
		for _, err := range m.Parcels[i].Validate() {
			errs = append(errs, fmt.Sprintf("Colis %d: %s", i+1, err))
		}
	}
	if m.TotalWeightGrams() > MaxWeightGrams {
		errs = append(errs, "Poids total maximum dépassé (30kg)")
	}
	if len(m.Parcels) > 1 && m.DeliveryMode.RequiresRelay() {
		errs = append(errs, "Les expéditions multi-colis ne sont pas autorisées en Point Relais")
	}
	if m.DeliveryMode.RequiresRelay() && m.RelayNumber == "" {
		errs = append(errs, "Numéro de point relais requis pour ce mode de livraison")
	}
	return errs
}

// ToExpeditionRequest flattens the aggregate into a single creation
// request: the carrier books one expedition per call, so the weight is
// the sum of the parcel weights and the declared value their total.
func (m *MultiParcelExpedition) ToExpeditionRequest() *ExpeditionRequest {
	relayCountry := m.RelayCountry
	if m.DeliveryMode.RequiresRelay() && relayCountry == "" {
		relayCountry = "FR"
	}

	req := &ExpeditionRequest{
		DeliveryMode:        m.DeliveryMode,
		WeightGrams:         m.TotalWeightGrams(),
		OrderNumber:         m.OrderNumber,
		CustomerReference:   m.CustomerReference,
		Sender:              m.Sender,
		Recipient:           m.Recipient,
		RelayNumber:         m.RelayNumber,
		RelayCountry:        relayCountry,
		PackageCount:        len(m.Parcels),
		CODAmount:           m.CODAmount,
		CODCurrency:         m.CODCurrency,
		DeclaredValue:       m.TotalValue(),
		InsuranceLevel:      m.InsuranceLevel,
		DeliveryInstruction: m.DeliveryInstruction,
	}
	if len(m.Parcels) > 0 {
		req.ArticlesDescription = m.Parcels[0].Content
	}
	return req
}
