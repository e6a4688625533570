// Package rest implements expedition creation over the carrier's API
// V2, an XML-over-HTTP service that replaces the signed SOAP calls for
// shipment creation.
package rest

import (
	"context"
	"encoding/xml"
)

// APIClient abstracts the API V2 transport so the client logic can be
// tested against a mock.
type APIClient interface {
	// CreateShipment posts a ShipmentCreationRequest to /shipment.
	CreateShipment(ctx context.Context, req *ShipmentCreationRequest) (*ShipmentCreationResponse, error)
}

// RawRecorder is implemented by transports that retain the last raw
// exchange for diagnostics.
type RawRecorder interface {
	LastRequest() string
	LastResponse() string
}

// ============================================================================
// Request Payloads
// ============================================================================

// ShipmentCreationRequest is the API V2 shipment creation document.
// Element order follows the carrier schema.
type ShipmentCreationRequest struct {
	XMLName       xml.Name      `xml:"http://www.example.org/Request ShipmentCreationRequest"`
	Context       Context       `xml:"Context"`
	OutputOptions OutputOptions `xml:"OutputOptions"`
	Shipments     []Shipment    `xml:"ShipmentsList>Shipment"`
}

// Context carries the API V2 credentials. Unlike the SOAP services,
// authentication travels in the document itself rather than in an MD5
// security hash.
type Context struct {
	Login      string `xml:"Login"`
	Password   string `xml:"Password"`
	CustomerID string `xml:"CustomerId"`
	Culture    string `xml:"Culture"`
	VersionAPI string `xml:"VersionAPI"`
}

// OutputOptions selects the label rendering. The carrier expects
// OutputType "PdfUrl" to get a downloadable link back.
type OutputOptions struct {
	OutputFormat string `xml:"OutputFormat"`
	OutputType   string `xml:"OutputType"`
}

// Shipment is one shipment entry of the creation request.
type Shipment struct {
	OrderNo             string         `xml:"OrderNo"`
	CustomerNo          string         `xml:"CustomerNo"`
	ParcelCount         int            `xml:"ParcelCount"`
	DeliveryInstruction string         `xml:"DeliveryInstruction"`
	DeliveryMode        DeliveryMode   `xml:"DeliveryMode"`
	CollectionMode      CollectionMode `xml:"CollectionMode"`
	Options             []Option       `xml:"Option"`
	Parcels             []Parcel       `xml:"Parcels>Parcel"`
	Sender              AddressNode    `xml:"Sender"`
	Recipient           AddressNode    `xml:"Recipient"`
}

// DeliveryMode selects how the parcel reaches the recipient. Location
// is the relay country code directly followed by the relay number, and
// is only set for relay modes.
type DeliveryMode struct {
	Mode     string `xml:"Mode,attr"`
	Location string `xml:"Location,attr,omitempty"`
}

// CollectionMode selects how the carrier takes charge of the parcel.
type CollectionMode struct {
	Mode string `xml:"Mode,attr"`
}

// Option is a Key/Value shipment option: CRT for cash on delivery, ASS
// for insurance, LNG for the recipient language.
type Option struct {
	Key   string `xml:"Key,attr"`
	Value string `xml:"Value,attr"`
}

// Parcel describes one package of the shipment. Weight is in grams,
// with the unit spelled out the way the schema wants it.
type Parcel struct {
	Content string       `xml:"Content"`
	Weight  ParcelWeight `xml:"Weight"`
}

// ParcelWeight is the Value/Unit weight attribute pair.
type ParcelWeight struct {
	Value int    `xml:"Value,attr"`
	Unit  string `xml:"Unit,attr"`
}

// AddressNode wraps an Address for the Sender and Recipient elements.
type AddressNode struct {
	Address AddressDetails `xml:"Address"`
}

// AddressDetails is the flattened carrier address form. The schema
// wants every element present, empty or not, in this exact order.
type AddressDetails struct {
	Title       string `xml:"Title"`
	Firstname   string `xml:"Firstname"`
	Lastname    string `xml:"Lastname"`
	Streetname  string `xml:"Streetname"`
	HouseNo     string `xml:"HouseNo"`
	CountryCode string `xml:"CountryCode"`
	PostCode    string `xml:"PostCode"`
	City        string `xml:"City"`
	AddressAdd1 string `xml:"AddressAdd1"`
	AddressAdd2 string `xml:"AddressAdd2"`
	AddressAdd3 string `xml:"AddressAdd3"`
	PhoneNo     string `xml:"PhoneNo"`
	MobileNo    string `xml:"MobileNo"`
	Email       string `xml:"Email"`
}

// ============================================================================
// Response Payloads
// ============================================================================

// ShipmentCreationResponse is the API V2 answer. Any Status entry means
// the whole request was rejected; on success the created shipments come
// back with their rendered labels.
type ShipmentCreationResponse struct {
	Statuses  []Status         `xml:"StatusList>Status"`
	Shipments []ShipmentResult `xml:"ShipmentsList>Shipment"`
}

// Status is one rejection message with its code and severity level.
type Status struct {
	Code    string `xml:"Code,attr"`
	Message string `xml:"Message,attr"`
	Level   string `xml:"Level,attr"`
}

// ShipmentResult is one created shipment with its labels and barcodes.
type ShipmentResult struct {
	Labels   []LabelResult  `xml:"LabelList>Label"`
	Barcodes []BarcodeGroup `xml:"LabelList>Barcodes"`
}

// LabelResult is one rendered label. Output holds the PDF link and the
// raw label values carry the expedition metadata, keyed by dotted
// carrier names such as MR.Expedition.NumeroExpedition.
type LabelResult struct {
	Output string       `xml:"Output"`
	Values []LabelValue `xml:"RawContent>LabelValues"`
}

// LabelValue is one Key/Value pair of the raw label content.
type LabelValue struct {
	Key   string `xml:"Key,attr"`
	Value string `xml:"Value,attr"`
}

// BarcodeGroup carries the barcode of one parcel.
type BarcodeGroup struct {
	Barcode BarcodeValue `xml:"Barcodes>Barcode"`
}

// BarcodeValue is one barcode entry.
type BarcodeValue struct {
	Value string `xml:"Value,attr"`
}

// expeditionNumberKey is the raw label value holding the expedition
// number of a created shipment.
const expeditionNumberKey = "MR.Expedition.NumeroExpedition"

// ExpeditionNumber extracts the expedition number from the raw label
// values, empty when absent.
func (l *LabelResult) ExpeditionNumber() string {
	for _, v := range l.Values {
		if v.Key == expeditionNumberKey {
			return v.Value
		}
	}
	return ""
}
