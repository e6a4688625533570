package rest

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MockAPIClient is a mock implementation of APIClient for testing.
// SimulateStatuses, when set, makes every call come back rejected with
// those statuses; SimulateErrors makes every call fail at the transport
// level.
type MockAPIClient struct {
	SimulateErrors   bool
	SimulateLatency  time.Duration
	SimulateStatuses []Status

	OnCreateShipment func(ctx context.Context, req *ShipmentCreationRequest) (*ShipmentCreationResponse, error)
}

// NewMockAPIClient creates a new mock API client with default behavior.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{}
}

// CreateShipment returns a canned created shipment with one label.
func (m *MockAPIClient) CreateShipment(ctx context.Context, req *ShipmentCreationRequest) (*ShipmentCreationResponse, error) {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}
	if m.SimulateErrors {
		return nil, errors.New("simulated API V2 failure")
	}
	if m.OnCreateShipment != nil {
		return m.OnCreateShipment(ctx, req)
	}
	if len(m.SimulateStatuses) > 0 {
		return &ShipmentCreationResponse{Statuses: m.SimulateStatuses}, nil
	}

	number := mockExpeditionNumber()
	mode := "24R"
	if len(req.Shipments) > 0 {
		mode = req.Shipments[0].DeliveryMode.Mode
	}

	return &ShipmentCreationResponse{
		Shipments: []ShipmentResult{
			{
				Labels: []LabelResult{
					{
						Output: "https://connect-api.mondialrelay.com/label/" + number + ".pdf",
						Values: []LabelValue{
							{Key: expeditionNumberKey, Value: number},
							{Key: "MR.Expedition.ModeLivraison", Value: mode},
						},
					},
				},
				Barcodes: []BarcodeGroup{
					{Barcode: BarcodeValue{Value: "%0059" + number + mode + "01"}},
				},
			},
		},
	}, nil
}

// mockExpeditionNumber builds an 8 digit expedition number from a
// random UUID.
func mockExpeditionNumber() string {
	var digits strings.Builder
	for _, r := range uuid.New().String() {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
			if digits.Len() == 8 {
				return digits.String()
			}
		}
	}
	return (digits.String() + "33333333")[:8]
}

var _ APIClient = (*MockAPIClient)(nil)
