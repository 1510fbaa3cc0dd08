package letmeship

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MockAPIClient is a mock implementation of APIClient for testing.
type MockAPIClient struct {
	SimulateErrors  bool
	SimulateLatency time.Duration

	OnGetAvailableServices func(ctx context.Context, req *AvailabilityRequest) (*AvailabilityResponse, error)
	OnCreateShipment       func(ctx context.Context, req *ShipmentOrderRequest) (*ShipmentOrderResponse, error)
	OnGetShipment          func(ctx context.Context, shipmentID string) (*ShipmentDetailsResponse, error)
	OnGetDocuments         func(ctx context.Context, shipmentID string, docTypes string) (*DocumentsResponse, error)
	OnGetTracking          func(ctx context.Context, shipmentID string) (*TrackingResponse, error)
}

// NewMockAPIClient creates a new mock API client with default behavior.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{}
}

// GetAvailableServices returns mock services.
func (m *MockAPIClient) GetAvailableServices(ctx context.Context, req *AvailabilityRequest) (*AvailabilityResponse, error) {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}

	if m.SimulateErrors {
		return nil, &APIError{StatusCode: 500, Message: "Simulated API error"}
	}

	if m.OnGetAvailableServices != nil {
		return m.OnGetAvailableServices(ctx, req)
	}

	weight := 0.0
	for _, p := range req.ShipmentDetails.ParcelList {
		weight += p.Weight * float64(p.Quantity)
	}

	return &AvailabilityResponse{
		ServiceList: []Service{
			{
				BaseServiceDetails: BaseServiceDetails{
					ID:      4711,
					Name:    "DHL Express Worldwide",
					Carrier: "DHL",
					PriceInfo: PriceInfo{
						BasePrice:  38.50,
						NetPrice:   42.10,
						TotalPrice: 50.10,
						RealWeight: weight,
						Currency:   "EUR",
					},
				},
			},
			{
				BaseServiceDetails: BaseServiceDetails{
					ID:        4712,
					Name:      "UPS Express Saver",
					Carrier:   "UPS",
					Preferred: true,
					PriceInfo: PriceInfo{
						BasePrice:  33.00,
						NetPrice:   36.80,
						TotalPrice: 43.80,
						RealWeight: weight,
						Currency:   "EUR",
					},
				},
			},
		},
	}, nil
}

// CreateShipment books a mock shipment.
func (m *MockAPIClient) CreateShipment(ctx context.Context, req *ShipmentOrderRequest) (*ShipmentOrderResponse, error) {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}

	if m.SimulateErrors {
		return nil, &APIError{StatusCode: 500, Message: "Simulated API error"}
	}

	if m.OnCreateShipment != nil {
		return m.OnCreateShipment(ctx, req)
	}

	return &ShipmentOrderResponse{
		ShipmentID: "lms-" + uuid.New().String()[:8],
	}, nil
}

// GetShipment returns a mock booked shipment.
func (m *MockAPIClient) GetShipment(ctx context.Context, shipmentID string) (*ShipmentDetailsResponse, error) {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}

	if m.SimulateErrors {
		return nil, &APIError{StatusCode: 500, Message: "Simulated API error"}
	}

	if m.OnGetShipment != nil {
		return m.OnGetShipment(ctx, shipmentID)
	}

	awb := fmt.Sprintf("1Z%010d", time.Now().UnixNano()%10000000000)
	return &ShipmentDetailsResponse{
		ShipmentID: shipmentID,
		TrackingData: TrackingData{
			ParcelList: []TrackedParcel{{AWBNumber: awb}},
		},
		TrackingURL: "https://track.letmeship.mock/" + shipmentID,
	}, nil
}

// GetDocuments returns a mock base64 label document.
func (m *MockAPIClient) GetDocuments(ctx context.Context, shipmentID string, docTypes string) (*DocumentsResponse, error) {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}

	if m.SimulateErrors {
		return nil, &APIError{StatusCode: 500, Message: "Simulated API error"}
	}

	if m.OnGetDocuments != nil {
		return m.OnGetDocuments(ctx, shipmentID, docTypes)
	}

	return &DocumentsResponse{
		ShipmentDocuments: []Document{
			{
				Type: "LABEL",
				Data: base64.StdEncoding.EncodeToString([]byte("mock label for " + shipmentID)),
			},
		},
	}, nil
}

// GetTracking returns a mock tracking status.
func (m *MockAPIClient) GetTracking(ctx context.Context, shipmentID string) (*TrackingResponse, error) {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}

	if m.SimulateErrors {
		return nil, &APIError{StatusCode: 500, Message: "Simulated API error"}
	}

	if m.OnGetTracking != nil {
		return m.OnGetTracking(ctx, shipmentID)
	}

	return &TrackingResponse{
		LMSTrackingStatus: "IN_TRANSIT",
		TrackingURL:       "https://track.letmeship.mock/" + shipmentID,
	}, nil
}

var _ APIClient = (*MockAPIClient)(nil)
