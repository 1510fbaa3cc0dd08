package aramex

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MockAPIClient is a mock implementation of APIClient for testing.
type MockAPIClient struct {
	SimulateErrors  bool
	SimulateLatency time.Duration

	OnCalculateRate  func(ctx context.Context, req *RateRequest) (*RateResponse, error)
	OnCreateShipment func(ctx context.Context, req *ShipmentRequest) (*ShipmentResponse, error)
	OnPrintLabel     func(ctx context.Context, req *LabelPrintRequest) (*LabelPrintResponse, error)
	OnTrackShipments func(ctx context.Context, req *TrackRequest) (*TrackResponse, error)
}

// NewMockAPIClient creates a new mock API client with default behavior.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{}
}

// CalculateRate returns a mock rate.
func (m *MockAPIClient) CalculateRate(ctx context.Context, req *RateRequest) (*RateResponse, error) {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}

	if m.SimulateErrors {
		return nil, &APIError{Code: "MOCK_ERROR", Message: "Simulated API error"}
	}

	if m.OnCalculateRate != nil {
		return m.OnCalculateRate(ctx, req)
	}

	// Rough per-kg rate so heavier mock shipments cost more.
	amount := 40.0 + 12.5*req.ShipmentDetails.ChargeableWeight.Value

	return &RateResponse{
		HasErrors: false,
		TotalAmount: Money{
			CurrencyCode: "USD",
			Value:        amount,
		},
	}, nil
}

// CreateShipment books a mock shipment.
func (m *MockAPIClient) CreateShipment(ctx context.Context, req *ShipmentRequest) (*ShipmentResponse, error) {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}

	if m.SimulateErrors {
		return nil, &APIError{Code: "MOCK_ERROR", Message: "Simulated API error"}
	}

	if m.OnCreateShipment != nil {
		return m.OnCreateShipment(ctx, req)
	}

	awb := fmt.Sprintf("4%010d", time.Now().UnixNano()%10000000000)

	shipments := make([]ProcessedShipment, 0, len(req.Shipments))
	for _, s := range req.Shipments {
		shipments = append(shipments, ProcessedShipment{
			ID:         awb,
			Reference1: s.Reference1,
			ShipmentLabel: ShipmentLabel{
				LabelURL: fmt.Sprintf("https://labels.aramex.mock/%s.pdf", awb),
			},
		})
	}

	return &ShipmentResponse{
		HasErrors: false,
		Shipments: shipments,
	}, nil
}

// PrintLabel returns a mock label URL.
func (m *MockAPIClient) PrintLabel(ctx context.Context, req *LabelPrintRequest) (*LabelPrintResponse, error) {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}

	if m.SimulateErrors {
		return nil, &APIError{Code: "MOCK_ERROR", Message: "Simulated API error"}
	}

	if m.OnPrintLabel != nil {
		return m.OnPrintLabel(ctx, req)
	}

	return &LabelPrintResponse{
		ShipmentNumber: req.ShipmentNumber,
		ShipmentLabel: ShipmentLabel{
			LabelURL: fmt.Sprintf("https://labels.aramex.mock/%s.pdf", req.ShipmentNumber),
		},
	}, nil
}

// TrackShipments returns mock tracking updates.
func (m *MockAPIClient) TrackShipments(ctx context.Context, req *TrackRequest) (*TrackResponse, error) {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}

	if m.SimulateErrors {
		return nil, &APIError{Code: "MOCK_ERROR", Message: "Simulated API error"}
	}

	if m.OnTrackShipments != nil {
		return m.OnTrackShipments(ctx, req)
	}

	results := make([]TrackingResult, 0, len(req.Shipments))
	for _, awb := range req.Shipments {
		results = append(results, TrackingResult{
			Key: awb,
			Value: []TrackingUpdate{
				{
					UpdateCode:        "SH014",
					UpdateDescription: "Shipment out for delivery",
					UpdateDateTime:    time.Now().Format(time.RFC3339),
					UpdateLocation:    "Dubai, AE",
					Comments:          "mock-" + uuid.New().String()[:8],
				},
			},
		})
	}

	return &TrackResponse{
		HasErrors:       false,
		TrackingResults: results,
	}, nil
}

var _ APIClient = (*MockAPIClient)(nil)
