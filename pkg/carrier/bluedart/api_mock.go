package bluedart

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"
)

// MockAPIClient is a mock implementation of APIClient for testing.
type MockAPIClient struct {
	SimulateErrors  bool
	SimulateLatency time.Duration

	OnGenerateWayBill func(ctx context.Context, req *WayBillRequest) (*WayBillResponse, error)
	OnTrackWayBill    func(ctx context.Context, awb string) (*WayBillTrackResponse, error)
}

// NewMockAPIClient creates a new mock API client with default behavior.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{}
}

// GenerateWayBill books a mock shipment.
func (m *MockAPIClient) GenerateWayBill(ctx context.Context, req *WayBillRequest) (*WayBillResponse, error) {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}

	if m.SimulateErrors {
		return nil, &APIError{Code: "MOCK_ERROR", Description: "Simulated API error"}
	}

	if m.OnGenerateWayBill != nil {
		return m.OnGenerateWayBill(ctx, req)
	}

	awb := fmt.Sprintf("69%09d", time.Now().UnixNano()%1000000000)
	return &WayBillResponse{
		AWBNo:           awb,
		AWBPrintContent: base64.StdEncoding.EncodeToString([]byte("mock waybill " + awb)),
	}, nil
}

// TrackWayBill returns a mock tracking status.
func (m *MockAPIClient) TrackWayBill(ctx context.Context, awb string) (*WayBillTrackResponse, error) {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}

	if m.SimulateErrors {
		return nil, &APIError{Code: "MOCK_ERROR", Description: "Simulated API error"}
	}

	if m.OnTrackWayBill != nil {
		return m.OnTrackWayBill(ctx, awb)
	}

	return &WayBillTrackResponse{
		AWBNo:      awb,
		Status:     "Shipment in transit",
		StatusType: "IT",
	}, nil
}

var _ APIClient = (*MockAPIClient)(nil)
