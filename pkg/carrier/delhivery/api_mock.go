package delhivery

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

	OnGenerateToken func(ctx context.Context) (*TokenResponse, error)
	OnGetCharges    func(ctx context.Context, token string, req *ChargesRequest) (*ChargesResponse, error)
	OnCreateJob     func(ctx context.Context, token string, req *CreateShipmentRequest) (*CreateJobResponse, error)
	OnGetJob        func(ctx context.Context, token string, jobID string) (*JobStatusResponse, error)
	OnGetLabel      func(ctx context.Context, token string, awb string) (*LabelResponse, error)
	OnTrackShipment func(ctx context.Context, token string, lrNumber string) (*TrackingResponse, error)
}

// NewMockAPIClient creates a new mock API client with default behavior.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{}
}

// GenerateToken returns a mock JWT.
func (m *MockAPIClient) GenerateToken(ctx context.Context) (*TokenResponse, error) {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}

	if m.SimulateErrors {
		return nil, &APIError{StatusCode: 500, Message: "Simulated API error"}
	}

	if m.OnGenerateToken != nil {
		return m.OnGenerateToken(ctx)
	}

	return &TokenResponse{JWT: "mock-jwt-" + uuid.New().String()[:8]}, nil
}

// GetCharges returns a mock shipping charge.
func (m *MockAPIClient) GetCharges(ctx context.Context, token string, req *ChargesRequest) (*ChargesResponse, error) {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}

	if m.SimulateErrors {
		return nil, &APIError{StatusCode: 500, Message: "Simulated API error"}
	}

	if m.OnGetCharges != nil {
		return m.OnGetCharges(ctx, token, req)
	}

	return &ChargesResponse{TotalAmount: 45.0 + 0.04*float64(req.WeightGrams)}, nil
}

// CreateJob accepts a mock shipment job.
func (m *MockAPIClient) CreateJob(ctx context.Context, token string, req *CreateShipmentRequest) (*CreateJobResponse, error) {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}

	if m.SimulateErrors {
		return nil, &APIError{StatusCode: 500, Message: "Simulated API error"}
	}

	if m.OnCreateJob != nil {
		return m.OnCreateJob(ctx, token, req)
	}

	return &CreateJobResponse{JobID: "job-" + uuid.New().String()[:8]}, nil
}

// GetJob reports a mock job as complete immediately.
func (m *MockAPIClient) GetJob(ctx context.Context, token string, jobID string) (*JobStatusResponse, error) {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}

	if m.SimulateErrors {
		return nil, &APIError{StatusCode: 500, Message: "Simulated API error"}
	}

	if m.OnGetJob != nil {
		return m.OnGetJob(ctx, token, jobID)
	}

	now := time.Now().UnixNano()
	return &JobStatusResponse{
		Status: JobStatus{
			Type: "Complete",
			Value: JobResult{
				LRNumber:      fmt.Sprintf("LR%010d", now%10000000000),
				MasterWaybill: fmt.Sprintf("%012d", now%1000000000000),
			},
		},
	}, nil
}

// GetLabel returns a mock base64 label.
func (m *MockAPIClient) GetLabel(ctx context.Context, token string, awb string) (*LabelResponse, error) {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}

	if m.SimulateErrors {
		return nil, &APIError{StatusCode: 500, Message: "Simulated API error"}
	}

	if m.OnGetLabel != nil {
		return m.OnGetLabel(ctx, token, awb)
	}

	return &LabelResponse{
		Data: base64.StdEncoding.EncodeToString([]byte("mock label for " + awb)),
	}, nil
}

// TrackShipment returns a mock tracking status.
func (m *MockAPIClient) TrackShipment(ctx context.Context, token string, lrNumber string) (*TrackingResponse, error) {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}

	if m.SimulateErrors {
		return nil, &APIError{StatusCode: 500, Message: "Simulated API error"}
	}

	if m.OnTrackShipment != nil {
		return m.OnTrackShipment(ctx, token, lrNumber)
	}

	var resp TrackingResponse
	resp.Data.Status = "In Transit"
	return &resp, nil
}

var _ APIClient = (*MockAPIClient)(nil)
