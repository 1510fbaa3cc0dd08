package delhivery_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/nonalabs/shipbridge/pkg/carrier"
	"github.com/nonalabs/shipbridge/pkg/carrier/delhivery"
)

type fakeTokenStore struct {
	mu    sync.Mutex
	token string
	saves []string
}

func (s *fakeTokenStore) LoadToken(ctx context.Context, carrierName string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *fakeTokenStore) SaveToken(ctx context.Context, carrierName string, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.saves = append(s.saves, token)
	return nil
}

func newTestClient(mockClient *delhivery.MockAPIClient, store delhivery.TokenStore) *delhivery.Client {
	logger := otelzap.New(zap.NewNop())
	cfg := delhivery.Config{
		TrackingPageURL: "https://www.delhivery.com/track/package",
		PollInterval:    time.Millisecond,
	}
	return delhivery.NewWithAPIClient(cfg, mockClient, store, logger, nil)
}

func bookingRequest() *carrier.BookingRequest {
	return &carrier.BookingRequest{
		PickupAddress: carrier.Address{
			Title:   "Warehouse Bengaluru",
			Line1:   "12 MG Road",
			City:    "Bengaluru",
			State:   "Karnataka",
			Pincode: "560001",
			Country: "India",
		},
		DeliveryAddress: carrier.Address{
			Line1:   "4 Park Street",
			City:    "Kolkata",
			State:   "West Bengal",
			Pincode: "700016",
			Country: "India",
		},
		PickupContact:      carrier.Contact{FirstName: "Asha", LastName: "Rao", Phone: "+919812345678"},
		DeliveryContact:    carrier.Contact{FirstName: "Ravi", LastName: "Sen", Phone: "+919876543210"},
		Parcels:            []carrier.Parcel{{Weight: 1.5, Count: 2}},
		ContentDescription: "Books",
		DeclaredValue:      1200,
		Service:            carrier.ServiceQuote{Carrier: "Delhivery", ServiceName: "Delhivery Express"},
		Reference:          "SHIP-00043",
	}
}

func TestNew_Disabled(t *testing.T) {
	logger := otelzap.New(zap.NewNop())
	_, err := delhivery.New(delhivery.Config{Enabled: false}, nil, logger, nil)
	assert.True(t, errors.Is(err, carrier.ErrCarrierDisabled))
}

func TestNew_MissingCredentials(t *testing.T) {
	logger := otelzap.New(zap.NewNop())
	_, err := delhivery.New(delhivery.Config{Enabled: true}, nil, logger, nil)
	assert.True(t, errors.Is(err, carrier.ErrMissingCredentials))
}

func TestTokenManager_RefreshPersistsToken(t *testing.T) {
	mockAPI := delhivery.NewMockAPIClient()
	store := &fakeTokenStore{}
	client := newTestClient(mockAPI, store)

	token, err := client.Tokens().Refresh(context.Background())

	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, token, store.token)
}

func TestTokenManager_CurrentLoadsPersistedToken(t *testing.T) {
	generated := 0
	mockAPI := delhivery.NewMockAPIClient()
	mockAPI.OnGenerateToken = func(ctx context.Context) (*delhivery.TokenResponse, error) {
		generated++
		return &delhivery.TokenResponse{JWT: "fresh-token"}, nil
	}
	store := &fakeTokenStore{token: "persisted-token"}
	client := newTestClient(mockAPI, store)

	token, err := client.Tokens().Current(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "persisted-token", token)
	assert.Equal(t, 0, generated, "persisted token should be reused without a refresh")
}

func TestTokenManager_CurrentRefreshesWhenEmpty(t *testing.T) {
	mockAPI := delhivery.NewMockAPIClient()
	mockAPI.OnGenerateToken = func(ctx context.Context) (*delhivery.TokenResponse, error) {
		return &delhivery.TokenResponse{JWT: "fresh-token"}, nil
	}
	store := &fakeTokenStore{}
	client := newTestClient(mockAPI, store)

	token, err := client.Tokens().Current(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "fresh-token", token)
}

func TestTokenManager_RefreshOutcomesObserved(t *testing.T) {
	mockAPI := delhivery.NewMockAPIClient()
	client := newTestClient(mockAPI, &fakeTokenStore{})

	var outcomes []string
	client.Tokens().OnRefresh(func(outcome string) {
		outcomes = append(outcomes, outcome)
	})

	_, err := client.Tokens().Refresh(context.Background())
	require.NoError(t, err)

	mockAPI.SimulateErrors = true
	_, err = client.Tokens().Refresh(context.Background())
	require.Error(t, err)

	assert.Equal(t, []string{"success", "failure"}, outcomes)
}

func TestClient_Quote_Success(t *testing.T) {
	mockAPI := delhivery.NewMockAPIClient()
	client := newTestClient(mockAPI, &fakeTokenStore{token: "valid"})

	req := &carrier.QuoteRequest{
		PickupAddress:   carrier.Address{Pincode: "560001", Country: "India"},
		DeliveryAddress: carrier.Address{Pincode: "700016", Country: "India"},
		Parcels:         []carrier.Parcel{{Weight: 2, Count: 1}},
	}

	quotes, err := client.Quote(context.Background(), req)

	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, "Delhivery", quotes[0].Carrier)
	assert.Equal(t, "INR", quotes[0].Currency)
	assert.Greater(t, quotes[0].TotalPrice, 0.0)
}

func TestClient_Quote_WeightConvertedToGrams(t *testing.T) {
	mockAPI := delhivery.NewMockAPIClient()
	mockAPI.OnGetCharges = func(ctx context.Context, token string, req *delhivery.ChargesRequest) (*delhivery.ChargesResponse, error) {
		assert.Equal(t, 2500, req.WeightGrams)
		return &delhivery.ChargesResponse{TotalAmount: 99.0}, nil
	}
	client := newTestClient(mockAPI, &fakeTokenStore{token: "valid"})

	req := &carrier.QuoteRequest{
		PickupAddress:   carrier.Address{Pincode: "560001"},
		DeliveryAddress: carrier.Address{Pincode: "700016"},
		Parcels:         []carrier.Parcel{{Weight: 2.5, Count: 1}},
	}

	quotes, err := client.Quote(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, 99.0, quotes[0].TotalPrice)
}

func TestClient_Book_Success(t *testing.T) {
	mockAPI := delhivery.NewMockAPIClient()
	client := newTestClient(mockAPI, &fakeTokenStore{token: "valid"})

	result, err := client.Book(context.Background(), bookingRequest())

	require.NoError(t, err)
	assert.NotEmpty(t, result.ShipmentID, "LR number expected")
	assert.NotEmpty(t, result.AWBNumber, "master waybill expected")
	assert.Equal(t, "Delhivery", result.Carrier)
	assert.Contains(t, result.TrackingURL, result.AWBNumber)
}

func TestClient_Book_PollsUntilComplete(t *testing.T) {
	polls := 0
	mockAPI := delhivery.NewMockAPIClient()
	mockAPI.OnGetJob = func(ctx context.Context, token string, jobID string) (*delhivery.JobStatusResponse, error) {
		polls++
		if polls < 3 {
			return &delhivery.JobStatusResponse{Status: delhivery.JobStatus{Type: "Pending"}}, nil
		}
		return &delhivery.JobStatusResponse{
			Status: delhivery.JobStatus{
				Type:  "Complete",
				Value: delhivery.JobResult{LRNumber: "LR0000000042", MasterWaybill: "000000000042"},
			},
		}, nil
	}
	client := newTestClient(mockAPI, &fakeTokenStore{token: "valid"})

	result, err := client.Book(context.Background(), bookingRequest())

	require.NoError(t, err)
	assert.Equal(t, 3, polls)
	assert.Equal(t, "LR0000000042", result.ShipmentID)
	assert.Equal(t, "000000000042", result.AWBNumber)
}

func TestClient_Book_PayloadMatchesContract(t *testing.T) {
	mockAPI := delhivery.NewMockAPIClient()
	mockAPI.OnCreateJob = func(ctx context.Context, token string, req *delhivery.CreateShipmentRequest) (*delhivery.CreateJobResponse, error) {
		assert.Equal(t, "Prepaid", req.DeliveryMode)
		assert.True(t, req.ROVInsurance)
		assert.Equal(t, 3000, req.WeightGrams)
		assert.Equal(t, "Warehouse Bengaluru", req.PickupLocation.Name)
		assert.Equal(t, "Ravi Sen", req.DropoffLocation.Consignee)
		require.Len(t, req.Suborders, 1)
		assert.Equal(t, 2, req.Suborders[0].Count)
		assert.Equal(t, "Books", req.Suborders[0].Description)
		return &delhivery.CreateJobResponse{JobID: "job-1"}, nil
	}
	client := newTestClient(mockAPI, &fakeTokenStore{token: "valid"})

	_, err := client.Book(context.Background(), bookingRequest())

	require.NoError(t, err)
}

func TestClient_RefreshOn401ThenRetry(t *testing.T) {
	calls := 0
	refreshes := 0
	mockAPI := delhivery.NewMockAPIClient()
	mockAPI.OnGenerateToken = func(ctx context.Context) (*delhivery.TokenResponse, error) {
		refreshes++
		return &delhivery.TokenResponse{JWT: "fresh-token"}, nil
	}
	mockAPI.OnGetLabel = func(ctx context.Context, token string, awb string) (*delhivery.LabelResponse, error) {
		calls++
		if token != "fresh-token" {
			return nil, &delhivery.APIError{StatusCode: 401, Message: "token expired"}
		}
		return &delhivery.LabelResponse{Data: "bGFiZWw="}, nil
	}
	client := newTestClient(mockAPI, &fakeTokenStore{token: "stale-token"})

	label, err := client.Label(context.Background(), &carrier.LabelRequest{AWBNumber: "000000000042"})

	require.NoError(t, err)
	assert.Equal(t, "bGFiZWw=", label.Data)
	assert.Equal(t, 2, calls, "original call retried once after refresh")
	assert.Equal(t, 1, refreshes)
}

func TestClient_AuthRetryBoundedToThreeAttempts(t *testing.T) {
	calls := 0
	mockAPI := delhivery.NewMockAPIClient()
	mockAPI.OnGetLabel = func(ctx context.Context, token string, awb string) (*delhivery.LabelResponse, error) {
		calls++
		return nil, &delhivery.APIError{StatusCode: 401, Message: "token expired"}
	}
	client := newTestClient(mockAPI, &fakeTokenStore{token: "stale-token"})

	_, err := client.Label(context.Background(), &carrier.LabelRequest{AWBNumber: "000000000042"})

	assert.True(t, errors.Is(err, carrier.ErrAuthorizationFailed))
	assert.Equal(t, 3, calls, "at most three attempts per operation")
}

func TestClient_NonAuthErrorNotRetried(t *testing.T) {
	calls := 0
	mockAPI := delhivery.NewMockAPIClient()
	mockAPI.OnGetLabel = func(ctx context.Context, token string, awb string) (*delhivery.LabelResponse, error) {
		calls++
		return nil, &delhivery.APIError{StatusCode: 500, Message: "internal error"}
	}
	client := newTestClient(mockAPI, &fakeTokenStore{token: "valid"})

	_, err := client.Label(context.Background(), &carrier.LabelRequest{AWBNumber: "000000000042"})

	assert.Error(t, err)
	assert.False(t, errors.Is(err, carrier.ErrAuthorizationFailed))
	assert.Equal(t, 1, calls)
}

func TestClient_Track_Delivered(t *testing.T) {
	mockAPI := delhivery.NewMockAPIClient()
	mockAPI.OnTrackShipment = func(ctx context.Context, token string, lrNumber string) (*delhivery.TrackingResponse, error) {
		assert.Equal(t, "LR0000000042", lrNumber)
		var resp delhivery.TrackingResponse
		resp.Data.Status = "Delivered"
		return &resp, nil
	}
	client := newTestClient(mockAPI, &fakeTokenStore{token: "valid"})

	status, err := client.Track(context.Background(), &carrier.TrackingRequest{
		ShipmentID: "LR0000000042",
		AWBNumber:  "000000000042",
	})

	require.NoError(t, err)
	assert.Equal(t, carrier.StateDelivered, status.State)
	assert.Contains(t, status.TrackingURL, "000000000042")
}

func TestClient_Track_RTOMapsToReturned(t *testing.T) {
	mockAPI := delhivery.NewMockAPIClient()
	mockAPI.OnTrackShipment = func(ctx context.Context, token string, lrNumber string) (*delhivery.TrackingResponse, error) {
		var resp delhivery.TrackingResponse
		resp.Data.Status = "RTO Initiated"
		return &resp, nil
	}
	client := newTestClient(mockAPI, &fakeTokenStore{token: "valid"})

	status, err := client.Track(context.Background(), &carrier.TrackingRequest{ShipmentID: "LR0000000042"})

	require.NoError(t, err)
	assert.Equal(t, carrier.StateReturned, status.State)
}
