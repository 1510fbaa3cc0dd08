package aramex_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/nonalabs/shipbridge/pkg/carrier"
	"github.com/nonalabs/shipbridge/pkg/carrier/aramex"
)

func newTestClient(mockClient *aramex.MockAPIClient) *aramex.Client {
	logger := otelzap.New(zap.NewNop())
	return aramex.NewWithAPIClient(
		aramex.Config{AccountNumber: "12345"},
		mockClient,
		logger,
		nil,
	)
}

func quoteRequest() *carrier.QuoteRequest {
	return &carrier.QuoteRequest{
		PickupAddress: carrier.Address{
			Line1:       "12 MG Road",
			City:        "Bengaluru",
			Pincode:     "560001",
			Country:     "India",
			CountryCode: "IN",
		},
		DeliveryAddress: carrier.Address{
			Line1:       "Sheikh Zayed Road",
			City:        "Dubai",
			Pincode:     "00000",
			Country:     "United Arab Emirates",
			CountryCode: "AE",
		},
		Parcels: []carrier.Parcel{
			{Length: 20, Width: 15, Height: 10, Weight: 2, Count: 1},
		},
	}
}

func TestNew_Disabled(t *testing.T) {
	logger := otelzap.New(zap.NewNop())
	_, err := aramex.New(aramex.Config{Enabled: false}, logger, nil)
	assert.True(t, errors.Is(err, carrier.ErrCarrierDisabled))
}

func TestNew_MissingCredentials(t *testing.T) {
	logger := otelzap.New(zap.NewNop())
	_, err := aramex.New(aramex.Config{Enabled: true}, logger, nil)
	assert.True(t, errors.Is(err, carrier.ErrMissingCredentials))
}

func TestNew_MockDoesNotNeedCredentials(t *testing.T) {
	logger := otelzap.New(zap.NewNop())
	client, err := aramex.New(aramex.Config{Enabled: true, UseMock: true}, logger, nil)
	require.NoError(t, err)
	assert.Equal(t, "Aramex", client.Name())
	assert.Equal(t, carrier.CoverageInternational, client.Coverage())
}

func TestClient_Quote_Success(t *testing.T) {
	mockAPI := aramex.NewMockAPIClient()
	client := newTestClient(mockAPI)

	quotes, err := client.Quote(context.Background(), quoteRequest())

	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, "Aramex", quotes[0].Carrier)
	assert.Equal(t, "PPX", quotes[0].ServiceID)
	assert.Equal(t, 2.0, quotes[0].RealWeight)
	assert.Greater(t, quotes[0].TotalPrice, 0.0)
}

func TestClient_Quote_APIError(t *testing.T) {
	mockAPI := aramex.NewMockAPIClient()
	mockAPI.SimulateErrors = true
	client := newTestClient(mockAPI)

	_, err := client.Quote(context.Background(), quoteRequest())

	assert.Error(t, err)
}

func TestClient_Quote_CustomMock(t *testing.T) {
	mockAPI := aramex.NewMockAPIClient()
	mockAPI.OnCalculateRate = func(ctx context.Context, req *aramex.RateRequest) (*aramex.RateResponse, error) {
		assert.Equal(t, "EXP", req.ShipmentDetails.ProductGroup)
		assert.Equal(t, "P", req.ShipmentDetails.PaymentType)
		return &aramex.RateResponse{
			TotalAmount: aramex.Money{CurrencyCode: "AED", Value: 210.75},
		}, nil
	}
	client := newTestClient(mockAPI)

	quotes, err := client.Quote(context.Background(), quoteRequest())

	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, 210.75, quotes[0].TotalPrice)
	assert.Equal(t, "AED", quotes[0].Currency)
}

func TestClient_Book_Success(t *testing.T) {
	mockAPI := aramex.NewMockAPIClient()
	client := newTestClient(mockAPI)

	req := &carrier.BookingRequest{
		PickupAddress:   quoteRequest().PickupAddress,
		DeliveryAddress: quoteRequest().DeliveryAddress,
		PickupContact:   carrier.Contact{FirstName: "Asha", LastName: "Rao", Phone: "+919812345678"},
		DeliveryContact: carrier.Contact{FirstName: "Omar", LastName: "Hadid", Phone: "+971501234567"},
		Parcels:         []carrier.Parcel{{Weight: 2, Count: 1}},
		Service:         carrier.ServiceQuote{Carrier: "Aramex", ServiceID: "PPX", ServiceName: "Priority Parcel Express"},
		Reference:       "SHIP-00042",
	}

	result, err := client.Book(context.Background(), req)

	require.NoError(t, err)
	assert.NotEmpty(t, result.ShipmentID)
	assert.Equal(t, result.ShipmentID, result.AWBNumber, "Aramex shipment id doubles as AWB")
	assert.Equal(t, "Aramex", result.Carrier)
	assert.NotEmpty(t, result.LabelURL)
	assert.Contains(t, result.TrackingURL, result.AWBNumber)
}

func TestClient_Book_APIError(t *testing.T) {
	mockAPI := aramex.NewMockAPIClient()
	mockAPI.SimulateErrors = true
	client := newTestClient(mockAPI)

	_, err := client.Book(context.Background(), &carrier.BookingRequest{Reference: "SHIP-00042"})

	assert.True(t, errors.Is(err, carrier.ErrBookingRejected))
}

func TestClient_Label_Success(t *testing.T) {
	mockAPI := aramex.NewMockAPIClient()
	client := newTestClient(mockAPI)

	label, err := client.Label(context.Background(), &carrier.LabelRequest{AWBNumber: "40000001234"})

	require.NoError(t, err)
	assert.Contains(t, label.URL, "40000001234")
}

func TestClient_Track_Success(t *testing.T) {
	mockAPI := aramex.NewMockAPIClient()
	client := newTestClient(mockAPI)

	status, err := client.Track(context.Background(), &carrier.TrackingRequest{AWBNumber: "40000001234"})

	require.NoError(t, err)
	assert.Equal(t, carrier.StateInProgress, status.State)
	assert.Equal(t, "40000001234", status.AWBNumber)
	assert.Contains(t, status.TrackingURL, "ShipmentNumber=40000001234")
}

func TestClient_Track_Delivered(t *testing.T) {
	mockAPI := aramex.NewMockAPIClient()
	mockAPI.OnTrackShipments = func(ctx context.Context, req *aramex.TrackRequest) (*aramex.TrackResponse, error) {
		return &aramex.TrackResponse{
			TrackingResults: []aramex.TrackingResult{
				{
					Key: req.Shipments[0],
					Value: []aramex.TrackingUpdate{
						{UpdateCode: "SH005", UpdateDescription: "Delivered to consignee"},
					},
				},
			},
		}, nil
	}
	client := newTestClient(mockAPI)

	status, err := client.Track(context.Background(), &carrier.TrackingRequest{AWBNumber: "40000001234"})

	require.NoError(t, err)
	assert.Equal(t, carrier.StateDelivered, status.State)
	assert.Equal(t, "Delivered to consignee", status.Detail)
}

func TestClient_Track_NoResults(t *testing.T) {
	mockAPI := aramex.NewMockAPIClient()
	mockAPI.OnTrackShipments = func(ctx context.Context, req *aramex.TrackRequest) (*aramex.TrackResponse, error) {
		return &aramex.TrackResponse{}, nil
	}
	client := newTestClient(mockAPI)

	_, err := client.Track(context.Background(), &carrier.TrackingRequest{AWBNumber: "40000001234"})

	assert.True(t, errors.Is(err, carrier.ErrTrackingNotFound))
}
