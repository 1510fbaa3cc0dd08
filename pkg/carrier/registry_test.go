package carrier_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nonalabs/shipbridge/pkg/carrier"
	"github.com/nonalabs/shipbridge/pkg/carrier/mock"
)

func TestRegistry_Register(t *testing.T) {
	registry := carrier.NewRegistry()

	registry.Register(mock.New("test-carrier", carrier.CoverageDomestic))

	got, err := registry.Get("test-carrier")
	require.NoError(t, err, "carrier should be registered")
	assert.Equal(t, "test-carrier", got.Name())
}

func TestRegistry_Register_Override(t *testing.T) {
	registry := carrier.NewRegistry()

	// Register first carrier
	registry.Register(mock.New("test-carrier", carrier.CoverageDomestic))
	assert.Equal(t, 1, registry.Count())

	// Register again with same name should override
	registry.Register(mock.New("test-carrier", carrier.CoverageInternational))
	assert.Equal(t, 1, registry.Count())

	got, err := registry.Get("test-carrier")
	require.NoError(t, err)
	assert.Equal(t, carrier.CoverageInternational, got.Coverage())
}

func TestRegistry_Get_NotFound(t *testing.T) {
	registry := carrier.NewRegistry()

	_, err := registry.Get("nonexistent")
	assert.Error(t, err, "should return error for unregistered carrier")
	assert.True(t, errors.Is(err, carrier.ErrCarrierNotFound))
}

func TestRegistry_Get_CaseSensitive(t *testing.T) {
	registry := carrier.NewRegistry()

	registry.Register(mock.New("Delhivery", carrier.CoverageDomestic))

	_, err := registry.Get("delhivery")
	assert.True(t, errors.Is(err, carrier.ErrCarrierNotFound))
}

func TestRegistry_All_RegistrationOrder(t *testing.T) {
	registry := carrier.NewRegistry()

	registry.Register(mock.New("carrier-c", carrier.CoverageDomestic))
	registry.Register(mock.New("carrier-a", carrier.CoverageDomestic))
	registry.Register(mock.New("carrier-b", carrier.CoverageInternational))

	all := registry.All()
	require.Len(t, all, 3)
	assert.Equal(t, "carrier-c", all[0].Name())
	assert.Equal(t, "carrier-a", all[1].Name())
	assert.Equal(t, "carrier-b", all[2].Name())
}

func TestRegistry_ByCoverage(t *testing.T) {
	registry := carrier.NewRegistry()

	registry.Register(mock.New("Delhivery", carrier.CoverageDomestic))
	registry.Register(mock.New("Aramex", carrier.CoverageInternational))
	registry.Register(mock.New("Bluedart", carrier.CoverageDomestic))

	domestic := registry.ByCoverage(carrier.CoverageDomestic)
	require.Len(t, domestic, 2)
	assert.Equal(t, "Delhivery", domestic[0].Name())
	assert.Equal(t, "Bluedart", domestic[1].Name())

	international := registry.ByCoverage(carrier.CoverageInternational)
	require.Len(t, international, 1)
	assert.Equal(t, "Aramex", international[0].Name())
}

func TestRegistry_Names(t *testing.T) {
	registry := carrier.NewRegistry()

	registry.Register(mock.New("Delhivery", carrier.CoverageDomestic))
	registry.Register(mock.New("Aramex", carrier.CoverageInternational))

	names := registry.Names()
	assert.Equal(t, []string{"Delhivery", "Aramex"}, names)
}

func TestRegistry_Count(t *testing.T) {
	registry := carrier.NewRegistry()
	assert.Equal(t, 0, registry.Count())

	registry.Register(mock.New("carrier-a", carrier.CoverageDomestic))
	assert.Equal(t, 1, registry.Count())

	registry.Register(mock.New("carrier-b", carrier.CoverageDomestic))
	assert.Equal(t, 2, registry.Count())
}

func quoteRequest() *carrier.QuoteRequest {
	return &carrier.QuoteRequest{
		PickupAddress: carrier.Address{
			Line1:   "12 MG Road",
			City:    "Bengaluru",
			Pincode: "560001",
			Country: "India",
		},
		DeliveryAddress: carrier.Address{
			Line1:   "4 Park Street",
			City:    "Kolkata",
			Pincode: "700016",
			Country: "India",
		},
		Parcels: []carrier.Parcel{{Length: 10, Width: 10, Height: 10, Weight: 5, Count: 1}},
	}
}

func TestQuoteAll(t *testing.T) {
	carriers := []carrier.Carrier{
		mock.New("carrier-a", carrier.CoverageDomestic),
		mock.New("carrier-b", carrier.CoverageDomestic),
	}

	quotes, outcomes := carrier.QuoteAll(context.Background(), carriers, quoteRequest())

	require.Len(t, outcomes, 2)
	for _, o := range outcomes {
		assert.NoError(t, o.Err, "no errors from mock carriers")
	}
	assert.Len(t, quotes, 4, "two services per mock carrier")
}

func TestQuoteAll_SortedByTotalPrice(t *testing.T) {
	expensive := mock.New("expensive", carrier.CoverageDomestic)
	expensive.Quotes = []carrier.ServiceQuote{
		{Carrier: "expensive", ServiceID: "exp-1", TotalPrice: 120.50, Currency: "INR"},
	}
	cheap := mock.New("cheap", carrier.CoverageDomestic)
	cheap.Quotes = []carrier.ServiceQuote{
		{Carrier: "cheap", ServiceID: "cheap-1", TotalPrice: 75.00, Currency: "INR"},
	}

	quotes, _ := carrier.QuoteAll(context.Background(), []carrier.Carrier{expensive, cheap}, quoteRequest())

	require.Len(t, quotes, 2)
	assert.Equal(t, 75.00, quotes[0].TotalPrice)
	assert.Equal(t, 120.50, quotes[1].TotalPrice)
}

func TestQuoteAll_TiesKeepCarrierOrder(t *testing.T) {
	first := mock.New("first", carrier.CoverageDomestic)
	first.Quotes = []carrier.ServiceQuote{
		{Carrier: "first", ServiceID: "f-1", TotalPrice: 50.00},
	}
	second := mock.New("second", carrier.CoverageDomestic)
	second.Quotes = []carrier.ServiceQuote{
		{Carrier: "second", ServiceID: "s-1", TotalPrice: 50.00},
	}

	quotes, _ := carrier.QuoteAll(context.Background(), []carrier.Carrier{first, second}, quoteRequest())

	require.Len(t, quotes, 2)
	assert.Equal(t, "first", quotes[0].Carrier)
	assert.Equal(t, "second", quotes[1].Carrier)
}

func TestQuoteAll_FailingCarrierDoesNotAbort(t *testing.T) {
	working := mock.New("working", carrier.CoverageDomestic)
	working.Quotes = []carrier.ServiceQuote{
		{Carrier: "working", ServiceID: "w-1", TotalPrice: 42.00},
	}
	broken := mock.New("broken", carrier.CoverageDomestic)
	broken.QuoteErr = errors.New("connection refused")

	quotes, outcomes := carrier.QuoteAll(context.Background(), []carrier.Carrier{working, broken}, quoteRequest())

	require.Len(t, outcomes, 2)
	assert.NoError(t, outcomes[0].Err)
	require.Error(t, outcomes[1].Err)
	assert.Equal(t, "broken", outcomes[1].Carrier)
	require.Len(t, quotes, 1)
	assert.Equal(t, "working", quotes[0].Carrier)
}

func TestQuoteAll_ErrorAttributedToExactCarrier(t *testing.T) {
	// "Star" prefixes "StarExpress"; attribution must be by slot, not name.
	star := mock.New("Star", carrier.CoverageDomestic)
	star.QuoteErr = errors.New("rate limit exceeded")
	starExpress := mock.New("StarExpress", carrier.CoverageDomestic)
	starExpress.Quotes = []carrier.ServiceQuote{
		{Carrier: "StarExpress", ServiceID: "se-1", TotalPrice: 60.00},
	}

	_, outcomes := carrier.QuoteAll(context.Background(), []carrier.Carrier{star, starExpress}, quoteRequest())

	require.Len(t, outcomes, 2)
	assert.Equal(t, "Star", outcomes[0].Carrier)
	assert.Error(t, outcomes[0].Err)
	assert.Equal(t, "StarExpress", outcomes[1].Carrier)
	assert.NoError(t, outcomes[1].Err)
}

func TestQuoteAll_PerCarrierDurations(t *testing.T) {
	slow := mock.New("slow", carrier.CoverageDomestic)
	slow.OnQuote = func(ctx context.Context, req *carrier.QuoteRequest) ([]carrier.ServiceQuote, error) {
		time.Sleep(50 * time.Millisecond)
		return []carrier.ServiceQuote{{Carrier: "slow", ServiceID: "s-1", TotalPrice: 10.00}}, nil
	}
	fast := mock.New("fast", carrier.CoverageDomestic)
	fast.Quotes = []carrier.ServiceQuote{
		{Carrier: "fast", ServiceID: "f-1", TotalPrice: 20.00},
	}

	_, outcomes := carrier.QuoteAll(context.Background(), []carrier.Carrier{slow, fast}, quoteRequest())

	require.Len(t, outcomes, 2)
	assert.GreaterOrEqual(t, outcomes[0].Duration, 50*time.Millisecond)
	assert.Less(t, outcomes[1].Duration, outcomes[0].Duration)
}

func TestQuoteAll_NoCarriers(t *testing.T) {
	quotes, outcomes := carrier.QuoteAll(context.Background(), nil, quoteRequest())

	assert.Empty(t, quotes)
	assert.Empty(t, outcomes)
}
