package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/nonalabs/shipbridge/internal/orchestrator"
	"github.com/nonalabs/shipbridge/internal/recordsync"
	"github.com/nonalabs/shipbridge/internal/server"
	"github.com/nonalabs/shipbridge/internal/telemetry"
	"github.com/nonalabs/shipbridge/pkg/carrier"
	"github.com/nonalabs/shipbridge/pkg/carrier/mock"
)

var testMetrics = telemetry.NewMetrics()

func newTestServer(store *recordsync.MemoryStore, carriers ...carrier.Carrier) *server.Server {
	registry := carrier.NewRegistry()
	for _, c := range carriers {
		registry.Register(c)
	}
	logger := otelzap.New(zap.NewNop())
	orch := orchestrator.New(
		orchestrator.Config{HomeCountry: "India"},
		registry, store, nil, logger, testMetrics,
	)
	return server.New(server.Config{Port: 0}, orch, logger, testMetrics)
}

func doJSON(t *testing.T, srv *server.Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func servicesBody() map[string]interface{} {
	return map[string]interface{}{
		"pickup_address": map[string]interface{}{
			"address_line1": "12 MG Road",
			"city":          "Bengaluru",
			"pincode":       "560001",
			"country":       "India",
			"country_code":  "IN",
		},
		"delivery_address": map[string]interface{}{
			"address_line1": "4 Park Street",
			"city":          "Kolkata",
			"pincode":       "700016",
			"country":       "India",
			"country_code":  "IN",
		},
		"parcels": []map[string]interface{}{
			{"length": 30, "width": 20, "height": 15, "weight": 2.5, "count": 1},
		},
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(recordsync.NewMemoryStore())

	rec := doJSON(t, srv, http.MethodGet, "/healthz", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestServices_SortedQuotes(t *testing.T) {
	expensive := mock.New("Bluedart", carrier.CoverageDomestic)
	expensive.Quotes = []carrier.ServiceQuote{
		{Carrier: "Bluedart", ServiceID: "bd-1", TotalPrice: 120.50, Currency: "INR"},
	}
	cheap := mock.New("Delhivery", carrier.CoverageDomestic)
	cheap.Quotes = []carrier.ServiceQuote{
		{Carrier: "Delhivery", ServiceID: "dl-1", TotalPrice: 75.00, Currency: "INR"},
	}
	srv := newTestServer(recordsync.NewMemoryStore(), expensive, cheap)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/services", servicesBody())

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Services []struct {
			Carrier    string  `json:"carrier"`
			TotalPrice float64 `json:"total_price"`
		} `json:"services"`
		Errors []string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Services, 2)
	assert.Equal(t, "Delhivery", resp.Services[0].Carrier)
	assert.Equal(t, 75.00, resp.Services[0].TotalPrice)
	assert.Empty(t, resp.Errors)
}

func TestServices_InvalidJSON(t *testing.T) {
	srv := newTestServer(recordsync.NewMemoryStore())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/services", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestShipments_Success(t *testing.T) {
	delhivery := mock.New("Delhivery", carrier.CoverageDomestic)
	delhivery.OnBook = func(ctx context.Context, req *carrier.BookingRequest) (*carrier.BookingResult, error) {
		return &carrier.BookingResult{
			ShipmentID:     "LR0000000042",
			Carrier:        "Delhivery",
			CarrierService: "Delhivery Express",
			AWBNumber:      "40000000001",
		}, nil
	}
	store := recordsync.NewMemoryStore()
	srv := newTestServer(store, delhivery)

	body := servicesBody()
	body["shipment"] = "SHIP-00044"
	body["delivery_notes"] = []string{"DN-00007"}
	body["service"] = map[string]interface{}{
		"carrier":      "Delhivery",
		"service_id":   "delhivery-express",
		"service_name": "Delhivery Express",
	}

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/shipments", body)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		ShipmentID string `json:"shipment_id"`
		AWBNumber  string `json:"awb_number"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "LR0000000042", resp.ShipmentID)
	assert.Equal(t, "40000000001", resp.AWBNumber)

	value, _ := store.ShipmentField("SHIP-00044", recordsync.FieldStatus)
	assert.Equal(t, "Booked", value)
}

func TestShipments_MissingCarrier(t *testing.T) {
	srv := newTestServer(recordsync.NewMemoryStore())

	body := servicesBody()
	body["shipment"] = "SHIP-00044"

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/shipments", body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestShipments_RejectedBookingIsBadGateway(t *testing.T) {
	delhivery := mock.New("Delhivery", carrier.CoverageDomestic)
	delhivery.BookErr = carrier.ErrBookingRejected
	srv := newTestServer(recordsync.NewMemoryStore(), delhivery)

	body := servicesBody()
	body["shipment"] = "SHIP-00044"
	body["service"] = map[string]interface{}{"carrier": "Delhivery"}

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/shipments", body)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestShipments_UnknownCarrierIsNotFound(t *testing.T) {
	srv := newTestServer(recordsync.NewMemoryStore())

	body := servicesBody()
	body["shipment"] = "SHIP-00044"
	body["service"] = map[string]interface{}{"carrier": "Nonexistent"}

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/shipments", body)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLabel_Success(t *testing.T) {
	aramex := mock.New("Aramex", carrier.CoverageInternational)
	srv := newTestServer(recordsync.NewMemoryStore(), aramex)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/labels/Aramex?shipment_id=40000000001", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		URL string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.URL, "40000000001")
}

func TestLabel_MissingIdentifiers(t *testing.T) {
	aramex := mock.New("Aramex", carrier.CoverageInternational)
	srv := newTestServer(recordsync.NewMemoryStore(), aramex)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/labels/Aramex", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTracking_PersistsStatus(t *testing.T) {
	delhivery := mock.New("Delhivery", carrier.CoverageDomestic)
	delhivery.OnTrack = func(ctx context.Context, req *carrier.TrackingRequest) (*carrier.TrackingStatus, error) {
		return &carrier.TrackingStatus{
			State:     carrier.StateDelivered,
			Detail:    "Delivered to consignee",
			AWBNumber: req.AWBNumber,
		}, nil
	}
	store := recordsync.NewMemoryStore()
	srv := newTestServer(store, delhivery)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/tracking", map[string]interface{}{
		"carrier":         "Delhivery",
		"shipment":        "SHIP-00044",
		"shipment_id":     "LR0000000042",
		"awb_number":      "40000000001",
		"previous_status": "In Progress",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Delivered", resp.Status)

	value, _ := store.ShipmentField("SHIP-00044", recordsync.FieldTrackingStatus)
	assert.Equal(t, "Delivered", value)
}

func TestTracking_MissingCarrier(t *testing.T) {
	srv := newTestServer(recordsync.NewMemoryStore())

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/tracking", map[string]interface{}{
		"shipment": "SHIP-00044",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
