// Package server exposes the shipping operations as a JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/nonalabs/shipbridge/internal/orchestrator"
	"github.com/nonalabs/shipbridge/internal/telemetry"
	"github.com/nonalabs/shipbridge/pkg/carrier"
)

// Server is the HTTP server for the shipping bridge.
type Server struct {
	port    int
	orch    *orchestrator.Orchestrator
	logger  *otelzap.Logger
	metrics *telemetry.Metrics
}

// Config holds server configuration.
type Config struct {
	Port int
}

// New creates a new server instance.
func New(cfg Config, orch *orchestrator.Orchestrator, logger *otelzap.Logger, metrics *telemetry.Metrics) *Server {
	return &Server{
		port:    cfg.Port,
		orch:    orch,
		logger:  logger,
		metrics: metrics,
	}
}

// Router builds the HTTP routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/services", s.handleServices).Methods(http.MethodPost)
	api.HandleFunc("/shipments", s.handleShipments).Methods(http.MethodPost)
	api.HandleFunc("/labels/{carrier}", s.handleLabel).Methods(http.MethodGet)
	api.HandleFunc("/tracking", s.handleTracking).Methods(http.MethodPost)

	return r
}

// Run starts the HTTP server and blocks until context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", zap.Int("port", s.port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// ============================================================================
// Wire types
// ============================================================================

type addressPayload struct {
	Title       string `json:"title,omitempty"`
	Line1       string `json:"address_line1"`
	Line2       string `json:"address_line2,omitempty"`
	City        string `json:"city"`
	State       string `json:"state,omitempty"`
	Pincode     string `json:"pincode"`
	Country     string `json:"country"`
	CountryCode string `json:"country_code"`
}

type contactPayload struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	MobileNo    string `json:"mobile_no,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
	Gender      string `json:"gender,omitempty"`
}

type parcelPayload struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Weight float64 `json:"weight"`
	Count  int     `json:"count"`
}

type servicePayload struct {
	Carrier     string  `json:"carrier"`
	ServiceID   string  `json:"service_id"`
	ServiceName string  `json:"service_name"`
	IsPreferred bool    `json:"is_preferred"`
	RealWeight  float64 `json:"real_weight"`
	TotalPrice  float64 `json:"total_price"`
	Currency    string  `json:"currency"`
	BasePrice   float64 `json:"base_price"`
}

type servicesRequest struct {
	PickupAddress   addressPayload  `json:"pickup_address"`
	DeliveryAddress addressPayload  `json:"delivery_address"`
	Parcels         []parcelPayload `json:"parcels"`
	PickupDate      string          `json:"pickup_date,omitempty"` // YYYY-MM-DD
	Description     string          `json:"description_of_content,omitempty"`
	DeclaredValue   float64         `json:"value_of_goods,omitempty"`
}

type servicesResponse struct {
	Services []servicePayload `json:"services"`
	Errors   []string         `json:"errors,omitempty"`
}

type shipmentsRequest struct {
	Shipment            string          `json:"shipment"`
	DeliveryNotes       []string        `json:"delivery_notes,omitempty"`
	PickupAddress       addressPayload  `json:"pickup_address"`
	DeliveryAddress     addressPayload  `json:"delivery_address"`
	PickupContact       contactPayload  `json:"pickup_contact"`
	DeliveryContact     contactPayload  `json:"delivery_contact"`
	Parcels             []parcelPayload `json:"parcels"`
	Description         string          `json:"description_of_content,omitempty"`
	DeclaredValue       float64         `json:"value_of_goods,omitempty"`
	PickupDate          string          `json:"pickup_date,omitempty"`
	Service             servicePayload  `json:"service"`
	DeliveryCompanyName string          `json:"delivery_company_name,omitempty"`
}

type bookingResponse struct {
	ShipmentID     string `json:"shipment_id"`
	Carrier        string `json:"carrier"`
	CarrierService string `json:"carrier_service"`
	LabelURL       string `json:"label_url,omitempty"`
	LabelData      string `json:"label_data,omitempty"`
	AWBNumber      string `json:"awb_number"`
	TrackingURL    string `json:"tracking_url,omitempty"`
}

type labelResponse struct {
	URL  string `json:"url,omitempty"`
	Data string `json:"data,omitempty"`
}

type trackingRequest struct {
	Carrier        string   `json:"carrier"`
	Shipment       string   `json:"shipment"`
	DeliveryNotes  []string `json:"delivery_notes,omitempty"`
	ShipmentID     string   `json:"shipment_id,omitempty"`
	AWBNumber      string   `json:"awb_number,omitempty"`
	PreviousStatus string   `json:"previous_status,omitempty"`
}

type trackingResponse struct {
	Status      string `json:"status"`
	Detail      string `json:"detail,omitempty"`
	AWBNumber   string `json:"awb_number,omitempty"`
	TrackingURL string `json:"tracking_url,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ============================================================================
// Handlers
// ============================================================================

func (s *Server) handleServices(w http.ResponseWriter, r *http.Request) {
	var req servicesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	quoteReq := &carrier.QuoteRequest{
		PickupAddress:      toAddress(req.PickupAddress),
		DeliveryAddress:    toAddress(req.DeliveryAddress),
		Parcels:            toParcels(req.Parcels),
		PickupDate:         parseDate(req.PickupDate),
		ContentDescription: req.Description,
		DeclaredValue:      req.DeclaredValue,
	}

	set := s.orch.AvailableServices(r.Context(), quoteReq)

	resp := servicesResponse{
		Services: make([]servicePayload, 0, len(set.Quotes)),
		Errors:   set.Errors,
	}
	for _, q := range set.Quotes {
		resp.Services = append(resp.Services, servicePayload(q))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleShipments(w http.ResponseWriter, r *http.Request) {
	var req shipmentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Shipment == "" {
		writeError(w, http.StatusBadRequest, "shipment is required")
		return
	}
	if req.Service.Carrier == "" {
		writeError(w, http.StatusBadRequest, "service.carrier is required")
		return
	}

	input := &orchestrator.BookingInput{
		Booking: carrier.BookingRequest{
			PickupAddress:       toAddress(req.PickupAddress),
			DeliveryAddress:     toAddress(req.DeliveryAddress),
			PickupContact:       toContact(req.PickupContact),
			DeliveryContact:     toContact(req.DeliveryContact),
			Parcels:             toParcels(req.Parcels),
			ContentDescription:  req.Description,
			DeclaredValue:       req.DeclaredValue,
			PickupAt:            parseDate(req.PickupDate),
			Service:             carrier.ServiceQuote(req.Service),
			Reference:           req.Shipment,
			DeliveryCompanyName: req.DeliveryCompanyName,
		},
		ShipmentName:  req.Shipment,
		DeliveryNotes: req.DeliveryNotes,
	}

	result, err := s.orch.BookShipment(r.Context(), input)
	if err != nil {
		s.writeCarrierError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, bookingResponse{
		ShipmentID:     result.ShipmentID,
		Carrier:        result.Carrier,
		CarrierService: result.CarrierService,
		LabelURL:       result.LabelURL,
		LabelData:      result.LabelData,
		AWBNumber:      result.AWBNumber,
		TrackingURL:    result.TrackingURL,
	})
}

func (s *Server) handleLabel(w http.ResponseWriter, r *http.Request) {
	carrierName := mux.Vars(r)["carrier"]
	labelReq := &carrier.LabelRequest{
		ShipmentID: r.URL.Query().Get("shipment_id"),
		AWBNumber:  r.URL.Query().Get("awb"),
	}
	if labelReq.ShipmentID == "" && labelReq.AWBNumber == "" {
		writeError(w, http.StatusBadRequest, "shipment_id or awb is required")
		return
	}

	result, err := s.orch.ShippingLabel(r.Context(), carrierName, labelReq)
	if err != nil {
		s.writeCarrierError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, labelResponse{URL: result.URL, Data: result.Data})
}

func (s *Server) handleTracking(w http.ResponseWriter, r *http.Request) {
	var req trackingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Carrier == "" {
		writeError(w, http.StatusBadRequest, "carrier is required")
		return
	}

	status, err := s.orch.UpdateTracking(r.Context(), &orchestrator.TrackingInput{
		Carrier:        req.Carrier,
		ShipmentName:   req.Shipment,
		DeliveryNotes:  req.DeliveryNotes,
		Tracking:       carrier.TrackingRequest{ShipmentID: req.ShipmentID, AWBNumber: req.AWBNumber},
		PreviousStatus: req.PreviousStatus,
	})
	if err != nil {
		s.writeCarrierError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, trackingResponse{
		Status:      string(status.State),
		Detail:      status.Detail,
		AWBNumber:   status.AWBNumber,
		TrackingURL: status.TrackingURL,
	})
}

// ============================================================================
// Helpers
// ============================================================================

func (s *Server) writeCarrierError(w http.ResponseWriter, err error) {
	s.logger.Warn("Carrier operation failed", zap.Error(err))

	switch {
	case errors.Is(err, carrier.ErrCarrierNotFound),
		errors.Is(err, carrier.ErrLabelNotAvailable),
		errors.Is(err, carrier.ErrTrackingNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, carrier.ErrBookingRejected),
		errors.Is(err, carrier.ErrAuthorizationFailed),
		errors.Is(err, carrier.ErrRatesUnsupported):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func toAddress(p addressPayload) carrier.Address {
	return carrier.Address(p)
}

func toContact(p contactPayload) carrier.Contact {
	return carrier.Contact(p)
}

func toParcels(payloads []parcelPayload) []carrier.Parcel {
	parcels := make([]carrier.Parcel, 0, len(payloads))
	for _, p := range payloads {
		parcels = append(parcels, carrier.Parcel(p))
	}
	return parcels
}

func parseDate(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}
	}
	return t
}
