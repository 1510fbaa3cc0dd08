// Package orchestrator routes host shipping operations to carrier adapters
// and writes the results back onto host records.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/nonalabs/shipbridge/internal/notify"
	"github.com/nonalabs/shipbridge/internal/recordsync"
	"github.com/nonalabs/shipbridge/internal/telemetry"
	"github.com/nonalabs/shipbridge/pkg/carrier"
)

// Values written to host records on a successful booking.
const (
	statusBooked       = "Booked"
	providerPartner    = "Partner"
	deliveryTypeParcel = "Parcel Service"
)

// Config holds orchestrator configuration.
type Config struct {
	HomeCountry string
}

// Orchestrator dispatches shipping operations across registered carriers.
type Orchestrator struct {
	homeCountry string
	registry    *carrier.Registry
	store       recordsync.Store
	notifier    notify.Notifier
	logger      *otelzap.Logger
	metrics     *telemetry.Metrics
}

// New creates an orchestrator. A nil notifier falls back to a no-op.
func New(cfg Config, registry *carrier.Registry, store recordsync.Store, notifier notify.Notifier, logger *otelzap.Logger, metrics *telemetry.Metrics) *Orchestrator {
	if notifier == nil {
		notifier = notify.NoopNotifier{}
	}
	return &Orchestrator{
		homeCountry: cfg.HomeCountry,
		registry:    registry,
		store:       store,
		notifier:    notifier,
		logger:      logger,
		metrics:     metrics,
	}
}

// QuoteSet is the aggregated result of a rate-shopping fan-out.
type QuoteSet struct {
	Quotes []carrier.ServiceQuote
	Errors []string
}

// BookingInput couples a carrier booking with the host records to update.
type BookingInput struct {
	Booking       carrier.BookingRequest
	ShipmentName  string
	DeliveryNotes []string
}

// TrackingInput identifies a booked shipment for a tracking poll.
type TrackingInput struct {
	Carrier        string
	ShipmentName   string
	DeliveryNotes  []string
	Tracking       carrier.TrackingRequest
	PreviousStatus string
}

// EligibleCarriers returns the carriers that may serve the route. A route
// entirely inside the home country is domestic; any other is international.
func (o *Orchestrator) EligibleCarriers(pickup, delivery carrier.Address) []carrier.Carrier {
	if pickup.Country == o.homeCountry && delivery.Country == o.homeCountry {
		return o.registry.ByCoverage(carrier.CoverageDomestic)
	}
	return o.registry.ByCoverage(carrier.CoverageInternational)
}

// AvailableServices fans out the quote request to every eligible carrier and
// returns the merged quotes sorted ascending by total price. Individual
// carrier failures are reported alongside the quotes, never as a failure of
// the whole operation.
func (o *Orchestrator) AvailableServices(ctx context.Context, req *carrier.QuoteRequest) *QuoteSet {
	eligible := o.EligibleCarriers(req.PickupAddress, req.DeliveryAddress)

	o.logger.Info("Fetching available services",
		zap.String("origin_country", req.PickupAddress.Country),
		zap.String("destination_country", req.DeliveryAddress.Country),
		zap.Int("carriers", len(eligible)),
	)

	quotes, outcomes := carrier.QuoteAll(ctx, eligible, req)

	set := &QuoteSet{Quotes: quotes}
	for _, outcome := range outcomes {
		status := "success"
		if outcome.Err != nil {
			status = "error"
			o.logger.Warn("Carrier quote failed",
				zap.String("carrier", outcome.Carrier),
				zap.Error(outcome.Err),
			)
			o.metrics.RecordError(outcome.Carrier, "quote")
			set.Errors = append(set.Errors, fmt.Sprintf("%s: %v", outcome.Carrier, outcome.Err))
		}
		o.metrics.RecordRequest("quote", outcome.Carrier, status, outcome.Duration.Seconds())
	}

	return set
}

// BookShipment books with the carrier that produced the chosen quote and,
// on success, writes the booking onto the shipment and its delivery notes.
// On failure no record is touched.
func (o *Orchestrator) BookShipment(ctx context.Context, input *BookingInput) (*carrier.BookingResult, error) {
	name := input.Booking.Service.Carrier
	c, err := o.registry.Get(name)
	if err != nil {
		return nil, err
	}

	o.logger.Info("Booking shipment",
		zap.String("carrier", name),
		zap.String("shipment", input.ShipmentName),
		zap.String("service", input.Booking.Service.ServiceName),
	)

	start := time.Now()
	result, err := c.Book(ctx, &input.Booking)
	duration := time.Since(start).Seconds()
	if err != nil {
		o.metrics.RecordRequest("book", name, "error", duration)
		o.metrics.RecordError(name, "book")
		return nil, err
	}
	o.metrics.RecordRequest("book", name, "success", duration)

	o.syncBooking(ctx, input, result)
	return result, nil
}

// ShippingLabel fetches the label from the carrier stored on the shipment.
func (o *Orchestrator) ShippingLabel(ctx context.Context, carrierName string, req *carrier.LabelRequest) (*carrier.LabelResult, error) {
	c, err := o.registry.Get(carrierName)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := c.Label(ctx, req)
	duration := time.Since(start).Seconds()
	if err != nil {
		o.metrics.RecordRequest("label", carrierName, "error", duration)
		return nil, err
	}
	o.metrics.RecordRequest("label", carrierName, "success", duration)
	return result, nil
}

// UpdateTracking polls the carrier and, only on a successful response,
// persists the new status and emits a delivery-status notification when the
// status changed.
func (o *Orchestrator) UpdateTracking(ctx context.Context, input *TrackingInput) (*carrier.TrackingStatus, error) {
	c, err := o.registry.Get(input.Carrier)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	status, err := c.Track(ctx, &input.Tracking)
	duration := time.Since(start).Seconds()
	if err != nil {
		o.metrics.RecordRequest("track", input.Carrier, "error", duration)
		o.metrics.RecordError(input.Carrier, "track")
		return nil, err
	}
	o.metrics.RecordRequest("track", input.Carrier, "success", duration)

	o.syncTracking(ctx, input, status)

	if input.PreviousStatus != string(status.State) {
		event := notify.DeliveryStatusEvent{
			Shipment:       input.ShipmentName,
			Carrier:        input.Carrier,
			AWBNumber:      status.AWBNumber,
			PreviousStatus: input.PreviousStatus,
			CurrentStatus:  string(status.State),
			OccurredAt:     time.Now().UTC(),
		}
		if err := o.notifier.DeliveryStatusChanged(ctx, event); err != nil {
			o.logger.Warn("Failed to publish delivery status event",
				zap.String("shipment", input.ShipmentName),
				zap.Error(err),
			)
		}
	}

	return status, nil
}

func (o *Orchestrator) syncBooking(ctx context.Context, input *BookingInput, result *carrier.BookingResult) {
	label := result.LabelURL
	if label == "" {
		label = result.LabelData
	}

	fields := map[string]string{
		recordsync.FieldShipmentID:      result.ShipmentID,
		recordsync.FieldCarrier:         result.Carrier,
		recordsync.FieldCarrierService:  result.CarrierService,
		recordsync.FieldShipmentLabel:   label,
		recordsync.FieldAWBNumber:       result.AWBNumber,
		recordsync.FieldStatus:          statusBooked,
		recordsync.FieldServiceProvider: providerPartner,
	}
	for field, value := range fields {
		if err := o.store.SetShipmentField(ctx, input.ShipmentName, field, value); err != nil {
			o.logger.Error("Failed to sync shipment field",
				zap.String("shipment", input.ShipmentName),
				zap.String("field", field),
				zap.Error(err),
			)
		}
	}

	for _, note := range dedupe(input.DeliveryNotes) {
		noteFields := map[string]string{
			recordsync.FieldDeliveryType:      deliveryTypeParcel,
			recordsync.FieldParcelService:     result.Carrier,
			recordsync.FieldParcelServiceType: result.CarrierService,
		}
		for field, value := range noteFields {
			if err := o.store.SetDeliveryNoteField(ctx, note, field, value); err != nil {
				o.logger.Error("Failed to sync delivery note field",
					zap.String("delivery_note", note),
					zap.String("field", field),
					zap.Error(err),
				)
			}
		}
	}
}

func (o *Orchestrator) syncTracking(ctx context.Context, input *TrackingInput, status *carrier.TrackingStatus) {
	fields := map[string]string{
		recordsync.FieldTrackingStatus: string(status.State),
		recordsync.FieldTrackingURL:    status.TrackingURL,
	}
	for field, value := range fields {
		if err := o.store.SetShipmentField(ctx, input.ShipmentName, field, value); err != nil {
			o.logger.Error("Failed to sync shipment field",
				zap.String("shipment", input.ShipmentName),
				zap.String("field", field),
				zap.Error(err),
			)
		}
	}

	for _, note := range dedupe(input.DeliveryNotes) {
		for field, value := range fields {
			if err := o.store.SetDeliveryNoteField(ctx, note, field, value); err != nil {
				o.logger.Error("Failed to sync delivery note field",
					zap.String("delivery_note", note),
					zap.String("field", field),
					zap.Error(err),
				)
			}
		}
	}
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	result := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		result = append(result, n)
	}
	return result
}
