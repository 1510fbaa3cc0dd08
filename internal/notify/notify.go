// Package notify emits delivery-status events to external collaborators.
package notify

import (
	"context"
	"time"
)

// DeliveryStatusEvent is the payload published when a shipment's tracking
// status changes.
type DeliveryStatusEvent struct {
	Shipment       string    `json:"shipment"`
	Carrier        string    `json:"carrier"`
	AWBNumber      string    `json:"awb_number"`
	PreviousStatus string    `json:"previous_status"`
	CurrentStatus  string    `json:"current_status"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Notifier publishes delivery-status changes.
type Notifier interface {
	DeliveryStatusChanged(ctx context.Context, event DeliveryStatusEvent) error
}

// NoopNotifier drops all events. Used when no brokers are configured.
type NoopNotifier struct{}

// DeliveryStatusChanged does nothing.
func (NoopNotifier) DeliveryStatusChanged(ctx context.Context, event DeliveryStatusEvent) error {
	return nil
}

var _ Notifier = NoopNotifier{}
