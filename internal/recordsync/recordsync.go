// Package recordsync writes carrier results back onto host ERP records.
//
// The host owns Shipment and Delivery Note documents; this service only sets
// individual fields on them. Writes are independent, there is no read-back
// and no cross-field transaction.
package recordsync

import (
	"context"
	"errors"
	"fmt"
)

// ErrFieldNotAllowed is returned when a write targets a field outside the
// whitelist.
var ErrFieldNotAllowed = errors.New("field not allowed")

// Shipment fields this service may set.
const (
	FieldShipmentID      = "shipment_id"
	FieldCarrier         = "carrier"
	FieldCarrierService  = "carrier_service"
	FieldShipmentLabel   = "shipment_label"
	FieldAWBNumber       = "awb_number"
	FieldStatus          = "status"
	FieldServiceProvider = "service_provider"
	FieldTrackingStatus  = "tracking_status"
	FieldTrackingURL     = "tracking_url"
)

// Delivery Note fields this service may set.
const (
	FieldDeliveryType      = "delivery_type"
	FieldParcelService     = "parcel_service"
	FieldParcelServiceType = "parcel_service_type"
)

var shipmentFields = map[string]bool{
	FieldShipmentID:      true,
	FieldCarrier:         true,
	FieldCarrierService:  true,
	FieldShipmentLabel:   true,
	FieldAWBNumber:       true,
	FieldStatus:          true,
	FieldServiceProvider: true,
	FieldTrackingStatus:  true,
	FieldTrackingURL:     true,
}

var deliveryNoteFields = map[string]bool{
	FieldDeliveryType:      true,
	FieldParcelService:     true,
	FieldParcelServiceType: true,
	FieldTrackingStatus:    true,
	FieldTrackingURL:       true,
	FieldAWBNumber:         true,
}

// Store persists carrier results onto host records and carrier auth tokens
// across restarts. It satisfies the per-carrier token store interfaces.
type Store interface {
	SetShipmentField(ctx context.Context, shipmentName, field, value string) error
	SetDeliveryNoteField(ctx context.Context, noteName, field, value string) error
	LoadToken(ctx context.Context, carrierName string) (string, error)
	SaveToken(ctx context.Context, carrierName string, token string) error
}

func checkShipmentField(field string) error {
	if !shipmentFields[field] {
		return fmt.Errorf("%w: shipment field %q", ErrFieldNotAllowed, field)
	}
	return nil
}

func checkDeliveryNoteField(field string) error {
	if !deliveryNoteFields[field] {
		return fmt.Errorf("%w: delivery note field %q", ErrFieldNotAllowed, field)
	}
	return nil
}
