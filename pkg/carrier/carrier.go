// Package carrier provides an abstraction layer for shipping carriers.
package carrier

import (
	"context"
)

// Coverage classifies the routes a carrier can serve.
type Coverage string

const (
	// CoverageDomestic marks carriers serving shipments inside the home country.
	CoverageDomestic Coverage = "domestic"

	// CoverageInternational marks carriers serving cross-border shipments.
	CoverageInternational Coverage = "international"
)

// Carrier defines the interface that all shipping carriers must implement.
type Carrier interface {
	// Name returns the carrier identifier (e.g., "Aramex", "Delhivery").
	// The name is the sole dispatch discriminant: a ServiceQuote produced by
	// this carrier routes back to it by exact, case-sensitive match.
	Name() string

	// Coverage reports whether the carrier serves domestic or international routes.
	Coverage() Coverage

	// Quote returns available services and rates for a shipment. Zero entries
	// is a valid result; errors are non-fatal to rate shopping.
	Quote(ctx context.Context, req *QuoteRequest) ([]ServiceQuote, error)

	// Book creates a shipment with the carrier. Errors always surface to the
	// caller; a successful result carries a non-empty AWB or shipment id.
	Book(ctx context.Context, req *BookingRequest) (*BookingResult, error)

	// Label retrieves the printable label for an already-booked shipment.
	Label(ctx context.Context, req *LabelRequest) (*LabelResult, error)

	// Track fetches the current delivery status for a shipment.
	Track(ctx context.Context, req *TrackingRequest) (*TrackingStatus, error)
}
