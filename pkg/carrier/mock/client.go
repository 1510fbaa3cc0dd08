// Package mock provides a mock carrier implementation for testing.
package mock

import (
	"context"
	"fmt"
	"time"

	"github.com/nonalabs/shipbridge/pkg/carrier"
)

// Client is a mock carrier for testing. Fixed responses can be overridden
// per call with the On* hooks, or replaced wholesale via the exported fields.
type Client struct {
	name     string
	coverage carrier.Coverage

	// Quotes returned by Quote when OnQuote is nil. When left nil the mock
	// fabricates two services.
	Quotes []carrier.ServiceQuote

	// Errors returned by the corresponding call when set.
	QuoteErr error
	BookErr  error
	LabelErr error
	TrackErr error

	OnQuote func(ctx context.Context, req *carrier.QuoteRequest) ([]carrier.ServiceQuote, error)
	OnBook  func(ctx context.Context, req *carrier.BookingRequest) (*carrier.BookingResult, error)
	OnTrack func(ctx context.Context, req *carrier.TrackingRequest) (*carrier.TrackingStatus, error)
}

// New creates a new mock carrier.
func New(name string, coverage carrier.Coverage) *Client {
	return &Client{name: name, coverage: coverage}
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return c.name
}

// Coverage returns the configured coverage.
func (c *Client) Coverage() carrier.Coverage {
	return c.coverage
}

// Quote returns mock shipping quotes.
func (c *Client) Quote(ctx context.Context, req *carrier.QuoteRequest) ([]carrier.ServiceQuote, error) {
	if c.OnQuote != nil {
		return c.OnQuote(ctx, req)
	}
	if c.QuoteErr != nil {
		return nil, c.QuoteErr
	}
	if c.Quotes != nil {
		return c.Quotes, nil
	}

	weight := carrier.TotalWeight(req.Parcels)
	return []carrier.ServiceQuote{
		{
			Carrier:     c.name,
			ServiceID:   fmt.Sprintf("%s-standard", c.name),
			ServiceName: fmt.Sprintf("%s Standard", c.name),
			RealWeight:  weight,
			TotalPrice:  15.82,
			BasePrice:   12.50,
			Currency:    "INR",
		},
		{
			Carrier:     c.name,
			ServiceID:   fmt.Sprintf("%s-express", c.name),
			ServiceName: fmt.Sprintf("%s Express", c.name),
			RealWeight:  weight,
			TotalPrice:  29.95,
			BasePrice:   24.00,
			Currency:    "INR",
		},
	}, nil
}

// Book creates a mock shipment.
func (c *Client) Book(ctx context.Context, req *carrier.BookingRequest) (*carrier.BookingResult, error) {
	if c.OnBook != nil {
		return c.OnBook(ctx, req)
	}
	if c.BookErr != nil {
		return nil, c.BookErr
	}

	now := time.Now()
	shipmentID := fmt.Sprintf("%s-shipment-%d", c.name, now.UnixNano())
	awb := fmt.Sprintf("%d", now.UnixNano()%1000000000)

	return &carrier.BookingResult{
		ShipmentID:     shipmentID,
		Carrier:        c.name,
		CarrierService: req.Service.ServiceName,
		LabelURL:       fmt.Sprintf("https://labels.%s.mock/%s.pdf", c.name, shipmentID),
		AWBNumber:      awb,
		TrackingURL:    fmt.Sprintf("https://track.%s.mock/%s", c.name, awb),
	}, nil
}

// Label returns a mock shipping label.
func (c *Client) Label(ctx context.Context, req *carrier.LabelRequest) (*carrier.LabelResult, error) {
	if c.LabelErr != nil {
		return nil, c.LabelErr
	}
	return &carrier.LabelResult{
		URL: fmt.Sprintf("https://labels.%s.mock/%s.pdf", c.name, req.ShipmentID),
	}, nil
}

// Track returns a mock tracking status.
func (c *Client) Track(ctx context.Context, req *carrier.TrackingRequest) (*carrier.TrackingStatus, error) {
	if c.OnTrack != nil {
		return c.OnTrack(ctx, req)
	}
	if c.TrackErr != nil {
		return nil, c.TrackErr
	}
	return &carrier.TrackingStatus{
		State:       carrier.StateInProgress,
		Detail:      "Shipment picked up",
		AWBNumber:   req.AWBNumber,
		TrackingURL: fmt.Sprintf("https://track.%s.mock/%s", c.name, req.AWBNumber),
	}, nil
}

var _ carrier.Carrier = (*Client)(nil)
