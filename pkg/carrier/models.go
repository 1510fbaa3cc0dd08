package carrier

import (
	"time"
)

// TrackingState is the normalized delivery status of a shipment.
type TrackingState string

const (
	StateInProgress TrackingState = "In Progress"
	StateDelivered  TrackingState = "Delivered"
	StateReturned   TrackingState = "Returned"
	StateLost       TrackingState = "Lost"
	StateUnknown    TrackingState = "Unknown"
)

// Address represents a pickup or delivery address. Immutable per request;
// sourced from host ERP records.
type Address struct {
	Title       string // address title / company line on the host record
	Line1       string
	Line2       string
	City        string
	State       string
	Pincode     string
	Country     string // full country name as stored by the host (e.g., "India")
	CountryCode string // ISO 3166-1 alpha-2
}

// Contact represents sender or recipient contact info.
type Contact struct {
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	MobileNo    string
	CompanyName string
	Gender      string
}

// FullName returns the contact's display name.
func (c Contact) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// Parcel represents one line of identical boxes in a shipment.
type Parcel struct {
	Length float64 // cm
	Width  float64
	Height float64
	Weight float64 // kg
	Count  int     // quantity of identical boxes
}

// Money represents a monetary amount.
type Money struct {
	Amount   float64
	Currency string
}

// ServiceQuote is a normalized rate option produced by a carrier's Quote call.
// Quotes are transient; the user's selection is passed back verbatim on Book.
type ServiceQuote struct {
	Carrier     string
	ServiceID   string
	ServiceName string
	IsPreferred bool
	RealWeight  float64
	TotalPrice  float64
	Currency    string
	BasePrice   float64
}

// QuoteRequest is the normalized input to a carrier's Quote call.
type QuoteRequest struct {
	PickupAddress      Address
	DeliveryAddress    Address
	Parcels            []Parcel
	PickupDate         time.Time
	ContentDescription string
	DeclaredValue      float64
}

// BookingRequest is the normalized input to a carrier's Book call.
type BookingRequest struct {
	PickupAddress       Address
	DeliveryAddress     Address
	PickupContact       Contact
	DeliveryContact     Contact
	Parcels             []Parcel
	ContentDescription  string
	DeclaredValue       float64
	PickupAt            time.Time
	Service             ServiceQuote // the quote chosen by the user
	Reference           string       // host shipment record name
	DeliveryCompanyName string
}

// BookingResult is the normalized outcome of a successful Book call.
// Once written to a host record it is carrier-specific and must not be
// overwritten by a different carrier's data.
type BookingResult struct {
	ShipmentID     string // carrier-internal id (LR number for Delhivery)
	Carrier        string
	CarrierService string
	LabelURL       string
	LabelData      string // base64, for carriers that return the label inline
	AWBNumber      string
	TrackingURL    string
}

// LabelRequest identifies an already-booked shipment for label retrieval.
// Identifier semantics differ per carrier, so both ids are carried.
type LabelRequest struct {
	ShipmentID string
	AWBNumber  string
}

// LabelResult holds a printable label, either hosted or inline.
type LabelResult struct {
	URL  string
	Data string // base64
}

// TrackingRequest identifies a shipment for a tracking poll.
type TrackingRequest struct {
	ShipmentID string
	AWBNumber  string
}

// TrackingStatus is the normalized result of a tracking poll. It is only
// persisted after a successful carrier response, never partially.
type TrackingStatus struct {
	State       TrackingState
	Detail      string // carrier-reported status text
	AWBNumber   string
	TrackingURL string
}

// TotalWeight sums parcel weights across box counts, in kilograms.
func TotalWeight(parcels []Parcel) float64 {
	var total float64
	for _, p := range parcels {
		count := p.Count
		if count < 1 {
			count = 1
		}
		total += p.Weight * float64(count)
	}
	return total
}

// ExpandParcels flattens parcel lines into one entry per physical box.
func ExpandParcels(parcels []Parcel) []Parcel {
	expanded := make([]Parcel, 0, len(parcels))
	for _, p := range parcels {
		count := p.Count
		if count < 1 {
			count = 1
		}
		for i := 0; i < count; i++ {
			box := p
			box.Count = 1
			expanded = append(expanded, box)
		}
	}
	return expanded
}
