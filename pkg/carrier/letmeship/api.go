package letmeship

import (
	"context"
	"fmt"
)

// APIClient defines the interface for LetMeShip API operations.
// This abstraction allows for mock implementations during testing
// and real implementations in production.
type APIClient interface {
	// GetAvailableServices fetches bookable services with prices
	GetAvailableServices(ctx context.Context, req *AvailabilityRequest) (*AvailabilityResponse, error)

	// CreateShipment books a shipment for a chosen service
	CreateShipment(ctx context.Context, req *ShipmentOrderRequest) (*ShipmentOrderResponse, error)

	// GetShipment fetches a booked shipment, including AWB numbers
	GetShipment(ctx context.Context, shipmentID string) (*ShipmentDetailsResponse, error)

	// GetDocuments fetches shipment documents of the given types
	GetDocuments(ctx context.Context, shipmentID string, docTypes string) (*DocumentsResponse, error)

	// GetTracking fetches the tracking status of a shipment
	GetTracking(ctx context.Context, shipmentID string) (*TrackingResponse, error)
}

// ============================================================================
// API Request/Response Types (match the LetMeShip JSON API structure)
// ============================================================================

// Address is a LetMeShip pickup or delivery address.
type Address struct {
	CountryCode string `json:"countryCode"`
	Zip         string `json:"zip"`
	City        string `json:"city"`
	Street      string `json:"street"`
	AddressInfo string `json:"addressInfo,omitempty"`
	HouseNo     string `json:"houseNo,omitempty"`
}

// Person is a LetMeShip contact. Company names longer than 30 characters
// are rejected by the API and must be trimmed by the caller.
type Person struct {
	Title             string `json:"title"`
	Firstname         string `json:"firstname"`
	Lastname          string `json:"lastname"`
	Company           string `json:"company"`
	PhoneNumberPrefix string `json:"phoneNumberPrefix"`
	PhoneNumber       string `json:"phoneNumber"`
	Email             string `json:"email"`
}

// PartyInfo couples an address with its contact person.
type PartyInfo struct {
	Address Address `json:"address"`
	Person  Person  `json:"person"`
}

// Parcel is one parcel line of a shipment.
type Parcel struct {
	Height   float64 `json:"height"`
	Length   float64 `json:"length"`
	Width    float64 `json:"width"`
	Weight   float64 `json:"weight"`
	Quantity int     `json:"quantity"`
}

// ShipmentSettings are the LetMeShip service toggles.
type ShipmentSettings struct {
	SaturdayDelivery bool `json:"saturdayDelivery"`
	DDP              bool `json:"ddp"`
	Insurance        bool `json:"insurance"`
	PickupOrder      bool `json:"pickupOrder"`
	PickupTailLift   bool `json:"pickupTailLift"`
	DeliveryTailLift bool `json:"deliveryTailLift"`
	HolidayDelivery  bool `json:"holidayDelivery"`
}

// PickupInterval is the requested pickup date.
type PickupInterval struct {
	Date string `json:"date"` // YYYY-MM-DD
}

// ShipmentDetails describes the goods of a shipment.
type ShipmentDetails struct {
	ShipmentType       string           `json:"shipmentType"`
	GoodsValue         float64          `json:"goodsValue"`
	ContentDescription string           `json:"contentDescription"`
	ShipmentSettings   ShipmentSettings `json:"shipmentSettings"`
	ParcelList         []Parcel         `json:"parcelList"`
	PickupInterval     PickupInterval   `json:"pickupInterval"`
}

// AvailabilityRequest is the /available request body.
type AvailabilityRequest struct {
	PickupInfo      PartyInfo       `json:"pickupInfo"`
	DeliveryInfo    PartyInfo       `json:"deliveryInfo"`
	ShipmentDetails ShipmentDetails `json:"shipmentDetails"`
}

// PriceInfo is the price breakdown of a service.
type PriceInfo struct {
	BasePrice  float64 `json:"basePrice"`
	NetPrice   float64 `json:"netPrice"`
	TotalPrice float64 `json:"totalPrice"`
	RealWeight float64 `json:"realWeight"`
	Currency   string  `json:"currency"`
}

// BaseServiceDetails identifies a bookable service.
type BaseServiceDetails struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Carrier   string    `json:"carrier"`
	Preferred bool      `json:"preferred"`
	PriceInfo PriceInfo `json:"priceInfo"`
}

// Service is one entry of the availability response.
type Service struct {
	BaseServiceDetails BaseServiceDetails `json:"baseServiceDetails"`
}

// AvailabilityResponse is the /available response body.
type AvailabilityResponse struct {
	ServiceList []Service `json:"serviceList"`
}

// TrackingNotification configures status mails for the booking party.
type TrackingNotification struct {
	Email                string `json:"email"`
	NotificationText     string `json:"notificationText"`
	DeliveryNotification bool   `json:"deliveryNotification"`
	ProblemNotification  bool   `json:"problemNotification"`
}

// ShipmentNotification configures notifications for a booking.
type ShipmentNotification struct {
	TrackingNotification  TrackingNotification `json:"trackingNotification"`
	RecipientNotification TrackingNotification `json:"recipientNotification"`
}

// ShipmentOrderRequest is the /shipments request body.
type ShipmentOrderRequest struct {
	PickupInfo           PartyInfo            `json:"pickupInfo"`
	DeliveryInfo         PartyInfo            `json:"deliveryInfo"`
	ShipmentDetails      ShipmentDetails      `json:"shipmentDetails"`
	Service              Service              `json:"service"`
	ShipmentNotification ShipmentNotification `json:"shipmentNotification"`
	LabelEmail           bool                 `json:"labelEmail"`
}

// ShipmentOrderResponse acknowledges a booked shipment.
type ShipmentOrderResponse struct {
	ShipmentID string `json:"shipmentId"`
}

// TrackedParcel carries the carrier AWB for one parcel.
type TrackedParcel struct {
	AWBNumber string `json:"awbNumber"`
}

// TrackingData groups the parcels of a booked shipment.
type TrackingData struct {
	ParcelList []TrackedParcel `json:"parcelList"`
}

// ShipmentDetailsResponse is the GET /shipments/{id} response body.
type ShipmentDetailsResponse struct {
	ShipmentID   string       `json:"shipmentId"`
	TrackingData TrackingData `json:"trackingData"`
	TrackingURL  string       `json:"trackingUrl"`
}

// Document is one shipment document, base64-encoded.
type Document struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

// DocumentsResponse is the documents response body.
type DocumentsResponse struct {
	ShipmentDocuments []Document `json:"shipmentDocuments"`
}

// TrackingResponse is the /tracking response body.
type TrackingResponse struct {
	LMSTrackingStatus string `json:"lmsTrackingStatus"`
	TrackingURL       string `json:"trackingUrl"`
}

// APIError represents an error from the LetMeShip API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP_%d: %s", e.StatusCode, e.Message)
}
