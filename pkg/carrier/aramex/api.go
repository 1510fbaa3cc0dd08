package aramex

import (
	"context"
	"fmt"
)

// APIClient defines the interface for Aramex API operations.
// This abstraction allows for mock implementations during testing
// and real implementations in production.
type APIClient interface {
	// CalculateRate fetches a shipping rate for a route
	CalculateRate(ctx context.Context, req *RateRequest) (*RateResponse, error)

	// CreateShipment books a new shipment
	CreateShipment(ctx context.Context, req *ShipmentRequest) (*ShipmentResponse, error)

	// PrintLabel retrieves the label URL for a booked shipment
	PrintLabel(ctx context.Context, req *LabelPrintRequest) (*LabelPrintResponse, error)

	// TrackShipments fetches the latest tracking update per AWB
	TrackShipments(ctx context.Context, req *TrackRequest) (*TrackResponse, error)
}

// ============================================================================
// API Request/Response Types (match the Aramex JSON API structure)
// ============================================================================

// ClientInfo is the authentication envelope carried in every Aramex request.
type ClientInfo struct {
	UserName           string `json:"UserName"`
	Password           string `json:"Password"`
	Version            string `json:"Version"`
	AccountNumber      string `json:"AccountNumber"`
	AccountPin         string `json:"AccountPin"`
	AccountEntity      string `json:"AccountEntity"`
	AccountCountryCode string `json:"AccountCountryCode"`
	Source             int    `json:"Source"`
}

// Address is an Aramex party address.
type Address struct {
	Line1               string `json:"Line1"`
	Line2               string `json:"Line2,omitempty"`
	Line3               string `json:"Line3,omitempty"`
	City                string `json:"City"`
	StateOrProvinceCode string `json:"StateOrProvinceCode,omitempty"`
	PostCode            string `json:"PostCode"`
	CountryCode         string `json:"CountryCode"`
}

// Contact is an Aramex party contact.
type Contact struct {
	PersonName   string `json:"PersonName"`
	CompanyName  string `json:"CompanyName"`
	PhoneNumber1 string `json:"PhoneNumber1"`
	CellPhone    string `json:"CellPhone"`
	EmailAddress string `json:"EmailAddress"`
}

// Party combines account, address and contact for shipper/consignee.
type Party struct {
	Reference1    string  `json:"Reference1,omitempty"`
	AccountNumber string  `json:"AccountNumber,omitempty"`
	PartyAddress  Address `json:"PartyAddress"`
	Contact       Contact `json:"Contact"`
}

// Weight is a unit-tagged weight value.
type Weight struct {
	Unit  string  `json:"Unit"`
	Value float64 `json:"Value"`
}

// Dimensions are unit-tagged parcel dimensions.
type Dimensions struct {
	Length float64 `json:"Length"`
	Width  float64 `json:"Width"`
	Height float64 `json:"Height"`
	Unit   string  `json:"Unit"`
}

// Money is an Aramex currency amount.
type Money struct {
	CurrencyCode string  `json:"CurrencyCode"`
	Value        float64 `json:"Value"`
}

// ShipmentDetails describes the goods for rating and booking.
type ShipmentDetails struct {
	Dimensions         *Dimensions `json:"Dimensions,omitempty"`
	ActualWeight       Weight      `json:"ActualWeight"`
	ChargeableWeight   Weight      `json:"ChargeableWeight"`
	NumberOfPieces     int         `json:"NumberOfPieces"`
	ProductGroup       string      `json:"ProductGroup"`
	ProductType        string      `json:"ProductType"`
	PaymentType        string      `json:"PaymentType"`
	DescriptionOfGoods string      `json:"DescriptionOfGoods,omitempty"`
	GoodsOriginCountry string      `json:"GoodsOriginCountry,omitempty"`
}

// LabelInfo selects the label report produced at booking or printing.
type LabelInfo struct {
	ReportID   int    `json:"ReportID"`
	ReportType string `json:"ReportType"`
}

// Notification is an Aramex business error or warning.
type Notification struct {
	Code    string `json:"Code"`
	Message string `json:"Message"`
}

// RateRequest is the CalculateRate request body.
type RateRequest struct {
	ClientInfo         ClientInfo      `json:"ClientInfo"`
	OriginAddress      Address         `json:"OriginAddress"`
	DestinationAddress Address         `json:"DestinationAddress"`
	ShipmentDetails    ShipmentDetails `json:"ShipmentDetails"`
}

// RateResponse is the CalculateRate response body.
type RateResponse struct {
	HasErrors     bool           `json:"HasErrors"`
	Notifications []Notification `json:"Notifications"`
	TotalAmount   Money          `json:"TotalAmount"`
}

// Shipment is one entry of a CreateShipments request.
type Shipment struct {
	Reference1             string          `json:"Reference1"`
	Shipper                Party           `json:"Shipper"`
	Consignee              Party           `json:"Consignee"`
	ShippingDateTime       string          `json:"ShippingDateTime"`
	DueDate                string          `json:"DueDate"`
	Comments               string          `json:"Comments,omitempty"`
	PickupLocation         string          `json:"PickupLocation"`
	OperationsInstructions string          `json:"OperationsInstructions,omitempty"`
	Details                ShipmentDetails `json:"Details"`
}

// ShipmentRequest is the CreateShipments request body.
type ShipmentRequest struct {
	ClientInfo ClientInfo `json:"ClientInfo"`
	LabelInfo  LabelInfo  `json:"LabelInfo"`
	Shipments  []Shipment `json:"Shipments"`
}

// ShipmentLabel carries the hosted label URL.
type ShipmentLabel struct {
	LabelURL string `json:"LabelURL"`
}

// ProcessedShipment is one entry of a CreateShipments response.
type ProcessedShipment struct {
	ID            string         `json:"ID"`
	Reference1    string         `json:"Reference1"`
	HasErrors     bool           `json:"HasErrors"`
	Notifications []Notification `json:"Notifications"`
	ShipmentLabel ShipmentLabel  `json:"ShipmentLabel"`
}

// ShipmentResponse is the CreateShipments response body.
type ShipmentResponse struct {
	HasErrors     bool                `json:"HasErrors"`
	Notifications []Notification      `json:"Notifications"`
	Shipments     []ProcessedShipment `json:"Shipments"`
}

// LabelPrintRequest is the PrintLabel request body.
type LabelPrintRequest struct {
	ClientInfo     ClientInfo `json:"ClientInfo"`
	ShipmentNumber string     `json:"ShipmentNumber"`
	LabelInfo      LabelInfo  `json:"LabelInfo"`
}

// LabelPrintResponse is the PrintLabel response body.
type LabelPrintResponse struct {
	HasErrors      bool           `json:"HasErrors"`
	Notifications  []Notification `json:"Notifications"`
	ShipmentNumber string         `json:"ShipmentNumber"`
	ShipmentLabel  ShipmentLabel  `json:"ShipmentLabel"`
}

// TrackRequest is the TrackShipments request body.
type TrackRequest struct {
	ClientInfo                ClientInfo `json:"ClientInfo"`
	Shipments                 []string   `json:"Shipments"`
	GetLastTrackingUpdateOnly bool       `json:"GetLastTrackingUpdateOnly"`
}

// TrackingResult is one AWB's tracking updates, keyed by AWB number.
type TrackingResult struct {
	Key   string           `json:"Key"`
	Value []TrackingUpdate `json:"Value"`
}

// TrackingUpdate is one tracking event.
type TrackingUpdate struct {
	UpdateCode        string `json:"UpdateCode"`
	UpdateDescription string `json:"UpdateDescription"`
	UpdateDateTime    string `json:"UpdateDateTime"`
	UpdateLocation    string `json:"UpdateLocation"`
	Comments          string `json:"Comments"`
}

// TrackResponse is the TrackShipments response body.
type TrackResponse struct {
	HasErrors       bool             `json:"HasErrors"`
	Notifications   []Notification   `json:"Notifications"`
	TrackingResults []TrackingResult `json:"TrackingResults"`
}

// APIError represents an error from the Aramex API.
type APIError struct {
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}
