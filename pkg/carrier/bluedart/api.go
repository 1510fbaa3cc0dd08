package bluedart

import (
	"context"
)

// APIClient defines the interface for Bluedart API operations. Waybill
// generation goes over SOAP; tracking uses the XML query servlet.
type APIClient interface {
	// GenerateWayBill books a shipment and returns the AWB plus label
	GenerateWayBill(ctx context.Context, req *WayBillRequest) (*WayBillResponse, error)

	// TrackWayBill fetches the latest status for an AWB
	TrackWayBill(ctx context.Context, awb string) (*WayBillTrackResponse, error)
}

// ============================================================================
// API Request/Response Types (match the Bluedart WayBillGeneration contract)
// ============================================================================

// Shipper is the pickup party of a waybill.
type Shipper struct {
	CustomerName      string
	CustomerAddress1  string
	CustomerAddress2  string
	CustomerAddress3  string
	CustomerPincode   string
	CustomerMobile    string
	CustomerTelephone string
	CustomerEmailID   string
	CustomerCode      string
	OriginArea        string
	Sender            string
	IsToPayCustomer   bool
}

// Consignee is the delivery party of a waybill.
type Consignee struct {
	ConsigneeName      string
	ConsigneeAddress1  string
	ConsigneeAddress2  string
	ConsigneeAddress3  string
	ConsigneePincode   string
	ConsigneeMobile    string
	ConsigneeTelephone string
	ConsigneeAttention string
}

// Services describes the goods and pickup of a waybill.
type Services struct {
	ProductCode       string
	ProductType       string
	PieceCount        int
	ActualWeight      float64
	DeclaredValue     float64
	CreditReferenceNo string
	PickupDate        string // /Date(<epoch-ms>)/
	PickupTime        string // HHMM
	RegisterPickup    bool
}

// WayBillRequest is the GenerateWayBill request.
type WayBillRequest struct {
	Shipper   Shipper
	Consignee Consignee
	Services  Services
}

// WayBillStatus is one status line of a waybill generation result.
type WayBillStatus struct {
	StatusCode        string
	StatusInformation string
}

// WayBillResponse is the GenerateWayBill result. AWBPrintContent holds the
// base64 label produced at generation time.
type WayBillResponse struct {
	AWBNo           string
	AWBPrintContent string
	IsError         bool
	Status          []WayBillStatus
}

// WayBillTrackResponse is the latest tracking state of an AWB from the
// query servlet.
type WayBillTrackResponse struct {
	AWBNo      string
	Status     string
	StatusType string // DL delivered, RD returned, IT in transit
}

// APIError represents an error from the Bluedart API.
type APIError struct {
	Code        string
	Description string
}

func (e *APIError) Error() string {
	return e.Code + ": " + e.Description
}
