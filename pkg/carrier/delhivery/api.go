package delhivery

import (
	"context"
	"errors"
	"fmt"
)

// APIClient defines the interface for Delhivery API operations. Every
// authenticated call takes the bearer token explicitly so the retry loop
// in the client owns the token lifecycle.
type APIClient interface {
	// GenerateToken exchanges credentials for a fresh JWT
	GenerateToken(ctx context.Context) (*TokenResponse, error)

	// GetCharges fetches the shipping charge for a route and weight
	GetCharges(ctx context.Context, token string, req *ChargesRequest) (*ChargesResponse, error)

	// CreateJob submits a shipment creation job
	CreateJob(ctx context.Context, token string, req *CreateShipmentRequest) (*CreateJobResponse, error)

	// GetJob polls the status of a shipment creation job
	GetJob(ctx context.Context, token string, jobID string) (*JobStatusResponse, error)

	// GetLabel fetches the base64 label for an AWB
	GetLabel(ctx context.Context, token string, awb string) (*LabelResponse, error)

	// TrackShipment fetches the status of a shipment by LR number
	TrackShipment(ctx context.Context, token string, lrNumber string) (*TrackingResponse, error)
}

// ============================================================================
// API Request/Response Types (match the Delhivery JSON API structure)
// ============================================================================

// TokenResponse is the generate-token response body.
type TokenResponse struct {
	JWT string `json:"jwt"`
}

// ChargesRequest queries the invoice-charges endpoint.
type ChargesRequest struct {
	OriginPin      string
	DestinationPin string
	WeightGrams    int
	PaymentType    string
}

// ChargesResponse is one entry of the invoice-charges response array.
type ChargesResponse struct {
	TotalAmount float64 `json:"total_amount"`
}

// PickupLocation identifies the registered pickup point.
type PickupLocation struct {
	Name    string `json:"name"`
	Address string `json:"add"`
	City    string `json:"city"`
	PinCode string `json:"pin_code"`
	Country string `json:"country"`
	Phone   string `json:"phone"`
}

// DropoffLocation is the consignee address.
type DropoffLocation struct {
	Consignee string `json:"consignee"`
	Address   string `json:"address"`
	City      string `json:"city"`
	Region    string `json:"region"`
	Zip       string `json:"zip"`
	Phone     string `json:"phone"`
}

// Suborder is one content line of a shipment.
type Suborder struct {
	Count       int    `json:"count"`
	Description string `json:"description"`
}

// CreateShipmentRequest is the create-shipment job payload.
type CreateShipmentRequest struct {
	PickupLocation  PickupLocation  `json:"pickup_location"`
	DropoffLocation DropoffLocation `json:"dropoff_location"`
	DeliveryMode    string          `json:"d_mode"`
	Amount          float64         `json:"amount"`
	ROVInsurance    bool            `json:"rov_insurance"`
	WeightGrams     int             `json:"weight"`
	Suborders       []Suborder      `json:"suborders"`
}

// CreateJobResponse acknowledges an accepted shipment job.
type CreateJobResponse struct {
	JobID string `json:"job_id"`
}

// JobResult carries the shipment identifiers once the job completes.
type JobResult struct {
	LRNumber      string `json:"lrnum"`
	MasterWaybill string `json:"master_waybill"`
}

// JobStatus is the polled state of a shipment job.
type JobStatus struct {
	Type  string    `json:"type"`
	Value JobResult `json:"value"`
}

// JobStatusResponse is the get-shipment poll response body.
type JobStatusResponse struct {
	Status JobStatus `json:"status"`
}

// LabelResponse is the print-label response body.
type LabelResponse struct {
	Data string `json:"data"`
}

// TrackingResponse is the track-shipment response body.
type TrackingResponse struct {
	Data struct {
		Status string `json:"status"`
	} `json:"data"`
}

// APIError represents an error from the Delhivery API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP_%d: %s", e.StatusCode, e.Message)
}

// IsUnauthorized reports whether err is a 401 from the Delhivery API,
// which signals an expired or invalid token.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 401
}
