// Package bluedart provides integration with the Bluedart shipping API.
//
// Bluedart has no rate operation: quotes are always empty and the label is
// issued as part of waybill generation.
package bluedart

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/nonalabs/shipbridge/pkg/carrier"
)

const carrierName = "Bluedart"

const trackingURLTemplate = "https://www.bluedart.com/web/guest/trackdartresultthirdparty?trackFor=0&trackNo=%s"

// Config holds Bluedart configuration.
type Config struct {
	Enabled      bool
	UseMock      bool
	LicenceKey   string
	LoginID      string
	CustomerCode string
	OriginArea   string
	WayBillURL   string
	TrackingURL  string
}

// Client is the Bluedart carrier client.
type Client struct {
	config    Config
	apiClient APIClient
	logger    *otelzap.Logger
	tracer    trace.Tracer
}

// New creates a new Bluedart client. Configuration is validated eagerly so
// a disabled carrier or missing credentials fail before any network call.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) (*Client, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("%w: %s", carrier.ErrCarrierDisabled, carrierName)
	}
	if !cfg.UseMock && (cfg.LicenceKey == "" || cfg.LoginID == "") {
		return nil, fmt.Errorf("%w: %s", carrier.ErrMissingCredentials, carrierName)
	}

	var apiClient APIClient
	if cfg.UseMock {
		apiClient = NewMockAPIClient()
	} else {
		apiClient = NewSOAPAPIClient(SOAPAPIClientConfig{
			WayBillURL:  cfg.WayBillURL,
			TrackingURL: cfg.TrackingURL,
			LicenceKey:  cfg.LicenceKey,
			LoginID:     cfg.LoginID,
			Timeout:     30 * time.Second,
		})
	}

	return &Client{
		config:    cfg,
		apiClient: apiClient,
		logger:    logger,
		tracer:    tracer,
	}, nil
}

// NewWithAPIClient creates a new Bluedart client with a custom API client.
func NewWithAPIClient(cfg Config, apiClient APIClient, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	return &Client{
		config:    cfg,
		apiClient: apiClient,
		logger:    logger,
		tracer:    tracer,
	}
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return carrierName
}

// Coverage reports that Bluedart serves domestic routes.
func (c *Client) Coverage() carrier.Coverage {
	return carrier.CoverageDomestic
}

// Quote returns no services: the Bluedart API exposes no rate operation.
// The carrier stays bookable when the user selects it directly.
func (c *Client) Quote(ctx context.Context, req *carrier.QuoteRequest) ([]carrier.ServiceQuote, error) {
	c.logger.Debug("Bluedart exposes no rate operation, returning no quotes")
	return []carrier.ServiceQuote{}, nil
}

// Book generates a waybill with Bluedart. The label arrives inline as
// base64 print content.
func (c *Client) Book(ctx context.Context, req *carrier.BookingRequest) (*carrier.BookingResult, error) {
	c.logger.Info("Generating Bluedart waybill",
		zap.String("reference", req.Reference),
	)

	apiResp, err := c.apiClient.GenerateWayBill(ctx, bookingToAPI(req, c.config))
	if err != nil {
		c.logger.Error("Bluedart API error", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", carrier.ErrBookingRejected, err)
	}
	if apiResp.AWBNo == "" {
		return nil, fmt.Errorf("%w: no waybill number in response", carrier.ErrBookingRejected)
	}

	return &carrier.BookingResult{
		ShipmentID:     apiResp.AWBNo,
		Carrier:        carrierName,
		CarrierService: req.Service.ServiceName,
		LabelData:      apiResp.AWBPrintContent,
		AWBNumber:      apiResp.AWBNo,
		TrackingURL:    fmt.Sprintf(trackingURLTemplate, apiResp.AWBNo),
	}, nil
}

// Label always fails: the Bluedart label is only issued at waybill
// generation and is returned inline on the booking result.
func (c *Client) Label(ctx context.Context, req *carrier.LabelRequest) (*carrier.LabelResult, error) {
	return nil, fmt.Errorf("%w: Bluedart issues the label at waybill generation", carrier.ErrLabelNotAvailable)
}

// Track fetches the latest waybill status from Bluedart.
func (c *Client) Track(ctx context.Context, req *carrier.TrackingRequest) (*carrier.TrackingStatus, error) {
	awb := req.AWBNumber
	if awb == "" {
		awb = req.ShipmentID
	}

	c.logger.Info("Tracking Bluedart waybill", zap.String("awb", awb))

	apiResp, err := c.apiClient.TrackWayBill(ctx, awb)
	if err != nil {
		c.logger.Error("Bluedart API error", zap.Error(err))
		return nil, err
	}

	return &carrier.TrackingStatus{
		State:       mapTrackingState(apiResp.StatusType, apiResp.Status),
		Detail:      apiResp.Status,
		AWBNumber:   awb,
		TrackingURL: fmt.Sprintf(trackingURLTemplate, awb),
	}, nil
}

// ============================================================================
// Conversion helpers
// ============================================================================

func bookingToAPI(req *carrier.BookingRequest, cfg Config) *WayBillRequest {
	pickupAt := req.PickupAt
	if pickupAt.IsZero() {
		pickupAt = time.Now()
	}

	return &WayBillRequest{
		Shipper: Shipper{
			CustomerName:      req.PickupAddress.Title,
			CustomerAddress1:  req.PickupAddress.Line1,
			CustomerAddress2:  req.PickupAddress.Line2,
			CustomerAddress3:  req.PickupAddress.City,
			CustomerPincode:   req.PickupAddress.Pincode,
			CustomerMobile:    req.PickupContact.MobileNo,
			CustomerTelephone: req.PickupContact.Phone,
			CustomerEmailID:   req.PickupContact.Email,
			CustomerCode:      cfg.CustomerCode,
			OriginArea:        cfg.OriginArea,
			Sender:            req.PickupContact.FullName(),
		},
		Consignee: Consignee{
			ConsigneeName:      req.DeliveryContact.FullName(),
			ConsigneeAddress1:  req.DeliveryAddress.Line1,
			ConsigneeAddress2:  req.DeliveryAddress.Line2,
			ConsigneeAddress3:  req.DeliveryAddress.City,
			ConsigneePincode:   req.DeliveryAddress.Pincode,
			ConsigneeMobile:    req.DeliveryContact.MobileNo,
			ConsigneeTelephone: req.DeliveryContact.Phone,
			ConsigneeAttention: req.DeliveryContact.FullName(),
		},
		Services: Services{
			ProductCode:       "A",
			ProductType:       "Dutiables",
			PieceCount:        pieceCount(req.Parcels),
			ActualWeight:      carrier.TotalWeight(req.Parcels),
			DeclaredValue:     req.DeclaredValue,
			CreditReferenceNo: req.Reference,
			PickupDate:        fmt.Sprintf("/Date(%d)/", pickupAt.UnixMilli()),
			PickupTime:        pickupAt.Format("1504"),
			RegisterPickup:    true,
		},
	}
}

func pieceCount(parcels []carrier.Parcel) int {
	count := 0
	for _, p := range parcels {
		if p.Count < 1 {
			count++
			continue
		}
		count += p.Count
	}
	return count
}

func mapTrackingState(statusType, status string) carrier.TrackingState {
	switch statusType {
	case "DL":
		return carrier.StateDelivered
	case "RD", "RT":
		return carrier.StateReturned
	}
	if strings.Contains(strings.ToUpper(status), "LOST") {
		return carrier.StateLost
	}
	return carrier.StateInProgress
}

var _ carrier.Carrier = (*Client)(nil)
