// Package aramex provides integration with the Aramex shipping API.
package aramex

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

const carrierName = "Aramex"

// Defaults dictated by the Aramex API contract.
const (
	apiVersion          = "v1.0"
	apiSource           = 24
	productGroupExpress = "EXP"
	productTypePPX      = "PPX"
	paymentTypePrepaid  = "P"
	labelReportID       = 9201
)

const trackingURLTemplate = "https://www.aramex.com/us/en/track/results?mode=0&ShipmentNumber=%s"

// Config holds Aramex configuration.
type Config struct {
	Enabled            bool
	UseMock            bool
	UserName           string
	Password           string
	AccountNumber      string
	AccountPin         string
	AccountEntity      string
	AccountCountryCode string
	RatesURL           string
	ShipmentsURL       string
	PrintLabelURL      string
	TrackingURL        string
}

// Client is the Aramex carrier client.
type Client struct {
	config    Config
	apiClient APIClient
	logger    *otelzap.Logger
	tracer    trace.Tracer
}

// New creates a new Aramex client. Configuration is validated eagerly so a
// disabled carrier or missing credentials fail before any network call.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) (*Client, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("%w: %s", carrier.ErrCarrierDisabled, carrierName)
	}
	if !cfg.UseMock && (cfg.UserName == "" || cfg.Password == "" || cfg.AccountNumber == "") {
		return nil, fmt.Errorf("%w: %s", carrier.ErrMissingCredentials, carrierName)
	}

	var apiClient APIClient
	if cfg.UseMock {
		apiClient = NewMockAPIClient()
	} else {
		apiClient = NewHTTPAPIClient(HTTPAPIClientConfig{
			RatesURL:      cfg.RatesURL,
			ShipmentsURL:  cfg.ShipmentsURL,
			PrintLabelURL: cfg.PrintLabelURL,
			TrackingURL:   cfg.TrackingURL,
			Timeout:       30 * time.Second,
		})
	}

	return &Client{
		config:    cfg,
		apiClient: apiClient,
		logger:    logger,
		tracer:    tracer,
	}, nil
}

// NewWithAPIClient creates a new Aramex client with a custom API client.
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

// Coverage reports that Aramex serves international routes.
func (c *Client) Coverage() carrier.Coverage {
	return carrier.CoverageInternational
}

// Quote returns the Aramex express rate for the route.
func (c *Client) Quote(ctx context.Context, req *carrier.QuoteRequest) ([]carrier.ServiceQuote, error) {
	c.logger.Info("Getting Aramex rate",
		zap.String("origin_country", req.PickupAddress.CountryCode),
		zap.String("destination_country", req.DeliveryAddress.CountryCode),
		zap.Int("parcel_count", len(req.Parcels)),
	)

	weight := carrier.TotalWeight(req.Parcels)
	apiReq := &RateRequest{
		ClientInfo:         c.clientInfo(),
		OriginAddress:      addressToAPI(req.PickupAddress),
		DestinationAddress: addressToAPI(req.DeliveryAddress),
		ShipmentDetails: ShipmentDetails{
			ActualWeight:     Weight{Unit: "KG", Value: weight},
			ChargeableWeight: Weight{Unit: "KG", Value: weight},
			NumberOfPieces:   pieceCount(req.Parcels),
			ProductGroup:     productGroupExpress,
			ProductType:      productTypePPX,
			PaymentType:      paymentTypePrepaid,
		},
	}

	apiResp, err := c.apiClient.CalculateRate(ctx, apiReq)
	if err != nil {
		c.logger.Error("Aramex API error", zap.Error(err))
		return nil, err
	}

	return []carrier.ServiceQuote{
		{
			Carrier:     carrierName,
			ServiceID:   productTypePPX,
			ServiceName: "Priority Parcel Express",
			RealWeight:  weight,
			TotalPrice:  apiResp.TotalAmount.Value,
			BasePrice:   apiResp.TotalAmount.Value,
			Currency:    apiResp.TotalAmount.CurrencyCode,
		},
	}, nil
}

// Book creates a shipment with Aramex.
func (c *Client) Book(ctx context.Context, req *carrier.BookingRequest) (*carrier.BookingResult, error) {
	c.logger.Info("Creating Aramex shipment",
		zap.String("reference", req.Reference),
		zap.String("service", req.Service.ServiceID),
	)

	productType := req.Service.ServiceID
	if productType == "" {
		productType = productTypePPX
	}

	weight := carrier.TotalWeight(req.Parcels)
	pickupAt := req.PickupAt
	if pickupAt.IsZero() {
		pickupAt = time.Now()
	}

	apiReq := &ShipmentRequest{
		ClientInfo: c.clientInfo(),
		LabelInfo:  LabelInfo{ReportID: labelReportID, ReportType: "URL"},
		Shipments: []Shipment{
			{
				Reference1: req.Reference,
				Shipper: Party{
					Reference1:    req.Reference,
					AccountNumber: c.config.AccountNumber,
					PartyAddress:  addressToAPI(req.PickupAddress),
					Contact:       contactToAPI(req.PickupContact),
				},
				Consignee: Party{
					PartyAddress: addressToAPI(req.DeliveryAddress),
					Contact:      contactToAPI(req.DeliveryContact),
				},
				ShippingDateTime: ShippingDateTime(pickupAt),
				DueDate:          ShippingDateTime(pickupAt),
				PickupLocation:   "Reception",
				Details: ShipmentDetails{
					Dimensions:         firstDimensions(req.Parcels),
					ActualWeight:       Weight{Unit: "KG", Value: weight},
					ChargeableWeight:   Weight{Unit: "KG", Value: weight},
					NumberOfPieces:     pieceCount(req.Parcels),
					ProductGroup:       productGroupExpress,
					ProductType:        productType,
					PaymentType:        paymentTypePrepaid,
					DescriptionOfGoods: req.ContentDescription,
					GoodsOriginCountry: req.PickupAddress.CountryCode,
				},
			},
		},
	}

	apiResp, err := c.apiClient.CreateShipment(ctx, apiReq)
	if err != nil {
		c.logger.Error("Aramex API error", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", carrier.ErrBookingRejected, err)
	}
	if len(apiResp.Shipments) == 0 {
		return nil, fmt.Errorf("%w: empty shipment response", carrier.ErrBookingRejected)
	}

	return shipmentResponseToCarrier(&apiResp.Shipments[0], req.Service.ServiceName), nil
}

// Label retrieves the shipping label URL from Aramex. The AWB number is
// the shipment identifier.
func (c *Client) Label(ctx context.Context, req *carrier.LabelRequest) (*carrier.LabelResult, error) {
	awb := req.AWBNumber
	if awb == "" {
		awb = req.ShipmentID
	}

	c.logger.Info("Getting Aramex label", zap.String("awb", awb))

	apiResp, err := c.apiClient.PrintLabel(ctx, &LabelPrintRequest{
		ClientInfo:     c.clientInfo(),
		ShipmentNumber: awb,
		LabelInfo:      LabelInfo{ReportID: labelReportID, ReportType: "URL"},
	})
	if err != nil {
		c.logger.Error("Aramex API error", zap.Error(err))
		return nil, err
	}

	return &carrier.LabelResult{URL: apiResp.ShipmentLabel.LabelURL}, nil
}

// Track fetches the latest tracking update from Aramex.
func (c *Client) Track(ctx context.Context, req *carrier.TrackingRequest) (*carrier.TrackingStatus, error) {
	awb := req.AWBNumber
	if awb == "" {
		awb = req.ShipmentID
	}

	c.logger.Info("Tracking Aramex shipment", zap.String("awb", awb))

	apiResp, err := c.apiClient.TrackShipments(ctx, &TrackRequest{
		ClientInfo:                c.clientInfo(),
		Shipments:                 []string{awb},
		GetLastTrackingUpdateOnly: true,
	})
	if err != nil {
		c.logger.Error("Aramex API error", zap.Error(err))
		return nil, err
	}

	if len(apiResp.TrackingResults) == 0 || len(apiResp.TrackingResults[0].Value) == 0 {
		return nil, fmt.Errorf("%w: %s", carrier.ErrTrackingNotFound, awb)
	}

	update := apiResp.TrackingResults[0].Value[0]
	return &carrier.TrackingStatus{
		State:       mapTrackingState(update),
		Detail:      update.UpdateDescription,
		AWBNumber:   awb,
		TrackingURL: fmt.Sprintf(trackingURLTemplate, awb),
	}, nil
}

// ============================================================================
// Conversion helpers
// ============================================================================

func (c *Client) clientInfo() ClientInfo {
	return ClientInfo{
		UserName:           c.config.UserName,
		Password:           c.config.Password,
		Version:            apiVersion,
		AccountNumber:      c.config.AccountNumber,
		AccountPin:         c.config.AccountPin,
		AccountEntity:      c.config.AccountEntity,
		AccountCountryCode: c.config.AccountCountryCode,
		Source:             apiSource,
	}
}

func addressToAPI(addr carrier.Address) Address {
	return Address{
		Line1:       addr.Line1,
		Line2:       addr.Line2,
		City:        addr.City,
		PostCode:    addr.Pincode,
		CountryCode: addr.CountryCode,
	}
}

func contactToAPI(contact carrier.Contact) Contact {
	return Contact{
		PersonName:   contact.FullName(),
		CompanyName:  contact.CompanyName,
		PhoneNumber1: contact.Phone,
		CellPhone:    contact.MobileNo,
		EmailAddress: contact.Email,
	}
}

func firstDimensions(parcels []carrier.Parcel) *Dimensions {
	if len(parcels) == 0 || parcels[0].Length == 0 {
		return nil
	}
	return &Dimensions{
		Length: parcels[0].Length,
		Width:  parcels[0].Width,
		Height: parcels[0].Height,
		Unit:   "CM",
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

func shipmentResponseToCarrier(s *ProcessedShipment, serviceName string) *carrier.BookingResult {
	// Aramex uses the shipment ID as the AWB number.
	return &carrier.BookingResult{
		ShipmentID:     s.ID,
		Carrier:        carrierName,
		CarrierService: serviceName,
		LabelURL:       s.ShipmentLabel.LabelURL,
		AWBNumber:      s.ID,
		TrackingURL:    fmt.Sprintf(trackingURLTemplate, s.ID),
	}
}

func mapTrackingState(update TrackingUpdate) carrier.TrackingState {
	desc := strings.ToUpper(update.UpdateDescription)
	switch {
	case strings.HasPrefix(desc, "DELIVERED"):
		return carrier.StateDelivered
	case strings.Contains(desc, "RETURNED TO SHIPPER"):
		return carrier.StateReturned
	default:
		return carrier.StateInProgress
	}
}

var _ carrier.Carrier = (*Client)(nil)
