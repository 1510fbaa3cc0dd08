// Package letmeship provides integration with the LetMeShip shipping API.
//
// LetMeShip is a broker over multiple carriers. Booking resolves the AWB in
// two chained calls: create the shipment, then fetch it back for the
// carrier-assigned waybill numbers.
package letmeship

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/nonalabs/shipbridge/pkg/carrier"
)

const carrierName = "LetMeShip"

// maxCompanyLen is the company name limit enforced by the LetMeShip API.
const maxCompanyLen = 30

// Config holds LetMeShip configuration.
type Config struct {
	Enabled     bool
	UseMock     bool
	APIID       string
	APIPassword string
	BaseURL     string
}

// Client is the LetMeShip carrier client.
type Client struct {
	config    Config
	apiClient APIClient
	logger    *otelzap.Logger
	tracer    trace.Tracer
}

// New creates a new LetMeShip client. Configuration is validated eagerly so
// a disabled carrier or missing credentials fail before any network call.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) (*Client, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("%w: %s", carrier.ErrCarrierDisabled, carrierName)
	}
	if !cfg.UseMock && (cfg.APIID == "" || cfg.APIPassword == "") {
		return nil, fmt.Errorf("%w: %s", carrier.ErrMissingCredentials, carrierName)
	}

	var apiClient APIClient
	if cfg.UseMock {
		apiClient = NewMockAPIClient()
	} else {
		apiClient = NewHTTPAPIClient(HTTPAPIClientConfig{
			BaseURL:     cfg.BaseURL,
			APIID:       cfg.APIID,
			APIPassword: cfg.APIPassword,
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

// NewWithAPIClient creates a new LetMeShip client with a custom API client.
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

// Coverage reports that LetMeShip serves international routes.
func (c *Client) Coverage() carrier.Coverage {
	return carrier.CoverageInternational
}

// Quote returns available LetMeShip services for the route.
func (c *Client) Quote(ctx context.Context, req *carrier.QuoteRequest) ([]carrier.ServiceQuote, error) {
	c.logger.Info("Getting LetMeShip services",
		zap.String("origin_country", req.PickupAddress.CountryCode),
		zap.String("destination_country", req.DeliveryAddress.CountryCode),
	)

	pickupDate := req.PickupDate
	if pickupDate.IsZero() {
		pickupDate = time.Now()
	}

	apiReq := &AvailabilityRequest{
		PickupInfo:   partyToAPI(req.PickupAddress, carrier.Contact{}),
		DeliveryInfo: partyToAPI(req.DeliveryAddress, carrier.Contact{}),
		ShipmentDetails: shipmentDetailsToAPI(
			req.Parcels, req.ContentDescription, req.DeclaredValue, pickupDate,
		),
	}

	apiResp, err := c.apiClient.GetAvailableServices(ctx, apiReq)
	if err != nil {
		c.logger.Error("LetMeShip API error", zap.Error(err))
		return nil, err
	}

	quotes := make([]carrier.ServiceQuote, 0, len(apiResp.ServiceList))
	for _, service := range apiResp.ServiceList {
		details := service.BaseServiceDetails
		quotes = append(quotes, carrier.ServiceQuote{
			Carrier:     carrierName,
			ServiceID:   strconv.Itoa(details.ID),
			ServiceName: details.Name,
			IsPreferred: details.Preferred,
			RealWeight:  details.PriceInfo.RealWeight,
			TotalPrice:  details.PriceInfo.TotalPrice,
			BasePrice:   details.PriceInfo.NetPrice,
			Currency:    details.PriceInfo.Currency,
		})
	}
	return quotes, nil
}

// Book creates a shipment with LetMeShip. The AWB is resolved by reading
// the shipment back after booking.
func (c *Client) Book(ctx context.Context, req *carrier.BookingRequest) (*carrier.BookingResult, error) {
	c.logger.Info("Creating LetMeShip shipment",
		zap.String("reference", req.Reference),
		zap.String("service", req.Service.ServiceID),
	)

	serviceID, err := strconv.Atoi(req.Service.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid service id %q", carrier.ErrBookingRejected, req.Service.ServiceID)
	}

	pickupAt := req.PickupAt
	if pickupAt.IsZero() {
		pickupAt = time.Now()
	}

	apiReq := &ShipmentOrderRequest{
		PickupInfo:   partyToAPI(req.PickupAddress, req.PickupContact),
		DeliveryInfo: deliveryPartyToAPI(req.DeliveryAddress, req.DeliveryContact, req.DeliveryCompanyName),
		ShipmentDetails: shipmentDetailsToAPI(
			req.Parcels, req.ContentDescription, req.DeclaredValue, pickupAt,
		),
		Service: Service{
			BaseServiceDetails: BaseServiceDetails{
				ID:   serviceID,
				Name: req.Service.ServiceName,
				PriceInfo: PriceInfo{
					NetPrice:   req.Service.BasePrice,
					TotalPrice: req.Service.TotalPrice,
					RealWeight: req.Service.RealWeight,
					Currency:   req.Service.Currency,
				},
			},
		},
		ShipmentNotification: ShipmentNotification{
			TrackingNotification: TrackingNotification{
				Email:                req.PickupContact.Email,
				DeliveryNotification: true,
				ProblemNotification:  true,
			},
			RecipientNotification: TrackingNotification{
				Email:                req.DeliveryContact.Email,
				DeliveryNotification: true,
			},
		},
		LabelEmail: true,
	}

	orderResp, err := c.apiClient.CreateShipment(ctx, apiReq)
	if err != nil {
		c.logger.Error("LetMeShip API error", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", carrier.ErrBookingRejected, err)
	}
	if orderResp.ShipmentID == "" {
		return nil, fmt.Errorf("%w: no shipment id in response", carrier.ErrBookingRejected)
	}

	// Second call resolves the carrier-assigned AWB numbers.
	detailsResp, err := c.apiClient.GetShipment(ctx, orderResp.ShipmentID)
	if err != nil {
		c.logger.Error("LetMeShip API error", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", carrier.ErrBookingRejected, err)
	}

	awb := ""
	if len(detailsResp.TrackingData.ParcelList) > 0 {
		awb = detailsResp.TrackingData.ParcelList[0].AWBNumber
	}

	return &carrier.BookingResult{
		ShipmentID:     orderResp.ShipmentID,
		Carrier:        carrierName,
		CarrierService: req.Service.ServiceName,
		AWBNumber:      awb,
		TrackingURL:    detailsResp.TrackingURL,
	}, nil
}

// Label retrieves the base64 shipping label from LetMeShip. The shipment
// id, not the AWB, is the label identifier.
func (c *Client) Label(ctx context.Context, req *carrier.LabelRequest) (*carrier.LabelResult, error) {
	c.logger.Info("Getting LetMeShip label", zap.String("shipment_id", req.ShipmentID))

	apiResp, err := c.apiClient.GetDocuments(ctx, req.ShipmentID, "LABEL")
	if err != nil {
		c.logger.Error("LetMeShip API error", zap.Error(err))
		return nil, err
	}
	if len(apiResp.ShipmentDocuments) == 0 {
		return nil, fmt.Errorf("%w: %s", carrier.ErrLabelNotAvailable, req.ShipmentID)
	}

	return &carrier.LabelResult{Data: apiResp.ShipmentDocuments[0].Data}, nil
}

// Track fetches the tracking status from LetMeShip.
func (c *Client) Track(ctx context.Context, req *carrier.TrackingRequest) (*carrier.TrackingStatus, error) {
	c.logger.Info("Tracking LetMeShip shipment", zap.String("shipment_id", req.ShipmentID))

	apiResp, err := c.apiClient.GetTracking(ctx, req.ShipmentID)
	if err != nil {
		c.logger.Error("LetMeShip API error", zap.Error(err))
		return nil, err
	}

	return &carrier.TrackingStatus{
		State:       mapTrackingState(apiResp.LMSTrackingStatus),
		Detail:      apiResp.LMSTrackingStatus,
		AWBNumber:   req.AWBNumber,
		TrackingURL: apiResp.TrackingURL,
	}, nil
}

// ============================================================================
// Conversion helpers
// ============================================================================

func partyToAPI(addr carrier.Address, contact carrier.Contact) PartyInfo {
	return buildParty(addr, contact, contact.CompanyName)
}

func deliveryPartyToAPI(addr carrier.Address, contact carrier.Contact, companyName string) PartyInfo {
	if companyName == "" {
		companyName = contact.CompanyName
	}
	return buildParty(addr, contact, companyName)
}

func buildParty(addr carrier.Address, contact carrier.Contact, companyName string) PartyInfo {
	prefix, number := splitPhone(contact.Phone)
	return PartyInfo{
		Address: Address{
			CountryCode: addr.CountryCode,
			Zip:         addr.Pincode,
			City:        addr.City,
			Street:      addr.Line1,
			AddressInfo: addr.Line2,
		},
		Person: Person{
			Title:             titleFromGender(contact.Gender),
			Firstname:         contact.FirstName,
			Lastname:          contact.LastName,
			Company:           trimCompany(companyName),
			PhoneNumberPrefix: prefix,
			PhoneNumber:       number,
			Email:             contact.Email,
		},
	}
}

func shipmentDetailsToAPI(parcels []carrier.Parcel, description string, goodsValue float64, pickupAt time.Time) ShipmentDetails {
	parcelList := make([]Parcel, 0, len(parcels))
	for _, p := range parcels {
		quantity := p.Count
		if quantity < 1 {
			quantity = 1
		}
		parcelList = append(parcelList, Parcel{
			Height:   p.Height,
			Length:   p.Length,
			Width:    p.Width,
			Weight:   p.Weight,
			Quantity: quantity,
		})
	}

	return ShipmentDetails{
		ShipmentType:       "PARCEL",
		GoodsValue:         goodsValue,
		ContentDescription: description,
		ParcelList:         parcelList,
		PickupInterval:     PickupInterval{Date: pickupAt.Format("2006-01-02")},
	}
}

// trimCompany shortens company names to the API limit.
func trimCompany(name string) string {
	if len(name) > maxCompanyLen {
		return name[:maxCompanyLen]
	}
	return name
}

// splitPhone splits a phone number into the three-character prefix and the
// remaining digits, the format the LetMeShip API expects.
func splitPhone(phone string) (prefix, number string) {
	phone = strings.TrimSpace(phone)
	if len(phone) <= 3 {
		return phone, ""
	}
	return phone[:3], phone[3:]
}

func titleFromGender(gender string) string {
	if strings.EqualFold(gender, "female") {
		return "MS"
	}
	return "MR"
}

func mapTrackingState(status string) carrier.TrackingState {
	normalized := strings.ToUpper(status)
	switch {
	case strings.HasPrefix(normalized, "DELIVERED"):
		return carrier.StateDelivered
	case strings.HasPrefix(normalized, "RETURNED"):
		return carrier.StateReturned
	case strings.HasPrefix(normalized, "LOST"):
		return carrier.StateLost
	default:
		return carrier.StateInProgress
	}
}

var _ carrier.Carrier = (*Client)(nil)
