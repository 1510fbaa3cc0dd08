// Package delhivery provides integration with the Delhivery shipping API.
//
// Delhivery authenticates with a short-lived JWT. The token lives in a
// TokenManager and every API call takes it explicitly; on a 401 the client
// refreshes the token and retries, bounded to three attempts per operation.
package delhivery

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

const carrierName = "Delhivery"

const (
	maxAuthAttempts     = 3
	defaultPollInterval = 3 * time.Second
	maxJobPolls         = 20
)

// Config holds Delhivery configuration.
type Config struct {
	Enabled         bool
	UseMock         bool
	Username        string
	Password        string
	TokenURL        string
	ChargesURL      string
	CreateJobURL    string
	JobStatusURL    string
	PrintLabelURL   string
	TrackURL        string
	TrackingPageURL string
	PollInterval    time.Duration
}

// Client is the Delhivery carrier client.
type Client struct {
	config       Config
	apiClient    APIClient
	tokens       *TokenManager
	pollInterval time.Duration
	logger       *otelzap.Logger
	tracer       trace.Tracer
}

// New creates a new Delhivery client. Configuration is validated eagerly so
// a disabled carrier or missing credentials fail before any network call.
// A nil token store keeps the token in memory only.
func New(cfg Config, store TokenStore, logger *otelzap.Logger, tracer trace.Tracer) (*Client, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("%w: %s", carrier.ErrCarrierDisabled, carrierName)
	}
	if !cfg.UseMock && (cfg.Username == "" || cfg.Password == "") {
		return nil, fmt.Errorf("%w: %s", carrier.ErrMissingCredentials, carrierName)
	}

	var apiClient APIClient
	if cfg.UseMock {
		apiClient = NewMockAPIClient()
	} else {
		apiClient = NewHTTPAPIClient(HTTPAPIClientConfig{
			Username:      cfg.Username,
			Password:      cfg.Password,
			TokenURL:      cfg.TokenURL,
			ChargesURL:    cfg.ChargesURL,
			CreateJobURL:  cfg.CreateJobURL,
			JobStatusURL:  cfg.JobStatusURL,
			PrintLabelURL: cfg.PrintLabelURL,
			TrackURL:      cfg.TrackURL,
			Timeout:       30 * time.Second,
		})
	}

	return newClient(cfg, apiClient, store, logger, tracer), nil
}

// NewWithAPIClient creates a new Delhivery client with a custom API client.
func NewWithAPIClient(cfg Config, apiClient APIClient, store TokenStore, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	return newClient(cfg, apiClient, store, logger, tracer)
}

func newClient(cfg Config, apiClient APIClient, store TokenStore, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	pollInterval := cfg.PollInterval
	if pollInterval == 0 {
		pollInterval = defaultPollInterval
	}

	return &Client{
		config:       cfg,
		apiClient:    apiClient,
		tokens:       NewTokenManager(apiClient, store, logger),
		pollInterval: pollInterval,
		logger:       logger,
		tracer:       tracer,
	}
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return carrierName
}

// Coverage reports that Delhivery serves domestic routes.
func (c *Client) Coverage() carrier.Coverage {
	return carrier.CoverageDomestic
}

// Tokens exposes the token manager, mainly for tests and startup warm-up.
func (c *Client) Tokens() *TokenManager {
	return c.tokens
}

// Quote returns the Delhivery surface rate for the route.
func (c *Client) Quote(ctx context.Context, req *carrier.QuoteRequest) ([]carrier.ServiceQuote, error) {
	weight := carrier.TotalWeight(req.Parcels)

	c.logger.Info("Getting Delhivery charges",
		zap.String("origin_pin", req.PickupAddress.Pincode),
		zap.String("destination_pin", req.DeliveryAddress.Pincode),
		zap.Float64("weight_kg", weight),
	)

	var apiResp *ChargesResponse
	err := c.withAuth(ctx, func(token string) error {
		var err error
		apiResp, err = c.apiClient.GetCharges(ctx, token, &ChargesRequest{
			OriginPin:      req.PickupAddress.Pincode,
			DestinationPin: req.DeliveryAddress.Pincode,
			WeightGrams:    toGrams(weight),
			PaymentType:    "Pre-paid",
		})
		return err
	})
	if err != nil {
		c.logger.Error("Delhivery API error", zap.Error(err))
		return nil, err
	}

	return []carrier.ServiceQuote{
		{
			Carrier:     carrierName,
			ServiceID:   "delhivery-express",
			ServiceName: "Delhivery Express",
			RealWeight:  weight,
			TotalPrice:  apiResp.TotalAmount,
			BasePrice:   apiResp.TotalAmount,
			Currency:    "INR",
		},
	}, nil
}

// Book creates a shipment with Delhivery. Creation is asynchronous: the
// API accepts a job which is polled until it completes with the LR number
// and master waybill.
func (c *Client) Book(ctx context.Context, req *carrier.BookingRequest) (*carrier.BookingResult, error) {
	c.logger.Info("Creating Delhivery shipment",
		zap.String("reference", req.Reference),
	)

	apiReq := bookingToAPI(req)

	var jobResp *CreateJobResponse
	err := c.withAuth(ctx, func(token string) error {
		var err error
		jobResp, err = c.apiClient.CreateJob(ctx, token, apiReq)
		return err
	})
	if err != nil {
		c.logger.Error("Delhivery API error", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", carrier.ErrBookingRejected, err)
	}

	result, err := c.awaitJob(ctx, jobResp.JobID)
	if err != nil {
		return nil, err
	}

	return &carrier.BookingResult{
		ShipmentID:     result.LRNumber,
		Carrier:        carrierName,
		CarrierService: req.Service.ServiceName,
		AWBNumber:      result.MasterWaybill,
		TrackingURL:    c.trackingURL(result.MasterWaybill),
	}, nil
}

// awaitJob polls the job status until it completes.
func (c *Client) awaitJob(ctx context.Context, jobID string) (*JobResult, error) {
	for poll := 0; poll < maxJobPolls; poll++ {
		var statusResp *JobStatusResponse
		err := c.withAuth(ctx, func(token string) error {
			var err error
			statusResp, err = c.apiClient.GetJob(ctx, token, jobID)
			return err
		})
		if err != nil {
			c.logger.Error("Delhivery API error", zap.Error(err))
			return nil, fmt.Errorf("%w: %v", carrier.ErrBookingRejected, err)
		}

		if statusResp.Status.Type == "Complete" {
			return &statusResp.Status.Value, nil
		}

		c.logger.Debug("Delhivery job pending",
			zap.String("job_id", jobID),
			zap.String("status", statusResp.Status.Type),
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}
	return nil, fmt.Errorf("%w: job %s did not complete", carrier.ErrBookingRejected, jobID)
}

// Label retrieves the base64 shipping label from Delhivery. The AWB number
// is the label identifier.
func (c *Client) Label(ctx context.Context, req *carrier.LabelRequest) (*carrier.LabelResult, error) {
	awb := req.AWBNumber
	if awb == "" {
		awb = req.ShipmentID
	}

	c.logger.Info("Getting Delhivery label", zap.String("awb", awb))

	var apiResp *LabelResponse
	err := c.withAuth(ctx, func(token string) error {
		var err error
		apiResp, err = c.apiClient.GetLabel(ctx, token, awb)
		return err
	})
	if err != nil {
		c.logger.Error("Delhivery API error", zap.Error(err))
		return nil, err
	}

	return &carrier.LabelResult{Data: apiResp.Data}, nil
}

// Track fetches the current shipment status from Delhivery. Tracking is
// keyed by the LR number; the user-facing URL is built from the AWB.
func (c *Client) Track(ctx context.Context, req *carrier.TrackingRequest) (*carrier.TrackingStatus, error) {
	c.logger.Info("Tracking Delhivery shipment",
		zap.String("lr_number", req.ShipmentID),
	)

	var apiResp *TrackingResponse
	err := c.withAuth(ctx, func(token string) error {
		var err error
		apiResp, err = c.apiClient.TrackShipment(ctx, token, req.ShipmentID)
		return err
	})
	if err != nil {
		c.logger.Error("Delhivery API error", zap.Error(err))
		return nil, err
	}

	return &carrier.TrackingStatus{
		State:       mapTrackingState(apiResp.Data.Status),
		Detail:      apiResp.Data.Status,
		AWBNumber:   req.AWBNumber,
		TrackingURL: c.trackingURL(req.AWBNumber),
	}, nil
}

// withAuth runs op with the current token, refreshing and retrying on a
// 401. At most maxAuthAttempts calls are made before the operation fails
// with ErrAuthorizationFailed.
func (c *Client) withAuth(ctx context.Context, op func(token string) error) error {
	token, err := c.tokens.Current(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", carrier.ErrAuthorizationFailed, err)
	}

	for attempt := 1; ; attempt++ {
		err = op(token)
		if err == nil || !IsUnauthorized(err) {
			return err
		}
		if attempt >= maxAuthAttempts {
			return fmt.Errorf("%w: token rejected after %d attempts", carrier.ErrAuthorizationFailed, attempt)
		}

		c.logger.Warn("Delhivery token rejected, refreshing",
			zap.Int("attempt", attempt),
		)
		token, err = c.tokens.Refresh(ctx)
		if err != nil {
			return fmt.Errorf("%w: %v", carrier.ErrAuthorizationFailed, err)
		}
	}
}

// ============================================================================
// Conversion helpers
// ============================================================================

func bookingToAPI(req *carrier.BookingRequest) *CreateShipmentRequest {
	suborders := make([]Suborder, 0, len(req.Parcels))
	for _, p := range req.Parcels {
		count := p.Count
		if count < 1 {
			count = 1
		}
		suborders = append(suborders, Suborder{
			Count:       count,
			Description: req.ContentDescription,
		})
	}

	return &CreateShipmentRequest{
		PickupLocation: PickupLocation{
			Name:    req.PickupAddress.Title,
			Address: joinLines(req.PickupAddress.Line1, req.PickupAddress.Line2),
			City:    req.PickupAddress.City,
			PinCode: req.PickupAddress.Pincode,
			Country: req.PickupAddress.Country,
			Phone:   req.PickupContact.Phone,
		},
		DropoffLocation: DropoffLocation{
			Consignee: req.DeliveryContact.FullName(),
			Address:   joinLines(req.DeliveryAddress.Line1, req.DeliveryAddress.Line2),
			City:      req.DeliveryAddress.City,
			Region:    req.DeliveryAddress.State,
			Zip:       req.DeliveryAddress.Pincode,
			Phone:     req.DeliveryContact.Phone,
		},
		DeliveryMode: "Prepaid",
		Amount:       req.DeclaredValue,
		ROVInsurance: true,
		WeightGrams:  toGrams(carrier.TotalWeight(req.Parcels)),
		Suborders:    suborders,
	}
}

func (c *Client) trackingURL(awb string) string {
	if c.config.TrackingPageURL == "" || awb == "" {
		return ""
	}
	return strings.TrimSuffix(c.config.TrackingPageURL, "/") + "/" + awb
}

func joinLines(line1, line2 string) string {
	if line2 == "" {
		return line1
	}
	return line1 + ", " + line2
}

func toGrams(kg float64) int {
	return int(kg * 1000)
}

func mapTrackingState(status string) carrier.TrackingState {
	normalized := strings.ToUpper(status)
	switch {
	case strings.HasPrefix(normalized, "DELIVERED"):
		return carrier.StateDelivered
	case strings.HasPrefix(normalized, "RTO"), strings.Contains(normalized, "RETURNED"):
		return carrier.StateReturned
	case strings.Contains(normalized, "LOST"):
		return carrier.StateLost
	default:
		return carrier.StateInProgress
	}
}

var _ carrier.Carrier = (*Client)(nil)
