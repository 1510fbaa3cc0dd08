package aramex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPAPIClient is the production implementation of APIClient using HTTP/JSON.
type HTTPAPIClient struct {
	ratesURL      string
	shipmentsURL  string
	printLabelURL string
	trackingURL   string
	httpClient    *http.Client
}

// HTTPAPIClientConfig holds configuration for the HTTP client.
type HTTPAPIClientConfig struct {
	RatesURL      string
	ShipmentsURL  string
	PrintLabelURL string
	TrackingURL   string
	Timeout       time.Duration
}

// NewHTTPAPIClient creates a new HTTP-based API client for production use.
func NewHTTPAPIClient(cfg HTTPAPIClientConfig) *HTTPAPIClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &HTTPAPIClient{
		ratesURL:      cfg.RatesURL,
		shipmentsURL:  cfg.ShipmentsURL,
		printLabelURL: cfg.PrintLabelURL,
		trackingURL:   cfg.TrackingURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// CalculateRate fetches a shipping rate via the Aramex API.
func (c *HTTPAPIClient) CalculateRate(ctx context.Context, req *RateRequest) (*RateResponse, error) {
	var resp RateResponse
	if err := c.doRequest(ctx, c.ratesURL, req, &resp); err != nil {
		return nil, err
	}
	if resp.HasErrors {
		return nil, notificationError(resp.Notifications)
	}
	return &resp, nil
}

// CreateShipment books a shipment via the Aramex API.
func (c *HTTPAPIClient) CreateShipment(ctx context.Context, req *ShipmentRequest) (*ShipmentResponse, error) {
	var resp ShipmentResponse
	if err := c.doRequest(ctx, c.shipmentsURL, req, &resp); err != nil {
		return nil, err
	}
	// The top-level flag covers envelope errors; per-shipment errors ride
	// on each processed shipment.
	if resp.HasErrors {
		return nil, notificationError(resp.Notifications)
	}
	for _, s := range resp.Shipments {
		if s.HasErrors {
			return nil, notificationError(s.Notifications)
		}
	}
	return &resp, nil
}

// PrintLabel retrieves the label URL via the Aramex API.
func (c *HTTPAPIClient) PrintLabel(ctx context.Context, req *LabelPrintRequest) (*LabelPrintResponse, error) {
	var resp LabelPrintResponse
	if err := c.doRequest(ctx, c.printLabelURL, req, &resp); err != nil {
		return nil, err
	}
	if resp.HasErrors {
		return nil, notificationError(resp.Notifications)
	}
	return &resp, nil
}

// TrackShipments fetches tracking updates via the Aramex API.
func (c *HTTPAPIClient) TrackShipments(ctx context.Context, req *TrackRequest) (*TrackResponse, error) {
	var resp TrackResponse
	if err := c.doRequest(ctx, c.trackingURL, req, &resp); err != nil {
		return nil, err
	}
	if resp.HasErrors {
		return nil, notificationError(resp.Notifications)
	}
	return &resp, nil
}

// ============================================================================
// HTTP Helpers
// ============================================================================

func (c *HTTPAPIClient) doRequest(ctx context.Context, url string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.parseError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *HTTPAPIClient) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var errResp struct {
		Notifications []Notification `json:"Notifications"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && len(errResp.Notifications) > 0 {
		return &APIError{
			Code:    errResp.Notifications[0].Code,
			Message: errResp.Notifications[0].Message,
		}
	}

	return &APIError{
		Code:    fmt.Sprintf("HTTP_%d", resp.StatusCode),
		Message: string(body),
	}
}

func notificationError(notifications []Notification) error {
	if len(notifications) > 0 {
		return &APIError{
			Code:    notifications[0].Code,
			Message: notifications[0].Message,
		}
	}
	return &APIError{Code: "HAS_ERRORS", Message: "request failed without notifications"}
}

// ShippingDateTime formats a timestamp the way the Aramex API expects,
// as milliseconds since the Unix epoch wrapped in /Date(...)/.
func ShippingDateTime(t time.Time) string {
	return fmt.Sprintf("/Date(%d)/", t.UnixMilli())
}

var _ APIClient = (*HTTPAPIClient)(nil)
