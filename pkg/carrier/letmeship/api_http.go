package letmeship

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// HTTPAPIClient is the production implementation of APIClient using HTTP/JSON.
type HTTPAPIClient struct {
	baseURL     string
	apiID       string
	apiPassword string
	httpClient  *http.Client
}

// HTTPAPIClientConfig holds configuration for the HTTP client.
type HTTPAPIClientConfig struct {
	BaseURL     string
	APIID       string
	APIPassword string
	Timeout     time.Duration
}

// NewHTTPAPIClient creates a new HTTP-based API client for production use.
func NewHTTPAPIClient(cfg HTTPAPIClientConfig) *HTTPAPIClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &HTTPAPIClient{
		baseURL:     cfg.BaseURL,
		apiID:       cfg.APIID,
		apiPassword: cfg.APIPassword,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetAvailableServices fetches bookable services from the LetMeShip API.
func (c *HTTPAPIClient) GetAvailableServices(ctx context.Context, req *AvailabilityRequest) (*AvailabilityResponse, error) {
	var resp AvailabilityResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/available", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateShipment books a shipment via the LetMeShip API.
func (c *HTTPAPIClient) CreateShipment(ctx context.Context, req *ShipmentOrderRequest) (*ShipmentOrderResponse, error) {
	var resp ShipmentOrderResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/shipments", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetShipment fetches a booked shipment from the LetMeShip API.
func (c *HTTPAPIClient) GetShipment(ctx context.Context, shipmentID string) (*ShipmentDetailsResponse, error) {
	var resp ShipmentDetailsResponse
	path := "/v1/shipments/" + url.PathEscape(shipmentID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetDocuments fetches shipment documents from the LetMeShip API.
func (c *HTTPAPIClient) GetDocuments(ctx context.Context, shipmentID string, docTypes string) (*DocumentsResponse, error) {
	var resp DocumentsResponse
	path := "/v1/shipments/" + url.PathEscape(shipmentID) + "/documents?types=" + url.QueryEscape(docTypes)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetTracking fetches tracking information from the LetMeShip API.
func (c *HTTPAPIClient) GetTracking(ctx context.Context, shipmentID string) (*TrackingResponse, error) {
	var resp TrackingResponse
	path := "/v1/tracking?shipmentid=" + url.QueryEscape(shipmentID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ============================================================================
// HTTP Helpers
// ============================================================================

func (c *HTTPAPIClient) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	// LetMeShip uses Basic Auth with the API id and password.
	req.SetBasicAuth(c.apiID, c.apiPassword)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Access-Control-Allow-Origin", "string")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

var _ APIClient = (*HTTPAPIClient)(nil)
