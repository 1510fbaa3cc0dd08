package delhivery

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
	username      string
	password      string
	tokenURL      string
	chargesURL    string
	createJobURL  string
	jobStatusURL  string
	printLabelURL string
	trackURL      string
	httpClient    *http.Client
}

// HTTPAPIClientConfig holds configuration for the HTTP client.
type HTTPAPIClientConfig struct {
	Username      string
	Password      string
	TokenURL      string
	ChargesURL    string
	CreateJobURL  string
	JobStatusURL  string
	PrintLabelURL string
	TrackURL      string
	Timeout       time.Duration
}

// NewHTTPAPIClient creates a new HTTP-based API client for production use.
func NewHTTPAPIClient(cfg HTTPAPIClientConfig) *HTTPAPIClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &HTTPAPIClient{
		username:      cfg.Username,
		password:      cfg.Password,
		tokenURL:      cfg.TokenURL,
		chargesURL:    cfg.ChargesURL,
		createJobURL:  cfg.CreateJobURL,
		jobStatusURL:  cfg.JobStatusURL,
		printLabelURL: cfg.PrintLabelURL,
		trackURL:      cfg.TrackURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GenerateToken exchanges the configured credentials for a fresh JWT.
func (c *HTTPAPIClient) GenerateToken(ctx context.Context) (*TokenResponse, error) {
	payload, err := json.Marshal(map[string]string{
		"username": c.username,
		"password": c.password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, parseError(resp)
	}

	var tokenResp TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &tokenResp, nil
}

// GetCharges fetches the shipping charge for a route and weight.
func (c *HTTPAPIClient) GetCharges(ctx context.Context, token string, req *ChargesRequest) (*ChargesResponse, error) {
	query := url.Values{}
	query.Set("md", "E")
	query.Set("ss", "Delivered")
	query.Set("o_pin", req.OriginPin)
	query.Set("d_pin", req.DestinationPin)
	query.Set("cgm", fmt.Sprintf("%d", req.WeightGrams))
	query.Set("pt", req.PaymentType)

	httpResp, err := c.doGet(ctx, token, c.chargesURL+"?"+query.Encode())
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, parseError(httpResp)
	}

	// The endpoint answers with a single-element array.
	var charges []ChargesResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&charges); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(charges) == 0 {
		return nil, &APIError{StatusCode: httpResp.StatusCode, Message: "empty charges response"}
	}
	return &charges[0], nil
}

// CreateJob submits a shipment creation job.
func (c *HTTPAPIClient) CreateJob(ctx context.Context, token string, req *CreateShipmentRequest) (*CreateJobResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.createJobURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK && httpResp.StatusCode != http.StatusCreated {
		return nil, parseError(httpResp)
	}

	var jobResp CreateJobResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&jobResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &jobResp, nil
}

// GetJob polls the status of a shipment creation job.
func (c *HTTPAPIClient) GetJob(ctx context.Context, token string, jobID string) (*JobStatusResponse, error) {
	httpResp, err := c.doGet(ctx, token, c.jobStatusURL+"?job_id="+url.QueryEscape(jobID))
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, parseError(httpResp)
	}

	var statusResp JobStatusResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&statusResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &statusResp, nil
}

// GetLabel fetches the base64 label for an AWB.
func (c *HTTPAPIClient) GetLabel(ctx context.Context, token string, awb string) (*LabelResponse, error) {
	httpResp, err := c.doGet(ctx, token, c.printLabelURL+"/"+url.PathEscape(awb)+"?document=true")
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, parseError(httpResp)
	}

	var labelResp LabelResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&labelResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &labelResp, nil
}

// TrackShipment fetches the status of a shipment by LR number.
func (c *HTTPAPIClient) TrackShipment(ctx context.Context, token string, lrNumber string) (*TrackingResponse, error) {
	httpResp, err := c.doGet(ctx, token, c.trackURL+"/"+url.PathEscape(lrNumber))
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, parseError(httpResp)
	}

	var trackResp TrackingResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&trackResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &trackResp, nil
}

// ============================================================================
// HTTP Helpers
// ============================================================================

func (c *HTTPAPIClient) doGet(ctx context.Context, token, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.httpClient.Do(req)
}

func parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    string(body),
	}
}

var _ APIClient = (*HTTPAPIClient)(nil)
