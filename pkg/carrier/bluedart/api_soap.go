package bluedart

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"text/template"
	"time"
)

// Profile values fixed by the Bluedart API contract.
const (
	profileAPIType = "S"
	profileArea    = "ALL"
	profileVersion = "Ver1.10"
)

// SOAPAPIClient is the production implementation of APIClient. Waybill
// generation is SOAP; tracking is XML over a GET servlet.
type SOAPAPIClient struct {
	wayBillURL  string
	trackingURL string
	licenceKey  string
	loginID     string
	httpClient  *http.Client
}

// SOAPAPIClientConfig holds configuration for the SOAP client.
type SOAPAPIClientConfig struct {
	WayBillURL  string
	TrackingURL string
	LicenceKey  string
	LoginID     string
	Timeout     time.Duration
}

// NewSOAPAPIClient creates a new SOAP-based API client for production use.
func NewSOAPAPIClient(cfg SOAPAPIClientConfig) *SOAPAPIClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &SOAPAPIClient{
		wayBillURL:  cfg.WayBillURL,
		trackingURL: cfg.TrackingURL,
		licenceKey:  cfg.LicenceKey,
		loginID:     cfg.LoginID,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GenerateWayBill books a shipment via the Bluedart WayBillGeneration service.
func (c *SOAPAPIClient) GenerateWayBill(ctx context.Context, req *WayBillRequest) (*WayBillResponse, error) {
	soapBody, err := c.buildWayBillRequest(req)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.wayBillURL, bytes.NewReader(soapBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "text/xml; charset=utf-8")
	httpReq.Header.Set("SOAPAction", "http://tempuri.org/IWayBillGeneration/GenerateWayBill")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseSOAPError(resp)
	}

	return c.parseWayBillResponse(resp.Body)
}

// TrackWayBill fetches the latest status for an AWB via the query servlet.
func (c *SOAPAPIClient) TrackWayBill(ctx context.Context, awb string) (*WayBillTrackResponse, error) {
	query := url.Values{}
	query.Set("handler", "tnt")
	query.Set("action", "custawbquery")
	query.Set("loginid", c.loginID)
	query.Set("lickey", c.licenceKey)
	query.Set("numbers", awb)
	query.Set("format", "xml")
	query.Set("verno", "1.3")
	query.Set("scan", "1")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.trackingURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &APIError{
			Code:        fmt.Sprintf("HTTP_%d", resp.StatusCode),
			Description: string(body),
		}
	}

	return c.parseTrackResponse(resp.Body, awb)
}

// ============================================================================
// SOAP Request Builders
// ============================================================================

const wayBillTemplate = `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/" xmlns:tem="http://tempuri.org/" xmlns:way="http://schemas.datacontract.org/2004/07/WayBillGeneration">
  <soap:Body>
    <tem:GenerateWayBill>
      <tem:Request>
        <way:Consignee>
          <way:ConsigneeAddress1>{{esc .Consignee.ConsigneeAddress1}}</way:ConsigneeAddress1>
          <way:ConsigneeAddress2>{{esc .Consignee.ConsigneeAddress2}}</way:ConsigneeAddress2>
          <way:ConsigneeAddress3>{{esc .Consignee.ConsigneeAddress3}}</way:ConsigneeAddress3>
          <way:ConsigneeAttention>{{esc .Consignee.ConsigneeAttention}}</way:ConsigneeAttention>
          <way:ConsigneeMobile>{{esc .Consignee.ConsigneeMobile}}</way:ConsigneeMobile>
          <way:ConsigneeName>{{esc .Consignee.ConsigneeName}}</way:ConsigneeName>
          <way:ConsigneePincode>{{esc .Consignee.ConsigneePincode}}</way:ConsigneePincode>
          <way:ConsigneeTelephone>{{esc .Consignee.ConsigneeTelephone}}</way:ConsigneeTelephone>
        </way:Consignee>
        <way:Services>
          <way:ActualWeight>{{.Services.ActualWeight}}</way:ActualWeight>
          <way:CreditReferenceNo>{{esc .Services.CreditReferenceNo}}</way:CreditReferenceNo>
          <way:DeclaredValue>{{.Services.DeclaredValue}}</way:DeclaredValue>
          <way:PickupDate>{{esc .Services.PickupDate}}</way:PickupDate>
          <way:PickupTime>{{esc .Services.PickupTime}}</way:PickupTime>
          <way:PieceCount>{{.Services.PieceCount}}</way:PieceCount>
          <way:ProductCode>{{esc .Services.ProductCode}}</way:ProductCode>
          <way:ProductType>{{esc .Services.ProductType}}</way:ProductType>
          <way:RegisterPickup>{{.Services.RegisterPickup}}</way:RegisterPickup>
        </way:Services>
        <way:Shipper>
          <way:CustomerAddress1>{{esc .Shipper.CustomerAddress1}}</way:CustomerAddress1>
          <way:CustomerAddress2>{{esc .Shipper.CustomerAddress2}}</way:CustomerAddress2>
          <way:CustomerAddress3>{{esc .Shipper.CustomerAddress3}}</way:CustomerAddress3>
          <way:CustomerCode>{{esc .Shipper.CustomerCode}}</way:CustomerCode>
          <way:CustomerEmailID>{{esc .Shipper.CustomerEmailID}}</way:CustomerEmailID>
          <way:CustomerMobile>{{esc .Shipper.CustomerMobile}}</way:CustomerMobile>
          <way:CustomerName>{{esc .Shipper.CustomerName}}</way:CustomerName>
          <way:CustomerPincode>{{esc .Shipper.CustomerPincode}}</way:CustomerPincode>
          <way:CustomerTelephone>{{esc .Shipper.CustomerTelephone}}</way:CustomerTelephone>
          <way:IsToPayCustomer>{{.Shipper.IsToPayCustomer}}</way:IsToPayCustomer>
          <way:OriginArea>{{esc .Shipper.OriginArea}}</way:OriginArea>
          <way:Sender>{{esc .Shipper.Sender}}</way:Sender>
        </way:Shipper>
      </tem:Request>
      <tem:Profile>
        <way:Api_type>{{.Profile.APIType}}</way:Api_type>
        <way:Area>{{.Profile.Area}}</way:Area>
        <way:LicenceKey>{{esc .Profile.LicenceKey}}</way:LicenceKey>
        <way:LoginID>{{esc .Profile.LoginID}}</way:LoginID>
        <way:Version>{{.Profile.Version}}</way:Version>
      </tem:Profile>
    </tem:GenerateWayBill>
  </soap:Body>
</soap:Envelope>`

// xmlEscape guards interpolated field values; addresses and names routinely
// carry "&".
func xmlEscape(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

func (c *SOAPAPIClient) buildWayBillRequest(req *WayBillRequest) ([]byte, error) {
	tmpl, err := template.New("waybill").Funcs(template.FuncMap{"esc": xmlEscape}).Parse(wayBillTemplate)
	if err != nil {
		return nil, err
	}

	data := struct {
		*WayBillRequest
		Profile struct {
			APIType    string
			Area       string
			LicenceKey string
			LoginID    string
			Version    string
		}
	}{WayBillRequest: req}
	data.Profile.APIType = profileAPIType
	data.Profile.Area = profileArea
	data.Profile.LicenceKey = c.licenceKey
	data.Profile.LoginID = c.loginID
	data.Profile.Version = profileVersion

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ============================================================================
// SOAP Response Parsers - XML Types
// ============================================================================

type soapEnvelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    soapBody `xml:"Body"`
}

type soapBody struct {
	Fault                   *soapFault               `xml:"Fault,omitempty"`
	GenerateWayBillResponse *generateWayBillResponse `xml:"GenerateWayBillResponse,omitempty"`
}

type soapFault struct {
	Code   string `xml:"faultcode"`
	String string `xml:"faultstring"`
}

type generateWayBillResponse struct {
	Result wayBillResult `xml:"GenerateWayBillResult"`
}

type wayBillResult struct {
	AWBNo           string          `xml:"AWBNo"`
	AWBPrintContent string          `xml:"AWBPrintContent"`
	IsError         bool            `xml:"IsError"`
	Status          []wayBillStatus `xml:"Status>WayBillGenerationStatus"`
}

type wayBillStatus struct {
	StatusCode        string `xml:"StatusCode"`
	StatusInformation string `xml:"StatusInformation"`
}

// shipmentData is the XML response of the tracking servlet.
type shipmentData struct {
	XMLName   xml.Name        `xml:"ShipmentData"`
	Shipments []trackShipment `xml:"Shipment"`
}

type trackShipment struct {
	WaybillNo  string `xml:"WaybillNo,attr"`
	Status     string `xml:"Status"`
	StatusType string `xml:"StatusType"`
}

// ============================================================================
// SOAP Response Parsing Functions
// ============================================================================

func (c *SOAPAPIClient) parseSOAPError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var env soapEnvelope
	if err := xml.Unmarshal(body, &env); err == nil && env.Body.Fault != nil {
		return &APIError{
			Code:        env.Body.Fault.Code,
			Description: env.Body.Fault.String,
		}
	}

	return &APIError{
		Code:        fmt.Sprintf("HTTP_%d", resp.StatusCode),
		Description: string(body),
	}
}

func (c *SOAPAPIClient) parseWayBillResponse(body io.Reader) (*WayBillResponse, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}

	var env soapEnvelope
	if err := xml.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if env.Body.Fault != nil {
		return nil, &APIError{
			Code:        env.Body.Fault.Code,
			Description: env.Body.Fault.String,
		}
	}

	if env.Body.GenerateWayBillResponse == nil {
		return nil, &APIError{
			Code:        "PARSE_ERROR",
			Description: "No waybill data in response",
		}
	}

	result := env.Body.GenerateWayBillResponse.Result

	if result.IsError {
		code := "WAYBILL_ERROR"
		description := "Waybill generation failed"
		if len(result.Status) > 0 {
			code = result.Status[0].StatusCode
			description = result.Status[0].StatusInformation
		}
		return nil, &APIError{Code: code, Description: description}
	}

	statuses := make([]WayBillStatus, len(result.Status))
	for i, s := range result.Status {
		statuses[i] = WayBillStatus(s)
	}

	return &WayBillResponse{
		AWBNo:           result.AWBNo,
		AWBPrintContent: result.AWBPrintContent,
		IsError:         false,
		Status:          statuses,
	}, nil
}

func (c *SOAPAPIClient) parseTrackResponse(body io.Reader, awb string) (*WayBillTrackResponse, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}

	var shipments shipmentData
	if err := xml.Unmarshal(data, &shipments); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	for _, s := range shipments.Shipments {
		if s.WaybillNo == awb || len(shipments.Shipments) == 1 {
			return &WayBillTrackResponse{
				AWBNo:      awb,
				Status:     s.Status,
				StatusType: s.StatusType,
			}, nil
		}
	}

	return nil, &APIError{
		Code:        "TRACKING_NOT_FOUND",
		Description: "No shipment data for waybill " + awb,
	}
}

var _ APIClient = (*SOAPAPIClient)(nil)
