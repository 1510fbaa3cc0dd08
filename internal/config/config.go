package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"go.opentelemetry.io/otel/attribute"
)

// Config holds all configuration for the service.
type Config struct {
	// Server
	Port     int    `envconfig:"PORT" default:"80"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Routing
	HomeCountry string `envconfig:"HOME_COUNTRY" default:"India"`

	// Record sync
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// Notifications
	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic   string   `envconfig:"KAFKA_TOPIC" default:"shipbridge.delivery-status"`

	// Aramex
	AramexUsername           string `envconfig:"ARAMEX_USERNAME"`
	AramexPassword           string `envconfig:"ARAMEX_PASSWORD"`
	AramexAccountNumber      string `envconfig:"ARAMEX_ACCOUNT_NUMBER"`
	AramexAccountPin         string `envconfig:"ARAMEX_ACCOUNT_PIN"`
	AramexAccountEntity      string `envconfig:"ARAMEX_ACCOUNT_ENTITY"`
	AramexAccountCountryCode string `envconfig:"ARAMEX_ACCOUNT_COUNTRY_CODE"`
	AramexRatesURL           string `envconfig:"ARAMEX_RATES_URL" default:"https://ws.aramex.net/ShippingAPI.V2/RateCalculator/Service_1_0.svc/json/CalculateRate"`
	AramexShipmentsURL       string `envconfig:"ARAMEX_SHIPMENTS_URL" default:"https://ws.aramex.net/ShippingAPI.V2/Shipping/Service_1_0.svc/json/CreateShipments"`
	AramexPrintLabelURL      string `envconfig:"ARAMEX_PRINT_LABEL_URL" default:"https://ws.aramex.net/ShippingAPI.V2/Shipping/Service_1_0.svc/json/PrintLabel"`
	AramexTrackingURL        string `envconfig:"ARAMEX_TRACKING_URL" default:"https://ws.aramex.net/ShippingAPI.V2/Tracking/Service_1_0.svc/json/TrackShipments"`
	AramexEnabled            bool   `envconfig:"ARAMEX_ENABLED" default:"true"`
	AramexUseMock            bool   `envconfig:"ARAMEX_USE_MOCK" default:"false"`

	// Bluedart
	BluedartLicenceKey   string `envconfig:"BLUEDART_LICENCE_KEY"`
	BluedartLoginID      string `envconfig:"BLUEDART_LOGIN_ID"`
	BluedartCustomerCode string `envconfig:"BLUEDART_CUSTOMER_CODE"`
	BluedartOriginArea   string `envconfig:"BLUEDART_ORIGIN_AREA"`
	BluedartWayBillURL   string `envconfig:"BLUEDART_WAYBILL_URL" default:"https://netconnect.bluedart.com/Ver1.10/ShippingAPI/WayBill/WayBillGeneration.svc"`
	BluedartTrackingURL  string `envconfig:"BLUEDART_TRACKING_URL" default:"https://api.bluedart.com/servlet/RoutingServlet"`
	BluedartEnabled      bool   `envconfig:"BLUEDART_ENABLED" default:"true"`
	BluedartUseMock      bool   `envconfig:"BLUEDART_USE_MOCK" default:"false"`

	// Delhivery
	DelhiveryUsername      string `envconfig:"DELHIVERY_USERNAME"`
	DelhiveryPassword      string `envconfig:"DELHIVERY_PASSWORD"`
	DelhiveryTokenURL      string `envconfig:"DELHIVERY_TOKEN_URL" default:"https://api.delhivery.com/v3/token"`
	DelhiveryChargesURL    string `envconfig:"DELHIVERY_CHARGES_URL" default:"https://api.delhivery.com/api/kinko/v1/invoice/charges/.json"`
	DelhiveryCreateJobURL  string `envconfig:"DELHIVERY_CREATE_JOB_URL" default:"https://api.delhivery.com/v3/manifest"`
	DelhiveryJobStatusURL  string `envconfig:"DELHIVERY_JOB_STATUS_URL" default:"https://api.delhivery.com/v3/manifest"`
	DelhiveryPrintLabelURL string `envconfig:"DELHIVERY_PRINT_LABEL_URL" default:"https://api.delhivery.com/v3/packages"`
	DelhiveryTrackURL      string `envconfig:"DELHIVERY_TRACK_URL" default:"https://api.delhivery.com/v3/track"`
	DelhiveryTrackingPage  string `envconfig:"DELHIVERY_TRACKING_PAGE" default:"https://www.delhivery.com/track/package"`
	DelhiveryEnabled       bool   `envconfig:"DELHIVERY_ENABLED" default:"true"`
	DelhiveryUseMock       bool   `envconfig:"DELHIVERY_USE_MOCK" default:"false"`

	// LetMeShip
	LetMeShipAPIID       string `envconfig:"LETMESHIP_API_ID"`
	LetMeShipAPIPassword string `envconfig:"LETMESHIP_API_PASSWORD"`
	LetMeShipBaseURL     string `envconfig:"LETMESHIP_BASE_URL" default:"https://api.letmeship.com"`
	LetMeShipEnabled     bool   `envconfig:"LETMESHIP_ENABLED" default:"true"`
	LetMeShipUseMock     bool   `envconfig:"LETMESHIP_USE_MOCK" default:"false"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"true"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:"http://jaeger-collector.claude.svc.cluster.local:4318"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"shipbridge"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.0.1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}

// Attributes returns OpenTelemetry attributes for this configuration.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.Version),
		attribute.String("home.country", c.HomeCountry),
		attribute.Bool("aramex.enabled", c.AramexEnabled),
		attribute.Bool("bluedart.enabled", c.BluedartEnabled),
		attribute.Bool("delhivery.enabled", c.DelhiveryEnabled),
		attribute.Bool("letmeship.enabled", c.LetMeShipEnabled),
	}
}
