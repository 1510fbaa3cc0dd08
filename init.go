package main

import (
	"context"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/nonalabs/shipbridge/internal/config"
	"github.com/nonalabs/shipbridge/internal/notify"
	"github.com/nonalabs/shipbridge/internal/recordsync"
	"github.com/nonalabs/shipbridge/internal/telemetry"
	"github.com/nonalabs/shipbridge/pkg/carrier"
	"github.com/nonalabs/shipbridge/pkg/carrier/aramex"
	"github.com/nonalabs/shipbridge/pkg/carrier/bluedart"
	"github.com/nonalabs/shipbridge/pkg/carrier/delhivery"
	"github.com/nonalabs/shipbridge/pkg/carrier/letmeship"
)

func loadConfig() (*config.Config, error) {
	return config.Load()
}

func initLogger(level string) (*otelzap.Logger, error) {
	return telemetry.NewLogger(level)
}

func initTracer(ctx context.Context, cfg *config.Config) (trace.Tracer, func(context.Context) error, error) {
	if !cfg.OTELEnabled {
		return nil, func(context.Context) error { return nil }, nil
	}
	return telemetry.InitTracer(ctx, cfg.OTELEndpoint, cfg.ServiceName, cfg.Version)
}

func initStore(cfg *config.Config, logger *otelzap.Logger) (recordsync.Store, func() error, error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("No database configured, record sync is in-memory only")
		return recordsync.NewMemoryStore(), func() error { return nil }, nil
	}

	store, err := recordsync.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return store, store.Close, nil
}

func initNotifier(cfg *config.Config, logger *otelzap.Logger) (notify.Notifier, func() error, error) {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Warn("No kafka brokers configured, delivery status events are dropped")
		return notify.NoopNotifier{}, func() error { return nil }, nil
	}

	notifier, err := notify.NewKafkaNotifier(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
	if err != nil {
		return nil, nil, err
	}
	return notifier, notifier.Close, nil
}

func initCarrierRegistry(cfg *config.Config, store recordsync.Store, metrics *telemetry.Metrics, logger *otelzap.Logger, tracer trace.Tracer) *carrier.Registry {
	registry := carrier.NewRegistry()

	// Constructors reject disabled carriers and missing credentials, so the
	// registry only ever holds usable adapters.
	if ax, err := aramex.New(aramex.Config{
		Enabled:            cfg.AramexEnabled,
		UseMock:            cfg.AramexUseMock,
		UserName:           cfg.AramexUsername,
		Password:           cfg.AramexPassword,
		AccountNumber:      cfg.AramexAccountNumber,
		AccountPin:         cfg.AramexAccountPin,
		AccountEntity:      cfg.AramexAccountEntity,
		AccountCountryCode: cfg.AramexAccountCountryCode,
		RatesURL:           cfg.AramexRatesURL,
		ShipmentsURL:       cfg.AramexShipmentsURL,
		PrintLabelURL:      cfg.AramexPrintLabelURL,
		TrackingURL:        cfg.AramexTrackingURL,
	}, logger, tracer); err != nil {
		logger.Warn("Aramex not registered", zap.Error(err))
	} else {
		registry.Register(ax)
	}

	if bd, err := bluedart.New(bluedart.Config{
		Enabled:      cfg.BluedartEnabled,
		UseMock:      cfg.BluedartUseMock,
		LicenceKey:   cfg.BluedartLicenceKey,
		LoginID:      cfg.BluedartLoginID,
		CustomerCode: cfg.BluedartCustomerCode,
		OriginArea:   cfg.BluedartOriginArea,
		WayBillURL:   cfg.BluedartWayBillURL,
		TrackingURL:  cfg.BluedartTrackingURL,
	}, logger, tracer); err != nil {
		logger.Warn("Bluedart not registered", zap.Error(err))
	} else {
		registry.Register(bd)
	}

	if dl, err := delhivery.New(delhivery.Config{
		Enabled:         cfg.DelhiveryEnabled,
		UseMock:         cfg.DelhiveryUseMock,
		Username:        cfg.DelhiveryUsername,
		Password:        cfg.DelhiveryPassword,
		TokenURL:        cfg.DelhiveryTokenURL,
		ChargesURL:      cfg.DelhiveryChargesURL,
		CreateJobURL:    cfg.DelhiveryCreateJobURL,
		JobStatusURL:    cfg.DelhiveryJobStatusURL,
		PrintLabelURL:   cfg.DelhiveryPrintLabelURL,
		TrackURL:        cfg.DelhiveryTrackURL,
		TrackingPageURL: cfg.DelhiveryTrackingPage,
	}, store, logger, tracer); err != nil {
		logger.Warn("Delhivery not registered", zap.Error(err))
	} else {
		dl.Tokens().OnRefresh(func(outcome string) {
			metrics.RecordTokenRefresh(dl.Name(), outcome)
		})
		registry.Register(dl)
	}

	if lms, err := letmeship.New(letmeship.Config{
		Enabled:     cfg.LetMeShipEnabled,
		UseMock:     cfg.LetMeShipUseMock,
		APIID:       cfg.LetMeShipAPIID,
		APIPassword: cfg.LetMeShipAPIPassword,
		BaseURL:     cfg.LetMeShipBaseURL,
	}, logger, tracer); err != nil {
		logger.Warn("LetMeShip not registered", zap.Error(err))
	} else {
		registry.Register(lms)
	}

	return registry
}
