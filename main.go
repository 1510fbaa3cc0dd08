package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nonalabs/shipbridge/internal/orchestrator"
	"github.com/nonalabs/shipbridge/internal/server"
	"github.com/nonalabs/shipbridge/internal/telemetry"
)

var version = "0.0.1"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "shipbridge",
	Short:   "Shipbridge - Multi-carrier shipping integration service",
	Version: version,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	tracer, tracerShutdown, err := initTracer(ctx, cfg)
	if err != nil {
		logger.Warn("Failed to initialize tracer", zap.Error(err))
	} else {
		defer tracerShutdown(ctx)
	}

	store, storeClose, err := initStore(cfg, logger)
	if err != nil {
		return err
	}
	defer storeClose()

	notifier, notifierClose, err := initNotifier(cfg, logger)
	if err != nil {
		return err
	}
	defer notifierClose()

	metrics := telemetry.NewMetrics()
	registry := initCarrierRegistry(cfg, store, metrics, logger, tracer)

	orch := orchestrator.New(
		orchestrator.Config{HomeCountry: cfg.HomeCountry},
		registry, store, notifier, logger, metrics,
	)

	logger.Info("Starting Shipbridge",
		zap.Int("port", cfg.Port),
		zap.String("version", cfg.Version),
		zap.String("home_country", cfg.HomeCountry),
		zap.Strings("carriers", registry.Names()),
	)

	srv := server.New(server.Config{Port: cfg.Port}, orch, logger, metrics)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
