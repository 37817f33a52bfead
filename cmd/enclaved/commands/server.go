// Package commands implements the subcommands of the enclaved binary.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/allisson/enclaved/internal/capability"
	"github.com/allisson/enclaved/internal/config"
	"github.com/allisson/enclaved/internal/dek"
	"github.com/allisson/enclaved/internal/enclaveserver"
	"github.com/allisson/enclaved/internal/schema"
	"github.com/allisson/enclaved/internal/telemetry"
)

// RunServer loads configuration, fetches the initial DEK, loads the schema
// bucket, starts the two background maintenance loops, and serves the API
// and metrics listeners until SIGINT/SIGTERM. The two initial loads are
// fatal on failure; the background loops are not.
func RunServer(ctx context.Context, version string) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := telemetry.NewLogger(cfg.LogLevel)
	logger.Info("starting enclaved", slog.String("version", version))

	secretFetcher, err := capability.NewSecretFetcher(ctx, cfg.SecretStoreVariable)
	if err != nil {
		return fmt.Errorf("init secret fetcher: %w", err)
	}
	defer secretFetcher.Close()

	keyUnwrapper, err := capability.NewKMSUnwrapper(ctx, cfg.KMSKeyURI)
	if err != nil {
		return fmt.Errorf("init key unwrapper: %w", err)
	}
	defer keyUnwrapper.Close()

	objectStore, err := capability.NewObjectStore(ctx, cfg.SchemaBucketURL)
	if err != nil {
		return fmt.Errorf("init object store: %w", err)
	}
	defer objectStore.Close()

	dekStore := dek.NewStore()
	if err := dek.FetchAndStore(ctx, secretFetcher, keyUnwrapper, dekStore); err != nil {
		return fmt.Errorf("initial DEK fetch: %w", err)
	}

	schemaCache := schema.NewCache()
	if err := schema.LoadAll(ctx, objectStore, cfg.SchemaPrefix, schemaCache, logger); err != nil {
		return fmt.Errorf("initial schema load: %w", err)
	}

	metricsProvider, err := telemetry.NewProvider()
	if err != nil {
		return fmt.Errorf("init metrics provider: %w", err)
	}
	defer metricsProvider.Shutdown(context.Background())

	businessMetrics, err := telemetry.NewBusinessMetrics(metricsProvider.MeterProvider(), cfg.MetricsNamespace)
	if err != nil {
		logger.Warn("business metrics disabled", slog.Any("error", err))
		businessMetrics = telemetry.NewNoOpBusinessMetrics()
	}

	bgCtx, cancelBg := context.WithCancel(context.Background())
	defer cancelBg()

	go func() {
		if err := dek.RunRotationLoop(bgCtx, secretFetcher, keyUnwrapper, dekStore, cfg.DekRotationInterval, logger, businessMetrics); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("dek rotation loop exited", slog.Any("error", err))
		}
	}()

	go func() {
		if err := schema.RunRefreshLoop(bgCtx, objectStore, cfg.SchemaPrefix, schemaCache, cfg.SchemaRefreshInterval, logger, businessMetrics); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("schema refresh loop exited", slog.Any("error", err))
		}
	}()

	state := enclaveserver.NewState(dekStore, schemaCache, cfg.SchemaHeaderName)
	router := enclaveserver.NewRouter(state, logger, metricsProvider, businessMetrics, enclaveserver.RouterConfig{
		MetricsNamespace: cfg.MetricsNamespace,
		CORSEnabled:      cfg.CORSEnabled,
		CORSAllowOrigins: cfg.CORSAllowOrigins,
		RateLimitEnabled: cfg.RateLimitEnabled,
		RateLimitRPS:     cfg.RateLimitRequestsPerSec,
		RateLimitBurst:   cfg.RateLimitBurst,
	})

	apiServer, err := enclaveserver.NewServer(router, cfg.ServerHost, cfg.ServerPort, cfg.TLSCertPath, cfg.TLSKeyPath, logger)
	if err != nil {
		return fmt.Errorf("init api server: %w", err)
	}

	metricsServer := enclaveserver.NewMetricsServer(cfg.MetricsHost, cfg.MetricsPort, logger, metricsProvider)

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 2)
	go func() {
		if err := apiServer.Start(); err != nil {
			serverErr <- fmt.Errorf("api server: %w", err)
		}
	}()
	go func() {
		if err := metricsServer.Start(); err != nil {
			serverErr <- fmt.Errorf("metrics server: %w", err)
		}
	}()

	select {
	case <-sigCtx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		logger.Error("server error, initiating shutdown", slog.Any("error", err))
		shutdown(cfg, logger, apiServer, metricsServer)
		return err
	}

	shutdown(cfg, logger, apiServer, metricsServer)
	return nil
}

func shutdown(cfg *config.Config, logger *slog.Logger, apiServer *enclaveserver.Server, metricsServer *enclaveserver.MetricsServer) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer cancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("api server shutdown", slog.Any("error", err))
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", slog.Any("error", err))
	}
}
