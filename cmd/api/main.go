// Package main provides the entrypoint for the TrailSafe API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/trailsafe/trailsafe/internal/airquality"
	"github.com/trailsafe/trailsafe/internal/airquality/airnow"
	"github.com/trailsafe/trailsafe/internal/alerts"
	alertsnws "github.com/trailsafe/trailsafe/internal/alerts/nws"
	"github.com/trailsafe/trailsafe/internal/api"
	"github.com/trailsafe/trailsafe/internal/api/middleware"
	"github.com/trailsafe/trailsafe/internal/avalanche"
	"github.com/trailsafe/trailsafe/internal/avalanche/nac"
	"github.com/trailsafe/trailsafe/internal/geozone"
	"github.com/trailsafe/trailsafe/internal/provider/resilience"
	"github.com/trailsafe/trailsafe/internal/rainfall"
	rainfallmeteo "github.com/trailsafe/trailsafe/internal/rainfall/openmeteo"
	"github.com/trailsafe/trailsafe/internal/report"
	"github.com/trailsafe/trailsafe/internal/scoring"
	"github.com/trailsafe/trailsafe/internal/snowpack"
	"github.com/trailsafe/trailsafe/internal/snowpack/powderlines"
	"github.com/trailsafe/trailsafe/internal/telemetry"
	"github.com/trailsafe/trailsafe/internal/weather"
	weathernws "github.com/trailsafe/trailsafe/internal/weather/nws"
	weathermeteo "github.com/trailsafe/trailsafe/internal/weather/openmeteo"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "trailsafe-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting TrailSafe API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	userAgent := os.Getenv("FEED_USER_AGENT")
	if userAgent == "" {
		userAgent = "trailsafe (ops@trailsafe.dev)"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Feed registry tracks per-feed circuit state for the ops endpoints.
	// Every upstream client routes through a registered resilient client.
	registry := resilience.NewRegistry()
	feedClient := func(name string) *resilience.Client {
		cfg := resilience.FeedClientConfig(name)
		cfg.Registry = registry
		client := resilience.NewClient(cfg)
		registry.Register(name, client)
		return client
	}
	refreshClient := func(name string) *resilience.Client {
		cfg := resilience.RefreshClientConfig(name)
		cfg.Registry = registry
		client := resilience.NewClient(cfg)
		registry.Register(name, client)
		return client
	}

	// Weather: NWS hourly forecast with Open-Meteo field-level fallback
	weatherService := weather.NewService(weather.ServiceConfig{
		Primary: weathernws.NewClient(weathernws.ClientConfig{
			UserAgent:  userAgent,
			HTTPClient: feedClient(weathernws.ProviderName),
			Logger:     log,
		}),
		Fallback: weathermeteo.NewClient(weathermeteo.ClientConfig{
			HTTPClient: feedClient(weathermeteo.ProviderName),
			Logger:     log,
		}),
		Logger: log,
	})

	// NWS active alerts
	alertService := alerts.NewService(alerts.ServiceConfig{
		Provider: alertsnws.NewClient(alertsnws.ClientConfig{
			UserAgent:  userAgent,
			HTTPClient: feedClient(alertsnws.ProviderName),
			Logger:     log,
		}),
		Logger: log,
	})

	// AirNow current AQI
	airNowKey := os.Getenv("AIRNOW_API_KEY")
	if airNowKey == "" {
		log.Warn().Msg("AIRNOW_API_KEY not set - air quality will report unavailable")
	}
	airQualityService := airquality.NewService(airquality.ServiceConfig{
		Provider: airnow.NewClient(airnow.ClientConfig{
			APIKey:     airNowKey,
			HTTPClient: feedClient(airnow.ProviderName),
			Logger:     log,
		}),
		Logger: log,
	})

	// Open-Meteo archive precipitation history
	rainfallService := rainfall.NewService(rainfall.ServiceConfig{
		Provider: rainfallmeteo.NewClient(rainfallmeteo.ClientConfig{
			HTTPClient: feedClient(rainfallmeteo.ProviderName),
			Logger:     log,
		}),
		Logger: log,
	})

	// Powderlines SNOTEL snowpack
	snowpackService := snowpack.NewService(snowpack.ServiceConfig{
		Provider: powderlines.NewClient(powderlines.ClientConfig{
			HTTPClient: feedClient(powderlines.ProviderName),
			Logger:     log,
		}),
		Logger: log,
	})

	// avalanche.org zone layer and bulletin detail
	nacClient := nac.NewClient(nac.ClientConfig{
		UserAgent:    userAgent,
		DetailClient: feedClient(nac.ProviderName),
		LayerClient:  refreshClient(nac.ProviderName + "-layer"),
		Logger:       log,
	})
	layerMetrics, err := middleware.NewProviderMetrics(nac.ProviderName)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize provider metrics")
	}
	layerCache := geozone.NewLayerCache(geozone.LayerCacheConfig{
		Provider: nacClient,
		Logger:   log,
		Metrics:  layerMetrics,
	})
	aggregator := avalanche.NewAggregator(avalanche.AggregatorConfig{
		Provider: nacClient,
		Logger:   log,
	})

	reportService := report.NewService(report.ServiceConfig{
		Weather:    weatherService,
		Alerts:     alertService,
		AirQuality: airQualityService,
		Rainfall:   rainfallService,
		Snowpack:   snowpackService,
		Zones:      layerCache,
		Resolver:   geozone.NewResolver(0),
		Aggregator: aggregator,
		Engine:     scoring.NewEngine(log),
		Logger:     log,
	})
	log.Info().Int("feeds", registry.FeedCount()).Msg("report service initialized")

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:       Version,
		BuildTime:     BuildTime,
		Logger:        log,
		ServiceName:   serviceName,
		Metrics:       metrics,
		ReportService: reportService,
		FeedRegistry:  registry,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
