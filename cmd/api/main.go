// Command api runs the compliance scoring and automated check engine behind
// an HTTP API.
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/privacyops/gdpr-compliance-backend/internal/api/rest"
	"github.com/privacyops/gdpr-compliance-backend/internal/infrastructure/cache"
	"github.com/privacyops/gdpr-compliance-backend/internal/infrastructure/config"
	"github.com/privacyops/gdpr-compliance-backend/internal/infrastructure/documentstore"
	"github.com/privacyops/gdpr-compliance-backend/internal/infrastructure/telemetry"
	"github.com/privacyops/gdpr-compliance-backend/internal/metrics"
	"github.com/privacyops/gdpr-compliance-backend/internal/service/monitoring"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	provider, err := telemetry.Initialize(ctx, &telemetry.Config{
		ServiceName:    "gdpr-compliance-api",
		ServiceVersion: cfg.Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		Enabled:        cfg.Telemetry.Enabled,
		SamplingRate:   cfg.Telemetry.SamplingRate,
		ExportTimeout:  cfg.Telemetry.ExportTimeout,
	})
	if err != nil {
		log.Fatalf("failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			log.Printf("telemetry shutdown: %v", err)
		}
	}()

	zapLogger, err := telemetry.NewZapLogger(cfg.LogLevel, cfg.Environment)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zapLogger.Sync()

	slogLogger := telemetry.SetupLogger(cfg.LogLevel)

	// Document gateway: Postgres when configured, in-memory otherwise. The
	// in-memory store is for local development only; it loses data on restart.
	var store documentstore.Store
	if cfg.Database.URL != "" {
		pool, err := documentstore.Connect(ctx, cfg.Database.URL, int32(cfg.Database.MaxConns))
		if err != nil {
			zapLogger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer pool.Close()
		store = documentstore.NewPostgresStore(pool)
	} else {
		zapLogger.Warn("no database configured, using in-memory document store")
		store = documentstore.NewMemoryStore()
	}

	registry, err := metrics.NewRegistry("gdpr-compliance-backend")
	if err != nil {
		zapLogger.Fatal("failed to create metrics registry", zap.Error(err))
	}

	opts := []monitoring.Option{monitoring.WithMetrics(registry)}
	if cfg.Redis.Enabled {
		dashCache, err := cache.NewDashboardCache(&cfg.Redis, zapLogger.Named("cache"))
		if err != nil {
			zapLogger.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer dashCache.Close()
		opts = append(opts, monitoring.WithCache(dashCache))
	}

	svc := monitoring.NewService(
		zapLogger.Named("monitoring"),
		store,
		monitoring.Config{
			TrendWindowDays:       cfg.Monitoring.TrendWindowDays,
			DashboardActionLimit:  cfg.Monitoring.DashboardActionLimit,
			AutoCreateActionItems: cfg.Monitoring.AutoCreateActionItems,
		},
		opts...,
	)

	handler := rest.NewHandler(svc, slogLogger)
	router := rest.NewRouter(handler, cfg, slogLogger, provider.PromRegistry)
	server := rest.NewServer(cfg, router, slogLogger)

	if err := server.Run(ctx); err != nil {
		zapLogger.Fatal("server error", zap.Error(err))
	}
	zapLogger.Info("server stopped")
}
