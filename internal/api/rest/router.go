package rest

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"github.com/privacyops/gdpr-compliance-backend/internal/infrastructure/config"
)

// NewRouter mounts the compliance API, health, and metrics endpoints behind
// the middleware chain.
func NewRouter(handler *Handler, cfg *config.Config, logger *slog.Logger, registry *prometheus.Registry) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/compliance/score", handler.handleCalculateScore)
	mux.HandleFunc("POST /api/v1/compliance/checks", handler.handleRunChecks)
	mux.HandleFunc("GET /api/v1/compliance/trends", handler.handleGetTrends)
	mux.HandleFunc("GET /api/v1/compliance/dashboard", handler.handleGetDashboard)

	mux.HandleFunc("POST /api/v1/action-items", handler.handleCreateActionItem)
	mux.HandleFunc("GET /api/v1/action-items", handler.handleListActionItems)
	mux.HandleFunc("PATCH /api/v1/action-items/{id}/status", handler.handleUpdateActionItemStatus)

	mux.HandleFunc("GET /health", handler.handleHealth)

	if registry != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	middlewares := []Middleware{
		RecoveryMiddleware(logger),
		RequestIDMiddleware(),
		LoggingMiddleware(logger),
		TracingMiddleware(otel.Tracer("api.rest")),
	}
	if cfg.Server.RateLimit.Enabled {
		middlewares = append(middlewares,
			RateLimitMiddleware(float64(cfg.Server.RateLimit.RequestsPerSecond), cfg.Server.RateLimit.BurstSize))
	}

	return Chain(mux, middlewares...)
}
