package monitoring

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/privacyops/gdpr-compliance-backend/internal/infrastructure/documentstore"
	"github.com/privacyops/gdpr-compliance-backend/internal/metrics"
)

// Service implements the compliance scoring and automated check engine. Every
// operation is a fresh computation over current gateway data; the service
// holds no cross-call state.
type Service struct {
	logger   *zap.Logger
	store    documentstore.Store
	cache    DashboardCache
	metrics  *metrics.Registry
	validate *validator.Validate
	clock    func() time.Time
	config   Config
}

// Config holds engine configuration. Scoring weights and check thresholds are
// fixed domain policy and deliberately not configurable.
type Config struct {
	// TrendWindowDays is the default trend window when callers pass a
	// non-positive day count.
	TrendWindowDays int

	// DashboardActionLimit caps the open action items fetched for the
	// dashboard read model.
	DashboardActionLimit int

	// AutoCreateActionItems makes check runs spawn remediation items for
	// non-compliant and critical results.
	AutoCreateActionItems bool
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		TrendWindowDays:       30,
		DashboardActionLimit:  20,
		AutoCreateActionItems: false,
	}
}

// Option customizes a Service.
type Option func(*Service)

// WithCache attaches a dashboard read-model cache.
func WithCache(cache DashboardCache) Option {
	return func(s *Service) { s.cache = cache }
}

// WithMetrics attaches a metrics registry.
func WithMetrics(reg *metrics.Registry) Option {
	return func(s *Service) { s.metrics = reg }
}

// WithClock overrides the time source, used by tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

// NewService creates the compliance monitoring service.
func NewService(logger *zap.Logger, store documentstore.Store, config Config, opts ...Option) *Service {
	if config.TrendWindowDays <= 0 {
		config.TrendWindowDays = 30
	}
	if config.DashboardActionLimit <= 0 {
		config.DashboardActionLimit = 20
	}

	s := &Service{
		logger:   logger,
		store:    store,
		validate: validator.New(),
		clock:    time.Now,
		config:   config,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// round2 rounds to 2 decimal places so snapshot comparisons stay
// deterministic across runs.
func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
