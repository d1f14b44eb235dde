package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Registry holds the compliance engine's metrics. A nil registry is valid and
// records nothing, so instrumentation can be disabled without branching at
// every call site.
type Registry struct {
	meter metric.Meter

	ComplianceScore   metric.Float64Gauge
	SnapshotCounter   metric.Int64Counter
	CheckCounter      metric.Int64Counter
	ScoreDuration     metric.Float64Histogram
	DashboardDuration metric.Float64Histogram
}

// NewRegistry creates a metrics registry on the named meter.
func NewRegistry(meterName string) (*Registry, error) {
	meter := otel.Meter(meterName)
	r := &Registry{meter: meter}

	var err error
	r.ComplianceScore, err = meter.Float64Gauge(
		"compliance.score",
		metric.WithDescription("Latest overall compliance score (0-100)"),
	)
	if err != nil {
		return nil, err
	}

	r.SnapshotCounter, err = meter.Int64Counter(
		"compliance.snapshots.total",
		metric.WithDescription("Score snapshots persisted"),
	)
	if err != nil {
		return nil, err
	}

	r.CheckCounter, err = meter.Int64Counter(
		"compliance.checks.total",
		metric.WithDescription("Check results by type and status"),
	)
	if err != nil {
		return nil, err
	}

	r.ScoreDuration, err = meter.Float64Histogram(
		"compliance.score.duration",
		metric.WithDescription("Score calculation duration"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	r.DashboardDuration, err = meter.Float64Histogram(
		"compliance.dashboard.duration",
		metric.WithDescription("Dashboard composition duration"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return r, nil
}

// RecordScore records a calculated score and counts the snapshot.
func (r *Registry) RecordScore(ctx context.Context, score float64, status string) {
	if r == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("status", status))
	r.ComplianceScore.Record(ctx, score, attrs)
	r.SnapshotCounter.Add(ctx, 1, attrs)
}

// RecordCheckResult counts one check evaluation.
func (r *Registry) RecordCheckResult(ctx context.Context, checkType, status string) {
	if r == nil {
		return
	}
	r.CheckCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("check_type", checkType),
		attribute.String("status", status),
	))
}

// RecordScoreDuration records one score calculation's wall time.
func (r *Registry) RecordScoreDuration(ctx context.Context, d time.Duration) {
	if r == nil {
		return
	}
	r.ScoreDuration.Record(ctx, float64(d.Milliseconds()))
}

// RecordDashboardDuration records one dashboard composition's wall time.
func (r *Registry) RecordDashboardDuration(ctx context.Context, d time.Duration) {
	if r == nil {
		return
	}
	r.DashboardDuration.Record(ctx, float64(d.Milliseconds()))
}
