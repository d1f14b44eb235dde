package monitoring

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/privacyops/gdpr-compliance-backend/internal/domain/compliance"
	apperrors "github.com/privacyops/gdpr-compliance-backend/internal/domain/errors"
	"github.com/privacyops/gdpr-compliance-backend/internal/infrastructure/documentstore"
)

// TrendDirection classifies score movement across a window.
type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendDeclining TrendDirection = "declining"
	TrendStable    TrendDirection = "stable"
)

// trendDelta is the first-to-last score change beyond which a trend stops
// counting as stable.
const trendDelta = 5.0

// TrendPoint is one historical score observation.
type TrendPoint struct {
	Score        float64   `json:"score"`
	CalculatedAt time.Time `json:"calculated_at"`
}

// TrendReport summarizes score movement over a trailing window.
type TrendReport struct {
	WindowDays     int            `json:"window_days"`
	DataPoints     int            `json:"data_points"`
	TrendDirection TrendDirection `json:"trend_direction"`
	AverageScore   float64        `json:"average_score"`
	Points         []TrendPoint   `json:"points"`
}

// GetComplianceTrends reads score snapshots over the trailing window,
// ascending by calculation time, and derives direction and average. Fewer
// than two points is stable by definition; non-positive day counts default to
// the configured window.
func (s *Service) GetComplianceTrends(ctx context.Context, days int) (*TrendReport, error) {
	if days <= 0 {
		s.logger.Debug("trend window defaulted",
			zap.Int("requested_days", days),
			zap.Int("default_days", s.config.TrendWindowDays),
		)
		days = s.config.TrendWindowDays
	}

	since := s.clock().UTC().Add(-time.Duration(days) * 24 * time.Hour)
	docs, err := s.store.Query(ctx, documentstore.CollectionComplianceScores, documentstore.QueryOptions{
		Filters: []documentstore.Filter{documentstore.Gte("calculated_at", since)},
		OrderBy: &documentstore.Sort{Field: "calculated_at"},
	})
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load score history").WithCause(err)
	}

	points := make([]TrendPoint, 0, len(docs))
	for _, doc := range docs {
		var snap compliance.ScoreSnapshot
		if err := compliance.DecodeDocument(doc, &snap); err != nil {
			s.logger.Warn("skipping undecodable score snapshot", zap.Error(err))
			continue
		}
		points = append(points, TrendPoint{Score: snap.OverallScore, CalculatedAt: snap.CalculatedAt})
	}

	report := &TrendReport{
		WindowDays:     days,
		DataPoints:     len(points),
		TrendDirection: TrendStable,
		Points:         points,
	}

	if len(points) >= 2 {
		delta := points[len(points)-1].Score - points[0].Score
		switch {
		case delta > trendDelta:
			report.TrendDirection = TrendImproving
		case delta < -trendDelta:
			report.TrendDirection = TrendDeclining
		}
	}

	if len(points) > 0 {
		sum := 0.0
		for _, p := range points {
			sum += p.Score
		}
		report.AverageScore = round2(sum / float64(len(points)))
	}

	return report, nil
}
