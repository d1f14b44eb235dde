package monitoring

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/privacyops/gdpr-compliance-backend/internal/domain/compliance"
	apperrors "github.com/privacyops/gdpr-compliance-backend/internal/domain/errors"
)

// actionItemDueWindow bounds the "due soon" bucket of the dashboard.
const actionItemDueWindow = 30 * 24 * time.Hour

// ActionItemOverview summarizes open remediation work for the dashboard.
type ActionItemOverview struct {
	Total      int                          `json:"total"`
	ByPriority map[compliance.Priority]int  `json:"by_priority"`
	DueSoon    int                          `json:"due_soon"`
	Items      []compliance.ActionItem      `json:"items"`
}

// Dashboard is the combined compliance read model.
type Dashboard struct {
	Score       *compliance.ScoreSnapshot `json:"score"`
	Checks      *compliance.CheckRun      `json:"checks"`
	ActionItems ActionItemOverview        `json:"action_items"`
	Trends      *TrendReport              `json:"trends"`
	GeneratedAt time.Time                 `json:"generated_at"`
}

// GetComplianceDashboard composes the dashboard read model by running, in
// sequence, the score aggregator, the check runner, the action item tracker,
// and the trend analyzer. A failure in any stage aborts the whole request;
// no partial dashboard is returned.
func (s *Service) GetComplianceDashboard(ctx context.Context) (*Dashboard, error) {
	if s.cache != nil {
		if cached, ok := s.cache.GetDashboard(ctx); ok {
			s.logger.Debug("dashboard served from cache")
			return cached, nil
		}
	}

	start := s.clock()

	score, err := s.CalculateComplianceScore(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "dashboard: score stage failed")
	}

	checks, err := s.RunComplianceChecks(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "dashboard: checks stage failed")
	}

	items, err := s.GetActionItems(ctx, ActionItemFilters{Limit: s.config.DashboardActionLimit})
	if err != nil {
		return nil, apperrors.Wrap(err, "dashboard: action items stage failed")
	}

	trends, err := s.GetComplianceTrends(ctx, s.config.TrendWindowDays)
	if err != nil {
		return nil, apperrors.Wrap(err, "dashboard: trends stage failed")
	}

	now := s.clock().UTC()
	overview := ActionItemOverview{
		Total:      len(items),
		ByPriority: make(map[compliance.Priority]int),
		Items:      items,
	}
	for i := range items {
		overview.ByPriority[items[i].Priority]++
		if items[i].DueWithin(now, actionItemDueWindow) {
			overview.DueSoon++
		}
	}

	dashboard := &Dashboard{
		Score:       score,
		Checks:      checks,
		ActionItems: overview,
		Trends:      trends,
		GeneratedAt: now,
	}

	s.metrics.RecordDashboardDuration(ctx, s.clock().Sub(start))

	if s.cache != nil {
		s.cache.SetDashboard(ctx, dashboard)
	}

	s.logger.Info("compliance dashboard composed",
		zap.Float64("overall_score", score.OverallScore),
		zap.Int("open_action_items", overview.Total),
		zap.String("trend", string(trends.TrendDirection)),
	)

	return dashboard, nil
}
