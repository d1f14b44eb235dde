package rest

import (
	"context"

	"github.com/privacyops/gdpr-compliance-backend/internal/domain/compliance"
	"github.com/privacyops/gdpr-compliance-backend/internal/service/monitoring"
)

// MonitoringService is the compliance engine surface the REST layer exposes.
type MonitoringService interface {
	CalculateComplianceScore(ctx context.Context) (*compliance.ScoreSnapshot, error)
	RunComplianceChecks(ctx context.Context) (*compliance.CheckRun, error)
	GetComplianceTrends(ctx context.Context, days int) (*monitoring.TrendReport, error)
	GetComplianceDashboard(ctx context.Context) (*monitoring.Dashboard, error)
	CreateActionItem(ctx context.Context, input monitoring.CreateActionItemInput) (*compliance.ActionItem, error)
	GetActionItems(ctx context.Context, filters monitoring.ActionItemFilters) ([]compliance.ActionItem, error)
	UpdateActionItemStatus(ctx context.Context, id string, status compliance.ActionItemStatus) error
}
