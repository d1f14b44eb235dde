package monitoring

import "context"

// DashboardCache is an optional read-model cache for the composed dashboard.
// It is an optimization only: a miss or a failing cache never fails the
// request, and implementations log their own errors.
type DashboardCache interface {
	GetDashboard(ctx context.Context) (*Dashboard, bool)
	SetDashboard(ctx context.Context, dashboard *Dashboard)
}
