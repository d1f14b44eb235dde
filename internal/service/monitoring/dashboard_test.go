package monitoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/privacyops/gdpr-compliance-backend/internal/domain/compliance"
	"github.com/privacyops/gdpr-compliance-backend/internal/infrastructure/documentstore"
	"github.com/privacyops/gdpr-compliance-backend/internal/testutil/fixtures"
)

type fakeCache struct {
	dashboard *Dashboard
	hits      int
	sets      int
}

func (f *fakeCache) GetDashboard(ctx context.Context) (*Dashboard, bool) {
	if f.dashboard != nil {
		f.hits++
		return f.dashboard, true
	}
	return nil, false
}

func (f *fakeCache) SetDashboard(ctx context.Context, d *Dashboard) {
	f.dashboard = d
	f.sets++
}

func TestGetComplianceDashboard_ComposesAllSections(t *testing.T) {
	svc, store := newTestService(t)
	fixtures.SeedBaselineScenario(t, store, testNow)

	_, err := svc.CreateActionItem(context.Background(), CreateActionItemInput{
		Title:       "Chase mail vendor DPA",
		Description: "Pending since onboarding",
		Priority:    "high",
		DueDate:     timePtr(testNow.Add(10 * 24 * time.Hour)),
	})
	require.NoError(t, err)

	dashboard, err := svc.GetComplianceDashboard(context.Background())
	require.NoError(t, err)

	require.NotNil(t, dashboard.Score)
	assert.InDelta(t, 61.5, dashboard.Score.OverallScore, 1e-9)
	assert.Equal(t, compliance.StatusNonCompliant, dashboard.Score.Status)

	require.NotNil(t, dashboard.Checks)
	assert.Equal(t, len(compliance.CheckTypes), dashboard.Checks.Summary.TotalChecks)

	assert.Equal(t, 1, dashboard.ActionItems.Total)
	assert.Equal(t, 1, dashboard.ActionItems.ByPriority[compliance.PriorityHigh])
	assert.Equal(t, 1, dashboard.ActionItems.DueSoon)

	require.NotNil(t, dashboard.Trends)
	assert.Equal(t, DefaultConfig().TrendWindowDays, dashboard.Trends.WindowDays)
	assert.Equal(t, 1, dashboard.Trends.DataPoints, "the score stage's own snapshot is in the window")

	assert.True(t, dashboard.GeneratedAt.Equal(testNow))
}

func TestGetComplianceDashboard_StageFailureAbortsWhole(t *testing.T) {
	tests := []struct {
		name       string
		collection string
		wantStage  string
	}{
		{"score persistence", documentstore.CollectionComplianceScores, "score stage failed"},
		{"check persistence", documentstore.CollectionComplianceChecks, "checks stage failed"},
		{"action items", documentstore.CollectionActionItems, "action items stage failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newTestService(t)
			fixtures.SeedBaselineScenario(t, store, testNow)
			store.FailCollection(tt.collection, errors.New("gateway down"))

			dashboard, err := svc.GetComplianceDashboard(context.Background())
			require.Error(t, err)
			assert.Nil(t, dashboard, "no partial dashboard on stage failure")
			assert.Contains(t, err.Error(), tt.wantStage)
		})
	}
}

func TestGetComplianceDashboard_CacheHitSkipsComposition(t *testing.T) {
	cache := &fakeCache{dashboard: &Dashboard{GeneratedAt: testNow.Add(-time.Minute)}}
	svc, store := newTestService(t, WithCache(cache))
	// A poisoned gateway proves no stage ran.
	store.FailCollection(documentstore.CollectionComplianceScores, errors.New("gateway down"))

	dashboard, err := svc.GetComplianceDashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)
	assert.True(t, dashboard.GeneratedAt.Equal(testNow.Add(-time.Minute)))
}

func TestGetComplianceDashboard_CacheMissPopulatesCache(t *testing.T) {
	cache := &fakeCache{}
	svc, store := newTestService(t, WithCache(cache))
	fixtures.SeedBaselineScenario(t, store, testNow)

	dashboard, err := svc.GetComplianceDashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, dashboard, cache.dashboard)
}

func timePtr(t time.Time) *time.Time { return &t }
