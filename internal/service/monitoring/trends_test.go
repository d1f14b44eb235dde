package monitoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/privacyops/gdpr-compliance-backend/internal/infrastructure/documentstore"
)

func seedScorePoint(t *testing.T, store *documentstore.MemoryStore, score float64, at time.Time) {
	t.Helper()
	_, err := store.Add(context.Background(), documentstore.CollectionComplianceScores, documentstore.Document{
		"overall_score": score,
		"max_score":     100.0,
		"status":        "warning",
		"calculated_at": at,
	})
	require.NoError(t, err)
}

func TestGetComplianceTrends_Empty(t *testing.T) {
	svc, _ := newTestService(t)

	report, err := svc.GetComplianceTrends(context.Background(), 30)
	require.NoError(t, err)

	assert.Equal(t, 30, report.WindowDays)
	assert.Equal(t, 0, report.DataPoints)
	assert.Equal(t, TrendStable, report.TrendDirection)
	assert.Zero(t, report.AverageScore)
}

func TestGetComplianceTrends_Directions(t *testing.T) {
	tests := []struct {
		name      string
		first     float64
		last      float64
		direction TrendDirection
	}{
		{"improving beyond delta", 60, 70, TrendImproving},
		{"declining beyond delta", 70, 60, TrendDeclining},
		{"inside delta is stable", 70, 72, TrendStable},
		{"exactly delta is stable", 70, 75, TrendStable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newTestService(t)
			seedScorePoint(t, store, tt.first, testNow.Add(-20*24*time.Hour))
			seedScorePoint(t, store, tt.last, testNow.Add(-1*24*time.Hour))

			report, err := svc.GetComplianceTrends(context.Background(), 30)
			require.NoError(t, err)

			assert.Equal(t, tt.direction, report.TrendDirection)
			assert.Equal(t, 2, report.DataPoints)
			assert.InDelta(t, (tt.first+tt.last)/2, report.AverageScore, 0.01)
		})
	}
}

func TestGetComplianceTrends_SinglePointIsStable(t *testing.T) {
	svc, store := newTestService(t)
	seedScorePoint(t, store, 88, testNow.Add(-24*time.Hour))

	report, err := svc.GetComplianceTrends(context.Background(), 30)
	require.NoError(t, err)

	assert.Equal(t, 1, report.DataPoints)
	assert.Equal(t, TrendStable, report.TrendDirection)
	assert.InDelta(t, 88.0, report.AverageScore, 1e-9)
}

func TestGetComplianceTrends_WindowExcludesOldPoints(t *testing.T) {
	svc, store := newTestService(t)
	seedScorePoint(t, store, 10, testNow.Add(-60*24*time.Hour))
	seedScorePoint(t, store, 80, testNow.Add(-5*24*time.Hour))
	seedScorePoint(t, store, 90, testNow.Add(-1*24*time.Hour))

	report, err := svc.GetComplianceTrends(context.Background(), 30)
	require.NoError(t, err)

	assert.Equal(t, 2, report.DataPoints, "the 60-day-old point falls outside the window")
	assert.Equal(t, TrendImproving, report.TrendDirection)
	assert.InDelta(t, 85.0, report.AverageScore, 1e-9)
}

func TestGetComplianceTrends_PointsAscendByTime(t *testing.T) {
	svc, store := newTestService(t)
	// Inserted newest-first; the report must still ascend.
	seedScorePoint(t, store, 90, testNow.Add(-1*24*time.Hour))
	seedScorePoint(t, store, 60, testNow.Add(-10*24*time.Hour))
	seedScorePoint(t, store, 75, testNow.Add(-5*24*time.Hour))

	report, err := svc.GetComplianceTrends(context.Background(), 30)
	require.NoError(t, err)

	require.Len(t, report.Points, 3)
	assert.InDelta(t, 60.0, report.Points[0].Score, 1e-9)
	assert.InDelta(t, 75.0, report.Points[1].Score, 1e-9)
	assert.InDelta(t, 90.0, report.Points[2].Score, 1e-9)
	assert.Equal(t, TrendImproving, report.TrendDirection)
}

func TestGetComplianceTrends_DefaultsWindow(t *testing.T) {
	svc, _ := newTestService(t)

	for _, days := range []int{0, -7} {
		report, err := svc.GetComplianceTrends(context.Background(), days)
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig().TrendWindowDays, report.WindowDays)
	}
}

func TestGetComplianceTrends_GatewayFailure(t *testing.T) {
	svc, store := newTestService(t)
	store.FailCollection(documentstore.CollectionComplianceScores, errors.New("gateway down"))

	report, err := svc.GetComplianceTrends(context.Background(), 30)
	require.Error(t, err)
	assert.Nil(t, report)
}
