package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/privacyops/gdpr-compliance-backend/internal/domain/compliance"
	apperrors "github.com/privacyops/gdpr-compliance-backend/internal/domain/errors"
	"github.com/privacyops/gdpr-compliance-backend/internal/infrastructure/config"
	"github.com/privacyops/gdpr-compliance-backend/internal/service/monitoring"
)

type mockMonitoringService struct {
	mock.Mock
}

func (m *mockMonitoringService) CalculateComplianceScore(ctx context.Context) (*compliance.ScoreSnapshot, error) {
	args := m.Called(ctx)
	if snap := args.Get(0); snap != nil {
		return snap.(*compliance.ScoreSnapshot), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMonitoringService) RunComplianceChecks(ctx context.Context) (*compliance.CheckRun, error) {
	args := m.Called(ctx)
	if run := args.Get(0); run != nil {
		return run.(*compliance.CheckRun), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMonitoringService) GetComplianceTrends(ctx context.Context, days int) (*monitoring.TrendReport, error) {
	args := m.Called(ctx, days)
	if report := args.Get(0); report != nil {
		return report.(*monitoring.TrendReport), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMonitoringService) GetComplianceDashboard(ctx context.Context) (*monitoring.Dashboard, error) {
	args := m.Called(ctx)
	if d := args.Get(0); d != nil {
		return d.(*monitoring.Dashboard), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMonitoringService) CreateActionItem(ctx context.Context, input monitoring.CreateActionItemInput) (*compliance.ActionItem, error) {
	args := m.Called(ctx, input)
	if item := args.Get(0); item != nil {
		return item.(*compliance.ActionItem), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMonitoringService) GetActionItems(ctx context.Context, filters monitoring.ActionItemFilters) ([]compliance.ActionItem, error) {
	args := m.Called(ctx, filters)
	if items := args.Get(0); items != nil {
		return items.([]compliance.ActionItem), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMonitoringService) UpdateActionItemStatus(ctx context.Context, id string, status compliance.ActionItemStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func newTestRouter(t *testing.T, svc MonitoringService) http.Handler {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	cfg := &config.Config{}
	handler := NewHandler(svc, logger)
	return NewRouter(handler, cfg, logger, nil)
}

func TestHandleCalculateScore(t *testing.T) {
	svc := new(mockMonitoringService)
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	snap := compliance.NewScoreSnapshot(map[compliance.Category]float64{
		compliance.CategoryConsent: 12,
	}, now)
	svc.On("CalculateComplianceScore", mock.Anything).Return(snap, nil)

	router := newTestRouter(t, svc)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/compliance/score", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got compliance.ScoreSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.InDelta(t, 12.0, got.OverallScore, 1e-9)
	assert.Equal(t, compliance.StatusCritical, got.Status)
	svc.AssertExpectations(t)
}

func TestHandleCalculateScore_InternalError(t *testing.T) {
	svc := new(mockMonitoringService)
	svc.On("CalculateComplianceScore", mock.Anything).
		Return(nil, apperrors.NewInternalError("failed to persist score snapshot"))

	router := newTestRouter(t, svc)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/compliance/score", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "INTERNAL_ERROR", resp.Error.Code)
}

func TestHandleRunChecks(t *testing.T) {
	svc := new(mockMonitoringService)
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	run := compliance.NewCheckRun([]compliance.CheckResult{
		{CheckType: compliance.CheckExpiredConsents, Status: compliance.StatusCompliant, Message: "No expired consent records"},
		{CheckType: compliance.CheckUnsignedDPAs, Status: compliance.StatusWarning, Message: "1 active processors lack a signed DPA"},
	}, now)
	svc.On("RunComplianceChecks", mock.Anything).Return(run, nil)

	router := newTestRouter(t, svc)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/compliance/checks", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got compliance.CheckRun
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 2, got.Summary.TotalChecks)
	assert.Equal(t, 1, got.Summary.Passed)
	assert.Equal(t, 1, got.Summary.Warnings)
}

func TestHandleGetTrends(t *testing.T) {
	t.Run("passes parsed days through", func(t *testing.T) {
		svc := new(mockMonitoringService)
		svc.On("GetComplianceTrends", mock.Anything, 7).
			Return(&monitoring.TrendReport{WindowDays: 7, TrendDirection: monitoring.TrendStable}, nil)

		router := newTestRouter(t, svc)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/compliance/trends?days=7", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("missing days defaults to zero", func(t *testing.T) {
		svc := new(mockMonitoringService)
		svc.On("GetComplianceTrends", mock.Anything, 0).
			Return(&monitoring.TrendReport{WindowDays: 30, TrendDirection: monitoring.TrendStable}, nil)

		router := newTestRouter(t, svc)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/compliance/trends", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("rejects invalid days", func(t *testing.T) {
		svc := new(mockMonitoringService)
		router := newTestRouter(t, svc)

		for _, raw := range []string{"abc", "-3", "0"} {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/compliance/trends?days="+raw, nil))
			assert.Equal(t, http.StatusBadRequest, rec.Code, "days=%s", raw)
		}
		svc.AssertNotCalled(t, "GetComplianceTrends", mock.Anything, mock.Anything)
	})
}

func TestHandleCreateActionItem(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := new(mockMonitoringService)
		now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
		item := compliance.NewActionItem("Chase DPA", "Vendor DPA pending", compliance.PriorityHigh, now)
		svc.On("CreateActionItem", mock.Anything, mock.MatchedBy(func(in monitoring.CreateActionItemInput) bool {
			return in.Title == "Chase DPA" && in.Priority == "high"
		})).Return(item, nil)

		body, _ := json.Marshal(map[string]string{
			"title":       "Chase DPA",
			"description": "Vendor DPA pending",
			"priority":    "high",
		})

		router := newTestRouter(t, svc)
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/action-items", bytes.NewReader(body))
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("validation error maps to 400 with details", func(t *testing.T) {
		svc := new(mockMonitoringService)
		appErr := apperrors.NewValidationError("INVALID_ACTION_ITEM", "title and description are required").
			WithDetails(map[string]any{"Title": "required"})
		svc.On("CreateActionItem", mock.Anything, mock.Anything).Return(nil, appErr)

		router := newTestRouter(t, svc)
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/action-items", bytes.NewReader([]byte(`{"description":"d"}`)))
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		var resp errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "INVALID_ACTION_ITEM", resp.Error.Code)
		assert.Contains(t, resp.Error.Details, "Title")
	})

	t.Run("malformed json rejected before service call", func(t *testing.T) {
		svc := new(mockMonitoringService)
		router := newTestRouter(t, svc)
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/action-items", bytes.NewReader([]byte("{not json")))
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "CreateActionItem", mock.Anything, mock.Anything)
	})
}

func TestHandleListActionItems(t *testing.T) {
	svc := new(mockMonitoringService)
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	items := []compliance.ActionItem{
		*compliance.NewActionItem("a", "d", compliance.PriorityHigh, now),
	}
	svc.On("GetActionItems", mock.Anything, monitoring.ActionItemFilters{
		Status: "open", Priority: "high", Limit: 5,
	}).Return(items, nil)

	router := newTestRouter(t, svc)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/action-items?status=open&priority=high&limit=5", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Items []compliance.ActionItem `json:"items"`
		Count int                     `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "a", resp.Items[0].Title)
	svc.AssertExpectations(t)
}

func TestHandleUpdateActionItemStatus(t *testing.T) {
	t.Run("no content on success", func(t *testing.T) {
		svc := new(mockMonitoringService)
		svc.On("UpdateActionItemStatus", mock.Anything, "item-1", compliance.ActionItemClosed).Return(nil)

		router := newTestRouter(t, svc)
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPatch, "/api/v1/action-items/item-1/status",
			bytes.NewReader([]byte(`{"status":"closed"}`)))
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("not found maps to 404", func(t *testing.T) {
		svc := new(mockMonitoringService)
		svc.On("UpdateActionItemStatus", mock.Anything, "missing", compliance.ActionItemClosed).
			Return(apperrors.ErrActionItemNotFound)

		router := newTestRouter(t, svc)
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPatch, "/api/v1/action-items/missing/status",
			bytes.NewReader([]byte(`{"status":"closed"}`)))
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandleGetDashboard(t *testing.T) {
	svc := new(mockMonitoringService)
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	svc.On("GetComplianceDashboard", mock.Anything).Return(&monitoring.Dashboard{
		Score:       compliance.NewScoreSnapshot(map[compliance.Category]float64{compliance.CategoryConsent: 15}, now),
		Checks:      compliance.NewCheckRun(nil, now),
		Trends:      &monitoring.TrendReport{WindowDays: 30, TrendDirection: monitoring.TrendStable},
		GeneratedAt: now,
	}, nil)

	router := newTestRouter(t, svc)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/compliance/dashboard", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got monitoring.Dashboard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.NotNil(t, got.Score)
	assert.InDelta(t, 15.0, got.Score.OverallScore, 1e-9)
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t, new(mockMonitoringService))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestRateLimitMiddleware(t *testing.T) {
	handler := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}), RateLimitMiddleware(1, 1))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code, "burst of 1 exhausted")
}

func TestRecoveryMiddleware(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	handler := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}), RecoveryMiddleware(logger))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
