package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/privacyops/gdpr-compliance-backend/internal/domain/compliance"
	apperrors "github.com/privacyops/gdpr-compliance-backend/internal/domain/errors"
	"github.com/privacyops/gdpr-compliance-backend/internal/service/monitoring"
)

// Handler serves the compliance API endpoints.
type Handler struct {
	monitoring MonitoringService
	logger     *slog.Logger
}

// NewHandler creates the API handler.
func NewHandler(svc MonitoringService, logger *slog.Logger) *Handler {
	return &Handler{monitoring: svc, logger: logger}
}

// errorResponse is the wire shape of every API error.
type errorResponse struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details,omitempty"`
	} `json:"error"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.GetStatusCode(err)

	resp := errorResponse{}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		resp.Error.Code = appErr.Code
		resp.Error.Message = appErr.Message
		resp.Error.Details = appErr.Details
	} else {
		resp.Error.Code = "INTERNAL_ERROR"
		resp.Error.Message = "internal server error"
	}

	if status >= 500 {
		h.logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		h.logger.WarnContext(r.Context(), "request rejected",
			"method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}

	h.writeJSON(w, status, resp)
}

// handleCalculateScore runs a fresh score calculation and returns the snapshot.
func (h *Handler) handleCalculateScore(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.monitoring.CalculateComplianceScore(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, snapshot)
}

// handleRunChecks executes the automated check batch and returns the run.
func (h *Handler) handleRunChecks(w http.ResponseWriter, r *http.Request) {
	run, err := h.monitoring.RunComplianceChecks(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, run)
}

// handleGetTrends returns score movement over a trailing window. The optional
// days query parameter must be a positive integer.
func (h *Handler) handleGetTrends(w http.ResponseWriter, r *http.Request) {
	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.writeError(w, r, apperrors.NewValidationError("INVALID_TREND_WINDOW",
				"days must be a positive integer"))
			return
		}
		days = parsed
	}

	report, err := h.monitoring.GetComplianceTrends(r.Context(), days)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

// handleGetDashboard returns the composed compliance dashboard.
func (h *Handler) handleGetDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.monitoring.GetComplianceDashboard(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, dashboard)
}

// handleCreateActionItem creates a remediation task.
func (h *Handler) handleCreateActionItem(w http.ResponseWriter, r *http.Request) {
	var input monitoring.CreateActionItemInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.writeError(w, r, apperrors.NewValidationError("INVALID_JSON", "request body must be valid JSON"))
		return
	}

	item, err := h.monitoring.CreateActionItem(r.Context(), input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, item)
}

// handleListActionItems lists remediation tasks, open ones by default.
func (h *Handler) handleListActionItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := monitoring.ActionItemFilters{
		Status:     q.Get("status"),
		Priority:   q.Get("priority"),
		AssignedTo: q.Get("assigned_to"),
	}
	if raw := q.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			h.writeError(w, r, apperrors.NewValidationError("INVALID_LIMIT",
				"limit must be a non-negative integer"))
			return
		}
		filters.Limit = parsed
	}

	items, err := h.monitoring.GetActionItems(r.Context(), filters)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"count": len(items),
	})
}

// handleUpdateActionItemStatus transitions an action item's lifecycle status.
func (h *Handler) handleUpdateActionItemStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, r, apperrors.NewValidationError("INVALID_JSON", "request body must be valid JSON"))
		return
	}

	if err := h.monitoring.UpdateActionItemStatus(r.Context(), id, compliance.ActionItemStatus(body.Status)); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleHealth reports liveness.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
