package compliance

import (
	"time"

	"github.com/google/uuid"
)

// CheckType identifies one of the eight automated compliance checks.
type CheckType string

const (
	CheckExpiredConsents         CheckType = "expired_consents"
	CheckOverduePrivacyRequests  CheckType = "overdue_privacy_requests"
	CheckUnsignedDPAs            CheckType = "unsigned_dpas"
	CheckOpenSecurityIncidents   CheckType = "open_security_incidents"
	CheckStaleAuditLog           CheckType = "stale_audit_log"
	CheckMissingRetentionPolicy  CheckType = "missing_retention_policies"
	CheckPendingDeletionRequests CheckType = "pending_deletion_requests"
	CheckHighRiskProcessors      CheckType = "high_risk_processors"
)

// CheckTypes lists all checks in their fixed execution and reporting order.
var CheckTypes = []CheckType{
	CheckExpiredConsents,
	CheckOverduePrivacyRequests,
	CheckUnsignedDPAs,
	CheckOpenSecurityIncidents,
	CheckStaleAuditLog,
	CheckMissingRetentionPolicy,
	CheckPendingDeletionRequests,
	CheckHighRiskProcessors,
}

// CheckResult is the outcome of a single check evaluation. Each result is a
// pure function of the count it observed; checks share no state.
type CheckResult struct {
	CheckType      CheckType `json:"check_type"`
	Status         Status    `json:"status"`
	Message        string    `json:"message"`
	Count          int       `json:"count"`
	Recommendation string    `json:"recommendation,omitempty"`
}

// Passed reports whether the check landed in the compliant tier.
func (r CheckResult) Passed() bool {
	return r.Status == StatusCompliant
}

// CheckRunSummary counts check results per status tier.
type CheckRunSummary struct {
	TotalChecks int `json:"total_checks"`
	Passed      int `json:"passed"`
	Warnings    int `json:"warnings"`
	Failed      int `json:"failed"`
	Critical    int `json:"critical"`
}

// CheckRun is one persisted batch execution of all checks.
type CheckRun struct {
	ID      uuid.UUID       `json:"id"`
	Summary CheckRunSummary `json:"summary"`
	Checks  []CheckResult   `json:"checks"`
	RunAt   time.Time       `json:"run_at"`
}

// NewCheckRun assembles a run from ordered results, tallying the summary.
func NewCheckRun(results []CheckResult, at time.Time) *CheckRun {
	summary := CheckRunSummary{TotalChecks: len(results)}
	for _, r := range results {
		switch r.Status {
		case StatusCompliant:
			summary.Passed++
		case StatusWarning:
			summary.Warnings++
		case StatusNonCompliant:
			summary.Failed++
		case StatusCritical:
			summary.Critical++
		}
	}

	return &CheckRun{
		ID:      uuid.New(),
		Summary: summary,
		Checks:  results,
		RunAt:   at,
	}
}
