// Package fixtures builds seed documents for the raw input collections the
// compliance engine reads. All timestamps should be UTC.
package fixtures

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/privacyops/gdpr-compliance-backend/internal/infrastructure/documentstore"
)

// User builds a user document.
func User(id string, createdAt time.Time) documentstore.Document {
	if id == "" {
		id = uuid.NewString()
	}
	return documentstore.Document{
		"id":         id,
		"created_at": createdAt,
	}
}

// ConsentLog builds a consent log entry.
func ConsentLog(userID string, granted bool, at time.Time) documentstore.Document {
	return documentstore.Document{
		"user_id":   userID,
		"purpose":   "marketing",
		"granted":   granted,
		"timestamp": at,
	}
}

// ExpiredConsentLog builds a granted consent whose expiry is already past.
func ExpiredConsentLog(userID string, expiredAt time.Time) documentstore.Document {
	doc := ConsentLog(userID, true, expiredAt.Add(-365*24*time.Hour))
	doc["expires_at"] = expiredAt
	return doc
}

// PrivacyRequest builds a data subject request. A nil completedAt leaves the
// request open.
func PrivacyRequest(status string, requestedAt time.Time, completedAt *time.Time) documentstore.Document {
	doc := documentstore.Document{
		"status":       status,
		"requested_at": requestedAt,
	}
	if completedAt != nil {
		doc["completed_at"] = *completedAt
	}
	return doc
}

// Processor builds a processor registry entry.
func Processor(name, dpaStatus, status, riskLevel string) documentstore.Document {
	return documentstore.Document{
		"name":       name,
		"dpa_status": dpaStatus,
		"status":     status,
		"risk_level": riskLevel,
	}
}

// Incident builds a security incident report.
func Incident(status, severity string, reportedAt time.Time) documentstore.Document {
	return documentstore.Document{
		"status":      status,
		"severity":    severity,
		"reported_at": reportedAt,
	}
}

// AuditLog builds one audit log entry.
func AuditLog(at time.Time) documentstore.Document {
	return documentstore.Document{
		"action":    "record_accessed",
		"timestamp": at,
	}
}

// RetentionPolicy builds a retention policy document.
func RetentionPolicy(name string) documentstore.Document {
	return documentstore.Document{
		"name":           name,
		"retention_days": 365,
	}
}

// AuditReport builds a generated report document of the given type.
func AuditReport(reportType string, at time.Time) documentstore.Document {
	return documentstore.Document{
		"type":         reportType,
		"generated_at": at,
	}
}

// DeletionRequest builds an account deletion request.
func DeletionRequest(status string, requestedAt time.Time) documentstore.Document {
	return documentstore.Document{
		"status":       status,
		"requested_at": requestedAt,
	}
}

// Seed adds docs to a collection, failing the test on error.
func Seed(t *testing.T, store documentstore.Store, collection string, docs ...documentstore.Document) {
	t.Helper()
	ctx := context.Background()
	for _, doc := range docs {
		_, err := store.Add(ctx, collection, doc)
		require.NoError(t, err)
	}
}

// SeedBaselineScenario seeds the canonical scenario used by end-to-end score
// tests: 10 consent logs with 8 granted, 5 privacy requests with 4 completed
// on time, 2 processors with 1 compliant, no incidents, 12 recent audit logs,
// 3 retention policies, and no minimization report.
func SeedBaselineScenario(t *testing.T, store documentstore.Store, now time.Time) {
	t.Helper()

	for i := 0; i < 10; i++ {
		Seed(t, store, documentstore.CollectionConsentLogs,
			ConsentLog("user-base", i < 8, now.Add(-time.Duration(i)*time.Hour)))
	}

	onTime := now.Add(-10 * 24 * time.Hour)
	late := now.Add(-1 * 24 * time.Hour)
	requested := now.Add(-40 * 24 * time.Hour)
	for i := 0; i < 4; i++ {
		done := onTime.Add(time.Duration(i) * time.Hour)
		Seed(t, store, documentstore.CollectionPrivacyRequests,
			PrivacyRequest("completed", done.Add(-20*24*time.Hour), &done))
	}
	Seed(t, store, documentstore.CollectionPrivacyRequests,
		PrivacyRequest("completed", requested, &late))

	Seed(t, store, documentstore.CollectionProcessors,
		Processor("analytics-vendor", "signed", "active", "low"),
		Processor("mail-vendor", "pending", "active", "low"))

	for i := 0; i < 12; i++ {
		Seed(t, store, documentstore.CollectionAuditLogs,
			AuditLog(now.Add(-time.Duration(i)*time.Hour)))
	}

	Seed(t, store, documentstore.CollectionRetentionPolicies,
		RetentionPolicy("contacts"),
		RetentionPolicy("messages"),
		RetentionPolicy("exports"))
}
