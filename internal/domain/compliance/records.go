package compliance

import (
	"encoding/json"
	"time"
)

// Raw input records owned by external collaborators (consent CRUD, request
// intake, processor registry, incident reporting). The scoring engine reads
// them through the document gateway and decodes them here, at the boundary, so
// collector logic operates on typed structures instead of ad hoc field lookups.

// ConsentLogEntry is one consent grant or denial event.
type ConsentLogEntry struct {
	UserID    string     `json:"user_id"`
	Purpose   string     `json:"purpose,omitempty"`
	Granted   bool       `json:"granted"`
	Timestamp time.Time  `json:"timestamp"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// PrivacyRequest is a data subject request (access, erasure, portability).
type PrivacyRequest struct {
	Status      string     `json:"status"`
	RequestedAt time.Time  `json:"requested_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// CompletedWithin reports whether the request was completed within the given
// window of being requested.
func (p PrivacyRequest) CompletedWithin(window time.Duration) bool {
	if p.CompletedAt == nil {
		return false
	}
	return !p.CompletedAt.After(p.RequestedAt.Add(window))
}

// Processor is a registered third-party data processor.
type Processor struct {
	Name      string `json:"name"`
	DPAStatus string `json:"dpa_status"`
	Status    string `json:"status"`
	RiskLevel string `json:"risk_level"`
}

// Compliant reports whether the processor counts toward the processor score:
// an active processor with a signed data processing agreement.
func (p Processor) Compliant() bool {
	return p.DPAStatus == "signed" && p.Status == "active"
}

// HighRisk reports whether an active processor carries elevated risk.
func (p Processor) HighRisk() bool {
	return p.Status == "active" && (p.RiskLevel == "high" || p.RiskLevel == "critical")
}

// SecurityIncident is a reported breach or security event.
type SecurityIncident struct {
	Status     string    `json:"status"`
	Severity   string    `json:"severity"`
	ReportedAt time.Time `json:"reported_at"`
}

// Resolved reports whether the incident has been closed out.
func (i SecurityIncident) Resolved() bool {
	return i.Status == "resolved" || i.Status == "closed"
}

// Open reports whether the incident still needs attention.
func (i SecurityIncident) Open() bool {
	return i.Status == "open" || i.Status == "investigating"
}

// AuditReport is a generated compliance report document, e.g. a
// data-minimization audit.
type AuditReport struct {
	Type        string    `json:"type"`
	GeneratedAt time.Time `json:"generated_at"`
}

// ReportTypeDataMinimization marks data-minimization audit reports, whose
// presence feeds the minimization score.
const ReportTypeDataMinimization = "data_minimization"

// DecodeDocument decodes a loosely-typed gateway document into a typed record
// via its JSON representation. Timestamps stored as RFC 3339 strings or
// time.Time both round-trip.
func DecodeDocument(doc map[string]any, out any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
