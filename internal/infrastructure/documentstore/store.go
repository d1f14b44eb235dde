package documentstore

import (
	"context"
	"errors"
)

// Collection names owned by the compliance engine and its collaborators.
const (
	CollectionUsers             = "users"
	CollectionConsentLogs       = "consent_logs"
	CollectionPrivacyRequests   = "privacy_requests"
	CollectionProcessors        = "processors"
	CollectionSecurityIncidents = "security_incidents"
	CollectionAuditLogs         = "audit_logs"
	CollectionRetentionPolicies = "retention_policies"
	CollectionAuditReports      = "audit_reports"
	CollectionComplianceScores  = "compliance_scores"
	CollectionComplianceChecks  = "compliance_checks"
	CollectionActionItems       = "action_items"
	CollectionDeletionRequests  = "deletion_requests"
)

// Document is a loosely-typed record as stored by the gateway. Typed decoding
// happens at the domain boundary, not here.
type Document map[string]any

// Operator is a filter comparison operator.
type Operator string

const (
	OpEqual        Operator = "=="
	OpGreaterEqual Operator = ">="
	OpLessEqual    Operator = "<="
	OpIn           Operator = "in"
)

// Filter is a single field predicate.
type Filter struct {
	Field string
	Op    Operator
	Value any
}

// Eq builds an equality filter.
func Eq(field string, value any) Filter {
	return Filter{Field: field, Op: OpEqual, Value: value}
}

// Gte builds a >= filter.
func Gte(field string, value any) Filter {
	return Filter{Field: field, Op: OpGreaterEqual, Value: value}
}

// Lte builds a <= filter.
func Lte(field string, value any) Filter {
	return Filter{Field: field, Op: OpLessEqual, Value: value}
}

// In builds an in-list filter. Values must be scalars.
func In(field string, values ...any) Filter {
	return Filter{Field: field, Op: OpIn, Value: values}
}

// Sort orders query results by one field.
type Sort struct {
	Field string
	Desc  bool
}

// QueryOptions bundles filters, ordering, and limit for a Query call.
type QueryOptions struct {
	Filters []Filter
	OrderBy *Sort
	Limit   int
}

// ErrNotFound is returned by Get and Update when no document matches the id.
var ErrNotFound = errors.New("document not found")

// Store is the generic document-collection gateway the compliance engine reads
// raw inputs from and appends computed results to.
type Store interface {
	Query(ctx context.Context, collection string, opts QueryOptions) ([]Document, error)
	Count(ctx context.Context, collection string, filters []Filter) (int, error)
	Get(ctx context.Context, collection, id string) (Document, error)
	Add(ctx context.Context, collection string, doc Document) (string, error)
	Update(ctx context.Context, collection, id string, partial Document) error
}
