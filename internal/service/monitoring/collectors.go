package monitoring

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/privacyops/gdpr-compliance-backend/internal/domain/compliance"
	"github.com/privacyops/gdpr-compliance-backend/internal/infrastructure/documentstore"
)

// Business-rule windows and sample sizes shared by collectors and checks.
const (
	privacyRequestSLA   = 30 * 24 * time.Hour
	deletionRequestSLA  = 7 * 24 * time.Hour
	auditActivityWindow = 7 * 24 * time.Hour

	userSampleSize       = 100
	incidentSampleSize   = 10
	auditEntryTarget     = 10
	retentionPolicyTarget = 3
)

type scoreCollector struct {
	category compliance.Category
	collect  func(ctx context.Context) (float64, error)
}

// scoreCollectors returns the eight category collectors in reporting order.
// Each collector is deterministic over current gateway contents and returns a
// value bounded by its category weight.
func (s *Service) scoreCollectors() []scoreCollector {
	return []scoreCollector{
		{compliance.CategoryConsent, s.collectConsentScore},
		{compliance.CategoryDataRights, s.collectDataRightsScore},
		{compliance.CategoryDataProtection, s.collectDataProtectionScore},
		{compliance.CategoryProcessors, s.collectProcessorScore},
		{compliance.CategoryIncidents, s.collectIncidentScore},
		{compliance.CategoryAuditLogs, s.collectAuditLogScore},
		{compliance.CategoryRetention, s.collectRetentionScore},
		{compliance.CategoryMinimization, s.collectMinimizationScore},
	}
}

// collectConsentScore scores the share of granted consents over all consent
// log entries.
func (s *Service) collectConsentScore(ctx context.Context) (float64, error) {
	total, err := s.store.Count(ctx, documentstore.CollectionConsentLogs, nil)
	if err != nil {
		return 0, err
	}
	granted, err := s.store.Count(ctx, documentstore.CollectionConsentLogs, []documentstore.Filter{
		documentstore.Eq("granted", true),
	})
	if err != nil {
		return 0, err
	}

	weight := compliance.Weight(compliance.CategoryConsent)
	return boundedRatio(granted, total, weight), nil
}

// collectDataRightsScore scores privacy requests completed within the 30-day
// statutory window.
func (s *Service) collectDataRightsScore(ctx context.Context) (float64, error) {
	total, err := s.store.Count(ctx, documentstore.CollectionPrivacyRequests, nil)
	if err != nil {
		return 0, err
	}

	docs, err := s.store.Query(ctx, documentstore.CollectionPrivacyRequests, documentstore.QueryOptions{
		Filters: []documentstore.Filter{documentstore.Eq("status", "completed")},
	})
	if err != nil {
		return 0, err
	}

	onTime := 0
	for _, doc := range docs {
		var req compliance.PrivacyRequest
		if err := compliance.DecodeDocument(doc, &req); err != nil {
			s.logger.Warn("skipping undecodable privacy request", zap.Error(err))
			continue
		}
		if req.CompletedWithin(privacyRequestSLA) {
			onTime++
		}
	}

	weight := compliance.Weight(compliance.CategoryDataRights)
	return boundedRatio(onTime, total, weight), nil
}

// collectDataProtectionScore samples the most recent users and scores the
// share with at least one granted consent on record.
func (s *Service) collectDataProtectionScore(ctx context.Context) (float64, error) {
	users, err := s.store.Query(ctx, documentstore.CollectionUsers, documentstore.QueryOptions{
		OrderBy: &documentstore.Sort{Field: "created_at", Desc: true},
		Limit:   userSampleSize,
	})
	if err != nil {
		return 0, err
	}

	weight := compliance.Weight(compliance.CategoryDataProtection)
	if len(users) == 0 {
		return 0, nil
	}

	ids := make([]any, 0, len(users))
	for _, u := range users {
		if id, ok := u["id"].(string); ok {
			ids = append(ids, id)
		}
	}

	consents, err := s.store.Query(ctx, documentstore.CollectionConsentLogs, documentstore.QueryOptions{
		Filters: []documentstore.Filter{
			documentstore.Eq("granted", true),
			documentstore.In("user_id", ids...),
		},
	})
	if err != nil {
		return 0, err
	}

	covered := make(map[string]struct{})
	for _, doc := range consents {
		if uid, ok := doc["user_id"].(string); ok {
			covered[uid] = struct{}{}
		}
	}

	return boundedRatio(len(covered), len(users), weight), nil
}

// collectProcessorScore scores processors with a signed DPA and active status.
// An empty processor registry is vacuously compliant and earns the full
// weight.
func (s *Service) collectProcessorScore(ctx context.Context) (float64, error) {
	docs, err := s.store.Query(ctx, documentstore.CollectionProcessors, documentstore.QueryOptions{})
	if err != nil {
		return 0, err
	}

	weight := compliance.Weight(compliance.CategoryProcessors)
	if len(docs) == 0 {
		return weight, nil
	}

	compliant := 0
	for _, doc := range docs {
		var p compliance.Processor
		if err := compliance.DecodeDocument(doc, &p); err != nil {
			s.logger.Warn("skipping undecodable processor", zap.Error(err))
			continue
		}
		if p.Compliant() {
			compliant++
		}
	}

	return float64(compliant) / float64(len(docs)) * weight, nil
}

// collectIncidentScore scores resolved incidents over the most recent sample.
// No incidents on record earns the full weight.
func (s *Service) collectIncidentScore(ctx context.Context) (float64, error) {
	docs, err := s.store.Query(ctx, documentstore.CollectionSecurityIncidents, documentstore.QueryOptions{
		OrderBy: &documentstore.Sort{Field: "reported_at", Desc: true},
		Limit:   incidentSampleSize,
	})
	if err != nil {
		return 0, err
	}

	weight := compliance.Weight(compliance.CategoryIncidents)
	if len(docs) == 0 {
		return weight, nil
	}

	resolved := 0
	for _, doc := range docs {
		var inc compliance.SecurityIncident
		if err := compliance.DecodeDocument(doc, &inc); err != nil {
			s.logger.Warn("skipping undecodable incident", zap.Error(err))
			continue
		}
		if inc.Resolved() {
			resolved++
		}
	}

	return float64(resolved) / float64(len(docs)) * weight, nil
}

// collectAuditLogScore scales linearly with audit activity over the trailing
// week, capped once the entry target is met.
func (s *Service) collectAuditLogScore(ctx context.Context) (float64, error) {
	since := s.clock().UTC().Add(-auditActivityWindow)
	count, err := s.store.Count(ctx, documentstore.CollectionAuditLogs, []documentstore.Filter{
		documentstore.Gte("timestamp", since),
	})
	if err != nil {
		return 0, err
	}

	weight := compliance.Weight(compliance.CategoryAuditLogs)
	return boundedRatio(count, auditEntryTarget, weight), nil
}

// collectRetentionScore scales with configured retention policies, capped at
// the policy target.
func (s *Service) collectRetentionScore(ctx context.Context) (float64, error) {
	count, err := s.store.Count(ctx, documentstore.CollectionRetentionPolicies, nil)
	if err != nil {
		return 0, err
	}

	weight := compliance.Weight(compliance.CategoryRetention)
	return boundedRatio(count, retentionPolicyTarget, weight), nil
}

// collectMinimizationScore awards the full weight once any data-minimization
// audit report exists.
func (s *Service) collectMinimizationScore(ctx context.Context) (float64, error) {
	count, err := s.store.Count(ctx, documentstore.CollectionAuditReports, []documentstore.Filter{
		documentstore.Eq("type", compliance.ReportTypeDataMinimization),
	})
	if err != nil {
		return 0, err
	}

	if count > 0 {
		return compliance.Weight(compliance.CategoryMinimization), nil
	}
	return 0, nil
}

// boundedRatio computes numerator/denominator * weight with a division-by-zero
// guard, capped at weight.
func boundedRatio(numerator, denominator int, weight float64) float64 {
	if denominator < 1 {
		denominator = 1
	}
	v := float64(numerator) / float64(denominator) * weight
	if v > weight {
		return weight
	}
	return v
}
