package monitoring

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/privacyops/gdpr-compliance-backend/internal/domain/compliance"
	"github.com/privacyops/gdpr-compliance-backend/internal/infrastructure/documentstore"
)

type checkEvaluator struct {
	checkType compliance.CheckType
	evaluate  func(ctx context.Context) (compliance.CheckResult, error)
}

// checkEvaluators returns the eight checks in their fixed execution order.
// Order matters only for reproducible rendering; the checks share no state.
func (s *Service) checkEvaluators() []checkEvaluator {
	return []checkEvaluator{
		{compliance.CheckExpiredConsents, s.checkExpiredConsents},
		{compliance.CheckOverduePrivacyRequests, s.checkOverduePrivacyRequests},
		{compliance.CheckUnsignedDPAs, s.checkUnsignedDPAs},
		{compliance.CheckOpenSecurityIncidents, s.checkOpenSecurityIncidents},
		{compliance.CheckStaleAuditLog, s.checkStaleAuditLog},
		{compliance.CheckMissingRetentionPolicy, s.checkMissingRetentionPolicies},
		{compliance.CheckPendingDeletionRequests, s.checkPendingDeletionRequests},
		{compliance.CheckHighRiskProcessors, s.checkHighRiskProcessors},
	}
}

// runCheck evaluates one check, folding any internal failure into a
// conservative result so a flaky data source never aborts the batch.
func (s *Service) runCheck(ctx context.Context, c checkEvaluator) compliance.CheckResult {
	result, err := c.evaluate(ctx)
	if err == nil {
		return result
	}

	s.logger.Warn("compliance check unavailable",
		zap.String("check_type", string(c.checkType)),
		zap.Error(err),
	)

	// Absence of audit data is exactly what the stale-audit check flags, so
	// its unavailable result degrades to a warning rather than critical.
	status := compliance.StatusCritical
	if c.checkType == compliance.CheckStaleAuditLog {
		status = compliance.StatusWarning
	}

	return compliance.CheckResult{
		CheckType:      c.checkType,
		Status:         status,
		Message:        fmt.Sprintf("check unavailable: %v", err),
		Recommendation: "Investigate data gateway availability and re-run checks",
	}
}

func (s *Service) checkExpiredConsents(ctx context.Context) (compliance.CheckResult, error) {
	now := s.clock().UTC()
	count, err := s.store.Count(ctx, documentstore.CollectionConsentLogs, []documentstore.Filter{
		documentstore.Lte("expires_at", now),
	})
	if err != nil {
		return compliance.CheckResult{}, err
	}

	result := compliance.CheckResult{
		CheckType: compliance.CheckExpiredConsents,
		Count:     count,
	}
	switch {
	case count == 0:
		result.Status = compliance.StatusCompliant
		result.Message = "No expired consent records"
	case count < 10:
		result.Status = compliance.StatusWarning
		result.Message = fmt.Sprintf("%d consent records have expired", count)
		result.Recommendation = "Re-request consent from affected data subjects"
	default:
		result.Status = compliance.StatusNonCompliant
		result.Message = fmt.Sprintf("%d consent records have expired", count)
		result.Recommendation = "Run a consent renewal campaign and purge stale grants"
	}
	return result, nil
}

func (s *Service) checkOverduePrivacyRequests(ctx context.Context) (compliance.CheckResult, error) {
	cutoff := s.clock().UTC().Add(-privacyRequestSLA)
	count, err := s.store.Count(ctx, documentstore.CollectionPrivacyRequests, []documentstore.Filter{
		documentstore.In("status", "pending", "in_progress"),
		documentstore.Lte("requested_at", cutoff),
	})
	if err != nil {
		return compliance.CheckResult{}, err
	}

	result := compliance.CheckResult{
		CheckType: compliance.CheckOverduePrivacyRequests,
		Count:     count,
	}
	switch {
	case count == 0:
		result.Status = compliance.StatusCompliant
		result.Message = "No privacy requests past the 30-day deadline"
	case count < 3:
		result.Status = compliance.StatusWarning
		result.Message = fmt.Sprintf("%d privacy requests are past the 30-day deadline", count)
		result.Recommendation = "Prioritize overdue data subject requests"
	default:
		result.Status = compliance.StatusCritical
		result.Message = fmt.Sprintf("%d privacy requests are past the 30-day deadline", count)
		result.Recommendation = "Escalate to the DPO; statutory response deadlines are being missed"
	}
	return result, nil
}

func (s *Service) checkUnsignedDPAs(ctx context.Context) (compliance.CheckResult, error) {
	docs, err := s.store.Query(ctx, documentstore.CollectionProcessors, documentstore.QueryOptions{
		Filters: []documentstore.Filter{documentstore.Eq("status", "active")},
	})
	if err != nil {
		return compliance.CheckResult{}, err
	}

	count := 0
	for _, doc := range docs {
		var p compliance.Processor
		if err := compliance.DecodeDocument(doc, &p); err != nil {
			continue
		}
		if p.DPAStatus != "signed" {
			count++
		}
	}

	result := compliance.CheckResult{
		CheckType: compliance.CheckUnsignedDPAs,
		Count:     count,
	}
	switch {
	case count == 0:
		result.Status = compliance.StatusCompliant
		result.Message = "All active processors have signed DPAs"
	case count < 3:
		result.Status = compliance.StatusWarning
		result.Message = fmt.Sprintf("%d active processors lack a signed DPA", count)
		result.Recommendation = "Chase outstanding data processing agreements"
	default:
		result.Status = compliance.StatusNonCompliant
		result.Message = fmt.Sprintf("%d active processors lack a signed DPA", count)
		result.Recommendation = "Suspend processing with vendors until DPAs are signed"
	}
	return result, nil
}

func (s *Service) checkOpenSecurityIncidents(ctx context.Context) (compliance.CheckResult, error) {
	docs, err := s.store.Query(ctx, documentstore.CollectionSecurityIncidents, documentstore.QueryOptions{
		Filters: []documentstore.Filter{documentstore.In("status", "open", "investigating")},
	})
	if err != nil {
		return compliance.CheckResult{}, err
	}

	anyCritical := false
	for _, doc := range docs {
		var inc compliance.SecurityIncident
		if err := compliance.DecodeDocument(doc, &inc); err != nil {
			continue
		}
		if inc.Severity == "critical" {
			anyCritical = true
		}
	}
	count := len(docs)

	result := compliance.CheckResult{
		CheckType: compliance.CheckOpenSecurityIncidents,
		Count:     count,
	}
	switch {
	case count == 0:
		result.Status = compliance.StatusCompliant
		result.Message = "No open security incidents"
	case anyCritical || count >= 3:
		result.Status = compliance.StatusCritical
		result.Message = fmt.Sprintf("%d open security incidents", count)
		result.Recommendation = "Resolve open incidents and assess 72-hour breach notification duties"
	default:
		result.Status = compliance.StatusWarning
		result.Message = fmt.Sprintf("%d open security incidents", count)
		result.Recommendation = "Resolve open incidents before they age"
	}
	return result, nil
}

func (s *Service) checkStaleAuditLog(ctx context.Context) (compliance.CheckResult, error) {
	since := s.clock().UTC().Add(-auditActivityWindow)
	count, err := s.store.Count(ctx, documentstore.CollectionAuditLogs, []documentstore.Filter{
		documentstore.Gte("timestamp", since),
	})
	if err != nil {
		return compliance.CheckResult{}, err
	}

	result := compliance.CheckResult{
		CheckType: compliance.CheckStaleAuditLog,
		Count:     count,
	}
	if count > 0 {
		result.Status = compliance.StatusCompliant
		result.Message = fmt.Sprintf("%d audit entries recorded in the last 7 days", count)
	} else {
		result.Status = compliance.StatusWarning
		result.Message = "No audit log activity in the last 7 days"
		result.Recommendation = "Verify audit logging is wired into all data-touching operations"
	}
	return result, nil
}

func (s *Service) checkMissingRetentionPolicies(ctx context.Context) (compliance.CheckResult, error) {
	count, err := s.store.Count(ctx, documentstore.CollectionRetentionPolicies, nil)
	if err != nil {
		return compliance.CheckResult{}, err
	}

	result := compliance.CheckResult{
		CheckType: compliance.CheckMissingRetentionPolicy,
		Count:     count,
	}
	switch {
	case count >= retentionPolicyTarget:
		result.Status = compliance.StatusCompliant
		result.Message = fmt.Sprintf("%d retention policies configured", count)
	case count >= 1:
		result.Status = compliance.StatusWarning
		result.Message = fmt.Sprintf("Only %d retention policies configured", count)
		result.Recommendation = "Define retention policies for all personal data categories"
	default:
		result.Status = compliance.StatusNonCompliant
		result.Message = "No retention policies configured"
		result.Recommendation = "Define retention policies before storing personal data"
	}
	return result, nil
}

func (s *Service) checkPendingDeletionRequests(ctx context.Context) (compliance.CheckResult, error) {
	cutoff := s.clock().UTC().Add(-deletionRequestSLA)
	count, err := s.store.Count(ctx, documentstore.CollectionDeletionRequests, []documentstore.Filter{
		documentstore.Eq("status", "pending"),
		documentstore.Lte("requested_at", cutoff),
	})
	if err != nil {
		return compliance.CheckResult{}, err
	}

	result := compliance.CheckResult{
		CheckType: compliance.CheckPendingDeletionRequests,
		Count:     count,
	}
	switch {
	case count == 0:
		result.Status = compliance.StatusCompliant
		result.Message = "No deletion requests pending over 7 days"
	case count < 5:
		result.Status = compliance.StatusWarning
		result.Message = fmt.Sprintf("%d deletion requests pending over 7 days", count)
		result.Recommendation = "Process pending account deletions"
	default:
		result.Status = compliance.StatusCritical
		result.Message = fmt.Sprintf("%d deletion requests pending over 7 days", count)
		result.Recommendation = "Escalate deletion backlog; right-to-erasure deadlines at risk"
	}
	return result, nil
}

func (s *Service) checkHighRiskProcessors(ctx context.Context) (compliance.CheckResult, error) {
	count, err := s.store.Count(ctx, documentstore.CollectionProcessors, []documentstore.Filter{
		documentstore.Eq("status", "active"),
		documentstore.In("risk_level", "high", "critical"),
	})
	if err != nil {
		return compliance.CheckResult{}, err
	}

	result := compliance.CheckResult{
		CheckType: compliance.CheckHighRiskProcessors,
		Count:     count,
	}
	switch {
	case count == 0:
		result.Status = compliance.StatusCompliant
		result.Message = "No high-risk processors active"
	case count < 2:
		result.Status = compliance.StatusWarning
		result.Message = fmt.Sprintf("%d high-risk processors active", count)
		result.Recommendation = "Review DPIAs for high-risk processors"
	default:
		result.Status = compliance.StatusNonCompliant
		result.Message = fmt.Sprintf("%d high-risk processors active", count)
		result.Recommendation = "Reassess high-risk vendor relationships and mitigations"
	}
	return result, nil
}
