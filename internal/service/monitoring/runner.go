package monitoring

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/privacyops/gdpr-compliance-backend/internal/domain/compliance"
	apperrors "github.com/privacyops/gdpr-compliance-backend/internal/domain/errors"
	"github.com/privacyops/gdpr-compliance-backend/internal/infrastructure/documentstore"
)

// RunComplianceChecks executes all eight checks in declaration order, tallies
// the per-tier summary, persists the run, and returns it. Individual check
// failures are folded into conservative results inside runCheck; only a
// failure persisting the run aborts.
func (s *Service) RunComplianceChecks(ctx context.Context) (*compliance.CheckRun, error) {
	results := make([]compliance.CheckResult, 0, len(compliance.CheckTypes))
	for _, c := range s.checkEvaluators() {
		result := s.runCheck(ctx, c)
		results = append(results, result)
		s.metrics.RecordCheckResult(ctx, string(result.CheckType), string(result.Status))
	}

	run := compliance.NewCheckRun(results, s.clock().UTC())

	doc, err := toDocument(run)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to encode check run").WithCause(err)
	}
	if _, err := s.store.Add(ctx, documentstore.CollectionComplianceChecks, doc); err != nil {
		return nil, apperrors.NewInternalError("failed to persist check run").WithCause(err)
	}

	if s.config.AutoCreateActionItems {
		s.createRemediationItems(ctx, run)
	}

	s.logger.Info("compliance checks completed",
		zap.Int("total", run.Summary.TotalChecks),
		zap.Int("passed", run.Summary.Passed),
		zap.Int("warnings", run.Summary.Warnings),
		zap.Int("failed", run.Summary.Failed),
		zap.Int("critical", run.Summary.Critical),
	)

	return run, nil
}

// createRemediationItems spawns open action items for failed checks. Creation
// is best-effort: the check run has already been persisted and its result is
// not invalidated by a failed follow-up write.
func (s *Service) createRemediationItems(ctx context.Context, run *compliance.CheckRun) {
	for _, result := range run.Checks {
		if result.Status != compliance.StatusNonCompliant && result.Status != compliance.StatusCritical {
			continue
		}

		item := compliance.NewActionItem(
			fmt.Sprintf("Remediate failed check: %s", result.CheckType),
			result.Message,
			compliance.PriorityForCheckStatus(result.Status),
			s.clock().UTC(),
		)
		item.RelatedCheckType = result.CheckType
		item.Category = "automated_check"

		doc, err := toDocument(item)
		if err == nil {
			_, err = s.store.Add(ctx, documentstore.CollectionActionItems, doc)
		}
		if err != nil {
			s.logger.Warn("failed to create remediation item",
				zap.String("check_type", string(result.CheckType)),
				zap.Error(err),
			)
		}
	}
}
