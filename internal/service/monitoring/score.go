package monitoring

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/privacyops/gdpr-compliance-backend/internal/domain/compliance"
	apperrors "github.com/privacyops/gdpr-compliance-backend/internal/domain/errors"
	"github.com/privacyops/gdpr-compliance-backend/internal/infrastructure/documentstore"
)

// CalculateComplianceScore runs all eight category collectors, aggregates
// their weighted sub-scores into one 0-100 score, persists an immutable
// snapshot, and returns it.
//
// A failing collector is folded into a zero contribution so one flaky data
// source never aborts the measurement; a failure persisting the snapshot does
// abort, and no partial snapshot is written.
func (s *Service) CalculateComplianceScore(ctx context.Context) (*compliance.ScoreSnapshot, error) {
	start := s.clock()

	breakdown := make(map[compliance.Category]float64, len(compliance.Categories))
	for _, c := range s.scoreCollectors() {
		value, err := c.collect(ctx)
		if err != nil {
			s.logger.Warn("score collector failed, scoring category as zero",
				zap.String("category", string(c.category)),
				zap.Error(err),
			)
			value = 0
		}
		breakdown[c.category] = round2(value)
	}

	snapshot := compliance.NewScoreSnapshot(breakdown, s.clock().UTC())
	snapshot.OverallScore = round2(snapshot.OverallScore)
	snapshot.Status = compliance.StatusForScore(snapshot.OverallScore)

	doc, err := toDocument(snapshot)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to encode score snapshot").WithCause(err)
	}
	if _, err := s.store.Add(ctx, documentstore.CollectionComplianceScores, doc); err != nil {
		return nil, apperrors.NewInternalError("failed to persist score snapshot").WithCause(err)
	}

	s.metrics.RecordScore(ctx, snapshot.OverallScore, string(snapshot.Status))
	s.metrics.RecordScoreDuration(ctx, s.clock().Sub(start))

	s.logger.Info("compliance score calculated",
		zap.Float64("overall_score", snapshot.OverallScore),
		zap.String("status", string(snapshot.Status)),
	)

	return snapshot, nil
}

// toDocument flattens a typed record into a gateway document via its JSON
// form, so persisted field names match the record's JSON tags.
func toDocument(v any) (documentstore.Document, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	doc := documentstore.Document{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
