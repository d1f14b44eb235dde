package compliance

import (
	"time"

	"github.com/google/uuid"
)

// Status classifies an overall score or a single check outcome.
type Status string

const (
	StatusCompliant    Status = "compliant"
	StatusWarning      Status = "warning"
	StatusNonCompliant Status = "non_compliant"
	StatusCritical     Status = "critical"
)

// Score thresholds for the overall 0-100 compliance score.
const (
	ThresholdCompliant    = 90.0
	ThresholdWarning      = 75.0
	ThresholdNonCompliant = 60.0
)

// MaxScore is the ceiling of the weighted compliance score.
const MaxScore = 100.0

// StatusForScore maps an overall score to its status tier.
func StatusForScore(score float64) Status {
	switch {
	case score >= ThresholdCompliant:
		return StatusCompliant
	case score >= ThresholdWarning:
		return StatusWarning
	case score >= ThresholdNonCompliant:
		return StatusNonCompliant
	default:
		return StatusCritical
	}
}

// Category is one weighted axis of the compliance score.
type Category string

const (
	CategoryConsent        Category = "consent"
	CategoryDataRights     Category = "dataRights"
	CategoryDataProtection Category = "dataProtection"
	CategoryProcessors     Category = "processors"
	CategoryIncidents      Category = "incidents"
	CategoryAuditLogs      Category = "auditLogs"
	CategoryRetention      Category = "retention"
	CategoryMinimization   Category = "minimization"
)

// Categories lists all score categories in reporting order.
var Categories = []Category{
	CategoryConsent,
	CategoryDataRights,
	CategoryDataProtection,
	CategoryProcessors,
	CategoryIncidents,
	CategoryAuditLogs,
	CategoryRetention,
	CategoryMinimization,
}

// CategoryWeights holds the weight ceiling per category. Weights sum to 100.
var CategoryWeights = map[Category]float64{
	CategoryConsent:        15,
	CategoryDataRights:     15,
	CategoryDataProtection: 20,
	CategoryProcessors:     15,
	CategoryIncidents:      10,
	CategoryAuditLogs:      10,
	CategoryRetention:      10,
	CategoryMinimization:   5,
}

// Weight returns the ceiling for a category, 0 for unknown categories.
func Weight(c Category) float64 {
	return CategoryWeights[c]
}

// ScoreSnapshot is one immutable, timestamped compliance score calculation.
// Snapshots form an append-only time series; they are never mutated or deleted.
type ScoreSnapshot struct {
	ID           uuid.UUID            `json:"id"`
	OverallScore float64              `json:"overall_score"`
	MaxScore     float64              `json:"max_score"`
	Status       Status               `json:"status"`
	Breakdown    map[Category]float64 `json:"breakdown"`
	Weights      map[Category]float64 `json:"weights"`
	CalculatedAt time.Time            `json:"calculated_at"`
}

// NewScoreSnapshot builds a snapshot from a breakdown. The overall score is the
// sum of the breakdown values; status is derived from the fixed thresholds.
func NewScoreSnapshot(breakdown map[Category]float64, at time.Time) *ScoreSnapshot {
	total := 0.0
	for _, v := range breakdown {
		total += v
	}

	weights := make(map[Category]float64, len(CategoryWeights))
	for c, w := range CategoryWeights {
		weights[c] = w
	}

	return &ScoreSnapshot{
		ID:           uuid.New(),
		OverallScore: total,
		MaxScore:     MaxScore,
		Status:       StatusForScore(total),
		Breakdown:    breakdown,
		Weights:      weights,
		CalculatedAt: at,
	}
}

// Validate checks the snapshot invariants: the overall score matches the
// breakdown sum, each value is bounded by its category weight, and the status
// matches the score.
func (s *ScoreSnapshot) Validate() error {
	sum := 0.0
	for c, v := range s.Breakdown {
		if v < 0 || v > Weight(c)+epsilon {
			return ErrBreakdownOutOfRange
		}
		sum += v
	}
	if diff := s.OverallScore - sum; diff > epsilon || diff < -epsilon {
		return ErrScoreMismatch
	}
	if s.Status != StatusForScore(s.OverallScore) {
		return ErrStatusMismatch
	}
	return nil
}

const epsilon = 1e-6
