package models

import "time"

// Outcome is the graded result filled in after a game settles.
type Outcome string

const (
	OutcomePending Outcome = "PENDING"
	OutcomeHit     Outcome = "HIT"
	OutcomeMiss    Outcome = "MISS"
	OutcomePush    Outcome = "PUSH"
)

// PredictionRecord is the persisted, append-only form of a ScoredPick,
// enriched with the fields needed to grade and to learn. Never mutated
// in place — the graded fields are filled via a read-modify-append
// workflow that writes a new outcome line keyed by PickID (see
// internal/persistence).
type PredictionRecord struct {
	SchemaVersion int    `json:"schema_version"`
	PickID        string `json:"pick_id"`
	DateET        string `json:"date_et"`
	Sport         string `json:"sport"`

	Selection string   `json:"selection"`
	Line      *float64 `json:"line,omitempty"`
	OddsAmerican int   `json:"odds_american"`

	PickType PickType `json:"pick_type"`
	StatTypeOrMarket string `json:"stat_type_or_market"`

	Engines     EngineScores        `json:"engines"`
	Adjustments PostBaseAdjustments `json:"adjustments"`
	ContextModifier float64         `json:"context_modifier"`
	FinalScore  float64             `json:"final_score"`
	Tier        string              `json:"tier"`

	// SignalContributions maps a signal name to the numeric value it
	// contributed at scoring time. The engine records the four engine
	// scores, the context modifier and the post-base terms here; the
	// individual signals inside each engine are not recorded.
	SignalContributions map[string]float64 `json:"signal_contributions"`

	CreatedAtUTC time.Time `json:"created_at_utc"`

	// Outcome fields, empty/zero until grading fills them.
	ActualOutcome Outcome    `json:"actual_outcome"`
	ErrorMagnitude *float64  `json:"error_magnitude,omitempty"`
	GradedAtUTC    *time.Time `json:"graded_at_utc,omitempty"`
}

// OutcomeRecord is the append-only row written by the grading job,
// joined to its PredictionRecord at read time by PickID. Kept separate
// from PredictionRecord so grading never rewrites an existing line in
// the append-only file (see internal/persistence).
type OutcomeRecord struct {
	SchemaVersion  int        `json:"schema_version"`
	PickID         string     `json:"pick_id"`
	ActualOutcome  Outcome    `json:"actual_outcome"`
	ErrorMagnitude *float64   `json:"error_magnitude,omitempty"`
	GradedAtUTC    time.Time  `json:"graded_at_utc"`
}

// Joined merges o into a copy of p, simulating the read-time join
// between the prediction log and the outcome log.
func (o OutcomeRecord) Joined(p PredictionRecord) PredictionRecord {
	p.ActualOutcome = o.ActualOutcome
	p.ErrorMagnitude = o.ErrorMagnitude
	gradedAt := o.GradedAtUTC
	p.GradedAtUTC = &gradedAt
	return p
}
