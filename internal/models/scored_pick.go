package models

// EngineScores bundles the four base-engine outputs for a Candidate.
type EngineScores struct {
	AI       float64 `json:"ai_score"`
	Research float64 `json:"research_score"`
	Esoteric float64 `json:"esoteric_score"`
	Jarvis   float64 `json:"jarvis_score"`
}

// EnginesAtOrAbove returns how many of the four engine scores are >=
// threshold — used by the Titanium rule (>=3 of 4 >= 8.0).
func (e EngineScores) EnginesAtOrAbove(threshold float64) int {
	n := 0
	for _, s := range []float64{e.AI, e.Research, e.Esoteric, e.Jarvis} {
		if s >= threshold {
			n++
		}
	}
	return n
}

// PostBaseAdjustments holds every additive term applied after BASE_4,
// each individually bounded at its point of application and each
// surfaced as its own output field — no hidden modifications are
// permitted.
type PostBaseAdjustments struct {
	Confluence            float64 `json:"confluence_boost"`
	MSRFExternal           float64 `json:"msrf_boost"`
	JasonSim               float64 `json:"jason_sim_boost"`
	SERPTotal              float64 `json:"serp_boost"`
	EnsembleAdjustment     float64 `json:"ensemble_adjustment"`
	LiveAdjustment         float64 `json:"live_adjustment"`
	HookPenalty            float64 `json:"hook_penalty"`
	ExpertConsensus        float64 `json:"expert_consensus_boost"`
	PropCorrelation        float64 `json:"prop_correlation_adjustment"`
	TotalsCalibration      float64 `json:"totals_calibration_adj"`
}

// ScoredPick is a Candidate plus every engine score, context modifier,
// post-base term, the final score, tier, and a full signal-provenance
// snapshot. Immutable once produced.
type ScoredPick struct {
	Candidate Candidate `json:"candidate"`

	// PickID is minted once per pick, at scoring time, and threaded
	// through both the persisted PredictionRecord and the normalized
	// API response so a grading join by pick_id actually lands on the
	// pick a caller saw.
	PickID string `json:"pick_id"`

	Engines         EngineScores        `json:"engines"`
	ContextModifier float64             `json:"context_modifier"`
	Adjustments     PostBaseAdjustments `json:"adjustments"`

	Base4Score  float64 `json:"base_4_score"`
	FinalScore  float64 `json:"final_score"`
	Reconciled  float64 `json:"reconciliation_delta"`
	Tier        string  `json:"tier"`

	ReasonsByEngine map[string][]string `json:"reasons_by_engine"`

	PerSignalProvenance map[string]Provenance `json:"per_signal_provenance"`
	IntegrationsUsed    []string              `json:"integrations_used"`
}
