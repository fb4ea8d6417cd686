// Package aggregator implements the score aggregator: the single
// pure function that turns four engine scores, a context modifier, and
// the post-base additive terms into a final score, with every cap
// enforced at its point of application and a reconciliation check that
// the formula and the stored final score agree within tolerance.
package aggregator

import (
	"github.com/greenbier/bestbets-engine/internal/contract"
	"github.com/greenbier/bestbets-engine/internal/models"
)

// Aggregate computes BASE_4 and the final clamped score from engine
// scores, the context modifier, and every post-base term. Every input
// is clamped to its documented range before use, so a malformed
// upstream value can never exceed its contract bound even transiently.
func Aggregate(engines models.EngineScores, contextModifier float64, adj models.PostBaseAdjustments) (base4, final float64) {
	ai := contract.Clamp(engines.AI, contract.EngineScoreMin, contract.EngineScoreMax)
	research := contract.Clamp(engines.Research, contract.EngineScoreMin, contract.EngineScoreMax)
	esoteric := contract.Clamp(engines.Esoteric, contract.EngineScoreMin, contract.EngineScoreMax)
	jarvis := contract.Clamp(engines.Jarvis, contract.EngineScoreMin, contract.EngineScoreMax)

	base4 = ai*contract.WeightAI + research*contract.WeightResearch +
		esoteric*contract.WeightEsoteric + jarvis*contract.WeightJarvis

	ctx := contract.Clamp(contextModifier, -contract.ContextModifierCap, contract.ContextModifierCap)

	confluence := contract.Clamp(adj.Confluence, 0, contract.ConfluenceBoostCap)
	msrfExternal := contract.MSRFExternalLocked
	jasonSim := contract.Clamp(adj.JasonSim, 0, contract.JasonSimBoostCap)
	serpTotal := contract.Clamp(adj.SERPTotal, 0, contract.SERPBoostCap)

	boostsRaw := confluence + msrfExternal + jasonSim + serpTotal
	boostsCapped := boostsRaw
	if boostsCapped > contract.TotalBoostCap {
		boostsCapped = contract.TotalBoostCap
	}

	ensembleAdj := clampEnsemble(adj.EnsembleAdjustment)
	liveAdj := contract.Clamp(adj.LiveAdjustment, -0.5, 0.5)
	totalsCalibration := contract.Clamp(adj.TotalsCalibration, -contract.TotalsCalibrationBoostCap, contract.TotalsCalibrationBoostCap)
	hookPenalty := adj.HookPenalty
	if hookPenalty > 0 {
		hookPenalty = 0
	}
	if hookPenalty < contract.HookPenaltyCap {
		hookPenalty = contract.HookPenaltyCap
	}
	expertConsensus := contract.Clamp(adj.ExpertConsensus, 0, contract.ExpertConsensusBoostCap)
	propCorr := contract.Clamp(adj.PropCorrelation, -contract.PropCorrelationBoostCap, contract.PropCorrelationBoostCap)

	raw := base4 + ctx + boostsCapped + ensembleAdj + liveAdj + totalsCalibration +
		hookPenalty + expertConsensus + propCorr

	final = contract.Clamp(raw, contract.FinalScoreMin, contract.FinalScoreMax)
	return base4, final
}

// clampEnsemble snaps to the discrete +/- step rather than clamping
// continuously — the ensemble adjustment is a step function, never a
// range (contract.EnsembleAdjustmentStep).
func clampEnsemble(v float64) float64 {
	switch {
	case v > 0:
		return contract.EnsembleAdjustmentStep
	case v < 0:
		return -contract.EnsembleAdjustmentStep
	default:
		return 0
	}
}

// Reconcile recomputes final from (engines, contextModifier, adj) and
// returns the absolute delta against storedFinal. Callers compare this
// against contract.ReconciliationTolerance.
func Reconcile(engines models.EngineScores, contextModifier float64, adj models.PostBaseAdjustments, storedFinal float64) float64 {
	_, recomputed := Aggregate(engines, contextModifier, adj)
	delta := recomputed - storedFinal
	if delta < 0 {
		delta = -delta
	}
	return delta
}
