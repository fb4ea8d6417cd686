package aggregator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/greenbier/bestbets-engine/internal/contract"
	"github.com/greenbier/bestbets-engine/internal/models"
)

func TestAggregate_Base4IsWeightedAverageOfEngines(t *testing.T) {
	engines := models.EngineScores{AI: 8, Research: 6, Esoteric: 4, Jarvis: 7}
	base4, _ := Aggregate(engines, 0, models.PostBaseAdjustments{})

	want := 8*contract.WeightAI + 6*contract.WeightResearch + 4*contract.WeightEsoteric + 7*contract.WeightJarvis
	assert.InDelta(t, want, base4, 1e-9)
}

func TestAggregate_ClampsOutOfRangeEngineScores(t *testing.T) {
	engines := models.EngineScores{AI: 99, Research: -5, Esoteric: 4, Jarvis: 4}
	base4, _ := Aggregate(engines, 0, models.PostBaseAdjustments{})

	want := contract.EngineScoreMax*contract.WeightAI + contract.EngineScoreMin*contract.WeightResearch +
		4*contract.WeightEsoteric + 4*contract.WeightJarvis
	assert.InDelta(t, want, base4, 1e-9, "an out-of-range engine score must be clamped before weighting")
}

func TestAggregate_FinalNeverExceedsBounds(t *testing.T) {
	engines := models.EngineScores{AI: 10, Research: 10, Esoteric: 10, Jarvis: 10}
	adj := models.PostBaseAdjustments{Confluence: 1.0, JasonSim: 0.5, SERPTotal: 0.75, ExpertConsensus: 0.4, EnsembleAdjustment: 1}
	_, final := Aggregate(engines, contract.ContextModifierCap, adj)

	assert.LessOrEqual(t, final, contract.FinalScoreMax)
	assert.GreaterOrEqual(t, final, contract.FinalScoreMin)
}

func TestAggregate_BoostsCappedBeforeAddition(t *testing.T) {
	engines := models.EngineScores{AI: 5, Research: 5, Esoteric: 5, Jarvis: 5}
	adj := models.PostBaseAdjustments{Confluence: 1.0, JasonSim: 0.5, SERPTotal: 0.75}
	_, finalUncapped := Aggregate(engines, 0, adj)

	// boostsRaw = 2.25, capped to contract.TotalBoostCap (2.0)
	base4 := 5.0
	want := contract.Clamp(base4+contract.TotalBoostCap, contract.FinalScoreMin, contract.FinalScoreMax)
	assert.InDelta(t, want, finalUncapped, 1e-9)
}

func TestAggregate_HookPenaltyIsNonPositive(t *testing.T) {
	engines := models.EngineScores{AI: 5, Research: 5, Esoteric: 5, Jarvis: 5}
	adj := models.PostBaseAdjustments{HookPenalty: 5} // a positive input must never add
	_, final := Aggregate(engines, 0, adj)
	assert.InDelta(t, 5.0, final, 1e-9)
}

func TestAggregate_HookPenaltyFlooredAtCap(t *testing.T) {
	engines := models.EngineScores{AI: 5, Research: 5, Esoteric: 5, Jarvis: 5}
	adj := models.PostBaseAdjustments{HookPenalty: -99}
	_, final := Aggregate(engines, 0, adj)
	assert.InDelta(t, 5.0+contract.HookPenaltyCap, final, 1e-9)
}

func TestAggregate_EnsembleAdjustmentIsDiscreteStep(t *testing.T) {
	engines := models.EngineScores{AI: 5, Research: 5, Esoteric: 5, Jarvis: 5}
	_, finalPos := Aggregate(engines, 0, models.PostBaseAdjustments{EnsembleAdjustment: 0.01})
	_, finalBig := Aggregate(engines, 0, models.PostBaseAdjustments{EnsembleAdjustment: 99})
	assert.InDelta(t, finalPos, finalBig, 1e-9, "any positive ensemble input must snap to the same fixed step")
}

func TestReconcile_ZeroDeltaWhenStoredMatchesFormula(t *testing.T) {
	engines := models.EngineScores{AI: 7, Research: 7, Esoteric: 7, Jarvis: 7}
	_, final := Aggregate(engines, 0.1, models.PostBaseAdjustments{})
	delta := Reconcile(engines, 0.1, models.PostBaseAdjustments{}, final)
	assert.InDelta(t, 0.0, delta, 1e-9)
}

func TestReconcile_NonZeroDeltaWhenStoredDiffers(t *testing.T) {
	engines := models.EngineScores{AI: 7, Research: 7, Esoteric: 7, Jarvis: 7}
	delta := Reconcile(engines, 0, models.PostBaseAdjustments{}, 0)
	assert.Greater(t, delta, contract.ReconciliationTolerance)
}
