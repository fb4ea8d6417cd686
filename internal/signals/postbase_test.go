package signals

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/greenbier/bestbets-engine/internal/contract"
	"github.com/greenbier/bestbets-engine/internal/models"
)

func TestCompute_ExpertConsensusShadowModeHasZeroImpact(t *testing.T) {
	adj, reasons := Compute(PostBaseInputs{ExpertConsensusRaw: 5, ExpertConsensusShadowMode: true})
	assert.Equal(t, 0.0, adj.ExpertConsensus)
	assert.Contains(t, reasons, "expert consensus computed in shadow mode, zero scoring impact")
}

func TestCompute_ExpertConsensusActiveModeApplies(t *testing.T) {
	adj, _ := Compute(PostBaseInputs{ExpertConsensusRaw: 5, ExpertConsensusShadowMode: false})
	assert.Equal(t, contract.ExpertConsensusBoostCap, adj.ExpertConsensus)
}

func TestCompute_MSRFExternalAlwaysLocked(t *testing.T) {
	adj, _ := Compute(PostBaseInputs{})
	assert.Equal(t, contract.MSRFExternalLocked, adj.MSRFExternal)
}

func TestCompute_HarmonicConvergenceBonusRequiresBothEngines(t *testing.T) {
	low, _ := Compute(PostBaseInputs{ResearchScore: 8.0, EsotericScore: 3.0})
	high, _ := Compute(PostBaseInputs{ResearchScore: 8.0, EsotericScore: 8.0})
	assert.Less(t, low.Confluence, high.Confluence)
}

func TestCompute_PropCorrelationOnlyWhenIsProp(t *testing.T) {
	gameBet, _ := Compute(PostBaseInputs{PropCorrelationRaw: 0.2, IsProp: false})
	prop, _ := Compute(PostBaseInputs{PropCorrelationRaw: 0.2, IsProp: true})
	assert.Equal(t, 0.0, gameBet.PropCorrelation)
	assert.Equal(t, 0.2, prop.PropCorrelation)
}

func TestCompute_TotalsCalibrationOnlyWhenIsTotal(t *testing.T) {
	notTotal, _ := Compute(PostBaseInputs{TotalsCalibrationRaw: 0.2, IsTotal: false})
	total, _ := Compute(PostBaseInputs{TotalsCalibrationRaw: 0.2, IsTotal: true})
	assert.Equal(t, 0.0, notTotal.TotalsCalibration)
	assert.Equal(t, 0.2, total.TotalsCalibration)
}

func TestCompute_LiveAdjustmentOnlyWhenLive(t *testing.T) {
	scheduled, _ := Compute(PostBaseInputs{GameStatus: models.GameScheduled, LiveMomentum: 1})
	live, _ := Compute(PostBaseInputs{GameStatus: models.GameLive, LiveMomentum: 1})
	assert.Equal(t, 0.0, scheduled.LiveAdjustment)
	assert.Greater(t, live.LiveAdjustment, 0.0)
}

func TestCompute_EnsembleAdjustmentIsDiscreteSign(t *testing.T) {
	pos, _ := Compute(PostBaseInputs{EnsembleSignal: 5})
	neg, _ := Compute(PostBaseInputs{EnsembleSignal: -5})
	zero, _ := Compute(PostBaseInputs{EnsembleSignal: 0})
	assert.Equal(t, contract.EnsembleAdjustmentStep, pos.EnsembleAdjustment)
	assert.Equal(t, -contract.EnsembleAdjustmentStep, neg.EnsembleAdjustment)
	assert.Equal(t, 0.0, zero.EnsembleAdjustment)
}

func TestCompute_HookPenaltyNeverExceedsFloor(t *testing.T) {
	adj, _ := Compute(PostBaseInputs{HookDisciplineViolations: 100})
	assert.Equal(t, contract.HookPenaltyCap, adj.HookPenalty)
}

func TestSign(t *testing.T) {
	assert.Equal(t, 1, sign(5))
	assert.Equal(t, -1, sign(-5))
	assert.Equal(t, 0, sign(0))
}
