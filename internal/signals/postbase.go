package signals

import (
	"math"

	"github.com/greenbier/bestbets-engine/internal/contract"
	"github.com/greenbier/bestbets-engine/internal/models"
)

// PostBaseInputs bundles everything needed to compute the nine
// additive terms applied after BASE_4 aggregation. Each term is
// bounded at the point of application here, not merely at the final
// aggregator clamp.
type PostBaseInputs struct {
	ResearchScore float64
	EsotericScore float64

	JasonSimRaw float64 // Monte-Carlo simulation edge, unbounded input

	SERPSubBoosts [5]float64 // one per engine family, summed then capped

	EnsembleSignal int // -1, 0, or +1: direction of the discrete ensemble step

	GameStatus     models.GameStatus
	LiveMomentum   float64 // -1..1

	HookDisciplineViolations int // count of "hook" line violations detected

	ExpertConsensusRaw float64 // unbounded input; shadow-mode by default
	ExpertConsensusShadowMode bool

	PropCorrelationRaw float64
	IsProp             bool

	TotalsCalibrationRaw float64
	IsTotal              bool
}

// Compute returns the bounded PostBaseAdjustments plus the per-term
// reasons, ready to feed the aggregator.
func Compute(in PostBaseInputs) (models.PostBaseAdjustments, []string) {
	var reasons []string
	var adj models.PostBaseAdjustments

	confluence := 0.0
	if in.ResearchScore > 0 || in.EsotericScore > 0 {
		confluence = (in.ResearchScore + in.EsotericScore) / 20.0 // normalize 0..1-ish
	}
	if in.ResearchScore >= 8.0 && in.EsotericScore >= 8.0 {
		confluence += contract.HarmonicConvergenceBonus
		reasons = append(reasons, "harmonic convergence: research and esoteric both >= 8.0")
	}
	adj.Confluence = contract.Clamp(confluence, 0, contract.ConfluenceBoostCap)

	// msrf_external is always locked to 0 — MSRF lives inside Jarvis.
	adj.MSRFExternal = contract.MSRFExternalLocked

	adj.JasonSim = contract.Clamp(in.JasonSimRaw, 0, contract.JasonSimBoostCap)
	if adj.JasonSim > 0 {
		reasons = append(reasons, "Jason Monte-Carlo simulation edge detected")
	}

	serpSum := 0.0
	for _, s := range in.SERPSubBoosts {
		serpSum += s
	}
	adj.SERPTotal = contract.Clamp(serpSum, 0, contract.SERPBoostCap)

	adj.EnsembleAdjustment = float64(sign(in.EnsembleSignal)) * contract.EnsembleAdjustmentStep
	if in.EnsembleSignal != 0 {
		reasons = append(reasons, "discrete ensemble adjustment applied")
	}

	if in.GameStatus == models.GameLive {
		adj.LiveAdjustment = contract.Clamp(in.LiveMomentum*0.3, -0.5, 0.5)
		reasons = append(reasons, "live in-play adjustment")
	}

	if in.HookDisciplineViolations > 0 {
		adj.HookPenalty = math.Max(contract.HookPenaltyCap, -0.1*float64(in.HookDisciplineViolations))
		reasons = append(reasons, "hook-discipline penalty applied")
	}

	if !in.ExpertConsensusShadowMode {
		adj.ExpertConsensus = contract.Clamp(in.ExpertConsensusRaw, 0, contract.ExpertConsensusBoostCap)
		if adj.ExpertConsensus > 0 {
			reasons = append(reasons, "expert consensus boost applied")
		}
	} else if in.ExpertConsensusRaw != 0 {
		reasons = append(reasons, "expert consensus computed in shadow mode, zero scoring impact")
	}

	if in.IsProp {
		adj.PropCorrelation = contract.Clamp(in.PropCorrelationRaw, -contract.PropCorrelationBoostCap, contract.PropCorrelationBoostCap)
	}

	if in.IsTotal {
		adj.TotalsCalibration = contract.Clamp(in.TotalsCalibrationRaw, -contract.TotalsCalibrationBoostCap, contract.TotalsCalibrationBoostCap)
	}

	return adj, reasons
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}
