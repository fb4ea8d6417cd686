package signals

import (
	"fmt"

	"github.com/greenbier/bestbets-engine/internal/contract"
	"github.com/greenbier/bestbets-engine/internal/models"
)

// ContextInputs bundles every input to the bounded context modifier.
// Not a weighted engine — a delta applied after the four engines are
// aggregated, clamped to +/- contract.ContextModifierCap.
type ContextInputs struct {
	PaceDeltaVsAvg       float64 // possessions/game above(+)/below(-) league average, normalized -1..1
	DefenseRankPercentile float64 // 0..1, 1 = best defense faced
	InjuryUsageVacuum    float64 // 0..1, fraction of usage opened up by injuries
	OfficialsTendency    float64 // -1..1, favors over(+)/under(-)
	VenueSurfaceAdj      float64 // small fixed deltas from surface/altitude
	TravelFatigue        float64 // 0..1, higher = more fatigued
	GameStatus           models.GameStatus
	LiveScoreDelta       int // home - away, only meaningful when LIVE
}

// Context computes the bounded context-modifier delta.
func Context(in ContextInputs) models.SignalResult {
	var reasons []string
	delta := 0.0

	delta += in.PaceDeltaVsAvg * 0.1
	if in.PaceDeltaVsAvg != 0 {
		reasons = append(reasons, fmt.Sprintf("pace delta %.2f", in.PaceDeltaVsAvg))
	}

	delta += (in.DefenseRankPercentile - 0.5) * 0.2
	delta += in.InjuryUsageVacuum * 0.3
	if in.InjuryUsageVacuum > 0 {
		reasons = append(reasons, fmt.Sprintf("usage vacuum from injuries %.2f", in.InjuryUsageVacuum))
	}

	delta += in.OfficialsTendency * 0.1
	delta += in.VenueSurfaceAdj
	delta -= in.TravelFatigue * 0.15
	if in.TravelFatigue > 0 {
		reasons = append(reasons, fmt.Sprintf("travel fatigue %.2f", in.TravelFatigue))
	}

	if in.GameStatus == models.GameLive {
		liveAdj := contract.Clamp(float64(in.LiveScoreDelta)*0.01, -0.1, 0.1)
		delta += liveAdj
		reasons = append(reasons, fmt.Sprintf("live in-game score delta %d", in.LiveScoreDelta))
	}

	clamped := contract.Clamp(delta, -contract.ContextModifierCap, contract.ContextModifierCap)
	return result("context_modifier", clamped, -contract.ContextModifierCap, contract.ContextModifierCap, clamped != 0, reasons, internalProv(models.StatusSuccess))
}
