package signals

import (
	"github.com/greenbier/bestbets-engine/internal/contract"
	"github.com/greenbier/bestbets-engine/internal/models"
)

// AIInputs bundles everything the AI engine needs for one candidate.
// ModelWeightsExist signals whether a trained LSTM-style model is
// available for this (sport, stat) pair; when false the heuristic
// fallback runs instead and the fallback reason is recorded.
type AIInputs struct {
	IsProp             bool
	ModelWeightsExist  bool
	ModelProjection    float64 // only meaningful when ModelWeightsExist
	RecentGameAverages []float64
	Line               *float64
}

// AI computes the AI engine's score (weight 0.25 — contract.WeightAI).
// Props prefer an LSTM-style projection when weights exist, otherwise
// a recent-form heuristic. Game bets prefer an ensemble predictor,
// otherwise a neutral heuristic. Every fallback path records why.
func AI(in AIInputs) models.SignalResult {
	reasons := []string{}

	if in.ModelWeightsExist {
		reasons = append(reasons, "model weights present, using trained projection")
		return result("ai", in.ModelProjection, contract.EngineScoreMin, contract.EngineScoreMax, true, reasons, internalProv(models.StatusSuccess))
	}

	if in.IsProp {
		if len(in.RecentGameAverages) == 0 {
			reasons = append(reasons, "no model weights and no recent games, using neutral baseline")
			return result("ai", contract.AIBaselineScore, contract.EngineScoreMin, contract.EngineScoreMax, false, reasons, internalProv(models.StatusFallback))
		}
		avg := mean(in.RecentGameAverages)
		score := contract.AIBaselineScore
		if in.Line != nil && *in.Line > 0 {
			// Scale the baseline by how far recent form sits from the
			// posted line, heuristic not model-backed.
			ratio := avg / *in.Line
			score = contract.AIBaselineScore + (ratio-1.0)*5.0
		}
		reasons = append(reasons, "no model weights, using recent-form heuristic")
		return result("ai", score, contract.EngineScoreMin, contract.EngineScoreMax, true, reasons, internalProv(models.StatusFallback))
	}

	reasons = append(reasons, "no ensemble predictor available, using neutral baseline")
	return result("ai", contract.AIBaselineScore, contract.EngineScoreMin, contract.EngineScoreMax, false, reasons, internalProv(models.StatusFallback))
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
