package signals

import (
	"github.com/greenbier/bestbets-engine/internal/contract"
	"github.com/greenbier/bestbets-engine/internal/models"
)

// EsotericInputs bundles both the GLITCH and Phase-8 sub-aggregates.
type EsotericInputs struct {
	Glitch  GlitchInputs
	Phase8  Phase8Inputs
}

// Esoteric computes the Esoteric engine's score (weight 0.15 —
// contract.WeightEsoteric) as the average of its GLITCH aggregate and
// Phase-8 micro-signal aggregate, each independently clamped before
// combination.
func Esoteric(in EsotericInputs) models.SignalResult {
	glitch := Glitch(in.Glitch)
	phase8 := Phase8(in.Phase8)

	score := (glitch.Value + phase8.Value) / 2.0
	reasons := append(append([]string{}, glitch.Reasons...), phase8.Reasons...)

	status := models.StatusSuccess
	if glitch.Provenance.Status == models.StatusNoData && phase8.Provenance.Status == models.StatusNoData {
		status = models.StatusNoData
	}

	return result("esoteric", score, contract.EngineScoreMin, contract.EngineScoreMax,
		glitch.Triggered || phase8.Triggered, reasons, internalProv(status))
}
