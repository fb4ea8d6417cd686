package signals

import (
	"fmt"

	"github.com/greenbier/bestbets-engine/internal/contract"
	"github.com/greenbier/bestbets-engine/internal/models"
)

// SharpStrength is the Playbook-sourced sharp-money signal's strength
// classification. NONE is the only legal value when the underlying
// call did not succeed.
type SharpStrength string

const (
	SharpNone     SharpStrength = "NONE"
	SharpWeak     SharpStrength = "WEAK"
	SharpModerate SharpStrength = "MODERATE"
	SharpStrong   SharpStrength = "STRONG"
)

// ResearchInputs bundles the strictly-separated sharp and line inputs
// plus the additional research signals. Sharp fields must be derived
// only from Playbook data; Line fields must be derived only from
// Odds-API data — callers must never cross-populate these.
type ResearchInputs struct {
	// Playbook-sourced (sharp money).
	SharpStatus   models.SignalStatus
	TicketPct     float64 // % of tickets on this side
	MoneyPct      float64 // % of money on this side

	// Odds-API-sourced (line variance).
	LineStatus models.SignalStatus
	MaxLine    float64
	MinLine    float64

	// Additional signals.
	PublicFadeEligible bool
	SituationalSpot    bool
	ESPNAgrees         *bool // nil = no cross-validation data
	RLMThresholdPct    float64
	LineMovedAgainstPublic bool
}

// sharpSignal computes the Playbook-only sharp-money boost. Invariant:
// if status != SUCCESS the strength must be NONE and no "Sharp"-
// prefixed reason may appear.
func sharpSignal(in ResearchInputs) (strength SharpStrength, boost float64, reasons []string) {
	if in.SharpStatus != models.StatusSuccess {
		return SharpNone, 0.0, nil
	}
	divergence := in.MoneyPct - in.TicketPct
	switch {
	case divergence >= 20:
		return SharpStrong, 1.5, []string{fmt.Sprintf("Sharp money divergence %.1f pts (strong)", divergence)}
	case divergence >= 10:
		return SharpModerate, 0.9, []string{fmt.Sprintf("Sharp money divergence %.1f pts (moderate)", divergence)}
	case divergence >= 5:
		return SharpWeak, 0.4, []string{fmt.Sprintf("Sharp money divergence %.1f pts (weak)", divergence)}
	default:
		return SharpNone, 0.0, nil
	}
}

// lineSignal computes the Odds-API-only line-variance boost.
func lineSignal(in ResearchInputs) (boost float64, reasons []string) {
	if in.LineStatus != models.StatusSuccess {
		return 0.0, nil
	}
	spread := in.MaxLine - in.MinLine
	if spread <= 0 {
		return 0.0, nil
	}
	boost = contract.Clamp(spread*2.0, 0, 1.5)
	return boost, []string{fmt.Sprintf("Cross-book line spread %.2f", spread)}
}

// SharpSignalResult exposes the Playbook-only sharp signal on its own,
// with its own provenance, so callers and tests can verify the
// separation invariant independent of the combined engine score.
func SharpSignalResult(in ResearchInputs) models.SignalResult {
	strength, boost, reasons := sharpSignal(in)
	status := in.SharpStatus
	if status == "" {
		status = models.StatusNoData
	}
	reasons = append([]string{fmt.Sprintf("sharp strength: %s", strength)}, reasons...)
	return result("research.sharp", boost, 0, 1.5, strength != SharpNone, reasons,
		externalProv("playbook", status, false))
}

// LineSignalResult exposes the Odds-API-only line-variance signal on
// its own, with its own provenance.
func LineSignalResult(in ResearchInputs) models.SignalResult {
	boost, reasons := lineSignal(in)
	status := in.LineStatus
	if status == "" {
		status = models.StatusNoData
	}
	return result("research.line", boost, 0, 1.5, boost > 0, reasons,
		externalProv("odds_api", status, false))
}

// Research computes the Research engine's score (weight 0.35 —
// contract.WeightResearch): a clamped weighted sum of the sharp, line,
// public-fade, situational, ESPN-cross-validation, and RLM components.
func Research(in ResearchInputs) models.SignalResult {
	var reasons []string
	total := 0.0

	_, sharpBoost, sharpReasons := sharpSignal(in)
	total += sharpBoost
	reasons = append(reasons, sharpReasons...)

	lineBoost, lineReasons := lineSignal(in)
	total += lineBoost
	reasons = append(reasons, lineReasons...)

	if in.PublicFadeEligible && in.MoneyPct < in.TicketPct {
		total += 0.6
		reasons = append(reasons, "public-fade: money% trails ticket%")
	}

	if in.SituationalSpot {
		total += 0.4
		reasons = append(reasons, "situational spot matched")
	}

	if in.ESPNAgrees != nil {
		if *in.ESPNAgrees {
			total += 0.3
			reasons = append(reasons, "ESPN cross-validation agrees")
		} else {
			total -= 0.2
			reasons = append(reasons, "ESPN cross-validation disagrees")
		}
	}

	if in.LineMovedAgainstPublic && in.RLMThresholdPct > 0 {
		total += 0.5
		reasons = append(reasons, "reverse line movement against public side")
	}

	status := models.StatusSuccess
	if in.SharpStatus != models.StatusSuccess && in.LineStatus != models.StatusSuccess {
		status = models.StatusNoData
	}

	triggered := total > 0
	base := contract.AIBaselineScore // neutral center; boosts shift around it
	score := base + total

	return result("research", score, contract.EngineScoreMin, contract.EngineScoreMax, triggered, reasons,
		models.Provenance{SourceAPI: "playbook+odds_api", SourceType: models.SourceExternal, Status: status})
}
