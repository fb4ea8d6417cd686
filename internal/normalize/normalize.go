// Package normalize implements the pick normalizer: assembling
// the fixed public output contract from a ScoredPick, with no UTC
// timestamps, telemetry, or internal provenance leaking into the
// response payload.
package normalize

import (
	"fmt"

	"github.com/greenbier/bestbets-engine/internal/models"
	"github.com/greenbier/bestbets-engine/internal/timeauthority"
)

// PublicPick is the normalized, user-facing shape of one ScoredPick.
// Every field here is safe to serialize directly to an API consumer —
// no UTC timestamps, no integration names — field order follows the
// external-interface contract's stated order of importance.
type PublicPick struct {
	PickID            string  `json:"pick_id"`
	Sport             string  `json:"sport"`
	Matchup           string  `json:"matchup"`
	Selection         string  `json:"selection"`
	SelectionHomeAway string  `json:"selection_home_away,omitempty"`
	Market            string  `json:"market"`
	PickType          string  `json:"pick_type"`
	Line              *float64 `json:"line,omitempty"`
	OddsAmerican      int      `json:"odds_american"`

	AIScore       float64 `json:"ai_score"`
	ResearchScore float64 `json:"research_score"`
	EsotericScore float64 `json:"esoteric_score"`
	JarvisScore   float64 `json:"jarvis_score"`
	Base4Score    float64 `json:"base_4_score"`

	ContextModifier float64 `json:"context_modifier"`

	ConfluenceBoost      float64 `json:"confluence_boost"`
	MSRFBoost            float64 `json:"msrf_boost"`
	JasonSimBoost        float64 `json:"jason_sim_boost"`
	SERPBoost            float64 `json:"serp_boost"`
	EnsembleAdjustment   float64 `json:"ensemble_adjustment"`
	LiveAdjustment       float64 `json:"live_adjustment"`
	HookPenalty          float64 `json:"hook_penalty"`
	ExpertConsensusBoost float64 `json:"expert_consensus_boost"`
	PropCorrelationAdj   float64 `json:"prop_correlation_adjustment"`
	TotalsCalibrationAdj float64 `json:"totals_calibration_adj"`

	FinalScore float64 `json:"final_score"`
	Tier       string  `json:"tier"`

	ReasonsByEngine map[string][]string           `json:"reasons_by_engine"`
	PerSignalProvenance map[string]models.Provenance `json:"per_signal_provenance"`

	GameDateET string `json:"game_date_et"`
	GameTimeET string `json:"game_time_et"`
	HomeTeam   string `json:"home_team"`
	AwayTeam   string `json:"away_team"`
	PlayerName string `json:"player_name,omitempty"`
}

// PickGroup is one market kind's slice of picks plus its count, per
// the external-interface contract's {count, picks} shape.
type PickGroup struct {
	Count int           `json:"count"`
	Picks []PublicPick `json:"picks"`
}

// Pick assembles one PublicPick from a ScoredPick. pick_id is the one
// minted for this pick at scoring time (models.ScoredPick.PickID),
// threaded through here unchanged so it matches the persisted
// PredictionRecord a later grading run joins against.
func Pick(p models.ScoredPick) PublicPick {
	c := p.Candidate

	return PublicPick{
		PickID:            p.PickID,
		Sport:             c.Sport,
		Matchup:           fmt.Sprintf("%s @ %s", c.AwayTeam, c.HomeTeam),
		Selection:         c.Selection,
		SelectionHomeAway: c.SelectionHomeAway,
		Market:            marketLabel(c),
		PickType:          string(c.PickType),
		Line:              c.Line,
		OddsAmerican:      c.RepresentativeOddsAmerican(),

		AIScore:       p.Engines.AI,
		ResearchScore: p.Engines.Research,
		EsotericScore: p.Engines.Esoteric,
		JarvisScore:   p.Engines.Jarvis,
		Base4Score:    p.Base4Score,

		ContextModifier: p.ContextModifier,

		ConfluenceBoost:      p.Adjustments.Confluence,
		MSRFBoost:            p.Adjustments.MSRFExternal,
		JasonSimBoost:        p.Adjustments.JasonSim,
		SERPBoost:            p.Adjustments.SERPTotal,
		EnsembleAdjustment:   p.Adjustments.EnsembleAdjustment,
		LiveAdjustment:       p.Adjustments.LiveAdjustment,
		HookPenalty:          p.Adjustments.HookPenalty,
		ExpertConsensusBoost: p.Adjustments.ExpertConsensus,
		PropCorrelationAdj:   p.Adjustments.PropCorrelation,
		TotalsCalibrationAdj: p.Adjustments.TotalsCalibration,

		FinalScore: p.FinalScore,
		Tier:       p.Tier,

		ReasonsByEngine:     p.ReasonsByEngine,
		PerSignalProvenance: p.PerSignalProvenance,

		GameDateET: timeauthority.DateET(c.GameStartUTC),
		GameTimeET: timeauthority.FormatET(c.GameStartUTC),
		HomeTeam:   c.HomeTeam,
		AwayTeam:   c.AwayTeam,
		PlayerName: c.PlayerName,
	}
}

// marketLabel renders a human market label: stat type for props, the
// pick-type tag otherwise.
func marketLabel(c models.Candidate) string {
	if c.PickType == models.PickProp {
		return c.StatType
	}
	return string(c.PickType)
}

// Picks normalizes a whole slice. An empty input returns an empty
// slice, never a substituted demo list — correctness here means no
// fallback content is ever injected silently.
func Picks(scored []models.ScoredPick) []PublicPick {
	out := make([]PublicPick, 0, len(scored))
	for _, p := range scored {
		out = append(out, Pick(p))
	}
	return out
}

// Split partitions scored picks into game-level and prop PickGroups,
// per the external-interface contract's separate game_picks/props
// shape.
func Split(scored []models.ScoredPick) (gamePicks, props PickGroup) {
	for _, p := range scored {
		pick := Pick(p)
		if p.Candidate.PickType.IsGameMarket() {
			gamePicks.Picks = append(gamePicks.Picks, pick)
		} else {
			props.Picks = append(props.Picks, pick)
		}
	}
	gamePicks.Count = len(gamePicks.Picks)
	props.Count = len(props.Picks)
	return gamePicks, props
}
