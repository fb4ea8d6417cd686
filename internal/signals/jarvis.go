package signals

import (
	"fmt"
	"strings"

	"github.com/greenbier/bestbets-engine/internal/contract"
	"github.com/greenbier/bestbets-engine/internal/models"
)

// JarvisInputs bundles the gematria-trigger and temporal-Z-scan inputs.
type JarvisInputs struct {
	TeamOrPlayerName string
	SacredNumberSets  [][]int // candidate sacred-number sets to match gematria against
	WinDates          []string // "YYYY-MM-DD" history for the temporal Z-scan
	GameDate          string
	MSRFRaw           float64 // unbounded internal MSRF input, clamped to JarvisMSRFComponentCap
}

// JarvisOutput carries the engine's seven mandatory fields: score,
// whether it's active, hit count, which triggers hit, reasons, fail
// reasons, and the inputs actually used.
type JarvisOutput struct {
	Score        float64
	Active       bool
	Hits         int
	TriggersHit  []string
	Reasons      []string
	FailReasons  []string
	InputsUsed   map[string]any
}

// Jarvis computes the Jarvis engine's score (weight 0.25 —
// contract.WeightJarvis): gematria triggers against a temporal Z-scan,
// plus an MSRF component bounded to JarvisMSRFComponentCap and never
// exposed as a separate post-base boost.
func Jarvis(in JarvisInputs) (models.SignalResult, JarvisOutput) {
	out := JarvisOutput{
		InputsUsed: map[string]any{
			"team_or_player": in.TeamOrPlayerName,
			"game_date":      in.GameDate,
			"win_dates_count": len(in.WinDates),
		},
	}

	if in.TeamOrPlayerName == "" {
		out.FailReasons = append(out.FailReasons, "no team/player name for gematria scan")
	}

	gematriaValue := gematriaValue(in.TeamOrPlayerName)
	for _, set := range in.SacredNumberSets {
		for _, n := range set {
			if n == gematriaValue {
				out.Hits++
				out.TriggersHit = append(out.TriggersHit, fmt.Sprintf("gematria=%d matches sacred set value %d", gematriaValue, n))
			}
		}
	}

	zHits := temporalZScan(in.WinDates, in.GameDate)
	out.Hits += zHits
	if zHits > 0 {
		out.TriggersHit = append(out.TriggersHit, fmt.Sprintf("temporal Z-scan: %d resonant win-date(s)", zHits))
	}

	msrf := contract.Clamp(in.MSRFRaw, 0, contract.JarvisMSRFComponentCap)
	out.InputsUsed["msrf_component"] = msrf

	score := contract.JarvisBaselineScore
	if out.Hits > 0 {
		score += float64(out.Hits) * 0.5
		out.Active = true
		out.Reasons = append(out.Reasons, fmt.Sprintf("%d trigger(s) hit", out.Hits))
	} else {
		out.Reasons = append(out.Reasons, "no triggers hit, baseline score")
	}
	score += msrf * 0.25 // MSRF folds into the score, never emitted separately
	score = contract.Clamp(score, contract.EngineScoreMin, contract.EngineScoreMax)
	out.Score = score

	status := models.StatusSuccess
	if !out.Active && len(out.FailReasons) > 0 {
		status = models.StatusFallback
	}

	sig := result("jarvis", score, contract.EngineScoreMin, contract.EngineScoreMax, out.Active, out.Reasons, internalProv(status))
	return sig, out
}

// gematriaValue sums the ordinal alphabet position of each letter —
// the "founder's-echo" style reduction used across the esoteric
// signals, applied here to player/team names for trigger matching.
func gematriaValue(name string) int {
	sum := 0
	for _, r := range strings.ToUpper(name) {
		if r >= 'A' && r <= 'Z' {
			sum += int(r-'A') + 1
		}
	}
	return sum
}

// temporalZScan counts how many historical win dates share a digit-sum
// residue with gameDate, a simplified stand-in for a full Z-scan.
func temporalZScan(winDates []string, gameDate string) int {
	if gameDate == "" {
		return 0
	}
	target := digitSum(strings.ReplaceAll(gameDate, "-", ""))
	hits := 0
	for _, wd := range winDates {
		if digitSum(strings.ReplaceAll(wd, "-", "")) == target {
			hits++
		}
	}
	return hits
}
