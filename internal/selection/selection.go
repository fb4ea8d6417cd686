// Package selection implements the selection/tiering component:
// ET-day filtering, the minimum display-score floor, contradiction and
// market-side deduplication, tier assignment, and final ordering.
package selection

import (
	"sort"
	"time"

	"github.com/greenbier/bestbets-engine/internal/contract"
	"github.com/greenbier/bestbets-engine/internal/models"
	"github.com/greenbier/bestbets-engine/internal/timeauthority"
)

// FilterByDay keeps only picks whose game start falls within the
// half-open ET window [start, end).
func FilterByDay(picks []models.ScoredPick, start, end time.Time) []models.ScoredPick {
	out := make([]models.ScoredPick, 0, len(picks))
	for _, p := range picks {
		if timeauthority.InWindow(p.Candidate.GameStartUTC, start, end) {
			out = append(out, p)
		}
	}
	return out
}

// FilterByMinScore drops any pick below contract.MinDisplayScore.
func FilterByMinScore(picks []models.ScoredPick) []models.ScoredPick {
	out := make([]models.ScoredPick, 0, len(picks))
	for _, p := range picks {
		if p.FinalScore >= contract.MinDisplayScore {
			out = append(out, p)
		}
	}
	return out
}

func marketKey(c models.Candidate) string {
	return c.HomeTeam + "|" + c.AwayTeam + "|" + c.Target()
}

// Dedup keeps at most one pick per (event, market, target): when two
// candidates collide on the same market (e.g. opposite sides of the
// same spread), the higher-scoring one wins.
func Dedup(picks []models.ScoredPick) []models.ScoredPick {
	best := make(map[string]models.ScoredPick)
	order := make([]string, 0, len(picks))
	for _, p := range picks {
		key := marketKey(p.Candidate)
		existing, ok := best[key]
		if !ok {
			best[key] = p
			order = append(order, key)
			continue
		}
		if p.FinalScore > existing.FinalScore {
			best[key] = p
		}
	}
	out := make([]models.ScoredPick, 0, len(order))
	for _, key := range order {
		out = append(out, best[key])
	}
	return out
}

// Tier assigns the tier label to one pick based on its engine scores
// and final score, applying the rules in priority order: Titanium,
// Gold-Star, Silver, else Standard.
func Tier(p models.ScoredPick) string {
	if p.Engines.EnginesAtOrAbove(contract.TitaniumEngineThreshold) >= contract.TitaniumEnginesRequired {
		return contract.TierTitanium
	}
	if p.Engines.AI >= contract.GoldStarAIMin &&
		p.Engines.Research >= contract.GoldStarResearchMin &&
		p.Engines.Jarvis >= contract.GoldStarJarvisMin &&
		p.Engines.Esoteric >= contract.GoldStarEsotericMin &&
		p.FinalScore >= contract.GoldStarFinalMin {
		return contract.TierGoldStar
	}
	if p.FinalScore >= contract.SilverFinalMin {
		return contract.TierSilver
	}
	return contract.TierStandard
}

// AssignTiers sets Tier on every pick in place via a copy-returning
// pass, since ScoredPick is treated as immutable once produced.
func AssignTiers(picks []models.ScoredPick) []models.ScoredPick {
	out := make([]models.ScoredPick, len(picks))
	for i, p := range picks {
		p.Tier = Tier(p)
		out[i] = p
	}
	return out
}

// Sort orders picks descending by final score, then confluence boost,
// then AI score.
func Sort(picks []models.ScoredPick) {
	sort.SliceStable(picks, func(i, j int) bool {
		a, b := picks[i], picks[j]
		if a.FinalScore != b.FinalScore {
			return a.FinalScore > b.FinalScore
		}
		if a.Adjustments.Confluence != b.Adjustments.Confluence {
			return a.Adjustments.Confluence > b.Adjustments.Confluence
		}
		return a.Engines.AI > b.Engines.AI
	})
}

// Apply runs the full C8 pipeline: day filter, min-score floor, dedup,
// tier assignment, sort.
func Apply(picks []models.ScoredPick, dayStart, dayEnd time.Time) []models.ScoredPick {
	picks = FilterByDay(picks, dayStart, dayEnd)
	picks = FilterByMinScore(picks)
	picks = Dedup(picks)
	picks = AssignTiers(picks)
	Sort(picks)
	return picks
}
