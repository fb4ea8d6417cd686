package engine

import (
	"strings"

	"github.com/greenbier/bestbets-engine/internal/models"
	"github.com/greenbier/bestbets-engine/internal/providers"
)

// gameKey is the (home, away) lookup key used to recover event
// metadata (event ID, start time, live status) from a prefetch.Tuple,
// which carries only team names and a market target.
func gameKey(home, away string) string {
	return strings.ToLower(home) + "|" + strings.ToLower(away)
}

// buildCandidates turns one sport's scoreboard into the game-level
// market candidates the engine scores. Final games are excluded —
// there is nothing left to pick. Player-prop candidates need a roster
// feed this engine does not have access to, so only the three
// game-level markets are produced here; AI/Phase8's prop-specific
// branches are still fully implemented and exercised directly by
// their own tests.
func buildCandidates(sport string, entries []providers.ScoreboardEntry) []models.Candidate {
	out := make([]models.Candidate, 0, len(entries)*3)
	for _, ent := range entries {
		if ent.Status == "FINAL" {
			continue
		}
		status := models.GameScheduled
		if ent.Status == "LIVE" {
			status = models.GameLive
		}
		base := models.Candidate{
			Sport:           sport,
			HomeTeam:        ent.HomeTeam,
			AwayTeam:        ent.AwayTeam,
			GameStartUTC:    ent.GameStartUTC,
			GameStatus:      status,
			ProviderEventID: ent.EventID,
		}

		spread := base
		spread.PickType = models.PickSpread
		spread.SelectionHomeAway = "home"
		spread.Selection = ent.HomeTeam + " spread"

		total := base
		total.PickType = models.PickTotal
		total.Selection = ent.HomeTeam + "/" + ent.AwayTeam + " total"

		moneyline := base
		moneyline.PickType = models.PickMoneyline
		moneyline.SelectionHomeAway = "home"
		moneyline.Selection = ent.HomeTeam + " moneyline"

		out = append(out, spread, total, moneyline)
	}
	return out
}

// scoreboardByKey indexes scoreboard entries by gameKey, used at
// scoring time to recover live score deltas for the context modifier.
func scoreboardByKey(entries []providers.ScoreboardEntry) map[string]providers.ScoreboardEntry {
	m := make(map[string]providers.ScoreboardEntry, len(entries))
	for _, e := range entries {
		m[gameKey(e.HomeTeam, e.AwayTeam)] = e
	}
	return m
}
