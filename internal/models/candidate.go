// Package models holds the entities shared across the scoring
// pipeline: Candidate, ScoredPick, PredictionRecord, Weights,
// TrapDefinition, and AuditLog/Lesson, and IntegrationTelemetry.
package models

import "time"

// PickType is the market/selection tag a Candidate carries. Game
// picks never carry a "GAME" tag; every switch over PickType must list
// every market tag explicitly and must not have a "GAME" fallback
// branch.
type PickType string

const (
	PickSpread    PickType = "SPREAD"
	PickMoneyline PickType = "MONEYLINE"
	PickTotal     PickType = "TOTAL"
	PickProp      PickType = "PROP"
	PickSharp     PickType = "SHARP"
)

// IsGameMarket reports whether pt is one of the game-level market
// tags (as opposed to PROP). Exhaustive switch, no default branch —
// adding a new PickType must update this.
func (pt PickType) IsGameMarket() bool {
	switch pt {
	case PickSpread, PickMoneyline, PickTotal, PickSharp:
		return true
	case PickProp:
		return false
	}
	return false
}

// GameStatus mirrors the provider-reported state of a game at
// candidate-build time; LIVE triggers the in-play context-modifier and
// post-base live-adjustment terms.
type GameStatus string

const (
	GameScheduled GameStatus = "SCHEDULED"
	GameLive      GameStatus = "LIVE"
	GameFinal     GameStatus = "FINAL"
)

// OddsQuote is one sportsbook's price for a Candidate's selection.
type OddsQuote struct {
	Sportsbook    string  `json:"sportsbook"`
	AmericanOdds  int     `json:"american_odds"`
	Line          float64 `json:"line"`
	ObservedAtUTC time.Time `json:"observed_at_utc"`
}

// Candidate is a potential bet under consideration before scoring.
// Produced from raw provider data at request time and discarded after
// the response — it never persists.
type Candidate struct {
	PickType    PickType `json:"pick_type"`
	Sport       string   `json:"sport"`
	HomeTeam    string   `json:"home_team"`
	AwayTeam    string   `json:"away_team"`
	PlayerName  string   `json:"player_name,omitempty"`
	StatType    string   `json:"stat_type,omitempty"`
	Line        *float64 `json:"line,omitempty"`
	Selection   string   `json:"selection"`
	SelectionHomeAway string `json:"selection_home_away,omitempty"` // "home"/"away"/"" for props

	GameStartUTC time.Time `json:"game_start_utc"`
	GameStatus   GameStatus `json:"game_status"`
	ProviderEventID string  `json:"provider_event_id"`

	OddsQuotes []OddsQuote `json:"odds_quotes"`
}

// Target is the provider-cache dedup key component: the thing a
// per-candidate lookup actually varies on (player name plus stat type
// for props, the
// market name for game bets). The pre-fetch planner dedups on
// (HomeTeam, AwayTeam, Target) tuples.
func (c Candidate) Target() string {
	if c.PickType == PickProp {
		return c.PlayerName + "|" + c.StatType
	}
	return string(c.PickType)
}

// RepresentativeOddsAmerican returns the first fetched sportsbook's
// American price for this candidate's displayed line, or 0 when no
// odds were fetched.
func (c Candidate) RepresentativeOddsAmerican() int {
	if len(c.OddsQuotes) == 0 {
		return 0
	}
	return c.OddsQuotes[0].AmericanOdds
}
