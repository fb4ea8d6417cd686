package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/greenbier/bestbets-engine/internal/providercache"
	"github.com/greenbier/bestbets-engine/internal/timeauthority"
)

// Set bundles every typed client the engine talks to. cmd/engine wires
// one Set from config.Config + a shared providercache.Cache +
// per-integration quota.Tracker.
type Set struct {
	Odds          *OddsClient
	Splits        *SplitsClient
	PlayerStats   *PlayerStatsClient
	Scoreboard    *ScoreboardClient
	Officials     *OfficialsClient
	Weather       *WeatherClient
	SpaceWeather  *SpaceWeatherClient
	Astronomy     *AstronomyClient
	Trends        *TrendsClient
	News          *NewsClient
	Quote         *QuoteClient
}

// OddsClient reads cross-book line data — the Odds-API-sourced half
// of Research's strictly-separated signal pair.
type OddsClient struct{ *Client }

type OddsLine struct {
	Sportsbook string  `json:"sportsbook"`
	Line       float64 `json:"line"`
	Price      int     `json:"price"`
}

// GetGameOdds fetches all books' lines for one event, 5-minute TTL —
// lines move fast enough that a longer TTL would stale the
// line-variance signal.
func (c *OddsClient) GetGameOdds(ctx context.Context, eventID string) ([]OddsLine, Outcome) {
	key := providercache.Key("odds", eventID)
	out := c.Get(ctx, fmt.Sprintf("odds/events/%s/lines", eventID), nil, key, 5*time.Minute)
	var lines []OddsLine
	if out.Body != nil {
		_ = json.Unmarshal(out.Body, &lines)
	}
	return lines, out
}

// SplitsClient reads ticket%/money% splits — the Playbook-sourced half
// of Research's sharp signal. Never reads odds data; GetSharpSplits'
// only input is this client's own API.
type SplitsClient struct{ *Client }

type TicketMoneySplit struct {
	Selection  string  `json:"selection"`
	TicketPct  float64 `json:"ticket_pct"`
	MoneyPct   float64 `json:"money_pct"`
}

// GetSplits fetches ticket/money splits for one event, 10-minute TTL.
func (c *SplitsClient) GetSplits(ctx context.Context, eventID string) ([]TicketMoneySplit, Outcome) {
	key := providercache.Key("splits", eventID)
	out := c.Get(ctx, fmt.Sprintf("splits/%s", eventID), nil, key, 10*time.Minute)
	var splits []TicketMoneySplit
	if out.Body != nil {
		_ = json.Unmarshal(out.Body, &splits)
	}
	return splits, out
}

// PlayerStatsClient feeds the AI engine's prop-projection heuristic.
type PlayerStatsClient struct{ *Client }

type PlayerGameLog struct {
	GameDate string             `json:"game_date"`
	Stats    map[string]float64 `json:"stats"`
}

// GetRecentGames fetches a player's last N box scores, 60-minute TTL.
func (c *PlayerStatsClient) GetRecentGames(ctx context.Context, playerID string, n int) ([]PlayerGameLog, Outcome) {
	key := providercache.Key("player_stats", playerID, fmt.Sprint(n))
	out := c.Get(ctx, fmt.Sprintf("players/%s/gamelog", playerID), map[string]string{"limit": fmt.Sprint(n)}, key, 60*time.Minute)
	var logs []PlayerGameLog
	if out.Body != nil {
		_ = json.Unmarshal(out.Body, &logs)
	}
	return logs, out
}

// ScoreboardClient feeds live game_status and in-play score context.
type ScoreboardClient struct{ *Client }

type ScoreboardEntry struct {
	EventID      string    `json:"event_id"`
	HomeTeam     string    `json:"home_team"`
	AwayTeam     string    `json:"away_team"`
	GameStartUTC time.Time `json:"game_start_utc"`
	Status       string    `json:"status"`
	HomeScore    int       `json:"home_score"`
	AwayScore    int       `json:"away_score"`
	PeriodInfo   string    `json:"period_info"`
}

// GetScoreboard fetches today's scoreboard for a sport, 30-second TTL
// (the only sub-minute TTL in the engine; live state moves that fast).
func (c *ScoreboardClient) GetScoreboard(ctx context.Context, sport string) ([]ScoreboardEntry, Outcome) {
	key := providercache.Key("scoreboard", sport, timeauthority.DateET(time.Now()))
	out := c.Get(ctx, fmt.Sprintf("scoreboard/%s", sport), nil, key, 30*time.Second)
	var entries []ScoreboardEntry
	if out.Body != nil {
		_ = json.Unmarshal(out.Body, &entries)
	}
	return entries, out
}

// OfficialsClient feeds the context modifier's officials-tendency term
// and venue attributes (surface, altitude).
type OfficialsClient struct{ *Client }

type EventOfficials struct {
	Officials   []string `json:"officials"`
	VenueID     string   `json:"venue_id"`
	Surface     string   `json:"surface,omitempty"`
	AltitudeFt  int      `json:"altitude_ft,omitempty"`
}

// GetEventOfficials fetches assigned officials and venue attributes,
// 6-hour TTL (officiating assignments rarely change same-day).
func (c *OfficialsClient) GetEventOfficials(ctx context.Context, eventID string) (EventOfficials, Outcome) {
	key := providercache.Key("officials", eventID)
	out := c.Get(ctx, fmt.Sprintf("events/%s/officials", eventID), nil, key, 6*time.Hour)
	var eo EventOfficials
	if out.Body != nil {
		_ = json.Unmarshal(out.Body, &eo)
	}
	return eo, out
}

// WeatherClient feeds the context modifier for outdoor sports only;
// the registry marks it NOT_RELEVANT for indoor sports so this client
// is simply never called in that case.
type WeatherClient struct{ *Client }

type WeatherReading struct {
	TempF      float64 `json:"temp_f"`
	WindMPH    float64 `json:"wind_mph"`
	Precip     string  `json:"precip,omitempty"`
}

// GetWeather fetches conditions at (lat, lon) near ts, 30-minute TTL.
func (c *WeatherClient) GetWeather(ctx context.Context, lat, lon float64, ts time.Time) (WeatherReading, Outcome) {
	key := providercache.Key("weather", fmt.Sprintf("%.3f", lat), fmt.Sprintf("%.3f", lon), ts.UTC().Format(time.RFC3339))
	params := map[string]string{"lat": fmt.Sprintf("%f", lat), "lon": fmt.Sprintf("%f", lon), "ts": ts.UTC().Format(time.RFC3339)}
	out := c.Get(ctx, "weather/point", params, key, 30*time.Minute)
	var w WeatherReading
	if out.Body != nil {
		_ = json.Unmarshal(out.Body, &w)
	}
	return w, out
}

// SpaceWeatherClient is public (auth_type "none") and feeds the GLITCH
// aggregate's Kp-index term.
type SpaceWeatherClient struct{ *Client }

type KpIndexReading struct {
	KpIndex float64 `json:"kp_index"`
	AsOf    string  `json:"as_of"`
}

// GetKpIndex fetches the current planetary Kp-index, 3-hour TTL
// (NOAA SWPC publishes on a 3-hour cadence).
func (c *SpaceWeatherClient) GetKpIndex(ctx context.Context) (KpIndexReading, Outcome) {
	key := providercache.Key("kp_index", timeauthority.DateET(time.Now()))
	out := c.Get(ctx, "products/noaa-planetary-k-index.json", nil, key, 3*time.Hour)
	var k KpIndexReading
	if out.Body != nil {
		_ = json.Unmarshal(out.Body, &k)
	}
	return k, out
}

// AstronomyClient feeds moon-phase (void-of-course) and mercury
// retrograde terms.
type AstronomyClient struct{ *Client }

type MoonPhase struct {
	PhaseName   string  `json:"phase_name"`
	Illumination float64 `json:"illumination"`
	VoidOfCourse bool   `json:"void_of_course"`
}

// GetMoonPhase fetches the lunar phase for a calendar date, 24-hour TTL.
func (c *AstronomyClient) GetMoonPhase(ctx context.Context, isoDate string) (MoonPhase, Outcome) {
	key := providercache.Key("moon_phase", isoDate)
	out := c.Get(ctx, "moon-phase", map[string]string{"date": isoDate}, key, 24*time.Hour)
	var m MoonPhase
	if out.Body != nil {
		_ = json.Unmarshal(out.Body, &m)
	}
	return m, out
}

// TrendsClient feeds the noosphere/search-velocity GLITCH term.
type TrendsClient struct{ *Client }

type TrendReading struct {
	Query       string  `json:"query"`
	VelocityIdx float64 `json:"velocity_index"`
}

// GetTrend fetches search-velocity for a free-text query, 15-minute TTL.
func (c *TrendsClient) GetTrend(ctx context.Context, query string) (TrendReading, Outcome) {
	key := providercache.Key("trend", query)
	out := c.Get(ctx, "trends/velocity", map[string]string{"q": query}, key, 15*time.Minute)
	var t TrendReading
	if out.Body != nil {
		_ = json.Unmarshal(out.Body, &t)
	}
	return t, out
}

// NewsClient feeds Research's situational/news-context signals.
type NewsClient struct{ *Client }

type NewsArticle struct {
	Headline  string `json:"headline"`
	Source    string `json:"source"`
	Sentiment string `json:"sentiment,omitempty"`
}

// GetNews fetches recent articles for a free-text query, 20-minute TTL.
func (c *NewsClient) GetNews(ctx context.Context, query string) ([]NewsArticle, Outcome) {
	key := providercache.Key("news", query)
	out := c.Get(ctx, "news/search", map[string]string{"q": query}, key, 20*time.Minute)
	var articles []NewsArticle
	if out.Body != nil {
		_ = json.Unmarshal(out.Body, &articles)
	}
	return articles, out
}

// QuoteClient is an esoteric cross-market signal source (e.g. a
// market-sentiment proxy quote), not a betting-market integration.
type QuoteClient struct{ *Client }

type Quote struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
	Change float64 `json:"change_pct"`
}

// GetQuote fetches a symbol's latest quote, 15-minute TTL.
func (c *QuoteClient) GetQuote(ctx context.Context, symbol string) (Quote, Outcome) {
	key := providercache.Key("quote", symbol)
	out := c.Get(ctx, "quote", map[string]string{"symbol": symbol}, key, 15*time.Minute)
	var q Quote
	if out.Body != nil {
		_ = json.Unmarshal(out.Body, &q)
	}
	return q, out
}
