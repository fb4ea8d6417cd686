// Package engine wires every other component into the one operation
// the rest of the system exists to serve: given a sport, produce
// today's best bets. It owns the strict fetch -> pre-fetch -> score ->
// select -> normalize -> persist ordering and the per-request deadline
// that bounds it, but holds no scoring logic of its own — every engine
// score, adjustment, and filter comes from internal/signals,
// internal/aggregator, internal/selection, and internal/normalize.
package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/greenbier/bestbets-engine/internal/config"
	"github.com/greenbier/bestbets-engine/internal/models"
	"github.com/greenbier/bestbets-engine/internal/normalize"
	"github.com/greenbier/bestbets-engine/internal/persistence"
	"github.com/greenbier/bestbets-engine/internal/prefetch"
	"github.com/greenbier/bestbets-engine/internal/providers"
	"github.com/greenbier/bestbets-engine/internal/registry"
	"github.com/greenbier/bestbets-engine/internal/selection"
	"github.com/greenbier/bestbets-engine/internal/telemetry"
	"github.com/greenbier/bestbets-engine/internal/timeauthority"
)

// Engine is the top-level orchestrator. One instance per process,
// built once at startup from the long-lived provider Set, registry,
// and store; BestBets itself holds no state across calls.
type Engine struct {
	cfg       *config.Config
	providers *providers.Set
	registry  *registry.Registry
	store     *persistence.Store
	authority *timeauthority.Authority
}

// New builds an Engine from its already-constructed dependencies.
func New(cfg *config.Config, ps *providers.Set, reg *registry.Registry, store *persistence.Store, authority *timeauthority.Authority) *Engine {
	return &Engine{cfg: cfg, providers: ps, registry: reg, store: store, authority: authority}
}

// Response is the top-level payload BestBets returns: game and prop
// picks reported separately, each with its own count.
type Response struct {
	Sport          string                  `json:"sport"`
	DateET         string                  `json:"date_et"`
	RunTimestampET string                  `json:"run_timestamp_et"`
	GamePicks      normalize.PickGroup     `json:"game_picks"`
	Props          normalize.PickGroup     `json:"props"`
	Degraded       bool                    `json:"degraded"`
	Debug          *telemetry.DebugPayload `json:"debug,omitempty"`
}

// BestBets runs the full pipeline for one sport: scoreboard fetch,
// pre-fetch fan-out, per-candidate scoring, selection/tiering,
// normalization, and persistence of every scored pick produced. It
// never fails the whole request because one integration is down, nor
// because the context is cancelled or its budget expires — only a
// persistence failure returns an error.
func (e *Engine) BestBets(ctx context.Context, sport string, debug bool) (Response, error) {
	bundle := telemetry.NewBundle()
	ctx = telemetry.WithBundle(ctx, bundle)

	ctx, cancel := context.WithTimeout(ctx, e.cfg.RequestBudget())
	defer cancel()

	now := e.authority.NowET()
	dayStart, dayEnd := timeauthority.DayBounds(now)

	start := time.Now()
	scoreboard, sbOut := e.providers.Scoreboard.GetScoreboard(ctx, sport)
	bundle.RecordCall("scoreboard", sbOut, time.Since(start))
	if sbOut.Status == models.StatusTimeout {
		bundle.RecordTimeout("scoreboard")
	}

	candidates := buildCandidates(sport, scoreboard)
	liveBoard := scoreboardByKey(scoreboard)

	games := make(map[string]models.Candidate, len(scoreboard))
	for _, c := range candidates {
		games[gameKey(c.HomeTeam, c.AwayTeam)] = c
	}

	reqCache := prefetch.NewCache()
	targetFn := func(c models.Candidate) prefetch.Tuple {
		return prefetch.Tuple{Home: c.HomeTeam, Away: c.AwayTeam, Target: c.Target()}
	}
	fetch := e.tupleFetcher(bundle, games, reqCache, sport)
	fetchErrs := prefetch.Plan(ctx, candidates, targetFn, fetch, e.cfg.PrefetchPoolSize, e.cfg.PrefetchBudget())
	for key, err := range fetchErrs {
		log.Debug().Str("tuple", key).Err(err).Msg("pre-fetch tuple failed, continuing fail-soft")
	}

	lineSnapshots, err := e.store.ReadLineSnapshots(sport)
	if err != nil {
		log.Debug().Str("sport", sport).Err(err).Msg("line history unavailable, continuing fail-soft")
	}
	historyByEvent := groupLineHistoryByEvent(lineSnapshots)

	scored := make([]models.ScoredPick, 0, len(candidates))
	for _, c := range candidates {
		t := targetFn(c)
		raw, _ := reqCache.Get(t, "data")
		td, _ := raw.(tupleData)
		pick := e.scoreCandidate(c, td, liveBoard[gameKey(c.HomeTeam, c.AwayTeam)], historyByEvent[c.ProviderEventID])
		scored = append(scored, pick)
	}

	scored = selection.Apply(scored, dayStart, dayEnd)

	for _, p := range scored {
		if err := e.store.AppendPrediction(toPredictionRecord(p, now)); err != nil {
			return Response{}, err
		}
	}

	gamePicks, props := normalize.Split(scored)
	resp := Response{
		Sport:          sport,
		DateET:         timeauthority.DateET(now),
		RunTimestampET: timeauthority.FormatET(now),
		GamePicks:      gamePicks,
		Props:          props,
		Degraded:       bundle.Degraded() || e.authority.Degraded(),
	}
	if debug {
		snap := bundle.Snapshot()
		resp.Debug = &snap
	}
	return resp, nil
}
