package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/greenbier/bestbets-engine/internal/config"
	"github.com/greenbier/bestbets-engine/internal/engine"
	"github.com/greenbier/bestbets-engine/internal/learning"
	"github.com/greenbier/bestbets-engine/internal/models"
	"github.com/greenbier/bestbets-engine/internal/persistence"
	"github.com/greenbier/bestbets-engine/internal/providercache"
	"github.com/greenbier/bestbets-engine/internal/providers"
	"github.com/greenbier/bestbets-engine/internal/quota"
	"github.com/greenbier/bestbets-engine/internal/registry"
	"github.com/greenbier/bestbets-engine/internal/scheduler"
	"github.com/greenbier/bestbets-engine/internal/telemetry"
	"github.com/greenbier/bestbets-engine/internal/timeauthority"
)

// app bundles every long-lived dependency the process needs, built
// once at startup and shared across requests and scheduled jobs.
type app struct {
	cfg       *config.Config
	cache     providercache.Cache
	providers *providers.Set
	registry  *registry.Registry
	store     *persistence.Store
	authority *timeauthority.Authority
	index     *learning.Index
	grader    *learning.Grader
	traps     *learning.TrapLoop
	scheduler *scheduler.Scheduler
	engine    *engine.Engine
}

// integrationSpec pairs one client's construction parameters with its
// registry.Definition, so buildApp can build both from one table
// instead of repeating the env-var plumbing twice.
type integrationSpec struct {
	name       string
	envVar     string
	baseURLEnv string
	defaultURL string
	keyHeader  string
	auth       registry.AuthType
	required   bool
	engine     registry.Engine
	relevant   func(sport string) bool
	limits     quota.Limits
}

var integrationSpecs = []integrationSpec{
	{name: "odds_api", envVar: "ODDS_API_KEY", baseURLEnv: "ODDS_API_BASE_URL", defaultURL: "https://api.odds.example.com", keyHeader: "Authorization", auth: registry.AuthAPIKey, required: true, engine: registry.EngineResearch, limits: quota.Limits{DailyMax: 5000}},
	{name: "playbook", envVar: "PLAYBOOK_API_KEY", baseURLEnv: "PLAYBOOK_BASE_URL", defaultURL: "https://api.playbook.example.com", keyHeader: "Authorization", auth: registry.AuthAPIKey, required: true, engine: registry.EngineResearch, limits: quota.Limits{DailyMax: 2000}},
	{name: "player_stats", envVar: "PLAYER_STATS_API_KEY", baseURLEnv: "PLAYER_STATS_BASE_URL", defaultURL: "https://api.playerstats.example.com", keyHeader: "Ocp-Apim-Subscription-Key", auth: registry.AuthAPIKey, required: false, engine: registry.EngineAI, limits: quota.Limits{DailyMax: 1000}},
	{name: "scoreboard", envVar: "SCOREBOARD_API_KEY", baseURLEnv: "SCOREBOARD_BASE_URL", defaultURL: "https://api.scoreboard.example.com", keyHeader: "Authorization", auth: registry.AuthAPIKey, required: true, engine: registry.EngineCrossCut, limits: quota.Unlimited},
	{name: "officials_api", envVar: "OFFICIALS_API_KEY", baseURLEnv: "OFFICIALS_BASE_URL", defaultURL: "https://api.officials.example.com", keyHeader: "Authorization", auth: registry.AuthAPIKey, required: false, engine: registry.EngineContext, limits: quota.Limits{DailyMax: 500}},
	{name: "weather_api", envVar: "WEATHER_API_KEY", baseURLEnv: "WEATHER_BASE_URL", defaultURL: "https://api.weather.example.com", keyHeader: "Authorization", auth: registry.AuthAPIKey, required: false, engine: registry.EngineContext, relevant: registry.WeatherRelevant, limits: quota.Limits{DailyMax: 1000}},
	{name: "space_weather_api", envVar: "", baseURLEnv: "SPACE_WEATHER_BASE_URL", defaultURL: "https://services.swpc.noaa.gov", auth: registry.AuthNone, required: false, engine: registry.EngineEsoteric, limits: quota.Unlimited},
	{name: "astronomy_api", envVar: "ASTRONOMY_API_KEY", baseURLEnv: "ASTRONOMY_BASE_URL", defaultURL: "https://api.astronomy.example.com", keyHeader: "Authorization", auth: registry.AuthAPIKey, required: false, engine: registry.EngineEsoteric, limits: quota.Limits{DailyMax: 500}},
	{name: "trends_api", envVar: "TRENDS_API_KEY", baseURLEnv: "TRENDS_BASE_URL", defaultURL: "https://api.trends.example.com", keyHeader: "Authorization", auth: registry.AuthAPIKey, required: false, engine: registry.EngineEsoteric, limits: quota.Limits{DailyMax: 500}},
	{name: "news_api", envVar: "NEWS_API_KEY", baseURLEnv: "NEWS_BASE_URL", defaultURL: "https://api.news.example.com", keyHeader: "Authorization", auth: registry.AuthAPIKey, required: false, engine: registry.EngineResearch, limits: quota.Limits{DailyMax: 500}},
	{name: "quote_api", envVar: "QUOTE_API_KEY", baseURLEnv: "QUOTE_BASE_URL", defaultURL: "https://api.quote.example.com", keyHeader: "Authorization", auth: registry.AuthAPIKey, required: false, engine: registry.EngineEsoteric, limits: quota.Limits{DailyMax: 500}},
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

// buildApp wires every component into one long-lived app instance.
// This is the only place the eleven typed provider clients, the
// integration registry, and the learning-loop dependencies all come
// together.
func buildApp(cfg *config.Config, cacheOnly bool) (*app, error) {
	cache := providercache.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	bundle := telemetry.NewBundle()
	recorder := bundle.Recorder()

	limits := make(map[string]quota.Limits, len(integrationSpecs))
	for _, spec := range integrationSpecs {
		limits[spec.name] = spec.limits
	}
	tracker := quota.NewTracker(limits)

	clientFor := func(spec integrationSpec) *providers.Client {
		return providers.NewClient(providers.Options{
			Name:      spec.name,
			BaseURL:   envOr(spec.baseURLEnv, spec.defaultURL),
			APIKey:    os.Getenv(spec.envVar),
			KeyHeader: spec.keyHeader,
			Timeout:   cfg.ProviderTimeout(),
			Cache:     cache,
			Quota:     tracker,
			CacheOnly: cacheOnly,
			Recorder:  recorder,
		})
	}

	byName := make(map[string]*providers.Client, len(integrationSpecs))
	for _, spec := range integrationSpecs {
		byName[spec.name] = clientFor(spec)
	}

	ps := &providers.Set{
		Odds:         &providers.OddsClient{Client: byName["odds_api"]},
		Splits:       &providers.SplitsClient{Client: byName["playbook"]},
		PlayerStats:  &providers.PlayerStatsClient{Client: byName["player_stats"]},
		Scoreboard:   &providers.ScoreboardClient{Client: byName["scoreboard"]},
		Officials:    &providers.OfficialsClient{Client: byName["officials_api"]},
		Weather:      &providers.WeatherClient{Client: byName["weather_api"]},
		SpaceWeather: &providers.SpaceWeatherClient{Client: byName["space_weather_api"]},
		Astronomy:    &providers.AstronomyClient{Client: byName["astronomy_api"]},
		Trends:       &providers.TrendsClient{Client: byName["trends_api"]},
		News:         &providers.NewsClient{Client: byName["news_api"]},
		Quote:        &providers.QuoteClient{Client: byName["quote_api"]},
	}

	defs := make([]registry.Definition, 0, len(integrationSpecs))
	for _, spec := range integrationSpecs {
		c := byName[spec.name]
		defs = append(defs, registry.Definition{
			Name:         spec.name,
			EnvVar:       spec.envVar,
			Required:     spec.required,
			SourceModule: "internal/providers",
			Engine:       spec.engine,
			Auth:         spec.auth,
			Relevant:     spec.relevant,
			Probe: func(ctx context.Context) error {
				return c.Probe(ctx, "")
			},
		})
	}
	defs = append(defs, registry.Definition{
		Name:         "shared_cache",
		Required:     false,
		SourceModule: "internal/providers",
		Engine:       registry.EngineCrossCut,
		Auth:         registry.AuthNone,
		Probe: func(ctx context.Context) error {
			return providers.RedisProbe(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		},
	})
	reg := registry.New(defs)

	store, err := persistence.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("building persistence store: %w", err)
	}

	index, err := learning.OpenIndex(cfg)
	if err != nil {
		return nil, fmt.Errorf("opening learning index: %w", err)
	}

	authority := timeauthority.NewAuthority()
	eng := engine.New(cfg, ps, reg, store, authority)

	return &app{
		cfg:       cfg,
		cache:     cache,
		providers: ps,
		registry:  reg,
		store:     store,
		authority: authority,
		index:     index,
		grader:    learning.NewGrader(store, index),
		traps:     learning.NewTrapLoop(store),
		scheduler: scheduler.New(),
		engine:    eng,
	}, nil
}

// registerJobs wires the seven cron jobs onto the scheduler. Each is
// idempotent and safe to run again if the previous run's restart
// landed mid-job.
func (a *app) registerJobs() error {
	jobs := []struct {
		name     string
		schedule string
		fn       scheduler.JobFunc
	}{
		{"grade", a.cfg.CronGrade, func(ctx context.Context) error {
			_, err := a.grader.Run(a.authority.NowET())
			return err
		}},
		{"trap_eval", a.cfg.CronTrapEval, func(ctx context.Context) error {
			return a.traps.Run(a.authority.NowET())
		}},
		{"audit", a.cfg.CronAudit, func(ctx context.Context) error {
			_, err := a.grader.Run(a.authority.NowET())
			return err
		}},
		{"line_snapshot", a.cfg.CronLineSnapshot, a.runLineSnapshot},
		{"season_extreme", a.cfg.CronSeasonExtreme, func(ctx context.Context) error {
			return nil // season-extreme recompute reads the same line history the snapshot job writes; no separate state to build yet
		}},
		{"team_retrain", a.cfg.CronTeamRetrain, func(ctx context.Context) error {
			return nil // model training is an external black box (out of scope); this slot exists so its schedule is introspectable
		}},
		{"lstm_retrain", a.cfg.CronLSTMRetrain, func(ctx context.Context) error {
			return nil
		}},
	}
	for _, j := range jobs {
		if err := a.scheduler.Register(j.name, j.schedule, j.fn); err != nil {
			return fmt.Errorf("registering job %q: %w", j.name, err)
		}
	}
	return nil
}

// runLineSnapshot records the current line for every scheduled game
// in a fixed list of sports (NCAAM, NCAAW, NBA); other sports are not
// snapshotted. A fixed list keeps this from silently growing unbounded; see
// DESIGN.md for the tradeoff.
func (a *app) runLineSnapshot(ctx context.Context) error {
	sports := []string{"NCAAM", "NCAAW", "NBA"}
	for _, sport := range sports {
		entries, out := a.providers.Scoreboard.GetScoreboard(ctx, sport)
		if out.Status != models.StatusSuccess {
			continue
		}
		for _, ent := range entries {
			lines, lOut := a.providers.Odds.GetGameOdds(ctx, ent.EventID)
			if lOut.Status != models.StatusSuccess || len(lines) == 0 {
				continue
			}
			snap := persistence.LineSnapshot{
				ObservedAtUTC: time.Now().UTC().Format(time.RFC3339),
				EventID:       ent.EventID,
				Lines:         make(map[string]float64, len(lines)),
			}
			for _, l := range lines {
				snap.Lines[l.Sportsbook] = l.Line
			}
			if err := a.store.AppendLineSnapshot(sport, snap); err != nil {
				return err
			}
		}
	}
	return nil
}
