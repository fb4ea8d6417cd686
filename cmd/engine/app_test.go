package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenbier/bestbets-engine/internal/config"
	"github.com/greenbier/bestbets-engine/internal/persistence"
	"github.com/greenbier/bestbets-engine/internal/providers"
)

func TestEnvOr_FallsBackWhenUnset(t *testing.T) {
	os.Unsetenv("APP_TEST_ENV_OR_VAR")
	assert.Equal(t, "fallback", envOr("APP_TEST_ENV_OR_VAR", "fallback"))
}

func TestEnvOr_PrefersSetValue(t *testing.T) {
	t.Setenv("APP_TEST_ENV_OR_VAR", "set")
	assert.Equal(t, "set", envOr("APP_TEST_ENV_OR_VAR", "fallback"))
}

func TestIntegrationSpecs_EveryNameIsUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, spec := range integrationSpecs {
		require.False(t, seen[spec.name], "duplicate integration spec name %q", spec.name)
		seen[spec.name] = true
	}
}

func newTestApp(t *testing.T) *app {
	t.Helper()
	cfg := &config.Config{VolumeMount: t.TempDir(), RequestBudgetSeconds: 45, ProviderTimeoutSeconds: 2}
	require.NoError(t, cfg.Validate())
	a, err := buildApp(cfg, false)
	require.NoError(t, err)
	t.Cleanup(func() { a.index.Close() })
	return a
}

func TestBuildApp_WiresAllElevenProviderClients(t *testing.T) {
	a := newTestApp(t)
	require.NotNil(t, a.providers.Odds)
	require.NotNil(t, a.providers.Quote)
	assert.Len(t, a.registry.All(), len(integrationSpecs)+1, "every provider spec plus the shared_cache definition")
}

func TestRegisterJobs_AllSevenJobsParseCleanly(t *testing.T) {
	a := newTestApp(t)
	a.cfg.CronGrade = "0 6 * * *"
	a.cfg.CronTrapEval = "15 6 * * *"
	a.cfg.CronAudit = "20 6 * * *"
	a.cfg.CronLineSnapshot = "*/30 * * * *"
	a.cfg.CronSeasonExtreme = "0 5 * * *"
	a.cfg.CronTeamRetrain = "0 7 * * *"
	a.cfg.CronLSTMRetrain = "0 4 * * 0"

	require.NoError(t, a.registerJobs())
}

func TestRunLineSnapshot_WritesOneSnapshotPerEvent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasPrefix(r.URL.Path, "/scoreboard"):
			w.Write([]byte(`[{"event_id":"evt1","home_team":"Duke","away_team":"UNC","status":"SCHEDULED"}]`))
		default:
			w.Write([]byte(`[{"sportsbook":"A","line":3.5,"price":-110}]`))
		}
	}))
	defer srv.Close()

	cfg := &config.Config{VolumeMount: t.TempDir()}
	store, err := persistence.New(cfg)
	require.NoError(t, err)

	mk := func(name string) *providers.Client {
		return providers.NewClient(providers.Options{Name: name, BaseURL: srv.URL, Timeout: time.Second})
	}
	a := &app{
		cfg:   cfg,
		store: store,
		providers: &providers.Set{
			Scoreboard: &providers.ScoreboardClient{Client: mk("scoreboard")},
			Odds:       &providers.OddsClient{Client: mk("odds_api")},
		},
	}

	require.NoError(t, a.runLineSnapshot(context.Background()))

	snaps, err := store.ReadLineSnapshots("NCAAM")
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, "evt1", snaps[0].EventID)
	assert.Equal(t, 3.5, snaps[0].Lines["A"])
}

func TestRunLineSnapshot_SkipsSportWithNoScoreboardData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := &config.Config{VolumeMount: t.TempDir()}
	store, err := persistence.New(cfg)
	require.NoError(t, err)
	mk := func(name string) *providers.Client {
		return providers.NewClient(providers.Options{Name: name, BaseURL: srv.URL, Timeout: time.Second})
	}
	a := &app{
		cfg:   cfg,
		store: store,
		providers: &providers.Set{
			Scoreboard: &providers.ScoreboardClient{Client: mk("scoreboard")},
			Odds:       &providers.OddsClient{Client: mk("odds_api")},
		},
	}

	require.NoError(t, a.runLineSnapshot(context.Background()))
	snaps, err := store.ReadLineSnapshots("NCAAM")
	require.NoError(t, err)
	assert.Empty(t, snaps)
}
