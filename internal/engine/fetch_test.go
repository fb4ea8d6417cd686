package engine

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"context"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenbier/bestbets-engine/internal/models"
	"github.com/greenbier/bestbets-engine/internal/prefetch"
	"github.com/greenbier/bestbets-engine/internal/providers"
	"github.com/greenbier/bestbets-engine/internal/telemetry"
)

// fakeProviderServer answers every path this package's providers.Set
// can call with a minimally-valid body of the right JSON shape.
func fakeProviderServer(t *testing.T) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.Contains(r.URL.Path, "officials"):
			w.Write([]byte(`{"officials":["A"],"venue_id":"v1"}`))
		case strings.Contains(r.URL.Path, "weather"):
			w.Write([]byte(`{"temp_f":60}`))
		case strings.Contains(r.URL.Path, "noaa-planetary-k-index"):
			w.Write([]byte(`{"kp_index":3}`))
		case strings.Contains(r.URL.Path, "moon-phase"):
			w.Write([]byte(`{"phase_name":"new"}`))
		case strings.Contains(r.URL.Path, "trends"):
			w.Write([]byte(`{"velocity_index":10}`))
		default:
			w.Write([]byte(`[]`))
		}
	}))
}

func testProviderSet(baseURL string) *providers.Set {
	mk := func(name string) *providers.Client {
		return providers.NewClient(providers.Options{Name: name, BaseURL: baseURL, Timeout: time.Second})
	}
	return &providers.Set{
		Odds:         &providers.OddsClient{Client: mk("odds_api")},
		Splits:       &providers.SplitsClient{Client: mk("playbook")},
		Officials:    &providers.OfficialsClient{Client: mk("officials_api")},
		Weather:      &providers.WeatherClient{Client: mk("weather_api")},
		SpaceWeather: &providers.SpaceWeatherClient{Client: mk("space_weather_api")},
		Astronomy:    &providers.AstronomyClient{Client: mk("astronomy_api")},
		Trends:       &providers.TrendsClient{Client: mk("trends_api")},
		News:         &providers.NewsClient{Client: mk("news_api")},
	}
}

func TestTupleFetcher_PopulatesCacheForKnownGame(t *testing.T) {
	srv := fakeProviderServer(t)
	defer srv.Close()

	e := &Engine{providers: testProviderSet(srv.URL)}
	bundle := telemetry.NewBundle()
	game := models.Candidate{HomeTeam: "Duke", AwayTeam: "UNC", GameStartUTC: time.Now(), ProviderEventID: "evt1"}
	games := map[string]models.Candidate{gameKey("Duke", "UNC"): game}
	reqCache := prefetch.NewCache()

	fetch := e.tupleFetcher(bundle, games, reqCache, "ncaab")
	tup := prefetch.Tuple{Home: "Duke", Away: "UNC", Target: string(models.PickSpread)}
	err := fetch(context.Background(), tup)
	require.NoError(t, err)

	raw, ok := reqCache.Get(tup, "data")
	require.True(t, ok)
	td, ok := raw.(tupleData)
	require.True(t, ok)
	assert.Equal(t, models.StatusSuccess, td.OfficialsOut.Status)
	assert.Equal(t, models.StatusSuccess, td.KpOut.Status)
}

func TestTupleFetcher_UnknownGameIsNoOp(t *testing.T) {
	srv := fakeProviderServer(t)
	defer srv.Close()

	e := &Engine{providers: testProviderSet(srv.URL)}
	bundle := telemetry.NewBundle()
	reqCache := prefetch.NewCache()
	fetch := e.tupleFetcher(bundle, map[string]models.Candidate{}, reqCache, "ncaab")

	tup := prefetch.Tuple{Home: "Ghost", Away: "Team"}
	err := fetch(context.Background(), tup)
	require.NoError(t, err)
	_, ok := reqCache.Get(tup, "data")
	assert.False(t, ok, "a tuple with no matching game must never populate the cache")
}

func TestTupleFetcher_SkipsWeatherForIndoorSport(t *testing.T) {
	srv := fakeProviderServer(t)
	defer srv.Close()

	e := &Engine{providers: testProviderSet(srv.URL)}
	bundle := telemetry.NewBundle()
	game := models.Candidate{HomeTeam: "Duke", AwayTeam: "UNC", ProviderEventID: "evt1"}
	games := map[string]models.Candidate{gameKey("Duke", "UNC"): game}
	reqCache := prefetch.NewCache()

	fetch := e.tupleFetcher(bundle, games, reqCache, "ncaab")
	tup := prefetch.Tuple{Home: "Duke", Away: "UNC", Target: string(models.PickSpread)}
	require.NoError(t, fetch(context.Background(), tup))

	raw, _ := reqCache.Get(tup, "data")
	td := raw.(tupleData)
	assert.NotEqual(t, models.StatusSuccess, td.WeatherOut.Status, "basketball is indoor, weather must never be called")
}
