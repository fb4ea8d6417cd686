package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenbier/bestbets-engine/internal/models"
)

func TestOddsClient_GetGameOdds_ParsesLines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"sportsbook":"draftkings","line":-3.5,"price":-110}]`))
	}))
	defer srv.Close()

	c := &OddsClient{Client: NewClient(Options{Name: "odds", BaseURL: srv.URL})}
	lines, out := c.GetGameOdds(context.Background(), "evt-1")
	require.Equal(t, models.StatusSuccess, out.Status)
	require.Len(t, lines, 1)
	assert.Equal(t, "draftkings", lines[0].Sportsbook)
	assert.Equal(t, -3.5, lines[0].Line)
}

func TestScoreboardClient_GetScoreboard_MalformedBodyYieldsEmptySlice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := &ScoreboardClient{Client: NewClient(Options{Name: "scoreboard", BaseURL: srv.URL})}
	entries, out := c.GetScoreboard(context.Background(), "NCAAM")
	assert.Equal(t, models.StatusSuccess, out.Status, "an HTTP 200 with an unparsable body is still StatusSuccess")
	assert.Empty(t, entries, "unmarshal failure must degrade to an empty slice, never panic")
}

func TestSplitsClient_GetSplits_ProviderDownYieldsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := &SplitsClient{Client: NewClient(Options{Name: "splits", BaseURL: srv.URL})}
	splits, out := c.GetSplits(context.Background(), "evt-1")
	assert.Equal(t, models.StatusError, out.Status)
	assert.Nil(t, splits)
}

func TestSpaceWeatherClient_GetKpIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"kp_index":4.33,"as_of":"2026-03-10T00:00:00Z"}`))
	}))
	defer srv.Close()

	c := &SpaceWeatherClient{Client: NewClient(Options{Name: "space_weather", BaseURL: srv.URL})}
	reading, out := c.GetKpIndex(context.Background())
	require.Equal(t, models.StatusSuccess, out.Status)
	assert.Equal(t, 4.33, reading.KpIndex)
}
