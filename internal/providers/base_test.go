package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenbier/bestbets-engine/internal/models"
	"github.com/greenbier/bestbets-engine/internal/providercache"
	"github.com/greenbier/bestbets-engine/internal/quota"
)

func TestClient_Get_CacheHitSkipsLiveCall(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{"a":1}`))
	}))
	defer srv.Close()

	cache := providercache.New("", "", 0)
	c := NewClient(Options{Name: "t", BaseURL: srv.URL, Cache: cache})

	out1 := c.Get(context.Background(), "/x", nil, "cache-key", time.Minute)
	require.Equal(t, models.StatusSuccess, out1.Status)
	assert.False(t, out1.CacheHit)

	out2 := c.Get(context.Background(), "/x", nil, "cache-key", time.Minute)
	require.Equal(t, models.StatusSuccess, out2.Status)
	assert.True(t, out2.CacheHit)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "second call must be served from cache, not a live request")
}

func TestClient_Get_CacheOnlyMissNeverCallsLive(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	cache := providercache.New("", "", 0)
	c := NewClient(Options{Name: "t", BaseURL: srv.URL, Cache: cache, CacheOnly: true})

	out := c.Get(context.Background(), "/x", nil, "missing-key", time.Minute)
	assert.Equal(t, models.StatusSkippedQuota, out.Status)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls), "cache-only mode must never fall through to a live call on a miss")
}

func TestClient_Get_QuotaExhaustedSkipsCall(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	tracker := quota.NewTracker(map[string]quota.Limits{"t": {DailyMax: 1}})
	c := NewClient(Options{Name: "t", BaseURL: srv.URL, Quota: tracker, RatePerSec: 100, RateBurst: 100})

	out1 := c.Get(context.Background(), "/x", nil, "", 0)
	require.Equal(t, models.StatusSuccess, out1.Status)

	out2 := c.Get(context.Background(), "/x", nil, "", 0)
	assert.Equal(t, models.StatusSkippedQuota, out2.Status)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_Get_ShadowModeNeverReturnsLiveBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"real":true}`))
	}))
	defer srv.Close()

	c := NewClient(Options{Name: "t", BaseURL: srv.URL, Shadow: true, RatePerSec: 100, RateBurst: 100})
	out := c.Get(context.Background(), "/x", nil, "", 0)
	assert.Equal(t, models.StatusSkippedQuota, out.Status)
	assert.Nil(t, out.Body)
}

func TestClient_Get_NonSuccessHTTPStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(Options{Name: "t", BaseURL: srv.URL, RatePerSec: 100, RateBurst: 100})
	out := c.Get(context.Background(), "/x", nil, "", 0)
	assert.Equal(t, models.StatusError, out.Status)
}

func TestClient_Probe_UsesShortTimeoutAndSucceeds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`ok`))
	}))
	defer srv.Close()

	c := NewClient(Options{Name: "t", BaseURL: srv.URL})
	assert.NoError(t, c.Probe(context.Background(), ""))
}

func TestClient_UsageRecorderIsInvokedOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	var recordedName string
	var recordedCalls int32
	c := NewClient(Options{
		Name: "t", BaseURL: srv.URL, RatePerSec: 100, RateBurst: 100,
		Recorder: func(integration string, o Outcome, latency time.Duration) {
			recordedName = integration
			atomic.AddInt32(&recordedCalls, 1)
		},
	})
	c.Get(context.Background(), "/x", nil, "", 0)
	assert.Equal(t, "t", recordedName)
	assert.Equal(t, int32(1), atomic.LoadInt32(&recordedCalls))
}

func TestClient_Get_JoinsPathWithoutLeadingSlash(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(Options{Name: "t", BaseURL: srv.URL})
	out := c.Get(context.Background(), "odds/events/evt-1/lines", nil, "", 0)
	require.Equal(t, models.StatusSuccess, out.Status)
	assert.Equal(t, "/odds/events/evt-1/lines", gotPath, "a path without a leading slash must still join cleanly onto BaseURL")
}
