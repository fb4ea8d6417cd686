// Package providers implements the per-integration HTTP clients:
// timeout, caching, quota, fail-soft error collapse, usage telemetry,
// and shadow mode, wrapping every outbound call the same way across
// many external providers.
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/greenbier/bestbets-engine/internal/models"
	"github.com/greenbier/bestbets-engine/internal/providercache"
	"github.com/greenbier/bestbets-engine/internal/quota"
)

// Outcome is the result of one client call, always well-formed even on
// failure — callers never receive a naked error from a Client method.
type Outcome struct {
	Body       json.RawMessage
	Status     models.SignalStatus
	CacheHit   bool
	HTTPStatus int
}

// UsageRecorder is invoked once per call with enough detail to update
// both request-local telemetry and the process-wide last-used map.
// Implemented by internal/telemetry; injected here to avoid a layering
// cycle (providers must not import telemetry's context helpers).
type UsageRecorder func(integration string, o Outcome, latency time.Duration)

// Client is the shared machinery one typed provider client embeds.
// It is NOT a package-level singleton: one instance per integration,
// constructed at startup and reused across requests (unlike the
// telemetry carrier, quota and cache are legitimately process-wide
// resources).
type Client struct {
	Name    string
	BaseURL string

	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
	limiter    *rate.Limiter
	cache      providercache.Cache
	quota      *quota.Tracker
	timeout    time.Duration
	shadow     bool
	cacheOnly  bool
	recorder   UsageRecorder

	authType  string
	keyHeader string
	apiKey    string
}

// Options configures a new Client.
type Options struct {
	Name       string
	BaseURL    string
	APIKey     string
	KeyHeader  string // header name to carry APIKey in, e.g. "Ocp-Apim-Subscription-Key"
	Timeout    time.Duration
	RatePerSec float64
	RateBurst  int
	Cache      providercache.Cache
	Quota      *quota.Tracker
	Shadow     bool
	// CacheOnly makes every call resolve from cache alone: a miss
	// returns StatusSkippedQuota instead of falling through to a live
	// request. Used by the snapshot command's --backfill mode to replay
	// a past ET day's already-cached provider responses.
	CacheOnly bool
	Recorder  UsageRecorder
}

// NewClient builds a Client with a per-integration circuit breaker
// wrapping its HTTP round trips.
func NewClient(opt Options) *Client {
	if opt.Timeout <= 0 {
		opt.Timeout = 2 * time.Second
	}
	if opt.RatePerSec <= 0 {
		opt.RatePerSec = 5
	}
	if opt.RateBurst <= 0 {
		opt.RateBurst = 5
	}

	cbSettings := gobreaker.Settings{
		Name:        opt.Name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("integration", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
		},
	}

	return &Client{
		Name:    opt.Name,
		BaseURL: opt.BaseURL,
		httpClient: &http.Client{
			Timeout: opt.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        50,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		breaker:   gobreaker.NewCircuitBreaker[[]byte](cbSettings),
		limiter:   rate.NewLimiter(rate.Limit(opt.RatePerSec), opt.RateBurst),
		cache:     opt.Cache,
		quota:     opt.Quota,
		timeout:   opt.Timeout,
		shadow:    opt.Shadow,
		cacheOnly: opt.CacheOnly,
		recorder:  opt.Recorder,
		keyHeader: opt.KeyHeader,
		apiKey:    opt.APIKey,
	}
}

// Get performs a cached, quota-gated, rate-limited, circuit-broken GET
// request. It never returns a transport error to the caller: every
// failure mode collapses into an Outcome with a diagnostic Status.
func (c *Client) Get(ctx context.Context, path string, params map[string]string, cacheKey string, ttl time.Duration) Outcome {
	start := time.Now()
	outcome := c.get(ctx, path, params, cacheKey, ttl)
	if c.recorder != nil {
		c.recorder(c.Name, outcome, time.Since(start))
	}
	if c.shadow {
		// Shadow mode: the call still happened and was logged, but the
		// caller must treat this integration as contributing nothing.
		return Outcome{Status: models.StatusSkippedQuota, Body: nil}
	}
	return outcome
}

func (c *Client) get(ctx context.Context, path string, params map[string]string, cacheKey string, ttl time.Duration) Outcome {
	if c.cache != nil && cacheKey != "" {
		if body, hit := c.cache.Get(ctx, cacheKey); hit {
			return Outcome{Body: body, Status: models.StatusSuccess, CacheHit: true, HTTPStatus: http.StatusOK}
		}
	}

	if c.cacheOnly {
		return Outcome{Status: models.StatusSkippedQuota}
	}

	if c.quota != nil {
		if !c.quota.Allow(c.Name) {
			return Outcome{Status: models.StatusSkippedQuota}
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if c.limiter != nil {
		if err := c.limiter.Wait(callCtx); err != nil {
			return Outcome{Status: models.StatusTimeout}
		}
	}

	var httpStatus int
	body, err := c.breaker.Execute(func() ([]byte, error) {
		b, status, reqErr := c.doRequest(callCtx, path, params)
		httpStatus = status
		return b, reqErr
	})

	if err != nil {
		if callCtx.Err() != nil {
			return Outcome{Status: models.StatusTimeout}
		}
		log.Debug().Str("integration", c.Name).Err(err).Msg(SanitizeText(fmt.Sprintf("provider call failed: %v", err)))
		return Outcome{Status: models.StatusError, HTTPStatus: httpStatus}
	}

	if c.quota != nil {
		c.quota.Consume(c.Name)
	}
	if c.cache != nil && cacheKey != "" {
		c.cache.Set(ctx, cacheKey, body, ttl)
	}

	return Outcome{Body: body, Status: models.StatusSuccess, HTTPStatus: httpStatus}
}

func (c *Client) doRequest(ctx context.Context, path string, params map[string]string) ([]byte, int, error) {
	fullURL := strings.TrimRight(c.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "bestbets-engine/1.0")

	if c.apiKey != "" && c.keyHeader != "" {
		req.Header.Set(c.keyHeader, c.apiKey)
	}
	if len(params) > 0 {
		q := req.URL.Query()
		for k, v := range params {
			q.Set(k, v)
		}
		req.URL.RawQuery = q.Encode()
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.StatusCode, fmt.Errorf("status %d", resp.StatusCode)
	}
	return body, resp.StatusCode, nil
}

// Probe issues a cheap liveness check: a GET against path with a short
// timeout, discarding the body. Used by internal/registry.
func (c *Client) Probe(ctx context.Context, path string) error {
	probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, _, err := c.doRequest(probeCtx, path, nil)
	return err
}

// RedisProbe is a standalone liveness probe for the optional shared
// provider cache, independent of any one provider's circuit breaker.
// Wired into the registry as the shared_cache integration so the
// /integrations endpoint reports Redis reachability even though no
// single provider client owns that connection. A blank addr reports
// healthy — an unconfigured cache degrades to in-memory, it doesn't fail.
func RedisProbe(ctx context.Context, addr, password string, db int) error {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	defer client.Close()
	probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return client.Ping(probeCtx).Err()
}
