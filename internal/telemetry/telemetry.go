// Package telemetry implements the request-scoped diagnostics carrier
// per-integration call counters and impact tracking threaded
// through context.Context rather than a package-level global, plus a
// process-wide last-used-at tracker, debug payload assembly, and the
// health-endpoint report builder.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/greenbier/bestbets-engine/internal/models"
	"github.com/greenbier/bestbets-engine/internal/providers"
	"github.com/greenbier/bestbets-engine/internal/registry"
)

type contextKey struct{}

// Bundle is one request's telemetry: per-integration call stats and
// signal-impact tracking, plus the list of components that hit the
// per-request deadline. Never shared across requests — each handler
// creates its own and threads it through context.
type Bundle struct {
	mu      sync.Mutex
	stats   map[string]*models.IntegrationCallStats
	impacts map[string]*models.IntegrationImpact
	timedOut []string
	degraded bool
}

// NewBundle builds an empty request-scoped telemetry bundle.
func NewBundle() *Bundle {
	return &Bundle{
		stats:   make(map[string]*models.IntegrationCallStats),
		impacts: make(map[string]*models.IntegrationImpact),
	}
}

// WithBundle attaches b to ctx for downstream retrieval via
// FromContext.
func WithBundle(ctx context.Context, b *Bundle) context.Context {
	return context.WithValue(ctx, contextKey{}, b)
}

// FromContext retrieves the Bundle attached to ctx, if any.
func FromContext(ctx context.Context) (*Bundle, bool) {
	b, ok := ctx.Value(contextKey{}).(*Bundle)
	return b, ok
}

// Recorder returns a providers.UsageRecorder closing over this
// bundle, the injection point internal/providers.Client.Options.Recorder
// expects.
func (b *Bundle) Recorder() providers.UsageRecorder {
	return b.RecordCall
}

// RecordCall updates the named integration's call stats from one
// provider Outcome, and touches the process-wide last-used-at
// tracker.
func (b *Bundle) RecordCall(integration string, o providers.Outcome, latency time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	st, ok := b.stats[integration]
	if !ok {
		st = &models.IntegrationCallStats{}
		b.stats[integration] = st
	}
	st.Called++
	if o.HTTPStatus >= 200 && o.HTTPStatus < 300 {
		st.TwoXX++
	}
	if o.CacheHit {
		st.CacheHits++
	}
	st.LastLatency = latency.Milliseconds()
	st.LastStatus = string(o.Status)

	Touch(integration)
}

// RecordImpact notes that an integration's data produced a nonzero
// boost with the given reason — used to populate the debug payload's
// per-integration impact summary.
func (b *Bundle) RecordImpact(integration, reason string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	im, ok := b.impacts[integration]
	if !ok {
		im = &models.IntegrationImpact{}
		b.impacts[integration] = im
	}
	im.NonzeroBoosts++
	im.Reasons = append(im.Reasons, reason)
}

// RecordTimeout notes that componentName did not complete inside the
// request budget and marks the bundle degraded.
func (b *Bundle) RecordTimeout(componentName string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.timedOut = append(b.timedOut, componentName)
	b.degraded = true
}

// Degraded reports whether any component in this request timed out.
func (b *Bundle) Degraded() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.degraded
}

// DebugPayload is the structure returned by the debug endpoints: a
// snapshot of this request's integration stats and impacts, safe to
// serialize directly — no raw secrets ever enter IntegrationCallStats
// or IntegrationImpact, so no sanitization pass is needed here (unlike
// ad-hoc log lines, which go through providers.SanitizeText/SanitizeURL
// at the call site instead).
type DebugPayload struct {
	TimedOutComponents []string                                `json:"timed_out_components,omitempty"`
	Degraded           bool                                     `json:"degraded"`
	IntegrationStats   map[string]models.IntegrationCallStats   `json:"integration_stats"`
	IntegrationImpacts map[string]models.IntegrationImpact      `json:"integration_impacts"`
}

// Snapshot renders the bundle into a DebugPayload safe to serialize.
func (b *Bundle) Snapshot() DebugPayload {
	b.mu.Lock()
	defer b.mu.Unlock()

	stats := make(map[string]models.IntegrationCallStats, len(b.stats))
	for k, v := range b.stats {
		stats[k] = *v
	}
	impacts := make(map[string]models.IntegrationImpact, len(b.impacts))
	for k, v := range b.impacts {
		impacts[k] = *v
	}
	return DebugPayload{
		TimedOutComponents: append([]string(nil), b.timedOut...),
		Degraded:           b.degraded,
		IntegrationStats:   stats,
		IntegrationImpacts: impacts,
	}
}

// lastUsed is the process-wide atomic last-used-at map, distinct from
// any request-scoped Bundle: it survives across requests and answers
// "when did we last actually call this integration", which the
// /debug/pool-stats endpoint reports regardless of which request
// triggered the call.
var lastUsed = struct {
	mu sync.RWMutex
	m  map[string]time.Time
}{m: make(map[string]time.Time)}

// Touch records now as the last-used-at time for name.
func Touch(name string) {
	lastUsed.mu.Lock()
	defer lastUsed.mu.Unlock()
	lastUsed.m[name] = time.Now().UTC()
}

// LastUsed returns the last time name was used, and whether it has
// ever been used at all.
func LastUsed(name string) (time.Time, bool) {
	lastUsed.mu.RLock()
	defer lastUsed.mu.RUnlock()
	t, ok := lastUsed.m[name]
	return t, ok
}

// LastUsedSnapshot returns every integration's last-used-at time, for
// the pool-stats debug endpoint.
func LastUsedSnapshot() map[string]time.Time {
	lastUsed.mu.RLock()
	defer lastUsed.mu.RUnlock()
	out := make(map[string]time.Time, len(lastUsed.m))
	for k, v := range lastUsed.m {
		out[k] = v
	}
	return out
}

// HealthReport is the /healthz and /integrations payload: liveness
// plus the detailed per-integration probe results.
type HealthReport struct {
	Status             string                  `json:"status"` // "ok" or "degraded"
	Integrations       []registry.ProbeResult  `json:"integrations"`
	SchedulerHeartbeat *time.Time              `json:"scheduler_heartbeat_utc,omitempty"`
	SchedulerStale     bool                    `json:"scheduler_stale"`
}

// BuildHealthReport probes every registered integration for sport and
// folds in the scheduler's heartbeat staleness.
func BuildHealthReport(ctx context.Context, reg *registry.Registry, sport string, heartbeat time.Time, stale bool) HealthReport {
	results := reg.ProbeAll(ctx, sport)

	status := "ok"
	for _, r := range results {
		if r.Required && (r.Status == models.StatusMissing || r.Status == models.StatusErrorProbe) {
			status = "degraded"
		}
	}
	if stale {
		status = "degraded"
	}

	report := HealthReport{
		Status:         status,
		Integrations:   results,
		SchedulerStale: stale,
	}
	if !heartbeat.IsZero() {
		h := heartbeat
		report.SchedulerHeartbeat = &h
	}
	return report
}
