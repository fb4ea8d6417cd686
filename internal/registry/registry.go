// Package registry implements the integration registry: a static
// definition table for every external provider the engine can call,
// plus the liveness-probe machinery that classifies each one at
// request time.
package registry

import (
	"context"
	"os"
	"sort"
	"time"

	"github.com/greenbier/bestbets-engine/internal/models"
)

// Engine identifies which of the four scoring engines an integration
// feeds, purely for the /integrations debug surface.
type Engine string

const (
	EngineAI        Engine = "AI"
	EngineResearch  Engine = "RESEARCH"
	EngineEsoteric  Engine = "ESOTERIC"
	EngineJarvis    Engine = "JARVIS"
	EngineContext   Engine = "CONTEXT"
	EngineCrossCut  Engine = "CROSS_CUTTING"
)

// AuthType tags how an integration authenticates, surfaced verbatim so
// public APIs never imply a key they don't carry.
type AuthType string

const (
	AuthNone   AuthType = "none"
	AuthAPIKey AuthType = "api_key"
)

// Probe is a cheap, deterministic liveness check for one integration.
// It must not perform the integration's real work — only confirm that
// calling it is currently possible.
type Probe func(ctx context.Context) error

// Definition describes one external integration: its env-var bindings,
// whether it's required, which engine(s) it feeds, and how to probe it.
type Definition struct {
	Name        string
	EnvVar      string
	EnvAliases  []string
	Required    bool
	SourceModule string
	Engine      Engine
	Auth        AuthType

	// Relevant reports whether this integration applies to the given
	// sport — e.g. weather is irrelevant to an indoor sport. A nil
	// Relevant means "always relevant".
	Relevant func(sport string) bool

	Probe Probe
}

// Registry is the full set of known integrations, keyed by Name.
type Registry struct {
	defs map[string]Definition
}

// New builds the registry from a fixed definition list. The list is
// constructed once at process startup; nothing here depends on
// per-request state.
func New(defs []Definition) *Registry {
	m := make(map[string]Definition, len(defs))
	for _, d := range defs {
		m[d.Name] = d
	}
	return &Registry{defs: m}
}

// All returns every registered definition, names sorted for stable
// debug output.
func (r *Registry) All() []Definition {
	out := make([]Definition, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Get looks up a single definition by name.
func (r *Registry) Get(name string) (Definition, bool) {
	d, ok := r.defs[name]
	return d, ok
}

// envValue resolves an integration's configured value, checking the
// primary var then any aliases in order.
func (d Definition) envValue() (string, bool) {
	if v := os.Getenv(d.EnvVar); v != "" {
		return v, true
	}
	for _, alias := range d.EnvAliases {
		if v := os.Getenv(alias); v != "" {
			return v, true
		}
	}
	return "", false
}

// Status classifies one integration for a given sport. FEATURE_DISABLED
// never appears here: a required integration gated out by relevance
// yields NotRelevant, never a disabled-looking status.
func (d Definition) Status(ctx context.Context, sport string) models.IntegrationStatus {
	if d.Relevant != nil && !d.Relevant(sport) {
		return models.StatusNotRelevant
	}

	_, configured := d.envValue()
	if d.Auth == AuthNone {
		configured = true
	}
	if !configured {
		if d.Required {
			return models.StatusMissing
		}
		return models.StatusConfigured // optional-and-absent; ProbeAll still reports key_present:false for keyed integrations
	}

	if d.Probe == nil {
		return models.StatusConfigured
	}

	probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := d.Probe(probeCtx); err != nil {
		return models.StatusUnavailable
	}
	return models.StatusValidated
}

// ProbeResult is the per-integration row the /integrations endpoint
// and health checks serialize.
type ProbeResult struct {
	Name         string                   `json:"name"`
	Required     bool                     `json:"required"`
	Engine       Engine                   `json:"engine"`
	Auth         AuthType                 `json:"auth_type"`
	KeyPresent   *bool                    `json:"key_present,omitempty"`
	SourceModule string                   `json:"source_module"`
	Status       models.IntegrationStatus `json:"status"`
}

// ProbeAll runs Status for every definition against the given sport,
// reporting key_present only for keyed (non-public) integrations —
// public APIs never carry that field, per the tagging rule.
func (r *Registry) ProbeAll(ctx context.Context, sport string) []ProbeResult {
	defs := r.All()
	out := make([]ProbeResult, 0, len(defs))
	for _, d := range defs {
		status := d.Status(ctx, sport)
		res := ProbeResult{
			Name:         d.Name,
			Required:     d.Required,
			Engine:       d.Engine,
			Auth:         d.Auth,
			SourceModule: d.SourceModule,
			Status:       status,
		}
		if d.Auth == AuthAPIKey {
			_, present := d.envValue()
			res.KeyPresent = &present
		}
		out = append(out, res)
	}
	return out
}

// isIndoorSport reports whether weather has no bearing on the given
// sport code. Basketball is the engine's primary domain and is always
// indoor; this also covers a handful of sports the registry may be
// extended to cover.
func isIndoorSport(sport string) bool {
	switch sport {
	case "NCAAM", "NCAAW", "NBA":
		return true
	default:
		return false
	}
}

// WeatherRelevant is the Relevant func wired into the weather
// integration's Definition: irrelevant for indoor sports, relevant
// otherwise.
func WeatherRelevant(sport string) bool {
	return !isIndoorSport(sport)
}
