// Package prefetch implements the request pre-fetch planner:
// deduplicate (home, away, target) tuples across all candidates for a
// request and fan them out to a bounded worker pool once, so the
// scoring loop that follows reads from cache instead of re-issuing the
// same provider calls per candidate.
package prefetch

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/greenbier/bestbets-engine/internal/models"
)

// Tuple is the deduplication key: a matchup plus the signal target a
// candidate needs computed against it.
type Tuple struct {
	Home   string
	Away   string
	Target string
}

func (t Tuple) key() string {
	return strings.ToLower(t.Home) + "|" + strings.ToLower(t.Away) + "|" + strings.ToLower(t.Target)
}

// Fetcher is the caller-supplied function that does the actual work
// for one tuple — typically a bundle of provider calls landing their
// results in a request-local cache keyed by the same tuple.
type Fetcher func(ctx context.Context, t Tuple) error

// Plan deduplicates candidates into tuples via targetFn, then runs
// fetch once per unique tuple across a pool of size poolSize, bounded
// by deadline. Individual tuple failures are collected, not
// propagated: one slow or failing provider must never abort the
// batch for unrelated candidates (fail-soft fan-out, not fail-fast).
func Plan(ctx context.Context, candidates []models.Candidate, targetFn func(models.Candidate) Tuple, fetch Fetcher, poolSize int, deadline time.Duration) map[string]error {
	if poolSize <= 0 {
		poolSize = 16
	}

	seen := make(map[string]Tuple)
	for _, c := range candidates {
		t := targetFn(c)
		seen[t.key()] = t
	}

	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	var mu sync.Mutex
	errs := make(map[string]error, len(seen))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(poolSize)

	for key, tuple := range seen {
		key, tuple := key, tuple
		g.Go(func() error {
			err := fetch(gctx, tuple)
			if err != nil {
				mu.Lock()
				errs[key] = err
				mu.Unlock()
			}
			// Always return nil: errgroup's context cancellation on first
			// error would abort sibling tasks, which violates the
			// fail-soft contract — every tuple gets its own outcome.
			return nil
		})
	}
	_ = g.Wait()

	return errs
}

// InlineFetch runs a single fetch outside the pre-fetch pool, for
// per-player prop lookups that cannot be batched by (home, away)
// alone. It shares the same deadline discipline as Plan.
func InlineFetch(ctx context.Context, t Tuple, fetch Fetcher, deadline time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()
	return fetch(ctx, t)
}
