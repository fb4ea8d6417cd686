// Package quota implements daily/monthly call accounting for provider
// clients, rolled over on ET date boundaries.
package quota

import (
	"sync"
	"time"

	"github.com/greenbier/bestbets-engine/internal/timeauthority"
)

// Limits bounds one integration's call volume.
type Limits struct {
	DailyMax   int
	MonthlyMax int
}

// Unlimited reports no quota ceiling; used for integrations billed
// flat-rate or not metered at all.
var Unlimited = Limits{DailyMax: 0, MonthlyMax: 0}

type counter struct {
	dayKey   string
	monthKey string
	daily    int
	monthly  int
}

// Tracker accounts calls per integration name. It is safe for
// concurrent use; one Tracker is shared process-wide (quota is a
// real-world resource budget, not a per-request concept, unlike
// telemetry — see internal/telemetry for the request-scoped analog).
type Tracker struct {
	mu       sync.Mutex
	limits   map[string]Limits
	counters map[string]*counter
	clock    func() time.Time
}

// NewTracker builds a Tracker with per-integration limits. A missing
// entry in limits is treated as Unlimited.
func NewTracker(limits map[string]Limits) *Tracker {
	return &Tracker{
		limits:   limits,
		counters: make(map[string]*counter),
		clock:    time.Now,
	}
}

func (t *Tracker) bucket(name string) *counter {
	c, ok := t.counters[name]
	if !ok {
		c = &counter{}
		t.counters[name] = c
	}
	now := t.clock()
	dayKey := timeauthority.DateET(now)
	monthKey := dayKey[:7] // "YYYY-MM" prefix of "YYYY-MM-DD"
	if c.dayKey != dayKey {
		c.dayKey = dayKey
		c.daily = 0
	}
	if c.monthKey != monthKey {
		c.monthKey = monthKey
		c.monthly = 0
	}
	return c
}

// Allow reports whether a call to name is currently within both its
// daily and monthly budgets, without consuming any quota.
func (t *Tracker) Allow(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	c := t.bucket(name)
	lim, ok := t.limits[name]
	if !ok {
		lim = Unlimited
	}
	if lim.DailyMax > 0 && c.daily >= lim.DailyMax {
		return false
	}
	if lim.MonthlyMax > 0 && c.monthly >= lim.MonthlyMax {
		return false
	}
	return true
}

// Consume records one call against name's budget. Callers must check
// Allow first; Consume does not itself reject.
func (t *Tracker) Consume(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	c := t.bucket(name)
	c.daily++
	c.monthly++
}

// Snapshot returns the current daily/monthly usage for name, for the
// debug/pool-stats surface.
func (t *Tracker) Snapshot(name string) (daily, monthly int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	c := t.bucket(name)
	return c.daily, c.monthly
}
