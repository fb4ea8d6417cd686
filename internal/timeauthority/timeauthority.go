// Package timeauthority defines the Eastern-Time day window used for
// every "today's games" filter in the engine, and the zone-aware "now"
// helpers every other component must use instead of touching time.Now
// directly.
package timeauthority

import (
	"fmt"
	"time"
)

// Eastern is the America/New_York location every day-bound calculation
// is performed in, regardless of the time zone the data arrived in.
var Eastern = mustLoadEastern()

func mustLoadEastern() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		// time/tzdata is not vendored on every platform; fall back to a
		// fixed EST offset rather than panic, and mark it explicitly so
		// callers degrade loudly instead of silently drifting by an hour
		// during DST.
		return time.FixedZone("EST-fallback", -5*60*60)
	}
	return loc
}

// Clock supplies the current instant. Production code uses SystemClock;
// tests substitute a fixed clock.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the OS wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// Degraded reports whether the last NowET call fell back to a
// monotonic-only reading because the wall clock looked unreachable
// (a huge forward/backward jump since the previous call). Read via
// Authority.Degraded(), never a package global, so concurrent
// Authorities never contaminate each other.
type Authority struct {
	clock       Clock
	lastWall    time.Time
	lastMono    time.Time
	degraded    bool
	initialized bool
}

// NewAuthority builds a time authority backed by the system clock.
func NewAuthority() *Authority {
	return &Authority{clock: SystemClock{}}
}

// NewAuthorityWithClock builds a time authority backed by an injected
// clock, for tests.
func NewAuthorityWithClock(c Clock) *Authority {
	return &Authority{clock: c}
}

// maxPlausibleJump bounds how far the wall clock may move between two
// calls before we treat it as unreachable/unreliable and fall back to
// the last-known wall-clock offset plus elapsed monotonic time.
const maxPlausibleJump = 6 * time.Hour

// NowET returns the current instant in the America/New_York zone. If
// the wall clock appears to have jumped implausibly (more than
// maxPlausibleJump since the previous observation with no commensurate
// monotonic elapse) it synthesizes a reading from the last known
// wall-clock value plus the monotonic delta and marks the authority
// degraded.
func (a *Authority) NowET() time.Time {
	now := a.clock.Now().Round(0) // wall-clock reading only
	mono := time.Now()            // monotonic reading, independent of the clock
	if !a.initialized {
		a.lastWall = now
		a.lastMono = mono
		a.initialized = true
		return now.In(Eastern)
	}

	monoElapsed := mono.Sub(a.lastMono)
	wallElapsed := now.Sub(a.lastWall)
	drift := wallElapsed - monoElapsed
	if drift < 0 {
		drift = -drift
	}
	if drift > maxPlausibleJump {
		a.degraded = true
		synthetic := a.lastWall.Add(monoElapsed)
		a.lastWall = synthetic
		a.lastMono = mono
		return synthetic.In(Eastern)
	}

	a.degraded = false
	a.lastWall = now
	a.lastMono = mono
	return now.In(Eastern)
}

// Degraded reports whether the most recent NowET call detected an
// implausible wall-clock jump. Callers (the engine orchestrator) use
// this to annotate the response as degraded.
func (a *Authority) Degraded() bool {
	return a.degraded
}

// DayBounds returns the half-open ET window [start of day, start of
// next day) for the given ET-zoned instant's calendar date.
func DayBounds(etInstant time.Time) (start, end time.Time) {
	y, m, d := etInstant.In(Eastern).Date()
	start = time.Date(y, m, d, 0, 0, 0, 0, Eastern)
	end = start.Add(24 * time.Hour)
	return start, end
}

// DayBoundsForDate parses an explicit "YYYY-MM-DD" ET calendar date
// and returns its half-open window. Callers must never feed this a
// naive timestamp string from an upstream provider without first
// confirming which zone it was expressed in; this function itself
// always interprets the string as an ET calendar date.
func DayBoundsForDate(isoDate string) (start, end time.Time, err error) {
	d, err := time.ParseInLocation("2006-01-02", isoDate, Eastern)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid ET date %q: %w", isoDate, err)
	}
	start = d
	end = start.Add(24 * time.Hour)
	return start, end, nil
}

// InWindow reports whether t (any zone) falls within [start, end).
// A zero time.Time passed for start/end is treated as a caller bug and
// returns false rather than panicking, since this sits on the request
// hot path and must never crash a scoring run.
func InWindow(t, start, end time.Time) bool {
	if start.IsZero() || end.IsZero() {
		return false
	}
	return !t.Before(start) && t.Before(end)
}

// FormatET renders t in ET using the display layout used throughout
// the normalized output contract.
func FormatET(t time.Time) string {
	return t.In(Eastern).Format("2006-01-02T15:04:05-07:00")
}

// DateET renders only the ET calendar date, e.g. for the response's
// date_et field.
func DateET(t time.Time) string {
	return t.In(Eastern).Format("2006-01-02")
}
