// Package scheduler implements the ET-cron job registry: grade,
// trap-eval, audit/lesson, line snapshot, season-extreme update, and
// model-retrain jobs, each introspectable and idempotent, plus a
// heartbeat artifact the health endpoint reads to decide STALE.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/greenbier/bestbets-engine/internal/timeauthority"
)

// JobFunc is one scheduled unit of work. Jobs must be idempotent —
// the scheduler makes no at-most-once guarantee across a restart that
// lands mid-run.
type JobFunc func(ctx context.Context) error

// JobStatus is the introspectable state of one registered job.
type JobStatus struct {
	Name        string    `json:"name"`
	Schedule    string    `json:"schedule"`
	LastRunUTC  time.Time `json:"last_run_utc,omitempty"`
	LastError   string    `json:"last_error,omitempty"`
	RunCount    int       `json:"run_count"`
}

// Scheduler wraps robfig/cron with ET-zoned scheduling and per-job
// status tracking.
type Scheduler struct {
	cron *cron.Cron

	mu     sync.Mutex
	status map[string]*JobStatus

	lastHeartbeat time.Time
}

// New builds a Scheduler whose cron expressions are interpreted in
// America/New_York, so every registered job runs on ET wall-clock time
// regardless of the host's local timezone.
func New() *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(timeauthority.Eastern)),
		status: make(map[string]*JobStatus),
	}
}

// Register adds a named job on an ET cron schedule. Returns an error
// if the schedule expression is malformed.
func (s *Scheduler) Register(name, schedule string, fn JobFunc) error {
	s.mu.Lock()
	s.status[name] = &JobStatus{Name: name, Schedule: schedule}
	s.mu.Unlock()

	_, err := s.cron.AddFunc(schedule, func() {
		s.run(name, fn)
	})
	if err != nil {
		return fmt.Errorf("scheduling job %q: %w", name, err)
	}
	return nil
}

func (s *Scheduler) run(name string, fn JobFunc) {
	ctx := context.Background()
	log.Info().Str("job", name).Msg("scheduled job starting")

	err := fn(ctx)

	s.mu.Lock()
	st := s.status[name]
	st.LastRunUTC = time.Now().UTC()
	st.RunCount++
	if err != nil {
		st.LastError = err.Error()
	} else {
		st.LastError = ""
	}
	s.lastHeartbeat = time.Now().UTC()
	s.mu.Unlock()

	if err != nil {
		log.Error().Str("job", name).Err(err).Msg("scheduled job failed")
	} else {
		log.Info().Str("job", name).Msg("scheduled job complete")
	}
}

// Start begins running registered jobs on their schedules.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.mu.Lock()
	s.lastHeartbeat = time.Now().UTC()
	s.mu.Unlock()
}

// Stop halts the cron scheduler, waiting for any in-flight job.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Status returns a snapshot of every job's introspectable state, for
// the /scheduler/status debug endpoint.
func (s *Scheduler) Status() []JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]JobStatus, 0, len(s.status))
	for _, st := range s.status {
		out = append(out, *st)
	}
	return out
}

// NextRun reports the next scheduled firing time (in ET) for a
// registered job, used by the /scheduler/status endpoint. Returns
// false if name was never registered or its schedule fails to parse.
func (s *Scheduler) NextRun(name string, now time.Time) (time.Time, bool) {
	s.mu.Lock()
	st, ok := s.status[name]
	s.mu.Unlock()
	if !ok {
		return time.Time{}, false
	}
	sched, err := cron.ParseStandard(st.Schedule)
	if err != nil {
		return time.Time{}, false
	}
	return sched.Next(now.In(timeauthority.Eastern)), true
}

// Heartbeat reports the last time any job ran, and whether that is
// STALE — more than 24h old. hasGradedPicksToday gates the check:
// a quiet off-season day with no picks is not considered stale.
func (s *Scheduler) Heartbeat(hasGradedPicksToday bool) (last time.Time, stale bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastHeartbeat.IsZero() {
		return time.Time{}, false
	}
	stale = hasGradedPicksToday && time.Since(s.lastHeartbeat) > 24*time.Hour
	return s.lastHeartbeat, stale
}
