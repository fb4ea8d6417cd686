package learning

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/greenbier/bestbets-engine/internal/contract"
	"github.com/greenbier/bestbets-engine/internal/models"
	"github.com/greenbier/bestbets-engine/internal/persistence"
	"github.com/greenbier/bestbets-engine/internal/timeauthority"
)

// graderMaxSingleAdjustment bounds how far the auto-grader moves any
// one weight in a single run — smaller than the trap loop's cap
// (contract.TrapMaxSingleAdjustment), since the grader is continuous
// and compounding while a trap is a rare discrete event.
const graderMaxSingleAdjustment = 0.03

// graderWeightMin and graderWeightMax bound every weight the grader
// touches, matching the trap loop's own bound so a weight can never
// leave the range regardless of which path adjusted it last.
const (
	graderWeightMin = 0.5
	graderWeightMax = 1.5
)

// Grader is the statistical auto-grader: it aggregates decay-weighted
// hit-rate/error-magnitude statistics per (sport, market, signal)
// bucket and nudges internal/models.WeightStore accordingly, skipping
// any bucket the trap loop already adjusted within the
// reconciliation window.
type Grader struct {
	store *persistence.Store
	index *Index
}

// NewGrader builds a Grader over a durable Store and its SQLite
// secondary index.
func NewGrader(store *persistence.Store, index *Index) *Grader {
	return &Grader{store: store, index: index}
}

// Run executes one grading pass: rebuild the index from the joined
// prediction history, compute a bounded weight delta per graded
// bucket, skip any bucket the trap loop already touched within
// contract.TrapReconciliationWindow hours, apply survivors to the
// weight store, and persist one Lesson plus an AuditEntry per applied
// adjustment.
func (g *Grader) Run(now time.Time) (*models.Lesson, error) {
	records, err := g.store.JoinedPredictions()
	if err != nil {
		return nil, fmt.Errorf("loading joined predictions: %w", err)
	}
	if err := g.index.Rebuild(records); err != nil {
		return nil, fmt.Errorf("rebuilding learning index: %w", err)
	}

	keys, signals, err := g.index.Buckets()
	if err != nil {
		return nil, fmt.Errorf("listing buckets: %w", err)
	}

	recentAudits, err := g.store.RecentAuditEntries(2)
	if err != nil {
		return nil, fmt.Errorf("reading recent audit entries: %w", err)
	}
	trapTouched := trapTouchedSince(recentAudits, now.Add(-contract.TrapReconciliationWindow*time.Hour))

	ws, err := g.store.LoadWeights()
	if err != nil {
		return nil, fmt.Errorf("loading weight store: %w", err)
	}

	asOf := now.UTC().Format("2006-01-02T15:04:05Z07:00")
	lesson := &models.Lesson{
		DateET:         timeauthority.DateET(now),
		GeneratedAtUTC: now.UTC(),
	}

	for i, key := range keys {
		signal := signals[i]
		samples, err := g.index.BucketSamples(key, signal, asOf)
		if err != nil {
			return nil, fmt.Errorf("bucket samples (%s/%s): %w", key.String(), signal, err)
		}
		lesson.SamplesConsidered += len(samples)
		if len(samples) < contract.AutoGraderMinSamples {
			continue
		}

		bucketKey := key.String() + "|" + signal
		if trapTouched[bucketKey] {
			lesson.AdjustmentsSkipped = append(lesson.AdjustmentsSkipped, models.SkippedAdjustment{
				Sport:  key.Sport,
				Market: key.Market,
				Signal: signal,
				Reason: "trap loop adjusted this parameter within the reconciliation window",
			})
			continue
		}

		delta := decayedDelta(samples)
		if delta == 0 {
			continue
		}

		newWeight := ws.Adjust(key, signal, delta, graderWeightMin, graderWeightMax)
		entry := models.AuditEntry{
			TimestampUTC: now.UTC(),
			Source:       "auto_grader",
			Sport:        key.Sport,
			Market:       key.Market,
			Signal:       signal,
			Delta:        delta,
			Reason:       fmt.Sprintf("decay-weighted grading over %d samples moved weight to %.4f", len(samples), newWeight),
		}
		if err := g.store.AppendAuditEntry(lesson.DateET, entry); err != nil {
			return nil, fmt.Errorf("appending audit entry: %w", err)
		}
		lesson.AdjustmentsApplied = append(lesson.AdjustmentsApplied, entry)
	}

	if err := g.store.SaveWeights(ws); err != nil {
		return nil, fmt.Errorf("saving weight store: %w", err)
	}

	lesson.Summary = fmt.Sprintf("%d samples considered, %d adjustments applied, %d skipped for trap reconciliation",
		lesson.SamplesConsidered, len(lesson.AdjustmentsApplied), len(lesson.AdjustmentsSkipped))
	if err := g.store.SaveLesson(*lesson); err != nil {
		return nil, fmt.Errorf("saving lesson: %w", err)
	}

	log.Info().
		Int("buckets", len(keys)).
		Int("applied", len(lesson.AdjustmentsApplied)).
		Int("skipped", len(lesson.AdjustmentsSkipped)).
		Msg("auto-grader run complete")

	return lesson, nil
}

// decayedDelta converts a bucket's samples into a single bounded
// weight delta: a decay-weighted hit rate above 0.5 pushes the weight
// up, below pushes it down, scaled by how far from neutral the rate
// sits and capped at graderMaxSingleAdjustment.
func decayedDelta(samples []Sample) float64 {
	var weightSum, hitSum float64
	for _, s := range samples {
		w := decayWeight(s.AgeDays)
		weightSum += w
		if s.Outcome == models.OutcomeHit {
			hitSum += w
		} else if s.Outcome == models.OutcomePush {
			hitSum += w * 0.5
		}
	}
	if weightSum == 0 {
		return 0
	}
	hitRate := hitSum / weightSum
	delta := (hitRate - 0.5) * 2 * graderMaxSingleAdjustment
	if delta > graderMaxSingleAdjustment {
		delta = graderMaxSingleAdjustment
	}
	if delta < -graderMaxSingleAdjustment {
		delta = -graderMaxSingleAdjustment
	}
	return delta
}

// decayWeight applies the exponential recency decay: a sample aged
// ageDays carries weight contract.AutoGraderDecayPerDay^ageDays.
func decayWeight(ageDays float64) float64 {
	return math.Pow(contract.AutoGraderDecayPerDay, ageDays)
}

// trapTouchedSince builds a set of "sport:market|signal" keys the
// trap loop adjusted at or after cutoff.
func trapTouchedSince(entries []models.AuditEntry, cutoff time.Time) map[string]bool {
	touched := make(map[string]bool)
	for _, e := range entries {
		if e.Source != "trap_loop" {
			continue
		}
		if e.TimestampUTC.Before(cutoff) {
			continue
		}
		key := models.WeightKey{Sport: e.Sport, Market: e.Market}.String() + "|" + e.Signal
		touched[key] = true
	}
	return touched
}
