package learning

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/greenbier/bestbets-engine/internal/models"
	"github.com/greenbier/bestbets-engine/internal/persistence"
)

// TrapLoop evaluates every active models.TrapDefinition against the
// graded prediction history and applies bounded weight adjustments
// when a trap's condition fires and its guards (cooldown, lifetime
// cap, weekly cap) pass.
type TrapLoop struct {
	store *persistence.Store
}

// NewTrapLoop builds a TrapLoop over a durable Store.
func NewTrapLoop(store *persistence.Store) *TrapLoop {
	return &TrapLoop{store: store}
}

// Run walks every graded prediction against every active trap,
// writing one TrapEvaluation row per (trap, prediction) pair whether
// or not it matched, and applying+auditing the ones that fire and
// clear their guards.
func (tl *TrapLoop) Run(now time.Time) error {
	traps, err := tl.store.LoadTrapDefinitions()
	if err != nil {
		return fmt.Errorf("loading trap definitions: %w", err)
	}
	if len(traps) == 0 {
		return nil
	}

	records, err := tl.store.JoinedPredictions()
	if err != nil {
		return fmt.Errorf("loading joined predictions: %w", err)
	}

	ws, err := tl.store.LoadWeights()
	if err != nil {
		return fmt.Errorf("loading weight store: %w", err)
	}

	applied := 0
	for i := range traps {
		trap := &traps[i]
		if trap.Status != models.TrapActive {
			continue
		}
		resetWeeklyWindowIfExpired(trap, now)

		for _, r := range records {
			if r.ActualOutcome == models.OutcomePending {
				continue
			}
			if trap.Sport != "" && trap.Sport != r.Sport {
				continue
			}
			facts := factsFromRecord(r)

			eval := models.TrapEvaluation{
				TimestampUTC: now.UTC(),
				TrapID:       trap.ID,
				PickID:       r.PickID,
				Matched:      trap.Condition.Evaluate(facts),
			}
			if !eval.Matched {
				if err := tl.store.AppendTrapEvaluation(eval); err != nil {
					return err
				}
				continue
			}

			ok, reason := checkGuards(trap, now)
			eval.GuardsPassed = ok
			if !ok {
				eval.SkipReason = reason
				if err := tl.store.AppendTrapEvaluation(eval); err != nil {
					return err
				}
				continue
			}

			delta := boundedTrapDelta(trap)
			key := models.WeightKey{Sport: trap.Sport, Market: trap.TargetEngine}
			newWeight := ws.Adjust(key, trap.TargetParameter, delta, 0.5, 1.5)

			trap.LifetimeAdjustment += delta
			nowCopy := now.UTC()
			trap.LastTriggeredAtUTC = &nowCopy
			trap.TriggersThisWeek++

			eval.Applied = true
			if err := tl.store.AppendTrapEvaluation(eval); err != nil {
				return err
			}

			entry := models.AuditEntry{
				TimestampUTC: now.UTC(),
				Source:       "trap_loop",
				Sport:        trap.Sport,
				Market:       trap.TargetEngine,
				Signal:       trap.TargetParameter,
				Delta:        delta,
				Reason:       fmt.Sprintf("trap %s fired on pick %s, weight now %.4f", trap.ID, r.PickID, newWeight),
				TrapID:       trap.ID,
			}
			if err := tl.store.AppendAuditEntry(entry.TimestampUTC.Format("2006-01-02"), entry); err != nil {
				return err
			}
			applied++
		}
	}

	if err := tl.store.SaveWeights(ws); err != nil {
		return fmt.Errorf("saving weight store: %w", err)
	}
	if err := tl.store.SaveTrapDefinitions(traps); err != nil {
		return fmt.Errorf("saving trap definitions: %w", err)
	}

	log.Info().Int("traps", len(traps)).Int("applied", applied).Msg("trap loop run complete")
	return nil
}

// checkGuards enforces the cooldown, lifetime-cap, and weekly-cap
// rules in that order, returning the first one that fails.
func checkGuards(trap *models.TrapDefinition, now time.Time) (bool, string) {
	if trap.LastTriggeredAtUTC != nil && now.Sub(*trap.LastTriggeredAtUTC) < trap.Cooldown {
		return false, "cooldown active"
	}
	if math.Abs(trap.LifetimeAdjustment)+math.Abs(trap.SingleTriggerCap) > trap.LifetimeCap {
		return false, "lifetime adjustment cap reached"
	}
	if trap.TriggersThisWeek >= trap.MaxTriggersPerWeek {
		return false, "weekly trigger cap reached"
	}
	return true, ""
}

// boundedTrapDelta clamps the trap's configured single-trigger delta
// to its own magnitude cap — SingleTriggerCap is signed, carrying both
// the direction and the cap.
func boundedTrapDelta(trap *models.TrapDefinition) float64 {
	cap := math.Abs(trap.SingleTriggerCap)
	if trap.SingleTriggerCap < 0 {
		return -cap
	}
	return cap
}

// resetWeeklyWindowIfExpired rolls TriggersThisWeek back to zero once
// 7 days have elapsed since the window started.
func resetWeeklyWindowIfExpired(trap *models.TrapDefinition, now time.Time) {
	if trap.WeekWindowStartUTC == nil || now.Sub(*trap.WeekWindowStartUTC) >= 7*24*time.Hour {
		nowCopy := now.UTC()
		trap.WeekWindowStartUTC = &nowCopy
		trap.TriggersThisWeek = 0
	}
}

// factsFromRecord builds the flat fact map a trap condition evaluates
// against: the graded outcome plus the pre-game engine scores and
// final score, enriched with day-of-week since several traps key off
// calendar timing.
func factsFromRecord(r models.PredictionRecord) map[string]any {
	return map[string]any{
		"outcome":        string(r.ActualOutcome),
		"sport":          r.Sport,
		"market":         r.StatTypeOrMarket,
		"pick_type":      string(r.PickType),
		"final_score":    r.FinalScore,
		"ai_score":       r.Engines.AI,
		"research_score": r.Engines.Research,
		"esoteric_score": r.Engines.Esoteric,
		"jarvis_score":   r.Engines.Jarvis,
		"tier":           r.Tier,
		"day_of_week":    int(r.CreatedAtUTC.Weekday()),
	}
}
