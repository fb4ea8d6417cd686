package learning

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenbier/bestbets-engine/internal/config"
	"github.com/greenbier/bestbets-engine/internal/models"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	cfg := &config.Config{VolumeMount: t.TempDir()}
	ix, err := OpenIndex(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { ix.Close() })
	return ix
}

func gradedRecord(pickID, sport, market string, outcome models.Outcome, gradedAt time.Time) models.PredictionRecord {
	return models.PredictionRecord{
		PickID:              pickID,
		Sport:               sport,
		StatTypeOrMarket:    market,
		ActualOutcome:       outcome,
		GradedAtUTC:         &gradedAt,
		SignalContributions: map[string]float64{"ai": 7.2, "research": 6.1},
	}
}

func TestRebuild_SkipsUngradedRecords(t *testing.T) {
	ix := newTestIndex(t)
	records := []models.PredictionRecord{
		{PickID: "p1", Sport: "ncaab", StatTypeOrMarket: "spread", ActualOutcome: models.OutcomePending},
	}
	require.NoError(t, ix.Rebuild(records))

	keys, signals, err := ix.Buckets()
	require.NoError(t, err)
	assert.Empty(t, keys)
	assert.Empty(t, signals)
}

func TestRebuild_FlattensOneRowPerSignal(t *testing.T) {
	ix := newTestIndex(t)
	records := []models.PredictionRecord{
		gradedRecord("p1", "ncaab", "spread", models.OutcomeHit, time.Now().Add(-24*time.Hour)),
	}
	require.NoError(t, ix.Rebuild(records))

	keys, signals, err := ix.Buckets()
	require.NoError(t, err)
	assert.Len(t, keys, 2, "two signals on the one record yield two distinct buckets")
	assert.ElementsMatch(t, []string{"ai", "research"}, signals)
}

func TestBucketSamples_ComputesNonNegativeAgeDays(t *testing.T) {
	ix := newTestIndex(t)
	records := []models.PredictionRecord{
		gradedRecord("p1", "ncaab", "spread", models.OutcomeHit, time.Now().Add(-48*time.Hour)),
	}
	require.NoError(t, ix.Rebuild(records))

	asOf := time.Now().UTC().Format("2006-01-02T15:04:05Z07:00")
	samples, err := ix.BucketSamples(models.WeightKey{Sport: "ncaab", Market: "spread"}, "ai", asOf)
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.InDelta(t, 2, samples[0].AgeDays, 0.1)
	assert.Equal(t, models.OutcomeHit, samples[0].Outcome)
}

func TestBucketSamples_UnknownBucketIsEmpty(t *testing.T) {
	ix := newTestIndex(t)
	require.NoError(t, ix.Rebuild(nil))

	samples, err := ix.BucketSamples(models.WeightKey{Sport: "ncaab", Market: "spread"}, "ai", time.Now().UTC().Format(time.RFC3339))
	require.NoError(t, err)
	assert.Empty(t, samples)
}

func TestRebuild_IsIdempotentAcrossRuns(t *testing.T) {
	ix := newTestIndex(t)
	records := []models.PredictionRecord{
		gradedRecord("p1", "ncaab", "spread", models.OutcomeHit, time.Now().Add(-time.Hour)),
	}
	require.NoError(t, ix.Rebuild(records))
	require.NoError(t, ix.Rebuild(records))

	keys, _, err := ix.Buckets()
	require.NoError(t, err)
	assert.Len(t, keys, 2, "rebuild must truncate before reinserting, not accumulate duplicates")
}

func TestClose_NilIndexIsSafe(t *testing.T) {
	var ix *Index
	assert.NoError(t, ix.Close())
}
