package persistence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenbier/bestbets-engine/internal/config"
	"github.com/greenbier/bestbets-engine/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := &config.Config{VolumeMount: t.TempDir()}
	s, err := New(cfg)
	require.NoError(t, err)
	return s
}

func TestAppendAndReadPredictions(t *testing.T) {
	s := newTestStore(t)

	line := 3.5
	require.NoError(t, s.AppendPrediction(models.PredictionRecord{PickID: "p1", Sport: "NCAAM", Line: &line}))
	require.NoError(t, s.AppendPrediction(models.PredictionRecord{PickID: "p2", Sport: "NCAAM"}))

	preds, err := s.ReadPredictions()
	require.NoError(t, err)
	require.Len(t, preds, 2)
	assert.Equal(t, "p1", preds[0].PickID)
}

func TestReadPredictions_MissingFileIsEmptyNotError(t *testing.T) {
	s := newTestStore(t)
	preds, err := s.ReadPredictions()
	require.NoError(t, err)
	assert.Empty(t, preds)
}

func TestJoinedPredictions_MergesOutcomeByPickID(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.AppendPrediction(models.PredictionRecord{PickID: "p1", ActualOutcome: models.OutcomePending}))

	gradedAt := time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)
	require.NoError(t, s.AppendOutcome(models.OutcomeRecord{PickID: "p1", ActualOutcome: models.OutcomeHit, GradedAtUTC: gradedAt}))

	joined, err := s.JoinedPredictions()
	require.NoError(t, err)
	require.Len(t, joined, 1)
	assert.Equal(t, models.OutcomeHit, joined[0].ActualOutcome)
	require.NotNil(t, joined[0].GradedAtUTC)
	assert.Equal(t, gradedAt, *joined[0].GradedAtUTC)
}

func TestJoinedPredictions_UngradedStaysPending(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.AppendPrediction(models.PredictionRecord{PickID: "p2", ActualOutcome: models.OutcomePending}))

	joined, err := s.JoinedPredictions()
	require.NoError(t, err)
	require.Len(t, joined, 1)
	assert.Equal(t, models.OutcomePending, joined[0].ActualOutcome)
}

func TestLoadWeights_DefaultsToEmptyStore(t *testing.T) {
	s := newTestStore(t)
	ws, err := s.LoadWeights()
	require.NoError(t, err)
	assert.NotNil(t, ws.Weights)
}

func TestSaveThenLoadWeights_RoundTrips(t *testing.T) {
	s := newTestStore(t)
	ws := models.NewWeightStore()
	ws.Adjust(models.WeightKey{Sport: "NCAAM", Market: "spread"}, "sharp_signal", 0.05, 0.5, 1.5)
	require.NoError(t, s.SaveWeights(ws))

	loaded, err := s.LoadWeights()
	require.NoError(t, err)
	assert.InDelta(t, 1.05, loaded.Get(models.WeightKey{Sport: "NCAAM", Market: "spread"}, "sharp_signal"), 1e-9)
}

func TestAppendAuditEntryAndRecentAuditEntries(t *testing.T) {
	s := newTestStore(t)
	today := time.Now().UTC().Format("2006-01-02")
	require.NoError(t, s.AppendAuditEntry(today, models.AuditEntry{Source: "auto_grader", Sport: "NCAAM", Market: "spread", Signal: "sharp", Delta: 0.01}))

	entries, err := s.RecentAuditEntries(7)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "auto_grader", entries[0].Source)
}

func TestRecentAuditEntries_RespectsLookbackWindow(t *testing.T) {
	s := newTestStore(t)
	for _, day := range []string{"2026-01-01", "2026-01-02", "2026-01-03"} {
		require.NoError(t, s.AppendAuditEntry(day, models.AuditEntry{Source: "trap_loop", Sport: "NCAAM"}))
	}
	entries, err := s.RecentAuditEntries(2)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "only the two most recent days' logs should be read")
}

func TestSaveLessonThenLoadLatestLesson(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SaveLesson(models.Lesson{DateET: "2026-03-09", Summary: "first"}))
	require.NoError(t, s.SaveLesson(models.Lesson{DateET: "2026-03-10", Summary: "second"}))

	latest, err := s.LoadLatestLesson()
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "second", latest.Summary, "the most recently dated lesson file must win")
}

func TestLoadLatestLesson_NoneWrittenYetReturnsNilNil(t *testing.T) {
	s := newTestStore(t)
	latest, err := s.LoadLatestLesson()
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestLineSnapshotAppendAndRead(t *testing.T) {
	s := newTestStore(t)
	snap := LineSnapshot{ObservedAtUTC: "2026-03-10T12:00:00Z", EventID: "evt-1", Lines: map[string]float64{"draftkings": -3.5}}
	require.NoError(t, s.AppendLineSnapshot("NCAAM", snap))

	snaps, err := s.ReadLineSnapshots("NCAAM")
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, -3.5, snaps[0].Lines["draftkings"])
}

func TestTrapDefinitions_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	defs := []models.TrapDefinition{{ID: "trap1"}}
	require.NoError(t, s.SaveTrapDefinitions(defs))

	loaded, err := s.LoadTrapDefinitions()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "trap1", loaded[0].ID)
}
