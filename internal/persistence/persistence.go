// Package persistence implements the durable storage layer:
// append-only JSONL prediction/outcome logs, coarse weight/trap
// snapshots, and audit/lesson artifacts, all resolved under a
// configured volume mount. This is deliberately flat-file, not a
// relational store — see DESIGN.md for the rationale.
package persistence

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/greenbier/bestbets-engine/internal/config"
	"github.com/greenbier/bestbets-engine/internal/models"
)

// Store is the single entry point for every durable read/write. One
// Store per process; its internal mutex serializes writes to the same
// file so concurrent requests never interleave partial JSON lines.
type Store struct {
	cfg *config.Config
	mu  sync.Mutex
}

// New builds a Store over cfg.VolumeMount, creating the fixed
// directory layout if absent.
func New(cfg *config.Config) (*Store, error) {
	s := &Store{cfg: cfg}
	dirs := []string{
		"predictions", "outcomes", "grader_data", "grader_data/audit_logs",
		"grader_data/lessons", "trap_learning", "line_history", "telemetry", "traps",
	}
	for _, d := range dirs {
		path, err := cfg.PathUnder(d)
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", d, err)
		}
	}
	return s, nil
}

func (s *Store) appendLine(rel string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.cfg.PathUnder(rel)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", rel, err)
	}
	defer f.Close()

	line, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling record for %s: %w", rel, err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("appending to %s: %w", rel, err)
	}
	return nil
}

// AppendPrediction writes one PredictionRecord to the append-only
// prediction log. Never mutated in place — grading fills fields later
// via AppendOutcome and a read-time join.
func (s *Store) AppendPrediction(r models.PredictionRecord) error {
	return s.appendLine("predictions/predictions.jsonl", r)
}

// AppendOutcome writes one OutcomeRecord, joined to its PredictionRecord
// at read time by PickID rather than rewriting the prediction row.
func (s *Store) AppendOutcome(o models.OutcomeRecord) error {
	return s.appendLine("outcomes/outcomes.jsonl", o)
}

// ReadPredictions loads every PredictionRecord currently on disk, in
// file order. Intended for the learning loop's look-back queries and
// the secondary sqlite index's backfill, not the request hot path.
func (s *Store) ReadPredictions() ([]models.PredictionRecord, error) {
	return readJSONL[models.PredictionRecord](s.cfg, "predictions/predictions.jsonl")
}

// ReadOutcomes loads every OutcomeRecord currently on disk.
func (s *Store) ReadOutcomes() ([]models.OutcomeRecord, error) {
	return readJSONL[models.OutcomeRecord](s.cfg, "outcomes/outcomes.jsonl")
}

func readJSONL[T any](cfg *config.Config, rel string) ([]T, error) {
	path, err := cfg.PathUnder(rel)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", rel, err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	var out []T
	for {
		var v T
		if err := dec.Decode(&v); err != nil {
			break
		}
		out = append(out, v)
	}
	return out, nil
}

// JoinedPredictions returns every PredictionRecord with its outcome
// fields filled in from the outcomes log, simulating the grading
// read-modify-append workflow without ever rewriting a prediction row.
func (s *Store) JoinedPredictions() ([]models.PredictionRecord, error) {
	preds, err := s.ReadPredictions()
	if err != nil {
		return nil, err
	}
	outcomes, err := s.ReadOutcomes()
	if err != nil {
		return nil, err
	}
	byPick := make(map[string]models.OutcomeRecord, len(outcomes))
	for _, o := range outcomes {
		byPick[o.PickID] = o
	}
	joined := make([]models.PredictionRecord, len(preds))
	for i, p := range preds {
		if o, ok := byPick[p.PickID]; ok {
			joined[i] = o.Joined(p)
		} else {
			joined[i] = p
		}
	}
	return joined, nil
}

// LoadWeights reads the coarse weight snapshot, returning an empty
// store if none has been written yet.
func (s *Store) LoadWeights() (*models.WeightStore, error) {
	path, err := s.cfg.PathUnder("grader_data/weights.json")
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return models.NewWeightStore(), nil
		}
		return nil, fmt.Errorf("reading weights: %w", err)
	}
	ws := models.NewWeightStore()
	if err := json.Unmarshal(data, ws); err != nil {
		return nil, fmt.Errorf("unmarshaling weights: %w", err)
	}
	return ws, nil
}

// SaveWeights overwrites the coarse weight snapshot. Called at most
// once per learning-loop run, not per request.
func (s *Store) SaveWeights(ws *models.WeightStore) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	path, err := s.cfg.PathUnder("grader_data/weights.json")
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(ws, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling weights: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// AppendAuditEntry writes one AuditEntry to the day's audit log.
func (s *Store) AppendAuditEntry(dateET string, e models.AuditEntry) error {
	return s.appendLine(filepath.Join("grader_data/audit_logs", dateET+".jsonl"), e)
}

// SaveLesson writes the one daily Lesson artifact.
func (s *Store) SaveLesson(l models.Lesson) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	path, err := s.cfg.PathUnder(filepath.Join("grader_data/lessons", l.DateET+".json"))
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling lesson: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// RecentAuditEntries reads every audit entry across the last lookback
// days of per-day audit logs, oldest file first. Used by the
// auto-grader to check whether the trap loop already touched a
// parameter within the grader's own reconciliation window.
func (s *Store) RecentAuditEntries(lookbackDays int) ([]models.AuditEntry, error) {
	dir, err := s.cfg.PathUnder("grader_data/audit_logs")
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing audit logs: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	if len(names) > lookbackDays {
		names = names[len(names)-lookbackDays:]
	}

	var out []models.AuditEntry
	for _, name := range names {
		rows, err := readJSONL[models.AuditEntry](s.cfg, filepath.Join("grader_data/audit_logs", name))
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}
	return out, nil
}

// LoadLatestLesson reads the most recently dated lesson artifact, for
// the /debug/training-status endpoint. Returns nil, nil if the
// auto-grader has never run.
func (s *Store) LoadLatestLesson() (*models.Lesson, error) {
	dir, err := s.cfg.PathUnder("grader_data/lessons")
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing lessons: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, nil
	}
	sort.Strings(names)
	latest := names[len(names)-1]

	data, err := os.ReadFile(filepath.Join(dir, latest))
	if err != nil {
		return nil, fmt.Errorf("reading lesson %s: %w", latest, err)
	}
	var l models.Lesson
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("unmarshaling lesson %s: %w", latest, err)
	}
	return &l, nil
}

// AppendTrapEvaluation writes one TrapEvaluation row.
func (s *Store) AppendTrapEvaluation(e models.TrapEvaluation) error {
	return s.appendLine("trap_learning/evaluations.jsonl", e)
}

// LoadTrapDefinitions reads the durable trap catalog.
func (s *Store) LoadTrapDefinitions() ([]models.TrapDefinition, error) {
	path, err := s.cfg.PathUnder("traps/traps.json")
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading traps: %w", err)
	}
	var traps []models.TrapDefinition
	if err := json.Unmarshal(data, &traps); err != nil {
		return nil, fmt.Errorf("unmarshaling traps: %w", err)
	}
	return traps, nil
}

// SaveTrapDefinitions overwrites the durable trap catalog.
func (s *Store) SaveTrapDefinitions(traps []models.TrapDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	path, err := s.cfg.PathUnder("traps/traps.json")
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(traps, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling traps: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// AppendLineSnapshot records one line-history observation for a sport.
// Written by the scheduler's periodic snapshot job; read back for the
// Hurst GLITCH component and reverse-line-movement detection.
func (s *Store) AppendLineSnapshot(sport string, snapshot LineSnapshot) error {
	return s.appendLine(filepath.Join("line_history", sport+".jsonl"), snapshot)
}

// LineSnapshot is one observed line across books at a point in time.
type LineSnapshot struct {
	ObservedAtUTC string             `json:"observed_at_utc"`
	EventID       string             `json:"event_id"`
	Lines         map[string]float64 `json:"lines"` // sportsbook -> line
}

// ReadLineSnapshots loads a sport's full line-history log.
func (s *Store) ReadLineSnapshots(sport string) ([]LineSnapshot, error) {
	return readJSONL[LineSnapshot](s.cfg, filepath.Join("line_history", sport+".jsonl"))
}

// SaveDailyTelemetry writes one day's aggregated telemetry snapshot.
func (s *Store) SaveDailyTelemetry(dateET string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	path, err := s.cfg.PathUnder(filepath.Join("telemetry", "daily_"+dateET+".json"))
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling daily telemetry: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
