// Package learning implements the statistical auto-grader and the
// rule-based trap loop: decay-weighted per-bucket accuracy
// aggregation over the durable prediction/outcome logs, bounded
// weight adjustment, and audit/lesson artifact generation.
package learning

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/greenbier/bestbets-engine/internal/config"
	"github.com/greenbier/bestbets-engine/internal/models"
)

// Index is a secondary SQLite read index over the flat JSONL
// prediction/outcome logs, rebuilt from scratch at the start of each
// grading run. It exists so the auto-grader can aggregate per-(sport,
// market, signal) bucket statistics with SQL instead of re-scanning
// and re-decoding the full JSONL history in Go on every run.
type Index struct {
	db *sql.DB
	mu sync.Mutex
}

const schema = `
CREATE TABLE IF NOT EXISTS samples (
	pick_id         TEXT NOT NULL,
	sport           TEXT NOT NULL,
	market          TEXT NOT NULL,
	signal          TEXT NOT NULL,
	contribution    REAL NOT NULL,
	outcome         TEXT NOT NULL,
	error_magnitude REAL,
	graded_at_utc   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_samples_bucket ON samples(sport, market, signal);
`

// OpenIndex opens (creating if absent) the SQLite file under
// grader_data/index.sqlite. A single connection is enforced via
// SetMaxOpenConns(1) — this index is rebuilt wholesale on each grading
// run, never concurrently written from two goroutines.
func OpenIndex(cfg *config.Config) (*Index, error) {
	path, err := cfg.PathUnder("grader_data/index.sqlite")
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating learning index directory: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open learning index: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init learning index schema: %w", err)
	}
	return &Index{db: db}, nil
}

// Close releases the underlying SQLite connection.
func (ix *Index) Close() error {
	if ix == nil || ix.db == nil {
		return nil
	}
	return ix.db.Close()
}

// Rebuild truncates and repopulates the index from the joined
// prediction history, flattening each record's per-signal
// contribution map into one row per (pick, signal) so bucket queries
// can run as plain SQL aggregates.
func (ix *Index) Rebuild(records []models.PredictionRecord) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	tx, err := ix.db.Begin()
	if err != nil {
		return fmt.Errorf("begin rebuild tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM samples`); err != nil {
		return fmt.Errorf("clear samples: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO samples
		(pick_id, sport, market, signal, contribution, outcome, error_magnitude, graded_at_utc)
		VALUES (?,?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if r.ActualOutcome == models.OutcomePending || r.GradedAtUTC == nil {
			continue
		}
		var errMag any
		if r.ErrorMagnitude != nil {
			errMag = *r.ErrorMagnitude
		}
		for signal, contribution := range r.SignalContributions {
			if _, err := stmt.Exec(
				r.PickID, r.Sport, r.StatTypeOrMarket, signal, contribution,
				string(r.ActualOutcome), errMag, r.GradedAtUTC.Format("2006-01-02T15:04:05Z07:00"),
			); err != nil {
				return fmt.Errorf("insert sample: %w", err)
			}
		}
	}

	return tx.Commit()
}

// Sample is one graded (signal, outcome) observation in a bucket,
// with AgeDays already computed relative to asOf so the caller can
// apply exponential recency decay in Go.
type Sample struct {
	Contribution   float64
	Outcome        models.Outcome
	ErrorMagnitude *float64
	AgeDays        float64
}

// Buckets returns the distinct (sport, market, signal) triples
// currently indexed, so the grader can iterate every bucket that has
// at least one graded sample without needing them enumerated ahead of
// time.
func (ix *Index) Buckets() ([]models.WeightKey, []string, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	rows, err := ix.db.Query(`SELECT DISTINCT sport, market, signal FROM samples`)
	if err != nil {
		return nil, nil, fmt.Errorf("query buckets: %w", err)
	}
	defer rows.Close()

	var keys []models.WeightKey
	var signals []string
	for rows.Next() {
		var sport, market, signal string
		if err := rows.Scan(&sport, &market, &signal); err != nil {
			return nil, nil, err
		}
		keys = append(keys, models.WeightKey{Sport: sport, Market: market})
		signals = append(signals, signal)
	}
	return keys, signals, rows.Err()
}

// BucketSamples returns every graded sample for one (sport, market,
// signal) bucket, with AgeDays computed against asOfUTC (an ISO-8601
// string so the comparison happens inside SQLite via julianday()).
func (ix *Index) BucketSamples(key models.WeightKey, signal, asOfUTC string) ([]Sample, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	rows, err := ix.db.Query(`
		SELECT contribution, outcome, error_magnitude,
			julianday(?) - julianday(graded_at_utc) AS age_days
		FROM samples
		WHERE sport = ? AND market = ? AND signal = ?`,
		asOfUTC, key.Sport, key.Market, signal)
	if err != nil {
		return nil, fmt.Errorf("query bucket samples: %w", err)
	}
	defer rows.Close()

	var out []Sample
	for rows.Next() {
		var s Sample
		var errMag sql.NullFloat64
		var outcome string
		if err := rows.Scan(&s.Contribution, &outcome, &errMag, &s.AgeDays); err != nil {
			return nil, err
		}
		s.Outcome = models.Outcome(outcome)
		if errMag.Valid {
			v := errMag.Float64
			s.ErrorMagnitude = &v
		}
		if s.AgeDays < 0 {
			s.AgeDays = 0
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
