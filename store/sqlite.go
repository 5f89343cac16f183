// Package store persists per-rule run records in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/askel-dev/voxlife/metrics"
)

// RunRecord is the persisted shape of one rule's completed run: the rule
// identifier, the ordered per-generation metrics, and the class label.
type RunRecord struct {
	RuleID      int
	Size        int
	Generations int
	Variant     string
	Code        string
	Name        string
	Records     metrics.Trajectory
}

// Store wraps a SQLite database holding run records.
type Store struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

// New returns an unopened store for the given database path.
func New(path string) *Store {
	return &Store{path: path}
}

// Init opens the database, applies pragmas, and creates tables. Idempotent.
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return err
	}
	// SQLite works best with a single writer.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}
	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

// SaveRun upserts one rule's run record, replacing any previously stored
// metrics for that rule.
func (s *Store) SaveRun(ctx context.Context, rec RunRecord) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (rule_id, size, generations, variant, class_code, class_name)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(rule_id) DO UPDATE SET
			size = excluded.size,
			generations = excluded.generations,
			variant = excluded.variant,
			class_code = excluded.class_code,
			class_name = excluded.class_name
	`, rec.RuleID, rec.Size, rec.Generations, rec.Variant, rec.Code, rec.Name)
	if err != nil {
		return fmt.Errorf("upserting run %d: %w", rec.RuleID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM generation_metrics WHERE rule_id = ?`, rec.RuleID); err != nil {
		return fmt.Errorf("clearing metrics for rule %d: %w", rec.RuleID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO generation_metrics (
			rule_id, generation, population, extent, density,
			agg_mean, agg_min, agg_max, agg_std,
			survival_zone, low_band, high_band
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, m := range rec.Records {
		_, err := stmt.ExecContext(ctx,
			rec.RuleID, m.Index, m.Population, m.Extent, m.Density,
			m.AggMean, m.AggMin, m.AggMax, m.AggStd,
			m.SurvivalZone, m.LowBand, m.HighBand)
		if err != nil {
			return fmt.Errorf("inserting metrics for rule %d generation %d: %w", rec.RuleID, m.Index, err)
		}
	}

	return tx.Commit()
}

// GetRun loads one rule's run record. The second return value reports
// whether the rule was present.
func (s *Store) GetRun(ctx context.Context, ruleID int) (RunRecord, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return RunRecord{}, false, err
	}

	rec := RunRecord{RuleID: ruleID}
	err = db.QueryRowContext(ctx, `
		SELECT size, generations, variant, class_code, class_name
		FROM runs WHERE rule_id = ?
	`, ruleID).Scan(&rec.Size, &rec.Generations, &rec.Variant, &rec.Code, &rec.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunRecord{}, false, nil
		}
		return RunRecord{}, false, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT generation, population, extent, density,
			agg_mean, agg_min, agg_max, agg_std,
			survival_zone, low_band, high_band
		FROM generation_metrics WHERE rule_id = ? ORDER BY generation
	`, ruleID)
	if err != nil {
		return RunRecord{}, false, err
	}
	defer rows.Close()

	for rows.Next() {
		var m metrics.Record
		err := rows.Scan(&m.Index, &m.Population, &m.Extent, &m.Density,
			&m.AggMean, &m.AggMin, &m.AggMax, &m.AggStd,
			&m.SurvivalZone, &m.LowBand, &m.HighBand)
		if err != nil {
			return RunRecord{}, false, fmt.Errorf("scanning metrics for rule %d: %w", ruleID, err)
		}
		rec.Records = append(rec.Records, m)
	}
	if err := rows.Err(); err != nil {
		return RunRecord{}, false, err
	}
	return rec, true, nil
}

// RuleIDs lists the stored rules in ascending order.
func (s *Store) RuleIDs(ctx context.Context) ([]int, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT rule_id FROM runs ORDER BY rule_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UpdateLabel rewrites the stored class label of one rule, used when
// re-classifying with recalibrated thresholds.
func (s *Store) UpdateLabel(ctx context.Context, ruleID int, code, name string) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx,
		`UPDATE runs SET class_code = ?, class_name = ? WHERE rule_id = ?`,
		code, name, ruleID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("rule %d is not stored", ruleID)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			rule_id INTEGER PRIMARY KEY,
			size INTEGER NOT NULL,
			generations INTEGER NOT NULL,
			variant TEXT NOT NULL,
			class_code TEXT NOT NULL,
			class_name TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS generation_metrics (
			rule_id INTEGER NOT NULL,
			generation INTEGER NOT NULL,
			population INTEGER NOT NULL,
			extent REAL NOT NULL,
			density REAL NOT NULL,
			agg_mean REAL NOT NULL,
			agg_min INTEGER NOT NULL,
			agg_max INTEGER NOT NULL,
			agg_std REAL NOT NULL,
			survival_zone INTEGER NOT NULL,
			low_band INTEGER NOT NULL,
			high_band INTEGER NOT NULL,
			PRIMARY KEY (rule_id, generation)
		);
	`)
	return err
}
