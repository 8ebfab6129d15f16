package replay

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const schema = `
CREATE TABLE IF NOT EXISTS lane_cycles (
	run_id       TEXT    NOT NULL,
	cycle_index  INTEGER NOT NULL,
	mono_time    REAL    NOT NULL,
	v_ego        REAL    NOT NULL,
	curvature    REAL    NOT NULL,
	d_prob       REAL    NOT NULL,
	lane_width   REAL    NOT NULL,
	model_json   TEXT    NOT NULL,
	input_json   TEXT    NOT NULL,
	output_json  TEXT,
	created_at   INTEGER NOT NULL,
	PRIMARY KEY (run_id, cycle_index)
);
CREATE INDEX IF NOT EXISTS idx_lane_cycles_run ON lane_cycles(run_id);
`

// Store persists recorded planner cycles in SQLite, keyed by run ID.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open database handle and ensures the schema exists.
func NewStore(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create lane_cycles schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Open opens (creating if necessary) a cycle store at the given path. Use
// ":memory:" for tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cycle store: %w", err)
	}
	return NewStore(db)
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// InsertCycles persists the records under runID. An empty runID gets a
// fresh UUID. Returns the run ID the cycles were stored under.
func (s *Store) InsertCycles(runID string, recs []CycleRecord) (string, error) {
	if runID == "" {
		runID = uuid.New().String()
	}
	now := time.Now().UnixNano()

	err := retryOnBusy(func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		defer tx.Rollback()

		stmt, err := tx.Prepare(`
			INSERT INTO lane_cycles (
				run_id, cycle_index, mono_time, v_ego, curvature,
				d_prob, lane_width, model_json, input_json, output_json, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i := range recs {
			rec := &recs[i]
			modelJSON, err := json.Marshal(rec.Model)
			if err != nil {
				return fmt.Errorf("marshal model for cycle %d: %w", rec.CycleIndex, err)
			}
			inputJSON, err := json.Marshal(rec.InputPath)
			if err != nil {
				return fmt.Errorf("marshal input path for cycle %d: %w", rec.CycleIndex, err)
			}
			var outputJSON interface{}
			if rec.OutputPath != nil {
				b, err := json.Marshal(rec.OutputPath)
				if err != nil {
					return fmt.Errorf("marshal output path for cycle %d: %w", rec.CycleIndex, err)
				}
				outputJSON = string(b)
			}

			if _, err := stmt.Exec(
				runID, rec.CycleIndex, rec.MonoTime, rec.VEgo, rec.Curvature,
				rec.DProb, rec.LaneWidth, string(modelJSON), string(inputJSON), outputJSON, now,
			); err != nil {
				return fmt.Errorf("insert cycle %d: %w", rec.CycleIndex, err)
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return "", err
	}
	return runID, nil
}

// ListRuns returns the distinct run IDs in the store, newest first.
func (s *Store) ListRuns() ([]string, error) {
	rows, err := s.db.Query(`
		SELECT run_id FROM lane_cycles
		GROUP BY run_id
		ORDER BY MAX(created_at) DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		runs = append(runs, id)
	}
	return runs, rows.Err()
}

// CyclesForRun returns a run's records in cycle order.
func (s *Store) CyclesForRun(runID string) ([]CycleRecord, error) {
	rows, err := s.db.Query(`
		SELECT run_id, cycle_index, mono_time, v_ego, curvature,
		       d_prob, lane_width, model_json, input_json, output_json
		FROM lane_cycles
		WHERE run_id = ?
		ORDER BY cycle_index ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("query cycles for run %s: %w", runID, err)
	}
	defer rows.Close()

	var recs []CycleRecord
	for rows.Next() {
		var rec CycleRecord
		var modelJSON, inputJSON string
		var outputJSON sql.NullString
		if err := rows.Scan(
			&rec.RunID, &rec.CycleIndex, &rec.MonoTime, &rec.VEgo, &rec.Curvature,
			&rec.DProb, &rec.LaneWidth, &modelJSON, &inputJSON, &outputJSON,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(modelJSON), &rec.Model); err != nil {
			return nil, fmt.Errorf("unmarshal model for cycle %d: %w", rec.CycleIndex, err)
		}
		if err := json.Unmarshal([]byte(inputJSON), &rec.InputPath); err != nil {
			return nil, fmt.Errorf("unmarshal input path for cycle %d: %w", rec.CycleIndex, err)
		}
		if outputJSON.Valid {
			if err := json.Unmarshal([]byte(outputJSON.String), &rec.OutputPath); err != nil {
				return nil, fmt.Errorf("unmarshal output path for cycle %d: %w", rec.CycleIndex, err)
			}
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// isSQLiteBusy reports whether err looks like SQLITE_BUSY contention.
func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// retryOnBusy retries fn with exponential backoff while it reports
// SQLITE_BUSY, up to 5 attempts.
func retryOnBusy(fn func() error) error {
	const maxAttempts = 5
	delay := 10 * time.Millisecond

	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err = fn()
		if err == nil || !isSQLiteBusy(err) {
			return err
		}
		if attempt < maxAttempts-1 {
			time.Sleep(delay)
			delay *= 2
		}
	}
	return err
}
