package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StartRun records a new run in the running state and returns it
func (s *Store) StartRun(sourcePath string) (*Run, error) {
	run := &Run{
		ID:         uuid.New().String(),
		SourcePath: sourcePath,
		Status:     StatusRunning,
		StartedAt:  time.Now().UTC(),
	}

	_, err := s.db.Exec(`
		INSERT INTO runs (id, source_path, status, started_at)
		VALUES (?, ?, ?, ?)
	`, run.ID, run.SourcePath, run.Status, run.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to record run: %w", err)
	}
	return run, nil
}

// FinishRun stores the final state of run together with its stage results
func (s *Store) FinishRun(run *Run, stages []StageResult) error {
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now().UTC()
	}

	return s.Transaction(func(tx *sql.Tx) error {
		res, err := tx.Exec(`
			UPDATE runs
			SET snapshot_path = ?, encoding = ?, rows_in = ?, rows_out = ?,
			    status = ?, error = ?, finished_at = ?
			WHERE id = ?
		`, run.SnapshotPath, run.Encoding, run.RowsIn, run.RowsOut,
			run.Status, run.Error, run.FinishedAt, run.ID)
		if err != nil {
			return fmt.Errorf("failed to update run: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("run %s not found", run.ID)
		}

		stmt, err := tx.Prepare(`
			INSERT OR REPLACE INTO stage_results
			(run_id, seq, stage, rows_before, rows_after, changed, skipped, note, duration_ms)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, st := range stages {
			skipped := 0
			if st.Skipped {
				skipped = 1
			}
			if _, err := stmt.Exec(run.ID, i+1, st.Stage, st.RowsBefore, st.RowsAfter,
				st.Changed, skipped, st.Note, st.DurationMs); err != nil {
				return fmt.Errorf("failed to record stage %s: %w", st.Stage, err)
			}
		}
		return nil
	})
}

const runColumns = `
	id, source_path, COALESCE(snapshot_path, ''), COALESCE(encoding, ''),
	rows_in, rows_out, status, COALESCE(error, ''), started_at, finished_at
`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (*Run, error) {
	var run Run
	var finished sql.NullTime
	err := row.Scan(&run.ID, &run.SourcePath, &run.SnapshotPath, &run.Encoding,
		&run.RowsIn, &run.RowsOut, &run.Status, &run.Error, &run.StartedAt, &finished)
	if err != nil {
		return nil, err
	}
	if finished.Valid {
		run.FinishedAt = finished.Time
	}
	return &run, nil
}

// GetRun returns the run with the given id, or nil if there is none
func (s *Store) GetRun(id string) (*Run, error) {
	run, err := scanRun(s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns up to limit runs, newest first
func (s *Store) ListRuns(limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = -1 // no limit
	}
	rows, err := s.db.Query(`
		SELECT `+runColumns+`
		FROM runs
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// LatestRun returns the most recent successful run, or nil
func (s *Store) LatestRun() (*Run, error) {
	run, err := scanRun(s.db.QueryRow(`
		SELECT `+runColumns+`
		FROM runs
		WHERE status = ?
		ORDER BY started_at DESC, rowid DESC
		LIMIT 1
	`, StatusSucceeded))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// GetStageResults returns the stage results of a run in pipeline order
func (s *Store) GetStageResults(runID string) ([]StageResult, error) {
	rows, err := s.db.Query(`
		SELECT run_id, seq, stage, rows_before, rows_after, changed, skipped, COALESCE(note, ''), duration_ms
		FROM stage_results
		WHERE run_id = ?
		ORDER BY seq
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []StageResult
	for rows.Next() {
		var r StageResult
		var skipped int
		if err := rows.Scan(&r.RunID, &r.Seq, &r.Stage, &r.RowsBefore, &r.RowsAfter,
			&r.Changed, &skipped, &r.Note, &r.DurationMs); err != nil {
			return nil, err
		}
		r.Skipped = skipped == 1
		results = append(results, r)
	}
	return results, rows.Err()
}

// CountRuns returns the number of recorded runs by status
func (s *Store) CountRuns() (map[string]int, error) {
	rows, err := s.db.Query(`SELECT status, COUNT(*) FROM runs GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
