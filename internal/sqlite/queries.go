// File path: internal/sqlite/queries.go
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ErrRunNotFound is returned when no run matches the identifier.
var ErrRunNotFound = errors.New("run not found")

// StartRun inserts a running row with a fresh identifier.
func (s *Store) StartRun(ctx context.Context, provider, policy string) (Run, error) {
	if err := s.ensureReady(); err != nil {
		return Run{}, err
	}
	run := Run{
		ID:        uuid.NewString(),
		Status:    StatusRunning,
		Provider:  provider,
		Policy:    policy,
		StartedAt: time.Now().UTC(),
	}
	if _, err := s.db.NamedExecContext(ctx, `INSERT INTO runs(id, status, provider, policy, started_at)
                VALUES(:id, :status, :provider, :policy, :started_at)`, run); err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// FinishRun closes a run and stores its section outcomes in one transaction.
func (s *Store) FinishRun(ctx context.Context, id, status, outputPath, message string, sections []SectionRecord) error {
	if err := s.ensureReady(); err != nil {
		return err
	}
	return withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE runs SET status = ?, output_path = ?, error = ?, finished_at = ? WHERE id = ?`,
			status, outputPath, message, time.Now().UTC(), id)
		if err != nil {
			return fmt.Errorf("update run: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("%w: %s", ErrRunNotFound, id)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM sections WHERE run_id = ?`, id); err != nil {
			return fmt.Errorf("clear sections: %w", err)
		}
		for i, section := range sections {
			section.RunID = id
			section.Position = i + 1
			if _, err := tx.NamedExecContext(ctx, `INSERT INTO sections(run_id, position, dimension, status, issue_count, worst_factors, message)
                        VALUES(:run_id, :position, :dimension, :status, :issue_count, :worst_factors, :message)`, section); err != nil {
				return fmt.Errorf("insert section %s: %w", section.Dimension, err)
			}
		}
		return nil
	})
}

// ListRuns returns the most recent runs first. A non-positive limit means 50.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	runs := []Run{}
	if err := s.db.SelectContext(ctx, &runs, `SELECT * FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit); err != nil {
		return nil, fmt.Errorf("select runs: %w", err)
	}
	return runs, nil
}

// GetRun loads a run and its sections.
func (s *Store) GetRun(ctx context.Context, id string) (RunDetail, error) {
	if err := s.ensureReady(); err != nil {
		return RunDetail{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return RunDetail{}, errors.New("run id required")
	}
	var detail RunDetail
	if err := s.db.GetContext(ctx, &detail.Run, `SELECT * FROM runs WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunDetail{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
		}
		return RunDetail{}, fmt.Errorf("select run: %w", err)
	}
	detail.Sections = []SectionRecord{}
	if err := s.db.SelectContext(ctx, &detail.Sections, `SELECT * FROM sections WHERE run_id = ? ORDER BY position`, id); err != nil {
		return RunDetail{}, fmt.Errorf("select sections: %w", err)
	}
	return detail, nil
}
