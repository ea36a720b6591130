package storage

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/yurykabanov/logrotd/pkg/domain"
)

const (
	cycleInsertQuery = `
		INSERT INTO cycles (
			id, trigger_at, started_at, finished_at,
			rotated, deleted, failures, first_error
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	rotationInsertQuery = `
		INSERT INTO rotations (cycle_id, live_file, archive_file, bytes, error)
		VALUES (?, ?, ?, ?, ?)
	`

	cycleSelectRecent = `
		SELECT
			id, trigger_at, started_at, finished_at,
			rotated, deleted, failures, first_error
		FROM cycles
		ORDER BY started_at DESC
		LIMIT ?
	`
)

// CycleRepository is the sqlite journal of rotation cycles.
type CycleRepository struct {
	db *sqlx.DB
}

func NewCycleRepository(db *sqlx.DB) *CycleRepository {
	return &CycleRepository{
		db: db,
	}
}

func (r *CycleRepository) ObserveCycle(ctx context.Context, report domain.CycleReport) error {
	return r.Create(ctx, report)
}

// Create stores the cycle summary and one row per stream rotation in a single
// transaction.
func (r *CycleRepository) Create(ctx context.Context, report domain.CycleReport) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "unable to begin journal transaction")
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	s := report.Summary()

	_, err = tx.ExecContext(
		ctx, cycleInsertQuery,
		s.Id, s.TriggerAt, s.StartedAt, s.FinishedAt,
		s.Rotated, s.Deleted, s.Failures, s.FirstError,
	)
	if err != nil {
		return errors.Wrap(err, "unable to insert cycle")
	}

	stmt, err := tx.PrepareContext(ctx, rotationInsertQuery)
	if err != nil {
		return errors.Wrap(err, "unable to prepare rotation insert")
	}
	defer stmt.Close()

	for _, rot := range report.Rotations {
		var msg string
		if rot.CopyErr != nil {
			msg = rot.CopyErr.Error()
		} else if rot.TruncateErr != nil {
			msg = rot.TruncateErr.Error()
		}

		_, err = stmt.ExecContext(ctx, s.Id, rot.LiveFile, rot.ArchiveFile, rot.Bytes, msg)
		if err != nil {
			return errors.Wrapf(err, "unable to insert rotation of %s", rot.LiveFile)
		}
	}

	return errors.Wrap(tx.Commit(), "unable to commit journal transaction")
}

func (r *CycleRepository) FindRecent(ctx context.Context, limit int) ([]domain.CycleSummary, error) {
	var cycles []domain.CycleSummary

	err := r.db.SelectContext(ctx, &cycles, cycleSelectRecent, limit)
	if err != nil {
		return nil, err
	}

	return cycles, nil
}
