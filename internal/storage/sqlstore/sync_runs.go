package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/storage"
)

// PendingSyncRun returns the latest run when it neither finished nor was
// abandoned, nil otherwise. Runs started in the same millisecond are ordered by id.
func (s *Storage) PendingSyncRun(ctx context.Context) (*storage.SyncRun, error) {
	const op = "storage.sqlstore.PendingSyncRun"

	var (
		run         storage.SyncRun
		startedAt   int64
		finishedAt  sql.NullInt64
		abandonedAt sql.NullInt64
	)

	err := s.q(ctx).QueryRowContext(ctx,
		`SELECT id, started_at, finished_at, abandoned_at FROM sync_runs ORDER BY started_at DESC, id DESC LIMIT 1`,
	).Scan(&run.ID, &startedAt, &finishedAt, &abandonedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if finishedAt.Valid || abandonedAt.Valid {
		return nil, nil
	}

	run.StartedAt = fromMillis(startedAt)

	return &run, nil
}

func (s *Storage) StartSyncRun(ctx context.Context) (*storage.SyncRun, error) {
	const op = "storage.sqlstore.StartSyncRun"

	run := &storage.SyncRun{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC().Truncate(time.Millisecond),
	}

	_, err := s.q(ctx).ExecContext(ctx, s.dialect.rebind(`INSERT INTO sync_runs (id, started_at) VALUES (?, ?)`),
		run.ID, run.StartedAt.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return run, nil
}

// SyncedCompanies lists the companies already committed in a run.
func (s *Storage) SyncedCompanies(ctx context.Context, runID string) (map[string]bool, error) {
	const op = "storage.sqlstore.SyncedCompanies"

	rows, err := s.q(ctx).QueryContext(ctx,
		s.dialect.rebind(`SELECT company_id FROM sync_run_companies WHERE run_id = ?`), runID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	done := make(map[string]bool)

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		done[id] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: iterate: %w", op, err)
	}

	return done, nil
}

func (s *Storage) MarkCompanySynced(ctx context.Context, runID, companyID string) error {
	const op = "storage.sqlstore.MarkCompanySynced"

	if _, err := s.q(ctx).ExecContext(ctx, s.dialect.rebind(s.dialect.markCompany), runID, companyID); err != nil {
		return fmt.Errorf("%s: run %s company %s: %w", op, runID, companyID, err)
	}

	return nil
}

func (s *Storage) FinishSyncRun(ctx context.Context, runID string) error {
	const op = "storage.sqlstore.FinishSyncRun"

	_, err := s.q(ctx).ExecContext(ctx, s.dialect.rebind(`UPDATE sync_runs SET finished_at = ? WHERE id = ?`),
		time.Now().UTC().UnixMilli(), runID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// AbandonSyncRun closes an unfinished run without completing it, so the next
// sync starts a full pass instead of resuming.
func (s *Storage) AbandonSyncRun(ctx context.Context, runID string) error {
	const op = "storage.sqlstore.AbandonSyncRun"

	_, err := s.q(ctx).ExecContext(ctx,
		s.dialect.rebind(`UPDATE sync_runs SET abandoned_at = ? WHERE id = ? AND finished_at IS NULL`),
		time.Now().UTC().UnixMilli(), runID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
