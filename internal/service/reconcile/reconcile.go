package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/service/billing"
	"github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/servicenav"
	"github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/storage"
)

var ErrSyncInProgress = errors.New("a sync is already running")

// Source is the ServiceNav inventory.
type Source interface {
	FetchCompanies(ctx context.Context) ([]servicenav.Company, error)
	FetchClientEquipment(ctx context.Context, companyID string) ([]servicenav.Equipment, error)
}

type Store interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
	UpsertClient(ctx context.Context, c storage.Client) error
	UpsertEquipment(ctx context.Context, eq storage.Equipment) error

	PendingSyncRun(ctx context.Context) (*storage.SyncRun, error)
	StartSyncRun(ctx context.Context) (*storage.SyncRun, error)
	SyncedCompanies(ctx context.Context, runID string) (map[string]bool, error)
	MarkCompanySynced(ctx context.Context, runID, companyID string) error
	FinishSyncRun(ctx context.Context, runID string) error
	AbandonSyncRun(ctx context.Context, runID string) error
}

// DefaultResumeWindow bounds how old an interrupted run can be and still be resumed.
const DefaultResumeWindow = time.Hour

// Result summarizes one call to Sync.
type Result struct {
	RunID     string `json:"runId"`
	Resumed   bool   `json:"resumed"`
	Companies int    `json:"companies"`
	Skipped   int    `json:"skipped"`
	Equipment int    `json:"equipment"`
	Billable  int    `json:"billable"`
}

// Engine mirrors ServiceNav companies and equipment into the store.
type Engine struct {
	source Source
	store  Store
	log    *slog.Logger

	resumeWindow time.Duration
	now          func() time.Time

	mu sync.Mutex
}

type Option func(*Engine)

// WithResumeWindow sets how long an interrupted run may be resumed.
// Zero or less disables resuming.
func WithResumeWindow(d time.Duration) Option {
	return func(e *Engine) {
		e.resumeWindow = d
	}
}

func New(source Source, store Store, log *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		source:       source,
		store:        store,
		log:          log,
		resumeWindow: DefaultResumeWindow,
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Sync fetches every company and commits each one, client then equipment, in
// its own transaction. The first failure stops the sync: companies committed
// before it stay, and the next Sync resumes the same run by skipping them.
// A run is resumed once: if the resumed pass fails too, or the run is older
// than the resume window, it is abandoned and the next Sync covers every company.
func (e *Engine) Sync(ctx context.Context) (Result, error) {
	const op = "service.reconcile.Sync"

	if !e.mu.TryLock() {
		return Result{}, ErrSyncInProgress
	}
	defer e.mu.Unlock()

	log := e.log.With(slog.String("op", op))

	run, resumed, err := e.openRun(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}

	res := Result{RunID: run.ID, Resumed: resumed}
	log = log.With(slog.String("run_id", run.ID))

	done, err := e.store.SyncedCompanies(ctx, run.ID)
	if err != nil {
		return res, fmt.Errorf("%s: %w", op, err)
	}

	companies, err := e.source.FetchCompanies(ctx)
	if err != nil {
		e.abandonResumed(ctx, log, run.ID, resumed)
		return res, fmt.Errorf("%s: fetch companies: %w", op, err)
	}

	log.Info("sync started", slog.Int("companies", len(companies)), slog.Bool("resumed", resumed))

	for _, company := range companies {
		if done[company.ID] {
			res.Skipped++
			continue
		}

		equipment, billable, err := e.syncCompany(ctx, run.ID, company)
		if err != nil {
			log.Error("sync aborted",
				slog.String("company_id", company.ID),
				slog.Int("companies_done", res.Companies),
				slog.String("error", err.Error()),
			)
			e.abandonResumed(ctx, log, run.ID, resumed)
			return res, fmt.Errorf("%s: company %s: %w", op, company.ID, err)
		}

		res.Companies++
		res.Equipment += equipment
		res.Billable += billable

		log.Debug("company synced",
			slog.String("company_id", company.ID),
			slog.Int("equipment", equipment),
			slog.Int("billable", billable),
		)
	}

	if err := e.store.FinishSyncRun(ctx, run.ID); err != nil {
		return res, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("sync finished",
		slog.Int("companies", res.Companies),
		slog.Int("skipped", res.Skipped),
		slog.Int("equipment", res.Equipment),
		slog.Int("billable", res.Billable),
	)

	return res, nil
}

func (e *Engine) openRun(ctx context.Context) (*storage.SyncRun, bool, error) {
	run, err := e.store.PendingSyncRun(ctx)
	if err != nil {
		return nil, false, err
	}
	if run != nil {
		if e.resumeWindow > 0 && e.now().Sub(run.StartedAt) < e.resumeWindow {
			return run, true, nil
		}

		e.log.Info("abandoning stale sync run",
			slog.String("run_id", run.ID),
			slog.Time("started_at", run.StartedAt),
		)
		if err := e.store.AbandonSyncRun(ctx, run.ID); err != nil {
			return nil, false, err
		}
	}

	run, err = e.store.StartSyncRun(ctx)
	if err != nil {
		return nil, false, err
	}

	return run, false, nil
}

// abandonResumed drops a resumed run that failed again, so companies it
// already covered are not skipped forever.
func (e *Engine) abandonResumed(ctx context.Context, log *slog.Logger, runID string, resumed bool) {
	if !resumed {
		return
	}

	// the caller may have been cancelled; the bookkeeping must still land
	ctx = context.WithoutCancel(ctx)

	if err := e.store.AbandonSyncRun(ctx, runID); err != nil {
		log.Error("failed to abandon sync run", slog.String("error", err.Error()))
		return
	}

	log.Warn("resumed sync run failed again, next sync starts a full pass")
}

// syncCompany fetches outside the transaction so no connection is held
// across the upstream call.
func (e *Engine) syncCompany(ctx context.Context, runID string, company servicenav.Company) (int, int, error) {
	records, err := e.source.FetchClientEquipment(ctx, company.ID)
	if err != nil {
		return 0, 0, fmt.Errorf("fetch equipment: %w", err)
	}

	billable := 0

	err = e.store.WithinTx(ctx, func(ctx context.Context) error {
		if err := e.store.UpsertClient(ctx, storage.Client{ID: company.ID, Name: company.Name}); err != nil {
			return err
		}

		for _, rec := range records {
			eq := storage.Equipment{
				ID:         rec.ID,
				Name:       rec.HostName,
				Category:   rec.CategoryName,
				IsBillable: billing.IsBillable(rec.CategoryName),
				ClientID:   company.ID,
			}
			if eq.IsBillable {
				billable++
			}

			if err := e.store.UpsertEquipment(ctx, eq); err != nil {
				return err
			}
		}

		return e.store.MarkCompanySynced(ctx, runID, company.ID)
	})
	if err != nil {
		return 0, 0, err
	}

	return len(records), billable, nil
}
