package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	generate_excel "github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/service/generate-excel"
	"github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/service/reconcile"
	"github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/service/settings"
	"github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/servicenav"
	"github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/storage/sqlstore"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and dashboard",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	engine, err := newEngine(store)
	if err != nil {
		return err
	}

	settingsService := settings.New(store, cfg.Billing)

	svc := services{
		storage:  store,
		engine:   engine,
		settings: settingsService,
		excel:    generate_excel.NewGenerateService(store, settingsService),
	}

	srv := &http.Server{
		Addr:        cfg.Address,
		Handler:     routes(cfg, log, svc),
		ReadTimeout: cfg.HTTPServer.Timeout,
		// POST /api/sync answers only once the sync is over
		WriteTimeout: max(cfg.HTTPServer.Timeout, cfg.HTTPServer.SyncTimeout),
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	if cfg.Sync.Interval > 0 {
		go periodicSync(ctx, log, engine, cfg.Sync.Interval)
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("server started", slog.String("address", cfg.Address), slog.String("storage", store.Driver()))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info("server stopped")

	return nil
}

func openStorage(ctx context.Context) (*sqlstore.Storage, error) {
	store, err := sqlstore.New(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(); err != nil {
		store.Close()
		return nil, err
	}

	return store, nil
}

func newEngine(store *sqlstore.Storage) (*reconcile.Engine, error) {
	source, err := servicenav.New(cfg.ServiceNav, log)
	if err != nil {
		return nil, err
	}

	return reconcile.New(source, store, log, reconcile.WithResumeWindow(cfg.Sync.ResumeWindow)), nil
}

// periodicSync runs the reconciliation every interval until ctx ends.
// Failures are logged; the next tick resumes the interrupted run.
func periodicSync(ctx context.Context, log *slog.Logger, engine *reconcile.Engine, interval time.Duration) {
	const op = "main.periodicSync"

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := engine.Sync(ctx); err != nil {
				if errors.Is(err, reconcile.ErrSyncInProgress) {
					log.Info("skipping scheduled sync, one is already running", slog.String("op", op))
					continue
				}
				log.Error("scheduled sync failed", slog.String("op", op), slog.String("error", err.Error()))
			}
		}
	}
}
