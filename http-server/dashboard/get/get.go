package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"github.com/Rainbow-Platypus/projet-facturation-clients-script/http-server/response"
	"github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/service/billing"
	"github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/storage"
)

type ClientsProvider interface {
	ListClientsWithEquipment(ctx context.Context) ([]*storage.ClientWithEquipment, error)
}

type SettingsProvider interface {
	Get(ctx context.Context) (*storage.Settings, error)
}

// GetDashboard loads clients and the current price concurrently and returns
// the per-client billing with global totals.
func GetDashboard(log *slog.Logger, clients ClientsProvider, settings SettingsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.dashboard.GetDashboard"

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		var (
			list []*storage.ClientWithEquipment
			st   *storage.Settings
		)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			list, err = clients.ListClientsWithEquipment(gctx)
			return err
		})
		g.Go(func() error {
			var err error
			st, err = settings.Get(gctx)
			return err
		})

		if err := g.Wait(); err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("failed to build dashboard")
			response.Error(w, r, http.StatusInternalServerError, response.MsgInternal)
			return
		}

		render.JSON(w, r, billing.Summarize(list, st.PricePerEquipment))
	}
}
