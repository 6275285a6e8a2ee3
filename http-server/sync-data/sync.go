package sync_data

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/Rainbow-Platypus/projet-facturation-clients-script/http-server/response"
	"github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/service/reconcile"
)

type Syncer interface {
	Sync(ctx context.Context) (reconcile.Result, error)
}

type Response struct {
	Message string           `json:"message"`
	Result  reconcile.Result `json:"result"`
}

// SyncData runs a full ServiceNav sync. The sync is detached from the request
// so a dropped connection does not abort it halfway; timeout still bounds it.
func SyncData(log *slog.Logger, syncer Syncer, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.sync.SyncData"

		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), timeout)
		defer cancel()

		res, err := syncer.Sync(ctx)
		if err != nil {
			if errors.Is(err, reconcile.ErrSyncInProgress) {
				log.With(slog.String("op", op)).Warn("sync already running")
				response.Error(w, r, http.StatusConflict, "Une synchronisation est déjà en cours")
				return
			}

			log.With(
				slog.String("op", op),
				slog.String("error", err.Error()),
			).Error("sync failed")
			response.Error(w, r, http.StatusInternalServerError, "Erreur lors de la synchronisation")
			return
		}

		render.JSON(w, r, Response{Message: "Synchronisation réussie", Result: res})
	}
}
