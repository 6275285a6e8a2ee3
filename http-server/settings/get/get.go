package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/Rainbow-Platypus/projet-facturation-clients-script/http-server/response"
	"github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/storage"
)

type SettingsProvider interface {
	Get(ctx context.Context) (*storage.Settings, error)
}

func GetSettings(log *slog.Logger, settings SettingsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.settings.GetSettings"

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		st, err := settings.Get(ctx)
		if err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("failed to fetch settings")
			response.Error(w, r, http.StatusInternalServerError, response.MsgInternal)
			return
		}

		render.JSON(w, r, st)
	}
}
