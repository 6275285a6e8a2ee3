package update

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"github.com/shopspring/decimal"

	"github.com/Rainbow-Platypus/projet-facturation-clients-script/http-server/response"
	"github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/service/settings"
	"github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/storage"
)

type SettingsUpdater interface {
	Update(ctx context.Context, st storage.Settings) (*storage.Settings, error)
}

type Request struct {
	PricePerEquipment *decimal.Decimal `json:"pricePerEquipment"`
	CacheExpiration   *int             `json:"cacheExpiration"`
}

func UpdateSettings(log *slog.Logger, updater SettingsUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.settings.UpdateSettings"

		var req Request
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Warn("invalid request body")
			response.Error(w, r, http.StatusBadRequest, response.MsgBadRequest)
			return
		}

		if req.PricePerEquipment == nil || req.CacheExpiration == nil {
			response.Error(w, r, http.StatusBadRequest, "pricePerEquipment et cacheExpiration sont requis")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		saved, err := updater.Update(ctx, storage.Settings{
			PricePerEquipment: *req.PricePerEquipment,
			CacheExpiration:   *req.CacheExpiration,
		})
		if err != nil {
			if errors.Is(err, settings.ErrInvalid) {
				response.Error(w, r, http.StatusBadRequest, err.Error())
				return
			}

			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("failed to save settings")
			response.Error(w, r, http.StatusInternalServerError, response.MsgInternal)
			return
		}

		log.With(slog.String("op", op)).Info("settings updated",
			slog.String("price_per_equipment", saved.PricePerEquipment.String()),
			slog.Int("cache_expiration", saved.CacheExpiration),
		)

		render.JSON(w, r, saved)
	}
}
