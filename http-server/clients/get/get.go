package get

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/Rainbow-Platypus/projet-facturation-clients-script/http-server/response"
	"github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/storage"
)

type ClientsProvider interface {
	ListClientsWithEquipment(ctx context.Context) ([]*storage.ClientWithEquipment, error)
	GetClient(ctx context.Context, id string) (*storage.ClientWithEquipment, error)
	ListClientEquipment(ctx context.Context, clientID string) ([]*storage.Equipment, error)
}

const msgClientNotFound = "Client introuvable"

func GetClients(log *slog.Logger, clients ClientsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.clients.GetClients"

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		list, err := clients.ListClientsWithEquipment(ctx)
		if err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("failed to fetch clients")
			response.Error(w, r, http.StatusInternalServerError, response.MsgInternal)
			return
		}

		render.JSON(w, r, list)
	}
}

func GetClient(log *slog.Logger, clients ClientsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.clients.GetClient"

		id := chi.URLParam(r, "id")

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		client, err := clients.GetClient(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrClientNotFound) {
				log.With(slog.String("op", op), slog.String("id", id)).Warn("client not found")
				response.Error(w, r, http.StatusNotFound, msgClientNotFound)
				return
			}

			log.With(
				slog.String("op", op),
				slog.String("id", id),
				slog.String("error", err.Error()),
			).Error("failed to fetch client")
			response.Error(w, r, http.StatusInternalServerError, response.MsgInternal)
			return
		}

		render.JSON(w, r, client)
	}
}

func GetClientEquipment(log *slog.Logger, clients ClientsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.clients.GetClientEquipment"

		id := chi.URLParam(r, "id")

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		equipment, err := clients.ListClientEquipment(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrClientNotFound) {
				log.With(slog.String("op", op), slog.String("id", id)).Warn("client not found")
				response.Error(w, r, http.StatusNotFound, msgClientNotFound)
				return
			}

			log.With(
				slog.String("op", op),
				slog.String("id", id),
				slog.String("error", err.Error()),
			).Error("failed to fetch equipment")
			response.Error(w, r, http.StatusInternalServerError, response.MsgInternal)
			return
		}

		render.JSON(w, r, equipment)
	}
}
