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

type InvoicesProvider interface {
	ListInvoices(ctx context.Context, clientID string) ([]*storage.Invoice, error)
}

// GetInvoices lists invoices, filtered by the client_id query parameter when given.
func GetInvoices(log *slog.Logger, invoices InvoicesProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.invoices.GetInvoices"

		clientID := r.URL.Query().Get("client_id")

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		list, err := invoices.ListInvoices(ctx, clientID)
		if err != nil {
			log.With(
				slog.String("op", op),
				slog.String("client_id", clientID),
				slog.String("error", err.Error()),
			).Error("failed to fetch invoices")
			response.Error(w, r, http.StatusInternalServerError, response.MsgInternal)
			return
		}

		render.JSON(w, r, list)
	}
}
