package save

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/render"
	"github.com/shopspring/decimal"

	"github.com/Rainbow-Platypus/projet-facturation-clients-script/http-server/response"
	"github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/storage"
)

type InvoiceSaver interface {
	CreateInvoice(ctx context.Context, inv storage.Invoice) (*storage.Invoice, error)
}

// Request accepts amount as a JSON number or string, date as YYYY-MM-DD or RFC 3339.
type Request struct {
	ClientID string           `json:"clientId"`
	Amount   *decimal.Decimal `json:"amount"`
	Date     string           `json:"date"`
}

func SaveInvoice(log *slog.Logger, saver InvoiceSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.invoices.SaveInvoice"

		var req Request
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Warn("invalid request body")
			response.Error(w, r, http.StatusBadRequest, response.MsgBadRequest)
			return
		}

		inv, msg := req.toInvoice()
		if msg != "" {
			response.Error(w, r, http.StatusBadRequest, msg)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		created, err := saver.CreateInvoice(ctx, inv)
		if err != nil {
			if errors.Is(err, storage.ErrUnknownClient) {
				log.With(slog.String("op", op), slog.String("client_id", inv.ClientID)).Warn("invoice for unknown client")
				response.Error(w, r, http.StatusBadRequest, "Client inconnu")
				return
			}

			log.With(
				slog.String("op", op),
				slog.String("client_id", inv.ClientID),
				slog.String("error", err.Error()),
			).Error("failed to create invoice")
			response.Error(w, r, http.StatusInternalServerError, response.MsgInternal)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, created)
	}
}

func (req Request) toInvoice() (storage.Invoice, string) {
	clientID := strings.TrimSpace(req.ClientID)
	if clientID == "" {
		return storage.Invoice{}, "clientId est requis"
	}
	if req.Amount == nil {
		return storage.Invoice{}, "amount est requis"
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return storage.Invoice{}, "date invalide, format attendu AAAA-MM-JJ"
	}

	return storage.Invoice{ClientID: clientID, Amount: *req.Amount, Date: date}, ""
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
