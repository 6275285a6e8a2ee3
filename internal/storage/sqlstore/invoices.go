package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/storage"
)

// CreateInvoice stores an invoice for an existing client and returns it with
// its generated id. An unknown client yields storage.ErrUnknownClient.
func (s *Storage) CreateInvoice(ctx context.Context, inv storage.Invoice) (*storage.Invoice, error) {
	const op = "storage.sqlstore.CreateInvoice"

	created := &storage.Invoice{
		ID:        uuid.NewString(),
		ClientID:  inv.ClientID,
		Amount:    inv.Amount,
		Date:      time.Date(inv.Date.Year(), inv.Date.Month(), inv.Date.Day(), 0, 0, 0, 0, time.UTC),
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}

	err := s.WithinTx(ctx, func(ctx context.Context) error {
		ok, err := s.ClientExists(ctx, inv.ClientID)
		if err != nil {
			return err
		}
		if !ok {
			return storage.ErrUnknownClient
		}

		_, err = s.q(ctx).ExecContext(ctx, s.dialect.rebind(`
			INSERT INTO invoices (id, client_id, amount, invoice_date, created_at)
			VALUES (?, ?, ?, ?, ?)`),
			created.ID, created.ClientID, created.Amount, dateParam(created.Date), created.CreatedAt.UnixMilli(),
		)
		if err != nil {
			if s.dialect.isForeignKeyViolation(err) {
				return storage.ErrUnknownClient
			}
			return fmt.Errorf("insert: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: client %s: %w", op, inv.ClientID, err)
	}

	return created, nil
}

// ListInvoices returns invoices newest first, only those of clientID when it is set.
func (s *Storage) ListInvoices(ctx context.Context, clientID string) ([]*storage.Invoice, error) {
	const op = "storage.sqlstore.ListInvoices"

	query := `SELECT id, client_id, amount, invoice_date, created_at FROM invoices`
	var args []any
	if clientID != "" {
		query += ` WHERE client_id = ?`
		args = append(args, clientID)
	}
	query += ` ORDER BY invoice_date DESC, created_at DESC`

	rows, err := s.q(ctx).QueryContext(ctx, s.dialect.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	invoices := make([]*storage.Invoice, 0)

	for rows.Next() {
		var (
			inv       storage.Invoice
			date      dbDate
			createdAt int64
		)
		if err := rows.Scan(&inv.ID, &inv.ClientID, &inv.Amount, &date, &createdAt); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		inv.Date = date.t
		inv.CreatedAt = fromMillis(createdAt)
		invoices = append(invoices, &inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: iterate: %w", op, err)
	}

	return invoices, nil
}
