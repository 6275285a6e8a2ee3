package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/storage"
)

// UpsertClient inserts the client or overwrites its name.
func (s *Storage) UpsertClient(ctx context.Context, c storage.Client) error {
	const op = "storage.sqlstore.UpsertClient"

	if _, err := s.q(ctx).ExecContext(ctx, s.dialect.rebind(s.dialect.upsertClient), c.ID, c.Name); err != nil {
		return fmt.Errorf("%s: client %s: %w", op, c.ID, err)
	}

	return nil
}

// ListClientsWithEquipment returns every client ordered by name, each with its
// equipment. A client without equipment gets an empty, non-nil slice.
func (s *Storage) ListClientsWithEquipment(ctx context.Context) ([]*storage.ClientWithEquipment, error) {
	const op = "storage.sqlstore.ListClientsWithEquipment"

	rows, err := s.q(ctx).QueryContext(ctx, `SELECT id, name FROM clients ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("%s: select clients: %w", op, err)
	}

	clients := make([]*storage.ClientWithEquipment, 0)
	byID := make(map[string]*storage.ClientWithEquipment)

	for rows.Next() {
		c := &storage.ClientWithEquipment{Equipment: []*storage.Equipment{}}
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("%s: scan client: %w", op, err)
		}
		clients = append(clients, c)
		byID[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("%s: iterate clients: %w", op, err)
	}
	// closed before the next query: SQLite runs on a single connection
	rows.Close()

	equipment, err := s.selectEquipment(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, eq := range equipment {
		if c, ok := byID[eq.ClientID]; ok {
			c.Equipment = append(c.Equipment, eq)
		}
	}

	return clients, nil
}

// GetClient returns one client with its equipment, or storage.ErrClientNotFound.
func (s *Storage) GetClient(ctx context.Context, id string) (*storage.ClientWithEquipment, error) {
	const op = "storage.sqlstore.GetClient"

	c := &storage.ClientWithEquipment{}

	err := s.q(ctx).QueryRowContext(ctx, s.dialect.rebind(`SELECT id, name FROM clients WHERE id = ?`), id).
		Scan(&c.ID, &c.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: id=%q: %w", op, id, storage.ErrClientNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	c.Equipment, err = s.selectEquipment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return c, nil
}

// ClientExists reports whether a client with this id has been synced.
func (s *Storage) ClientExists(ctx context.Context, id string) (bool, error) {
	const op = "storage.sqlstore.ClientExists"

	var n int
	err := s.q(ctx).QueryRowContext(ctx, s.dialect.rebind(`SELECT COUNT(*) FROM clients WHERE id = ?`), id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return n > 0, nil
}
