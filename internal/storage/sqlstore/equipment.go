package sqlstore

import (
	"context"
	"fmt"

	"github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/storage"
)

// UpsertEquipment inserts the equipment or overwrites its name, category and
// billable flag. The owning client is only set on insert.
func (s *Storage) UpsertEquipment(ctx context.Context, eq storage.Equipment) error {
	const op = "storage.sqlstore.UpsertEquipment"

	_, err := s.q(ctx).ExecContext(ctx, s.dialect.rebind(s.dialect.upsertEquipment),
		eq.ID, eq.Name, eq.Category, eq.IsBillable, eq.ClientID)
	if err != nil {
		return fmt.Errorf("%s: equipment %s of client %s: %w", op, eq.ID, eq.ClientID, err)
	}

	return nil
}

// ListClientEquipment returns the equipment of a client, or
// storage.ErrClientNotFound when the client itself is unknown.
func (s *Storage) ListClientEquipment(ctx context.Context, clientID string) ([]*storage.Equipment, error) {
	const op = "storage.sqlstore.ListClientEquipment"

	ok, err := s.ClientExists(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: id=%q: %w", op, clientID, storage.ErrClientNotFound)
	}

	equipment, err := s.selectEquipment(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return equipment, nil
}

// selectEquipment reads equipment rows, all of them when clientID is empty.
func (s *Storage) selectEquipment(ctx context.Context, clientID string) ([]*storage.Equipment, error) {
	query := `SELECT id, name, category, is_billable, client_id FROM equipment`
	var args []any
	if clientID != "" {
		query += ` WHERE client_id = ?`
		args = append(args, clientID)
	}
	query += ` ORDER BY client_id, name, id`

	rows, err := s.q(ctx).QueryContext(ctx, s.dialect.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("select equipment: %w", err)
	}
	defer rows.Close()

	equipment := make([]*storage.Equipment, 0)

	for rows.Next() {
		eq := &storage.Equipment{}
		if err := rows.Scan(&eq.ID, &eq.Name, &eq.Category, &eq.IsBillable, &eq.ClientID); err != nil {
			return nil, fmt.Errorf("scan equipment: %w", err)
		}
		equipment = append(equipment, eq)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate equipment: %w", err)
	}

	return equipment, nil
}
