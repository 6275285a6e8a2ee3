package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/storage"
)

// GetSettings reads the single settings row, storage.ErrSettingsNotFound
// until it has been saved once.
func (s *Storage) GetSettings(ctx context.Context) (*storage.Settings, error) {
	const op = "storage.sqlstore.GetSettings"

	var st storage.Settings

	err := s.q(ctx).QueryRowContext(ctx, `SELECT price_per_equipment, cache_expiration FROM settings WHERE id = 1`).
		Scan(&st.PricePerEquipment, &st.CacheExpiration)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrSettingsNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &st, nil
}

// SaveSettings overwrites the settings row and returns what is now stored.
func (s *Storage) SaveSettings(ctx context.Context, st storage.Settings) (*storage.Settings, error) {
	const op = "storage.sqlstore.SaveSettings"

	var saved *storage.Settings

	err := s.WithinTx(ctx, func(ctx context.Context) error {
		_, err := s.q(ctx).ExecContext(ctx, s.dialect.rebind(s.dialect.upsertSettings), st.PricePerEquipment, st.CacheExpiration)
		if err != nil {
			return fmt.Errorf("upsert: %w", err)
		}

		saved, err = s.GetSettings(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return saved, nil
}
