package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/config"
	"github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/storage"
)

var ErrInvalid = errors.New("invalid settings")

type Store interface {
	GetSettings(ctx context.Context) (*storage.Settings, error)
	SaveSettings(ctx context.Context, st storage.Settings) (*storage.Settings, error)
}

// Service serves the saved settings, or the configured defaults until the
// first save.
type Service struct {
	store    Store
	defaults storage.Settings
}

func New(store Store, cfg config.Billing) *Service {
	return &Service{
		store: store,
		defaults: storage.Settings{
			PricePerEquipment: decimal.NewFromFloat(cfg.PricePerEquipment),
			CacheExpiration:   cfg.CacheExpiration,
		},
	}
}

func (s *Service) Get(ctx context.Context) (*storage.Settings, error) {
	st, err := s.store.GetSettings(ctx)
	if errors.Is(err, storage.ErrSettingsNotFound) {
		d := s.defaults
		return &d, nil
	}
	if err != nil {
		return nil, fmt.Errorf("service.settings.Get: %w", err)
	}

	return st, nil
}

// Update rejects negative values. Zero is a valid price, and a zero cache
// expiration makes dashboard clients refetch on every load.
func (s *Service) Update(ctx context.Context, st storage.Settings) (*storage.Settings, error) {
	if st.PricePerEquipment.IsNegative() {
		return nil, fmt.Errorf("%w: pricePerEquipment must not be negative", ErrInvalid)
	}
	if st.CacheExpiration < 0 {
		return nil, fmt.Errorf("%w: cacheExpiration must not be negative", ErrInvalid)
	}

	saved, err := s.store.SaveSettings(ctx, st)
	if err != nil {
		return nil, fmt.Errorf("service.settings.Update: %w", err)
	}

	return saved, nil
}
