package storage

import "github.com/shopspring/decimal"

type Settings struct {
	PricePerEquipment decimal.Decimal `json:"pricePerEquipment"`
	CacheExpiration   int             `json:"cacheExpiration"` // minutes
}
