package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// amounts go over the wire as JSON numbers, the dashboard frontend does arithmetic on them
	decimal.MarshalJSONWithoutQuotes = true
}

type Invoice struct {
	ID        string          `json:"id"`
	ClientID  string          `json:"clientId"`
	Amount    decimal.Decimal `json:"amount"`
	Date      time.Time       `json:"date"`
	CreatedAt time.Time       `json:"createdAt"`
}
