package storage

import "github.com/shopspring/decimal"

// ClientBilling is a client with figures derived from its stored equipment.
type ClientBilling struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	TotalEquipment     int             `json:"totalEquipment"`
	BillableEquipment  int             `json:"billableEquipment"`
	TotalBilling       decimal.Decimal `json:"totalBilling"`
	BillablePercentage string          `json:"billablePercentage"`
}

type Dashboard struct {
	Clients                []ClientBilling `json:"clients"`
	TotalEquipment         int             `json:"totalEquipment"`
	TotalBillableEquipment int             `json:"totalBillableEquipment"`
	TotalRevenue           decimal.Decimal `json:"totalRevenue"`
}
