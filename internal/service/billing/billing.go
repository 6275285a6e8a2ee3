package billing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/constants"
	"github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/storage"
)

// IsBillable reports whether a ServiceNav category is invoiced. The match is
// exact on the lowercased label: "Serveur Linux" is billable, "Serveur Linux " is not.
// Sync-time persistence and display-time checks must both go through here.
func IsBillable(category string) bool {
	return constants.BillableCategories[strings.ToLower(category)]
}

// Totals are the figures derived for one client.
type Totals struct {
	TotalEquipment    int
	BillableEquipment int
	TotalBilling      decimal.Decimal
}

// ClientTotals counts equipment from the stored isBillable flags.
func ClientTotals(equipment []*storage.Equipment, price decimal.Decimal) Totals {
	t := Totals{TotalEquipment: len(equipment)}

	for _, eq := range equipment {
		if eq.IsBillable {
			t.BillableEquipment++
		}
	}

	t.TotalBilling = price.Mul(decimal.NewFromInt(int64(t.BillableEquipment)))

	return t
}

// BillablePercent formats billable/total with one decimal, "0%" when there is no equipment.
func BillablePercent(total, billable int) string {
	if total <= 0 {
		return "0%"
	}

	pct := decimal.NewFromInt(int64(billable)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total)))

	return fmt.Sprintf("%s%%", pct.StringFixed(1))
}

// Summarize builds the dashboard: per-client totals and their sums.
func Summarize(clients []*storage.ClientWithEquipment, price decimal.Decimal) storage.Dashboard {
	d := storage.Dashboard{
		Clients:      make([]storage.ClientBilling, 0, len(clients)),
		TotalRevenue: decimal.Zero,
	}

	for _, c := range clients {
		t := ClientTotals(c.Equipment, price)

		d.Clients = append(d.Clients, storage.ClientBilling{
			ID:                 c.ID,
			Name:               c.Name,
			TotalEquipment:     t.TotalEquipment,
			BillableEquipment:  t.BillableEquipment,
			TotalBilling:       t.TotalBilling,
			BillablePercentage: BillablePercent(t.TotalEquipment, t.BillableEquipment),
		})

		d.TotalEquipment += t.TotalEquipment
		d.TotalBillableEquipment += t.BillableEquipment
		d.TotalRevenue = d.TotalRevenue.Add(t.TotalBilling)
	}

	return d
}

// SplitByBillable re-derives billable status from the category text, as the
// client detail view does, without trusting the stored flag.
func SplitByBillable(equipment []*storage.Equipment) (billable, nonBillable []*storage.Equipment) {
	for _, eq := range equipment {
		if IsBillable(eq.Category) {
			billable = append(billable, eq)
		} else {
			nonBillable = append(nonBillable, eq)
		}
	}

	return billable, nonBillable
}

// Disagreements lists equipment whose stored flag no longer matches its category,
// which happens only when rows were written outside the sync.
func Disagreements(equipment []*storage.Equipment) []*storage.Equipment {
	var out []*storage.Equipment

	for _, eq := range equipment {
		if eq.IsBillable != IsBillable(eq.Category) {
			out = append(out, eq)
		}
	}

	return out
}
