package billing

import (
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/storage"
)

func TestIsBillable(t *testing.T) {
	tests := []struct {
		category string
		want     bool
	}{
		{"Serveur", true},
		{"serveur", true},
		{"SERVEUR", true},
		{"Serveur Linux", true},
		{"SERVEUR WINDOWS", true},
		{"serveur windows", true},
		{"Routeur", false},
		{"Switch", false},
		{"", false},
		{"Serveur Linux ", false},
		{" serveur", false},
		{"serveurs", false},
		{"Serveur Mac", false},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			assert.Equal(t, tt.want, IsBillable(tt.category))
		})
	}
}

func newEquipment(n, billable int) []*storage.Equipment {
	var eq []*storage.Equipment
	for i := 0; i < n; i++ {
		category := "Routeur"
		if i < billable {
			category = "Serveur Linux"
		}
		eq = append(eq, &storage.Equipment{
			ID:         "eq-" + strconv.Itoa(i),
			Name:       "host-" + strconv.Itoa(i),
			Category:   category,
			IsBillable: i < billable,
		})
	}
	return eq
}

func TestClientTotals(t *testing.T) {
	totals := ClientTotals(newEquipment(5, 2), decimal.NewFromInt(9))

	assert.Equal(t, 5, totals.TotalEquipment)
	assert.Equal(t, 2, totals.BillableEquipment)
	assert.True(t, decimal.NewFromInt(18).Equal(totals.TotalBilling), "got %s", totals.TotalBilling)
}

func TestClientTotals_UsesStoredFlag(t *testing.T) {
	eq := []*storage.Equipment{
		{ID: "1", Category: "Routeur", IsBillable: true},
		{ID: "2", Category: "Serveur", IsBillable: false},
	}

	totals := ClientTotals(eq, decimal.NewFromInt(9))
	assert.Equal(t, 1, totals.BillableEquipment)
}

func TestBillablePercent(t *testing.T) {
	assert.Equal(t, "40.0%", BillablePercent(5, 2))
	assert.Equal(t, "0%", BillablePercent(0, 0))
	assert.Equal(t, "100.0%", BillablePercent(3, 3))
	assert.Equal(t, "33.3%", BillablePercent(3, 1))
	assert.Equal(t, "66.7%", BillablePercent(3, 2))
	assert.Equal(t, "0.0%", BillablePercent(4, 0))
}

func TestSummarize(t *testing.T) {
	clients := []*storage.ClientWithEquipment{
		{ID: "c1", Name: "Acme", Equipment: newEquipment(5, 2)},
		{ID: "c2", Name: "Globex", Equipment: newEquipment(3, 3)},
		{ID: "c3", Name: "Empty"},
	}

	d := Summarize(clients, decimal.NewFromInt(9))

	require.Len(t, d.Clients, 3)
	assert.Equal(t, 8, d.TotalEquipment)
	assert.Equal(t, 5, d.TotalBillableEquipment)
	assert.True(t, decimal.NewFromInt(45).Equal(d.TotalRevenue))

	assert.Equal(t, "40.0%", d.Clients[0].BillablePercentage)
	assert.True(t, decimal.NewFromInt(18).Equal(d.Clients[0].TotalBilling))
	assert.True(t, decimal.NewFromInt(27).Equal(d.Clients[1].TotalBilling))

	assert.Equal(t, 0, d.Clients[2].TotalEquipment)
	assert.Equal(t, "0%", d.Clients[2].BillablePercentage)
	assert.True(t, d.Clients[2].TotalBilling.IsZero())
}

func TestSummarize_NoClients(t *testing.T) {
	d := Summarize(nil, decimal.NewFromInt(9))

	assert.NotNil(t, d.Clients)
	assert.Empty(t, d.Clients)
	assert.True(t, d.TotalRevenue.IsZero())
}

func TestSplitByBillable(t *testing.T) {
	eq := []*storage.Equipment{
		{ID: "1", Category: "SERVEUR"},
		{ID: "2", Category: "Routeur"},
		{ID: "3", Category: "serveur windows"},
	}

	billable, nonBillable := SplitByBillable(eq)

	require.Len(t, billable, 2)
	require.Len(t, nonBillable, 1)
	assert.Equal(t, "1", billable[0].ID)
	assert.Equal(t, "3", billable[1].ID)
	assert.Equal(t, "2", nonBillable[0].ID)
}

func TestDisagreements(t *testing.T) {
	eq := []*storage.Equipment{
		{ID: "1", Category: "Serveur", IsBillable: true},
		{ID: "2", Category: "Routeur", IsBillable: true},
		{ID: "3", Category: "Serveur Linux", IsBillable: false},
	}

	out := Disagreements(eq)

	require.Len(t, out, 2)
	assert.Equal(t, "2", out[0].ID)
	assert.Equal(t, "3", out[1].ID)
}
