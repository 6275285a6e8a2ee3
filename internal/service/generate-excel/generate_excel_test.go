package generate_excel

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/storage"
)

type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) ListClientsWithEquipment(ctx context.Context) ([]*storage.ClientWithEquipment, error) {
	args := m.Called(ctx)
	clients, _ := args.Get(0).([]*storage.ClientWithEquipment)
	return clients, args.Error(1)
}

type mockSettings struct {
	mock.Mock
}

func (m *mockSettings) Get(ctx context.Context) (*storage.Settings, error) {
	args := m.Called(ctx)
	st, _ := args.Get(0).(*storage.Settings)
	return st, args.Error(1)
}

func TestGenerateExcel(t *testing.T) {
	store := new(mockStorage)
	store.On("ListClientsWithEquipment", mock.Anything).Return([]*storage.ClientWithEquipment{
		{ID: "c-1", Name: "Acme", Equipment: []*storage.Equipment{
			{ID: "h-1", Name: "srv-01", Category: "Serveur", IsBillable: true, ClientID: "c-1"},
			{ID: "h-2", Name: "sw-01", Category: "Switch", ClientID: "c-1"},
		}},
		{ID: "c-2", Name: "Globex", Equipment: []*storage.Equipment{}},
	}, nil)

	settings := new(mockSettings)
	settings.On("Get", mock.Anything).Return(&storage.Settings{PricePerEquipment: decimal.NewFromInt(9), CacheExpiration: 60}, nil)

	raw, err := NewGenerateService(store, settings).GenerateExcel(context.Background())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{summarySheet, equipmentSheet}, f.GetSheetList())

	rows, err := f.GetRows(summarySheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Acme", "c-1", "2", "1", "50.0%", "9"}, rows[1])
	assert.Equal(t, []string{"Globex", "c-2", "0", "0", "0%", "0"}, rows[2])
	assert.Equal(t, "Total", rows[3][0])
	assert.Equal(t, "9", rows[3][5])

	inventory, err := f.GetRows(equipmentSheet)
	require.NoError(t, err)
	require.Len(t, inventory, 3)
	assert.Equal(t, []string{"Acme", "h-1", "srv-01", "Serveur", "Oui"}, inventory[1])
	assert.Equal(t, "Non", inventory[2][4])
}

func TestGenerateExcel_StorageError(t *testing.T) {
	store := new(mockStorage)
	store.On("ListClientsWithEquipment", mock.Anything).Return(nil, errors.New("db down"))

	_, err := NewGenerateService(store, new(mockSettings)).GenerateExcel(context.Background())
	assert.Error(t, err)
}
