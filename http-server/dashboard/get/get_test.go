package get

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/storage"
)

type MockClients struct {
	mock.Mock
}

func (m *MockClients) ListClientsWithEquipment(ctx context.Context) ([]*storage.ClientWithEquipment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*storage.ClientWithEquipment), args.Error(1)
}

type MockSettings struct {
	mock.Mock
}

func (m *MockSettings) Get(ctx context.Context) (*storage.Settings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Settings), args.Error(1)
}

func equipment(clientID string, billable ...bool) []*storage.Equipment {
	out := make([]*storage.Equipment, 0, len(billable))
	for _, b := range billable {
		category := "Switch"
		if b {
			category = "Serveur"
		}
		out = append(out, &storage.Equipment{Category: category, IsBillable: b, ClientID: clientID})
	}
	return out
}

func get(c ClientsProvider, s SettingsProvider) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	GetDashboard(slog.Default(), c, s).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	return rr
}

func TestGetDashboard(t *testing.T) {
	c := new(MockClients)
	c.On("ListClientsWithEquipment", mock.Anything).Return([]*storage.ClientWithEquipment{
		{ID: "c-1", Name: "Acme", Equipment: equipment("c-1", true, false, true, false, false)},
		{ID: "c-2", Name: "Globex", Equipment: []*storage.Equipment{}},
	}, nil)

	s := new(MockSettings)
	s.On("Get", mock.Anything).Return(&storage.Settings{PricePerEquipment: decimal.NewFromInt(9), CacheExpiration: 60}, nil)

	rr := get(c, s)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{
		"clients": [
			{"id": "c-1", "name": "Acme", "totalEquipment": 5, "billableEquipment": 2, "totalBilling": 18, "billablePercentage": "40.0%"},
			{"id": "c-2", "name": "Globex", "totalEquipment": 0, "billableEquipment": 0, "totalBilling": 0, "billablePercentage": "0%"}
		],
		"totalEquipment": 5,
		"totalBillableEquipment": 2,
		"totalRevenue": 18
	}`, rr.Body.String())
}

func TestGetDashboard_Empty(t *testing.T) {
	c := new(MockClients)
	c.On("ListClientsWithEquipment", mock.Anything).Return([]*storage.ClientWithEquipment{}, nil)
	s := new(MockSettings)
	s.On("Get", mock.Anything).Return(&storage.Settings{PricePerEquipment: decimal.NewFromInt(9)}, nil)

	rr := get(c, s)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"clients": [], "totalEquipment": 0, "totalBillableEquipment": 0, "totalRevenue": 0}`, rr.Body.String())
}

func TestGetDashboard_Errors(t *testing.T) {
	c := new(MockClients)
	c.On("ListClientsWithEquipment", mock.Anything).Return([]*storage.ClientWithEquipment{}, nil)
	s := new(MockSettings)
	s.On("Get", mock.Anything).Return(nil, errors.New("settings unavailable"))

	rr := get(c, s)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	c = new(MockClients)
	c.On("ListClientsWithEquipment", mock.Anything).Return(nil, errors.New("db down"))
	s = new(MockSettings)
	s.On("Get", mock.Anything).Return(&storage.Settings{}, nil)

	rr = get(c, s)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
