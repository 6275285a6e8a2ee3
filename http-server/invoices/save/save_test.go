package save

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/storage"
)

type MockInvoiceSaver struct {
	mock.Mock
}

func (m *MockInvoiceSaver) CreateInvoice(ctx context.Context, inv storage.Invoice) (*storage.Invoice, error) {
	args := m.Called(ctx, inv)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Invoice), args.Error(1)
}

func post(s InvoiceSaver, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/invoices", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	SaveInvoice(slog.Default(), s).ServeHTTP(rr, req)
	return rr
}

func matchInvoice(clientID, amount string, date time.Time) any {
	return mock.MatchedBy(func(inv storage.Invoice) bool {
		return inv.ClientID == clientID && inv.Amount.Equal(decimal.RequireFromString(amount)) && inv.Date.Equal(date)
	})
}

func TestSaveInvoice_Success(t *testing.T) {
	m := new(MockInvoiceSaver)
	date := time.Date(2026, time.April, 30, 0, 0, 0, 0, time.UTC)
	m.On("CreateInvoice", mock.Anything, matchInvoice("c-1", "18", date)).Return(&storage.Invoice{
		ID:        "inv-1",
		ClientID:  "c-1",
		Amount:    decimal.NewFromInt(18),
		Date:      date,
		CreatedAt: time.Date(2026, time.May, 1, 8, 0, 0, 0, time.UTC),
	}, nil)

	rr := post(m, `{"clientId": "c-1", "amount": 18, "date": "2026-04-30"}`)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{
		"id": "inv-1", "clientId": "c-1", "amount": 18,
		"date": "2026-04-30T00:00:00Z", "createdAt": "2026-05-01T08:00:00Z"
	}`, rr.Body.String())
	m.AssertExpectations(t)
}

func TestSaveInvoice_RFC3339AndStringAmount(t *testing.T) {
	m := new(MockInvoiceSaver)
	date := time.Date(2026, time.April, 30, 12, 30, 0, 0, time.UTC)
	m.On("CreateInvoice", mock.Anything, matchInvoice("c-1", "99.90", date)).Return(&storage.Invoice{ID: "inv-2"}, nil)

	rr := post(m, `{"clientId": "c-1", "amount": "99.90", "date": "2026-04-30T12:30:00Z"}`)

	assert.Equal(t, http.StatusCreated, rr.Code)
	m.AssertExpectations(t)
}

func TestSaveInvoice_BadRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `clientId=c-1`},
		{"missing client", `{"amount": 1, "date": "2026-01-01"}`},
		{"blank client", `{"clientId": "  ", "amount": 1, "date": "2026-01-01"}`},
		{"missing amount", `{"clientId": "c-1", "date": "2026-01-01"}`},
		{"bad amount", `{"clientId": "c-1", "amount": "ten", "date": "2026-01-01"}`},
		{"missing date", `{"clientId": "c-1", "amount": 1}`},
		{"bad date", `{"clientId": "c-1", "amount": 1, "date": "01/02/2026"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(MockInvoiceSaver)

			rr := post(m, tt.body)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Contains(t, rr.Body.String(), `"error"`)
			m.AssertNotCalled(t, "CreateInvoice", mock.Anything, mock.Anything)
		})
	}
}

func TestSaveInvoice_UnknownClient(t *testing.T) {
	m := new(MockInvoiceSaver)
	m.On("CreateInvoice", mock.Anything, mock.Anything).Return(nil, storage.ErrUnknownClient)

	rr := post(m, `{"clientId": "ghost", "amount": 1, "date": "2026-01-01"}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error": "Client inconnu"}`, rr.Body.String())
}

func TestSaveInvoice_StoreError(t *testing.T) {
	m := new(MockInvoiceSaver)
	m.On("CreateInvoice", mock.Anything, mock.Anything).Return(nil, errors.New("deadlock"))

	rr := post(m, `{"clientId": "c-1", "amount": 1, "date": "2026-01-01"}`)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
