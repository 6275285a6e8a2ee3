package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/config"
	generate_excel "github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/service/generate-excel"
	"github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/service/reconcile"
	"github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/service/settings"
	"github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/servicenav"
	"github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/storage"
	"github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/storage/sqlstore"
)

func upstream(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/companies", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id": "c-1", "name": "Acme"}, {"id": "c-2", "name": "Globex"}]`))
	})
	mux.HandleFunc("/api/companies/c-1/hosts", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"id": "h-1", "Host Name": "srv-01", "Host IP/DNS": "10.0.0.1", "Category Name": "Serveur Linux"},
			{"id": "h-2", "Host Name": "srv-02", "Host IP/DNS": "10.0.0.2", "Category Name": "serveur"},
			{"id": "h-3", "Host Name": "sw-01", "Host IP/DNS": "10.0.0.3", "Category Name": "Switch"},
			{"id": "h-4", "Host Name": "rt-01", "Host IP/DNS": "10.0.0.4", "Category Name": "Routeur"},
			{"id": "h-5", "Host Name": "ap-01", "Host IP/DNS": "10.0.0.5", "Category Name": ""}
		]`))
	})
	mux.HandleFunc("/api/companies/c-2/hosts", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	ctx := context.Background()
	log := slog.Default()

	frontend := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(frontend, "index.html"), []byte("<html>spa</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(frontend, "app.js"), []byte("console.log(1)"), 0o644))

	cfg := &config.Config{
		HTTPServer:  config.HTTPServer{SyncTimeout: 10 * time.Second},
		Storage:     config.Storage{Driver: sqlstore.DriverSQLite, SQLitePath: ":memory:"},
		Billing:     config.Billing{PricePerEquipment: 9, CacheExpiration: 60},
		AdminLogin:  "admin",
		AdminPass:   "pw",
		FrontendDir: frontend,
		ServiceNav: config.ServiceNav{
			BaseURL:       upstream(t).URL,
			Timeout:       2 * time.Second,
			CompaniesPath: "/api/companies",
			EquipmentPath: "/api/companies/{id}/hosts",
		},
	}

	store, err := sqlstore.New(ctx, cfg.Storage)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.Migrate())

	source, err := servicenav.New(cfg.ServiceNav, log)
	require.NoError(t, err)

	settingsService := settings.New(store, cfg.Billing)

	return routes(cfg, log, services{
		storage:  store,
		engine:   reconcile.New(source, store, log),
		settings: settingsService,
		excel:    generate_excel.NewGenerateService(store, settingsService),
	})
}

func call(h http.Handler, method, path, body string, admin bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if admin {
		req.SetBasicAuth("admin", "pw")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRoutes_SyncThenDashboard(t *testing.T) {
	h := newTestRouter(t)

	rr := call(h, http.MethodPost, "/api/sync", "", false)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = call(h, http.MethodPost, "/api/sync", "", true)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"message":"Synchronisation réussie"`)

	rr = call(h, http.MethodGet, "/api/dashboard", "", false)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{
		"clients": [
			{"id": "c-1", "name": "Acme", "totalEquipment": 5, "billableEquipment": 2, "totalBilling": 18, "billablePercentage": "40.0%"},
			{"id": "c-2", "name": "Globex", "totalEquipment": 0, "billableEquipment": 0, "totalBilling": 0, "billablePercentage": "0%"}
		],
		"totalEquipment": 5,
		"totalBillableEquipment": 2,
		"totalRevenue": 18
	}`, rr.Body.String())

	first := rr.Body.String()

	// a second sync changes nothing
	require.Equal(t, http.StatusOK, call(h, http.MethodPost, "/api/sync", "", true).Code)
	assert.JSONEq(t, first, call(h, http.MethodGet, "/api/dashboard", "", false).Body.String())

	var clients []storage.ClientWithEquipment
	rr = call(h, http.MethodGet, "/api/clients", "", false)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &clients))
	require.Len(t, clients, 2)
	assert.Len(t, clients[0].Equipment, 5)

	assert.Equal(t, http.StatusOK, call(h, http.MethodGet, "/api/clients/c-1", "", false).Code)
	assert.Equal(t, http.StatusNotFound, call(h, http.MethodGet, "/api/clients/c-9", "", false).Code)
	assert.Equal(t, http.StatusNotFound, call(h, http.MethodGet, "/api/clients/c-9/equipment", "", false).Code)
	assert.JSONEq(t, `[]`, call(h, http.MethodGet, "/api/clients/c-2/equipment", "", false).Body.String())
}

func TestRoutes_SettingsAndInvoices(t *testing.T) {
	h := newTestRouter(t)

	rr := call(h, http.MethodGet, "/api/settings", "", false)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"pricePerEquipment": 9, "cacheExpiration": 60}`, rr.Body.String())

	body := `{"pricePerEquipment": 10, "cacheExpiration": 30}`
	assert.Equal(t, http.StatusUnauthorized, call(h, http.MethodPost, "/api/settings", body, false).Code)

	rr = call(h, http.MethodPost, "/api/settings", body, true)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, body, rr.Body.String())
	assert.JSONEq(t, body, call(h, http.MethodGet, "/api/settings", "", false).Body.String())

	rr = call(h, http.MethodPost, "/api/settings", `{"pricePerEquipment": -1, "cacheExpiration": 30}`, true)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = call(h, http.MethodPost, "/api/invoices", `{"clientId": "c-1", "amount": 18, "date": "2026-01-31"}`, false)
	assert.Equal(t, http.StatusBadRequest, rr.Code, "client not synced yet")

	require.Equal(t, http.StatusOK, call(h, http.MethodPost, "/api/sync", "", true).Code)

	rr = call(h, http.MethodPost, "/api/invoices", `{"clientId": "c-1", "amount": 18, "date": "2026-01-31"}`, false)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var inv storage.Invoice
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &inv))
	assert.Equal(t, "c-1", inv.ClientID)
	assert.Equal(t, "2026-01-31", inv.Date.Format(time.DateOnly))

	var invoices []storage.Invoice
	rr = call(h, http.MethodGet, "/api/invoices?client_id=c-1", "", false)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &invoices))
	require.Len(t, invoices, 1)
	assert.Equal(t, inv.ID, invoices[0].ID)

	rr = call(h, http.MethodGet, "/api/dashboard", "", false)
	assert.Contains(t, rr.Body.String(), `"totalRevenue":20`)
}

func TestRoutes_ReportAndSPA(t *testing.T) {
	h := newTestRouter(t)

	rr := call(h, http.MethodGet, "/api/report/excel", "", false)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Body.String(), "PK"))

	rr = call(h, http.MethodGet, "/clients/c-1", "", false)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "spa")

	rr = call(h, http.MethodGet, "/app.js", "", false)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "console.log")
}
