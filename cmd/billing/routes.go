package main

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	getclients "github.com/Rainbow-Platypus/projet-facturation-clients-script/http-server/clients/get"
	getdashboard "github.com/Rainbow-Platypus/projet-facturation-clients-script/http-server/dashboard/get"
	generate_excel "github.com/Rainbow-Platypus/projet-facturation-clients-script/http-server/generate-report/generate-excel"
	getinvoices "github.com/Rainbow-Platypus/projet-facturation-clients-script/http-server/invoices/get"
	saveinvoice "github.com/Rainbow-Platypus/projet-facturation-clients-script/http-server/invoices/save"
	getsettings "github.com/Rainbow-Platypus/projet-facturation-clients-script/http-server/settings/get"
	upsettings "github.com/Rainbow-Platypus/projet-facturation-clients-script/http-server/settings/update"
	sync_data "github.com/Rainbow-Platypus/projet-facturation-clients-script/http-server/sync-data"
	"github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/config"
	"github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/middleware/auth"
	generate_excel2 "github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/service/generate-excel"
	"github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/service/reconcile"
	"github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/service/settings"
	"github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/storage/sqlstore"
)

type services struct {
	storage  *sqlstore.Storage
	engine   *reconcile.Engine
	settings *settings.Service
	excel    *generate_excel2.GenerateExcelService
}

func routes(cfg *config.Config, log *slog.Logger, svc services) *chi.Mux {
	router := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	router.Use(corsHandler.Handler)
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	admin := auth.Optional(cfg.AdminLogin, cfg.AdminPass)

	router.Route("/api", func(r chi.Router) {
		r.With(admin).Post("/sync", sync_data.SyncData(log, svc.engine, cfg.HTTPServer.SyncTimeout))

		r.Get("/clients", getclients.GetClients(log, svc.storage))
		r.Get("/clients/{id}", getclients.GetClient(log, svc.storage))
		r.Get("/clients/{id}/equipment", getclients.GetClientEquipment(log, svc.storage))

		r.Post("/invoices", saveinvoice.SaveInvoice(log, svc.storage))
		r.Get("/invoices", getinvoices.GetInvoices(log, svc.storage))

		r.Get("/dashboard", getdashboard.GetDashboard(log, svc.storage, svc.settings))

		r.Get("/settings", getsettings.GetSettings(log, svc.settings))
		r.With(admin).Post("/settings", upsettings.UpdateSettings(log, svc.settings))

		r.Get("/report/excel", generate_excel.GenerateReportExcel(log, svc.excel))
	})

	frontendDir := cfg.FrontendDir
	if info, err := os.Stat(frontendDir); err != nil || !info.IsDir() {
		log.Warn("frontend directory not found, serving the API only", slog.String("path", frontendDir))
		return router
	}

	// SPA fallback: existing files are served as is, any other path gets index.html
	router.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(frontendDir, filepath.Clean("/"+r.URL.Path))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			http.ServeFile(w, r, path)
			return
		}
		http.ServeFile(w, r, filepath.Join(frontendDir, "index.html"))
	})

	return router
}
