package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"boqrevisions/collections"
	"boqrevisions/config"
	"boqrevisions/handlers"
	"boqrevisions/metrics"
	"boqrevisions/services"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("BOQ_CONFIG"))
	if err != nil {
		log.Fatal(err)
	}

	app := pocketbase.New()
	settings := handlers.SettingsFromConfig(cfg)
	docs := services.NewDocumentClient(cfg.Documents.BaseURL, cfg.Documents.APIKey, cfg.Documents.Timeout)
	if !docs.Enabled() {
		log.Printf("Warning: documents.base_url is not set; LPO PDFs and vendor emails are disabled")
	}

	app.RootCmd.AddCommand(newRecomputeCmd(app, settings.Currency))

	// Create collections, migrate and seed on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		collections.Setup(app)
		if err := collections.MigrateRevisionVersions(app); err != nil {
			log.Printf("Warning: revision version migration failed: %v", err)
		}
		if err := collections.Seed(app); err != nil {
			log.Printf("Warning: seed data failed: %v", err)
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		// Resolve the buyer identity for every request
		se.Router.BindFunc(handlers.CurrentUserMiddleware(services.CurrentUser{
			Name:  cfg.Procurement.Name,
			Email: cfg.Procurement.Email,
			Phone: cfg.Procurement.Phone,
		}))

		// ── Revisions ────────────────────────────────────────────
		se.Router.GET("/api/boqs/{id}/revisions", handlers.HandleRevisionList(app, settings.Currency))
		se.Router.POST("/api/boqs/{id}/revisions", handlers.HandleRevisionCreate(app, settings.Currency))
		se.Router.GET("/api/boqs/{id}/revisions/{version}/totals", handlers.HandleRevisionTotals(app, settings.Currency))
		se.Router.POST("/api/boqs/{id}/revisions/{version}/decision", handlers.HandleRevisionDecision(app, settings.Currency))
		se.Router.GET("/api/boqs/{id}/compare", handlers.HandleRevisionCompare(app))

		// ── LPO ──────────────────────────────────────────────────
		se.Router.GET("/api/boqs/{id}/lpo", handlers.HandleLPOGet(app, settings))
		se.Router.POST("/api/boqs/{id}/lpo", handlers.HandleLPOSave(app, settings))
		se.Router.GET("/api/boqs/{id}/lpo/preview", handlers.HandleLPOPreview(app, settings))
		se.Router.GET("/api/boqs/{id}/lpo/pdf", handlers.HandleLPOPDF(app, settings, docs))

		// ── Vendor purchase emails ───────────────────────────────
		se.Router.POST("/api/boqs/{id}/vendor-email/preview", handlers.HandleVendorEmailPreview(app, settings))
		se.Router.POST("/api/boqs/{id}/vendor-email/send", handlers.HandleVendorEmailSend(app, settings, docs))
		se.Router.GET("/api/boqs/{id}/vendor-emails", handlers.HandleVendorEmailList(app))

		// ── Raw-material catalog ─────────────────────────────────
		se.Router.GET("/api/materials", handlers.HandleMaterialSearch(app))
		se.Router.POST("/api/materials/import", handlers.HandleMaterialImport(app))

		se.Router.GET("/api/schema/boq-snapshot", handlers.HandleSnapshotSchema())
		se.Router.GET("/metrics", apis.WrapStdHandler(metrics.Handler()))

		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
