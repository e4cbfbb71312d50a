package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/auditcase/internal/cases"
	casesStore "github.com/MrJamesThe3rd/auditcase/internal/cases/store"
	"github.com/MrJamesThe3rd/auditcase/internal/catalog"
	"github.com/MrJamesThe3rd/auditcase/internal/config"
	"github.com/MrJamesThe3rd/auditcase/internal/database"
	"github.com/MrJamesThe3rd/auditcase/internal/engine"
	"github.com/MrJamesThe3rd/auditcase/internal/export"
	auditHttp "github.com/MrJamesThe3rd/auditcase/internal/http"
	casesHandler "github.com/MrJamesThe3rd/auditcase/internal/http/cases"
	exportHandler "github.com/MrJamesThe3rd/auditcase/internal/http/export"
	templatesHandler "github.com/MrJamesThe3rd/auditcase/internal/http/templates"
	"github.com/MrJamesThe3rd/auditcase/internal/obs"
	"github.com/MrJamesThe3rd/auditcase/internal/render"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: config.Level(cfg.App.LogLevel)}))
	slog.SetDefault(logger)

	vendors, err := catalog.Load(cfg.Generation.CatalogPath)
	if err != nil {
		slog.Error("failed to load vendor catalog", "path", cfg.Generation.CatalogPath, "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.Timeout)
	defer cancel()

	db, err := database.New(ctx, cfg.ConnectionString(), cfg.Pool())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	store := casesStore.New(db)
	if err := store.Migrate(ctx); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	metrics := obs.New()

	var (
		eng           = engine.New(vendors, cfg.Engine(), engine.WithLogger(logger), engine.WithObserver(metrics))
		renderClient  = render.NewClient(cfg.RenderOptions())
		casesService  = cases.NewService(store, eng, renderClient)
		exportService = export.NewService()
	)

	var (
		casesH     = casesHandler.NewHandler(casesService)
		exportH    = exportHandler.NewHandler(casesService, exportService)
		templatesH = templatesHandler.NewHandler()
	)

	router := auditHttp.New(casesH, exportH, templatesH, metrics, cfg.CORS.AllowedOrigins)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	slog.Info("starting server", "port", srv.Addr, "vendors", len(vendors.Vendors()))

	if err := srv.ListenAndServe(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
