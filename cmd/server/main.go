package main

import (
	"context"
	"net/http"

	"github.com/joho/godotenv"

	webAdapter "inventory-agent/internal/adapters/web"
	"inventory-agent/internal/ai"
	"inventory-agent/internal/app"
	"inventory-agent/internal/config"
	"inventory-agent/internal/core"
	"inventory-agent/internal/db"
	"inventory-agent/internal/erp"
	"inventory-agent/internal/ingest"
	"inventory-agent/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := config.NewLogger()
	ctx := context.Background()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.WithError(err).Fatal("database")
	}
	defer pool.Close()

	recordStore := store.NewRecordStore(pool)
	if err := recordStore.EnsureSchema(ctx); err != nil {
		logger.WithError(err).Fatal("schema")
	}

	reports := core.NewReportService(recordStore)

	var syncService ingest.SyncService
	client, err := erp.NewClient(cfg.ContificoBaseURL, cfg.ContificoAPIKey, cfg.ContificoAPIToken, cfg.SyncPageSize, logger)
	if err != nil {
		logger.WithError(err).Warn("contifico client not configured; sync endpoints disabled")
	} else {
		syncService = ingest.NewSyncService(client, recordStore, logger)
	}

	var agent *ai.Agent
	if cfg.OpenAIAPIKey == "" {
		logger.Warn("OPENAI_API_KEY is not set; /api/ask disabled")
	} else {
		agent = ai.NewAgent(cfg.OpenAIAPIKey)
	}

	svc := app.NewAppService(recordStore, reports, syncService, agent)
	handler := webAdapter.NewHandler(svc, logger, cfg.AllowedOrigins)

	logger.WithField("port", cfg.Port).Info("server starting")
	if err := http.ListenAndServe(":"+cfg.Port, handler); err != nil {
		logger.WithError(err).Fatal("server")
	}
}
