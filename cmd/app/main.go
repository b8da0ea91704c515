package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"inventory-agent/internal/adapters/cli"
	"inventory-agent/internal/ai"
	"inventory-agent/internal/app"
	"inventory-agent/internal/config"
	"inventory-agent/internal/core"
	"inventory-agent/internal/db"
	"inventory-agent/internal/erp"
	"inventory-agent/internal/ingest"
	"inventory-agent/internal/store"
)

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: app <command> [args]

Commands:
  overview                 record counts and sync freshness per resource
  sync [resource] [--since=RFC3339]
                           pull Contifico data into the local store
  report                   fleet-wide KPI report as JSON
  export [path]            fleet-wide KPI report as an XLSX workbook
  product <code-or-id>     KPI report for one product
  ask "<question>"         natural language question about the inventory`)
	os.Exit(2)
}

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
	}

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
	if client, err := erp.NewClient(cfg.ContificoBaseURL, cfg.ContificoAPIKey, cfg.ContificoAPIToken, cfg.SyncPageSize, logger); err == nil {
		syncService = ingest.NewSyncService(client, recordStore, logger)
	}

	var agent *ai.Agent
	if cfg.OpenAIAPIKey != "" {
		agent = ai.NewAgent(cfg.OpenAIAPIKey)
	}

	svc := app.NewAppService(recordStore, reports, syncService, agent)
	cli.Run(ctx, svc, os.Args[1:])
}
