package main

import (
	"context"
	"flag"
	"time"

	"github.com/joho/godotenv"

	"inventory-agent/internal/config"
	"inventory-agent/internal/db"
	"inventory-agent/internal/erp"
	"inventory-agent/internal/ingest"
	"inventory-agent/internal/store"
)

func main() {
	_ = godotenv.Load()

	resource := flag.String("resource", "", "sync a single resource instead of all")
	sinceFlag := flag.String("since", "", "RFC3339 timestamp to force as starting point")
	flag.Parse()

	cfg := config.Load()
	logger := config.NewLogger()
	ctx := context.Background()

	var since *time.Time
	if *sinceFlag != "" {
		parsed, err := time.Parse(time.RFC3339, *sinceFlag)
		if err != nil {
			logger.WithError(err).Fatal("invalid -since, want RFC3339")
		}
		since = &parsed
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.WithError(err).Fatal("database")
	}
	defer pool.Close()

	recordStore := store.NewRecordStore(pool)
	if err := recordStore.EnsureSchema(ctx); err != nil {
		logger.WithError(err).Fatal("schema")
	}

	client, err := erp.NewClient(cfg.ContificoBaseURL, cfg.ContificoAPIKey, cfg.ContificoAPIToken, cfg.SyncPageSize, logger)
	if err != nil {
		logger.WithError(err).Fatal("contifico client")
	}
	syncService := ingest.NewSyncService(client, recordStore, logger)

	if *resource != "" {
		result, err := syncService.SyncResource(ctx, *resource, since)
		if err != nil {
			logger.WithError(err).Fatal("sync failed")
		}
		logger.WithField("resource", result.Resource).WithField("records", result.Records).Info("sync done")
		return
	}

	results, err := syncService.SyncAll(ctx, since)
	for _, result := range results {
		logger.WithField("resource", result.Resource).WithField("records", result.Records).Info("sync done")
	}
	if err != nil {
		logger.WithError(err).Fatal("sync finished with failures")
	}
}
