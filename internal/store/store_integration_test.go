package store_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"inventory-agent/internal/store"
)

func setupTestStore(t *testing.T) (store.RecordStore, *pgxpool.Pool) {
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	// Set TEST_DATABASE_URL in your .env or environment to run integration tests.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	recordStore := store.NewRecordStore(pool)
	if err := recordStore.EnsureSchema(ctx); err != nil {
		t.Fatalf("Failed to ensure schema: %v", err)
	}
	_, err = pool.Exec(ctx, `TRUNCATE TABLE products, variants, purchases, sales, documents, sync_state CASCADE`)
	if err != nil {
		t.Fatalf("Failed to clean test database: %v", err)
	}
	return recordStore, pool
}

func TestRecordStore_UpsertAndSearch(t *testing.T) {
	recordStore, pool := setupTestStore(t)
	defer pool.Close()
	ctx := context.Background()

	written, err := recordStore.UpsertRecords(ctx, "products", []map[string]any{
		{"id": "PROD-1", "codigo": "SKU-1/54", "nombre": "Camisa"},
		{"codigo": "SKU-NO-ID", "nombre": "Sin id"}, // falls back to codigo
		{"nombre": "Sin identificador"},             // skipped
	})
	if err != nil {
		t.Fatalf("UpsertRecords: %v", err)
	}
	if written != 2 {
		t.Errorf("written = %d, want 2 (the record without any id is skipped)", written)
	}

	record, err := recordStore.Get(ctx, "products", "PROD-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if record == nil || record.Data["codigo"] != "SKU-1/54" {
		t.Fatalf("Get PROD-1 = %+v, want the stored payload", record)
	}

	// Re-upsert replaces the payload in place.
	if _, err := recordStore.UpsertRecords(ctx, "products", []map[string]any{
		{"id": "PROD-1", "codigo": "SKU-1/54", "nombre": "Camisa manga larga"},
	}); err != nil {
		t.Fatalf("UpsertRecords (update): %v", err)
	}
	record, err = recordStore.Get(ctx, "products", "PROD-1")
	if err != nil {
		t.Fatalf("Get after update: %v", err)
	}
	if record.Data["nombre"] != "Camisa manga larga" {
		t.Errorf("nombre = %v, want the updated payload", record.Data["nombre"])
	}

	records, err := recordStore.Search(ctx, "products", "Camisa", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(records) != 1 || records[0].ID != "PROD-1" {
		t.Errorf("Search(Camisa) = %+v, want only PROD-1", records)
	}

	records, err = recordStore.Search(ctx, "products", "", 1)
	if err != nil {
		t.Fatalf("Search with limit: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("Search limit 1 returned %d records", len(records))
	}
}

func TestRecordStore_UnknownResource(t *testing.T) {
	recordStore, pool := setupTestStore(t)
	defer pool.Close()
	ctx := context.Background()

	if _, err := recordStore.Search(ctx, "ledgers; DROP TABLE products", "", 10); !errors.Is(err, store.ErrUnknownResource) {
		t.Errorf("expected ErrUnknownResource from Search, got %v", err)
	}
	if _, err := recordStore.UpsertRecords(ctx, "nope", []map[string]any{{"id": "1"}}); !errors.Is(err, store.ErrUnknownResource) {
		t.Errorf("expected ErrUnknownResource from UpsertRecords, got %v", err)
	}
	if _, err := recordStore.Get(ctx, "nope", "1"); !errors.Is(err, store.ErrUnknownResource) {
		t.Errorf("expected ErrUnknownResource from Get, got %v", err)
	}
}

func TestRecordStore_SyncState(t *testing.T) {
	recordStore, pool := setupTestStore(t)
	defer pool.Close()
	ctx := context.Background()

	syncedAt, err := recordStore.LastSyncedAt(ctx, "products")
	if err != nil {
		t.Fatalf("LastSyncedAt: %v", err)
	}
	if syncedAt != nil {
		t.Errorf("expected nil before any sync, got %v", syncedAt)
	}

	stamp := time.Date(2024, 3, 12, 8, 0, 0, 0, time.UTC)
	if err := recordStore.SetLastSyncedAt(ctx, "products", stamp); err != nil {
		t.Fatalf("SetLastSyncedAt: %v", err)
	}
	syncedAt, err = recordStore.LastSyncedAt(ctx, "products")
	if err != nil {
		t.Fatalf("LastSyncedAt after set: %v", err)
	}
	if syncedAt == nil || !syncedAt.Equal(stamp) {
		t.Errorf("LastSyncedAt = %v, want %v", syncedAt, stamp)
	}
}
