package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"inventory-agent/internal/core"
)

// ErrUnknownResource marks requests for a resource outside the synced set.
// Callers can match it with errors.Is.
var ErrUnknownResource = errors.New("unknown resource")

// Resources is the full set of synced Contifico collections, one table each.
var Resources = []string{
	"categories",
	"brands",
	"variants",
	"products",
	"warehouses",
	"remission_guides",
	"purchases",
	"sales",
	"documents",
	"registry_transactions",
	"persons",
	"cost_centers",
}

var resourceSet = func() map[string]bool {
	set := make(map[string]bool, len(Resources))
	for _, r := range Resources {
		set[r] = true
	}
	return set
}()

// idFields are tried in order when extracting the primary key of an upstream
// payload. Most Contifico records carry id; a few masters only expose a code.
var idFields = []string{"id", "codigo", "code", "uuid", "external_id"}

// updatedAtFields are the payload keys that may carry the upstream
// modification timestamp.
var updatedAtFields = []string{"fecha_modificacion", "updated_at", "fecha_actualizacion"}

// ResourceCount is one row of the store overview.
type ResourceCount struct {
	Resource     string     `json:"resource"`
	Records      int64      `json:"records"`
	LastFetched  *time.Time `json:"last_fetched,omitempty"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
}

// RecordStore is the persistence contract for raw synced documents. It is a
// superset of core.RecordSource: the analytics layer reads through Search and
// Get, the sync pipeline writes through UpsertRecords.
type RecordStore interface {
	core.RecordSource

	// EnsureSchema creates the per-resource tables and the sync bookkeeping
	// table if missing. Safe to call on every startup.
	EnsureSchema(ctx context.Context) error

	// UpsertRecords writes a batch of upstream payloads into a resource
	// table, inserting new ids and replacing existing ones. Payloads without
	// any extractable id are skipped. Returns the number of rows written.
	UpsertRecords(ctx context.Context, resource string, payloads []map[string]any) (int, error)

	// ResourceOverview reports row counts and freshness per resource.
	ResourceOverview(ctx context.Context) ([]ResourceCount, error)

	// LastSyncedAt returns the recorded completion time of the last sync of
	// an endpoint, or nil when it has never synced.
	LastSyncedAt(ctx context.Context, endpoint string) (*time.Time, error)

	// SetLastSyncedAt records the completion time of a sync run.
	SetLastSyncedAt(ctx context.Context, endpoint string, syncedAt time.Time) error
}

type recordStore struct {
	pool *pgxpool.Pool
}

// NewRecordStore constructs a RecordStore over a pgx pool.
func NewRecordStore(pool *pgxpool.Pool) RecordStore {
	return &recordStore{pool: pool}
}

func validResource(resource string) error {
	if !resourceSet[resource] {
		return fmt.Errorf("%w: %q", ErrUnknownResource, resource)
	}
	return nil
}

func (s *recordStore) EnsureSchema(ctx context.Context) error {
	var ddl strings.Builder
	for _, resource := range Resources {
		fmt.Fprintf(&ddl, `
			CREATE TABLE IF NOT EXISTS %s (
				id TEXT PRIMARY KEY,
				data JSONB NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				fetched_at TIMESTAMPTZ NOT NULL DEFAULT now()
			);
		`, resource)
	}
	ddl.WriteString(`
		CREATE TABLE IF NOT EXISTS sync_state (
			endpoint TEXT PRIMARY KEY,
			last_synced_at TIMESTAMPTZ NOT NULL
		);
	`)

	if _, err := s.pool.Exec(ctx, ddl.String()); err != nil {
		return fmt.Errorf("failed to ensure store schema: %w", err)
	}
	return nil
}

// recordID extracts the primary key of an upstream payload. Numeric ids are
// normalized to their text form so re-syncs hit the same row.
func recordID(payload map[string]any) string {
	for _, field := range idFields {
		switch v := payload[field].(type) {
		case string:
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				return trimmed
			}
		case float64:
			if v == float64(int64(v)) {
				return fmt.Sprintf("%d", int64(v))
			}
			return fmt.Sprintf("%v", v)
		case json.Number:
			return v.String()
		}
	}
	return ""
}

func recordUpdatedAt(payload map[string]any, fallback time.Time) time.Time {
	for _, field := range updatedAtFields {
		text, ok := payload[field].(string)
		if !ok {
			continue
		}
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, strings.TrimSpace(text)); err == nil {
				return t
			}
		}
	}
	return fallback
}

func (s *recordStore) UpsertRecords(ctx context.Context, resource string, payloads []map[string]any) (int, error) {
	if err := validResource(resource); err != nil {
		return 0, err
	}
	if len(payloads) == 0 {
		return 0, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	query := fmt.Sprintf(`
		INSERT INTO %s (id, data, updated_at, fetched_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			data = EXCLUDED.data,
			updated_at = EXCLUDED.updated_at,
			fetched_at = EXCLUDED.fetched_at
	`, resource)

	written := 0
	for _, payload := range payloads {
		id := recordID(payload)
		if id == "" {
			continue
		}
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, fmt.Errorf("failed to encode %s record %s: %w", resource, id, err)
		}
		if _, err := tx.Exec(ctx, query, id, data, recordUpdatedAt(payload, now), now); err != nil {
			return 0, fmt.Errorf("failed to upsert %s record %s: %w", resource, id, err)
		}
		written++
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return written, nil
}

func (s *recordStore) Search(ctx context.Context, resource, query string, limit int) ([]core.StoredRecord, error) {
	if err := validResource(resource); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 100
	}
	if limit > 5000 {
		limit = 5000
	}

	sql := fmt.Sprintf(`
		SELECT id, data, updated_at, fetched_at
		FROM %s
	`, resource)
	args := []any{}
	if query != "" {
		sql += ` WHERE id ILIKE $1 OR data::text ILIKE $1`
		args = append(args, "%"+query+"%")
	}
	sql += fmt.Sprintf(` ORDER BY fetched_at DESC, id LIMIT %d`, limit)

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", resource, err)
	}
	defer rows.Close()

	var records []core.StoredRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s record: %w", resource, err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s rows: %w", resource, err)
	}
	return records, nil
}

func (s *recordStore) Get(ctx context.Context, resource, id string) (*core.StoredRecord, error) {
	if err := validResource(resource); err != nil {
		return nil, err
	}

	sql := fmt.Sprintf(`
		SELECT id, data, updated_at, fetched_at
		FROM %s
		WHERE id = $1
	`, resource)
	record, err := scanRecord(s.pool.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get %s record %s: %w", resource, id, err)
	}
	return &record, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (core.StoredRecord, error) {
	var record core.StoredRecord
	var data []byte
	if err := row.Scan(&record.ID, &data, &record.UpdatedAt, &record.FetchedAt); err != nil {
		return core.StoredRecord{}, err
	}
	if err := json.Unmarshal(data, &record.Data); err != nil {
		return core.StoredRecord{}, fmt.Errorf("corrupt jsonb payload for %s: %w", record.ID, err)
	}
	return record, nil
}

func (s *recordStore) ResourceOverview(ctx context.Context) ([]ResourceCount, error) {
	overview := make([]ResourceCount, 0, len(Resources))
	for _, resource := range Resources {
		sql := fmt.Sprintf(`SELECT count(*), max(fetched_at) FROM %s`, resource)
		var count ResourceCount
		count.Resource = resource
		if err := s.pool.QueryRow(ctx, sql).Scan(&count.Records, &count.LastFetched); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", resource, err)
		}
		lastSynced, err := s.LastSyncedAt(ctx, resource)
		if err != nil {
			return nil, err
		}
		count.LastSyncedAt = lastSynced
		overview = append(overview, count)
	}
	return overview, nil
}

func (s *recordStore) LastSyncedAt(ctx context.Context, endpoint string) (*time.Time, error) {
	var syncedAt time.Time
	err := s.pool.QueryRow(ctx,
		`SELECT last_synced_at FROM sync_state WHERE endpoint = $1`, endpoint,
	).Scan(&syncedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read sync state for %s: %w", endpoint, err)
	}
	return &syncedAt, nil
}

func (s *recordStore) SetLastSyncedAt(ctx context.Context, endpoint string, syncedAt time.Time) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO sync_state (endpoint, last_synced_at)
		VALUES ($1, $2)
		ON CONFLICT (endpoint) DO UPDATE SET last_synced_at = EXCLUDED.last_synced_at
	`, endpoint, syncedAt)
	if err != nil {
		return fmt.Errorf("failed to record sync state for %s: %w", endpoint, err)
	}
	return nil
}
