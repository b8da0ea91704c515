package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"inventory-agent/internal/erp"
	"inventory-agent/internal/store"
)

const batchSize = 100

// EndpointResult summarizes one endpoint sync run.
type EndpointResult struct {
	Resource string    `json:"resource"`
	Records  int       `json:"records"`
	SyncedAt time.Time `json:"synced_at"`
}

// SyncService pulls Contifico collections into the local record store.
// Syncs are incremental: each run resumes from the endpoint's recorded
// last-synced timestamp unless the caller forces a starting point.
type SyncService interface {
	// SyncResource syncs a single resource. since overrides the stored
	// incremental cursor when non-nil.
	SyncResource(ctx context.Context, resource string, since *time.Time) (*EndpointResult, error)

	// SyncAll syncs every known resource, continuing past per-endpoint
	// failures. The returned results cover the endpoints that succeeded; the
	// error aggregates those that did not.
	SyncAll(ctx context.Context, since *time.Time) ([]EndpointResult, error)
}

type syncService struct {
	client *erp.Client
	store  store.RecordStore
	logger *logrus.Logger
}

// NewSyncService constructs a SyncService.
func NewSyncService(client *erp.Client, recordStore store.RecordStore, logger *logrus.Logger) SyncService {
	if logger == nil {
		logger = logrus.New()
	}
	return &syncService{client: client, store: recordStore, logger: logger}
}

func (s *syncService) SyncResource(ctx context.Context, resource string, since *time.Time) (*EndpointResult, error) {
	endpoint, ok := erp.Endpoints()[resource]
	if !ok {
		return nil, fmt.Errorf("%w: %q", store.ErrUnknownResource, resource)
	}

	updatedSince := since
	if updatedSince == nil {
		cursor, err := s.store.LastSyncedAt(ctx, resource)
		if err != nil {
			return nil, err
		}
		updatedSince = cursor
	}

	log := s.logger.WithField("resource", resource)
	log.Info("sync started")

	records, err := s.client.FetchAll(ctx, endpoint, updatedSince)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", resource, err)
	}

	total := 0
	for start := 0; start < len(records); start += batchSize {
		end := start + batchSize
		if end > len(records) {
			end = len(records)
		}
		written, err := s.store.UpsertRecords(ctx, resource, records[start:end])
		if err != nil {
			return nil, err
		}
		total += written
	}

	syncedAt := time.Now().UTC()
	if err := s.store.SetLastSyncedAt(ctx, resource, syncedAt); err != nil {
		return nil, err
	}

	log.WithField("records", total).Info("sync complete")
	return &EndpointResult{Resource: resource, Records: total, SyncedAt: syncedAt}, nil
}

func (s *syncService) SyncAll(ctx context.Context, since *time.Time) ([]EndpointResult, error) {
	var results []EndpointResult
	var failures []string
	for _, resource := range store.Resources {
		result, err := s.SyncResource(ctx, resource, since)
		if err != nil {
			s.logger.WithField("resource", resource).WithError(err).Error("sync failed")
			failures = append(failures, fmt.Sprintf("%s: %v", resource, err))
			continue
		}
		results = append(results, *result)
	}
	if len(failures) > 0 {
		return results, fmt.Errorf("sync finished with failures: %s", strings.Join(failures, "; "))
	}
	return results, nil
}
