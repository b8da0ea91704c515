package app

import (
	"context"
	"time"

	"inventory-agent/internal/ai"
	"inventory-agent/internal/core"
	"inventory-agent/internal/ingest"
)

// ApplicationService is the single interface all adapters (CLI, Web) call.
// It decouples presentation from business logic. Implementations must contain
// no fmt.Println, no ANSI codes, and no display logic of any kind.
type ApplicationService interface {
	// GetOverview reports record counts and sync freshness per resource.
	GetOverview(ctx context.Context) (*OverviewResult, error)

	// SearchRecords returns raw stored documents for a resource, optionally
	// filtered by an id or payload substring.
	SearchRecords(ctx context.Context, resource, query string, limit int) (*RecordSearchResult, error)

	// GetRecord returns a single stored document by id, or nil when absent.
	GetRecord(ctx context.Context, resource, id string) (*core.StoredRecord, error)

	// GetProductReport builds the KPI report for one product. The identifier
	// may be a variant code, a base code, or a Contifico internal id.
	GetProductReport(ctx context.Context, productID string, req ReportRequest) (*core.ProductReport, error)

	// GetInventoryReport builds the fleet-wide KPI report with rankings and
	// alert lists.
	GetInventoryReport(ctx context.Context, req ReportRequest) (*core.InventoryReport, error)

	// ExportInventoryReportXLSX renders the fleet-wide report as a workbook.
	ExportInventoryReportXLSX(ctx context.Context, req ReportRequest) ([]byte, error)

	// SyncResource pulls one Contifico collection into the record store.
	// since overrides the stored incremental cursor when non-nil.
	SyncResource(ctx context.Context, resource string, since *time.Time) (*ingest.EndpointResult, error)

	// SyncAll pulls every known collection, continuing past per-endpoint
	// failures.
	SyncAll(ctx context.Context, since *time.Time) ([]ingest.EndpointResult, error)

	// AskInventoryQuestion answers a natural language question about the
	// inventory position, grounded in the current report and store overview.
	AskInventoryQuestion(ctx context.Context, question string) (*ai.Insight, error)
}
