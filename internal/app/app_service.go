package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"inventory-agent/internal/ai"
	"inventory-agent/internal/core"
	"inventory-agent/internal/ingest"
	"inventory-agent/internal/store"
)

type appService struct {
	store   store.RecordStore
	reports core.ReportService
	sync    ingest.SyncService
	agent   *ai.Agent
}

// NewAppService constructs an appService that satisfies ApplicationService.
// sync and agent may be nil when their credentials are not configured; the
// corresponding operations then return a configuration error.
func NewAppService(
	recordStore store.RecordStore,
	reports core.ReportService,
	sync ingest.SyncService,
	agent *ai.Agent,
) ApplicationService {
	return &appService{
		store:   recordStore,
		reports: reports,
		sync:    sync,
		agent:   agent,
	}
}

func (s *appService) GetOverview(ctx context.Context) (*OverviewResult, error) {
	resources, err := s.store.ResourceOverview(ctx)
	if err != nil {
		return nil, err
	}
	return &OverviewResult{Resources: resources}, nil
}

func (s *appService) SearchRecords(ctx context.Context, resource, query string, limit int) (*RecordSearchResult, error) {
	records, err := s.store.Search(ctx, resource, query, limit)
	if err != nil {
		return nil, err
	}
	return &RecordSearchResult{Resource: resource, Query: query, Records: records}, nil
}

func (s *appService) GetRecord(ctx context.Context, resource, id string) (*core.StoredRecord, error) {
	return s.store.Get(ctx, resource, id)
}

func (s *appService) GetProductReport(ctx context.Context, productID string, req ReportRequest) (*core.ProductReport, error) {
	return s.reports.GenerateProductKPIs(ctx, productID, req.toOptions())
}

func (s *appService) GetInventoryReport(ctx context.Context, req ReportRequest) (*core.InventoryReport, error) {
	return s.reports.GenerateInventoryReport(ctx, req.toOptions())
}

func (s *appService) ExportInventoryReportXLSX(ctx context.Context, req ReportRequest) ([]byte, error) {
	report, err := s.reports.GenerateInventoryReport(ctx, req.toOptions())
	if err != nil {
		return nil, err
	}
	return renderInventoryWorkbook(report)
}

func (s *appService) SyncResource(ctx context.Context, resource string, since *time.Time) (*ingest.EndpointResult, error) {
	if s.sync == nil {
		return nil, fmt.Errorf("sync is not configured; set CONTIFICO_API_KEY and CONTIFICO_API_TOKEN")
	}
	return s.sync.SyncResource(ctx, resource, since)
}

func (s *appService) SyncAll(ctx context.Context, since *time.Time) ([]ingest.EndpointResult, error) {
	if s.sync == nil {
		return nil, fmt.Errorf("sync is not configured; set CONTIFICO_API_KEY and CONTIFICO_API_TOKEN")
	}
	return s.sync.SyncAll(ctx, since)
}

// AskInventoryQuestion grounds the model on the store overview and a compact
// view of the current inventory report, then asks for a structured answer.
func (s *appService) AskInventoryQuestion(ctx context.Context, question string) (*ai.Insight, error) {
	if s.agent == nil {
		return nil, fmt.Errorf("AI agent is not configured; set OPENAI_API_KEY")
	}

	registry := ai.NewProviderRegistry()
	registry.Register(ai.ContextProvider{
		Name:        "store_overview",
		Description: "Record counts and sync freshness per synced Contifico resource.",
		Fetch: func(ctx context.Context) (string, error) {
			overview, err := s.GetOverview(ctx)
			if err != nil {
				return "", err
			}
			return encodeContext(overview)
		},
	})
	registry.Register(ai.ContextProvider{
		Name:        "inventory_report",
		Description: "Fleet-wide KPI summary, rankings, and alert lists (per-product entity detail omitted).",
		Fetch: func(ctx context.Context) (string, error) {
			report, err := s.reports.GenerateInventoryReport(ctx, core.ReportOptions{})
			if err != nil {
				return "", err
			}
			// Entity-level detail would blow the prompt; the summary view
			// carries everything the model needs for fleet questions.
			compact := struct {
				Summary  core.ReportSummary  `json:"summary"`
				Rankings core.ReportRankings `json:"rankings"`
				Alerts   core.ReportAlerts   `json:"alerts"`
			}{report.Summary, report.Rankings, report.Alerts}
			return encodeContext(compact)
		},
	})

	return s.agent.AnswerQuestion(ctx, question, registry)
}

func encodeContext(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode context block: %w", err)
	}
	return string(data), nil
}
