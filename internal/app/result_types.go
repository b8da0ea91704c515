package app

import (
	"inventory-agent/internal/core"
	"inventory-agent/internal/store"
)

// OverviewResult reports per-resource record counts and sync freshness.
type OverviewResult struct {
	Resources []store.ResourceCount `json:"resources"`
}

// RecordSearchResult wraps a raw record search with its echo parameters.
type RecordSearchResult struct {
	Resource string              `json:"resource"`
	Query    string              `json:"query,omitempty"`
	Records  []core.StoredRecord `json:"records"`
}
