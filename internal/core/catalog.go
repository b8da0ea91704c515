package core

import (
	"context"
	"fmt"
	"strings"
)

// CatalogEntry is the enriched metadata for one catalog-known product.
// Entries are built fresh for every report call from the catalog snapshot in
// the record store and never persisted independently.
type CatalogEntry struct {
	Code         string `json:"code"`
	InternalID   string `json:"internal_id,omitempty"`
	Name         string `json:"name,omitempty"`
	CategoryID   string `json:"category_id,omitempty"`
	CategoryName string `json:"category_name,omitempty"`
}

// ProductCatalog indexes catalog entries by product code and by internal id so
// a raw identifier from any entity can be resolved to a canonical product key.
type ProductCatalog struct {
	byCode       map[string]CatalogEntry
	byInternalID map[string]CatalogEntry
}

// NewProductCatalog builds the index. Duplicate codes or internal ids are
// last-write-wins, matching the most-recently-synced record.
func NewProductCatalog(entries []CatalogEntry) *ProductCatalog {
	c := &ProductCatalog{
		byCode:       make(map[string]CatalogEntry, len(entries)),
		byInternalID: make(map[string]CatalogEntry, len(entries)),
	}
	for _, entry := range entries {
		if entry.Code != "" {
			c.byCode[entry.Code] = entry
		}
		if entry.InternalID != "" {
			c.byInternalID[entry.InternalID] = entry
		}
	}
	return c
}

// Resolve maps a (code, source id) pair to the canonical product key. An
// exact code match wins, then an exact internal-id match; with no catalog hit
// the non-empty input is echoed back with no metadata, so uncatalogued
// products still report under their raw identifier.
func (c *ProductCatalog) Resolve(code, sourceID string) (string, *CatalogEntry) {
	candidateCode := strings.TrimSpace(code)
	candidateID := strings.TrimSpace(sourceID)

	if candidateCode != "" {
		if entry, ok := c.byCode[candidateCode]; ok {
			key := entry.Code
			if key == "" {
				key = candidateCode
			}
			return key, &entry
		}
	}

	if candidateID != "" {
		if entry, ok := c.byInternalID[candidateID]; ok {
			key := entry.Code
			if key == "" {
				key = candidateCode
			}
			if key == "" {
				key = candidateID
			}
			return key, &entry
		}
	}

	if candidateCode != "" {
		return candidateCode, nil
	}
	if candidateID != "" {
		return candidateID, nil
	}
	return "", nil
}

// LoadProductCatalog builds a catalog from the categories and products
// resources. Category names missing inline on a product are filled from the
// categories map.
func LoadProductCatalog(ctx context.Context, src RecordSource, limit int) (*ProductCatalog, error) {
	categoryRecords, err := src.Search(ctx, "categories", "", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	categories := make(map[string]string, len(categoryRecords))
	for _, record := range categoryRecords {
		categoryID := firstString(record.Data, []string{"id"})
		if categoryID == "" {
			categoryID = strings.TrimSpace(record.ID)
		}
		if categoryID == "" {
			continue
		}
		if name := firstString(record.Data, []string{"nombre", "name"}); name != "" {
			categories[categoryID] = name
		}
	}

	productRecords, err := src.Search(ctx, "products", "", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	entries := make([]CatalogEntry, 0, len(productRecords))
	for _, record := range productRecords {
		internalID := firstString(record.Data, []string{"id"})
		if internalID == "" {
			internalID = strings.TrimSpace(record.ID)
		}
		code := firstString(record.Data, []string{"codigo", "code"})
		if code == "" && internalID == "" {
			continue
		}
		if code == "" {
			code = internalID
		}
		categoryID := firstString(record.Data, []string{"categoria_id", "category_id"})
		categoryName := firstString(record.Data, []string{"categoria_nombre", "category_name"})
		if categoryName == "" && categoryID != "" {
			categoryName = categories[categoryID]
		}
		entries = append(entries, CatalogEntry{
			Code:         code,
			InternalID:   internalID,
			Name:         firstString(record.Data, []string{"nombre", "name"}),
			CategoryID:   categoryID,
			CategoryName: categoryName,
		})
	}

	return NewProductCatalog(entries), nil
}
