package core

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// RecordSource is the read contract the normalizer consumes: a document store
// keyed by resource name, returning the most-recently-fetched records first.
type RecordSource interface {
	// Search returns up to limit records for the resource, newest fetch
	// first, optionally filtered by id or payload substring.
	Search(ctx context.Context, resource, query string, limit int) ([]StoredRecord, error)
	// Get returns a single record by id, or nil when absent.
	Get(ctx context.Context, resource, id string) (*StoredRecord, error)
}

// Loader converts raw stored documents into typed entity slices. It tolerates
// the full spread of historical Contifico schemas: line-item arrays under
// detalles or items, nested recepciones sub-documents, flat product-level
// stock records, and the legacy field vocabulary captured in the alias tables.
type Loader struct {
	src RecordSource
}

func NewLoader(src RecordSource) *Loader {
	return &Loader{src: src}
}

// lineIdentity resolves the product identity of one document line. The
// display identifier is the variant code when the line exposes one, falling
// back to the raw internal id; the raw id is always retained separately.
// ok is false when the line references no product at all.
func lineIdentity(line, doc map[string]any) (display, source string, ok bool) {
	code := firstString(line, productCodeFields)
	rawID := firstString(line, productIDFields)
	if rawID == "" {
		rawID = firstString(doc, productIDFields)
	}
	if code == "" && rawID == "" {
		return "", "", false
	}
	display = code
	if display == "" {
		display = rawID
	}
	return display, rawID, true
}

// matchesProductFilter reports whether an entity with the given display and
// source identifiers matches a requested product id. The filter matches the
// resolved display code, the normalized base code, or the original source id.
func matchesProductFilter(display, source, filter string) bool {
	if filter == "" {
		return true
	}
	if display == filter || source == filter {
		return true
	}
	base, _ := SplitSKUAndSize(display)
	return base == filter
}

// ── Purchases ─────────────────────────────────────────────────────────────────

// purchaseLines extracts zero or more Purchase entities from one stored
// purchase document. Documents without a parseable order date are skipped
// entirely; lines without a resolvable product identity are skipped.
func purchaseLines(record StoredRecord) []Purchase {
	data := record.Data
	if data == nil {
		return nil
	}
	orderedAt := firstDateTime(data, purchaseDateFields)
	if orderedAt == nil {
		return nil
	}

	lines := asObjectList(data["detalles"])
	if len(lines) == 0 {
		lines = asObjectList(data["items"])
	}
	receptions := asObjectList(data["recepciones"])
	warehouseID := firstString(data, warehouseFields)
	supplierID := firstString(data, supplierFields)

	var purchases []Purchase
	for _, line := range lines {
		display, source, ok := lineIdentity(line, data)
		if !ok {
			continue
		}

		receivedAt := firstDateTime(line, receiptDateFields)
		if receivedAt == nil {
			receivedAt = firstDateTime(data, receiptDateFields)
		}
		if receivedAt == nil {
			receivedAt = receptionDateFor(receptions, display, source)
		}

		quantity, found := firstQuantity(line, quantityFields)
		if !found {
			quantity, _ = firstQuantity(data, quantityFields)
		}

		purchases = append(purchases, Purchase{
			PurchaseID:      record.ID,
			ProductID:       display,
			SourceProductID: source,
			OrderedAt:       *orderedAt,
			ReceivedAt:      receivedAt,
			Quantity:        quantity,
			WarehouseID:     warehouseID,
			SupplierID:      supplierID,
		})
	}
	return purchases
}

// receptionDateFor scans the recepciones sub-list for the first reception
// whose own detail lines reference the same product, by raw id or by code.
func receptionDateFor(receptions []map[string]any, display, source string) *time.Time {
	for _, reception := range receptions {
		date := firstDateTime(reception, receptionEntryDateFields)
		if date == nil {
			continue
		}
		for _, detail := range asObjectList(reception["detalles"]) {
			ref := firstString(detail, productIDFields)
			if ref == "" {
				ref = firstString(detail, productCodeFields)
			}
			if ref != "" && (ref == source || ref == display) {
				return date
			}
		}
	}
	return nil
}

// isPurchaseDocument classifies a generic documents-resource record as a
// purchase-side document: registry type PRO, or — for old records that lack a
// registry type — a document type in the purchase taxonomy.
func isPurchaseDocument(data map[string]any) bool {
	registry := strings.ToUpper(firstString(data, registryTypeFields))
	if registry != "" {
		return registry == "PRO"
	}
	return purchaseDocumentTypes[strings.ToUpper(firstString(data, documentTypeFields))]
}

// isSalesDocument is the customer-side counterpart of isPurchaseDocument.
func isSalesDocument(data map[string]any) bool {
	registry := strings.ToUpper(firstString(data, registryTypeFields))
	if registry != "" {
		return registry == "CLI"
	}
	return salesDocumentTypes[strings.ToUpper(firstString(data, documentTypeFields))]
}

// LoadPurchases loads normalized purchase lines, optionally filtered to one
// product. When the dedicated purchases resource yields fewer documents than
// the requested limit, the generic documents resource is scanned as a
// fallback for purchase-side documents not already seen — older syncs only
// captured those. Dedicated-resource records always win; the fallback fills
// gaps and never duplicates a document id.
func (l *Loader) LoadPurchases(ctx context.Context, productID string, limit int) ([]Purchase, error) {
	records, err := l.src.Search(ctx, "purchases", "", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load purchases: %w", err)
	}

	seen := make(map[string]bool, len(records))
	var purchases []Purchase
	collect := func(record StoredRecord) {
		for _, p := range purchaseLines(record) {
			if !matchesProductFilter(p.ProductID, p.SourceProductID, productID) {
				continue
			}
			purchases = append(purchases, p)
		}
	}

	for _, record := range records {
		seen[record.ID] = true
		collect(record)
	}

	if len(purchases) < limit {
		documents, err := l.src.Search(ctx, "documents", "", limit)
		if err != nil {
			return nil, fmt.Errorf("failed to load purchase documents: %w", err)
		}
		for _, record := range documents {
			if seen[record.ID] || record.Data == nil || !isPurchaseDocument(record.Data) {
				continue
			}
			seen[record.ID] = true
			collect(record)
		}
	}

	return purchases, nil
}

// ── Sales ─────────────────────────────────────────────────────────────────────

// saleLines extracts zero or more Sale entities from one stored sales
// document. Sales have no receipt concept, otherwise the pipeline mirrors
// purchases.
func saleLines(record StoredRecord) []Sale {
	data := record.Data
	if data == nil {
		return nil
	}
	soldAt := firstDateTime(data, saleDateFields)
	if soldAt == nil {
		return nil
	}

	lines := asObjectList(data["detalles"])
	if len(lines) == 0 {
		lines = asObjectList(data["items"])
	}
	warehouseID := firstString(data, warehouseFields)
	customerID := firstString(data, customerFields)

	var sales []Sale
	for _, line := range lines {
		display, source, ok := lineIdentity(line, data)
		if !ok {
			continue
		}
		quantity, found := firstQuantity(line, quantityFields)
		if !found {
			quantity, _ = firstQuantity(data, quantityFields)
		}
		sales = append(sales, Sale{
			SaleID:          record.ID,
			ProductID:       display,
			SourceProductID: source,
			SoldAt:          *soldAt,
			Quantity:        quantity,
			WarehouseID:     warehouseID,
			CustomerID:      customerID,
		})
	}
	return sales
}

// LoadSales loads normalized sale lines, optionally filtered to one product,
// with the same documents-resource fallback as LoadPurchases gated on the
// customer-side taxonomy.
func (l *Loader) LoadSales(ctx context.Context, productID string, limit int) ([]Sale, error) {
	records, err := l.src.Search(ctx, "sales", "", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load sales: %w", err)
	}

	seen := make(map[string]bool, len(records))
	var sales []Sale
	collect := func(record StoredRecord) {
		for _, s := range saleLines(record) {
			if !matchesProductFilter(s.ProductID, s.SourceProductID, productID) {
				continue
			}
			sales = append(sales, s)
		}
	}

	for _, record := range records {
		seen[record.ID] = true
		collect(record)
	}

	if len(sales) < limit {
		documents, err := l.src.Search(ctx, "documents", "", limit)
		if err != nil {
			return nil, fmt.Errorf("failed to load sales documents: %w", err)
		}
		for _, record := range documents {
			if seen[record.ID] || record.Data == nil || !isSalesDocument(record.Data) {
				continue
			}
			seen[record.ID] = true
			collect(record)
		}
	}

	return sales, nil
}

// ── Stock levels ──────────────────────────────────────────────────────────────

// stockLevelFrom extracts one StockLevel from a variant or product record,
// scanning both the nested payload and the top-level record for identifiers.
// Returns nil when no product identity can be resolved.
func stockLevelFrom(record StoredRecord, now time.Time) *StockLevel {
	data := record.Data
	if data == nil {
		data = map[string]any{}
	}

	code := firstString(data, productCodeFields)
	rawID := firstString(data, productIDFields)
	if rawID == "" {
		rawID = firstString(data, []string{"id"})
	}
	if rawID == "" {
		rawID = strings.TrimSpace(record.ID)
	}
	display := code
	if display == "" {
		display = rawID
	}
	if display == "" {
		return nil
	}

	asOf := firstDateTime(data, stockDateFields)
	if asOf == nil && !record.FetchedAt.IsZero() {
		t := record.FetchedAt
		asOf = &t
	}
	if asOf == nil {
		asOf = &now
	}

	quantity, _ := firstQuantity(data, stockQuantityFields)

	return &StockLevel{
		ProductID:       display,
		SourceProductID: rawID,
		Quantity:        quantity,
		AsOf:            *asOf,
		WarehouseID:     firstString(data, warehouseFields),
	}
}

// LoadStockLevels loads stock snapshots from the variants resource, falling
// back to product-level records for simple products whose inventory is only
// reported on the product itself. The fallback skips any product already
// represented by a variant snapshot.
func (l *Loader) LoadStockLevels(ctx context.Context, productID string, limit int) ([]StockLevel, error) {
	records, err := l.src.Search(ctx, "variants", "", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load stock levels: %w", err)
	}

	now := time.Now().UTC()
	represented := make(map[string]bool)
	var levels []StockLevel
	collect := func(record StoredRecord) {
		level := stockLevelFrom(record, now)
		if level == nil {
			return
		}
		represented[level.ProductID] = true
		if level.SourceProductID != "" {
			represented[level.SourceProductID] = true
		}
		if !matchesProductFilter(level.ProductID, level.SourceProductID, productID) {
			return
		}
		levels = append(levels, *level)
	}

	for _, record := range records {
		collect(record)
	}

	if len(levels) < limit {
		products, err := l.src.Search(ctx, "products", "", limit)
		if err != nil {
			return nil, fmt.Errorf("failed to load product stock fallback: %w", err)
		}
		for _, record := range products {
			level := stockLevelFrom(record, now)
			if level == nil || represented[level.ProductID] || represented[level.SourceProductID] {
				continue
			}
			collect(record)
		}
	}

	return levels, nil
}
