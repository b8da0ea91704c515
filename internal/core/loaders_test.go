package core_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"inventory-agent/internal/core"
)

// fakeSource is an in-memory RecordSource used across the loader and report
// tests. Search ignores the query argument; the loaders never pass one.
type fakeSource struct {
	records map[string][]core.StoredRecord
}

func (f *fakeSource) Search(_ context.Context, resource, _ string, limit int) ([]core.StoredRecord, error) {
	records := f.records[resource]
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (f *fakeSource) Get(_ context.Context, resource, id string) (*core.StoredRecord, error) {
	for _, record := range f.records[resource] {
		if record.ID == id {
			r := record
			return &r, nil
		}
	}
	return nil, nil
}

// fixtureSource mirrors a small but representative slice of synced Contifico
// data: one catalogued variant product, two purchase orders whose receipt
// dates only exist inside recepciones sub-documents, a sale in the dedicated
// resource plus one only captured in the generic documents resource, and
// stock reported at variant level for one product and product level for two.
func fixtureSource() *fakeSource {
	fetched := time.Date(2024, 3, 12, 8, 0, 0, 0, time.UTC)
	return &fakeSource{records: map[string][]core.StoredRecord{
		"categories": {
			{ID: "CAT-1", Data: map[string]any{"id": "CAT-1", "nombre": "Camisas"}, FetchedAt: fetched},
		},
		"products": {
			{ID: "PROD-1", Data: map[string]any{
				"id": "PROD-1", "codigo": "SKU-1/54", "nombre": "Camisa manga larga",
				"categoria_id": "CAT-1",
			}, FetchedAt: fetched},
			{ID: "PROD-2", Data: map[string]any{
				"id": "PROD-2", "codigo": "SKU-2/42", "nombre": "Pantalon",
				"existencia": 5.0,
			}, FetchedAt: fetched},
			{ID: "PROD-3", Data: map[string]any{
				"id": "PROD-3", "codigo": "SKU-3", "existencia": 0.0,
			}, FetchedAt: fetched},
		},
		"variants": {
			{ID: "VAR-1", Data: map[string]any{
				"id": "VAR-1", "producto_id": "PROD-1", "codigo": "SKU-1/54",
				"existencia":          32.0,
				"fecha_actualizacion": "2024-03-11T00:00:00",
			}, FetchedAt: fetched},
		},
		"purchases": {
			{ID: "PO-1", Data: map[string]any{
				"id": "PO-1", "fecha_emision": "2024-01-01T00:00:00", "proveedor_id": "SUP-1",
				"detalles": []any{
					map[string]any{"producto_id": "PROD-1", "cantidad": 10.0},
				},
				"recepciones": []any{
					map[string]any{
						"fecha": "2024-01-05T06:00:00",
						"detalles": []any{
							map[string]any{"producto_id": "PROD-1"},
						},
					},
				},
			}, FetchedAt: fetched},
			{ID: "PO-2", Data: map[string]any{
				// Latin date format written by the legacy export job.
				"id": "PO-2", "fecha": "01/02/2024",
				"detalles": []any{
					map[string]any{"producto_codigo": "SKU-1/54", "producto_id": "PROD-1", "cantidad": 8.0},
				},
				"recepciones": []any{
					map[string]any{
						"fecha": "2024-02-04T22:00:00",
						"detalles": []any{
							map[string]any{"producto_codigo": "SKU-1/54"},
						},
					},
				},
			}, FetchedAt: fetched},
			{ID: "PO-3", Data: map[string]any{
				// No parseable order date: the whole document is skipped.
				"id": "PO-3",
				"detalles": []any{
					map[string]any{"producto_id": "PROD-1", "cantidad": 99.0},
				},
			}, FetchedAt: fetched},
		},
		"sales": {
			{ID: "SAL-1", Data: map[string]any{
				"id": "SAL-1", "fecha_emision": "2024-03-01T00:00:00", "cliente_id": "CLI-9",
				"detalles": []any{
					map[string]any{"producto_id": "PROD-1", "cantidad": 4.0},
				},
			}, FetchedAt: fetched},
		},
		"documents": {
			// Same id as the dedicated-resource record: must not double count.
			{ID: "PO-1", Data: map[string]any{
				"id": "PO-1", "tipo_registro": "PRO", "fecha_emision": "2024-01-01T00:00:00",
				"detalles": []any{
					map[string]any{"producto_id": "PROD-1", "cantidad": 999.0},
				},
			}, FetchedAt: fetched},
			// Customer invoice only captured by an old documents-only sync.
			{ID: "DOC-1", Data: map[string]any{
				"id": "DOC-1", "tipo": "FAC", "fecha_emision": "11/03/2024",
				"detalles": []any{
					map[string]any{"producto_codigo": "SKU-1/54", "producto_id": "PROD-1", "cantidad": 6.0},
				},
			}, FetchedAt: fetched},
			// Registry type wins over the FAC document type: supplier side.
			{ID: "DOC-2", Data: map[string]any{
				"id": "DOC-2", "tipo": "FAC", "tipo_registro": "PRO", "fecha_emision": "2024-03-05T00:00:00",
				"detalles": []any{
					map[string]any{"producto_id": "PROD-9", "cantidad": 50.0},
				},
			}, FetchedAt: fetched},
		},
	}}
}

func TestLoadPurchases(t *testing.T) {
	loader := core.NewLoader(fixtureSource())
	ctx := context.Background()

	purchases, err := loader.LoadPurchases(ctx, "", 50)
	if err != nil {
		t.Fatalf("LoadPurchases: %v", err)
	}
	// PO-1 and PO-2 from the dedicated resource, DOC-2 from the fallback.
	// PO-3 has no order date and the documents copy of PO-1 is deduplicated.
	if len(purchases) != 3 {
		t.Fatalf("got %d purchases, want 3: %+v", len(purchases), purchases)
	}

	byID := map[string]core.Purchase{}
	for _, p := range purchases {
		byID[p.PurchaseID] = p
	}

	po1 := byID["PO-1"]
	if !po1.Quantity.Equal(decimal.NewFromInt(10)) {
		t.Errorf("PO-1 quantity = %s, want 10", po1.Quantity)
	}
	if po1.ProductID != "PROD-1" || po1.SourceProductID != "PROD-1" {
		t.Errorf("PO-1 identity = (%q, %q), want raw id fallback PROD-1", po1.ProductID, po1.SourceProductID)
	}
	if po1.SupplierID != "SUP-1" {
		t.Errorf("PO-1 supplier = %q, want SUP-1", po1.SupplierID)
	}
	if lead := po1.LeadTime(); lead == nil || *lead != 102*time.Hour {
		t.Errorf("PO-1 lead time = %v, want 102h (matched by raw id in recepciones)", lead)
	}

	po2 := byID["PO-2"]
	if po2.ProductID != "SKU-1/54" || po2.SourceProductID != "PROD-1" {
		t.Errorf("PO-2 identity = (%q, %q), want variant code with retained source id", po2.ProductID, po2.SourceProductID)
	}
	if po2.OrderedAt != time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC) {
		t.Errorf("PO-2 ordered at = %v, want 2024-02-01 from the latin date", po2.OrderedAt)
	}
	if lead := po2.LeadTime(); lead == nil || *lead != 94*time.Hour {
		t.Errorf("PO-2 lead time = %v, want 94h (matched by code in recepciones)", lead)
	}

	doc2 := byID["DOC-2"]
	if doc2.ProductID != "PROD-9" || doc2.ReceivedAt != nil {
		t.Errorf("DOC-2 = %+v, want open PROD-9 purchase from the documents fallback", doc2)
	}
}

func TestLoadPurchases_FilterAndLeadTime(t *testing.T) {
	loader := core.NewLoader(fixtureSource())
	ctx := context.Background()

	purchases, err := loader.LoadPurchases(ctx, "PROD-1", 50)
	if err != nil {
		t.Fatalf("LoadPurchases: %v", err)
	}
	if len(purchases) != 2 {
		t.Fatalf("got %d purchases for PROD-1, want 2", len(purchases))
	}
	total := decimal.Zero
	for _, p := range purchases {
		total = total.Add(p.Quantity)
	}
	if !total.Equal(decimal.NewFromInt(18)) {
		t.Errorf("total purchased = %s, want 18", total)
	}
	if lead := core.AverageLeadTime(purchases); lead == nil || *lead != 98*time.Hour {
		t.Errorf("average lead time = %v, want 98h", lead)
	}

	// The base code matches the variant-coded line only.
	purchases, err = loader.LoadPurchases(ctx, "SKU-1", 50)
	if err != nil {
		t.Fatalf("LoadPurchases: %v", err)
	}
	if len(purchases) != 1 || purchases[0].PurchaseID != "PO-2" {
		t.Errorf("SKU-1 filter matched %+v, want only PO-2", purchases)
	}

	purchases, err = loader.LoadPurchases(ctx, "NOPE", 50)
	if err != nil {
		t.Fatalf("LoadPurchases: %v", err)
	}
	if len(purchases) != 0 {
		t.Errorf("unknown filter matched %d purchases, want 0", len(purchases))
	}
}

func TestLoadPurchases_ZeroLineQuantityDefersToDocument(t *testing.T) {
	src := &fakeSource{records: map[string][]core.StoredRecord{
		"purchases": {
			{ID: "PO-Z", Data: map[string]any{
				"id": "PO-Z", "fecha_emision": "2024-04-01T00:00:00",
				"cantidad": 7.0,
				"detalles": []any{
					map[string]any{"producto_id": "PROD-7", "cantidad": 0.0},
					map[string]any{"producto_id": "PROD-8", "cantidad": "0"},
				},
			}},
		},
	}}
	loader := core.NewLoader(src)

	purchases, err := loader.LoadPurchases(context.Background(), "", 50)
	if err != nil {
		t.Fatalf("LoadPurchases: %v", err)
	}
	if len(purchases) != 2 {
		t.Fatalf("got %d purchases, want 2: %+v", len(purchases), purchases)
	}

	byProduct := map[string]core.Purchase{}
	for _, p := range purchases {
		byProduct[p.ProductID] = p
	}
	// A numeric 0 on the line defers to the document-level quantity.
	if p := byProduct["PROD-7"]; !p.Quantity.Equal(decimal.NewFromInt(7)) {
		t.Errorf("PROD-7 quantity = %s, want the document-level 7", p.Quantity)
	}
	// A string "0" is an explicit per-line value and stays zero.
	if p := byProduct["PROD-8"]; !p.Quantity.IsZero() {
		t.Errorf("PROD-8 quantity = %s, want the explicit 0", p.Quantity)
	}
}

func TestLoadSales(t *testing.T) {
	loader := core.NewLoader(fixtureSource())
	ctx := context.Background()

	sales, err := loader.LoadSales(ctx, "", 50)
	if err != nil {
		t.Fatalf("LoadSales: %v", err)
	}
	// SAL-1 from the dedicated resource plus DOC-1 from the fallback; DOC-2
	// is supplier-side by registry type despite its FAC document type.
	if len(sales) != 2 {
		t.Fatalf("got %d sales, want 2: %+v", len(sales), sales)
	}

	byID := map[string]core.Sale{}
	for _, s := range sales {
		byID[s.SaleID] = s
	}
	if s := byID["SAL-1"]; !s.Quantity.Equal(decimal.NewFromInt(4)) || s.CustomerID != "CLI-9" {
		t.Errorf("SAL-1 = %+v, want quantity 4 for CLI-9", s)
	}
	doc1 := byID["DOC-1"]
	if !doc1.Quantity.Equal(decimal.NewFromInt(6)) {
		t.Errorf("DOC-1 quantity = %s, want 6", doc1.Quantity)
	}
	if doc1.SoldAt != time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC) {
		t.Errorf("DOC-1 sold at = %v, want 2024-03-11 from the latin date", doc1.SoldAt)
	}

	sales, err = loader.LoadSales(ctx, "SKU-1", 50)
	if err != nil {
		t.Fatalf("LoadSales: %v", err)
	}
	if len(sales) != 1 || sales[0].SaleID != "DOC-1" {
		t.Errorf("SKU-1 filter matched %+v, want only DOC-1", sales)
	}
}

func TestLoadStockLevels(t *testing.T) {
	loader := core.NewLoader(fixtureSource())
	ctx := context.Background()

	levels, err := loader.LoadStockLevels(ctx, "", 50)
	if err != nil {
		t.Fatalf("LoadStockLevels: %v", err)
	}
	// The variant snapshot for PROD-1 plus product-level fallbacks for the
	// two products without variants. The zero-quantity snapshot is kept.
	if len(levels) != 3 {
		t.Fatalf("got %d stock levels, want 3: %+v", len(levels), levels)
	}

	byProduct := map[string]core.StockLevel{}
	for _, l := range levels {
		byProduct[l.ProductID] = l
	}

	variant := byProduct["SKU-1/54"]
	if !variant.Quantity.Equal(decimal.NewFromInt(32)) || variant.SourceProductID != "PROD-1" {
		t.Errorf("variant level = %+v, want 32 units for PROD-1", variant)
	}
	if variant.AsOf != time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC) {
		t.Errorf("variant as-of = %v, want the fecha_actualizacion timestamp", variant.AsOf)
	}

	if l := byProduct["SKU-2/42"]; !l.Quantity.Equal(decimal.NewFromInt(5)) || l.SourceProductID != "PROD-2" {
		t.Errorf("product fallback level = %+v, want 5 units for PROD-2", l)
	}
	if l, ok := byProduct["SKU-3"]; !ok || !l.Quantity.IsZero() {
		t.Errorf("zero-quantity fallback level = %+v, want present with quantity 0", l)
	}

	levels, err = loader.LoadStockLevels(ctx, "SKU-2", 50)
	if err != nil {
		t.Fatalf("LoadStockLevels: %v", err)
	}
	if len(levels) != 1 || levels[0].ProductID != "SKU-2/42" {
		t.Errorf("SKU-2 filter matched %+v, want only the SKU-2/42 level", levels)
	}
}
