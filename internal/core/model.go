package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase is one normalized purchase line extracted from a stored document.
// ProductID carries the resolved display identifier (the variant code when the
// upstream line exposed one); SourceProductID preserves the original internal
// identifier so catalog re-resolution and cross-scheme filtering stay possible.
type Purchase struct {
	PurchaseID      string          `json:"purchase_id"`
	ProductID       string          `json:"product_id"`
	SourceProductID string          `json:"source_product_id,omitempty"`
	OrderedAt       time.Time       `json:"ordered_at"`
	ReceivedAt      *time.Time      `json:"received_at,omitempty"`
	Quantity        decimal.Decimal `json:"quantity"`
	WarehouseID     string          `json:"warehouse_id,omitempty"`
	SupplierID      string          `json:"supplier_id,omitempty"`
}

// LeadTime returns the elapsed time between ordering and receiving, or nil
// while the purchase is still open.
func (p Purchase) LeadTime() *time.Duration {
	if p.ReceivedAt == nil {
		return nil
	}
	d := p.ReceivedAt.Sub(p.OrderedAt)
	return &d
}

// ProductCode returns the base code of the purchased variant.
func (p Purchase) ProductCode() string {
	code, _ := SplitSKUAndSize(p.ProductID)
	return code
}

// VariantSize returns the size suffix of the purchased variant, if any.
func (p Purchase) VariantSize() string {
	_, size := SplitSKUAndSize(p.ProductID)
	return size
}

// Sale is one normalized sale line extracted from a stored document.
type Sale struct {
	SaleID          string          `json:"sale_id"`
	ProductID       string          `json:"product_id"`
	SourceProductID string          `json:"source_product_id,omitempty"`
	SoldAt          time.Time       `json:"sold_at"`
	Quantity        decimal.Decimal `json:"quantity"`
	WarehouseID     string          `json:"warehouse_id,omitempty"`
	CustomerID      string          `json:"customer_id,omitempty"`
}

// ProductCode returns the base code of the sold variant.
func (s Sale) ProductCode() string {
	code, _ := SplitSKUAndSize(s.ProductID)
	return code
}

// ProductLabel returns the human readable variant label for the sold product.
func (s Sale) ProductLabel() string {
	return FormatVariantLabel(s.ProductID)
}

// StockLevel is one stock snapshot for a product or variant.
type StockLevel struct {
	ProductID       string          `json:"product_id"`
	SourceProductID string          `json:"source_product_id,omitempty"`
	Quantity        decimal.Decimal `json:"quantity"`
	AsOf            time.Time       `json:"as_of"`
	WarehouseID     string          `json:"warehouse_id,omitempty"`
}

// ProductCode returns the base code of the stocked variant.
func (l StockLevel) ProductCode() string {
	code, _ := SplitSKUAndSize(l.ProductID)
	return code
}

// StoredRecord is the raw document wrapper handed out by the record store:
// an upstream payload plus the bookkeeping timestamps recorded at sync time.
type StoredRecord struct {
	ID        string         `json:"id"`
	Data      map[string]any `json:"data"`
	UpdatedAt time.Time      `json:"updated_at"`
	FetchedAt time.Time      `json:"fetched_at"`
}
