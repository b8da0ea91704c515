package core_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"inventory-agent/internal/core"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("bad test timestamp %q: %v", value, err)
	}
	return parsed
}

func purchaseWithLead(ordered time.Time, lead time.Duration) core.Purchase {
	received := ordered.Add(lead)
	return core.Purchase{
		PurchaseID: "PO",
		ProductID:  "SKU-1/54",
		OrderedAt:  ordered,
		ReceivedAt: &received,
		Quantity:   decimal.NewFromInt(1),
	}
}

func TestAverageLeadTime(t *testing.T) {
	ordered := mustTime(t, "2024-01-01T00:00:00Z")

	if got := core.AverageLeadTime(nil); got != nil {
		t.Errorf("expected nil for no purchases, got %v", got)
	}

	open := core.Purchase{PurchaseID: "PO-OPEN", ProductID: "SKU-1/54", OrderedAt: ordered}
	if got := core.AverageLeadTime([]core.Purchase{open}); got != nil {
		t.Errorf("expected nil when no purchase has been received, got %v", got)
	}

	purchases := []core.Purchase{
		purchaseWithLead(ordered, 102*time.Hour),
		purchaseWithLead(ordered, 94*time.Hour),
		open,
		purchaseWithLead(ordered, -6*time.Hour), // upstream correction, excluded
	}
	got := core.AverageLeadTime(purchases)
	if got == nil {
		t.Fatal("expected a lead time, got nil")
	}
	if *got != 98*time.Hour {
		t.Errorf("average lead time = %v, want 98h", *got)
	}
}

func TestCalculateSalesVelocity(t *testing.T) {
	if got := core.CalculateSalesVelocity(nil, 30); got != nil {
		t.Errorf("expected nil for no sales, got %v", got)
	}

	sales := []core.Sale{
		{SaleID: "S-1", ProductID: "SKU-1/54", SoldAt: mustTime(t, "2024-03-01T00:00:00Z"), Quantity: decimal.NewFromInt(4)},
		{SaleID: "S-2", ProductID: "SKU-1/54", SoldAt: mustTime(t, "2024-03-11T00:00:00Z"), Quantity: decimal.NewFromInt(6)},
	}

	got := core.CalculateSalesVelocity(sales, 0)
	if got == nil {
		t.Fatal("expected a velocity, got nil")
	}
	want := decimal.NewFromInt(10).Div(decimal.NewFromInt(11)) // derived 11-day window
	if !got.Equal(want) {
		t.Errorf("derived-window velocity = %s, want %s", got, want)
	}

	got = core.CalculateSalesVelocity(sales, 20)
	want = decimal.NewFromInt(10).Div(decimal.NewFromInt(20))
	if got == nil || !got.Equal(want) {
		t.Errorf("explicit-period velocity = %v, want %s", got, want)
	}

	// Sub-day explicit periods clamp to a one-day window.
	got = core.CalculateSalesVelocity(sales, -3)
	want = decimal.NewFromInt(10)
	if got == nil || !got.Equal(want) {
		t.Errorf("clamped-period velocity = %v, want %s", got, want)
	}
}

func TestCalculateStockCoverage(t *testing.T) {
	levels := []core.StockLevel{
		{ProductID: "SKU-1/54", Quantity: decimal.NewFromInt(32), AsOf: mustTime(t, "2024-03-11T00:00:00Z")},
	}

	if got := core.CalculateStockCoverage(levels, nil); got != nil {
		t.Errorf("expected nil for undefined velocity, got %v", got)
	}
	zero := decimal.Zero
	if got := core.CalculateStockCoverage(levels, &zero); got != nil {
		t.Errorf("expected nil for zero velocity, got %v", got)
	}
	velocity := decimal.NewFromInt(2)
	if got := core.CalculateStockCoverage(nil, &velocity); got != nil {
		t.Errorf("expected nil for no stock snapshots, got %v", got)
	}

	got := core.CalculateStockCoverage(levels, &velocity)
	if got == nil || !got.Equal(decimal.NewFromInt(16)) {
		t.Errorf("coverage = %v, want 16", got)
	}
}

func TestCalculateInventoryTurnover(t *testing.T) {
	sales := []core.Sale{
		{SaleID: "S-1", ProductID: "SKU-1/54", SoldAt: mustTime(t, "2024-03-01T00:00:00Z"), Quantity: decimal.NewFromInt(10)},
	}

	if got := core.CalculateInventoryTurnover(sales, decimal.Zero, 30); got != nil {
		t.Errorf("expected nil for zero average inventory, got %v", got)
	}
	if got := core.CalculateInventoryTurnover(nil, decimal.NewFromInt(16), 30); got != nil {
		t.Errorf("expected nil for no sales, got %v", got)
	}

	got := core.CalculateInventoryTurnover(sales, decimal.NewFromInt(16), 30)
	want := decimal.NewFromInt(10).
		Div(decimal.NewFromInt(16)).
		Mul(decimal.NewFromInt(365).Div(decimal.NewFromInt(30)))
	if got == nil || !got.Equal(want) {
		t.Errorf("turnover = %v, want %s", got, want)
	}
}

func TestCalculateReorderPoint(t *testing.T) {
	got, err := core.CalculateReorderPoint(decimal.NewFromInt(3), decimal.NewFromInt(4), decimal.NewFromInt(5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(17)) {
		t.Errorf("reorder point = %s, want 17", got)
	}

	negatives := []struct {
		name                     string
		demand, leadDays, safety decimal.Decimal
	}{
		{"negative demand", decimal.NewFromInt(-1), decimal.NewFromInt(4), decimal.NewFromInt(5)},
		{"negative lead time", decimal.NewFromInt(3), decimal.NewFromInt(-4), decimal.NewFromInt(5)},
		{"negative safety stock", decimal.NewFromInt(3), decimal.NewFromInt(4), decimal.NewFromInt(-5)},
	}
	for _, tt := range negatives {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := core.CalculateReorderPoint(tt.demand, tt.leadDays, tt.safety); !errors.Is(err, core.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}
