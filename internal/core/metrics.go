package core

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Metric functions are pure and deterministic over in-memory entity slices.
// A nil result means the metric is undefined for the given inputs — empty
// collections and zero velocities are expected states, not errors.

var daysPerYear = decimal.NewFromInt(365)

// AverageLeadTime returns the arithmetic mean of the lead times of all
// purchases that have been received. Negative lead times (receipt recorded
// before the order date by upstream corrections) are excluded. Returns nil
// when no purchase qualifies.
func AverageLeadTime(purchases []Purchase) *time.Duration {
	var total time.Duration
	var count int64
	for _, p := range purchases {
		lead := p.LeadTime()
		if lead == nil || *lead < 0 {
			continue
		}
		total += *lead
		count++
	}
	if count == 0 {
		return nil
	}
	avg := time.Duration(int64(total) / count)
	return &avg
}

// periodInDays resolves the observation window for velocity and turnover.
// An explicit periodDays is clamped to at least one day; otherwise the window
// is derived from the sales themselves as (last − first).days + 1, floored at
// one. Returns 0 only for an empty derived window.
func periodInDays(sales []Sale, periodDays int) int {
	if periodDays != 0 {
		if periodDays < 1 {
			return 1
		}
		return periodDays
	}
	if len(sales) == 0 {
		return 0
	}
	start, end := sales[0].SoldAt, sales[0].SoldAt
	for _, s := range sales[1:] {
		if s.SoldAt.Before(start) {
			start = s.SoldAt
		}
		if s.SoldAt.After(end) {
			end = s.SoldAt
		}
	}
	days := int(end.Sub(start).Hours()/24) + 1
	if days < 1 {
		return 1
	}
	return days
}

func totalQuantitySold(sales []Sale) decimal.Decimal {
	total := decimal.Zero
	for _, s := range sales {
		total = total.Add(s.Quantity)
	}
	return total
}

// CalculateSalesVelocity returns units sold per day over the observation
// window. Pass periodDays 0 to derive the window from the sales themselves.
// Returns nil for an empty sales list or a non-positive window.
func CalculateSalesVelocity(sales []Sale, periodDays int) *decimal.Decimal {
	if len(sales) == 0 {
		return nil
	}
	days := periodInDays(sales, periodDays)
	if days <= 0 {
		return nil
	}
	v := totalQuantitySold(sales).Div(decimal.NewFromInt(int64(days)))
	return &v
}

// CalculateStockCoverage returns the days of inventory remaining at the given
// sales velocity. Returns nil when the velocity is undefined or non-positive,
// or when there are no stock snapshots.
func CalculateStockCoverage(stockLevels []StockLevel, velocity *decimal.Decimal) *decimal.Decimal {
	if velocity == nil || !velocity.IsPositive() {
		return nil
	}
	if len(stockLevels) == 0 {
		return nil
	}
	total := decimal.Zero
	for _, l := range stockLevels {
		total = total.Add(l.Quantity)
	}
	c := total.Div(*velocity)
	return &c
}

// CalculateInventoryTurnover returns the annualized ratio of units sold to
// average inventory held: (total sold ÷ average inventory) × (365 ÷ period).
// Returns nil when the average inventory is non-positive or there are no sales.
func CalculateInventoryTurnover(sales []Sale, averageInventory decimal.Decimal, periodDays int) *decimal.Decimal {
	if !averageInventory.IsPositive() {
		return nil
	}
	if len(sales) == 0 {
		return nil
	}
	days := periodInDays(sales, periodDays)
	if days <= 0 {
		return nil
	}
	t := totalQuantitySold(sales).
		Div(averageInventory).
		Mul(daysPerYear.Div(decimal.NewFromInt(int64(days))))
	return &t
}

// CalculateReorderPoint returns daily demand × lead time + safety stock.
// Negative inputs are caller errors and are rejected with ErrInvalidArgument.
func CalculateReorderPoint(dailyDemand, leadTimeDays, safetyStock decimal.Decimal) (decimal.Decimal, error) {
	if dailyDemand.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: daily demand cannot be negative, got %s", ErrInvalidArgument, dailyDemand)
	}
	if leadTimeDays.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: lead time cannot be negative, got %s", ErrInvalidArgument, leadTimeDays)
	}
	if safetyStock.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: safety stock cannot be negative, got %s", ErrInvalidArgument, safetyStock)
	}
	return dailyDemand.Mul(leadTimeDays).Add(safetyStock), nil
}

// meanInventory returns the mean stock quantity across snapshots, zero when
// there are none.
func meanInventory(stockLevels []StockLevel) decimal.Decimal {
	if len(stockLevels) == 0 {
		return decimal.Zero
	}
	total := decimal.Zero
	for _, l := range stockLevels {
		total = total.Add(l.Quantity)
	}
	return total.Div(decimal.NewFromInt(int64(len(stockLevels))))
}

// leadTimeDays converts a lead time duration to fractional days.
func leadTimeDays(lead time.Duration) decimal.Decimal {
	return decimal.NewFromFloat(lead.Hours() / 24)
}
