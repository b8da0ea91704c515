package app

import (
	"github.com/shopspring/decimal"

	"inventory-agent/internal/core"
)

// ReportRequest carries the report tuning parameters as plain numbers so
// adapters can fill it straight from query strings or JSON bodies. Zero
// values mean "use the default"; the thresholds are pointers so an explicit
// 0-day threshold survives the trip into the report options.
type ReportRequest struct {
	VelocityPeriodDays       int                `json:"velocity_period_days"`
	TurnoverPeriodDays       int                `json:"turnover_period_days"`
	LowStockThresholdDays    *float64           `json:"low_stock_threshold_days,omitempty"`
	ExcessStockThresholdDays *float64           `json:"excess_stock_threshold_days,omitempty"`
	SafetyStock              float64            `json:"safety_stock"`
	SafetyStockPerProduct    map[string]float64 `json:"safety_stock_per_product"`
	TopN                     int                `json:"top_n"`
	Limit                    int                `json:"limit"`
}

func (r ReportRequest) toOptions() core.ReportOptions {
	opts := core.ReportOptions{
		VelocityPeriodDays: r.VelocityPeriodDays,
		TurnoverPeriodDays: r.TurnoverPeriodDays,
		TopN:               r.TopN,
		Limit:              r.Limit,
	}
	if r.LowStockThresholdDays != nil {
		d := decimal.NewFromFloat(*r.LowStockThresholdDays)
		opts.LowStockThresholdDays = &d
	}
	if r.ExcessStockThresholdDays != nil {
		d := decimal.NewFromFloat(*r.ExcessStockThresholdDays)
		opts.ExcessStockThresholdDays = &d
	}
	if len(r.SafetyStockPerProduct) > 0 {
		buffers := make(map[string]decimal.Decimal, len(r.SafetyStockPerProduct))
		for key, value := range r.SafetyStockPerProduct {
			buffers[key] = decimal.NewFromFloat(value)
		}
		opts.SafetyStock = core.PerProductSafetyStock(buffers)
	} else if r.SafetyStock != 0 {
		opts.SafetyStock = core.FixedSafetyStock(decimal.NewFromFloat(r.SafetyStock))
	}
	return opts
}
