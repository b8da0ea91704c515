package app

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"inventory-agent/internal/core"
)

// renderInventoryWorkbook serializes a fleet report into an XLSX workbook
// with a summary sheet, a per-product KPI sheet, and an alerts sheet.
func renderInventoryWorkbook(report *core.InventoryReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const summarySheet = "Summary"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("failed to name summary sheet: %w", err)
	}

	summaryRows := [][]any{
		{"Generated at", report.Summary.GeneratedAt.Format("2006-01-02 15:04:05 UTC")},
		{"Total products", report.Summary.TotalProducts},
		{"Total purchased units", cellDecimal(&report.Summary.TotalPurchasedUnits)},
		{"Total sold units", cellDecimal(&report.Summary.TotalSoldUnits)},
		{"Total stock units", cellDecimal(&report.Summary.TotalStockUnits)},
		{"Average lead time (days)", cellDecimal(report.Summary.AverageLeadTimeDays)},
		{"Sales velocity (units/day)", cellDecimal(report.Summary.OverallSalesVelocityPerDay)},
		{"Stock coverage (days)", cellDecimal(report.Summary.OverallStockCoverageDays)},
		{"Inventory turnover (annualized)", cellDecimal(report.Summary.OverallInventoryTurnover)},
	}
	for i, row := range summaryRows {
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return nil, fmt.Errorf("failed to write summary row: %w", err)
		}
	}

	const productSheet = "Products"
	if _, err := f.NewSheet(productSheet); err != nil {
		return nil, fmt.Errorf("failed to create products sheet: %w", err)
	}
	header := []any{
		"Product", "Code", "Size", "Name", "Category",
		"Purchased", "Sold", "Stock", "Avg inventory",
		"Lead time (days)", "Velocity (units/day)", "Coverage (days)",
		"Turnover", "Reorder point",
	}
	if err := f.SetSheetRow(productSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write products header: %w", err)
	}
	for i, p := range report.Products {
		row := []any{
			p.ProductID, p.ProductCode, p.VariantSize, p.ProductName, p.CategoryName,
			cellDecimal(&p.TotalPurchasedUnits), cellDecimal(&p.TotalSoldUnits),
			cellDecimal(&p.CurrentStockUnits), cellDecimal(&p.AverageInventoryUnits),
			cellDecimal(p.AverageLeadTimeDays), cellDecimal(p.SalesVelocityPerDay),
			cellDecimal(p.StockCoverageDays), cellDecimal(p.InventoryTurnover),
			cellDecimal(p.ReorderPoint),
		}
		if err := f.SetSheetRow(productSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return nil, fmt.Errorf("failed to write product row: %w", err)
		}
	}

	const alertSheet = "Alerts"
	if _, err := f.NewSheet(alertSheet); err != nil {
		return nil, fmt.Errorf("failed to create alerts sheet: %w", err)
	}
	alertHeader := []any{"Alert", "Product", "Name", "Stock", "Coverage (days)", "Reorder point"}
	if err := f.SetSheetRow(alertSheet, "A1", &alertHeader); err != nil {
		return nil, fmt.Errorf("failed to write alerts header: %w", err)
	}
	alertRow := 2
	writeAlerts := func(kind string, entries []core.ReportEntry) error {
		for _, e := range entries {
			row := []any{
				kind, e.ProductID, e.ProductName,
				cellDecimal(e.CurrentStockUnits), cellDecimal(e.StockCoverageDays),
				cellDecimal(e.ReorderPoint),
			}
			if err := f.SetSheetRow(alertSheet, fmt.Sprintf("A%d", alertRow), &row); err != nil {
				return fmt.Errorf("failed to write alert row: %w", err)
			}
			alertRow++
		}
		return nil
	}
	for _, group := range []struct {
		kind    string
		entries []core.ReportEntry
	}{
		{"low_stock", report.Alerts.LowStock},
		{"reorder_recommended", report.Alerts.ReorderRecommended},
		{"no_sales", report.Alerts.NoSales},
		{"no_purchases", report.Alerts.NoPurchases},
		{"excess_stock", report.Alerts.ExcessStock},
		{"stagnant_stock", report.Alerts.StagnantStock},
	} {
		if err := writeAlerts(group.kind, group.entries); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// cellDecimal converts an optional decimal into a cell value, empty when the
// metric is undefined.
func cellDecimal(d *decimal.Decimal) any {
	if d == nil {
		return ""
	}
	value, _ := d.Float64()
	return value
}
