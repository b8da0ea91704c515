package web

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"inventory-agent/internal/app"
)

// reportRequestFromQuery fills a ReportRequest from the query string. Absent
// or malformed parameters keep their zero value and take the defaults.
func reportRequestFromQuery(r *http.Request) app.ReportRequest {
	req := app.ReportRequest{
		VelocityPeriodDays:       queryInt(r, "velocity_period_days", 0),
		TurnoverPeriodDays:       queryInt(r, "turnover_period_days", 0),
		LowStockThresholdDays:    queryFloat(r, "low_stock_threshold_days"),
		ExcessStockThresholdDays: queryFloat(r, "excess_stock_threshold_days"),
		TopN:                     queryInt(r, "top_n", 0),
		Limit:                    queryInt(r, "limit", 0),
	}
	if safety := queryFloat(r, "safety_stock"); safety != nil {
		req.SafetyStock = *safety
	}
	return req
}

// queryFloat returns nil when the parameter is absent or malformed, so an
// explicit 0 remains distinguishable from "not given".
func queryFloat(r *http.Request, key string) *float64 {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &value
}

// inventoryReport returns the fleet-wide KPI report as JSON.
func (h *Handler) inventoryReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.GetInventoryReport(r.Context(), reportRequestFromQuery(r))
	if err != nil {
		writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, report)
}

// inventoryReportXLSX returns the fleet-wide report as a downloadable workbook.
func (h *Handler) inventoryReportXLSX(w http.ResponseWriter, r *http.Request) {
	workbook, err := h.svc.ExportInventoryReportXLSX(r.Context(), reportRequestFromQuery(r))
	if err != nil {
		writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="inventory-report.xlsx"`)
	_, _ = w.Write(workbook)
}

// productReport returns the KPI report for one product. The id is the URL
// remainder because variant codes contain slashes (CAMI012/54).
func (h *Handler) productReport(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "*")
	if unescaped, err := url.PathUnescape(productID); err == nil {
		productID = unescaped
	}
	if productID == "" {
		writeError(w, r, "product id is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	report, err := h.svc.GetProductReport(r.Context(), productID, reportRequestFromQuery(r))
	if err != nil {
		writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, report)
}
