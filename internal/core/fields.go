package core

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Field alias tables. Contifico payloads mix schema generations: the current
// API vocabulary, the legacy Spanish field names, and the generic names some
// intermediate proxies emit. Each logical field carries an ordered candidate
// list and the first candidate with a usable value wins. The tables are
// package-level and immutable — extraction functions never mutate them.

var (
	purchaseDateFields = []string{
		"fecha_emision", "fecha", "created_at", "fecha_creacion",
		"fecha_documento", "fecha_registro",
	}
	receiptDateFields = []string{
		"fecha_recepcion", "fecha_entrega", "fecha_modificacion", "updated_at",
	}
	receptionEntryDateFields = []string{
		"fecha", "fecha_recepcion", "created_at",
	}
	saleDateFields = []string{
		"fecha_emision", "fecha", "created_at", "fecha_venta", "fecha_registro",
	}
	stockDateFields = []string{
		"fecha_actualizacion", "fecha", "updated_at", "fecha_modificacion", "fetched_at",
	}

	productCodeFields = []string{
		"producto_codigo", "codigo_producto", "codigo", "code", "sku",
	}
	productIDFields = []string{
		"producto_id", "product_id", "variant_id",
	}

	quantityFields = []string{
		"cantidad", "quantity", "cant",
	}
	stockQuantityFields = []string{
		"existencia", "stock", "cantidad", "quantity",
		"cantidad_stock", "stock_total", "saldo", "existencia_total",
	}

	warehouseFields = []string{"bodega_id", "warehouse_id"}
	supplierFields  = []string{"proveedor_id", "supplier_id"}
	customerFields  = []string{"cliente_id", "customer_id"}

	documentTypeFields = []string{"tipo", "tipo_documento", "document_type"}
	registryTypeFields = []string{"tipo_registro", "registry_type"}
)

// Document taxonomies used by the documents-resource fallback pass.
// Registry type PRO marks supplier-side documents, CLI customer-side ones;
// older documents lack a registry type and are classified by document type.
var (
	purchaseDocumentTypes = map[string]bool{"LQC": true, "FCP": true, "LIQ": true}
	salesDocumentTypes    = map[string]bool{"FAC": true, "NDV": true, "PRE": true}
)

// datetimeLayouts are tried in order. Contifico mostly emits ISO-8601 (with or
// without zone), but older export jobs wrote latin DD/MM/YYYY dates.
var datetimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
}

// parseDateTime converts an arbitrary payload value into a timestamp.
// A nil result means unparseable; extraction callers decide whether that
// excludes the record or falls through to a default. Never returns an error —
// malformed upstream dates are a data-quality condition, not a failure.
func parseDateTime(value any) *time.Time {
	switch v := value.(type) {
	case nil:
		return nil
	case time.Time:
		if v.IsZero() {
			return nil
		}
		return &v
	case *time.Time:
		if v == nil || v.IsZero() {
			return nil
		}
		return v
	}

	text := strings.TrimSpace(stringify(value))
	if text == "" {
		return nil
	}
	text = strings.Replace(text, "Z", "+00:00", 1)

	for _, layout := range datetimeLayouts {
		if layout == time.RFC3339 || layout == time.RFC3339Nano {
			// RFC3339 wants the literal Z form back.
			if t, err := time.Parse(layout, strings.Replace(text, "+00:00", "Z", 1)); err == nil {
				return &t
			}
			continue
		}
		if t, err := time.ParseInLocation(layout, text, time.UTC); err == nil {
			return &t
		}
	}
	return nil
}

// parseQuantity converts an arbitrary payload value into a non-negative
// decimal. Missing or non-numeric values fall back to zero.
func parseQuantity(value any) decimal.Decimal {
	var d decimal.Decimal
	switch v := value.(type) {
	case nil:
		return decimal.Zero
	case float64:
		d = decimal.NewFromFloat(v)
	case int:
		d = decimal.NewFromInt(int64(v))
	case int64:
		d = decimal.NewFromInt(v)
	case json.Number:
		parsed, err := decimal.NewFromString(v.String())
		if err != nil {
			return decimal.Zero
		}
		d = parsed
	case string:
		parsed, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return decimal.Zero
		}
		d = parsed
	case decimal.Decimal:
		d = v
	default:
		return decimal.Zero
	}
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// stringify renders a payload value as a trimmed string. Floats that carry an
// integral value print without the ".0" JSON decoding tacks on, so numeric
// identifiers survive the round trip through encoding/json.
func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// firstString returns the first non-empty string value among the candidate
// keys of data.
func firstString(data map[string]any, fields []string) string {
	for _, field := range fields {
		if s := stringify(data[field]); s != "" {
			return s
		}
	}
	return ""
}

// firstDateTime returns the first parseable timestamp among the candidate
// keys of data.
func firstDateTime(data map[string]any, fields []string) *time.Time {
	for _, field := range fields {
		if t := parseDateTime(data[field]); t != nil {
			return t
		}
	}
	return nil
}

// firstQuantity returns the parsed quantity of the first candidate key whose
// value is usable. Numeric zeros fall through to later candidates the same way
// empty strings do, so a line reporting cantidad 0 still defers to the
// document-level quantity. A string "0" is an explicit value and wins.
func firstQuantity(data map[string]any, fields []string) (decimal.Decimal, bool) {
	for _, field := range fields {
		value, ok := data[field]
		if !ok || value == nil {
			continue
		}
		if s, isStr := value.(string); isStr && strings.TrimSpace(s) == "" {
			continue
		}
		if isZeroNumber(value) {
			continue
		}
		return parseQuantity(value), true
	}
	return decimal.Zero, false
}

// isZeroNumber reports whether value is a numeric zero.
func isZeroNumber(value any) bool {
	switch v := value.(type) {
	case float64:
		return v == 0
	case int:
		return v == 0
	case int64:
		return v == 0
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		return err == nil && d.IsZero()
	case decimal.Decimal:
		return v.IsZero()
	}
	return false
}

// asObjectList coerces a payload value into a list of JSON objects, dropping
// entries of any other shape.
func asObjectList(value any) []map[string]any {
	items, ok := value.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}
