package core

import "strings"

// Contifico variant codes for apparel follow the pattern CODIGOMADRE/TALLA:
// the mother code identifies the product style and the suffix after the last
// slash is the size. Both helpers are total — malformed input degrades to the
// closest sensible value instead of failing.

// SplitSKUAndSize returns the base product code and the size suffix of a SKU.
// The size is empty when the SKU has no usable suffix. An empty left side
// falls back to the full original string as the code.
func SplitSKUAndSize(sku string) (code, size string) {
	text := strings.TrimSpace(sku)
	if text == "" {
		return "", ""
	}

	idx := strings.LastIndex(text, "/")
	if idx < 0 {
		return text, ""
	}

	code = strings.TrimSpace(text[:idx])
	size = strings.TrimSpace(text[idx+1:])
	if code == "" {
		code = text
	}
	return code, size
}

// FormatVariantLabel builds a human readable label for a variant SKU,
// e.g. "SKU-1 (Talla 54)". SKUs without a size render as the bare code.
func FormatVariantLabel(sku string) string {
	code, size := SplitSKUAndSize(sku)
	if size != "" {
		return code + " (Talla " + size + ")"
	}
	return code
}
