package core_test

import (
	"testing"

	"inventory-agent/internal/core"
)

func TestSplitSKUAndSize(t *testing.T) {
	tests := []struct {
		name     string
		sku      string
		wantCode string
		wantSize string
	}{
		{name: "variant with size", sku: "SKU-1/54", wantCode: "SKU-1", wantSize: "54"},
		{name: "no slash", sku: "ABC", wantCode: "ABC", wantSize: ""},
		{name: "empty", sku: "", wantCode: "", wantSize: ""},
		{name: "blank", sku: "   ", wantCode: "", wantSize: ""},
		{name: "leading slash keeps full text as code", sku: "/54", wantCode: "/54", wantSize: "54"},
		{name: "multiple slashes split on the last", sku: "A/B/40", wantCode: "A/B", wantSize: "40"},
		{name: "whitespace around parts", sku: " SKU-9 / 38 ", wantCode: "SKU-9", wantSize: "38"},
		{name: "trailing slash", sku: "SKU-7/", wantCode: "SKU-7", wantSize: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, size := core.SplitSKUAndSize(tt.sku)
			if code != tt.wantCode || size != tt.wantSize {
				t.Errorf("SplitSKUAndSize(%q) = (%q, %q), want (%q, %q)",
					tt.sku, code, size, tt.wantCode, tt.wantSize)
			}
		})
	}
}

func TestFormatVariantLabel(t *testing.T) {
	tests := []struct {
		sku  string
		want string
	}{
		{sku: "SKU-1/54", want: "SKU-1 (Talla 54)"},
		{sku: "ABC", want: "ABC"},
		{sku: "", want: ""},
		{sku: "/54", want: "/54 (Talla 54)"},
		{sku: "SKU-7/", want: "SKU-7"},
	}

	for _, tt := range tests {
		if got := core.FormatVariantLabel(tt.sku); got != tt.want {
			t.Errorf("FormatVariantLabel(%q) = %q, want %q", tt.sku, got, tt.want)
		}
	}
}
