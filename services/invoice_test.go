package services

import (
	"testing"
	"time"
)

func TestRenderInvoicePrefix(t *testing.T) {
	now := time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		pattern string
		salesID int64
		want    string
	}{
		{"default pattern", "{year}{month}{day}{salesId}{number}", 1000000, "202403071000000"},
		{"number in the middle", "{salesId}-{number}-{year}", 42, "42--2024"},
		{"no placeholders", "INV", 1, "INV"},
		{"month and day are zero padded", "{month}{day}", 9, "0307"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := renderInvoicePrefix(tt.pattern, now, tt.salesID); got != tt.want {
				t.Errorf("renderInvoicePrefix() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseTrailingNumber(t *testing.T) {
	tests := []struct {
		id   string
		want int
	}{
		{"ABC007", 7},
		{"ABC", 0},
		{"", 0},
		{"123", 123},
		{"INV-2024-015", 15},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got := parseTrailingNumber(tt.id); got != tt.want {
				t.Errorf("parseTrailingNumber(%q) = %d, want %d", tt.id, got, tt.want)
			}
		})
	}
}

func TestNextInvoiceID(t *testing.T) {
	tests := []struct {
		name    string
		prefix  string
		highest string
		want    string
	}{
		{"first id for the day", "20240307500", "", "20240307500001"},
		{"increments trailing run", "20240307500", "20240307500014", "20240307500015"},
		{"rolls past padding width", "P", "P999", "P1000"},
		{"highest without digits", "P", "P", "P001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nextInvoiceID(tt.prefix, tt.highest); got != tt.want {
				t.Errorf("nextInvoiceID(%q, %q) = %q, want %q", tt.prefix, tt.highest, got, tt.want)
			}
		})
	}
}
