package services

import "testing"

func TestDeriveStartInvoiceID(t *testing.T) {
	tests := []struct {
		name    string
		salesID int64
		want    string
	}{
		{"seven digit id keeps last five", 1000000, "0000000000"},
		{"typical id", 1234567, "3456700000"},
		{"short id is zero padded", 42, "0004200000"},
		{"exactly five digits", 98765, "9876500000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := deriveStartInvoiceID(tt.salesID)
			if got != tt.want {
				t.Errorf("deriveStartInvoiceID(%d) = %q, want %q", tt.salesID, got, tt.want)
			}
			if len(got) != 10 {
				t.Errorf("seed %q is not 10 characters", got)
			}
		})
	}
}
