package normalizer

import (
	"testing"

	"github.com/bobmcallan/vire-folio/internal/models"
)

func TestDetectFileType(t *testing.T) {
	tests := []struct {
		name     string
		header   []string
		filename string
		want     models.FileType
		ok       bool
	}{
		{"minimal positions", []string{"Ticker", "Qty", "LastPrice"}, "x.csv", models.FileTypePositions, true},
		{"fidelity history", []string{"Run Date", "Action", "Symbol", "Description", "Quantity", "Price ($)", "Amount ($)"}, "x.csv", models.FileTypeTransactions, true},
		{"positions with dividend dates", []string{"Symbol", "Shares", "Price", "Ex-Date", "Pay Date", "Amount Per Share", "Type"}, "x.csv", models.FileTypePositions, true},
		{"filename hint wins tie", []string{"Symbol", "Shares", "Price", "Pay Date", "Amount", "Type"}, "dividend_history.csv", models.FileTypeTransactions, true},
		{"weak transactions promoted by hint", []string{"Date", "Symbol", "Amount"}, "activity.csv", models.FileTypeTransactions, true},
		{"weak transactions without hint", []string{"Date", "Symbol", "Amount"}, "x.csv", "", false},
		{"plain history", []string{"Date", "Symbol", "Type", "Quantity", "Price", "Amount"}, "export.csv", models.FileTypeTransactions, true},
		{"positions with as-of date", []string{"Symbol", "Shares", "Price", "Value", "Date"}, "export.csv", models.FileTypePositions, true},
		{"unknown", []string{"foo", "bar"}, "x.csv", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DetectFileType(tt.header, tt.filename)
			if ok != tt.ok || got != tt.want {
				t.Errorf("DetectFileType(%v, %q) = %q, %v; want %q, %v", tt.header, tt.filename, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestNormalizeHeader(t *testing.T) {
	cases := map[string]string{
		"Price ($)":                "price",
		"  Cost Basis   Total ":    "cost basis total",
		"Today's Gain/Loss Dollar": "today s gain/loss dollar",
		"Ex-Date":                  "ex-date",
	}
	for in, want := range cases {
		if got := normalizeHeader(in); got != want {
			t.Errorf("normalizeHeader(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFieldLocate_ExactBeforeContains(t *testing.T) {
	headers := normalizeHeaders([]string{"Average Cost Basis", "Cost Basis Total"})
	if idx := posCostBasis.locate(headers); idx != 1 {
		t.Errorf("cost basis should skip the average column, got %d", idx)
	}
	if idx := posCostPerShare.locate(headers); idx != 0 {
		t.Errorf("cost per share should map the average column, got %d", idx)
	}
}
