package common

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
)

// DefaultCurrency is used when a record carries no currency code.
const DefaultCurrency = "USD"

// FormatMoney formats v in the given ISO currency, e.g. "$1,234.56".
// Unknown or empty codes fall back to DefaultCurrency.
func FormatMoney(v float64, currency string) string {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "" || money.GetCurrency(code) == nil {
		code = DefaultCurrency
	}
	return money.NewFromFloat(v, code).Display()
}

// FormatSignedMoney formats a currency amount with an explicit + for gains.
func FormatSignedMoney(v float64, currency string) string {
	if v > 0 {
		return "+" + FormatMoney(v, currency)
	}
	return FormatMoney(v, currency)
}

// FormatPct formats a percentage with two decimals.
func FormatPct(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

// FormatSignedPct formats a percentage with +/- prefix.
func FormatSignedPct(v float64) string {
	if v >= 0 {
		return fmt.Sprintf("+%.2f%%", v)
	}
	return fmt.Sprintf("%.2f%%", v)
}

// FormatShares trims trailing zeros from share counts: 10 -> "10", 1.5 -> "1.5".
func FormatShares(v float64) string {
	s := fmt.Sprintf("%.4f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
