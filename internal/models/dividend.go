package models

import "fmt"

// DividendPayment is one realized dividend event.
type DividendPayment struct {
	ID             string  `json:"id"`
	HoldingID      string  `json:"holding_id,omitempty"`
	Symbol         string  `json:"symbol"`
	CompanyName    string  `json:"company_name,omitempty"`
	Date           Date    `json:"date"`
	Amount         float64 `json:"amount"`
	Shares         float64 `json:"shares"`
	AmountPerShare float64 `json:"amount_per_share"`
	Tax            float64 `json:"tax"`
	Currency       string  `json:"currency,omitempty"`
}

// NewDividendPayment builds a payment with its derived per-share amount and
// stable identifiers.
func NewDividendPayment(symbol, companyName string, date Date, amount, shares, tax float64, currency string) DividendPayment {
	d := DividendPayment{
		HoldingID:   HoldingID(symbol),
		Symbol:      symbol,
		CompanyName: companyName,
		Date:        date,
		Amount:      amount,
		Shares:      shares,
		Tax:         tax,
		Currency:    currency,
	}
	if shares > 0 {
		d.AmountPerShare = amount / shares
	}
	d.ID = DividendID(d)
	return d
}

// Key is the natural identity used for deduplication: (date, symbol, amount).
func (d DividendPayment) Key() string {
	return fmt.Sprintf("%s|%s|%s", d.Date, d.Symbol, keyFloat(d.Amount))
}
