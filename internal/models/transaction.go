package models

import (
	"errors"
	"fmt"
	"strings"
)

// TransactionType classifies a brokerage event.
type TransactionType string

const (
	TransactionBuy      TransactionType = "BUY"
	TransactionSell     TransactionType = "SELL"
	TransactionDividend TransactionType = "DIVIDEND"
	TransactionSplit    TransactionType = "SPLIT"
	TransactionTransfer TransactionType = "TRANSFER"
	TransactionFee      TransactionType = "FEE"
	TransactionTax      TransactionType = "TAX"
)

// TransactionTypes lists every valid transaction type.
var TransactionTypes = []TransactionType{
	TransactionBuy, TransactionSell, TransactionDividend, TransactionSplit,
	TransactionTransfer, TransactionFee, TransactionTax,
}

// ParseTransactionType returns the type for s, case-insensitively.
func ParseTransactionType(s string) (TransactionType, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, t := range TransactionTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Common validation errors.
var (
	ErrMissingType   = errors.New("transaction type is required")
	ErrMissingSymbol = errors.New("symbol is required")
)

// Transaction is an immutable record of one brokerage event.
// Shares, price, amount, fees and tax are absolute values; their direction is
// implied by Type. For SPLIT events Price carries the split ratio.
type Transaction struct {
	ID          string          `json:"id"`
	Date        Date            `json:"date"`
	Type        TransactionType `json:"type"`
	Symbol      string          `json:"symbol"`
	CompanyName string          `json:"company_name,omitempty"`
	Shares      float64         `json:"shares"`
	Price       float64         `json:"price"`
	Amount      float64         `json:"amount"`
	Fees        float64         `json:"fees"`
	Tax         float64         `json:"tax"`
	Currency    string          `json:"currency,omitempty"`
	Notes       string          `json:"notes,omitempty"`
}

// Validate rejects transactions missing a type or symbol.
func (t Transaction) Validate() error {
	if _, ok := ParseTransactionType(string(t.Type)); !ok {
		if t.Type == "" {
			return ErrMissingType
		}
		return fmt.Errorf("unknown transaction type %q", t.Type)
	}
	if strings.TrimSpace(t.Symbol) == "" {
		return ErrMissingSymbol
	}
	return nil
}

// Key is the natural identity used for deduplication:
// (date, symbol, type, price, shares).
func (t Transaction) Key() string {
	return fmt.Sprintf("%s|%s|%s|%s|%s", t.Date, t.Symbol, t.Type, keyFloat(t.Price), keyFloat(t.Shares))
}

// keyFloat renders a float at fixed precision so keys are stable across
// parse round-trips.
func keyFloat(v float64) string {
	return fmt.Sprintf("%.6f", v)
}
