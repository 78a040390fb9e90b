package normalizer

import "strings"

// field describes how to locate one logical column in a header.
// Exact synonyms are tried first in rank order, then contains synonyms.
// A header holding any exclude substring never matches.
type field struct {
	name     string
	exact    []string
	contains []string
	exclude  []string
}

// Position export columns. Supporting a new brokerage layout is an edit here.
var (
	posSymbol = field{
		name:     "symbol",
		exact:    []string{"symbol", "ticker", "ticker symbol", "instrument", "code"},
		contains: []string{"symbol", "ticker"},
	}
	posName = field{
		name:     "name",
		exact:    []string{"description", "name", "security name", "company name", "security description", "company", "security"},
		contains: []string{"description", "name", "company"},
		exclude:  []string{"account", "symbol"},
	}
	posShares = field{
		name:     "shares",
		exact:    []string{"quantity", "shares", "qty", "units", "share count", "position"},
		contains: []string{"quantity", "shares", "qty", "units"},
		exclude:  []string{"price", "value"},
	}
	posPrice = field{
		name:     "price",
		exact:    []string{"last price", "price", "current price", "market price", "lastprice", "last", "close", "closing price"},
		contains: []string{"last price", "current price", "market price", "price"},
		exclude:  []string{"change", "cost", "paid", "average"},
	}
	posValue = field{
		name:     "value",
		exact:    []string{"current value", "market value", "value", "total value", "marketvalue"},
		contains: []string{"current value", "market value", "value"},
		exclude:  []string{"change", "gain", "cost", "percent", "book"},
	}
	posCostBasis = field{
		name:     "cost_basis",
		exact:    []string{"cost basis total", "cost basis", "total cost", "book value", "cost"},
		contains: []string{"cost basis", "total cost", "cost"},
		exclude:  []string{"average", "avg", "per share", "unit"},
	}
	posCostPerShare = field{
		name:     "cost_per_share",
		exact:    []string{"average cost basis", "average cost", "avg cost", "cost per share", "unit cost", "average price", "avg price"},
		contains: []string{"average cost", "avg cost", "cost per share", "unit cost", "average price"},
	}
	posYield = field{
		name:     "dividend_yield",
		exact:    []string{"dividend yield", "yield", "div yield"},
		contains: []string{"yield"},
	}
	posAnnualIncome = field{
		name:     "annual_income",
		exact:    []string{"annual income", "estimated annual income", "est annual income", "annual dividend", "projected annual income"},
		contains: []string{"annual income", "annual dividend"},
		exclude:  []string{"yield"},
	}
	posFrequency = field{
		name:     "frequency",
		exact:    []string{"frequency", "dividend frequency", "payment frequency"},
		contains: []string{"frequency"},
	}
	posAssetClass = field{
		name:     "asset_class",
		exact:    []string{"asset class", "security type", "asset type"},
		contains: []string{"asset class", "asset type", "security type"},
	}
	posSector = field{
		name:     "sector",
		exact:    []string{"sector"},
		contains: []string{"sector"},
	}
	posPayDate = field{
		name:     "pay_date",
		exact:    []string{"pay date", "payment date", "payable date"},
		contains: []string{"pay date", "payment date", "payable"},
	}
	posAmountPerShare = field{
		name:     "amount_per_share",
		exact:    []string{"amount per share", "dividend per share", "dps"},
		contains: []string{"amount per share", "per share amount", "dividend per share"},
		exclude:  []string{"cost"},
	}
	posCurrency = field{
		name:     "currency",
		exact:    []string{"currency", "ccy"},
		contains: []string{"currency"},
	}
)

// Transaction history columns.
var (
	txDate = field{
		name:     "date",
		exact:    []string{"run date", "trade date", "date", "transaction date", "activity date", "process date"},
		contains: []string{"trade date", "run date", "transaction date", "date"},
		exclude:  []string{"settlement", "ex-date", "record", "pay date", "payable"},
	}
	txAction = field{
		name:     "action",
		exact:    []string{"action", "activity", "transaction", "transaction type", "activity type", "trans code"},
		contains: []string{"action", "activity", "transaction"},
		exclude:  []string{"date", "id", "amount", "number"},
	}
	txType = field{
		name:     "type",
		exact:    []string{"type", "tran type", "transaction type"},
		contains: []string{"type"},
		exclude:  []string{"asset", "security", "account"},
	}
	txSymbol = field{
		name:     "symbol",
		exact:    []string{"symbol", "ticker", "ticker symbol", "instrument"},
		contains: []string{"symbol", "ticker"},
		exclude:  []string{"cusip"},
	}
	txDescription = field{
		name:     "description",
		exact:    []string{"description", "security description", "name", "security name", "details", "memo"},
		contains: []string{"description", "name", "detail"},
		exclude:  []string{"account", "symbol"},
	}
	txQuantity = field{
		name:     "quantity",
		exact:    []string{"quantity", "shares", "qty", "units"},
		contains: []string{"quantity", "shares", "qty"},
		exclude:  []string{"price"},
	}
	txPrice = field{
		name:     "price",
		exact:    []string{"price", "price per share", "unit price", "execution price", "trade price"},
		contains: []string{"price"},
	}
	txAmount = field{
		name:     "amount",
		exact:    []string{"amount", "net amount", "total", "total amount", "value", "proceeds"},
		contains: []string{"net amount", "amount"},
		exclude:  []string{"per share", "commission", "fee", "tax", "interest"},
	}
	txCommission = field{
		name:     "commission",
		exact:    []string{"commission", "commissions"},
		contains: []string{"commission"},
	}
	txFees = field{
		name:     "fees",
		exact:    []string{"fees", "fee", "other fees"},
		contains: []string{"fee"},
		exclude:  []string{"commission"},
	}
	txTax = field{
		name:     "tax",
		exact:    []string{"tax", "tax withheld", "withholding tax", "withholding"},
		contains: []string{"tax", "withholding"},
	}
	txCurrency = field{
		name:     "currency",
		exact:    []string{"currency", "ccy"},
		contains: []string{"currency"},
	}
)

func (f field) excluded(header string) bool {
	for _, ex := range f.exclude {
		if strings.Contains(header, ex) {
			return true
		}
	}
	return false
}

// locate returns the column index for f in normalized headers, or -1.
func (f field) locate(headers []string) int {
	for _, syn := range f.exact {
		for i, h := range headers {
			if h == syn && !f.excluded(h) {
				return i
			}
		}
	}
	for _, syn := range f.contains {
		for i, h := range headers {
			if h != "" && strings.Contains(h, syn) && !f.excluded(h) {
				return i
			}
		}
	}
	return -1
}

// columnMap resolves a set of fields against one header row.
type columnMap map[string]int

func mapColumns(headers []string, fields ...field) columnMap {
	m := make(columnMap, len(fields))
	for _, f := range fields {
		m[f.name] = f.locate(headers)
	}
	return m
}

// cell returns the trimmed value of the named field, or "" when unmapped.
func (m columnMap) cell(record []string, name string) string {
	idx, ok := m[name]
	if !ok || idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
