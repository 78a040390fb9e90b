package normalizer

import (
	"math"
	"strings"
	"time"

	"github.com/bobmcallan/vire-folio/internal/models"
)

// RawRow is one data row extracted from an export, still holding the raw
// cell text. It is either a PositionRow or a TransactionRow.
type RawRow interface {
	LineNumber() int
	rawRow()
}

// PositionRow holds the cells of one positions-export row.
type PositionRow struct {
	Line           int
	Symbol         string
	Name           string
	Shares         string
	Price          string
	Value          string
	CostBasis      string
	CostPerShare   string
	DividendYield  string
	AnnualIncome   string
	Frequency      string
	AssetClass     string
	Sector         string
	PayDate        string
	AmountPerShare string
	Currency       string
}

// TransactionRow holds the cells of one transaction-history row.
type TransactionRow struct {
	Line        int
	Date        string
	Action      string
	Type        string
	Symbol      string
	Description string
	Quantity    string
	Price       string
	Amount      string
	Commission  string
	Fees        string
	Tax         string
	Currency    string
}

func (r PositionRow) LineNumber() int    { return r.Line }
func (r TransactionRow) LineNumber() int { return r.Line }
func (PositionRow) rawRow()              {}
func (TransactionRow) rawRow()           {}

func positionColumns(headers []string) columnMap {
	return mapColumns(headers,
		posSymbol, posName, posShares, posPrice, posValue, posCostBasis,
		posCostPerShare, posYield, posAnnualIncome, posFrequency,
		posAssetClass, posSector, posPayDate, posAmountPerShare, posCurrency)
}

func transactionColumns(headers []string) columnMap {
	return mapColumns(headers,
		txDate, txAction, txType, txSymbol, txDescription, txQuantity,
		txPrice, txAmount, txCommission, txFees, txTax, txCurrency)
}

func extractPositionRow(m columnMap, record []string, line int) PositionRow {
	return PositionRow{
		Line:           line,
		Symbol:         m.cell(record, "symbol"),
		Name:           m.cell(record, "name"),
		Shares:         m.cell(record, "shares"),
		Price:          m.cell(record, "price"),
		Value:          m.cell(record, "value"),
		CostBasis:      m.cell(record, "cost_basis"),
		CostPerShare:   m.cell(record, "cost_per_share"),
		DividendYield:  m.cell(record, "dividend_yield"),
		AnnualIncome:   m.cell(record, "annual_income"),
		Frequency:      m.cell(record, "frequency"),
		AssetClass:     m.cell(record, "asset_class"),
		Sector:         m.cell(record, "sector"),
		PayDate:        m.cell(record, "pay_date"),
		AmountPerShare: m.cell(record, "amount_per_share"),
		Currency:       m.cell(record, "currency"),
	}
}

func extractTransactionRow(m columnMap, record []string, line int) TransactionRow {
	return TransactionRow{
		Line:        line,
		Date:        m.cell(record, "date"),
		Action:      m.cell(record, "action"),
		Type:        m.cell(record, "type"),
		Symbol:      m.cell(record, "symbol"),
		Description: m.cell(record, "description"),
		Quantity:    m.cell(record, "quantity"),
		Price:       m.cell(record, "price"),
		Amount:      m.cell(record, "amount"),
		Commission:  m.cell(record, "commission"),
		Fees:        m.cell(record, "fees"),
		Tax:         m.cell(record, "tax"),
		Currency:    m.cell(record, "currency"),
	}
}

// skipReason explains why a row produced no record.
type skipReason string

const (
	skipNone         skipReason = ""
	skipBadSymbol    skipReason = "missing or invalid symbol"
	skipNoShares     skipReason = "no shares held"
	skipUnclassified skipReason = "unrecognized action"
)

// buildTransaction converts one row. A DIVIDEND row also yields a payment.
func buildTransaction(row TransactionRow) (models.Transaction, *models.DividendPayment, skipReason) {
	symbol := CleanSymbol(row.Symbol)
	if symbol == "" && strings.TrimSpace(row.Symbol) == "" {
		symbol = SymbolFromDescription(row.Description)
		if symbol == "" {
			symbol = SymbolFromDescription(row.Action)
		}
	}
	if symbol == "" {
		return models.Transaction{}, nil, skipBadSymbol
	}

	typ, ok := ClassifyAction(row.Action, row.Type, row.Description)
	if !ok {
		return models.Transaction{}, nil, skipUnclassified
	}

	nameSource := row.Description
	if nameSource == "" {
		nameSource = row.Action
	}

	tx := models.Transaction{
		Date:        ParseDate(row.Date),
		Type:        typ,
		Symbol:      symbol,
		CompanyName: ExtractCompanyName(nameSource, symbol),
		Shares:      absNumber(row.Quantity),
		Price:       absNumber(row.Price),
		Amount:      absNumber(row.Amount),
		Fees:        absNumber(row.Commission) + absNumber(row.Fees),
		Tax:         absNumber(row.Tax),
		Currency:    strings.ToUpper(strings.TrimSpace(row.Currency)),
		Notes:       strings.TrimSpace(row.Action),
	}
	if tx.Amount == 0 && typ != models.TransactionSplit {
		tx.Amount = tx.Shares * tx.Price
	}
	tx.ID = models.TransactionID(tx)

	if typ != models.TransactionDividend {
		return tx, nil, skipNone
	}
	div := models.NewDividendPayment(tx.Symbol, tx.CompanyName, tx.Date, tx.Amount, tx.Shares, tx.Tax, tx.Currency)
	return tx, &div, skipNone
}

// positionAccumulator sums per-account rows of one symbol.
type positionAccumulator struct {
	holding  models.Holding
	yield    float64
	payDate  models.Date
	perShare float64
	currency string
}

func (a *positionAccumulator) add(row PositionRow, shares float64) {
	h := &a.holding

	price := ParseNumber(row.Price)
	value := ParseNumber(row.Value)
	if value == 0 {
		value = price * shares
	}
	costBasis := ParseNumber(row.CostBasis)
	costPerShare := ParseNumber(row.CostPerShare)
	if costBasis == 0 && costPerShare > 0 {
		costBasis = costPerShare * shares
	}
	yield := ParseNumber(row.DividendYield)
	income := ParseNumber(row.AnnualIncome)
	if income == 0 && yield > 0 {
		income = yield / 100 * value
	}

	h.Shares += shares
	h.CurrentValue += value
	h.CostBasis += costBasis
	h.AnnualIncome += income
	if price > 0 {
		h.CurrentPrice = price
	}
	if yield > 0 {
		a.yield = yield
	}
	if h.Name == "" {
		h.Name = ExtractCompanyName(row.Name, h.Symbol)
	}
	if h.DividendFrequency == "" {
		if f, ok := ParseFrequency(row.Frequency); ok {
			h.DividendFrequency = f
		}
	}
	if h.AssetClass == "" {
		h.AssetClass = strings.TrimSpace(row.AssetClass)
	}
	if h.Sector == "" {
		h.Sector = strings.TrimSpace(row.Sector)
	}
	if a.currency == "" {
		a.currency = strings.ToUpper(strings.TrimSpace(row.Currency))
	}
	if aps := ParseNumber(row.AmountPerShare); aps > 0 {
		a.perShare = aps
		if d := ParseDate(row.PayDate); !d.IsZero() {
			a.payDate = d
		}
	}
}

func (a *positionAccumulator) finish() models.Holding {
	h := a.holding
	if h.CurrentPrice == 0 && h.Shares > 0 {
		h.CurrentPrice = h.CurrentValue / h.Shares
	}
	if h.Shares > 0 {
		h.CostPerShare = h.CostBasis / h.Shares
	}
	h.TotalCost = h.CostBasis
	h.Gain = h.CurrentValue - h.TotalCost
	if h.TotalCost > 0 {
		h.GainPercent = h.Gain / h.TotalCost * 100
	}
	switch {
	case h.CurrentValue > 0 && h.AnnualIncome > 0:
		h.DividendYield = h.AnnualIncome / h.CurrentValue * 100
	default:
		h.DividendYield = a.yield
	}
	return h
}

// realizedDividend returns the payment implied by a pay date on or before
// asOf. Future pay dates are announcements, not income received.
func (a *positionAccumulator) realizedDividend(asOf time.Time) *models.DividendPayment {
	if a.perShare <= 0 || a.payDate.IsZero() || a.payDate.After(models.DateOf(asOf)) {
		return nil
	}
	h := a.holding
	amount := math.Round(a.perShare*h.Shares*100) / 100
	d := models.NewDividendPayment(h.Symbol, h.Name, a.payDate, amount, h.Shares, 0, a.currency)
	return &d
}
