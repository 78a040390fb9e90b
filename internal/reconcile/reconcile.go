// Package reconcile replays the transaction log into holdings with a cost
// basis, and merges them with snapshot holdings.
package reconcile

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/vire-folio/internal/models"
	"github.com/bobmcallan/vire-folio/internal/projection"
)

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// position is the running state of one symbol during replay.
type position struct {
	symbol    string
	name      string
	shares    decimal.Decimal
	totalCost decimal.Decimal
	price     decimal.Decimal
}

func (p *position) apply(tx models.Transaction) {
	shares := decimal.NewFromFloat(tx.Shares)

	switch tx.Type {
	case models.TransactionBuy:
		p.totalCost = p.totalCost.Add(decimal.NewFromFloat(tx.Amount))
		p.shares = p.shares.Add(shares)
	case models.TransactionSell:
		if p.shares.IsPositive() {
			factor := one.Sub(shares.Div(p.shares))
			if factor.IsNegative() {
				factor = decimal.Zero
			}
			p.totalCost = p.totalCost.Mul(factor)
		}
		p.shares = p.shares.Sub(shares)
	case models.TransactionSplit:
		ratio := decimal.NewFromFloat(tx.Price)
		if ratio.IsPositive() {
			p.shares = p.shares.Mul(ratio)
		}
	}

	if tx.Type != models.TransactionSplit && tx.Price > 0 {
		p.price = decimal.NewFromFloat(tx.Price)
	}
	if tx.CompanyName != "" {
		p.name = tx.CompanyName
	}
}

func (p *position) holding() models.Holding {
	h := models.Holding{
		ID:           models.HoldingID(p.symbol),
		Symbol:       p.symbol,
		Name:         p.name,
		Shares:       p.shares.InexactFloat64(),
		TotalCost:    p.totalCost.InexactFloat64(),
		CurrentPrice: p.price.InexactFloat64(),
		Source:       models.SourceTransactions,
	}

	costPerShare := p.totalCost.Div(p.shares)
	value := p.shares.Mul(p.price)
	gain := value.Sub(p.totalCost)

	h.CostPerShare = costPerShare.InexactFloat64()
	h.CostBasis = p.shares.Mul(costPerShare).InexactFloat64()
	h.CurrentValue = value.InexactFloat64()
	h.Gain = gain.InexactFloat64()
	if !p.totalCost.IsZero() {
		h.GainPercent = gain.Div(p.totalCost).Mul(hundred).InexactFloat64()
	}
	return h
}

// Reconcile derives current holdings from the full transaction log.
// Transactions are replayed in date order (ties keep input order); symbols
// whose net shares are not positive are dropped. Dividend fields come from
// the payment history.
func Reconcile(transactions []models.Transaction, dividends []models.DividendPayment, asOf time.Time) []models.Holding {
	ordered := append([]models.Transaction(nil), transactions...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date.Before(ordered[j].Date)
	})

	positions := make(map[string]*position)
	for _, tx := range ordered {
		p, ok := positions[tx.Symbol]
		if !ok {
			p = &position{symbol: tx.Symbol}
			positions[tx.Symbol] = p
		}
		p.apply(tx)
	}

	profiles := projection.Analyze(dividends, asOf)

	holdings := make([]models.Holding, 0, len(positions))
	for _, p := range positions {
		if !p.shares.IsPositive() {
			continue
		}
		h := p.holding()
		if prof, ok := profiles[h.Symbol]; ok {
			h.AnnualIncome = prof.AnnualIncome
			h.DividendFrequency = prof.Frequency
			if h.CurrentValue > 0 {
				h.DividendYield = h.AnnualIncome / h.CurrentValue * 100
			}
		}
		holdings = append(holdings, h)
	}

	sortBySymbol(holdings)
	models.Allocate(holdings)
	return holdings
}

func sortBySymbol(holdings []models.Holding) {
	sort.Slice(holdings, func(i, j int) bool { return holdings[i].Symbol < holdings[j].Symbol })
}
