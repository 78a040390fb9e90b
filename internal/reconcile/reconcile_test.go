package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/vire-folio/internal/models"
)

var asOf = time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

func tx(date string, typ models.TransactionType, symbol string, shares, price, amount float64) models.Transaction {
	d, err := models.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return models.Transaction{Date: d, Type: typ, Symbol: symbol, Shares: shares, Price: price, Amount: amount}
}

func TestReconcile_AAPLScenario(t *testing.T) {
	txs := []models.Transaction{
		tx("2024-01-10", models.TransactionBuy, "AAPL", 10, 100, 1000),
		tx("2024-02-10", models.TransactionBuy, "AAPL", 10, 120, 1200),
		tx("2024-03-10", models.TransactionSell, "AAPL", 5, 130, 650),
	}

	holdings := Reconcile(txs, nil, asOf)
	require.Len(t, holdings, 1)

	h := holdings[0]
	assert.Equal(t, "AAPL", h.Symbol)
	assert.InDelta(t, 15, h.Shares, 1e-9)
	assert.InDelta(t, 1650, h.TotalCost, 1e-9)
	assert.InDelta(t, 110, h.CostPerShare, 1e-9)
	assert.InDelta(t, 1650, h.CostBasis, 1e-9)
	assert.InDelta(t, 130, h.CurrentPrice, 1e-9)
	assert.InDelta(t, 1950, h.CurrentValue, 1e-9)
	assert.InDelta(t, 300, h.Gain, 1e-9)
	assert.InDelta(t, 300.0/1650*100, h.GainPercent, 1e-9)
	assert.InDelta(t, 100, h.Allocation, 1e-9)
	assert.Equal(t, models.SourceTransactions, h.Source)
	assert.Equal(t, models.HoldingID("AAPL"), h.ID)
}

func TestReconcile_OrderIndependentOfInput(t *testing.T) {
	a := tx("2024-01-10", models.TransactionBuy, "MSFT", 10, 300, 3000)
	b := tx("2024-06-10", models.TransactionSell, "MSFT", 4, 400, 1600)

	forward := Reconcile([]models.Transaction{a, b}, nil, asOf)
	backward := Reconcile([]models.Transaction{b, a}, nil, asOf)
	assert.Equal(t, forward, backward)
	assert.InDelta(t, 6, forward[0].Shares, 1e-9)
	assert.InDelta(t, 1800, forward[0].TotalCost, 1e-9)
}

func TestReconcile_ShareConservation(t *testing.T) {
	txs := []models.Transaction{
		tx("2024-01-01", models.TransactionBuy, "VTI", 3, 200, 600),
		tx("2024-02-01", models.TransactionBuy, "VTI", 7.5, 210, 1575),
		tx("2024-03-01", models.TransactionSell, "VTI", 2.5, 220, 550),
		tx("2024-04-01", models.TransactionBuy, "VTI", 1, 230, 230),
		tx("2024-05-01", models.TransactionSell, "VTI", 4, 240, 960),
		tx("2024-05-15", models.TransactionDividend, "VTI", 0, 0, 12),
		tx("2024-05-20", models.TransactionFee, "VTI", 0, 0, 1),
	}
	holdings := Reconcile(txs, nil, asOf)
	require.Len(t, holdings, 1)
	assert.InDelta(t, 3+7.5-2.5+1-4, holdings[0].Shares, 1e-9)
	assert.InDelta(t, 240, holdings[0].CurrentPrice, 1e-9, "dividend and fee rows carry no price")
}

func TestReconcile_FullSaleDropsSymbol(t *testing.T) {
	txs := []models.Transaction{
		tx("2024-01-01", models.TransactionBuy, "T", 10, 20, 200),
		tx("2024-02-01", models.TransactionSell, "T", 10, 25, 250),
	}
	assert.Empty(t, Reconcile(txs, nil, asOf))
}

func TestReconcile_OversellClampsCost(t *testing.T) {
	txs := []models.Transaction{
		tx("2024-01-01", models.TransactionBuy, "T", 5, 20, 100),
		tx("2024-02-01", models.TransactionSell, "T", 8, 25, 200),
		tx("2024-03-01", models.TransactionBuy, "T", 10, 30, 300),
	}
	holdings := Reconcile(txs, nil, asOf)
	require.Len(t, holdings, 1)
	assert.InDelta(t, 7, holdings[0].Shares, 1e-9)
	assert.InDelta(t, 300, holdings[0].TotalCost, 1e-9, "cost clamps at zero after an oversell")
}

func TestReconcile_Split(t *testing.T) {
	txs := []models.Transaction{
		tx("2024-01-01", models.TransactionBuy, "NVDA", 10, 1000, 10000),
		tx("2024-06-10", models.TransactionSplit, "NVDA", 0, 10, 0),
		tx("2024-06-11", models.TransactionSplit, "NVDA", 0, 0, 0),
	}
	holdings := Reconcile(txs, nil, asOf)
	require.Len(t, holdings, 1)
	h := holdings[0]
	assert.InDelta(t, 100, h.Shares, 1e-9)
	assert.InDelta(t, 10000, h.TotalCost, 1e-9)
	assert.InDelta(t, 100, h.CostPerShare, 1e-9)
	assert.InDelta(t, 1000, h.CurrentPrice, 1e-9, "split ratio is not a price")
}

func TestReconcile_DividendProfilePatch(t *testing.T) {
	txs := []models.Transaction{tx("2023-01-01", models.TransactionBuy, "KO", 100, 60, 6000)}
	var divs []models.DividendPayment
	for _, m := range []time.Month{3, 6, 9, 12} {
		divs = append(divs, models.NewDividendPayment("KO", "", models.NewDate(2024, m, 15), 48.5, 100, 0, ""))
	}

	holdings := Reconcile(txs, divs, asOf)
	require.Len(t, holdings, 1)
	h := holdings[0]
	assert.Equal(t, models.FrequencyQuarterly, h.DividendFrequency)
	assert.InDelta(t, 194, h.AnnualIncome, 1e-9)
	assert.InDelta(t, 194.0/6000*100, h.DividendYield, 1e-9)
}

func TestReconcile_AllocationSumsToHundred(t *testing.T) {
	txs := []models.Transaction{
		tx("2024-01-01", models.TransactionBuy, "A", 3, 10, 30),
		tx("2024-01-01", models.TransactionBuy, "B", 7, 13, 91),
		tx("2024-01-01", models.TransactionBuy, "C", 11, 17, 187),
	}
	var sum float64
	for _, h := range Reconcile(txs, nil, asOf) {
		sum += h.Allocation
	}
	assert.InDelta(t, 100, sum, 0.01)
}

func TestCombine(t *testing.T) {
	derived := []models.Holding{{Symbol: "AAPL", CurrentValue: 300, Source: models.SourceTransactions}}
	snapshot := []models.Holding{
		{Symbol: "AAPL", CurrentValue: 999},
		{Symbol: "VTI", CurrentValue: 100},
	}
	txSymbols := TransactionSymbols([]models.Transaction{{Symbol: "AAPL"}})

	out := Combine(derived, snapshot, txSymbols)
	require.Len(t, out, 2)
	assert.Equal(t, "AAPL", out[0].Symbol)
	assert.Equal(t, 300.0, out[0].CurrentValue, "derived holding wins")
	assert.Equal(t, models.SourceSnapshot, out[1].Source)
	assert.InDelta(t, 75, out[0].Allocation, 1e-9)
	assert.InDelta(t, 25, out[1].Allocation, 1e-9)
}
