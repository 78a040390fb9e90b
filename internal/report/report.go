// Package report renders portfolio views as markdown.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/bobmcallan/vire-folio/internal/common"
	"github.com/bobmcallan/vire-folio/internal/importer"
	"github.com/bobmcallan/vire-folio/internal/models"
	"github.com/bobmcallan/vire-folio/internal/period"
	"github.com/bobmcallan/vire-folio/internal/portfolio"
)

// Render styles markdown for a terminal. With plain set, md is returned as is.
func Render(md string, plain bool) (string, error) {
	if plain {
		return md, nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(120),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}

// Holdings renders the holdings table with a totals row.
func Holdings(holdings []models.Holding, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Holdings\n\n")
	if len(holdings) == 0 {
		b.WriteString("No holdings.\n")
		return b.String()
	}

	fmt.Fprintln(&b, "| Symbol | Name | Shares | Cost/Share | Price | Value | Gain | Gain % | Yield | Alloc |")
	fmt.Fprintln(&b, "|:---|:---|---:|---:|---:|---:|---:|---:|---:|---:|")
	var value, cost float64
	for _, h := range holdings {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
			h.Symbol,
			cellText(h.Name),
			common.FormatShares(h.Shares),
			common.FormatMoney(h.CostPerShare, currency),
			common.FormatMoney(h.CurrentPrice, currency),
			common.FormatMoney(h.CurrentValue, currency),
			common.FormatSignedMoney(h.Gain, currency),
			common.FormatSignedPct(h.GainPercent),
			common.FormatPct(h.DividendYield),
			common.FormatPct(h.Allocation),
		)
		value += h.CurrentValue
		cost += h.TotalCost
	}
	fmt.Fprintf(&b, "| **Total** | | | | | **%s** | **%s** | | | |\n",
		common.FormatMoney(value, currency),
		common.FormatSignedMoney(value-cost, currency),
	)
	return b.String()
}

// Transactions renders the transaction log.
func Transactions(transactions []models.Transaction, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Transactions\n\n")
	writeTransactions(&b, transactions, currency)
	return b.String()
}

func writeTransactions(b *strings.Builder, transactions []models.Transaction, currency string) {
	if len(transactions) == 0 {
		b.WriteString("No transactions.\n")
		return
	}
	fmt.Fprintln(b, "| Date | Type | Symbol | Shares | Price | Amount | Fees |")
	fmt.Fprintln(b, "|:---|:---|:---|---:|---:|---:|---:|")
	for _, tx := range transactions {
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s | %s | %s |\n",
			tx.Date,
			tx.Type,
			tx.Symbol,
			common.FormatShares(tx.Shares),
			common.FormatMoney(tx.Price, currencyOr(tx.Currency, currency)),
			common.FormatMoney(tx.Amount, currencyOr(tx.Currency, currency)),
			common.FormatMoney(tx.Fees, currencyOr(tx.Currency, currency)),
		)
	}
}

// Dividends renders dividend payments with their total.
func Dividends(dividends []models.DividendPayment, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Dividends\n\n")
	writeDividends(&b, dividends, currency)
	return b.String()
}

func writeDividends(b *strings.Builder, dividends []models.DividendPayment, currency string) {
	if len(dividends) == 0 {
		b.WriteString("No dividends.\n")
		return
	}
	fmt.Fprintln(b, "| Date | Symbol | Amount | Per Share | Tax |")
	fmt.Fprintln(b, "|:---|:---|---:|---:|---:|")
	var total float64
	for _, d := range dividends {
		c := currencyOr(d.Currency, currency)
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s |\n",
			d.Date,
			d.Symbol,
			common.FormatMoney(d.Amount, c),
			common.FormatMoney(d.AmountPerShare, c),
			common.FormatMoney(d.Tax, c),
		)
		total += d.Amount
	}
	fmt.Fprintf(b, "| **Total** | | **%s** | | |\n", common.FormatMoney(total, currency))
}

// Income renders the twelve month projection and dividend profiles.
func Income(p *portfolio.IncomeProjection, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Projected Income\n\n")
	fmt.Fprintf(&b, "As of %s. Next twelve months: **%s**\n\n", p.AsOf, common.FormatMoney(p.Total, currency))

	fmt.Fprintln(&b, "| Month | Income |")
	fmt.Fprintln(&b, "|:---|---:|")
	for _, m := range p.Months {
		fmt.Fprintf(&b, "| %s | %s |\n", m.Month, common.FormatMoney(m.Total, currency))
	}

	if len(p.Profiles) == 0 {
		return b.String()
	}
	fmt.Fprintf(&b, "\n## Dividend Profiles\n\n")
	fmt.Fprintln(&b, "| Symbol | Frequency | Payments | Annual | Avg Payment | Growth | Last Paid |")
	fmt.Fprintln(&b, "|:---|:---|---:|---:|---:|---:|:---|")
	for _, prof := range p.Profiles {
		fmt.Fprintf(&b, "| %s | %s | %d | %s | %s | %s | %s |\n",
			prof.Symbol,
			prof.Frequency,
			prof.Payments,
			common.FormatMoney(prof.AnnualIncome, currency),
			common.FormatMoney(prof.AvgPerPayment, currency),
			common.FormatSignedPct(prof.GrowthRate*100),
			prof.LastPayment,
		)
	}
	return b.String()
}

// Period renders a period report.
func Period(res *period.Result, currency string) string {
	var b strings.Builder
	switch {
	case res.Period == period.Custom:
		fmt.Fprintf(&b, "# Period: %s\n\n", strings.Join(res.Months, ", "))
	case res.Period == period.All:
		fmt.Fprintf(&b, "# Period: All\n\n")
	default:
		fmt.Fprintf(&b, "# Period: %s (%s to %s)\n\n", res.Period, res.From, res.To)
	}
	fmt.Fprintf(&b, "- Income: **%s**\n", common.FormatMoney(res.PeriodIncome, currency))
	fmt.Fprintf(&b, "- Gain: **%s**\n\n", common.FormatSignedMoney(res.PeriodGain, currency))

	fmt.Fprintf(&b, "## Transactions\n\n")
	writeTransactions(&b, res.Transactions, currency)
	fmt.Fprintf(&b, "\n## Dividends\n\n")
	writeDividends(&b, res.Dividends, currency)
	return b.String()
}

// Summary renders portfolio totals.
func Summary(s *portfolio.Summary, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Portfolio Summary\n\n")
	fmt.Fprintln(&b, "| | |")
	fmt.Fprintln(&b, "|:---|---:|")
	fmt.Fprintf(&b, "| As of | %s |\n", s.AsOf)
	fmt.Fprintf(&b, "| Holdings | %d |\n", s.Holdings)
	fmt.Fprintf(&b, "| Value | %s |\n", common.FormatMoney(s.TotalValue, currency))
	fmt.Fprintf(&b, "| Cost | %s |\n", common.FormatMoney(s.TotalCost, currency))
	fmt.Fprintf(&b, "| Gain | %s (%s) |\n", common.FormatSignedMoney(s.TotalGain, currency), common.FormatSignedPct(s.GainPercent))
	fmt.Fprintf(&b, "| Annual income | %s |\n", common.FormatMoney(s.AnnualIncome, currency))
	fmt.Fprintf(&b, "| Yield | %s |\n", common.FormatPct(s.Yield))
	fmt.Fprintf(&b, "| Dividends received | %s |\n", common.FormatMoney(s.DividendsReceived, currency))
	fmt.Fprintf(&b, "| Projected 12m income | %s |\n", common.FormatMoney(s.ProjectedIncome, currency))
	fmt.Fprintf(&b, "| Transactions | %d |\n", s.Transactions)
	fmt.Fprintf(&b, "| Dividend payments | %d |\n", s.Dividends)
	return b.String()
}

// Imports renders the outcome of a file import run.
func Imports(results []importer.FileResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Import\n\n")
	if len(results) == 0 {
		b.WriteString("No files imported.\n")
		return b.String()
	}
	fmt.Fprintln(&b, "| File | Type | Tx Added | Tx Dup | Div Added | Div Dup | Skipped | Status |")
	fmt.Fprintln(&b, "|:---|:---|---:|---:|---:|---:|---:|:---|")
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(&b, "| %s | | | | | | | %s |\n", r.Path, cellText(r.Err.Error()))
			continue
		}
		s := r.Result.Stats
		fmt.Fprintf(&b, "| %s | %s | %d | %d | %d | %d | %d | ok |\n",
			r.Path, r.Result.FileType,
			s.TransactionsAdded, s.TransactionsDuplicate,
			s.DividendsAdded, s.DividendsDuplicate,
			r.Result.SkippedRows,
		)
	}
	return b.String()
}

func currencyOr(code, fallback string) string {
	if code != "" {
		return code
	}
	return fallback
}

// cellText keeps free text from breaking a table row.
func cellText(s string) string {
	s = strings.ReplaceAll(s, "|", "/")
	return strings.ReplaceAll(s, "\n", " ")
}
