// Package period filters transactions and dividends to a reporting window.
package period

import (
	"fmt"
	"strings"
	"time"

	"github.com/bobmcallan/vire-folio/internal/models"
)

// Period names a reporting window.
type Period string

const (
	MTD       Period = "MTD"
	QTD       Period = "QTD"
	YTD       Period = "YTD"
	PriorYear Period = "PRIOR_YEAR"
	Custom    Period = "CUSTOM"
	All       Period = "ALL"
)

// ParsePeriod accepts the period names case-insensitively, plus the aliases
// "prior-year" and "py".
func ParsePeriod(s string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mtd":
		return MTD, nil
	case "qtd":
		return QTD, nil
	case "", "ytd":
		return YTD, nil
	case "prior_year", "prior-year", "prioryear", "py":
		return PriorYear, nil
	case "custom":
		return Custom, nil
	case "all":
		return All, nil
	}
	return "", fmt.Errorf("unknown period %q", s)
}

// ParseMonth accepts a full month name or its three-letter abbreviation.
func ParseMonth(s string) (time.Month, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for m := time.January; m <= time.December; m++ {
		name := strings.ToLower(m.String())
		if s == name || s == name[:3] {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown month %q", s)
}

// Result is the filtered view of one period. Holdings are never filtered.
type Result struct {
	Period       Period                   `json:"period"`
	From         models.Date              `json:"from"`
	To           models.Date              `json:"to"`
	Months       []string                 `json:"months,omitempty"`
	Transactions []models.Transaction     `json:"transactions"`
	Dividends    []models.DividendPayment `json:"dividends"`
	PeriodIncome float64                  `json:"period_income"`
	PeriodGain   float64                  `json:"period_gain"`
}

// Filter keeps the records dated inside the period ending at asOf.
// CUSTOM matches by calendar month name regardless of year.
func Filter(transactions []models.Transaction, dividends []models.DividendPayment, p Period, customMonths []string, asOf time.Time) (Result, error) {
	res := Result{Period: p}
	today := models.DateOf(asOf)

	var in func(models.Date) bool
	switch p {
	case MTD:
		res.From = models.NewDate(today.Year(), today.Month(), 1)
		res.To = today
	case QTD:
		first := time.Month((int(today.Month())-1)/3*3 + 1)
		res.From = models.NewDate(today.Year(), first, 1)
		res.To = today
	case YTD:
		res.From = models.NewDate(today.Year(), time.January, 1)
		res.To = today
	case PriorYear:
		res.From = models.NewDate(today.Year()-1, time.January, 1)
		res.To = models.NewDate(today.Year()-1, time.December, 31)
	case Custom:
		months := make(map[time.Month]bool, len(customMonths))
		for _, name := range customMonths {
			m, err := ParseMonth(name)
			if err != nil {
				return Result{}, err
			}
			if !months[m] {
				months[m] = true
				res.Months = append(res.Months, m.String())
			}
		}
		in = func(d models.Date) bool { return !d.IsZero() && months[d.Month()] }
	case All:
		in = func(models.Date) bool { return true }
	default:
		return Result{}, fmt.Errorf("unknown period %q", p)
	}

	if in == nil {
		in = func(d models.Date) bool { return !d.Before(res.From) && !d.After(res.To) }
	}

	var buys, sells float64
	for _, tx := range transactions {
		if !in(tx.Date) {
			continue
		}
		res.Transactions = append(res.Transactions, tx)
		switch tx.Type {
		case models.TransactionBuy:
			buys += tx.Amount
		case models.TransactionSell:
			sells += tx.Amount
		}
	}
	for _, d := range dividends {
		if !in(d.Date) {
			continue
		}
		res.Dividends = append(res.Dividends, d)
		res.PeriodIncome += d.Amount
	}
	res.PeriodGain = sells - buys + res.PeriodIncome
	return res, nil
}
