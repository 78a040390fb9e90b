package projection

import (
	"time"

	"github.com/bobmcallan/vire-folio/internal/models"
)

// Months is the projection horizon.
const Months = 12

// Distribute spreads annual income over the twelve months starting at
// startMonth. months are the calendar months (1-12) the symbol has paid in.
func Distribute(annual float64, freq models.Frequency, months []int, startMonth time.Month) [Months]float64 {
	var out [Months]float64
	if annual == 0 {
		return out
	}

	offset := func(calendarMonth int) int {
		return (calendarMonth - int(startMonth) + 12) % 12
	}

	switch freq {
	case models.FrequencyMonthly:
		for i := range out {
			out[i] = annual / 12
		}
	case models.FrequencySemiAnnual:
		out[0] += annual / 2
		out[6] += annual / 2
	case models.FrequencyAnnual:
		out[11] += annual
	default:
		if regularQuarterMonths(months) {
			for _, m := range months {
				out[offset(m)] += annual / 4
			}
		} else {
			for _, i := range []int{0, 3, 6, 9} {
				out[i] += annual / 4
			}
		}
	}
	return out
}

// Project returns twelve months of projected income for holdings, oldest
// first, beginning with asOf's month. Symbols with payment history use their
// detected profile; others use the holding's own annual income and frequency.
func Project(holdings []models.Holding, history []models.DividendPayment, asOf time.Time) []models.MonthProjection {
	profiles := Analyze(history, asOf)

	start := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.MonthProjection, Months)
	for i := range out {
		out[i] = models.MonthProjection{
			Month:    start.AddDate(0, i, 0).Format("2006-01"),
			BySymbol: make(map[string]float64),
		}
	}

	for _, h := range holdings {
		annual := h.AnnualIncome
		freq := h.DividendFrequency
		var months []int
		if p, ok := profiles[h.Symbol]; ok {
			annual = p.AnnualIncome
			freq = p.Frequency
			months = p.PaymentMonths
		}
		if freq == "" {
			freq = models.FrequencyQuarterly
		}
		if annual <= 0 {
			continue
		}

		for i, v := range Distribute(annual, freq, months, start.Month()) {
			if v == 0 {
				continue
			}
			out[i].Total += v
			out[i].BySymbol[h.Symbol] += v
		}
	}
	return out
}

// Total sums a projection.
func Total(months []models.MonthProjection) float64 {
	var sum float64
	for _, m := range months {
		sum += m.Total
	}
	return sum
}
