package projection

import (
	"math"
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/bobmcallan/vire-folio/internal/models"
)

// AnnualIncome estimates yearly income from a symbol's payments. With a year
// of monthly buckets it sums the twelve months ending at the latest payment;
// otherwise it scales the mean payment by the cadence.
func AnnualIncome(payments []models.DividendPayment, freq models.Frequency) float64 {
	if len(payments) == 0 {
		return 0
	}

	buckets := make(map[string]bool)
	latest := payments[0].Date
	for _, p := range payments {
		buckets[p.Date.MonthKey()] = true
		if p.Date.After(latest) {
			latest = p.Date
		}
	}

	if len(buckets) >= 12 {
		from := latest.AddMonths(-12)
		var sum float64
		for _, p := range payments {
			if p.Date.After(from) && !p.Date.After(latest) {
				sum += p.Amount
			}
		}
		return sum
	}

	amounts := make(stats.Float64Data, len(payments))
	for i, p := range payments {
		amounts[i] = p.Amount
	}
	mean, err := stats.Mean(amounts)
	if err != nil {
		return 0
	}
	return mean * float64(freq.PaymentsPerYear())
}

// GrowthRate is the compound annual growth of yearly totals between the
// earliest and latest complete years before asOf's year. A year is complete
// when it holds at least as many payments as the cadence implies.
func GrowthRate(payments []models.DividendPayment, freq models.Frequency, asOf time.Time) float64 {
	totals := make(map[int]float64)
	counts := make(map[int]int)
	for _, p := range payments {
		y := p.Date.Year()
		totals[y] += p.Amount
		counts[y]++
	}

	var years []int
	for y, n := range counts {
		if y < asOf.Year() && n >= freq.PaymentsPerYear() {
			years = append(years, y)
		}
	}
	if len(years) < 2 {
		return 0
	}
	sort.Ints(years)

	first, last := years[0], years[len(years)-1]
	if totals[first] <= 0 {
		return 0
	}
	span := float64(last - first)
	return math.Pow(totals[last]/totals[first], 1/span) - 1
}

// Analyze builds a dividend profile for every symbol in history.
func Analyze(history []models.DividendPayment, asOf time.Time) map[string]models.DividendProfile {
	bySymbol := make(map[string][]models.DividendPayment)
	for _, p := range history {
		bySymbol[p.Symbol] = append(bySymbol[p.Symbol], p)
	}

	profiles := make(map[string]models.DividendProfile, len(bySymbol))
	for symbol, payments := range bySymbol {
		dates := make([]models.Date, len(payments))
		var total float64
		last := payments[0].Date
		for i, p := range payments {
			dates[i] = p.Date
			total += p.Amount
			if p.Date.After(last) {
				last = p.Date
			}
		}

		freq := DetectFrequency(dates)
		profiles[symbol] = models.DividendProfile{
			Symbol:        symbol,
			Frequency:     freq,
			Payments:      len(payments),
			AnnualIncome:  AnnualIncome(payments, freq),
			AvgPerPayment: total / float64(len(payments)),
			GrowthRate:    GrowthRate(payments, freq, asOf),
			PaymentMonths: paymentMonths(payments),
			LastPayment:   last,
		}
	}
	return profiles
}
