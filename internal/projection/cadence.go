// Package projection detects dividend cadences from payment history and
// projects the next twelve months of income.
package projection

import (
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/bobmcallan/vire-folio/internal/models"
)

// daysPerMonth converts day gaps into months.
const daysPerMonth = 30.44

// DetectFrequency classifies a payment cadence from payment dates.
// Fewer than two payments are assumed quarterly.
func DetectFrequency(dates []models.Date) models.Frequency {
	if len(dates) < 2 {
		return models.FrequencyQuarterly
	}

	sorted := append([]models.Date(nil), dates...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	if sorted[0].MonthKey() == sorted[len(sorted)-1].MonthKey() {
		return models.FrequencyIrregular
	}

	gaps := make(stats.Float64Data, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		days := sorted[i].Sub(sorted[i-1].Time).Hours() / 24
		gaps = append(gaps, days/daysPerMonth)
	}

	mean, err := stats.Mean(gaps)
	if err != nil {
		return models.FrequencyQuarterly
	}
	if len(gaps) >= 3 {
		if sd, err := stats.StandardDeviation(gaps); err == nil && sd > mean {
			return models.FrequencyIrregular
		}
	}

	switch {
	case mean <= 1.5:
		return models.FrequencyMonthly
	case mean <= 4:
		return models.FrequencyQuarterly
	case mean <= 8:
		return models.FrequencySemiAnnual
	default:
		return models.FrequencyAnnual
	}
}

// paymentMonths returns the distinct calendar months (1-12) payments fell in.
func paymentMonths(payments []models.DividendPayment) []int {
	seen := make(map[int]bool)
	var months []int
	for _, p := range payments {
		m := int(p.Date.Month())
		if !seen[m] {
			seen[m] = true
			months = append(months, m)
		}
	}
	sort.Ints(months)
	return months
}

// regularQuarterMonths reports whether months are four calendar months each
// at least two months from its neighbours, wrapping December to January.
func regularQuarterMonths(months []int) bool {
	if len(months) != 4 {
		return false
	}
	for i := range months {
		next := months[(i+1)%4]
		gap := (next - months[i] + 12) % 12
		if gap < 2 {
			return false
		}
	}
	return true
}
