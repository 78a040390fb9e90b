package models

// Frequency is the detected dividend payment cadence of a symbol.
type Frequency string

const (
	FrequencyMonthly    Frequency = "monthly"
	FrequencyQuarterly  Frequency = "quarterly"
	FrequencySemiAnnual Frequency = "semi-annual"
	FrequencyAnnual     Frequency = "annual"
	FrequencyIrregular  Frequency = "irregular"
)

// PaymentsPerYear returns the number of payments a cadence implies.
// Irregular and unknown cadences assume quarterly.
func (f Frequency) PaymentsPerYear() int {
	switch f {
	case FrequencyMonthly:
		return 12
	case FrequencySemiAnnual:
		return 2
	case FrequencyAnnual:
		return 1
	default:
		return 4
	}
}

// HoldingSource records where a holding came from.
type HoldingSource string

const (
	// SourceSnapshot marks a provisional holding imported from a positions file.
	SourceSnapshot HoldingSource = "snapshot"
	// SourceTransactions marks a holding replayed from the transaction log.
	SourceTransactions HoldingSource = "transactions"
)

// Holding is derived, recomputable state for a symbol currently held.
type Holding struct {
	ID                string        `json:"id"`
	Symbol            string        `json:"symbol"`
	Name              string        `json:"name,omitempty"`
	Shares            float64       `json:"shares"`
	CostPerShare      float64       `json:"cost_per_share"`
	CostBasis         float64       `json:"cost_basis"`
	TotalCost         float64       `json:"total_cost"`
	CurrentPrice      float64       `json:"current_price"`
	CurrentValue      float64       `json:"current_value"`
	Gain              float64       `json:"gain"`
	GainPercent       float64       `json:"gain_percent"`
	DividendYield     float64       `json:"dividend_yield"`
	AnnualIncome      float64       `json:"annual_income"`
	DividendFrequency Frequency     `json:"dividend_frequency,omitempty"`
	Allocation        float64       `json:"allocation"`
	AssetClass        string        `json:"asset_class,omitempty"`
	Sector            string        `json:"sector,omitempty"`
	Source            HoldingSource `json:"source,omitempty"`
}

// Allocate sets each holding's allocation as its share of total current
// value, in percent. Allocations are zeroed when the total is not positive.
func Allocate(holdings []Holding) {
	var total float64
	for _, h := range holdings {
		total += h.CurrentValue
	}
	for i := range holdings {
		if total > 0 {
			holdings[i].Allocation = holdings[i].CurrentValue / total * 100
		} else {
			holdings[i].Allocation = 0
		}
	}
}

// TotalValue sums current value across holdings.
func TotalValue(holdings []Holding) float64 {
	var total float64
	for _, h := range holdings {
		total += h.CurrentValue
	}
	return total
}
