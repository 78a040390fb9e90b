package models

// MonthProjection is the projected dividend income for one calendar month.
type MonthProjection struct {
	Month    string             `json:"month"`
	Total    float64            `json:"total"`
	BySymbol map[string]float64 `json:"by_symbol,omitempty"`
}

// DividendProfile summarizes a symbol's dividend history.
type DividendProfile struct {
	Symbol        string    `json:"symbol"`
	Frequency     Frequency `json:"frequency"`
	Payments      int       `json:"payments"`
	AnnualIncome  float64   `json:"annual_income"`
	AvgPerPayment float64   `json:"avg_per_payment"`
	GrowthRate    float64   `json:"growth_rate"`
	PaymentMonths []int     `json:"payment_months,omitempty"`
	LastPayment   Date      `json:"last_payment"`
}
