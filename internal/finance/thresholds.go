package finance

// Decision is the profitability classification of an operation.
type Decision string

const (
	DecisionGo       Decision = "GO"
	DecisionReserves Decision = "GO_WITH_RESERVES"
	DecisionNoGo     Decision = "NO_GO"
)

// Thresholds are the decision cut-points. They are configuration, not
// engine logic: callers may override them from the tuning file.
type Thresholds struct {
	// resale strategy
	ResaleMarginPctGo       float64 `yaml:"resale_margin_pct_go"`
	ResaleMarginPctReserves float64 `yaml:"resale_margin_pct_reserves"`
	ResaleGrossMarginGo     float64 `yaml:"resale_gross_margin_go"`
	ResaleAnnualizedGo      float64 `yaml:"resale_annualized_go"`
	ResaleAnnualizedReserves float64 `yaml:"resale_annualized_reserves"`

	// rental strategy
	RentalYieldPctGo float64 `yaml:"rental_yield_pct_go"`

	// scenario multipliers
	OptimisticResaleFactor  float64 `yaml:"optimistic_resale_factor"`
	OptimisticWorksFactor   float64 `yaml:"optimistic_works_factor"`
	PessimisticResaleFactor float64 `yaml:"pessimistic_resale_factor"`
	PessimisticWorksFactor  float64 `yaml:"pessimistic_works_factor"`
}

// DefaultThresholds returns the standard committee cut-points.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ResaleMarginPctGo:        15,
		ResaleMarginPctReserves:  10,
		ResaleGrossMarginGo:      30000,
		ResaleAnnualizedGo:       20,
		ResaleAnnualizedReserves: 15,
		RentalYieldPctGo:         5,
		OptimisticResaleFactor:   1.03,
		OptimisticWorksFactor:    0.95,
		PessimisticResaleFactor:  0.95,
		PessimisticWorksFactor:   1.10,
	}
}
