package finance

import (
	"fmt"
	"math"
)

// Strategy selects which revenue model drives the classification.
type Strategy string

const (
	StrategyResale Strategy = "revente"
	StrategyRental Strategy = "location"
)

// BudgetInputs is the flat numeric record the engine computes against.
// It is immutable once computed against; recomputation always starts
// from a fresh copy.
type BudgetInputs struct {
	PurchasePrice     float64 `json:"purchase_price"`
	NotaryFeePct      float64 `json:"notary_fee_pct"`
	WorksBudget       float64 `json:"works_budget"`
	MiscFees          float64 `json:"misc_fees"`
	DurationMonths    float64 `json:"duration_months"`
	TargetResalePrice float64 `json:"target_resale_price"`
	MonthlyRent       float64 `json:"monthly_rent"`
	MonthlyCharges    float64 `json:"monthly_charges"`
	AnnualPropertyTax float64 `json:"annual_property_tax"`
	TaxBracketPct     float64 `json:"tax_bracket_pct"`
	FlatTaxPct        float64 `json:"flat_tax_pct"`
	UseFlatTax        bool    `json:"use_flat_tax"`
	CashContribution  float64 `json:"cash_contribution"`
}

// Result carries the derived profitability metrics, rounded to 2
// decimals at this boundary. Internal math runs at full precision.
type Result struct {
	Strategy            Strategy `json:"strategy"`
	NotaryFee           float64  `json:"notary_fee"`
	TotalCost           float64  `json:"total_cost"`
	GrossMargin         float64  `json:"gross_margin"`
	MarginPct           float64  `json:"margin_pct"`
	ROIPct              float64  `json:"roi_pct"`
	AnnualizedReturnPct float64  `json:"annualized_return_pct"`
	MonthlyCashflow     float64  `json:"monthly_cashflow"`
	GrossYieldPct       float64  `json:"gross_yield_pct"`
	Decision            Decision `json:"decision"`
	Reasons             []string `json:"reasons"`
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

// Compute derives all profitability metrics and the decision tier for
// the given strategy. It is a pure function: same inputs, same result.
func Compute(in BudgetInputs, strategy Strategy, th Thresholds) Result {
	notaryFee := in.PurchasePrice * in.NotaryFeePct / 100
	totalCost := in.PurchasePrice + notaryFee + in.WorksBudget + in.MiscFees

	r := Result{Strategy: strategy}

	var grossMargin, marginPct, roiPct, annualized float64
	if in.TargetResalePrice > 0 || strategy == StrategyResale {
		grossMargin = in.TargetResalePrice - totalCost
		if totalCost > 0 {
			marginPct = grossMargin / totalCost * 100
		}
		if in.CashContribution > 0 {
			roiPct = grossMargin / in.CashContribution * 100
		}
		if in.DurationMonths > 0 {
			annualized = marginPct * (12 / in.DurationMonths)
		}
	}

	var cashflow, yield float64
	if strategy == StrategyRental {
		annualRent := in.MonthlyRent * 12
		netIncome := annualRent - (in.MonthlyCharges*12 + in.AnnualPropertyTax)
		rate := in.TaxBracketPct
		if in.UseFlatTax {
			rate = in.FlatTaxPct
		}
		tax := math.Max(0, netIncome*rate/100)
		cashflow = (netIncome - tax) / 12
		if in.PurchasePrice > 0 {
			yield = annualRent / in.PurchasePrice * 100
		}
	}

	switch strategy {
	case StrategyRental:
		r.Decision, r.Reasons = classifyRental(cashflow, yield, th)
	default:
		r.Decision, r.Reasons = classifyResale(grossMargin, marginPct, annualized, th)
	}

	r.NotaryFee = round2(notaryFee)
	r.TotalCost = round2(totalCost)
	r.GrossMargin = round2(grossMargin)
	r.MarginPct = round2(marginPct)
	r.ROIPct = round2(roiPct)
	r.AnnualizedReturnPct = round2(annualized)
	r.MonthlyCashflow = round2(cashflow)
	r.GrossYieldPct = round2(yield)
	return r
}

// classifyResale is monotone in margin and annualized return: raising
// the resale price can only hold or improve the tier.
func classifyResale(grossMargin, marginPct, annualized float64, th Thresholds) (Decision, []string) {
	if marginPct >= th.ResaleMarginPctGo &&
		grossMargin >= th.ResaleGrossMarginGo &&
		annualized >= th.ResaleAnnualizedGo {
		return DecisionGo, []string{"marge, volume et rendement au-dessus des seuils comite"}
	}

	var reasons []string
	if marginPct < th.ResaleMarginPctGo {
		reasons = append(reasons, fmt.Sprintf("marge %.2f%% sous le seuil GO de %.0f%%", marginPct, th.ResaleMarginPctGo))
	}
	if grossMargin < th.ResaleGrossMarginGo {
		reasons = append(reasons, fmt.Sprintf("marge brute %.0f EUR sous le plancher de %.0f EUR", grossMargin, th.ResaleGrossMarginGo))
	}
	if annualized < th.ResaleAnnualizedGo {
		reasons = append(reasons, fmt.Sprintf("rendement annualise %.2f%% sous le seuil GO de %.0f%%", annualized, th.ResaleAnnualizedGo))
	}

	if marginPct >= th.ResaleMarginPctReserves || annualized >= th.ResaleAnnualizedReserves {
		return DecisionReserves, reasons
	}

	reasons = append(reasons, fmt.Sprintf("marge %.2f%% sous le plancher de %.0f%%", marginPct, th.ResaleMarginPctReserves))
	return DecisionNoGo, reasons
}

func classifyRental(cashflow, yield float64, th Thresholds) (Decision, []string) {
	switch {
	case cashflow >= 0 && yield >= th.RentalYieldPctGo:
		return DecisionGo, []string{"cashflow positif et rendement brut au-dessus du seuil"}
	case cashflow >= 0:
		return DecisionReserves, []string{fmt.Sprintf("rendement brut %.2f%% sous le seuil de %.0f%%", yield, th.RentalYieldPctGo)}
	default:
		return DecisionNoGo, []string{fmt.Sprintf("cashflow mensuel negatif (%.2f EUR)", cashflow)}
	}
}
