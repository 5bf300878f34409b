package finance

import (
	"strconv"
	"strings"
)

// ParseAmount normalizes a locale-formatted numeric string ("1 250 000",
// "250.000,50 €", "8,5 %") to a float64. Anything unparsable resolves
// to 0: malformed input degrades silently, it never fails.
func ParseAmount(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == ',', r == '.', r == '-':
			b.WriteRune(r)
		}
	}
	s = b.String()
	if s == "" {
		return 0
	}

	// With both separators present, the rightmost one is the decimal
	// mark; the other is a thousands separator.
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		// A lone comma is the French decimal mark unless it looks like
		// a thousands group ("1,250" stays 1250 only with 3 digits and
		// more commas; a single group reads as a decimal).
		if strings.Count(s, ",") > 1 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case lastDot >= 0:
		// Dots used as thousands separators: "1.250.000". A single
		// dot with exactly three trailing digits is a group too
		// ("250.000"); anything else is a decimal point ("8.5").
		if strings.Count(s, ".") > 1 || len(s)-lastDot-1 == 3 {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// BudgetForm holds the raw strings exactly as entered on the analysis
// screens. Parsing happens at computation time only.
type BudgetForm struct {
	PurchasePrice     string `json:"purchase_price"`
	NotaryFeePct      string `json:"notary_fee_pct"`
	WorksBudget       string `json:"works_budget"`
	MiscFees          string `json:"misc_fees"`
	DurationMonths    string `json:"duration_months"`
	TargetResalePrice string `json:"target_resale_price"`
	MonthlyRent       string `json:"monthly_rent"`
	MonthlyCharges    string `json:"monthly_charges"`
	AnnualPropertyTax string `json:"annual_property_tax"`
	TaxBracketPct     string `json:"tax_bracket_pct"`
	FlatTaxPct        string `json:"flat_tax_pct"`
	UseFlatTax        bool   `json:"use_flat_tax"`
	CashContribution  string `json:"cash_contribution"`
}

// Parse converts the form into numeric inputs, field by field.
func (f BudgetForm) Parse() BudgetInputs {
	return BudgetInputs{
		PurchasePrice:     ParseAmount(f.PurchasePrice),
		NotaryFeePct:      ParseAmount(f.NotaryFeePct),
		WorksBudget:       ParseAmount(f.WorksBudget),
		MiscFees:          ParseAmount(f.MiscFees),
		DurationMonths:    ParseAmount(f.DurationMonths),
		TargetResalePrice: ParseAmount(f.TargetResalePrice),
		MonthlyRent:       ParseAmount(f.MonthlyRent),
		MonthlyCharges:    ParseAmount(f.MonthlyCharges),
		AnnualPropertyTax: ParseAmount(f.AnnualPropertyTax),
		TaxBracketPct:     ParseAmount(f.TaxBracketPct),
		FlatTaxPct:        ParseAmount(f.FlatTaxPct),
		UseFlatTax:        f.UseFlatTax,
		CashContribution:  ParseAmount(f.CashContribution),
	}
}
