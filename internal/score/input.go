package score

import "immofin-backend/internal/finance"

// Input is the flattened view of a dossier the engine scores. A nil
// pillar block means the dossier had no usable data for it: the pillar
// is excluded from the raw average but its weight is lost from the
// achievable total (missing data is a penalty, not a neutral).
type Input struct {
	Documentation *DocumentationInput `json:"documentation,omitempty"`
	Guarantees    *GuaranteeInput     `json:"guarantees,omitempty"`
	Borrower      *BorrowerInput      `json:"borrower,omitempty"`
	Project       *ProjectInput       `json:"project,omitempty"`
	Financial     *FinancialInput     `json:"financial,omitempty"`
}

type DocumentationInput struct {
	CompletenessPct  float64 `json:"completeness_pct"`
	MissingMandatory int     `json:"missing_mandatory"`
}

type GuaranteeInput struct {
	// CoveragePct is guarantee value over loan ask as a whole
	// percentage: 150 means covered 1.5x.
	CoveragePct  float64 `json:"coverage_pct"`
	Count        int     `json:"count"`
	HasFirstRank bool    `json:"has_first_rank"`
}

type BorrowerInput struct {
	ExperienceYears   int     `json:"experience_years"`
	CompletedProjects int     `json:"completed_projects"`
	NetMonthlyIncome  float64 `json:"net_monthly_income"`
	ExistingDebtPct   float64 `json:"existing_debt_pct"`
	PriorIncidents    bool    `json:"prior_incidents"`
}

type ProjectInput struct {
	ConditionState string  `json:"condition_state"` // neuf, bon, travaux, lourd
	TensionIndex   float64 `json:"tension_index"`   // 0..100 market tension
	PreSoldPct     float64 `json:"pre_sold_pct"`
}

type FinancialInput struct {
	Decision            finance.Decision `json:"decision"`
	MarginPct           float64          `json:"margin_pct"`
	AnnualizedReturnPct float64          `json:"annualized_return_pct"`
	MonthlyCashflow     float64          `json:"monthly_cashflow"`
	GrossYieldPct       float64          `json:"gross_yield_pct"`
	ContributionPct     float64          `json:"contribution_pct"`
	Strategy            finance.Strategy `json:"strategy"`
}
