package dossier

import (
	"time"

	"immofin-backend/internal/finance"
	"immofin-backend/internal/score"
)

// BorrowerType discriminates the borrower variant. Exactly one of the
// variant blocks on Borrower is meaningful for a given type.
type BorrowerType string

const (
	BorrowerPerson  BorrowerType = "personne_physique"
	BorrowerCompany BorrowerType = "personne_morale"
)

// Borrower is a tagged union: Person fields apply when Type is
// personne_physique, Company fields when personne_morale.
type Borrower struct {
	Type BorrowerType `json:"type"`

	// personne_physique
	FirstName        string  `json:"first_name,omitempty"`
	LastName         string  `json:"last_name,omitempty"`
	BirthDate        string  `json:"birth_date,omitempty"`
	Profession       string  `json:"profession,omitempty"`
	NetMonthlyIncome float64 `json:"net_monthly_income,omitempty"`

	// personne_morale
	CompanyName  string  `json:"company_name,omitempty"`
	SIREN        string  `json:"siren,omitempty"`
	LegalForm    string  `json:"legal_form,omitempty"`
	ShareCapital float64 `json:"share_capital,omitempty"`

	// common profile facts
	ExperienceYears   int     `json:"experience_years"`
	CompletedProjects int     `json:"completed_projects"`
	ExistingDebtPct   float64 `json:"existing_debt_pct"`
	PriorIncidents    bool    `json:"prior_incidents"`
}

// DisplayName returns the human label for either borrower variant.
func (b Borrower) DisplayName() string {
	switch b.Type {
	case BorrowerCompany:
		return b.CompanyName
	case BorrowerPerson:
		if b.FirstName == "" && b.LastName == "" {
			return ""
		}
		return b.FirstName + " " + b.LastName
	}
	return ""
}

type LoanAsk struct {
	Amount         float64 `json:"amount"`
	DurationMonths int     `json:"duration_months"`
	RatePct        float64 `json:"rate_pct"`
	Purpose        string  `json:"purpose"`
	Contribution   float64 `json:"contribution"`
}

type Project struct {
	Kind       string  `json:"kind"` // achat_revente, locatif, promotion...
	Address    string  `json:"address"`
	City       string  `json:"city"`
	PostalCode string  `json:"postal_code"`
	SurfaceSqm float64 `json:"surface_sqm"`
	Strategy   string  `json:"strategy"` // revente | location
}

// Origination groups what is captured at intake.
type Origination struct {
	Borrower *Borrower `json:"borrower,omitempty"`
	LoanAsk  *LoanAsk  `json:"loan_ask,omitempty"`
	Project  *Project  `json:"project,omitempty"`
}

type PropertyCondition struct {
	State         string `json:"state"` // neuf, bon, travaux, lourd
	DPE           string `json:"dpe"`
	WorksRequired bool   `json:"works_required"`
}

type Schedule struct {
	StartDate      string `json:"start_date"`
	DurationMonths int    `json:"duration_months"`
	PreSoldPct     float64 `json:"pre_sold_pct"`
}

type RevenueModel struct {
	TargetResalePrice string `json:"target_resale_price"`
	MonthlyRent       string `json:"monthly_rent"`
	MonthlyCharges    string `json:"monthly_charges"`
	AnnualPropertyTax string `json:"annual_property_tax"`
}

// Analysis carries the raw user-entered budget figures (locale strings,
// parsed lazily by the finance engine) plus the last computed result.
type Analysis struct {
	Budget      *finance.BudgetForm    `json:"budget,omitempty"`
	Revenue     *RevenueModel          `json:"revenue,omitempty"`
	Condition   *PropertyCondition     `json:"condition,omitempty"`
	Schedule    *Schedule              `json:"schedule,omitempty"`
	Rentabilite *finance.Result        `json:"rentabilite,omitempty"`
	Scenarios   *finance.ScenarioSet   `json:"scenarios,omitempty"`
	Stress      []finance.StressResult `json:"stress,omitempty"`
}

// Dossier is the aggregate root for one lending case. It is owned by
// the snapshot store and mutated only through patch operations.
type Dossier struct {
	ID          string       `json:"id"`
	Label       string       `json:"label"`
	Status      Status       `json:"status"`
	Origination *Origination `json:"origination,omitempty"`
	Analysis    *Analysis    `json:"analysis,omitempty"`
	Report      *StructuredReport `json:"report,omitempty"`
	DecidedAt   *time.Time   `json:"decided_at,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// SmartScoreResult re-exports the engine result type so callers of the
// domain package do not reach into the engine for the stored shape.
type SmartScoreResult = score.Result

// ---- patches ----

// Patch is a deep-merge fragment for a Dossier: nil fields are left
// untouched, section patches merge field-by-field so saving one screen
// never erases a sibling section.
type Patch struct {
	Label       *string           `json:"label,omitempty"`
	Status      *Status           `json:"status,omitempty"`
	Origination *OriginationPatch `json:"origination,omitempty"`
	Analysis    *AnalysisPatch    `json:"analysis,omitempty"`
}

type OriginationPatch struct {
	Borrower *Borrower `json:"borrower,omitempty"`
	LoanAsk  *LoanAsk  `json:"loan_ask,omitempty"`
	Project  *Project  `json:"project,omitempty"`
}

type AnalysisPatch struct {
	Budget      *finance.BudgetForm    `json:"budget,omitempty"`
	Revenue     *RevenueModel          `json:"revenue,omitempty"`
	Condition   *PropertyCondition     `json:"condition,omitempty"`
	Schedule    *Schedule              `json:"schedule,omitempty"`
	Rentabilite *finance.Result        `json:"rentabilite,omitempty"`
	Scenarios   *finance.ScenarioSet   `json:"scenarios,omitempty"`
	Stress      []finance.StressResult `json:"stress,omitempty"`
}

// Apply deep-merges p into d and refreshes UpdatedAt. Unset fields keep
// their previous values; a whole-section replace is not expressible.
func (d *Dossier) Apply(p Patch, now time.Time) {
	if p.Label != nil {
		d.Label = *p.Label
	}
	if p.Status != nil && p.Status.Valid() {
		d.Status = *p.Status
	}
	if p.Origination != nil {
		if d.Origination == nil {
			d.Origination = &Origination{}
		}
		if p.Origination.Borrower != nil {
			d.Origination.Borrower = p.Origination.Borrower
		}
		if p.Origination.LoanAsk != nil {
			d.Origination.LoanAsk = p.Origination.LoanAsk
		}
		if p.Origination.Project != nil {
			d.Origination.Project = p.Origination.Project
		}
	}
	if p.Analysis != nil {
		if d.Analysis == nil {
			d.Analysis = &Analysis{}
		}
		a, pa := d.Analysis, p.Analysis
		if pa.Budget != nil {
			a.Budget = pa.Budget
		}
		if pa.Revenue != nil {
			a.Revenue = pa.Revenue
		}
		if pa.Condition != nil {
			a.Condition = pa.Condition
		}
		if pa.Schedule != nil {
			a.Schedule = pa.Schedule
		}
		if pa.Rentabilite != nil {
			a.Rentabilite = pa.Rentabilite
		}
		if pa.Scenarios != nil {
			a.Scenarios = pa.Scenarios
		}
		if pa.Stress != nil {
			a.Stress = pa.Stress
		}
	}
	d.UpdatedAt = now.UTC()
}

// DisplayLabel falls back to the borrower name, then the id, when no
// explicit label was set.
func (d *Dossier) DisplayLabel() string {
	if d.Label != "" {
		return d.Label
	}
	if d.Origination != nil && d.Origination.Borrower != nil {
		if n := d.Origination.Borrower.DisplayName(); n != "" {
			return n
		}
	}
	return d.ID
}
