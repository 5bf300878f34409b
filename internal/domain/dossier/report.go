package dossier

import (
	"time"

	"immofin-backend/internal/finance"
	"immofin-backend/internal/score"
)

// ReportMeta identifies one generated report. A report without a
// populated meta block and a generation timestamp is invalid, even if
// some other flag claims it was generated.
type ReportMeta struct {
	DossierID    string    `json:"dossier_id"`
	DossierLabel string    `json:"dossier_label"`
	GeneratedAt  time.Time `json:"generated_at"`
	Reference    string    `json:"reference"`
}

type ReportRow struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type ReportRiskRow struct {
	Label  string `json:"label"`
	Level  string `json:"level"`
	Status string `json:"status"`
}

type ReportGuaranteeRow struct {
	Label string  `json:"label"`
	Kind  string  `json:"kind"`
	Value float64 `json:"value"`
	Rank  int     `json:"rank"`
}

type ReportDocumentRow struct {
	Label     string `json:"label"`
	Mandatory bool   `json:"mandatory"`
	Received  bool   `json:"received"`
}

// StructuredReport is the immutable decision artifact handed to the
// committee. Regeneration supersedes it wholesale; it is never edited.
type StructuredReport struct {
	Meta ReportMeta `json:"meta"`

	BorrowerName  string      `json:"borrower_name"`
	BorrowerType  BorrowerType `json:"borrower_type"`
	BorrowerFacts []ReportRow `json:"borrower_facts"`
	ProjectFacts  []ReportRow `json:"project_facts"`

	BudgetTable    []ReportRow `json:"budget_table"`
	FinancingTable []ReportRow `json:"financing_table"`
	RevenueTable   []ReportRow `json:"revenue_table"`
	MarketTable    []ReportRow `json:"market_table"`

	Risks              []ReportRiskRow      `json:"risks"`
	GuaranteeRows      []ReportGuaranteeRow `json:"guarantee_rows"`
	GuaranteeCoverage  float64              `json:"guarantee_coverage_pct"`
	DocumentChecklist  []ReportDocumentRow  `json:"document_checklist"`
	DocumentCompletion float64              `json:"document_completion_pct"`

	Rentabilite *finance.Result `json:"rentabilite,omitempty"`
	SmartScore  *score.Result   `json:"smart_score,omitempty"`

	Verdict string `json:"verdict"`
}

// Valid reports whether the artifact is usable by the committee: it
// must carry a generation timestamp and a populated meta block. An
// empty-but-flagged report fails this check, which is how the UI tells
// "corrupt, offer regeneration" apart from "not yet generated".
func (r *StructuredReport) Valid() bool {
	if r == nil {
		return false
	}
	return !r.Meta.GeneratedAt.IsZero() && r.Meta.DossierID != ""
}
