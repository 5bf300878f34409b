// Package report assembles the committee decision artifact out of a
// dossier and the two engines' outputs. Assembly is pure: it reads its
// inputs, builds an immutable StructuredReport, and leaves persistence
// to the caller.
package report

import (
	"fmt"
	"strings"
	"time"

	"immofin-backend/internal/domain/dossier"
	"immofin-backend/internal/finance"
	"immofin-backend/internal/score"
)

// Inputs is everything the generator reads. Nil modules simply produce
// empty tables; missing data never fails a generation.
type Inputs struct {
	Dossier     *dossier.Dossier
	Risks       *dossier.RiskAnalysis
	Guarantees  *dossier.Guarantees
	Documents   *dossier.Documents
	Market      *dossier.Market
	Rentabilite *finance.Result
	Score       *score.Result
}

// Generate builds the point-in-time report. The caller supplies now so
// two generations in the same instant are byte-identical.
func Generate(in Inputs, now time.Time) *dossier.StructuredReport {
	d := in.Dossier
	r := &dossier.StructuredReport{
		Meta: dossier.ReportMeta{
			DossierID:    d.ID,
			DossierLabel: d.DisplayLabel(),
			GeneratedAt:  now.UTC(),
			Reference:    fmt.Sprintf("RPT-%s-%s", now.UTC().Format("20060102"), shortID(d.ID)),
		},
		Rentabilite: in.Rentabilite,
		SmartScore:  in.Score,
	}

	if d.Origination != nil {
		if b := d.Origination.Borrower; b != nil {
			r.BorrowerName = b.DisplayName()
			r.BorrowerType = b.Type
			r.BorrowerFacts = borrowerFacts(*b)
		}
		if p := d.Origination.Project; p != nil {
			r.ProjectFacts = []dossier.ReportRow{
				{Label: "Nature", Value: p.Kind},
				{Label: "Adresse", Value: strings.TrimSpace(p.Address + " " + p.PostalCode + " " + p.City)},
				{Label: "Surface", Value: fmt.Sprintf("%.0f m2", p.SurfaceSqm)},
				{Label: "Strategie", Value: p.Strategy},
			}
		}
		if l := d.Origination.LoanAsk; l != nil {
			r.FinancingTable = []dossier.ReportRow{
				{Label: "Montant demande", Value: eur(l.Amount)},
				{Label: "Duree", Value: fmt.Sprintf("%d mois", l.DurationMonths)},
				{Label: "Taux", Value: pct(l.RatePct)},
				{Label: "Apport", Value: eur(l.Contribution)},
				{Label: "Objet", Value: l.Purpose},
			}
		}
	}

	if d.Analysis != nil && d.Analysis.Budget != nil {
		b := d.Analysis.Budget.Parse()
		r.BudgetTable = []dossier.ReportRow{
			{Label: "Prix d'acquisition", Value: eur(b.PurchasePrice)},
			{Label: "Frais de notaire", Value: pct(b.NotaryFeePct)},
			{Label: "Budget travaux", Value: eur(b.WorksBudget)},
			{Label: "Frais divers", Value: eur(b.MiscFees)},
			{Label: "Duree de l'operation", Value: fmt.Sprintf("%.0f mois", b.DurationMonths)},
		}
		r.RevenueTable = revenueTable(b)
	}

	if in.Market != nil {
		r.MarketTable = []dossier.ReportRow{
			{Label: "Ville", Value: in.Market.City},
			{Label: "Prix moyen du marche", Value: eur(in.Market.AvgPricePerSqm) + "/m2"},
			{Label: "Prix cible de l'operation", Value: eur(in.Market.TargetPricePerSqm) + "/m2"},
			{Label: "Loyer moyen", Value: eur(in.Market.AvgRentPerSqm) + "/m2"},
			{Label: "Indice de tension", Value: fmt.Sprintf("%.0f/100", in.Market.TensionIndex)},
		}
	}

	if in.Risks != nil {
		for _, it := range in.Risks.Items {
			r.Risks = append(r.Risks, dossier.ReportRiskRow{
				Label:  it.Label,
				Level:  string(it.Level),
				Status: string(it.Status),
			})
		}
	}

	if in.Guarantees != nil {
		for _, g := range in.Guarantees.Items {
			r.GuaranteeRows = append(r.GuaranteeRows, dossier.ReportGuaranteeRow{
				Label: g.Label, Kind: g.Kind, Value: g.Value, Rank: g.Rank,
			})
		}
		var ask float64
		if d.Origination != nil && d.Origination.LoanAsk != nil {
			ask = d.Origination.LoanAsk.Amount
		}
		r.GuaranteeCoverage = round2(in.Guarantees.CoveragePct(ask))
	}

	if in.Documents != nil {
		for _, doc := range in.Documents.Items {
			r.DocumentChecklist = append(r.DocumentChecklist, dossier.ReportDocumentRow{
				Label: doc.Label, Mandatory: doc.Mandatory, Received: doc.Received,
			})
		}
		r.DocumentCompletion = round2(in.Documents.CompletenessPct())
	}

	r.Verdict = narrative(in)
	return r
}

func borrowerFacts(b dossier.Borrower) []dossier.ReportRow {
	var rows []dossier.ReportRow
	switch b.Type {
	case dossier.BorrowerCompany:
		rows = append(rows,
			dossier.ReportRow{Label: "Raison sociale", Value: b.CompanyName},
			dossier.ReportRow{Label: "SIREN", Value: b.SIREN},
			dossier.ReportRow{Label: "Forme juridique", Value: b.LegalForm},
			dossier.ReportRow{Label: "Capital social", Value: eur(b.ShareCapital)},
		)
	default:
		rows = append(rows,
			dossier.ReportRow{Label: "Nom", Value: b.DisplayName()},
			dossier.ReportRow{Label: "Profession", Value: b.Profession},
			dossier.ReportRow{Label: "Revenu net mensuel", Value: eur(b.NetMonthlyIncome)},
		)
	}
	rows = append(rows,
		dossier.ReportRow{Label: "Experience", Value: fmt.Sprintf("%d an(s)", b.ExperienceYears)},
		dossier.ReportRow{Label: "Operations realisees", Value: fmt.Sprintf("%d", b.CompletedProjects)},
	)
	return rows
}

func revenueTable(b finance.BudgetInputs) []dossier.ReportRow {
	var rows []dossier.ReportRow
	if b.TargetResalePrice > 0 {
		rows = append(rows, dossier.ReportRow{Label: "Prix de revente cible", Value: eur(b.TargetResalePrice)})
	}
	if b.MonthlyRent > 0 {
		rows = append(rows,
			dossier.ReportRow{Label: "Loyer mensuel", Value: eur(b.MonthlyRent)},
			dossier.ReportRow{Label: "Charges mensuelles", Value: eur(b.MonthlyCharges)},
			dossier.ReportRow{Label: "Taxe fonciere annuelle", Value: eur(b.AnnualPropertyTax)},
		)
	}
	return rows
}

// narrative folds the score verdict, the profitability tier and the
// blocking gaps into the committee-facing summary.
func narrative(in Inputs) string {
	var parts []string
	if in.Score != nil {
		parts = append(parts, in.Score.Verdict)
		for _, m := range in.Score.Missing {
			if m.Severity == score.SeverityBlocker {
				parts = append(parts, "A completer: "+m.Label)
			}
		}
	}
	if in.Rentabilite != nil {
		parts = append(parts, fmt.Sprintf("Rentabilite: %s", in.Rentabilite.Decision))
	}
	if len(parts) == 0 {
		return "Dossier incomplet: aucune analyse disponible"
	}
	return strings.Join(parts, ". ")
}
