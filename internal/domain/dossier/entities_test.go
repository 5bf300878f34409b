package dossier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"immofin-backend/internal/finance"
)

func TestStatus_RankAndAdvance(t *testing.T) {
	assert.True(t, StatusDecision.After(StatusComite))
	assert.False(t, StatusBrouillon.After(StatusAnalyse))
	assert.False(t, Status("inconnu").Valid())

	assert.Equal(t, StatusAnalyse, Advance(StatusOrigination, StatusAnalyse))
	// sections saved out of order never rewind
	assert.Equal(t, StatusDecision, Advance(StatusDecision, StatusOrigination))
}

func TestDossier_ApplyDeepMerge(t *testing.T) {
	now := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	d := &Dossier{ID: "d1", Status: StatusBrouillon}

	d.Apply(Patch{Origination: &OriginationPatch{
		Borrower: &Borrower{Type: BorrowerPerson, FirstName: "Claire", LastName: "Morel"},
		LoanAsk:  &LoanAsk{Amount: 250000, DurationMonths: 18},
	}}, now)

	// patching the project must keep borrower and loan ask intact
	d.Apply(Patch{Origination: &OriginationPatch{
		Project: &Project{Kind: "achat_revente", City: "Rennes", Strategy: "revente"},
	}}, now.Add(time.Hour))

	require.NotNil(t, d.Origination)
	assert.Equal(t, "Claire Morel", d.Origination.Borrower.DisplayName())
	assert.Equal(t, 250000.0, d.Origination.LoanAsk.Amount)
	assert.Equal(t, "Rennes", d.Origination.Project.City)
	assert.Equal(t, now.Add(time.Hour), d.UpdatedAt)
}

func TestDossier_ApplyIgnoresInvalidStatus(t *testing.T) {
	d := &Dossier{ID: "d1", Status: StatusAnalyse}
	bad := Status("n_importe_quoi")
	d.Apply(Patch{Status: &bad}, time.Now())
	assert.Equal(t, StatusAnalyse, d.Status)

	// manual rewind is allowed: the machine is advisory
	back := StatusOrigination
	d.Apply(Patch{Status: &back}, time.Now())
	assert.Equal(t, StatusOrigination, d.Status)
}

func TestDossier_AnalysisMergeKeepsComputedResults(t *testing.T) {
	d := &Dossier{ID: "d1"}
	res := finance.Result{Decision: finance.DecisionGo}
	d.Apply(Patch{Analysis: &AnalysisPatch{Rentabilite: &res}}, time.Now())
	d.Apply(Patch{Analysis: &AnalysisPatch{
		Budget: &finance.BudgetForm{PurchasePrice: "200 000"},
	}}, time.Now())

	require.NotNil(t, d.Analysis.Rentabilite)
	assert.Equal(t, finance.DecisionGo, d.Analysis.Rentabilite.Decision)
	assert.Equal(t, "200 000", d.Analysis.Budget.PurchasePrice)
}

func TestModuleKey_ClosedSet(t *testing.T) {
	for _, k := range ModuleKeys {
		assert.True(t, k.Valid(), string(k))
	}
	assert.False(t, ModuleKey("arbitrary").Valid())
}

func TestGuarantees_CoverageConvention(t *testing.T) {
	g := Guarantees{Items: []Guarantee{{Value: 300000}, {Value: 150000}}}
	// whole-percentage convention: 450k over 300k = 150
	assert.InDelta(t, 150, g.CoveragePct(300000), 1e-9)
	assert.Zero(t, g.CoveragePct(0))
}

func TestDocuments_CompletenessAndMandatory(t *testing.T) {
	docs := Documents{Items: []Document{
		{ID: "1", Label: "KBIS", Mandatory: true, Received: true},
		{ID: "2", Label: "Compromis", Mandatory: true},
		{ID: "3", Label: "Photos", Received: true},
		{ID: "4", Label: "Devis travaux"},
	}}
	assert.InDelta(t, 50, docs.CompletenessPct(), 1e-9)
	missing := docs.MissingMandatory()
	require.Len(t, missing, 1)
	assert.Equal(t, "Compromis", missing[0].Label)

	assert.Zero(t, Documents{}.CompletenessPct())
}

func TestDossier_DisplayLabelFallbacks(t *testing.T) {
	d := &Dossier{ID: "abc123"}
	assert.Equal(t, "abc123", d.DisplayLabel())

	d.Origination = &Origination{Borrower: &Borrower{Type: BorrowerCompany, CompanyName: "SCI Horizon"}}
	assert.Equal(t, "SCI Horizon", d.DisplayLabel())

	d.Label = "Operation Horizon"
	assert.Equal(t, "Operation Horizon", d.DisplayLabel())
}
