package dossier

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "immofin-backend/internal/domain/dossier"
	"immofin-backend/internal/finance"
	"immofin-backend/internal/report"
	"immofin-backend/internal/score"
	"immofin-backend/internal/store"
	"immofin-backend/internal/testutil/storemock"
)

func newTestUsecase() *Usecase {
	st := store.New(store.NewMemoryBackend(), store.NewMemoryBus(), "test:v1", zerolog.Nop())
	return NewUsecase(st, score.NewEngine(score.DefaultConfig()), finance.DefaultThresholds(), report.JSONExporter{}, zerolog.Nop())
}

func seedFullDossier(t *testing.T, u *Usecase) *domain.Dossier {
	t.Helper()
	ctx := context.Background()
	d := u.Create(ctx, "Op. Test")

	_, err := u.Save(ctx, d.ID, domain.Patch{
		Origination: &domain.OriginationPatch{
			Borrower: &domain.Borrower{
				Type: domain.BorrowerCompany, CompanyName: "SCI Test",
				ExperienceYears: 6, CompletedProjects: 3,
			},
			LoanAsk: &domain.LoanAsk{Amount: 200000, DurationMonths: 12, RatePct: 5, Contribution: 40000},
			Project: &domain.Project{Kind: "achat_revente", City: "Nantes", Strategy: "revente"},
		},
		Analysis: &domain.AnalysisPatch{
			Budget: &finance.BudgetForm{
				PurchasePrice: "200 000", NotaryFeePct: "8", WorksBudget: "30 000",
				MiscFees: "5 000", DurationMonths: "12", TargetResalePrice: "310 000",
			},
			Condition: &domain.PropertyCondition{State: "bon"},
		},
	})
	require.NoError(t, err)

	u.PatchModule(ctx, domain.GuaranteesPatch{DossierID: d.ID, Items: []domain.Guarantee{
		{ID: "g1", Label: "Hypotheque", Kind: "hypotheque", Value: 300000, Rank: 1},
	}})
	u.PatchModule(ctx, domain.DocumentsPatch{DossierID: d.ID, Items: []domain.Document{
		{ID: "d1", Label: "KBIS", Mandatory: true, Received: true},
		{ID: "d2", Label: "Compromis", Mandatory: true, Received: true},
	}})
	return d
}

func TestCreate_ActivatesAndAudits(t *testing.T) {
	u := newTestUsecase()
	ctx := context.Background()

	d := u.Create(ctx, "Op. Horizon")
	require.NotNil(t, d)
	assert.Len(t, d.ID, 32)
	assert.Equal(t, domain.StatusBrouillon, d.Status)

	got, err := u.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, d.ID, got.ID)

	snap := u.Snapshot(ctx)
	require.NotNil(t, snap.Monitoring)
	require.NotEmpty(t, snap.Monitoring.Alerts)
	assert.Equal(t, "Dossier cree", snap.Monitoring.Alerts[0].Title)
}

func TestGet_NoActiveDossier(t *testing.T) {
	u := newTestUsecase()
	_, err := u.Get(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoDossier)
}

func TestSave_EmptyIDRejected(t *testing.T) {
	u := newTestUsecase()
	_, err := u.Save(context.Background(), "", domain.Patch{})
	assert.ErrorIs(t, err, domain.ErrNoDossier)
}

func TestComputeRentabilite_PersistsResultAndScenarios(t *testing.T) {
	u := newTestUsecase()
	ctx := context.Background()
	seedFullDossier(t, u)

	set, err := u.ComputeRentabilite(ctx)
	require.NoError(t, err)
	assert.Equal(t, finance.DecisionGo, set.Base.Decision)
	assert.Greater(t, set.Optimistic.GrossMargin, set.Base.GrossMargin)
	assert.Less(t, set.Pessimistic.GrossMargin, set.Base.GrossMargin)

	d, err := u.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, d.Analysis.Rentabilite)
	assert.Equal(t, set.Base, *d.Analysis.Rentabilite)
	require.NotNil(t, d.Analysis.Scenarios)
	assert.Len(t, d.Analysis.Stress, 2)
}

func TestComputeRentabilite_NoDossier(t *testing.T) {
	u := newTestUsecase()
	_, err := u.ComputeRentabilite(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoDossier)
}

func TestGenerateScore_FullDossier(t *testing.T) {
	u := newTestUsecase()
	ctx := context.Background()
	d := seedFullDossier(t, u)
	_, err := u.ComputeRentabilite(ctx)
	require.NoError(t, err)

	res, err := u.GenerateScore(ctx)
	require.NoError(t, err)
	assert.Greater(t, res.Score, 0.0)
	assert.NotEmpty(t, res.Grade)

	// guarantees, documents, borrower, project and financials are all
	// present, so no missing-data penalty applies
	assert.Zero(t, res.MissingPenalty)

	snap := u.Snapshot(ctx)
	require.NotNil(t, snap.SmartScore)
	require.NotNil(t, snap.SmartScore.Result)
	assert.Equal(t, d.ID, snap.SmartScore.DossierID)
	assert.Equal(t, res.Score, snap.SmartScore.Result.Score)
}

func TestGenerateScore_SparseDossierPenalized(t *testing.T) {
	u := newTestUsecase()
	ctx := context.Background()
	u.Create(ctx, "vide")

	res, err := u.GenerateScore(ctx)
	require.NoError(t, err)
	assert.Greater(t, res.MissingPenalty, 0.0)
	assert.NotEmpty(t, res.Missing)
}

func TestGenerateScore_NewDossierIgnoresPreviousModules(t *testing.T) {
	u := newTestUsecase()
	ctx := context.Background()
	seedFullDossier(t, u)

	// creating a second dossier makes it active; the first dossier's
	// guarantees and documents must not count toward its score
	d := u.Create(ctx, "Op. Reprise")

	res, err := u.GenerateScore(ctx)
	require.NoError(t, err)
	assert.Greater(t, res.MissingPenalty, 0.0)

	var missingGuarantees bool
	for _, m := range res.Missing {
		if m.Pillar == score.PillarGuarantees {
			missingGuarantees = true
		}
	}
	assert.True(t, missingGuarantees, "a fresh dossier carries no guarantees")

	cov, err := u.GuaranteeCoverage(ctx)
	require.NoError(t, err)
	assert.Zero(t, cov.CoveragePct)

	snap := u.Snapshot(ctx)
	require.NotNil(t, snap.SmartScore)
	assert.Equal(t, d.ID, snap.SmartScore.DossierID)
}

func TestGenerateReport_FreshEnginesAndPersistence(t *testing.T) {
	u := newTestUsecase()
	ctx := context.Background()
	d := seedFullDossier(t, u)

	// no prior compute or score run: GenerateReport re-runs both
	rep, err := u.GenerateReport(ctx)
	require.NoError(t, err)
	require.True(t, rep.Valid())
	assert.Equal(t, d.ID, rep.Meta.DossierID)
	require.NotNil(t, rep.Rentabilite)
	assert.Equal(t, finance.DecisionGo, rep.Rentabilite.Decision)
	require.NotNil(t, rep.SmartScore)
	assert.InDelta(t, 150, rep.GuaranteeCoverage, 1e-9)

	got, err := u.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, got.Report)
	assert.Equal(t, rep.Meta.Reference, got.Report.Meta.Reference)
}

func TestExportReport(t *testing.T) {
	u := newTestUsecase()
	ctx := context.Background()
	seedFullDossier(t, u)

	// exporting before any generation fails, the stored report is nil
	_, err := u.ExportReport(ctx)
	require.Error(t, err)

	_, err = u.GenerateReport(ctx)
	require.NoError(t, err)

	art, err := u.ExportReport(ctx)
	require.NoError(t, err)
	assert.Equal(t, "application/json", art.ContentType)
	assert.NotEmpty(t, art.Content)
}

func TestPatchModule_CommitteeDecisionAudited(t *testing.T) {
	u := newTestUsecase()
	ctx := context.Background()
	d := seedFullDossier(t, u)

	verdict := domain.VerdictFavorable
	snap := u.PatchModule(ctx, domain.CommitteePatch{DossierID: d.ID, Verdict: &verdict})
	assert.Equal(t, domain.StatusDecision, snap.Dossier.Status)

	snap = u.Snapshot(ctx)
	var found bool
	for _, a := range snap.Monitoring.Alerts {
		if a.Title == "Decision rendue" {
			found = true
			assert.Equal(t, domain.SeverityWarn, a.Severity)
		}
	}
	assert.True(t, found, "committee decision must leave an audit entry")
}

func TestGuaranteeCoverage(t *testing.T) {
	u := newTestUsecase()
	ctx := context.Background()
	seedFullDossier(t, u)

	sum, err := u.GuaranteeCoverage(ctx)
	require.NoError(t, err)
	assert.Equal(t, 200000.0, sum.LoanAsk)
	assert.Equal(t, 300000.0, sum.TotalValue)
	assert.InDelta(t, 150, sum.CoveragePct, 1e-9)
}

func TestSave_PersistenceFailureKeepsSession(t *testing.T) {
	backend := storemock.NewBackend()
	backend.SaveFn = func(ctx context.Context, key string, payload []byte) error {
		return errors.New("disk full")
	}
	st := store.New(backend, &storemock.Bus{}, "test:v1", zerolog.Nop())
	u := NewUsecase(st, score.NewEngine(score.DefaultConfig()), finance.DefaultThresholds(), report.JSONExporter{}, zerolog.Nop())
	ctx := context.Background()

	d := u.Create(ctx, "Op. Fragile")
	require.NotNil(t, d)

	// the in-memory session survives the failed persist
	got, err := u.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, d.ID, got.ID)
}

func TestMutations_PublishChanges(t *testing.T) {
	bus := &storemock.Bus{}
	st := store.New(storemock.NewBackend(), bus, "test:v1", zerolog.Nop())
	u := NewUsecase(st, score.NewEngine(score.DefaultConfig()), finance.DefaultThresholds(), report.JSONExporter{}, zerolog.Nop())
	ctx := context.Background()

	d := u.Create(ctx, "Op. Diffusee")
	_, err := u.Save(ctx, d.ID, domain.Patch{})
	require.NoError(t, err)

	// create publishes twice (upsert + audit), save likewise
	assert.GreaterOrEqual(t, len(bus.Published), 4)
	for _, k := range bus.Published {
		assert.Equal(t, "test:v1", k)
	}
}

func TestRemove_ClearsEverything(t *testing.T) {
	u := newTestUsecase()
	ctx := context.Background()
	d := seedFullDossier(t, u)

	snap := u.Remove(ctx, d.ID)
	assert.Nil(t, snap.Dossier)
	assert.Empty(t, snap.ActiveDossierID)

	_, err := u.Get(ctx)
	assert.ErrorIs(t, err, domain.ErrNoDossier)
}
