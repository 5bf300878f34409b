// Package dossier orchestrates the snapshot store, the financial and
// scoring engines, and the report generator. The engines never touch
// storage; everything they produce is written back through here.
package dossier

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	domain "immofin-backend/internal/domain/dossier"
	"immofin-backend/internal/finance"
	"immofin-backend/internal/report"
	"immofin-backend/internal/score"
	"immofin-backend/internal/store"
	"immofin-backend/pkg/id"
)

type Usecase struct {
	store      *store.Store
	engine     *score.Engine
	thresholds finance.Thresholds
	exporter   report.Exporter
	log        zerolog.Logger
}

func NewUsecase(st *store.Store, eng *score.Engine, th finance.Thresholds, exp report.Exporter, log zerolog.Logger) *Usecase {
	return &Usecase{
		store:      st,
		engine:     eng,
		thresholds: th,
		exporter:   exp,
		log:        log.With().Str("component", "dossier_usecase").Logger(),
	}
}

// audit appends a monitoring log entry for a lifecycle action. Audit
// writes ride the normal guarded patch path.
func (u *Usecase) audit(ctx context.Context, dossierID string, sev domain.AlertSeverity, title, msg string) {
	u.store.PatchModule(ctx, domain.MonitoringPatch{
		DossierID: dossierID,
		Append: []domain.Alert{{
			ID:        uuid.NewString(),
			DossierID: dossierID,
			Severity:  sev,
			Title:     title,
			Message:   msg,
			CreatedAt: time.Now().UTC(),
		}},
	})
}

// Create opens a new dossier in brouillon and makes it active.
func (u *Usecase) Create(ctx context.Context, label string) *domain.Dossier {
	dossierID := id.NewID32()
	var p domain.Patch
	if label != "" {
		p.Label = &label
	}
	snap := u.store.UpsertDossier(ctx, dossierID, p)
	u.audit(ctx, dossierID, domain.SeverityInfo, "Dossier cree", "Ouverture du dossier "+snap.Dossier.DisplayLabel())
	return snap.Dossier
}

// Save deep-merges a section patch into the active dossier. Lifecycle
// side effects (origination/analyse advancement) happen in the store.
func (u *Usecase) Save(ctx context.Context, dossierID string, p domain.Patch) (*domain.Dossier, error) {
	if dossierID == "" {
		return nil, domain.ErrNoDossier
	}
	snap := u.store.UpsertDossier(ctx, dossierID, p)
	u.audit(ctx, dossierID, domain.SeverityInfo, "Section enregistree", "Mise a jour du dossier")
	return snap.Dossier, nil
}

// Get returns the active dossier or ErrNoDossier.
func (u *Usecase) Get(ctx context.Context) (*domain.Dossier, error) {
	return u.store.ActiveDossier(ctx)
}

func (u *Usecase) Snapshot(ctx context.Context) store.Snapshot {
	return u.store.Read(ctx)
}

// PatchModule forwards a guarded module patch. A committee decision
// additionally leaves an audit trace.
func (u *Usecase) PatchModule(ctx context.Context, p domain.ModulePatch) store.Snapshot {
	snap := u.store.PatchModule(ctx, p)
	if cp, ok := p.(domain.CommitteePatch); ok && cp.Verdict != nil && *cp.Verdict != domain.VerdictPending {
		u.audit(ctx, cp.DossierID, domain.SeverityWarn, "Decision rendue", "Verdict du comite: "+string(*cp.Verdict))
	}
	return snap
}

func (u *Usecase) Remove(ctx context.Context, dossierID string) store.Snapshot {
	return u.store.RemoveDossier(ctx, dossierID)
}

// strategyOf resolves the revenue strategy from the project section,
// defaulting to resale.
func strategyOf(d *domain.Dossier) finance.Strategy {
	if d.Origination != nil && d.Origination.Project != nil &&
		finance.Strategy(d.Origination.Project.Strategy) == finance.StrategyRental {
		return finance.StrategyRental
	}
	return finance.StrategyResale
}

// ComputeRentabilite runs the financial engine over the stored budget
// form and writes the result, scenarios and stress runs back into the
// analysis section.
func (u *Usecase) ComputeRentabilite(ctx context.Context) (*finance.ScenarioSet, error) {
	d, err := u.store.ActiveDossier(ctx)
	if err != nil {
		return nil, err
	}
	var form finance.BudgetForm
	if d.Analysis != nil && d.Analysis.Budget != nil {
		form = *d.Analysis.Budget
	}
	inputs := form.Parse()
	strat := strategyOf(d)

	set := finance.Scenarios(inputs, strat, u.thresholds)
	stress := finance.StressTests(inputs, strat, u.thresholds)

	base := set.Base
	u.store.UpsertDossier(ctx, d.ID, domain.Patch{Analysis: &domain.AnalysisPatch{
		Rentabilite: &base,
		Scenarios:   &set,
		Stress:      stress,
	}})
	return &set, nil
}

// GenerateScore flattens the snapshot into the scoring input, runs the
// engine and stores the result in the smartScore module.
func (u *Usecase) GenerateScore(ctx context.Context) (*domain.SmartScoreResult, error) {
	d, err := u.store.ActiveDossier(ctx)
	if err != nil {
		return nil, err
	}
	snap := u.store.Read(ctx)
	in := buildScoreInput(d, snap)
	res := u.engine.Evaluate(in, time.Now())

	u.store.PatchModule(ctx, domain.SmartScorePatch{DossierID: d.ID, Result: &res})
	u.audit(ctx, d.ID, domain.SeverityInfo, "SmartScore genere",
		"Score "+res.Grade)
	return &res, nil
}

// buildScoreInput maps dossier sections onto pillar inputs. A section
// without usable data stays nil so the engine applies its penalty.
func buildScoreInput(d *domain.Dossier, snap store.Snapshot) score.Input {
	var in score.Input

	if snap.Documents != nil && len(snap.Documents.Items) > 0 {
		in.Documentation = &score.DocumentationInput{
			CompletenessPct:  snap.Documents.CompletenessPct(),
			MissingMandatory: len(snap.Documents.MissingMandatory()),
		}
	}

	if snap.Guarantees != nil && len(snap.Guarantees.Items) > 0 {
		var ask float64
		if d.Origination != nil && d.Origination.LoanAsk != nil {
			ask = d.Origination.LoanAsk.Amount
		}
		gi := &score.GuaranteeInput{
			CoveragePct: snap.Guarantees.CoveragePct(ask),
			Count:       len(snap.Guarantees.Items),
		}
		for _, g := range snap.Guarantees.Items {
			if g.Kind == "hypotheque" && g.Rank == 1 {
				gi.HasFirstRank = true
			}
		}
		in.Guarantees = gi
	}

	if d.Origination != nil && d.Origination.Borrower != nil {
		b := d.Origination.Borrower
		in.Borrower = &score.BorrowerInput{
			ExperienceYears:   b.ExperienceYears,
			CompletedProjects: b.CompletedProjects,
			NetMonthlyIncome:  b.NetMonthlyIncome,
			ExistingDebtPct:   b.ExistingDebtPct,
			PriorIncidents:    b.PriorIncidents,
		}
	}

	if d.Analysis != nil && d.Analysis.Condition != nil {
		pi := &score.ProjectInput{ConditionState: d.Analysis.Condition.State}
		if snap.Market != nil {
			pi.TensionIndex = snap.Market.TensionIndex
		}
		if d.Analysis.Schedule != nil {
			pi.PreSoldPct = d.Analysis.Schedule.PreSoldPct
		}
		in.Project = pi
	}

	if d.Analysis != nil && d.Analysis.Rentabilite != nil {
		r := d.Analysis.Rentabilite
		fi := &score.FinancialInput{
			Decision:            r.Decision,
			MarginPct:           r.MarginPct,
			AnnualizedReturnPct: r.AnnualizedReturnPct,
			MonthlyCashflow:     r.MonthlyCashflow,
			GrossYieldPct:       r.GrossYieldPct,
			Strategy:            r.Strategy,
		}
		if d.Origination != nil && d.Origination.LoanAsk != nil && d.Origination.LoanAsk.Amount > 0 {
			fi.ContributionPct = d.Origination.LoanAsk.Contribution / d.Origination.LoanAsk.Amount * 100
		}
		in.Financial = fi
	}

	return in
}

// GenerateReport freezes the current state into a structured report,
// persists it under the dossier and leaves an audit trace. Engines are
// re-run first so the artifact never mixes stale and fresh figures.
func (u *Usecase) GenerateReport(ctx context.Context) (*domain.StructuredReport, error) {
	d, err := u.store.ActiveDossier(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := u.ComputeRentabilite(ctx); err != nil {
		return nil, err
	}
	scoreRes, err := u.GenerateScore(ctx)
	if err != nil {
		return nil, err
	}

	snap := u.store.Read(ctx)
	d = snap.Dossier

	var rent *finance.Result
	if d.Analysis != nil {
		rent = d.Analysis.Rentabilite
	}
	rep := report.Generate(report.Inputs{
		Dossier:     d,
		Risks:       snap.RiskAnalysis,
		Guarantees:  snap.Guarantees,
		Documents:   snap.Documents,
		Market:      snap.Market,
		Rentabilite: rent,
		Score:       scoreRes,
	}, time.Now())

	u.store.SetReport(ctx, d.ID, rep)
	u.audit(ctx, d.ID, domain.SeverityInfo, "Rapport genere", "Reference "+rep.Meta.Reference)
	return rep, nil
}

// ExportReport hands the persisted report to the exporter. An invalid
// or absent report is ErrInvalidReport territory handled by the
// exporter itself.
func (u *Usecase) ExportReport(ctx context.Context) (*report.Artifact, error) {
	d, err := u.store.ActiveDossier(ctx)
	if err != nil {
		return nil, err
	}
	return u.exporter.Export(d.Report, d.DisplayLabel())
}

// CoverageSummary is the guarantee coverage op: pledged total and
// coverage of the loan ask as a whole percentage.
type CoverageSummary struct {
	TotalValue  float64 `json:"total_value"`
	LoanAsk     float64 `json:"loan_ask"`
	CoveragePct float64 `json:"coverage_pct"`
}

func (u *Usecase) GuaranteeCoverage(ctx context.Context) (*CoverageSummary, error) {
	d, err := u.store.ActiveDossier(ctx)
	if err != nil {
		return nil, err
	}
	snap := u.store.Read(ctx)
	var sum CoverageSummary
	if d.Origination != nil && d.Origination.LoanAsk != nil {
		sum.LoanAsk = d.Origination.LoanAsk.Amount
	}
	if snap.Guarantees != nil {
		sum.TotalValue = snap.Guarantees.TotalValue()
		sum.CoveragePct = snap.Guarantees.CoveragePct(sum.LoanAsk)
	}
	return &sum, nil
}
