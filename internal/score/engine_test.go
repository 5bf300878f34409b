package score

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"immofin-backend/internal/finance"
)

func fullInput() Input {
	return Input{
		Documentation: &DocumentationInput{CompletenessPct: 90, MissingMandatory: 0},
		Guarantees:    &GuaranteeInput{CoveragePct: 130, Count: 2, HasFirstRank: true},
		Borrower: &BorrowerInput{
			ExperienceYears:   8,
			CompletedProjects: 4,
			NetMonthlyIncome:  4200,
			ExistingDebtPct:   20,
		},
		Project: &ProjectInput{ConditionState: "bon", TensionIndex: 70, PreSoldPct: 40},
		Financial: &FinancialInput{
			Decision:            finance.DecisionGo,
			MarginPct:           22,
			AnnualizedReturnPct: 24,
			ContributionPct:     25,
			Strategy:            finance.StrategyResale,
		},
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	eng := NewEngine(DefaultConfig())
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	a := eng.Evaluate(fullInput(), now)
	b := eng.Evaluate(fullInput(), now)
	require.Equal(t, a, b, "two runs over identical inputs must match exactly")
}

func TestEvaluate_FullDataNoPenalty(t *testing.T) {
	eng := NewEngine(DefaultConfig())
	res := eng.Evaluate(fullInput(), time.Now())

	assert.Zero(t, res.MissingPenalty)
	assert.Empty(t, res.Missing)
	require.Len(t, res.Pillars, 5)
	for _, p := range res.Pillars {
		assert.True(t, p.HasData, "pillar %s", p.Key)
		assert.LessOrEqual(t, p.Points, p.MaxPoints)
	}
	assert.Greater(t, res.Score, 65.0)
}

func TestEvaluate_MissingPillarPenalized(t *testing.T) {
	eng := NewEngine(DefaultConfig())
	in := fullInput()
	in.Guarantees = nil
	res := eng.Evaluate(in, time.Now())

	// the guarantee weight is lost from the achievable score
	assert.Equal(t, 25.0, res.MissingPenalty)
	require.Len(t, res.Missing, 1)
	assert.Equal(t, PillarGuarantees, res.Missing[0].Pillar)
	assert.Equal(t, SeverityBlocker, res.Missing[0].Severity)

	full := eng.Evaluate(fullInput(), time.Now())
	assert.Less(t, res.Score, full.Score)

	// blockers must surface as mandatory follow-ups
	var mandatory bool
	for _, rec := range res.Recommendations {
		if rec == "completer imperativement: "+res.Missing[0].Label {
			mandatory = true
		}
	}
	assert.True(t, mandatory, "blocker gap must appear in recommendations: %v", res.Recommendations)
}

func TestEvaluate_MissingIsPenaltyNotNeutral(t *testing.T) {
	eng := NewEngine(DefaultConfig())

	// a pillar scored at zero and a missing pillar both yield zero
	// points, but only the latter shows as a data gap
	lowDoc := fullInput()
	lowDoc.Documentation = &DocumentationInput{CompletenessPct: 0, MissingMandatory: 5}
	missingDoc := fullInput()
	missingDoc.Documentation = nil

	a := eng.Evaluate(lowDoc, time.Now())
	b := eng.Evaluate(missingDoc, time.Now())
	assert.Zero(t, a.MissingPenalty)
	assert.Equal(t, 15.0, b.MissingPenalty)
	assert.NotEmpty(t, b.Missing)
}

func TestEvaluate_EmptyInput(t *testing.T) {
	eng := NewEngine(DefaultConfig())
	res := eng.Evaluate(Input{}, time.Now())

	assert.Zero(t, res.Score)
	assert.Equal(t, "E", res.Grade)
	assert.Equal(t, 100.0, res.MissingPenalty)
	assert.Len(t, res.Missing, 5)
	assert.Empty(t, res.DriversUp)
	assert.Empty(t, res.DriversDown)
	assert.NotEmpty(t, res.Verdict)
}

func TestGradeCuts(t *testing.T) {
	cuts := DefaultConfig().Cuts
	cases := []struct {
		score float64
		want  string
	}{
		{95, "A"}, {80, "A"}, {79.99, "B"}, {65, "B"},
		{64, "C"}, {50, "C"}, {49, "D"}, {35, "D"}, {10, "E"},
	}
	for _, c := range cases {
		if got := cuts.Grade(c.score); got != c.want {
			t.Errorf("Grade(%v) = %s, want %s", c.score, got, c.want)
		}
	}
}

func TestWeights_Normalize(t *testing.T) {
	w := Weights{Documentation: 1, Guarantees: 1, Borrower: 1, Project: 1, Financial: 1}.Normalize()
	assert.InDelta(t, 20, w.Documentation, 1e-9)
	assert.InDelta(t, 100, w.Documentation+w.Guarantees+w.Borrower+w.Project+w.Financial, 1e-9)

	// a zero table falls back to the defaults
	assert.Equal(t, DefaultConfig().Weights, Weights{}.Normalize())
}

func TestDrivers_SplitUpAndDown(t *testing.T) {
	eng := NewEngine(DefaultConfig())
	in := fullInput()
	in.Documentation = &DocumentationInput{CompletenessPct: 20, MissingMandatory: 2}
	res := eng.Evaluate(in, time.Now())

	assert.NotEmpty(t, res.DriversUp)
	require.NotEmpty(t, res.DriversDown)
	assert.Equal(t, pillarLabels[PillarDocumentation], res.DriversDown[0])
}
