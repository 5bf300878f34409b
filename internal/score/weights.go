package score

// PillarKey identifies one scoring dimension.
type PillarKey string

const (
	PillarDocumentation PillarKey = "documentation"
	PillarGuarantees    PillarKey = "garanties"
	PillarBorrower      PillarKey = "emprunteur"
	PillarProject       PillarKey = "projet"
	PillarFinancial     PillarKey = "financier"
)

// pillarOrder fixes the iteration order so two runs over the same
// input always produce the same output.
var pillarOrder = []PillarKey{
	PillarDocumentation, PillarGuarantees, PillarBorrower,
	PillarProject, PillarFinancial,
}

var pillarLabels = map[PillarKey]string{
	PillarDocumentation: "Completude documentaire",
	PillarGuarantees:    "Couverture des garanties",
	PillarBorrower:      "Profil emprunteur",
	PillarProject:       "Solidite du projet",
	PillarFinancial:     "Ratios financiers",
}

// Weights is the points each pillar can earn. The five weights are
// expected to sum to 100; Normalize rescales them if they do not.
type Weights struct {
	Documentation float64 `yaml:"documentation"`
	Guarantees    float64 `yaml:"guarantees"`
	Borrower      float64 `yaml:"borrower"`
	Project       float64 `yaml:"project"`
	Financial     float64 `yaml:"financial"`
}

func (w Weights) of(k PillarKey) float64 {
	switch k {
	case PillarDocumentation:
		return w.Documentation
	case PillarGuarantees:
		return w.Guarantees
	case PillarBorrower:
		return w.Borrower
	case PillarProject:
		return w.Project
	case PillarFinancial:
		return w.Financial
	}
	return 0
}

// Normalize rescales the weights to sum to 100. A zero table falls
// back to the defaults.
func (w Weights) Normalize() Weights {
	sum := w.Documentation + w.Guarantees + w.Borrower + w.Project + w.Financial
	if sum <= 0 {
		return DefaultConfig().Weights
	}
	f := 100 / sum
	return Weights{
		Documentation: w.Documentation * f,
		Guarantees:    w.Guarantees * f,
		Borrower:      w.Borrower * f,
		Project:       w.Project * f,
		Financial:     w.Financial * f,
	}
}

// GradeCuts are the minimum scores for each letter grade; anything
// under D is an E.
type GradeCuts struct {
	A float64 `yaml:"a"`
	B float64 `yaml:"b"`
	C float64 `yaml:"c"`
	D float64 `yaml:"d"`
}

func (g GradeCuts) Grade(score float64) string {
	switch {
	case score >= g.A:
		return "A"
	case score >= g.B:
		return "B"
	case score >= g.C:
		return "C"
	case score >= g.D:
		return "D"
	default:
		return "E"
	}
}

// Config is the full tuning surface of the engine.
type Config struct {
	Weights Weights   `yaml:"weights"`
	Cuts    GradeCuts `yaml:"grade_cuts"`
}

func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Documentation: 15,
			Guarantees:    25,
			Borrower:      20,
			Project:       15,
			Financial:     25,
		},
		Cuts: GradeCuts{A: 80, B: 65, C: 50, D: 35},
	}
}

// missingSeverity says how hard the absence of each pillar's inputs
// weighs on the follow-up list. Only blockers become mandatory
// follow-ups.
var missingSeverity = map[PillarKey]Severity{
	PillarDocumentation: SeverityWarn,
	PillarGuarantees:    SeverityBlocker,
	PillarBorrower:      SeverityBlocker,
	PillarProject:       SeverityWarn,
	PillarFinancial:     SeverityBlocker,
}
