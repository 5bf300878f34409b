package score

import (
	"fmt"
	"math"
	"sort"
	"time"
)

type Severity string

const (
	SeverityBlocker Severity = "blocker"
	SeverityWarn    Severity = "warn"
	SeverityInfo    Severity = "info"
)

// MissingDataItem records an input gap. Gaps feed the score penalty
// and the report warnings; they never fail the evaluation.
type MissingDataItem struct {
	Pillar   PillarKey `json:"pillar"`
	Label    string    `json:"label"`
	Severity Severity  `json:"severity"`
}

// Pillar is one scored dimension of the result.
type Pillar struct {
	Key       PillarKey `json:"key"`
	Label     string    `json:"label"`
	Points    float64   `json:"points"`
	MaxPoints float64   `json:"max_points"`
	Raw       float64   `json:"raw"`
	HasData   bool      `json:"has_data"`
	Reasons   []string  `json:"reasons,omitempty"`
	Actions   []string  `json:"actions,omitempty"`
}

// Result is the aggregated SmartScore. Regenerated wholesale on each
// run, never incrementally updated.
type Result struct {
	Score           float64           `json:"score"`
	Grade           string            `json:"grade"`
	Verdict         string            `json:"verdict"`
	Pillars         []Pillar          `json:"pillars"`
	DriversUp       []string          `json:"drivers_up"`
	DriversDown     []string          `json:"drivers_down"`
	MissingPenalty  float64           `json:"missing_penalty"`
	Missing         []MissingDataItem `json:"missing,omitempty"`
	Recommendations []string          `json:"recommendations,omitempty"`
	GeneratedAt     time.Time         `json:"generated_at"`
}

// Engine evaluates dossiers against a fixed configuration.
type Engine struct{ cfg Config }

func NewEngine(cfg Config) *Engine {
	cfg.Weights = cfg.Weights.Normalize()
	return &Engine{cfg: cfg}
}

// Evaluate scores the input. Deterministic: pillar order is fixed and
// the only time dependency is the explicit now argument.
func (e *Engine) Evaluate(in Input, now time.Time) Result {
	res := Result{GeneratedAt: now.UTC()}

	for _, key := range pillarOrder {
		w := e.cfg.Weights.of(key)
		p := Pillar{Key: key, Label: pillarLabels[key], MaxPoints: round2(w)}

		raw, reasons, actions, ok := e.rate(key, in)
		if !ok {
			p.HasData = false
			res.MissingPenalty += w
			res.Missing = append(res.Missing, MissingDataItem{
				Pillar:   key,
				Label:    fmt.Sprintf("donnees absentes pour le pilier %q", pillarLabels[key]),
				Severity: missingSeverity[key],
			})
			res.Pillars = append(res.Pillars, p)
			continue
		}
		p.HasData = true
		p.Raw = round2(raw)
		p.Points = round2(raw / 100 * w)
		p.Reasons = reasons
		p.Actions = actions
		res.Pillars = append(res.Pillars, p)
		res.Score += raw / 100 * w
	}

	res.Score = round2(res.Score)
	res.MissingPenalty = round2(res.MissingPenalty)
	res.Grade = e.cfg.Cuts.Grade(res.Score)
	res.DriversUp, res.DriversDown = drivers(res.Pillars)
	res.Verdict = verdict(res)
	res.Recommendations = recommendations(res)
	return res
}

func (e *Engine) rate(key PillarKey, in Input) (raw float64, reasons, actions []string, ok bool) {
	switch key {
	case PillarDocumentation:
		if in.Documentation == nil {
			return 0, nil, nil, false
		}
		raw, reasons, actions = rateDocumentation(*in.Documentation)
	case PillarGuarantees:
		if in.Guarantees == nil {
			return 0, nil, nil, false
		}
		raw, reasons, actions = rateGuarantees(*in.Guarantees)
	case PillarBorrower:
		if in.Borrower == nil {
			return 0, nil, nil, false
		}
		raw, reasons, actions = rateBorrower(*in.Borrower)
	case PillarProject:
		if in.Project == nil {
			return 0, nil, nil, false
		}
		raw, reasons, actions = rateProject(*in.Project)
	case PillarFinancial:
		if in.Financial == nil {
			return 0, nil, nil, false
		}
		raw, reasons, actions = rateFinancial(*in.Financial)
	default:
		return 0, nil, nil, false
	}
	return raw, reasons, actions, true
}

// drivers ranks pillars by how far their earned points sit from what
// the pillar would have earned at the average raw sub-score. Stable
// tie-break on key keeps the output deterministic.
func drivers(pillars []Pillar) (up, down []string) {
	var sum float64
	var n int
	for _, p := range pillars {
		if p.HasData {
			sum += p.Raw
			n++
		}
	}
	if n == 0 {
		return nil, nil
	}
	avg := sum / float64(n)

	type delta struct {
		key string
		d   float64
	}
	var ds []delta
	for _, p := range pillars {
		if !p.HasData {
			continue
		}
		ds = append(ds, delta{key: p.Label, d: (p.Raw - avg) / 100 * p.MaxPoints})
	}
	sort.SliceStable(ds, func(i, j int) bool {
		if ds[i].d != ds[j].d {
			return ds[i].d > ds[j].d
		}
		return ds[i].key < ds[j].key
	})

	for _, d := range ds {
		if d.d > 0 && len(up) < 2 {
			up = append(up, d.key)
		}
	}
	for i := len(ds) - 1; i >= 0; i-- {
		if ds[i].d < 0 && len(down) < 2 {
			down = append(down, ds[i].key)
		}
	}
	return up, down
}

func verdict(r Result) string {
	var blockers int
	for _, m := range r.Missing {
		if m.Severity == SeverityBlocker {
			blockers++
		}
	}
	switch {
	case blockers > 0:
		return fmt.Sprintf("Score %s (%.0f/100) -- %d pilier(s) bloquant(s) sans donnees, completer avant comite", r.Grade, r.Score, blockers)
	case r.Grade == "A" || r.Grade == "B":
		return fmt.Sprintf("Score %s (%.0f/100) -- profil de risque compatible avec un passage en comite", r.Grade, r.Score)
	case r.Grade == "C":
		return fmt.Sprintf("Score %s (%.0f/100) -- dossier presentable avec reserves", r.Grade, r.Score)
	default:
		return fmt.Sprintf("Score %s (%.0f/100) -- niveau de risque incompatible en l'etat", r.Grade, r.Score)
	}
}

// recommendations: actions of the two weakest scored pillars, then the
// mandatory follow-ups for blocker gaps.
func recommendations(r Result) []string {
	scored := make([]Pillar, 0, len(r.Pillars))
	for _, p := range r.Pillars {
		if p.HasData {
			scored = append(scored, p)
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Raw != scored[j].Raw {
			return scored[i].Raw < scored[j].Raw
		}
		return scored[i].Key < scored[j].Key
	})

	var out []string
	for i, p := range scored {
		if i >= 2 {
			break
		}
		out = append(out, p.Actions...)
	}
	for _, m := range r.Missing {
		if m.Severity == SeverityBlocker {
			out = append(out, fmt.Sprintf("completer imperativement: %s", m.Label))
		}
	}
	return out
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
