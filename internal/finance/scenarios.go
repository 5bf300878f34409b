package finance

// ScenarioSet bundles the base computation with its optimistic and
// pessimistic variants. Each variant is a fully independent re-run of
// Compute over adjusted inputs, never a delta on the base result.
type ScenarioSet struct {
	Base        Result `json:"base"`
	Optimistic  Result `json:"optimistic"`
	Pessimistic Result `json:"pessimistic"`
}

// StressResult is a single-variable perturbation, recomputed in full.
type StressResult struct {
	Label  string `json:"label"`
	Result Result `json:"result"`
}

// Scenarios recomputes the operation under the optimistic and
// pessimistic multipliers from th.
func Scenarios(in BudgetInputs, strategy Strategy, th Thresholds) ScenarioSet {
	opt := in
	opt.TargetResalePrice *= th.OptimisticResaleFactor
	opt.WorksBudget *= th.OptimisticWorksFactor

	pess := in
	pess.TargetResalePrice *= th.PessimisticResaleFactor
	pess.WorksBudget *= th.PessimisticWorksFactor

	return ScenarioSet{
		Base:        Compute(in, strategy, th),
		Optimistic:  Compute(opt, strategy, th),
		Pessimistic: Compute(pess, strategy, th),
	}
}

// StressTests perturbs one variable at a time: resale price down, then
// works budget up, each against otherwise untouched base inputs.
func StressTests(in BudgetInputs, strategy Strategy, th Thresholds) []StressResult {
	priceDown := in
	priceDown.TargetResalePrice *= th.PessimisticResaleFactor

	worksUp := in
	worksUp.WorksBudget *= th.PessimisticWorksFactor

	return []StressResult{
		{Label: "prix de revente -5%", Result: Compute(priceDown, strategy, th)},
		{Label: "budget travaux +10%", Result: Compute(worksUp, strategy, th)},
	}
}
