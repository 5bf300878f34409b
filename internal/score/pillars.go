package score

import (
	"fmt"

	"immofin-backend/internal/finance"
)

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Each rate* function turns one pillar's inputs into a raw 0-100
// sub-score with its reasons and suggested actions.

func rateDocumentation(in DocumentationInput) (float64, []string, []string) {
	raw := in.CompletenessPct - float64(in.MissingMandatory)*15
	raw = clamp(raw)

	var reasons, actions []string
	reasons = append(reasons, fmt.Sprintf("dossier documentaire complet a %.0f%%", in.CompletenessPct))
	if in.MissingMandatory > 0 {
		reasons = append(reasons, fmt.Sprintf("%d piece(s) obligatoire(s) manquante(s)", in.MissingMandatory))
		actions = append(actions, "reclamer les pieces obligatoires manquantes")
	}
	return raw, reasons, actions
}

func rateGuarantees(in GuaranteeInput) (float64, []string, []string) {
	var raw float64
	switch {
	case in.CoveragePct >= 150:
		raw = 100
	case in.CoveragePct >= 120:
		raw = 80
	case in.CoveragePct >= 100:
		raw = 60
	case in.CoveragePct >= 80:
		raw = 40
	default:
		raw = 20
	}
	if in.HasFirstRank {
		raw = clamp(raw + 10)
	}

	reasons := []string{fmt.Sprintf("couverture des garanties a %.0f%% du credit", in.CoveragePct)}
	var actions []string
	if in.CoveragePct < 100 {
		actions = append(actions, "renforcer les suretes pour couvrir 100% du credit")
	}
	if !in.HasFirstRank {
		reasons = append(reasons, "aucune surete de premier rang")
		actions = append(actions, "obtenir une hypotheque de premier rang")
	}
	return raw, reasons, actions
}

func rateBorrower(in BorrowerInput) (float64, []string, []string) {
	raw := 50.0
	bonus := float64(in.CompletedProjects) * 10
	if bonus > 30 {
		bonus = 30
	}
	raw += bonus
	if in.ExperienceYears >= 5 {
		raw += 10
	}
	if in.NetMonthlyIncome > 0 {
		raw += 10
	}
	if in.ExistingDebtPct > 50 {
		raw -= 20
	}
	if in.PriorIncidents {
		raw -= 40
	}
	raw = clamp(raw)

	var reasons, actions []string
	reasons = append(reasons, fmt.Sprintf("%d operation(s) menee(s) a terme, %d an(s) d'experience", in.CompletedProjects, in.ExperienceYears))
	if in.PriorIncidents {
		reasons = append(reasons, "incidents de paiement anterieurs releves")
		actions = append(actions, "documenter la regularisation des incidents passes")
	}
	if in.ExistingDebtPct > 50 {
		reasons = append(reasons, fmt.Sprintf("endettement existant a %.0f%%", in.ExistingDebtPct))
		actions = append(actions, "reduire ou consolider l'endettement existant")
	}
	return raw, reasons, actions
}

func rateProject(in ProjectInput) (float64, []string, []string) {
	raw := 40 + in.TensionIndex*0.3 + in.PreSoldPct*0.2
	switch in.ConditionState {
	case "neuf":
		raw += 20
	case "bon":
		raw += 10
	case "lourd":
		raw -= 20
	}
	raw = clamp(raw)

	reasons := []string{fmt.Sprintf("tension du marche local %.0f/100, pre-commercialisation %.0f%%", in.TensionIndex, in.PreSoldPct)}
	var actions []string
	if in.ConditionState == "lourd" {
		reasons = append(reasons, "bien en etat de travaux lourds")
		actions = append(actions, "fournir un devis travaux detaille et un maitre d'oeuvre")
	}
	if in.PreSoldPct < 30 {
		actions = append(actions, "avancer la pre-commercialisation avant decaissement")
	}
	return raw, reasons, actions
}

func rateFinancial(in FinancialInput) (float64, []string, []string) {
	var raw float64
	switch in.Decision {
	case finance.DecisionGo:
		raw = 85
	case finance.DecisionReserves:
		raw = 60
	default:
		raw = 25
	}
	if in.MarginPct >= 20 {
		raw += 10
	}
	if in.MonthlyCashflow >= 0 && in.Strategy == finance.StrategyRental {
		raw += 5
	}
	if in.ContributionPct >= 20 {
		raw += 5
	}
	raw = clamp(raw)

	reasons := []string{fmt.Sprintf("classement rentabilite %s, marge %.2f%%", in.Decision, in.MarginPct)}
	var actions []string
	if in.Decision == finance.DecisionNoGo {
		reasons = append(reasons, "rentabilite sous les seuils du comite")
		actions = append(actions, "renegocier le prix d'achat ou revoir le plan de financement")
	}
	if in.ContributionPct < 10 {
		actions = append(actions, "augmenter l'apport personnel au-dela de 10%")
	}
	return raw, reasons, actions
}
