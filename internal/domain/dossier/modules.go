package dossier

import "time"

// ModuleKey names an auxiliary snapshot module. The set is closed:
// PatchModule rejects anything else.
type ModuleKey string

const (
	ModuleRiskAnalysis ModuleKey = "riskAnalysis"
	ModuleGuarantees   ModuleKey = "guarantees"
	ModuleDocuments    ModuleKey = "documents"
	ModuleCommittee    ModuleKey = "committee"
	ModuleMonitoring   ModuleKey = "monitoring"
	ModuleSmartScore   ModuleKey = "smartScore"
	ModuleMarket       ModuleKey = "market"
)

// ModuleKeys is the full addressable set, in stable order.
var ModuleKeys = []ModuleKey{
	ModuleRiskAnalysis, ModuleGuarantees, ModuleDocuments,
	ModuleCommittee, ModuleMonitoring, ModuleSmartScore, ModuleMarket,
}

func (k ModuleKey) Valid() bool {
	for _, m := range ModuleKeys {
		if m == k {
			return true
		}
	}
	return false
}

// ---- risk analysis ----

type RiskLevel string

const (
	RiskLow      RiskLevel = "faible"
	RiskModerate RiskLevel = "modere"
	RiskHigh     RiskLevel = "eleve"
	RiskCritical RiskLevel = "critique"
)

type RiskItemStatus string

const (
	RiskOpen      RiskItemStatus = "ouvert"
	RiskMitigated RiskItemStatus = "couvert"
	RiskAccepted  RiskItemStatus = "accepte"
)

type RiskItem struct {
	ID         string         `json:"id"`
	Category   string         `json:"category"`
	Label      string         `json:"label"`
	Level      RiskLevel      `json:"level"`
	Status     RiskItemStatus `json:"status"`
	Mitigation string         `json:"mitigation,omitempty"`
}

type RiskAnalysis struct {
	DossierID string     `json:"dossier_id"`
	Items     []RiskItem `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ---- guarantees ----

type Guarantee struct {
	ID    string  `json:"id"`
	Kind  string  `json:"kind"` // hypotheque, caution, nantissement, gapd
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Rank  int     `json:"rank"`
}

type Guarantees struct {
	DossierID string      `json:"dossier_id"`
	Items     []Guarantee `json:"items"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// TotalValue sums the pledged values.
func (g Guarantees) TotalValue() float64 {
	var t float64
	for _, it := range g.Items {
		t += it.Value
	}
	return t
}

// CoveragePct returns guarantee value over loan ask as a whole
// percentage (150 means covered 1.5x). Zero ask yields zero.
func (g Guarantees) CoveragePct(loanAsk float64) float64 {
	if loanAsk <= 0 {
		return 0
	}
	return g.TotalValue() / loanAsk * 100
}

// ---- documents ----

type Document struct {
	ID         string     `json:"id"`
	Kind       string     `json:"kind"`
	Label      string     `json:"label"`
	Mandatory  bool       `json:"mandatory"`
	Received   bool       `json:"received"`
	ReceivedAt *time.Time `json:"received_at,omitempty"`
}

type Documents struct {
	DossierID string     `json:"dossier_id"`
	Items     []Document `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CompletenessPct is received over total, as a whole percentage.
func (d Documents) CompletenessPct() float64 {
	if len(d.Items) == 0 {
		return 0
	}
	var rec int
	for _, it := range d.Items {
		if it.Received {
			rec++
		}
	}
	return float64(rec) / float64(len(d.Items)) * 100
}

// MissingMandatory lists mandatory documents not yet received.
func (d Documents) MissingMandatory() []Document {
	var out []Document
	for _, it := range d.Items {
		if it.Mandatory && !it.Received {
			out = append(out, it)
		}
	}
	return out
}

// ---- committee ----

type Verdict string

const (
	VerdictPending           Verdict = "en_attente"
	VerdictFavorable         Verdict = "favorable"
	VerdictFavorableReserves Verdict = "favorable_avec_reserves"
	VerdictDefavorable       Verdict = "defavorable"
	VerdictAjourne           Verdict = "ajourne"
)

// Committee is the decision record. Decisions may be revised: recording
// a new verdict restamps DecidedAt, there is no terminal lock.
type Committee struct {
	DossierID  string     `json:"dossier_id"`
	Verdict    Verdict    `json:"verdict"`
	Conditions []string   `json:"conditions,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	DecidedBy  string     `json:"decided_by,omitempty"`
	DecidedAt  *time.Time `json:"decided_at,omitempty"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// ---- monitoring ----

type AlertSeverity string

const (
	SeverityInfo     AlertSeverity = "info"
	SeverityWarn     AlertSeverity = "warn"
	SeverityCritical AlertSeverity = "critical"
)

// Alert is an append-only monitoring log entry. Entries are
// acknowledged or removed individually, never purged wholesale except
// on dossier deletion.
type Alert struct {
	ID             string        `json:"id"`
	DossierID      string        `json:"dossier_id"`
	Severity       AlertSeverity `json:"severity"`
	Title          string        `json:"title"`
	Message        string        `json:"message"`
	CreatedAt      time.Time     `json:"created_at"`
	AcknowledgedAt *time.Time    `json:"acknowledged_at,omitempty"`
}

type Monitoring struct {
	DossierID string    `json:"dossier_id"`
	Alerts    []Alert   `json:"alerts"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ---- smart score ----

type SmartScore struct {
	DossierID string            `json:"dossier_id"`
	Result    *SmartScoreResult `json:"result,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// ---- market ----

type Market struct {
	DossierID         string    `json:"dossier_id"`
	City              string    `json:"city"`
	AvgPricePerSqm    float64   `json:"avg_price_per_sqm"`
	TargetPricePerSqm float64   `json:"target_price_per_sqm"`
	AvgRentPerSqm     float64   `json:"avg_rent_per_sqm"`
	TensionIndex      float64   `json:"tension_index"`
	Comment           string    `json:"comment,omitempty"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// ---- module patches ----

// ModulePatch is implemented by the per-module patch types. Every patch
// names its target dossier explicitly; the store compares it against
// the active dossier id and drops mismatches.
type ModulePatch interface {
	Key() ModuleKey
	TargetDossier() string
}

type RiskAnalysisPatch struct {
	DossierID string     `json:"dossier_id"`
	Items     []RiskItem `json:"items,omitempty"`
}

func (p RiskAnalysisPatch) Key() ModuleKey        { return ModuleRiskAnalysis }
func (p RiskAnalysisPatch) TargetDossier() string { return p.DossierID }

type GuaranteesPatch struct {
	DossierID string      `json:"dossier_id"`
	Items     []Guarantee `json:"items,omitempty"`
}

func (p GuaranteesPatch) Key() ModuleKey        { return ModuleGuarantees }
func (p GuaranteesPatch) TargetDossier() string { return p.DossierID }

type DocumentsPatch struct {
	DossierID string     `json:"dossier_id"`
	Items     []Document `json:"items,omitempty"`
}

func (p DocumentsPatch) Key() ModuleKey        { return ModuleDocuments }
func (p DocumentsPatch) TargetDossier() string { return p.DossierID }

type CommitteePatch struct {
	DossierID  string    `json:"dossier_id"`
	Verdict    *Verdict  `json:"verdict,omitempty"`
	Conditions []string  `json:"conditions,omitempty"`
	Notes      *string   `json:"notes,omitempty"`
	DecidedBy  *string   `json:"decided_by,omitempty"`
}

func (p CommitteePatch) Key() ModuleKey        { return ModuleCommittee }
func (p CommitteePatch) TargetDossier() string { return p.DossierID }

type MonitoringPatch struct {
	DossierID     string   `json:"dossier_id"`
	Append        []Alert  `json:"append,omitempty"`
	AcknowledgeID string   `json:"acknowledge_id,omitempty"`
	RemoveID      string   `json:"remove_id,omitempty"`
}

func (p MonitoringPatch) Key() ModuleKey        { return ModuleMonitoring }
func (p MonitoringPatch) TargetDossier() string { return p.DossierID }

type SmartScorePatch struct {
	DossierID string            `json:"dossier_id"`
	Result    *SmartScoreResult `json:"result,omitempty"`
}

func (p SmartScorePatch) Key() ModuleKey        { return ModuleSmartScore }
func (p SmartScorePatch) TargetDossier() string { return p.DossierID }

type MarketPatch struct {
	DossierID         string   `json:"dossier_id"`
	City              *string  `json:"city,omitempty"`
	AvgPricePerSqm    *float64 `json:"avg_price_per_sqm,omitempty"`
	TargetPricePerSqm *float64 `json:"target_price_per_sqm,omitempty"`
	AvgRentPerSqm     *float64 `json:"avg_rent_per_sqm,omitempty"`
	TensionIndex      *float64 `json:"tension_index,omitempty"`
	Comment           *string  `json:"comment,omitempty"`
}

func (p MarketPatch) Key() ModuleKey        { return ModuleMarket }
func (p MarketPatch) TargetDossier() string { return p.DossierID }
