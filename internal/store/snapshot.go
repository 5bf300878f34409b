// Package store owns the single persisted snapshot for the banque
// vertical: one active dossier plus its auxiliary modules. All
// mutation goes through the guarded operations on Store; the engines
// only ever read from here and hand results back through patches.
package store

import (
	"encoding/json"
	"time"

	"immofin-backend/internal/domain/dossier"
)

// SnapshotVersion is stamped on every write so future shape changes
// can migrate on read.
const SnapshotVersion = 1

// Snapshot is the full persisted state. An absent module means "not
// yet computed", never an error.
type Snapshot struct {
	Version         int       `json:"version"`
	UpdatedAt       time.Time `json:"updated_at"`
	ActiveDossierID string    `json:"active_dossier_id,omitempty"`

	Dossier      *dossier.Dossier      `json:"dossier,omitempty"`
	RiskAnalysis *dossier.RiskAnalysis `json:"risk_analysis,omitempty"`
	Guarantees   *dossier.Guarantees   `json:"guarantees,omitempty"`
	Documents    *dossier.Documents    `json:"documents,omitempty"`
	Committee    *dossier.Committee    `json:"committee,omitempty"`
	Monitoring   *dossier.Monitoring   `json:"monitoring,omitempty"`
	SmartScore   *dossier.SmartScore   `json:"smart_score,omitempty"`
	Market       *dossier.Market       `json:"market,omitempty"`
}

func emptySnapshot() Snapshot {
	return Snapshot{Version: SnapshotVersion}
}

// decodeSnapshot treats a corrupt payload as an empty snapshot: losing
// a record is recoverable, failing to start is not.
func decodeSnapshot(raw []byte) Snapshot {
	if len(raw) == 0 {
		return emptySnapshot()
	}
	var s Snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return emptySnapshot()
	}
	if s.Version == 0 {
		s.Version = SnapshotVersion
	}
	return s
}

// detachModules drops every auxiliary module from the snapshot. Used
// when the active dossier is removed or replaced, since each module
// belongs to exactly one dossier.
func (s *Snapshot) detachModules() {
	s.RiskAnalysis = nil
	s.Guarantees = nil
	s.Documents = nil
	s.Committee = nil
	s.Monitoring = nil
	s.SmartScore = nil
	s.Market = nil
}

// clone deep-copies through the JSON codec so callers can never reach
// the store's internal state.
func (s Snapshot) clone() Snapshot {
	raw, err := json.Marshal(s)
	if err != nil {
		return emptySnapshot()
	}
	return decodeSnapshot(raw)
}
