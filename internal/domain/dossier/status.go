package dossier

// Status is the lifecycle stage of a dossier. The machine is advisory:
// transitions fire as side effects of section saves, and any earlier
// stage can be re-entered manually so partial data never blocks a user.
type Status string

const (
	StatusBrouillon   Status = "brouillon"
	StatusOrigination Status = "origination"
	StatusAnalyse     Status = "analyse"
	StatusComite      Status = "comite"
	StatusDecision    Status = "decision"
	StatusMonitoring  Status = "monitoring"
	StatusCloture     Status = "cloture"
)

var statusOrder = []Status{
	StatusBrouillon,
	StatusOrigination,
	StatusAnalyse,
	StatusComite,
	StatusDecision,
	StatusMonitoring,
	StatusCloture,
}

// Rank returns the position of s in the nominal pipeline, or -1 for an
// unknown status.
func (s Status) Rank() int {
	for i, st := range statusOrder {
		if st == s {
			return i
		}
	}
	return -1
}

func (s Status) Valid() bool { return s.Rank() >= 0 }

// After reports whether s sits later in the pipeline than other.
func (s Status) After(other Status) bool { return s.Rank() > other.Rank() }

// Advance returns the later of current and target. Section saves use it
// so a save never moves a dossier backwards, while manual patches may.
func Advance(current, target Status) Status {
	if target.After(current) {
		return target
	}
	return current
}
