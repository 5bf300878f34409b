package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"immofin-backend/internal/domain/dossier"
	"immofin-backend/pkg/id"
)

// Store is the only writer of the snapshot. Reads hand out deep
// copies, and every mutation works on a clone, so the cached snapshot
// stays immutable between writes and concurrent readers never observe
// a half-applied patch. Writes persist, then notify both local
// subscribers and the cross-context bus. Persistence failures degrade
// durability only: the in-memory snapshot still advances and
// notifications still fire.
type Store struct {
	backend Backend
	bus     Bus
	key     string
	origin  string
	log     zerolog.Logger

	mu        sync.Mutex
	cache     *Snapshot
	listeners map[int]func(Snapshot)
	nextSub   int
}

func New(backend Backend, bus Bus, key string, log zerolog.Logger) *Store {
	return &Store{
		backend:   backend,
		bus:       bus,
		key:       key,
		origin:    id.NewID32(),
		log:       log.With().Str("component", "store").Str("key", key).Logger(),
		listeners: make(map[int]func(Snapshot)),
	}
}

// Read returns the current snapshot, loading it from the backend on
// first use. A missing or unparsable record is an empty snapshot.
func (s *Store) Read(ctx context.Context) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current(ctx).clone()
}

// current must be called with mu held. The returned value shares
// module pointers with the cache, so mutating callers clone it before
// touching anything; the cached snapshot itself never changes between
// writes.
func (s *Store) current(ctx context.Context) Snapshot {
	if s.cache != nil {
		return *s.cache
	}
	raw, err := s.backend.Load(ctx, s.key)
	if err != nil && !errors.Is(err, ErrNotFound) {
		s.log.Error().Err(err).Msg("loading snapshot, starting empty")
	}
	snap := decodeSnapshot(raw)
	s.cache = &snap
	return snap
}

// Write stamps and persists snap, then notifies. Last writer wins.
func (s *Store) Write(ctx context.Context, snap Snapshot) Snapshot {
	snap.Version = SnapshotVersion
	snap.UpdatedAt = time.Now().UTC()

	s.mu.Lock()
	c := snap.clone()
	s.cache = &c
	fns := s.listenerList()
	s.mu.Unlock()

	if raw, err := json.Marshal(snap); err != nil {
		s.log.Error().Err(err).Msg("encoding snapshot, write not persisted")
	} else if err := s.backend.Save(ctx, s.key, raw); err != nil {
		s.log.Error().Err(err).Msg("persisting snapshot, session state kept")
	}

	for _, fn := range fns {
		fn(snap.clone())
	}
	if err := s.bus.Publish(ctx, s.key, s.origin); err != nil {
		s.log.Warn().Err(err).Msg("publishing change notification")
	}
	return snap
}

func (s *Store) listenerList() []func(Snapshot) {
	fns := make([]func(Snapshot), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	return fns
}

// UpsertDossier deep-merges p into the dossier identified by
// dossierID, creating it when absent, and marks it active. Sibling
// sections are never erased by a partial save.
func (s *Store) UpsertDossier(ctx context.Context, dossierID string, p dossier.Patch) Snapshot {
	now := time.Now().UTC()

	s.mu.Lock()
	snap := s.current(ctx).clone()
	s.mu.Unlock()

	if snap.Dossier == nil || snap.Dossier.ID != dossierID {
		// Selecting a different dossier starts a clean aggregate: the
		// previous dossier's modules must not leak into this one.
		snap.detachModules()
		snap.Dossier = &dossier.Dossier{
			ID:        dossierID,
			Status:    dossier.StatusBrouillon,
			CreatedAt: now,
		}
	}
	snap.Dossier.Apply(p, now)
	snap.ActiveDossierID = dossierID

	// Section saves advance the advisory lifecycle, never rewind it.
	if p.Origination != nil {
		snap.Dossier.Status = dossier.Advance(snap.Dossier.Status, dossier.StatusOrigination)
	}
	if p.Analysis != nil {
		snap.Dossier.Status = dossier.Advance(snap.Dossier.Status, dossier.StatusAnalyse)
	}

	return s.Write(ctx, snap)
}

// SetReport persists a freshly generated report under the active
// dossier, superseding any prior one.
func (s *Store) SetReport(ctx context.Context, dossierID string, r *dossier.StructuredReport) Snapshot {
	s.mu.Lock()
	snap := s.current(ctx).clone()
	s.mu.Unlock()

	if snap.Dossier == nil || snap.Dossier.ID != dossierID || snap.ActiveDossierID != dossierID {
		s.log.Warn().Str("dossier_id", dossierID).Msg("report targets a non-active dossier, skipped")
		return snap
	}
	snap.Dossier.Report = r
	snap.Dossier.UpdatedAt = time.Now().UTC()
	return s.Write(ctx, snap)
}

// PatchModule shallow-merges p into its module. The patch names its
// target dossier explicitly; a mismatch with the active dossier is a
// logged no-op, which covers stale navigation without corrupting
// state.
func (s *Store) PatchModule(ctx context.Context, p dossier.ModulePatch) Snapshot {
	s.mu.Lock()
	snap := s.current(ctx).clone()
	s.mu.Unlock()

	if !p.Key().Valid() {
		s.log.Warn().Str("module", string(p.Key())).Msg("unknown module key, patch skipped")
		return snap
	}
	if snap.ActiveDossierID == "" || p.TargetDossier() != snap.ActiveDossierID {
		s.log.Warn().
			Str("module", string(p.Key())).
			Str("patch_dossier", p.TargetDossier()).
			Str("active_dossier", snap.ActiveDossierID).
			Msg("module patch targets a non-active dossier, skipped")
		return snap
	}

	now := time.Now().UTC()
	switch patch := p.(type) {
	case dossier.RiskAnalysisPatch:
		m := snap.RiskAnalysis
		if m == nil {
			m = &dossier.RiskAnalysis{DossierID: patch.DossierID}
		}
		if patch.Items != nil {
			m.Items = patch.Items
		}
		m.UpdatedAt = now
		snap.RiskAnalysis = m

	case dossier.GuaranteesPatch:
		m := snap.Guarantees
		if m == nil {
			m = &dossier.Guarantees{DossierID: patch.DossierID}
		}
		if patch.Items != nil {
			m.Items = patch.Items
		}
		m.UpdatedAt = now
		snap.Guarantees = m

	case dossier.DocumentsPatch:
		m := snap.Documents
		if m == nil {
			m = &dossier.Documents{DossierID: patch.DossierID}
		}
		if patch.Items != nil {
			m.Items = patch.Items
		}
		m.UpdatedAt = now
		snap.Documents = m

	case dossier.CommitteePatch:
		s.applyCommittee(&snap, patch, now)

	case dossier.MonitoringPatch:
		s.applyMonitoring(&snap, patch, now)

	case dossier.SmartScorePatch:
		m := snap.SmartScore
		if m == nil {
			m = &dossier.SmartScore{DossierID: patch.DossierID}
		}
		if patch.Result != nil {
			m.Result = patch.Result
		}
		m.UpdatedAt = now
		snap.SmartScore = m

	case dossier.MarketPatch:
		s.applyMarket(&snap, patch, now)

	default:
		s.log.Warn().Str("module", string(p.Key())).Msg("unhandled module patch type, skipped")
		return snap
	}

	return s.Write(ctx, snap)
}

// applyCommittee merges the decision record and drives the lifecycle:
// a non-pending verdict moves the dossier to decision and stamps
// DecidedAt. Decisions may be revised, the machine never locks.
func (s *Store) applyCommittee(snap *Snapshot, patch dossier.CommitteePatch, now time.Time) {
	m := snap.Committee
	if m == nil {
		m = &dossier.Committee{DossierID: patch.DossierID, Verdict: dossier.VerdictPending}
	}
	if patch.Verdict != nil {
		m.Verdict = *patch.Verdict
	}
	if patch.Conditions != nil {
		m.Conditions = patch.Conditions
	}
	if patch.Notes != nil {
		m.Notes = *patch.Notes
	}
	if patch.DecidedBy != nil {
		m.DecidedBy = *patch.DecidedBy
	}
	if patch.Verdict != nil && *patch.Verdict != dossier.VerdictPending {
		m.DecidedAt = &now
		if snap.Dossier != nil {
			snap.Dossier.Status = dossier.Advance(snap.Dossier.Status, dossier.StatusDecision)
			snap.Dossier.DecidedAt = &now
			snap.Dossier.UpdatedAt = now
		}
	}
	m.UpdatedAt = now
	snap.Committee = m
}

func (s *Store) applyMonitoring(snap *Snapshot, patch dossier.MonitoringPatch, now time.Time) {
	m := snap.Monitoring
	if m == nil {
		m = &dossier.Monitoring{DossierID: patch.DossierID}
	}
	m.Alerts = append(m.Alerts, patch.Append...)
	if patch.AcknowledgeID != "" {
		for i := range m.Alerts {
			if m.Alerts[i].ID == patch.AcknowledgeID {
				ack := now
				m.Alerts[i].AcknowledgedAt = &ack
			}
		}
	}
	if patch.RemoveID != "" {
		kept := m.Alerts[:0]
		for _, a := range m.Alerts {
			if a.ID != patch.RemoveID {
				kept = append(kept, a)
			}
		}
		m.Alerts = kept
	}
	m.UpdatedAt = now
	snap.Monitoring = m
}

func (s *Store) applyMarket(snap *Snapshot, patch dossier.MarketPatch, now time.Time) {
	m := snap.Market
	if m == nil {
		m = &dossier.Market{DossierID: patch.DossierID}
	}
	if patch.City != nil {
		m.City = *patch.City
	}
	if patch.AvgPricePerSqm != nil {
		m.AvgPricePerSqm = *patch.AvgPricePerSqm
	}
	if patch.TargetPricePerSqm != nil {
		m.TargetPricePerSqm = *patch.TargetPricePerSqm
	}
	if patch.AvgRentPerSqm != nil {
		m.AvgRentPerSqm = *patch.AvgRentPerSqm
	}
	if patch.TensionIndex != nil {
		m.TensionIndex = *patch.TensionIndex
	}
	if patch.Comment != nil {
		m.Comment = *patch.Comment
	}
	m.UpdatedAt = now
	snap.Market = m
}

// RemoveDossier deletes the dossier and cascades over every module
// keyed to it. Removing anything but the active dossier is a no-op.
func (s *Store) RemoveDossier(ctx context.Context, dossierID string) Snapshot {
	s.mu.Lock()
	snap := s.current(ctx).clone()
	s.mu.Unlock()

	if dossierID == "" || snap.ActiveDossierID != dossierID {
		s.log.Warn().Str("dossier_id", dossierID).Msg("delete targets a non-active dossier, skipped")
		return snap
	}

	snap.Dossier = nil
	snap.ActiveDossierID = ""
	snap.detachModules()
	return s.Write(ctx, snap)
}

// OnChange registers fn for both in-process writes and cross-context
// notifications on the same key. The single returned disposer removes
// both registrations and is safe to call more than once.
func (s *Store) OnChange(fn func(Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	subID := s.nextSub
	s.nextSub++
	s.listeners[subID] = fn
	s.mu.Unlock()

	busUnsub := s.bus.Subscribe(s.key, func(origin string) {
		if origin == s.origin {
			return // already notified locally by Write
		}
		s.mu.Lock()
		s.cache = nil // another context wrote; force a fresh read
		snap := s.current(context.Background()).clone()
		s.mu.Unlock()
		fn(snap)
	})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, subID)
			s.mu.Unlock()
			busUnsub()
		})
	}
}

// ActiveDossier returns the current dossier or ErrNoDossier, the sole
// hard gate for screens that need one.
func (s *Store) ActiveDossier(ctx context.Context) (*dossier.Dossier, error) {
	snap := s.Read(ctx)
	if snap.ActiveDossierID == "" || snap.Dossier == nil {
		return nil, dossier.ErrNoDossier
	}
	return snap.Dossier, nil
}
