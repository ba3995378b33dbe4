package availability

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"pucisca/internal/app/outbox"
	"pucisca/internal/app/policies"
	domainavailability "pucisca/internal/domain/availability"
	"pucisca/internal/domain/property"
)

// Snapshot holds the blocked-date set of every house. Sets are replaced
// wholesale on refresh and never mutated, so readers need no locking.
type Snapshot struct {
	source  domainavailability.Source
	keys    []property.Key
	outbox  outbox.Outbox
	encoder outbox.EventEncoder
	logger  *slog.Logger
	now     func() time.Time

	refreshMu sync.Mutex
	state     atomic.Pointer[snapshotState]
}

type snapshotState struct {
	sets map[property.Key]domainavailability.BlockedSet
}

type SnapshotConfig struct {
	Source  domainavailability.Source
	Keys    []property.Key
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
	Clock   func() time.Time
}

func NewSnapshot(cfg SnapshotConfig) *Snapshot {
	s := &Snapshot{
		source:  cfg.Source,
		keys:    cfg.Keys,
		outbox:  cfg.Outbox,
		encoder: cfg.Encoder,
		logger:  cfg.Logger,
		now:     cfg.Clock,
	}
	if len(s.keys) == 0 {
		s.keys = property.All()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Ready reports whether a first refresh has completed.
func (s *Snapshot) Ready() bool {
	return s.state.Load() != nil
}

// Refresh fetches every house concurrently and swaps in the new sets once all
// fetches finished. A failing house gets an empty degraded set; the other
// houses are unaffected.
func (s *Snapshot) Refresh(ctx context.Context) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()
	return s.refreshLocked(ctx, s.keys)
}

// RefreshProperty refetches a single house and keeps the rest.
func (s *Snapshot) RefreshProperty(ctx context.Context, key property.Key) error {
	if !key.Valid() {
		return property.ErrUnknownProperty
	}
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()
	if s.state.Load() == nil {
		return s.refreshLocked(ctx, s.keys)
	}
	return s.refreshLocked(ctx, []property.Key{key})
}

func (s *Snapshot) refreshLocked(ctx context.Context, keys []property.Key) error {
	now := s.now().UTC()
	outcomes := make([]domainavailability.FetchOutcome, len(keys))
	// Fetch folds every failure into its outcome, so the group is only a
	// join point for the concurrent fetches.
	var g errgroup.Group
	for i, key := range keys {
		g.Go(func() error {
			outcomes[i] = domainavailability.Fetch(ctx, s.source, key, now)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return err
	}

	next := &snapshotState{sets: make(map[property.Key]domainavailability.BlockedSet, len(s.keys))}
	if cur := s.state.Load(); cur != nil {
		for k, set := range cur.sets {
			next.sets[k] = set
		}
	}
	for _, o := range outcomes {
		next.sets[o.Set.Property()] = o.Set
		if o.Err != nil {
			s.logger.WarnContext(ctx, "availability source unreachable, serving empty set",
				"property", string(o.Set.Property()), "error", o.Err)
		} else {
			s.logger.DebugContext(ctx, "availability refreshed",
				"property", string(o.Set.Property()), "blocked", o.Set.Len())
		}
	}
	s.state.Store(next)
	s.publish(ctx, outcomes)
	return nil
}

func (s *Snapshot) publish(ctx context.Context, outcomes []domainavailability.FetchOutcome) {
	if s.outbox == nil {
		return
	}
	for _, o := range outcomes {
		if err := outbox.RecordDomainEvents(ctx, s.outbox, s.encoder, domainavailability.OutcomeEvents(o)...); err != nil {
			s.logger.WarnContext(ctx, "record availability events", "error", err)
			return
		}
	}
	if err := s.outbox.Flush(ctx); err != nil {
		s.logger.WarnContext(ctx, "flush availability events", "error", err)
	}
}

// Sets returns the sets for keys in order, loading the snapshot on first use.
func (s *Snapshot) Sets(ctx context.Context, keys ...property.Key) ([]domainavailability.BlockedSet, error) {
	st := s.state.Load()
	if st == nil {
		if err := s.loadOnce(ctx); err != nil {
			return nil, err
		}
		st = s.state.Load()
	}
	out := make([]domainavailability.BlockedSet, len(keys))
	for i, key := range keys {
		set, ok := st.sets[key]
		if !ok {
			set = domainavailability.EmptySet(key, s.now().UTC())
		}
		out[i] = set
	}
	return out, nil
}

func (s *Snapshot) loadOnce(ctx context.Context) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()
	if s.state.Load() != nil {
		return nil
	}
	return s.refreshLocked(ctx, s.keys)
}

var _ policies.AvailabilityPort = (*Snapshot)(nil)
