package trackclient

import (
	"context"
	"sort"
	"sync"
	"time"
)

// API is the slice of Client a Session needs; tests substitute their own.
type API interface {
	FetchTracking(ctx context.Context, loadID string) (*Snapshot, error)
	StreamTracking(ctx context.Context, loadID string) (*Stream, error)
}

// State identifies where a Session is in its lifecycle.
type State int

const (
	// StateSeeding: acquiring the initial full snapshot.
	StateSeeding State = iota
	// StateLive: seeded and receiving pushed points.
	StateLive
	// StateResyncing: the live feed dropped; refetching to close any gap.
	StateResyncing
	// StateClosed: torn down, no further updates.
	StateClosed
)

// Options tunes a Session.
type Options struct {
	// Seed, when non-nil, is used immediately instead of an initial fetch
	// (the snapshot a page load already carried).
	Seed *Snapshot

	// OnChange is invoked after every state or point-list change, under the
	// session lock: it must not call back into the Session. Never invoked
	// after Close returns.
	OnChange func(Snapshot)

	// BaseDelay/MaxDelay bound the reconnect backoff.
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

// Session maintains one viewer's synchronized view of a load's tracking:
// seed with a full fetch, merge pushed points by id, resync wholesale after
// any disconnect, and keep stale-but-present data visible on errors.
type Session struct {
	api    API
	loadID string
	opts   Options

	mu      sync.Mutex
	state   State
	load    LoadSummary
	points  []Point
	seen    map[string]struct{}
	loading bool
	lastErr error

	cancel context.CancelFunc
	done   chan struct{}
}

// NewSession creates a Session for one load. Call Start to begin syncing.
func NewSession(api API, loadID string, opts Options) *Session {
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = time.Second
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = 30 * time.Second
	}
	return &Session{
		api:    api,
		loadID: loadID,
		opts:   opts,
		seen:   make(map[string]struct{}),
		done:   make(chan struct{}),
	}
}

// Start launches the sync loop. It returns immediately; progress is exposed
// through Snapshot/State and the OnChange callback.
func (s *Session) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	go s.run(ctx)
}

// Close tears the session down. Synchronous-effective: once it returns, no
// OnChange fires and the session state is final.
func (s *Session) Close() {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	s.state = StateClosed
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
}

// Snapshot returns the current load summary and point list, always sorted in
// timeline order. The slice is a copy.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	points := make([]Point, len(s.points))
	copy(points, s.points)
	return Snapshot{Load: s.load, Tracking: points}
}

// State reports the session lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Loading reports whether the initial seed is still in flight.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the most recent fetch failure, or nil. Stale data stays
// visible alongside it.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Session) run(ctx context.Context) {
	defer close(s.done)

	s.seed(ctx)

	seeded := s.Err() == nil
	delay := s.opts.BaseDelay
	for ctx.Err() == nil {
		stream, err := s.api.StreamTracking(ctx, s.loadID)
		if err != nil {
			if !sleep(ctx, delay) {
				return
			}
			delay = nextDelay(delay, s.opts.MaxDelay)
			continue
		}
		delay = s.opts.BaseDelay

		// A fresh seed flows straight into the first subscription. Every
		// later subscription — and a first one whose seed failed — starts
		// with a full refetch so anything appended while detached is
		// recovered by replay, replaced wholesale so no gap survives.
		if seeded {
			seeded = false
			s.setState(StateLive)
		} else {
			s.resync(ctx)
		}

	consume:
		for {
			select {
			case <-ctx.Done():
				stream.Close()
				return
			case point, ok := <-stream.Points:
				if !ok {
					break consume
				}
				s.merge(point)
			}
		}
		stream.Close()

		s.setState(StateResyncing)
	}
}

// seed applies the provided snapshot or performs the initial fetch.
func (s *Session) seed(ctx context.Context) {
	if s.opts.Seed != nil {
		s.mu.Lock()
		s.replaceLocked(*s.opts.Seed)
		s.loading = false
		s.notifyLocked()
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	snap, err := s.api.FetchTracking(ctx, s.loadID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		// State is preserved (empty here); the caller shows the error.
		s.lastErr = err
		s.notifyLocked()
		return
	}
	s.replaceLocked(*snap)
	s.lastErr = nil
	s.notifyLocked()
}

// resync refetches and replaces local state wholesale. On failure the stale
// point list stays visible with the error recorded.
func (s *Session) resync(ctx context.Context) {
	snap, err := s.api.FetchTracking(ctx, s.loadID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = err
		s.notifyLocked()
		return
	}
	s.replaceLocked(*snap)
	s.lastErr = nil
	if s.state != StateClosed {
		s.state = StateLive
	}
	s.notifyLocked()
}

// merge appends one pushed point, dropping ids already present (duplicate
// delivery guard) and keeping the list in timeline order regardless of
// arrival order.
func (s *Session) merge(point Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.seen[point.ID]; dup {
		return
	}
	s.seen[point.ID] = struct{}{}

	// Points usually arrive in order; walk back from the tail.
	i := len(s.points)
	for i > 0 && point.before(s.points[i-1]) {
		i--
	}
	s.points = append(s.points, Point{})
	copy(s.points[i+1:], s.points[i:])
	s.points[i] = point

	s.notifyLocked()
}

// replaceLocked swaps in a full snapshot. Caller holds s.mu.
func (s *Session) replaceLocked(snap Snapshot) {
	s.load = snap.Load
	s.points = make([]Point, len(snap.Tracking))
	copy(s.points, snap.Tracking)
	sort.SliceStable(s.points, func(i, j int) bool {
		return s.points[i].before(s.points[j])
	})
	s.seen = make(map[string]struct{}, len(s.points))
	for _, p := range s.points {
		s.seen[p.ID] = struct{}{}
	}
	if s.state != StateClosed {
		s.state = StateLive
	}
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return
	}
	s.state = state
	s.notifyLocked()
}

// notifyLocked fires OnChange unless the session is closed. Caller holds
// s.mu, which is what makes Close synchronous-effective: Close flips the
// state under the same lock before cancelling the loop.
func (s *Session) notifyLocked() {
	if s.state == StateClosed || s.opts.OnChange == nil {
		return
	}
	points := make([]Point, len(s.points))
	copy(points, s.points)
	s.opts.OnChange(Snapshot{Load: s.load, Tracking: points})
}

func nextDelay(current, max time.Duration) time.Duration {
	next := current * 2
	if next > max {
		return max
	}
	return next
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
