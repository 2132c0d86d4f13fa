package trackclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

// manualStream is a Stream the test feeds by hand; ending it simulates the
// connection dropping.
func manualStream() *Stream {
	s := &Stream{
		body: io.NopCloser(strings.NewReader("")),
		ch:   make(chan Point, 16),
		done: make(chan struct{}),
	}
	s.Points = s.ch
	return s
}

func (s *Stream) push(p Point) { s.ch <- p }
func (s *Stream) end()         { close(s.ch) }

type fakeAPI struct {
	mu        sync.Mutex
	snap      Snapshot
	fetchErr  error
	streamErr error
	fetches   int

	created chan *Stream
}

func newFakeAPI(snap Snapshot) *fakeAPI {
	return &fakeAPI{snap: snap, created: make(chan *Stream, 8)}
}

func (f *fakeAPI) setSnapshot(snap Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snap = snap
}

func (f *fakeAPI) setFetchErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchErr = err
}

func (f *fakeAPI) setStreamErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.streamErr = err
}

func (f *fakeAPI) FetchTracking(context.Context, string) (*Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	snap := f.snap
	snap.Tracking = append([]Point(nil), f.snap.Tracking...)
	return &snap, nil
}

func (f *fakeAPI) StreamTracking(context.Context, string) (*Stream, error) {
	f.mu.Lock()
	err := f.streamErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	s := manualStream()
	f.created <- s
	return s, nil
}

func (f *fakeAPI) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func point(id string, minute int) Point {
	return Point{
		ID:        id,
		Status:    "in_transit",
		CreatedAt: time.Date(2024, 1, 1, 10, minute, 0, 0, time.UTC),
	}
}

func snapshotOf(points ...Point) Snapshot {
	return Snapshot{
		Load:     LoadSummary{ID: "load-1", LoadNumber: "LD-1001", Status: "in_transit"},
		Tracking: points,
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func nextStream(t *testing.T, api *fakeAPI) *Stream {
	t.Helper()
	select {
	case s := <-api.created:
		return s
	case <-time.After(2 * time.Second):
		t.Fatalf("session never subscribed")
		return nil
	}
}

func pointIDs(snap Snapshot) []string {
	ids := make([]string, 0, len(snap.Tracking))
	for _, p := range snap.Tracking {
		ids = append(ids, p.ID)
	}
	return ids
}

func idsEqual(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestSession_SeedsByFetchingAndSorts(t *testing.T) {
	// Served out of order; the session must present timeline order.
	api := newFakeAPI(snapshotOf(point("pt-2", 10), point("pt-1", 0)))
	sess := NewSession(api, "load-1", Options{})
	sess.Start(context.Background())
	defer sess.Close()

	waitFor(t, "live state", func() bool { return sess.State() == StateLive })

	if sess.Loading() {
		t.Errorf("loading must clear after the seed fetch")
	}
	if got := pointIDs(sess.Snapshot()); !idsEqual(got, []string{"pt-1", "pt-2"}) {
		t.Errorf("points not in timeline order: %v", got)
	}
	if api.fetchCount() != 1 {
		t.Errorf("expected exactly one seed fetch, got %d", api.fetchCount())
	}
}

func TestSession_ProvidedSeedSkipsFetch(t *testing.T) {
	api := newFakeAPI(snapshotOf())
	seed := snapshotOf(point("pt-1", 0))
	sess := NewSession(api, "load-1", Options{Seed: &seed})
	sess.Start(context.Background())
	defer sess.Close()

	nextStream(t, api) // first subscription established
	waitFor(t, "live state", func() bool { return sess.State() == StateLive })

	if api.fetchCount() != 0 {
		t.Errorf("a provided seed must not trigger a fetch, got %d", api.fetchCount())
	}
	if got := pointIDs(sess.Snapshot()); !idsEqual(got, []string{"pt-1"}) {
		t.Errorf("seed not applied: %v", got)
	}
}

func TestSession_MergesPushedPointsInOrder(t *testing.T) {
	api := newFakeAPI(snapshotOf(point("pt-1", 0)))
	sess := NewSession(api, "load-1", Options{})
	sess.Start(context.Background())
	defer sess.Close()

	stream := nextStream(t, api)
	waitFor(t, "live state", func() bool { return sess.State() == StateLive })

	// Arrival order deliberately scrambled relative to createdAt.
	stream.push(point("pt-3", 30))
	stream.push(point("pt-2", 20))

	waitFor(t, "3 points", func() bool { return len(sess.Snapshot().Tracking) == 3 })
	if got := pointIDs(sess.Snapshot()); !idsEqual(got, []string{"pt-1", "pt-2", "pt-3"}) {
		t.Errorf("merged state out of order: %v", got)
	}
}

func TestSession_DuplicateDeliveryMergedOnce(t *testing.T) {
	api := newFakeAPI(snapshotOf(point("pt-1", 0)))
	sess := NewSession(api, "load-1", Options{})
	sess.Start(context.Background())
	defer sess.Close()

	stream := nextStream(t, api)
	waitFor(t, "live state", func() bool { return sess.State() == StateLive })

	stream.push(point("pt-2", 20))
	stream.push(point("pt-2", 20)) // at-least-once delivery duplicate
	stream.push(point("pt-1", 0))  // already seeded
	stream.push(point("pt-3", 30))

	waitFor(t, "3 points", func() bool { return len(sess.Snapshot().Tracking) == 3 })
	if got := pointIDs(sess.Snapshot()); !idsEqual(got, []string{"pt-1", "pt-2", "pt-3"}) {
		t.Errorf("duplicates must merge to one entry: %v", got)
	}
}

func TestSession_ResyncRecoversGap(t *testing.T) {
	api := newFakeAPI(snapshotOf(point("pt-1", 0)))
	sess := NewSession(api, "load-1", Options{BaseDelay: time.Millisecond})
	sess.Start(context.Background())
	defer sess.Close()

	first := nextStream(t, api)
	waitFor(t, "live state", func() bool { return sess.State() == StateLive })

	// Connection drops; points pt-2..pt-4 land while detached.
	api.setSnapshot(snapshotOf(point("pt-1", 0), point("pt-2", 10), point("pt-3", 20), point("pt-4", 30)))
	first.end()

	second := nextStream(t, api)
	waitFor(t, "resync complete", func() bool { return len(sess.Snapshot().Tracking) == 4 })

	if got := pointIDs(sess.Snapshot()); !idsEqual(got, []string{"pt-1", "pt-2", "pt-3", "pt-4"}) {
		t.Errorf("gap not recovered in order: %v", got)
	}

	// And the live feed keeps flowing on the new connection.
	second.push(point("pt-5", 40))
	waitFor(t, "pushed point", func() bool { return len(sess.Snapshot().Tracking) == 5 })
}

func TestSession_FetchErrorKeepsStaleState(t *testing.T) {
	api := newFakeAPI(snapshotOf(point("pt-1", 0)))
	sess := NewSession(api, "load-1", Options{BaseDelay: time.Millisecond})
	sess.Start(context.Background())
	defer sess.Close()

	first := nextStream(t, api)
	waitFor(t, "live state", func() bool { return sess.State() == StateLive })

	api.setFetchErr(errors.New("fetch failed"))
	first.end()

	nextStream(t, api) // reconnected; resync will fail
	waitFor(t, "error recorded", func() bool { return sess.Err() != nil })

	// Stale data stays visible next to the error.
	if got := pointIDs(sess.Snapshot()); !idsEqual(got, []string{"pt-1"}) {
		t.Errorf("stale state must be preserved on fetch failure: %v", got)
	}
}

func TestSession_CloseStopsCallbacks(t *testing.T) {
	api := newFakeAPI(snapshotOf(point("pt-1", 0)))

	var mu sync.Mutex
	changes := 0
	sess := NewSession(api, "load-1", Options{OnChange: func(Snapshot) {
		mu.Lock()
		changes++
		mu.Unlock()
	}})
	sess.Start(context.Background())

	stream := nextStream(t, api)
	waitFor(t, "live state", func() bool { return sess.State() == StateLive })

	sess.Close()

	mu.Lock()
	after := changes
	mu.Unlock()

	// Anything pushed after Close must not reach the callback.
	stream.push(point("pt-2", 20))
	stream.end()
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	final := changes
	mu.Unlock()
	if final != after {
		t.Fatalf("OnChange fired after Close: %d -> %d", after, final)
	}
	if sess.State() != StateClosed {
		t.Errorf("expected closed state, got %v", sess.State())
	}
}

func TestSession_CloseTwiceIsSafe(t *testing.T) {
	api := newFakeAPI(snapshotOf())
	sess := NewSession(api, "load-1", Options{})
	sess.Start(context.Background())
	nextStream(t, api)
	sess.Close()
	sess.Close() // must not panic or hang
}

func TestSession_SeedFetchFailureSurfacesError(t *testing.T) {
	api := newFakeAPI(snapshotOf(point("pt-1", 0)))
	api.setFetchErr(fmt.Errorf("backend down"))
	api.setStreamErr(fmt.Errorf("backend down"))

	sess := NewSession(api, "load-1", Options{BaseDelay: time.Millisecond})
	sess.Start(context.Background())
	defer sess.Close()

	waitFor(t, "seed error", func() bool { return sess.Err() != nil })
	if sess.Loading() {
		t.Errorf("loading must clear even on a failed seed")
	}

	// Recovery: the failed seed forces a resync on the first connection.
	api.setFetchErr(nil)
	api.setStreamErr(nil)
	nextStream(t, api)
	waitFor(t, "recovered", func() bool { return len(sess.Snapshot().Tracking) == 1 })
	if sess.Err() != nil {
		t.Errorf("error must clear after a successful resync: %v", sess.Err())
	}
}
