// Package live fans newly appended tracking points out to active viewers.
//
// One Hub per process holds a topic per load id. Viewers take a Subscription
// from the Hub; points enter through Broadcast, normally called by the Redis
// bridge so every instance of the service sees every append.
package live

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/fleetboard/tracking-service/internal/api/metrics"
	"github.com/fleetboard/tracking-service/internal/core/domain"
)

const defaultBuffer = 64

// Subscription is one viewer's handle on a load's live point feed.
// Points arrive on C. Unsubscribe must be called exactly once; after it
// returns no further points are delivered and C is closed.
type Subscription struct {
	C <-chan domain.TrackingPoint

	hub    *Hub
	loadID string
	ch     chan domain.TrackingPoint
	closed bool
}

// Unsubscribe detaches the subscription. Synchronous-effective: once it
// returns, nothing more is sent on C. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.hub.detach(s)
	close(s.ch)
}

// Hub is the in-process per-load broker.
type Hub struct {
	mu     sync.Mutex
	topics map[string]map[*Subscription]struct{}
	buffer int
	log    zerolog.Logger
}

// NewHub creates a Hub. buffer is the per-subscription channel depth; a
// subscriber that falls further behind loses points and recovers them by
// resyncing. If buffer <= 0, defaultBuffer is used.
func NewHub(buffer int, log zerolog.Logger) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Hub{
		topics: make(map[string]map[*Subscription]struct{}),
		buffer: buffer,
		log:    log,
	}
}

// Subscribe registers a viewer for one load's inserts. History is not
// replayed; callers seed state with a full fetch first.
func (h *Hub) Subscribe(loadID string) *Subscription {
	sub := &Subscription{
		hub:    h,
		loadID: loadID,
		ch:     make(chan domain.TrackingPoint, h.buffer),
	}
	sub.C = sub.ch

	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.topics[loadID]
	if !ok {
		subs = make(map[*Subscription]struct{})
		h.topics[loadID] = subs
	}
	subs[sub] = struct{}{}
	metrics.LiveSubscribers.Inc()
	return sub
}

// Broadcast delivers a point to every subscriber of its load. Delivery is
// non-blocking: a full subscriber buffer drops the point for that subscriber
// only, and the consumer-side resync closes the gap.
func (h *Hub) Broadcast(point domain.TrackingPoint) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.topics[point.LoadID] {
		select {
		case sub.ch <- point:
		default:
			metrics.LiveDroppedTotal.Inc()
			h.log.Warn().
				Str("load_id", point.LoadID).
				Str("point_id", point.ID).
				Msg("slow live subscriber, point dropped")
		}
	}
}

// Subscribers reports the current subscriber count for a load.
func (h *Hub) Subscribers(loadID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.topics[loadID])
}

// detach removes sub from its topic. Caller holds h.mu.
func (h *Hub) detach(sub *Subscription) {
	subs, ok := h.topics[sub.loadID]
	if !ok {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(h.topics, sub.loadID)
	}
	metrics.LiveSubscribers.Dec()
}
