package live

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/fleetboard/tracking-service/internal/core/domain"
)

const (
	channelPrefix  = "tracking:points:"
	channelPattern = channelPrefix + "*"

	bridgeBaseDelay = 500 * time.Millisecond
	bridgeMaxDelay  = 30 * time.Second
)

// ChannelFor returns the Redis channel carrying inserts for one load.
func ChannelFor(loadID string) string {
	return channelPrefix + loadID
}

// Publisher pushes appended points onto the shared Redis fan-out, one channel
// per load. It implements ports.PointPublisher.
type Publisher struct {
	client *redis.Client
}

// NewPublisher creates a Publisher on the given Redis client.
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// Publish serializes the point and publishes it to its load's channel.
func (p *Publisher) Publish(ctx context.Context, point domain.TrackingPoint) error {
	payload, err := json.Marshal(point)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, ChannelFor(point.LoadID), payload).Err()
}

// Bridge consumes the Redis fan-out and feeds the local Hub, so viewers
// attached to any service instance see appends made through any other.
type Bridge struct {
	client *redis.Client
	hub    *Hub
	log    zerolog.Logger
}

// NewBridge creates a Bridge between the Redis fan-out and hub.
func NewBridge(client *redis.Client, hub *Hub, log zerolog.Logger) *Bridge {
	return &Bridge{client: client, hub: hub, log: log}
}

// Run subscribes to every load channel and pumps points into the hub until
// ctx is cancelled. On subscription failure it resubscribes with bounded
// exponential backoff; viewers recover missed points through resync.
func (b *Bridge) Run(ctx context.Context) {
	delay := bridgeBaseDelay
	for {
		start := time.Now()
		err := b.pump(ctx)
		// A subscription that held for a while was healthy; start the
		// backoff over instead of compounding old failures.
		if time.Since(start) > bridgeMaxDelay {
			delay = bridgeBaseDelay
		}
		if err != nil && ctx.Err() == nil {
			b.log.Warn().Err(err).Dur("retry_in", delay).Msg("live bridge disconnected, resubscribing")
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		delay *= 2
		if delay > bridgeMaxDelay {
			delay = bridgeMaxDelay
		}
	}
}

// pump holds one pattern subscription and forwards messages until the
// connection fails or ctx is cancelled.
func (b *Bridge) pump(ctx context.Context) error {
	sub := b.client.PSubscribe(ctx, channelPattern)
	defer sub.Close()

	// Fail fast if the subscribe handshake itself did not go through.
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return domain.ErrSubscriptionClosed
			}
			b.deliver(msg)
		}
	}
}

func (b *Bridge) deliver(msg *redis.Message) {
	var point domain.TrackingPoint
	if err := json.Unmarshal([]byte(msg.Payload), &point); err != nil {
		b.log.Error().Err(err).Str("channel", msg.Channel).Msg("malformed point on live channel")
		return
	}
	// The channel name is authoritative for routing; a payload whose load id
	// disagrees with its channel is dropped rather than misdelivered.
	if point.LoadID != strings.TrimPrefix(msg.Channel, channelPrefix) {
		b.log.Error().
			Str("channel", msg.Channel).
			Str("load_id", point.LoadID).
			Msg("point load id does not match channel")
		return
	}
	b.hub.Broadcast(point)
}
