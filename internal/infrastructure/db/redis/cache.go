package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/fleetboard/tracking-service/internal/api/metrics"
	"github.com/fleetboard/tracking-service/internal/core/ports"
)

const defaultViewTTL = 15 * time.Second

// ViewCache caches assembled tracking views for a short window.
// Key format: trackview:<load_id>
//
// Failures degrade to a miss: the cache is an accelerator, never a
// correctness dependency, so errors are logged and swallowed.
type ViewCache struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// NewViewCache creates a ViewCache. If ttl <= 0, defaultViewTTL is used.
func NewViewCache(client *redis.Client, ttl time.Duration, log zerolog.Logger) *ViewCache {
	if ttl <= 0 {
		ttl = defaultViewTTL
	}
	return &ViewCache{client: client, ttl: ttl, log: log}
}

// TTL reports the configured cache window, mirrored in Cache-Control headers.
func (c *ViewCache) TTL() time.Duration {
	return c.ttl
}

// Get returns the cached view for a load, if present and decodable.
func (c *ViewCache) Get(ctx context.Context, loadID string) (*ports.TrackingView, bool) {
	raw, err := c.client.Get(ctx, c.key(loadID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn().Err(err).Str("load_id", loadID).Msg("view cache read failed")
		}
		metrics.QueryCacheTotal.WithLabelValues("miss").Inc()
		return nil, false
	}

	var view ports.TrackingView
	if err := json.Unmarshal(raw, &view); err != nil {
		c.log.Warn().Err(err).Str("load_id", loadID).Msg("view cache entry corrupt, ignoring")
		metrics.QueryCacheTotal.WithLabelValues("miss").Inc()
		return nil, false
	}

	metrics.QueryCacheTotal.WithLabelValues("hit").Inc()
	return &view, true
}

// Set stores the view with the cache TTL.
func (c *ViewCache) Set(ctx context.Context, loadID string, view *ports.TrackingView) {
	raw, err := json.Marshal(view)
	if err != nil {
		c.log.Warn().Err(err).Str("load_id", loadID).Msg("view cache encode failed")
		return
	}
	if err := c.client.Set(ctx, c.key(loadID), raw, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("load_id", loadID).Msg("view cache write failed")
	}
}

func (c *ViewCache) key(loadID string) string {
	return fmt.Sprintf("trackview:%s", loadID)
}
