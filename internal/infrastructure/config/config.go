package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// JWTSecret verifies viewer/operator tokens issued by the platform's
	// identity service. Verification only; this service never signs tokens.
	JWTSecret string `env:"JWT_SECRET"`

	// IngestToken is the shared secret telemetry sources present on the
	// ingest endpoint. IngestTokenHash is the bcrypt alternative; when set it
	// takes precedence and IngestToken is ignored. With neither set the
	// ingest endpoint answers 503: misconfiguration, not a caller error.
	IngestToken     string `env:"INGEST_TOKEN"`
	IngestTokenHash string `env:"INGEST_TOKEN_HASH"`

	// MapAccessToken enables route rendering against the map provider. When
	// absent the route endpoint degrades to map_enabled=false.
	MapAccessToken string `env:"MAP_ACCESS_TOKEN"`

	// CacheTTL bounds how stale a cached tracking view may be.
	CacheTTL time.Duration `env:"TRACKING_CACHE_TTL, default=15s"`

	// LiveBuffer is the per-subscriber channel depth on the live hub.
	LiveBuffer int `env:"LIVE_BUFFER, default=64"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=fleetboard_tracking"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
