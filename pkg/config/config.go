package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = "smartcafe"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	StorageBackendSQLite = "sqlite"
	StorageBackendRedis  = "redis"

	FeedTransportSTOMP  = "stomp"
	FeedTransportPubSub = "pubsub"
)

type Config struct {
	App     AppConfig
	API     APIConfig
	Feed    FeedConfig
	Storage StorageConfig
	Kitchen KitchenConfig
	Redis   RedisConfig
	GCP     GCPConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SMARTCAFE_APP_ENV" default:"dev"`
	LogLevel     string `envconfig:"SMARTCAFE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SMARTCAFE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type APIConfig struct {
	BaseURL string        `envconfig:"SMARTCAFE_API_BASE_URL" default:"http://localhost:8080"`
	Timeout time.Duration `envconfig:"SMARTCAFE_API_TIMEOUT" default:"15s"`
}

// FeedConfig describes the live order-events feed. ReconnectDelay is the fixed
// interval between reconnection attempts; there is no backoff growth and no
// attempt cap.
type FeedConfig struct {
	Transport      string        `envconfig:"SMARTCAFE_FEED_TRANSPORT" default:"stomp"`
	Endpoint       string        `envconfig:"SMARTCAFE_FEED_ENDPOINT" default:"ws://localhost:8080/ws"`
	Topic          string        `envconfig:"SMARTCAFE_FEED_TOPIC" default:"/topic/kitchen"`
	Subscription   string        `envconfig:"SMARTCAFE_FEED_SUBSCRIPTION"`
	ReconnectDelay time.Duration `envconfig:"SMARTCAFE_FEED_RECONNECT_DELAY" default:"5s"`
}

type StorageConfig struct {
	Backend string `envconfig:"SMARTCAFE_STORAGE_BACKEND" default:"sqlite"`
	Path    string `envconfig:"SMARTCAFE_STORAGE_PATH" default:"smartcafe.db"`
}

type KitchenConfig struct {
	RemovalGrace   time.Duration `envconfig:"SMARTCAFE_KITCHEN_REMOVAL_GRACE" default:"2s"`
	NewMarkTTL     time.Duration `envconfig:"SMARTCAFE_KITCHEN_NEW_MARK_TTL" default:"2s"`
	UpdatedMarkTTL time.Duration `envconfig:"SMARTCAFE_KITCHEN_UPDATED_MARK_TTL" default:"1s"`
	OpsPort        string        `envconfig:"SMARTCAFE_KITCHEN_OPS_PORT" default:"9090"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SMARTCAFE_REDIS_URL"`
	Address      string        `envconfig:"SMARTCAFE_REDIS_ADDR"`
	Password     string        `envconfig:"SMARTCAFE_REDIS_PASSWORD"`
	DB           int           `envconfig:"SMARTCAFE_REDIS_DB" default:"0"`
	DialTimeout  time.Duration `envconfig:"SMARTCAFE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SMARTCAFE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SMARTCAFE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"SMARTCAFE_GCP_PROJECT_ID"`
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case StorageBackendSQLite:
		if strings.TrimSpace(c.Storage.Path) == "" {
			return fmt.Errorf("SMARTCAFE_STORAGE_PATH is required for the sqlite backend")
		}
	case StorageBackendRedis:
		if c.Redis.URL == "" && c.Redis.Address == "" {
			return fmt.Errorf("SMARTCAFE_REDIS_URL or SMARTCAFE_REDIS_ADDR is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	switch c.Feed.Transport {
	case FeedTransportSTOMP:
		if strings.TrimSpace(c.Feed.Endpoint) == "" {
			return fmt.Errorf("SMARTCAFE_FEED_ENDPOINT is required for the stomp transport")
		}
	case FeedTransportPubSub:
		if strings.TrimSpace(c.GCP.ProjectID) == "" {
			return fmt.Errorf("SMARTCAFE_GCP_PROJECT_ID is required for the pubsub transport")
		}
		if strings.TrimSpace(c.Feed.Subscription) == "" {
			return fmt.Errorf("SMARTCAFE_FEED_SUBSCRIPTION is required for the pubsub transport")
		}
	default:
		return fmt.Errorf("unknown feed transport %q", c.Feed.Transport)
	}

	if c.Feed.ReconnectDelay <= 0 {
		return fmt.Errorf("SMARTCAFE_FEED_RECONNECT_DELAY must be positive")
	}
	return nil
}
