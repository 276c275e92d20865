package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port     int    `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Version  string `envconfig:"VERSION" default:"dev"`

	// Empty paths select the embedded defaults.
	CatalogPath   string `envconfig:"CATALOG_PATH" default:""`
	AllowlistPath string `envconfig:"ALLOWLIST_PATH" default:""`

	RegistryDriver string `envconfig:"REGISTRY_DRIVER" default:"sqlite"`
	RegistryDSN    string `envconfig:"REGISTRY_DSN" default:"holders.db"`

	ChainRPCURL         string        `envconfig:"CHAIN_RPC_URL" default:""`
	CollectibleContract string        `envconfig:"COLLECTIBLE_CONTRACT" default:""`
	OnchainTimeout      time.Duration `envconfig:"ONCHAIN_TIMEOUT" default:"4s"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:""`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	RateLimit RateLimit
}

// RateLimit configures the token bucket in front of the wallet verification endpoints.
type RateLimit struct {
	Capacity       int           `envconfig:"RATE_LIMIT_CAPACITY" default:"30"`
	RefillInterval time.Duration `envconfig:"RATE_LIMIT_REFILL_INTERVAL" default:"2s"`
	TTL            time.Duration `envconfig:"RATE_LIMIT_TTL" default:"10m"`
	Prefix         string        `envconfig:"RATE_LIMIT_PREFIX" default:"rl"`
}

// Load reads configuration from environment variables into a Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
