package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/privatechef/concierge/internal/config"
)

func clearEnvVars(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "LOG_LEVEL", "VERSION", "CATALOG_PATH", "ALLOWLIST_PATH",
		"REGISTRY_DRIVER", "REGISTRY_DSN", "CHAIN_RPC_URL", "COLLECTIBLE_CONTRACT", "ONCHAIN_TIMEOUT",
		"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
		"RATE_LIMIT_CAPACITY", "RATE_LIMIT_REFILL_INTERVAL", "RATE_LIMIT_TTL", "RATE_LIMIT_PREFIX",
	} {
		// t.Setenv restores the previous value after the test.
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnvVars(t)

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "dev", cfg.Version)
	assert.Empty(t, cfg.CatalogPath)
	assert.Empty(t, cfg.AllowlistPath)
	assert.Equal(t, "sqlite", cfg.RegistryDriver)
	assert.Equal(t, "holders.db", cfg.RegistryDSN)
	assert.Empty(t, cfg.ChainRPCURL)
	assert.Empty(t, cfg.CollectibleContract)
	assert.Equal(t, 4*time.Second, cfg.OnchainTimeout)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, 30, cfg.RateLimit.Capacity)
	assert.Equal(t, 2*time.Second, cfg.RateLimit.RefillInterval)
	assert.Equal(t, 10*time.Minute, cfg.RateLimit.TTL)
	assert.Equal(t, "rl", cfg.RateLimit.Prefix)
}

func TestLoad_EnvVarOverrides(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		assertFn func(t *testing.T, cfg *config.Config)
	}{
		{
			name:    "custom port",
			envVars: map[string]string{"PORT": "3000"},
			assertFn: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, 3000, cfg.Port)
			},
		},
		{
			name:    "postgres registry",
			envVars: map[string]string{"REGISTRY_DRIVER": "postgres", "REGISTRY_DSN": "postgres://u:p@localhost:5432/holders"},
			assertFn: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, "postgres", cfg.RegistryDriver)
				assert.Equal(t, "postgres://u:p@localhost:5432/holders", cfg.RegistryDSN)
			},
		},
		{
			name: "on-chain settings",
			envVars: map[string]string{
				"CHAIN_RPC_URL":        "https://polygon-rpc.example",
				"COLLECTIBLE_CONTRACT": "0x5fbdb2315678afecb367f032d93f642f64180aa3",
				"ONCHAIN_TIMEOUT":      "1500ms",
			},
			assertFn: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, "https://polygon-rpc.example", cfg.ChainRPCURL)
				assert.Equal(t, "0x5fbdb2315678afecb367f032d93f642f64180aa3", cfg.CollectibleContract)
				assert.Equal(t, 1500*time.Millisecond, cfg.OnchainTimeout)
			},
		},
		{
			name:    "rate limit",
			envVars: map[string]string{"REDIS_ADDR": "localhost:6379", "RATE_LIMIT_CAPACITY": "5", "RATE_LIMIT_REFILL_INTERVAL": "10s"},
			assertFn: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, "localhost:6379", cfg.RedisAddr)
				assert.Equal(t, 5, cfg.RateLimit.Capacity)
				assert.Equal(t, 10*time.Second, cfg.RateLimit.RefillInterval)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnvVars(t)
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg, err := config.Load()

			require.NoError(t, err)
			tt.assertFn(t, cfg)
		})
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"non-numeric port", "PORT", "abc"},
		{"bad duration", "ONCHAIN_TIMEOUT", "soon"},
		{"bad capacity", "RATE_LIMIT_CAPACITY", "lots"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnvVars(t)
			t.Setenv(tt.key, tt.val)

			_, err := config.Load()

			assert.Error(t, err)
		})
	}
}
