package tenantdb_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantdb/pkg/config"
	"github.com/dmitrymomot/tenantdb/pkg/objectstore"
	"github.com/dmitrymomot/tenantdb/pkg/resultcache"
	"github.com/dmitrymomot/tenantdb/pkg/tenantdb"
)

func TestConfig_Load(t *testing.T) {
	t.Parallel()

	t.Run("defaults match DefaultConfig", func(t *testing.T) {
		t.Parallel()
		var cfg tenantdb.Config
		require.NoError(t, config.Load(&cfg, config.WithEnvironment(map[string]string{})))
		assert.Equal(t, tenantdb.DefaultConfig(), cfg)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Parallel()
		var cfg tenantdb.Config
		require.NoError(t, config.Load(&cfg, config.WithEnvironment(map[string]string{
			"TENANTDB_MAX_ACTIVE_USERS": "7",
			"TENANTDB_EVICTION_TIMEOUT": "300000ms",
			"TENANTDB_MEMORY_LIMIT":     "2GB",
			"TENANTDB_CACHE_TYPE":       "disk",
			"TENANTDB_STORAGE_STRATEGY": "duckdb",
			"R2_ACCOUNT_ID":             "acct",
			"R2_ACCESS_KEY_ID":          "key",
			"R2_SECRET_ACCESS_KEY":      "secret",
			"R2_BUCKET":                 "tenants",
		})))

		assert.Equal(t, 7, cfg.MaxActiveUsers)
		assert.Equal(t, 5*time.Minute, cfg.EvictionTimeout)
		assert.Equal(t, "2GB", cfg.Engine.MemoryLimit)
		assert.Equal(t, resultcache.TypeDisk, cfg.ResultCache.Type)
		assert.Equal(t, tenantdb.StrategyDuckDB, cfg.StorageStrategy)
		assert.Equal(t, objectstore.ProviderR2, cfg.Storage.Provider())
		assert.NoError(t, cfg.Validate())
	})

	t.Run("eviction timeout in plain milliseconds", func(t *testing.T) {
		t.Parallel()
		var cfg tenantdb.Config
		require.NoError(t, config.Load(&cfg, config.WithEnvironment(map[string]string{
			"TENANTDB_EVICTION_TIMEOUT": "300000",
		})))
		assert.Equal(t, 5*time.Minute, cfg.EvictionTimeout)
	})
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*tenantdb.Config)
	}{
		{name: "zero capacity", modify: func(c *tenantdb.Config) { c.MaxActiveUsers = 0 }},
		{name: "zero eviction timeout", modify: func(c *tenantdb.Config) { c.EvictionTimeout = 0 }},
		{name: "zero sweep interval", modify: func(c *tenantdb.Config) { c.SweepInterval = 0 }},
		{name: "negative threads", modify: func(c *tenantdb.Config) { c.Engine.Threads = -1 }},
		{name: "unknown strategy", modify: func(c *tenantdb.Config) { c.StorageStrategy = "iceberg" }},
		{name: "unknown cache type", modify: func(c *tenantdb.Config) { c.ResultCache.Type = "redis" }},
		{name: "conflicting storage", modify: func(c *tenantdb.Config) {
			c.Storage.S3 = objectstore.S3Config{Region: "us-east-1", AccessKeyID: "k", SecretAccessKey: "s", Bucket: "b"}
			c.Storage.R2 = objectstore.R2Config{AccountID: "a", AccessKeyID: "k", SecretAccessKey: "s", Bucket: "b"}
		}},
		{name: "duckdb without any location", modify: func(c *tenantdb.Config) {
			c.StorageStrategy = tenantdb.StrategyDuckDB
			c.TenantDir = ""
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := tenantdb.DefaultConfig()
			tt.modify(&cfg)
			assert.ErrorIs(t, cfg.Validate(), tenantdb.ErrInvalidConfig)
		})
	}

	t.Run("NewManager rejects invalid config", func(t *testing.T) {
		t.Parallel()
		cfg := tenantdb.DefaultConfig()
		cfg.MaxActiveUsers = -1
		_, err := tenantdb.NewManager(cfg)
		assert.ErrorIs(t, err, tenantdb.ErrInvalidConfig)
	})
}
