package tenantdb

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/dmitrymomot/tenantdb/pkg/duckdb"
	"github.com/dmitrymomot/tenantdb/pkg/objectstore"
	"github.com/dmitrymomot/tenantdb/pkg/resultcache"
)

// StorageStrategy selects how tenant data is bound to a connection.
type StorageStrategy string

const (
	StrategyParquet StorageStrategy = "parquet"
	StrategyDuckDB  StorageStrategy = "duckdb"
	StrategyHybrid  StorageStrategy = "hybrid"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid tenantdb configuration")

type Config struct {
	Engine      duckdb.Config
	ResultCache resultcache.Config
	Storage     objectstore.Config

	MaxActiveUsers  int             `env:"TENANTDB_MAX_ACTIVE_USERS" envDefault:"100"`
	EvictionTimeout time.Duration   `env:"TENANTDB_EVICTION_TIMEOUT" envDefault:"5m"`
	SweepInterval   time.Duration   `env:"TENANTDB_SWEEP_INTERVAL" envDefault:"60s"`
	StorageStrategy StorageStrategy `env:"TENANTDB_STORAGE_STRATEGY" envDefault:"parquet"`
	TenantPrefix    string          `env:"TENANTDB_TENANT_PREFIX" envDefault:"tenants"`   // object key prefix for remote tenant files
	TenantDir       string          `env:"TENANTDB_TENANT_DIR" envDefault:"data/tenants"` // local tenant files when no object store is set
}

// DefaultConfig mirrors the envDefault tags.
func DefaultConfig() Config {
	return Config{
		Engine: duckdb.Config{
			DriverName:    "duckdb",
			MemoryLimit:   "4GB",
			Threads:       4,
			RetryAttempts: 3,
			RetryInterval: 500 * time.Millisecond,
		},
		ResultCache: resultcache.Config{
			Type: resultcache.TypeMemory,
			Size: 1000,
			Dir:  ".cache/tenantdb",
			TTL:  5 * time.Minute,
		},
		MaxActiveUsers:  100,
		EvictionTimeout: 5 * time.Minute,
		SweepInterval:   time.Minute,
		StorageStrategy: StrategyParquet,
		TenantPrefix:    "tenants",
		TenantDir:       "data/tenants",
	}
}

// Validate reports every problem found, joined.
func (c Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if c.MaxActiveUsers <= 0 {
		invalid("max active users must be positive, got %d", c.MaxActiveUsers)
	}
	if c.EvictionTimeout <= 0 {
		invalid("eviction timeout must be positive, got %s", c.EvictionTimeout)
	}
	if c.SweepInterval <= 0 {
		invalid("sweep interval must be positive, got %s", c.SweepInterval)
	}
	if c.Engine.Threads < 0 {
		invalid("threads must not be negative, got %d", c.Engine.Threads)
	}
	if c.Engine.DriverName == "" {
		invalid("engine driver name is empty")
	}

	switch c.StorageStrategy {
	case StrategyParquet, StrategyHybrid:
	case StrategyDuckDB:
		if c.Storage.Provider() == objectstore.ProviderNone && c.TenantDir == "" {
			invalid("duckdb strategy needs an object store or a tenant dir")
		}
	default:
		invalid("unknown storage strategy %q", c.StorageStrategy)
	}

	if err := c.ResultCache.Validate(); err != nil {
		errs = append(errs, errors.Join(ErrInvalidConfig, err))
	}
	if err := c.Storage.Validate(); err != nil {
		errs = append(errs, errors.Join(ErrInvalidConfig, err))
	}

	return errors.Join(errs...)
}

var tenantIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// ValidateTenantID checks that id is safe to use in SQL identifiers,
// object keys and file names.
func ValidateTenantID(id string) error {
	if !tenantIDPattern.MatchString(id) {
		return ErrInvalidTenantID.WithContext("tenant_id", id)
	}
	return nil
}
