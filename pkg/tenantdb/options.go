package tenantdb

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/dmitrymomot/tenantdb/pkg/duckdb"
	"github.com/dmitrymomot/tenantdb/pkg/objectstore"
	"github.com/dmitrymomot/tenantdb/pkg/resultcache"
)

// Opener creates the engine instance.
type Opener func(ctx context.Context) (*sql.DB, error)

// StorageConfigurer prepares a freshly opened engine for tenant storage.
type StorageConfigurer func(ctx context.Context, db *sql.DB) error

// Option configures a Manager or Service.
type Option func(*options)

type options struct {
	opener      Opener
	storage     StorageConfigurer
	strategy    Strategy
	logger      *slog.Logger
	now         func() time.Time
	resultCache resultcache.Cache
}

// WithOpener replaces the default duckdb.Open call.
func WithOpener(fn Opener) Option {
	return func(o *options) {
		o.opener = fn
	}
}

// WithStorageConfigurer replaces the default storage setup. Pass nil to skip it.
func WithStorageConfigurer(fn StorageConfigurer) Option {
	return func(o *options) {
		o.storage = fn
	}
}

// WithStrategy overrides the strategy selected by Config.StorageStrategy.
func WithStrategy(s Strategy) Option {
	return func(o *options) {
		if s != nil {
			o.strategy = s
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock overrides the time source for last-access tracking.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithResultCache sets the Service result cache instead of building one from Config.ResultCache.
func WithResultCache(c resultcache.Cache) Option {
	return func(o *options) {
		if c != nil {
			o.resultCache = c
		}
	}
}

func defaultOpener(cfg Config) Opener {
	return func(ctx context.Context) (*sql.DB, error) {
		return duckdb.Open(ctx, cfg.Engine)
	}
}

func defaultStorageConfigurer(cfg Config) StorageConfigurer {
	return func(ctx context.Context, db *sql.DB) error {
		if cfg.Storage.VerifyOnStart && cfg.Storage.Provider() != objectstore.ProviderNone {
			v, err := objectstore.NewVerifier(ctx, cfg.Storage)
			if err != nil {
				return err
			}
			if err := v.Verify(ctx); err != nil {
				return err
			}
		}

		if cfg.StorageStrategy == StrategyDuckDB && cfg.Storage.Provider() == objectstore.ProviderNone {
			if err := os.MkdirAll(cfg.TenantDir, 0o750); err != nil {
				return errors.Join(errors.New("failed to create tenant dir"), err)
			}
		}

		return duckdb.ConfigureStorage(ctx, db, cfg.Storage)
	}
}
