package tenantdb

import (
	"context"
	"database/sql"

	"github.com/dmitrymomot/tenantdb/pkg/duckdb"
	"github.com/dmitrymomot/tenantdb/pkg/objectstore"
)

// Strategy binds a tenant's data to a pinned connection and unbinds it again.
type Strategy interface {
	Attach(ctx context.Context, conn *sql.Conn, tenantID string) error
	Detach(ctx context.Context, conn *sql.Conn, tenantID string) error
}

// NoopStrategy is used when tenant data is addressed directly in queries,
// e.g. read_parquet over object storage paths.
type NoopStrategy struct{}

func (NoopStrategy) Attach(context.Context, *sql.Conn, string) error { return nil }
func (NoopStrategy) Detach(context.Context, *sql.Conn, string) error { return nil }

func strategyFor(cfg Config) Strategy {
	if cfg.StorageStrategy != StrategyDuckDB {
		return NoopStrategy{}
	}
	home := duckdb.WithHomeCatalog(duckdb.HomeCatalog(cfg.Engine))
	// Remote database files can only be attached read-only.
	if cfg.Storage.Provider() != objectstore.ProviderNone {
		return duckdb.NewAttachStrategy(duckdb.RemoteLocation(cfg.Storage, cfg.TenantPrefix), true, home)
	}
	return duckdb.NewAttachStrategy(duckdb.LocalLocation(cfg.TenantDir), false, home)
}
