// Package duckdb holds the DuckDB-specific parts of tenantdb: opening the
// shared engine instance, applying memory and thread settings, registering
// object storage credentials, and the per-tenant ATTACH/DETACH statements.
//
// The package talks to the engine only through database/sql and never
// imports a driver. The binary registers one with a blank import:
//
//	import _ "github.com/marcboeker/go-duckdb"
//
// which keeps this package (and its tests) free of cgo.
//
// # Opening the engine
//
//	db, err := duckdb.Open(ctx, duckdb.Config{
//	    DriverName:  "duckdb",
//	    MemoryLimit: "4GB",
//	    Threads:     4,
//	})
//
// Open retries with a linearly growing delay and gives up immediately when a
// setting is rejected, since that will not change between attempts.
//
// # Remote storage
//
// ConfigureStorage loads httpfs and creates a single secret for the S3 or R2
// credentials in an objectstore.Config. After that, s3:// and r2:// URLs
// resolve inside queries and ATTACH statements.
//
// # Tenant databases
//
// AttachStrategy attaches <location> AS "tenant_<id>" and detaches it again.
// Remote databases should be attached read-only. With WithHomeCatalog the
// strategy also runs USE "tenant_<id>" after attaching, so unqualified table
// names on the tenant's connection resolve in the tenant database, and
// switches back to the home catalog before DETACH.
package duckdb
