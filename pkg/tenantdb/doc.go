// Package tenantdb manages per-tenant connections to a shared embedded
// analytical engine.
//
// A Manager owns one engine instance (*sql.DB) and at most
// Config.MaxActiveUsers attached tenants, each holding a pinned *sql.Conn.
// Tenants are attached on first use and released when:
//
//   - the cache is full and another tenant needs the slot (least recently used goes first)
//   - they have been idle longer than Config.EvictionTimeout (checked every Config.SweepInterval)
//   - the caller detaches them explicitly
//   - the manager shuts down
//
// Only explicit detaches report detach failures; the other paths log them.
//
// Service wraps the Manager with the public operations and a per-tenant
// result cache:
//
//	svc, err := tenantdb.NewService(cfg, tenantdb.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	if err := svc.Initialize(ctx); err != nil {
//		return err
//	}
//	defer svc.Shutdown(context.Background())
//
//	rows, err := svc.Query(ctx, "acme", "SELECT count(*) AS n FROM events")
//
// Every error returned by Manager and Service operations is a *Error with a
// Code. Compare with errors.Is against the Err* sentinels:
//
//	if errors.Is(err, tenantdb.ErrNotInitialized) { ... }
//
// The engine driver is not imported here. The binary registers it, see
// package duckdb.
package tenantdb
