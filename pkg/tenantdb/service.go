package tenantdb

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/tenantdb/pkg/logger"
	"github.com/dmitrymomot/tenantdb/pkg/resultcache"
)

// Row is one result row keyed by column name.
type Row = map[string]any

// Service is the public entry point: every tenant operation resolves the
// tenant's connection through the Manager before touching the engine.
type Service struct {
	manager *Manager
	results resultcache.Cache
	logger  *slog.Logger

	// Query results are stored only while the tenant's generation matches
	// the one read before the statement ran. genMu also serializes stores
	// with invalidation.
	genMu sync.Mutex
	seq   uint64
	gens  map[string]uint64
}

// NewService builds a Manager and result cache from cfg.
func NewService(cfg Config, opts ...Option) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := buildOptions(cfg, opts)

	results := o.resultCache
	if results == nil {
		rc, err := resultcache.New(cfg.ResultCache,
			resultcache.WithLogger(o.logger),
			resultcache.WithClock(o.now),
		)
		if err != nil {
			return nil, err
		}
		results = rc
	}

	s := &Service{
		manager: newManager(cfg, o),
		results: results,
		logger:  o.logger.With(logger.Component("tenantdb.service")),
		gens:    make(map[string]uint64),
	}
	s.manager.onRelease = s.released
	return s, nil
}

// Manager exposes the underlying connection manager.
func (s *Service) Manager() *Manager { return s.manager }

func (s *Service) Initialize(ctx context.Context) error {
	return s.manager.Initialize(ctx)
}

// Query runs a read statement for the tenant and returns its rows. Results
// may be served from the result cache. A failing statement does not detach
// the tenant.
func (s *Service) Query(ctx context.Context, tenantID, statement string, args ...any) ([]Row, error) {
	lease, err := s.manager.Acquire(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	defer lease.Close()

	gen := s.generation(tenantID)
	key := resultcache.Key(statement, args...)
	if rows, ok := s.results.Get(ctx, tenantID, key); ok {
		return rows, nil
	}

	rows, err := queryRows(ctx, lease.Conn(), statement, args...)
	if err != nil {
		return nil, s.queryFailed(ctx, tenantID, statement, err)
	}

	s.store(ctx, tenantID, key, gen, rows)
	return rows, nil
}

// Execute runs a statement that returns no rows and drops the tenant's
// cached results.
func (s *Service) Execute(ctx context.Context, tenantID, statement string, args ...any) error {
	lease, err := s.manager.Acquire(ctx, tenantID)
	if err != nil {
		return err
	}
	defer lease.Close()

	_, err = lease.Conn().ExecContext(ctx, statement, args...)
	// Invalidate even on failure: the statement may have partially applied.
	s.invalidate(ctx, tenantID)
	if err != nil {
		return s.queryFailed(ctx, tenantID, statement, err)
	}
	return nil
}

// Detach releases the tenant now. Detach errors are returned.
func (s *Service) Detach(ctx context.Context, tenantID string) error {
	return s.manager.Release(ctx, tenantID)
}

func (s *Service) IsAttached(tenantID string) bool {
	return s.manager.IsAttached(tenantID)
}

func (s *Service) GetStats(tenantID string) (TenantStats, error) {
	return s.manager.TenantStats(tenantID)
}

func (s *Service) ListTenants() TenantList {
	return s.manager.ListTenants()
}

// Healthcheck pings the engine.
func (s *Service) Healthcheck() func(context.Context) error {
	return s.manager.Healthcheck()
}

// Shutdown releases all tenants, closes the engine and the result cache.
func (s *Service) Shutdown(ctx context.Context) error {
	err := s.manager.Shutdown(ctx)
	if cerr := s.results.Close(); cerr != nil {
		s.logger.WarnContext(ctx, "failed to close result cache", logger.Error(cerr))
	}
	return err
}

func (s *Service) generation(tenantID string) uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.gens[tenantID]
}

// store caches rows unless the tenant was invalidated since gen was read.
func (s *Service) store(ctx context.Context, tenantID, key string, gen uint64, rows []Row) {
	s.genMu.Lock()
	defer s.genMu.Unlock()

	if s.gens[tenantID] != gen {
		return
	}
	if err := s.results.Set(ctx, tenantID, key, rows); err != nil {
		s.logger.WarnContext(ctx, "failed to cache query result", logger.TenantID(tenantID), logger.Error(err))
	}
}

func (s *Service) invalidate(ctx context.Context, tenantID string) {
	s.genMu.Lock()
	defer s.genMu.Unlock()

	s.seq++
	s.gens[tenantID] = s.seq
	s.dropResults(ctx, tenantID)
}

// released runs after a tenant's teardown. Its leases are drained, so no
// query holds the old generation and the entry can go.
func (s *Service) released(ctx context.Context, tenantID string) {
	s.genMu.Lock()
	defer s.genMu.Unlock()

	delete(s.gens, tenantID)
	s.dropResults(ctx, tenantID)
}

func (s *Service) dropResults(ctx context.Context, tenantID string) {
	if err := s.results.InvalidateTenant(ctx, tenantID); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate cached results", logger.TenantID(tenantID), logger.Error(err))
	}
}

func (s *Service) queryFailed(ctx context.Context, tenantID, statement string, err error) error {
	s.logger.WarnContext(ctx, "statement failed",
		logger.TenantID(tenantID),
		logger.Statement(statement),
		logger.Error(err),
	)
	return newError(CodeQueryExecutionFailed, err.Error(), err).
		WithContext("tenant_id", tenantID).
		WithContext("statement", statement)
}

func queryRows(ctx context.Context, conn *sql.Conn, statement string, args ...any) ([]Row, error) {
	rows, err := conn.QueryContext(ctx, statement, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := make([]Row, 0)
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(Row, len(cols))
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
				continue
			}
			row[col] = values[i]
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
