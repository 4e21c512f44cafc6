package tenantdb

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/tenantdb/pkg/cache"
	"github.com/dmitrymomot/tenantdb/pkg/duckdb"
	"github.com/dmitrymomot/tenantdb/pkg/logger"
	"github.com/dmitrymomot/tenantdb/pkg/sweep"
)

const (
	reasonCapacity = "capacity"
	reasonIdle     = "idle"
	reasonShutdown = "shutdown"
	reasonOverflow = "overflow"
)

type handle struct {
	tenantID   string
	conn       *sql.Conn
	attachedAt time.Time
	leases     sync.WaitGroup
}

// Lease gives a caller use of a tenant's connection. Close must be called
// when done. Teardown of an evicted tenant waits for its open leases, so a
// goroutine must not acquire another tenant while it still holds a lease.
type Lease struct {
	h    *handle
	once sync.Once
}

// Conn returns the tenant's pinned connection.
func (l *Lease) Conn() *sql.Conn { return l.h.conn }

// TenantID returns the tenant the lease belongs to.
func (l *Lease) TenantID() string { return l.h.tenantID }

// Close ends the lease. Safe to call more than once.
func (l *Lease) Close() { l.once.Do(l.h.leases.Done) }

// TenantList is a snapshot of the attached tenants.
type TenantList struct {
	IDs                []string `json:"ids"`
	Count              int      `json:"count"`
	MaxActiveUsers     int      `json:"max_active_users"`
	UtilizationPercent float64  `json:"utilization_percent"`
}

// TenantStats describes one tenant and the handle cache around it.
type TenantStats struct {
	TenantID   string        `json:"tenant_id"`
	Attached   bool          `json:"attached"`
	AttachedAt time.Time     `json:"attached_at,omitzero"`
	LastAccess time.Time     `json:"last_access,omitzero"`
	IdleFor    time.Duration `json:"idle_for_ns,omitempty"`
	Cache      cache.Stats   `json:"cache"`
}

// Manager owns the engine instance and a bounded set of attached tenant
// connections. All state is guarded by a single mutex: the check, evict,
// attach and insert steps of Acquire and every release run under it.
// Opening the engine happens outside it, serialized by lifecycleMu.
type Manager struct {
	cfg       Config
	opener    Opener
	storage   StorageConfigurer
	strategy  Strategy
	logger    *slog.Logger
	now       func() time.Time
	onRelease func(ctx context.Context, tenantID string)

	lifecycleMu sync.Mutex

	mu          sync.Mutex
	db          *sql.DB
	handles     *cache.LRU[string, *handle]
	clock       *sweep.Clock
	initialized bool
}

// NewManager validates cfg and returns an uninitialized manager.
func NewManager(cfg Config, opts ...Option) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := buildOptions(cfg, opts)
	return newManager(cfg, o), nil
}

func buildOptions(cfg Config, opts []Option) options {
	o := options{
		opener:   defaultOpener(cfg),
		storage:  defaultStorageConfigurer(cfg),
		strategy: strategyFor(cfg),
		logger:   logger.Discard(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func newManager(cfg Config, o options) *Manager {
	return &Manager{
		cfg:      cfg,
		opener:   o.opener,
		storage:  o.storage,
		strategy: o.strategy,
		logger:   o.logger.With(logger.Component("tenantdb")),
		now:      o.now,
		handles:  cache.New[string, *handle](cfg.MaxActiveUsers, cache.WithClock(o.now)),
	}
}

// Initialize creates the engine instance, configures storage and starts the
// idle sweep. Later calls return nil without doing anything. On failure the
// manager stays uninitialized and Initialize may be retried.
func (m *Manager) Initialize(ctx context.Context) error {
	m.lifecycleMu.Lock()
	defer m.lifecycleMu.Unlock()

	m.mu.Lock()
	done := m.initialized
	m.mu.Unlock()
	if done {
		return nil
	}

	db, err := m.opener(ctx)
	if err != nil {
		return newError(CodeConnectionSetupFailed, "failed to create engine instance", err)
	}

	if m.storage != nil {
		if err := m.storage(ctx, db); err != nil {
			if cerr := db.Close(); cerr != nil {
				m.logger.WarnContext(ctx, "failed to close engine after storage setup error", logger.Error(cerr))
			}
			return newError(CodeStorageConfigFailed, "failed to configure storage", err).
				WithContext("provider", string(m.cfg.Storage.Provider()))
		}
	}

	clk := sweep.New(m.cfg.SweepInterval, m.sweep,
		sweep.WithLogger(m.logger),
		sweep.WithName("tenantdb.sweep"),
	)

	m.mu.Lock()
	m.db = db
	m.clock = clk
	m.initialized = true
	m.mu.Unlock()

	clk.Start()

	m.logger.InfoContext(ctx, "tenant manager initialized",
		slog.Int("max_active_users", m.cfg.MaxActiveUsers),
		slog.Duration("eviction_timeout", m.cfg.EvictionTimeout),
		slog.Duration("sweep_interval", m.cfg.SweepInterval),
		logger.Strategy(string(m.cfg.StorageStrategy)),
	)
	return nil
}

// Acquire returns a lease on the tenant's connection, attaching the tenant
// first if needed. When the cache is full the least recently used tenant is
// released to make room. A failed attach leaves nothing cached.
func (m *Manager) Acquire(ctx context.Context, tenantID string) (*Lease, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return nil, ErrNotInitialized
	}
	if err := ValidateTenantID(tenantID); err != nil {
		return nil, err
	}

	if h, ok := m.handles.Get(tenantID); ok {
		h.leases.Add(1)
		return &Lease{h: h}, nil
	}

	if m.handles.Len() >= m.handles.Cap() {
		if victim, ok := m.handles.LeastRecentlyUsed(); ok {
			m.evictLocked(ctx, victim, reasonCapacity)
		}
	}

	conn, err := m.db.Conn(ctx)
	if err != nil {
		return nil, newError(CodeTenantAttachFailed, "failed to open tenant connection", err).
			WithContext("tenant_id", tenantID)
	}

	if err := m.strategy.Attach(ctx, conn, tenantID); err != nil {
		if cerr := conn.Close(); cerr != nil {
			m.logger.WarnContext(ctx, "failed to close connection after attach error",
				logger.TenantID(tenantID), logger.Error(cerr))
		}
		return nil, newError(CodeTenantAttachFailed, "failed to attach tenant", err).
			WithContext("tenant_id", tenantID).
			WithContext("strategy", string(m.cfg.StorageStrategy))
	}

	h := &handle{tenantID: tenantID, conn: conn, attachedAt: m.now()}
	h.leases.Add(1)

	if overflowID, overflow, evicted := m.handles.Insert(tenantID, h); evicted {
		m.logger.ErrorContext(ctx, "handle cache evicted on insert",
			logger.TenantID(overflowID),
			logger.Error(ErrCapacityInvariantViolation.WithContext("tenant_id", overflowID)),
		)
		m.teardownBestEffort(ctx, overflow, reasonOverflow)
	}

	m.logger.DebugContext(ctx, "tenant attached",
		logger.TenantID(tenantID),
		slog.Int("active", m.handles.Len()),
	)
	return &Lease{h: h}, nil
}

// Release detaches the tenant and returns its connection to the pool.
// It is a no-op for tenants that are not attached. The tenant is removed
// from the cache even when detach fails; the detach error is returned.
func (m *Manager) Release(ctx context.Context, tenantID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return ErrNotInitialized
	}

	h, ok := m.handles.Peek(tenantID)
	if !ok {
		return nil
	}
	m.handles.Delete(tenantID)

	if err := m.teardown(ctx, h); err != nil {
		m.logger.WarnContext(ctx, "tenant detach failed", logger.TenantID(tenantID), logger.Error(err))
		return err
	}

	m.logger.DebugContext(ctx, "tenant released", logger.TenantID(tenantID))
	return nil
}

// IsAttached reports whether the tenant is cached. Valid at any time.
func (m *Manager) IsAttached(tenantID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handles.Contains(tenantID)
}

// ListTenants returns the attached tenants, least recently used first.
func (m *Manager) ListTenants() TenantList {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := m.handles.Stats()
	return TenantList{
		IDs:                m.handles.Keys(),
		Count:              stats.Size,
		MaxActiveUsers:     stats.MaxSize,
		UtilizationPercent: stats.UtilizationPercent,
	}
}

// TenantStats reports the tenant's state without refreshing its recency.
func (m *Manager) TenantStats(tenantID string) (TenantStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return TenantStats{}, ErrNotInitialized
	}
	if err := ValidateTenantID(tenantID); err != nil {
		return TenantStats{}, err
	}

	st := TenantStats{TenantID: tenantID, Cache: m.handles.Stats()}
	if h, ok := m.handles.Peek(tenantID); ok {
		last, _ := m.handles.LastAccess(tenantID)
		st.Attached = true
		st.AttachedAt = h.attachedAt
		st.LastAccess = last
		st.IdleFor = m.now().Sub(last)
	}
	return st, nil
}

// EvictIdle releases every tenant idle for longer than the eviction timeout
// and returns how many were released. Failures are logged.
func (m *Manager) EvictIdle(ctx context.Context) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return 0
	}

	stale := m.handles.StaleEntries(m.cfg.EvictionTimeout)
	for _, id := range stale {
		m.evictLocked(ctx, id, reasonIdle)
	}
	return len(stale)
}

// Shutdown stops the idle sweep, releases every tenant and closes the engine.
// Individual detach failures are logged and ignored. Safe to call repeatedly.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.lifecycleMu.Lock()
	defer m.lifecycleMu.Unlock()

	// The sweep callback takes m.mu, so the clock is stopped outside it.
	m.mu.Lock()
	clk := m.clock
	m.clock = nil
	m.mu.Unlock()

	if clk != nil {
		clk.Stop()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return nil
	}

	ids := m.handles.Keys()
	for _, id := range ids {
		m.evictLocked(ctx, id, reasonShutdown)
	}

	db := m.db
	m.db = nil
	m.initialized = false

	if err := db.Close(); err != nil {
		return newError(CodeShutdownFailed, "failed to close engine instance", err)
	}

	m.logger.InfoContext(ctx, "tenant manager shut down", logger.Count(len(ids)))
	return nil
}

// Healthcheck returns a closure suitable for readiness probes.
func (m *Manager) Healthcheck() func(context.Context) error {
	return func(ctx context.Context) error {
		m.mu.Lock()
		db, ready := m.db, m.initialized
		m.mu.Unlock()

		if !ready {
			return ErrNotInitialized
		}
		if err := duckdb.Healthcheck(db)(ctx); err != nil {
			return newError(CodeConnectionSetupFailed, "engine ping failed", err)
		}
		return nil
	}
}

func (m *Manager) sweep(ctx context.Context) {
	if n := m.EvictIdle(ctx); n > 0 {
		m.logger.InfoContext(ctx, "idle tenants evicted", logger.Count(n))
	}
}

// evictLocked is the best-effort release used by capacity eviction, the idle
// sweep and shutdown.
func (m *Manager) evictLocked(ctx context.Context, tenantID, reason string) {
	h, ok := m.handles.Peek(tenantID)
	if !ok {
		return
	}
	m.handles.Delete(tenantID)
	m.teardownBestEffort(ctx, h, reason)
}

func (m *Manager) teardownBestEffort(ctx context.Context, h *handle, reason string) {
	if err := m.teardown(ctx, h); err != nil {
		m.logger.WarnContext(ctx, "tenant detach failed during eviction",
			logger.TenantID(h.tenantID), logger.Reason(reason), logger.Error(err))
		return
	}
	m.logger.DebugContext(ctx, "tenant evicted", logger.TenantID(h.tenantID), logger.Reason(reason))
}

// teardown waits for open leases, detaches and closes the connection.
// The handle must already be out of the cache.
func (m *Manager) teardown(ctx context.Context, h *handle) error {
	h.leases.Wait()

	// Cleanup must finish even if the triggering request was canceled.
	ctx = context.WithoutCancel(ctx)

	var detachErr error
	if err := m.strategy.Detach(ctx, h.conn, h.tenantID); err != nil {
		detachErr = newError(CodeTenantDetachFailed, "failed to detach tenant", err).
			WithContext("tenant_id", h.tenantID)
	}

	if err := h.conn.Close(); err != nil {
		m.logger.WarnContext(ctx, "failed to return tenant connection", logger.TenantID(h.tenantID), logger.Error(err))
	}

	if m.onRelease != nil {
		m.onRelease(ctx, h.tenantID)
	}
	return detachErr
}
