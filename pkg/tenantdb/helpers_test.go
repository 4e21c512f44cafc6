package tenantdb_test

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/dmitrymomot/tenantdb/pkg/duckdb"
	"github.com/dmitrymomot/tenantdb/pkg/resultcache"
	"github.com/dmitrymomot/tenantdb/pkg/tenantdb"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// fakeStrategy records attach/detach calls and fails on demand.
type fakeStrategy struct {
	mu          sync.Mutex
	attached    map[string]bool
	detached    []string
	attachErr   map[string]error
	detachErr   map[string]error
	maxAttached int
}

func newFakeStrategy() *fakeStrategy {
	return &fakeStrategy{
		attached:  map[string]bool{},
		attachErr: map[string]error{},
		detachErr: map[string]error{},
	}
}

func (f *fakeStrategy) Attach(_ context.Context, _ *sql.Conn, tenantID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.attachErr[tenantID]; err != nil {
		return err
	}
	if f.attached[tenantID] {
		return fmt.Errorf("tenant %s attached twice", tenantID)
	}
	f.attached[tenantID] = true
	f.maxAttached = max(f.maxAttached, len(f.attached))
	return nil
}

func (f *fakeStrategy) Detach(_ context.Context, _ *sql.Conn, tenantID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.detached = append(f.detached, tenantID)
	delete(f.attached, tenantID)
	return f.detachErr[tenantID]
}

func (f *fakeStrategy) failAttach(tenantID string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attachErr[tenantID] = err
}

func (f *fakeStrategy) failDetach(tenantID string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detachErr[tenantID] = err
}

func (f *fakeStrategy) detachCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.detached)
}

func (f *fakeStrategy) peak() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxAttached
}

func testConfig(maxActive int) tenantdb.Config {
	cfg := tenantdb.DefaultConfig()
	cfg.Engine = duckdb.Config{DriverName: "sqlite", Path: ":memory:", RetryAttempts: 1}
	cfg.ResultCache = resultcache.Config{Type: resultcache.TypeNoop}
	cfg.MaxActiveUsers = maxActive
	cfg.EvictionTimeout = time.Minute
	cfg.SweepInterval = time.Hour
	return cfg
}

func sqliteOpener(opens *atomic.Int32) tenantdb.Opener {
	return func(ctx context.Context) (*sql.DB, error) {
		if opens != nil {
			opens.Add(1)
		}
		db, err := sql.Open("sqlite", ":memory:")
		if err != nil {
			return nil, err
		}
		return db, db.PingContext(ctx)
	}
}

func newTestManager(t *testing.T, cfg tenantdb.Config, opts ...tenantdb.Option) *tenantdb.Manager {
	t.Helper()

	base := []tenantdb.Option{
		tenantdb.WithOpener(sqliteOpener(nil)),
		tenantdb.WithStorageConfigurer(nil),
	}
	m, err := tenantdb.NewManager(cfg, append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Shutdown(context.Background()) })
	return m
}

func initializedManager(t *testing.T, maxActive int, opts ...tenantdb.Option) (*tenantdb.Manager, *fakeStrategy) {
	t.Helper()

	strategy := newFakeStrategy()
	m := newTestManager(t, testConfig(maxActive), append([]tenantdb.Option{tenantdb.WithStrategy(strategy)}, opts...)...)
	require.NoError(t, m.Initialize(t.Context()))
	return m, strategy
}

func acquire(t *testing.T, m *tenantdb.Manager, tenantID string) {
	t.Helper()
	lease, err := m.Acquire(t.Context(), tenantID)
	require.NoError(t, err)
	lease.Close()
}
