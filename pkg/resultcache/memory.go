package resultcache

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrymomot/tenantdb/pkg/cache"
)

const keySep = "\x00"

type memoryEntry struct {
	rows      []map[string]any
	expiresAt time.Time
}

// memory keeps results in a bounded LRU shared by all tenants.
// Returned rows are shared with the cache and must not be modified.
type memory struct {
	lru  *cache.LRU[string, memoryEntry]
	ttl  time.Duration
	opts options
}

func newMemory(cfg Config, o options) *memory {
	return &memory{
		lru:  cache.New[string, memoryEntry](cfg.Size, cache.WithClock(o.now)),
		ttl:  cfg.TTL,
		opts: o,
	}
}

func (m *memory) Get(_ context.Context, tenantID, key string) ([]map[string]any, bool) {
	k := tenantID + keySep + key
	e, ok := m.lru.Get(k)
	if !ok {
		return nil, false
	}
	if expired(e.expiresAt, m.opts.now()) {
		m.lru.Delete(k)
		return nil, false
	}
	return e.rows, true
}

func (m *memory) Set(_ context.Context, tenantID, key string, rows []map[string]any) error {
	m.lru.Insert(tenantID+keySep+key, memoryEntry{
		rows:      rows,
		expiresAt: expiry(m.ttl, m.opts.now()),
	})
	return nil
}

func (m *memory) InvalidateTenant(_ context.Context, tenantID string) error {
	prefix := tenantID + keySep
	for _, k := range m.lru.Keys() {
		if strings.HasPrefix(k, prefix) {
			m.lru.Delete(k)
		}
	}
	return nil
}

func (m *memory) Close() error {
	for _, k := range m.lru.Keys() {
		m.lru.Delete(k)
	}
	return nil
}
