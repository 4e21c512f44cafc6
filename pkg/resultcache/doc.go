// Package resultcache caches query results per tenant so repeated reads can
// skip the engine. Three backends are selected by Config.Type:
//
//   - memory: a bounded LRU (pkg/cache) shared by all tenants
//   - disk: one JSON file per result, written atomically
//   - noop: caches nothing
//
// Keys come from Key(statement, args...). Writes for a tenant must be
// followed by InvalidateTenant; the cache has no way to notice them.
//
//	rc, err := resultcache.New(resultcache.Config{Type: resultcache.TypeMemory, Size: 1000, TTL: 5 * time.Minute})
//	key := resultcache.Key("SELECT * FROM events WHERE day = ?", day)
//	if rows, ok := rc.Get(ctx, tenantID, key); ok {
//		return rows, nil
//	}
package resultcache
