// Package cache provides a generic, thread-safe LRU (Least Recently Used) cache
// that also records when each entry was last accessed.
//
// The cache is a pure data structure: it performs no I/O and never closes or
// releases the values it stores. When an insertion has to evict an entry the
// evicted key and value are handed back to the caller, which owns whatever
// teardown the value needs. This keeps engine-specific cleanup (for example a
// DETACH statement before a connection goes back to its pool) out of the
// cache and in the component that understands it.
//
// # Usage
//
//	handles := cache.New[string, *sql.Conn](100)
//
//	if key, conn, evicted := handles.Insert("tenant-a", conn); evicted {
//		// tear down conn for key
//	}
//
//	conn, ok := handles.Get("tenant-a") // refreshes recency and last access
//
// # Recency and staleness
//
// Entries live in a list ordered by last touch: Insert and Get move an entry
// to the most recently used end, Peek, Contains and LastAccess do not. Because
// every touch stamps the current time, the list is also ordered by last access
// time and ties are broken by insertion order.
//
// StaleEntries(timeout) returns every key whose idle time is strictly greater
// than timeout. An entry idle for exactly timeout is not stale.
//
// # Time source
//
// Tests can pin time with WithClock:
//
//	now := time.Now()
//	c := cache.New[string, int](2, cache.WithClock(func() time.Time { return now }))
package cache
