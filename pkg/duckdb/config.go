package duckdb

import "time"

type Config struct {
	DriverName    string        `env:"TENANTDB_ENGINE_DRIVER" envDefault:"duckdb"`         // DriverName is the database/sql driver the engine is registered under.
	Path          string        `env:"TENANTDB_DATABASE_PATH"`                             // Path is the engine database file. Empty means in-memory.
	MemoryLimit   string        `env:"TENANTDB_MEMORY_LIMIT" envDefault:"4GB"`             // MemoryLimit caps engine memory, e.g. "4GB". Empty leaves the engine default.
	Threads       int           `env:"TENANTDB_THREADS" envDefault:"4"`                    // Threads is the engine worker thread count. Zero leaves the engine default.
	RetryAttempts int           `env:"TENANTDB_CONNECT_RETRY_ATTEMPTS" envDefault:"3"`     // RetryAttempts is the number of attempts to open the engine.
	RetryInterval time.Duration `env:"TENANTDB_CONNECT_RETRY_INTERVAL" envDefault:"500ms"` // RetryInterval is the base delay between attempts.
}
