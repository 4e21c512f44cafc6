package resultcache

import (
	"fmt"
	"time"
)

// Type selects the result cache backend.
type Type string

const (
	TypeDisk   Type = "disk"
	TypeMemory Type = "memory"
	TypeNoop   Type = "noop"
)

type Config struct {
	Type Type          `env:"TENANTDB_CACHE_TYPE" envDefault:"memory"`
	Size int           `env:"TENANTDB_CACHE_SIZE" envDefault:"1000"`           // max entries, memory backend only
	Dir  string        `env:"TENANTDB_CACHE_DIR" envDefault:".cache/tenantdb"` // disk backend root
	TTL  time.Duration `env:"TENANTDB_CACHE_TTL" envDefault:"5m"`              // zero disables expiry
}

// Validate checks the settings the selected backend needs.
func (c Config) Validate() error {
	switch c.Type {
	case TypeNoop:
		return nil
	case TypeMemory:
		if c.Size <= 0 {
			return fmt.Errorf("%w: %d", ErrInvalidSize, c.Size)
		}
		return nil
	case TypeDisk:
		if c.Dir == "" {
			return ErrMissingDir
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownType, c.Type)
	}
}
