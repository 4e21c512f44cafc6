package resultcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/tenantdb/pkg/logger"
)

// Cache stores query results per tenant. Implementations are safe for
// concurrent use. Get and Set never fail the caller's query: backends log
// and degrade to a miss.
type Cache interface {
	Get(ctx context.Context, tenantID, key string) ([]map[string]any, bool)
	Set(ctx context.Context, tenantID, key string, rows []map[string]any) error
	InvalidateTenant(ctx context.Context, tenantID string) error
	Close() error
}

// Option configures a backend.
type Option func(*options)

type options struct {
	logger *slog.Logger
	now    func() time.Time
}

// WithLogger sets the logger for backend diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock overrides the time source used for TTL checks.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// New builds the backend selected by cfg.Type.
func New(cfg Config, opts ...Option) (Cache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{logger: logger.Discard(), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = o.logger.With(logger.Component("resultcache"), slog.String("cache_type", string(cfg.Type)))

	switch cfg.Type {
	case TypeMemory:
		return newMemory(cfg, o), nil
	case TypeDisk:
		return newDisk(cfg, o)
	default:
		return Noop{}, nil
	}
}

// Key derives a cache key from a statement and its arguments.
func Key(statement string, args ...any) string {
	h := sha256.New()
	h.Write([]byte(statement))
	for _, arg := range args {
		fmt.Fprintf(h, "\x00%T:%v", arg, arg)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func expired(expiresAt, now time.Time) bool {
	return !expiresAt.IsZero() && !now.Before(expiresAt)
}

func expiry(ttl time.Duration, now time.Time) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return now.Add(ttl)
}

// Noop caches nothing.
type Noop struct{}

func (Noop) Get(context.Context, string, string) ([]map[string]any, bool) { return nil, false }
func (Noop) Set(context.Context, string, string, []map[string]any) error  { return nil }
func (Noop) InvalidateTenant(context.Context, string) error              { return nil }
func (Noop) Close() error                                                { return nil }
