package httpapi

import (
	"log/slog"
	"time"
)

type config struct {
	logger         *slog.Logger
	maxBodyBytes   int64
	requestTimeout time.Duration
}

// Option configures the router.
type Option func(*config)

// WithLogger sets the logger for access and error logs.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxBodyBytes caps statement request bodies. Default 1 MiB.
func WithMaxBodyBytes(n int64) Option {
	return func(c *config) {
		if n > 0 {
			c.maxBodyBytes = n
		}
	}
}

// WithRequestTimeout bounds each request's context. Zero disables it.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *config) {
		c.requestTimeout = d
	}
}
