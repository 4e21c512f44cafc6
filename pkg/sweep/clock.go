package sweep

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/tenantdb/pkg/logger"
)

// Func is invoked on every tick. The context is canceled when the clock stops.
type Func func(ctx context.Context)

// Option configures a Clock.
type Option func(*Clock)

// WithLogger sets the logger used for tick diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Clock) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithName labels the clock in log records.
func WithName(name string) Option {
	return func(c *Clock) {
		if name != "" {
			c.name = name
		}
	}
}

// Clock invokes a callback on a fixed interval from its own goroutine.
// It owns nothing besides the ticker goroutine; the callback owns the work.
type Clock struct {
	interval time.Duration
	fn       Func
	name     string
	logger   *slog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// New creates a stopped clock. It panics if interval is not positive or fn is nil.
func New(interval time.Duration, fn Func, opts ...Option) *Clock {
	if interval <= 0 {
		panic("sweep: interval must be positive")
	}
	if fn == nil {
		panic("sweep: nil callback")
	}

	c := &Clock{
		interval: interval,
		fn:       fn,
		name:     "sweep",
		logger:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start launches the ticker goroutine. It returns false if the clock is
// already running. The goroutine does not keep the process alive.
func (c *Clock) Start() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan struct{})
	c.running = true

	go c.loop(ctx, c.done)
	return true
}

// Stop halts the clock and waits for an in-progress tick to return.
// It is safe to call multiple times. It must not be called from inside the callback.
func (c *Clock) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()

	cancel()
	<-done
}

// Running reports whether the ticker goroutine is active.
func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Interval returns the tick period.
func (c *Clock) Interval() time.Duration {
	return c.interval
}

func (c *Clock) loop(ctx context.Context, done chan struct{}) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	defer close(done)

	for {
		select {
		case <-ticker.C:
			c.tick(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (c *Clock) tick(ctx context.Context) {
	runID := uuid.NewString()
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			c.logger.ErrorContext(ctx, "sweep tick panicked",
				logger.Component(c.name),
				slog.String("run_id", runID),
				slog.Any("panic", r),
			)
		}
	}()

	c.fn(ctx)

	c.logger.DebugContext(ctx, "sweep tick finished",
		logger.Component(c.name),
		slog.String("run_id", runID),
		logger.Duration(time.Since(start)),
	)
}
