package httpserver_test

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantdb/pkg/httpserver"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
}

func start(t *testing.T, ctx context.Context, srv *httpserver.Server, h http.Handler) <-chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, h) }()

	select {
	case <-srv.Ready():
	case err := <-done:
		t.Fatalf("server exited early: %v", err)
	case <-time.After(time.Second):
		t.Fatal("server did not start")
	}
	return done
}

func wait(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("run did not finish")
		return nil
	}
}

func TestRunAndCancel(t *testing.T) {
	t.Parallel()

	var drained atomic.Bool
	srv := httpserver.New(
		httpserver.WithAddr("127.0.0.1:0"),
		httpserver.WithShutdownTimeout(time.Second),
		httpserver.WithShutdownFunc(func(context.Context) error {
			drained.Store(true)
			return nil
		}),
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := start(t, ctx, srv, okHandler())

	resp, err := http.Get("http://" + srv.Addr().String())
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	require.NoError(t, wait(t, done))
	assert.True(t, drained.Load(), "shutdown func not called")
	require.NoError(t, srv.Shutdown(context.Background()), "second shutdown is a no-op")
}

func TestManualShutdown(t *testing.T) {
	t.Parallel()

	srv := httpserver.New(httpserver.WithAddr("127.0.0.1:0"))
	done := start(t, context.Background(), srv, okHandler())

	require.NoError(t, srv.Shutdown(context.Background()))
	require.NoError(t, wait(t, done))
}

func TestShutdownFuncOrderAndErrors(t *testing.T) {
	t.Parallel()

	var order []string
	boom := errors.New("detach failed")
	srv := httpserver.New(
		httpserver.WithAddr("127.0.0.1:0"),
		httpserver.WithShutdownFunc(func(context.Context) error { order = append(order, "first"); return boom }),
		httpserver.WithShutdownFunc(func(context.Context) error { order = append(order, "second"); return nil }),
	)
	ctx, cancel := context.WithCancel(context.Background())
	done := start(t, ctx, srv, okHandler())
	cancel()

	err := wait(t, done)
	assert.ErrorIs(t, err, httpserver.ErrShutdown)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestStartError(t *testing.T) {
	t.Parallel()

	srv := httpserver.New(httpserver.WithAddr(":invalid"))
	err := srv.Run(context.Background(), okHandler())
	assert.ErrorIs(t, err, httpserver.ErrStart)
	assert.Nil(t, srv.Addr())
}

func TestAlreadyRunning(t *testing.T) {
	t.Parallel()

	srv := httpserver.New(httpserver.WithAddr("127.0.0.1:0"))
	ctx, cancel := context.WithCancel(context.Background())
	done := start(t, ctx, srv, okHandler())

	err := srv.Run(context.Background(), okHandler())
	assert.ErrorIs(t, err, httpserver.ErrStart)

	cancel()
	require.NoError(t, wait(t, done))
}

// Not parallel: the signal reaches every server running in the process.
func TestSignalShutdown(t *testing.T) {
	srv := httpserver.New(httpserver.WithAddr("127.0.0.1:0"), httpserver.WithShutdownTimeout(100*time.Millisecond))
	done := start(t, context.Background(), srv, okHandler())

	p, err := os.FindProcess(os.Getpid())
	require.NoError(t, err)
	require.NoError(t, p.Signal(syscall.SIGTERM))

	require.NoError(t, wait(t, done))
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	srv := httpserver.NewFromConfig(httpserver.Config{
		Addr:         "127.0.0.1:0",
		ReadTimeout:  time.Second,
		WriteTimeout: 2 * time.Second,
	})
	ctx, cancel := context.WithCancel(context.Background())
	done := start(t, ctx, srv, nil)

	resp, err := http.Get("http://" + srv.Addr().String())
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "nil handler serves 404")

	cancel()
	require.NoError(t, wait(t, done))
}

func TestOptionPanics(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		fn   func()
	}{
		{"addr", func() { httpserver.WithAddr("") }},
		{"read", func() { httpserver.WithReadTimeout(-time.Second) }},
		{"write", func() { httpserver.WithWriteTimeout(-time.Second) }},
		{"idle", func() { httpserver.WithIdleTimeout(-time.Second) }},
		{"shutdown", func() { httpserver.WithShutdownTimeout(-time.Second) }},
		{"shutdown func", func() { httpserver.WithShutdownFunc(nil) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Panics(t, tt.fn)
		})
	}

	assert.NotPanics(t, func() { httpserver.WithLogger(nil) })
}
