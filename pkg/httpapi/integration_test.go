package httpapi_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/dmitrymomot/tenantdb/pkg/duckdb"
	"github.com/dmitrymomot/tenantdb/pkg/httpapi"
	"github.com/dmitrymomot/tenantdb/pkg/resultcache"
	"github.com/dmitrymomot/tenantdb/pkg/tenantdb"
)

func TestRouter_WithService(t *testing.T) {
	t.Parallel()

	cfg := tenantdb.DefaultConfig()
	cfg.Engine = duckdb.Config{DriverName: "sqlite", Path: ":memory:", RetryAttempts: 1}
	cfg.ResultCache = resultcache.Config{Type: resultcache.TypeMemory, Size: 10}
	cfg.MaxActiveUsers = 2

	svc, err := tenantdb.NewService(cfg)
	require.NoError(t, err)
	h := httpapi.NewRouter(svc)

	rec, _ := do(t, h, http.MethodGet, "/health/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec, resp := do(t, h, http.MethodPost, "/tenants/acme/query", `{"sql":"SELECT 1"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "NOT_INITIALIZED", resp.Code)

	require.NoError(t, svc.Initialize(t.Context()))
	t.Cleanup(func() { _ = svc.Shutdown(context.Background()) })

	rec, _ = do(t, h, http.MethodGet, "/health/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, h, http.MethodPost, "/tenants/acme/execute", `{"sql":"CREATE TABLE events (name TEXT)"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = do(t, h, http.MethodPost, "/tenants/acme/execute", `{"sql":"INSERT INTO events VALUES (?)","args":["signup"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, resp = do(t, h, http.MethodPost, "/tenants/acme/query", `{"sql":"SELECT name FROM events"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{map[string]any{"name": "signup"}}, resp.Data)

	rec, resp = do(t, h, http.MethodPost, "/tenants/acme/query", `{"sql":"SELECT * FROM nowhere"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, resp.Error)
	assert.NotEmpty(t, resp.Error.Message)

	rec, resp = do(t, h, http.MethodGet, "/tenants", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"acme"}, resp.Data.(map[string]any)["ids"])

	rec, _ = do(t, h, http.MethodDelete, "/tenants/acme", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, svc.IsAttached("acme"))

	rec, _ = do(t, h, http.MethodGet, "/tenants/bad.id", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
