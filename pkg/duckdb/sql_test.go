package duckdb_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantdb/pkg/duckdb"
)

func TestQuoting(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `"tenant_a"`, duckdb.QuoteIdent("tenant_a"))
	assert.Equal(t, `"we""ird"`, duckdb.QuoteIdent(`we"ird`))
	assert.Equal(t, `'it''s'`, duckdb.QuoteLiteral("it's"))
}

func TestSettingsStatements(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		stmts, err := duckdb.SettingsStatements(duckdb.Config{MemoryLimit: "4GB", Threads: 4})
		require.NoError(t, err)
		assert.Equal(t, []string{"SET memory_limit = '4GB'", "SET threads = 4"}, stmts)
	})

	t.Run("empty settings are skipped", func(t *testing.T) {
		t.Parallel()
		stmts, err := duckdb.SettingsStatements(duckdb.Config{})
		require.NoError(t, err)
		assert.Empty(t, stmts)
	})

	t.Run("rejects malformed memory limit", func(t *testing.T) {
		t.Parallel()
		_, err := duckdb.SettingsStatements(duckdb.Config{MemoryLimit: "4GB'; DROP TABLE x; --"})
		assert.ErrorIs(t, err, duckdb.ErrInvalidSetting)
	})

	t.Run("rejects negative threads", func(t *testing.T) {
		t.Parallel()
		_, err := duckdb.SettingsStatements(duckdb.Config{Threads: -1})
		assert.ErrorIs(t, err, duckdb.ErrInvalidSetting)
	})
}

func TestAttachDetachStatements(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		`ATTACH 's3://bucket/tenants/acme.duckdb' AS "tenant_acme" (READ_ONLY)`,
		duckdb.AttachStatement("acme", "s3://bucket/tenants/acme.duckdb", true),
	)
	assert.Equal(t,
		`ATTACH '/data/acme.duckdb' AS "tenant_acme"`,
		duckdb.AttachStatement("acme", "/data/acme.duckdb", false),
	)
	assert.Equal(t, `DETACH "tenant_a-b"`, duckdb.DetachStatement("a-b"))
}

func TestTenantCatalogStatements(t *testing.T) {
	t.Parallel()

	t.Run("attach switches to the tenant catalog", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, []string{
			`ATTACH '/data/acme.duckdb' AS "tenant_acme"`,
			`USE "tenant_acme"`,
		}, duckdb.AttachStatements("acme", "/data/acme.duckdb", false, "memory"))
	})

	t.Run("detach switches home first", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, []string{
			`USE "memory"`,
			`DETACH "tenant_acme"`,
		}, duckdb.DetachStatements("acme", "memory"))
	})

	t.Run("no home catalog keeps plain statements", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t,
			[]string{`ATTACH 's3://b/acme.duckdb' AS "tenant_acme" (READ_ONLY)`},
			duckdb.AttachStatements("acme", "s3://b/acme.duckdb", true, ""),
		)
		assert.Equal(t, []string{`DETACH "tenant_acme"`}, duckdb.DetachStatements("acme", ""))
	})
}

func TestHomeCatalog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want string
	}{
		{"", "memory"},
		{":memory:", "memory"},
		{"/var/lib/tenantdb/engine.duckdb", "engine"},
		{"shared.db", "shared"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, duckdb.HomeCatalog(duckdb.Config{Path: tt.path}), tt.path)
	}
}
