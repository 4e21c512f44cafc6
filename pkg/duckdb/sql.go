package duckdb

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// QuoteIdent quotes an identifier for use in SQL.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteLiteral quotes a string literal for use in SQL.
func QuoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

// TenantAlias is the catalog name a tenant database is attached under.
func TenantAlias(tenantID string) string {
	return "tenant_" + tenantID
}

var memoryLimitPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?\s*(B|KB|MB|GB|TB|KiB|MiB|GiB|TiB|%)?$`)

// SettingsStatements returns the SET statements applied right after the
// engine opens. Empty or zero settings are skipped.
func SettingsStatements(cfg Config) ([]string, error) {
	stmts := make([]string, 0, 2)

	if cfg.MemoryLimit != "" {
		if !memoryLimitPattern.MatchString(cfg.MemoryLimit) {
			return nil, fmt.Errorf("%w: memory limit %q", ErrInvalidSetting, cfg.MemoryLimit)
		}
		stmts = append(stmts, "SET memory_limit = "+QuoteLiteral(cfg.MemoryLimit))
	}

	if cfg.Threads < 0 {
		return nil, fmt.Errorf("%w: threads %d", ErrInvalidSetting, cfg.Threads)
	}
	if cfg.Threads > 0 {
		stmts = append(stmts, fmt.Sprintf("SET threads = %d", cfg.Threads))
	}

	return stmts, nil
}

// AttachStatement attaches the database at location under the tenant alias.
func AttachStatement(tenantID, location string, readOnly bool) string {
	stmt := fmt.Sprintf("ATTACH %s AS %s", QuoteLiteral(location), QuoteIdent(TenantAlias(tenantID)))
	if readOnly {
		stmt += " (READ_ONLY)"
	}
	return stmt
}

// DetachStatement detaches the tenant alias.
func DetachStatement(tenantID string) string {
	return "DETACH " + QuoteIdent(TenantAlias(tenantID))
}

// UseStatement makes catalog the connection's default for unqualified names.
func UseStatement(catalog string) string {
	return "USE " + QuoteIdent(catalog)
}

// AttachStatements attaches the tenant and, when home is set, switches the
// connection to the tenant catalog so unqualified names resolve there.
func AttachStatements(tenantID, location string, readOnly bool, home string) []string {
	stmts := []string{AttachStatement(tenantID, location, readOnly)}
	if home != "" {
		stmts = append(stmts, UseStatement(TenantAlias(tenantID)))
	}
	return stmts
}

// DetachStatements switches back to home before detaching, since the engine
// refuses to detach the catalog in use.
func DetachStatements(tenantID, home string) []string {
	if home == "" {
		return []string{DetachStatement(tenantID)}
	}
	return []string{UseStatement(home), DetachStatement(tenantID)}
}

// HomeCatalog is the name of the engine's default catalog: "memory" for an
// in-memory instance, otherwise the database file name without extension.
func HomeCatalog(cfg Config) string {
	if cfg.Path == "" || cfg.Path == ":memory:" {
		return "memory"
	}
	base := filepath.Base(cfg.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
