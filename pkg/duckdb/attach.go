package duckdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path"
	"path/filepath"

	"github.com/dmitrymomot/tenantdb/pkg/objectstore"
)

// LocationFunc resolves where a tenant's database file lives.
type LocationFunc func(tenantID string) (string, error)

// AttachStrategy attaches one database file per tenant on acquire and
// detaches it on release.
type AttachStrategy struct {
	location LocationFunc
	readOnly bool
	home     string
}

// AttachOption configures an AttachStrategy.
type AttachOption func(*AttachStrategy)

// WithHomeCatalog makes the tenant catalog the connection's default after
// attach and switches back to home before detach. Without it, unqualified
// names keep resolving in the shared default catalog.
func WithHomeCatalog(home string) AttachOption {
	return func(s *AttachStrategy) {
		s.home = home
	}
}

// NewAttachStrategy builds a strategy from a location resolver.
func NewAttachStrategy(location LocationFunc, readOnly bool, opts ...AttachOption) *AttachStrategy {
	if location == nil {
		panic("duckdb: nil location func")
	}
	s := &AttachStrategy{location: location, readOnly: readOnly}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RemoteLocation places tenant files at <prefix>/<tenant>.duckdb in the
// configured bucket.
func RemoteLocation(store objectstore.Config, prefix string) LocationFunc {
	return func(tenantID string) (string, error) {
		return store.URL(path.Join(prefix, tenantID+".duckdb"))
	}
}

// LocalLocation places tenant files at <dir>/<tenant>.duckdb.
func LocalLocation(dir string) LocationFunc {
	return func(tenantID string) (string, error) {
		return filepath.Join(dir, tenantID+".duckdb"), nil
	}
}

// Attach runs the attach statements on conn. If switching to the tenant
// catalog fails, the tenant is detached again.
func (s *AttachStrategy) Attach(ctx context.Context, conn *sql.Conn, tenantID string) error {
	loc, err := s.location(tenantID)
	if err != nil {
		return errors.Join(ErrAttachFailed, err)
	}

	for i, stmt := range AttachStatements(tenantID, loc, s.readOnly, s.home) {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			if i > 0 {
				if _, derr := conn.ExecContext(ctx, DetachStatement(tenantID)); derr != nil {
					err = errors.Join(err, derr)
				}
			}
			return errors.Join(ErrAttachFailed, fmt.Errorf("tenant %s: %w", tenantID, err))
		}
	}
	return nil
}

// Detach runs the detach statements on conn.
func (s *AttachStrategy) Detach(ctx context.Context, conn *sql.Conn, tenantID string) error {
	for _, stmt := range DetachStatements(tenantID, s.home) {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return errors.Join(ErrDetachFailed, fmt.Errorf("tenant %s: %w", tenantID, err))
		}
	}
	return nil
}
