package resultcache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"

	"github.com/dmitrymomot/tenantdb/pkg/logger"
)

type diskEntry struct {
	ExpiresAt time.Time        `json:"expires_at,omitzero"`
	Rows      []map[string]any `json:"rows"`
}

// disk stores one JSON file per result under <dir>/<tenant>/<key>.json.
// Values come back JSON-normalized: numbers decode as float64 and
// timestamps as strings.
type disk struct {
	dir  string
	ttl  time.Duration
	opts options
}

func newDisk(cfg Config, o options) (*disk, error) {
	if err := os.MkdirAll(cfg.Dir, 0o750); err != nil {
		return nil, errors.Join(ErrCreateCacheFailed, err)
	}
	return &disk{dir: cfg.Dir, ttl: cfg.TTL, opts: o}, nil
}

func (d *disk) tenantDir(tenantID string) (string, error) {
	if tenantID == "" || tenantID == "." || tenantID == ".." || filepath.Base(tenantID) != tenantID {
		return "", fmt.Errorf("%w: %q", ErrInvalidTenant, tenantID)
	}
	return filepath.Join(d.dir, tenantID), nil
}

func (d *disk) Get(ctx context.Context, tenantID, key string) ([]map[string]any, bool) {
	dir, err := d.tenantDir(tenantID)
	if err != nil {
		return nil, false
	}
	path := filepath.Join(dir, key+".json")

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			d.opts.logger.WarnContext(ctx, "failed to read cached result",
				logger.TenantID(tenantID), logger.Error(err))
		}
		return nil, false
	}

	var e diskEntry
	if err := json.Unmarshal(data, &e); err != nil {
		d.opts.logger.WarnContext(ctx, "dropping corrupt cached result",
			logger.TenantID(tenantID), slog.String("path", path), logger.Error(err))
		_ = os.Remove(path)
		return nil, false
	}

	if expired(e.ExpiresAt, d.opts.now()) {
		_ = os.Remove(path)
		return nil, false
	}
	return e.Rows, true
}

func (d *disk) Set(_ context.Context, tenantID, key string, rows []map[string]any) error {
	dir, err := d.tenantDir(tenantID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return errors.Join(ErrWriteFailed, err)
	}

	data, err := json.Marshal(diskEntry{ExpiresAt: expiry(d.ttl, d.opts.now()), Rows: rows})
	if err != nil {
		return errors.Join(ErrWriteFailed, err)
	}
	if err := atomic.WriteFile(filepath.Join(dir, key+".json"), bytes.NewReader(data)); err != nil {
		return errors.Join(ErrWriteFailed, err)
	}
	return nil
}

func (d *disk) InvalidateTenant(_ context.Context, tenantID string) error {
	dir, err := d.tenantDir(tenantID)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(dir); err != nil {
		return errors.Join(ErrInvalidateFailed, err)
	}
	return nil
}

func (d *disk) Close() error { return nil }
