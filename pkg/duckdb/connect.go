package duckdb

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Open creates the engine instance and applies settings, retrying with a
// linearly growing delay: attempt 1 waits RetryInterval, attempt 2 waits 2x.
//
// The driver named by cfg.DriverName must already be registered, usually by
// a blank import in the binary.
func Open(ctx context.Context, cfg Config) (*sql.DB, error) {
	settings, err := SettingsStatements(cfg)
	if err != nil {
		return nil, err
	}

	attempts := max(cfg.RetryAttempts, 1)
	var lastErr error

	for i := range attempts {
		db, err := openOnce(ctx, cfg, settings)
		if err == nil {
			return db, nil
		}
		lastErr = err

		// Settings errors are deterministic; retrying will not help.
		if errors.Is(err, ErrFailedToApplySettings) || i == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrFailedToOpenEngine, ctx.Err())
		case <-time.After(time.Duration(i+1) * cfg.RetryInterval):
		}
	}

	return nil, lastErr
}

func openOnce(ctx context.Context, cfg Config, settings []string) (*sql.DB, error) {
	db, err := sql.Open(cfg.DriverName, cfg.Path)
	if err != nil {
		return nil, errors.Join(ErrFailedToOpenEngine, err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Join(ErrFailedToOpenEngine, err)
	}

	for _, stmt := range settings {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, errors.Join(ErrFailedToApplySettings, err)
		}
	}

	return db, nil
}

// Healthcheck returns a closure that pings the engine, for readiness probes.
func Healthcheck(db *sql.DB) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
