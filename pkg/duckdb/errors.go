package duckdb

import "errors"

var (
	ErrFailedToOpenEngine       = errors.New("failed to open analytical engine")
	ErrFailedToApplySettings    = errors.New("failed to apply engine settings")
	ErrFailedToConfigureStorage = errors.New("failed to configure remote storage")
	ErrHealthcheckFailed        = errors.New("engine healthcheck failed")
	ErrAttachFailed             = errors.New("failed to attach tenant database")
	ErrDetachFailed             = errors.New("failed to detach tenant database")
	ErrInvalidSetting           = errors.New("invalid engine setting")
)
