package resultcache

import "errors"

var (
	ErrUnknownType       = errors.New("unknown result cache type")
	ErrInvalidSize       = errors.New("result cache size must be positive")
	ErrMissingDir        = errors.New("disk result cache requires a directory")
	ErrInvalidTenant     = errors.New("tenant id is not usable as a cache namespace")
	ErrWriteFailed       = errors.New("failed to write cached result")
	ErrInvalidateFailed  = errors.New("failed to invalidate cached results")
	ErrCreateCacheFailed = errors.New("failed to create result cache")
)
