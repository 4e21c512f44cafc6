package tenantdb

import (
	"errors"
	"maps"
)

// Code identifies the kind of failure.
type Code string

const (
	CodeNotInitialized             Code = "NOT_INITIALIZED"
	CodeConnectionSetupFailed      Code = "CONNECTION_SETUP_FAILED"
	CodeStorageConfigFailed        Code = "STORAGE_CONFIG_FAILED"
	CodeTenantAttachFailed         Code = "TENANT_ATTACH_FAILED"
	CodeTenantDetachFailed         Code = "TENANT_DETACH_FAILED"
	CodeQueryExecutionFailed       Code = "QUERY_EXECUTION_FAILED"
	CodeCapacityInvariantViolation Code = "CAPACITY_INVARIANT_VIOLATION"
	CodeInvalidTenantID            Code = "INVALID_TENANT_ID"
	CodeShutdownFailed             Code = "SHUTDOWN_FAILED"
)

// Error is the structured error returned by every fallible Manager and
// Service operation.
type Error struct {
	Code    Code           `json:"code"`
	Message string         `json:"message"`
	Cause   error          `json:"-"`
	Context map[string]any `json:"context,omitempty"`
}

func newError(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

func (e *Error) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches any *Error with the same code, so callers can compare against
// the sentinels below regardless of message or context.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// WithContext returns a copy of e with key set in its context map.
func (e *Error) WithContext(key string, value any) *Error {
	cp := *e
	cp.Context = make(map[string]any, len(e.Context)+1)
	maps.Copy(cp.Context, e.Context)
	cp.Context[key] = value
	return &cp
}

// Sentinels for errors.Is. Do not mutate.
var (
	ErrNotInitialized             = newError(CodeNotInitialized, "manager is not initialized", nil)
	ErrConnectionSetupFailed      = newError(CodeConnectionSetupFailed, "failed to create engine instance", nil)
	ErrStorageConfigFailed        = newError(CodeStorageConfigFailed, "failed to configure storage", nil)
	ErrTenantAttachFailed         = newError(CodeTenantAttachFailed, "failed to attach tenant", nil)
	ErrTenantDetachFailed         = newError(CodeTenantDetachFailed, "failed to detach tenant", nil)
	ErrQueryExecutionFailed       = newError(CodeQueryExecutionFailed, "query execution failed", nil)
	ErrCapacityInvariantViolation = newError(CodeCapacityInvariantViolation, "handle cache exceeded its capacity", nil)
	ErrInvalidTenantID            = newError(CodeInvalidTenantID, "invalid tenant id", nil)
	ErrShutdownFailed             = newError(CodeShutdownFailed, "failed to close engine instance", nil)
)

// CodeOf returns the code of the first *Error in err's chain, or "" if none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
