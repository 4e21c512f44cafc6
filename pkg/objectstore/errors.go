package objectstore

import "errors"

var (
	// Configuration errors
	ErrConflictingStorage    = errors.New("both S3 and R2 credentials are configured, pick one")
	ErrIncompleteCredentials = errors.New("incomplete object storage credentials")
	ErrNoStorage             = errors.New("no object storage configured")
	ErrFailedToLoadConfig    = errors.New("failed to load AWS config")

	// Verification errors
	ErrBucketNotFound     = errors.New("bucket not found")
	ErrAccessDenied       = errors.New("access denied")
	ErrServiceUnavailable = errors.New("object storage temporarily unavailable")
	ErrOperationTimeout   = errors.New("operation timed out")
	ErrVerificationFailed = errors.New("bucket verification failed")
)
