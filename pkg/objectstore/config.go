package objectstore

import (
	"fmt"
	"strings"
)

// Provider names the remote storage backend.
type Provider string

const (
	ProviderNone Provider = ""
	ProviderS3   Provider = "s3"
	ProviderR2   Provider = "r2"
)

// S3Config holds credentials for Amazon S3 or an S3-compatible service.
type S3Config struct {
	Region          string `env:"S3_REGION"`
	AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
	Bucket          string `env:"S3_BUCKET"`
	Endpoint        string `env:"S3_ENDPOINT"`                            // Optional: for S3-compatible services
	ForcePathStyle  bool   `env:"S3_FORCE_PATH_STYLE" envDefault:"false"` // For services like MinIO
}

func (c S3Config) set() bool {
	return c.Region != "" || c.AccessKeyID != "" || c.SecretAccessKey != "" || c.Bucket != "" || c.Endpoint != ""
}

func (c S3Config) validate() error {
	var missing []string
	if c.Region == "" {
		missing = append(missing, "S3_REGION")
	}
	if c.AccessKeyID == "" {
		missing = append(missing, "S3_ACCESS_KEY_ID")
	}
	if c.SecretAccessKey == "" {
		missing = append(missing, "S3_SECRET_ACCESS_KEY")
	}
	if c.Bucket == "" {
		missing = append(missing, "S3_BUCKET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrIncompleteCredentials, strings.Join(missing, ", "))
	}
	return nil
}

// R2Config holds credentials for Cloudflare R2.
type R2Config struct {
	AccountID       string `env:"R2_ACCOUNT_ID"`
	AccessKeyID     string `env:"R2_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"R2_SECRET_ACCESS_KEY"`
	Bucket          string `env:"R2_BUCKET"`
}

func (c R2Config) set() bool {
	return c.AccountID != "" || c.AccessKeyID != "" || c.SecretAccessKey != "" || c.Bucket != ""
}

func (c R2Config) validate() error {
	var missing []string
	if c.AccountID == "" {
		missing = append(missing, "R2_ACCOUNT_ID")
	}
	if c.AccessKeyID == "" {
		missing = append(missing, "R2_ACCESS_KEY_ID")
	}
	if c.SecretAccessKey == "" {
		missing = append(missing, "R2_SECRET_ACCESS_KEY")
	}
	if c.Bucket == "" {
		missing = append(missing, "R2_BUCKET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrIncompleteCredentials, strings.Join(missing, ", "))
	}
	return nil
}

// Config carries at most one of the two credential blocks.
type Config struct {
	S3            S3Config
	R2            R2Config
	VerifyOnStart bool `env:"STORAGE_VERIFY_ON_START" envDefault:"false"` // HeadBucket before the engine is configured
}

// Provider reports which block is filled in. It does not validate.
func (c Config) Provider() Provider {
	switch {
	case c.S3.set():
		return ProviderS3
	case c.R2.set():
		return ProviderR2
	default:
		return ProviderNone
	}
}

// Validate checks that the blocks are mutually exclusive and complete.
// An empty config is valid: tenants then live on local disk only.
func (c Config) Validate() error {
	if c.S3.set() && c.R2.set() {
		return ErrConflictingStorage
	}
	switch c.Provider() {
	case ProviderS3:
		return c.S3.validate()
	case ProviderR2:
		return c.R2.validate()
	}
	return nil
}

// Bucket returns the configured bucket name.
func (c Config) Bucket() string {
	switch c.Provider() {
	case ProviderS3:
		return c.S3.Bucket
	case ProviderR2:
		return c.R2.Bucket
	}
	return ""
}

// Region returns the signing region. R2 always signs with "auto".
func (c Config) Region() string {
	switch c.Provider() {
	case ProviderS3:
		return c.S3.Region
	case ProviderR2:
		return "auto"
	}
	return ""
}

// Endpoint returns the API endpoint, or "" for the provider default.
func (c Config) Endpoint() string {
	switch c.Provider() {
	case ProviderS3:
		return c.S3.Endpoint
	case ProviderR2:
		return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", c.R2.AccountID)
	}
	return ""
}

// Credentials returns the access key pair of the active block.
func (c Config) Credentials() (accessKeyID, secretAccessKey string) {
	switch c.Provider() {
	case ProviderS3:
		return c.S3.AccessKeyID, c.S3.SecretAccessKey
	case ProviderR2:
		return c.R2.AccessKeyID, c.R2.SecretAccessKey
	}
	return "", ""
}

// URL builds the engine-facing object URL for key, e.g. "s3://bucket/tenants/a.duckdb".
func (c Config) URL(key string) (string, error) {
	p := c.Provider()
	if p == ProviderNone {
		return "", ErrNoStorage
	}
	if err := c.Validate(); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s://%s/%s", p, c.Bucket(), strings.TrimPrefix(key, "/")), nil
}
