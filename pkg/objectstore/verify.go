package objectstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3Client defines the S3 operations the Verifier needs.
type S3Client interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// Option configures a Verifier.
type Option func(*verifierOptions)

type verifierOptions struct {
	client     S3Client
	httpClient *http.Client
}

// WithS3Client sets a pre-configured client. Useful for testing with mocks.
func WithS3Client(client S3Client) Option {
	return func(o *verifierOptions) { o.client = client }
}

// WithHTTPClient sets a custom HTTP client for S3 requests.
func WithHTTPClient(client *http.Client) Option {
	return func(o *verifierOptions) { o.httpClient = client }
}

// Verifier checks that the configured bucket is reachable with the
// configured credentials before the engine is pointed at it.
type Verifier struct {
	client S3Client
	bucket string
}

// NewVerifier builds an S3 client for either credential block. R2 is
// reached through its S3-compatible endpoint.
func NewVerifier(ctx context.Context, cfg Config, opts ...Option) (*Verifier, error) {
	if cfg.Provider() == ProviderNone {
		return nil, ErrNoStorage
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &verifierOptions{}
	for _, opt := range opts {
		opt(o)
	}

	client := o.client
	if client == nil {
		keyID, secret := cfg.Credentials()
		awsOptions := []func(*config.LoadOptions) error{
			config.WithRegion(cfg.Region()),
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(keyID, secret, "")),
		}
		if o.httpClient != nil {
			awsOptions = append(awsOptions, config.WithHTTPClient(o.httpClient))
		}

		awsConfig, err := config.LoadDefaultConfig(ctx, awsOptions...)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFailedToLoadConfig, err)
		}

		endpoint := cfg.Endpoint()
		client = s3.NewFromConfig(awsConfig, func(so *s3.Options) {
			if endpoint != "" {
				so.BaseEndpoint = aws.String(endpoint)
			}
			so.UsePathStyle = cfg.S3.ForcePathStyle
		})
	}

	return &Verifier{client: client, bucket: cfg.Bucket()}, nil
}

// Verify issues a HeadBucket request and classifies failures.
func (v *Verifier) Verify(ctx context.Context) error {
	_, err := v.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(v.bucket)})
	return classifyError(err, v.bucket)
}

func classifyError(err error, bucket string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: head bucket %q", ErrOperationTimeout, bucket)
	}

	var nf *types.NotFound
	if errors.As(err, &nf) {
		return fmt.Errorf("%w: %s", ErrBucketNotFound, bucket)
	}
	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return fmt.Errorf("%w: %s", ErrBucketNotFound, bucket)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchBucket":
			return fmt.Errorf("%w: %s", ErrBucketNotFound, bucket)
		case "AccessDenied", "Forbidden", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return fmt.Errorf("%w: %s", ErrAccessDenied, bucket)
		case "SlowDown", "ServiceUnavailable", "RequestTimeout":
			return fmt.Errorf("%w: %s", ErrServiceUnavailable, bucket)
		}
	}

	return errors.Join(ErrVerificationFailed, err)
}
