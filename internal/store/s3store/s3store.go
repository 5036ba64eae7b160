// Package s3store implements the store interface against an S3-compatible
// endpoint using the AWS SDK. The connection profile handed to the engine
// (endpoint + access key + secret key) is the same one the sync utility uses,
// so buckets reachable by it are reachable here.
package s3store

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	sweeperrors "github.com/perigee-io/bucketsweep/errors"
	"github.com/perigee-io/bucketsweep/sweeptypes"
)

// S3Interface defines the S3 operations we need.
type S3Interface interface {
	ListObjectsV2(
		ctx context.Context,
		input *s3.ListObjectsV2Input,
		opts ...func(*s3.Options),
	) (*s3.ListObjectsV2Output, error)
	DeleteObject(
		ctx context.Context,
		input *s3.DeleteObjectInput,
		opts ...func(*s3.Options),
	) (*s3.DeleteObjectOutput, error)
}

// Store talks to an S3-compatible endpoint.
type Store struct {
	client   S3Interface
	pageSize int32
}

// Config holds the settings needed to build an S3-wire store.
type Config struct {
	// Region is the bucket region; defaults to us-east-1 when empty
	Region string

	// Endpoint is a custom endpoint URL for S3-compatible services
	Endpoint string

	// AccessKey and SecretKey are static credentials. When both are empty the
	// default credential chain is used.
	AccessKey string
	SecretKey string

	// ForcePathStyle forces path-style addressing, required by most
	// S3-compatible services
	ForcePathStyle bool

	// HTTPClient overrides the HTTP client, e.g. to set a timeout
	HTTPClient *http.Client
}

// New creates an S3-wire store from the given config.
func New(ctx context.Context, cfg Config) (*Store, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" || cfg.SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, sweeperrors.NewError("store initialization", err)
	}
	if awsCfg.Region == "" {
		awsCfg.Region = "us-east-1"
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}
	if cfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}
	if cfg.HTTPClient != nil {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.HTTPClient = cfg.HTTPClient
		})
	}

	return &Store{
		client:   s3.NewFromConfig(awsCfg, s3Opts...),
		pageSize: 1000,
	}, nil
}

// NewWithClient creates a store with a custom S3 implementation.
// This is primarily used for testing with mocked clients.
func NewWithClient(client S3Interface) *Store {
	return &Store{client: client, pageSize: 1000}
}

// ListPage fetches one page of object entries under prefix.
func (s *Store) ListPage(ctx context.Context, bucket, prefix, cursor string) (*sweeptypes.Page, error) {
	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int32(s.pageSize),
	}
	if cursor != "" {
		input.ContinuationToken = aws.String(cursor)
	}

	output, err := s.client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, sweeperrors.NewPathError("listPage", bucket, prefix, convertAWSError(err))
	}

	page := &sweeptypes.Page{
		Entries: make([]sweeptypes.ObjectEntry, 0, len(output.Contents)),
	}
	for _, obj := range output.Contents {
		page.Entries = append(page.Entries, sweeptypes.ObjectEntry{
			Key:          aws.ToString(obj.Key),
			Size:         aws.ToInt64(obj.Size),
			LastModified: aws.ToTime(obj.LastModified),
			ETag:         aws.ToString(obj.ETag),
		})
	}
	if aws.ToBool(output.IsTruncated) {
		page.Cursor = aws.ToString(output.NextContinuationToken)
	}

	return page, nil
}

// DeleteObject deletes a single key. S3 DeleteObject is idempotent already;
// a NoSuchKey error from strict S3-compatible services is mapped to success.
func (s *Store) DeleteObject(ctx context.Context, bucket, key string) error {
	input := &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}

	_, err := s.client.DeleteObject(ctx, input)
	if err != nil {
		converted := convertAWSError(err)
		if errors.Is(converted, sweeperrors.ErrNotFound) {
			return nil
		}
		return sweeperrors.NewPathError("deleteObject", bucket, key, converted)
	}
	return nil
}

// convertAWSError maps AWS SDK errors to the engine's error taxonomy.
func convertAWSError(err error) error {
	if err == nil {
		return nil
	}

	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return sweeperrors.ErrNotFound
	}
	var noSuchBucket *types.NoSuchBucket
	if errors.As(err, &noSuchBucket) {
		return sweeperrors.ErrNotFound
	}

	// Throttling surfaces as error codes in the message for S3-compatible
	// services that skip the retryable-error metadata.
	errMsg := err.Error()
	switch {
	case strings.Contains(errMsg, "SlowDown"),
		strings.Contains(errMsg, "TooManyRequests"),
		strings.Contains(errMsg, "RequestLimitExceeded"),
		strings.Contains(errMsg, "ServiceUnavailable"),
		strings.Contains(errMsg, "Throttling"):
		return sweeperrors.ErrRateLimited
	case strings.Contains(errMsg, "NoSuchKey"),
		strings.Contains(errMsg, "NotFound"):
		return sweeperrors.ErrNotFound
	}

	return err
}
