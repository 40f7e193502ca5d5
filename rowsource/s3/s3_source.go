// Package s3 provides a rowsource.Source fetching row payloads from
// Amazon S3 (or any S3-compatible endpoint the SDK can address).
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/hupe1980/colgo/resource"
	"github.com/hupe1980/colgo/rowsource"
	"github.com/hupe1980/colgo/scalar"
)

// Client is the subset of the S3 API the source needs. It matches
// manager.DownloadAPIClient so the concrete SDK client satisfies it.
type Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Source fetches row payloads from an S3 bucket. Identifiers are object
// keys relative to the configured prefix; .gz and .lz4 objects are
// decompressed transparently.
type Source struct {
	client Client
	bucket string
	prefix string
	rc     *resource.Controller
}

// New creates an S3 row source.
// rootPrefix is prepended to all keys (e.g. "exports/").
func New(client Client, bucket, rootPrefix string) *Source {
	return &Source{
		client: client,
		bucket: bucket,
		prefix: rootPrefix,
	}
}

// NewFromConfig creates a Source using the SDK's default credential and
// region resolution.
func NewFromConfig(ctx context.Context, bucket, rootPrefix string) (*Source, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", rowsource.ErrUnavailable, err)
	}
	return New(s3.NewFromConfig(cfg), bucket, rootPrefix), nil
}

// WithController sets a resource controller used to rate limit decoding
// the downloaded payload.
func (s *Source) WithController(rc *resource.Controller) *Source {
	s.rc = rc
	return s
}

func (s *Source) key(identifier string) string {
	return path.Join(s.prefix, identifier)
}

// Fetch downloads the object and decodes it as row data.
func (s *Source) Fetch(ctx context.Context, identifier string) ([]scalar.Row, error) {
	key := s.key(identifier)

	buf := manager.NewWriteAtBuffer(nil)
	downloader := manager.NewDownloader(s.client)
	_, err := downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		var noBucket *types.NoSuchBucket
		if errors.As(err, &noKey) || errors.As(err, &noBucket) {
			return nil, fmt.Errorf("%w: s3://%s/%s", rowsource.ErrNotFound, s.bucket, key)
		}
		return nil, fmt.Errorf("%w: s3://%s/%s: %w", rowsource.ErrUnavailable, s.bucket, key, err)
	}

	r, err := rowsource.NewDecompressingReader(
		resource.NewRateLimitedReader(ctx, bytes.NewReader(buf.Bytes()), s.rc), key)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	return rowsource.DecodeRows(r)
}
