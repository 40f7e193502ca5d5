// Package minio provides a rowsource.Source fetching row payloads from
// MinIO and other S3-compatible object stores via the MinIO client.
package minio

import (
	"context"
	"fmt"
	"path"

	"github.com/minio/minio-go/v7"

	"github.com/hupe1980/colgo/resource"
	"github.com/hupe1980/colgo/rowsource"
	"github.com/hupe1980/colgo/scalar"
)

// Source fetches row payloads from a MinIO bucket. Identifiers are object
// keys relative to the configured prefix; .gz and .lz4 objects are
// decompressed transparently.
type Source struct {
	client *minio.Client
	bucket string
	prefix string
	rc     *resource.Controller
}

// New creates a MinIO row source.
// rootPrefix is prepended to all keys (e.g. "exports/").
func New(client *minio.Client, bucket, rootPrefix string) *Source {
	return &Source{
		client: client,
		bucket: bucket,
		prefix: rootPrefix,
	}
}

// WithController sets a resource controller used to rate limit object reads.
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

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: %s/%s: %w", rowsource.ErrUnavailable, s.bucket, key, err)
	}
	defer func() { _ = obj.Close() }()

	// GetObject is lazy; existence surfaces on first read via Stat.
	if _, err := obj.Stat(); err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" || resp.Code == "NotFound" {
			return nil, fmt.Errorf("%w: %s/%s", rowsource.ErrNotFound, s.bucket, key)
		}
		return nil, fmt.Errorf("%w: %s/%s: %w", rowsource.ErrUnavailable, s.bucket, key, err)
	}

	r, err := rowsource.NewDecompressingReader(
		resource.NewRateLimitedReader(ctx, obj, s.rc), key)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	return rowsource.DecodeRows(r)
}
