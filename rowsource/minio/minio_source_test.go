package minio

import (
	"bytes"
	"context"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/colgo/rowsource"
	"github.com/hupe1980/colgo/scalar"
)

func TestKeyPrefixing(t *testing.T) {
	src := New(nil, "bucket", "exports/")
	assert.Equal(t, "exports/users.json", src.key("users.json"))

	src = New(nil, "bucket", "")
	assert.Equal(t, "users.json", src.key("users.json"))
}

// TestSourceIntegration requires a running MinIO instance; it skips itself
// when none is reachable.
func TestSourceIntegration(t *testing.T) {
	endpoint := "localhost:9000"
	bucket := "test-colgo"

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
		Secure: false,
	})
	if err != nil {
		t.Skipf("MinIO client creation failed: %v", err)
	}

	ctx := context.Background()
	if _, err := client.ListBuckets(ctx); err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	payload := []byte(`[{"a": 1}, {"a": 2}]`)
	_, err = client.PutObject(ctx, bucket, "exports/rows.json", bytes.NewReader(payload), int64(len(payload)), minio.PutObjectOptions{})
	require.NoError(t, err)

	src := New(client, bucket, "exports/")
	rows, err := src.Fetch(ctx, "rows.json")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, rows[1]["a"].Equal(scalar.Int(2)))

	_, err = src.Fetch(ctx, "ghost.json")
	assert.ErrorIs(t, err, rowsource.ErrNotFound)
}
