package rowsource

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/colgo/scalar"
)

func TestMemorySource(t *testing.T) {
	ctx := context.Background()
	src := NewMemorySource()
	src.Put("q1", []byte(`{"a": 1}`+"\n"+`{"a": 2}`))

	rows, err := src.Fetch(ctx, "q1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, rows[1]["a"].Equal(scalar.Int(2)))

	_, err = src.Fetch(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalSource(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rows.json"), []byte(`[{"a": "x"}]`), 0o644))

	src := NewLocalSource(dir)
	rows, err := src.Fetch(ctx, "rows.json")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0]["a"].Equal(scalar.String("x")))

	_, err = src.Fetch(ctx, "nope.json")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalSourceGzip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	f, err := os.Create(filepath.Join(dir, "rows.json.gz"))
	require.NoError(t, err)
	zw := gzip.NewWriter(f)
	_, err = zw.Write([]byte(`{"n": 4.25}`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	rows, err := NewLocalSource(dir).Fetch(ctx, "rows.json.gz")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0]["n"].Equal(scalar.Float(4.25)))
}

func TestExecSource(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	ctx := context.Background()

	t.Run("rows from stdout", func(t *testing.T) {
		src := NewExecSource("/bin/sh", "-c", `printf '{"a": 1}\n{"a": 2}\n'`)
		rows, err := src.Fetch(ctx, "ignored")
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.True(t, rows[0]["a"].Equal(scalar.Int(1)))
	})

	t.Run("non-zero exit", func(t *testing.T) {
		src := NewExecSource("/bin/sh", "-c", `echo boom >&2; exit 3`)
		_, err := src.Fetch(ctx, "ignored")
		var perr *ErrProcess
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, 3, perr.ExitCode)
		assert.Contains(t, perr.Stderr, "boom")
	})

	t.Run("spawn failure", func(t *testing.T) {
		src := NewExecSource("/definitely/not/a/binary")
		_, err := src.Fetch(ctx, "q")
		var perr *ErrProcess
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, -1, perr.ExitCode)
	})

	t.Run("malformed stdout", func(t *testing.T) {
		src := NewExecSource("/bin/sh", "-c", `printf 'not rows'`)
		_, err := src.Fetch(ctx, "ignored")
		var derr *ErrDecode
		require.ErrorAs(t, err, &derr)
	})

	t.Run("malformed prefix on large output", func(t *testing.T) {
		// The engine keeps writing well past the pipe buffer after the
		// malformed prefix; Fetch must drain it and return, not hang.
		src := NewExecSource("/bin/sh", "-c",
			`printf ')('; head -c 1000000 /dev/zero | tr '\0' a`)

		fctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		_, err := src.Fetch(fctx, "ignored")
		require.NoError(t, fctx.Err(), "Fetch did not return before the deadline")
		var derr *ErrDecode
		require.ErrorAs(t, err, &derr)
	})
}
