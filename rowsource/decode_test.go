package rowsource

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/colgo/scalar"
)

func TestDecodeRowsNDJSON(t *testing.T) {
	input := `{"a": 1, "b": "x"}
{"a": 2, "b": "y"}
{"a": null}`

	rows, err := DecodeRows(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.True(t, rows[0]["a"].Equal(scalar.Int(1)))
	assert.True(t, rows[1]["b"].Equal(scalar.String("y")))
	assert.True(t, rows[2]["a"].IsNull())
}

func TestDecodeRowsArray(t *testing.T) {
	input := ` [ {"v": 1.5}, {"v": 2} ] `

	rows, err := DecodeRows(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, rows[0]["v"].Equal(scalar.Float(1.5)))
	assert.True(t, rows[1]["v"].Equal(scalar.Int(2)))
}

func TestDecodeRowsEmptyPayload(t *testing.T) {
	rows, err := DecodeRows(strings.NewReader("  \n "))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestDecodeRowsMalformed(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantRow int
	}{
		{name: "truncated object", input: `{"a": 1}{"b": `, wantRow: 2},
		{name: "bool tag", input: `{"a": true}`, wantRow: 1},
		{name: "nested object tag", input: `[{"a": {"x":1}}]`, wantRow: 1},
		{name: "bare garbage", input: `)(`, wantRow: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRows(strings.NewReader(tt.input))
			var derr *ErrDecode
			require.ErrorAs(t, err, &derr)
			assert.Equal(t, tt.wantRow, derr.Row)
		})
	}
}

func TestDecodeRowsArrayRejectsTrailingData(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "garbage after array", input: `[{"a": 1}] garbage`},
		{name: "second value after array", input: `[{"a": 1}] {"b": 2}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRows(strings.NewReader(tt.input))
			var derr *ErrDecode
			require.ErrorAs(t, err, &derr)
		})
	}

	// Trailing whitespace is still fine.
	rows, err := DecodeRows(strings.NewReader("[{\"a\": 1}] \n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestDecodeRowsErrorsAreNotProcessErrors(t *testing.T) {
	_, err := DecodeRows(strings.NewReader(`nonsense`))
	require.Error(t, err)
	var perr *ErrProcess
	assert.False(t, errors.As(err, &perr), "decode failures must stay distinguishable from process failures")
}

func TestNewDecompressingReaderGzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(`{"a": 1}`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	r, err := NewDecompressingReader(&buf, "rows.json.gz")
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	rows, err := DecodeRows(r)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0]["a"].Equal(scalar.Int(1)))
}

func TestNewDecompressingReaderLZ4(t *testing.T) {
	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	_, err := zw.Write([]byte(`{"a": "z"}`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	r, err := NewDecompressingReader(&buf, "rows.json.lz4")
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	rows, err := DecodeRows(r)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0]["a"].Equal(scalar.String("z")))
}
