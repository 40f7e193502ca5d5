package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/colgo/scalar"
)

func TestRowsDeterministic(t *testing.T) {
	shape := RowShape{
		IntColumns:    []string{"id"},
		StringColumns: []string{"name"},
		NullRate:      0.2,
	}

	a := NewRNG(42).Rows(100, shape)
	b := NewRNG(42).Rows(100, shape)

	require.Len(t, a, 100)
	assert.Equal(t, a, b)
}

func TestPositionsAscending(t *testing.T) {
	pos := NewRNG(1).Positions(200)

	require.Len(t, pos, 200)
	for i := 1; i < len(pos); i++ {
		assert.Greater(t, pos[i], pos[i-1])
	}
}

func TestNonNull(t *testing.T) {
	rows := []scalar.Row{
		{"a": scalar.Int(1)},
		{"a": scalar.Null()},
		{"b": scalar.Int(7)},
		{"a": scalar.Int(3)},
	}

	got := NonNull(rows, "a")
	assert.Equal(t, []scalar.Value{scalar.Int(1), scalar.Int(3)}, got)
}
