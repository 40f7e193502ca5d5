package arena

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArenaAppendAssignsMonotonicPositions(t *testing.T) {
	ctx := context.Background()
	a := New[int64]()

	for i := 0; i < 1000; i++ {
		pos, err := a.Append(ctx, int64(i*3))
		require.NoError(t, err)
		require.Equal(t, uint32(i), pos, "positions must be assigned from 0 without gaps")
	}

	// Earlier positions stay valid after growth.
	for i := 0; i < 1000; i++ {
		v, err := a.At(uint32(i))
		require.NoError(t, err)
		assert.Equal(t, int64(i*3), v)
	}
	assert.Equal(t, 1000, a.Len())
}

func TestArenaAtOutOfRange(t *testing.T) {
	ctx := context.Background()
	a := New[string]()
	_, err := a.Append(ctx, "only")
	require.NoError(t, err)

	_, err = a.At(1)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = a.At(12345)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

type refusingAcquirer struct {
	granted int64
	limit   int64
}

func (r *refusingAcquirer) AcquireMemory(_ context.Context, amount int64) error {
	if r.granted+amount > r.limit {
		return fmt.Errorf("limit of %d bytes exceeded", r.limit)
	}
	r.granted += amount
	return nil
}

func (r *refusingAcquirer) ReleaseMemory(amount int64) {
	r.granted -= amount
}

func TestArenaGrowthGatedByAcquirer(t *testing.T) {
	ctx := context.Background()
	acq := &refusingAcquirer{limit: minCap * 8} // one chunk of int64 slots, no more
	a := New[int64](WithMemoryAcquirer(acq))

	for i := 0; i < minCap; i++ {
		_, err := a.Append(ctx, int64(i))
		require.NoError(t, err)
	}

	_, err := a.Append(ctx, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllocationFailed)

	// Stored elements survive a refused growth.
	v, err := a.At(minCap - 1)
	require.NoError(t, err)
	assert.Equal(t, int64(minCap-1), v)

	a.Release()
	assert.Zero(t, acq.granted, "release must hand the full reservation back")
	assert.Equal(t, 0, a.Len())
}

func TestArenaElemSizeOverride(t *testing.T) {
	ctx := context.Background()
	acq := &refusingAcquirer{limit: 1 << 30}
	a := New[string](WithMemoryAcquirer(acq), WithElemSize(64))

	_, err := a.Append(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, uint64(minCap*64), a.Stats().BytesReserved)
}
