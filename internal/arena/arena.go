// Package arena provides append-only, position-addressed storage for
// column values and index tree nodes.
//
// Positions are uint32, assigned from 0 and stable for the arena's
// lifetime: appends never invalidate or reuse earlier positions. Arenas
// are owned by the database, grown only during ingestion and released in
// bulk at teardown; nothing frees elements individually.
//
// # Concurrency Model
//
// An Arena is not safe for concurrent mutation. The database serializes
// ingestion; reads (At, Len) are safe concurrently with each other once
// ingestion of the owning table has finished.
package arena

import (
	"context"
	"errors"
	"fmt"
	"math"
	"unsafe"
)

// MemoryAcquirer is an interface for reserving memory before arena growth.
type MemoryAcquirer interface {
	AcquireMemory(ctx context.Context, amount int64) error
	ReleaseMemory(amount int64)
}

var (
	// ErrAllocationFailed is returned when arena growth is refused.
	ErrAllocationFailed = errors.New("arena: allocation failed")
	// ErrPositionSpaceExhausted is returned when the uint32 position space is full.
	ErrPositionSpaceExhausted = errors.New("arena: position space exhausted")
	// ErrOutOfRange is returned when a position does not resolve to a stored element.
	ErrOutOfRange = errors.New("arena: position out of range")
)

// minCap is the slot count of the first allocation.
const minCap = 64

// Stats tracks arena usage.
type Stats struct {
	Len           int    // elements stored
	Cap           int    // slots reserved
	BytesReserved uint64 // slot memory accounted against the acquirer
}

// Arena is an append-only typed store addressed by position.
type Arena[T any] struct {
	vals     []T
	elemSize int64
	acquirer MemoryAcquirer
	reserved int64
}

// Option is a configuration option for an Arena.
type Option func(*config)

type config struct {
	acquirer MemoryAcquirer
	elemSize int64
}

// WithMemoryAcquirer sets the memory acquirer consulted before growth.
func WithMemoryAcquirer(acquirer MemoryAcquirer) Option {
	return func(c *config) {
		c.acquirer = acquirer
	}
}

// WithElemSize overrides the per-slot byte size used for memory accounting.
// The default is the in-memory size of T, which for strings counts the
// header only.
func WithElemSize(size int64) Option {
	return func(c *config) {
		if size > 0 {
			c.elemSize = size
		}
	}
}

// New creates an empty arena.
func New[T any](opts ...Option) *Arena[T] {
	var zero T
	cfg := config{
		elemSize: int64(unsafe.Sizeof(zero)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Arena[T]{
		elemSize: cfg.elemSize,
		acquirer: cfg.acquirer,
	}
}

// Append stores v and returns its position.
//
// Growth is gated by the acquirer (if any); a refused reservation surfaces
// as ErrAllocationFailed with the acquirer's error as the cause.
func (a *Arena[T]) Append(ctx context.Context, v T) (uint32, error) {
	if len(a.vals) >= math.MaxUint32 {
		return 0, ErrPositionSpaceExhausted
	}
	if len(a.vals) == cap(a.vals) {
		if err := a.grow(ctx); err != nil {
			return 0, err
		}
	}
	pos := uint32(len(a.vals))
	a.vals = append(a.vals, v)
	return pos, nil
}

func (a *Arena[T]) grow(ctx context.Context) error {
	newCap := cap(a.vals) * 2
	if newCap < minCap {
		newCap = minCap
	}
	delta := int64(newCap-cap(a.vals)) * a.elemSize
	if a.acquirer != nil {
		if err := a.acquirer.AcquireMemory(ctx, delta); err != nil {
			return fmt.Errorf("%w: %w", ErrAllocationFailed, err)
		}
	}
	grown := make([]T, len(a.vals), newCap)
	copy(grown, a.vals)
	a.vals = grown
	a.reserved += delta
	return nil
}

// At returns the element at pos.
func (a *Arena[T]) At(pos uint32) (T, error) {
	if int(pos) >= len(a.vals) {
		var zero T
		return zero, fmt.Errorf("%w: %d of %d", ErrOutOfRange, pos, len(a.vals))
	}
	return a.vals[pos], nil
}

// Len returns the number of stored elements.
func (a *Arena[T]) Len() int {
	return len(a.vals)
}

// Stats returns current usage.
func (a *Arena[T]) Stats() Stats {
	return Stats{
		Len:           len(a.vals),
		Cap:           cap(a.vals),
		BytesReserved: uint64(a.reserved),
	}
}

// Release drops all storage and returns the reservation to the acquirer.
// Positions handed out earlier are invalid afterwards; the arena must not
// be reused.
func (a *Arena[T]) Release() {
	if a.acquirer != nil && a.reserved > 0 {
		a.acquirer.ReleaseMemory(a.reserved)
	}
	a.reserved = 0
	a.vals = nil
}
