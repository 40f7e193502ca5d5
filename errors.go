package colgo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/colgo/internal/arena"
	"github.com/hupe1980/colgo/internal/catalog"
	"github.com/hupe1980/colgo/internal/index"
	"github.com/hupe1980/colgo/scalar"
)

var (
	// ErrClosed is returned when the database has been closed.
	ErrClosed = errors.New("colgo: database is closed")
	// ErrNoSource is returned by Ingest when no row source is configured.
	ErrNoSource = errors.New("colgo: no row source configured")
	// ErrInvalidRadix is returned for an unusable branching factor.
	ErrInvalidRadix = errors.New("colgo: invalid radix")
	// ErrTableNotFound is returned when a table name is not registered.
	ErrTableNotFound = errors.New("colgo: table not found")
	// ErrColumnNotFound is returned when a column is absent from a table.
	ErrColumnNotFound = errors.New("colgo: column not found")
	// ErrTableExists is returned when ingesting into a name that is taken.
	ErrTableExists = errors.New("colgo: table already exists")
	// ErrAllocationFailed is returned when arena growth is refused.
	ErrAllocationFailed = errors.New("colgo: allocation failed")
	// ErrCorruptIndex is returned when a column tree reference does not
	// resolve; it indicates internal inconsistency and is never retried.
	ErrCorruptIndex = errors.New("colgo: corrupt column index")
)

// ErrKindMismatch indicates a column whose values are not uniformly typed.
type ErrKindMismatch struct {
	Table  string
	Column string
	Row    int // 0-based row ordinal of the offending value
	Want   scalar.Kind
	Got    scalar.Kind
}

func (e *ErrKindMismatch) Error() string {
	return fmt.Sprintf("colgo: kind mismatch in %s.%s: row %d holds %s, column is %s",
		e.Table, e.Column, e.Row, e.Got, e.Want)
}

// translateError maps internal errors onto the public contract. Rowsource
// errors already are public taxonomy and pass through unchanged.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, catalog.ErrTableNotFound):
		return fmt.Errorf("%w: %w", ErrTableNotFound, err)
	case errors.Is(err, catalog.ErrColumnNotFound):
		return fmt.Errorf("%w: %w", ErrColumnNotFound, err)
	case errors.Is(err, catalog.ErrTableExists):
		return fmt.Errorf("%w: %w", ErrTableExists, err)
	case errors.Is(err, index.ErrInvalidRadix):
		return fmt.Errorf("%w: %w", ErrInvalidRadix, err)
	case errors.Is(err, index.ErrCorruptIndex):
		return fmt.Errorf("%w: %w", ErrCorruptIndex, err)
	case errors.Is(err, arena.ErrAllocationFailed),
		errors.Is(err, arena.ErrPositionSpaceExhausted):
		return fmt.Errorf("%w: %w", ErrAllocationFailed, err)
	case errors.Is(err, arena.ErrOutOfRange):
		return fmt.Errorf("%w: %w", ErrCorruptIndex, err)
	}

	return err
}
