// Package rowsource abstracts how raw tabular rows reach the store.
//
// A Source yields the complete, ordered row set for a source identifier in
// one blocking round trip; there is no streaming or partial delivery.
// Implementations cover the out-of-process query engine (ExecSource),
// local files with transparent decompression (LocalSource), in-memory
// blobs for tests (MemorySource), and object/row stores in the s3, minio
// and dynamodb subpackages.
package rowsource

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/hupe1980/colgo/scalar"
)

// ErrNotFound is returned when a source identifier does not exist.
//
// Implementations should return an error satisfying
// `errors.Is(err, ErrNotFound)`. The default maps to os.ErrNotExist.
var ErrNotFound = os.ErrNotExist

// ErrUnavailable is returned when the backing engine or service cannot be
// reached at all, as opposed to producing malformed output (ErrDecode).
var ErrUnavailable = errors.New("rowsource: source unavailable")

// ErrProcess indicates the external query engine could not be spawned or
// exited non-zero.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrProcess struct {
	Cmd      string
	ExitCode int // -1 when the process never ran
	Stderr   string
	cause    error
}

func (e *ErrProcess) Error() string {
	if e.ExitCode < 0 {
		return fmt.Sprintf("rowsource: %s could not be invoked", e.Cmd)
	}
	if e.Stderr != "" {
		return fmt.Sprintf("rowsource: %s exited with code %d: %s", e.Cmd, e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("rowsource: %s exited with code %d", e.Cmd, e.ExitCode)
}

func (e *ErrProcess) Unwrap() error { return e.cause }

// ErrDecode indicates the fetched payload was not well-formed row data.
// Row is 1-based; 0 means the failure preceded any row.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDecode struct {
	Row   int
	cause error
}

func (e *ErrDecode) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("rowsource: malformed row %d: %v", e.Row, e.cause)
	}
	return fmt.Sprintf("rowsource: malformed row data: %v", e.cause)
}

func (e *ErrDecode) Unwrap() error { return e.cause }

// NewDecodeError builds an *ErrDecode; subpackage sources use it to report
// malformed rows with the same taxonomy as the in-package decoders.
func NewDecodeError(row int, cause error) *ErrDecode {
	return &ErrDecode{Row: row, cause: cause}
}

// Source fetches the full ordered row set for a source identifier.
type Source interface {
	Fetch(ctx context.Context, identifier string) ([]scalar.Row, error)
}
