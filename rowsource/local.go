package rowsource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hupe1980/colgo/resource"
	"github.com/hupe1980/colgo/scalar"
)

// LocalSource reads row payloads from files under a root directory.
// Identifiers name files relative to the root; .gz and .lz4 payloads are
// decompressed transparently.
type LocalSource struct {
	dir string
	rc  *resource.Controller
}

// NewLocalSource creates a source rooted at dir.
func NewLocalSource(dir string) *LocalSource {
	return &LocalSource{dir: dir}
}

// WithController sets a resource controller used to rate limit file reads.
func (s *LocalSource) WithController(rc *resource.Controller) *LocalSource {
	s.rc = rc
	return s
}

// Fetch reads and decodes the file named by identifier.
func (s *LocalSource) Fetch(ctx context.Context, identifier string) ([]scalar.Row, error) {
	name := filepath.Join(s.dir, filepath.Clean("/"+identifier))

	f, err := os.Open(name)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, identifier)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrUnavailable, identifier, err)
	}
	defer func() { _ = f.Close() }()

	r, err := NewDecompressingReader(resource.NewRateLimitedReader(ctx, f, s.rc), name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	return DecodeRows(r)
}
