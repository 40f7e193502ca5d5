package rowsource

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/colgo/scalar"
)

// MemorySource keeps raw row payloads in memory, keyed by identifier.
// It exists for tests and embedding scenarios without any external engine.
// Thread-safe for concurrent puts and fetches.
type MemorySource struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemorySource creates an empty in-memory source.
func NewMemorySource() *MemorySource {
	return &MemorySource{
		blobs: make(map[string][]byte),
	}
}

// Put stores a raw payload under the identifier, replacing any previous one.
func (m *MemorySource) Put(identifier string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := make([]byte, len(data))
	copy(copied, data)
	m.blobs[identifier] = copied
}

// Fetch decodes the payload stored under identifier.
func (m *MemorySource) Fetch(_ context.Context, identifier string) ([]scalar.Row, error) {
	m.mu.RLock()
	data, ok := m.blobs[identifier]
	m.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, identifier)
	}
	return DecodeRows(bytes.NewReader(data))
}
