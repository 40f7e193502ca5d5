// Package catalog keeps the in-memory registry of ingested tables and
// their per-column views.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/google/uuid"

	"github.com/hupe1980/colgo/internal/index"
	"github.com/hupe1980/colgo/scalar"
)

var (
	// ErrTableNotFound is returned when a table name is not registered.
	ErrTableNotFound = errors.New("catalog: table not found")
	// ErrColumnNotFound is returned when a column name is absent from a table.
	ErrColumnNotFound = errors.New("catalog: column not found")
	// ErrTableExists is returned when registering a name that is taken.
	ErrTableExists = errors.New("catalog: table already exists")
)

// Column is the view of one column within one table: its scalar kind, the
// tagged root of its index tree, the stored (non-null) value count and the
// set of row ordinals where the column was null or absent.
type Column struct {
	Kind  scalar.Kind
	Root  index.Root
	Count int
	Nulls *roaring.Bitmap
}

// Table is a named set of column views. RowCount is the number of ingested
// rows; individual columns may store fewer values than that when rows held
// nulls.
type Table struct {
	ID       uuid.UUID
	Name     string
	RowCount int

	columns map[string]*Column
	order   []string
}

// NewTable creates an empty table view.
func NewTable(name string, rowCount int) *Table {
	return &Table{
		ID:       uuid.New(),
		Name:     name,
		RowCount: rowCount,
		columns:  make(map[string]*Column),
	}
}

// AddColumn binds a column view under the given name, keeping
// first-appearance order for deterministic iteration.
func (t *Table) AddColumn(name string, col *Column) {
	if _, ok := t.columns[name]; !ok {
		t.order = append(t.order, name)
	}
	t.columns[name] = col
}

// Column returns the view bound under name.
func (t *Table) Column(name string) (*Column, error) {
	col, ok := t.columns[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrColumnNotFound, t.Name, name)
	}
	return col, nil
}

// Columns returns the column names in first-appearance order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Catalog maps table names to their views.
//
// Registration is atomic from the caller's perspective: a table becomes
// visible with all of its columns or not at all.
type Catalog struct {
	mu     sync.RWMutex
	tables map[string]*Table
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{
		tables: make(map[string]*Table),
	}
}

// Register publishes a fully built table. Re-registering an existing name
// is rejected with ErrTableExists.
func (c *Catalog) Register(t *Table) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.tables[t.Name]; ok {
		return fmt.Errorf("%w: %s", ErrTableExists, t.Name)
	}
	c.tables[t.Name] = t
	return nil
}

// Lookup returns the table registered under name.
func (c *Catalog) Lookup(name string) (*Table, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	return t, nil
}

// Tables returns the registered table names, sorted.
func (c *Catalog) Tables() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, 0, len(c.tables))
	for name := range c.tables {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
