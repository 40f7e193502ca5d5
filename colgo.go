package colgo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/colgo/internal/arena"
	"github.com/hupe1980/colgo/internal/catalog"
	"github.com/hupe1980/colgo/internal/conv"
	"github.com/hupe1980/colgo/internal/index"
	"github.com/hupe1980/colgo/scalar"
)

// Stats reports storage usage across the whole database.
type Stats struct {
	Tables       int
	IntValues    int
	FloatValues  int
	StringValues int
	Nodes        int
	// MemoryBytes is the arena memory accounted against the resource
	// controller; zero when none is configured.
	MemoryBytes int64
}

// DB is an embedded columnar data store.
//
// All state is in-memory for the process lifetime. A DB is safe for
// concurrent use under the documented discipline: Ingest takes exclusive
// access, lookups and traversals share access and may run concurrently
// with each other.
type DB struct {
	mu     sync.RWMutex
	opts   Options
	logger *Logger

	ints    *arena.Arena[int64]
	floats  *arena.Arena[float64]
	strings *arena.Arena[string]
	builder *index.Builder
	catalog *catalog.Catalog

	closed bool
}

// New creates an empty database.
func New(opts ...Option) (*DB, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	var arenaOpts []arena.Option
	if o.Controller != nil {
		arenaOpts = append(arenaOpts, arena.WithMemoryAcquirer(o.Controller))
	}

	builder, err := index.NewBuilder(arena.New[index.Node](arenaOpts...), o.Radix)
	if err != nil {
		return nil, translateError(err)
	}

	return &DB{
		opts:    o,
		logger:  o.Logger,
		ints:    arena.New[int64](arenaOpts...),
		floats:  arena.New[float64](arenaOpts...),
		strings: arena.New[string](arenaOpts...),
		builder: builder,
		catalog: catalog.New(),
	}, nil
}

// columnState accumulates one column during a single ingestion call.
type columnState struct {
	kind      scalar.Kind
	positions []uint32
	nulls     *roaring.Bitmap
}

// Ingest fetches all rows for the source identifier, builds the typed
// arenas and one index tree per column, and registers the table.
//
// Columns are seeded from the union of all rows: a column may first appear
// in any row, and rows before its first appearance count as nulls, as do
// explicit nulls and absences. A non-null value disagreeing with the
// column's established kind fails with *ErrKindMismatch. Zero fetched rows
// register a table with zero columns. A failed ingestion leaves the table
// unregistered; arena growth performed before the failure stays allocated
// but unreferenced.
func (db *DB) Ingest(ctx context.Context, table, identifier string) error {
	start := time.Now()
	rows, cols, err := db.ingest(ctx, table, identifier)
	db.logger.LogIngest(ctx, table, rows, cols, db.nodeCount(), time.Since(start), err)
	return err
}

func (db *DB) nodeCount() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.builder.Nodes().Len()
}

func (db *DB) ingest(ctx context.Context, table, identifier string) (int, int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return 0, 0, ErrClosed
	}
	if db.opts.Source == nil {
		return 0, 0, ErrNoSource
	}
	if _, err := db.catalog.Lookup(table); err == nil {
		return 0, 0, fmt.Errorf("%w: %s", ErrTableExists, table)
	}

	rows, err := db.opts.Source.Fetch(ctx, identifier)
	if err != nil {
		return 0, 0, err
	}

	states := make(map[string]*columnState)
	var order []string

	for rowIdx, row := range rows {
		ord, err := conv.IntToUint32(rowIdx)
		if err != nil {
			return 0, 0, translateError(arena.ErrPositionSpaceExhausted)
		}

		for _, name := range sortedColumns(row) {
			st := states[name]
			if st == nil {
				st = &columnState{kind: scalar.KindNull, nulls: roaring.New()}
				// Rows before the column's first appearance are nulls.
				st.nulls.AddRange(0, uint64(ord))
				states[name] = st
				order = append(order, name)
			}

			v := row[name]
			if v.IsNull() {
				st.nulls.Add(ord)
				continue
			}
			if st.kind == scalar.KindNull {
				st.kind = v.Kind
			}
			if v.Kind != st.kind {
				return 0, 0, &ErrKindMismatch{Table: table, Column: name, Row: rowIdx, Want: st.kind, Got: v.Kind}
			}

			pos, err := db.appendValue(ctx, v)
			if err != nil {
				return 0, 0, translateError(err)
			}
			st.positions = append(st.positions, pos)
		}

		for _, name := range order {
			if _, ok := row[name]; !ok {
				states[name].nulls.Add(ord)
			}
		}
	}

	tbl := catalog.NewTable(table, len(rows))
	for _, name := range order {
		st := states[name]
		root, err := db.builder.Treeify(ctx, st.positions)
		if err != nil {
			return 0, 0, translateError(err)
		}
		tbl.AddColumn(name, &catalog.Column{
			Kind:  st.kind,
			Root:  root,
			Count: len(st.positions),
			Nulls: st.nulls,
		})
	}

	if err := db.catalog.Register(tbl); err != nil {
		return 0, 0, translateError(err)
	}

	return len(rows), len(order), nil
}

func (db *DB) appendValue(ctx context.Context, v scalar.Value) (uint32, error) {
	switch v.Kind {
	case scalar.KindInt:
		return db.ints.Append(ctx, v.I64)
	case scalar.KindFloat:
		return db.floats.Append(ctx, v.F64)
	case scalar.KindString:
		return db.strings.Append(ctx, v.StringValue())
	default:
		return 0, fmt.Errorf("%w: %s", scalar.ErrUnsupportedKind, v.Kind)
	}
}

// sortedColumns returns the row's column names in lexical order so
// first-appearance ordering is deterministic across runs.
func sortedColumns(row scalar.Row) []string {
	names := make([]string, 0, len(row))
	for name := range row {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ColumnValues traverses a column's index tree and returns its stored
// (non-null) values in original row order.
func (db *DB) ColumnValues(table, column string) ([]scalar.Value, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	col, err := db.column(table, column)
	if err != nil {
		return nil, err
	}

	out := make([]scalar.Value, 0, col.Count)
	err = index.Walk(db.builder.Nodes(), col.Root, col.Count, func(pos uint32) error {
		v, err := db.valueAt(col.Kind, pos)
		if err != nil {
			return err
		}
		out = append(out, v)
		return nil
	})
	if err != nil {
		return nil, translateError(err)
	}
	return out, nil
}

// errStopScan aborts a tree walk when a ScanColumn consumer breaks early.
var errStopScan = errors.New("colgo: scan stopped")

// ScanColumn returns a lazy, restartable traversal of a column. Each
// iteration re-walks the tree from the root; values arrive in original
// row order. The first error (unknown table/column, corrupt index) is
// yielded once and ends the sequence.
func (db *DB) ScanColumn(table, column string) iter.Seq2[scalar.Value, error] {
	return func(yield func(scalar.Value, error) bool) {
		db.mu.RLock()
		defer db.mu.RUnlock()

		col, err := db.column(table, column)
		if err != nil {
			yield(scalar.Value{}, err)
			return
		}

		walkErr := index.Walk(db.builder.Nodes(), col.Root, col.Count, func(pos uint32) error {
			v, err := db.valueAt(col.Kind, pos)
			if err != nil {
				return err
			}
			if !yield(v, nil) {
				return errStopScan
			}
			return nil
		})
		if walkErr != nil && !errors.Is(walkErr, errStopScan) {
			yield(scalar.Value{}, translateError(walkErr))
		}
	}
}

// NullRows returns the row ordinals (0-based) where the column held null
// or was absent. The returned bitmap is a copy.
func (db *DB) NullRows(table, column string) (*roaring.Bitmap, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	col, err := db.column(table, column)
	if err != nil {
		return nil, err
	}
	return col.Nulls.Clone(), nil
}

// ColumnKind returns the scalar kind of a column. An all-null column
// reports scalar.KindNull.
func (db *DB) ColumnKind(table, column string) (scalar.Kind, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	col, err := db.column(table, column)
	if err != nil {
		return scalar.KindInvalid, err
	}
	return col.Kind, nil
}

// Columns returns a table's column names in first-appearance order.
func (db *DB) Columns(table string) ([]string, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	tbl, err := db.catalog.Lookup(table)
	if err != nil {
		return nil, translateError(err)
	}
	return tbl.Columns(), nil
}

// RowCount returns the number of rows ingested into a table.
func (db *DB) RowCount(table string) (int, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	tbl, err := db.catalog.Lookup(table)
	if err != nil {
		return 0, translateError(err)
	}
	return tbl.RowCount, nil
}

// Tables returns the registered table names, sorted.
func (db *DB) Tables() []string {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.catalog.Tables()
}

// Dump writes every column of the table to w: the column name, kind and
// the values in original row order. Diagnostic use only; the format is
// not stable.
func (db *DB) Dump(w io.Writer, table string) error {
	db.mu.RLock()
	defer db.mu.RUnlock()

	tbl, err := db.catalog.Lookup(table)
	if err != nil {
		db.logger.LogDump(context.Background(), table, err)
		return translateError(err)
	}

	if _, err := fmt.Fprintf(w, "table %s (%d rows)\n", tbl.Name, tbl.RowCount); err != nil {
		return err
	}
	for _, name := range tbl.Columns() {
		col, err := tbl.Column(name)
		if err != nil {
			return translateError(err)
		}
		if _, err := fmt.Fprintf(w, "  %s %s:", name, col.Kind); err != nil {
			return err
		}
		walkErr := index.Walk(db.builder.Nodes(), col.Root, col.Count, func(pos uint32) error {
			v, err := db.valueAt(col.Kind, pos)
			if err != nil {
				return err
			}
			if col.Kind == scalar.KindString {
				_, err = fmt.Fprintf(w, " %q", v.StringValue())
			} else {
				_, err = fmt.Fprintf(w, " %s", v)
			}
			return err
		})
		if walkErr != nil {
			return translateError(walkErr)
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	db.logger.LogDump(context.Background(), table, nil)
	return nil
}

// DebugDump writes the table dump to stdout.
func (db *DB) DebugDump(table string) error {
	return db.Dump(os.Stdout, table)
}

// Stats returns storage usage.
func (db *DB) Stats() Stats {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return Stats{
		Tables:       len(db.catalog.Tables()),
		IntValues:    db.ints.Len(),
		FloatValues:  db.floats.Len(),
		StringValues: db.strings.Len(),
		Nodes:        db.builder.Nodes().Len(),
		MemoryBytes:  db.opts.Controller.MemoryUsage(),
	}
}

// Close releases all arenas in bulk. Positions and traversals are invalid
// afterwards. Close is idempotent.
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return nil
	}
	db.closed = true

	db.ints.Release()
	db.floats.Release()
	db.strings.Release()
	db.builder.Nodes().Release()
	return nil
}

// column resolves a table/column pair under a held read lock.
func (db *DB) column(table, column string) (*catalog.Column, error) {
	if db.closed {
		return nil, ErrClosed
	}
	tbl, err := db.catalog.Lookup(table)
	if err != nil {
		return nil, translateError(err)
	}
	col, err := tbl.Column(column)
	if err != nil {
		return nil, translateError(err)
	}
	return col, nil
}

// valueAt dereferences an arena position into the arena of the given kind.
func (db *DB) valueAt(kind scalar.Kind, pos uint32) (scalar.Value, error) {
	switch kind {
	case scalar.KindInt:
		v, err := db.ints.At(pos)
		if err != nil {
			return scalar.Value{}, err
		}
		return scalar.Int(v), nil
	case scalar.KindFloat:
		v, err := db.floats.At(pos)
		if err != nil {
			return scalar.Value{}, err
		}
		return scalar.Float(v), nil
	case scalar.KindString:
		v, err := db.strings.At(pos)
		if err != nil {
			return scalar.Value{}, err
		}
		return scalar.String(v), nil
	default:
		return scalar.Value{}, fmt.Errorf("%w: traversal of %s column", ErrCorruptIndex, kind)
	}
}
