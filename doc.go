// Package colgo provides an embedded, in-process columnar data store for Go.
//
// Colgo ingests row-oriented tabular data from an external producer,
// reorganizes it into typed column arenas and builds a positional multiway
// index tree over each column, so column values can be regenerated in
// original row order without rescanning rows:
//
//   - Typed value arenas (int64, float64, string) plus one shared tree-node
//     arena, all append-only and position-addressed
//   - Balanced multiway index trees with a configurable branching factor
//   - Pluggable row sources: subprocess query engines, local files
//     (with transparent gzip/lz4), S3, DynamoDB and MinIO
//   - Null tracking per column with Roaring Bitmaps
//   - Memory and IO limits via a resource controller
//
// # Quick Start
//
//	src := rowsource.NewMemorySource()
//	src.Put("people", []byte(`{"name": "ada", "age": 36}
//	{"name": "grace", "age": 45}`))
//
//	db, err := colgo.New(
//	    colgo.WithSource(src),
//	    colgo.WithRadix(4),
//	)
//	if err != nil {
//	    panic(err)
//	}
//	defer db.Close()
//
//	ctx := context.Background()
//	if err := db.Ingest(ctx, "people", "people"); err != nil {
//	    panic(err)
//	}
//
//	ages, err := db.ColumnValues("people", "age")
//
// Traversing a column walks its index tree depth-first; concatenating the
// emitted values reproduces the ingested order exactly.
//
// # Scope
//
// Colgo indexes for ordered regeneration, not for value lookup: the tree
// partitions by position, never by value. Query execution, persistence and
// multi-writer concurrency are out of scope; one ingestion call per table
// name, re-ingestion is rejected.
package colgo
