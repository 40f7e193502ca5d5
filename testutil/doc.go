// Package testutil provides testing utilities for colgo.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded, thread-safe random source and generators for
// row batches with configurable column kinds and null rates.
//
//	rng := testutil.NewRNG(seed)
//	rows := rng.Rows(1000, testutil.RowShape{
//		IntColumns:    []string{"id"},
//		StringColumns: []string{"name"},
//		NullRate:      0.1,
//	})
package testutil
