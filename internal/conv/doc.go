// Package conv provides safe integer type conversion utilities.
//
// These functions perform bounds checking to prevent integer overflow
// when converting between Go's int (platform-dependent) and the
// fixed-width types used for arena positions and row ordinals.
//
// For conversions that are provably safe by domain constraints (e.g.
// loop indices over bounded slices), use direct type casts instead.
package conv
