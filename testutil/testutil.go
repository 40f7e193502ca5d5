package testutil

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"

	"github.com/hupe1980/colgo/scalar"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), // nolint gosec
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Positions returns n distinct pseudo-random arena positions in
// ascending order, mimicking the monotonic output of an ingestion pass.
func (r *RNG) Positions(n int) []uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]uint32, n)
	next := uint32(0)
	for i := range out {
		next += uint32(r.rand.Intn(16)) + 1
		out[i] = next
	}
	return out
}

// RowShape describes the columns of a generated row batch.
type RowShape struct {
	IntColumns    []string
	FloatColumns  []string
	StringColumns []string

	// NullRate is the probability in [0, 1] that any given cell is null.
	NullRate float64
}

// Rows generates num rows matching the shape. Values are deterministic
// for a given seed and call sequence.
func (r *RNG) Rows(num int, shape RowShape) []scalar.Row {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows := make([]scalar.Row, num)
	for i := range rows {
		row := make(scalar.Row)
		for _, name := range shape.IntColumns {
			if r.rand.Float64() < shape.NullRate {
				row[name] = scalar.Null()
				continue
			}
			row[name] = scalar.Int(r.rand.Int63n(1 << 32))
		}
		for _, name := range shape.FloatColumns {
			if r.rand.Float64() < shape.NullRate {
				row[name] = scalar.Null()
				continue
			}
			row[name] = scalar.Float(r.rand.Float64() * 1000)
		}
		for _, name := range shape.StringColumns {
			if r.rand.Float64() < shape.NullRate {
				row[name] = scalar.Null()
				continue
			}
			row[name] = scalar.String(fmt.Sprintf("v-%08x", r.rand.Uint32()))
		}
		rows[i] = row
	}
	return rows
}

// RowsJSON generates num rows matching the shape and encodes them as a
// JSON array, the payload format row sources decode.
func (r *RNG) RowsJSON(num int, shape RowShape) []byte {
	rows := r.Rows(num, shape)

	data, err := json.Marshal(rows)
	if err != nil {
		panic(err)
	}
	return data
}

// NonNull extracts the non-null values of one column in row order,
// the ground truth a column traversal must reproduce.
func NonNull(rows []scalar.Row, column string) []scalar.Value {
	var out []scalar.Value
	for _, row := range rows {
		if v, ok := row[column]; ok && !v.IsNull() {
			out = append(out, v)
		}
	}
	return out
}
