// Package index builds and walks the positional index tree kept per column.
//
// The tree is not a search tree: it never orders by value. Treeify splits an
// ordered arena-position list into radix contiguous groups and recurses, so
// a depth-first walk regenerates exactly the original order. Nodes live
// append-only in one shared node arena across all columns and tables; a
// node's identity is its arena position.
package index

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/colgo/internal/arena"
)

const (
	// DefaultRadix is the default branching factor.
	DefaultRadix = 4
	// MinRadix is the smallest useful branching factor.
	MinRadix = 2
)

var (
	// ErrCorruptIndex is returned when a tree reference does not resolve.
	ErrCorruptIndex = errors.New("index: corrupt tree reference")
	// ErrInvalidRadix is returned for a branching factor below MinRadix.
	ErrInvalidRadix = errors.New("index: invalid radix")
)

// Child is one slot of a tree node. If Leaf is set, Ref is a position in
// the typed value arena of the column's kind; otherwise Ref is a node
// arena position.
type Child struct {
	Ref  uint32
	Leaf bool
}

// Node is a fixed-arity tree node with radix child slots.
type Node struct {
	Children []Child
}

// RootKind tags what a column's root reference denotes.
type RootKind uint8

const (
	// RootEmpty marks a column with no stored values.
	RootEmpty RootKind = iota
	// RootLeaf marks a single-value column; Ref is the value's arena position.
	RootLeaf
	// RootNode marks a column with two or more values; Ref is a node position.
	RootNode
)

// Root is the explicit, tagged root reference of one column tree.
//
// Tagging removes the classic ambiguity where a bare root integer means an
// arena position for 0- and 1-row columns but a node index otherwise.
type Root struct {
	Kind RootKind
	Ref  uint32
}

func (r Root) String() string {
	switch r.Kind {
	case RootEmpty:
		return "empty"
	case RootLeaf:
		return fmt.Sprintf("leaf(%d)", r.Ref)
	case RootNode:
		return fmt.Sprintf("node(%d)", r.Ref)
	default:
		return fmt.Sprintf("invalid(%d,%d)", r.Kind, r.Ref)
	}
}

// Builder treeifies position lists into the shared node arena.
type Builder struct {
	nodes *arena.Arena[Node]
	radix int
}

// NewBuilder creates a Builder writing into the given node arena.
// radix <= 0 selects DefaultRadix.
func NewBuilder(nodes *arena.Arena[Node], radix int) (*Builder, error) {
	if radix <= 0 {
		radix = DefaultRadix
	}
	if radix < MinRadix {
		return nil, fmt.Errorf("%w: %d (min %d)", ErrInvalidRadix, radix, MinRadix)
	}
	return &Builder{nodes: nodes, radix: radix}, nil
}

// Radix returns the branching factor.
func (b *Builder) Radix() int {
	return b.radix
}

// Nodes returns the node arena the builder appends into.
func (b *Builder) Nodes() *arena.Arena[Node] {
	return b.nodes
}

// Treeify indexes an ordered list of arena positions.
//
// Zero positions yield an empty root, a single position is returned as a
// direct leaf root (never wrapped in a node), and longer lists become a
// balanced multiway tree of depth ceil(log_radix(n)). The only failure
// mode is node allocation.
func (b *Builder) Treeify(ctx context.Context, positions []uint32) (Root, error) {
	switch len(positions) {
	case 0:
		return Root{Kind: RootEmpty}, nil
	case 1:
		return Root{Kind: RootLeaf, Ref: positions[0]}, nil
	}
	ref, err := b.build(ctx, positions)
	if err != nil {
		return Root{}, err
	}
	return Root{Kind: RootNode, Ref: ref}, nil
}

func (b *Builder) build(ctx context.Context, positions []uint32) (uint32, error) {
	node := Node{Children: make([]Child, b.radix)}
	for i, group := range partition(positions, b.radix) {
		switch len(group) {
		case 0:
			// Trailing slot past the consumed range. The zero ref is a
			// sentinel; count-limited walks never dereference it.
			node.Children[i] = Child{Ref: 0, Leaf: true}
		case 1:
			node.Children[i] = Child{Ref: group[0], Leaf: true}
		default:
			ref, err := b.build(ctx, group)
			if err != nil {
				return 0, err
			}
			node.Children[i] = Child{Ref: ref, Leaf: false}
		}
	}
	return b.nodes.Append(ctx, node)
}

// partition splits positions into radix contiguous, order-preserving groups
// of size ceil(n/radix) with clamped offsets; only trailing groups can be
// empty.
func partition(positions []uint32, radix int) [][]uint32 {
	n := len(positions)
	piece := (n + radix - 1) / radix
	groups := make([][]uint32, radix)
	for i := range groups {
		lo := min(i*piece, n)
		hi := min((i+1)*piece, n)
		groups[i] = positions[lo:hi]
	}
	return groups
}
