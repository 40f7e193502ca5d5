package index

import (
	"fmt"

	"github.com/hupe1980/colgo/internal/arena"
)

// Walk emits the column's arena positions in original row order.
//
// count is the number of stored values under root; the walk stops after
// emitting count positions, which keeps trailing empty leaf slots from ever
// being dereferenced. fn errors abort the walk and are returned unchanged.
// Unresolvable node references surface as ErrCorruptIndex.
func Walk(nodes *arena.Arena[Node], root Root, count int, fn func(pos uint32) error) error {
	if count <= 0 {
		return nil
	}
	switch root.Kind {
	case RootEmpty:
		return nil
	case RootLeaf:
		return fn(root.Ref)
	case RootNode:
		w := walker{nodes: nodes, remaining: count, fn: fn}
		if err := w.node(root.Ref); err != nil {
			return err
		}
		if w.remaining > 0 {
			return fmt.Errorf("%w: tree under node %d holds %d fewer values than recorded", ErrCorruptIndex, root.Ref, w.remaining)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown root kind %d", ErrCorruptIndex, root.Kind)
	}
}

type walker struct {
	nodes     *arena.Arena[Node]
	remaining int
	fn        func(pos uint32) error
}

func (w *walker) node(ref uint32) error {
	n, err := w.nodes.At(ref)
	if err != nil {
		return fmt.Errorf("%w: node %d unresolvable: %v", ErrCorruptIndex, ref, err)
	}
	for _, c := range n.Children {
		if w.remaining == 0 {
			return nil
		}
		if c.Leaf {
			if err := w.fn(c.Ref); err != nil {
				return err
			}
			w.remaining--
			continue
		}
		if err := w.node(c.Ref); err != nil {
			return err
		}
	}
	return nil
}
