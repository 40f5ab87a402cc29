package queryheap

import "github.com/katalvlaran/crp/mlgraph"

// NodeID and Weight are the heap's key types, aliased to mlgraph's so a
// caller can pass graph node ids and edge weights directly.
type (
	NodeID = mlgraph.NodeID
	Weight = mlgraph.EdgeWeight
)

// arity is the heap's branching factor.
const arity = 4

// Slot sentinels stored by an IndexBacking. Any non-negative value is a live
// index into the heap's entry array.
const (
	slotNotInserted int32 = -1
	slotRemoved     int32 = -2
)

// IndexBacking maps a node id to its current slot in a Heap's entry array,
// or one of the two sentinels above. Implementations need not be safe for
// concurrent use; a Heap (and its backing) is thread-local by convention.
type IndexBacking interface {
	// Get returns the node's stored slot, or slotNotInserted if it has no
	// record yet.
	Get(node NodeID) int32
	// Set records node's slot (a live index, or slotRemoved).
	Set(node NodeID, slot int32)
	// Reset forgets every node's record, as if freshly constructed.
	Reset()
}

// heapEntry is one live node's record inside a Heap's backing array.
type heapEntry[D any] struct {
	node   NodeID
	weight Weight
	data   D
}

// Heap is a 4-ary min-heap of (node, weight, data) triples, ordered by
// weight, with O(1) membership and per-node data lookup via an
// IndexBacking.
type Heap[D any] struct {
	entries []heapEntry[D]
	backing IndexBacking
}
