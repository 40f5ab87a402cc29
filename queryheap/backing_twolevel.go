package queryheap

// TwoLevelBacking overlays a dense ArrayBacking for node ids below denseLimit
// over a sparse MapBacking for the rest. It fits graphs where a fixed
// numbering places border nodes (the ones a bounded search actually
// touches) at the low end of the id space, so the hot path stays O(1)
// array-indexed while the long tail of interior nodes costs nothing until
// touched.
type TwoLevelBacking struct {
	dense      *ArrayBacking
	sparse     *MapBacking
	denseLimit int
}

// NewTwoLevelBacking builds a backing with a dense range [0, denseLimit).
func NewTwoLevelBacking(denseLimit int) *TwoLevelBacking {
	return &TwoLevelBacking{
		dense:      NewArrayBacking(denseLimit),
		sparse:     NewMapBacking(),
		denseLimit: denseLimit,
	}
}

// Get implements IndexBacking.
func (b *TwoLevelBacking) Get(node NodeID) int32 {
	if int(node) < b.denseLimit {
		return b.dense.Get(node)
	}
	return b.sparse.Get(node)
}

// Set implements IndexBacking.
func (b *TwoLevelBacking) Set(node NodeID, slot int32) {
	if int(node) < b.denseLimit {
		b.dense.Set(node, slot)
		return
	}
	b.sparse.Set(node, slot)
}

// Reset implements IndexBacking.
func (b *TwoLevelBacking) Reset() {
	b.dense.Reset()
	b.sparse.Reset()
}
