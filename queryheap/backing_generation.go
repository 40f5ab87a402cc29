package queryheap

// GenerationBacking is an ArrayBacking augmented with a generation tag per
// slot, making Clear O(1) amortized: instead of rewriting every slot,
// Reset simply bumps a generation counter, and a stale slot (tagged with an
// older generation) reads as not-inserted without being touched.
//
// The generation counter is a uint16 starting at 1; after 65535 Reset calls it would wrap
// and collide with genuinely current entries, so on wraparound the backing
// falls back to a real O(N) wipe once, then resumes the O(1) path.
type GenerationBacking struct {
	slots   []int32
	gens    []uint16
	current uint16
}

// NewGenerationBacking allocates a backing sized for node ids in
// [0, capacity).
func NewGenerationBacking(capacity int) *GenerationBacking {
	return &GenerationBacking{
		slots:   make([]int32, capacity),
		gens:    make([]uint16, capacity),
		current: 1,
	}
}

// Get implements IndexBacking.
func (b *GenerationBacking) Get(node NodeID) int32 {
	if int(node) >= len(b.slots) || b.gens[node] != b.current {
		return slotNotInserted
	}
	return b.slots[node]
}

// Set implements IndexBacking.
func (b *GenerationBacking) Set(node NodeID, slot int32) {
	b.gens[node] = b.current
	b.slots[node] = slot
}

// Reset implements IndexBacking. Amortized O(1): it only falls back to a
// full wipe once every 1<<16 - 1 calls, when the generation counter wraps.
func (b *GenerationBacking) Reset() {
	b.current++
	if b.current == 0 {
		for i := range b.gens {
			b.gens[i] = 0
		}
		b.current = 1
	}
}
