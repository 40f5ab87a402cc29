package queryheap

import "fmt"

// NewHeap returns an empty Heap using backing for node-to-slot lookups. The
// backing should already be freshly reset (NewArrayBacking and friends are).
func NewHeap[D any](backing IndexBacking) *Heap[D] {
	return &Heap[D]{backing: backing}
}

func (h *Heap[D]) swap(i, j int) {
	h.entries[i], h.entries[j] = h.entries[j], h.entries[i]
	h.backing.Set(h.entries[i].node, int32(i))
	h.backing.Set(h.entries[j].node, int32(j))
}

func (h *Heap[D]) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / arity
		if h.entries[i].weight >= h.entries[parent].weight {
			break
		}
		h.swap(i, parent)
		i = parent
	}
}

func (h *Heap[D]) siftDown(i int) {
	n := len(h.entries)
	for {
		smallest := i
		first := arity*i + 1
		for c := first; c < first+arity && c < n; c++ {
			if h.entries[c].weight < h.entries[smallest].weight {
				smallest = c
			}
		}
		if smallest == i {
			return
		}
		h.swap(i, smallest)
		i = smallest
	}
}

// Insert adds node n with weight w and auxiliary data d. It fails with
// ErrAlreadyInserted if n has any existing record, whether still in the
// heap or already removed from it; a Dijkstra run never re-inserts a node.
func (h *Heap[D]) Insert(n NodeID, w Weight, d D) error {
	if h.backing.Get(n) != slotNotInserted {
		return fmt.Errorf("Insert(%d): %w", n, ErrAlreadyInserted)
	}
	idx := len(h.entries)
	h.entries = append(h.entries, heapEntry[D]{node: n, weight: w, data: d})
	h.backing.Set(n, int32(idx))
	h.siftUp(idx)
	return nil
}

// DecreaseKey lowers node n's key to w and restores heap order. It fails
// with ErrNotInHeap if n is not currently present. Callers that also need
// to overwrite n's auxiliary data (the customizer's tie-breaking rule) may
// call UpdateData before or after this: UpdateData never affects heap order,
// and only DecreaseKey resifts.
func (h *Heap[D]) DecreaseKey(n NodeID, w Weight) error {
	slot := h.backing.Get(n)
	if slot < 0 {
		return fmt.Errorf("DecreaseKey(%d): %w", n, ErrNotInHeap)
	}
	h.entries[slot].weight = w
	h.siftUp(int(slot))
	return nil
}

// UpdateData overwrites node n's auxiliary data in place without affecting
// heap order. It fails with ErrNotInHeap if n is not currently present.
func (h *Heap[D]) UpdateData(n NodeID, d D) error {
	slot := h.backing.Get(n)
	if slot < 0 {
		return fmt.Errorf("UpdateData(%d): %w", n, ErrNotInHeap)
	}
	h.entries[slot].data = d
	return nil
}

// DeleteMin removes and returns the minimum-weight entry. It fails with
// ErrEmpty if the heap holds no entries.
func (h *Heap[D]) DeleteMin() (NodeID, Weight, D, error) {
	var zero D
	if len(h.entries) == 0 {
		return 0, 0, zero, fmt.Errorf("DeleteMin: %w", ErrEmpty)
	}
	root := h.entries[0]
	h.backing.Set(root.node, slotRemoved)

	last := len(h.entries) - 1
	if last > 0 {
		h.entries[0] = h.entries[last]
		h.backing.Set(h.entries[0].node, 0)
	}
	h.entries = h.entries[:last]
	if len(h.entries) > 0 {
		h.siftDown(0)
	}
	return root.node, root.weight, root.data, nil
}

// Min returns the minimum-weight entry without removing it. It fails with
// ErrEmpty if the heap holds no entries.
func (h *Heap[D]) Min() (NodeID, Weight, D, error) {
	var zero D
	if len(h.entries) == 0 {
		return 0, 0, zero, fmt.Errorf("Min: %w", ErrEmpty)
	}
	e := h.entries[0]
	return e.node, e.weight, e.data, nil
}

// Empty reports whether the heap holds no entries.
func (h *Heap[D]) Empty() bool { return len(h.entries) == 0 }

// Len returns the number of entries currently in the heap.
func (h *Heap[D]) Len() int { return len(h.entries) }

// WasInserted reports whether node n has ever been inserted, whether or not
// it has since been removed.
func (h *Heap[D]) WasInserted(n NodeID) bool {
	return h.backing.Get(n) != slotNotInserted
}

// WasRemoved reports whether node n was inserted and has since been
// extracted via DeleteMin.
func (h *Heap[D]) WasRemoved(n NodeID) bool {
	return h.backing.Get(n) == slotRemoved
}

// GetData returns node n's current auxiliary data. It fails with
// ErrNotInHeap if n is not currently present (never inserted, or removed).
func (h *Heap[D]) GetData(n NodeID) (D, error) {
	var zero D
	slot := h.backing.Get(n)
	if slot < 0 {
		return zero, fmt.Errorf("GetData(%d): %w", n, ErrNotInHeap)
	}
	return h.entries[slot].data, nil
}

// GetKey returns node n's current weight. It fails with ErrNotInHeap if n
// is not currently present.
func (h *Heap[D]) GetKey(n NodeID) (Weight, error) {
	slot := h.backing.Get(n)
	if slot < 0 {
		return 0, fmt.Errorf("GetKey(%d): %w", n, ErrNotInHeap)
	}
	return h.entries[slot].weight, nil
}

// Clear resets the heap and its backing for reuse, e.g. between cells in
// the customizer's per-worker loop.
func (h *Heap[D]) Clear() {
	h.entries = h.entries[:0]
	h.backing.Reset()
}
