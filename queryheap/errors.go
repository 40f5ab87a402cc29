package queryheap

import "errors"

// ErrEmpty is returned by Min/DeleteMin when the heap holds no entries.
var ErrEmpty = errors.New("queryheap: heap is empty")

// ErrAlreadyInserted is returned by Insert when the node already has a
// record (whether still in the heap or already removed from it).
var ErrAlreadyInserted = errors.New("queryheap: node already inserted")

// ErrNotInHeap is returned by DecreaseKey/GetData/GetKey when the node is
// not currently present in the heap (never inserted, or already removed).
var ErrNotInHeap = errors.New("queryheap: node not currently in heap")

// ErrNodeOutOfRange names a node id beyond a fixed-capacity backing's range.
// Nothing in this package returns it: ArrayBacking and GenerationBacking
// report such a node as not inserted from Get, and their Set indexes the
// slot array directly.
var ErrNodeOutOfRange = errors.New("queryheap: node out of backing range")
