// Package queryheap implements a 4-ary min-heap keyed by node id, generic
// over a per-node auxiliary payload. It sits on the hot path of both
// CellCustomizer's bounded Dijkstra and any query-time elimination search
// built on top of this module.
//
// A Heap pairs a compact array of (node, weight, data) entries with a
// pluggable IndexBacking that maps a node id to its current slot in that
// array (or reports the node absent). Four backings are provided:
//
//	ArrayBacking      — O(1) lookup, O(N) memory; the customizer's default
//	MapBacking        — O(1) amortized lookup, O(touched) memory
//	TwoLevelBacking   — a dense ArrayBacking for low node ids over a sparse
//	                    MapBacking for the rest, for graphs where border
//	                    nodes cluster at the low end of the id space
//	GenerationBacking — ArrayBacking plus a generation tag per slot, making
//	                    Clear O(1) amortized instead of O(N)
//
// wasInserted and wasRemoved are distinct: a node that was inserted and then
// extracted via DeleteMin answers wasInserted()==true, wasRemoved()==true,
// matching Dijkstra's settled/unsettled/untouched three-state node
// classification.
package queryheap
