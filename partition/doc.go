// Package partition implements MultiLevelPartition: a compact, cache-friendly
// encoding of a nested cell hierarchy over a road-network graph.
//
// Conceptually a MultiLevelPartition is a function (level, node) -> CellID.
// Physically it is a dense array of bit-packed words indexed by node, one
// packed record per node holding the cell id at every level plus a synthetic
// level-0 field equal to the node's own id. Bit widths are chosen per level
// from the level's cell count so that the whole record is as small as
// possible while remaining a fixed number of machine words per node.
//
// Invariants enforced at construction (see NewMultiLevelPartition):
//
//   - Level 0 assigns every node to a distinct cell (it *is* the node id).
//   - Nesting: if two nodes share a cell at level L they share a cell at
//     every level L' > L.
//   - The number of cells is non-increasing in level, and the top level has
//     exactly one cell.
//
// HighestDifferentLevel(u, v) — the largest level at which u and v still
// disagree — is computed by comparing the packed per-level fields from the
// top level down, which is equivalent to the XOR-then-find-highest-nonzero-
// bit-field contract described by the routing literature this package
// implements, without requiring a single-word bit-position decode.
package partition
