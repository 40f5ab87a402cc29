// Package mlgraph implements MultiLevelGraph: a compressed-sparse-row
// directed graph whose per-node outgoing edges are sorted so that, for any
// node u and level L, a single contiguous range yields every edge whose
// target leaves u's level-L cell.
//
// Construction takes the extractor's edge list and a partition.PartitionReader
// and, for every edge (u,v), computes HighestDifferentLevel(u,v) — the level
// at which v stops being in the same cell as u. Sorting each node's
// adjacency by (level, target) then makes BorderEdges(level, u) and
// InternalEdges(level, u) O(1) range lookups: edges at level 0 (fully
// internal to u's smallest cell) come first, then level 1, and so on.
//
// A node's per-level offsets are stored as a single byte per (node, level)
// pair — bounding supported degree at 255, surfaced as ErrDegreeOverflow
// otherwise — and the per-node offset table is only materialized up to the
// highest node id that actually has a border edge; nodes beyond that bound
// have every edge at level 0 implicitly, so the table need not carry an
// entry for them at all.
package mlgraph
