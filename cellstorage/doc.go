// Package cellstorage holds, for every (level, cell), the cell's source and
// destination border-node sets plus the dense weight/duration/distance
// matrices between them — the "metric".
//
// CellStorage itself is purely structural: which nodes are sources and
// destinations of which cell, and where each cell's matrix lives inside a
// flat value array. It is derived once from a mlgraph.MultiLevelGraph and a
// partition.PartitionReader and is immutable thereafter. A Metric is a
// separate, independently addressable set of three value arrays (weight,
// duration, distance) sized to the sum of every cell's |sources|·|destinations|
// area; a single CellStorage can back any number of Metric instances, so
// customizing a "tolls-off" variant never disturbs the default metric.
//
// A node is a source of its level-ℓ cell iff some edge enters the cell from
// outside at that level; a destination iff some edge leaves it. Both sets are
// stored once, sorted and deduplicated, as ranges into two concatenated
// node-id arrays shared by all cells at all levels.
package cellstorage
