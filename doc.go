// Package crp is a Multi-Level Partition / Customizable Route Planning
// (MLP/CRP) core for road-network routing: given a directed, weighted graph
// with hundreds of millions of edges, it answers shortest-path and
// many-to-many distance queries in the low-millisecond range while letting
// edge weights be recustomized in seconds without rebuilding the partition.
//
// The core is four tightly coupled components plus one shared utility:
//
//	partition/   — MultiLevelPartition: packed nested cell hierarchy
//	mlgraph/     — MultiLevelGraph: CSR graph sorted for contiguous border scans
//	cellstorage/ — CellStorage: per-cell source/destination sets and metric matrices
//	customizer/  — CellCustomizer: fills a metric via bounded per-cell Dijkstra
//	queryheap/   — the 4-ary min-heap on the hot path of both customization and query
//	archive/     — the on-disk/shared-memory serialization format tying it together
//	crp/         — this package: a thin facade wiring the above for a caller who
//	               just wants "load archive, customize a metric, query a cell"
//
// What this module does NOT do (by design — these are external
// collaborators consumed only through the read interfaces above): HTTP/RPC
// front-ends, coordinate snapping and phantom nodes, turn-instruction
// synthesis, geometry/polyline encoding, response rendering, OSM
// extraction, map-matching, trip/TSP heuristics, and the query-time
// elimination search itself. A query algorithm built on top of this module
// only ever calls AdjacentEdges, BorderEdges, InternalEdges, Target,
// EdgeData, Cell, HighestDifferentLevel, and a metric CellView's row/column
// accessors.
//
// Data flow: an external one-time partitioner produces, per node, a vector
// of cell ids (one per level); partition.NewMultiLevelPartition compresses
// that into a MultiLevelPartition. An external extractor produces the
// edge-based graph, loaded via mlgraph.NewMultiLevelGraph keyed by that
// partition so every node's outgoing edges are sorted by the highest level
// at which their endpoints still differ. cellstorage.NewCellStorage derives
// matrix layouts from graph+partition once, holding no weights yet. An
// external metric source supplies edge weights; customizer.Customize walks
// levels bottom-up filling the metric's matrices. The filled
// (CellStorage, Metric) pair is then read by external query code.
package crp
