package mlgraph

import "github.com/katalvlaran/crp/partition"

// NodeID and LevelID are re-exported aliases of partition's types so
// callers rarely need to import both packages for the same concept.
type (
	NodeID  = partition.NodeID
	LevelID = partition.LevelID
)

// EdgeID indexes a single directed edge inside a MultiLevelGraph's flattened
// CSR storage. It is stable for the lifetime of the graph but has no meaning
// across two different graphs.
type EdgeID = uint32

// InvalidEdgeID is returned by lookups that find no matching edge.
const InvalidEdgeID EdgeID = ^EdgeID(0)

// EdgeWeight, EdgeDuration and EdgeDistance are the three metric channels a
// routing edge carries. Weight is the value customization and queries
// optimize; duration and distance are auxiliary channels customized the same
// way so a winning path's ETA and length can be reported without a second
// search.
type (
	EdgeWeight   = int32
	EdgeDuration = int32
	EdgeDistance = float32
)

// InfWeight marks an edge, or a cell-matrix cell, as unreachable. Customizer
// relaxation must treat it as absorbing: InfWeight + anything finite must
// not overflow into a small or negative number.
const InfWeight EdgeWeight = 1<<31 - 1

// MaxDuration mirrors InfWeight for the duration channel.
const MaxDuration EdgeDuration = 1<<31 - 1

// EdgeData is the read-only view of one edge's metric payload plus its
// direction flags. Implementations are supplied by the caller (typically the
// extractor); this package only ever reads through the interface.
type EdgeData interface {
	Weight() EdgeWeight
	Duration() EdgeDuration
	Distance() EdgeDistance
	// Forward reports whether the edge may be traversed u->v.
	Forward() bool
	// Backward reports whether the edge may be traversed v->u (i.e. whether
	// it also represents the reverse direction, as OSM bidirectional ways
	// commonly do via a single input record).
	Backward() bool
}

// InputEdge is one caller-supplied directed edge, prior to level-sorting.
type InputEdge struct {
	Source NodeID
	Target NodeID
	Data   EdgeData
}

// EdgeRange is a contiguous, half-open range of EdgeIDs: [Begin, End).
type EdgeRange struct {
	Begin EdgeID
	End   EdgeID
}

// Len returns the number of edges in the range.
func (r EdgeRange) Len() int { return int(r.End - r.Begin) }

// edgeRecord is the internal flattened-edge payload, target plus its data
// pointer, stored parallel to the CSR row array.
type edgeRecord struct {
	target NodeID
	level  LevelID
	data   EdgeData
}

// MultiLevelGraph is a directed graph in CSR form whose adjacency lists are
// sorted ascending by the highest level at which an edge's endpoints still
// differ, making per-level border/internal edge ranges contiguous.
type MultiLevelGraph struct {
	part partition.PartitionReader

	numNodes  int
	numLevels LevelID

	nodeFirstEdge []uint32 // len numNodes+1, CSR row pointer
	edges         []edgeRecord

	// levelOffset[node*stride + level] is the offset, relative to
	// nodeFirstEdge[node], of the first edge whose level is >= level. Only
	// materialized for nodes below levelOffsetLimit; nodes at or above it
	// have no border edges at all, so their table row is implicitly
	// {0, deg, deg, ..., deg}.
	levelOffset      []uint8
	stride           int // numLevels + 1
	levelOffsetLimit int

	checksum uint32
}
