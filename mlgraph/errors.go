package mlgraph

import "errors"

// ErrNilPartition is returned when NewMultiLevelGraph is given a nil
// partition.PartitionReader; a MultiLevelGraph has no meaning without one.
var ErrNilPartition = errors.New("mlgraph: nil partition")

// ErrNodeCountMismatch is returned when the graph's node count disagrees
// with the partition's.
var ErrNodeCountMismatch = errors.New("mlgraph: node count disagrees with partition")

// ErrNodeOutOfRange is returned when an edge or query references a node id
// outside [0, numNodes).
var ErrNodeOutOfRange = errors.New("mlgraph: node out of range")

// ErrLevelOutOfRange is returned when a level argument exceeds the
// partition's number of levels.
var ErrLevelOutOfRange = errors.New("mlgraph: level out of range")

// ErrEdgeOutOfRange is returned when an EdgeID does not index a stored edge.
var ErrEdgeOutOfRange = errors.New("mlgraph: edge out of range")

// ErrDegreeOverflow is returned when a node's out-degree exceeds 255, the
// largest value the per-node level-offset byte table can index.
var ErrDegreeOverflow = errors.New("mlgraph: node out-degree exceeds 255")

// ErrNilEdgeData is returned when an InputEdge carries a nil EdgeData.
var ErrNilEdgeData = errors.New("mlgraph: nil edge data")
