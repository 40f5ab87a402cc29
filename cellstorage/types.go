package cellstorage

import (
	"math"

	"github.com/katalvlaran/crp/mlgraph"
)

// NodeID, LevelID and CellID are re-exported so callers rarely need a
// separate import just for these identifiers.
type (
	NodeID = mlgraph.NodeID
	LevelID = mlgraph.LevelID
	CellID  = uint32
)

// EdgeWeight, EdgeDuration and EdgeDistance mirror mlgraph's metric channel
// types; matrices store exactly these.
type (
	EdgeWeight   = mlgraph.EdgeWeight
	EdgeDuration = mlgraph.EdgeDuration
	EdgeDistance = mlgraph.EdgeDistance
)

// InfWeight and MaxDuration mark unreachable cells in a metric's weight and
// duration arrays, mirroring mlgraph's sentinels.
const (
	InfWeight   = mlgraph.InfWeight
	MaxDuration = mlgraph.MaxDuration
)

// InvalidDistance marks an unreachable cell in a metric's distance array.
var InvalidDistance = EdgeDistance(math.NaN())

// cellRecord is the structural descriptor of one (level, cell) pair: ranges
// into the shared source/destination boundary arrays, and the offset of its
// matrix inside any Metric's flat value arrays.
type cellRecord struct {
	sourceBegin, sourceLen   uint32
	destBegin, destLen       uint32
	valueOffset              uint64
}

// CellStorage holds the structural layout of every (level, cell)'s
// source/destination sets and matrix placement. It carries no edge weights;
// call NewMetric to obtain a writable value array over this layout.
type CellStorage struct {
	numLevels LevelID

	// levelOffsets[l-1] is the index, into cells, of level l's first cell;
	// levelOffsets[numLevels] is len(cells), acting as a sentinel.
	levelOffsets []uint32

	cells []cellRecord

	sourceBoundary      []NodeID
	destinationBoundary []NodeID

	totalValueArea uint64
}

// Metric is an independently addressable set of weight/duration/distance
// value arrays laid out over a CellStorage's cell matrices. Multiple metrics
// may coexist over one CellStorage.
type Metric struct {
	storage *CellStorage

	weight   []EdgeWeight
	duration []EdgeDuration
	distance []EdgeDistance
}

// CellView is a read/write (for the owning customizer) or read-only (for
// query code) handle onto one (level, cell)'s source/destination node lists
// and its slice of a Metric's matrices.
type CellView struct {
	storage *CellStorage
	metric  *Metric
	rec     cellRecord
}
