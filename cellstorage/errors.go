package cellstorage

import "errors"

// ErrNilGraph is returned when NewCellStorage is given a nil graph.
var ErrNilGraph = errors.New("cellstorage: nil graph")

// ErrNilPartition is returned when NewCellStorage is given a nil partition.
var ErrNilPartition = errors.New("cellstorage: nil partition")

// ErrGraphPartitionMismatch is returned when the graph's partition and the
// one passed to NewCellStorage have differing shapes.
var ErrGraphPartitionMismatch = errors.New("cellstorage: graph and partition disagree on node count")

// ErrOutOfRange is returned for an invalid (level, cell) pair or node id.
var ErrOutOfRange = errors.New("cellstorage: out of range")

// ErrNodeNotInCell is returned when OutWeight/InWeight etc. are asked for a
// node that is not a registered source (respectively destination) of the
// requested cell.
var ErrNodeNotInCell = errors.New("cellstorage: node is not a source/destination of this cell")

// ErrMetricMismatch is returned when a Metric built over a different
// CellStorage is passed to GetCell.
var ErrMetricMismatch = errors.New("cellstorage: metric was not built from this CellStorage")

// ErrNilCellStorage is returned when NewMetricFromRaw is given a nil
// CellStorage.
var ErrNilCellStorage = errors.New("cellstorage: nil cell storage")
