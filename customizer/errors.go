package customizer

import "errors"

// ErrNilGraph is returned when Customize is given a nil graph.
var ErrNilGraph = errors.New("customizer: nil graph")

// ErrNilPartition is returned when Customize is given a nil partition.
var ErrNilPartition = errors.New("customizer: nil partition")

// ErrNilCellStorage is returned when Customize is given a nil CellStorage.
var ErrNilCellStorage = errors.New("customizer: nil cell storage")

// ErrNilMetric is returned when Customize is given a nil Metric.
var ErrNilMetric = errors.New("customizer: nil metric")

// ErrAllowedNodesShapeMismatch is returned when allowedNodes' length
// disagrees with the graph's node count.
var ErrAllowedNodesShapeMismatch = errors.New("customizer: allowedNodes length disagrees with node count")

// ErrStructuralInconsistency is returned when a settled node's row in its
// sub-cell's matrix cannot be read for any reason other than the node not
// being a source of that sub-cell, meaning the cell storage and the
// partition disagree about the hierarchy. This indicates a construction
// bug, not a runtime condition, and customization aborts rather than
// silently producing a wrong matrix.
var ErrStructuralInconsistency = errors.New("customizer: sub-cell matrix disagrees with search state")

// ErrArithmeticOverflow exists only as a marker for tests asserting that
// addWeight/addDuration saturate rather than wrap: relaxation never returns
// it, since an overflowing candidate is silently dropped (folded into
// InfWeight/MaxDuration) instead of being surfaced as an error.
var ErrArithmeticOverflow = errors.New("customizer: weight or duration arithmetic overflowed")
