package partition

import "errors"

// Sentinel errors for the partition package. All non-arithmetic failures are
// surfaced to the caller of construction or of a query; there is no retry.
var (
	// ErrInvalidNodeCount is returned when numNodes <= 0.
	ErrInvalidNodeCount = errors.New("partition: node count must be positive")

	// ErrLevelShapeMismatch is returned when a level's cell-id vector does
	// not have exactly numNodes entries, or level/count slices disagree in
	// length.
	ErrLevelShapeMismatch = errors.New("partition: level vector shape mismatch")

	// ErrCellIDOutOfRange is returned when a supplied cell id is not less
	// than that level's declared cell count.
	ErrCellIDOutOfRange = errors.New("partition: cell id out of declared range")

	// ErrStructuralInvariant is returned when the nesting invariant is
	// violated: a level-(L-1) cell spans two different level-L cells. This
	// is a programmer/partitioner error, not a runtime condition.
	ErrStructuralInvariant = errors.New("partition: nesting invariant violated")

	// ErrTopLevelNotSingleton is returned when the top level does not
	// collapse to exactly one cell.
	ErrTopLevelNotSingleton = errors.New("partition: top level must have exactly one cell")

	// ErrOutOfRange is returned by query methods given an invalid level,
	// node, or cell id. Programmer error; not retried.
	ErrOutOfRange = errors.New("partition: argument out of range")

	// ErrSameNode is returned by HighestDifferentLevel when u == v, since
	// the documented answer (0) requires the caller to accept that
	// level-0 coincidence is the only reason, not an actual query result.
	ErrSameNode = errors.New("partition: HighestDifferentLevel requires u != v")
)
