package customizer

import (
	"github.com/katalvlaran/crp/cellstorage"
	"github.com/katalvlaran/crp/mlgraph"
)

// NodeID and LevelID are re-exported for callers that only need this
// package.
type (
	NodeID  = mlgraph.NodeID
	LevelID = mlgraph.LevelID
)

// RelaxEdgeData is the heap payload used while customizing: everything a
// settled node needs to both report its own result and decide whether it
// may still expand through its sub-cell's clique arcs.
type RelaxEdgeData struct {
	fromClique bool
	duration   cellstorage.EdgeDuration
	distance   cellstorage.EdgeDistance
}

// config collects Customize's optional settings.
type config struct {
	onlyLevels map[LevelID]bool
	workers    int
}

// Option configures a Customize call.
type Option func(*config)

// WithPartialCustomization restricts customization to exactly the given
// levels, skipping the rest. It is for GRASP-style incremental
// recustomization: the caller has already customized every other level and
// only a subset of the hierarchy needs to be redone after a small weight
// change, typically the levels above the lowest level touched by that
// change.
func WithPartialCustomization(levels []LevelID) Option {
	return func(c *config) {
		set := make(map[LevelID]bool, len(levels))
		for _, l := range levels {
			set[l] = true
		}
		c.onlyLevels = set
	}
}

// WithWorkers bounds the number of goroutines customizing cells
// concurrently within a level. The default is runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(c *config) { c.workers = n }
}
