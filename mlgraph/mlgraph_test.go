package mlgraph_test

import (
	"testing"

	"github.com/katalvlaran/crp/mlgraph"
	"github.com/katalvlaran/crp/partition"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildHierarchy mirrors the partition package's Scenario 2 fixture: a
// 16-node, 4-cells-of-4 / 2-cells-of-8 / 1-cell hierarchy.
func buildHierarchy(t *testing.T) *partition.MultiLevelPartition {
	t.Helper()
	l1 := []partition.CellID{0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2, 3, 3, 3, 3}
	l2 := []partition.CellID{0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 1, 1, 1, 1}
	l3 := make([]partition.CellID, 16)
	p, err := partition.NewMultiLevelPartition(16, [][]partition.CellID{l1, l2, l3}, []uint32{4, 2, 1})
	require.NoError(t, err)
	return p
}

func TestNewMultiLevelGraph_SortsAdjacencyByLevel(t *testing.T) {
	p := buildHierarchy(t)

	// Node 12's edges: to 13 (same cell 3, level 0), to 8 (cell 2, level 1
	// under l2 cell 1), to 0 (cell 0, level 2).
	edges := []mlgraph.InputEdge{
		{Source: 12, Target: 13, Data: mlgraph.SimpleEdgeData{W: 1}},
		{Source: 12, Target: 8, Data: mlgraph.SimpleEdgeData{W: 2}},
		{Source: 12, Target: 0, Data: mlgraph.SimpleEdgeData{W: 3}},
	}
	g, err := mlgraph.NewMultiLevelGraph(16, edges, p)
	require.NoError(t, err)

	rng, err := g.AdjacentEdges(12)
	require.NoError(t, err)
	require.Equal(t, 3, rng.Len())

	var targets []mlgraph.NodeID
	var levels []mlgraph.LevelID
	for e := rng.Begin; e < rng.End; e++ {
		target, err := g.Target(e)
		require.NoError(t, err)
		lvl, err := g.EdgeLevel(e)
		require.NoError(t, err)
		targets = append(targets, target)
		levels = append(levels, lvl)
	}
	assert.Equal(t, []mlgraph.NodeID{13, 8, 0}, targets)
	assert.Equal(t, []mlgraph.LevelID{0, 1, 2}, levels, "edges must be sorted ascending by crossing level")
}

func TestBorderAndInternalEdges_AreComplementaryRanges(t *testing.T) {
	p := buildHierarchy(t)
	edges := []mlgraph.InputEdge{
		{Source: 12, Target: 13, Data: mlgraph.SimpleEdgeData{W: 1}},
		{Source: 12, Target: 8, Data: mlgraph.SimpleEdgeData{W: 2}},
		{Source: 12, Target: 0, Data: mlgraph.SimpleEdgeData{W: 3}},
	}
	g, err := mlgraph.NewMultiLevelGraph(16, edges, p)
	require.NoError(t, err)

	internal0, err := g.InternalEdges(0, 12)
	require.NoError(t, err)
	assert.Equal(t, 0, internal0.Len(), "internalEdges(0,u) is always empty")

	border0, err := g.BorderEdges(0, 12)
	require.NoError(t, err)
	assert.Equal(t, 3, border0.Len(), "borderEdges(0,u) is every outgoing edge")

	internal1, err := g.InternalEdges(1, 12)
	require.NoError(t, err)
	assert.Equal(t, 1, internal1.Len(), "only the edge to 13 stays inside level-1 cell 3")

	border2, err := g.BorderEdges(2, 12)
	require.NoError(t, err)
	require.Equal(t, 1, border2.Len())
	target, err := g.Target(border2.Begin)
	require.NoError(t, err)
	assert.Equal(t, mlgraph.NodeID(0), target)
}

func TestNewMultiLevelGraph_SelfLoopIsLevelZero(t *testing.T) {
	p := buildHierarchy(t)
	edges := []mlgraph.InputEdge{
		{Source: 5, Target: 5, Data: mlgraph.SimpleEdgeData{W: 0}},
	}
	g, err := mlgraph.NewMultiLevelGraph(16, edges, p)
	require.NoError(t, err)

	rng, err := g.AdjacentEdges(5)
	require.NoError(t, err)
	require.Equal(t, 1, rng.Len())
	lvl, err := g.EdgeLevel(rng.Begin)
	require.NoError(t, err)
	assert.Equal(t, mlgraph.LevelID(0), lvl)
}

func TestNewMultiLevelGraph_RejectsNodeCountMismatch(t *testing.T) {
	p := buildHierarchy(t)
	_, err := mlgraph.NewMultiLevelGraph(8, nil, p)
	assert.ErrorIs(t, err, mlgraph.ErrNodeCountMismatch)
}

func TestNewMultiLevelGraph_RejectsNilPartition(t *testing.T) {
	_, err := mlgraph.NewMultiLevelGraph(16, nil, nil)
	assert.ErrorIs(t, err, mlgraph.ErrNilPartition)
}

func TestFindEdge(t *testing.T) {
	p := buildHierarchy(t)
	edges := []mlgraph.InputEdge{
		{Source: 12, Target: 13, Data: mlgraph.SimpleEdgeData{W: 1}},
	}
	g, err := mlgraph.NewMultiLevelGraph(16, edges, p)
	require.NoError(t, err)

	e, found := g.FindEdge(12, 13)
	require.True(t, found)
	target, err := g.Target(e)
	require.NoError(t, err)
	assert.Equal(t, mlgraph.NodeID(13), target)

	_, found = g.FindEdge(12, 1)
	assert.False(t, found)
}

func TestChecksum_StableAcrossEquivalentEdgeOrdering(t *testing.T) {
	p := buildHierarchy(t)
	a := []mlgraph.InputEdge{
		{Source: 12, Target: 13, Data: mlgraph.SimpleEdgeData{W: 1}},
		{Source: 12, Target: 8, Data: mlgraph.SimpleEdgeData{W: 2}},
	}
	b := []mlgraph.InputEdge{
		{Source: 12, Target: 8, Data: mlgraph.SimpleEdgeData{W: 9}}, // data differs, checksum ignores payload
		{Source: 12, Target: 13, Data: mlgraph.SimpleEdgeData{W: 9}},
	}
	ga, err := mlgraph.NewMultiLevelGraph(16, a, p)
	require.NoError(t, err)
	gb, err := mlgraph.NewMultiLevelGraph(16, b, p)
	require.NoError(t, err)
	assert.Equal(t, ga.Checksum(), gb.Checksum(), "checksum covers structure, not edge weights")
}

// TestBorderNodeTruncation_NonBorderNodesAreImplicit verifies that a node
// with no border edges, placed past the last border node by id, still
// answers BorderEdges/InternalEdges correctly despite not having a row in
// the truncated level-offset table.
func TestBorderNodeTruncation_NonBorderNodesAreImplicit(t *testing.T) {
	p := buildHierarchy(t)
	edges := []mlgraph.InputEdge{
		{Source: 12, Target: 0, Data: mlgraph.SimpleEdgeData{W: 1}}, // border node, low id region
		{Source: 15, Target: 14, Data: mlgraph.SimpleEdgeData{W: 1}}, // node 15: purely internal, highest id
	}
	g, err := mlgraph.NewMultiLevelGraph(16, edges, p)
	require.NoError(t, err)

	border1, err := g.BorderEdges(1, 15)
	require.NoError(t, err)
	assert.Equal(t, 0, border1.Len())

	internal1, err := g.InternalEdges(1, 15)
	require.NoError(t, err)
	assert.Equal(t, 1, internal1.Len())
}
