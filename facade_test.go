package crp_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/crp"
	"github.com/katalvlaran/crp/cellstorage"
	"github.com/katalvlaran/crp/mlgraph"
	"github.com/katalvlaran/crp/partition"
)

func buildFacadeFixture(t *testing.T) (*partition.MultiLevelPartition, *mlgraph.MultiLevelGraph) {
	t.Helper()

	l1 := []partition.CellID{0, 0, 0, 1, 1, 1, 2}
	l2 := []partition.CellID{0, 0, 0, 0, 0, 0, 1}
	l3 := make([]partition.CellID, 7)
	part, err := partition.NewMultiLevelPartition(7, [][]partition.CellID{l1, l2, l3}, []uint32{3, 2, 1})
	require.NoError(t, err)

	edges := []mlgraph.InputEdge{
		{Source: 0, Target: 1, Data: mlgraph.SimpleEdgeData{W: 2}},
		{Source: 1, Target: 2, Data: mlgraph.SimpleEdgeData{W: 3}},
		{Source: 3, Target: 4, Data: mlgraph.SimpleEdgeData{W: 4}},
		{Source: 4, Target: 5, Data: mlgraph.SimpleEdgeData{W: 1}},
		{Source: 2, Target: 3, Data: mlgraph.SimpleEdgeData{W: 10}},
		{Source: 5, Target: 0, Data: mlgraph.SimpleEdgeData{W: 10}},
		{Source: 0, Target: 6, Data: mlgraph.SimpleEdgeData{W: 100}},
		{Source: 6, Target: 3, Data: mlgraph.SimpleEdgeData{W: 1}},
	}
	g, err := mlgraph.NewMultiLevelGraph(7, edges, part)
	require.NoError(t, err)
	return part, g
}

func allAllowed(n int) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = true
	}
	return out
}

func TestEngine_CustomizeAndQuery(t *testing.T) {
	part, g := buildFacadeFixture(t)
	engine, err := crp.New(part, g)
	require.NoError(t, err)

	engine.AddMetric("car")
	require.NoError(t, engine.Customize(context.Background(), "car", allAllowed(7)))

	view, err := engine.Query("car", 1, 0)
	require.NoError(t, err)
	row, err := view.OutWeight(0)
	require.NoError(t, err)
	idx := -1
	for i, n := range view.DestinationNodes() {
		if n == 2 {
			idx = i
		}
	}
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, cellstorage.EdgeWeight(5), row[idx])

	_, err = engine.Query("missing", 1, 0)
	assert.ErrorIs(t, err, crp.ErrUnknownMetric)
}

func TestEngine_SaveThenLoadRoundTrip(t *testing.T) {
	part, g := buildFacadeFixture(t)
	engine, err := crp.New(part, g)
	require.NoError(t, err)
	engine.AddMetric("car")
	require.NoError(t, engine.Customize(context.Background(), "car", allAllowed(7)))

	path := filepath.Join(t.TempDir(), "route.crp")
	require.NoError(t, engine.Save(path))

	loaded, err := crp.Load(path)
	require.NoError(t, err)

	view, err := loaded.Query("car", 1, 0)
	require.NoError(t, err)
	row, err := view.OutWeight(0)
	require.NoError(t, err)
	idx := -1
	for i, n := range view.DestinationNodes() {
		if n == 2 {
			idx = i
		}
	}
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, cellstorage.EdgeWeight(5), row[idx])

	assert.ErrorIs(t, loaded.Save(path), crp.ErrNotOwning)
}
