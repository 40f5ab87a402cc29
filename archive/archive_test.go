package archive_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/crp/archive"
	"github.com/katalvlaran/crp/cellstorage"
	"github.com/katalvlaran/crp/customizer"
	"github.com/katalvlaran/crp/mlgraph"
	"github.com/katalvlaran/crp/partition"
)

// buildFixture mirrors the customizer package's hand-verified chain
// hierarchy: 7 nodes, cells A={0,1,2} B={3,4,5} C={6} at level 1, AB={0..5}
// C={6} at level 2, a singleton root at level 3.
func buildFixture(t *testing.T) (*partition.MultiLevelPartition, *mlgraph.MultiLevelGraph) {
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

func customizedFixture(t *testing.T) (*partition.MultiLevelPartition, *mlgraph.MultiLevelGraph, *cellstorage.CellStorage, *cellstorage.Metric) {
	t.Helper()
	part, g := buildFixture(t)
	cs, err := cellstorage.NewCellStorage(g, part)
	require.NoError(t, err)
	metric := cellstorage.NewMetric(cs)
	require.NoError(t, customizer.Customize(context.Background(), g, part, cs, metric, allAllowed(7)))
	return part, g, cs, metric
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	part, g, cs, metric := customizedFixture(t)

	path := filepath.Join(t.TempDir(), "route.crp")
	require.NoError(t, archive.Save(path, part, g, cs, map[string]*cellstorage.Metric{"car": metric}))

	loaded, err := archive.Load(path)
	require.NoError(t, err)

	assert.Equal(t, g.Checksum(), loaded.Graph.Checksum())
	assert.Equal(t, g.NumberOfNodes(), loaded.Graph.NumberOfNodes())
	assert.Equal(t, g.NumberOfEdges(), loaded.Graph.NumberOfEdges())
	assert.Equal(t, part.NumberOfLevels(), loaded.Partition.NumberOfLevels())
	require.Contains(t, loaded.Metrics, "car")

	origView, err := cellstorage.GetCell(cs, metric, 2, 0)
	require.NoError(t, err)
	loadedView, err := cellstorage.GetCell(loaded.Cells, loaded.Metrics["car"], 2, 0)
	require.NoError(t, err)

	origRow, err := origView.OutWeight(3)
	require.NoError(t, err)
	loadedRow, err := loadedView.OutWeight(3)
	require.NoError(t, err)
	assert.Equal(t, origRow, loadedRow, "a persisted and reloaded metric must serve identical query answers")

	assert.Equal(t, origView.DestinationNodes(), loadedView.DestinationNodes())
}

func TestMmap_RoundTrip(t *testing.T) {
	part, g, cs, metric := customizedFixture(t)

	path := filepath.Join(t.TempDir(), "route.crp")
	require.NoError(t, archive.Save(path, part, g, cs, map[string]*cellstorage.Metric{"car": metric}))

	mapped, loaded, err := archive.Mmap(path)
	require.NoError(t, err)
	defer mapped.Close()

	assert.Equal(t, g.Checksum(), loaded.Graph.Checksum())

	view, err := cellstorage.GetCell(loaded.Cells, loaded.Metrics["car"], 1, 0)
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
}

func TestLoad_RejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.crp")
	require.NoError(t, os.WriteFile(path, []byte("not an archive file at all"), 0o644))

	_, err := archive.Load(path)
	assert.ErrorIs(t, err, archive.ErrBadMagic)
}

func TestLoad_DetectsCorruption(t *testing.T) {
	part, g, cs, metric := customizedFixture(t)

	path := filepath.Join(t.TempDir(), "route.crp")
	require.NoError(t, archive.Save(path, part, g, cs, map[string]*cellstorage.Metric{"car": metric}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	corrupted := make([]byte, len(raw))
	copy(corrupted, raw)
	corrupted[len(corrupted)-1] ^= 0xFF // flips the manifest block's trailing canary
	require.NoError(t, os.WriteFile(path, corrupted, 0o644))

	_, err = archive.Load(path)
	assert.ErrorIs(t, err, archive.ErrCanaryMismatch)
}
