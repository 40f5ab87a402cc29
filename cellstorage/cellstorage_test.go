package cellstorage_test

import (
	"testing"

	"github.com/katalvlaran/crp/cellstorage"
	"github.com/katalvlaran/crp/mlgraph"
	"github.com/katalvlaran/crp/partition"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildTwoCellGraph is a small analogue of the two-cell scenario in which
// every edge except 0->1 also has its reverse: nodes 0,1 in level-1 cell 0,
// nodes 2,3 in cell 1, with a single pair of cross-cell edges in each
// direction.
func buildTwoCellGraph(t *testing.T) (*mlgraph.MultiLevelGraph, partition.PartitionReader) {
	t.Helper()
	l1 := []partition.CellID{0, 0, 1, 1}
	p, err := partition.NewMultiLevelPartition(4, [][]partition.CellID{l1}, []uint32{2})
	require.NoError(t, err)

	edges := []mlgraph.InputEdge{
		{Source: 0, Target: 1, Data: mlgraph.SimpleEdgeData{W: 1}},
		{Source: 0, Target: 2, Data: mlgraph.SimpleEdgeData{W: 4}},
		{Source: 2, Target: 0, Data: mlgraph.SimpleEdgeData{W: 4}},
		{Source: 2, Target: 3, Data: mlgraph.SimpleEdgeData{W: 1}},
		{Source: 3, Target: 2, Data: mlgraph.SimpleEdgeData{W: 1}},
		{Source: 3, Target: 1, Data: mlgraph.SimpleEdgeData{W: 5}},
		{Source: 1, Target: 3, Data: mlgraph.SimpleEdgeData{W: 5}},
	}
	g, err := mlgraph.NewMultiLevelGraph(4, edges, p)
	require.NoError(t, err)
	return g, p
}

func TestNewCellStorage_SourceDestinationSets(t *testing.T) {
	g, p := buildTwoCellGraph(t)
	cs, err := cellstorage.NewCellStorage(g, p)
	require.NoError(t, err)

	metric := cellstorage.NewMetric(cs)

	cell0, err := cellstorage.GetCell(cs, metric, 1, 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []cellstorage.NodeID{0, 1}, cell0.SourceNodes())
	assert.ElementsMatch(t, []cellstorage.NodeID{0, 1}, cell0.DestinationNodes())

	cell1, err := cellstorage.GetCell(cs, metric, 1, 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []cellstorage.NodeID{2, 3}, cell1.SourceNodes())
	assert.ElementsMatch(t, []cellstorage.NodeID{2, 3}, cell1.DestinationNodes())
}

func TestMetric_InitializedToInfinity(t *testing.T) {
	g, p := buildTwoCellGraph(t)
	cs, err := cellstorage.NewCellStorage(g, p)
	require.NoError(t, err)
	metric := cellstorage.NewMetric(cs)

	cell0, err := cellstorage.GetCell(cs, metric, 1, 0)
	require.NoError(t, err)
	row, err := cell0.OutWeight(0)
	require.NoError(t, err)
	for _, w := range row {
		assert.Equal(t, cellstorage.InfWeight, w)
	}
}

func TestCellView_OutWeightRowIsWritableView(t *testing.T) {
	g, p := buildTwoCellGraph(t)
	cs, err := cellstorage.NewCellStorage(g, p)
	require.NoError(t, err)
	metric := cellstorage.NewMetric(cs)

	cell0, err := cellstorage.GetCell(cs, metric, 1, 0)
	require.NoError(t, err)
	row, err := cell0.OutWeight(0)
	require.NoError(t, err)
	require.NotEmpty(t, row)
	row[0] = 7

	// Re-fetch the cell; writes through the row slice must be visible since
	// it shares the Metric's backing array.
	cell0Again, err := cellstorage.GetCell(cs, metric, 1, 0)
	require.NoError(t, err)
	rowAgain, err := cell0Again.OutWeight(0)
	require.NoError(t, err)
	assert.Equal(t, cellstorage.EdgeWeight(7), rowAgain[0])
}

func TestCellView_InWeightIsColumnOfOutWeight(t *testing.T) {
	g, p := buildTwoCellGraph(t)
	cs, err := cellstorage.NewCellStorage(g, p)
	require.NoError(t, err)
	metric := cellstorage.NewMetric(cs)

	cell0, err := cellstorage.GetCell(cs, metric, 1, 0)
	require.NoError(t, err)

	rowFor0, err := cell0.OutWeight(0)
	require.NoError(t, err)
	rowFor0[0] = 3
	rowFor0[1] = 9

	colFor0, err := cell0.InWeight(cell0.DestinationNodes()[0])
	require.NoError(t, err)
	sourceIdx := -1
	for i, s := range cell0.SourceNodes() {
		if s == 0 {
			sourceIdx = i
		}
	}
	require.GreaterOrEqual(t, sourceIdx, 0)
	assert.Equal(t, cellstorage.EdgeWeight(3), colFor0[sourceIdx])
}

func TestGetCell_RejectsOutOfRange(t *testing.T) {
	g, p := buildTwoCellGraph(t)
	cs, err := cellstorage.NewCellStorage(g, p)
	require.NoError(t, err)
	metric := cellstorage.NewMetric(cs)

	_, err = cellstorage.GetCell(cs, metric, 1, 99)
	assert.ErrorIs(t, err, cellstorage.ErrOutOfRange)

	_, err = cellstorage.GetCell(cs, metric, 2, 0)
	assert.ErrorIs(t, err, cellstorage.ErrOutOfRange)
}

func TestGetCell_RejectsMismatchedMetric(t *testing.T) {
	g, p := buildTwoCellGraph(t)
	cs1, err := cellstorage.NewCellStorage(g, p)
	require.NoError(t, err)
	cs2, err := cellstorage.NewCellStorage(g, p)
	require.NoError(t, err)

	foreignMetric := cellstorage.NewMetric(cs2)
	_, err = cellstorage.GetCell(cs1, foreignMetric, 1, 0)
	assert.ErrorIs(t, err, cellstorage.ErrMetricMismatch)
}

func TestOutWeight_RejectsNodeNotInCell(t *testing.T) {
	g, p := buildTwoCellGraph(t)
	cs, err := cellstorage.NewCellStorage(g, p)
	require.NoError(t, err)
	metric := cellstorage.NewMetric(cs)

	cell1, err := cellstorage.GetCell(cs, metric, 1, 1)
	require.NoError(t, err)
	_, err = cell1.OutWeight(0) // node 0 is not a source of cell 1
	assert.ErrorIs(t, err, cellstorage.ErrNodeNotInCell)
}
