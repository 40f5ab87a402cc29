package cellstorage

import (
	"fmt"
	"sort"

	"github.com/katalvlaran/crp/mlgraph"
	"github.com/katalvlaran/crp/partition"
)

// NewCellStorage derives structural source/destination sets and matrix
// layouts for every (level, cell) from g and part. g must already have been
// built from part (mlgraph.NewMultiLevelGraph enforces matching node
// counts); a graph built from a different partition instance with the same
// shape is still accepted, since this constructor re-derives structure from
// scratch rather than trusting g's internal reference.
func NewCellStorage(g *mlgraph.MultiLevelGraph, part partition.PartitionReader) (*CellStorage, error) {
	if g == nil {
		return nil, fmt.Errorf("NewCellStorage: %w", ErrNilGraph)
	}
	if part == nil {
		return nil, fmt.Errorf("NewCellStorage: %w", ErrNilPartition)
	}
	if g.NumberOfNodes() != part.NumberOfNodes() {
		return nil, fmt.Errorf("NewCellStorage: %w", ErrGraphPartitionMismatch)
	}

	numLevels := part.NumberOfLevels()
	cs := &CellStorage{
		numLevels:    numLevels,
		levelOffsets: make([]uint32, numLevels+1),
	}

	for level := LevelID(1); level <= numLevels; level++ {
		nCells, err := part.NumberOfCells(level)
		if err != nil {
			return nil, fmt.Errorf("NewCellStorage: level %d: %w", level, err)
		}
		sources := make([]map[NodeID]struct{}, nCells)
		destinations := make([]map[NodeID]struct{}, nCells)
		for c := range sources {
			sources[c] = map[NodeID]struct{}{}
			destinations[c] = map[NodeID]struct{}{}
		}

		for u := 0; u < g.NumberOfNodes(); u++ {
			rng, err := g.BorderEdges(level, NodeID(u))
			if err != nil {
				return nil, fmt.Errorf("NewCellStorage: level %d node %d: %w", level, u, err)
			}
			if rng.Len() == 0 {
				continue
			}
			cu, err := part.Cell(level, NodeID(u))
			if err != nil {
				return nil, fmt.Errorf("NewCellStorage: %w", err)
			}
			for e := rng.Begin; e < rng.End; e++ {
				v, err := g.Target(e)
				if err != nil {
					return nil, fmt.Errorf("NewCellStorage: %w", err)
				}
				cv, err := part.Cell(level, v)
				if err != nil {
					return nil, fmt.Errorf("NewCellStorage: %w", err)
				}
				sources[cv][v] = struct{}{}
				destinations[cu][NodeID(u)] = struct{}{}
			}
		}

		cs.levelOffsets[level-1] = uint32(len(cs.cells))
		for c := uint32(0); c < nCells; c++ {
			srcList := sortedKeys(sources[c])
			dstList := sortedKeys(destinations[c])

			rec := cellRecord{
				sourceBegin: uint32(len(cs.sourceBoundary)),
				sourceLen:   uint32(len(srcList)),
				destBegin:   uint32(len(cs.destinationBoundary)),
				destLen:     uint32(len(dstList)),
				valueOffset: cs.totalValueArea,
			}
			cs.sourceBoundary = append(cs.sourceBoundary, srcList...)
			cs.destinationBoundary = append(cs.destinationBoundary, dstList...)
			cs.totalValueArea += uint64(len(srcList)) * uint64(len(dstList))
			cs.cells = append(cs.cells, rec)
		}
	}
	cs.levelOffsets[numLevels] = uint32(len(cs.cells))

	return cs, nil
}

func sortedKeys(m map[NodeID]struct{}) []NodeID {
	out := make([]NodeID, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// cellIndex resolves (level, cell) to an index into cs.cells.
func (cs *CellStorage) cellIndex(level LevelID, cell CellID) (int, error) {
	if level < 1 || level > cs.numLevels {
		return 0, fmt.Errorf("cellIndex: level %d: %w", level, ErrOutOfRange)
	}
	begin, end := cs.levelOffsets[level-1], cs.levelOffsets[level]
	if cell >= end-begin {
		return 0, fmt.Errorf("cellIndex: cell %d: %w", cell, ErrOutOfRange)
	}
	return int(begin + cell), nil
}

// NumberOfLevels returns the number of non-synthetic levels this storage
// covers.
func (cs *CellStorage) NumberOfLevels() LevelID { return cs.numLevels }

// TotalValueArea returns the combined size of every cell's matrix, i.e. the
// length a Metric's value arrays must have.
func (cs *CellStorage) TotalValueArea() uint64 { return cs.totalValueArea }

// NewMetric allocates a fresh Metric over cs, initialized to
// INFINITY/MAX/invalid everywhere.
func NewMetric(cs *CellStorage) *Metric {
	m := &Metric{
		storage:  cs,
		weight:   make([]EdgeWeight, cs.totalValueArea),
		duration: make([]EdgeDuration, cs.totalValueArea),
		distance: make([]EdgeDistance, cs.totalValueArea),
	}
	for i := range m.weight {
		m.weight[i] = InfWeight
		m.duration[i] = MaxDuration
		m.distance[i] = InvalidDistance
	}
	return m
}

// GetCell returns a handle onto (level, cell)'s source/destination node
// lists and its slice of metric's matrices.
func GetCell(cs *CellStorage, metric *Metric, level LevelID, cell CellID) (*CellView, error) {
	if metric == nil {
		return nil, fmt.Errorf("GetCell: nil metric")
	}
	if metric.storage != cs {
		return nil, fmt.Errorf("GetCell: %w", ErrMetricMismatch)
	}
	idx, err := cs.cellIndex(level, cell)
	if err != nil {
		return nil, fmt.Errorf("GetCell: %w", err)
	}
	return &CellView{storage: cs, metric: metric, rec: cs.cells[idx]}, nil
}

// SourceNodes returns the cell's sorted source-node list.
func (v *CellView) SourceNodes() []NodeID {
	return v.storage.sourceBoundary[v.rec.sourceBegin : v.rec.sourceBegin+v.rec.sourceLen]
}

// DestinationNodes returns the cell's sorted destination-node list.
func (v *CellView) DestinationNodes() []NodeID {
	return v.storage.destinationBoundary[v.rec.destBegin : v.rec.destBegin+v.rec.destLen]
}

func (v *CellView) indexOfSource(s NodeID) (int, error) {
	nodes := v.SourceNodes()
	i := sort.Search(len(nodes), func(i int) bool { return nodes[i] >= s })
	if i == len(nodes) || nodes[i] != s {
		return 0, ErrNodeNotInCell
	}
	return i, nil
}

func (v *CellView) indexOfDest(d NodeID) (int, error) {
	nodes := v.DestinationNodes()
	i := sort.Search(len(nodes), func(i int) bool { return nodes[i] >= d })
	if i == len(nodes) || nodes[i] != d {
		return 0, ErrNodeNotInCell
	}
	return i, nil
}

func (v *CellView) rowBase(srcIdx int) uint64 {
	return v.rec.valueOffset + uint64(srcIdx)*uint64(v.rec.destLen)
}

// OutWeight returns s's row of the weight matrix, in destination order. The
// returned slice shares the Metric's backing array: writes through it are
// visible to subsequent reads (this is how the customizer publishes
// results).
func (v *CellView) OutWeight(s NodeID) ([]EdgeWeight, error) {
	i, err := v.indexOfSource(s)
	if err != nil {
		return nil, fmt.Errorf("OutWeight: %w", err)
	}
	base := v.rowBase(i)
	return v.metric.weight[base : base+uint64(v.rec.destLen)], nil
}

// OutDuration mirrors OutWeight for the duration channel.
func (v *CellView) OutDuration(s NodeID) ([]EdgeDuration, error) {
	i, err := v.indexOfSource(s)
	if err != nil {
		return nil, fmt.Errorf("OutDuration: %w", err)
	}
	base := v.rowBase(i)
	return v.metric.duration[base : base+uint64(v.rec.destLen)], nil
}

// OutDistance mirrors OutWeight for the distance channel.
func (v *CellView) OutDistance(s NodeID) ([]EdgeDistance, error) {
	i, err := v.indexOfSource(s)
	if err != nil {
		return nil, fmt.Errorf("OutDistance: %w", err)
	}
	base := v.rowBase(i)
	return v.metric.distance[base : base+uint64(v.rec.destLen)], nil
}

// InWeight returns d's column of the weight matrix, in source order. Unlike
// OutWeight, this is necessarily a freshly built copy: the matrix is
// row-major, so a column is not contiguous. It is read-only by convention;
// the customizer never writes through it.
func (v *CellView) InWeight(d NodeID) ([]EdgeWeight, error) {
	j, err := v.indexOfDest(d)
	if err != nil {
		return nil, fmt.Errorf("InWeight: %w", err)
	}
	out := make([]EdgeWeight, v.rec.sourceLen)
	for i := range out {
		out[i] = v.metric.weight[v.rowBase(i)+uint64(j)]
	}
	return out, nil
}

// InDuration mirrors InWeight for the duration channel.
func (v *CellView) InDuration(d NodeID) ([]EdgeDuration, error) {
	j, err := v.indexOfDest(d)
	if err != nil {
		return nil, fmt.Errorf("InDuration: %w", err)
	}
	out := make([]EdgeDuration, v.rec.sourceLen)
	for i := range out {
		out[i] = v.metric.duration[v.rowBase(i)+uint64(j)]
	}
	return out, nil
}

// InDistance mirrors InWeight for the distance channel.
func (v *CellView) InDistance(d NodeID) ([]EdgeDistance, error) {
	j, err := v.indexOfDest(d)
	if err != nil {
		return nil, fmt.Errorf("InDistance: %w", err)
	}
	out := make([]EdgeDistance, v.rec.sourceLen)
	for i := range out {
		out[i] = v.metric.distance[v.rowBase(i)+uint64(j)]
	}
	return out, nil
}
