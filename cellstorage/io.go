package cellstorage

import "fmt"

// CellRecord is the exported mirror of cellRecord, for serialization.
type CellRecord struct {
	SourceBegin, SourceLen uint32
	DestBegin, DestLen     uint32
	ValueOffset            uint64
}

// LevelOffsets exposes the per-level cell-index prefix sums for
// serialization; index numLevels is the sentinel len(cells).
func (cs *CellStorage) LevelOffsets() []uint32 { return cs.levelOffsets }

// Cells exposes the per-cell structural records for serialization.
func (cs *CellStorage) Cells() []CellRecord {
	out := make([]CellRecord, len(cs.cells))
	for i, c := range cs.cells {
		out[i] = CellRecord{SourceBegin: c.sourceBegin, SourceLen: c.sourceLen, DestBegin: c.destBegin, DestLen: c.destLen, ValueOffset: c.valueOffset}
	}
	return out
}

// SourceBoundary exposes the concatenated per-cell sorted source-node lists
// for serialization.
func (cs *CellStorage) SourceBoundary() []NodeID { return cs.sourceBoundary }

// DestinationBoundary exposes the concatenated per-cell sorted
// destination-node lists for serialization.
func (cs *CellStorage) DestinationBoundary() []NodeID { return cs.destinationBoundary }

// NewCellStorageFromRaw reconstructs a CellStorage directly from previously
// computed structural arrays, skipping NewCellStorage's graph scan. It is
// what the archive package uses to load a persisted layout.
func NewCellStorageFromRaw(numLevels LevelID, levelOffsets []uint32, cells []CellRecord, sourceBoundary, destinationBoundary []NodeID) (*CellStorage, error) {
	if len(levelOffsets) != int(numLevels)+1 {
		return nil, fmt.Errorf("NewCellStorageFromRaw: level_offsets has %d entries, want %d", len(levelOffsets), numLevels+1)
	}
	if len(cells) != int(levelOffsets[numLevels]) {
		return nil, fmt.Errorf("NewCellStorageFromRaw: %d cells, level_offsets sentinel says %d", len(cells), levelOffsets[numLevels])
	}

	internal := make([]cellRecord, len(cells))
	var totalValueArea uint64
	for i, c := range cells {
		internal[i] = cellRecord{sourceBegin: c.SourceBegin, sourceLen: c.SourceLen, destBegin: c.DestBegin, destLen: c.DestLen, valueOffset: c.ValueOffset}
		end := c.ValueOffset + uint64(c.SourceLen)*uint64(c.DestLen)
		if end > totalValueArea {
			totalValueArea = end
		}
	}

	return &CellStorage{
		numLevels:           numLevels,
		levelOffsets:        levelOffsets,
		cells:               internal,
		sourceBoundary:      sourceBoundary,
		destinationBoundary: destinationBoundary,
		totalValueArea:      totalValueArea,
	}, nil
}

// RawWeight exposes the metric's flat weight array for serialization.
func (m *Metric) RawWeight() []EdgeWeight { return m.weight }

// RawDuration exposes the metric's flat duration array for serialization.
func (m *Metric) RawDuration() []EdgeDuration { return m.duration }

// RawDistance exposes the metric's flat distance array for serialization.
func (m *Metric) RawDistance() []EdgeDistance { return m.distance }

// NewMetricFromRaw reconstructs a Metric over an already-built CellStorage
// from previously computed value arrays, skipping NewMetric's
// all-unreachable initialization. It is what the archive package uses to
// load a persisted metric's weights, durations and distances.
func NewMetricFromRaw(cs *CellStorage, weight []EdgeWeight, duration []EdgeDuration, distance []EdgeDistance) (*Metric, error) {
	if cs == nil {
		return nil, fmt.Errorf("NewMetricFromRaw: %w", ErrNilCellStorage)
	}
	area := cs.TotalValueArea()
	if uint64(len(weight)) != area || uint64(len(duration)) != area || uint64(len(distance)) != area {
		return nil, fmt.Errorf("NewMetricFromRaw: weight/duration/distance have %d/%d/%d entries, want %d",
			len(weight), len(duration), len(distance), area)
	}
	return &Metric{storage: cs, weight: weight, duration: duration, distance: distance}, nil
}
