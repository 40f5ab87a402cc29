package mlgraph

import (
	"fmt"

	"github.com/katalvlaran/crp/partition"
)

// NodeFirstEdge exposes the CSR row-pointer array for serialization.
func (g *MultiLevelGraph) NodeFirstEdge() []uint32 { return g.nodeFirstEdge }

// LevelOffsetTable exposes the per-node border-edge offset table for
// serialization, along with the row count it actually covers (levelOffset
// is truncated at the highest node id with any border edge) and the
// per-node row stride (numLevels + 1).
func (g *MultiLevelGraph) LevelOffsetTable() (table []uint8, limit int, stride int) {
	return g.levelOffset, g.levelOffsetLimit, g.stride
}

// RawEdges exposes the flattened edge array's three parallel channels, in
// CSR order, for serialization.
func (g *MultiLevelGraph) RawEdges() (targets []NodeID, levels []LevelID, data []EdgeData) {
	targets = make([]NodeID, len(g.edges))
	levels = make([]LevelID, len(g.edges))
	data = make([]EdgeData, len(g.edges))
	for i, e := range g.edges {
		targets[i] = e.target
		levels[i] = e.level
		data[i] = e.data
	}
	return targets, levels, data
}

// NewMultiLevelGraphFromRaw reconstructs a MultiLevelGraph directly from a
// previously sorted CSR layout, skipping the sort and rebuild
// NewMultiLevelGraph performs. It is what the archive package uses to load
// a persisted graph: every array is exactly what RawEdges/NodeFirstEdge/
// LevelOffsetTable produced, so this constructor only validates shape and
// recomputes the checksum, rather than re-deriving structure from an edge
// list.
func NewMultiLevelGraphFromRaw(
	numNodes int,
	numLevels LevelID,
	nodeFirstEdge []uint32,
	targets []NodeID,
	levels []LevelID,
	data []EdgeData,
	levelOffset []uint8,
	levelOffsetLimit int,
	part partition.PartitionReader,
) (*MultiLevelGraph, error) {
	if part == nil {
		return nil, fmt.Errorf("NewMultiLevelGraphFromRaw: %w", ErrNilPartition)
	}
	if part.NumberOfNodes() != numNodes {
		return nil, fmt.Errorf("NewMultiLevelGraphFromRaw: %w", ErrNodeCountMismatch)
	}
	if len(nodeFirstEdge) != numNodes+1 {
		return nil, fmt.Errorf("NewMultiLevelGraphFromRaw: node_array has %d entries, want %d", len(nodeFirstEdge), numNodes+1)
	}
	numEdges := int(nodeFirstEdge[numNodes])
	if len(targets) != numEdges || len(levels) != numEdges || len(data) != numEdges {
		return nil, fmt.Errorf("NewMultiLevelGraphFromRaw: edge_array has %d/%d/%d entries, want %d", len(targets), len(levels), len(data), numEdges)
	}
	for i, d := range data {
		if d == nil {
			return nil, fmt.Errorf("NewMultiLevelGraphFromRaw: edge %d: %w", i, ErrNilEdgeData)
		}
	}
	stride := int(numLevels) + 1
	if len(levelOffset) != levelOffsetLimit*stride {
		return nil, fmt.Errorf("NewMultiLevelGraphFromRaw: node_to_edge_offset has %d entries, want %d", len(levelOffset), levelOffsetLimit*stride)
	}

	g := &MultiLevelGraph{
		part:             part,
		numNodes:         numNodes,
		numLevels:        numLevels,
		nodeFirstEdge:    nodeFirstEdge,
		edges:            make([]edgeRecord, numEdges),
		levelOffset:      levelOffset,
		stride:           stride,
		levelOffsetLimit: levelOffsetLimit,
	}
	for i := range g.edges {
		g.edges[i] = edgeRecord{target: targets[i], level: levels[i], data: data[i]}
	}
	g.checksum = g.computeChecksum()
	return g, nil
}
