package mlgraph

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"sort"

	"github.com/katalvlaran/crp/partition"
)

// NewMultiLevelGraph builds a MultiLevelGraph over numNodes nodes from edges,
// keyed by part so that every node's outgoing adjacency is sorted ascending
// by HighestDifferentLevel(source, target).
//
// Self-loops (Source == Target) are assigned level 0 without consulting
// part, since HighestDifferentLevel rejects equal nodes and a self-loop is,
// by definition, internal to every cell.
func NewMultiLevelGraph(numNodes int, edges []InputEdge, part partition.PartitionReader) (*MultiLevelGraph, error) {
	if part == nil {
		return nil, fmt.Errorf("NewMultiLevelGraph: %w", ErrNilPartition)
	}
	if part.NumberOfNodes() != numNodes {
		return nil, fmt.Errorf("NewMultiLevelGraph: graph has %d nodes, partition has %d: %w",
			numNodes, part.NumberOfNodes(), ErrNodeCountMismatch)
	}

	levelled := make([]struct {
		source NodeID
		rec    edgeRecord
	}, len(edges))
	for i, e := range edges {
		if int(e.Source) >= numNodes || int(e.Target) >= numNodes {
			return nil, fmt.Errorf("NewMultiLevelGraph: edge %d: %w", i, ErrNodeOutOfRange)
		}
		if e.Data == nil {
			return nil, fmt.Errorf("NewMultiLevelGraph: edge %d: %w", i, ErrNilEdgeData)
		}
		var lvl LevelID
		if e.Source != e.Target {
			var err error
			lvl, err = part.HighestDifferentLevel(e.Source, e.Target)
			if err != nil {
				return nil, fmt.Errorf("NewMultiLevelGraph: edge %d: %w", i, err)
			}
		}
		levelled[i].source = e.Source
		levelled[i].rec = edgeRecord{target: e.Target, level: lvl, data: e.Data}
	}

	sort.SliceStable(levelled, func(i, j int) bool {
		if levelled[i].source != levelled[j].source {
			return levelled[i].source < levelled[j].source
		}
		if levelled[i].rec.level != levelled[j].rec.level {
			return levelled[i].rec.level < levelled[j].rec.level
		}
		return levelled[i].rec.target < levelled[j].rec.target
	})

	g := &MultiLevelGraph{
		part:          part,
		numNodes:      numNodes,
		numLevels:     part.NumberOfLevels(),
		nodeFirstEdge: make([]uint32, numNodes+1),
		edges:         make([]edgeRecord, len(levelled)),
	}
	g.stride = int(g.numLevels) + 1

	for _, le := range levelled {
		g.nodeFirstEdge[le.source+1]++
	}
	for n := 0; n < numNodes; n++ {
		g.nodeFirstEdge[n+1] += g.nodeFirstEdge[n]
	}
	for i, le := range levelled {
		g.edges[i] = le.rec
	}

	if err := g.buildLevelOffsets(); err != nil {
		return nil, err
	}
	g.checksum = g.computeChecksum()
	return g, nil
}

// buildLevelOffsets derives, per node, the offset at which each level's
// border edges begin, truncating the table at the highest node id that has
// at least one border edge.
func (g *MultiLevelGraph) buildLevelOffsets() error {
	highestBorder := -1
	for n := 0; n < g.numNodes; n++ {
		begin, end := g.nodeFirstEdge[n], g.nodeFirstEdge[n+1]
		if int(end-begin) > 255 {
			return fmt.Errorf("buildLevelOffsets: node %d has degree %d: %w", n, end-begin, ErrDegreeOverflow)
		}
		for _, e := range g.edges[begin:end] {
			if e.level > 0 {
				highestBorder = n
				break
			}
		}
	}
	g.levelOffsetLimit = highestBorder + 1

	g.levelOffset = make([]uint8, g.levelOffsetLimit*g.stride)
	for n := 0; n < g.levelOffsetLimit; n++ {
		begin, end := g.nodeFirstEdge[n], g.nodeFirstEdge[n+1]
		row := g.edges[begin:end]
		pos := 0
		for lvl := 0; lvl < g.stride; lvl++ {
			for pos < len(row) && int(row[pos].level) < lvl {
				pos++
			}
			g.levelOffset[n*g.stride+lvl] = uint8(pos)
		}
	}
	return nil
}

// computeChecksum folds node count, row pointers and edge targets into a
// single CRC32 (IEEE) value, used to detect a graph/partition mismatch after
// deserialization.
func (g *MultiLevelGraph) computeChecksum() uint32 {
	h := crc32.NewIEEE()
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(g.numNodes))
	h.Write(buf[:])
	for _, off := range g.nodeFirstEdge {
		binary.LittleEndian.PutUint32(buf[:], off)
		h.Write(buf[:])
	}
	for _, e := range g.edges {
		binary.LittleEndian.PutUint32(buf[:], e.target)
		h.Write(buf[:])
	}
	return h.Sum32()
}

// NumberOfNodes returns the graph's node count.
func (g *MultiLevelGraph) NumberOfNodes() int { return g.numNodes }

// NumberOfEdges returns the total directed edge count.
func (g *MultiLevelGraph) NumberOfEdges() int { return len(g.edges) }

// Checksum returns the CRC32 computed over the graph's structural arrays.
func (g *MultiLevelGraph) Checksum() uint32 { return g.checksum }

// AdjacentEdges returns the full outgoing edge range of node u.
func (g *MultiLevelGraph) AdjacentEdges(u NodeID) (EdgeRange, error) {
	if int(u) >= g.numNodes {
		return EdgeRange{}, fmt.Errorf("AdjacentEdges: %w", ErrNodeOutOfRange)
	}
	return EdgeRange{Begin: g.nodeFirstEdge[u], End: g.nodeFirstEdge[u+1]}, nil
}

// offsetAt returns the relative offset within u's adjacency at which edges
// of level >= level begin.
func (g *MultiLevelGraph) offsetAt(u NodeID, level LevelID) (uint32, error) {
	if level > g.numLevels {
		return 0, fmt.Errorf("offsetAt: %w", ErrLevelOutOfRange)
	}
	deg := g.nodeFirstEdge[u+1] - g.nodeFirstEdge[u]
	if int(u) >= g.levelOffsetLimit {
		if level == 0 {
			return 0, nil
		}
		return deg, nil
	}
	return uint32(g.levelOffset[int(u)*g.stride+int(level)]), nil
}

// BorderEdges returns the edges of u whose target leaves u's level-level
// cell: those with HighestDifferentLevel(u, target) >= level.
func (g *MultiLevelGraph) BorderEdges(level LevelID, u NodeID) (EdgeRange, error) {
	if int(u) >= g.numNodes {
		return EdgeRange{}, fmt.Errorf("BorderEdges: %w", ErrNodeOutOfRange)
	}
	off, err := g.offsetAt(u, level)
	if err != nil {
		return EdgeRange{}, fmt.Errorf("BorderEdges: %w", err)
	}
	begin := g.nodeFirstEdge[u]
	return EdgeRange{Begin: begin + off, End: g.nodeFirstEdge[u+1]}, nil
}

// InternalEdges returns the edges of u that stay inside u's level-level
// cell: those with HighestDifferentLevel(u, target) < level.
func (g *MultiLevelGraph) InternalEdges(level LevelID, u NodeID) (EdgeRange, error) {
	if int(u) >= g.numNodes {
		return EdgeRange{}, fmt.Errorf("InternalEdges: %w", ErrNodeOutOfRange)
	}
	off, err := g.offsetAt(u, level)
	if err != nil {
		return EdgeRange{}, fmt.Errorf("InternalEdges: %w", err)
	}
	begin := g.nodeFirstEdge[u]
	return EdgeRange{Begin: begin, End: begin + off}, nil
}

// Target returns the target node of edge e.
func (g *MultiLevelGraph) Target(e EdgeID) (NodeID, error) {
	if int(e) >= len(g.edges) {
		return 0, fmt.Errorf("Target: %w", ErrEdgeOutOfRange)
	}
	return g.edges[e].target, nil
}

// EdgeData returns the metric payload of edge e.
func (g *MultiLevelGraph) EdgeData(e EdgeID) (EdgeData, error) {
	if int(e) >= len(g.edges) {
		return nil, fmt.Errorf("EdgeData: %w", ErrEdgeOutOfRange)
	}
	return g.edges[e].data, nil
}

// EdgeLevel returns the level at which edge e's endpoints diverge, i.e. the
// highest level at which e is a border edge of its source; above it, e is
// internal.
func (g *MultiLevelGraph) EdgeLevel(e EdgeID) (LevelID, error) {
	if int(e) >= len(g.edges) {
		return 0, fmt.Errorf("EdgeLevel: %w", ErrEdgeOutOfRange)
	}
	return g.edges[e].level, nil
}

// FindEdge does a linear scan of u's adjacency for an edge to v, returning
// (InvalidEdgeID, false) if none exists. Parallel edges resolve to the first
// one encountered in level-sorted order.
func (g *MultiLevelGraph) FindEdge(u, v NodeID) (EdgeID, bool) {
	if int(u) >= g.numNodes {
		return InvalidEdgeID, false
	}
	begin, end := g.nodeFirstEdge[u], g.nodeFirstEdge[u+1]
	for e := begin; e < end; e++ {
		if g.edges[e].target == v {
			return e, true
		}
	}
	return InvalidEdgeID, false
}

// Partition returns the partition this graph was built against.
func (g *MultiLevelGraph) Partition() partition.PartitionReader { return g.part }
