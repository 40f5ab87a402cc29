package partition

import "fmt"

// LevelLayout is the exported, serializable description of one level's
// packed field, matching the mlp/level_data archive block.
type LevelLayout struct {
	CellCount uint32
	BitWidth  uint8
	BitOffset uint32
	Word      int
	Shift     uint8
}

// PartitionView is a read-only, non-owning PartitionReader over packed
// partition words and child tables supplied by the caller (typically a
// memory-mapped archive block). It allocates only the lightweight wrapper
// and a copy of the small per-level layout table, and never mutates the
// backing slices.
//
// Construction is deliberately not provided for the borrowing side beyond
// this single adapter: unlike MultiLevelPartition, a PartitionView cannot
// validate the nesting invariant cheaply (that would require re-deriving it
// from raw words), so it trusts the archive's own checksum/canary framing
// to have already been validated by the caller before wrapping.
type PartitionView struct {
	numNodes     int
	numLevels    LevelID
	wordsPerNode int
	layouts      []levelLayout
	words        []uint64 // borrowed, not owned

	childBegin [][]uint32
	childEnd   [][]uint32
	childIDs   [][]CellID
}

// NewMultiLevelPartitionView wraps borrowed storage as a PartitionReader.
// words, childBegin, childEnd and childIDs are retained by reference, not
// copied; the caller must keep them alive (and immutable) for the view's
// lifetime.
func NewMultiLevelPartitionView(
	numNodes int,
	numLevels LevelID,
	layouts []LevelLayout,
	words []uint64,
	childBegin, childEnd [][]uint32,
	childIDs [][]CellID,
) (*PartitionView, error) {
	if numNodes <= 0 {
		return nil, fmt.Errorf("NewMultiLevelPartitionView: %w", ErrInvalidNodeCount)
	}
	if len(layouts) != int(numLevels)+1 {
		return nil, fmt.Errorf("NewMultiLevelPartitionView: %d layouts, want %d: %w",
			len(layouts), numLevels+1, ErrLevelShapeMismatch)
	}
	wordsPerNode := layouts[len(layouts)-1].Word + 1
	if len(words) != numNodes*wordsPerNode {
		return nil, fmt.Errorf("NewMultiLevelPartitionView: %d words, want %d: %w",
			len(words), numNodes*wordsPerNode, ErrLevelShapeMismatch)
	}
	internal := make([]levelLayout, len(layouts))
	for i, l := range layouts {
		internal[i] = levelLayout{cellCount: l.CellCount, bitWidth: l.BitWidth, bitOffset: l.BitOffset, word: l.Word, shift: l.Shift}
	}
	return &PartitionView{
		numNodes:     numNodes,
		numLevels:    numLevels,
		wordsPerNode: wordsPerNode,
		layouts:      internal,
		words:        words,
		childBegin:   childBegin,
		childEnd:     childEnd,
		childIDs:     childIDs,
	}, nil
}

func (v *PartitionView) getField(node int, fieldIdx int) uint32 {
	lay := v.layouts[fieldIdx]
	mask := uint64(1)<<lay.bitWidth - 1
	base := node*v.wordsPerNode + lay.word
	return uint32((v.words[base] >> lay.shift) & mask)
}

// NumberOfLevels implements PartitionReader.
func (v *PartitionView) NumberOfLevels() LevelID { return v.numLevels }

// NumberOfNodes implements PartitionReader.
func (v *PartitionView) NumberOfNodes() int { return v.numNodes }

// NumberOfCells implements PartitionReader.
func (v *PartitionView) NumberOfCells(level LevelID) (uint32, error) {
	if level > v.numLevels {
		return 0, fmt.Errorf("NumberOfCells: level %d > %d: %w", level, v.numLevels, ErrOutOfRange)
	}
	return v.layouts[level].cellCount, nil
}

// Cell implements PartitionReader.
func (v *PartitionView) Cell(level LevelID, node NodeID) (CellID, error) {
	if level > v.numLevels {
		return InvalidCellID, fmt.Errorf("Cell: level %d > %d: %w", level, v.numLevels, ErrOutOfRange)
	}
	if int(node) >= v.numNodes {
		return InvalidCellID, fmt.Errorf("Cell: node %d >= %d: %w", node, v.numNodes, ErrOutOfRange)
	}
	return v.getField(int(node), int(level)), nil
}

// HighestDifferentLevel implements PartitionReader.
func (v *PartitionView) HighestDifferentLevel(u, nodeV NodeID) (LevelID, error) {
	if int(u) >= v.numNodes || int(nodeV) >= v.numNodes {
		return 0, fmt.Errorf("HighestDifferentLevel: node out of range: %w", ErrOutOfRange)
	}
	if u == nodeV {
		return 0, fmt.Errorf("HighestDifferentLevel(%d,%d): %w", u, nodeV, ErrSameNode)
	}
	for lvl := int(v.numLevels); lvl >= 1; lvl-- {
		if v.getField(int(u), lvl) != v.getField(int(nodeV), lvl) {
			return LevelID(lvl), nil
		}
	}
	return 0, nil
}

// Children implements PartitionReader.
func (v *PartitionView) Children(level LevelID, cell CellID) ([]CellID, error) {
	if level < 2 || level > v.numLevels {
		return nil, fmt.Errorf("Children: level %d out of [2,%d]: %w", level, v.numLevels, ErrOutOfRange)
	}
	idx := int(level) - 2
	if cell >= uint32(len(v.childBegin[idx])) {
		return nil, fmt.Errorf("Children: cell %d out of range: %w", cell, ErrOutOfRange)
	}
	b, e := v.childBegin[idx][cell], v.childEnd[idx][cell]
	return v.childIDs[idx][b:e], nil
}

// Layouts exposes the level layout table for serialization.
func (p *MultiLevelPartition) Layouts() []LevelLayout {
	out := make([]LevelLayout, len(p.layouts))
	for i, l := range p.layouts {
		out[i] = LevelLayout{CellCount: l.cellCount, BitWidth: l.bitWidth, BitOffset: l.bitOffset, Word: l.word, Shift: l.shift}
	}
	return out
}

// Words exposes the packed per-node record array for serialization.
func (p *MultiLevelPartition) Words() []uint64 { return p.words }

// WordsPerNode exposes the per-node record width for serialization.
func (p *MultiLevelPartition) WordsPerNode() int { return p.wordsPerNode }

// ChildTables exposes the per-level child range/id tables for serialization.
func (p *MultiLevelPartition) ChildTables() (begin, end [][]uint32, ids [][]CellID) {
	return p.childBegin, p.childEnd, p.childIDs
}
