package partition

import "fmt"

// bitWidth returns ceil(log2(n+1)), the number of bits needed to represent
// values 0..n inclusive (so that a count n itself fits).
func bitWidth(n uint32) uint8 {
	var w uint8
	// need values 0..n to be representable, i.e. 2^w > n
	for (uint64(1) << w) <= uint64(n) {
		w++
	}
	if w == 0 {
		w = 1 // always reserve at least one bit, even for n==0
	}
	return w
}

// NewMultiLevelPartition builds the packed representation of a nested cell
// hierarchy.
//
// levelCellIDs[i] gives, for level i+1 (levels are 1-indexed; level 0 is
// synthetic and always equals the node id), the cell id of every node.
// cellCounts[i] is the declared upper bound on the number of distinct cells
// at level i+1.
//
// Construction fails with ErrStructuralInvariant if the nesting invariant is
// violated: two nodes sharing a cell at level L must share a cell at every
// level L' > L. This is a programmer/partitioner error; no runtime recovery
// is attempted.
func NewMultiLevelPartition(numNodes int, levelCellIDs [][]CellID, cellCounts []uint32) (*MultiLevelPartition, error) {
	if numNodes <= 0 {
		return nil, fmt.Errorf("NewMultiLevelPartition: %w", ErrInvalidNodeCount)
	}
	if len(levelCellIDs) != len(cellCounts) {
		return nil, fmt.Errorf("NewMultiLevelPartition: %d level vectors vs %d cell counts: %w",
			len(levelCellIDs), len(cellCounts), ErrLevelShapeMismatch)
	}
	numLevels := len(levelCellIDs)
	if numLevels == 0 {
		return nil, fmt.Errorf("NewMultiLevelPartition: at least one level required: %w", ErrLevelShapeMismatch)
	}
	for i, vec := range levelCellIDs {
		if len(vec) != numNodes {
			return nil, fmt.Errorf("NewMultiLevelPartition: level %d has %d entries, want %d: %w",
				i+1, len(vec), numNodes, ErrLevelShapeMismatch)
		}
		for n, c := range vec {
			if c >= cellCounts[i] {
				return nil, fmt.Errorf("NewMultiLevelPartition: level %d node %d cell %d >= count %d: %w",
					i+1, n, c, cellCounts[i], ErrCellIDOutOfRange)
			}
		}
	}
	if cellCounts[numLevels-1] != 1 {
		return nil, fmt.Errorf("NewMultiLevelPartition: top level has %d cells: %w",
			cellCounts[numLevels-1], ErrTopLevelNotSingleton)
	}

	p := &MultiLevelPartition{
		numNodes:  numNodes,
		numLevels: LevelID(numLevels),
	}

	// Layout: index 0 is the synthetic level-0 field (the node id itself),
	// index i (1..numLevels) is level i.
	p.layouts = make([]levelLayout, numLevels+1)
	p.layouts[0] = levelLayout{cellCount: uint32(numNodes), bitWidth: bitWidth(uint32(numNodes))}
	for i := 0; i < numLevels; i++ {
		p.layouts[i+1] = levelLayout{cellCount: cellCounts[i], bitWidth: bitWidth(cellCounts[i])}
	}

	// Assign bit offsets/words, low level (0) first, filling words from the
	// LSB up. The common case packs everything into one uint64; wider
	// hierarchies spill into additional words transparently.
	var offset uint32
	for i := range p.layouts {
		lay := &p.layouts[i]
		lay.bitOffset = offset
		lay.word = int(offset / wordBits)
		lay.shift = uint8(offset % wordBits)
		// A field must not straddle a word boundary: if it would, push it to
		// the start of the next word instead.
		if uint32(lay.shift)+uint32(lay.bitWidth) > wordBits {
			lay.word++
			lay.shift = 0
			offset = uint32(lay.word) * wordBits
			lay.bitOffset = offset
		}
		offset += uint32(lay.bitWidth)
	}
	p.wordsPerNode = p.layouts[len(p.layouts)-1].word + 1

	p.words = make([]uint64, numNodes*p.wordsPerNode)
	for n := 0; n < numNodes; n++ {
		p.setField(n, 0, uint32(n))
		for i := 0; i < numLevels; i++ {
			p.setField(n, i+1, uint32(levelCellIDs[i][n]))
		}
	}

	if err := p.buildChildren(levelCellIDs, cellCounts); err != nil {
		return nil, err
	}

	return p, nil
}

// setField writes value into node n's layout-index field (field index 0 is
// level 0, field index i is level i).
func (p *MultiLevelPartition) setField(node int, fieldIdx int, value uint32) {
	lay := p.layouts[fieldIdx]
	mask := uint64(1)<<lay.bitWidth - 1
	base := node*p.wordsPerNode + lay.word
	p.words[base] |= (uint64(value) & mask) << lay.shift
}

// getField reads node n's layout-index field.
func (p *MultiLevelPartition) getField(node int, fieldIdx int) uint32 {
	lay := p.layouts[fieldIdx]
	mask := uint64(1)<<lay.bitWidth - 1
	base := node*p.wordsPerNode + lay.word
	return uint32((p.words[base] >> lay.shift) & mask)
}

// buildChildren validates the nesting invariant and constructs, for each
// level L>=2, the contiguous child-range tables used by Children.
func (p *MultiLevelPartition) buildChildren(levelCellIDs [][]CellID, cellCounts []uint32) error {
	numLevels := len(levelCellIDs)
	p.childBegin = make([][]uint32, 0, numLevels-1)
	p.childEnd = make([][]uint32, 0, numLevels-1)
	p.childIDs = make([][]CellID, 0, numLevels-1)

	for lvl := 2; lvl <= numLevels; lvl++ {
		childVec := levelCellIDs[lvl-2]  // level lvl-1
		parentVec := levelCellIDs[lvl-1] // level lvl
		childCount := cellCounts[lvl-2]
		parentCount := cellCounts[lvl-1]

		parentOf := make([]CellID, childCount)
		seen := make([]bool, childCount)
		for n := 0; n < p.numNodes; n++ {
			c := childVec[n]
			par := parentVec[n]
			if !seen[c] {
				seen[c] = true
				parentOf[c] = par
			} else if parentOf[c] != par {
				return fmt.Errorf(
					"NewMultiLevelPartition: level %d cell %d maps to both parent %d and %d: %w",
					lvl-1, c, parentOf[c], par, ErrStructuralInvariant)
			}
		}

		// Group child cell ids by parent, stable, producing a contiguous
		// per-parent range.
		counts := make([]uint32, parentCount)
		for c := uint32(0); c < childCount; c++ {
			if seen[c] {
				counts[parentOf[c]]++
			}
		}
		begin := make([]uint32, parentCount)
		end := make([]uint32, parentCount)
		var running uint32
		for par := uint32(0); par < parentCount; par++ {
			begin[par] = running
			running += counts[par]
			end[par] = running
		}
		ids := make([]CellID, running)
		cursor := make([]uint32, parentCount)
		copy(cursor, begin)
		for c := uint32(0); c < childCount; c++ {
			if !seen[c] {
				continue
			}
			par := parentOf[c]
			ids[cursor[par]] = c
			cursor[par]++
		}

		p.childBegin = append(p.childBegin, begin)
		p.childEnd = append(p.childEnd, end)
		p.childIDs = append(p.childIDs, ids)
	}
	return nil
}

// NumberOfLevels returns L, the number of non-synthetic levels (1..L).
func (p *MultiLevelPartition) NumberOfLevels() LevelID { return p.numLevels }

// NumberOfNodes returns the node count the partition was built over.
func (p *MultiLevelPartition) NumberOfNodes() int { return p.numNodes }

// NumberOfCells returns the declared cell count at level.
func (p *MultiLevelPartition) NumberOfCells(level LevelID) (uint32, error) {
	if level > p.numLevels {
		return 0, fmt.Errorf("NumberOfCells: level %d > %d: %w", level, p.numLevels, ErrOutOfRange)
	}
	return p.layouts[level].cellCount, nil
}

// Cell returns the cell id of node at level. Level 0 always returns node.
func (p *MultiLevelPartition) Cell(level LevelID, node NodeID) (CellID, error) {
	if level > p.numLevels {
		return InvalidCellID, fmt.Errorf("Cell: level %d > %d: %w", level, p.numLevels, ErrOutOfRange)
	}
	if int(node) >= p.numNodes {
		return InvalidCellID, fmt.Errorf("Cell: node %d >= %d: %w", node, p.numNodes, ErrOutOfRange)
	}
	return p.getField(int(node), int(level)), nil
}

// HighestDifferentLevel returns the largest level at which u and v are in
// different cells, scanning from the top level down. Two distinct nodes that
// share their level-1 cell differ only at the synthetic level 0, so the
// answer for them is 0. Calling it with u == v reports ErrSameNode rather
// than silently returning 0 for a pair the caller likely didn't intend to
// compare.
func (p *MultiLevelPartition) HighestDifferentLevel(u, v NodeID) (LevelID, error) {
	if int(u) >= p.numNodes || int(v) >= p.numNodes {
		return 0, fmt.Errorf("HighestDifferentLevel: node out of range: %w", ErrOutOfRange)
	}
	if u == v {
		return 0, fmt.Errorf("HighestDifferentLevel(%d,%d): %w", u, v, ErrSameNode)
	}
	for lvl := int(p.numLevels); lvl >= 1; lvl-- {
		if p.getField(int(u), lvl) != p.getField(int(v), lvl) {
			return LevelID(lvl), nil
		}
	}
	return 0, nil
}

// Children returns the sorted level-(level-1) cell ids nested inside cell at
// level. level must be >= 2 (level 1's children are individual nodes, which
// this package does not enumerate).
func (p *MultiLevelPartition) Children(level LevelID, cell CellID) ([]CellID, error) {
	if level < 2 || level > p.numLevels {
		return nil, fmt.Errorf("Children: level %d out of [2,%d]: %w", level, p.numLevels, ErrOutOfRange)
	}
	idx := int(level) - 2
	if cell >= uint32(len(p.childBegin[idx])) {
		return nil, fmt.Errorf("Children: cell %d out of range: %w", cell, ErrOutOfRange)
	}
	b, e := p.childBegin[idx][cell], p.childEnd[idx][cell]
	return p.childIDs[idx][b:e], nil
}
