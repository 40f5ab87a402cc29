package archive

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/katalvlaran/crp/cellstorage"
	"github.com/katalvlaran/crp/mlgraph"
	"github.com/katalvlaran/crp/partition"
)

// Loaded holds everything reconstructed from one archive file. Partition is
// a borrowing PartitionView over a freshly decoded copy of the file's packed
// words; Graph, Cells and Metrics own freshly allocated copies of their
// arrays.
type Loaded struct {
	Partition partition.PartitionReader
	Graph     *mlgraph.MultiLevelGraph
	Cells     *cellstorage.CellStorage
	Metrics   map[string]*cellstorage.Metric
}

func decodeU32Slice(payload []byte, count uint64) []uint32 {
	out := make([]uint32, count)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(payload[i*4:])
	}
	return out
}

func decodeU64Slice(payload []byte, count uint64) []uint64 {
	out := make([]uint64, count)
	for i := range out {
		out[i] = binary.LittleEndian.Uint64(payload[i*8:])
	}
	return out
}

func decodeI32Slice(payload []byte, count uint64) []int32 {
	out := make([]int32, count)
	for i := range out {
		out[i] = int32(binary.LittleEndian.Uint32(payload[i*4:]))
	}
	return out
}

func decodeF32Slice(payload []byte, count uint64) []float32 {
	out := make([]float32, count)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(payload[i*4:]))
	}
	return out
}

func decodeLevelLayouts(payload []byte, count uint64) ([]partition.LevelLayout, error) {
	const entrySize = 14
	if uint64(len(payload)) != count*entrySize {
		return nil, fmt.Errorf("decodeLevelLayouts: %w", ErrBlockShapeMismatch)
	}
	out := make([]partition.LevelLayout, count)
	for i := range out {
		p := payload[i*entrySize:]
		out[i] = partition.LevelLayout{
			CellCount: binary.LittleEndian.Uint32(p[0:4]),
			BitWidth:  p[4],
			BitOffset: binary.LittleEndian.Uint32(p[5:9]),
			Word:      int(binary.LittleEndian.Uint32(p[9:13])),
			Shift:     p[13],
		}
	}
	return out, nil
}

func decodeCellToChildren(payload []byte, count uint64) (childBegin, childEnd [][]uint32, childIDs [][]partition.CellID, err error) {
	childBegin = make([][]uint32, count)
	childEnd = make([][]uint32, count)
	childIDs = make([][]partition.CellID, count)
	pos := 0
	for i := uint64(0); i < count; i++ {
		if pos+4 > len(payload) {
			return nil, nil, nil, fmt.Errorf("decodeCellToChildren: group %d: %w", i, ErrBlockShapeMismatch)
		}
		n := int(binary.LittleEndian.Uint32(payload[pos:]))
		pos += 4
		need := n*4*2 + 4
		if pos+need > len(payload) {
			return nil, nil, nil, fmt.Errorf("decodeCellToChildren: group %d: %w", i, ErrBlockShapeMismatch)
		}
		childBegin[i] = decodeU32Slice(payload[pos:pos+n*4], uint64(n))
		pos += n * 4
		childEnd[i] = decodeU32Slice(payload[pos:pos+n*4], uint64(n))
		pos += n * 4
		m := int(binary.LittleEndian.Uint32(payload[pos:]))
		pos += 4
		if pos+m*4 > len(payload) {
			return nil, nil, nil, fmt.Errorf("decodeCellToChildren: group %d ids: %w", i, ErrBlockShapeMismatch)
		}
		childIDs[i] = decodeU32Slice(payload[pos:pos+m*4], uint64(m))
		pos += m * 4
	}
	return childBegin, childEnd, childIDs, nil
}

func decodeEdgeArray(payload []byte, count uint64) ([]mlgraph.NodeID, []mlgraph.LevelID, []mlgraph.EdgeData, error) {
	const entrySize = 18
	if uint64(len(payload)) != count*entrySize {
		return nil, nil, nil, fmt.Errorf("decodeEdgeArray: %w", ErrBlockShapeMismatch)
	}
	targets := make([]mlgraph.NodeID, count)
	levels := make([]mlgraph.LevelID, count)
	data := make([]mlgraph.EdgeData, count)
	for i := range targets {
		p := payload[i*entrySize:]
		targets[i] = binary.LittleEndian.Uint32(p[0:4])
		levels[i] = p[4]
		flags := p[17]
		data[i] = mlgraph.StoredEdgeData{
			W:    int32(binary.LittleEndian.Uint32(p[5:9])),
			Dur:  int32(binary.LittleEndian.Uint32(p[9:13])),
			Dist: math.Float32frombits(binary.LittleEndian.Uint32(p[13:17])),
			Fwd:  flags&1 != 0,
			Bwd:  flags&2 != 0,
		}
	}
	return targets, levels, data, nil
}

func decodeCellRecords(payload []byte, count uint64) ([]cellstorage.CellRecord, error) {
	const entrySize = 24
	if uint64(len(payload)) != count*entrySize {
		return nil, fmt.Errorf("decodeCellRecords: %w", ErrBlockShapeMismatch)
	}
	out := make([]cellstorage.CellRecord, count)
	for i := range out {
		p := payload[i*entrySize:]
		out[i] = cellstorage.CellRecord{
			SourceBegin: binary.LittleEndian.Uint32(p[0:4]),
			SourceLen:   binary.LittleEndian.Uint32(p[4:8]),
			DestBegin:   binary.LittleEndian.Uint32(p[8:12]),
			DestLen:     binary.LittleEndian.Uint32(p[12:16]),
			ValueOffset: binary.LittleEndian.Uint64(p[16:24]),
		}
	}
	return out, nil
}

func decodeNodeToEdgeOffset(payload []byte) ([]uint8, int, error) {
	if len(payload) < 4 {
		return nil, 0, fmt.Errorf("decodeNodeToEdgeOffset: %w", ErrBlockShapeMismatch)
	}
	limit := int(binary.LittleEndian.Uint32(payload[0:4]))
	table := make([]uint8, len(payload)-4)
	copy(table, payload[4:])
	return table, limit, nil
}

func decodeMetricNames(payload []byte, count uint64) ([]string, error) {
	names := make([]string, 0, count)
	pos := 0
	for i := uint64(0); i < count; i++ {
		if pos+2 > len(payload) {
			return nil, fmt.Errorf("decodeMetricNames: entry %d: %w", i, ErrBlockShapeMismatch)
		}
		n := int(binary.LittleEndian.Uint16(payload[pos:]))
		pos += 2
		if pos+n > len(payload) {
			return nil, fmt.Errorf("decodeMetricNames: entry %d: %w", i, ErrBlockShapeMismatch)
		}
		names = append(names, string(payload[pos:pos+n]))
		pos += n
	}
	return names, nil
}

// Load opens and fully reconstructs the archive at path.
func Load(path string) (*Loaded, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Load: %w", err)
	}
	defer f.Close()
	return loadFrom(f)
}

func loadFrom(ra io.ReaderAt) (*Loaded, error) {
	hdr := make([]byte, fileHeaderSize)
	if _, err := ra.ReadAt(hdr, 0); err != nil {
		return nil, fmt.Errorf("Load: %w", err)
	}
	if string(hdr[0:4]) != fileMagic {
		return nil, fmt.Errorf("Load: %w", ErrBadMagic)
	}
	if binary.LittleEndian.Uint32(hdr[4:8]) != fileVersion {
		return nil, fmt.Errorf("Load: %w", ErrUnsupportedVersion)
	}
	manifestOffset := binary.LittleEndian.Uint64(hdr[8:16])
	manifestLength := binary.LittleEndian.Uint64(hdr[16:24])

	manifestCount, manifestPayload, frameLen, err := readFrame(ra, manifestOffset, blockManifest)
	if err != nil {
		return nil, fmt.Errorf("Load: %w", err)
	}
	if frameLen != manifestLength {
		return nil, fmt.Errorf("Load: manifest: %w", ErrBlockShapeMismatch)
	}
	entries, err := decodeManifest(manifestPayload, manifestCount)
	if err != nil {
		return nil, fmt.Errorf("Load: %w", err)
	}
	index := make(map[string]manifestEntry, len(entries))
	for _, e := range entries {
		index[e.Name] = e
	}

	get := func(name string) (uint64, []byte, error) {
		e, ok := index[name]
		if !ok {
			return 0, nil, fmt.Errorf("Load: %s: %w", name, ErrBlockNotFound)
		}
		cnt, payload, fl, err := readFrame(ra, e.Offset, name)
		if err != nil {
			return 0, nil, fmt.Errorf("Load: %w", err)
		}
		if fl != e.Length {
			return 0, nil, fmt.Errorf("Load: %s: %w", name, ErrBlockShapeMismatch)
		}
		return cnt, payload, nil
	}

	layoutCount, layoutPayload, err := get(blockMLPLevelData)
	if err != nil {
		return nil, err
	}
	layouts, err := decodeLevelLayouts(layoutPayload, layoutCount)
	if err != nil {
		return nil, fmt.Errorf("Load: %w", err)
	}
	if len(layouts) == 0 {
		return nil, fmt.Errorf("Load: empty level_data: %w", ErrBlockShapeMismatch)
	}

	wordCount, wordPayload, err := get(blockMLPPartition)
	if err != nil {
		return nil, err
	}
	words := decodeU64Slice(wordPayload, wordCount)

	childCount, childPayload, err := get(blockMLPCellToChildren)
	if err != nil {
		return nil, err
	}
	childBegin, childEnd, childIDs, err := decodeCellToChildren(childPayload, childCount)
	if err != nil {
		return nil, fmt.Errorf("Load: %w", err)
	}

	wordsPerNode := layouts[len(layouts)-1].Word + 1
	numNodes := 0
	if wordsPerNode > 0 {
		numNodes = len(words) / wordsPerNode
	}
	numLevels := partition.LevelID(len(layouts) - 1)

	partView, err := partition.NewMultiLevelPartitionView(numNodes, numLevels, layouts, words, childBegin, childEnd, childIDs)
	if err != nil {
		return nil, fmt.Errorf("Load: %w", err)
	}

	nodeArrCount, nodeArrPayload, err := get(blockMLGNodeArray)
	if err != nil {
		return nil, err
	}
	nodeFirstEdge := decodeU32Slice(nodeArrPayload, nodeArrCount)

	edgeCount, edgePayload, err := get(blockMLGEdgeArray)
	if err != nil {
		return nil, err
	}
	targets, levels, data, err := decodeEdgeArray(edgePayload, edgeCount)
	if err != nil {
		return nil, fmt.Errorf("Load: %w", err)
	}

	offCount, offPayload, err := get(blockMLGNodeToEdgeOffset)
	if err != nil {
		return nil, err
	}
	levelOffset, limit, err := decodeNodeToEdgeOffset(offPayload)
	if err != nil {
		return nil, fmt.Errorf("Load: %w", err)
	}
	if uint64(len(levelOffset)) != offCount {
		return nil, fmt.Errorf("Load: node_to_edge_offset: %w", ErrBlockShapeMismatch)
	}

	_, checksumPayload, err := get(blockMLGChecksum)
	if err != nil {
		return nil, err
	}
	if len(checksumPayload) != 4 {
		return nil, fmt.Errorf("Load: connectivity_checksum: %w", ErrBlockShapeMismatch)
	}
	wantChecksum := binary.LittleEndian.Uint32(checksumPayload)

	g, err := mlgraph.NewMultiLevelGraphFromRaw(numNodes, numLevels, nodeFirstEdge, targets, levels, data, levelOffset, limit, partView)
	if err != nil {
		return nil, fmt.Errorf("Load: %w", err)
	}
	if g.Checksum() != wantChecksum {
		return nil, fmt.Errorf("Load: graph checksum %x, want %x: %w", g.Checksum(), wantChecksum, ErrIncompatibleData)
	}

	srcCount, srcPayload, err := get(blockCellsSourceBoundary)
	if err != nil {
		return nil, err
	}
	sourceBoundary := decodeU32Slice(srcPayload, srcCount)

	dstCount, dstPayload, err := get(blockCellsDestBoundary)
	if err != nil {
		return nil, err
	}
	destBoundary := decodeU32Slice(dstPayload, dstCount)

	cellCount, cellPayload, err := get(blockCellsCells)
	if err != nil {
		return nil, err
	}
	cells, err := decodeCellRecords(cellPayload, cellCount)
	if err != nil {
		return nil, fmt.Errorf("Load: %w", err)
	}

	cellLevelOffCount, cellLevelOffPayload, err := get(blockCellsLevelOffsets)
	if err != nil {
		return nil, err
	}
	cellLevelOffsets := decodeU32Slice(cellLevelOffPayload, cellLevelOffCount)

	cs, err := cellstorage.NewCellStorageFromRaw(numLevels, cellLevelOffsets, cells, sourceBoundary, destBoundary)
	if err != nil {
		return nil, fmt.Errorf("Load: %w", err)
	}

	nameCount, namePayload, err := get(blockMetricNames)
	if err != nil {
		return nil, err
	}
	names, err := decodeMetricNames(namePayload, nameCount)
	if err != nil {
		return nil, fmt.Errorf("Load: %w", err)
	}

	metrics := make(map[string]*cellstorage.Metric, len(names))
	for _, name := range names {
		wCount, wPayload, err := get(metricWeightsBlock(name))
		if err != nil {
			return nil, err
		}
		weight := decodeI32Slice(wPayload, wCount)

		dCount, dPayload, err := get(metricDurationsBlock(name))
		if err != nil {
			return nil, err
		}
		duration := decodeI32Slice(dPayload, dCount)

		sCount, sPayload, err := get(metricDistancesBlock(name))
		if err != nil {
			return nil, err
		}
		distance := decodeF32Slice(sPayload, sCount)

		metric, err := cellstorage.NewMetricFromRaw(cs, weight, duration, distance)
		if err != nil {
			return nil, fmt.Errorf("Load: metric %s: %w", name, err)
		}
		metrics[name] = metric
	}

	return &Loaded{Partition: partView, Graph: g, Cells: cs, Metrics: metrics}, nil
}
