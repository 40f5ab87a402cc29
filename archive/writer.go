package archive

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/katalvlaran/crp/cellstorage"
	"github.com/katalvlaran/crp/mlgraph"
	"github.com/katalvlaran/crp/partition"
)

func encodeU32Slice(vals []uint32) []byte {
	buf := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(buf[i*4:], v)
	}
	return buf
}

func encodeU64Slice(vals []uint64) []byte {
	buf := make([]byte, 8*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint64(buf[i*8:], v)
	}
	return buf
}

func encodeI32Slice(vals []int32) []byte {
	buf := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(v))
	}
	return buf
}

func encodeF32Slice(vals []float32) []byte {
	buf := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func encodeLevelLayouts(layouts []partition.LevelLayout) []byte {
	const entrySize = 14
	buf := make([]byte, entrySize*len(layouts))
	for i, l := range layouts {
		p := buf[i*entrySize:]
		binary.LittleEndian.PutUint32(p[0:4], l.CellCount)
		p[4] = l.BitWidth
		binary.LittleEndian.PutUint32(p[5:9], l.BitOffset)
		binary.LittleEndian.PutUint32(p[9:13], uint32(l.Word))
		p[13] = l.Shift
	}
	return buf
}

func encodeCellToChildren(childBegin, childEnd [][]uint32, childIDs [][]partition.CellID) []byte {
	var out []byte
	for idx := range childBegin {
		var group []byte
		head := make([]byte, 4)
		binary.LittleEndian.PutUint32(head, uint32(len(childBegin[idx])))
		group = append(group, head...)
		group = append(group, encodeU32Slice(childBegin[idx])...)
		group = append(group, encodeU32Slice(childEnd[idx])...)
		idHead := make([]byte, 4)
		binary.LittleEndian.PutUint32(idHead, uint32(len(childIDs[idx])))
		group = append(group, idHead...)
		group = append(group, encodeU32Slice(childIDs[idx])...)
		out = append(out, group...)
	}
	return out
}

func encodeEdgeArray(targets []mlgraph.NodeID, levels []mlgraph.LevelID, data []mlgraph.EdgeData) []byte {
	const entrySize = 18
	buf := make([]byte, entrySize*len(targets))
	for i := range targets {
		p := buf[i*entrySize:]
		binary.LittleEndian.PutUint32(p[0:4], targets[i])
		p[4] = levels[i]
		binary.LittleEndian.PutUint32(p[5:9], uint32(data[i].Weight()))
		binary.LittleEndian.PutUint32(p[9:13], uint32(data[i].Duration()))
		binary.LittleEndian.PutUint32(p[13:17], math.Float32bits(data[i].Distance()))
		var flags byte
		if data[i].Forward() {
			flags |= 1
		}
		if data[i].Backward() {
			flags |= 2
		}
		p[17] = flags
	}
	return buf
}

func encodeCellRecords(cells []cellstorage.CellRecord) []byte {
	const entrySize = 24
	buf := make([]byte, entrySize*len(cells))
	for i, c := range cells {
		p := buf[i*entrySize:]
		binary.LittleEndian.PutUint32(p[0:4], c.SourceBegin)
		binary.LittleEndian.PutUint32(p[4:8], c.SourceLen)
		binary.LittleEndian.PutUint32(p[8:12], c.DestBegin)
		binary.LittleEndian.PutUint32(p[12:16], c.DestLen)
		binary.LittleEndian.PutUint64(p[16:24], c.ValueOffset)
	}
	return buf
}

func encodeNodeToEdgeOffset(levelOffset []uint8, limit int) []byte {
	buf := make([]byte, 4+len(levelOffset))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(limit))
	copy(buf[4:], levelOffset)
	return buf
}

func encodeMetricNames(names []string) []byte {
	var out []byte
	for _, n := range names {
		head := make([]byte, 2)
		binary.LittleEndian.PutUint16(head, uint16(len(n)))
		out = append(out, head...)
		out = append(out, n...)
	}
	return out
}

// Save persists part, g, cs and metrics to path atomically: the full file is
// assembled in a temp file beside path, then renamed into place.
func Save(path string, part *partition.MultiLevelPartition, g *mlgraph.MultiLevelGraph, cs *cellstorage.CellStorage, metrics map[string]*cellstorage.Metric) error {
	if part == nil || g == nil || cs == nil {
		return fmt.Errorf("Save: %w", ErrNilArgument)
	}

	dir := filepath.Dir(path)
	tempPath := path + ".tmp"
	f, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("Save: failed to create temp file: %w", err)
	}

	writeErr := writeArchive(f, part, g, cs, metrics)

	if syncErr := f.Sync(); syncErr != nil && writeErr == nil {
		writeErr = syncErr
	}
	if closeErr := f.Close(); closeErr != nil && writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		os.Remove(tempPath)
		return fmt.Errorf("Save: %w", writeErr)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("Save: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("Save: failed to rename temp file: %w", err)
	}
	return nil
}

func writeArchive(f *os.File, part *partition.MultiLevelPartition, g *mlgraph.MultiLevelGraph, cs *cellstorage.CellStorage, metrics map[string]*cellstorage.Metric) error {
	// Reserve space for the fixed header; it is rewritten once the manifest
	// offset and length are known.
	if _, err := f.Write(make([]byte, fileHeaderSize)); err != nil {
		return err
	}

	var offset uint64 = fileHeaderSize
	var entries []manifestEntry
	put := func(name string, elementCount uint64, payload []byte) error {
		n, err := writeFrame(f, name, elementCount, payload)
		if err != nil {
			return err
		}
		entries = append(entries, manifestEntry{Name: name, Offset: offset, Length: n})
		offset += n
		return nil
	}

	layouts := part.Layouts()
	if err := put(blockMLPLevelData, uint64(len(layouts)), encodeLevelLayouts(layouts)); err != nil {
		return err
	}
	words := part.Words()
	if err := put(blockMLPPartition, uint64(len(words)), encodeU64Slice(words)); err != nil {
		return err
	}
	childBegin, childEnd, childIDs := part.ChildTables()
	if err := put(blockMLPCellToChildren, uint64(len(childBegin)), encodeCellToChildren(childBegin, childEnd, childIDs)); err != nil {
		return err
	}

	nodeFirstEdge := g.NodeFirstEdge()
	if err := put(blockMLGNodeArray, uint64(len(nodeFirstEdge)), encodeU32Slice(nodeFirstEdge)); err != nil {
		return err
	}
	targets, levels, data := g.RawEdges()
	if err := put(blockMLGEdgeArray, uint64(len(targets)), encodeEdgeArray(targets, levels, data)); err != nil {
		return err
	}
	levelOffset, limit, _ := g.LevelOffsetTable()
	if err := put(blockMLGNodeToEdgeOffset, uint64(len(levelOffset)), encodeNodeToEdgeOffset(levelOffset, limit)); err != nil {
		return err
	}
	checksumBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(checksumBuf, g.Checksum())
	if err := put(blockMLGChecksum, 1, checksumBuf); err != nil {
		return err
	}

	if err := put(blockCellsSourceBoundary, uint64(len(cs.SourceBoundary())), encodeU32Slice(cs.SourceBoundary())); err != nil {
		return err
	}
	if err := put(blockCellsDestBoundary, uint64(len(cs.DestinationBoundary())), encodeU32Slice(cs.DestinationBoundary())); err != nil {
		return err
	}
	if err := put(blockCellsCells, uint64(len(cs.Cells())), encodeCellRecords(cs.Cells())); err != nil {
		return err
	}
	if err := put(blockCellsLevelOffsets, uint64(len(cs.LevelOffsets())), encodeU32Slice(cs.LevelOffsets())); err != nil {
		return err
	}

	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	if err := put(blockMetricNames, uint64(len(names)), encodeMetricNames(names)); err != nil {
		return err
	}
	for _, name := range names {
		m := metrics[name]
		if err := put(metricWeightsBlock(name), uint64(len(m.RawWeight())), encodeI32Slice(m.RawWeight())); err != nil {
			return err
		}
		if err := put(metricDurationsBlock(name), uint64(len(m.RawDuration())), encodeI32Slice(m.RawDuration())); err != nil {
			return err
		}
		if err := put(metricDistancesBlock(name), uint64(len(m.RawDistance())), encodeF32Slice(m.RawDistance())); err != nil {
			return err
		}
	}

	manifestPayload := encodeManifest(entries)
	manifestOffset := offset
	manifestLength, err := writeFrame(f, blockManifest, uint64(len(entries)), manifestPayload)
	if err != nil {
		return err
	}

	header := make([]byte, fileHeaderSize)
	copy(header[0:4], fileMagic)
	binary.LittleEndian.PutUint32(header[4:8], fileVersion)
	binary.LittleEndian.PutUint64(header[8:16], manifestOffset)
	binary.LittleEndian.PutUint64(header[16:24], manifestLength)
	if _, err := f.WriteAt(header, 0); err != nil {
		return err
	}
	return nil
}
