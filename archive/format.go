package archive

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
)

// Block names, matching the persisted layout verbatim.
const (
	blockMLPLevelData        = "mlp/level_data"
	blockMLPPartition        = "mlp/partition"
	blockMLPCellToChildren   = "mlp/cell_to_children"
	blockMLGNodeArray        = "mlg/node_array"
	blockMLGEdgeArray        = "mlg/edge_array"
	blockMLGNodeToEdgeOffset = "mlg/node_to_edge_offset"
	blockMLGChecksum         = "mlg/connectivity_checksum"
	blockCellsSourceBoundary = "cells/source_boundary"
	blockCellsDestBoundary   = "cells/destination_boundary"
	blockCellsCells          = "cells/cells"
	blockCellsLevelOffsets   = "cells/level_offsets"
	blockMetricNames         = "metric/_names"
	blockManifest            = "archive/manifest"
)

func metricWeightsBlock(name string) string   { return "metric/" + name + "/weights" }
func metricDurationsBlock(name string) string { return "metric/" + name + "/durations" }
func metricDistancesBlock(name string) string { return "metric/" + name + "/distances" }

const (
	fileMagic   = "CRPA"
	fileVersion = uint32(1)

	// fileHeaderSize is magic(4) + version(4) + manifestOffset(8) + manifestLength(8).
	fileHeaderSize = 24

	// frameHeaderSize is canary(4) + elementCount(8) + byteLength(8).
	frameHeaderSize = 20
	// frameTrailerSize is the repeated canary.
	frameTrailerSize = 4
)

// blockCanary derives a block's 4-byte corruption-detection marker from its
// name: the first 4 bytes of crc32.ChecksumIEEE([]byte(name)).
func blockCanary(name string) [4]byte {
	sum := crc32.ChecksumIEEE([]byte(name))
	var c [4]byte
	binary.LittleEndian.PutUint32(c[:], sum)
	return c
}

// writeFrame writes one canary-framed block to w and returns its total byte
// length (header + payload + trailer).
func writeFrame(w io.Writer, name string, elementCount uint64, payload []byte) (uint64, error) {
	canary := blockCanary(name)
	hdr := make([]byte, frameHeaderSize)
	copy(hdr[0:4], canary[:])
	binary.LittleEndian.PutUint64(hdr[4:12], elementCount)
	binary.LittleEndian.PutUint64(hdr[12:20], uint64(len(payload)))
	if _, err := w.Write(hdr); err != nil {
		return 0, fmt.Errorf("writeFrame(%s): %w", name, err)
	}
	if len(payload) > 0 {
		if _, err := w.Write(payload); err != nil {
			return 0, fmt.Errorf("writeFrame(%s): %w", name, err)
		}
	}
	if _, err := w.Write(canary[:]); err != nil {
		return 0, fmt.Errorf("writeFrame(%s): %w", name, err)
	}
	return uint64(frameHeaderSize+len(payload)) + frameTrailerSize, nil
}

// readFrame reads one canary-framed block named name at offset within ra,
// validating both canaries, and returns its element count, payload and
// total on-disk length.
func readFrame(ra io.ReaderAt, offset uint64, name string) (elementCount uint64, payload []byte, frameLen uint64, err error) {
	want := blockCanary(name)

	hdr := make([]byte, frameHeaderSize)
	if _, err = ra.ReadAt(hdr, int64(offset)); err != nil {
		return 0, nil, 0, fmt.Errorf("readFrame(%s): %w", name, err)
	}
	var got [4]byte
	copy(got[:], hdr[0:4])
	if got != want {
		return 0, nil, 0, fmt.Errorf("readFrame(%s): leading %x, want %x: %w", name, got, want, ErrCanaryMismatch)
	}
	elementCount = binary.LittleEndian.Uint64(hdr[4:12])
	byteLength := binary.LittleEndian.Uint64(hdr[12:20])

	payload = make([]byte, byteLength)
	if byteLength > 0 {
		if _, err = ra.ReadAt(payload, int64(offset)+frameHeaderSize); err != nil {
			return 0, nil, 0, fmt.Errorf("readFrame(%s): %w", name, err)
		}
	}

	trailer := make([]byte, frameTrailerSize)
	if _, err = ra.ReadAt(trailer, int64(offset)+frameHeaderSize+int64(byteLength)); err != nil {
		return 0, nil, 0, fmt.Errorf("readFrame(%s): %w", name, err)
	}
	copy(got[:], trailer)
	if got != want {
		return 0, nil, 0, fmt.Errorf("readFrame(%s): trailing %x, want %x: %w", name, got, want, ErrCanaryMismatch)
	}

	frameLen = uint64(frameHeaderSize) + byteLength + frameTrailerSize
	return elementCount, payload, frameLen, nil
}

// manifestEntry is one (name, offset, length) directory record, pointing at
// a framed block's start.
type manifestEntry struct {
	Name   string
	Offset uint64
	Length uint64
}

// encodeManifest serializes entries as a block payload: each record is a
// uint16 name length, the name bytes, then offset and length as uint64s.
func encodeManifest(entries []manifestEntry) []byte {
	size := 0
	for _, e := range entries {
		size += 2 + len(e.Name) + 8 + 8
	}
	buf := make([]byte, size)
	pos := 0
	for _, e := range entries {
		binary.LittleEndian.PutUint16(buf[pos:], uint16(len(e.Name)))
		pos += 2
		copy(buf[pos:], e.Name)
		pos += len(e.Name)
		binary.LittleEndian.PutUint64(buf[pos:], e.Offset)
		pos += 8
		binary.LittleEndian.PutUint64(buf[pos:], e.Length)
		pos += 8
	}
	return buf
}

func decodeManifest(payload []byte, count uint64) ([]manifestEntry, error) {
	entries := make([]manifestEntry, 0, count)
	pos := 0
	for i := uint64(0); i < count; i++ {
		if pos+2 > len(payload) {
			return nil, fmt.Errorf("decodeManifest: entry %d: %w", i, ErrBlockShapeMismatch)
		}
		nameLen := int(binary.LittleEndian.Uint16(payload[pos:]))
		pos += 2
		if pos+nameLen+16 > len(payload) {
			return nil, fmt.Errorf("decodeManifest: entry %d: %w", i, ErrBlockShapeMismatch)
		}
		name := string(payload[pos : pos+nameLen])
		pos += nameLen
		offset := binary.LittleEndian.Uint64(payload[pos:])
		pos += 8
		length := binary.LittleEndian.Uint64(payload[pos:])
		pos += 8
		entries = append(entries, manifestEntry{Name: name, Offset: offset, Length: length})
	}
	return entries, nil
}
