// Package archive persists a MultiLevelPartition, MultiLevelGraph,
// CellStorage and its named metrics to a single file, and loads them back.
//
// The file is a flat sequence of named, canary-framed blocks followed by a
// manifest block recording each one's (name, offset, length); a small fixed
// header at the start of the file points at the manifest, so the whole file
// is self-describing without any external index. Save is atomic (temp file
// plus rename); Load validates every canary before reconstructing anything,
// and Mmap offers a borrowing alternative to ReadAll-ing the file into a
// []byte first.
package archive
