package archive

import "errors"

// ErrNilArgument is returned when Save is given a nil partition, graph or
// cell storage.
var ErrNilArgument = errors.New("archive: nil argument")

// ErrBadMagic is returned when a file's leading bytes do not match the
// archive file magic.
var ErrBadMagic = errors.New("archive: bad file magic")

// ErrUnsupportedVersion is returned when a file's version field is not one
// this package knows how to read.
var ErrUnsupportedVersion = errors.New("archive: unsupported version")

// ErrCanaryMismatch is returned when a block's leading or trailing canary
// does not match the canary derived from its name, indicating truncation or
// corruption.
var ErrCanaryMismatch = errors.New("archive: canary mismatch")

// ErrBlockNotFound is returned when a required block is missing from the
// manifest.
var ErrBlockNotFound = errors.New("archive: block not found")

// ErrBlockShapeMismatch is returned when a block's declared element count or
// byte length disagrees with its actual payload.
var ErrBlockShapeMismatch = errors.New("archive: block shape mismatch")

// ErrIncompatibleData is returned when a loaded graph's recomputed
// connectivity checksum disagrees with the persisted one, meaning the
// graph, partition and cell blocks in the file no longer agree with each
// other (most likely hand-edited or concatenated from different runs).
var ErrIncompatibleData = errors.New("archive: incompatible data")
