package crp

import "errors"

// ErrUnknownMetric is returned when Engine.Customize or Engine.Query names
// a metric that was never registered with AddMetric.
var ErrUnknownMetric = errors.New("crp: unknown metric")

// ErrNotOwning is returned by Engine.Save when the Engine was reconstructed
// by Load rather than built by New, and so holds a borrowing partition view
// instead of the owning MultiLevelPartition Save needs to re-export.
var ErrNotOwning = errors.New("crp: engine does not own its partition")
