package crp

import (
	"context"
	"fmt"

	"github.com/katalvlaran/crp/archive"
	"github.com/katalvlaran/crp/cellstorage"
	"github.com/katalvlaran/crp/customizer"
	"github.com/katalvlaran/crp/mlgraph"
	"github.com/katalvlaran/crp/partition"
)

// Engine bundles one partition/graph pair with its derived CellStorage and
// whatever named metrics a caller has customized over it. It is the
// "load archive, customize a metric, query a cell" entry point named in
// this package's doc comment: every method is a thin pass-through to the
// underlying package, wired so a caller touches one type instead of five.
type Engine struct {
	Partition partition.PartitionReader
	Graph     *mlgraph.MultiLevelGraph
	Cells     *cellstorage.CellStorage
	Metrics   map[string]*cellstorage.Metric

	owned *partition.MultiLevelPartition // non-nil only when built by New, not Load
}

// New derives a fresh CellStorage from part and g, ready to have metrics
// added and customized. part must be the owning partition that produced g,
// since Save later needs to re-export its packed structure.
func New(part *partition.MultiLevelPartition, g *mlgraph.MultiLevelGraph) (*Engine, error) {
	cs, err := cellstorage.NewCellStorage(g, part)
	if err != nil {
		return nil, fmt.Errorf("crp.New: %w", err)
	}
	return &Engine{
		Partition: part,
		Graph:     g,
		Cells:     cs,
		Metrics:   make(map[string]*cellstorage.Metric),
		owned:     part,
	}, nil
}

// Load reconstructs an Engine from a previously Saved archive. The returned
// Engine's Partition is a borrowing view, not an owning MultiLevelPartition,
// so Save on it will fail: reuse the archive file itself instead of
// re-saving a loaded Engine.
func Load(path string) (*Engine, error) {
	loaded, err := archive.Load(path)
	if err != nil {
		return nil, fmt.Errorf("crp.Load: %w", err)
	}
	return &Engine{
		Partition: loaded.Partition,
		Graph:     loaded.Graph,
		Cells:     loaded.Cells,
		Metrics:   loaded.Metrics,
	}, nil
}

// AddMetric registers a new, all-unreachable metric under name, ready for
// Customize to fill.
func (e *Engine) AddMetric(name string) *cellstorage.Metric {
	m := cellstorage.NewMetric(e.Cells)
	e.Metrics[name] = m
	return m
}

// Customize fills the named metric level by level, per customizer.Customize.
func (e *Engine) Customize(ctx context.Context, name string, allowedNodes []bool, opts ...customizer.Option) error {
	m, ok := e.Metrics[name]
	if !ok {
		return fmt.Errorf("crp.Engine.Customize: %w", ErrUnknownMetric)
	}
	if err := customizer.Customize(ctx, e.Graph, e.Partition, e.Cells, m, allowedNodes, opts...); err != nil {
		return fmt.Errorf("crp.Engine.Customize: %w", err)
	}
	return nil
}

// Query returns a read-only view onto one (level, cell)'s matrices for the
// named metric.
func (e *Engine) Query(name string, level cellstorage.LevelID, cell cellstorage.CellID) (*cellstorage.CellView, error) {
	m, ok := e.Metrics[name]
	if !ok {
		return nil, fmt.Errorf("crp.Engine.Query: %w", ErrUnknownMetric)
	}
	view, err := cellstorage.GetCell(e.Cells, m, level, cell)
	if err != nil {
		return nil, fmt.Errorf("crp.Engine.Query: %w", err)
	}
	return view, nil
}

// Save persists the Engine's partition, graph, cells and every named metric
// to path. Only valid for an Engine built by New; an Engine reconstructed
// by Load has no owning partition to re-export.
func (e *Engine) Save(path string) error {
	if e.owned == nil {
		return fmt.Errorf("crp.Engine.Save: %w", ErrNotOwning)
	}
	if err := archive.Save(path, e.owned, e.Graph, e.Cells, e.Metrics); err != nil {
		return fmt.Errorf("crp.Engine.Save: %w", err)
	}
	return nil
}
