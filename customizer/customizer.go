package customizer

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/crp/cellstorage"
	"github.com/katalvlaran/crp/mlgraph"
	"github.com/katalvlaran/crp/partition"
	"github.com/katalvlaran/crp/queryheap"
)

// Customize fills metric level by level over the cells described by cs,
// using g's edge weights and part's cell hierarchy. allowedNodes must have
// length g.NumberOfNodes(); an unset entry excludes that node from every
// path the customizer considers, letting one CellStorage back several
// metric variants (e.g. a tolls-off profile).
//
// Levels complete strictly in order 1..L: customizing level ℓ reads the
// already-published level-(ℓ-1) matrices via cs/metric, so level ℓ+1 never
// starts until every cell of level ℓ has returned.
func Customize(
	ctx context.Context,
	g *mlgraph.MultiLevelGraph,
	part partition.PartitionReader,
	cs *cellstorage.CellStorage,
	metric *cellstorage.Metric,
	allowedNodes []bool,
	opts ...Option,
) error {
	if g == nil {
		return fmt.Errorf("Customize: %w", ErrNilGraph)
	}
	if part == nil {
		return fmt.Errorf("Customize: %w", ErrNilPartition)
	}
	if cs == nil {
		return fmt.Errorf("Customize: %w", ErrNilCellStorage)
	}
	if metric == nil {
		return fmt.Errorf("Customize: %w", ErrNilMetric)
	}
	if len(allowedNodes) != g.NumberOfNodes() {
		return fmt.Errorf("Customize: %w", ErrAllowedNodesShapeMismatch)
	}

	cfg := config{workers: runtime.NumCPU()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.workers < 1 {
		cfg.workers = 1
	}

	numNodes := g.NumberOfNodes()
	pool := &sync.Pool{
		New: func() any {
			return queryheap.NewHeap[RelaxEdgeData](queryheap.NewArrayBacking(numNodes))
		},
	}

	for level := LevelID(1); level <= part.NumberOfLevels(); level++ {
		if cfg.onlyLevels != nil && !cfg.onlyLevels[level] {
			continue
		}
		nCells, err := part.NumberOfCells(level)
		if err != nil {
			return fmt.Errorf("Customize: level %d: %w", level, err)
		}

		eg, egCtx := errgroup.WithContext(ctx)
		eg.SetLimit(cfg.workers)
		for c := uint32(0); c < nCells; c++ {
			cell := cellstorage.CellID(c)
			eg.Go(func() error {
				if err := egCtx.Err(); err != nil {
					return err
				}
				heap := pool.Get().(*queryheap.Heap[RelaxEdgeData])
				defer pool.Put(heap)
				return customizeCell(egCtx, g, part, cs, metric, allowedNodes, level, cell, heap)
			})
		}
		if err := eg.Wait(); err != nil {
			return fmt.Errorf("Customize: level %d: %w", level, err)
		}
	}
	return nil
}

// customizeCell fills the matrix for a single (level, cell), running one
// bounded Dijkstra per source.
func customizeCell(
	ctx context.Context,
	g *mlgraph.MultiLevelGraph,
	part partition.PartitionReader,
	cs *cellstorage.CellStorage,
	metric *cellstorage.Metric,
	allowedNodes []bool,
	level LevelID,
	cell cellstorage.CellID,
	heap *queryheap.Heap[RelaxEdgeData],
) error {
	view, err := cellstorage.GetCell(cs, metric, level, cell)
	if err != nil {
		return err
	}
	destinations := view.DestinationNodes()

	for _, s := range view.SourceNodes() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !allowedNodes[s] {
			continue
		}
		if err := runFromSource(g, part, cs, metric, allowedNodes, level, cell, s, destinations, heap); err != nil {
			return err
		}
	}
	return nil
}

// settledResult is one destination's final outcome from a single-source
// search.
type settledResult struct {
	weight   cellstorage.EdgeWeight
	duration cellstorage.EdgeDuration
	distance cellstorage.EdgeDistance
}

// runFromSource runs one bounded Dijkstra from s, confined to nodes that
// belong to s's own level-level cell, and writes its row of the (level,
// cell) matrix.
func runFromSource(
	g *mlgraph.MultiLevelGraph,
	part partition.PartitionReader,
	cs *cellstorage.CellStorage,
	metric *cellstorage.Metric,
	allowedNodes []bool,
	level LevelID,
	cell cellstorage.CellID,
	s NodeID,
	destinations []NodeID,
	heap *queryheap.Heap[RelaxEdgeData],
) error {
	heap.Clear()

	remaining := make(map[NodeID]struct{}, len(destinations))
	for _, d := range destinations {
		if allowedNodes[d] {
			remaining[d] = struct{}{}
		}
	}
	settled := make(map[NodeID]settledResult, len(destinations))

	if err := insertOrImprove(heap, s, 0, 0, 0, false); err != nil {
		return fmt.Errorf("runFromSource: %w", err)
	}

	for !heap.Empty() && len(remaining) > 0 {
		u, w, data, err := heap.DeleteMin()
		if err != nil {
			return fmt.Errorf("runFromSource: %w", err)
		}
		if _, isDest := remaining[u]; isDest {
			settled[u] = settledResult{weight: w, duration: data.duration, distance: data.distance}
			delete(remaining, u)
		}

		if err := relaxBaseEdges(g, allowedNodes, level, u, w, data, heap); err != nil {
			return fmt.Errorf("runFromSource: %w", err)
		}
		if level >= 2 && !data.fromClique {
			if err := relaxCliqueArcs(part, cs, metric, allowedNodes, level, u, w, data, heap); err != nil {
				return fmt.Errorf("runFromSource: %w", err)
			}
		}
	}

	view, err := cellstorage.GetCell(cs, metric, level, cell)
	if err != nil {
		return fmt.Errorf("runFromSource: %w", err)
	}
	row, err := view.OutWeight(s)
	if err != nil {
		return fmt.Errorf("runFromSource: %w", err)
	}
	durRow, err := view.OutDuration(s)
	if err != nil {
		return fmt.Errorf("runFromSource: %w", err)
	}
	distRow, err := view.OutDistance(s)
	if err != nil {
		return fmt.Errorf("runFromSource: %w", err)
	}
	for i, d := range view.DestinationNodes() {
		if r, ok := settled[d]; ok {
			row[i] = r.weight
			durRow[i] = r.duration
			distRow[i] = r.distance
		} else {
			row[i] = cellstorage.InfWeight
			durRow[i] = cellstorage.MaxDuration
			distRow[i] = cellstorage.InvalidDistance
		}
	}
	return nil
}

// exactLevelEdges returns u's edges whose crossing level is exactly
// level-1: the base-graph edges that just became internal to u's
// level-level cell, having crossed the immediate sub-cell boundary one
// level down. At level 1 this is every level-0 edge, i.e. every edge that
// stays inside u's level-1 cell.
func exactLevelEdges(g *mlgraph.MultiLevelGraph, u NodeID, level LevelID) (mlgraph.EdgeRange, error) {
	lo, err := g.BorderEdges(level-1, u)
	if err != nil {
		return mlgraph.EdgeRange{}, err
	}
	hi, err := g.InternalEdges(level, u)
	if err != nil {
		return mlgraph.EdgeRange{}, err
	}
	return mlgraph.EdgeRange{Begin: lo.Begin, End: hi.End}, nil
}

func relaxBaseEdges(
	g *mlgraph.MultiLevelGraph,
	allowedNodes []bool,
	level LevelID,
	u NodeID,
	w cellstorage.EdgeWeight,
	uData RelaxEdgeData,
	heap *queryheap.Heap[RelaxEdgeData],
) error {
	rng, err := exactLevelEdges(g, u, level)
	if err != nil {
		return fmt.Errorf("relaxBaseEdges: %w", err)
	}
	for e := rng.Begin; e < rng.End; e++ {
		data, err := g.EdgeData(e)
		if err != nil {
			return fmt.Errorf("relaxBaseEdges: %w", err)
		}
		if !data.Forward() {
			continue
		}
		v, err := g.Target(e)
		if err != nil {
			return fmt.Errorf("relaxBaseEdges: %w", err)
		}
		if !allowedNodes[v] {
			continue
		}
		newW, ok := addWeight(w, data.Weight())
		if !ok {
			continue
		}
		newDur := addDuration(uData.duration, data.Duration())
		newDist := uData.distance + data.Distance()
		if err := insertOrImprove(heap, v, newW, newDur, newDist, false); err != nil {
			return fmt.Errorf("relaxBaseEdges: %w", err)
		}
	}
	return nil
}

// relaxCliqueArcs expands u through the already-customized level-(level-1)
// matrix of u's sub-cell, treating every entry as a single precomputed
// shortest path from u to each of that sub-cell's destinations. u not being
// a source of its own sub-cell (ErrNodeNotInCell) simply means it has no
// clique arcs to offer; any other error indicates the storage and the
// search disagree about the hierarchy's shape and aborts customization.
func relaxCliqueArcs(
	part partition.PartitionReader,
	cs *cellstorage.CellStorage,
	metric *cellstorage.Metric,
	allowedNodes []bool,
	level LevelID,
	u NodeID,
	w cellstorage.EdgeWeight,
	uData RelaxEdgeData,
	heap *queryheap.Heap[RelaxEdgeData],
) error {
	lowerCell, err := part.Cell(level-1, u)
	if err != nil {
		return fmt.Errorf("relaxCliqueArcs: %w", err)
	}
	view, err := cellstorage.GetCell(cs, metric, level-1, lowerCell)
	if err != nil {
		return fmt.Errorf("relaxCliqueArcs: %w", err)
	}

	outW, err := view.OutWeight(u)
	if err != nil {
		if errors.Is(err, cellstorage.ErrNodeNotInCell) {
			return nil
		}
		return fmt.Errorf("relaxCliqueArcs: %w", ErrStructuralInconsistency)
	}
	outDur, err := view.OutDuration(u)
	if err != nil {
		return fmt.Errorf("relaxCliqueArcs: %w", ErrStructuralInconsistency)
	}
	outDist, err := view.OutDistance(u)
	if err != nil {
		return fmt.Errorf("relaxCliqueArcs: %w", ErrStructuralInconsistency)
	}

	for i, v := range view.DestinationNodes() {
		if !allowedNodes[v] || v == u {
			continue
		}
		if outW[i] >= cellstorage.InfWeight {
			continue
		}
		newW, ok := addWeight(w, outW[i])
		if !ok {
			continue
		}
		newDur := addDuration(uData.duration, outDur[i])
		newDist := uData.distance + outDist[i]
		if err := insertOrImprove(heap, v, newW, newDur, newDist, true); err != nil {
			return fmt.Errorf("relaxCliqueArcs: %w", err)
		}
	}
	return nil
}

// insertOrImprove inserts v into heap at (w, dur, dist, fromClique) if
// unseen, or decreases its key if the candidate is lexicographically better
// than its current (weight, duration, distance) triple. A node already
// removed (settled) is left untouched: Dijkstra's non-negative-weight
// invariant guarantees nothing can improve on it afterward.
func insertOrImprove(
	heap *queryheap.Heap[RelaxEdgeData],
	v NodeID,
	w cellstorage.EdgeWeight,
	dur cellstorage.EdgeDuration,
	dist cellstorage.EdgeDistance,
	fromClique bool,
) error {
	if !heap.WasInserted(v) {
		return heap.Insert(v, queryheap.Weight(w), RelaxEdgeData{fromClique: fromClique, duration: dur, distance: dist})
	}
	if heap.WasRemoved(v) {
		return nil
	}
	curW, err := heap.GetKey(v)
	if err != nil {
		return err
	}
	curData, err := heap.GetData(v)
	if err != nil {
		return err
	}
	if !lexLess(w, dur, dist, cellstorage.EdgeWeight(curW), curData.duration, curData.distance) {
		return nil
	}
	if err := heap.DecreaseKey(v, queryheap.Weight(w)); err != nil {
		return err
	}
	return heap.UpdateData(v, RelaxEdgeData{fromClique: fromClique, duration: dur, distance: dist})
}

// lexLess reports whether (w1, d1, s1) precedes (w2, d2, s2) in the
// lexicographic order the customizer breaks ties with: weight first,
// duration second, distance last.
func lexLess(w1 cellstorage.EdgeWeight, d1 cellstorage.EdgeDuration, s1 cellstorage.EdgeDistance,
	w2 cellstorage.EdgeWeight, d2 cellstorage.EdgeDuration, s2 cellstorage.EdgeDistance) bool {
	if w1 != w2 {
		return w1 < w2
	}
	if d1 != d2 {
		return d1 < d2
	}
	return s1 < s2
}

// addWeight adds two edge weights, saturating (and reporting ok=false) at
// InfWeight rather than overflowing.
func addWeight(a, b cellstorage.EdgeWeight) (cellstorage.EdgeWeight, bool) {
	sum := int64(a) + int64(b)
	if sum >= int64(cellstorage.InfWeight) {
		return cellstorage.InfWeight, false
	}
	return cellstorage.EdgeWeight(sum), true
}

// addDuration adds two durations, saturating at MaxDuration.
func addDuration(a, b cellstorage.EdgeDuration) cellstorage.EdgeDuration {
	sum := int64(a) + int64(b)
	if sum >= int64(cellstorage.MaxDuration) {
		return cellstorage.MaxDuration
	}
	return cellstorage.EdgeDuration(sum)
}
