// Package customizer fills a cellstorage.Metric level by level: for every
// level ℓ from 1 to L, in parallel across that level's cells, it runs a
// bounded Dijkstra from each cell's source border nodes that never leaves
// the cell, writing the resulting shortest-path matrix into the metric.
//
// The search at level ℓ relaxes two kinds of edges: base-graph edges whose
// highest-different-level is exactly ℓ-1 (the edges that just became
// internal to the current cell, having crossed the immediate sub-cell
// boundary one level down), and "clique arcs" — the already-customized
// level-(ℓ-1) sub-cell matrix rows of any node being settled for the first
// time. The fromClique flag on a settled node suppresses a second clique
// expansion through it, since any path beyond a clique arc is already
// dominated by chaining clique arcs directly.
//
// Customize parallelizes cells within a level with an errgroup.Group, one
// goroutine per cell, and reuses queryheap.Heap values across cells through
// a sync.Pool, clearing them instead of reallocating. There is a strict
// barrier between levels: level ℓ+1 only starts once every cell of level ℓ
// has published its matrix writes, matching the lower-levels-first
// dependency the clique-arc step relies on.
package customizer
