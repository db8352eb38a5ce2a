package sampling

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/lodforge/pcdlod/internal/pointcloud"
)

// Parallel runs the 3×3×3-partitioned Poisson-disk sampler (spec.md §4.4).
// Cells of the same partition offset are at least 3 cells apart along every
// axis, so their r-neighborhoods are disjoint and can be decided
// concurrently; the 27 partitions are still processed one at a time,
// strictly in sequence, because a later partition depends on the
// representatives every earlier one placed.
type Parallel struct {
	g          *grid
	radius     float64
	partitions []key
	next       int
}

// NewParallel buckets points into a fresh grid and prepares the 27
// partition offsets for seed-deterministic stepping.
func NewParallel(seed uint32, points []pointcloud.Point, radius float64) *Parallel {
	if len(points) == 0 || radius <= 0 {
		return &Parallel{}
	}
	bounds := pointcloud.FromPoints(points)
	g := newGrid(bounds, radius)
	g.bucket(points)
	return &Parallel{
		g:          g,
		radius:     radius,
		partitions: shufflePartitions(seed),
	}
}

// MaxIterations is always 27: one per partition offset in {0,1,2}³.
func (p *Parallel) MaxIterations() int { return 27 }

// IsCompleted reports whether every partition has been stepped through.
func (p *Parallel) IsCompleted() bool {
	return p.g == nil || p.next >= len(p.partitions)
}

// Step processes exactly one partition offset. Clients must call it
// MaxIterations() times; calling it once IsCompleted() is a no-op.
func (p *Parallel) Step(ctx context.Context) error {
	if p.IsCompleted() {
		return nil
	}
	offset := p.partitions[p.next]
	isFirst := p.next == 0
	p.next++

	cells := p.partitionCells(offset)
	if len(cells) == 0 {
		return nil
	}

	picks := make([]*pointcloud.Point, len(cells))
	grp, _ := errgroup.WithContext(ctx)
	grp.SetLimit(runtime.GOMAXPROCS(0))
	for i, k := range cells {
		i, k := i, k
		grp.Go(func() error {
			c := p.g.cells[k]
			if isFirst {
				if len(c.candidates) > 0 {
					picks[i] = c.candidates[0]
				}
			} else {
				picks[i] = firstValidCandidate(p.g, c.candidates, p.radius)
			}
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return err
	}

	// Sequential merge phase: writes only happen here, after every parallel
	// read of neighbor representatives for this step has completed.
	for i, k := range cells {
		if picks[i] == nil {
			continue
		}
		p.g.cells[k].set(picks[i])
		p.g.resolve(k)
	}
	return nil
}

// Representatives returns every cell's chosen point once IsCompleted().
func (p *Parallel) Representatives() []pointcloud.Point {
	if p.g == nil {
		return nil
	}
	return p.g.representatives()
}

// partitionCells returns the non-empty, unvisited cells belonging to the
// given partition offset: { offset + 3*(i,j,k) : i,j,k >= 0 } ∩ grid.
func (p *Parallel) partitionCells(offset key) []key {
	var out []key
	for x := offset[0]; x < p.g.dims[0]; x += 3 {
		for y := offset[1]; y < p.g.dims[1]; y += 3 {
			for z := offset[2]; z < p.g.dims[2]; z += 3 {
				k := key{x, y, z}
				if c, ok := p.g.cells[k]; ok && !c.visited() {
					out = append(out, k)
				}
			}
		}
	}
	return out
}

// ParallelSample runs the partitioned sampler to completion and returns its
// representatives, for callers that don't need the Step/IsCompleted API.
func ParallelSample(ctx context.Context, seed uint32, points []pointcloud.Point, radius float64) ([]pointcloud.Point, error) {
	p := NewParallel(seed, points, radius)
	for !p.IsCompleted() {
		if err := p.Step(ctx); err != nil {
			return nil, err
		}
	}
	return p.Representatives(), nil
}
