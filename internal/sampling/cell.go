package sampling

import "github.com/lodforge/pcdlod/internal/pointcloud"

// cell is a single spatial-hash bucket: the candidates that fell into it
// during bucketing, and at most one representative once the sampler has
// visited it. Mirrors the Grid<'a, P> container from the original sampler
// (original_source/src/grid.rs), minus its borrow-checker bookkeeping.
type cell struct {
	candidates     []*pointcloud.Point
	representative *pointcloud.Point
}

func (c *cell) insert(p *pointcloud.Point) {
	c.candidates = append(c.candidates, p)
}

func (c *cell) visited() bool {
	return c.representative != nil
}

func (c *cell) set(p *pointcloud.Point) {
	c.representative = p
}
