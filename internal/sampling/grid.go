package sampling

import (
	"math"

	"github.com/kelindar/bitmap"

	"github.com/lodforge/pcdlod/internal/pointcloud"
)

// key identifies one grid cell by its integer lattice coordinates.
type key [3]int

// grid is the spatial hash both samplers bucket points into. Cell size is
// r/√3 so that any two points sharing a cell are within r of each other
// (spec.md §4.3), so each cell holds at most one representative; isValid
// scans the cells within two steps, which covers every point closer than r.
type grid struct {
	cellSize float64
	origin   pointcloud.Vec3
	dims     [3]int
	cells    map[key]*cell

	// order lists, once, every key with at least one candidate, in bucketing
	// order. slot maps a key back to its order index so resolve can clear it
	// in the bitset directly, without a scan. pending tracks which of those
	// keys are still unresolved — a dense bitset over len(order) bits,
	// replacing a map[key]bool the way the teacher's sparse.go tracks cell
	// occupancy with kelindar/bitmap rather than a Go map.
	order   []key
	slot    map[key]uint32
	pending bitmap.Bitmap

	// cursor is the lowest order index anyPending has not yet proven
	// resolved. Every index below it is permanently settled (resolve never
	// un-resolves a key), so advancing it past already-cleared bits makes
	// the total cost of every anyPending call across one sampling run O(N)
	// instead of O(N) per call.
	cursor int
}

func newGrid(bounds pointcloud.BoundingBox, radius float64) *grid {
	cellSize := radius / math.Sqrt(3)
	cx, cy, cz := bounds.Ceil(cellSize)
	return &grid{
		cellSize: cellSize,
		origin:   bounds.Min,
		dims:     [3]int{cx, cy, cz},
		cells:    make(map[key]*cell),
		slot:     make(map[key]uint32),
	}
}

// indexOf maps a position to its cell key, clamped into the grid's bounds so
// that points lying exactly on the max face land in the last cell rather
// than one past it.
func (g *grid) indexOf(p pointcloud.Vec3) key {
	ix := int(math.Floor((p.X - g.origin.X) / g.cellSize))
	iy := int(math.Floor((p.Y - g.origin.Y) / g.cellSize))
	iz := int(math.Floor((p.Z - g.origin.Z) / g.cellSize))
	return key{clampIdx(ix, g.dims[0]), clampIdx(iy, g.dims[1]), clampIdx(iz, g.dims[2])}
}

func clampIdx(v, dim int) int {
	switch {
	case v < 0:
		return 0
	case v >= dim:
		return dim - 1
	default:
		return v
	}
}

// bucket inserts every point as a candidate of its cell and finalizes the
// order/pending bookkeeping.
func (g *grid) bucket(points []pointcloud.Point) {
	for i := range points {
		k := g.indexOf(points[i].Position)
		c, ok := g.cells[k]
		if !ok {
			c = &cell{}
			g.cells[k] = c
			g.slot[k] = uint32(len(g.order))
			g.order = append(g.order, k)
		}
		c.insert(&points[i])
	}
	g.pending.Grow(uint32(len(g.order)))
	for i := range g.order {
		g.pending.Set(uint32(i))
	}
}

// resolve marks the order-slot for k as no longer pending. No-op if k was
// never bucketed (e.g. it has no candidates).
func (g *grid) resolve(k key) {
	if i, ok := g.slot[k]; ok {
		g.pending.Remove(i)
	}
}

// anyPending returns an arbitrary still-pending cell key and true, or the
// zero key and false if none remain. Mirrors "pick any cell from indices"
// (spec.md §4.3 step 4) — the Rust HashSet has no defined order either, so
// any deterministic tie-break (here: bucketing order) is a valid substitute.
//
// cursor only ever advances, so across a full sampling run the combined cost
// of every anyPending call is O(len(order)), not O(len(order)) per call.
func (g *grid) anyPending() (key, bool) {
	for ; g.cursor < len(g.order); g.cursor++ {
		if g.pending.Contains(uint32(g.cursor)) {
			return g.order[g.cursor], true
		}
	}
	return key{}, false
}

func (g *grid) hasPending() bool {
	_, ok := g.anyPending()
	return ok
}

// neighbors26 returns the (at most 26) in-bounds neighbor keys of k,
// excluding k itself.
func (g *grid) neighbors26(k key) []key {
	var out []key
	for dz := -1; dz <= 1; dz++ {
		z := k[2] + dz
		if z < 0 || z >= g.dims[2] {
			continue
		}
		for dy := -1; dy <= 1; dy++ {
			y := k[1] + dy
			if y < 0 || y >= g.dims[1] {
				continue
			}
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 && dz == 0 {
					continue
				}
				x := k[0] + dx
				if x < 0 || x >= g.dims[0] {
					continue
				}
				out = append(out, key{x, y, z})
			}
		}
	}
	return out
}

// isValid reports whether p may become a representative: no cell within two
// steps of its own on every axis (a 5×5×5 block, including its own cell) may
// already hold a representative within radius. With cell size r/√3, a point
// two cells away can still be closer than r; three cells away it cannot.
func (g *grid) isValid(p *pointcloud.Point, radius float64) bool {
	k := g.indexOf(p.Position)
	for dz := -2; dz <= 2; dz++ {
		for dy := -2; dy <= 2; dy++ {
			for dx := -2; dx <= 2; dx++ {
				c, ok := g.cells[key{k[0] + dx, k[1] + dy, k[2] + dz}]
				if !ok || !c.visited() {
					continue
				}
				if p.Position.Sub(c.representative.Position).Norm() <= radius {
					return false
				}
			}
		}
	}
	return true
}

// representatives collects every cell's chosen point, in bucketing order.
func (g *grid) representatives() []pointcloud.Point {
	out := make([]pointcloud.Point, 0, len(g.order))
	for _, k := range g.order {
		if c := g.cells[k]; c.visited() {
			out = append(out, *c.representative)
		}
	}
	return out
}
