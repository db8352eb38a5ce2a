// Package sampling implements the Poisson-disk sub-sampling described in
// SPEC_FULL.md §6.3-6.4: a serial frontier-based sampler and a
// partitioned, data-parallel variant with the same output contract.
package sampling

import "github.com/lodforge/pcdlod/internal/pointcloud"

// halfToFull is the frontier-growth acceptance window's lower bound as a
// fraction of radius (spec.md §4.3 step 4: r/2 <= dist <= r).
const halfToFull = 0.5

// Serial runs the frontier-based Poisson-disk sampler (spec.md §4.3).
//
// Given a point set and a minimum separation radius r, it returns a subset
// in which no two retained points are within r of each other, maximal with
// respect to the candidates visited during traversal.
func Serial(points []pointcloud.Point, radius float64) []pointcloud.Point {
	if len(points) == 0 || radius <= 0 {
		return nil
	}

	bounds := pointcloud.FromPoints(points)
	g := newGrid(bounds, radius)
	g.bucket(points)

	var actives []*pointcloud.Point

	adopt := func(p *pointcloud.Point) {
		actives = append(actives, p)
		k := g.indexOf(p.Position)
		g.cells[k].set(p)
		g.resolve(k)
	}

	// Step 3: seed from an arbitrary cell's first candidate, unconditionally.
	startKey, ok := g.anyPending()
	if !ok {
		return nil
	}
	start := g.cells[startKey].candidates[0]
	adopt(start)

	for g.hasPending() {
		if len(actives) == 0 {
			k, ok := g.anyPending()
			if !ok {
				break
			}
			next := firstValidCandidate(g, g.cells[k].candidates, radius)
			if next != nil {
				adopt(next)
			} else {
				g.resolve(k)
			}
			continue
		}

		current := actives[0]
		ck := g.indexOf(current.Position)

		var picked *pointcloud.Point
		for _, nk := range g.neighbors26(ck) {
			c, ok := g.cells[nk]
			if !ok || c.visited() {
				continue
			}
			if q := firstInWindow(g, current, c.candidates, radius); q != nil {
				picked = q
				break
			}
		}

		if picked != nil {
			adopt(picked)
		} else {
			actives = actives[1:]
		}
	}

	return g.representatives()
}

// firstValidCandidate returns the first candidate that passes isValid, or
// nil if none does.
func firstValidCandidate(g *grid, candidates []*pointcloud.Point, radius float64) *pointcloud.Point {
	for _, p := range candidates {
		if g.isValid(p, radius) {
			return p
		}
	}
	return nil
}

// firstInWindow returns the first candidate within [r/2, r] of current that
// also passes isValid, or nil. Implements the frontier-growth acceptance
// test of spec.md §4.3 step 4.
func firstInWindow(g *grid, current *pointcloud.Point, candidates []*pointcloud.Point, radius float64) *pointcloud.Point {
	lo := radius * halfToFull
	for _, q := range candidates {
		d := current.Position.Sub(q.Position).Norm()
		if d >= lo && d <= radius && g.isValid(q, radius) {
			return q
		}
	}
	return nil
}
