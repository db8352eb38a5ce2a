// Package octree holds the per-level point-cloud map (spec.md §4.5): the
// root bucket and the divide operation that splits over-budget cells into
// the next, finer level.
package octree

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"github.com/lodforge/pcdlod/internal/pointcloud"
)

// Key identifies one octree cell at a given level by its integer lattice
// coordinates. Keys are only comparable within the same level.
type Key struct {
	X, Y, Z int32
}

// String renders the key in the manifest's "x-y-z" form.
func (k Key) String() string {
	return fmt.Sprintf("%d-%d-%d", k.X, k.Y, k.Z)
}

// Hash returns a fast, non-cryptographic hash of the key, for callers that
// want it as a cache or log-correlation key rather than a formatted string
// (grounded on protomaps/go-pmtiles' use of cespare/xxhash for tile IDs).
func (k Key) Hash() uint64 {
	var buf [12]byte
	putInt32(buf[0:4], k.X)
	putInt32(buf[4:8], k.Y)
	putInt32(buf[8:12], k.Z)
	return xxhash.Sum64(buf[:])
}

func putInt32(b []byte, v int32) {
	u := uint32(v)
	b[0] = byte(u)
	b[1] = byte(u >> 8)
	b[2] = byte(u >> 16)
	b[3] = byte(u >> 24)
}

// Map is one octree level: a level number, the root bounds (shared by every
// level), and a mapping from cell key to the points bucketed into it.
type Map struct {
	LOD    uint32
	Bounds pointcloud.BoundingBox
	Bucket map[Key][]pointcloud.Point
}

// Root builds the level-0 map: a single bucket (0,0,0) holding every input
// point.
func Root(bounds pointcloud.BoundingBox, points []pointcloud.Point) *Map {
	cp := make([]pointcloud.Point, len(points))
	copy(cp, points)
	return &Map{
		LOD:    0,
		Bounds: bounds,
		Bucket: map[Key][]pointcloud.Point{{}: cp},
	}
}

// Divide produces the level-(LOD+1) map: every parent bucket whose point
// count exceeds threshold is rebucketed into up to 8 child cells; buckets
// at or under threshold are terminal and dropped from the child level.
//
// Each over-threshold parent bucket is rebucketed in its own goroutine into a
// private map, which is then merged into the child map under a mutex, since
// concurrent writes to a Go map are unsafe. The points of a single parent
// bucket are not split across workers, so a level with one over-threshold
// bucket (such as the root) is rebucketed by one goroutine.
func (m *Map) Divide(ctx context.Context, threshold int) (*Map, error) {
	nextLOD := m.LOD + 1
	div := math.Pow(2, float64(nextLOD))
	unit := m.Bounds.MaxSize() / div
	min := m.Bounds.Min

	next := &Map{
		LOD:    nextLOD,
		Bounds: m.Bounds,
		Bucket: make(map[Key][]pointcloud.Point),
	}

	maxIdx := int32(div) - 1

	var mu sync.Mutex
	grp, ctx := errgroup.WithContext(ctx)
	_ = ctx

	for _, pts := range m.Bucket {
		pts := pts
		if len(pts) <= threshold {
			continue
		}
		grp.Go(func() error {
			rebucketed := make(map[Key][]pointcloud.Point)
			for _, p := range pts {
				k := childKey(p.Position, min, unit, maxIdx)
				rebucketed[k] = append(rebucketed[k], p)
			}
			mu.Lock()
			for k, v := range rebucketed {
				next.Bucket[k] = append(next.Bucket[k], v...)
			}
			mu.Unlock()
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}
	return next, nil
}

// childKey maps a position to its child cell, flooring then clamping to
// [0, 2^(L+1)-1] componentwise so a point exactly on the box's max face
// lands in the last cell instead of one past it (spec.md §9).
func childKey(p, min pointcloud.Vec3, unit float64, maxIdx int32) Key {
	return Key{
		X: clampIdx32(int32(math.Floor((p.X-min.X)/unit)), maxIdx),
		Y: clampIdx32(int32(math.Floor((p.Y-min.Y)/unit)), maxIdx),
		Z: clampIdx32(int32(math.Floor((p.Z-min.Z)/unit)), maxIdx),
	}
}

func clampIdx32(v, maxIdx int32) int32 {
	switch {
	case v < 0:
		return 0
	case v > maxIdx:
		return maxIdx
	default:
		return v
	}
}

// AnyOverThreshold reports whether any bucket in the map exceeds threshold.
func (m *Map) AnyOverThreshold(threshold int) bool {
	for _, pts := range m.Bucket {
		if len(pts) > threshold {
			return true
		}
	}
	return false
}
