package pointcloud

import (
	"encoding/json"
	"math"
)

// BoundingBox is an axis-aligned box. The empty box has Min at +Inf and Max
// at -Inf on every axis and must not be read from (only extended) until at
// least one point has been folded in.
type BoundingBox struct {
	Min, Max Vec3
}

// NewEmptyBoundingBox returns the box identity for Extend / FromPoints.
func NewEmptyBoundingBox() BoundingBox {
	return BoundingBox{
		Min: Vec3{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)},
		Max: Vec3{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)},
	}
}

// Extend grows the box, componentwise, to cover p.
func (b *BoundingBox) Extend(p Vec3) {
	b.Min = Vec3{X: math.Min(b.Min.X, p.X), Y: math.Min(b.Min.Y, p.Y), Z: math.Min(b.Min.Z, p.Z)}
	b.Max = Vec3{X: math.Max(b.Max.X, p.X), Y: math.Max(b.Max.Y, p.Y), Z: math.Max(b.Max.Z, p.Z)}
}

// Size returns Max - Min.
func (b BoundingBox) Size() Vec3 {
	return b.Max.Sub(b.Min)
}

// MaxSize returns the largest component of Size, used to derive a cubic
// octree unit (§4.5: division always uses a single largest extent).
func (b BoundingBox) MaxSize() float64 {
	s := b.Size()
	return math.Max(s.X, math.Max(s.Y, s.Z))
}

// MinSize returns the smallest component of Size.
func (b BoundingBox) MinSize() float64 {
	s := b.Size()
	return math.Min(s.X, math.Min(s.Y, s.Z))
}

// Center returns the midpoint of Min and Max.
func (b BoundingBox) Center() Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Ceil returns the box's size divided by unit, rounded up componentwise, as
// integer grid dimensions. Every dimension is at least 1.
func (b BoundingBox) Ceil(unit float64) (cx, cy, cz int) {
	s := b.Size()
	cx = max(1, int(math.Ceil(s.X/unit)))
	cy = max(1, int(math.Ceil(s.Y/unit)))
	cz = max(1, int(math.Ceil(s.Z/unit)))
	return
}

// FromPoints reduces a point slice to its bounding box. An empty slice
// yields NewEmptyBoundingBox(), which must not be used further (spec.md §4.1).
func FromPoints(points []Point) BoundingBox {
	b := NewEmptyBoundingBox()
	for _, p := range points {
		b.Extend(p.Position)
	}
	return b
}

// FromVectors reduces a slice of raw positions to its bounding box.
func FromVectors(positions []Vec3) BoundingBox {
	b := NewEmptyBoundingBox()
	for _, p := range positions {
		b.Extend(p)
	}
	return b
}

// boundingBoxJSON mirrors the manifest's on-disk shape: min/max as 3-element
// arrays rather than the {"X":..,"Y":..,"Z":..} r3.Vector would produce
// through its exported fields.
type boundingBoxJSON struct {
	Min [3]float64 `json:"min"`
	Max [3]float64 `json:"max"`
}

// MarshalJSON encodes the box as {"min":[x,y,z],"max":[x,y,z]} per the
// manifest schema in SPEC_FULL.md §7.
func (b BoundingBox) MarshalJSON() ([]byte, error) {
	return json.Marshal(boundingBoxJSON{
		Min: [3]float64{b.Min.X, b.Min.Y, b.Min.Z},
		Max: [3]float64{b.Max.X, b.Max.Y, b.Max.Z},
	})
}

// UnmarshalJSON decodes the manifest's array form back into a BoundingBox.
func (b *BoundingBox) UnmarshalJSON(data []byte) error {
	var raw boundingBoxJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	b.Min = Vec3{X: raw.Min[0], Y: raw.Min[1], Z: raw.Min[2]}
	b.Max = Vec3{X: raw.Max[0], Y: raw.Max[1], Z: raw.Max[2]}
	return nil
}
