// Package encode packs a cell's sampled points into square raster images:
// an 8-bit position/color pair, an optional 32-bit float position/color
// pair, and an 8-bit "quad" image splitting each coordinate across four
// 8-bit planes (spec.md §4.6).
package encode

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"

	"github.com/lodforge/pcdlod/internal/pointcloud"
)

// Encoder normalizes a cell's points into [0,1]³ against a caller-supplied
// bounding box, then rasterizes them. The box is never re-derived from the
// points themselves, so the caller controls exactly what "full scale" means
// (normally the cell's own emitted bounding box).
type Encoder struct {
	normalized []pointcloud.Point
}

// New builds an Encoder for points, normalized against bbox.
func New(points []pointcloud.Point, bbox pointcloud.BoundingBox) *Encoder {
	min := bbox.Min
	size := bbox.Size()
	normalized := make([]pointcloud.Point, len(points))
	for i, p := range points {
		d := p.Position.Sub(min)
		n := pointcloud.Vec3{
			X: safeDiv(d.X, size.X),
			Y: safeDiv(d.Y, size.Y),
			Z: safeDiv(d.Z, size.Z),
		}
		normalized[i] = pointcloud.Point{Position: n, Color: p.Color}
	}
	return &Encoder{normalized: normalized}
}

// safeDiv avoids NaN for a degenerate (zero-size) axis, e.g. a single-point
// cell's bounding box: every normalized coordinate on that axis is 0.
func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// Side returns the square image side for n points: ceil(sqrt(n)).
func Side(n int) int {
	return int(math.Ceil(math.Sqrt(float64(n))))
}

// Encode8Bit returns the 8-bit position image and the 8-bit color image.
func (e *Encoder) Encode8Bit() (position, col *image.RGBA) {
	side := Side(len(e.normalized))
	position = image.NewRGBA(image.Rect(0, 0, side, side))
	col = image.NewRGBA(image.Rect(0, 0, side, side))

	for idx, p := range e.normalized {
		x, y := idx%side, idx/side
		pos := p.Position
		position.SetRGBA(x, y, color.RGBA{
			R: to8(pos.X), G: to8(pos.Y), B: to8(pos.Z), A: 255,
		})
		c := colorOrWhite(p.Color)
		col.SetRGBA(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
	}
	return position, col
}

// Encode32Bit returns a linear float32 RGBA position image (alpha fixed at
// 1.0) and the 8-bit color image.
func (e *Encoder) Encode32Bit() (position *Rgba32FImage, col *image.RGBA) {
	side := Side(len(e.normalized))
	position = NewRgba32FImage(side, side)
	col = image.NewRGBA(image.Rect(0, 0, side, side))

	for idx, p := range e.normalized {
		x, y := idx%side, idx/side
		pos := p.Position
		position.Set(x, y, [4]float32{float32(pos.X), float32(pos.Y), float32(pos.Z), 1.0})
		c := colorOrWhite(p.Color)
		col.SetRGBA(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
	}
	return position, col
}

// Encode8BitQuad packs each normalized coordinate's 32-bit fixed-point
// value across four quadrants of a 2*side x 2*side image: Q0 holds the
// lowest octet of x,y,z; Q1 the next; Q2 the next; Q3 the highest. If
// useAlphaAsColor, Q0/Q1/Q2's alpha channel carries the point's R/G/B and
// Q3's alpha is 255; otherwise every quadrant's alpha is 255.
func (e *Encoder) Encode8BitQuad(useAlphaAsColor bool) *image.RGBA {
	side := Side(len(e.normalized))

	quadrants := [4]*image.RGBA{
		image.NewRGBA(image.Rect(0, 0, side, side)),
		image.NewRGBA(image.Rect(0, 0, side, side)),
		image.NewRGBA(image.Rect(0, 0, side, side)),
		image.NewRGBA(image.Rect(0, 0, side, side)),
	}

	for idx, p := range e.normalized {
		x, y := idx%side, idx/side
		pos := p.Position
		ix := encode4Channels(pos.X)
		iy := encode4Channels(pos.Y)
		iz := encode4Channels(pos.Z)

		var a0, a1, a2 uint8 = 255, 255, 255
		if useAlphaAsColor {
			c := colorOrWhite(p.Color)
			a0, a1, a2 = c.R, c.G, c.B
		}

		quadrants[0].SetRGBA(x, y, color.RGBA{R: ix[0], G: iy[0], B: iz[0], A: a0})
		quadrants[1].SetRGBA(x, y, color.RGBA{R: ix[1], G: iy[1], B: iz[1], A: a1})
		quadrants[2].SetRGBA(x, y, color.RGBA{R: ix[2], G: iy[2], B: iz[2], A: a2})
		quadrants[3].SetRGBA(x, y, color.RGBA{R: ix[3], G: iy[3], B: iz[3], A: 255})
	}

	// Composite the four independently-built quadrants into the final
	// 2*side x 2*side canvas with a straight nearest-neighbor copy.
	img := image.NewRGBA(image.Rect(0, 0, side*2, side*2))
	placements := [4]image.Point{{X: 0, Y: 0}, {X: side, Y: 0}, {X: 0, Y: side}, {X: side, Y: side}}
	for i, q := range quadrants {
		dst := placements[i]
		draw.Draw(img, image.Rect(dst.X, dst.Y, dst.X+side, dst.Y+side), q, image.Point{}, draw.Src)
	}
	return img
}

func to8(v01 float64) uint8 {
	v := math.Floor(v01 * 255)
	return clamp8(v)
}

func clamp8(v float64) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return uint8(v)
	}
}

// encode4Channels splits a [0,1] value into 4 little-endian octets of its
// 32-bit fixed-point representation: u = floor(v * (2^32-1)).
func encode4Channels(v01 float64) [4]uint8 {
	u := uint32(math.Floor(v01 * float64(math.MaxUint32)))
	return [4]uint8{
		byte(u),
		byte(u >> 8),
		byte(u >> 16),
		byte(u >> 24),
	}
}

func colorOrWhite(c *pointcloud.Color) pointcloud.Color {
	if c == nil {
		return pointcloud.White()
	}
	return *c
}
