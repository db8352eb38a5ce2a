// Package pointcloud holds the immutable point record, its whitespace-text
// parser, and the bounding-box arithmetic the rest of the pipeline builds on.
package pointcloud

import (
	"math"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/lodforge/pcdlod/internal/pcderrors"
)

// Vec3 is a double-precision 3-vector. Geo-referenced point clouds carry
// large coordinate offsets, so double precision is mandatory throughout —
// never downcast to float32 before the encoder stage.
type Vec3 = r3.Vector

// Color is an 8-bit-per-channel RGB triple.
type Color struct {
	R, G, B uint8
}

// White is the fallback color the encoder substitutes for points with no
// source color. It is applied at encode time, never at parse time.
func White() Color { return Color{R: 255, G: 255, B: 255} }

// Point is an immutable point record: a position plus optional color and
// intensity. A Point is cloned (by value) whenever it moves between octree
// buckets; it carries no shared mutable state.
type Point struct {
	Position  Vec3
	Color     *Color
	Intensity *float64
}

// ParsePoint parses one whitespace-delimited text line into a Point.
//
// Accepted token counts:
//
//	3 -> position only
//	4 -> position + intensity
//	6 -> position + RGB
//	7 -> position + RGB + intensity
//
// Any other arity, or any token that fails to parse, returns
// pcderrors.ErrInvalidPointFormat wrapped with the offending line.
func ParsePoint(line string) (Point, error) {
	fields := strings.Fields(line)

	switch len(fields) {
	case 3:
		pos, err := parseVec3(fields[0], fields[1], fields[2])
		if err != nil {
			return Point{}, wrapInvalid(line, err)
		}
		return Point{Position: pos}, nil

	case 4:
		pos, err := parseVec3(fields[0], fields[1], fields[2])
		if err != nil {
			return Point{}, wrapInvalid(line, err)
		}
		intensity, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return Point{}, wrapInvalid(line, err)
		}
		return Point{Position: pos, Intensity: &intensity}, nil

	case 6:
		pos, err := parseVec3(fields[0], fields[1], fields[2])
		if err != nil {
			return Point{}, wrapInvalid(line, err)
		}
		col, err := parseColor(fields[3], fields[4], fields[5])
		if err != nil {
			return Point{}, wrapInvalid(line, err)
		}
		return Point{Position: pos, Color: &col}, nil

	case 7:
		pos, err := parseVec3(fields[0], fields[1], fields[2])
		if err != nil {
			return Point{}, wrapInvalid(line, err)
		}
		col, err := parseColor(fields[3], fields[4], fields[5])
		if err != nil {
			return Point{}, wrapInvalid(line, err)
		}
		intensity, err := strconv.ParseFloat(fields[6], 64)
		if err != nil {
			return Point{}, wrapInvalid(line, err)
		}
		return Point{Position: pos, Color: &col, Intensity: &intensity}, nil

	default:
		return Point{}, wrapInvalid(line, nil)
	}
}

func wrapInvalid(line string, cause error) error {
	if cause == nil {
		return errors.Wrapf(pcderrors.ErrInvalidPointFormat, "line %q", line)
	}
	return errors.Wrapf(pcderrors.ErrInvalidPointFormat, "line %q: %s", line, cause)
}

func parseVec3(xs, ys, zs string) (Vec3, error) {
	x, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		return Vec3{}, err
	}
	y, err := strconv.ParseFloat(ys, 64)
	if err != nil {
		return Vec3{}, err
	}
	z, err := strconv.ParseFloat(zs, 64)
	if err != nil {
		return Vec3{}, err
	}
	return Vec3{X: x, Y: y, Z: z}, nil
}

func parseColor(rs, gs, bs string) (Color, error) {
	r, err := parseChannel(rs)
	if err != nil {
		return Color{}, err
	}
	g, err := parseChannel(gs)
	if err != nil {
		return Color{}, err
	}
	b, err := parseChannel(bs)
	if err != nil {
		return Color{}, err
	}
	return Color{R: r, G: g, B: b}, nil
}

// parseChannel accepts either an integer token ("255") or a float token
// ("255.0") for an RGB channel, clamped to [0,255].
func parseChannel(s string) (uint8, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	v = math.Round(v)
	switch {
	case v < 0:
		v = 0
	case v > 255:
		v = 255
	}
	return uint8(v), nil
}

// Distance returns the Euclidean distance between two points' positions.
func (p Point) Distance(other Point) float64 {
	return math.Sqrt(p.DistanceSquared(other))
}

// DistanceSquared returns the squared Euclidean distance, cheaper than
// Distance when only comparisons against a threshold are needed.
func (p Point) DistanceSquared(other Point) float64 {
	d := p.Position.Sub(other.Position)
	return d.Dot(d)
}
