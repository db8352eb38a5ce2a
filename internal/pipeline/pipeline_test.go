package pipeline

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lodforge/pcdlod/internal/manifest"
	"github.com/lodforge/pcdlod/internal/pcderrors"
	"github.com/lodforge/pcdlod/internal/pointcloud"
)

func gridPoints(n int, step float64) []pointcloud.Point {
	pts := make([]pointcloud.Point, 0, n*n*n)
	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			for z := 0; z < n; z++ {
				pts = append(pts, pointcloud.Point{
					Position: pointcloud.Vec3{X: float64(x) * step, Y: float64(y) * step, Z: float64(z) * step},
				})
			}
		}
	}
	return pts
}

func TestRunUnderThresholdEmitsSingleUnit(t *testing.T) {
	points := gridPoints(3, 1.0)
	bounds := pointcloud.FromPoints(points)

	var unitCalls, levelCalls int
	perUnit := func(_ context.Context, bbox pointcloud.BoundingBox, pts []pointcloud.Point, lod uint32, x, y, z int32) error {
		unitCalls++
		assert.Equal(t, uint32(0), lod)
		assert.Len(t, pts, len(points))
		return nil
	}
	perLevel := func(_ context.Context, lodPlusOne uint32, bounds pointcloud.BoundingBox, coords manifest.Coordinates) error {
		levelCalls++
		return nil
	}

	err := Run(context.Background(), bounds, points, Options{Threshold: len(points) + 1}, perUnit, perLevel)
	require.NoError(t, err)
	assert.Equal(t, 1, unitCalls)
	assert.Equal(t, 1, levelCalls)
}

func TestRunOverThresholdRecurses(t *testing.T) {
	points := gridPoints(6, 1.0)
	bounds := pointcloud.FromPoints(points)

	var levels []uint32
	perUnit := func(_ context.Context, bbox pointcloud.BoundingBox, pts []pointcloud.Point, lod uint32, x, y, z int32) error {
		return nil
	}
	perLevel := func(_ context.Context, lodPlusOne uint32, bounds pointcloud.BoundingBox, coords manifest.Coordinates) error {
		levels = append(levels, lodPlusOne)
		return nil
	}

	err := Run(context.Background(), bounds, points, Options{Threshold: 20, Seed: 1}, perUnit, perLevel)
	require.NoError(t, err)
	assert.Greater(t, len(levels), 1)
}

func TestRunHaltsOnFirstCallbackError(t *testing.T) {
	points := gridPoints(3, 1.0)
	bounds := pointcloud.FromPoints(points)

	boom := errors.New("disk full")
	perUnit := func(_ context.Context, bbox pointcloud.BoundingBox, pts []pointcloud.Point, lod uint32, x, y, z int32) error {
		return boom
	}
	levelCalled := false
	perLevel := func(_ context.Context, lodPlusOne uint32, bounds pointcloud.BoundingBox, coords manifest.Coordinates) error {
		levelCalled = true
		return nil
	}

	err := Run(context.Background(), bounds, points, Options{Threshold: len(points) + 1}, perUnit, perLevel)
	require.Error(t, err)
	assert.ErrorIs(t, err, pcderrors.ErrCallbackFailure)
	assert.False(t, levelCalled)
}
