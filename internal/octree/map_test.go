package octree

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lodforge/pcdlod/internal/pointcloud"
)

func cube(n int, step float64) []pointcloud.Point {
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

func TestRootSingleBucket(t *testing.T) {
	pts := cube(4, 1.0)
	bounds := pointcloud.FromPoints(pts)
	m := Root(bounds, pts)
	require.Len(t, m.Bucket, 1)
	assert.Len(t, m.Bucket[Key{}], len(pts))
	assert.Equal(t, uint32(0), m.LOD)
}

func TestDividePreservesPointCount(t *testing.T) {
	pts := cube(6, 1.0)
	bounds := pointcloud.FromPoints(pts)
	root := Root(bounds, pts)

	next, err := root.Divide(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), next.LOD)

	total := 0
	for _, bucket := range next.Bucket {
		total += len(bucket)
	}
	assert.Equal(t, len(pts), total)
}

func TestDivideSplitsOverThresholdBuckets(t *testing.T) {
	pts := cube(8, 1.0)
	bounds := pointcloud.FromPoints(pts)
	root := Root(bounds, pts)

	next, err := root.Divide(context.Background(), 20)
	require.NoError(t, err)
	assert.Greater(t, len(next.Bucket), 1)
	assert.True(t, next.AnyOverThreshold(1))
}

func TestAnyOverThreshold(t *testing.T) {
	m := &Map{Bucket: map[Key][]pointcloud.Point{
		{0, 0, 0}: make([]pointcloud.Point, 3),
		{1, 0, 0}: make([]pointcloud.Point, 1),
	}}
	assert.True(t, m.AnyOverThreshold(2))
	assert.False(t, m.AnyOverThreshold(3))
}

func TestKeyStringAndHashStable(t *testing.T) {
	k := Key{X: 1, Y: -2, Z: 3}
	assert.Equal(t, "1--2-3", k.String())
	assert.Equal(t, k.Hash(), k.Hash())

	other := Key{X: 1, Y: -2, Z: 4}
	assert.NotEqual(t, k.Hash(), other.Hash())
}
