package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lodforge/pcdlod/internal/pointcloud"
)

func TestAddFirstWriteWins(t *testing.T) {
	c := make(Coordinates)
	box1 := pointcloud.BoundingBox{Max: pointcloud.Vec3{X: 1, Y: 1, Z: 1}}
	box2 := pointcloud.BoundingBox{Max: pointcloud.Vec3{X: 2, Y: 2, Z: 2}}

	c.Add(0, "0-0-0", box1)
	c.Add(0, "0-0-0", box2)

	assert.Equal(t, box1, c[0]["0-0-0"])
}

func TestCloneIsIndependent(t *testing.T) {
	c := make(Coordinates)
	c.Add(0, "0-0-0", pointcloud.BoundingBox{})

	snapshot := c.Clone()
	c.Add(1, "0-0-0", pointcloud.BoundingBox{})

	_, hasLevel1 := snapshot[1]
	assert.False(t, hasLevel1)
	_, hasLevel1InSource := c[1]
	assert.True(t, hasLevel1InSource)
}

func TestNewSetsVersionAndRunID(t *testing.T) {
	coords := make(Coordinates)
	m1 := New(2, pointcloud.BoundingBox{}, coords)
	m2 := New(2, pointcloud.BoundingBox{}, coords)

	assert.Equal(t, Version, m1.Version)
	require.NotEmpty(t, m1.RunID)
	assert.NotEqual(t, m1.RunID, m2.RunID)
}
