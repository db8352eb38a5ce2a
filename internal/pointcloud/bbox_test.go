package pointcloud

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromPointsAndExtend(t *testing.T) {
	points := []Point{
		{Position: Vec3{X: -1, Y: 2, Z: 0}},
		{Position: Vec3{X: 4, Y: -3, Z: 5}},
		{Position: Vec3{X: 0, Y: 0, Z: 0}},
	}
	b := FromPoints(points)
	assert.Equal(t, Vec3{X: -1, Y: -3, Z: 0}, b.Min)
	assert.Equal(t, Vec3{X: 4, Y: 2, Z: 5}, b.Max)
	assert.InDelta(t, 5.0, b.MaxSize(), 1e-9)
	assert.InDelta(t, 5.0, b.MinSize(), 1e-9)
}

func TestBoundingBoxJSONRoundTrip(t *testing.T) {
	b := BoundingBox{Min: Vec3{X: -1, Y: -2, Z: -3}, Max: Vec3{X: 4, Y: 5, Z: 6}}

	data, err := json.Marshal(b)
	require.NoError(t, err)
	assert.JSONEq(t, `{"min":[-1,-2,-3],"max":[4,5,6]}`, string(data))

	var decoded BoundingBox
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, b, decoded)
}

func TestCeilAlwaysAtLeastOne(t *testing.T) {
	b := BoundingBox{Min: Vec3{}, Max: Vec3{X: 0.1, Y: 0, Z: 10}}
	cx, cy, cz := b.Ceil(1.0)
	assert.Equal(t, 1, cx)
	assert.Equal(t, 1, cy)
	assert.Equal(t, 10, cz)
}
