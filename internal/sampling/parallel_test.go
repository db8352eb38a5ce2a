package sampling

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lodforge/pcdlod/internal/pointcloud"
)

func TestParallelCompletesInExactly27Steps(t *testing.T) {
	points := gridPoints(10, 1.0)
	p := NewParallel(7, points, 2.0)
	assert.Equal(t, 27, p.MaxIterations())

	steps := 0
	for !p.IsCompleted() {
		require.NoError(t, p.Step(context.Background()))
		steps++
		require.LessOrEqual(t, steps, 27)
	}
	assert.Equal(t, 27, steps)
}

func TestParallelMaintainsSeparation(t *testing.T) {
	points := gridPoints(8, 1.0)
	radius := 2.0

	reps, err := ParallelSample(context.Background(), 42, points, radius)
	require.NoError(t, err)
	require.NotEmpty(t, reps)
	assert.Greater(t, minPairwiseDistance(reps), radius*0.999)
}

func TestParallelEmptyInput(t *testing.T) {
	p := NewParallel(1, nil, 1.0)
	assert.True(t, p.IsCompleted())
	assert.Nil(t, p.Representatives())
}

func TestParallelDeterministicForSeed(t *testing.T) {
	points := gridPoints(6, 1.0)
	a, err := ParallelSample(context.Background(), 99, points, 1.5)
	require.NoError(t, err)
	b, err := ParallelSample(context.Background(), 99, points, 1.5)
	require.NoError(t, err)
	assert.ElementsMatch(t, positionsOf(a), positionsOf(b))
}

func positionsOf(pts []pointcloud.Point) []pointcloud.Vec3 {
	out := make([]pointcloud.Vec3, len(pts))
	for i, p := range pts {
		out[i] = p.Position
	}
	return out
}
