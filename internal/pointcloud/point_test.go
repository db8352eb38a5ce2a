package pointcloud

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePoint(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		wantErr   bool
		wantPos   Vec3
		wantColor *Color
		wantInten *float64
	}{
		{
			name:    "position only",
			line:    "1.0 2.0 3.0",
			wantPos: Vec3{X: 1, Y: 2, Z: 3},
		},
		{
			name:      "position plus intensity",
			line:      "1 2 3 0.5",
			wantPos:   Vec3{X: 1, Y: 2, Z: 3},
			wantInten: floatPtr(0.5),
		},
		{
			name:      "position plus color",
			line:      "1 2 3 255 128 0",
			wantPos:   Vec3{X: 1, Y: 2, Z: 3},
			wantColor: &Color{R: 255, G: 128, B: 0},
		},
		{
			name:      "position plus color plus intensity",
			line:      "1 2 3 255 128 0 0.75",
			wantPos:   Vec3{X: 1, Y: 2, Z: 3},
			wantColor: &Color{R: 255, G: 128, B: 0},
			wantInten: floatPtr(0.75),
		},
		{
			name:      "color channel as float token",
			line:      "1 2 3 255.0 0.0 0.0",
			wantPos:   Vec3{X: 1, Y: 2, Z: 3},
			wantColor: &Color{R: 255, G: 0, B: 0},
		},
		{
			name:    "wrong arity",
			line:    "1 2",
			wantErr: true,
		},
		{
			name:    "five tokens",
			line:    "1 2 3 4 5",
			wantErr: true,
		},
		{
			name:    "non-numeric token",
			line:    "1 2 abc",
			wantErr: true,
		},
		{
			name:    "empty line",
			line:    "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePoint(tt.line)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorContains(t, err, "invalid point format")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPos, p.Position)
			assert.Equal(t, tt.wantColor, p.Color)
			if tt.wantInten == nil {
				assert.Nil(t, p.Intensity)
			} else {
				require.NotNil(t, p.Intensity)
				assert.InDelta(t, *tt.wantInten, *p.Intensity, 1e-9)
			}
		})
	}
}

func TestParseChannelClamps(t *testing.T) {
	p, err := ParsePoint("0 0 0 300 -10 500.9")
	require.NoError(t, err)
	require.NotNil(t, p.Color)
	assert.Equal(t, uint8(255), p.Color.R)
	assert.Equal(t, uint8(0), p.Color.G)
	assert.Equal(t, uint8(255), p.Color.B)
}

func TestDistance(t *testing.T) {
	a := Point{Position: Vec3{X: 0, Y: 0, Z: 0}}
	b := Point{Position: Vec3{X: 3, Y: 4, Z: 0}}
	assert.InDelta(t, 5.0, a.Distance(b), 1e-9)
	assert.InDelta(t, 25.0, a.DistanceSquared(b), 1e-9)
}

func floatPtr(v float64) *float64 { return &v }
