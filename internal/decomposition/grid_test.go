package decomposition

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beamworks/hgdecomp/internal/profile"
)

func TestNewGridNilProfile(t *testing.T) {
	_, err := NewGrid(nil, 1e-6)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "profile must not be nil")
}

func TestNewGridShape(t *testing.T) {
	tests := []struct {
		name string
		half float64
		res  float64
	}{
		{name: "10um extent, 1um res", half: 10e-6, res: 1e-6},
		{name: "exact multiple", half: 8e-6, res: 2e-6},
		{name: "non-multiple", half: 9.7e-6, res: 1e-6},
		{name: "coarse", half: 1e-6, res: 5e-6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGrid(zeroProfile(tt.half), tt.res)
			require.NoError(t, err)

			for _, axis := range [][]float64{g.X, g.Y} {
				n := len(axis)
				assert.GreaterOrEqual(t, n, 2, "axis must have at least 2 points")
				assert.Equal(t, 0, n%2, "axis length must be even")

				want := int(math.Floor(2*tt.half/(2*tt.res)))*2 + 2
				assert.Equal(t, want, n)

				// Symmetric about the bounds midpoint (0 here).
				assert.InDelta(t, 0, axis[0]+axis[n-1], tt.res*1e-9)
			}

			assert.InDelta(t, tt.res, g.Dx, tt.res*1e-9)
			assert.InDelta(t, tt.res, g.Dy, tt.res*1e-9)
		})
	}
}

func TestNewGridAsymmetricOffsets(t *testing.T) {
	// The low bounds take the x offset and the high bounds the y offset,
	// on both axes.
	p := &stubProfile{
		xb: profile.AxisBounds{Min: -10e-6, Max: 10e-6},
		yb: profile.AxisBounds{Min: -20e-6, Max: 20e-6},
		x0: 2e-6,
		y0: 4e-6,
	}

	g, err := NewGrid(p, 1e-6)
	require.NoError(t, err)

	// x axis: lo = -10+2 = -8, hi = 10+4 = 14, center 3.
	loX, hiX := -10e-6+2e-6, 10e-6+4e-6
	nx := len(g.X)
	assert.InDelta(t, loX+hiX, g.X[0]+g.X[nx-1], 1e-15)
	assert.Equal(t, int(math.Floor((hiX-loX)/2e-6))*2+2, nx)

	// y axis: lo = -20+2 = -18, hi = 20+4 = 24, center 3.
	loY, hiY := -20e-6+2e-6, 20e-6+4e-6
	ny := len(g.Y)
	assert.InDelta(t, loY+hiY, g.Y[0]+g.Y[ny-1], 1e-15)
	assert.Equal(t, int(math.Floor((hiY-loY)/2e-6))*2+2, ny)
}

func TestGridMesh(t *testing.T) {
	g, err := NewGrid(zeroProfile(3e-6), 1e-6)
	require.NoError(t, err)

	X, Y := g.Mesh()
	rows, cols := X.Dims()
	assert.Equal(t, len(g.Y), rows)
	assert.Equal(t, len(g.X), cols)

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			assert.Equal(t, g.X[j], X.At(i, j), "x varies along columns")
			assert.Equal(t, g.Y[i], Y.At(i, j), "y varies along rows")
		}
	}
}

func TestGridSampleFieldPropagatesFailure(t *testing.T) {
	p := failingProfile(5e-6)
	g, err := NewGrid(p, 1e-6)
	require.NoError(t, err)

	_, err = g.SampleField(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "detector offline")
}
