package profile

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// testMesh builds a square coordinate mesh spanning [-half, half] with the
// given number of points per axis.
func testMesh(half float64, n int) (X, Y *mat.Dense, step float64) {
	step = 2 * half / float64(n-1)
	X = mat.NewDense(n, n, nil)
	Y = mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			X.Set(i, j, -half+float64(j)*step)
			Y.Set(i, j, -half+float64(i)*step)
		}
	}
	return X, Y, step
}

func TestHermitePoly(t *testing.T) {
	tests := []struct {
		name     string
		k        int
		t        float64
		expected float64
	}{
		{name: "H0", k: 0, t: 1.7, expected: 1},
		{name: "H1", k: 1, t: 0.5, expected: 1},
		{name: "H2", k: 2, t: 2.0, expected: 4*2.0*2.0 - 2},
		{name: "H3", k: 3, t: 1.5, expected: 8*1.5*1.5*1.5 - 12*1.5},
		{name: "H4 at zero", k: 4, t: 0, expected: 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := hermitePoly(tt.k, tt.t)
			assert.InDelta(t, tt.expected, got, 1e-12)
		})
	}
}

func TestHermiteGaussianNormalization(t *testing.T) {
	// The integral of |u|^2 over the plane is 1 for every mode.
	modes := []struct{ m, n int }{{0, 0}, {1, 0}, {0, 2}, {2, 3}}

	const w = 1e-4
	X, Y, step := testMesh(4*w, 321)

	for _, mode := range modes {
		hg, err := NewHermiteGaussian(w, w, mode.m, mode.n, 800e-9)
		require.NoError(t, err)

		field, err := hg.Evaluate(X, Y)
		require.NoError(t, err)

		var total float64
		rows, cols := field.Dims()
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				v := field.At(i, j)
				total += real(v)*real(v) + imag(v)*imag(v)
			}
		}
		total *= step * step

		assert.InDelta(t, 1.0, total, 1e-3, "mode (%d,%d) should be L2-normalized", mode.m, mode.n)
	}
}

func TestHermiteGaussianOrthogonality(t *testing.T) {
	const w = 1e-4
	X, Y, step := testMesh(4*w, 321)

	u00, err := NewHermiteGaussian(w, w, 0, 0, 800e-9)
	require.NoError(t, err)
	u10, err := NewHermiteGaussian(w, w, 1, 0, 800e-9)
	require.NoError(t, err)
	u20, err := NewHermiteGaussian(w, w, 2, 0, 800e-9)
	require.NoError(t, err)

	f00, err := u00.Evaluate(X, Y)
	require.NoError(t, err)
	f10, err := u10.Evaluate(X, Y)
	require.NoError(t, err)
	f20, err := u20.Evaluate(X, Y)
	require.NoError(t, err)

	overlap := func(a, b *mat.CDense) float64 {
		var sum float64
		rows, cols := a.Dims()
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				sum += real(a.At(i, j)) * real(b.At(i, j))
			}
		}
		return sum * step * step
	}

	assert.InDelta(t, 0, overlap(f00, f10), 1e-9, "odd-order overlap should vanish")
	assert.InDelta(t, 0, overlap(f00, f20), 1e-3, "distinct even-order overlap should vanish")
	assert.InDelta(t, 1, overlap(f10, f10), 1e-3, "self-overlap should be unity")
}

func TestHermiteGaussianValidation(t *testing.T) {
	tests := []struct {
		name    string
		wx, wy  float64
		m, n    int
		lambda  float64
		wantErr bool
	}{
		{name: "valid", wx: 1e-4, wy: 1e-4, m: 0, n: 0, lambda: 8e-7, wantErr: false},
		{name: "negative m", wx: 1e-4, wy: 1e-4, m: -1, n: 0, lambda: 8e-7, wantErr: true},
		{name: "negative n", wx: 1e-4, wy: 1e-4, m: 0, n: -2, lambda: 8e-7, wantErr: true},
		{name: "zero waist", wx: 0, wy: 1e-4, m: 0, n: 0, lambda: 8e-7, wantErr: true},
		{name: "negative waist", wx: 1e-4, wy: -1e-4, m: 0, n: 0, lambda: 8e-7, wantErr: true},
		{name: "zero wavelength", wx: 1e-4, wy: 1e-4, m: 0, n: 0, lambda: 0, wantErr: true},
		{name: "NaN waist passes through", wx: math.NaN(), wy: math.NaN(), m: 0, n: 0, lambda: 8e-7, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewHermiteGaussian(tt.wx, tt.wy, tt.m, tt.n, tt.lambda)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHermiteGaussianNaNWaistYieldsNaNField(t *testing.T) {
	hg, err := NewHermiteGaussian(math.NaN(), math.NaN(), 0, 0, 8e-7)
	require.NoError(t, err)

	X, Y, _ := testMesh(1e-4, 5)
	field, err := hg.Evaluate(X, Y)
	require.NoError(t, err)

	assert.True(t, math.IsNaN(real(field.At(0, 0))), "NaN waist should yield NaN field values")
}

func TestHermiteGaussianMeshMismatch(t *testing.T) {
	hg, err := NewHermiteGaussian(1e-4, 1e-4, 0, 0, 8e-7)
	require.NoError(t, err)

	X := mat.NewDense(2, 3, nil)
	Y := mat.NewDense(3, 2, nil)
	_, err = hg.Evaluate(X, Y)
	assert.Error(t, err)
}
