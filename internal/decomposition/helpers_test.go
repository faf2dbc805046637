package decomposition

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/beamworks/hgdecomp/internal/profile"
)

// stubProfile is a TransverseProfile with configurable bounds, offsets and
// evaluator, used to exercise grid construction and failure paths.
type stubProfile struct {
	xb, yb profile.AxisBounds
	x0, y0 float64
	eval   func(X, Y *mat.Dense) (*mat.CDense, error)
}

func (s *stubProfile) Bounds() (x, y profile.AxisBounds) { return s.xb, s.yb }
func (s *stubProfile) Offsets() (x0, y0 float64)         { return s.x0, s.y0 }

func (s *stubProfile) Evaluate(X, Y *mat.Dense) (*mat.CDense, error) {
	if s.eval != nil {
		return s.eval(X, Y)
	}
	rows, cols := X.Dims()
	return mat.NewCDense(rows, cols, nil), nil
}

// zeroProfile returns a profile whose field is identically zero on a
// symmetric native grid of the given half-extent.
func zeroProfile(half float64) *stubProfile {
	return &stubProfile{
		xb: profile.AxisBounds{Min: -half, Max: half},
		yb: profile.AxisBounds{Min: -half, Max: half},
	}
}

// failingProfile returns a profile whose evaluator always fails.
func failingProfile(half float64) *stubProfile {
	p := zeroProfile(half)
	p.eval = func(X, Y *mat.Dense) (*mat.CDense, error) {
		return nil, errors.New("detector offline")
	}
	return p
}

// hgProfile wraps an exact HG(m, n) mode of waist w as a transverse profile
// with the given half-extent.
func hgProfile(t *testing.T, w float64, m, n int, wavelength, half float64) profile.TransverseProfile {
	t.Helper()
	hg, err := profile.NewHermiteGaussian(w, w, m, n, wavelength)
	require.NoError(t, err)
	p, err := profile.NewAnalytic(hg, half, half)
	require.NoError(t, err)
	return p
}

// mixedEvaluator sums a set of weighted evaluators, for synthesizing fields
// with known modal content.
type mixedEvaluator struct {
	parts   []profile.FieldEvaluator
	weights []complex128
}

func (m *mixedEvaluator) Evaluate(X, Y *mat.Dense) (*mat.CDense, error) {
	rows, cols := X.Dims()
	out := mat.NewCDense(rows, cols, nil)
	for k, part := range m.parts {
		f, err := part.Evaluate(X, Y)
		if err != nil {
			return nil, err
		}
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				out.Set(i, j, out.At(i, j)+m.weights[k]*f.At(i, j))
			}
		}
	}
	return out, nil
}
