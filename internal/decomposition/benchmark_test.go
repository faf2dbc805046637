package decomposition

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/beamworks/hgdecomp/internal/profile"
)

// newBenchProfile builds a fundamental Gaussian profile of waist w on a
// 2.5-waist half-extent.
func newBenchProfile(w, wavelength float64) (profile.TransverseProfile, error) {
	hg, err := profile.NewHermiteGaussian(w, w, 0, 0, wavelength)
	if err != nil {
		return nil, err
	}
	return profile.NewAnalytic(hg, 2.5*w, 2.5*w)
}

// BenchmarkDecompose measures a full decomposition of a fundamental Gaussian
// on a moderate grid.
func BenchmarkDecompose(b *testing.B) {
	const (
		w          = 50e-6
		wavelength = 800e-9
	)
	hg, err := newBenchProfile(w, wavelength)
	require.NoError(b, err)

	eng, err := NewEngine(Options{
		Wavelength: wavelength,
		MMax:       6,
		NMax:       6,
		Res:        2e-6,
		Workers:    4,
	}, zap.NewNop())
	require.NoError(b, err)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := eng.Decompose(context.Background(), hg); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkWaistEstimate isolates the candidate scan, the hot path of a
// decomposition.
func BenchmarkWaistEstimate(b *testing.B) {
	const (
		w          = 50e-6
		wavelength = 800e-9
	)
	hg, err := newBenchProfile(w, wavelength)
	require.NoError(b, err)

	g, err := NewGrid(hg, 2e-6)
	require.NoError(b, err)
	field, err := g.SampleField(hg)
	require.NoError(b, err)

	logger := zap.NewNop()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := estimateWaist(g, field, wavelength, logger); err != nil {
			b.Fatal(err)
		}
	}
}
