package decomposition

import (
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/beamworks/hgdecomp/internal/decomposition/moments"
	"github.com/beamworks/hgdecomp/internal/profile"
)

// waistCandidates is the number of waists scanned around the D4-sigma
// estimate when searching for the best fundamental-mode overlap.
const waistCandidates = 30

// stepRTol is the relative tolerance within which the two grid step sizes
// must agree. The Hermite-Gaussian basis assumes isotropic sampling.
const stepRTol = 1e-10

// estimateWaist returns the waist that maximizes the weighting of the
// fundamental mode on the given grid.
//
// A D4-sigma width of |field|^2 gives a first 1/e^2 estimate, which is
// sensitive to higher-order content and noise. The estimate is then refined
// by scanning HG(0,0) probes with waists around it and keeping the one with
// the highest real overlap against the field, concentrating as much energy
// as possible in the fundamental mode of the reconstruction.
func estimateWaist(g *Grid, field *mat.CDense, wavelength float64, logger *zap.Logger) (float64, error) {
	const op = "estimateWaist"

	if math.Abs(g.Dx-g.Dy) > stepRTol*math.Abs(g.Dy) {
		return 0, newError(op, "grid steps must be equal within rtol %g, got dx=%v dy=%v", stepRTol, g.Dx, g.Dy)
	}

	rows, cols := field.Dims()
	intensity := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := field.At(i, j)
			re, im := real(v), imag(v)
			intensity.Set(i, j, re*re+im*im)
		}
	}

	d4x, d4y := moments.D4Sigma(intensity)
	w0Est := (d4x + d4y) / 2 / 2 * g.Dx // pixel D4-sigma mean to a 1/e^2 waist

	logger.Info("Estimated first-pass waist",
		zap.Float64("w0_est_microns", w0Est*1e6),
	)

	// Scan around the D4-sigma value and keep the waist whose fundamental
	// mode has the highest scalar product with the field. Ties and flat
	// curves resolve to the first (lowest) candidate.
	X, Y := g.Mesh()
	lo, hi := w0Est/2, w0Est*1.5
	step := (hi - lo) / float64(waistCandidates-1)

	best := math.NaN()
	bestWaist := lo
	for i := 0; i < waistCandidates; i++ {
		w := lo + float64(i)*step
		overlap := fundamentalOverlap(w, wavelength, X, Y, field)
		if i == 0 {
			best = overlap
			bestWaist = w
			continue
		}
		if overlap > best {
			best = overlap
			bestWaist = w
		}
	}
	return bestWaist, nil
}

// fundamentalOverlap evaluates an HG(0,0) probe with the given waist on the
// mesh and returns its real unnormalized overlap with the field. Degenerate
// waists yield NaN, which the candidate scan treats as no improvement.
func fundamentalOverlap(w, wavelength float64, X, Y *mat.Dense, field *mat.CDense) float64 {
	probe, err := profile.NewHermiteGaussian(w, w, 0, 0, wavelength)
	if err != nil {
		return math.NaN()
	}
	probeField, err := probe.Evaluate(X, Y)
	if err != nil {
		return math.NaN()
	}
	return realOverlap(probeField, field)
}

// realOverlap is the real part of the elementwise product sum of a and b.
// No area element is applied; it is a relative measure, consistent across
// probes sharing one grid.
func realOverlap(a, b *mat.CDense) float64 {
	rows, cols := a.Dims()
	var sum complex128
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			sum += a.At(i, j) * b.At(i, j)
		}
	}
	return real(sum)
}
