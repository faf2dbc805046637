// Package decomposition decomposes a 2D complex laser transverse field into
// a weighted sum of Hermite-Gaussian modes and estimates the best-fit
// fundamental beam waist for that decomposition.
package decomposition

import (
	"context"

	"github.com/beamworks/hgdecomp/internal/profile"
)

// Default option values used when the caller leaves a field zero.
const (
	DefaultMMax = 12
	DefaultNMax = 12
	DefaultRes  = 1e-6
)

// ModeIndex identifies a Hermite-Gaussian mode by its transverse orders.
type ModeIndex struct {
	M int
	N int
}

// WeightTable maps mode indices to real projection coefficients. It always
// covers the full Cartesian product [0, MMax) x [0, NMax); iteration order
// carries no meaning.
type WeightTable map[ModeIndex]float64

// Options configures a decomposition run.
type Options struct {
	// Wavelength is the central wavelength, in meters, at which the
	// Hermite-Gaussian basis is defined. Required, must be positive.
	Wavelength float64

	// MMax and NMax are the exclusive upper mode orders of the expansion
	// along x and y. Zero values default to DefaultMMax / DefaultNMax.
	MMax int
	NMax int

	// Res is the grid resolution, in meters, used for the decomposition
	// calculation. Zero defaults to DefaultRes.
	Res float64

	// Workers bounds the number of goroutines projecting modes in
	// parallel. Zero or one runs the projection sequentially. Purely a
	// performance knob; results are identical for any value.
	Workers int
}

// Result is the immutable output of a decomposition: the full weight table
// and the estimated fundamental waist the basis was built with.
type Result struct {
	Weights WeightTable
	Waist   float64
}

// Decompose runs a one-shot decomposition with a default engine. It is a
// pure function of its inputs; see Engine for reuse across calls.
func Decompose(p profile.TransverseProfile, opts Options) (*Result, error) {
	eng, err := NewEngine(opts, nil)
	if err != nil {
		return nil, err
	}
	return eng.Decompose(context.Background(), p)
}
