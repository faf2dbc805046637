package profile

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// HermiteGaussian is an analytic Hermite-Gaussian transverse mode of order
// (m, n) with 1/e^2 field waists (wx, wy), evaluated at focus. The mode is
// L2-normalized: the integral of |u|^2 over the transverse plane is 1.
type HermiteGaussian struct {
	wx, wy     float64
	m, n       int
	wavelength float64

	// normalization constant, precomputed once
	norm float64
}

// NewHermiteGaussian constructs the HG(m, n) mode. Waists and wavelength
// must be positive and the mode indices non-negative. Degenerate parameters
// (for example a NaN waist produced by a failed width estimate) are accepted
// and surface as NaN field values, which downstream consumers clamp.
func NewHermiteGaussian(wx, wy float64, m, n int, wavelength float64) (*HermiteGaussian, error) {
	if m < 0 || n < 0 {
		return nil, fmt.Errorf("profile: mode indices must be non-negative, got (%d, %d)", m, n)
	}
	// NaN waists deliberately pass this check: they fail no comparison and
	// surface as NaN field values downstream.
	if wx <= 0 || wy <= 0 || wavelength <= 0 {
		return nil, fmt.Errorf("profile: waists and wavelength must be positive, got wx=%v wy=%v lambda=%v", wx, wy, wavelength)
	}

	norm := math.Sqrt(2/math.Pi) /
		math.Sqrt(math.Pow(2, float64(m))*math.Gamma(float64(m)+1)*wx) /
		math.Sqrt(math.Pow(2, float64(n))*math.Gamma(float64(n)+1)*wy)

	return &HermiteGaussian{
		wx:         wx,
		wy:         wy,
		m:          m,
		n:          n,
		wavelength: wavelength,
		norm:       norm,
	}, nil
}

// Evaluate computes the mode field on the mesh. The result is real-valued
// (the mode is evaluated at focus) but returned as a complex field so the
// mode satisfies the same evaluator capability as measured profiles.
func (h *HermiteGaussian) Evaluate(X, Y *mat.Dense) (*mat.CDense, error) {
	rows, cols := X.Dims()
	yr, yc := Y.Dims()
	if rows != yr || cols != yc {
		return nil, fmt.Errorf("profile: mesh shape mismatch: X is %dx%d, Y is %dx%d", rows, cols, yr, yc)
	}

	out := mat.NewCDense(rows, cols, nil)
	sqrt2 := math.Sqrt2
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			x := X.At(i, j)
			y := Y.At(i, j)
			v := h.norm *
				hermitePoly(h.m, sqrt2*x/h.wx) *
				hermitePoly(h.n, sqrt2*y/h.wy) *
				math.Exp(-x*x/(h.wx*h.wx)-y*y/(h.wy*h.wy))
			out.Set(i, j, complex(v, 0))
		}
	}
	return out, nil
}

// Waists returns the 1/e^2 field waists along x and y.
func (h *HermiteGaussian) Waists() (wx, wy float64) {
	return h.wx, h.wy
}

// Order returns the mode indices (m, n).
func (h *HermiteGaussian) Order() (m, n int) {
	return h.m, h.n
}

// Wavelength returns the central wavelength the mode is defined at.
func (h *HermiteGaussian) Wavelength() float64 {
	return h.wavelength
}

// hermitePoly evaluates the physicists' Hermite polynomial H_k at t using
// the three-term recurrence H_{k+1}(t) = 2t*H_k(t) - 2k*H_{k-1}(t).
func hermitePoly(k int, t float64) float64 {
	switch k {
	case 0:
		return 1
	case 1:
		return 2 * t
	}
	prev, cur := 1.0, 2*t
	for i := 1; i < k; i++ {
		prev, cur = cur, 2*t*cur-2*float64(i)*prev
	}
	return cur
}
