// Package profile defines the transverse laser profile abstraction consumed
// by the decomposition engine, together with the concrete profiles the
// service works with: grid-backed measured data and analytic basis modes.
package profile

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// FieldEvaluator is the narrow capability shared by measured profiles and
// synthetic basis modes: evaluate the complex field on a coordinate mesh.
// X and Y must have identical dimensions; the returned field matches them.
type FieldEvaluator interface {
	Evaluate(X, Y *mat.Dense) (*mat.CDense, error)
}

// AxisBounds holds the native sampling extent of a profile along one axis.
type AxisBounds struct {
	Min float64
	Max float64
}

// TransverseProfile extends FieldEvaluator with the native grid bounds and
// physical offsets needed to construct a sampling grid around the profile.
type TransverseProfile interface {
	FieldEvaluator

	// Bounds returns the native grid extent along x and y.
	Bounds() (x, y AxisBounds)

	// Offsets returns the physical offsets added to the native bounds.
	Offsets() (x0, y0 float64)
}

// Analytic wraps any FieldEvaluator with explicit bounds and offsets so it
// can serve as a TransverseProfile. Used for synthetic inputs where the
// field is known in closed form rather than tabulated.
type Analytic struct {
	Eval    FieldEvaluator
	XBounds AxisBounds
	YBounds AxisBounds
	XOffset float64
	YOffset float64
}

// NewAnalytic creates a profile from an evaluator and a symmetric extent
// [-halfX, halfX] x [-halfY, halfY] with zero offsets.
func NewAnalytic(eval FieldEvaluator, halfX, halfY float64) (*Analytic, error) {
	if eval == nil {
		return nil, errors.New("profile: evaluator must not be nil")
	}
	if halfX <= 0 || halfY <= 0 {
		return nil, fmt.Errorf("profile: extent must be positive, got (%v, %v)", halfX, halfY)
	}
	return &Analytic{
		Eval:    eval,
		XBounds: AxisBounds{Min: -halfX, Max: halfX},
		YBounds: AxisBounds{Min: -halfY, Max: halfY},
	}, nil
}

// Evaluate delegates to the wrapped evaluator.
func (a *Analytic) Evaluate(X, Y *mat.Dense) (*mat.CDense, error) {
	return a.Eval.Evaluate(X, Y)
}

// Bounds returns the configured extent.
func (a *Analytic) Bounds() (x, y AxisBounds) {
	return a.XBounds, a.YBounds
}

// Offsets returns the configured physical offsets.
func (a *Analytic) Offsets() (x0, y0 float64) {
	return a.XOffset, a.YOffset
}
