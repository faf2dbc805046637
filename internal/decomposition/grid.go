package decomposition

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/beamworks/hgdecomp/internal/profile"
)

// Grid is the centered uniform sampling grid a decomposition runs on,
// derived from the profile's native bounds and the target resolution.
type Grid struct {
	// X and Y are the grid axes in physical units.
	X []float64
	Y []float64

	// Dx and Dy are the per-axis step sizes.
	Dx float64
	Dy float64

	meshX *mat.Dense
	meshY *mat.Dense
}

// NewGrid derives the sampling grid for a profile at resolution res. Each
// axis gets an even sample count plus a margin of 2, centered on the
// midpoint of the profile's physical bounds, so the full bound range is
// always covered and the axis stays symmetric about the midpoint.
//
// The low bounds take the profile's x offset and the high bounds its y
// offset on both axes. This mirrors the historical bound arithmetic the
// decomposition was validated against; changing it shifts the grid center
// and with it every projection coefficient.
func NewGrid(p profile.TransverseProfile, res float64) (*Grid, error) {
	const op = "NewGrid"

	if p == nil {
		return nil, newError(op, "profile must not be nil")
	}

	xb, yb := p.Bounds()
	xOff, yOff := p.Offsets()

	lo := [2]float64{xb.Min + xOff, yb.Min + xOff}
	hi := [2]float64{xb.Max + yOff, yb.Max + yOff}

	x := axisPoints(lo[0], hi[0], res)
	y := axisPoints(lo[1], hi[1], res)

	g := &Grid{
		X:  x,
		Y:  y,
		Dx: x[1] - x[0],
		Dy: y[1] - y[0],
	}
	g.meshX, g.meshY = meshgrid(x, y)
	return g, nil
}

// Mesh returns the 2D coordinate mesh: both matrices are len(Y) rows by
// len(X) columns, with x varying along columns and y along rows.
func (g *Grid) Mesh() (X, Y *mat.Dense) {
	return g.meshX, g.meshY
}

// SampleField evaluates the profile's field on the grid mesh. Evaluator
// failures propagate unchanged; there is no fallback.
func (g *Grid) SampleField(p profile.FieldEvaluator) (*mat.CDense, error) {
	field, err := p.Evaluate(g.meshX, g.meshY)
	if err != nil {
		return nil, wrapError(err, "Grid.SampleField", "profile evaluation failed")
	}
	return field, nil
}

// axisPoints builds one grid axis: N = floor((hi-lo)/(2*res))*2 + 2 points
// spaced res apart, centered on (lo+hi)/2.
func axisPoints(lo, hi, res float64) []float64 {
	n := int(math.Floor((hi-lo)/(2*res)))*2 + 2
	center := (lo + hi) / 2
	half := float64(n-1) / 2 * res

	pts := make([]float64, n)
	floats.Span(pts, center-half, center+half)
	return pts
}

// meshgrid forms the Cartesian-product mesh of the two axes.
func meshgrid(x, y []float64) (X, Y *mat.Dense) {
	rows, cols := len(y), len(x)
	X = mat.NewDense(rows, cols, nil)
	Y = mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			X.Set(i, j, x[j])
			Y.Set(i, j, y[i])
		}
	}
	return X, Y
}
