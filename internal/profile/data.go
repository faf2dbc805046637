package profile

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// FromData is a transverse profile backed by a measured complex field on a
// rectilinear native grid. Evaluation bilinearly interpolates between the
// samples; points outside the native grid evaluate to zero.
//
// The field is stored row-major with rows indexing y and columns indexing x,
// matching the mesh layout produced by the decomposition grid builder.
type FromData struct {
	x, y    []float64
	field   *mat.CDense
	xOffset float64
	yOffset float64
}

// NewFromData creates a grid-backed profile. x and y must be strictly
// increasing and have at least two points each; field must be len(y) rows by
// len(x) columns. The offsets shift the native bounds into physical space.
func NewFromData(x, y []float64, field *mat.CDense, xOffset, yOffset float64) (*FromData, error) {
	if field == nil {
		return nil, errors.New("profile: field must not be nil")
	}
	rows, cols := field.Dims()
	if len(x) < 2 || len(y) < 2 {
		return nil, fmt.Errorf("profile: native grid needs at least 2 points per axis, got (%d, %d)", len(x), len(y))
	}
	if rows != len(y) || cols != len(x) {
		return nil, fmt.Errorf("profile: field is %dx%d but grid is %dx%d (rows=y, cols=x)", rows, cols, len(y), len(x))
	}
	if !sort.Float64sAreSorted(x) || !sort.Float64sAreSorted(y) {
		return nil, errors.New("profile: native grid axes must be ascending")
	}
	stored := mat.NewCDense(rows, cols, nil)
	stored.Copy(field)

	return &FromData{
		x:       append([]float64(nil), x...),
		y:       append([]float64(nil), y...),
		field:   stored,
		xOffset: xOffset,
		yOffset: yOffset,
	}, nil
}

// Bounds returns the native grid extent along each axis.
func (p *FromData) Bounds() (x, y AxisBounds) {
	return AxisBounds{Min: p.x[0], Max: p.x[len(p.x)-1]},
		AxisBounds{Min: p.y[0], Max: p.y[len(p.y)-1]}
}

// Offsets returns the physical offsets of the profile.
func (p *FromData) Offsets() (x0, y0 float64) {
	return p.xOffset, p.yOffset
}

// Evaluate interpolates the stored field at every mesh point.
func (p *FromData) Evaluate(X, Y *mat.Dense) (*mat.CDense, error) {
	rows, cols := X.Dims()
	yr, yc := Y.Dims()
	if rows != yr || cols != yc {
		return nil, fmt.Errorf("profile: mesh shape mismatch: X is %dx%d, Y is %dx%d", rows, cols, yr, yc)
	}

	out := mat.NewCDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out.Set(i, j, p.interpolate(X.At(i, j), Y.At(i, j)))
		}
	}
	return out, nil
}

// interpolate bilinearly interpolates the field at (x, y) in native
// coordinates, returning zero outside the grid.
func (p *FromData) interpolate(x, y float64) complex128 {
	if x < p.x[0] || x > p.x[len(p.x)-1] || y < p.y[0] || y > p.y[len(p.y)-1] {
		return 0
	}

	jx := cellIndex(p.x, x)
	iy := cellIndex(p.y, y)

	tx := 0.0
	if dx := p.x[jx+1] - p.x[jx]; dx > 0 {
		tx = (x - p.x[jx]) / dx
	}
	ty := 0.0
	if dy := p.y[iy+1] - p.y[iy]; dy > 0 {
		ty = (y - p.y[iy]) / dy
	}

	f00 := p.field.At(iy, jx)
	f01 := p.field.At(iy, jx+1)
	f10 := p.field.At(iy+1, jx)
	f11 := p.field.At(iy+1, jx+1)

	ctx := complex(tx, 0)
	cty := complex(ty, 0)
	low := f00*(1-ctx) + f01*ctx
	high := f10*(1-ctx) + f11*ctx
	return low*(1-cty) + high*cty
}

// cellIndex returns i such that axis[i] <= v <= axis[i+1], clamped so the
// upper bound of the axis maps into the last cell.
func cellIndex(axis []float64, v float64) int {
	i := sort.SearchFloat64s(axis, v)
	if i > 0 {
		i--
	}
	if i > len(axis)-2 {
		i = len(axis) - 2
	}
	return i
}
