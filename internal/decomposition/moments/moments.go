// Package moments provides intensity-moment beam diagnostics: the center of
// mass and the D4-sigma second-moment widths of a 2D intensity distribution.
// Results are in pixel units; callers scale by the grid step.
package moments

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Centroid returns the intensity-weighted center of mass in pixel units.
// Columns index x, rows index y. A zero-total intensity yields NaN.
func Centroid(intensity *mat.Dense) (cx, cy float64) {
	rows, cols := intensity.Dims()

	var total, sumX, sumY float64
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := intensity.At(i, j)
			total += v
			sumX += float64(j) * v
			sumY += float64(i) * v
		}
	}
	return sumX / total, sumY / total
}

// D4Sigma returns the second-moment widths of the intensity distribution
// along x and y in pixel units: four times the intensity-weighted standard
// deviation about the center of mass. A zero-total intensity yields NaN
// widths, which the caller propagates rather than treating as an error.
func D4Sigma(intensity *mat.Dense) (sx, sy float64) {
	rows, cols := intensity.Dims()
	cx, cy := Centroid(intensity)

	var total, varX, varY float64
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := intensity.At(i, j)
			total += v
			dx := float64(j) - cx
			dy := float64(i) - cy
			varX += dx * dx * v
			varY += dy * dy * v
		}
	}
	return 4 * math.Sqrt(varX/total), 4 * math.Sqrt(varY/total)
}
