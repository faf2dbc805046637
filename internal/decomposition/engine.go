package decomposition

import (
	"context"
	"math"
	"sync"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/beamworks/hgdecomp/internal/profile"
)

// Engine performs Hermite-Gaussian modal decompositions. It holds no state
// across calls beyond its options and logger, so a single Engine is safe for
// concurrent use.
type Engine struct {
	opts   Options
	logger *zap.Logger
}

// NewEngine validates the options and returns an engine. A nil logger gets
// a development logger, matching how the service runs outside the server.
func NewEngine(opts Options, logger *zap.Logger) (*Engine, error) {
	const op = "NewEngine"

	if opts.MMax == 0 {
		opts.MMax = DefaultMMax
	}
	if opts.NMax == 0 {
		opts.NMax = DefaultNMax
	}
	if opts.Res == 0 {
		opts.Res = DefaultRes
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}

	if opts.Wavelength <= 0 {
		return nil, newError(op, "wavelength must be positive, got %v", opts.Wavelength)
	}
	if opts.MMax < 1 || opts.NMax < 1 {
		return nil, newError(op, "mode orders must be at least 1, got m_max=%d n_max=%d", opts.MMax, opts.NMax)
	}
	if opts.Res <= 0 {
		return nil, newError(op, "resolution must be positive, got %v", opts.Res)
	}

	if logger == nil {
		logger, _ = zap.NewDevelopment()
	}

	return &Engine{
		opts:   opts,
		logger: logger.Named("decomposition"),
	}, nil
}

// Decompose samples the profile on a grid derived from its bounds, estimates
// the best-fit fundamental waist, and projects every mode in
// [0, MMax) x [0, NMax) onto the sampled field.
//
// The call is all-or-nothing: it either returns a complete weight table with
// exactly MMax*NMax finite entries, or an error. NaN projection coefficients
// from degenerate waists or extreme mode orders are clamped to zero rather
// than surfaced.
func (e *Engine) Decompose(ctx context.Context, p profile.TransverseProfile) (*Result, error) {
	const op = "Engine.Decompose"

	if p == nil {
		return nil, newError(op, "profile must not be nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, wrapError(err, op, "context done before decomposition started")
	}

	grid, err := NewGrid(p, e.opts.Res)
	if err != nil {
		return nil, err
	}

	field, err := grid.SampleField(p)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("Sampled field",
		zap.Int("nx", len(grid.X)),
		zap.Int("ny", len(grid.Y)),
		zap.Float64("dx", grid.Dx),
		zap.Float64("dy", grid.Dy),
	)

	w0, err := estimateWaist(grid, field, e.opts.Wavelength, e.logger)
	if err != nil {
		return nil, err
	}

	weights, err := e.projectModes(grid, field, w0)
	if err != nil {
		return nil, err
	}

	return &Result{Weights: weights, Waist: w0}, nil
}

// projectModes computes the projection coefficient of every mode against the
// sampled field. The projections are independent, so they are partitioned by
// m across the worker pool; each worker writes disjoint entries.
func (e *Engine) projectModes(grid *Grid, field *mat.CDense, w0 float64) (WeightTable, error) {
	mMax, nMax := e.opts.MMax, e.opts.NMax
	X, Y := grid.Mesh()
	area := grid.Dx * grid.Dy

	coefs := make([]float64, mMax*nMax)
	errs := make([]error, e.opts.Workers)

	rowCh := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < e.opts.Workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for m := range rowCh {
				// A failed worker keeps draining the channel so the
				// producer below never blocks on a send.
				if errs[worker] != nil {
					continue
				}
				for n := 0; n < nMax; n++ {
					coef, err := e.projectMode(m, n, w0, X, Y, field, area)
					if err != nil {
						errs[worker] = err
						break
					}
					coefs[m*nMax+n] = coef
				}
			}
		}(w)
	}
	for m := 0; m < mMax; m++ {
		rowCh <- m
	}
	close(rowCh)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	weights := make(WeightTable, mMax*nMax)
	for m := 0; m < mMax; m++ {
		for n := 0; n < nMax; n++ {
			weights[ModeIndex{M: m, N: n}] = coefs[m*nMax+n]
		}
	}
	return weights, nil
}

// projectMode computes the discretized overlap integral of one HG mode with
// the field: Re(sum(field * mode)) * dx * dy. NaN coefficients clamp to
// zero; they are an expected edge case, not an error.
func (e *Engine) projectMode(m, n int, w0 float64, X, Y *mat.Dense, field *mat.CDense, area float64) (float64, error) {
	const op = "Engine.projectMode"

	mode, err := profile.NewHermiteGaussian(w0, w0, m, n, e.opts.Wavelength)
	if err != nil {
		// Degenerate waist (e.g. zero from a vanishing width estimate):
		// the mode is undefined and contributes nothing.
		e.logger.Debug("Clamping coefficient of undefined mode to zero",
			zap.Int("m", m), zap.Int("n", n), zap.Float64("waist", w0),
		)
		return 0, nil
	}

	modeField, err := mode.Evaluate(X, Y)
	if err != nil {
		return 0, wrapError(err, op, "mode evaluation failed")
	}

	coef := realOverlap(field, modeField) * area
	if math.IsNaN(coef) {
		e.logger.Debug("Clamping NaN projection coefficient to zero",
			zap.Int("m", m), zap.Int("n", n), zap.Float64("waist", w0),
		)
		coef = 0
	}
	return coef, nil
}
