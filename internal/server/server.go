// Package server exposes the decomposition engine over HTTP. Jobs run
// asynchronously: a request is accepted, decomposed in the background, and
// polled for status and results.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"gonum.org/v1/gonum/mat"

	"github.com/beamworks/hgdecomp/internal/config"
	"github.com/beamworks/hgdecomp/internal/decomposition"
	"github.com/beamworks/hgdecomp/internal/logging"
	"github.com/beamworks/hgdecomp/internal/profile"
)

// Logger is the logging capability the server needs.
type Logger interface {
	Debug(msg string, fields ...map[string]interface{})
	Info(msg string, fields ...map[string]interface{})
	Warn(msg string, fields ...map[string]interface{})
	Error(msg string, fields ...map[string]interface{})
	WithFields(fields map[string]interface{}) *logging.Logger
}

// Job tracks one decomposition from acceptance to completion.
type Job struct {
	ID          string
	Status      string // "pending", "running", "completed", "failed"
	StartTime   time.Time
	EndTime     *time.Time
	Result      *decomposition.Result
	Err         string
	LastUpdated time.Time
}

// Server manages decomposition jobs and their HTTP surface.
type Server struct {
	cfg    *config.Config
	logger Logger
	zap    *logging.Logger

	jobs   map[string]*Job
	jobsMu sync.RWMutex
	jobSeq atomic.Uint64
}

// NewServer creates a server instance with the given config and logger.
func NewServer(cfg *config.Config, logger *logging.Logger) *Server {
	return &Server{
		cfg:    cfg,
		logger: logger,
		zap:    logger,
		jobs:   make(map[string]*Job),
	}
}

// RegisterRoutes mounts the API on the router.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/decompose", s.handleDecompose)
		r.Get("/decompositions/{id}", s.handleStatus)
	})
}

// decomposeRequest is the JSON body of POST /api/v1/decompose. The field is
// given as real and imaginary parts on the profile's native grid, row-major
// with rows indexing y.
type decomposeRequest struct {
	X       []float64   `json:"x"`
	Y       []float64   `json:"y"`
	FieldRe [][]float64 `json:"field_re"`
	FieldIm [][]float64 `json:"field_im,omitempty"`

	XOffset float64 `json:"x_offset"`
	YOffset float64 `json:"y_offset"`

	Wavelength float64 `json:"wavelength"`
	MMax       int     `json:"m_max,omitempty"`
	NMax       int     `json:"n_max,omitempty"`
	Res        float64 `json:"res,omitempty"`
}

type weightEntry struct {
	M      int     `json:"m"`
	N      int     `json:"n"`
	Weight float64 `json:"weight"`
}

func (s *Server) handleDecompose(w http.ResponseWriter, r *http.Request) {
	var req decomposeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	p, err := buildProfile(&req)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	opts := decomposition.Options{
		Wavelength: req.Wavelength,
		MMax:       req.MMax,
		NMax:       req.NMax,
		Res:        req.Res,
		Workers:    s.cfg.Decomposition.Workers,
	}
	if opts.MMax == 0 {
		opts.MMax = s.cfg.Decomposition.MMax
	}
	if opts.NMax == 0 {
		opts.NMax = s.cfg.Decomposition.NMax
	}
	if opts.Res == 0 {
		opts.Res = s.cfg.Decomposition.Res
	}

	eng, err := decomposition.NewEngine(opts, logging.NewZapLogger(s.zap))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	job := &Job{
		ID:          fmt.Sprintf("dec_%d", s.jobSeq.Add(1)),
		Status:      "pending",
		StartTime:   time.Now(),
		LastUpdated: time.Now(),
	}
	s.jobsMu.Lock()
	s.jobs[job.ID] = job
	s.jobsMu.Unlock()

	go s.runJob(job.ID, eng, p)

	// runJob mutates the job under jobsMu from here on; report the literal
	// initial status rather than re-reading the struct.
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{
		"job_id": job.ID,
		"status": "pending",
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.jobsMu.RLock()
	defer s.jobsMu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		s.respondError(w, http.StatusNotFound, "decomposition not found")
		return
	}

	resp := map[string]interface{}{
		"job_id":      job.ID,
		"status":      job.Status,
		"start_time":  job.StartTime.Format(time.RFC3339),
		"last_update": job.LastUpdated.Format(time.RFC3339),
	}
	if job.EndTime != nil {
		resp["end_time"] = job.EndTime.Format(time.RFC3339)
	}
	if job.Err != "" {
		resp["error"] = job.Err
	}
	if job.Result != nil {
		entries := make([]weightEntry, 0, len(job.Result.Weights))
		for idx, coef := range job.Result.Weights {
			entries = append(entries, weightEntry{M: idx.M, N: idx.N, Weight: coef})
		}
		resp["weights"] = entries

		// A NaN waist (degenerate input) is not representable in JSON.
		if waist := job.Result.Waist; math.IsNaN(waist) || math.IsInf(waist, 0) {
			resp["waist"] = nil
		} else {
			resp["waist"] = waist
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// runJob executes one decomposition in the background and records its
// terminal state.
func (s *Server) runJob(id string, eng *decomposition.Engine, p profile.TransverseProfile) {
	s.setStatus(id, "running", nil, "")
	start := time.Now()

	result, err := eng.Decompose(context.Background(), p)
	duration := time.Since(start)

	if err != nil {
		s.logger.Error("Decomposition failed", map[string]interface{}{
			"job_id": id,
			"error":  err.Error(),
		})
		s.setStatus(id, "failed", nil, err.Error())
		jobsTotal.WithLabelValues("failed").Inc()
		return
	}

	s.logger.Info("Decomposition completed", map[string]interface{}{
		"job_id":      id,
		"modes":       len(result.Weights),
		"duration_ms": float64(duration.Microseconds()) / 1000.0,
	})
	s.setStatus(id, "completed", result, "")
	jobsTotal.WithLabelValues("completed").Inc()
	jobDuration.Observe(duration.Seconds())
}

func (s *Server) setStatus(id, status string, result *decomposition.Result, errMsg string) {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return
	}
	job.Status = status
	job.Result = result
	job.Err = errMsg
	now := time.Now()
	job.LastUpdated = now
	if status == "completed" || status == "failed" {
		job.EndTime = &now
	}
}

func (s *Server) respondError(w http.ResponseWriter, code int, message string) {
	s.logger.Error("Request error", map[string]interface{}{
		"status":  code,
		"message": message,
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// Close releases server resources. Running jobs are left to finish; they
// hold no external resources.
func (s *Server) Close() error {
	return nil
}

// buildProfile validates the request payload and assembles the grid-backed
// profile the engine consumes.
func buildProfile(req *decomposeRequest) (profile.TransverseProfile, error) {
	if req.Wavelength <= 0 {
		return nil, fmt.Errorf("wavelength must be positive, got %v", req.Wavelength)
	}
	if len(req.FieldRe) == 0 {
		return nil, fmt.Errorf("field_re is required")
	}
	rows := len(req.FieldRe)
	cols := len(req.FieldRe[0])
	if rows != len(req.Y) || cols != len(req.X) {
		return nil, fmt.Errorf("field_re is %dx%d but grid is %dx%d (rows=y, cols=x)", rows, cols, len(req.Y), len(req.X))
	}
	if req.FieldIm != nil && len(req.FieldIm) != rows {
		return nil, fmt.Errorf("field_im has %d rows, field_re has %d", len(req.FieldIm), rows)
	}

	field := mat.NewCDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		if len(req.FieldRe[i]) != cols {
			return nil, fmt.Errorf("field_re row %d has %d columns, expected %d", i, len(req.FieldRe[i]), cols)
		}
		if req.FieldIm != nil && len(req.FieldIm[i]) != cols {
			return nil, fmt.Errorf("field_im row %d has %d columns, expected %d", i, len(req.FieldIm[i]), cols)
		}
		for j := 0; j < cols; j++ {
			im := 0.0
			if req.FieldIm != nil {
				im = req.FieldIm[i][j]
			}
			field.Set(i, j, complex(req.FieldRe[i][j], im))
		}
	}

	return profile.NewFromData(req.X, req.Y, field, req.XOffset, req.YOffset)
}
