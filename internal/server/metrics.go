package server

import "github.com/prometheus/client_golang/prometheus"

var (
	jobsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hgdecomp_jobs_total",
		Help: "Decomposition jobs by terminal status.",
	}, []string{"status"})

	jobDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "hgdecomp_job_duration_seconds",
		Help:    "Wall-clock duration of completed decomposition jobs.",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	})
)

func init() {
	prometheus.MustRegister(jobsTotal, jobDuration)
}
