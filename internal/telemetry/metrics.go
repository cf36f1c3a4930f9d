package telemetry

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	GenerationsStarted   = prometheus.NewCounter(prometheus.CounterOpts{Name: "generations_started_total", Help: "Generation jobs admitted"})
	GenerationsCompleted = prometheus.NewCounter(prometheus.CounterOpts{Name: "generations_completed_total", Help: "Generation jobs completed"})
	GenerationsFailed    = prometheus.NewCounter(prometheus.CounterOpts{Name: "generations_failed_total", Help: "Generation jobs failed"})
	AdmissionRejects     = prometheus.NewCounter(prometheus.CounterOpts{Name: "generations_admission_rejects_total", Help: "Submissions rejected at capacity"})
	RunningGauge         = prometheus.NewGauge(prometheus.GaugeOpts{Name: "generations_running", Help: "Generation jobs currently running"})
)

// Handler exposes the /metrics HTTP handler with a singleton registry.
func Handler() http.Handler {
	once.Do(func() {
		prometheus.MustRegister(
			GenerationsStarted,
			GenerationsCompleted,
			GenerationsFailed,
			AdmissionRejects,
			RunningGauge,
		)
	})
	return promhttp.Handler()
}
