// Package metrics records generator runs in the Prometheus text format so a
// CI job or node_exporter textfile collector can pick them up.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/strogmv/moderr/compiler"
	"github.com/strogmv/moderr/compiler/normalizer"
)

type BuildMetrics struct {
	registry *prometheus.Registry

	modules  prometheus.Counter
	files    prometheus.Counter
	warnings *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration prometheus.Gauge
	lastRun  prometheus.Gauge
}

func NewBuildMetrics() *BuildMetrics {
	m := &BuildMetrics{
		registry: prometheus.NewRegistry(),
		modules: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "moderr_modules_total",
			Help: "Module definitions loaded.",
		}),
		files: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "moderr_files_generated_total",
			Help: "Go files generated.",
		}),
		warnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "moderr_warnings_total",
			Help: "Definition warnings by code.",
		}, []string{"code"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "moderr_failures_total",
			Help: "Failed runs by pipeline stage and error code.",
		}, []string{"stage", "code"}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "moderr_run_duration_seconds",
			Help: "Wall time of the last run.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "moderr_last_run_timestamp_seconds",
			Help: "Unix time the last run finished.",
		}),
	}
	m.registry.MustRegister(m.modules, m.files, m.warnings, m.failures, m.duration, m.lastRun)
	return m
}

// Observe records one run. err is the run's error, if any.
func (m *BuildMetrics) Observe(modules, files int, warnings []normalizer.Warning, elapsed time.Duration, err error) {
	m.modules.Add(float64(modules))
	m.files.Add(float64(files))
	for _, w := range warnings {
		code := w.Code
		if code == "" {
			code = "unknown"
		}
		m.warnings.WithLabelValues(code).Inc()
	}
	if err != nil {
		stage, code := "unknown", "unknown"
		var ce *compiler.ContractError
		if errors.As(err, &ce) {
			stage, code = string(ce.Stage), ce.Code
		}
		m.failures.WithLabelValues(stage, code).Inc()
	}
	m.duration.Set(elapsed.Seconds())
	m.lastRun.SetToCurrentTime()
}

// Gatherer exposes the underlying registry.
func (m *BuildMetrics) Gatherer() prometheus.Gatherer { return m.registry }

// WriteTextfile writes the metrics atomically to path.
func (m *BuildMetrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
