// File path: internal/common/telemetry/telemetry.go
package telemetry

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nicodishanthj/spinyleaf/internal/common"
)

type spanKey struct{}

type span struct {
	name  string
	start time.Time
}

var (
	initOnce sync.Once
	registry *prometheus.Registry

	generationAttempts *prometheus.CounterVec
	generationFailures *prometheus.CounterVec
	generationLatency  *prometheus.HistogramVec
	sectionsAssembled  *prometheus.CounterVec
	missingAssets      *prometheus.CounterVec
	pipelineRuns       *prometheus.CounterVec
	simulationRuns     *prometheus.CounterVec
)

func ensureInit() {
	initOnce.Do(func() {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)

		generationAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wellbeing",
			Name:      "generation_attempts_total",
			Help:      "Text-generation requests sent, by dimension.",
		}, []string{"dimension"})
		generationFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wellbeing",
			Name:      "generation_failures_total",
			Help:      "Narratives that failed after all retries, by dimension and reason.",
		}, []string{"dimension", "reason"})
		generationLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "wellbeing",
			Name:      "generation_latency_seconds",
			Help:      "Latency of a single text-generation attempt.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
		}, []string{"dimension"})
		sectionsAssembled = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wellbeing",
			Name:      "report_sections_total",
			Help:      "Report sections assembled, by dimension and status.",
		}, []string{"dimension", "status"})
		missingAssets = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wellbeing",
			Name:      "report_missing_images_total",
			Help:      "Image slots rendered as missing, by dimension.",
		}, []string{"dimension"})
		pipelineRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wellbeing",
			Name:      "pipeline_runs_total",
			Help:      "Report pipeline runs by outcome.",
		}, []string{"outcome"})
		simulationRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wellbeing",
			Name:      "simulation_runs_total",
			Help:      "External simulation runs by outcome.",
		}, []string{"outcome"})

		registry.MustRegister(
			generationAttempts,
			generationFailures,
			generationLatency,
			sectionsAssembled,
			missingAssets,
			pipelineRuns,
			simulationRuns,
		)
	})
}

// Registry exposes the collector registry, mainly for tests.
func Registry() *prometheus.Registry {
	ensureInit()
	return registry
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	ensureInit()
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

func StartSpan(ctx context.Context, name string) (context.Context, func(attrs ...interface{})) {
	sp := &span{name: name, start: time.Now()}
	ctx = context.WithValue(ctx, spanKey{}, sp)
	logger := common.Logger()
	logger.Debug("trace: start", "span", name)
	return ctx, func(attrs ...interface{}) {
		logger.Debug("trace: end", append([]interface{}{"span", name, "dur", time.Since(sp.start)}, attrs...)...)
	}
}

func SpanDuration(ctx context.Context) time.Duration {
	sp, _ := ctx.Value(spanKey{}).(*span)
	if sp == nil {
		return 0
	}
	return time.Since(sp.start)
}

func RecordGenerationAttempt(dimension string, duration time.Duration) {
	ensureInit()
	key := label(dimension)
	generationAttempts.WithLabelValues(key).Inc()
	if duration > 0 {
		generationLatency.WithLabelValues(key).Observe(duration.Seconds())
	}
}

func RecordGenerationFailure(dimension, reason string) {
	ensureInit()
	generationFailures.WithLabelValues(label(dimension), label(reason)).Inc()
}

func RecordSection(dimension, status string) {
	ensureInit()
	sectionsAssembled.WithLabelValues(label(dimension), label(status)).Inc()
}

func RecordMissingImage(dimension string) {
	ensureInit()
	missingAssets.WithLabelValues(label(dimension)).Inc()
}

func RecordPipelineRun(outcome string) {
	ensureInit()
	pipelineRuns.WithLabelValues(label(outcome)).Inc()
}

func RecordSimulationRun(outcome string) {
	ensureInit()
	simulationRuns.WithLabelValues(label(outcome)).Inc()
}

func label(value string) string {
	key := strings.TrimSpace(strings.ToLower(value))
	if key == "" {
		return "unknown"
	}
	return key
}
