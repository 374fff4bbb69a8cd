// ABOUTME: Prometheus collectors for agent turns, tool calls and retrieval
// ABOUTME: A nil *Recorder is valid and records nothing
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder owns the collectors for one registry
type Recorder struct {
	requests          *prometheus.CounterVec
	iterations        prometheus.Histogram
	toolCalls         *prometheus.CounterVec
	retrievalDuration prometheus.Histogram
	retrievalResults  prometheus.Histogram
}

// New creates the collectors and registers them on reg.
// Passing nil registers on the default registry.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	r := &Recorder{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sous_agent_requests_total",
				Help: "Agent turns by how the loop terminated",
			},
			[]string{"terminated_by"},
		),
		iterations: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sous_agent_iterations",
				Help:    "Model round trips per agent turn",
				Buckets: prometheus.LinearBuckets(1, 1, 10),
			},
		),
		toolCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sous_tool_calls_total",
				Help: "Tool invocations by tool name and outcome",
			},
			[]string{"tool", "status"},
		),
		retrievalDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sous_retrieval_duration_seconds",
				Help:    "Time spent embedding the query and ranking recipes",
				Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
			},
		),
		retrievalResults: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sous_retrieval_results",
				Help:    "Recipes returned per retrieval after threshold filtering",
				Buckets: prometheus.LinearBuckets(0, 1, 11),
			},
		),
	}

	reg.MustRegister(r.requests, r.iterations, r.toolCalls, r.retrievalDuration, r.retrievalResults)
	return r
}

// ObserveTurn records one finished agent turn
func (r *Recorder) ObserveTurn(terminatedBy string, iterations int) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(terminatedBy).Inc()
	r.iterations.Observe(float64(iterations))
}

// ObserveToolCall records one tool invocation. status is "success" or an error code.
func (r *Recorder) ObserveToolCall(tool, status string) {
	if r == nil {
		return
	}
	r.toolCalls.WithLabelValues(tool, status).Inc()
}

// ObserveRetrieval records a completed similarity search
func (r *Recorder) ObserveRetrieval(elapsed time.Duration, results int) {
	if r == nil {
		return
	}
	r.retrievalDuration.Observe(elapsed.Seconds())
	r.retrievalResults.Observe(float64(results))
}

// Handler serves the given gatherer in the Prometheus text format
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
