package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects Prometheus metrics for the conversation engine. All
// record methods are safe to call on a nil receiver, so metrics stay
// optional throughout the engine and generator.
type Metrics struct {
	registry *prometheus.Registry

	modelCalls      *prometheus.CounterVec
	toolInvocations *prometheus.CounterVec
	loopGuardTrips  prometheus.Counter
	conversations   *prometheus.CounterVec
	turnDuration    prometheus.Histogram
}

// NewMetrics creates a collector backed by its own registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		modelCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "finsight_model_calls_total",
			Help: "Model calls by outcome.",
		}, []string{"status"}),
		toolInvocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "finsight_tool_invocations_total",
			Help: "Tool invocations by tool name and outcome.",
		}, []string{"tool", "status"}),
		loopGuardTrips: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "finsight_loop_guard_trips_total",
			Help: "Conversations force-terminated by the loop guard.",
		}),
		conversations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "finsight_conversations_total",
			Help: "Completed conversations by terminal state.",
		}, []string{"state"}),
		turnDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "finsight_turn_duration_seconds",
			Help:    "Duration of one model turn including tool execution.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
	}
	reg.MustRegister(m.modelCalls, m.toolInvocations, m.loopGuardTrips, m.conversations, m.turnDuration)
	return m
}

// RecordModelCall records one model call outcome ("ok" or "error").
func (m *Metrics) RecordModelCall(status string) {
	if m == nil {
		return
	}
	m.modelCalls.WithLabelValues(status).Inc()
}

// RecordToolInvocation records one tool invocation outcome.
func (m *Metrics) RecordToolInvocation(tool, status string) {
	if m == nil {
		return
	}
	m.toolInvocations.WithLabelValues(tool, status).Inc()
}

// RecordLoopTrip records a loop-guard forced termination.
func (m *Metrics) RecordLoopTrip() {
	if m == nil {
		return
	}
	m.loopGuardTrips.Inc()
}

// RecordConversation records a conversation reaching a terminal state.
func (m *Metrics) RecordConversation(state string) {
	if m == nil {
		return
	}
	m.conversations.WithLabelValues(state).Inc()
}

// RecordTurn records the duration of one model turn.
func (m *Metrics) RecordTurn(d time.Duration) {
	if m == nil {
		return
	}
	m.turnDuration.Observe(d.Seconds())
}

// Handler serves the metrics in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve starts a metrics endpoint on addr. It blocks, so callers run it in
// a goroutine; errors are returned from http.ListenAndServe.
func (m *Metrics) Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return http.ListenAndServe(addr, mux)
}
