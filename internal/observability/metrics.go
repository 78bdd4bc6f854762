package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type moduleMetrics struct {
	agentRunTotal    *prometheus.CounterVec
	agentRunDuration *prometheus.HistogramVec

	modelCallTotal    *prometheus.CounterVec
	modelCallDuration *prometheus.HistogramVec

	toolInvocationTotal    *prometheus.CounterVec
	toolInvocationDuration *prometheus.HistogramVec

	parseFailureTotal *prometheus.CounterVec
	correctionTotal   *prometheus.CounterVec
}

var (
	metricsOnce sync.Once
	metricsInst *moduleMetrics
	registry    *prometheus.Registry
)

func getMetrics() *moduleMetrics {
	metricsOnce.Do(func() {
		m := &moduleMetrics{
			agentRunTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "agent_run_total",
					Help: "Total agent runs by terminal status.",
				},
				[]string{"status"},
			),
			agentRunDuration: prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "agent_run_duration_seconds",
					Help:    "Agent run duration in seconds by terminal status.",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"status"},
			),
			modelCallTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "model_call_total",
					Help: "Total model completion calls by provider and status.",
				},
				[]string{"provider", "status"},
			),
			modelCallDuration: prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "model_call_duration_seconds",
					Help:    "Model completion call duration in seconds by provider.",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"provider"},
			),
			toolInvocationTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "tool_invocation_total",
					Help: "Total tool invocations by tool and status.",
				},
				[]string{"tool", "status"},
			),
			toolInvocationDuration: prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "tool_invocation_duration_seconds",
					Help:    "Tool invocation duration in seconds by tool.",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"tool"},
			),
			parseFailureTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "parse_failure_total",
					Help: "Total model output parse failures by error kind.",
				},
				[]string{"kind"},
			),
			correctionTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "correction_total",
					Help: "Total corrective prompts issued by reason.",
				},
				[]string{"reason"},
			),
		}

		registry = prometheus.NewRegistry()
		registry.MustRegister(
			m.agentRunTotal,
			m.agentRunDuration,
			m.modelCallTotal,
			m.modelCallDuration,
			m.toolInvocationTotal,
			m.toolInvocationDuration,
			m.parseFailureTotal,
			m.correctionTotal,
		)

		metricsInst = m
	})
	return metricsInst
}

// EnsureRegistered initializes and registers all metrics. Safe to call more
// than once.
func EnsureRegistered() {
	getMetrics()
}

// Handler exposes the metrics registry over HTTP.
func Handler() http.Handler {
	getMetrics()
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// RecordAgentRun records one completed agent run.
func RecordAgentRun(status string, duration time.Duration) {
	m := getMetrics()
	m.agentRunTotal.WithLabelValues(status).Inc()
	m.agentRunDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordModelCall records one model completion call.
func RecordModelCall(provider string, duration time.Duration, success bool) {
	m := getMetrics()
	m.modelCallTotal.WithLabelValues(provider, statusLabel(success)).Inc()
	m.modelCallDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordToolInvocation records one remote tool invocation.
func RecordToolInvocation(tool string, duration time.Duration, success bool) {
	m := getMetrics()
	m.toolInvocationTotal.WithLabelValues(tool, statusLabel(success)).Inc()
	m.toolInvocationDuration.WithLabelValues(tool).Observe(duration.Seconds())
}

// RecordParseFailure records a model output that failed to parse.
func RecordParseFailure(kind string) {
	getMetrics().parseFailureTotal.WithLabelValues(kind).Inc()
}

// RecordCorrection records a corrective prompt issued to the model.
func RecordCorrection(reason string) {
	getMetrics().correctionTotal.WithLabelValues(reason).Inc()
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "error"
}
