// Package metrics exposes Prometheus instrumentation for the gateway.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	downstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bakery_downstream_requests_total",
			Help: "Calls to the bakery agent HTTP API by operation and outcome.",
		},
		[]string{"op", "outcome"},
	)

	toolCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bakery_tool_calls_total",
			Help: "MCP tool invocations by tool name and outcome.",
		},
		[]string{"tool", "outcome"},
	)

	activeStreams = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bakery_active_streams",
			Help: "Currently open SSE client streams.",
		},
	)
)

// Register registers all gateway metrics on reg. Call once per registry.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(downstreamRequests, toolCalls, activeStreams)
}

func outcomeLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "error"
}

// RecordDownstreamRequest counts one call to the bakery agent.
func RecordDownstreamRequest(op string, ok bool) {
	downstreamRequests.WithLabelValues(op, outcomeLabel(ok)).Inc()
}

// RecordToolCall counts one MCP tool invocation.
func RecordToolCall(tool string, ok bool) {
	toolCalls.WithLabelValues(tool, outcomeLabel(ok)).Inc()
}

// StreamOpened marks a new SSE stream as live.
func StreamOpened() {
	activeStreams.Inc()
}

// StreamClosed marks an SSE stream as torn down.
func StreamClosed() {
	activeStreams.Dec()
}
