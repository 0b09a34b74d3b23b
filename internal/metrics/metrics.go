// Package metrics exports notification dispatch counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mj1618/axsim/internal/ax"
)

// Dispatch outcomes used as the "outcome" label.
const (
	OutcomeDelivered = "delivered"
	OutcomeDropped   = "dropped"
	OutcomeFailed    = "failed"
)

// Metrics counts notification dispatch outcomes. It implements
// ax.DispatchRecorder.
type Metrics struct {
	registry      *prometheus.Registry
	Notifications *prometheus.CounterVec
	ToolCalls     *prometheus.CounterVec
}

var _ ax.DispatchRecorder = (*Metrics)(nil)

// New registers the collectors on a fresh registry so several instances can
// coexist in one process.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		Notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "axsim_notifications_total",
				Help: "Notifications considered by observers, by kind and outcome",
			},
			[]string{"notification", "outcome"},
		),
		ToolCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "axsim_mcp_tool_calls_total",
				Help: "MCP tool invocations, by tool and status",
			},
			[]string{"tool", "status"},
		),
	}
	reg.MustRegister(m.Notifications, m.ToolCalls)
	return m
}

func (m *Metrics) Delivered(n ax.Notification) {
	m.Notifications.WithLabelValues(string(n), OutcomeDelivered).Inc()
}

func (m *Metrics) Dropped(n ax.Notification) {
	m.Notifications.WithLabelValues(string(n), OutcomeDropped).Inc()
}

func (m *Metrics) Failed(n ax.Notification) {
	m.Notifications.WithLabelValues(string(n), OutcomeFailed).Inc()
}

// ToolCall records one MCP tool invocation.
func (m *Metrics) ToolCall(tool string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.ToolCalls.WithLabelValues(tool, status).Inc()
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the collectors in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
