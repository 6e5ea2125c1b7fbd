// Package telemetry provides Prometheus metrics for both protocol engines.
package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks protocol-level Prometheus metrics.
//
// All metrics use the tether_ prefix. Counters are cheap enough to update
// on every message without measurable overhead.
type Metrics struct {
	// MessagesSent counts instrumentation messages sent by selector.
	MessagesSent *prometheus.CounterVec

	// MessagesReceived counts instrumentation messages received, labeled by
	// whether they arrived on a regular or out-of-band stream channel.
	MessagesReceived *prometheus.CounterVec

	// ConduitOps counts file-conduit operations by opcode name and status.
	ConduitOps *prometheus.CounterVec

	// BytesTransferred counts payload bytes moved by direction (read/write).
	BytesTransferred *prometheus.CounterVec

	// ChannelsOpen tracks currently open instrumentation channels.
	ChannelsOpen prometheus.Gauge
}

// NewMetrics creates the metric set and registers it with reg.
// Panics if registration fails (expected during initialization only).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		MessagesSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tether_instr_messages_sent_total",
				Help: "Total instrumentation messages sent by selector",
			},
			[]string{"selector"},
		),
		MessagesReceived: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tether_instr_messages_received_total",
				Help: "Total instrumentation messages received by channel kind",
			},
			[]string{"kind"}, // "regular", "stream"
		),
		ConduitOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tether_conduit_operations_total",
				Help: "Total file-conduit operations by opcode and status",
			},
			[]string{"opcode", "status"},
		),
		BytesTransferred: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tether_conduit_bytes_total",
				Help: "Total file-conduit payload bytes by direction",
			},
			[]string{"direction"}, // "read", "write"
		),
		ChannelsOpen: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "tether_instr_channels_open",
				Help: "Currently open instrumentation channels",
			},
		),
	}

	reg.MustRegister(
		m.MessagesSent,
		m.MessagesReceived,
		m.ConduitOps,
		m.BytesTransferred,
		m.ChannelsOpen,
	)
	return m
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// Default returns the process-wide metric set, registered against the
// default Prometheus registerer on first use.
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultMetrics = NewMetrics(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}
