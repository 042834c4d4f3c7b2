// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Send outcomes.
const (
	OutcomeOK        = "ok"
	OutcomeTransport = "transport_error"
	OutcomeRejected  = "rejected"
)

var (
	// Registry is the registry served on /metrics.
	Registry = prometheus.NewRegistry()

	sends = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gqltester",
		Name:      "relay_sends_total",
		Help:      "Proxied GraphQL submissions by outcome.",
	}, []string{"outcome"})

	sendDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "gqltester",
		Name:      "relay_send_duration_seconds",
		Help:      "Latency of the upstream call, transport failures included.",
		Buckets:   prometheus.DefBuckets,
	})

	historyRecords = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gqltester",
		Name:      "history_records_total",
		Help:      "History entries recorded after a completed submission.",
	})
)

func init() {
	Registry.MustRegister(
		sends,
		sendDuration,
		historyRecords,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// ObserveSend records one submission outcome. Zero durations are not observed.
func ObserveSend(outcome string, elapsed time.Duration) {
	sends.WithLabelValues(outcome).Inc()
	if elapsed > 0 {
		sendDuration.Observe(elapsed.Seconds())
	}
}

// ObserveHistoryRecord counts a recorded history entry.
func ObserveHistoryRecord() {
	historyRecords.Inc()
}
