// Package telemetry exposes Prometheus counters for the sync core.
package telemetry

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	EventsApplied   = prometheus.NewCounter(prometheus.CounterOpts{Name: "gensync_events_applied_total", Help: "Events that produced an observable state change"})
	EventsDiscarded = prometheus.NewCounter(prometheus.CounterOpts{Name: "gensync_events_discarded_total", Help: "Duplicate, stale, or id-less events dropped by reconciliation"})
	DecodeFailures  = prometheus.NewCounter(prometheus.CounterOpts{Name: "gensync_decode_failures_total", Help: "Malformed frames skipped by the stream decoder"})
	PushReconnects  = prometheus.NewCounter(prometheus.CounterOpts{Name: "gensync_push_reconnects_total", Help: "Push channel reconnect attempts"})
)

// Handler exposes a /metrics HTTP handler with a singleton registry.
func Handler() http.Handler {
	once.Do(func() {
		prometheus.MustRegister(
			EventsApplied,
			EventsDiscarded,
			DecodeFailures,
			PushReconnects,
		)
	})
	return promhttp.Handler()
}
