// Package metrics exposes Prometheus instrumentation shared by the
// Chronicler and the Chat Verifier. Both subsystems register against a
// single process-wide registry so a single /metrics endpoint can serve
// either binary.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Drop-reason label values for Verifier.FramesDropped, mirroring the error
// kinds in spec.md §7.
const (
	ReasonDecodeFailed     = "decode-failed"
	ReasonPolicyDenied     = "policy-denied"
	ReasonPeerMismatch     = "peer-mismatch"
	ReasonSignatureInvalid = "signature-invalid"
	ReasonCASGetFailed     = "cas-get-failed"
)

// Chronicler instruments the archival pipeline's flush cascade.
var Chronicler = struct {
	SecondsFlushed   prometheus.Counter
	MinutesFlushed   prometheus.Counter
	HoursFlushed     prometheus.Counter
	DaysFlushed      prometheus.Counter
	StreamsFinalized prometheus.Counter
	FlushFailures    *prometheus.CounterVec
	BufferDepth      *prometheus.GaugeVec
}{
	SecondsFlushed: promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "chronicle",
		Subsystem: "chronicler",
		Name:      "seconds_flushed_total",
		Help:      "Total number of SecondNodes written to the CAS.",
	}),
	MinutesFlushed: promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "chronicle",
		Subsystem: "chronicler",
		Name:      "minutes_flushed_total",
		Help:      "Total number of MinuteNodes written to the CAS.",
	}),
	HoursFlushed: promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "chronicle",
		Subsystem: "chronicler",
		Name:      "hours_flushed_total",
		Help:      "Total number of HourNodes written to the CAS.",
	}),
	DaysFlushed: promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "chronicle",
		Subsystem: "chronicler",
		Name:      "days_flushed_total",
		Help:      "Total number of DayNodes written to the CAS.",
	}),
	StreamsFinalized: promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "chronicle",
		Subsystem: "chronicler",
		Name:      "streams_finalized_total",
		Help:      "Total number of stream roots published.",
	}),
	FlushFailures: promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chronicle",
		Subsystem: "chronicler",
		Name:      "flush_failures_total",
		Help:      "Total number of aborted flushes by tier.",
	}, []string{"tier"}),
	BufferDepth: promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "chronicle",
		Subsystem: "chronicler",
		Name:      "buffer_depth",
		Help:      "Current length of each tier buffer.",
	}, []string{"tier"}),
}

// Verifier instruments the Chat Verifier's frame pipeline.
var Verifier = struct {
	FramesDropped  *prometheus.CounterVec
	MessagesEmitted prometheus.Counter
	CacheSize      prometheus.Gauge
	ParkingLotSize prometheus.Gauge
}{
	FramesDropped: promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chronicle",
		Subsystem: "verifier",
		Name:      "frames_dropped_total",
		Help:      "Total number of transport frames dropped, by reason.",
	}, []string{"reason"}),
	MessagesEmitted: promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "chronicle",
		Subsystem: "verifier",
		Name:      "messages_emitted_total",
		Help:      "Total number of verified chat messages emitted for display.",
	}),
	CacheSize: promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "chronicle",
		Subsystem: "verifier",
		Name:      "identity_cache_size",
		Help:      "Current number of verified identities held in the cache.",
	}),
	ParkingLotSize: promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "chronicle",
		Subsystem: "verifier",
		Name:      "parking_lot_size",
		Help:      "Current number of messages parked awaiting identity resolution.",
	}),
}
