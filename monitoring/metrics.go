package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	paymentOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_operations_total",
			Help: "Total orchestrator operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	gatewayCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_call_duration_seconds",
			Help:    "Duration of collection gateway calls",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 8),
		},
		[]string{"call"},
	)

	blobHandlesOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "receipt_blob_handles_open",
			Help: "Receipt blob handles currently held",
		},
	)

	blobHandlesReleased = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "receipt_blob_handles_released_total",
			Help: "Receipt blob handles released",
		},
	)
)

// TrackOperation counts an orchestrator operation outcome.
func TrackOperation(operation, outcome string) {
	paymentOperations.WithLabelValues(operation, outcome).Inc()
}

// TrackGatewayCall records the duration of one gateway round trip.
func TrackGatewayCall(call string, duration time.Duration) {
	gatewayCallDuration.WithLabelValues(call).Observe(duration.Seconds())
}

// TrackBlobOpened marks a new receipt blob handle.
func TrackBlobOpened() {
	blobHandlesOpen.Inc()
}

// TrackBlobReleased marks a released receipt blob handle.
func TrackBlobReleased() {
	blobHandlesOpen.Dec()
	blobHandlesReleased.Inc()
}
