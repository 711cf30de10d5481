package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Transport metrics
var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swiftkit_requests_total",
			Help: "Total number of storage requests completed",
		},
		[]string{"method", "status_class"},
	)

	RequestRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swiftkit_request_retries_total",
			Help: "Total number of request retries by trigger",
		},
		[]string{"reason"},
	)

	TransferBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swiftkit_transfer_bytes_total",
			Help: "Total bytes moved to or from object storage",
		},
		[]string{"direction"},
	)
)

// Auth metrics
var (
	AuthAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swiftkit_auth_attempts_total",
			Help: "Total number of auth strategy attempts",
		},
		[]string{"strategy", "result"},
	)
)

// Segmented transfer metrics
var (
	SegmentsUploadedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swiftkit_segments_uploaded_total",
			Help: "Total number of object segments uploaded",
		},
		[]string{"result"},
	)

	ManifestsWrittenTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swiftkit_manifests_written_total",
			Help: "Total number of large object manifests written",
		},
		[]string{"kind"},
	)
)
