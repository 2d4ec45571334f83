package storyapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	remoteRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snooze_remote_requests_total",
			Help: "Requests sent to the remote story service",
		},
		[]string{"op", "outcome"},
	)
	remoteRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "snooze_remote_request_duration_seconds",
			Help:    "Latency of requests to the remote story service",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)
)
