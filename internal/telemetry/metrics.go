package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	OrdersPlaced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_placed_total",
			Help: "Orders committed successfully",
		},
	)

	OrderPlacementFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_placement_failures_total",
			Help: "Order placements rejected or failed, by reason",
		},
		[]string{"reason"},
	)
)
