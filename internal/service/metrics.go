package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	bookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisory_bookings_total",
			Help: "Advisory creation attempts by result",
		},
		[]string{"result"},
	)
	statusTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisory_status_transitions_total",
			Help: "Applied advisory status transitions",
		},
		[]string{"from", "to"},
	)
)
