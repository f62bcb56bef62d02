package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReconciliationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_reconciliations_total",
			Help: "Reconciliations by resulting order status",
		},
		[]string{"status", "newly_approved"},
	)

	FulfillmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_fulfillments_total",
			Help: "Artifact email dispatch outcomes",
		},
		[]string{"outcome"},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_notifications_total",
			Help: "Gateway notifications by topic and handling result",
		},
		[]string{"topic", "result"},
	)
)
