package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "queue_requests_total",
		Help: "Total number of HTTP requests handled.",
	})

	RequestErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "queue_request_errors_total",
		Help: "Total number of HTTP requests answered with an error status.",
	})

	RecordsCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "queue_records_created_total",
		Help: "Total number of records created, by booking kind.",
	},
		[]string{"kind"},
	)

	StatusChangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "queue_status_changes_total",
		Help: "Total number of successful status transitions, by target status.",
	},
		[]string{"status"},
	)
)
