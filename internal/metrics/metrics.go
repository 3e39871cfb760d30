package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ShipmentsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tracking_shipments_created_total",
		Help: "Total number of shipments created through the public API.",
	})

	StatusChangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tracking_status_changes_total",
		Help: "Total number of applied shipment status changes.",
	},
		[]string{"status"},
	)

	DriversAssignedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tracking_drivers_assigned_total",
		Help: "Total number of driver assignments, batch entries included.",
	})

	RateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tracking_rate_limited_total",
		Help: "Total number of public API calls rejected by the rate limiter.",
	})

	OperationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tracking_operation_errors_total",
		Help: "Total number of errors encountered during specific operations.",
	},
		[]string{"operation"},
	)

	AuditEntriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tracking_audit_entries_total",
		Help: "Total number of audit log entries recorded.",
	})
)
