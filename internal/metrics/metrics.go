package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BorrowRequestsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "toolshare_borrow_requests_created_total",
		Help: "Total number of borrow requests successfully created.",
	})

	// TransitionsTotal counts applied lifecycle actions.
	TransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "toolshare_borrow_request_transitions_total",
		Help: "Total number of borrow request transitions applied, by action.",
	}, []string{"action"})

	// OperationErrorsTotal counts rejected or failed operations by error kind.
	OperationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "toolshare_operation_errors_total",
		Help: "Total number of errors encountered during specific operations.",
	}, []string{"operation", "kind"})

	AvailabilityTogglesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "toolshare_availability_toggles_total",
		Help: "Total number of owner availability toggles.",
	})

	OverdueLoans = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "toolshare_overdue_loans",
		Help: "Active loans past their due date at the last overdue report.",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "toolshare_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// ObserveHTTPRequest records the latency of a request served on route.
func ObserveHTTPRequest(method, route string, status int, start time.Time) {
	HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
}
