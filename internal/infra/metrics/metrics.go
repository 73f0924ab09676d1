package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	backendRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "woodflow",
		Name:      "backend_requests_total",
		Help:      "Requests sent to the production backend.",
	}, []string{"method", "route", "status"})

	backendLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "woodflow",
		Name:      "backend_request_duration_seconds",
		Help:      "Backend request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	validationRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "woodflow",
		Name:      "validation_rejections_total",
		Help:      "Actions blocked by client-side validation.",
	}, []string{"rule"})

	telegramUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "woodflow",
		Name:      "telegram_updates_total",
		Help:      "Telegram updates processed by kind.",
	}, []string{"kind"})
)

// status 0: запрос не дошёл до бэкенда.
func ObserveBackend(method, route string, status int, d time.Duration) {
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	backendRequests.WithLabelValues(method, route, code).Inc()
	backendLatency.WithLabelValues(method, route).Observe(d.Seconds())
}

func RejectValidation(rule string) {
	validationRejections.WithLabelValues(rule).Inc()
}

func CountUpdate(kind string) {
	telegramUpdates.WithLabelValues(kind).Inc()
}
