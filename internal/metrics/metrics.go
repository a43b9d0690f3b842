package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "glampbook",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	resolverSource = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "glampbook",
			Name:      "resolver_source_total",
			Help:      "Property resolutions by winning source.",
		},
		[]string{"source"},
	)

	syncReloads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "glampbook",
			Name:      "sync_reloads_total",
			Help:      "Booking list reloads by triggering channel.",
		},
		[]string{"channel"},
	)

	syncNotices = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "glampbook",
			Name:      "sync_status_notices_total",
			Help:      "Status-change notifications raised by the poll channel.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, resolverSource, syncReloads, syncNotices)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncResolverSource counts which source won a property resolution.
func IncResolverSource(source string) {
	resolverSource.WithLabelValues(source).Inc()
}

// IncSyncReload counts a full list reload on the given channel.
func IncSyncReload(channel string) {
	syncReloads.WithLabelValues(channel).Inc()
}

// IncSyncNotice counts one status-change notification.
func IncSyncNotice() {
	syncNotices.Inc()
}
