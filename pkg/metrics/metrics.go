// Package metrics provides the centralized Prometheus metrics registry for
// the Pulse client. All metrics are defined in their respective packages
// (pagination, client, sink) to maintain modularity and avoid circular
// dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the Pulse client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Traversal Metrics (pkg/pagination):
//   - pulse_traversals_total{policy} (Counter): Traversals started by policy kind (pages, records, all)
//   - pulse_pages_fetched_total (Counter): Pages fetched across all traversals
//   - pulse_records_emitted_total (Counter): Records delivered to consumers
//
// Request Metrics (pkg/client):
//   - pulse_requests_total{endpoint, status} (Counter): Requests by collection path and HTTP status
//   - pulse_request_duration_seconds{endpoint} (Histogram): Page request duration by collection path
//   - pulse_request_errors_total{reason} (Counter): Failed page fetches by reason (network, status, decode)
//
// Sink Metrics (pkg/sink):
//   - pulse_sink_records_total{stream} (Counter): Records delivered to a Redis stream
//   - pulse_sink_errors_total{stream} (Counter): Failed deliveries by stream
//
// Example Prometheus Queries:
//
//   # Records per page actually delivered
//   rate(pulse_records_emitted_total[5m]) / rate(pulse_pages_fetched_total[5m])
//
//   # Request Error Rate
//   sum(rate(pulse_request_errors_total[5m])) / sum(rate(pulse_requests_total[5m]))
//
//   # P95 Page Fetch Latency
//   histogram_quantile(0.95, rate(pulse_request_duration_seconds_bucket[5m]))
//
//   # Sink Delivery Failures
//   rate(pulse_sink_errors_total[5m])
