package sink

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for sink deliveries.
var (
	sinkRecordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_sink_records_total",
		Help: "Total records delivered to a sink by stream",
	}, []string{"stream"})

	sinkErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_sink_errors_total",
		Help: "Total failed sink deliveries by stream",
	}, []string{"stream"})
)
