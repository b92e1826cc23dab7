package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "queuedremove",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by method, path and status code.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "queuedremove",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   []float64{0.05, 0.1, 0.3, 0.5, 1, 2, 5},
	}, []string{"method", "path"})

	QueueGroups = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "queuedremove",
		Name:      "queue_groups",
		Help:      "Number of priority groups currently in the removal queue.",
	})

	QueueTorrents = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "queuedremove",
		Name:      "queue_torrents",
		Help:      "Number of torrents currently in the removal queue.",
	})

	FreeSpaceBytes = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "queuedremove",
		Name:      "free_space_bytes",
		Help:      "Free disk space observed by the last sweep tick.",
	})

	SweepRunsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "queuedremove",
		Name:      "sweep_runs_total",
		Help:      "Total number of completed sweep ticks.",
	})

	SweepFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "queuedremove",
		Name:      "sweep_failures_total",
		Help:      "Total number of sweep passes aborted by a host or persistence failure.",
	})

	TorrentsEvictedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "queuedremove",
		Name:      "torrents_evicted_total",
		Help:      "Total number of torrents removed by sweep passes.",
	})

	EstimatedFreedBytesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "queuedremove",
		Name:      "estimated_freed_bytes_total",
		Help:      "Upper-bound estimate of bytes freed by sweep passes.",
	})
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		QueueGroups,
		QueueTorrents,
		FreeSpaceBytes,
		SweepRunsTotal,
		SweepFailuresTotal,
		TorrentsEvictedTotal,
		EstimatedFreedBytesTotal,
	)
}
