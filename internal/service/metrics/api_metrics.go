package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	ApiLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "trendguard",
			Subsystem: "api",
			Name:      "latency_seconds",
			Help:      "Latency of signal API endpoints",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	ApiErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trendguard",
			Subsystem: "api",
			Name:      "errors_total",
			Help:      "Errors by signal API endpoint",
		},
		[]string{"endpoint"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(ApiLatency, ApiErrors)
	})
}
