package ollama

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	tokens    prometheus.Counter
	malformed prometheus.Counter
	streams   *prometheus.CounterVec
	duration  prometheus.Histogram
}

// NewMetrics registers the stream collectors on reg. A nil reg keeps them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		tokens: factory.NewCounter(prometheus.CounterOpts{
			Name: "taleweaver_stream_tokens_total",
			Help: "Total number of response fragments delivered to token callbacks.",
		}),
		malformed: factory.NewCounter(prometheus.CounterOpts{
			Name: "taleweaver_stream_malformed_lines_total",
			Help: "Total number of stream lines skipped because they could not be decoded.",
		}),
		streams: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "taleweaver_streams_total",
			Help: "Total number of finished completion streams, partitioned by outcome.",
		}, []string{"outcome"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "taleweaver_stream_duration_seconds",
			Help:    "Wall time from Start to completion of a stream.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
	}
}
