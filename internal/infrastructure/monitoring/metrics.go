package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"path", "method", "status"},
	)
	latencyHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)
	episodeCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "podcast_episodes_total",
			Help: "Episodes by terminal status",
		},
		[]string{"status", "source"},
	)
	generationHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "podcast_generation_duration_seconds",
			Help:    "End-to-end episode generation time",
			Buckets: []float64{5, 15, 30, 60, 120, 300, 600, 1200},
		},
	)
	ttsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "podcast_tts_requests_total",
			Help: "Per-line speech synthesis outcomes",
		},
		[]string{"outcome"},
	)
)

// Init registers custom collectors.
func Init() {
	prometheus.MustRegister(requestCounter, latencyHistogram, episodeCounter, generationHistogram, ttsCounter)
}

// ObserveRequest records HTTP metrics.
func ObserveRequest(path, method, status string, seconds float64) {
	requestCounter.WithLabelValues(path, method, status).Inc()
	latencyHistogram.WithLabelValues(path, method).Observe(seconds)
}

// ObserveEpisode records a finished generation.
func ObserveEpisode(status, source string, seconds float64) {
	episodeCounter.WithLabelValues(status, source).Inc()
	generationHistogram.Observe(seconds)
}

// ObserveTTS records a single synthesis attempt outcome.
func ObserveTTS(outcome string) {
	ttsCounter.WithLabelValues(outcome).Inc()
}
