package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every gqlbody metric
var (
	Registry = prometheus.NewRegistry()
	factory  = promauto.With(Registry)
)

// Prometheus metrics for the body parser and the server around it
var (
	RequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gqlbody_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	RequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gqlbody_request_duration_seconds",
			Help:    "Request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	ParseTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gqlbody_parse_total",
			Help: "Request bodies parsed, by declared media type and outcome",
		},
		[]string{"media_type", "outcome"},
	)

	ParamsDecoded = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gqlbody_params_decoded",
			Help:    "Number of top-level parameters decoded from a request body",
			Buckets: []float64{0, 1, 2, 3, 5, 10, 50, 100, 1000},
		},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// RecordRequest records a completed HTTP request
func RecordRequest(method, endpoint string, statusCode int, duration time.Duration) {
	RequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordParse records the outcome of a body parse. outcome is "ok" or an
// error kind.
func RecordParse(mediaType, outcome string, params int) {
	if mediaType == "" {
		mediaType = "none"
	}
	ParseTotal.WithLabelValues(mediaType, outcome).Inc()

	if outcome == "ok" {
		ParamsDecoded.Observe(float64(params))
	}
}

// Handler serves the metrics in the Prometheus text format
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
