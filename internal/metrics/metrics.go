package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pantry_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pantry_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pantry_http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
	)

	RateLimitRejects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pantry_rate_limit_rejects_total",
			Help: "Total number of requests rejected due to rate limiting",
		},
	)

	PanicRecoveries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pantry_panic_recoveries_total",
			Help: "Total number of panics recovered in HTTP handlers",
		},
	)

	// SearchResults observes how many matches a search returned.
	SearchResults = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pantry_search_results",
			Help:    "Number of recipes returned per search",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"kind"},
	)

	RecognitionRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pantry_recognition_requests_total",
			Help: "Image recognition calls by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	RecognitionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pantry_recognition_duration_seconds",
			Help:    "Image recognition latency in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
		},
		[]string{"provider"},
	)

	UserStateWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pantry_user_state_writes_total",
			Help: "User state mutations by operation",
		},
		[]string{"op"},
	)

	TelegramUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pantry_telegram_updates_total",
			Help: "Telegram updates handled by kind",
		},
		[]string{"kind"},
	)
)
