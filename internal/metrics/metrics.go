// Package metrics holds the Prometheus collectors of the board API.
package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "board_api"

// Metrics holds all application metrics. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Business metrics
	ArticlesCreatedTotal prometheus.Counter
	ArticlesDeletedTotal prometheus.Counter
	CommentsCreatedTotal prometheus.Counter
	HashtagsCreatedTotal prometheus.Counter
	HashtagsDeletedTotal prometheus.Counter
	LoginsTotal          *prometheus.CounterVec
}

// New creates and registers all metrics with the default registry
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates and registers all metrics with a custom registry
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "endpoint"},
		),

		ArticlesCreatedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "articles_created_total",
			Help:      "Total number of articles created",
		}),
		ArticlesDeletedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "articles_deleted_total",
			Help:      "Total number of articles deleted",
		}),
		CommentsCreatedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comments_created_total",
			Help:      "Total number of comments created",
		}),
		HashtagsCreatedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hashtags_created_total",
			Help:      "Total number of hashtags created",
		}),
		HashtagsDeletedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hashtags_deleted_total",
			Help:      "Total number of orphaned hashtags deleted",
		}),
		LoginsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "logins_total",
				Help:      "Total number of login attempts by method and result",
			},
			[]string{"method", "result"},
		),
	}
}

// RecordHTTPRequest records one served request. endpoint should be the route
// pattern, not the raw path.
func (m *Metrics) RecordHTTPRequest(method, endpoint string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	if endpoint == "" {
		endpoint = "unmatched"
	}
	m.HTTPRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// ShouldSkipEndpoint reports whether path is excluded from HTTP metrics
func ShouldSkipEndpoint(path string) bool {
	return path == "/metrics" || path == "/health" || strings.HasPrefix(path, "/debug/")
}

func (m *Metrics) IncArticleCreated() {
	if m != nil {
		m.ArticlesCreatedTotal.Inc()
	}
}

func (m *Metrics) IncArticleDeleted() {
	if m != nil {
		m.ArticlesDeletedTotal.Inc()
	}
}

func (m *Metrics) IncCommentCreated() {
	if m != nil {
		m.CommentsCreatedTotal.Inc()
	}
}

// AddHashtagsCreated counts newly persisted hashtags
func (m *Metrics) AddHashtagsCreated(n int) {
	if m != nil && n > 0 {
		m.HashtagsCreatedTotal.Add(float64(n))
	}
}

// AddHashtagsDeleted counts hashtags removed by the orphan sweep
func (m *Metrics) AddHashtagsDeleted(n int) {
	if m != nil && n > 0 {
		m.HashtagsDeletedTotal.Add(float64(n))
	}
}

// RecordLogin counts a login attempt. method is "password" or an OAuth provider.
func (m *Metrics) RecordLogin(method string, success bool) {
	if m == nil {
		return
	}
	result := "failure"
	if success {
		result = "success"
	}
	m.LoginsTotal.WithLabelValues(method, result).Inc()
}
