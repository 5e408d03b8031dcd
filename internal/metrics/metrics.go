package metrics

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

var (
	apiRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	apiRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	articlesCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "articles_created_total",
			Help: "Total number of article reports submitted",
		},
	)

	transitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "article_transitions_total",
			Help: "Total number of approval transitions",
		},
		[]string{"role", "decision"},
	)

	feedFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_fetches_total",
			Help: "Total number of RSS feed fetch attempts",
		},
		[]string{"source", "result"}, // result: ok, error
	)

	databaseConnectionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "database_connections_active",
			Help: "Number of active database connections",
		},
	)

	databaseConnectionsIdle = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "database_connections_idle",
			Help: "Number of idle database connections",
		},
	)

	databaseConnectionsMax = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "database_connections_max",
			Help: "Maximum number of database connections",
		},
	)

	articlesByStatus = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "articles_by_status",
			Help: "Number of articles by approval status",
		},
		[]string{"status"},
	)
)

var once sync.Once

func init() {
	prometheus.MustRegister(apiRequestsTotal)
	prometheus.MustRegister(apiRequestDuration)
	prometheus.MustRegister(articlesCreatedTotal)
	prometheus.MustRegister(transitionsTotal)
	prometheus.MustRegister(feedFetchesTotal)
	prometheus.MustRegister(databaseConnectionsActive)
	prometheus.MustRegister(databaseConnectionsIdle)
	prometheus.MustRegister(databaseConnectionsMax)
	prometheus.MustRegister(articlesByStatus)

	once.Do(func() {
		_ = prometheus.Register(prometheus.NewGoCollector())
		_ = prometheus.Register(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	})
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordAPIRequest records one handled HTTP request.
func RecordAPIRequest(method, path string, status int, duration float64) {
	statusText := http.StatusText(status)
	if statusText == "" {
		statusText = fmt.Sprintf("%d", status)
	}
	apiRequestsTotal.WithLabelValues(method, path, statusText).Inc()
	apiRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// RecordArticleCreated records one submitted report.
func RecordArticleCreated() {
	articlesCreatedTotal.Inc()
}

// RecordTransition records one approval decision by role.
func RecordTransition(role, decision string) {
	transitionsTotal.WithLabelValues(role, decision).Inc()
}

// RecordFeedFetch records one feed fetch attempt and its outcome.
func RecordFeedFetch(source string, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	feedFetchesTotal.WithLabelValues(source, result).Inc()
}

// UpdateDatabaseConnections refreshes the connection pool gauges.
func UpdateDatabaseConnections(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	stats := sqlDB.Stats()
	databaseConnectionsActive.Set(float64(stats.OpenConnections - stats.Idle))
	databaseConnectionsIdle.Set(float64(stats.Idle))
	databaseConnectionsMax.Set(float64(stats.MaxOpenConnections))

	return nil
}

// UpdateArticlesByStatus refreshes one status gauge.
func UpdateArticlesByStatus(status string, count float64) {
	articlesByStatus.WithLabelValues(status).Set(count)
}
