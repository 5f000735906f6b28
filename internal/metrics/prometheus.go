// Package metrics provides Prometheus metrics for the provider map dashboard.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Page view results.
const (
	PageRendered    = "rendered"
	PageNotModified = "not_modified"
)

// Manager owns a registry and every metric the dashboard exports.
type Manager struct {
	namespace        string
	histogramBuckets []float64
	registry         *prometheus.Registry
	runtime          bool

	// Dataset metrics, set once after load
	providers    prometheus.Gauge
	regions      prometheus.Gauge
	loadDuration prometheus.Gauge
	loadedAt     prometheus.Gauge

	pageViews *prometheus.CounterVec

	// HTTP performance metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewManager creates a metrics manager on its own registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "eommap",
		histogramBuckets: prometheus.DefBuckets,
		runtime:          true,
	}

	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	if m.runtime {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	m.providers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "providers",
		Help:      "Number of provider records in the loaded dataset",
	})

	m.regions = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "regions",
		Help:      "Number of distinct regions in the loaded dataset",
	})

	m.loadDuration = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "dataset_load_seconds",
		Help:      "Time spent loading and summarizing the dataset at startup",
	})

	m.loadedAt = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "dataset_loaded_timestamp_seconds",
		Help:      "Unix time the dataset was loaded",
	})

	m.pageViews = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "page_views_total",
		Help:      "Dashboard page requests by result",
	}, []string{"result"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests by route, method and status",
	}, []string{"route", "method", "status"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   m.histogramBuckets,
	}, []string{"route", "method"})
}

// Registry returns the registry backing this manager.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// SetDataset records the shape of the loaded dataset.
func (m *Manager) SetDataset(providers, regions int, loadTime time.Duration, loadedAt time.Time) {
	m.providers.Set(float64(providers))
	m.regions.Set(float64(regions))
	m.loadDuration.Set(loadTime.Seconds())
	m.loadedAt.Set(float64(loadedAt.Unix()))
}

// RecordPageView counts a dashboard request with the given result.
func (m *Manager) RecordPageView(result string) {
	m.pageViews.WithLabelValues(result).Inc()
}

// RecordHTTPRequest records a finished request.
func (m *Manager) RecordHTTPRequest(route, method string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

// Middleware records request count and latency labeled by the matched chi
// route pattern, so path parameters never become label values.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.RecordHTTPRequest(routePattern(r), r.Method, status, time.Since(start))
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
