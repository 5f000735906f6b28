package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func scrape(m *Manager) string {
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	return string(body)
}

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			manager := NewManager()

			Convey("Then it owns a private registry", func() {
				So(manager, ShouldNotBeNil)
				So(manager.Registry(), ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithRuntimeCollectors(false),
				WithRegistry(registry),
			)
			manager.SetDataset(1, 1, time.Millisecond, time.Unix(0, 0))

			Convey("Then metrics use the namespace and registry", func() {
				So(manager.Registry(), ShouldEqual, registry)
				So(scrape(manager), ShouldContainSubstring, "test_providers 1")
			})
		})

		Convey("When two managers are created", func() {
			So(func() {
				NewManager()
				NewManager()
			}, ShouldNotPanic)
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given a manager without runtime collectors", t, func() {
		manager := NewManager(WithRuntimeCollectors(false))

		Convey("When the dataset is recorded", func() {
			manager.SetDataset(6, 3, 250*time.Millisecond, time.Unix(1700000000, 0))
			body := scrape(manager)

			Convey("Then the gauges reflect it", func() {
				So(body, ShouldContainSubstring, "eommap_providers 6")
				So(body, ShouldContainSubstring, "eommap_regions 3")
				So(body, ShouldContainSubstring, "eommap_dataset_load_seconds 0.25")
				So(body, ShouldContainSubstring, "eommap_dataset_loaded_timestamp_seconds 1.7e+09")
			})
		})

		Convey("When page views are recorded", func() {
			manager.RecordPageView(PageRendered)
			manager.RecordPageView(PageRendered)
			manager.RecordPageView(PageNotModified)
			body := scrape(manager)

			Convey("Then each result is counted", func() {
				So(body, ShouldContainSubstring, `eommap_page_views_total{result="rendered"} 2`)
				So(body, ShouldContainSubstring, `eommap_page_views_total{result="not_modified"} 1`)
			})
		})

		Convey("When HTTP requests are recorded", func() {
			So(func() {
				manager.RecordHTTPRequest("/healthz", "GET", 200, 5*time.Millisecond)
				manager.RecordHTTPRequest("/api/summary", "GET", 429, time.Millisecond)
			}, ShouldNotPanic)

			body := scrape(manager)
			So(body, ShouldContainSubstring, `eommap_http_requests_total{method="GET",route="/healthz",status="200"} 1`)
			So(body, ShouldContainSubstring, `eommap_http_requests_total{method="GET",route="/api/summary",status="429"} 1`)
			So(body, ShouldContainSubstring, "eommap_http_request_duration_seconds_bucket")
		})
	})
}

func TestMetricsMiddleware(t *testing.T) {
	Convey("Given a chi router instrumented by the middleware", t, func() {
		manager := NewManager(WithRuntimeCollectors(false))
		r := chi.NewRouter()
		r.Use(manager.Middleware)
		r.Get("/api/markers", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		r.Get("/items/{id}", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		})

		Convey("When requests hit matched and unmatched routes", func() {
			for _, path := range []string{"/api/markers", "/items/1", "/items/2", "/nope"} {
				r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
			}
			body := scrape(manager)

			Convey("Then requests are labeled by route pattern", func() {
				So(body, ShouldContainSubstring, `route="/api/markers",status="200"} 1`)
				So(body, ShouldContainSubstring, `route="/items/{id}",status="418"} 2`)
				So(body, ShouldContainSubstring, `route="unmatched",status="404"} 1`)
				So(body, ShouldNotContainSubstring, `route="/items/1"`)
			})
		})
	})
}
