package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/eommap/internal/config"
	"github.com/JonMunkholm/eommap/internal/core"
	"github.com/JonMunkholm/eommap/internal/metrics"
)

const providersCSV = `Organization Name,Street Address,City,State,Latitude,Longitude
Austin Cancer Center,1 Main St,Austin,TX,30.27,-97.74
Dallas Oncology,2 Elm St,Dallas,TX,32.78,-96.80
Bay Area Oncology,3 Market St,San Francisco,CA,37.77,-122.42
`

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:            8050,
			ShutdownTimeout: time.Second,
			RequestTimeout:  5 * time.Second,
		},
		Map: config.MapConfig{
			Title:     "EOM Provider Map",
			CenterLat: 39.8283,
			CenterLng: -98.5795,
			Zoom:      4,
			TopN:      5,
			TileURL:   "https://{s}.basemaps.cartocdn.com/rastertiles/voyager/{z}/{x}/{y}.png",
		},
		Rate:     config.RateLimitConfig{Enabled: false},
		Security: config.SecurityConfig{EnableCSP: true},
		Metrics:  config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

func testApp(t *testing.T, content string) *core.App {
	t.Helper()
	path := filepath.Join(t.TempDir(), "providers.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	app, err := core.Init(path, core.InitOptions{TopN: 5})
	require.NoError(t, err)
	return app
}

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	s, err := NewServer(testApp(t, providersCSV), cfg, metrics.NewManager(metrics.WithRuntimeCollectors(false)))
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func do(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestDashboard(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := do(s, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.NotEmpty(t, rec.Header().Get("ETag"))

	body := rec.Body.String()
	for _, want := range []string{
		"<title>EOM Provider Map</title>",
		"Enhancing Oncology Model Providers",
		`data-value="3"`,
		`data-value="2"`,
		`data-marker-count="3"`,
		"Top States",
	} {
		assert.Contains(t, body, want, "response should contain %q", want)
	}
}

func TestDashboard_ConditionalGet(t *testing.T) {
	s := newTestServer(t, testConfig())
	etag := do(s, httptest.NewRequest(http.MethodGet, "/", nil)).Header().Get("ETag")
	require.True(t, strings.HasPrefix(etag, `W/"`), "etag %q should be weak", etag)

	tests := []struct {
		name        string
		ifNoneMatch string
		wantStatus  int
	}{
		{"matching etag", etag, http.StatusNotModified},
		{"strong form", strings.TrimPrefix(etag, "W/"), http.StatusNotModified},
		{"list containing etag", `"other", ` + etag, http.StatusNotModified},
		{"wildcard", "*", http.StatusNotModified},
		{"stale etag", `"stale"`, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("If-None-Match", tt.ifNoneMatch)
			rec := do(s, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusNotModified {
				assert.Empty(t, rec.Body.String())
			}
		})
	}
}

func TestDashboard_SameETagForEncodings(t *testing.T) {
	s := newTestServer(t, testConfig())

	plain := do(s, httptest.NewRequest(http.MethodGet, "/", nil))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	gzipped := do(s, req)

	require.Equal(t, http.StatusOK, gzipped.Code)
	assert.Equal(t, "gzip", gzipped.Header().Get("Content-Encoding"))
	assert.Empty(t, plain.Header().Get("Content-Encoding"))
	assert.Equal(t, plain.Header().Get("ETag"), gzipped.Header().Get("ETag"))
	assert.True(t, strings.HasPrefix(gzipped.Header().Get("ETag"), "W/"))
}

func TestAPI_ConditionalGet(t *testing.T) {
	s := newTestServer(t, testConfig())

	for _, path := range []string{"/api/summary", "/api/markers"} {
		t.Run(path, func(t *testing.T) {
			first := do(s, httptest.NewRequest(http.MethodGet, path, nil))
			require.Equal(t, http.StatusOK, first.Code)
			etag := first.Header().Get("ETag")
			require.NotEmpty(t, etag)

			req := httptest.NewRequest(http.MethodGet, path, nil)
			req.Header.Set("If-None-Match", etag)
			rec := do(s, req)
			assert.Equal(t, http.StatusNotModified, rec.Code)
			assert.Empty(t, rec.Body.String())

			req = httptest.NewRequest(http.MethodGet, path, nil)
			req.Header.Set("If-None-Match", `"stale"`)
			assert.Equal(t, http.StatusOK, do(s, req).Code)
		})
	}
}

func TestRequestContextEnded(t *testing.T) {
	s := newTestServer(t, testConfig())

	t.Run("client cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		req := httptest.NewRequest(http.MethodGet, "/api/summary", nil).WithContext(ctx)

		rec := do(s, req)
		assert.Equal(t, statusClientClosedRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), `"code":"REQ001"`)
	})

	t.Run("deadline passed", func(t *testing.T) {
		ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
		defer cancel()
		req := httptest.NewRequest(http.MethodGet, "/api/markers", nil).WithContext(ctx)

		rec := do(s, req)
		assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
		assert.Contains(t, rec.Body.String(), `"code":"REQ002"`)
	})
}

func TestDashboard_ETagTracksConfig(t *testing.T) {
	app := testApp(t, providersCSV)

	a, err := NewServer(app, testConfig(), nil)
	require.NoError(t, err)
	defer a.Close()

	cfg := testConfig()
	cfg.Map.Title = "Different"
	b, err := NewServer(app, cfg, nil)
	require.NoError(t, err)
	defer b.Close()

	assert.NotEqual(t, a.etag, b.etag)
}

func TestSummary(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := do(s, httptest.NewRequest(http.MethodGet, "/api/summary", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got core.StatsSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 3, got.TotalProviders)
	assert.Equal(t, 2, got.DistinctRegions)
	assert.Equal(t, []core.RegionCount{{Region: "TX", Count: 2}, {Region: "CA", Count: 1}}, got.TopRegions)
}

func TestMarkers(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := do(s, httptest.NewRequest(http.MethodGet, "/api/markers", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got []core.MarkerDescriptor
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 3)
	assert.Equal(t, "Austin Cancer Center", got[0].Tooltip.Name)
	assert.Equal(t, core.LatLng{Lat: 37.77, Lng: -122.42}, got[2].Position)
}

func TestMarkers_EmptyDataset(t *testing.T) {
	app := testApp(t, "Organization Name,Street Address,City,State,Latitude,Longitude\n")
	s, err := NewServer(app, testConfig(), nil)
	require.NoError(t, err)
	defer s.Close()

	rec := do(s, httptest.NewRequest(http.MethodGet, "/api/markers", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = do(s, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No providers loaded")
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := do(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "ok", got.Status)
	assert.Equal(t, 3, got.Providers)
	assert.Equal(t, s.app.DatasetID.String(), got.DatasetID)
}

func TestStaticFiles(t *testing.T) {
	s := newTestServer(t, testConfig())

	for _, path := range []string{"/static/map.js", "/static/styles.css"} {
		rec := do(s, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.NotEmpty(t, rec.Body.String(), path)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, testConfig())
	do(s, httptest.NewRequest(http.MethodGet, "/", nil))

	rec := do(s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `eommap_page_views_total{result="rendered"} 1`)
	assert.Contains(t, rec.Body.String(), `route="/"`)
}

func TestMetricsEndpoint_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.Enabled = false
	s := newTestServer(t, cfg)

	rec := do(s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestErrorResponses(t *testing.T) {
	s := newTestServer(t, testConfig())

	tests := []struct {
		name        string
		method      string
		path        string
		accept      string
		wantStatus  int
		wantType    string
		wantContain string
	}{
		{"api not found is JSON", http.MethodGet, "/api/nope", "", http.StatusNotFound, "application/json", `"code":"REQ003"`},
		{"browser not found is HTML", http.MethodGet, "/nope", "text/html", http.StatusNotFound, "text/html", "REQ003"},
		{"plain not found is text", http.MethodGet, "/nope", "", http.StatusNotFound, "text/plain", "(REQ003)"},
		{"wrong method", http.MethodPost, "/api/summary", "", http.StatusMethodNotAllowed, "application/json", `"code":"REQ004"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.accept != "" {
				req.Header.Set("Accept", tt.accept)
			}
			rec := do(s, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), tt.wantType)
			assert.Contains(t, rec.Body.String(), tt.wantContain)
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := do(s, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	csp := rec.Header().Get("Content-Security-Policy")
	assert.Contains(t, csp, "https://unpkg.com")
	assert.Contains(t, csp, "https://*.basemaps.cartocdn.com")
}

func TestSecurityHeaders_CSPDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Security.EnableCSP = false
	s := newTestServer(t, cfg)

	rec := do(s, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Empty(t, rec.Header().Get("Content-Security-Policy"))
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 2}
	s := newTestServer(t, cfg)

	send := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)
		req.RemoteAddr = addr
		return do(s, req)
	}

	assert.Equal(t, http.StatusOK, send("192.0.2.1:1000").Code)
	assert.Equal(t, http.StatusOK, send("192.0.2.1:1001").Code)

	rec := send("192.0.2.1:1002")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "RATE001")

	assert.Equal(t, http.StatusOK, send("192.0.2.2:1000").Code, "other clients are unaffected")
}

func TestTileSource(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://{s}.basemaps.cartocdn.com/rastertiles/voyager/{z}/{x}/{y}.png", "https://*.basemaps.cartocdn.com"},
		{"https://tile.openstreetmap.org/{z}/{x}/{y}.png", "https://tile.openstreetmap.org"},
		{"/tiles/{z}/{x}/{y}.png", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tileSource(tt.in), tt.in)
	}
}

func TestEtagMatches(t *testing.T) {
	assert.False(t, etagMatches("", `"a"`))
	assert.True(t, etagMatches(`"a"`, `"a"`))
	assert.True(t, etagMatches(`W/"a"`, `"a"`))
	assert.True(t, etagMatches(`"a"`, `W/"a"`))
	assert.True(t, etagMatches(`W/"a"`, `W/"a"`))
	assert.False(t, etagMatches(`"b"`, `"a"`))
	assert.True(t, strings.Contains(contentSecurityPolicy(""), "default-src 'self'"))
}
