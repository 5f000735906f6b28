// Package web provides the HTTP server and handlers for the provider map
// dashboard.
package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/eommap/internal/config"
	"github.com/JonMunkholm/eommap/internal/core"
	"github.com/JonMunkholm/eommap/internal/metrics"
	"github.com/JonMunkholm/eommap/internal/view"
	webmw "github.com/JonMunkholm/eommap/internal/web/middleware"
	"github.com/JonMunkholm/eommap/internal/web/templates"
)

//go:embed static
var staticFiles embed.FS

var (
	errRateLimited = errors.New("rate limit exceeded")
	errNotFound    = errors.New("route not found")
	errMethod      = errors.New("method not allowed")
)

// Server is the HTTP server for the dashboard. Everything it serves is
// derived from the App computed at startup, so handlers only read.
type Server struct {
	app     *core.App
	cfg     *config.Config
	metrics *metrics.Manager
	router  *chi.Mux
	limiter *rateLimiter

	page []byte // pre-rendered dashboard
	etag string
}

// NewServer renders the dashboard once and wires routes and middleware.
// m may be nil to run without Prometheus instrumentation.
func NewServer(app *core.App, cfg *config.Config, m *metrics.Manager) (*Server, error) {
	s := &Server{
		app:     app,
		cfg:     cfg,
		metrics: m,
		router:  chi.NewRouter(),
	}

	if err := s.renderPage(); err != nil {
		return nil, err
	}

	s.setupMiddleware()
	if err := s.setupRoutes(); err != nil {
		return nil, err
	}
	return s, nil
}

// PageOptions maps configuration onto the view defaults.
func PageOptions(cfg *config.Config) view.Options {
	opts := view.DefaultOptions()
	opts.Title = cfg.Map.Title
	opts.Center = core.LatLng{Lat: cfg.Map.CenterLat, Lng: cfg.Map.CenterLng}
	opts.Zoom = cfg.Map.Zoom
	opts.TileURL = cfg.Map.TileURL
	if cfg.Map.Attribution != "" {
		opts.Attribution = cfg.Map.Attribution
	}
	return opts
}

// renderPage composes and renders the dashboard. The ETag covers both the
// dataset and the rendered markup, so a config change also invalidates it.
// It is a weak validator because Compress serves gzip and identity bodies
// under the same tag.
func (s *Server) renderPage() error {
	page := view.Compose(s.app.Summary, s.app.Markers, PageOptions(s.cfg))

	var buf bytes.Buffer
	if err := templates.Dashboard(page).Render(context.Background(), &buf); err != nil {
		return fmt.Errorf("render dashboard: %w", err)
	}

	s.page = buf.Bytes()
	s.etag = `W/"` + uuid.NewSHA1(s.app.DatasetID, s.page).String() + `"`
	return nil
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(webmw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(webmw.Logger)
	s.router.Use(middleware.Recoverer)
	if s.metrics != nil {
		s.router.Use(s.metrics.Middleware)
	}
	s.router.Use(middleware.Compress(5))
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))

	// Security hardening
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP, s.cfg.Map.TileURL))

	if s.cfg.Rate.Enabled {
		s.limiter = newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute)
		s.router.Use(s.limiter.middleware(s))
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() error {
	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.respondError(w, r, errNotFound, http.StatusNotFound)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.respondError(w, r, errMethod, http.StatusMethodNotAllowed)
	})

	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return fmt.Errorf("static files: %w", err)
	}
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	s.router.Get("/", s.handleDashboard)
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/summary", s.handleSummary)
		r.Get("/markers", s.handleMarkers)
	})

	if s.metrics != nil && s.cfg.Metrics.Enabled {
		s.router.Method(http.MethodGet, s.cfg.Metrics.Path, s.metrics.Handler())
	}

	return nil
}

// Serve listens on the configured address and blocks until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
		defer cancel()

		slog.Info("shutting down server")
		s.Close()
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// Close stops background work owned by the server. It is safe to call more
// than once.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.stop()
	}
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool, tileURL string) func(http.Handler) http.Handler {
	csp := contentSecurityPolicy(tileURL)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Prevent MIME type sniffing
			w.Header().Set("X-Content-Type-Options", "nosniff")

			// Prevent clickjacking
			w.Header().Set("X-Frame-Options", "DENY")

			if enableCSP {
				w.Header().Set("Content-Security-Policy", csp)
			}

			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			next.ServeHTTP(w, r)
		})
	}
}

// contentSecurityPolicy allows our own assets, the Leaflet CDN and the tile
// host. Leaflet positions tiles with inline styles.
func contentSecurityPolicy(tileURL string) string {
	img := "'self' data: https://unpkg.com"
	if src := tileSource(tileURL); src != "" {
		img += " " + src
	}
	return "default-src 'self'; " +
		"script-src 'self' https://unpkg.com; " +
		"style-src 'self' 'unsafe-inline' https://unpkg.com; " +
		"img-src " + img + "; " +
		"font-src 'self'; connect-src 'self'; frame-ancestors 'none'"
}

// tileSource turns a tile URL template into a CSP source expression, with
// the {s} subdomain placeholder widened to a wildcard.
func tileSource(tileURL string) string {
	scheme, rest, ok := strings.Cut(tileURL, "://")
	if !ok || scheme == "" {
		return ""
	}
	host, _, _ := strings.Cut(rest, "/")
	host = strings.ReplaceAll(host, "{s}", "*")
	if host == "" || strings.ContainsAny(host, "{} ;'") {
		return ""
	}
	return scheme + "://" + host
}

// rateLimiter implements a simple fixed-window rate limiter per IP.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int           // requests per window
	window   time.Duration // time window

	done     chan struct{}
	stopOnce sync.Once
}

type visitor struct {
	tokens    int
	lastReset time.Time
}

// newRateLimiter creates a rate limiter with the specified rate per window.
func newRateLimiter(rate int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
		done:     make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// cleanup removes stale visitor entries every window until stopped.
func (rl *rateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.mu.Lock()
			for ip, v := range rl.visitors {
				if time.Since(v.lastReset) > rl.window*2 {
					delete(rl.visitors, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

// allow checks if the request should be allowed and consumes a token if so.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		rl.visitors[ip] = &visitor{
			tokens:    rl.rate - 1, // consume one token
			lastReset: time.Now(),
		}
		return true
	}

	// Reset tokens if window has passed
	if time.Since(v.lastReset) > rl.window {
		v.tokens = rl.rate - 1
		v.lastReset = time.Now()
		return true
	}

	if v.tokens <= 0 {
		return false
	}

	v.tokens--
	return true
}

// middleware returns an HTTP middleware that rate limits by client IP.
// RemoteAddr has already been rewritten by TrustedRealIP when appropriate.
func (rl *rateLimiter) middleware(s *Server) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := r.RemoteAddr
			if host, _, err := net.SplitHostPort(ip); err == nil {
				ip = host
			}

			if !rl.allow(ip) {
				w.Header().Set("Retry-After", fmt.Sprintf("%d", int(rl.window.Seconds())))
				s.respondError(w, r, errRateLimited, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
