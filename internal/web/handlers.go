package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/JonMunkholm/eommap/internal/core"
	"github.com/JonMunkholm/eommap/internal/logging"
	"github.com/JonMunkholm/eommap/internal/metrics"
)

// statusClientClosedRequest is the non-standard status used when the client
// goes away before a response is written.
const statusClientClosedRequest = 499

// HealthResponse is returned by /healthz.
type HealthResponse struct {
	Status    string    `json:"status"`
	Providers int       `json:"providers"`
	Regions   int       `json:"regions"`
	DatasetID string    `json:"dataset_id"`
	LoadedAt  time.Time `json:"loaded_at"`
}

// handleDashboard serves the pre-rendered dashboard page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if s.requestDone(w, r) {
		return
	}
	if s.notModified(w, r) {
		s.recordPageView(metrics.PageNotModified)
		return
	}

	s.recordPageView(metrics.PageRendered)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(s.page); err != nil {
		logging.FromContext(r.Context()).Debug("write dashboard", "error", err)
	}
}

// handleSummary returns the dataset statistics.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if s.requestDone(w, r) || s.notModified(w, r) {
		return
	}
	writeJSON(w, r, s.app.Summary)
}

// handleMarkers returns one marker per provider record, in table order.
func (s *Server) handleMarkers(w http.ResponseWriter, r *http.Request) {
	if s.requestDone(w, r) || s.notModified(w, r) {
		return
	}
	markers := s.app.Markers
	if markers == nil {
		markers = []core.MarkerDescriptor{}
	}
	writeJSON(w, r, markers)
}

// handleHealth reports liveness and the loaded dataset.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, HealthResponse{
		Status:    "ok",
		Providers: s.app.Summary.TotalProviders,
		Regions:   s.app.Summary.DistinctRegions,
		DatasetID: s.app.DatasetID.String(),
		LoadedAt:  s.app.LoadedAt,
	})
}

func (s *Server) recordPageView(result string) {
	if s.metrics != nil {
		s.metrics.RecordPageView(result)
	}
}

// notModified sets the validator headers and answers 304 when the client
// already holds the current representation.
func (s *Server) notModified(w http.ResponseWriter, r *http.Request) bool {
	w.Header().Set("ETag", s.etag)
	w.Header().Set("Cache-Control", "no-cache")

	if !etagMatches(r.Header.Get("If-None-Match"), s.etag) {
		return false
	}
	w.WriteHeader(http.StatusNotModified)
	return true
}

// requestDone answers a request whose context already ended, either because
// the client left or the Timeout middleware deadline passed. It reports
// whether the handler should stop.
func (s *Server) requestDone(w http.ResponseWriter, r *http.Request) bool {
	err := r.Context().Err()
	if err == nil {
		return false
	}

	status := statusClientClosedRequest
	if errors.Is(err, context.DeadlineExceeded) {
		status = http.StatusGatewayTimeout
	}
	s.respondError(w, r, err, status)
	return true
}

// etagMatches reports whether an If-None-Match header value matches etag
// using weak comparison.
func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	etag = strings.TrimPrefix(etag, "W/")
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" {
			return true
		}
		if strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode error", "error", err)
	}
}
