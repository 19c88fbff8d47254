// Package server serves the solar system over HTTP: the bodies, their
// positions on a date and the rendered figure.
package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/benjamin-es-hall/solbirthday"
	"github.com/benjamin-es-hall/solbirthday/render"
	kitlog "github.com/go-kit/kit/log"
	"github.com/pkg/errors"
)

// Server holds the HTTP server and the system it serves.
type Server struct {
	httpServer *http.Server
	sys        *solbirthday.SolarSystem
	fig        *render.Figure
	logger     kitlog.Logger
	renderMu   sync.Mutex // one figure at a time
}

// NewServer creates a configured HTTP server.
func NewServer(addr string, sys *solbirthday.SolarSystem, fig *render.Figure, logger kitlog.Logger) *Server {
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	s := &Server{sys: sys, fig: fig, logger: kitlog.With(logger, "subsys", "api")}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", healthz)
	mux.Handle("GET /metrics", metricsHandler())
	mux.HandleFunc("GET /api/v1/bodies", s.bodies)
	mux.HandleFunc("GET /api/v1/positions", s.positions)
	mux.HandleFunc("GET /api/v1/render", s.renderFigure)

	// metrics -> logging -> mux
	var handler http.Handler = mux
	handler = loggingMiddleware(s.logger)(handler)
	handler = metricsMiddleware(handler)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// HTTPServer returns the underlying *http.Server for external control (e.g. shutdown).
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// Handler returns the root handler, middlewares included.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// BodyResponse describes a body of the system.
type BodyResponse struct {
	Label    string  `json:"label"`
	Name     string  `json:"name"`
	NAIFID   int     `json:"naif_id"`
	RadiusKm float64 `json:"radius_km"`
	Period   float64 `json:"period_years"`
	Color    string  `json:"color"`
	Size     float64 `json:"size"`
	Inner    bool    `json:"inner"`
	Samples  int     `json:"orbit_samples"`
}

// PositionResponse is where a body is on the requested date.
type PositionResponse struct {
	Label       string    `json:"label"`
	R           []float64 `json:"r_au"`
	Longitude   float64   `json:"longitude_deg"`
	SunDistance float64   `json:"sun_distance_au"`
}

// PositionsResponse lists the positions of the bodies on a date.
type PositionsResponse struct {
	Date      string             `json:"date"`
	Title     string             `json:"title"`
	Frame     string             `json:"frame"`
	Observer  string             `json:"observer"`
	Positions []PositionResponse `json:"positions"`
}

func healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok\n"))
}

func (s *Server) bodies(w http.ResponseWriter, r *http.Request) {
	labels := s.sys.Labels()
	resp := make([]BodyResponse, 0, len(labels))
	for _, label := range labels {
		b := s.sys.Bodies[label]
		resp = append(resp, BodyResponse{
			Label:    label,
			Name:     b.Name,
			NAIFID:   b.ID,
			RadiusKm: b.Radius,
			Period:   b.Period,
			Color:    b.Color,
			Size:     s.sys.Sizes[label],
			Inner:    solbirthday.IsInner(label),
			Samples:  b.Orbit.Len(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) positions(w http.ResponseWriter, r *http.Request) {
	// Unlike the render, there are no positions without a date.
	if _, set := r.URL.Query()["date"]; set && r.URL.Query().Get("date") == "" {
		writeError(w, http.StatusBadRequest, errors.New("empty date, expected YYYY-MM-DD or no date parameter for today"))
		return
	}
	date, err := s.date(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	frame := solbirthday.HCI
	if q := r.URL.Query().Get("frame"); q != "" {
		if frame, err = solbirthday.FrameFromString(strings.ToUpper(q)); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	positions, err := s.sys.PositionsIn(date, frame)
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	resp := PositionsResponse{
		Date:      date.Format(solbirthday.DateFormat),
		Title:     solbirthday.Title(date),
		Frame:     string(frame),
		Observer:  "SSB",
		Positions: []PositionResponse{},
	}
	for _, label := range s.sys.Labels() {
		if pos, ok := positions[label]; ok {
			resp.Positions = append(resp.Positions, PositionResponse{Label: label, R: pos.R, Longitude: pos.Longitude(), SunDistance: pos.SunDistance})
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) renderFigure(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "png"
	}
	contentType, ok := render.Formats[format]
	if !ok {
		writeError(w, http.StatusBadRequest, errors.Errorf("unsupported image format '%s' (expected png, jpg or tif)", format))
		return
	}
	// An explicit empty date draws the orbits only.
	var date time.Time
	if _, set := r.URL.Query()["date"]; !set || r.URL.Query().Get("date") != "" {
		var err error
		if date, err = s.date(r); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	renderWaiting.Inc()
	s.renderMu.Lock()
	renderWaiting.Dec()
	start := time.Now()
	var buf bytes.Buffer
	err := s.fig.Encode(&buf, date, format)
	s.renderMu.Unlock()
	renderDurationSeconds.WithLabelValues(format).Observe(time.Since(start).Seconds())
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

// date reads the date parameter, defaulting to today.
func (s *Server) date(r *http.Request) (time.Time, error) {
	q := r.URL.Query().Get("date")
	if q == "" {
		return s.sys.Calendar.Today(), nil
	}
	return s.sys.Calendar.Parse(q)
}

func statusOf(err error) int {
	if errors.Cause(err) == solbirthday.ErrDateOutOfRange {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

// probePath returns true for paths which should not log at info.
func probePath(path string) bool {
	return path == "/healthz" || path == "/metrics"
}

func loggingMiddleware(logger kitlog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(sr, r)

			level := "info"
			if probePath(r.URL.Path) {
				level = "debug"
			}
			logger.Log(
				"level", level,
				"method", r.Method,
				"path", r.URL.Path,
				"status", sr.statusCode,
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_ip", r.RemoteAddr,
			)
		})
	}
}
