// Package api serves the swing-analysis HTTP JSON API.
package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/banshee-data/swing.report/internal/capture"
	"github.com/banshee-data/swing.report/internal/imu"
	"github.com/banshee-data/swing.report/internal/monitor"
	"github.com/banshee-data/swing.report/internal/parse"
	"github.com/banshee-data/swing.report/internal/serialmux"
	"github.com/banshee-data/swing.report/internal/swingdb"
	"github.com/banshee-data/swing.report/internal/units"
)

// ANSI escape codes for cyan and reset
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

type Server struct {
	db       *swingdb.DB
	m        serialmux.SerialMuxInterface
	registry *monitor.Registry
	units    string
	cfg      imu.Config
}

// NewServer builds the API server. The serial mux may be nil when the
// server only replays recordings; the capture endpoint then returns
// 503. units must be one of units.ValidUnits.
func NewServer(db *swingdb.DB, m serialmux.SerialMuxInterface, registry *monitor.Registry, speedUnits string, cfg imu.Config) *Server {
	if registry == nil {
		registry = monitor.NewRegistry()
	}
	return &Server{
		db:       db,
		m:        m,
		registry: registry,
		units:    speedUnits,
		cfg:      cfg,
	}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/sessions", s.listSessions)
	mux.HandleFunc("GET /api/sessions/{id}", s.getSession)
	mux.HandleFunc("POST /api/analyze", s.analyzeRecording)
	mux.HandleFunc("POST /api/capture", s.captureAndAnalyze)
	mux.HandleFunc("POST /api/command", s.sendCommandHandler)
	mux.HandleFunc("GET /charts/{id}", s.sessionChart)
	return mux
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// metricsAPI is a swing_metrics row with speed converted to the
// requested units.
type metricsAPI struct {
	SessionID      string  `json:"session_id"`
	SwingStart     int     `json:"swing_start"`
	SwingEnd       int     `json:"swing_end"`
	ImpactIndex    int     `json:"impact_index"`
	PeakSpeed      float64 `json:"peak_speed"`
	SpeedUnits     string  `json:"speed_units"`
	PeakAngularDps float64 `json:"peak_angular_dps"`
	TimeToImpactMs float64 `json:"time_to_impact_ms"`
}

type sessionResponse struct {
	Session swingdb.Session `json:"session"`
	Metrics *metricsAPI     `json:"metrics,omitempty"`
}

// requestUnits returns the target speed units for a request: the
// "units" query parameter when present and valid, else the server
// default.
func (s *Server) requestUnits(r *http.Request) (string, error) {
	u := r.URL.Query().Get("units")
	if u == "" {
		return s.units, nil
	}
	if !units.IsValid(u) {
		return "", fmt.Errorf("invalid units %q: valid values are %s", u, units.GetValidUnitsString())
	}
	return u, nil
}

func (s *Server) convertMetrics(m *swingdb.StoredMetrics, target string) *metricsAPI {
	if m == nil {
		return nil
	}
	return &metricsAPI{
		SessionID:      m.SessionID,
		SwingStart:     m.SwingStart,
		SwingEnd:       m.SwingEnd,
		ImpactIndex:    m.ImpactIndex,
		PeakSpeed:      units.ConvertSpeed(m.PeakSpeedMps, target),
		SpeedUnits:     target,
		PeakAngularDps: m.PeakAngularDps,
		TimeToImpactMs: m.TimeToImpactMs,
	}
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.db.ListSessions()
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError,
			fmt.Sprintf("failed to list sessions: %v", err))
		return
	}
	if sessions == nil {
		sessions = []swingdb.Session{}
	}
	s.writeJSON(w, sessions)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	target, err := s.requestUnits(r)
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := r.PathValue("id")
	session, err := s.db.GetSession(id)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError,
			fmt.Sprintf("failed to get session: %v", err))
		return
	}
	if session == nil {
		s.writeJSONError(w, http.StatusNotFound, "session not found")
		return
	}

	metrics, err := s.db.GetSwingMetrics(id)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError,
			fmt.Sprintf("failed to get swing metrics: %v", err))
		return
	}

	s.writeJSON(w, sessionResponse{
		Session: *session,
		Metrics: s.convertMetrics(metrics, target),
	})
}

// analyzeRecording accepts a recording in the sensor line format as
// the request body, runs the pipeline, and stores the session.
func (s *Server) analyzeRecording(w http.ResponseWriter, r *http.Request) {
	target, err := s.requestUnits(r)
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := parse.Records(r.Body)
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest,
			fmt.Sprintf("failed to parse recording: %v", err))
		return
	}

	resp, err := s.storeAnalysis(parse.Samples(records), r.URL.Query().Get("source"), target)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, resp)
}

// captureAndAnalyze records live sensor output for the requested
// window, then runs the same analysis path as analyzeRecording.
func (s *Server) captureAndAnalyze(w http.ResponseWriter, r *http.Request) {
	if s.m == nil {
		s.writeJSONError(w, http.StatusServiceUnavailable, "no sensor attached")
		return
	}

	target, err := s.requestUnits(r)
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	seconds := 5
	if v := r.URL.Query().Get("seconds"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 60 {
			s.writeJSONError(w, http.StatusBadRequest, "invalid 'seconds' parameter: must be 1-60")
			return
		}
		seconds = parsed
	}

	recorder := capture.NewRecorder(s.m, nil)
	recording, err := recorder.Record(r.Context(), time.Duration(seconds)*time.Second)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError,
			fmt.Sprintf("capture failed: %v", err))
		return
	}

	resp, err := s.storeAnalysis(recording.Samples, "live-capture", target)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, resp)
}

func (s *Server) storeAnalysis(samples []imu.Sample, source, target string) (*sessionResponse, error) {
	analysis, err := imu.Analyze(samples, s.cfg)
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}

	session := swingdb.NewSession(analysis.SampleCount, analysis.Dt, source)
	if err := s.db.InsertSession(session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	resp := &sessionResponse{Session: session}
	if analysis.SwingFound {
		if err := s.db.InsertSwingMetrics(session.ID, analysis.Metrics); err != nil {
			return nil, fmt.Errorf("failed to store swing metrics: %w", err)
		}
		stored, err := s.db.GetSwingMetrics(session.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to read back swing metrics: %w", err)
		}
		resp.Metrics = s.convertMetrics(stored, target)
	}

	s.registry.Put(session.ID, analysis)
	return resp, nil
}

func (s *Server) sessionChart(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	analysis := s.registry.Get(id)
	if analysis == nil {
		s.writeJSONError(w, http.StatusNotFound,
			"no analysis cached for session: re-analyze the recording to chart it")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := monitor.RenderSessionChart(w, id, analysis); err != nil {
		log.Printf("failed to render chart for %s: %v", id, err)
	}
}

func (s *Server) sendCommandHandler(w http.ResponseWriter, r *http.Request) {
	if s.m == nil {
		s.writeJSONError(w, http.StatusServiceUnavailable, "no sensor attached")
		return
	}

	command := r.FormValue("command")
	if command == "" {
		s.writeJSONError(w, http.StatusBadRequest, "missing 'command' parameter")
		return
	}

	if err := s.m.SendCommand(command); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "failed to send command")
		return
	}
	io.WriteString(w, "Command sent successfully")
}
