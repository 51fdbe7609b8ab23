package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/swing.report/internal/imu"
	"github.com/banshee-data/swing.report/internal/monitor"
	"github.com/banshee-data/swing.report/internal/monitoring"
	"github.com/banshee-data/swing.report/internal/swingdb"
	"github.com/banshee-data/swing.report/internal/testutil"
	"github.com/banshee-data/swing.report/internal/units"
)

func init() {
	monitoring.SetLogger(nil)
}

// commandMux records sent commands without a real port.
type commandMux struct {
	commands []string
}

func (m *commandMux) Subscribe() (string, chan string) { return "test", make(chan string) }
func (m *commandMux) Unsubscribe(string)               {}
func (m *commandMux) Monitor(context.Context) error    { return nil }
func (m *commandMux) Close() error                     { return nil }
func (m *commandMux) Initialize() error                { return nil }

func (m *commandMux) SendCommand(command string) error {
	m.commands = append(m.commands, command)
	return nil
}

func newTestServer(t *testing.T) (*Server, *http.ServeMux) {
	t.Helper()

	db, err := swingdb.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.MigrateUp("../../migrations"))

	s := NewServer(db, nil, monitor.NewRegistry(), units.KMPH, imu.DefaultConfig())
	return s, s.ServeMux()
}

func TestListSessionsEmpty(t *testing.T) {
	_, mux := newTestServer(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions", nil))

	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestAnalyzeStoresSessionAndMetrics(t *testing.T) {
	_, mux := newTestServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze?source=fixture.txt",
		strings.NewReader(testutil.SwingRecording()))
	mux.ServeHTTP(rec, req)

	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var resp sessionResponse
	testutil.DecodeJSON(t, rec, &resp)
	assert.NotEmpty(t, resp.Session.ID)
	assert.Equal(t, "fixture.txt", resp.Session.Source)
	assert.Equal(t, 300, resp.Session.SampleCount)
	require.NotNil(t, resp.Metrics, "fixture swing should produce metrics")
	assert.Equal(t, units.KMPH, resp.Metrics.SpeedUnits)
	assert.Greater(t, resp.Metrics.PeakSpeed, 0.0)
	assert.Greater(t, resp.Metrics.PeakAngularDps, 100.0)

	// The stored session is retrievable, with unit conversion applied.
	getRec := httptest.NewRecorder()
	mux.ServeHTTP(getRec, httptest.NewRequest(http.MethodGet,
		"/api/sessions/"+resp.Session.ID+"?units=mph", nil))
	testutil.AssertStatusCode(t, getRec.Code, http.StatusOK)

	var got sessionResponse
	testutil.DecodeJSON(t, getRec, &got)
	require.NotNil(t, got.Metrics)
	assert.Equal(t, units.MPH, got.Metrics.SpeedUnits)
	assert.InDelta(t, resp.Metrics.PeakSpeed/3.6*2.2369362920544, got.Metrics.PeakSpeed, 1e-6)
}

func TestAnalyzeMalformedRecording(t *testing.T) {
	_, mux := newTestServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze",
		strings.NewReader("acc:1,2 gyro:nope\n"))
	mux.ServeHTTP(rec, req)

	testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)
	assert.Contains(t, rec.Body.String(), "failed to parse recording")
}

func TestGetSessionNotFound(t *testing.T) {
	_, mux := newTestServer(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/nope", nil))
	testutil.AssertStatusCode(t, rec.Code, http.StatusNotFound)
}

func TestGetSessionInvalidUnits(t *testing.T) {
	_, mux := newTestServer(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/x?units=furlongs", nil))
	testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)
	assert.Contains(t, rec.Body.String(), "invalid units")
}

func TestSessionChart(t *testing.T) {
	_, mux := newTestServer(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/analyze",
		strings.NewReader(testutil.SwingRecording())))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp sessionResponse
	testutil.DecodeJSON(t, rec, &resp)

	chartRec := httptest.NewRecorder()
	mux.ServeHTTP(chartRec, httptest.NewRequest(http.MethodGet, "/charts/"+resp.Session.ID, nil))
	testutil.AssertStatusCode(t, chartRec.Code, http.StatusOK)
	assert.Contains(t, chartRec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, chartRec.Body.String(), "Swing Session "+resp.Session.ID)
}

func TestSessionChartNotCached(t *testing.T) {
	_, mux := newTestServer(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/charts/unknown", nil))
	testutil.AssertStatusCode(t, rec.Code, http.StatusNotFound)
}

func TestCaptureWithoutSensor(t *testing.T) {
	_, mux := newTestServer(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/capture", nil))
	testutil.AssertStatusCode(t, rec.Code, http.StatusServiceUnavailable)
}

func TestCaptureInvalidSeconds(t *testing.T) {
	s, _ := newTestServer(t)
	s.m = &commandMux{}
	mux := s.ServeMux()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/capture?seconds=0", nil))
	testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)
}

func TestSendCommand(t *testing.T) {
	s, _ := newTestServer(t)
	cm := &commandMux{}
	s.m = cm
	mux := s.ServeMux()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/command",
		strings.NewReader("command=S0"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	mux.ServeHTTP(rec, req)

	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	require.Len(t, cm.commands, 1)
	assert.Equal(t, "S0", cm.commands[0])
}

func TestSendCommandMissingParameter(t *testing.T) {
	s, _ := newTestServer(t)
	s.m = &commandMux{}
	mux := s.ServeMux()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/command", nil))
	testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)
}

func TestLoggingMiddlewarePassesThrough(t *testing.T) {
	handler := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/anything", nil))
	testutil.AssertStatusCode(t, rec.Code, http.StatusTeapot)
}
