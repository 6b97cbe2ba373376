package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bodylab/internal/config"
	apierrors "bodylab/internal/errors"
	"bodylab/internal/infrastructure"
	customMiddleware "bodylab/internal/middleware"
	"bodylab/internal/shared/testutil"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Security.RateLimit.Enabled = false
	cfg.Telemetry.TracingEnabled = true
	cfg.Telemetry.MetricsEnabled = true
	cfg.Server.ShutdownTimeout = 5 * time.Second
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) (*Application, *testutil.BufferedSlogHandler) {
	t.Helper()
	logger, logs := testutil.NewTestLogger(t)

	app, err := newApplication(cfg, logger, io.Discard)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Stop(context.Background()) })
	return app, logs
}

func do(app *Application, method, path, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)
	return w
}

func TestRouter(t *testing.T) {
	app, logs := newTestApp(t, testConfig())
	body := `{"username":"hello","age":20}`

	tests := []struct {
		name        string
		method      string
		path        string
		contentType string
		wantStatus  int
		wantBody    string
	}{
		{name: "v1", method: http.MethodPost, path: "/request-body-json-v1", contentType: "application/json", wantStatus: http.StatusOK, wantBody: "ok"},
		{name: "v2", method: http.MethodPost, path: "/request-body-json-v2", contentType: "application/json", wantStatus: http.StatusOK, wantBody: "ok"},
		{name: "v3", method: http.MethodPost, path: "/request-body-json-v3", contentType: "application/json", wantStatus: http.StatusOK, wantBody: "ok"},
		{name: "v4", method: http.MethodPost, path: "/request-body-json-v4", contentType: "application/json", wantStatus: http.StatusOK, wantBody: "ok"},
		{name: "v5", method: http.MethodPost, path: "/request-body-json-v5", contentType: "application/json", wantStatus: http.StatusOK},
		{name: "unknown path", method: http.MethodPost, path: "/request-body-json-v9", contentType: "application/json", wantStatus: http.StatusNotFound},
		{name: "wrong method", method: http.MethodPut, path: "/request-body-json-v3", contentType: "application/json", wantStatus: http.StatusMethodNotAllowed},
		{name: "health", method: http.MethodGet, path: "/api/health", wantStatus: http.StatusOK},
		{name: "version", method: http.MethodGet, path: "/api/version", wantStatus: http.StatusOK},
		{name: "readiness", method: http.MethodGet, path: "/api/health/ready", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(app, tt.method, tt.path, tt.contentType, body)

			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.NotEmpty(t, w.Header().Get(customMiddleware.RequestIDHeader))
			assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, w.Body.String())
			}
		})
	}

	testutil.AssertLogContains(t, logs, slog.LevelInfo, "request completed")
	testutil.AssertLogAttr(t, logs, "username", "hello")
}

func TestRouter_EchoAndProblem(t *testing.T) {
	app, _ := newTestApp(t, testConfig())

	w := do(app, http.MethodPost, "/request-body-json-v5", "application/json", `{"username":"hello","age":20,"ignored":1}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"username":"hello","age":20}`, w.Body.String())

	w = do(app, http.MethodPost, "/request-body-json-v1", "application/json", `{"username":"hello","age":"20"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var problem map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
	assert.Equal(t, apierrors.TypeSchemaMismatch, problem["type"])
	assert.Equal(t, "age", problem["field"])
	assert.Equal(t, w.Header().Get(customMiddleware.RequestIDHeader), problem["trace_id"])
}

func TestRouter_Metrics(t *testing.T) {
	app, _ := newTestApp(t, testConfig())

	do(app, http.MethodPost, "/request-body-json-v2", "application/json", `{"username":"hello","age":20}`)

	w := do(app, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	exposition := w.Body.String()
	assert.Contains(t, exposition, "http_requests_total")
	assert.Contains(t, exposition, `route="/request-body-json-v2"`)
	assert.Contains(t, exposition, "request_body_decodes_total")
	assert.Contains(t, exposition, "system_goroutines")
}

func TestRouter_MetricsDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Telemetry.MetricsEnabled = false
	app, _ := newTestApp(t, cfg)

	w := do(app, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(app, http.MethodPost, "/request-body-json-v1", "", `{"username":"hello","age":20}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_BodyLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RequestBody.MaxBytes = 16
	app, _ := newTestApp(t, cfg)

	w := do(app, http.MethodPost, "/request-body-json-v1", "application/json", `{"username":"a-rather-long-name","age":20}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestRouter_RateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RateLimit = config.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 1}
	app, _ := newTestApp(t, cfg)

	body := `{"username":"hello","age":20}`
	assert.Equal(t, http.StatusOK, do(app, http.MethodPost, "/request-body-json-v1", "", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(app, http.MethodPost, "/request-body-json-v1", "", body).Code)
}

func TestRouter_CORS(t *testing.T) {
	app, _ := newTestApp(t, testConfig())

	req := httptest.NewRequest(http.MethodOptions, "/request-body-json-v5", nil)
	req.Header.Set("Origin", "http://localhost:8080")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:8080", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/request-body-json-v5", nil)
	req.Header.Set("Origin", "http://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w = httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestServe(t *testing.T) {
	app, logs := newTestApp(t, testConfig())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Serve(ctx, ln) }()

	resp, err := http.Post("http://"+ln.Addr().String()+"/request-body-json-v5", "application/json",
		strings.NewReader(`{"username":"wire","age":42}`))
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"username":"wire","age":42}`, string(raw))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}

	testutil.AssertLogContains(t, logs, slog.LevelInfo, "Application shutdown complete")
}

func TestServe_StopFromOutside(t *testing.T) {
	app, _ := newTestApp(t, testConfig())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- app.Serve(context.Background(), ln) }()

	require.Eventually(t, func() bool {
		conn, err := net.Dial("tcp", ln.Addr().String())
		if err != nil {
			return false
		}
		conn.Close()
		return true
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, app.Stop(context.Background()))
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestNewApplication(t *testing.T) {
	previous := slog.Default()
	infrastructure.ResetLoggerForTesting()
	t.Cleanup(func() {
		infrastructure.ResetLoggerForTesting()
		slog.SetDefault(previous)
	})

	logPath := filepath.Join(t.TempDir(), "bodylab.log")
	cfg := testConfig()
	cfg.Telemetry.TracingEnabled = false
	cfg.Logging.Output = "file"
	cfg.Logging.FilePath = logPath

	app, err := NewApplication(cfg)
	require.NoError(t, err)
	require.NoError(t, app.Stop(context.Background()))
	require.NoError(t, app.Stop(context.Background()))

	require.NoError(t, infrastructure.CloseLogFile())
	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Application starting")
	assert.Equal(t, cfg.Server.Address(), app.Server.Addr)
}
