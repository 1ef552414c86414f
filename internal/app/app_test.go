package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dashboardhttp "github.com/asterix-health/opsboard/internal/dashboard/http"
	"github.com/asterix-health/opsboard/internal/dashboard/ui"
	"github.com/asterix-health/opsboard/internal/observability"
	"github.com/asterix-health/opsboard/internal/opsdata"
	"github.com/asterix-health/opsboard/internal/shared"
	"github.com/asterix-health/opsboard/internal/view"
	_ "github.com/asterix-health/opsboard/testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "session")
	t.Setenv("CSRF_SECRET", "csrf")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, DataSourceFile, cfg.DataSource)
	assert.Equal(t, 15*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "Ops Board", cfg.BrandName)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigRequiresSecrets(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("CSRF_SECRET", "")
	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestConfigValidateDataSource(t *testing.T) {
	cfg := Config{SessionSecret: "s", CSRFSecret: "c", DataSource: "s3"}
	assert.EqualError(t, cfg.Validate(), `unknown DATA_SOURCE "s3"`)

	cfg.DataSource = DataSourcePostgres
	cfg.PGDSN = ""
	assert.Error(t, cfg.Validate())

	cfg.PGDSN = "postgres://localhost/opsboard"
	assert.NoError(t, cfg.Validate())
}

func TestInTestMode(t *testing.T) {
	for value, want := range map[string]bool{"1": true, "true": true, "": false, "0": false, "yes": false} {
		t.Setenv(TestModeEnv, value)
		assert.Equal(t, want, InTestMode(), value)
	}
}

func TestNewLoggerTagsServiceAndHonoursLevel(t *testing.T) {
	var buf strings.Builder
	logger := newLogger(&buf, &Config{LogFormat: "json", LogLevel: "warn", AppEnv: "staging"})
	logger.Info("dropped")
	logger.Warn("kept", slog.String("week", "2026-01-05"))

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, `"msg":"kept"`)
	assert.Contains(t, out, `"service":"opsboard"`)
	assert.Contains(t, out, `"env":"staging"`)
	assert.Contains(t, out, `"week":"2026-01-05"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}

func TestAssetMimeTypesRegistered(t *testing.T) {
	assert.Equal(t, "text/css; charset=utf-8", mime.TypeByExtension(".css"))
	assert.Contains(t, mime.TypeByExtension(".svg"), "image/svg+xml")
}

type routerFixture struct {
	handler  http.Handler
	sessions *shared.SessionManager
}

func newRouterFixture(t *testing.T) routerFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	raw, err := os.ReadFile("../opsdata/testdata/sample.json")
	require.NoError(t, err)
	service := opsdata.NewService(opsdata.StaticSource{Label: "sample", Payload: raw}, opsdata.NewCache(client, time.Minute), nil)

	engine, err := view.NewEngine()
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &Config{AppEnv: "test", AppRequestTimeout: 5 * time.Second}

	sessions := shared.NewSessionManager(client, "opsboard_session", "session-secret", time.Hour, false)
	metrics := observability.NewMetrics()
	dash := dashboardhttp.NewHandler(logger, service, engine, ui.SVG{}, ui.SVG{}, nil)

	return routerFixture{
		handler: NewRouter(RouterParams{
			Logger:           logger,
			Config:           cfg,
			SessionManager:   sessions,
			CSRFManager:      shared.NewCSRFManager("csrf-secret"),
			DashboardHandler: dash,
			Metrics:          metrics,
			Ready:            func(ctx context.Context) error { return client.Ping(ctx).Err() },
		}),
		sessions: sessions,
	}
}

func TestRouterHealthAndStatic(t *testing.T) {
	fx := newRouterFixture(t)

	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Empty(t, rec.Result().Cookies())

	rec = httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/css/app.css", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/css")
}

func TestRouterDashboardSetsSessionAndHeaders(t *testing.T) {
	fx := newRouterFixture(t)

	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "default-src 'self'")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "opsboard_session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	rec = httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "opsboard_http_requests_total")
}

func TestRefreshRequiresCSRFToken(t *testing.T) {
	fx := newRouterFixture(t)

	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/dashboard/refresh", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Render once to obtain a session cookie and token.
	rec = httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	cookie := rec.Result().Cookies()[0]
	token := extractToken(t, rec.Body.String())

	form := url.Values{shared.CSRFFormField: {token}}
	req := httptest.NewRequest(http.MethodPost, "/dashboard/refresh?week=2026-01-05", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard?sort=total_hours&week=2026-01-05", rec.Header().Get("Location"))
}

func extractToken(t *testing.T, body string) string {
	t.Helper()
	const marker = `name="csrf_token" value="`
	idx := strings.Index(body, marker)
	require.NotEqual(t, -1, idx, "csrf field missing")
	rest := body[idx+len(marker):]
	end := strings.Index(rest, `"`)
	require.NotEqual(t, -1, end)
	return rest[:end]
}

func TestReadyzReportsFailure(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewRouter(RouterParams{
		Logger: logger,
		Config: &Config{},
		Ready:  func(context.Context) error { return errors.New("redis down") },
	})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestOpenDataServiceFile(t *testing.T) {
	cfg := &Config{DataSource: DataSourceFile, DataFile: "../opsdata/testdata/sample.json", CacheTTL: time.Minute}
	svc, cleanup, err := OpenDataService(context.Background(), cfg, nil, nil, nil)
	require.NoError(t, err)
	defer cleanup()

	assert.Equal(t, "file:../opsdata/testdata/sample.json", svc.SourceName())
	data, err := svc.Data(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2026-01-05", data.LastWeek())
}

func TestOpenDataServiceRejectsUnknownSource(t *testing.T) {
	_, cleanup, err := OpenDataService(context.Background(), &Config{DataSource: "ftp"}, nil, nil, nil)
	cleanup()
	assert.Error(t, err)
}

func TestRequestLoggerRecordsStatusAndRequestID(t *testing.T) {
	var buf strings.Builder
	logger := newLogger(&buf, &Config{LogFormat: "json", LogLevel: "info"})
	h := chimw.RequestID(RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/dashboard?week=2026-01-05", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	out := buf.String()
	assert.Contains(t, out, `"path":"/dashboard"`)
	assert.Contains(t, out, `"status":418`)
	assert.Contains(t, out, `"request_id":`)
	assert.NotContains(t, out, `"path":"/healthz"`)
}
