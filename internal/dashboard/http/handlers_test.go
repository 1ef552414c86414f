package dashboardhttp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asterix-health/opsboard/internal/dashboard/ui"
	"github.com/asterix-health/opsboard/internal/opsdata"
	"github.com/asterix-health/opsboard/internal/shared"
	"github.com/asterix-health/opsboard/internal/view"
	_ "github.com/asterix-health/opsboard/testing"
)

type stubService struct {
	data      *opsdata.Data
	err       error
	refreshes int
}

func (s *stubService) Data(context.Context) (*opsdata.Data, error) {
	return s.data, s.err
}

func (s *stubService) Refresh(context.Context) (int64, error) {
	s.refreshes++
	return int64(s.refreshes + 1), nil
}

func (s *stubService) SourceName() string { return "file:sample.json" }

type stubPDF struct {
	got view.TemplateData
	err error
}

func (s *stubPDF) Render(_ context.Context, data view.TemplateData) ([]byte, error) {
	s.got = data
	if s.err != nil {
		return nil, s.err
	}
	return []byte("%PDF-1.4"), nil
}

type stubJobs struct {
	calls  int
	reason string
}

func (s *stubJobs) EnqueueWarmup(_ context.Context, reason string) (*asynq.TaskInfo, error) {
	s.calls++
	s.reason = reason
	return &asynq.TaskInfo{ID: "task-1"}, nil
}

func loadSample(t *testing.T) *opsdata.Data {
	t.Helper()
	raw, err := os.ReadFile("../testdata/sample.json")
	require.NoError(t, err)
	data, err := opsdata.Parse(raw)
	require.NoError(t, err)
	return data
}

func newTestHandler(t *testing.T, svc DataService, pdf PDFService) *Handler {
	t.Helper()
	engine, err := view.NewEngine()
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(logger, svc, engine, ui.SVG{}, ui.SVG{}, pdf)
	h.WithNow(func() time.Time { return time.Date(2026, 1, 9, 12, 0, 0, 0, time.UTC) })
	return h
}

func newSession(t *testing.T) *shared.Session {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	sm := shared.NewSessionManager(client, "opsboard_session", "session-secret", time.Hour, false)
	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	return sess
}

func serve(h *Handler, req *http.Request) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.MountRoutes(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestDashboardDefaultsToLastWeek(t *testing.T) {
	h := newTestHandler(t, &stubService{data: loadSample(t)}, nil)

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, "Week of January 5")
	assert.Contains(t, body, "Overall Performance Trends (December - January)")
	assert.Contains(t, body, "Doctor 12")
	assert.Contains(t, body, "<svg")
	assert.Contains(t, body, "week=2025-12-29")
	assert.Contains(t, body, `aria-disabled="true">Next`)
	assert.Contains(t, body, "Lab Review")
	assert.Contains(t, body, "– tasks/hr")
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestDashboardRejectsMalformedQuery(t *testing.T) {
	h := newTestHandler(t, &stubService{data: loadSample(t)}, nil)

	cases := map[string]string{
		"week": "/dashboard?week=01/05/2026",
		"sort": "/dashboard?sort=revenue",
	}
	for field, target := range cases {
		t.Run(field, func(t *testing.T) {
			rec := serve(h, httptest.NewRequest(http.MethodGet, target, nil))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "invalid "+field)
		})
	}
}

func TestDashboardUnknownWeekDegrades(t *testing.T) {
	h := newTestHandler(t, &stubService{data: loadSample(t)}, nil)

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/dashboard?week=2030-01-07", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "No provider activity recorded for this week.")
	assert.Contains(t, body, `aria-disabled="true">&larr; Previous`)
	assert.Contains(t, body, "week=2025-12-22")
}

func TestDashboardProviderPanel(t *testing.T) {
	h := newTestHandler(t, &stubService{data: loadSample(t)}, nil)

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/dashboard?week=2026-01-05&provider=7", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Doctor 7 - Week over Week Performance")

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/dashboard?week=2026-01-05&provider=99", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Week over Week Performance</h2>")
}

func TestDashboardPanelsShowWeekAndTrendCaptions(t *testing.T) {
	h := newTestHandler(t, &stubService{data: loadSample(t)}, nil)

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/dashboard?week=2026-01-05&provider=7&service_line=Urgent+Care", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, "<h2>Provider Performance - January 5</h2>")
	assert.Contains(t, body, "<h2>Service Line Performance - January 5</h2>")
	assert.Contains(t, body, "<td>60h</td>")
	assert.Contains(t, body, "<dd>80h</dd>")
	assert.NotContains(t, body, "<td>60.0</td>")
	assert.Equal(t, 2, strings.Count(body, "Hide Trend"), "selected provider and service line")
	assert.Equal(t, 5, strings.Count(body, "View Trend"), "three other providers and two other service lines")
}

func TestDashboardFreshLoadOpensOnLastWeek(t *testing.T) {
	h := newTestHandler(t, &stubService{data: loadSample(t)}, nil)
	sess := newSession(t)

	req := httptest.NewRequest(http.MethodGet, "/dashboard?week=2025-12-22&sort=total_tasks", nil)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	rec := serve(h, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h1>Week of December 22</h1>")

	req = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	rec = serve(h, req)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<h1>Week of January 5</h1>")
	assert.Contains(t, body, `<option value="2026-01-05" selected>`)
	assert.NotContains(t, body, `<option value="2025-12-22" selected>`)
}

func TestDashboardAcceptsAnyPayloadIdentifier(t *testing.T) {
	h := newTestHandler(t, &stubService{data: loadSample(t)}, nil)

	q := url.Values{
		"week":         {"2026-01-05"},
		"provider":     {"Zoë"},
		"service_line": {strings.Repeat("a", 129)},
	}
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/dashboard?"+q.Encode(), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h1>Week of January 5</h1>")

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/dashboard?provider="+strings.Repeat("x", 1025), nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboardLoadFailure(t *testing.T) {
	h := newTestHandler(t, &stubService{err: errors.New("source down")}, nil)

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/dashboard/view.json", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestViewJSON(t *testing.T) {
	h := newTestHandler(t, &stubService{data: loadSample(t)}, nil)

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/dashboard/view.json?week=2026-01-05&sort=tasks_per_hour", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Selection struct {
			Week string `json:"week"`
			Sort string `json:"sort"`
		} `json:"selection"`
		Leaderboard []struct {
			ID string `json:"id"`
		} `json:"leaderboard"`
		Source string `json:"source"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "2026-01-05", payload.Selection.Week)
	assert.Equal(t, "tasks_per_hour", payload.Selection.Sort)
	require.Len(t, payload.Leaderboard, 4)
	assert.Equal(t, "7", payload.Leaderboard[0].ID)
	assert.Equal(t, "file:sample.json", payload.Source)

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/dashboard/view.json?week=bad", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCSVExport(t *testing.T) {
	h := newTestHandler(t, &stubService{data: loadSample(t)}, nil)

	rec := httptest.NewRecorder()
	h.handleCSV(rec, httptest.NewRequest(http.MethodGet, "/dashboard/export.csv?week=2026-01-05&section=leaderboard", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename=opsboard-2026-01-05.csv`, rec.Header().Get("Content-Disposition"))

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[1], "1,Doctor 12,"))
	assert.True(t, strings.HasPrefix(lines[2], "2,Doctor 7,"))
	assert.True(t, strings.HasPrefix(lines[3], "3,Doctor 3,"))
	assert.True(t, strings.HasPrefix(lines[4], "4,Doctor 21,"))

	rec = httptest.NewRecorder()
	h.handleCSV(rec, httptest.NewRequest(http.MethodGet, "/dashboard/export.csv?section=everything", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportRateLimited(t *testing.T) {
	h := newTestHandler(t, &stubService{data: loadSample(t)}, nil)
	r := chi.NewRouter()
	h.MountRoutes(r)

	var last int
	for i := 0; i < 11; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/export.csv", nil))
		last = rec.Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}

func TestPDFExport(t *testing.T) {
	pdf := &stubPDF{}
	h := newTestHandler(t, &stubService{data: loadSample(t)}, pdf)

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/dashboard/pdf?week=2026-01-05", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename=opsboard-2026-01-05.pdf`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.4", rec.Body.String())

	page, ok := pdf.got.Data.(ui.Page)
	require.True(t, ok)
	assert.Equal(t, "2026-01-05", page.View.Selection.Week)
	assert.NotEmpty(t, page.OverallChart)
	assert.Equal(t, time.Date(2026, 1, 9, 12, 0, 0, 0, time.UTC), page.PrintedAt)
}

func TestPDFExportWithoutRenderer(t *testing.T) {
	h := newTestHandler(t, &stubService{data: loadSample(t)}, nil)
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/dashboard/pdf", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRefreshRedirectsWithFlash(t *testing.T) {
	svc := &stubService{data: loadSample(t)}
	jobs := &stubJobs{}
	h := newTestHandler(t, svc, nil)
	h.WithJobs(jobs)
	sess := newSession(t)

	req := httptest.NewRequest(http.MethodPost, "/dashboard/refresh?week=2026-01-05&sort=total_tasks", nil)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	rec := serve(h, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard?sort=total_tasks&week=2026-01-05", rec.Header().Get("Location"))
	assert.Equal(t, 1, svc.refreshes)
	assert.Equal(t, 1, jobs.calls)
	assert.Equal(t, "manual", jobs.reason)

	flash := sess.PopFlash()
	require.NotNil(t, flash)
	assert.Equal(t, "success", flash.Kind)
}

func TestIndexRedirects(t *testing.T) {
	h := newTestHandler(t, &stubService{data: loadSample(t)}, nil)
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
}
