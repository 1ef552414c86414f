package dashboardhttp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"

	"github.com/asterix-health/opsboard/internal/dashboard"
	"github.com/asterix-health/opsboard/internal/dashboard/export"
	"github.com/asterix-health/opsboard/internal/dashboard/ui"
	"github.com/asterix-health/opsboard/internal/opsdata"
	"github.com/asterix-health/opsboard/internal/platform/httpx"
	"github.com/asterix-health/opsboard/internal/shared"
	"github.com/asterix-health/opsboard/internal/view"
)

const requestTimeout = 5 * time.Second

// DataService is the payload contract used by the handler.
type DataService interface {
	Data(ctx context.Context) (*opsdata.Data, error)
	Refresh(ctx context.Context) (int64, error)
	SourceName() string
}

// PDFService renders the printable page to PDF bytes.
type PDFService interface {
	Render(ctx context.Context, data view.TemplateData) ([]byte, error)
}

// WarmupEnqueuer schedules a background reload after a manual refresh.
type WarmupEnqueuer interface {
	EnqueueWarmup(ctx context.Context, reason string) (*asynq.TaskInfo, error)
}

// Handler serves the operations dashboard.
type Handler struct {
	logger    *slog.Logger
	service   DataService
	templates *view.Engine
	line      ui.LineRenderer
	bar       ui.BarRenderer
	pdf       PDFService
	jobs      WarmupEnqueuer
	validate  *validator.Validate
	brand     string
	csvPool   sync.Pool
	now       func() time.Time
}

// NewHandler constructs the dashboard HTTP handler.
func NewHandler(logger *slog.Logger, service DataService, templates *view.Engine, line ui.LineRenderer, bar ui.BarRenderer, pdf PDFService) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		logger:    logger,
		service:   service,
		templates: templates,
		line:      line,
		bar:       bar,
		pdf:       pdf,
		validate:  validator.New(),
		brand:     "Ops Board",
		now:       time.Now,
	}
	h.csvPool.New = func() interface{} { return new(bytes.Buffer) }
	return h
}

// WithJobs enables background refresh after POST /dashboard/refresh.
func (h *Handler) WithJobs(jobs WarmupEnqueuer) {
	h.jobs = jobs
}

// WithBrand sets the header title.
func (h *Handler) WithBrand(brand string) {
	if strings.TrimSpace(brand) != "" {
		h.brand = brand
	}
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

type selectionQuery struct {
	Week        string `validate:"omitempty,datetime=2006-01-02"`
	Sort        string `validate:"omitempty,oneof=total_hours total_tasks tasks_per_hour"`
	Provider    string `validate:"omitempty,max=1024"`
	ServiceLine string `validate:"omitempty,max=1024"`
}

type validationError struct {
	field string
}

func (e validationError) Error() string {
	return fmt.Sprintf("invalid %s", e.field)
}

func (e validationError) Unwrap() error { return httpx.ErrValidation }

func hasSelection(values url.Values) bool {
	for _, key := range []string{dashboard.ParamWeek, dashboard.ParamSort, dashboard.ParamProvider, dashboard.ParamServiceLine} {
		if _, ok := values[key]; ok {
			return true
		}
	}
	return false
}

func (h *Handler) parseSelection(values url.Values, data *opsdata.Data) (dashboard.Selection, error) {
	q := selectionQuery{
		Week:        strings.TrimSpace(values.Get(dashboard.ParamWeek)),
		Sort:        strings.TrimSpace(values.Get(dashboard.ParamSort)),
		Provider:    strings.TrimSpace(values.Get(dashboard.ParamProvider)),
		ServiceLine: strings.TrimSpace(values.Get(dashboard.ParamServiceLine)),
	}
	if err := h.validate.Struct(q); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return dashboard.Selection{}, validationError{field: queryName(verrs[0].Field())}
		}
		return dashboard.Selection{}, validationError{field: "query"}
	}
	sel := dashboard.DefaultSelection(data)
	if q.Week != "" {
		sel.Week = q.Week
	}
	sel.Sort = dashboard.ParseSortKey(q.Sort)
	sel.Provider = q.Provider
	sel.ServiceLine = q.ServiceLine
	return sel, nil
}

func queryName(field string) string {
	switch field {
	case "Week":
		return dashboard.ParamWeek
	case "Sort":
		return dashboard.ParamSort
	case "Provider":
		return dashboard.ParamProvider
	case "ServiceLine":
		return dashboard.ParamServiceLine
	default:
		return strings.ToLower(field)
	}
}

type loaded struct {
	data *opsdata.Data
	sel  dashboard.Selection
	view dashboard.View
}

func (h *Handler) load(ctx context.Context, r *http.Request) (loaded, error) {
	data, err := h.service.Data(ctx)
	if err != nil {
		return loaded{}, err
	}
	sel, err := h.parseSelection(r.URL.Query(), data)
	if err != nil {
		return loaded{}, err
	}
	return loaded{data: data, sel: sel, view: dashboard.Build(data, sel)}, nil
}

func (h *Handler) page(ctx context.Context, l loaded) (ui.Page, error) {
	if h.line == nil || h.bar == nil {
		return ui.Page{}, errors.New("svg renderer missing")
	}
	page, err := ui.BuildPage(ctx, l.view, h.line, h.bar)
	if err != nil {
		return ui.Page{}, err
	}
	page.GeneratedAt = l.data.GeneratedAt
	page.Source = h.service.SourceName()
	page.PrintedAt = h.now().UTC()
	return page, nil
}

func (h *Handler) templateData(r *http.Request, title string, data any) view.TemplateData {
	td := view.TemplateData{
		Title:       title,
		Brand:       h.brand,
		CSRFToken:   shared.CSRFTokenFromContext(r.Context()),
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		td.Flash = sess.PopFlash()
	}
	return td
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	l, err := h.load(ctx, r)
	if err != nil {
		h.handleLoadError(w, err)
		return
	}
	vm, err := h.page(ctx, l)
	if err != nil {
		h.handleServerError(w, "render charts", err)
		return
	}

	td := h.templateData(r, "Weekly Operations", vm)
	if err := h.templates.Render(w, "pages/dashboard.html", td); err != nil {
		h.handleServerError(w, "render template", err)
	}
}

type viewResponse struct {
	dashboard.View
	GeneratedAt *time.Time `json:"generated_at,omitempty"`
	Source      string     `json:"source"`
}

func (h *Handler) handleViewJSON(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	l, err := h.load(ctx, r)
	if err != nil {
		if errors.Is(err, httpx.ErrValidation) {
			httpx.RespondError(w, err)
			return
		}
		h.logError("load dashboard", err)
		httpx.RespondError(w, fmt.Errorf("%w: dashboard data", httpx.ErrUnavailable))
		return
	}
	httpx.JSON(w, http.StatusOK, viewResponse{View: l.view, GeneratedAt: l.data.GeneratedAt, Source: h.service.SourceName()})
}

func (h *Handler) handleCSV(w http.ResponseWriter, r *http.Request) {
	section := export.Section(strings.TrimSpace(r.URL.Query().Get("section")))
	if section == "" {
		section = export.SectionAll
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	l, err := h.load(ctx, r)
	if err != nil {
		h.handleLoadError(w, err)
		return
	}

	buf := h.csvPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.csvPool.Put(buf)
	}()

	if err := export.WriteCSV(buf, l.view, section); err != nil {
		if errors.Is(err, export.ErrUnknownSection) {
			http.Error(w, "invalid section", http.StatusBadRequest)
			return
		}
		h.handleServerError(w, "write csv", err)
		return
	}

	httpx.Attachment(w, "text/csv; charset=utf-8", export.Filename(l.sel.Week, "csv"))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logError("stream csv", err)
	}
}

func (h *Handler) handlePDF(w http.ResponseWriter, r *http.Request) {
	if h.pdf == nil {
		h.handleServerError(w, "pdf exporter", export.ErrRendererUnavailable)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*requestTimeout)
	defer cancel()

	l, err := h.load(ctx, r)
	if err != nil {
		h.handleLoadError(w, err)
		return
	}
	vm, err := h.page(ctx, l)
	if err != nil {
		h.handleServerError(w, "render charts", err)
		return
	}

	td := view.TemplateData{Title: "Weekly Operations", Brand: h.brand, Data: vm}
	pdfBytes, err := h.pdf.Render(ctx, td)
	if err != nil {
		if errors.Is(err, export.ErrRendererUnavailable) {
			h.logError("render pdf", err)
			httpx.RespondError(w, fmt.Errorf("%w: pdf renderer", httpx.ErrUnavailable))
			return
		}
		h.handleServerError(w, "render pdf", err)
		return
	}

	httpx.Attachment(w, "application/pdf", export.Filename(l.sel.Week, "pdf"))
	if _, err := w.Write(pdfBytes); err != nil {
		h.logError("stream pdf", err)
	}
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	sel, err := h.parseSelection(r.URL.Query(), nil)
	if err != nil {
		h.handleLoadError(w, err)
		return
	}
	target := "/dashboard"
	if hasSelection(r.URL.Query()) {
		target += "?" + sel.Query().Encode()
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	flash := shared.FlashMessage{Kind: "success", Message: "Dashboard data refreshed."}
	version, err := h.service.Refresh(ctx)
	if err != nil {
		h.logError("refresh data", err)
		flash = shared.FlashMessage{Kind: "error", Message: "Refresh failed, showing cached data."}
	} else {
		h.logger.Info("dashboard refresh", slog.Int64("version", version))
		if h.jobs != nil {
			reason := "manual"
			if reqID := middleware.GetReqID(r.Context()); reqID != "" {
				reason += " " + reqID
			}
			if _, err := h.jobs.EnqueueWarmup(ctx, reason); err != nil {
				h.logError("enqueue warmup", err)
			}
		}
	}
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(flash)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *Handler) handleLoadError(w http.ResponseWriter, err error) {
	var verr validationError
	if errors.As(err, &verr) {
		http.Error(w, verr.Error(), http.StatusBadRequest)
		return
	}
	h.handleServerError(w, "load dashboard", err)
}

func (h *Handler) handleServerError(w http.ResponseWriter, msg string, err error) {
	h.logError(msg, err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (h *Handler) logError(msg string, err error) {
	if h.logger == nil || err == nil {
		return
	}
	h.logger.Error(msg, slog.Any("error", err))
}
