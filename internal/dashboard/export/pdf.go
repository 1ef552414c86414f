package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/asterix-health/opsboard/internal/view"
)

// ErrRendererUnavailable is returned when no PDF backend is configured.
var ErrRendererUnavailable = errors.New("export: pdf renderer not configured")

// PrintTemplate is the standalone page converted to PDF.
const PrintTemplate = "pages/dashboard_print.html"

// HTMLRenderer converts an HTML document into PDF bytes.
type HTMLRenderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// PageRenderer executes a named template.
type PageRenderer interface {
	Execute(w io.Writer, name string, data view.TemplateData) error
}

// PDFExporter renders the print template and hands it to the PDF backend.
type PDFExporter struct {
	Pages    PageRenderer
	Renderer HTMLRenderer
}

// Render produces a PDF of the printable dashboard page.
func (p *PDFExporter) Render(ctx context.Context, data view.TemplateData) ([]byte, error) {
	if p == nil || p.Renderer == nil || p.Pages == nil {
		return nil, ErrRendererUnavailable
	}
	var buf bytes.Buffer
	if err := p.Pages.Execute(&buf, PrintTemplate, data); err != nil {
		return nil, fmt.Errorf("render print page: %w", err)
	}
	pdf, err := p.Renderer.RenderHTML(ctx, buf.String())
	if err != nil {
		return nil, fmt.Errorf("convert print page: %w", err)
	}
	return pdf, nil
}

// Filename builds the attachment name for a week export.
func Filename(week, ext string) string {
	if week == "" {
		week = "latest"
	}
	return "opsboard-" + week + "." + ext
}
