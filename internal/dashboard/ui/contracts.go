package ui

import (
	"context"
	"html/template"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/asterix-health/opsboard/internal/dashboard"
	"github.com/asterix-health/opsboard/internal/dashboard/svg"
)

// Page combines the derived view with its rendered charts.
type Page struct {
	View        dashboard.View
	GeneratedAt *time.Time
	Source      string
	Query       string
	PrintedAt   time.Time

	OverallChart     template.HTML
	ProviderChart    template.HTML
	ServiceLineChart template.HTML
	ServiceLineBars  template.HTML
}

// LineRenderer abstracts the two-axis trend chart.
type LineRenderer interface {
	DualLine(width, height int, labels []string, left, right svg.Series, opts svg.DualOpts) (template.HTML, error)
}

// BarRenderer abstracts the grouped bar chart.
type BarRenderer interface {
	Bars(width, height int, labels []string, series []svg.Series, opts svg.BarOpts) (template.HTML, error)
}

// SVG is the default renderer backed by the svg package.
type SVG struct{}

// DualLine implements LineRenderer.
func (SVG) DualLine(width, height int, labels []string, left, right svg.Series, opts svg.DualOpts) (template.HTML, error) {
	return svg.DualLine(width, height, labels, left, right, opts)
}

// Bars implements BarRenderer.
func (SVG) Bars(width, height int, labels []string, series []svg.Series, opts svg.BarOpts) (template.HTML, error) {
	return svg.Bars(width, height, labels, series, opts)
}

// Chart sizes.
const (
	OverallWidth  = 960
	OverallHeight = 300
	PanelWidth    = 720
	PanelHeight   = 250
)

// BuildPage renders every chart the view needs. Empty series produce no
// chart rather than an error so missing data degrades to an empty panel.
func BuildPage(ctx context.Context, v dashboard.View, line LineRenderer, bar BarRenderer) (Page, error) {
	page := Page{View: v, Query: v.Selection.Query().Encode()}
	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		out, err := trendChart(line, v.OverallTrend, OverallWidth, OverallHeight, "Total Hours", "Total Tasks", v.OverallTitle)
		page.OverallChart = out
		return err
	})
	if v.ShowProviderPanel {
		g.Go(func() error {
			out, err := trendChart(line, v.ProviderTrend, PanelWidth, PanelHeight, "Hours", "Tasks", v.ProviderLabel+" - Week over Week Performance")
			page.ProviderChart = out
			return err
		})
	}
	if v.ShowServiceLinePanel {
		g.Go(func() error {
			out, err := trendChart(line, v.ServiceLineTrend, PanelWidth, PanelHeight, "Hours", "Tasks", v.Selection.ServiceLine+" - Week over Week Performance")
			page.ServiceLineChart = out
			return err
		})
	}
	if len(v.ServiceLines) > 0 {
		g.Go(func() error {
			labels := make([]string, 0, len(v.ServiceLines))
			hours := make([]float64, 0, len(v.ServiceLines))
			tasks := make([]float64, 0, len(v.ServiceLines))
			for _, row := range v.ServiceLines {
				labels = append(labels, row.Name)
				hours = append(hours, row.Hours)
				tasks = append(tasks, row.Tasks)
			}
			out, err := bar.Bars(PanelWidth, PanelHeight, labels, []svg.Series{
				{Name: "Hours", Values: hours, Color: svg.HoursColor},
				{Name: "Tasks", Values: tasks, Color: svg.TasksColor},
			}, svg.BarOpts{Title: "Service line workload", Description: "Hours and tasks per service line for " + v.WeekLong})
			page.ServiceLineBars = out
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return Page{}, err
	}
	return page, nil
}

func trendChart(line LineRenderer, points []dashboard.TrendPoint, width, height int, leftName, rightName, title string) (template.HTML, error) {
	if len(points) == 0 {
		return "", nil
	}
	labels, hours, tasks := dashboard.Series(points)
	return line.DualLine(width, height, labels,
		svg.Series{Name: leftName, Values: hours, Color: svg.HoursColor},
		svg.Series{Name: rightName, Values: tasks, Color: svg.TasksColor},
		svg.DualOpts{Title: title, ShowDots: true},
	)
}
