package svg

import (
	"errors"
	"fmt"
	"html/template"
	"strings"
)

// ErrNoData is returned when there is nothing to plot.
var ErrNoData = errors.New("svg: series required")

// DualLine renders two series sharing an x axis, the left series scaled
// against the left axis and the right series against the right axis.
func DualLine(width, height int, labels []string, left, right Series, opts DualOpts) (template.HTML, error) {
	if len(labels) == 0 {
		return "", ErrNoData
	}
	if len(left.Values) != len(labels) || len(right.Values) != len(labels) {
		return "", fmt.Errorf("svg: series length must match labels")
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	padding := opts.Padding
	if padding <= 0 {
		padding = DefaultPadding
	}
	ticks := opts.TickCount
	if ticks <= 0 {
		ticks = DefaultTicks
	}
	stroke := opts.StrokeWidth
	if stroke <= 0 {
		stroke = 3
	}
	axisColor := fallback(opts.AxisColor, AxisColor)
	gridColor := fallback(opts.GridColor, GridColor)
	leftColor := fallback(left.Color, HoursColor)
	rightColor := fallback(right.Color, TasksColor)

	// Room at the bottom for x labels and the legend.
	plotTop := padding / 2
	plotWidth := float64(width) - 2*padding
	plotHeight := float64(height) - plotTop - padding - 20
	if plotWidth <= 0 || plotHeight <= 0 {
		return "", fmt.Errorf("svg: viewport too small")
	}
	plotBottom := plotTop + plotHeight
	leftAxis := newAxis(left.Values, plotTop, plotHeight)
	rightAxis := newAxis(right.Values, plotTop, plotHeight)
	xs := xPositions(len(labels), padding, plotWidth)

	titleID := makeID(opts.Title, "line-title")
	descID := makeID(opts.Title, "line-desc")

	var b strings.Builder
	fmt.Fprintf(&b, "<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 %d %d\" role=\"img\" aria-labelledby=\"%s %s\">", width, height, titleID, descID)
	fmt.Fprintf(&b, "<title id=\"%s\">%s</title>", titleID, template.HTMLEscapeString(fallback(opts.Title, "Line chart")))
	fmt.Fprintf(&b, "<desc id=\"%s\">%s</desc>", descID, template.HTMLEscapeString(fallback(opts.Description, "Weekly trend")))

	for i := 0; i <= ticks; i++ {
		lv, y := leftAxis.tick(i, ticks)
		rv, _ := rightAxis.tick(i, ticks)
		fmt.Fprintf(&b, "<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke=\"%s\" stroke-dasharray=\"3,3\" aria-hidden=\"true\"></line>", padding, y, padding+plotWidth, y, gridColor)
		fmt.Fprintf(&b, "<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"12\" text-anchor=\"end\">%s</text>", padding-6, y+4, axisColor, formatTick(lv))
		fmt.Fprintf(&b, "<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"12\" text-anchor=\"start\">%s</text>", padding+plotWidth+6, y+4, axisColor, formatTick(rv))
	}
	for i, x := range xs {
		fmt.Fprintf(&b, "<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke=\"%s\" stroke-dasharray=\"3,3\" aria-hidden=\"true\"></line>", x, plotTop, x, plotBottom, gridColor)
		fmt.Fprintf(&b, "<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"12\" text-anchor=\"middle\">%s</text>", x, plotBottom+16, axisColor, template.HTMLEscapeString(labels[i]))
	}

	fmt.Fprintf(&b, "<g stroke=\"%s\" stroke-width=\"1\">", axisColor)
	fmt.Fprintf(&b, "<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\"></line>", padding, plotTop, padding, plotBottom)
	fmt.Fprintf(&b, "<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\"></line>", padding+plotWidth, plotTop, padding+plotWidth, plotBottom)
	fmt.Fprintf(&b, "<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\"></line>", padding, plotBottom, padding+plotWidth, plotBottom)
	b.WriteString("</g>")

	writePath(&b, xs, left.Values, leftAxis, leftColor, stroke, opts.ShowDots, fallback(left.Name, "Left"))
	writePath(&b, xs, right.Values, rightAxis, rightColor, stroke, opts.ShowDots, fallback(right.Name, "Right"))

	writeLegend(&b, float64(width)/2, float64(height)-8, axisColor, []Series{
		{Name: fallback(left.Name, "Left"), Color: leftColor},
		{Name: fallback(right.Name, "Right"), Color: rightColor},
	})

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}

func writePath(b *strings.Builder, xs, values []float64, a axis, color string, width float64, dots bool, name string) {
	var path strings.Builder
	for i, v := range values {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		} else {
			path.WriteByte(' ')
		}
		fmt.Fprintf(&path, "%s%.2f %.2f", cmd, xs[i], a.y(v))
	}
	fmt.Fprintf(b, "<path d=\"%s\" fill=\"none\" stroke=\"%s\" stroke-width=\"%.1f\" stroke-linejoin=\"round\" stroke-linecap=\"round\" aria-label=\"%s\"></path>",
		path.String(), color, width, template.HTMLEscapeString(name))
	if !dots {
		return
	}
	for i, v := range values {
		fmt.Fprintf(b, "<circle cx=\"%.2f\" cy=\"%.2f\" r=\"4\" fill=\"#ffffff\" stroke=\"%s\" stroke-width=\"2\"><title>%s: %s</title></circle>",
			xs[i], a.y(v), color, template.HTMLEscapeString(name), formatTick(v))
	}
}

func writeLegend(b *strings.Builder, centerX, y float64, textColor string, entries []Series) {
	const itemWidth = 110.0
	x := centerX - itemWidth*float64(len(entries))/2
	for _, e := range entries {
		fmt.Fprintf(b, "<rect x=\"%.2f\" y=\"%.2f\" width=\"12\" height=\"12\" rx=\"2\" fill=\"%s\"></rect>", x, y-10, e.Color)
		fmt.Fprintf(b, "<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"12\" text-anchor=\"start\">%s</text>", x+16, y, textColor, template.HTMLEscapeString(e.Name))
		x += itemWidth
	}
}
