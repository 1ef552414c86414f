package svg

import (
	"fmt"
	"html/template"
	"strings"
)

// Bars renders grouped horizontal-axis bars, one group per label. Every
// series is scaled against its own maximum so hours and tasks can share a
// chart; the tooltips carry the raw values.
func Bars(width, height int, labels []string, series []Series, opts BarOpts) (template.HTML, error) {
	if len(labels) == 0 || len(series) == 0 {
		return "", ErrNoData
	}
	for _, s := range series {
		if len(s.Values) != len(labels) {
			return "", fmt.Errorf("svg: series %q length must match labels", s.Name)
		}
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
	axisColor := fallback(opts.AxisColor, AxisColor)
	gridColor := fallback(opts.GridColor, GridColor)

	plotTop := padding / 2
	plotWidth := float64(width) - 2*padding
	plotHeight := float64(height) - plotTop - padding - 20
	if plotWidth <= 0 || plotHeight <= 0 {
		return "", fmt.Errorf("svg: viewport too small")
	}
	plotBottom := plotTop + plotHeight

	axes := make([]axis, len(series))
	for i, s := range series {
		axes[i] = newAxis(s.Values, plotTop, plotHeight)
	}

	groupWidth := plotWidth / float64(len(labels))
	barWidth := groupWidth * 0.7 / float64(len(series))

	titleID := makeID(opts.Title, "bar-title")
	descID := makeID(opts.Title, "bar-desc")

	var b strings.Builder
	fmt.Fprintf(&b, "<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 %d %d\" role=\"img\" aria-labelledby=\"%s %s\">", width, height, titleID, descID)
	fmt.Fprintf(&b, "<title id=\"%s\">%s</title>", titleID, template.HTMLEscapeString(fallback(opts.Title, "Bar chart")))
	fmt.Fprintf(&b, "<desc id=\"%s\">%s</desc>", descID, template.HTMLEscapeString(fallback(opts.Description, "Grouped comparison")))

	fmt.Fprintf(&b, "<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke=\"%s\" stroke-width=\"1\"></line>", padding, plotBottom, padding+plotWidth, plotBottom, axisColor)
	fmt.Fprintf(&b, "<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke=\"%s\" stroke-dasharray=\"3,3\" aria-hidden=\"true\"></line>", padding, plotTop, padding+plotWidth, plotTop, gridColor)

	legend := make([]Series, 0, len(series))
	for j, s := range series {
		color := fallback(s.Color, palette(j))
		legend = append(legend, Series{Name: s.Name, Color: color})
		for i, v := range s.Values {
			x := padding + float64(i)*groupWidth + groupWidth*0.15 + float64(j)*barWidth
			y := axes[j].y(v)
			h := plotBottom - y
			if h < 0 {
				h = 0
			}
			fmt.Fprintf(&b, "<rect x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\" rx=\"3\" fill=\"%s\"><title>%s %s: %s</title></rect>",
				x, y, barWidth, h, color, template.HTMLEscapeString(labels[i]), template.HTMLEscapeString(s.Name), formatTick(v))
		}
	}
	for i, label := range labels {
		center := padding + float64(i)*groupWidth + groupWidth/2
		fmt.Fprintf(&b, "<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"12\" text-anchor=\"middle\">%s</text>", center, plotBottom+16, axisColor, template.HTMLEscapeString(label))
	}

	writeLegend(&b, float64(width)/2, float64(height)-8, axisColor, legend)
	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}

func palette(i int) string {
	colors := []string{HoursColor, TasksColor, "#4f46e5", "#f59e0b"}
	return colors[i%len(colors)]
}
