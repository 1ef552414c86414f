package svg

// Series is one plotted metric.
type Series struct {
	Name   string
	Values []float64
	Color  string
}

// DualOpts customises the two-axis line chart.
type DualOpts struct {
	Title       string
	Description string
	AxisColor   string
	GridColor   string
	StrokeWidth float64
	Padding     float64
	TickCount   int
	ShowDots    bool
}

// BarOpts customises the grouped bar chart.
type BarOpts struct {
	Title       string
	Description string
	AxisColor   string
	GridColor   string
	Padding     float64
	TickCount   int
}

// Chart defaults. Colours follow the dashboard palette: teal for hours,
// pink for tasks.
const (
	DefaultWidth   = 720
	DefaultHeight  = 300
	DefaultPadding = 40.0
	DefaultTicks   = 5

	HoursColor = "#00c9a7"
	TasksColor = "#ff6b9d"
	AxisColor  = "#666666"
	GridColor  = "#e0e0e0"
)
