package dashboard

import (
	"github.com/asterix-health/opsboard/internal/opsdata"
)

// TrendPoint is a chart-ready weekly point.
type TrendPoint struct {
	Week  string  `json:"week"`
	Label string  `json:"label"`
	Hours float64 `json:"hours"`
	Tasks float64 `json:"tasks"`
}

// OverallTrend yields one point per available week from the weekly
// summaries, missing fields counting as zero.
func OverallTrend(data *opsdata.Data) []TrendPoint {
	if data == nil {
		return []TrendPoint{}
	}
	points := make([]TrendPoint, 0, len(data.AvailableWeeks))
	for _, week := range data.AvailableWeeks {
		summary, _ := data.Summary(week)
		points = append(points, TrendPoint{
			Week:  week,
			Label: ShortDate(week),
			Hours: opsdata.Value(summary.TotalHours),
			Tasks: opsdata.Value(summary.TotalTasks),
		})
	}
	return points
}

// ProviderTrend returns the provider's series in source order, empty when no
// provider is selected or the provider has no history.
func ProviderTrend(data *opsdata.Data, id string) []TrendPoint {
	return project(data.ProviderTrend(id))
}

// ServiceLineTrend returns the service line's series in source order.
func ServiceLineTrend(data *opsdata.Data, name string) []TrendPoint {
	return project(data.ServiceLineTrend(name))
}

func project(src []opsdata.TrendPoint) []TrendPoint {
	points := make([]TrendPoint, 0, len(src))
	for _, p := range src {
		points = append(points, TrendPoint{
			Week:  p.Week,
			Label: ShortDate(p.Week),
			Hours: p.Hours,
			Tasks: p.Tasks,
		})
	}
	return points
}

// OverallTrendTitle names the month span covered by the available weeks,
// for example "Overall Performance Trends (June - January)".
func OverallTrendTitle(data *opsdata.Data) string {
	const base = "Overall Performance Trends"
	if data == nil || len(data.AvailableWeeks) == 0 {
		return base
	}
	first := formatWeek(data.AvailableWeeks[0], "January")
	last := formatWeek(data.LastWeek(), "January")
	if first == last {
		return base + " (" + first + ")"
	}
	return base + " (" + first + " - " + last + ")"
}

// Series splits points into label, hours and tasks slices for charting.
func Series(points []TrendPoint) (labels []string, hours, tasks []float64) {
	labels = make([]string, 0, len(points))
	hours = make([]float64, 0, len(points))
	tasks = make([]float64, 0, len(points))
	for _, p := range points {
		labels = append(labels, p.Label)
		hours = append(hours, p.Hours)
		tasks = append(tasks, p.Tasks)
	}
	return labels, hours, tasks
}
