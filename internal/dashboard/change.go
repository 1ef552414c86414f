package dashboard

import (
	"math"

	"github.com/asterix-health/opsboard/internal/opsdata"
)

// TrendNoiseLimit is the magnitude at or above which a week-over-week change
// is treated as an outlier and not displayed.
const TrendNoiseLimit = 200

// Change returns the rounded percent change from previous to current. It is
// undefined (nil) when previous is absent or zero, or current is absent.
func Change(current, previous *float64) *int {
	if previous == nil || *previous == 0 || current == nil {
		return nil
	}
	pct := int(roundHalfUp((*current - *previous) / *previous * 100))
	return &pct
}

// ShowTrend reports whether a change deserves a badge: defined, non-zero and
// below the noise limit.
func ShowTrend(change *int) bool {
	if change == nil {
		return false
	}
	abs := *change
	if abs < 0 {
		abs = -abs
	}
	return abs > 0 && abs < TrendNoiseLimit
}

// WeekChanges holds the percent changes displayed on the metric cards.
type WeekChanges struct {
	Hours     *int `json:"hours"`
	Tasks     *int `json:"tasks"`
	Revenue   *int `json:"revenue"`
	Providers *int `json:"providers"`
}

// Changes compares the selected week with its predecessor. Every field is nil
// when the week has no predecessor or the predecessor has no summary.
func Changes(data *opsdata.Data, week string) WeekChanges {
	idx := data.WeekIndex(week)
	if idx <= 0 {
		return WeekChanges{}
	}
	prev, ok := data.Summary(data.AvailableWeeks[idx-1])
	if !ok {
		return WeekChanges{}
	}
	cur, _ := data.Summary(week)
	return WeekChanges{
		Hours:     Change(cur.TotalHours, prev.TotalHours),
		Tasks:     Change(cur.TotalTasks, prev.TotalTasks),
		Revenue:   Change(cur.TotalRevenue, prev.TotalRevenue),
		Providers: Change(cur.ActiveProviders, prev.ActiveProviders),
	}
}

// roundHalfUp rounds to the nearest integer with halves going toward +Inf.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}
