// Package opsdata describes the precomputed weekly aggregates consumed by the
// operations dashboard and the sources that produce them.
package opsdata

import (
	"sort"
	"strconv"
	"time"
)

// Data is the read-only dashboard payload produced by the reporting job.
type Data struct {
	AvailableWeeks  []string                              `json:"available_weeks"`
	WeeklySummary   map[string]WeekSummary                `json:"weekly_summary"`
	WeeklyEmployees map[string]map[string]ProviderWeek    `json:"weekly_employees"`
	WeeklyUnits     map[string]map[string]ServiceLineWeek `json:"weekly_units"`
	EmployeeTrends  map[string][]TrendPoint               `json:"employee_trends"`
	UnitTrends      map[string][]TrendPoint               `json:"unit_trends"`
	GeneratedAt     *time.Time                            `json:"generated_at,omitempty"`
}

// WeekSummary aggregates one week across all providers. Any field may be
// absent in the payload, so every value is optional.
type WeekSummary struct {
	TotalHours      *float64 `json:"total_hours,omitempty"`
	TotalTasks      *float64 `json:"total_tasks,omitempty"`
	TotalRevenue    *float64 `json:"total_revenue,omitempty"`
	ActiveProviders *float64 `json:"active_providers,omitempty"`
	TotalShifts     *float64 `json:"total_shifts,omitempty"`
	AvgTasksPerHour *float64 `json:"avg_tasks_per_hour,omitempty"`
}

// ProviderWeek is one provider's activity for a week.
type ProviderWeek struct {
	TotalTime      float64 `json:"total_time"`
	TasksCompleted float64 `json:"tasks_completed"`
	TimesheetID    float64 `json:"timesheet_id"`
	TasksPerHour   float64 `json:"tasks_per_hour"`
	AvgShiftLength float64 `json:"avg_shift_length"`
}

// ServiceLineWeek is one service line's activity for a week.
type ServiceLineWeek struct {
	TotalTime      float64 `json:"total_time"`
	TasksCompleted float64 `json:"tasks_completed"`
}

// TrendPoint is a single weekly snapshot for a provider or service line.
type TrendPoint struct {
	Week  string  `json:"week"`
	Hours float64 `json:"hours"`
	Tasks float64 `json:"tasks"`
}

// Float returns a pointer to v. Handy when building summaries in code.
func Float(v float64) *float64 {
	return &v
}

// Value dereferences an optional metric, defaulting to zero.
func Value(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// WeekIndex returns the position of week in AvailableWeeks or -1.
func (d *Data) WeekIndex(week string) int {
	if d == nil {
		return -1
	}
	for i, w := range d.AvailableWeeks {
		if w == week {
			return i
		}
	}
	return -1
}

// LastWeek returns the most recent available week, or "" when none exist.
func (d *Data) LastWeek() string {
	if d == nil || len(d.AvailableWeeks) == 0 {
		return ""
	}
	return d.AvailableWeeks[len(d.AvailableWeeks)-1]
}

// Summary returns the aggregate record for week. The bool reports presence;
// a missing week yields an empty summary.
func (d *Data) Summary(week string) (WeekSummary, bool) {
	if d == nil || d.WeeklySummary == nil {
		return WeekSummary{}, false
	}
	s, ok := d.WeeklySummary[week]
	return s, ok
}

// Providers returns the provider records for week, never nil.
func (d *Data) Providers(week string) map[string]ProviderWeek {
	if d == nil || d.WeeklyEmployees[week] == nil {
		return map[string]ProviderWeek{}
	}
	return d.WeeklyEmployees[week]
}

// ServiceLines returns the service-line records for week, never nil.
func (d *Data) ServiceLines(week string) map[string]ServiceLineWeek {
	if d == nil || d.WeeklyUnits[week] == nil {
		return map[string]ServiceLineWeek{}
	}
	return d.WeeklyUnits[week]
}

// ProviderTrend returns the trend series for a provider id.
func (d *Data) ProviderTrend(id string) []TrendPoint {
	if d == nil || id == "" {
		return nil
	}
	return d.EmployeeTrends[id]
}

// ServiceLineTrend returns the trend series for a service line.
func (d *Data) ServiceLineTrend(name string) []TrendPoint {
	if d == nil || name == "" {
		return nil
	}
	return d.UnitTrends[name]
}

// ProviderIDs lists provider ids seen in the trend map, in id order.
func (d *Data) ProviderIDs() []string {
	if d == nil {
		return nil
	}
	ids := make([]string, 0, len(d.EmployeeTrends))
	for id := range d.EmployeeTrends {
		ids = append(ids, id)
	}
	SortIDs(ids)
	return ids
}

// LessID orders provider ids numerically when both parse as integers and
// lexically otherwise, mirroring how the reporting job keys its maps.
func LessID(a, b string) bool {
	ai, aErr := strconv.ParseInt(a, 10, 64)
	bi, bErr := strconv.ParseInt(b, 10, 64)
	switch {
	case aErr == nil && bErr == nil:
		return ai < bi
	case aErr == nil:
		return true
	case bErr == nil:
		return false
	default:
		return a < b
	}
}

// SortIDs sorts ids in place using LessID.
func SortIDs(ids []string) {
	sort.SliceStable(ids, func(i, j int) bool { return LessID(ids[i], ids[j]) })
}
