package dashboard

import (
	"math"
	"sort"

	"github.com/asterix-health/opsboard/internal/opsdata"
)

// ServiceLineRow is one service-line card.
type ServiceLineRow struct {
	Name        string   `json:"name"`
	Hours       float64  `json:"hours"`
	Tasks       float64  `json:"tasks"`
	Efficiency  *float64 `json:"efficiency"`
	Selected    bool     `json:"selected"`
	ToggleQuery string   `json:"-"`
}

// Efficiency is tasks per hour rounded to one decimal. Zero hours has no
// meaningful rate and yields nil, rendered as a dash.
func Efficiency(tasks, hours float64) *float64 {
	if hours == 0 || math.IsNaN(hours) || math.IsNaN(tasks) {
		return nil
	}
	v := roundHalfUp(tasks/hours*10) / 10
	return &v
}

// ServiceLines projects the service lines active in week, busiest first.
func ServiceLines(data *opsdata.Data, week string) []ServiceLineRow {
	units := data.ServiceLines(week)
	rows := make([]ServiceLineRow, 0, len(units))
	for name, u := range units {
		rows = append(rows, ServiceLineRow{
			Name:       name,
			Hours:      u.TotalTime,
			Tasks:      u.TasksCompleted,
			Efficiency: Efficiency(u.TasksCompleted, u.TotalTime),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Hours != rows[j].Hours {
			return rows[i].Hours > rows[j].Hours
		}
		return rows[i].Name < rows[j].Name
	})
	return rows
}
