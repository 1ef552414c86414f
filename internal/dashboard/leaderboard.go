package dashboard

import (
	"sort"

	"github.com/asterix-health/opsboard/internal/opsdata"
)

// ProviderLabelPrefix is how providers are addressed in the UI.
const ProviderLabelPrefix = "Doctor "

// ProviderRow is one leaderboard entry.
type ProviderRow struct {
	ID             string  `json:"id"`
	Label          string  `json:"label"`
	Hours          float64 `json:"total_hours"`
	Tasks          float64 `json:"total_tasks"`
	Shifts         float64 `json:"shifts"`
	TasksPerHour   float64 `json:"tasks_per_hour"`
	AvgShiftLength float64 `json:"avg_shift_length"`
	Rank           int     `json:"rank"`
	TopThree       bool    `json:"top_three"`
	Selected       bool    `json:"selected"`
	ToggleQuery    string  `json:"-"`
}

func (r ProviderRow) metric(key SortKey) float64 {
	switch key {
	case SortTotalTasks:
		return r.Tasks
	case SortTasksPerHour:
		return r.TasksPerHour
	default:
		return r.Hours
	}
}

// Leaderboard projects the providers active in week and orders them
// descending by key. Equal values fall back to provider id order so the
// output is deterministic.
func Leaderboard(data *opsdata.Data, week string, key SortKey) []ProviderRow {
	key = ParseSortKey(string(key))
	providers := data.Providers(week)
	rows := make([]ProviderRow, 0, len(providers))
	for id, p := range providers {
		rows = append(rows, ProviderRow{
			ID:             id,
			Label:          ProviderLabelPrefix + id,
			Hours:          p.TotalTime,
			Tasks:          p.TasksCompleted,
			Shifts:         p.TimesheetID,
			TasksPerHour:   p.TasksPerHour,
			AvgShiftLength: p.AvgShiftLength,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].metric(key), rows[j].metric(key)
		if a != b {
			return a > b
		}
		return opsdata.LessID(rows[i].ID, rows[j].ID)
	})
	for i := range rows {
		rows[i].Rank = i + 1
		rows[i].TopThree = i < 3
	}
	return rows
}
