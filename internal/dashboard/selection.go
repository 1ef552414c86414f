package dashboard

import (
	"net/url"

	"github.com/asterix-health/opsboard/internal/opsdata"
)

// SortKey names the leaderboard column rows are ordered by.
type SortKey string

// Supported leaderboard sort keys.
const (
	SortTotalHours   SortKey = "total_hours"
	SortTotalTasks   SortKey = "total_tasks"
	SortTasksPerHour SortKey = "tasks_per_hour"
)

// SortKeys lists the keys in toggle order.
var SortKeys = []SortKey{SortTotalHours, SortTotalTasks, SortTasksPerHour}

// ParseSortKey maps a raw value onto a known key, defaulting to total hours.
func ParseSortKey(raw string) SortKey {
	switch SortKey(raw) {
	case SortTotalTasks:
		return SortTotalTasks
	case SortTasksPerHour:
		return SortTasksPerHour
	default:
		return SortTotalHours
	}
}

// Label is the toggle caption shown above the leaderboard.
func (k SortKey) Label() string {
	switch k {
	case SortTotalTasks:
		return "Tasks"
	case SortTasksPerHour:
		return "Efficiency"
	default:
		return "Hours"
	}
}

// Query parameter names carrying the selection.
const (
	ParamWeek        = "week"
	ParamSort        = "sort"
	ParamProvider    = "provider"
	ParamServiceLine = "service_line"
)

// Selection is the complete view state: four independent values with no
// cross-validation between them.
type Selection struct {
	Week        string  `json:"week"`
	Sort        SortKey `json:"sort"`
	Provider    string  `json:"provider,omitempty"`
	ServiceLine string  `json:"service_line,omitempty"`
}

// DefaultSelection starts on the most recent week, sorted by hours.
func DefaultSelection(data *opsdata.Data) Selection {
	return Selection{Week: data.LastWeek(), Sort: SortTotalHours}
}

// WithWeek returns a copy focused on week.
func (s Selection) WithWeek(week string) Selection {
	s.Week = week
	return s
}

// WithSort returns a copy ordered by key.
func (s Selection) WithSort(key SortKey) Selection {
	s.Sort = ParseSortKey(string(key))
	return s
}

// ToggleProvider selects id, or clears the drill-down when id is already selected.
func (s Selection) ToggleProvider(id string) Selection {
	if s.Provider == id {
		s.Provider = ""
	} else {
		s.Provider = id
	}
	return s
}

// ToggleServiceLine selects name, or clears it when already selected.
func (s Selection) ToggleServiceLine(name string) Selection {
	if s.ServiceLine == name {
		s.ServiceLine = ""
	} else {
		s.ServiceLine = name
	}
	return s
}

// ClearProvider dismisses the provider drill-down.
func (s Selection) ClearProvider() Selection {
	s.Provider = ""
	return s
}

// ClearServiceLine dismisses the service-line drill-down.
func (s Selection) ClearServiceLine() Selection {
	s.ServiceLine = ""
	return s
}

// Query encodes the selection for links and forms.
func (s Selection) Query() url.Values {
	v := url.Values{}
	if s.Week != "" {
		v.Set(ParamWeek, s.Week)
	}
	v.Set(ParamSort, string(ParseSortKey(string(s.Sort))))
	if s.Provider != "" {
		v.Set(ParamProvider, s.Provider)
	}
	if s.ServiceLine != "" {
		v.Set(ParamServiceLine, s.ServiceLine)
	}
	return v
}

// Nav describes previous/next week navigation around the selected week.
type Nav struct {
	Index     int    `json:"index"`
	Prev      string `json:"prev,omitempty"`
	Next      string `json:"next,omitempty"`
	HasPrev   bool   `json:"has_prev"`
	HasNext   bool   `json:"has_next"`
	PrevQuery string `json:"-"`
	NextQuery string `json:"-"`
}

// Navigation resolves the neighbours of the selected week. A week missing
// from the list has index -1: previous is disabled and next jumps to the
// first available week.
func Navigation(data *opsdata.Data, sel Selection) Nav {
	idx := data.WeekIndex(sel.Week)
	nav := Nav{Index: idx}
	weeks := []string(nil)
	if data != nil {
		weeks = data.AvailableWeeks
	}
	if idx > 0 {
		nav.HasPrev = true
		nav.Prev = weeks[idx-1]
		nav.PrevQuery = sel.WithWeek(nav.Prev).Query().Encode()
	}
	if idx < len(weeks)-1 {
		nav.HasNext = true
		nav.Next = weeks[idx+1]
		nav.NextQuery = sel.WithWeek(nav.Next).Query().Encode()
	}
	return nav
}
