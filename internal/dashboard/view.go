// Package dashboard derives the weekly operations views from the dashboard
// payload and the current selection. Everything here is a pure function of
// its inputs; callers rebuild the view on every selection change.
package dashboard

import (
	"github.com/asterix-health/opsboard/internal/opsdata"
)

// WeekOption is one entry of the week dropdown.
type WeekOption struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// MetricCard is a headline figure with an optional week-over-week badge.
type MetricCard struct {
	Key        string `json:"key"`
	Icon       string `json:"icon"`
	Title      string `json:"title"`
	Value      string `json:"value"`
	Subtitle   string `json:"subtitle"`
	Change     *int   `json:"change"`
	ShowTrend  bool   `json:"show_trend"`
	TrendUp    bool   `json:"trend_up"`
	TrendLabel string `json:"trend_label,omitempty"`
}

// SortOption is a leaderboard sort toggle.
type SortOption struct {
	Key    SortKey `json:"key"`
	Label  string  `json:"label"`
	Active bool    `json:"active"`
	Query  string  `json:"-"`
}

// View is everything the dashboard page renders.
type View struct {
	Selection Selection    `json:"selection"`
	Weeks     []WeekOption `json:"weeks"`
	Nav       Nav          `json:"nav"`
	WeekShort string       `json:"week_short"`
	WeekLong  string       `json:"week_long"`
	Changes   WeekChanges  `json:"changes"`
	Cards     []MetricCard `json:"cards"`

	OverallTitle string       `json:"overall_title"`
	OverallTrend []TrendPoint `json:"overall_trend"`

	SortOptions  []SortOption     `json:"sort_options"`
	Leaderboard  []ProviderRow    `json:"leaderboard"`
	ServiceLines []ServiceLineRow `json:"service_lines"`

	ProviderLabel           string       `json:"provider_label,omitempty"`
	ProviderTrend           []TrendPoint `json:"provider_trend"`
	ShowProviderPanel       bool         `json:"show_provider_panel"`
	ProviderDismissQuery    string       `json:"-"`
	ServiceLineTrend        []TrendPoint `json:"service_line_trend"`
	ShowServiceLinePanel    bool         `json:"show_service_line_panel"`
	ServiceLineDismissQuery string       `json:"-"`
}

// Build derives the full view for sel. Missing data never fails: absent
// weeks, providers and service lines produce empty sections.
func Build(data *opsdata.Data, sel Selection) View {
	sel.Sort = ParseSortKey(string(sel.Sort))

	v := View{
		Selection:    sel,
		Nav:          Navigation(data, sel),
		WeekShort:    ShortDate(sel.Week),
		WeekLong:     LongDate(sel.Week),
		Changes:      Changes(data, sel.Week),
		OverallTitle: OverallTrendTitle(data),
		OverallTrend: OverallTrend(data),
	}

	if data != nil {
		v.Weeks = make([]WeekOption, 0, len(data.AvailableWeeks))
		for _, week := range data.AvailableWeeks {
			v.Weeks = append(v.Weeks, WeekOption{Value: week, Label: OptionLabel(week), Selected: week == sel.Week})
		}
	}

	summary, _ := data.Summary(sel.Week)
	v.Cards = metricCards(summary, v.Changes, v.WeekShort)

	for _, key := range SortKeys {
		v.SortOptions = append(v.SortOptions, SortOption{
			Key:    key,
			Label:  key.Label(),
			Active: key == sel.Sort,
			Query:  sel.WithSort(key).Query().Encode(),
		})
	}

	v.Leaderboard = Leaderboard(data, sel.Week, sel.Sort)
	for i := range v.Leaderboard {
		row := &v.Leaderboard[i]
		row.Selected = row.ID == sel.Provider
		row.ToggleQuery = sel.ToggleProvider(row.ID).Query().Encode()
	}

	v.ServiceLines = ServiceLines(data, sel.Week)
	for i := range v.ServiceLines {
		row := &v.ServiceLines[i]
		row.Selected = row.Name == sel.ServiceLine
		row.ToggleQuery = sel.ToggleServiceLine(row.Name).Query().Encode()
	}

	v.ProviderTrend = ProviderTrend(data, sel.Provider)
	v.ShowProviderPanel = sel.Provider != "" && len(v.ProviderTrend) > 0
	if sel.Provider != "" {
		v.ProviderLabel = ProviderLabelPrefix + sel.Provider
	}
	v.ProviderDismissQuery = sel.ClearProvider().Query().Encode()

	v.ServiceLineTrend = ServiceLineTrend(data, sel.ServiceLine)
	v.ShowServiceLinePanel = sel.ServiceLine != "" && len(v.ServiceLineTrend) > 0
	v.ServiceLineDismissQuery = sel.ClearServiceLine().Query().Encode()

	return v
}

// Card returns the metric card with key, or false.
func (v View) Card(key string) (MetricCard, bool) {
	for _, c := range v.Cards {
		if c.Key == key {
			return c, true
		}
	}
	return MetricCard{}, false
}

// Metric card keys.
const (
	CardHours     = "hours"
	CardTasks     = "tasks"
	CardRevenue   = "revenue"
	CardProviders = "providers"
)

func metricCards(s opsdata.WeekSummary, changes WeekChanges, weekShort string) []MetricCard {
	shifts := "0"
	if v := opsdata.Value(s.TotalShifts); v != 0 {
		shifts = Plain(v)
	}
	providers := "0"
	if v := opsdata.Value(s.ActiveProviders); v != 0 {
		providers = Plain(v)
	}
	return []MetricCard{
		card(CardHours, "⏱", "Total Hours", OptionalFixed(s.TotalHours, 1), "Across "+shifts+" shifts", changes.Hours),
		card(CardTasks, "✓", "Tasks Completed", OptionalGrouped(s.TotalTasks), OptionalFixed(s.AvgTasksPerHour, 1)+" tasks/hour avg", changes.Tasks),
		card(CardRevenue, "$", "Revenue Generated", Revenue(s.TotalRevenue), "Billable hours processed", changes.Revenue),
		card(CardProviders, "👥", "Active Providers", providers, "Week of "+weekShort, changes.Providers),
	}
}

func card(key, icon, title, value, subtitle string, change *int) MetricCard {
	c := MetricCard{Key: key, Icon: icon, Title: title, Value: value, Subtitle: subtitle, Change: change}
	if ShowTrend(change) {
		c.ShowTrend = true
		c.TrendUp = *change > 0
		c.TrendLabel = TrendLabel(change)
	}
	return c
}
