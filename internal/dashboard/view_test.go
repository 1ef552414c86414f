package dashboard

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asterix-health/opsboard/internal/opsdata"
)

func sampleData(t *testing.T) *opsdata.Data {
	t.Helper()
	raw, err := os.ReadFile("testdata/sample.json")
	require.NoError(t, err)
	data, err := opsdata.Parse(raw)
	require.NoError(t, err)
	return data
}

func twoWeekData() *opsdata.Data {
	return &opsdata.Data{
		AvailableWeeks: []string{"2026-01-05", "2026-01-12"},
		WeeklySummary: map[string]opsdata.WeekSummary{
			"2026-01-05": {TotalHours: opsdata.Float(100)},
			"2026-01-12": {TotalHours: opsdata.Float(150)},
		},
		WeeklyEmployees: map[string]map[string]opsdata.ProviderWeek{
			"2026-01-12": {
				"A": {TotalTime: 40},
				"B": {TotalTime: 60},
			},
		},
	}
}

func TestBuildShowsHoursChangeOnCard(t *testing.T) {
	view := Build(twoWeekData(), Selection{Week: "2026-01-12", Sort: SortTotalHours})

	card, ok := view.Card(CardHours)
	require.True(t, ok)
	require.NotNil(t, card.Change)
	assert.Equal(t, 50, *card.Change)
	assert.True(t, card.ShowTrend)
	assert.True(t, card.TrendUp)
	assert.Equal(t, "↑ 50%", card.TrendLabel)
	assert.Equal(t, "+50%", SignedPercent(card.Change))
	assert.Equal(t, "150.0", card.Value)
}

func TestBuildLeaderboardOrder(t *testing.T) {
	view := Build(twoWeekData(), Selection{Week: "2026-01-12", Sort: SortTotalHours})

	require.Len(t, view.Leaderboard, 2)
	assert.Equal(t, "B", view.Leaderboard[0].ID)
	assert.Equal(t, "A", view.Leaderboard[1].ID)
	assert.Equal(t, "Doctor B", view.Leaderboard[0].Label)
	assert.Equal(t, 1, view.Leaderboard[0].Rank)
}

func TestBuildFirstWeekHasNoBadges(t *testing.T) {
	data := sampleData(t)
	view := Build(data, Selection{Week: data.AvailableWeeks[0]})

	assert.Equal(t, WeekChanges{}, view.Changes)
	for _, card := range view.Cards {
		assert.Nil(t, card.Change, card.Key)
		assert.False(t, card.ShowTrend, card.Key)
		assert.Empty(t, card.TrendLabel, card.Key)
	}
	assert.False(t, view.Nav.HasPrev)
	assert.True(t, view.Nav.HasNext)
}

func TestBuildSampleCards(t *testing.T) {
	data := sampleData(t)
	view := Build(data, DefaultSelection(data))

	assert.Equal(t, "2026-01-05", view.Selection.Week)
	assert.Equal(t, "Jan 5", view.WeekShort)
	assert.Equal(t, "January 5", view.WeekLong)

	expect := map[string]struct {
		value    string
		subtitle string
		change   int
	}{
		CardHours:     {"150.0", "Across 18 shifts", 50},
		CardTasks:     {"1,260", "8.4 tasks/hour avg", 40},
		CardRevenue:   {"$22.5k", "Billable hours processed", 50},
		CardProviders: {"4", "Week of Jan 5", 33},
	}
	require.Len(t, view.Cards, len(expect))
	for key, want := range expect {
		card, ok := view.Card(key)
		require.True(t, ok, key)
		assert.Equal(t, want.value, card.Value, key)
		assert.Equal(t, want.subtitle, card.Subtitle, key)
		require.NotNil(t, card.Change, key)
		assert.Equal(t, want.change, *card.Change, key)
	}
}

func TestBuildMissingWeekDegradesToEmpty(t *testing.T) {
	data := sampleData(t)
	view := Build(data, Selection{Week: "2031-01-01"})

	assert.Empty(t, view.Leaderboard)
	assert.Empty(t, view.ServiceLines)
	assert.Equal(t, WeekChanges{}, view.Changes)
	card, _ := view.Card(CardHours)
	assert.Equal(t, "0", card.Value)
	assert.Equal(t, "Across 0 shifts", card.Subtitle)
	revenue, _ := view.Card(CardRevenue)
	assert.Equal(t, "$0.0k", revenue.Value)

	assert.Equal(t, -1, view.Nav.Index)
	assert.False(t, view.Nav.HasPrev)
	assert.True(t, view.Nav.HasNext)
	assert.Equal(t, data.AvailableWeeks[0], view.Nav.Next)
	for _, opt := range view.Weeks {
		assert.False(t, opt.Selected)
	}
}

func TestBuildNilData(t *testing.T) {
	view := Build(nil, Selection{})

	assert.Empty(t, view.Weeks)
	assert.Empty(t, view.Leaderboard)
	assert.Empty(t, view.OverallTrend)
	assert.Len(t, view.Cards, 4)
	assert.Equal(t, SortTotalHours, view.Selection.Sort)
}

func TestBuildProviderPanelToggles(t *testing.T) {
	data := sampleData(t)
	sel := DefaultSelection(data).ToggleProvider("7")
	view := Build(data, sel)

	require.True(t, view.ShowProviderPanel)
	assert.Equal(t, "Doctor 7", view.ProviderLabel)
	trend := data.ProviderTrend("7")
	require.Len(t, view.ProviderTrend, len(trend))
	for i, p := range trend {
		assert.Equal(t, p.Week, view.ProviderTrend[i].Week)
		assert.Equal(t, p.Hours, view.ProviderTrend[i].Hours)
		assert.Equal(t, p.Tasks, view.ProviderTrend[i].Tasks)
	}
	for _, row := range view.Leaderboard {
		assert.Equal(t, row.ID == "7", row.Selected, row.ID)
	}
	assert.NotContains(t, view.ProviderDismissQuery, ParamProvider)

	cleared := Build(data, sel.ToggleProvider("7"))
	assert.False(t, cleared.ShowProviderPanel)
	assert.Empty(t, cleared.ProviderTrend)
	assert.Empty(t, cleared.ProviderLabel)
}

func TestBuildProviderWithoutHistoryHidesPanel(t *testing.T) {
	data := sampleData(t)
	view := Build(data, DefaultSelection(data).ToggleProvider("21"))

	assert.False(t, view.ShowProviderPanel)
	assert.Empty(t, view.ProviderTrend)
}

func TestBuildServiceLinePanel(t *testing.T) {
	data := sampleData(t)
	view := Build(data, DefaultSelection(data).ToggleServiceLine("Urgent Care"))

	require.True(t, view.ShowServiceLinePanel)
	require.Len(t, view.ServiceLineTrend, 3)
	assert.Equal(t, "Dec 22", view.ServiceLineTrend[0].Label)
	assert.Equal(t, 80.0, view.ServiceLineTrend[2].Hours)
	for _, row := range view.ServiceLines {
		assert.Equal(t, row.Name == "Urgent Care", row.Selected, row.Name)
	}
}

func TestBuildSortOptions(t *testing.T) {
	data := sampleData(t)
	view := Build(data, DefaultSelection(data).WithSort(SortTasksPerHour))

	require.Len(t, view.SortOptions, 3)
	for _, opt := range view.SortOptions {
		assert.Equal(t, opt.Key == SortTasksPerHour, opt.Active, opt.Key)
		assert.Contains(t, opt.Query, "sort="+string(opt.Key))
		assert.Contains(t, opt.Query, "week=2026-01-05")
	}
}

func TestBuildWeekOptions(t *testing.T) {
	data := sampleData(t)
	view := Build(data, Selection{Week: "2025-12-29"})

	require.Len(t, view.Weeks, 3)
	assert.Equal(t, "Week of December 29, 2025", view.Weeks[1].Label)
	assert.True(t, view.Weeks[1].Selected)
	assert.Equal(t, "2025-12-22", view.Nav.Prev)
	assert.Equal(t, "2026-01-05", view.Nav.Next)
	assert.Equal(t, "Overall Performance Trends (December - January)", view.OverallTitle)
	require.Len(t, view.OverallTrend, 3)
	assert.Equal(t, 100.0, view.OverallTrend[1].Hours)
}
