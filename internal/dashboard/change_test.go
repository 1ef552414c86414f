package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asterix-health/opsboard/internal/opsdata"
)

func TestChange(t *testing.T) {
	f := opsdata.Float
	tests := []struct {
		name     string
		cur, prv *float64
		want     *int
	}{
		{"increase", f(150), f(100), intPtr(50)},
		{"decrease", f(88), f(100), intPtr(-12)},
		{"rounds half up", f(5), f(8), intPtr(-37)},
		{"thirds", f(4), f(3), intPtr(33)},
		{"previous zero", f(10), f(0), nil},
		{"previous absent", f(10), nil, nil},
		{"current absent", nil, f(10), nil},
		{"flat", f(10), f(10), intPtr(0)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Change(tc.cur, tc.prv)
			if tc.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tc.want, *got)
		})
	}
}

func TestShowTrend(t *testing.T) {
	assert.False(t, ShowTrend(nil))
	assert.False(t, ShowTrend(intPtr(0)))
	assert.True(t, ShowTrend(intPtr(1)))
	assert.True(t, ShowTrend(intPtr(-199)))
	assert.False(t, ShowTrend(intPtr(200)))
	assert.False(t, ShowTrend(intPtr(-250)))
}

func TestChangesWithoutPredecessorSummary(t *testing.T) {
	data := &opsdata.Data{
		AvailableWeeks: []string{"2026-01-05", "2026-01-12"},
		WeeklySummary: map[string]opsdata.WeekSummary{
			"2026-01-12": {TotalHours: opsdata.Float(150)},
		},
	}
	assert.Equal(t, WeekChanges{}, Changes(data, "2026-01-12"))
	assert.Equal(t, WeekChanges{}, Changes(data, "2026-01-05"))
	assert.Equal(t, WeekChanges{}, Changes(data, "missing"))
}

func TestChangesPreviousZero(t *testing.T) {
	data := &opsdata.Data{
		AvailableWeeks: []string{"2026-01-05", "2026-01-12"},
		WeeklySummary: map[string]opsdata.WeekSummary{
			"2026-01-05": {TotalHours: opsdata.Float(0), TotalTasks: opsdata.Float(10)},
			"2026-01-12": {TotalHours: opsdata.Float(150), TotalTasks: opsdata.Float(25)},
		},
	}
	changes := Changes(data, "2026-01-12")
	assert.Nil(t, changes.Hours)
	require.NotNil(t, changes.Tasks)
	assert.Equal(t, 150, *changes.Tasks)
	assert.Nil(t, changes.Revenue)
	assert.Nil(t, changes.Providers)
}

func intPtr(v int) *int { return &v }
