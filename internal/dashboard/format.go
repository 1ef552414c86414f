package dashboard

import (
	"math"
	"strconv"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/asterix-health/opsboard/internal/opsdata"
)

const weekLayout = "2006-01-02"

// Dash stands in for values that cannot be computed.
const Dash = "–"

var printer = message.NewPrinter(language.AmericanEnglish)

// ParseWeek parses a week key (its start date).
func ParseWeek(week string) (time.Time, bool) {
	t, err := time.Parse(weekLayout, week)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func formatWeek(week, layout string) string {
	t, ok := ParseWeek(week)
	if !ok {
		return week
	}
	return t.Format(layout)
}

// ShortDate renders a week as "Jan 5".
func ShortDate(week string) string { return formatWeek(week, "Jan 2") }

// LongDate renders a week as "January 5".
func LongDate(week string) string { return formatWeek(week, "January 2") }

// OptionLabel renders the week dropdown entry.
func OptionLabel(week string) string {
	return "Week of " + formatWeek(week, "January 2, 2006")
}

// Fixed formats v with the given number of decimals, rounding halves up.
func Fixed(v float64, decimals int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Dash
	}
	scale := math.Pow(10, float64(decimals))
	return strconv.FormatFloat(roundHalfUp(v*scale)/scale, 'f', decimals, 64)
}

// Plain formats v with the shortest exact representation ("8", "8.6").
func Plain(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Grouped formats v with thousands separators ("1,260").
func Grouped(v float64) string {
	return printer.Sprintf("%v", number.Decimal(v, number.MaxFractionDigits(3)))
}

// OptionalFixed formats an optional metric, "0" when absent.
func OptionalFixed(v *float64, decimals int) string {
	if v == nil {
		return "0"
	}
	return Fixed(*v, decimals)
}

// OptionalGrouped formats an optional count, "0" when absent or zero.
func OptionalGrouped(v *float64) string {
	if v == nil || *v == 0 {
		return "0"
	}
	return Grouped(*v)
}

// Revenue renders an amount in thousands of dollars ("$22.5k").
func Revenue(v *float64) string {
	return "$" + Fixed(opsdata.Value(v)/1000, 1) + "k"
}

// EfficiencyLabel renders a service-line rate or a dash.
func EfficiencyLabel(v *float64) string {
	if v == nil {
		return Dash
	}
	return Fixed(*v, 1)
}

// TrendLabel renders a change badge ("↑ 50%").
func TrendLabel(change *int) string {
	if change == nil {
		return ""
	}
	c := *change
	if c > 0 {
		return "↑ " + strconv.Itoa(c) + "%"
	}
	return "↓ " + strconv.Itoa(-c) + "%"
}

// SignedPercent renders a change as "+50%" / "-12%", empty when undefined.
func SignedPercent(change *int) string {
	if change == nil {
		return ""
	}
	if *change > 0 {
		return "+" + strconv.Itoa(*change) + "%"
	}
	return strconv.Itoa(*change) + "%"
}
