package export

import (
	"encoding/csv"
	"errors"
	"io"
	"strconv"

	"github.com/asterix-health/opsboard/internal/dashboard"
)

// Section selects which part of the dashboard is exported.
type Section string

// Exportable sections.
const (
	SectionAll          Section = "all"
	SectionSummary      Section = "summary"
	SectionLeaderboard  Section = "leaderboard"
	SectionServiceLines Section = "service_lines"
	SectionTrend        Section = "trend"
)

// ErrUnknownSection is returned for a section name outside the known set.
var ErrUnknownSection = errors.New("export: unknown section")

// WriteCSV serialises the requested section of the view. SectionAll emits
// summary, leaderboard and service lines separated by blank records.
func WriteCSV(w io.Writer, view dashboard.View, section Section) error {
	writer := csv.NewWriter(w)

	var err error
	switch section {
	case SectionSummary:
		err = writeSummary(writer, view)
	case SectionLeaderboard:
		err = writeLeaderboard(writer, view.Leaderboard)
	case SectionServiceLines:
		err = writeServiceLines(writer, view.ServiceLines)
	case SectionTrend:
		err = writeTrend(writer, view.OverallTrend)
	case SectionAll, "":
		err = writeAll(writer, view)
	default:
		return ErrUnknownSection
	}
	if err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

func writeAll(writer *csv.Writer, view dashboard.View) error {
	if err := writeSummary(writer, view); err != nil {
		return err
	}
	if err := writer.Write([]string{""}); err != nil {
		return err
	}
	if err := writeLeaderboard(writer, view.Leaderboard); err != nil {
		return err
	}
	if err := writer.Write([]string{""}); err != nil {
		return err
	}
	return writeServiceLines(writer, view.ServiceLines)
}

func writeSummary(writer *csv.Writer, view dashboard.View) error {
	if err := writer.Write([]string{"Metric", "Value", "Change"}); err != nil {
		return err
	}
	if err := writer.Write([]string{"Week", view.Selection.Week, ""}); err != nil {
		return err
	}
	for _, card := range view.Cards {
		if err := writer.Write([]string{card.Title, card.Value, dashboard.SignedPercent(card.Change)}); err != nil {
			return err
		}
	}
	return nil
}

func writeLeaderboard(writer *csv.Writer, rows []dashboard.ProviderRow) error {
	if err := writer.Write([]string{"Rank", "Provider", "Hours", "Tasks", "Shifts", "Tasks/Hour", "Avg Shift"}); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write([]string{
			strconv.Itoa(row.Rank),
			row.Label,
			dashboard.Fixed(row.Hours, 1),
			dashboard.Plain(row.Tasks),
			dashboard.Plain(row.Shifts),
			dashboard.Fixed(row.TasksPerHour, 1),
			dashboard.Fixed(row.AvgShiftLength, 1),
		}); err != nil {
			return err
		}
	}
	return nil
}

func writeServiceLines(writer *csv.Writer, rows []dashboard.ServiceLineRow) error {
	if err := writer.Write([]string{"Service Line", "Hours", "Tasks", "Efficiency"}); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write([]string{
			row.Name,
			dashboard.Fixed(row.Hours, 1),
			dashboard.Plain(row.Tasks),
			dashboard.EfficiencyLabel(row.Efficiency),
		}); err != nil {
			return err
		}
	}
	return nil
}

func writeTrend(writer *csv.Writer, points []dashboard.TrendPoint) error {
	if err := writer.Write([]string{"Week", "Hours", "Tasks"}); err != nil {
		return err
	}
	for _, p := range points {
		if err := writer.Write([]string{p.Week, dashboard.Fixed(p.Hours, 1), dashboard.Plain(p.Tasks)}); err != nil {
			return err
		}
	}
	return nil
}
