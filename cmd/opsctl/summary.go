package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/asterix-health/opsboard/internal/dashboard"
	"github.com/asterix-health/opsboard/internal/opsdata"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the weekly summary and leaderboard as plain text",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSummary(cmd.OutOrStdout(), summaryInput, summarySel, summaryProviders)
	},
}

var (
	summaryInput     string
	summarySel       selectionFlags
	summaryProviders bool
)

func init() {
	summaryCmd.Flags().StringVarP(&summaryInput, "in", "i", "", "Path to dashboard export JSON (required)")
	summaryCmd.Flags().StringVar(&summarySel.week, "week", "", "Week to summarise (defaults to the latest)")
	summaryCmd.Flags().StringVar(&summarySel.sort, "sort", "", "Leaderboard sort key")
	summaryCmd.Flags().BoolVar(&summaryProviders, "providers", false, "List every provider id with trend history")

	if err := summaryCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(out io.Writer, input string, flags selectionFlags, listProviders bool) error {
	data, err := loadData(input)
	if err != nil {
		return err
	}
	if listProviders {
		fmt.Fprintln(out, strings.Join(data.ProviderIDs(), "\n"))
		return nil
	}
	sel, err := flags.resolve(data)
	if err != nil {
		return err
	}
	writeSummary(out, data, dashboard.Build(data, sel))
	return nil
}

func writeSummary(out io.Writer, data *opsdata.Data, v dashboard.View) {
	fmt.Fprintf(out, "Week of %s\n\n", dashboard.LongDate(v.Selection.Week))
	if data.WeekIndex(v.Selection.Week) < 0 {
		fmt.Fprintln(out, "week not present in export")
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, c := range v.Cards {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Title, c.Value, c.Subtitle, dashboard.SignedPercent(c.Change))
	}
	_ = tw.Flush()

	fmt.Fprintf(out, "\nLeaderboard by %s\n", strings.ToLower(v.Selection.Sort.Label()))
	tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tProvider\tHours\tTasks\tTasks/hr")
	for _, row := range v.Leaderboard {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", row.Rank, row.Label, dashboard.Fixed(row.Hours, 1), dashboard.Grouped(row.Tasks), dashboard.Fixed(row.TasksPerHour, 1))
	}
	_ = tw.Flush()

	if len(v.ServiceLines) == 0 {
		return
	}
	fmt.Fprintln(out, "\nService lines")
	tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, row := range v.ServiceLines {
		fmt.Fprintf(tw, "%s\t%s h\t%s tasks\t%s tasks/hr\n", row.Name, dashboard.Fixed(row.Hours, 1), dashboard.Grouped(row.Tasks), dashboard.EfficiencyLabel(row.Efficiency))
	}
	_ = tw.Flush()
}
