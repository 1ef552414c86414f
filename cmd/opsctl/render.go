package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/asterix-health/opsboard/internal/dashboard"
	"github.com/asterix-health/opsboard/internal/dashboard/export"
	"github.com/asterix-health/opsboard/internal/dashboard/ui"
	"github.com/asterix-health/opsboard/internal/view"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a static HTML snapshot of the dashboard",
	RunE:  runRenderCmd,
}

var (
	renderInput string
	renderOut   string
	renderBrand string
	renderSel   selectionFlags
)

func init() {
	renderCmd.Flags().StringVarP(&renderInput, "in", "i", "", "Path to dashboard export JSON (required)")
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "", "Output HTML path, - for stdout (required)")
	renderCmd.Flags().StringVar(&renderBrand, "brand", "Ops Board", "Title shown on the snapshot")
	renderCmd.Flags().StringVar(&renderSel.week, "week", "", "Week to render (YYYY-MM-DD, defaults to the latest)")
	renderCmd.Flags().StringVar(&renderSel.sort, "sort", "", "Leaderboard sort: total_hours, total_tasks or tasks_per_hour")
	renderCmd.Flags().StringVar(&renderSel.provider, "provider", "", "Provider id to drill into")
	renderCmd.Flags().StringVar(&renderSel.serviceLine, "service-line", "", "Service line to drill into")

	if err := renderCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}
	if err := renderCmd.MarkFlagRequired("out"); err != nil {
		panic(fmt.Sprintf("failed to mark out flag as required: %v", err))
	}

	rootCmd.AddCommand(renderCmd)
}

func runRenderCmd(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	if renderOut != "-" {
		f, err := os.Create(renderOut)
		if err != nil {
			return fmt.Errorf("create %s: %w", renderOut, err)
		}
		defer f.Close()
		out = f
	}
	if err := runRender(cmd.Context(), out, renderInput, renderBrand, renderSel, time.Now); err != nil {
		return err
	}
	if renderOut != "-" {
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", renderOut)
	}
	return nil
}

func runRender(ctx context.Context, out io.Writer, input, brand string, flags selectionFlags, now func() time.Time) error {
	if ctx == nil {
		ctx = context.Background()
	}
	data, err := loadData(input)
	if err != nil {
		return err
	}
	sel, err := flags.resolve(data)
	if err != nil {
		return err
	}
	page, err := ui.BuildPage(ctx, dashboard.Build(data, sel), ui.SVG{}, ui.SVG{})
	if err != nil {
		return fmt.Errorf("render charts: %w", err)
	}
	page.GeneratedAt = data.GeneratedAt
	page.Source = "file:" + input
	page.PrintedAt = now().UTC()

	engine, err := view.NewEngine()
	if err != nil {
		return err
	}
	return engine.Execute(out, export.PrintTemplate, view.TemplateData{
		Title: "Weekly Operations",
		Brand: brand,
		Data:  page,
	})
}
