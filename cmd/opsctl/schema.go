package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/asterix-health/opsboard/internal/opsdata"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema dashboard exports must satisfy",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSchema(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}

func runSchema(out io.Writer) error {
	_, err := out.Write(opsdata.Schema())
	return err
}
