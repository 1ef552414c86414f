package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/asterix-health/opsboard/internal/opsdata"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a dashboard export against the payload schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd.OutOrStdout(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(out io.Writer, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := opsdata.Validate(raw); err != nil {
		var verr *opsdata.ValidationError
		if errors.As(err, &verr) {
			for _, fe := range verr.Errors {
				fmt.Fprintf(out, "%s: %s\n", fe.Field, fe.Message)
			}
			return fmt.Errorf("%s: %d schema violation(s)", path, len(verr.Errors))
		}
		return err
	}
	data, err := opsdata.Decode(bytesReader(raw))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: ok (%d weeks, latest %s)\n", path, len(data.AvailableWeeks), data.LastWeek())
	return nil
}
