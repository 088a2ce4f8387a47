package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turbolytics/arquivo/internal/period"
)

func newPeriodCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "period",
		Short: "Date helpers for the legacy backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newPeriodConvertCommand())
	return cmd
}

// newPeriodConvertCommand converts between YYYY-MM-DD and the three-part
// day/month/year form.
func newPeriodConvertCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <date>",
		Short: "Converts YYYY-MM-DD to day/month/year and back",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arg := strings.TrimSpace(args[0])

			if parts := strings.Split(arg, "/"); len(parts) == 3 {
				iso, err := period.Legacy{Day: parts[0], Month: parts[1], Year: parts[2]}.ISO()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), iso)
				return nil
			}

			l, err := period.FromISO(arg)
			if err != nil {
				return err
			}
			if l, err = l.Padded(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s/%s/%s\n", l.Day, l.Month, l.Year)
			return nil
		},
	}
}
