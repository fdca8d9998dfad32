package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iwvelando/tax-impact/internal/tax"
	"github.com/iwvelando/tax-impact/pkg/constants"
	"github.com/iwvelando/tax-impact/pkg/format"
	"github.com/iwvelando/tax-impact/pkg/output"
	"github.com/spf13/cobra"
)

func newScheduleCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Show the configured brackets and sector weights",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, opts, nil)
			if err != nil {
				return err
			}
			defer func() {
				_ = a.logger.Sync()
			}()

			outputFormat, err := opts.resolveOutputFormat(a.conf)
			if err != nil {
				return err
			}

			schedule := a.calc.Schedule()
			sectors := a.calc.Sectors()
			if outputFormat == constants.OutputFormatJSON {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(output.NewScheduleView(a.conf.Currency, schedule, sectors))
			}

			printSchedule(cmd.OutOrStdout(), a.conf.Currency, schedule, sectors)
			return nil
		},
	}
}

func printSchedule(w io.Writer, currency string, schedule tax.Schedule, sectors []tax.SectorAllocation) {
	fmt.Fprintf(w, "--- Monthly brackets (%s) ---\n", currency)
	for _, b := range schedule.Brackets {
		upper := "and above"
		if !b.IsUnbounded() {
			upper = "to " + format.Currency("", b.Upper)
		}
		fmt.Fprintf(w, "%s %-12s %s\n", format.Currency("", b.Lower), upper, format.Rate(b.Rate))
	}
	fmt.Fprintf(w, "Personal relief: %s\n\n", format.Decimal(schedule.Relief))
	fmt.Fprintf(w, "--- Sector weights ---\n")
	for _, s := range sectors {
		fmt.Fprintf(w, "%-16s %s%%\n", s.Sector, format.Decimal(s.Percentage))
	}
}
