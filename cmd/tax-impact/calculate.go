package main

import (
	"github.com/iwvelando/tax-impact/internal/tax"
	"github.com/iwvelando/tax-impact/pkg/constants"
	"github.com/iwvelando/tax-impact/pkg/output"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newCalculateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "calculate <monthly-income>...",
		Short: "Compute tax for one or more monthly incomes",
		Long: `Compute monthly and yearly PAYE and the sector breakdown for each
gross monthly income given. Thousands separators are accepted ("50,000").
Input that is not a number is computed as zero income.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, opts, nil)
			if err != nil {
				return err
			}
			defer func() {
				_ = a.logger.Sync()
			}()

			format, err := opts.resolveOutputFormat(a.conf)
			if err != nil {
				return err
			}

			results := make([]tax.Result, 0, len(args))
			for _, raw := range args {
				results = append(results, a.calc.CalculateString(raw))
			}
			a.logger.Debug("computed results",
				zap.String("op", "main.calculate"),
				zap.Int("count", len(results)),
			)

			out := cmd.OutOrStdout()
			switch format {
			case constants.OutputFormatCSV:
				return output.CsvFormat(out, results)
			case constants.OutputFormatJSON:
				return output.JSONFormat(out, a.conf.Currency, results)
			default:
				output.PrettyFormat(out, a.conf.Currency, results)
			}
			return nil
		},
	}
}
