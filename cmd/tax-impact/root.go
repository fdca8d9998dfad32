package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/iwvelando/tax-impact/internal/config"
	"github.com/iwvelando/tax-impact/internal/logging"
	"github.com/iwvelando/tax-impact/internal/tax"
	"github.com/iwvelando/tax-impact/pkg/constants"
	"github.com/iwvelando/tax-impact/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootOptions struct {
	configPath   string
	logLevel     string
	outputFormat string
}

// app is everything a subcommand needs after flags and config are read.
type app struct {
	conf   *config.Configuration
	logger *zap.Logger
	calc   *tax.Calculator
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "tax-impact",
		Short: "Estimate monthly PAYE and where it goes",
		Long: `tax-impact computes the monthly income tax owed under a progressive
bracket schedule, projects it over a year and splits the yearly amount
across budget sectors.

Available subcommands:
  calculate - Compute tax for one or more monthly incomes
  schedule  - Show the configured brackets and sector weights
  serve     - Run the JSON API`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", constants.DefaultConfigFile, "path to configuration file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.outputFormat, "output-format", "", "type of output override: pretty, csv, json")

	cmd.AddCommand(
		newCalculateCmd(opts),
		newScheduleCmd(opts),
		newServeCmd(opts),
	)
	return cmd
}

// loadConfiguration reads the config file. The default path is optional;
// an explicitly passed path must exist.
func loadConfiguration(cmd *cobra.Command, opts *rootOptions) (*config.Configuration, error) {
	path := opts.configPath
	if !cmd.Flags().Changed("config") {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			path = ""
		}
	}

	conf, err := config.LoadConfiguration(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration at %s: %w", opts.configPath, err)
	}
	return conf, nil
}

func setup(cmd *cobra.Command, opts *rootOptions, loggingOverride *config.LoggingConfig) (*app, error) {
	conf, err := loadConfiguration(cmd, opts)
	if err != nil {
		return nil, err
	}

	loggingConfig := conf.Logging
	if loggingOverride != nil {
		loggingConfig = *loggingOverride
	}
	logger, err := logging.NewLogger(loggingConfig, opts.logLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	calc, err := conf.NewCalculator(logger)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}

	return &app{conf: conf, logger: logger, calc: calc}, nil
}

// resolveOutputFormat picks the output format: CLI override, then config, then
// pretty.
func (opts *rootOptions) resolveOutputFormat(conf *config.Configuration) (string, error) {
	format := conf.Output.Format
	if opts.outputFormat != "" {
		format = opts.outputFormat
	}
	if format == "" {
		format = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(format); err != nil {
		return "", err
	}
	return format, nil
}
