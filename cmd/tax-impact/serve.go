package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/iwvelando/tax-impact/internal/server"
	"github.com/iwvelando/tax-impact/pkg/constants"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var serverConfigPath, address, maxBodySize string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON API",
		Long: `Serve the tax computation over HTTP:
  GET/POST /api/tax   - compute for one income
  GET      /api/schedule
  GET      /api/version`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			serverConf, err := server.LoadConfig(serverConfigPath)
			if err != nil {
				return err
			}
			if err := applyServeOverrides(serverConf, address, maxBodySize); err != nil {
				return err
			}

			// Server config logging wins when it sets anything.
			loggingOverride := &serverConf.Logging
			if serverConf.Logging.Level == "" && serverConf.Logging.Format == "" && serverConf.Logging.OutputFile == "" {
				loggingOverride = nil
			}

			a, err := setup(cmd, opts, loggingOverride)
			if err != nil {
				return err
			}
			defer func() {
				_ = a.logger.Sync()
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			handler := server.NewHandler(a.logger, a.calc, a.conf.Currency, serverConf.BodySizeBytes(), version)
			if err := server.Serve(ctx, a.logger, serverConf.Address, handler); err != nil {
				a.logger.Error("server stopped with error",
					zap.String("op", "main.serve"),
					zap.Error(err),
				)
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&serverConfigPath, "server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	cmd.Flags().StringVar(&address, "address", "", "listen address override")
	cmd.Flags().StringVar(&maxBodySize, "max-body-size", "", "request body limit override, e.g. 512, 64K or 1M")
	return cmd
}

// applyServeOverrides layers the serve flags over the loaded server config.
// Empty values leave the config untouched.
func applyServeOverrides(conf *server.Config, address, maxBodySize string) error {
	if address != "" {
		conf.Address = address
	}
	if maxBodySize == "" {
		return nil
	}
	size, err := server.ParseSize(maxBodySize)
	if err != nil {
		return fmt.Errorf("invalid --max-body-size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("invalid --max-body-size %q: must be positive", maxBodySize)
	}
	conf.SetBodySizeBytes(size)
	return nil
}
