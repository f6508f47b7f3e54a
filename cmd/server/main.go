package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"coviddash/internal/config"
	"coviddash/internal/logging"
)

// app is the state shared by one command tree: global flags, the loaded
// config and the logger built from it.
type app struct {
	configPath string
	logLevel   string
	logFormat  string

	conf   config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "coviddash",
		Short: "COVID-19 dashboard server",
		Long: `coviddash loads the day-wise case table and the per-country summary once at
startup and serves an interactive dashboard filtered by country.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			a.conf, err = config.Load(a.configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				a.conf.Log.Level = a.logLevel
			}
			if cmd.Flags().Changed("log-format") {
				a.conf.Log.Format = a.logFormat
			}

			a.logger, err = logging.New(a.conf.Log.Level, a.conf.Log.Format)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "json or console (default: console on a terminal)")

	rootCmd.AddCommand(newServeCmd(a), newExportCmd(a))
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
