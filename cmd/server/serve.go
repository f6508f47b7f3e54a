package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"coviddash/internal/api"
	"coviddash/internal/config"
	"coviddash/internal/engine"
	"coviddash/internal/reactive"
	"coviddash/internal/render"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Load the data files and serve the dashboard",
		Long: `Loads both CSV files before listening. A missing file, a missing column or an
unparsable value stops the process; the dashboard is never served partially.`,
		Args: cobra.NoArgs,
		RunE: a.runServe,
	}
	cmd.Flags().StringP("address", "a", "", "listen address (default from config: localhost)")
	cmd.Flags().IntP("port", "p", 0, "listen port (default from config: 8050)")
	addDataFlags(cmd.Flags())
	return cmd
}

func addDataFlags(fs *pflag.FlagSet) {
	fs.String("cases", "", "day-wise case table CSV")
	fs.String("summary", "", "per-country summary CSV")
}

// applyFlags overrides conf with the flags the user actually set.
func applyFlags(fs *pflag.FlagSet, conf *config.Config) {
	fs.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "address":
			conf.Server.Addr = f.Value.String()
		case "port":
			conf.Server.Port, _ = fs.GetInt("port")
		case "cases":
			conf.Data.CasesFile = f.Value.String()
		case "summary":
			conf.Data.SummaryFile = f.Value.String()
		}
	})
}

// loadDashboard loads both tables and derives the startup state.
func (a *app) loadDashboard(ctx context.Context) (*engine.Dashboard, error) {
	ds, err := engine.LoadDataset(ctx, a.conf.Data.CasesFile, a.conf.Data.SummaryFile, engine.LoadOptions{Logger: a.logger})
	if err != nil {
		return nil, err
	}
	return engine.NewDashboard(ds), nil
}

func (a *app) runServe(cmd *cobra.Command, args []string) error {
	applyFlags(cmd.Flags(), &a.conf)
	if err := a.conf.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dash, err := a.loadDashboard(ctx)
	if err != nil {
		a.logger.Error("failed to load data", zap.Error(err))
		return err
	}
	totals := dash.Totals()
	a.logger.Info("dashboard ready",
		zap.Int("options", len(dash.Options())),
		zap.Int64("confirmed", totals.Confirmed),
		zap.Int64("deaths", totals.Deaths),
		zap.Int64("recovered", totals.Recovered),
	)

	rt := reactive.New(a.logger)
	if err := api.RegisterCallbacks(rt, dash); err != nil {
		return fmt.Errorf("register callbacks: %w", err)
	}

	h := api.NewHandler(dash, rt, render.Options{}, a.logger)
	e, err := api.NewServer(h, a.conf, a.logger)
	if err != nil {
		return err
	}
	return api.Serve(ctx, e, a.conf.Server, a.logger)
}
