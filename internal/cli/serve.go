package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/eommap/internal/config"
	"github.com/JonMunkholm/eommap/internal/core"
	"github.com/JonMunkholm/eommap/internal/metrics"
	"github.com/JonMunkholm/eommap/internal/web"
)

func newServeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Load the provider file and serve the dashboard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts.cfg)
		},
	}
}

// runServe loads the dataset once, then serves until SIGINT or SIGTERM.
// A load failure is returned before anything listens.
func runServe(ctx context.Context, cfg *config.Config) error {
	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"data", cfg.Data.Path,
		"top_n", cfg.Map.TopN,
		"rate_limit_enabled", cfg.Rate.Enabled,
		"metrics_enabled", cfg.Metrics.Enabled,
	)

	app, err := core.Init(cfg.Data.Path, core.InitOptions{TopN: cfg.Map.TopN})
	if err != nil {
		return err
	}

	var m *metrics.Manager
	if cfg.Metrics.Enabled {
		m = metrics.NewManager()
		m.SetDataset(app.Summary.TotalProviders, app.Summary.DistinctRegions, app.LoadTime, app.LoadedAt)
	}

	server, err := web.NewServer(app, cfg, m)
	if err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Serve(ctx); err != nil {
		return err
	}
	slog.Info("server stopped")
	return nil
}
