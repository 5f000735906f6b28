// Package cli provides the eommap command-line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/eommap/internal/config"
	"github.com/JonMunkholm/eommap/internal/logging"
)

// Version is set at build time.
var Version = "0.1.0"

// options carries flag values and the resolved config between the root
// command and its subcommands.
type options struct {
	configFile string
	dataPath   string
	topN       int
	port       int

	cfg *config.Config
}

// NewRootCmd creates the root command. Running it without a subcommand
// starts the server.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "eommap",
		Short: "EOM provider map dashboard",
		Long: `eommap serves a dashboard of Enhancing Oncology Model provider locations.

The provider CSV is loaded once at startup; the page shows total providers,
states covered, a map with one marker per provider and the top states.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "version" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}
			return opts.load(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts.cfg)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "YAML config file (default: $CONFIG_FILE)")
	flags.StringVar(&opts.dataPath, "data", "", "provider CSV file (overrides DATA_PATH)")
	flags.IntVar(&opts.topN, "top", 0, "number of states in the ranking (overrides MAP_TOP_N)")
	flags.IntVar(&opts.port, "port", 0, "listen port (overrides SERVER_PORT)")

	rootCmd.AddCommand(newServeCommand(opts))
	rootCmd.AddCommand(newSummaryCommand(opts))
	rootCmd.AddCommand(newValidateCommand(opts))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// load resolves configuration, applies explicitly set flags on top and
// configures logging.
func (o *options) load(cmd *cobra.Command) error {
	var (
		cfg *config.Config
		err error
	)
	if o.configFile != "" {
		cfg, err = config.LoadFile(o.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("data") {
		cfg.Data.Path = o.dataPath
	}
	if flags.Changed("top") {
		cfg.Map.TopN = o.topN
	}
	if flags.Changed("port") {
		cfg.Server.Port = o.port
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("flags: %w", err)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	o.cfg = cfg
	return nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "eommap v%s\n", Version)
		},
	}
}
