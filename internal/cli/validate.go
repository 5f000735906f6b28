package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/eommap/internal/core"
)

func newValidateCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check configuration and the provider file without serving",
		RunE: func(cmd *cobra.Command, _ []string) error {
			table, err := core.Load(opts.cfg.Data.Path)
			if err != nil {
				return err
			}
			summary := core.Aggregate(table)

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "ok: %s (%d providers, %d states)\n",
				opts.cfg.Data.Path, summary.TotalProviders, summary.DistinctRegions)
			return nil
		},
	}
}
