package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/eommap/internal/core"
	"github.com/JonMunkholm/eommap/internal/web/templates"
)

func newSummaryCommand(opts *options) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print provider totals and the top states",
		Example: `  eommap summary --data data/clean_eom_data.csv
  eommap summary --top 10 --format json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := core.Init(opts.cfg.Data.Path, core.InitOptions{TopN: opts.cfg.Map.TopN})
			if err != nil {
				return err
			}

			switch format {
			case "json":
				return renderSummaryJSON(cmd.OutOrStdout(), app.Summary)
			case "table", "":
				renderSummaryTable(cmd.OutOrStdout(), app.Summary)
				return nil
			default:
				return fmt.Errorf("unknown format %q (want table or json)", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: table, json")
	return cmd
}

func renderSummaryTable(w io.Writer, s core.StatsSummary) {
	_, _ = fmt.Fprintf(w, "Total Providers: %s\n", templates.FormatCount(s.TotalProviders))
	_, _ = fmt.Fprintf(w, "States Covered:  %s\n", templates.FormatCount(s.DistinctRegions))

	if len(s.TopRegions) == 0 {
		_, _ = fmt.Fprintln(w, "(no providers)")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "State", "Name", "Providers"})
	for i, rc := range s.TopRegions {
		t.AppendRow(table.Row{i + 1, rc.Region, core.RegionName(rc.Region), templates.FormatCount(rc.Count)})
	}
	t.Render()
}

func renderSummaryJSON(w io.Writer, s core.StatsSummary) error {
	if s.TopRegions == nil {
		s.TopRegions = []core.RegionCount{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
