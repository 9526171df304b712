package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Liquescent-Development/mcprobe/internal/config"
	"github.com/Liquescent-Development/mcprobe/internal/report"
	"github.com/Liquescent-Development/mcprobe/internal/store"
)

var flagFormat string

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize stored test results",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			loader := store.NewLoader(cfg.Results.Dir)
			index, err := loader.Index()
			if err != nil {
				return err
			}
			if len(index.Entries) == 0 {
				fmt.Println("No stored results.")
				return nil
			}
			var results []*store.RunResult
			for _, entry := range index.Entries {
				res, err := loader.Load(entry.RunID)
				if err != nil {
					fmt.Fprintf(os.Stderr, "warning: skipping run %s: %v\n", entry.RunID, err)
					continue
				}
				results = append(results, res)
			}
			return report.WriteSummaries(report.Summarize(results), flagFormat, os.Stdout)
		},
	}
	cmd.Flags().StringVar(&flagFormat, "format", "table", "output format (table, markdown, json)")
	return cmd
}
