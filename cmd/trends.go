package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Liquescent-Development/mcprobe/internal/analysis"
	"github.com/Liquescent-Development/mcprobe/internal/config"
	"github.com/Liquescent-Development/mcprobe/internal/history"
	"github.com/Liquescent-Development/mcprobe/internal/report"
	"github.com/Liquescent-Development/mcprobe/internal/store"
)

var (
	flagTrendScenario string
	flagTrendWindow   int
	flagTrendFormat   string
)

func newTrendsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trends",
		Short: "Show trend analysis for stored test results",
		Long:  "Analyzes historical results to detect pass-rate and score trends over a recent window, and reports regressions between the earlier and recent halves of each scenario's history.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			loader := store.NewLoader(cfg.Results.Dir)

			var histories []history.ScenarioHistory
			if flagTrendScenario != "" {
				h, err := loader.History(flagTrendScenario)
				if err != nil {
					return err
				}
				histories = []history.ScenarioHistory{h}
			} else {
				histories, err = loader.Histories()
				if err != nil {
					return err
				}
			}

			window := flagTrendWindow
			if window <= 0 {
				window = cfg.Analysis.WindowSize
			}
			if window <= 0 {
				window = analysis.DefaultWindowSize
			}

			analyzer := analysis.NewTrendAnalyzer(cfg.Analysis.SlopeThreshold)
			trends, err := analyzer.AnalyzeAll(histories, window)
			if err != nil {
				return err
			}
			if len(trends) == 0 {
				fmt.Println("No trend data available.")
				return nil
			}
			if err := report.WriteTrends(trends, flagTrendFormat, os.Stdout); err != nil {
				return err
			}

			regressions, err := analyzer.DetectAllRegressions(histories, analysis.RegressionOptions{
				PassRateThreshold: cfg.Analysis.PassRateThreshold,
				ScoreThreshold:    cfg.Analysis.ScoreThreshold,
			})
			if err != nil {
				return err
			}
			if len(regressions) > 0 && flagTrendFormat != "json" {
				fmt.Println()
			}
			if len(regressions) > 0 {
				return report.WriteRegressions(regressions, flagTrendFormat, os.Stdout)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&flagTrendScenario, "scenario", "s", "", "analyze a single scenario")
	cmd.Flags().IntVarP(&flagTrendWindow, "window", "w", 0, "number of recent runs to consider")
	cmd.Flags().StringVar(&flagTrendFormat, "format", "table", "output format (table, markdown, json)")
	return cmd
}
