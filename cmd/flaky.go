package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Liquescent-Development/mcprobe/internal/analysis"
	"github.com/Liquescent-Development/mcprobe/internal/config"
	"github.com/Liquescent-Development/mcprobe/internal/report"
	"github.com/Liquescent-Development/mcprobe/internal/store"
)

var (
	flagFlakyMinRuns int
	flagFailOnFlaky  bool
	flagFlakyFormat  string
)

func newFlakyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flaky",
		Short: "Detect flaky scenarios in stored test results",
		Long:  "Flags scenarios with intermittent pass/fail outcomes or high score variance across runs. Scenarios with too little history are listed as skipped rather than silently ignored.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			loader := store.NewLoader(cfg.Results.Dir)
			histories, err := loader.Histories()
			if err != nil {
				return err
			}

			detector := analysis.NewFlakyDetector(detectorConfig(cfg, flagFlakyMinRuns))
			rep, err := detector.DetectFlaky(histories)
			if err != nil {
				return err
			}
			if err := report.WriteFlaky(rep, flagFlakyFormat, os.Stdout); err != nil {
				return err
			}
			if flagFailOnFlaky && len(rep.Flagged) > 0 {
				return fmt.Errorf("%d flaky scenario(s) detected", len(rep.Flagged))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&flagFlakyMinRuns, "min-runs", "n", 0, "minimum runs required for analysis")
	cmd.Flags().BoolVar(&flagFailOnFlaky, "fail-on-flaky", false, "exit non-zero if flaky scenarios are detected")
	cmd.Flags().StringVar(&flagFlakyFormat, "format", "table", "output format (table, markdown, json)")
	return cmd
}

// detectorConfig merges the config file's analysis thresholds with a
// command-line min-runs override.
func detectorConfig(cfg *config.Config, minRuns int) analysis.DetectorConfig {
	dc := analysis.DetectorConfig{
		MinRuns:       cfg.Analysis.MinRuns,
		FlakyBandLow:  cfg.Analysis.FlakyBandLow,
		FlakyBandHigh: cfg.Analysis.FlakyBandHigh,
		CVThreshold:   cfg.Analysis.CVThreshold,
	}
	if minRuns > 0 {
		dc.MinRuns = minRuns
	}
	return dc
}
