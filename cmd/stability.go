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
	flagStabilityMinRuns int
	flagFailOnUnstable   bool
	flagStabilityFormat  string
)

func newStabilityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stability-check <scenario>",
		Short: "Check the stability of a single scenario",
		Long:  "Reports whether a scenario's history shows consistent outcomes. A scenario with too little history gets an insufficient-data verdict, which never fails the check.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			loader := store.NewLoader(cfg.Results.Dir)
			h, err := loader.History(args[0])
			if err != nil {
				return err
			}

			detector := analysis.NewFlakyDetector(detectorConfig(cfg, flagStabilityMinRuns))
			rep, err := detector.StabilityCheck(h)
			if err != nil {
				return err
			}
			if err := report.WriteStability(rep, flagStabilityFormat, os.Stdout); err != nil {
				return err
			}
			if flagFailOnUnstable && rep.Verdict == analysis.VerdictUnstable {
				return fmt.Errorf("scenario %s is unstable", args[0])
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&flagStabilityMinRuns, "min-runs", "n", 0, "minimum runs required for analysis")
	cmd.Flags().BoolVar(&flagFailOnUnstable, "fail-on-unstable", false, "exit non-zero if the scenario is unstable")
	cmd.Flags().StringVar(&flagStabilityFormat, "format", "table", "output format (table, json)")
	return cmd
}
