package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Liquescent-Development/mcprobe/internal/config"
	"github.com/Liquescent-Development/mcprobe/internal/store"
)

var (
	flagMaxAgeDays int
	flagMaxRuns    int
)

func newCleanupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Prune old stored results",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			storage := store.NewStorage(cfg.Results.Dir)
			removed, err := storage.CleanupOldRuns(flagMaxAgeDays, flagMaxRuns)
			if err != nil {
				return err
			}
			fmt.Printf("Removed %d old run(s)\n", removed)
			return nil
		},
	}
	cmd.Flags().IntVar(&flagMaxAgeDays, "max-age-days", 30, "remove runs older than this many days")
	cmd.Flags().IntVar(&flagMaxRuns, "max-runs", 100, "keep at most this many runs per scenario")
	return cmd
}
