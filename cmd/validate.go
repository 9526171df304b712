package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Liquescent-Development/mcprobe/internal/config"
	"github.com/Liquescent-Development/mcprobe/internal/scenario"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [scenario-file...]",
		Short: "Validate scenario files without running them",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := args
			if len(paths) == 0 {
				cfg, err := config.Load(cfgFile)
				if err != nil {
					return err
				}
				scenarios, err := scenario.ParseDir(cfg.Scenarios.Dir)
				if err != nil {
					return err
				}
				for _, s := range scenarios {
					fmt.Printf("OK  %s (%s)\n", s.Name, s.Source)
				}
				fmt.Printf("%d scenario(s) valid\n", len(scenarios))
				return nil
			}

			var failed int
			for _, path := range paths {
				s, err := scenario.ParseFile(path)
				if err != nil {
					fmt.Printf("ERR %s: %v\n", path, err)
					failed++
					continue
				}
				fmt.Printf("OK  %s (%s)\n", s.Name, path)
			}
			if failed > 0 {
				return fmt.Errorf("%d scenario file(s) invalid", failed)
			}
			return nil
		},
	}
}
