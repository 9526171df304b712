package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Liquescent-Development/mcprobe/internal/config"
	"github.com/Liquescent-Development/mcprobe/internal/scenario"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			scenarios, err := scenario.ParseDir(cfg.Scenarios.Dir)
			if err != nil {
				return err
			}
			if len(scenarios) == 0 {
				fmt.Printf("No scenarios found in %s\n", cfg.Scenarios.Dir)
				return nil
			}
			fmt.Println("Scenarios:")
			for _, s := range scenarios {
				line := fmt.Sprintf("  - %s", s.Name)
				if len(s.Tags) > 0 {
					line += fmt.Sprintf(" [%s]", strings.Join(s.Tags, ", "))
				}
				if s.Skip != "" {
					line += " (skipped: " + s.Skip + ")"
				}
				fmt.Println(line)
			}
			return nil
		},
	}
}
