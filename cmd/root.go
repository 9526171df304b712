package cmd

import (
	"github.com/spf13/cobra"
)

var cfgFile string

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mcprobe",
		Short:         "Conversation-driven test harness for AI agents",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "mcprobe.yaml", "config file path")
	root.AddCommand(newRunCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newValidateCmd())
	root.AddCommand(newReportCmd())
	root.AddCommand(newTrendsCmd())
	root.AddCommand(newFlakyCmd())
	root.AddCommand(newStabilityCmd())
	root.AddCommand(newCleanupCmd())
	return root
}
