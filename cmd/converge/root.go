package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	verbose    bool
	dryRun     bool
	jsonOutput bool
	configPath string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "converge",
		Short:         "Converge Linuxbrew and conda packages to a declared state",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging and show tool output")
	cmd.PersistentFlags().BoolVar(&flags.dryRun, "dry-run", false, "Report the first change that would be made without making it")
	cmd.PersistentFlags().BoolVar(&flags.jsonOutput, "json", false, "Print the result as JSON")
	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Path to a defaults file (default: $XDG_CONFIG_HOME/converge/config.yaml)")

	cmd.AddCommand(newBrewCmd(flags))
	cmd.AddCommand(newCondaCmd(flags))
	cmd.AddCommand(newApplyCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}
