package main

import (
	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/converge/internal/request"
)

type toolFlags struct {
	raw request.Raw
}

func (f *toolFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.raw.State, "state", "s", "", "Desired state: installed, upgraded, absent, head, linked, unlinked, remove_env")
	fs.StringVar(&f.raw.Version, "version", "", "Version the package must be at")
	fs.StringVar(&f.raw.Version, "pkg-version", "", "Alias for --version")
	_ = fs.MarkHidden("pkg-version")
	fs.StringVarP(&f.raw.Path, "path", "p", "", "Colon-separated directories searched for the executable")
	fs.StringArrayVarP(&f.raw.Options, "option", "o", nil, "Install option, '--' is added when missing (repeatable)")
	fs.BoolVar(&f.raw.UpdateSelf, "update-self", false, "Update the package manager itself first")
	fs.BoolVar(&f.raw.UpgradeAll, "upgrade-all", false, "Upgrade every installed package")
}

var toolCmdRunner = runRequest

func newBrewCmd(root *rootFlags) *cobra.Command {
	flags := &toolFlags{}

	cmd := &cobra.Command{
		Use:     "brew [PACKAGE...]",
		Aliases: []string{"linuxbrew"},
		Short:   "Converge Linuxbrew packages",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := flags.raw
			raw.Tool = string(request.ToolBrew)
			raw.Packages = args
			return toolCmdRunner(cmd, root, raw)
		},
	}
	flags.register(cmd)
	return cmd
}

func newCondaCmd(root *rootFlags) *cobra.Command {
	flags := &toolFlags{}

	cmd := &cobra.Command{
		Use:   "conda [PACKAGE...]",
		Short: "Converge conda packages and environments",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := flags.raw
			raw.Tool = string(request.ToolConda)
			raw.Packages = args
			return toolCmdRunner(cmd, root, raw)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&flags.raw.Environment, "env", "n", "", "Environment to install into or remove")
	cmd.Flags().StringArrayVarP(&flags.raw.Channels, "channel", "c", nil, "Additional channel (repeatable)")
	return cmd
}
