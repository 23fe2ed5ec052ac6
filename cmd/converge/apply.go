package main

import (
	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/converge/internal/config"
)

type applyOptions struct {
	RequestPath string
}

func newApplyCmd(root *rootFlags) *cobra.Command {
	opts := applyOptions{}

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Converge the request described by a YAML or TOML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateApplyOptions(opts); err != nil {
				return err
			}

			raw, err := config.LoadRequest(opts.RequestPath)
			if err != nil {
				return err
			}
			return toolCmdRunner(cmd, root, raw)
		},
	}

	cmd.Flags().StringVarP(&opts.RequestPath, "file", "f", "", "Path to request file")
	cmd.MarkFlagRequired("file") //nolint:errcheck

	return cmd
}
