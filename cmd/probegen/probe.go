package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"probegen/internal/gen"
)

var probeCmd = &cobra.Command{
	Use:   "probe [path]",
	Short: "Print the assembled probe program without running it",
	Long:  "Assemble the C probe program for a manifest and print it to stdout. Useful for debugging toolchain failures.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadManifestArg(args)
		if err != nil {
			return err
		}
		ctx := gen.NewContext(m.Package.Name)
		if err := m.Apply(ctx); err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), ctx.ProbeProgram())
		return nil
	},
}
