// Package main implements the probegen CLI.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"probegen/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "probegen",
	Short: "Native layout probing and binding generator",
	Long:  `probegen compiles a disposable probe against the host headers and generates portable encode/decode bindings and constant values`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
