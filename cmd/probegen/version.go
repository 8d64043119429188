package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"probegen/internal/version"
)

const versionTagline = "ask the compiler, not the manual"

var (
	versionFormat   string
	versionShowFull bool
)

func init() {
	versionCmd.Flags().StringVar(&versionFormat, "format", "pretty", "output format (pretty|json)")
	versionCmd.Flags().BoolVar(&versionShowFull, "full", false, "include commit and build metadata")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show probegen build fingerprints",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch strings.ToLower(versionFormat) {
		case "pretty":
			printVersionPretty(out, versionShowFull)
			return nil
		case "json":
			return printVersionJSON(out, versionShowFull)
		}
		return fmt.Errorf("unsupported format %q (must be pretty or json)", versionFormat)
	},
}

func printVersionPretty(out io.Writer, full bool) {
	fmt.Fprintf(out, "probegen %s — %s\n", version.Version, versionTagline)
	if !full {
		return
	}
	fmt.Fprintf(out, "commit:  %s\n", orUnknown(version.GitCommit))
	fmt.Fprintf(out, "message: %s\n", orUnknown(version.GitMessage))
	fmt.Fprintf(out, "built:   %s\n", orUnknown(version.BuildDate))
}

func printVersionJSON(out io.Writer, full bool) error {
	payload := map[string]string{
		"tool":    "probegen",
		"version": version.Version,
		"tagline": versionTagline,
	}
	if full {
		payload["git_commit"] = orUnknown(version.GitCommit)
		payload["git_message"] = orUnknown(version.GitMessage)
		payload["build_date"] = orUnknown(version.BuildDate)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
