package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"probegen/internal/gen"
	"probegen/internal/manifest"
	"probegen/internal/pipeline"
)

var generateCmd = &cobra.Command{
	Use:   "generate [flags] [path]",
	Short: "Generate bindings from a probegen.toml manifest",
	Long:  "Probe the host platform for the declared constants and structure layouts, then write the generated binding source.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  generateExecution,
}

func init() {
	generateCmd.Flags().String("output", "", "output file (defaults to [package].output from the manifest)")
	generateCmd.Flags().String("cc", "", "C compiler to use (defaults to [toolchain].cc, then $CC, then cc)")
	generateCmd.Flags().Bool("keep-tmp", false, "keep the probe's temporary build directory")
	generateCmd.Flags().Bool("print-commands", false, "print toolchain commands as they run")
	generateCmd.Flags().Bool("no-cache", false, "always run the probe, ignoring cached results")
	generateCmd.Flags().Bool("timings", false, "show stage timing information")
	generateCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
}

func generateExecution(cmd *cobra.Command, args []string) error {
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	cc, err := cmd.Flags().GetString("cc")
	if err != nil {
		return err
	}
	keepTmp, err := cmd.Flags().GetBool("keep-tmp")
	if err != nil {
		return err
	}
	printCommands, err := cmd.Flags().GetBool("print-commands")
	if err != nil {
		return err
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return err
	}
	showTimings, err := cmd.Flags().GetBool("timings")
	if err != nil {
		return err
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	uiModeValue, err := readUIMode(uiValue)
	if err != nil {
		return err
	}

	m, err := loadManifestArg(args)
	if err != nil {
		return err
	}

	req := &pipeline.Request{
		Manifest:      m,
		Output:        output,
		CC:            cc,
		KeepTmp:       keepTmp,
		PrintCommands: printCommands,
		NoCache:       noCache,
	}

	var result pipeline.Result
	if uiModeValue.enabled() && !printCommands {
		result, err = runGenerateWithUI(cmd.Context(), m.Package.Name, declNames(m), req)
	} else {
		result, err = pipeline.Generate(cmd.Context(), req)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if result.CacheHit {
		fmt.Fprintln(out, "probe results reused from cache")
	}
	fmt.Fprintf(out, "wrote %s\n", result.OutputPath)
	if showTimings {
		printStageTimings(out, result.Timings)
	}
	return nil
}

func loadManifestArg(args []string) (*manifest.Manifest, error) {
	arg := "."
	if len(args) > 0 {
		arg = args[0]
	}
	path, err := manifest.Find(arg)
	if err != nil {
		return nil, err
	}
	return manifest.Load(path)
}

// declNames replays the manifest onto a scratch context to learn the
// declaration rows the progress UI should show.
func declNames(m *manifest.Manifest) []string {
	ctx := gen.NewContext(m.Package.Name)
	if err := m.Apply(ctx); err != nil {
		return nil
	}
	return ctx.DeclNames()
}
