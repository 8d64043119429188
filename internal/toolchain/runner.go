// Package toolchain runs the probe program through the host C
// toolchain: compile, link, execute, capture stdout.
package toolchain

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Stage identifies the toolchain step that failed.
type Stage string

const (
	// StageCompile is the source-to-object step.
	StageCompile Stage = "compile"
	// StageLink is the object-to-executable step.
	StageLink Stage = "link"
	// StageRun is the probe execution step.
	StageRun Stage = "run"
)

// Error is a fatal toolchain failure tagged with the failing stage.
type Error struct {
	Stage  Stage
	Stderr string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Stderr != "" {
		return fmt.Sprintf("probe %s failed: %s", e.Stage, e.Stderr)
	}
	return fmt.Sprintf("probe %s failed: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Runner drives one probe through the toolchain. Every invocation is
// single-shot and blocking; there is no retry.
type Runner struct {
	Compiler      string // defaults to $CC, then "cc"
	KeepTmp       bool
	PrintCommands bool
	TmpRoot       string // defaults to the system temp dir

	// IncludeDirs are extra header search paths. The probe compiles in
	// a scoped tmp dir, so local includes need the manifest's directory
	// here to resolve.
	IncludeDirs []string

	// OnStage, when set, is called right before each toolchain stage
	// starts. Used for progress reporting and timings.
	OnStage func(Stage)
}

// ResolveCompiler returns the compiler binary the runner will use.
func (r *Runner) ResolveCompiler() string {
	if r != nil && r.Compiler != "" {
		return r.Compiler
	}
	if cc := os.Getenv("CC"); cc != "" {
		return cc
	}
	return "cc"
}

// EnsureCompiler verifies the compiler is on PATH.
func (r *Runner) EnsureCompiler() error {
	cc := r.ResolveCompiler()
	if _, err := exec.LookPath(cc); err != nil {
		return fmt.Errorf("%s not found; install a C toolchain (e.g. sudo apt-get install -y gcc) or set CC", cc)
	}
	return nil
}

// Identity describes the compiler for cache keying: binary name plus its
// reported target triple, when it offers one.
func (r *Runner) Identity() string {
	cc := r.ResolveCompiler()
	out, err := exec.Command(cc, "-dumpmachine").Output()
	if err != nil {
		return cc
	}
	return cc + " " + strings.TrimSpace(string(out))
}

// Probe compiles, links and executes the given probe source and returns
// the program's captured stdout. Intermediate artifacts live in a
// scoped temp dir that is removed on success and failure alike, unless
// KeepTmp is set.
func (r *Runner) Probe(ctx context.Context, source string) (string, error) {
	if err := r.EnsureCompiler(); err != nil {
		return "", err
	}
	cc := r.ResolveCompiler()

	tmpDir, err := os.MkdirTemp(r.tmpRoot(), "probegen-*")
	if err != nil {
		return "", fmt.Errorf("failed to create probe tmp dir: %w", err)
	}
	if !r.KeepTmp {
		defer func() { _ = os.RemoveAll(tmpDir) }()
	}

	srcPath := filepath.Join(tmpDir, "probe.c")
	objPath := filepath.Join(tmpDir, "probe.o")
	exePath := filepath.Join(tmpDir, "probe")
	if err := os.WriteFile(srcPath, []byte(source), 0o600); err != nil {
		return "", fmt.Errorf("failed to write probe source: %w", err)
	}

	compileArgs := []string{"-c", srcPath, "-o", objPath}
	for _, dir := range r.IncludeDirs {
		compileArgs = append(compileArgs, "-I", dir)
	}
	r.notify(StageCompile)
	if err := r.runCommand(ctx, StageCompile, cc, compileArgs...); err != nil {
		return "", err
	}
	r.notify(StageLink)
	if err := r.runCommand(ctx, StageLink, cc, objPath, "-o", exePath); err != nil {
		return "", err
	}

	r.notify(StageRun)
	if r.PrintCommands {
		fmt.Fprintln(os.Stdout, exePath)
	}
	cmd := exec.CommandContext(ctx, exePath)
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", &Error{Stage: StageRun, Stderr: strings.TrimSpace(stderr.String()), Err: err}
	}
	return stdout.String(), nil
}

func (r *Runner) notify(stage Stage) {
	if r.OnStage != nil {
		r.OnStage(stage)
	}
}

func (r *Runner) tmpRoot() string {
	if r != nil && r.TmpRoot != "" {
		return r.TmpRoot
	}
	return ""
}

func (r *Runner) runCommand(ctx context.Context, stage Stage, name string, args ...string) error {
	if r.PrintCommands {
		fmt.Fprintf(os.Stdout, "%s %s\n", name, strings.Join(args, " "))
	}
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stdout
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return &Error{Stage: stage, Stderr: strings.TrimSpace(stderr.String()), Err: err}
	}
	return nil
}
