// Package pipeline orchestrates one generation pass: probe emission,
// the toolchain round trip, fact parsing, rendering, and the atomic
// output write.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"probegen/internal/gen"
	"probegen/internal/manifest"
	"probegen/internal/probe"
	"probegen/internal/probecache"
	"probegen/internal/toolchain"
)

// CacheApp is the directory name used under the user cache root.
const CacheApp = "probegen"

// Request configures one generation pass.
type Request struct {
	Manifest *manifest.Manifest

	Output        string // overrides the manifest output path
	CC            string // overrides the manifest compiler
	KeepTmp       bool
	PrintCommands bool
	NoCache       bool
	CacheDir      string // overrides the standard cache location

	Progress ProgressSink
}

// Result captures generation artefacts and timings.
type Result struct {
	OutputPath  string
	Document    gen.Document
	ProbeSource string
	CacheHit    bool
	Timings     Timings
}

// Generate runs a full pass for one manifest. Declarations accumulate,
// the probe runs once, and the rendered document is written atomically;
// any failure aborts before the output file is touched.
func Generate(ctx context.Context, req *Request) (Result, error) {
	var result Result
	if req == nil || req.Manifest == nil {
		return result, fmt.Errorf("missing generate request")
	}
	m := req.Manifest

	emitStart := time.Now()
	emit(req.Progress, Event{Stage: StageEmit, Status: StatusWorking})
	dctx := gen.NewContext(m.Package.Name)
	if err := m.Apply(dctx); err != nil {
		emit(req.Progress, Event{Stage: StageEmit, Status: StatusError, Err: err})
		return result, err
	}
	for _, name := range dctx.DeclNames() {
		emit(req.Progress, Event{Decl: name, Stage: StageEmit, Status: StatusQueued})
	}
	source := dctx.ProbeProgram()
	result.ProbeSource = source
	result.Timings.Set(StageEmit, time.Since(emitStart))
	emit(req.Progress, Event{Stage: StageEmit, Status: StatusDone, Elapsed: result.Timings.Duration(StageEmit)})

	runner := &toolchain.Runner{
		Compiler:      req.compiler(),
		KeepTmp:       req.KeepTmp,
		PrintCommands: req.PrintCommands,
	}
	if m.Path != "" {
		// Local includes resolve against the manifest's directory.
		runner.IncludeDirs = []string{filepath.Dir(m.Path)}
	}

	output, hit, err := req.probeOutput(ctx, runner, source, &result.Timings)
	if err != nil {
		return result, err
	}
	result.CacheHit = hit

	parseStart := time.Now()
	emit(req.Progress, Event{Stage: StageParse, Status: StatusWorking})
	results := probe.ParseOutput(output)
	result.Timings.Set(StageParse, time.Since(parseStart))
	emit(req.Progress, Event{Stage: StageParse, Status: StatusDone, Elapsed: result.Timings.Duration(StageParse)})

	renderStart := time.Now()
	emit(req.Progress, Event{Stage: StageRender, Status: StatusWorking})
	names := dctx.DeclNames()
	doc, err := dctx.Finalize(results)
	if err != nil {
		emit(req.Progress, Event{Stage: StageRender, Status: StatusError, Err: err})
		return result, err
	}
	result.Document = doc
	result.Timings.Set(StageRender, time.Since(renderStart))
	for _, name := range names {
		emit(req.Progress, Event{Decl: name, Stage: StageRender, Status: StatusDone})
	}
	emit(req.Progress, Event{Stage: StageRender, Status: StatusDone, Elapsed: result.Timings.Duration(StageRender)})

	writeStart := time.Now()
	emit(req.Progress, Event{Stage: StageWrite, Status: StatusWorking})
	outputPath := req.Output
	if outputPath == "" {
		outputPath = m.OutputPath()
	}
	result.OutputPath = outputPath
	if err := writeAtomic(outputPath, doc.Source); err != nil {
		emit(req.Progress, Event{Stage: StageWrite, Status: StatusError, Err: err})
		return result, err
	}
	result.Timings.Set(StageWrite, time.Since(writeStart))
	emit(req.Progress, Event{Stage: StageWrite, Status: StatusDone, Elapsed: result.Timings.Duration(StageWrite)})
	return result, nil
}

func (req *Request) compiler() string {
	if req.CC != "" {
		return req.CC
	}
	return req.Manifest.Toolchain.CC
}

// probeOutput returns the probe's stdout, from cache when possible.
func (req *Request) probeOutput(ctx context.Context, runner *toolchain.Runner, source string, timings *Timings) (string, bool, error) {
	var cache *probecache.Cache
	identity := ""
	if !req.NoCache {
		var err error
		if req.CacheDir != "" {
			cache, err = probecache.OpenAt(req.CacheDir)
		} else {
			cache, err = probecache.Open(CacheApp)
		}
		if err != nil {
			// A broken cache dir must not fail the build.
			cache = nil
		}
	}
	key := source
	if cache != nil {
		identity = runner.Identity()
		key = req.cacheKey(source)
		if output, ok := cache.Get(key, identity); ok {
			return output, true, nil
		}
	}

	var current Stage
	var currentStart time.Time
	runner.OnStage = func(stage toolchain.Stage) {
		now := time.Now()
		if current != "" {
			timings.Set(current, now.Sub(currentStart))
			emit(req.Progress, Event{Stage: current, Status: StatusDone, Elapsed: timings.Duration(current)})
		}
		current = toolchainStage(stage)
		currentStart = now
		emit(req.Progress, Event{Stage: current, Status: StatusWorking})
	}
	output, err := runner.Probe(ctx, source)
	if current != "" {
		timings.Set(current, time.Since(currentStart))
	}
	if err != nil {
		stage := current
		if tcErr, ok := err.(*toolchain.Error); ok {
			stage = toolchainStage(tcErr.Stage)
		}
		emit(req.Progress, Event{Stage: stage, Status: StatusError, Err: err})
		return "", false, err
	}
	if current != "" {
		emit(req.Progress, Event{Stage: current, Status: StatusDone, Elapsed: timings.Duration(current)})
	}

	if cache != nil {
		// Cache write failures are not fatal either.
		_ = cache.Put(key, identity, output)
	}
	return output, false, nil
}

// cacheKey extends the probe source with the contents of every local
// header so editing one invalidates cached probe results. Unreadable
// headers are skipped here; the compile stage reports them properly.
func (req *Request) cacheKey(source string) string {
	m := req.Manifest
	var b strings.Builder
	b.WriteString(source)
	for _, inc := range m.Include {
		if !inc.Local {
			continue
		}
		path := inc.Path
		if !filepath.IsAbs(path) && m.Path != "" {
			path = filepath.Join(filepath.Dir(m.Path), path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		b.WriteString("\x00")
		b.WriteString(inc.Path)
		b.WriteString("\x00")
		b.Write(data)
	}
	return b.String()
}

func toolchainStage(stage toolchain.Stage) Stage {
	switch stage {
	case toolchain.StageCompile:
		return StageCompile
	case toolchain.StageLink:
		return StageLink
	case toolchain.StageRun:
		return StageRun
	}
	return Stage(stage)
}

// writeAtomic writes the document through a temp file and rename so a
// failed pass never leaves a partial output in place.
func writeAtomic(path, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	f, err := os.CreateTemp(dir, ".probegen-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(f.Name()) }()
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Chmod(f.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

func emit(sink ProgressSink, evt Event) {
	if sink == nil {
		return
	}
	sink.OnEvent(evt)
}
