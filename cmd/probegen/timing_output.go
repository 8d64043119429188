package main

import (
	"fmt"
	"io"
	"time"

	"probegen/internal/pipeline"
)

func printStageTimings(out io.Writer, timings pipeline.Timings) {
	if out == nil {
		return
	}
	if timings.Has(pipeline.StageEmit) {
		fmt.Fprintf(out, "emitted %.1f ms\n", toMillis(timings.Duration(pipeline.StageEmit)))
	}
	if timings.Has(pipeline.StageCompile) || timings.Has(pipeline.StageLink) {
		built := timings.Sum(pipeline.StageCompile, pipeline.StageLink)
		fmt.Fprintf(out, "built %.1f ms\n", toMillis(built))
	}
	if timings.Has(pipeline.StageRun) {
		fmt.Fprintf(out, "probed %.1f ms\n", toMillis(timings.Duration(pipeline.StageRun)))
	}
	if timings.Has(pipeline.StageParse) || timings.Has(pipeline.StageRender) {
		rendered := timings.Sum(pipeline.StageParse, pipeline.StageRender)
		fmt.Fprintf(out, "rendered %.1f ms\n", toMillis(rendered))
	}
	if timings.Has(pipeline.StageWrite) {
		fmt.Fprintf(out, "wrote %.1f ms\n", toMillis(timings.Duration(pipeline.StageWrite)))
	}
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
