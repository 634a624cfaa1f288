package main

import (
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/mattn/go-isatty"
)

// newProgressReporter builds a terminal progress bar satisfying
// hasher.Progress, or nil when the configured mode (auto/always/never)
// disables it. The bar renders to stderr so manifests on stdout stay clean.
func newProgressReporter(mode string) *progressReporter {
	if !showProgress(mode, os.Stderr) {
		return nil
	}

	writer := progress.NewWriter()
	writer.SetOutputWriter(os.Stderr)
	writer.SetAutoStop(false)
	writer.SetTrackerLength(30)
	writer.SetUpdateFrequency(100 * time.Millisecond)

	tracker := &progress.Tracker{Message: "discovering"}
	writer.AppendTracker(tracker)
	go writer.Render()

	return &progressReporter{writer: writer, tracker: tracker}
}

func showProgress(mode string, out *os.File) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		fd := out.Fd()
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
}

type progressReporter struct {
	writer  progress.Writer
	tracker *progress.Tracker
}

func (p *progressReporter) SetTotal(total int64) {
	p.tracker.UpdateTotal(total)
}

func (p *progressReporter) Describe(message string) {
	p.tracker.UpdateMessage(message)
}

func (p *progressReporter) Increment() {
	p.tracker.Increment(1)
}

func (p *progressReporter) Done() {
	p.tracker.UpdateMessage("done")
	p.tracker.MarkAsDone()
	p.writer.Stop()
	// Let the render loop flush its final frame before output continues.
	for i := 0; i < 10 && p.writer.IsRenderInProgress(); i++ {
		time.Sleep(10 * time.Millisecond)
	}
}
