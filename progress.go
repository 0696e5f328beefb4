package main

import (
	"fmt"
	"io"
)

// sink collects an emitter's output lines and progress notes. The first
// write error is latched; later writes become no-ops so emitters can
// stay straight-line.
type sink struct {
	w        io.Writer
	progress func(remaining int, message string)
	err      error
}

func newSink(w io.Writer, progress func(int, string)) *sink {
	return &sink{w: w, progress: progress}
}

func (s *sink) line(format string, args ...any) {
	if s.err != nil {
		return
	}
	if len(args) > 0 {
		format = fmt.Sprintf(format, args...)
	}
	if _, err := io.WriteString(s.w, format+"\n"); err != nil {
		s.err = err
	}
}

// note reports an estimate of the lines remaining in the current
// artifact; the driver turns these into percentage output.
func (s *sink) note(remaining int, message string) {
	if s.progress != nil {
		s.progress(remaining, message)
	}
}

// progressTracker converts per-artifact remaining-line notes into
// whole-run percentages weighted by fixed per-artifact work estimates.
// The first note of an artifact sets its line-count estimate.
type progressTracker struct {
	totalWork  float64
	workOffset float64

	work     float64
	estimate float64

	lastPct     int
	lastMessage string
	print       func(pct int, message string)
}

func newProgressTracker(totalWork float64, print func(int, string)) *progressTracker {
	return &progressTracker{totalWork: totalWork, lastPct: -1, print: print}
}

// startArtifact begins tracking a new artifact with the given work weight.
func (p *progressTracker) startArtifact(work float64) {
	p.work = work
	p.estimate = 0
}

// finishArtifact folds the completed artifact's weight into the offset.
func (p *progressTracker) finishArtifact() {
	p.workOffset += p.work
	p.work = 0
}

func (p *progressTracker) note(remaining int, message string) {
	if p.estimate == 0 {
		p.estimate = float64(remaining)
	}
	if p.estimate == 0 || p.totalWork == 0 {
		return
	}
	done := 1.0 - float64(remaining)/p.estimate
	if done < 0 {
		done = 0
	}
	if done > 1 {
		done = 1
	}
	pct := int(100.0 * (p.workOffset + done*p.work) / p.totalWork)
	if pct != p.lastPct || message != p.lastMessage {
		p.lastPct = pct
		p.lastMessage = message
		p.print(pct, message)
	}
}
