package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// ProgressReporter reports progress of batch evaluations.
type ProgressReporter interface {
	Start(total int)
	Increment(failed bool)
	Finish()
}

// SimpleProgress renders a single-line progress bar. It is meant for
// stderr so it does not mix with formatted results on stdout.
type SimpleProgress struct {
	mu      sync.Mutex
	total   int
	done    int
	failed  int
	started time.Time
	writer  io.Writer
	now     func() time.Time
}

// NewProgressReporter creates a progress reporter writing to w, or to
// os.Stderr when w is nil.
func NewProgressReporter(w io.Writer) *SimpleProgress {
	if w == nil {
		w = os.Stderr
	}
	return &SimpleProgress{writer: w, now: time.Now}
}

// Start resets the reporter for total items.
func (p *SimpleProgress) Start(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = total
	p.done = 0
	p.failed = 0
	p.started = p.now()
	p.render()
}

// Increment records one finished item.
func (p *SimpleProgress) Increment(failed bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done++
	if failed {
		p.failed++
	}
	p.render()
}

// Finish ends the progress line.
func (p *SimpleProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.total == 0 {
		return
	}
	fmt.Fprintln(p.writer)
}

// NoProgress discards progress updates.
type NoProgress struct{}

func (NoProgress) Start(int)      {}
func (NoProgress) Increment(bool) {}
func (NoProgress) Finish()        {}

func (p *SimpleProgress) render() {
	if p.total == 0 {
		return
	}

	const barWidth = 30
	filled := barWidth * p.done / p.total
	bar := strings.Repeat("#", filled) + strings.Repeat("-", barWidth-filled)

	rate := 0.0
	if elapsed := p.now().Sub(p.started).Seconds(); elapsed > 0 {
		rate = float64(p.done) / elapsed
	}

	fmt.Fprintf(p.writer, "\r[%s] %d/%d loans, %d failed, %.1f loans/s",
		bar, p.done, p.total, p.failed, rate)
}
