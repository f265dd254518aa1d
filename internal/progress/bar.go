// Package progress renders a single-line terminal progress bar for the
// tagging batch. Updates are throttled so a fast run doesn't flood the
// terminal with redraws.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

const (
	barWidth      = 40
	redrawEvery   = 500 * time.Millisecond
	fillRune      = "█"
	remainderRune = "░"
)

// Bar tracks completed files out of a known total and redraws itself
// in place. Safe for concurrent Increment calls from the worker pool.
type Bar struct {
	mu       sync.Mutex
	out      io.Writer
	total    int
	done     int
	started  time.Time
	lastDraw time.Time
	finished bool
}

// New returns a bar for a batch of total files, writing to stdout.
func New(total int) *Bar {
	return NewWriter(os.Stdout, total)
}

// NewWriter is New with an explicit output destination.
func NewWriter(out io.Writer, total int) *Bar {
	now := time.Now()
	return &Bar{out: out, total: total, started: now, lastDraw: now}
}

// Increment records one completed file. The bar only redraws when the
// throttle window has passed or the batch just completed.
func (b *Bar) Increment() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.done++
	if now := time.Now(); b.done >= b.total || now.Sub(b.lastDraw) > redrawEvery {
		b.draw()
		b.lastDraw = now
	}
}

// Finish forces a final full redraw and terminates the line. Further
// calls are no-ops.
func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.finished {
		return
	}
	b.done = b.total
	b.draw()
	fmt.Fprintln(b.out)
	b.finished = true
}

// draw repaints the current line. Callers hold b.mu.
func (b *Bar) draw() {
	if b.finished || b.total <= 0 {
		return
	}

	ratio := float64(b.done) / float64(b.total)
	filled := int(ratio * barWidth)
	if filled > barWidth {
		filled = barWidth
	}

	elapsed := time.Since(b.started)
	var eta time.Duration
	if b.done > 0 {
		eta = elapsed / time.Duration(b.done) * time.Duration(b.total-b.done)
	}

	fmt.Fprintf(b.out, "\r[%s%s] %d/%d files (%.1f%%) - Elapsed: %s - ETA: %s   ",
		strings.Repeat(fillRune, filled),
		strings.Repeat(remainderRune, barWidth-filled),
		b.done, b.total, ratio*100,
		compactDuration(elapsed), compactDuration(eta),
	)
}

// compactDuration renders a duration as 42s, 3m12s or 1h05m.
func compactDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	}
}
