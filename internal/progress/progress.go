// Package progress renders a single-line terminal progress indicator for
// long directory scans. Output goes to a caller-supplied writer and is a
// no-op when disabled, so library callers pay nothing.
package progress

import (
	"fmt"
	"io"
)

// Tracker writes an in-place progress line. It is not safe for concurrent
// use; scans update it from one goroutine.
type Tracker struct {
	w       io.Writer
	desc    string
	total   int
	done    int
	enabled bool
}

// New returns a tracker writing to w. A nil writer or enabled=false
// produces a silent tracker. total <= 0 renders a plain counter instead of
// a bar.
func New(w io.Writer, desc string, total int, enabled bool) *Tracker {
	if w == nil {
		enabled = false
	}
	return &Tracker{w: w, desc: desc, total: total, enabled: enabled}
}

// Update advances the counter by one and redraws the line. status names
// the item being processed and may be empty.
func (t *Tracker) Update(status string) {
	if !t.enabled {
		return
	}
	t.done++
	t.render(status)
}

// Finish redraws the final state and terminates the line.
func (t *Tracker) Finish() {
	if !t.enabled {
		return
	}
	t.render("")
	fmt.Fprintln(t.w)
}

func (t *Tracker) render(status string) {
	if t.total > 0 {
		pct := t.done * 100 / t.total
		if pct > 100 {
			pct = 100
		}
		fmt.Fprintf(t.w, "\r%s: %3d%% (%d/%d) %s\x1b[K", t.desc, pct, t.done, t.total, truncate(status, 40))
		return
	}
	fmt.Fprintf(t.w, "\r%s: %d %s\x1b[K", t.desc, t.done, truncate(status, 40))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

// Discard is a disabled tracker for callers that want to pass something
// unconditionally.
var Discard = New(io.Discard, "", 0, false)
