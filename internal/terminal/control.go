// Package terminal renders the live session-status stream in place, one
// line at a time, at the bottom of the user's terminal. It is adapted from
// the teacher's internal/terminal/control.go, which exposed generic
// multi-line ANSI cursor-control for redrawing a metrics summary block;
// this repoints the same primitives at a single evolving
// internal/status.Event line instead, since a push-to-talk session only
// ever has one status in flight at a time.
package terminal

import (
	"fmt"
	"os"

	"github.com/talktotext/t2/internal/status"
)

// Display tracks whether the previous render needs overwriting and whether
// stdout is attached to an interactive terminal at all.
type Display struct {
	rendered bool
}

func NewDisplay() *Display {
	return &Display{}
}

// IsTerminal reports whether stdout is a character device. Piped or
// redirected output falls back to appending one line per event instead of
// redrawing in place.
func (d *Display) IsTerminal() bool {
	info, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// Render prints ev as the current status line. On an interactive terminal
// it overwrites the line from the previous call instead of scrolling.
func (d *Display) Render(ev status.Event) {
	line := formatStatusLine(ev)

	if !d.IsTerminal() {
		fmt.Println(line)
		return
	}

	if d.rendered {
		fmt.Print("\033[2K\r") // clear current line, return to column 0
	}
	fmt.Print(line)
	d.rendered = true

	if isTerminalStatus(ev.Status) {
		fmt.Println()
		d.rendered = false
	}
}

func formatStatusLine(ev status.Event) string {
	switch {
	case ev.Error != "":
		return fmt.Sprintf("[%s] error: %s", ev.Status, ev.Error)
	case ev.Reason != "":
		return fmt.Sprintf("[%s] %s", ev.Status, ev.Reason)
	case ev.Text != "":
		return fmt.Sprintf("[%s] %q", ev.Status, ev.Text)
	default:
		return fmt.Sprintf("[%s]", ev.Status)
	}
}

func isTerminalStatus(s string) bool {
	switch s {
	case "complete", "timeout", "cancelled", "error", "skipped", "idle":
		return true
	default:
		return false
	}
}

// HideCursor and ShowCursor bracket a run of in-place Render calls so the
// blinking cursor doesn't visually fight the redraw.
func HideCursor() { fmt.Print("\033[?25l") }
func ShowCursor() { fmt.Print("\033[?25h") }
