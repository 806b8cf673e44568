// Package ui owns the terminal surface and lays the dashboard out on it.
package ui

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

const (
	escAltScreenOn  = "\033[?1049h"
	escAltScreenOff = "\033[?1049l"
	escCursorHide   = "\033[?25l"
	escCursorShow   = "\033[?25h"
	escClear        = "\033[2J"
	escHome         = "\033[H"
	escClearBelow   = "\033[J"
	escReverse      = "\033[7m"
	escReset        = "\033[0m"
)

// ErrNotTerminal is returned when the dashboard is started without a tty.
var ErrNotTerminal = errors.New("stdin/stdout is not a terminal (use -D for plain output)")

// Surface owns the terminal while the dashboard is on screen: raw mode on
// the alternate screen buffer with the cursor hidden. It must be released on
// every exit path or the user's shell is left with echo disabled.
type Surface struct {
	in, out *os.File
	saved   *term.State
	rows    int
	cols    int
	frame   strings.Builder
	active  bool
}

// NewSurface acquires the terminal.
func NewSurface() (*Surface, error) {
	s := &Surface{in: os.Stdin, out: os.Stdout}
	if !term.IsTerminal(int(s.in.Fd())) || !term.IsTerminal(int(s.out.Fd())) {
		return nil, ErrNotTerminal
	}
	if err := s.Resume(); err != nil {
		return nil, err
	}
	return s, nil
}

// Resume switches to raw mode on the alternate screen. Paired with Suspend
// around the full-history dump, and with Release at exit.
func (s *Surface) Resume() error {
	if s.active {
		return nil
	}
	saved, err := term.MakeRaw(int(s.in.Fd()))
	if err != nil {
		return fmt.Errorf("entering raw mode: %w", err)
	}
	s.saved = saved
	s.active = true
	fmt.Fprint(s.out, escAltScreenOn+escCursorHide+escClear)
	s.refreshSize()
	return nil
}

// Suspend restores the main screen and cooked terminal state.
func (s *Surface) Suspend() {
	if !s.active {
		return
	}
	fmt.Fprint(s.out, escCursorShow+escAltScreenOff)
	if s.saved != nil {
		_ = term.Restore(int(s.in.Fd()), s.saved)
		s.saved = nil
	}
	s.active = false
}

// Release restores the terminal. Idempotent, safe to defer alongside
// explicit calls on error paths.
func (s *Surface) Release() {
	s.Suspend()
}

func (s *Surface) refreshSize() {
	if cols, rows, err := term.GetSize(int(s.out.Fd())); err == nil {
		s.cols, s.rows = cols, rows
	}
}

// Rows reports the surface height as of the last BeginFrame.
func (s *Surface) Rows() int { return s.rows }

// Cols reports the surface width as of the last BeginFrame.
func (s *Surface) Cols() int { return s.cols }

// BeginFrame re-queries the terminal dimensions (tolerating resizes since
// the previous frame) and starts buffering a new frame.
func (s *Surface) BeginFrame() {
	s.refreshSize()
	s.frame.Reset()
	s.frame.WriteString(escHome)
}

// PutLine buffers one text line at the given row (0-based), clipped to the
// surface width and padded to full width so stale content is overwritten.
// Rows outside the current bounds are silently dropped.
func (s *Surface) PutLine(row int, text string, highlight bool) {
	if !s.active || row < 0 || row >= s.rows {
		return
	}
	line := PadRight(Clip(text, s.cols), s.cols)
	fmt.Fprintf(&s.frame, "\033[%d;1H", row+1)
	if highlight {
		s.frame.WriteString(escReverse + line + escReset)
	} else {
		s.frame.WriteString(line)
	}
}

// EndFrame clears everything below the last drawn row and flushes the frame
// to the terminal in one write.
func (s *Surface) EndFrame() {
	if !s.active {
		return
	}
	s.frame.WriteString(escClearBelow)
	fmt.Fprint(s.out, s.frame.String())
}
