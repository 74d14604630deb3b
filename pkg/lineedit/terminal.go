package lineedit

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"syscall"

	"golang.org/x/term"
)

// Console is the terminal device surface the line editor talks to. The
// production implementation is Term; tests substitute a scripted console.
type Console interface {
	// Read reads at most len(p) bytes. A return of (0, nil) means no data
	// is available yet and the caller should retry.
	Read(p []byte) (int, error)

	// WriteAll writes all of p, retrying transient failures. Any error
	// returned is fatal to the session.
	WriteAll(p []byte) error

	// CursorPos reports the 1-based cursor position.
	CursorPos() (row, col int, err error)

	// Size reports the terminal dimensions in character cells.
	Size() (cols, rows int, err error)
}

// Escape sequence encoders. All of them are pure and return the exact bytes
// to send; a count of zero encodes to nothing.

func MoveUp(n int) []byte {
	if n <= 0 {
		return nil
	}
	return fmt.Appendf(nil, "\x1b[%dA", n)
}

func MoveDown(n int) []byte {
	if n <= 0 {
		return nil
	}
	return fmt.Appendf(nil, "\x1b[%dB", n)
}

func MoveRight(n int) []byte {
	if n <= 0 {
		return nil
	}
	return fmt.Appendf(nil, "\x1b[%dC", n)
}

func MoveLeft(n int) []byte {
	if n <= 0 {
		return nil
	}
	return fmt.Appendf(nil, "\x1b[%dD", n)
}

func SetPosition(row, col int) []byte {
	return fmt.Appendf(nil, "\x1b[%d;%dH", row, col)
}

func KillLine() []byte {
	return []byte("\x1b[K")
}

func KillToScreenEnd() []byte {
	return []byte("\x1b[J")
}

func Bell() []byte {
	return []byte{0x07}
}

// reverseVideo wraps text in the reverse-video attribute, used to highlight
// the selected completion candidate.
func reverseVideo(text []byte) []byte {
	out := make([]byte, 0, len(text)+8)
	out = append(out, "\x1b[7m"...)
	out = append(out, text...)
	out = append(out, "\x1b[0m"...)
	return out
}

// Term is the real terminal: stdin/stdout in raw mode.
type Term struct {
	in    *os.File
	out   *os.File
	saved *term.State
}

func NewTerm() *Term {
	return &Term{in: os.Stdin, out: os.Stdout}
}

// MakeRaw switches the terminal to raw (non-canonical, no-echo) mode,
// remembering the prior attributes. Calling it twice without an intervening
// Restore is an error.
func (t *Term) MakeRaw() error {
	if t.saved != nil {
		return errors.New("terminal is already in raw mode")
	}
	saved, err := term.MakeRaw(int(t.in.Fd()))
	if err != nil {
		return fmt.Errorf("entering raw mode: %w", err)
	}
	t.saved = saved
	return nil
}

// Restore reinstates the attributes captured by MakeRaw. It is a no-op when
// the terminal is not in raw mode, so it is safe to defer unconditionally.
func (t *Term) Restore() error {
	if t.saved == nil {
		return nil
	}
	saved := t.saved
	t.saved = nil
	if err := term.Restore(int(t.in.Fd()), saved); err != nil {
		return fmt.Errorf("restoring terminal attributes: %w", err)
	}
	return nil
}

func (t *Term) Read(p []byte) (int, error) {
	n, err := t.in.Read(p)
	if err != nil {
		if errors.Is(err, syscall.EAGAIN) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading terminal input: %w", err)
	}
	return n, nil
}

func (t *Term) WriteAll(p []byte) error {
	for len(p) > 0 {
		n, err := t.out.Write(p)
		if err != nil && !errors.Is(err, syscall.EAGAIN) {
			return fmt.Errorf("writing terminal output: %w", err)
		}
		p = p[n:]
	}
	return nil
}

func (t *Term) Size() (int, int, error) {
	cols, rows, err := term.GetSize(int(t.out.Fd()))
	if err != nil {
		return 0, 0, fmt.Errorf("querying terminal size: %w", err)
	}
	return cols, rows, nil
}

// CursorPos asks the terminal for the cursor position and parses the reply.
// The report arrives on the input stream as ESC [ row ; col R.
func (t *Term) CursorPos() (int, int, error) {
	if err := t.WriteAll([]byte("\x1b[6n")); err != nil {
		return 0, 0, err
	}
	buf := make([]byte, 0, 16)
	chunk := make([]byte, 16)
	for {
		n, err := t.Read(chunk)
		if err != nil {
			return 0, 0, err
		}
		buf = append(buf, chunk[:n]...)
		if bytes.IndexByte(buf, 'R') >= 0 {
			break
		}
	}
	return parseCursorReport(buf)
}

// parseCursorReport decodes a cursor position report. A malformed report is
// an unrecoverable protocol violation: a conformant terminal never produces
// one.
func parseCursorReport(report []byte) (int, int, error) {
	end := bytes.IndexByte(report, 'R')
	if end < 0 || !bytes.HasPrefix(report, []byte("\x1b[")) {
		return 0, 0, fmt.Errorf("malformed cursor position report %q", report)
	}
	parts := bytes.Split(report[2:end], []byte(";"))
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed cursor position report %q", report)
	}
	row, err := strconv.Atoi(string(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("malformed cursor position report %q: %w", report, err)
	}
	col, err := strconv.Atoi(string(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("malformed cursor position report %q: %w", report, err)
	}
	return row, col, nil
}
