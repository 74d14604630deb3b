package lineedit

import (
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"
)

// ExecuteKind says how an edit session ended.
type ExecuteKind int

const (
	// ExecuteExit terminates the whole session (ctrl-C at the prompt).
	ExecuteExit ExecuteKind = iota
	// ExecuteCancel abandons the current line (ctrl-D at the prompt).
	ExecuteCancel
	// ExecuteCommand yields a finished command line.
	ExecuteCommand
)

// Execute is the outcome of one Read call. Line is set for ExecuteCommand.
type Execute struct {
	Kind ExecuteKind
	Line string
}

// WordSplitter reconstructs the word under the cursor for completion. The
// editor consumes it; the shell supplies it.
type WordSplitter func(line string, cursor int) string

// ReadLine is the synchronous controller tying the text field, history and
// completion together: it runs the read-decode-dispatch loop and performs
// all terminal I/O on their behalf.
type ReadLine struct {
	console   Console
	field     TextField
	history   *History
	completer *Completer
	wordAt    WordSplitter
	logger    *zap.Logger
}

func NewReadLine(console Console, provider Provider, wordAt WordSplitter, logger *zap.Logger) *ReadLine {
	return &ReadLine{
		console:   console,
		history:   HistoryFromLines(nil),
		completer: NewCompleter(console, provider, logger),
		wordAt:    wordAt,
		logger:    logger,
	}
}

// LoadHistory replaces the scrollback with lines, oldest first.
func (r *ReadLine) LoadHistory(lines []string) {
	r.history = HistoryFromLines(lines)
}

// History returns the scrollback lines, oldest first.
func (r *ReadLine) History() []string {
	return r.history.Lines()
}

// utf8SeqLen returns the total byte length of the UTF-8 sequence announced
// by a lead byte, or an error for bytes that can never start a sequence.
func utf8SeqLen(b byte) (int, error) {
	switch {
	case b < 0x80:
		return 1, nil
	case b < 0xc0:
		return 0, fmt.Errorf("invalid utf-8 lead byte 0x%02x", b)
	case b < 0xe0:
		return 2, nil
	case b < 0xf0:
		return 3, nil
	case b < 0xf8:
		return 4, nil
	default:
		return 0, fmt.Errorf("invalid utf-8 lead byte 0x%02x", b)
	}
}

// readFull blocks until p is filled, riding out zero-byte reads.
func (r *ReadLine) readFull(p []byte) error {
	for have := 0; have < len(p); {
		n, err := r.console.Read(p[have:])
		if err != nil {
			return err
		}
		have += n
	}
	return nil
}

// alignedRead reads exactly one decodable unit: a full escape sequence or
// one complete code point. Input buffered behind the unit stays in the
// console for the next call, so every decode sees a single unit.
func (r *ReadLine) alignedRead(buf []byte) ([]byte, error) {
	if err := r.readFull(buf[:1]); err != nil {
		return nil, err
	}
	if buf[0] == 0x1b {
		return r.readEscape(buf)
	}
	size, err := utf8SeqLen(buf[0])
	if err != nil {
		return nil, err
	}
	if err := r.readFull(buf[1:size]); err != nil {
		return nil, err
	}
	return buf[:size], nil
}

// readEscape consumes one escape sequence whose introducer is already in
// buf[0], reading byte at a time. A CSI sequence runs until its final byte
// in 0x40..0x7e, which covers the arrow, shift-tab and delete (`~`) endings;
// any other introducer pair comes back as a two-byte unit. A sequence that
// would overrun buf is returned truncated rather than swallowing input.
func (r *ReadLine) readEscape(buf []byte) ([]byte, error) {
	if err := r.readFull(buf[1:2]); err != nil {
		return nil, err
	}
	if buf[1] != '[' {
		return buf[:2], nil
	}
	i := 2
	for i < len(buf) {
		if err := r.readFull(buf[i : i+1]); err != nil {
			return nil, err
		}
		i++
		if b := buf[i-1]; b >= 0x40 && b <= 0x7e {
			break
		}
	}
	return buf[:i], nil
}

func (r *ReadLine) scrollHistory(offset int) error {
	line, ok := r.history.Scroll(r.field.Text(), offset)
	if !ok {
		return r.console.WriteAll(Bell())
	}
	resp := r.field.SetText(line)
	return r.console.WriteAll(resp.Bytes)
}

func (r *ReadLine) completeNext(direction SelectionDirection) error {
	word := r.wordAt(r.field.Text(), r.field.CursorX())
	return r.completer.Next(word, direction)
}

// handleResponse flushes the response bytes and dispatches its command.
// Navigation keys scroll history in plain-edit mode but cycle candidates
// while a completion is active; accepting a completion clears it before the
// candidate text is reprocessed, so reinjected bytes cannot be mistaken for
// control input.
func (r *ReadLine) handleResponse(resp Response) (Execute, bool, error) {
	if err := r.console.WriteAll(resp.Bytes); err != nil {
		return Execute{}, false, err
	}

	item, active := r.completer.Current()
	if !active {
		switch resp.Cmd.Kind {
		case CmdNone:
			return Execute{}, false, nil
		case CmdCancel:
			return Execute{Kind: ExecuteExit}, true, nil
		case CmdEOF:
			return Execute{Kind: ExecuteCancel}, true, nil
		case CmdSubmit:
			return Execute{Kind: ExecuteCommand, Line: r.field.Text()}, true, nil
		case CmdKey:
			var err error
			switch resp.Cmd.Key {
			case KeyUp:
				err = r.scrollHistory(1)
			case KeyDown:
				err = r.scrollHistory(-1)
			case KeyTab:
				err = r.completeNext(SelectionDown)
			case KeyShiftTab:
				err = r.completeNext(SelectionUp)
			}
			return Execute{}, false, err
		}
		return Execute{}, false, nil
	}

	switch resp.Cmd.Kind {
	case CmdNone:
		return Execute{}, false, nil
	case CmdEOF, CmdCancel:
		return Execute{}, false, r.completer.Clear()
	case CmdSubmit:
		word := r.wordAt(r.field.Text(), r.field.CursorX())
		wordLen := utf8.RuneCountInString(word)
		r.field.MoveLeft(wordLen)
		r.field.EraseRight(wordLen)
		next := r.field.HandleInput(item)
		if err := r.completer.Clear(); err != nil {
			return Execute{}, false, err
		}
		return r.handleResponse(next)
	case CmdKey:
		var err error
		switch resp.Cmd.Key {
		case KeyDown, KeyTab:
			err = r.completeNext(SelectionDown)
		case KeyUp, KeyShiftTab:
			err = r.completeNext(SelectionUp)
		}
		return Execute{}, false, err
	}
	return Execute{}, false, nil
}

// Read runs one edit session and blocks until the user submits, cancels or
// exits. The terminal must already be in raw mode; the caller owns entering
// and restoring it.
func (r *ReadLine) Read() (Execute, error) {
	cols, _, err := r.console.Size()
	if err != nil {
		return Execute{}, err
	}
	_, col, err := r.console.CursorPos()
	if err != nil {
		return Execute{}, err
	}
	r.field.Clear()
	r.field.SetBounds(cols - col)

	var buf [8]byte
	var result Execute
	for {
		unit, err := r.alignedRead(buf[:])
		if err != nil {
			return Execute{}, err
		}
		resp := r.field.HandleInput(string(unit))
		exec, done, err := r.handleResponse(resp)
		if err != nil {
			return Execute{}, err
		}
		if done {
			result = exec
			break
		}
	}

	if result.Kind == ExecuteCommand {
		r.history.Push(result.Line)
		r.logger.Debug("line submitted", zap.String("line", result.Line))
	}
	r.history.Unselect()
	r.completer.Unselect()
	if err := r.console.WriteAll([]byte("\r\n\x1b[J")); err != nil {
		return Execute{}, err
	}
	return result, nil
}
