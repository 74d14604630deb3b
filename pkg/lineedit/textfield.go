package lineedit

// Key identifies a navigation key intercepted by the text field but handled
// by the caller.
type Key int

const (
	KeyUp Key = iota
	KeyDown
	KeyTab
	KeyShiftTab
)

func (k Key) String() string {
	switch k {
	case KeyUp:
		return "up"
	case KeyDown:
		return "down"
	case KeyTab:
		return "tab"
	case KeyShiftTab:
		return "shift-tab"
	}
	return "unknown"
}

// CommandKind enumerates what a decoded input chunk asks the caller to do.
type CommandKind int

const (
	CmdNone CommandKind = iota
	CmdEOF
	CmdCancel
	CmdSubmit
	CmdKey
)

// Command is a tagged value: either a plain command or a navigation key,
// never both. Key is meaningful only when Kind is CmdKey.
type Command struct {
	Kind CommandKind
	Key  Key
}

func KeyCommand(k Key) Command {
	return Command{Kind: CmdKey, Key: k}
}

// Response carries the terminal output produced by a batch of edits together
// with the command signal decoded from them. The field accumulates it across
// mutations and hands it over whole on the next HandleInput/SetText.
type Response struct {
	Bytes []byte
	Cmd   Command
}

// TextField owns the line under edit. All cursor and length arithmetic is in
// Unicode scalar values; byte offsets exist only transiently when encoding
// output. It performs no I/O: every mutation appends the exact terminal
// instructions needed to mirror the change into the pending response.
type TextField struct {
	text    []rune
	cursorX int
	bounds  int
	resp    Response
}

func NewTextField(bounds int) *TextField {
	return &TextField{bounds: bounds}
}

func (t *TextField) Text() string {
	return string(t.text)
}

func (t *TextField) CursorX() int {
	return t.cursorX
}

// SetBounds truncates the text to the new width if it no longer fits and
// keeps the cursor inside it. Idempotent when the text already fits.
func (t *TextField) SetBounds(bounds int) {
	if bounds < 0 {
		bounds = 0
	}
	if len(t.text) > bounds {
		t.text = t.text[:bounds]
	}
	if t.cursorX > len(t.text) {
		t.cursorX = len(t.text)
	}
	t.bounds = bounds
}

// Clear resets the field without emitting anything.
func (t *TextField) Clear() {
	t.text = nil
	t.cursorX = 0
	t.resp = Response{}
}

func (t *TextField) takeResponse() Response {
	r := t.resp
	t.resp = Response{}
	return r
}

// SetText replaces the whole line, rewriting it from the line start. This is
// the one full redraw in the protocol, used for history recall.
func (t *TextField) SetText(text string) Response {
	t.resp.Cmd = Command{}
	t.resp.Bytes = append(MoveLeft(t.cursorX), KillLine()...)
	t.resp.Bytes = append(t.resp.Bytes, text...)
	t.text = []rune(text)
	t.cursorX = len(t.text)
	return t.takeResponse()
}

func (t *TextField) MoveLeft(n int) {
	if n > t.cursorX {
		n = t.cursorX
	}
	if n <= 0 {
		return
	}
	t.cursorX -= n
	t.resp.Bytes = append(t.resp.Bytes, MoveLeft(n)...)
}

// MoveRight clamps to the end of the text so the cursor can never sit past
// the last character.
func (t *TextField) MoveRight(n int) {
	t.moveRight(n)
}

func (t *TextField) moveRight(n int) int {
	if max := len(t.text) - t.cursorX; n > max {
		n = max
	}
	if n <= 0 {
		return 0
	}
	t.cursorX += n
	t.resp.Bytes = append(t.resp.Bytes, MoveRight(n)...)
	return n
}

// handleBackspace removes the character left of the cursor and repairs the
// display: step left, kill to end of line, rewrite the trailing suffix, step
// back over it. Cost is proportional to the trailing text.
func (t *TextField) handleBackspace() {
	if t.cursorX == 0 {
		return
	}
	t.cursorX--
	t.text = append(t.text[:t.cursorX], t.text[t.cursorX+1:]...)
	suffix := t.text[t.cursorX:]
	t.resp.Bytes = append(t.resp.Bytes, MoveLeft(1)...)
	t.resp.Bytes = append(t.resp.Bytes, KillLine()...)
	t.resp.Bytes = append(t.resp.Bytes, string(suffix)...)
	t.resp.Bytes = append(t.resp.Bytes, MoveLeft(len(suffix))...)
}

func (t *TextField) EraseLeft(n int) {
	for i := 0; i < n; i++ {
		t.handleBackspace()
	}
}

// EraseRight deletes up to n characters right of the cursor, emitting the
// same bytes as moving right and backspacing once per character.
func (t *TextField) EraseRight(n int) {
	moved := t.moveRight(n)
	for i := 0; i < moved; i++ {
		t.handleBackspace()
	}
}

// deleteRight handles the delete key: a single erase under the cursor.
func (t *TextField) deleteRight() {
	if t.cursorX >= len(t.text) {
		return
	}
	t.moveRight(1)
	t.handleBackspace()
}

// handleChar inserts a printable character at the cursor. Appending at the
// end emits only the character itself; a mid-line insert kills to end of
// line, rewrites the suffix and steps back behind the insertion point. A
// character that would push the text past the bound is dropped.
func (t *TextField) handleChar(c rune) {
	if len(t.text) >= t.bounds {
		return
	}
	if t.cursorX == len(t.text) {
		t.text = append(t.text, c)
		t.resp.Bytes = append(t.resp.Bytes, string(c)...)
	} else {
		t.text = append(t.text[:t.cursorX], append([]rune{c}, t.text[t.cursorX:]...)...)
		suffix := t.text[t.cursorX:]
		t.resp.Bytes = append(t.resp.Bytes, KillLine()...)
		t.resp.Bytes = append(t.resp.Bytes, string(suffix)...)
		t.resp.Bytes = append(t.resp.Bytes, MoveLeft(len(suffix)-1)...)
	}
	t.cursorX++
}

// HandleInput decodes one aligned input chunk into buffer mutations and a
// command signal. Characters are processed left to right; when a chunk holds
// several recognized commands the last one wins.
func (t *TextField) HandleInput(input string) Response {
	rs := []rune(input)
	for i := 0; i < len(rs); i++ {
		c := rs[i]
		switch {
		case c == 0x01: // ctrl-A
			t.MoveLeft(t.cursorX)
		case c == 0x03: // ctrl-C
			t.resp.Cmd = Command{Kind: CmdCancel}
		case c == 0x04: // ctrl-D
			t.resp.Cmd = Command{Kind: CmdEOF}
		case c == 0x05: // ctrl-E
			t.MoveRight(len(t.text) - t.cursorX)
		case c == '\t':
			t.resp.Cmd = KeyCommand(KeyTab)
		case c == '\r':
			t.resp.Cmd = Command{Kind: CmdSubmit}
		case c == 0x1b:
			i++
			if i >= len(rs) || rs[i] != '[' {
				continue
			}
			i++
			if i >= len(rs) {
				continue
			}
			switch rs[i] {
			case 'A':
				t.resp.Cmd = KeyCommand(KeyUp)
			case 'B':
				t.resp.Cmd = KeyCommand(KeyDown)
			case 'C':
				t.MoveRight(1)
			case 'D':
				t.MoveLeft(1)
			case 'Z':
				t.resp.Cmd = KeyCommand(KeyShiftTab)
			case '3':
				i++
				if i < len(rs) && rs[i] == '~' {
					t.deleteRight()
				}
			}
		case c == 0x7f:
			t.handleBackspace()
		case c >= 0x01 && c <= 0x1a:
			// remaining control characters are ignored
		default:
			t.handleChar(c)
		}
	}
	return t.takeResponse()
}
