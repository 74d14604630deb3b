package lineedit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// spaceWord mirrors the shell's word splitter: the run of non-space
// characters ending at the cursor.
func spaceWord(line string, cursor int) string {
	rs := []rune(line)
	if cursor <= 0 || cursor > len(rs) || rs[cursor-1] == ' ' {
		return ""
	}
	start := 0
	for i := cursor - 1; i >= 0; i-- {
		if rs[i] == ' ' {
			start = i + 1
			break
		}
	}
	return string(rs[start:cursor])
}

func newTestReadLine(input string, provider Provider) (*ReadLine, *fakeConsole) {
	console := newFakeConsole(input)
	if provider == nil {
		provider = &countingProvider{}
	}
	return NewReadLine(console, provider, spaceWord, zap.NewNop()), console
}

func TestReadSubmitsTypedLine(t *testing.T) {
	r, _ := newTestReadLine("echo hi\r", nil)

	exec, err := r.Read()

	require.NoError(t, err)
	assert.Equal(t, ExecuteCommand, exec.Kind)
	assert.Equal(t, "echo hi", exec.Line)
	assert.Equal(t, []string{"echo hi"}, r.History(), "submitted lines enter the scrollback")
}

func TestReadBackspace(t *testing.T) {
	r, _ := newTestReadLine("ab\x7f\r", nil)

	exec, err := r.Read()

	require.NoError(t, err)
	assert.Equal(t, "a", exec.Line)
}

func TestReadCtrlCExits(t *testing.T) {
	r, _ := newTestReadLine("half a line\x03", nil)

	exec, err := r.Read()

	require.NoError(t, err)
	assert.Equal(t, ExecuteExit, exec.Kind)
}

func TestReadCtrlDCancels(t *testing.T) {
	r, _ := newTestReadLine("half a line\x04", nil)

	exec, err := r.Read()

	require.NoError(t, err)
	assert.Equal(t, ExecuteCancel, exec.Kind)
	assert.Empty(t, r.History(), "a cancelled line is not recorded")
}

func TestReadEmptySubmitNotRecorded(t *testing.T) {
	r, _ := newTestReadLine("\r", nil)

	exec, err := r.Read()

	require.NoError(t, err)
	assert.Equal(t, ExecuteCommand, exec.Kind)
	assert.Empty(t, r.History())
}

func TestArrowUpRecallsHistory(t *testing.T) {
	r, console := newTestReadLine("\x1b[A\r", nil)
	r.LoadHistory([]string{"ls", "pwd"})

	exec, err := r.Read()

	require.NoError(t, err)
	assert.Equal(t, "pwd", exec.Line)
	assert.Contains(t, console.output.String(), "pwd", "the recalled line is rendered")
}

func TestHistoryExhaustionRingsBell(t *testing.T) {
	r, console := newTestReadLine("\x1b[A\x1b[A\r", nil)
	r.LoadHistory([]string{"ls"})

	exec, err := r.Read()

	require.NoError(t, err)
	assert.Equal(t, "ls", exec.Line)
	assert.Contains(t, console.output.String(), string(Bell()))
}

func TestScrollDownWithNoDraftHistoryRingsBell(t *testing.T) {
	r, console := newTestReadLine("\x1b[B\r", nil)
	r.LoadHistory([]string{"ls"})

	_, err := r.Read()

	require.NoError(t, err)
	assert.Contains(t, console.output.String(), string(Bell()))
}

func TestAlignedReadAssemblesUTF8(t *testing.T) {
	r, console := newTestReadLine("\xe2\x82\xac\r", nil) // €
	console.maxPerRead = 1                               // deliver one byte per read

	exec, err := r.Read()

	require.NoError(t, err)
	assert.Equal(t, "€", exec.Line, "a 3-byte lead blocks until both continuation bytes arrive")
}

func TestAlignedReadRejectsMalformedLead(t *testing.T) {
	r, _ := newTestReadLine("\x80", nil)

	_, err := r.Read()

	assert.Error(t, err, "a bare continuation byte is an unrecoverable protocol violation")
}

func TestAlignedReadStopsAtSequenceFinalByte(t *testing.T) {
	cases := []struct {
		name  string
		input string
		units []string
	}{
		{"arrow then printable", "\x1b[Ax", []string{"\x1b[A", "x"}},
		{"arrow then return", "\x1b[A\r", []string{"\x1b[A", "\r"}},
		{"delete key", "\x1b[3~y", []string{"\x1b[3~", "y"}},
		{"back to back arrows", "\x1b[A\x1b[B", []string{"\x1b[A", "\x1b[B"}},
		{"bare escape pair", "\x1bqz", []string{"\x1bq", "z"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, _ := newTestReadLine(tc.input, nil)
			var buf [8]byte
			for _, want := range tc.units {
				unit, err := r.alignedRead(buf[:])
				require.NoError(t, err)
				assert.Equal(t, want, string(unit), "buffered input past the unit must stay unread")
			}
		})
	}
}

func TestTabOpensCompletionAndSubmitAccepts(t *testing.T) {
	provider := &countingProvider{items: []string{"src/", "srv.txt"}}
	r, console := newTestReadLine("sr\t\r\r", provider)

	exec, err := r.Read()

	require.NoError(t, err)
	assert.Equal(t, "src/", exec.Line, "submit while completing accepts the candidate, the next submit finishes the line")
	assert.Equal(t, 1, provider.calls)
	assert.Contains(t, console.output.String(), string(reverseVideo([]byte("src/"))))
}

func TestTabCyclesCandidates(t *testing.T) {
	provider := &countingProvider{items: []string{"src/", "srv.txt"}}
	r, console := newTestReadLine("sr\t\t\r\r", provider)

	exec, err := r.Read()

	require.NoError(t, err)
	assert.Equal(t, "srv.txt", exec.Line)
	assert.Equal(t, 1, provider.calls, "cycling never re-lists the directory")
	assert.Contains(t, console.output.String(), string(reverseVideo([]byte("srv.txt"))))
}

func TestShiftTabCyclesBackwards(t *testing.T) {
	provider := &countingProvider{items: []string{"a", "b", "c"}}
	r, _ := newTestReadLine("x\t\x1b[Z\r\r", provider)

	exec, err := r.Read()

	require.NoError(t, err)
	assert.Equal(t, "c", exec.Line, "shift-tab wraps to the last visible candidate")
}

func TestArrowsCycleWhileCompleting(t *testing.T) {
	provider := &countingProvider{items: []string{"one", "two"}}
	r, _ := newTestReadLine("o\t\x1b[B\r\r", provider)

	exec, err := r.Read()

	require.NoError(t, err)
	assert.Equal(t, "two", exec.Line, "down cycles candidates instead of scrolling history")
}

func TestCtrlCDismissesCompletion(t *testing.T) {
	provider := &countingProvider{items: []string{"src/"}}
	r, _ := newTestReadLine("sr\x09\x03sr\r", provider)

	exec, err := r.Read()

	require.NoError(t, err)
	assert.Equal(t, ExecuteCommand, exec.Kind, "ctrl-C while completing only dismisses the candidate list")
	assert.Equal(t, "srsr", exec.Line)
}

func TestAcceptedCandidateIsNotReinterpreted(t *testing.T) {
	// A candidate containing a carriage return is reprocessed after the
	// completion is cleared, so the CR acts on a plain line instead of
	// accepting a completion a second time.
	provider := &countingProvider{items: []string{"weird\rname"}}
	r, _ := newTestReadLine("we\t\r\r", provider)

	exec, err := r.Read()

	require.NoError(t, err)
	assert.Equal(t, ExecuteCommand, exec.Kind)
	assert.Equal(t, "weirdname", exec.Line)
	assert.Equal(t, 1, provider.calls)
}

func TestAcceptReplacesWholeWord(t *testing.T) {
	provider := &countingProvider{items: []string{"status.txt"}}
	r, _ := newTestReadLine("git st\t\r\r", provider)

	exec, err := r.Read()

	require.NoError(t, err)
	assert.Equal(t, "git status.txt", exec.Line)
}

func TestBoundsComeFromTerminalGeometry(t *testing.T) {
	console := newFakeConsole(strings.Repeat("x", 30) + "\r")
	console.cols = 20
	console.col = 5
	r := NewReadLine(console, &countingProvider{}, spaceWord, zap.NewNop())

	exec, err := r.Read()

	require.NoError(t, err)
	assert.Len(t, exec.Line, 15, "input past the visible width is dropped")
}

func TestUTF8SeqLen(t *testing.T) {
	tests := []struct {
		lead byte
		size int
		ok   bool
	}{
		{'a', 1, true},
		{0x7f, 1, true},
		{0xc3, 2, true},
		{0xe2, 3, true},
		{0xf0, 4, true},
		{0x80, 0, false},
		{0xbf, 0, false},
		{0xf8, 0, false},
		{0xff, 0, false},
	}
	for _, tt := range tests {
		size, err := utf8SeqLen(tt.lead)
		if tt.ok {
			require.NoError(t, err)
			assert.Equal(t, tt.size, size)
		} else {
			assert.Error(t, err, "lead byte 0x%02x", tt.lead)
		}
	}
}
