package lineedit

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCandidatesAreCachedPerWord(t *testing.T) {
	console := newFakeConsole("")
	provider := &countingProvider{items: []string{"src/", "srv.txt"}}
	completer := NewCompleter(console, provider, zap.NewNop())

	require.NoError(t, completer.Next("sr", SelectionDown))
	require.NoError(t, completer.Next("sr", SelectionDown))
	assert.Equal(t, 1, provider.calls, "navigation on an unchanged word must not recompute")

	require.NoError(t, completer.Next("src", SelectionDown))
	assert.Equal(t, 2, provider.calls, "a changed word invalidates the cache")
}

func TestCyclingWrapsOverVisibleRows(t *testing.T) {
	console := newFakeConsole("")
	provider := &countingProvider{items: []string{"src/", "srv.txt"}}
	completer := NewCompleter(console, provider, zap.NewNop())

	require.NoError(t, completer.Next("sr", SelectionDown))
	item, ok := completer.Current()
	require.True(t, ok)
	assert.Equal(t, "src/", item, "the first press selects the first candidate")

	require.NoError(t, completer.Next("sr", SelectionDown))
	item, _ = completer.Current()
	assert.Equal(t, "srv.txt", item)

	require.NoError(t, completer.Next("sr", SelectionDown))
	item, _ = completer.Current()
	assert.Equal(t, "src/", item, "cycling wraps back to the first candidate")
}

func TestCyclingUpWrapsBackwards(t *testing.T) {
	console := newFakeConsole("")
	provider := &countingProvider{items: []string{"a", "b", "c"}}
	completer := NewCompleter(console, provider, zap.NewNop())

	require.NoError(t, completer.Next("x", SelectionUp))
	item, _ := completer.Current()
	assert.Equal(t, "a", item)

	require.NoError(t, completer.Next("x", SelectionUp))
	item, _ = completer.Current()
	assert.Equal(t, "c", item)
}

func TestCurrentWithoutSelection(t *testing.T) {
	completer := NewCompleter(newFakeConsole(""), &countingProvider{}, zap.NewNop())

	_, ok := completer.Current()
	assert.False(t, ok)
}

func TestCurrentWithZeroCandidates(t *testing.T) {
	console := newFakeConsole("")
	completer := NewCompleter(console, &countingProvider{}, zap.NewNop())

	require.NoError(t, completer.Next("nope", SelectionDown))

	_, ok := completer.Current()
	assert.False(t, ok)
	assert.Contains(t, console.output.String(), "No matches")
}

func TestProviderErrorDegradesToNoMatches(t *testing.T) {
	console := newFakeConsole("")
	provider := &countingProvider{err: errors.New("permission denied")}
	completer := NewCompleter(console, provider, zap.NewNop())

	err := completer.Next("secret/", SelectionDown)

	assert.NoError(t, err, "listing failures never abort the input loop")
	assert.Contains(t, console.output.String(), "No matches")
}

func TestClearErasesBlockAndRestoresColumn(t *testing.T) {
	console := newFakeConsole("")
	console.col = 9
	completer := NewCompleter(console, &countingProvider{items: []string{"a"}}, zap.NewNop())
	require.NoError(t, completer.Next("a", SelectionDown))
	console.output.Reset()

	require.NoError(t, completer.Clear())

	want := append([]byte("\n\r"), KillToScreenEnd()...)
	want = append(want, MoveUp(1)...)
	want = append(want, MoveRight(8)...)
	assert.Equal(t, want, console.output.Bytes())

	_, ok := completer.Current()
	assert.False(t, ok)
}

func TestRenderCandidates(t *testing.T) {
	out := renderCandidates(3, 80, []string{"src/", "srv.txt"}, 0)

	want := append(KillToScreenEnd(), []byte("\r\n")...)
	want = append(want, reverseVideo([]byte("src/"))...)
	want = append(want, []byte("\r\nsrv.txt\r")...)
	want = append(want, MoveUp(2)...)
	want = append(want, MoveRight(2)...)
	assert.Equal(t, want, out)
}

func TestRenderCandidatesCapsVisibleRows(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e", "f", "g", "h"}

	out := renderCandidates(1, 80, items, 6)

	assert.NotContains(t, string(out), "g", "only the visible window is rendered")
	assert.Contains(t, string(out), string(MoveUp(6)))
	// index 6 wraps onto the first visible row
	assert.Contains(t, string(out), string(reverseVideo([]byte("a"))))
}

func TestRenderCandidatesTruncatesWideRows(t *testing.T) {
	long := make([]byte, 0, 120)
	for i := 0; i < 120; i++ {
		long = append(long, 'x')
	}

	out := renderCandidates(1, 40, []string{string(long)}, 0)

	assert.NotContains(t, string(out), string(long))
}

func TestFileProviderListsMatchingEntries(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "srv.txt"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other"), nil, 0o644))

	provider := NewFileProvider()
	items, err := provider.Provide(dir + "/sr")

	require.NoError(t, err)
	assert.Equal(t, []string{"src/", "srv.txt"}, items)
}

func TestFileProviderQuotesWhitespaceNames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "my notes.txt"), nil, 0o644))

	provider := NewFileProvider()
	items, err := provider.Provide(dir + "/my")

	require.NoError(t, err)
	assert.Equal(t, []string{"\"my notes.txt\""}, items)
}

func TestFileProviderTrailingSeparatorListsDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), nil, 0o644))

	provider := NewFileProvider()
	items, err := provider.Provide(dir + "/")

	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt"}, items)
}

func TestFileProviderAcceptJoinsDirectory(t *testing.T) {
	provider := NewFileProvider()
	_, _ = provider.Provide("cmd/or")
	assert.Equal(t, "cmd/oryx/", provider.Accept("oryx/"))

	_, _ = provider.Provide("plain")
	assert.Equal(t, "plain.txt", provider.Accept("plain.txt"), "no directory part is prepended for the working directory")
}

func TestFileProviderMissingDirectory(t *testing.T) {
	provider := NewFileProvider()

	_, err := provider.Provide("/definitely/not/here/pre")

	assert.Error(t, err)
}

func TestSplitWord(t *testing.T) {
	tests := []struct {
		word, dir, prefix string
	}{
		{"", ".", ""},
		{"sr", ".", "sr"},
		{"cmd/or", "cmd", "or"},
		{"cmd/", "cmd/", ""},
		{"/etc/ho", "/etc", "ho"},
		{"/", "/", ""},
	}
	for _, tt := range tests {
		dir, prefix := splitWord(tt.word)
		assert.Equal(t, tt.dir, dir, "dir of %q", tt.word)
		assert.Equal(t, tt.prefix, prefix, "prefix of %q", tt.word)
	}
}
