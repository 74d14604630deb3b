package lineedit

import (
	"bytes"
	"hash/fnv"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/ansi"
	"go.uber.org/zap"
)

// SelectionDirection is the direction a completion key cycles the highlight.
type SelectionDirection int

const (
	SelectionDown SelectionDirection = iota
	SelectionUp
)

// Provider computes completion candidates for the word under the cursor.
// Provide is the only point that may touch the filesystem; Accept maps a
// chosen candidate back to the text to insert.
type Provider interface {
	Provide(word string) ([]string, error)
	Accept(item string) string
}

// maxVisibleRows caps the rendered candidate list. Cycling wraps over the
// visible window, not the full candidate count.
const maxVisibleRows = 6

// selection is the cached state for one completed word, keyed by a
// fingerprint of the word so a changed word invalidates it.
type selection struct {
	word  string
	hash  uint64
	index int
}

func fingerprint(word string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(word))
	return h.Sum64()
}

// Completer owns candidate selection and the rendered candidate block below
// the edit line. Repeated navigation on an unchanged word never recomputes
// candidates.
type Completer struct {
	console  Console
	provider Provider
	logger   *zap.Logger

	sel   *selection
	items []string
}

func NewCompleter(console Console, provider Provider, logger *zap.Logger) *Completer {
	return &Completer{console: console, provider: provider, logger: logger}
}

// indexSafe maps a raw selection counter onto the visible window, or -1 when
// there is nothing to select.
func indexSafe(itemCount, index int) int {
	if itemCount <= 0 {
		return -1
	}
	rows := itemCount
	if rows > maxVisibleRows {
		rows = maxVisibleRows
	}
	return ((index % rows) + rows) % rows
}

// Next advances the highlight for word, computing candidates first if the
// word changed since the last call. Provider failures degrade to an empty
// candidate list; they never escape to the input loop.
func (c *Completer) Next(word string, direction SelectionDirection) error {
	if c.sel != nil && c.sel.hash == fingerprint(word) {
		switch direction {
		case SelectionDown:
			c.sel.index++
		case SelectionUp:
			c.sel.index--
		}
	} else {
		items, err := c.provider.Provide(word)
		if err != nil {
			c.logger.Debug("completion listing failed", zap.String("word", word), zap.Error(err))
			items = nil
		}
		c.items = items
		c.sel = &selection{word: word, hash: fingerprint(word), index: 0}
	}
	return c.present()
}

// Current returns the highlighted candidate, already mapped through the
// provider's Accept. ok is false when no selection is active or it has zero
// candidates.
func (c *Completer) Current() (string, bool) {
	if c.sel == nil {
		return "", false
	}
	idx := indexSafe(len(c.items), c.sel.index)
	if idx < 0 {
		return "", false
	}
	return c.provider.Accept(c.items[idx]), true
}

// Unselect drops the cached selection without touching the terminal. Used
// when the display is about to be erased by other means, such as the
// end-of-line cleanup after a submission.
func (c *Completer) Unselect() {
	c.sel = nil
	c.items = nil
}

// Clear drops the cached selection and erases the rendered candidate block,
// restoring the cursor to its column on the edit line.
func (c *Completer) Clear() error {
	c.Unselect()
	_, col, err := c.console.CursorPos()
	if err != nil {
		return err
	}
	out := []byte("\n\r")
	out = append(out, KillToScreenEnd()...)
	out = append(out, MoveUp(1)...)
	out = append(out, MoveRight(col-1)...)
	return c.console.WriteAll(out)
}

// present renders the candidate block below the current line and puts the
// cursor back where it was.
func (c *Completer) present() error {
	_, col, err := c.console.CursorPos()
	if err != nil {
		return err
	}
	cols, _, err := c.console.Size()
	if err != nil {
		return err
	}
	return c.console.WriteAll(renderCandidates(col, cols, c.items, c.sel.index))
}

// renderCandidates builds the candidate block: erase everything below, one
// candidate per row joined by CRLF with the selected one in reverse video,
// then move back up to the edit line and out to column col. Rows wider than
// the terminal are truncated.
func renderCandidates(col, termWidth int, items []string, selected int) []byte {
	rows := [][]byte{KillToScreenEnd()}
	sel := indexSafe(len(items), selected)
	if sel < 0 {
		rows = append(rows, []byte("No matches"))
	} else {
		visible := items
		if len(visible) > maxVisibleRows {
			visible = visible[:maxVisibleRows]
		}
		for i, item := range visible {
			if ansi.PrintableRuneWidth(item) >= termWidth {
				item = runewidth.Truncate(item, termWidth-1, "")
			}
			row := []byte(item)
			if i == sel {
				row = reverseVideo(row)
			}
			rows = append(rows, row)
		}
	}
	out := bytes.Join(rows, []byte("\r\n"))
	shown := len(rows) - 1
	out = append(out, '\r')
	out = append(out, MoveUp(shown)...)
	out = append(out, MoveRight(col-1)...)
	return out
}

// FileProvider lists directory entries matching the word interpreted as a
// possibly partial path.
type FileProvider struct {
	dir string
}

func NewFileProvider() *FileProvider {
	return &FileProvider{dir: "."}
}

// splitWord divides a partial path into the directory to list and the
// filename prefix to match. A word ending in a separator names the
// directory itself with an empty prefix.
func splitWord(word string) (dir, prefix string) {
	if word == "" {
		return ".", ""
	}
	if strings.HasSuffix(word, "/") {
		return word, ""
	}
	return filepath.Dir(word), filepath.Base(word)
}

// formatEntry decorates a directory entry name: directories get a trailing
// separator, names containing whitespace are quoted.
func formatEntry(entry os.DirEntry) string {
	name := entry.Name()
	if entry.IsDir() {
		name += "/"
	}
	if strings.ContainsAny(name, " \t") {
		name = "\"" + name + "\""
	}
	return name
}

func (p *FileProvider) Provide(word string) ([]string, error) {
	dir, prefix := splitWord(word)
	p.dir = dir
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	items := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		items = append(items, formatEntry(entry))
	}
	sort.Strings(items)
	return items, nil
}

// Accept joins the listed directory back onto the candidate so the inserted
// text is a usable path. A trailing separator on the candidate survives.
func (p *FileProvider) Accept(item string) string {
	if p.dir == "." {
		return item
	}
	return strings.TrimSuffix(p.dir, "/") + "/" + item
}
