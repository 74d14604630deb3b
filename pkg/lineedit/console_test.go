package lineedit

import (
	"bytes"
	"io"
)

// fakeConsole is a scripted terminal: Read serves pre-loaded input bytes,
// WriteAll captures output, and position/size queries return fixed values
// while counting how often they were asked.
type fakeConsole struct {
	input      bytes.Buffer
	output     bytes.Buffer
	cols, rows int
	row, col   int
	maxPerRead int
	posQueries int
}

func newFakeConsole(input string) *fakeConsole {
	c := &fakeConsole{cols: 80, rows: 24, row: 1, col: 1}
	c.input.WriteString(input)
	return c
}

func (c *fakeConsole) Read(p []byte) (int, error) {
	if c.maxPerRead > 0 && len(p) > c.maxPerRead {
		p = p[:c.maxPerRead]
	}
	n, err := c.input.Read(p)
	if err == io.EOF {
		return 0, io.ErrUnexpectedEOF
	}
	return n, err
}

func (c *fakeConsole) WriteAll(p []byte) error {
	c.output.Write(p)
	return nil
}

func (c *fakeConsole) CursorPos() (int, int, error) {
	c.posQueries++
	return c.row, c.col, nil
}

func (c *fakeConsole) Size() (int, int, error) {
	return c.cols, c.rows, nil
}

// countingProvider records Provide calls and serves fixed candidates.
type countingProvider struct {
	items []string
	err   error
	calls int
}

func (p *countingProvider) Provide(word string) ([]string, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.items, nil
}

func (p *countingProvider) Accept(item string) string {
	return item
}
