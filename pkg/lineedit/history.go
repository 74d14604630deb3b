package lineedit

// History is the in-memory scrollback for one edit session: the lines
// already submitted plus a single draft of the line being edited, captured
// the first time navigation leaves it.
//
// Index 0 resolves to the draft; index k>0 resolves to the k-th most recent
// past line.
type History struct {
	past  []string
	draft *string
	index int
}

func HistoryFromLines(lines []string) *History {
	return &History{past: lines}
}

// Push appends a submitted line. Empty lines are not recorded.
func (h *History) Push(line string) {
	if line != "" {
		h.past = append(h.past, line)
	}
}

// Lines returns the past lines, oldest first.
func (h *History) Lines() []string {
	return h.past
}

// Unselect resets navigation and drops the draft. Called after every
// submission or cancellation.
func (h *History) Unselect() {
	h.draft = nil
	h.index = 0
}

func (h *History) line(index int) (string, bool) {
	if index == 0 {
		if h.draft == nil {
			return "", false
		}
		return *h.draft, true
	}
	if index < 0 || index > len(h.past) {
		return "", false
	}
	return h.past[len(h.past)-index], true
}

// Scroll moves the navigation cursor by offset and returns the line at the
// new position. The first scroll away from the current line snapshots it as
// the draft. When no line exists at the requested position the index is left
// unchanged and ok is false; signalling that (for example with a bell) is
// the caller's concern.
func (h *History) Scroll(current string, offset int) (string, bool) {
	if h.index == 0 {
		draft := current
		h.draft = &draft
	}
	line, ok := h.line(h.index + offset)
	if !ok {
		return "", false
	}
	h.index += offset
	return line, true
}
