package core

// WordAtCursor returns the whitespace-delimited word the cursor sits in or
// immediately after. The word ends at the cursor, so completing "git ch|eck"
// operates on "ch".
func WordAtCursor(line string, cursor int) string {
	runes := []rune(line)
	if cursor > len(runes) {
		cursor = len(runes)
	}
	start := cursor
	for start > 0 && runes[start-1] != ' ' && runes[start-1] != '\t' {
		start--
	}
	return string(runes[start:cursor])
}
