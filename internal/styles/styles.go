// Package styles centralizes terminal styling, degrading to plain text on
// terminals without color support.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	promptStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	faintStyle  = lipgloss.NewStyle().Faint(true)

	colorEnabled = termenv.DefaultOutput().Profile != termenv.Ascii
)

func Prompt(s string) string {
	if !colorEnabled {
		return s
	}
	return promptStyle.Render(s)
}

func Error(s string) string {
	if !colorEnabled {
		return s
	}
	return errorStyle.Render(s)
}

func Faint(s string) string {
	if !colorEnabled {
		return s
	}
	return faintStyle.Render(s)
}
