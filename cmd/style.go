package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	okColor    = lipgloss.AdaptiveColor{Light: "#02BA84", Dark: "#02D98E"}
	warnColor  = lipgloss.AdaptiveColor{Light: "#FF8C00", Dark: "#FFA500"}
	errColor   = lipgloss.AdaptiveColor{Light: "#FF5F56", Dark: "#FF6B6B"}
	headColor  = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7C79FF"}
	mutedColor = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}

	okStyle    = lipgloss.NewStyle().Foreground(okColor).Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(warnColor).Bold(true)
	errStyle   = lipgloss.NewStyle().Foreground(errColor).Bold(true)
	headStyle  = lipgloss.NewStyle().Foreground(headColor).Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(mutedColor)
)

func success(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, okStyle.Render("✓"), fmt.Sprintf(format, args...))
}

func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, warnStyle.Render("⚠"), fmt.Sprintf(format, args...))
}

func heading(w io.Writer, title string) {
	fmt.Fprintln(w, headStyle.Render(title))
}
