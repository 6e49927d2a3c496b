package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33"))
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

func printOK(w io.Writer, format string, a ...any) {
	fmt.Fprintln(w, okStyle.Render("✓"), fmt.Sprintf(format, a...))
}

func printWarn(w io.Writer, format string, a ...any) {
	fmt.Fprintln(w, warnStyle.Render("⚠ Warning:"), fmt.Sprintf(format, a...))
}

func printHeader(w io.Writer, s string) {
	fmt.Fprintln(w, headerStyle.Render(s))
}
