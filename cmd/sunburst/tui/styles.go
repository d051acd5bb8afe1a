// Package tui provides the interactive sunburst view: a scan screen with
// progress, then the chart with mouse hover, zoom and file actions.
package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	primaryColor = lipgloss.Color("#7D56F4")
	accentColor  = lipgloss.Color("#00D9FF")

	successColor = lipgloss.Color("#28A745")
	warningColor = lipgloss.Color("#FFC107")
	dangerColor  = lipgloss.Color("#DC3545")

	mutedColor  = lipgloss.Color("#666666")
	subtleColor = lipgloss.Color("#444444")
	borderColor = lipgloss.Color("#333333")
)

var (
	outerBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1)

	dividerStyle = lipgloss.NewStyle().Foreground(borderColor)
)

var (
	titleStyle       = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	mutedTextStyle   = lipgloss.NewStyle().Foreground(mutedColor)
	errorTextStyle   = lipgloss.NewStyle().Foreground(dangerColor)
	successTextStyle = lipgloss.NewStyle().Foreground(successColor)
	warningTextStyle = lipgloss.NewStyle().Foreground(warningColor)
	pathStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)
	sizeStyle        = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
)

var (
	progressFillStyle  = lipgloss.NewStyle().Foreground(successColor)
	progressEmptyStyle = lipgloss.NewStyle().Foreground(subtleColor)
)

var (
	statsBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(borderColor).
			Padding(0, 2)

	statsLabelStyle = lipgloss.NewStyle().Foreground(mutedColor)
	statsValueStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF"))
)

var (
	keyStyle     = lipgloss.NewStyle().Foreground(primaryColor).Bold(true)
	keyDescStyle = lipgloss.NewStyle().Foreground(mutedColor)

	dialogBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(warningColor).
			Padding(1, 2)
)

func renderDivider(width int) string {
	if width <= 0 {
		return ""
	}
	return dividerStyle.Render(strings.Repeat("─", width))
}

// truncatePath shortens path to maxLen, keeping its end.
func truncatePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	if maxLen <= 3 {
		return path[:max(maxLen, 0)]
	}
	return "..." + path[len(path)-(maxLen-3):]
}

// center pads s on both sides to width display cells.
func center(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	left := (width - w) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-w-left)
}

// keyHints renders pairs of key and description.
func keyHints(pairs ...string) string {
	parts := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, keyStyle.Render(pairs[i])+" "+keyDescStyle.Render(pairs[i+1]))
	}
	return strings.Join(parts, "  ")
}
