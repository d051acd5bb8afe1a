package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/jamesainslie/sunburst/pkg/sunburst/scanner"
)

// ScanModel is the screen shown while a scan runs.
type ScanModel struct {
	root     string
	spinner  spinner.Model
	bar      progress.Model
	progress scanner.Progress
	start    time.Time
	width    int
	height   int

	// indeterminate shows a moving pulse instead of a fraction, for scans
	// without an estimate.
	indeterminate bool
	stopping      bool
}

// ProgressMsg carries a progress snapshot of scan generation gen.
type ProgressMsg struct {
	gen      int
	Progress scanner.Progress
}

// ScanCompleteMsg carries the result of scan generation gen.
type ScanCompleteMsg struct {
	gen    int
	Result scanner.Result
}

// NewScanModel returns the scan screen for root.
func NewScanModel(root string, indeterminate bool) ScanModel {
	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = lipgloss.NewStyle().Foreground(primaryColor)

	return ScanModel{
		root:          root,
		spinner:       s,
		bar:           progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		start:         time.Now(),
		width:         80,
		height:        24,
		indeterminate: indeterminate,
	}
}

// Init starts the spinner.
func (m ScanModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// SetProgress records a snapshot. Fractions never move backwards.
func (m *ScanModel) SetProgress(p scanner.Progress) {
	if p.Fraction < m.progress.Fraction {
		p.Fraction = m.progress.Fraction
	}
	m.progress = p
}

// SetDimensions resizes the screen.
func (m *ScanModel) SetDimensions(width, height int) {
	m.width = width
	m.height = height
}

// View renders the scan screen.
func (m ScanModel) View() string {
	contentWidth := max(m.width-4, 40)

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(m.renderHeader(contentWidth))
	b.WriteString("\n")
	b.WriteString(renderDivider(contentWidth))
	b.WriteString("\n\n")

	status := "Scanning"
	if m.stopping {
		status = "Stopping"
	}
	fmt.Fprintf(&b, "  %s %s: %s\n\n", m.spinner.View(), status,
		truncatePath(m.progress.CurrentPath, contentWidth-20))

	b.WriteString(m.renderProgressBar(contentWidth))
	b.WriteString("\n\n")
	b.WriteString(m.renderStats(contentWidth))
	b.WriteString("\n")

	content := b.String()
	if pad := m.height - 2 - (strings.Count(content, "\n") + 1); pad > 0 {
		content += strings.Repeat("\n", pad)
	}
	return outerBoxStyle.Width(m.width - 2).Render(content)
}

func (m ScanModel) renderHeader(width int) string {
	title := titleStyle.Render("  sunburst  ") + mutedTextStyle.Render(truncatePath(m.root, width/2))
	hint := keyHints("esc", "stop", "q", "quit")
	spacing := max(width-lipgloss.Width(title)-lipgloss.Width(hint), 1)
	return title + strings.Repeat(" ", spacing) + hint
}

func (m ScanModel) renderProgressBar(width int) string {
	barWidth := max(width-12, 10)
	if !m.indeterminate {
		m.bar.Width = barWidth
		return fmt.Sprintf("  %s %5.1f%%", m.bar.ViewAs(m.progress.Fraction), m.progress.Fraction*100)
	}

	// Bounce a pulse back and forth over the bar.
	position := int(time.Since(m.start).Seconds()*8) % (barWidth * 2)
	if position > barWidth {
		position = barWidth*2 - position
	}
	pulse := max(barWidth/5, 3)

	var bar strings.Builder
	bar.WriteString("  ")
	for i := range barWidth {
		if d := i - position; d > -pulse && d < pulse {
			bar.WriteString(progressFillStyle.Render("█"))
		} else {
			bar.WriteString(progressEmptyStyle.Render("░"))
		}
	}
	return bar.String()
}

func (m ScanModel) renderStats(totalWidth int) string {
	boxWidth := max((totalWidth-8)/3, 12)
	return lipgloss.JoinHorizontal(lipgloss.Top,
		"  ",
		renderStatBox("Entries", humanize.Comma(m.progress.Entries), boxWidth), " ",
		renderStatBox("Size", humanize.IBytes(m.progress.Bytes), boxWidth), " ",
		renderStatBox("Time", formatDuration(time.Since(m.start)), boxWidth))
}

func renderStatBox(label, value string, width int) string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		center(statsLabelStyle.Render(label), width-6),
		center(statsValueStyle.Render(value), width-6))
	return statsBoxStyle.Width(width).Render(content)
}

// formatDuration formats d as M:SS.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	return fmt.Sprintf("%d:%02d", d/time.Minute, (d%time.Minute)/time.Second)
}
