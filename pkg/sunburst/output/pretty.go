package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// PrettyFormatter writes a styled report for interactive terminals.
type PrettyFormatter struct{}

// Format implements Formatter.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Result) error {
	w.WriteString(f.header(r))
	w.WriteString("\n")

	switch {
	case len(r.Arcs) > 0:
		w.WriteString(f.arcs(r.Arcs))
	case r.Tree != nil:
		w.WriteString(f.tree(r))
	default:
		w.WriteString(MutedStyle.Render("  Nothing was scanned\n"))
	}

	w.WriteString(f.footer(r))
	w.WriteString("\n")

	if len(r.Warnings) > 0 {
		w.WriteString("\n")
		w.WriteString(f.warnings(r.Warnings))
	}
	return nil
}

func (f *PrettyFormatter) header(r *Result) string {
	s := r.Summary
	lines := []string{
		fmt.Sprintf("%s %s", LabelStyle.Render("Root:"), ValueStyle.Render(s.Root)),
		strings.Join([]string{
			fmt.Sprintf("%s %s", LabelStyle.Render("State:"), StateStyle(s.State).Render(s.State)),
			fmt.Sprintf("%s %s", LabelStyle.Render("Scanned:"),
				ValueStyle.Render(fmt.Sprintf("%d files, %d dirs in %s", s.Files, s.Dirs, s.Elapsed))),
		}, "  "),
	}
	if s.Mounts > 0 {
		lines = append(lines, MutedStyle.Render(fmt.Sprintf("%d mount points not crossed", s.Mounts)))
	}
	if s.Error != "" {
		lines = append(lines, ErrorStyle.Render(s.Error))
	}
	return HeaderBox.Render(strings.Join(lines, "\n"))
}

func (f *PrettyFormatter) tree(r *Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "  %s  %s  %s\n",
		TableHeaderStyle.Render(padLeft("SIZE", 10)),
		TableHeaderStyle.Render(padLeft("%", 6)),
		TableHeaderStyle.Render("PATH"))
	f.treeRows(&sb, *r.Tree)

	if len(r.Largest) > 0 {
		sb.WriteString("\n  ")
		sb.WriteString(TitleStyle.Render("Largest files"))
		sb.WriteString("\n")
		for _, n := range r.Largest {
			fmt.Fprintf(&sb, "  %s  %s  %s\n",
				SizeStyle.Render(padLeft(n.SizeHuman, 10)),
				MutedStyle.Render(padLeft(fmt.Sprintf("%.1f", n.Percent), 6)),
				PathStyle.Render(n.Path))
		}
	}
	return sb.String()
}

func (f *PrettyFormatter) treeRows(sb *strings.Builder, n Node) {
	name := n.Path
	if n.Depth > 0 {
		name = strings.Repeat("  ", n.Depth) + n.Name
	}
	style := PathStyle
	switch n.Kind {
	case "dir":
		name += "/"
		style = TitleStyle
	case "mount":
		name += "/ (mount)"
		style = MutedStyle
	}
	fmt.Fprintf(sb, "  %s  %s  %s\n",
		SizeStyle.Render(padLeft(n.SizeHuman, 10)),
		MutedStyle.Render(padLeft(fmt.Sprintf("%.1f", n.Percent), 6)),
		style.Render(name))
	for _, c := range n.Children {
		f.treeRows(sb, c)
	}
}

func (f *PrettyFormatter) arcs(arcs []Arc) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "  %s %s  %s  %s\n",
		TableHeaderStyle.Render("  "),
		TableHeaderStyle.Render(padLeft("ARC", 17)),
		TableHeaderStyle.Render(padLeft("SIZE", 10)),
		TableHeaderStyle.Render("PATH"))
	for _, a := range arcs {
		swatch := lipgloss.NewStyle().Background(lipgloss.Color(a.Color)).Render("  ")
		span := fmt.Sprintf("%6.1f-%6.1f L%d", a.Start, a.End, a.Level)
		fmt.Fprintf(&sb, "  %s %s  %s  %s\n",
			swatch,
			MutedStyle.Render(padLeft(span, 17)),
			SizeStyle.Render(padLeft(a.SizeHuman, 10)),
			PathStyle.Render(a.Path))
	}
	return sb.String()
}

func (f *PrettyFormatter) footer(r *Result) string {
	parts := []string{
		fmt.Sprintf("%s %s", LabelStyle.Render("Files:"), ValueStyle.Render(fmt.Sprintf("%d", r.Summary.Files))),
		fmt.Sprintf("%s %s", LabelStyle.Render("Total:"), SizeStyle.Render(r.Summary.BytesHuman)),
		MutedStyle.Render("Use -o plain for unformatted output"),
	}
	return FooterBox.Render(strings.Join(parts, "  "))
}

func (f *PrettyFormatter) warnings(warnings []string) string {
	var sb strings.Builder
	sb.WriteString(WarningStyle.Bold(true).Render("Warnings:"))
	sb.WriteString("\n")
	for _, warn := range warnings {
		sb.WriteString(WarningStyle.Render("  " + warn))
		sb.WriteString("\n")
	}
	return sb.String()
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

func init() {
	Register("pretty", func() Formatter { return &PrettyFormatter{} })
}

var _ Formatter = (*PrettyFormatter)(nil)
