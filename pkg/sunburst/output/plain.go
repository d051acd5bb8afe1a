package output

import (
	"bytes"
	"fmt"
	"strings"
	"text/tabwriter"
)

// PlainFormatter writes tab-aligned text without styling, suitable for
// pipes and scripts.
type PlainFormatter struct{}

// Format implements Formatter.
func (PlainFormatter) Format(w *bytes.Buffer, r *Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if len(r.Arcs) > 0 {
		fmt.Fprintln(tw, "LEVEL\tSTART\tEND\tSIZE\tCOLOR\tPATH")
		for _, a := range r.Arcs {
			fmt.Fprintf(tw, "%d\t%.2f\t%.2f\t%s\t%s\t%s\n", a.Level, a.Start, a.End, a.SizeHuman, a.Color, a.Path)
		}
		return tw.Flush()
	}

	if r.Tree != nil {
		fmt.Fprintln(tw, "SIZE\tPCT\tPATH")
		writeTree(tw, *r.Tree)
	}
	if len(r.Largest) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "SIZE\tPCT\tLARGEST FILES")
		for _, n := range r.Largest {
			fmt.Fprintf(tw, "%s\t%.1f%%\t%s\n", n.SizeHuman, n.Percent, n.Path)
		}
	}
	for _, warn := range r.Warnings {
		fmt.Fprintf(tw, "warning: %s\n", warn)
	}
	return tw.Flush()
}

func writeTree(tw *tabwriter.Writer, n Node) {
	name := n.Path
	if n.Depth > 0 {
		name = strings.Repeat("  ", n.Depth) + n.Name
	}
	if n.Kind != "file" {
		name += "/"
	}
	fmt.Fprintf(tw, "%s\t%.1f%%\t%s\n", n.SizeHuman, n.Percent, name)
	for _, c := range n.Children {
		writeTree(tw, c)
	}
}

func init() {
	Register("plain", func() Formatter { return PlainFormatter{} })
}

var _ Formatter = PlainFormatter{}
