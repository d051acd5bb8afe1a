package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/jamesainslie/sunburst/pkg/sunburst/fstree"
	"github.com/jamesainslie/sunburst/pkg/sunburst/logging"
	"github.com/jamesainslie/sunburst/pkg/sunburst/output"
	"github.com/jamesainslie/sunburst/pkg/sunburst/radial"
	"github.com/jamesainslie/sunburst/pkg/sunburst/render"
	"github.com/jamesainslie/sunburst/pkg/sunburst/scanner"
	"github.com/spf13/cobra"
)

var layoutCmd = &cobra.Command{
	Use:   "layout [path]",
	Short: "Print the arcs of a sunburst layout",
	Long: `Scan a directory and print every arc of its sunburst: ring level,
start and end angle in degrees, size and color.

Angles grow counter-clockwise from the positive X axis.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLayout,
}

func init() {
	layoutCmd.Flags().StringP("output", "o", "plain", "output format: plain, pretty, json or yaml")
	rootCmd.AddCommand(layoutCmd)
}

func runLayout(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("output")
	formatter, err := output.Get(format)
	if err != nil {
		return err
	}

	res, root, err := scanLayout(cmd, args)
	if err != nil {
		return err
	}
	colorer, err := render.NewColorer(cfg.Render.Colorer, res.Tree)
	if err != nil {
		return err
	}

	r := output.FromScan(res, 0, 0)
	r.Tree = nil
	r.AddArcs(res.Tree, root, colorer, cfg.Layout.MaxLevels)
	return write(cmd.OutOrStdout(), formatter, r)
}

// scanLayout scans args and lays the tree out with the configured painter.
func scanLayout(cmd *cobra.Command, args []string) (scanner.Result, *radial.Item[fstree.NodeID], error) {
	res, err := scanArgs(cmd, args)
	if err != nil {
		return res, nil, err
	}
	root := radial.Build[fstree.NodeID](fstree.NewSource(res.Tree), cfg.Layout)
	logging.Get("layout").Debug("built layout", "root", res.Root, "arcs", root.Count())
	return res, root, nil
}

// describe formats an arc for one line of text.
func describe(t *fstree.Tree, it *radial.Item[fstree.NodeID]) string {
	e := t.Entry(it.Value)
	return fmt.Sprintf("%s\t%s\t%s\tL%d\t%.2f-%.2f",
		e.Path, e.Kind, humanize.IBytes(e.Size), it.Level, it.Start, it.End)
}
