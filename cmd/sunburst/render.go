package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/jamesainslie/sunburst/pkg/sunburst/fstree"
	"github.com/jamesainslie/sunburst/pkg/sunburst/logging"
	"github.com/jamesainslie/sunburst/pkg/sunburst/radial"
	"github.com/jamesainslie/sunburst/pkg/sunburst/render"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var renderCmd = &cobra.Command{
	Use:   "render [path]",
	Short: "Draw the sunburst as an SVG image",
	Long: `Scan a directory and write its sunburst as SVG.

The file extension picks the encoding: .svg is plain, .svgz is gzip
compressed and .zst is zstd compressed. Use -f - for standard output.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringP("file", "f", "sunburst.svg", "output file, or - for stdout")
	renderCmd.Flags().Int("size", 0, "image width and height in pixels")
	renderCmd.Flags().String("background", "", "background color, e.g. #ffffff")
	renderCmd.Flags().Bool("no-titles", false, "omit hover titles")
	_ = viper.BindPFlag("render.size", renderCmd.Flags().Lookup("size"))
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	file, _ := cmd.Flags().GetString("file")
	bg, _ := cmd.Flags().GetString("background")
	noTitles, _ := cmd.Flags().GetBool("no-titles")

	res, root, err := scanLayout(cmd, args)
	if err != nil {
		return err
	}
	colorer, err := render.NewColorer(cfg.Render.Colorer, res.Tree)
	if err != nil {
		return err
	}

	opts := render.SVGOptions[fstree.NodeID]{
		Painter:    cfg.Layout,
		Size:       cfg.Render.Size,
		Colorer:    colorer,
		Background: bg,
	}
	if !noTitles {
		opts.Label = func(it *radial.Item[fstree.NodeID]) string {
			e := res.Tree.Entry(it.Value)
			return fmt.Sprintf("%s (%s)", e.Path, humanize.IBytes(e.Size))
		}
	}

	if file == "-" {
		return render.WriteSVG(cmd.OutOrStdout(), root, opts)
	}
	if err := render.WriteSVGFile(file, root, opts); err != nil {
		return err
	}
	logging.Get("render").Info("wrote image", "file", file, "size", opts.Size, "arcs", root.Count())
	if !viper.GetBool("quiet") {
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s (%d arcs)\n", file, root.Count()-1)
	}
	return nil
}
