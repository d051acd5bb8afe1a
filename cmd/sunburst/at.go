package main

import (
	"fmt"

	"github.com/jamesainslie/sunburst/pkg/sunburst/render"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var atCmd = &cobra.Command{
	Use:   "at [path]",
	Short: "Show which entry lies under a point of the rendered image",
	Long: `Scan a directory, lay it out and report the entry drawn at pixel
(--x, --y) of a --size pixel image as written by "sunburst render".
Y grows downward as in the image.

Prints: path, kind, size, ring level and angle span, tab separated.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAt,
}

func init() {
	atCmd.Flags().Float64("x", 0, "pixel column")
	atCmd.Flags().Float64("y", 0, "pixel row")
	atCmd.Flags().Int("size", 0, "image width and height in pixels")
	_ = atCmd.MarkFlagRequired("x")
	_ = atCmd.MarkFlagRequired("y")
	rootCmd.AddCommand(atCmd)
}

func runAt(cmd *cobra.Command, args []string) error {
	x, _ := cmd.Flags().GetFloat64("x")
	y, _ := cmd.Flags().GetFloat64("y")
	size, _ := cmd.Flags().GetInt("size")
	if size == 0 {
		size = viper.GetInt("render.size")
	}
	if size <= 0 {
		return render.ErrBadSize
	}

	res, root, err := scanLayout(cmd, args)
	if err != nil {
		return err
	}

	it := render.ItemAtPixel(root, cfg.Layout, size, x, y)
	if it == nil {
		return fmt.Errorf("no entry at (%g, %g) in a %dx%d image", x, y, size, size)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), describe(res.Tree, it))
	return err
}
