package render

import (
	"bufio"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jamesainslie/sunburst/pkg/sunburst/polar"
	"github.com/jamesainslie/sunburst/pkg/sunburst/radial"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// SVGOptions controls WriteSVG.
type SVGOptions[T comparable] struct {
	Painter radial.Painter

	// Size is the width and height of the image in pixels.
	Size int

	Colorer radial.Colorer[T]

	// Label returns the tooltip for an item. Nil omits tooltips.
	Label func(*radial.Item[T]) string

	// Background fills the image when non-empty, e.g. "#ffffff".
	Background string
}

// ErrBadSize is returned for a non-positive image size.
var ErrBadSize = errors.New("image size must be positive")

// Geometry returns the center and maximum radius used for an image of size
// pixels. Hit tests on the image must use the same values.
func Geometry(size int) (center polar.Point, maxRadius float64) {
	half := float64(size) / 2
	return polar.Point{X: half, Y: half}, half
}

// ItemAtPixel returns the item under pixel (x, y) of a size-pixel image
// drawn with p, or nil. Y grows downward as in the image.
func ItemAtPixel[T comparable](root *radial.Item[T], p radial.Painter, size int, x, y float64) *radial.Item[T] {
	if size <= 0 {
		return nil
	}
	center, maxR := Geometry(size)
	return radial.ItemAt(root, p, polar.Point{X: x, Y: float64(size) - y}, center, maxR)
}

// WriteSVG draws the layout rooted at root as an SVG document. Each ring
// level is a group; each arc is a path, painted in pre-order.
func WriteSVG[T comparable](w io.Writer, root *radial.Item[T], opts SVGOptions[T]) error {
	if opts.Size <= 0 {
		return ErrBadSize
	}
	if opts.Colorer == nil {
		opts.Colorer = AngleColorer[T]{}
	}

	bw := bufio.NewWriter(w)
	center, maxR := Geometry(opts.Size)

	fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		opts.Size, opts.Size, opts.Size, opts.Size)
	if opts.Background != "" {
		fmt.Fprintf(bw, `<rect width="100%%" height="100%%" fill="%s"/>`+"\n", attr(opts.Background))
	}
	bw.WriteString(`<g stroke="#ffffff" stroke-width="0.5" stroke-linejoin="round">` + "\n")

	root.Walk(func(it *radial.Item[T]) bool {
		if it.Level == 0 {
			return true
		}
		inner, outer := opts.Painter.Ring(it.Level, maxR)
		d := SegmentPath(center, inner, outer, it.Start, it.End)
		if d == "" {
			return true
		}
		fill := Hex(ItemColor(opts.Colorer, it, opts.Painter.MaxLevels))
		if opts.Label == nil {
			fmt.Fprintf(bw, `<path d="%s" fill="%s"/>`+"\n", d, fill)
			return true
		}
		fmt.Fprintf(bw, `<path d="%s" fill="%s"><title>%s</title></path>`+"\n", d, fill, text(opts.Label(it)))
		return true
	})

	bw.WriteString("</g>\n</svg>\n")
	return bw.Flush()
}

// WriteSVGFile writes the image to path. A .svgz suffix gzips the output
// and .zst compresses it with zstd.
func WriteSVGFile[T comparable](path string, root *radial.Item[T], opts SVGOptions[T]) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()

	w, closeEnc, err := encoderFor(path, f)
	if err != nil {
		return err
	}
	if err := WriteSVG(w, root, opts); err != nil {
		_ = closeEnc()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := closeEnc(); err != nil {
		return fmt.Errorf("compressing %s: %w", path, err)
	}
	return nil
}

func encoderFor(path string, w io.Writer) (io.Writer, func() error, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".svgz":
		gz, err := gzip.NewWriterLevel(w, gzip.BestCompression)
		if err != nil {
			return nil, nil, err
		}
		return gz, gz.Close, nil
	case ".zst":
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return nil, nil, err
		}
		return enc, enc.Close, nil
	default:
		return w, func() error { return nil }, nil
	}
}

func text(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

func attr(s string) string {
	return text(s)
}
