// Package config loads sunburst settings from file, environment and flags.
package config

import (
	"github.com/jamesainslie/sunburst/pkg/sunburst/radial"
)

// Default configuration values.
const (
	// DefaultPath is scanned when no path is given.
	DefaultPath = "."

	// DefaultEstimate is the progress estimate mode.
	DefaultEstimate = "statfs"

	// DefaultProgressStep is the smallest fraction change reported.
	DefaultProgressStep = 0.005

	// DefaultColorer is the render colorer name.
	DefaultColorer = "angle"

	// DefaultRenderSize is the SVG edge length in pixels.
	DefaultRenderSize = 800

	// EnvPrefix prefixes environment overrides, e.g. SUNBURST_LAYOUT_MAX_LEVELS.
	EnvPrefix = "SUNBURST"

	appName = "sunburst"
)

// DefaultExclusions are pseudo filesystems skipped by default.
var DefaultExclusions = []string{
	"/proc",
	"/sys",
	"/dev",
}

// Estimates lists the accepted estimate modes.
var Estimates = []string{"statfs", "count", "none"}

// Colorers lists the accepted colorer names.
var Colorers = []string{"angle", "type", "name"}

// DefaultLogComponents are the per-component levels written by WriteDefault.
var DefaultLogComponents = map[string]string{
	"scanner": "info",
	"layout":  "info",
	"tui":     "info",
}

func defaultLayout() radial.Painter {
	return radial.DefaultPainter()
}
