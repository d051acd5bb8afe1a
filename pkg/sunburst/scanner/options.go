package scanner

import (
	"fmt"
	"strings"
)

// EstimateMode selects how the total entry count used for the progress
// fraction is estimated.
type EstimateMode int

const (
	// EstimateStatfs uses the number of inodes in use on the root's volume.
	// It is instant but counts the whole volume, so scans of a
	// subdirectory report a low fraction until the final 1.0.
	EstimateStatfs EstimateMode = iota

	// EstimateCount walks the subtree once in parallel before scanning.
	EstimateCount

	// EstimateNone reports no fraction until completion.
	EstimateNone
)

// String returns the configuration name of the mode.
func (m EstimateMode) String() string {
	switch m {
	case EstimateStatfs:
		return "statfs"
	case EstimateCount:
		return "count"
	case EstimateNone:
		return "none"
	default:
		return fmt.Sprintf("EstimateMode(%d)", int(m))
	}
}

// ParseEstimateMode parses "statfs", "count" or "none".
func ParseEstimateMode(s string) (EstimateMode, error) {
	switch strings.ToLower(s) {
	case "statfs", "":
		return EstimateStatfs, nil
	case "count":
		return EstimateCount, nil
	case "none":
		return EstimateNone, nil
	}
	return EstimateNone, fmt.Errorf("unknown estimate mode %q", s)
}

// DefaultProgressStep is the smallest fraction change that is reported.
const DefaultProgressStep = 0.005

// Options configures a Scanner.
type Options struct {
	// Root is the directory to scan. Relative paths are resolved against
	// the working directory when the scan starts.
	Root string

	// Exclude holds paths or glob patterns to skip. A pattern matches a
	// path equal to it, any path below it, or (as a glob) the full path or
	// the base name.
	Exclude []string

	// CrossMounts descends into directories on other devices instead of
	// recording them as mount points.
	CrossMounts bool

	Estimate EstimateMode

	// ProgressStep is the minimum fraction change between two OnProgress
	// calls. Zero uses DefaultProgressStep.
	ProgressStep float64

	// OnProgress is called on the scan goroutine. It must not block.
	OnProgress func(Progress)

	// OnComplete is called once on the scan goroutine with the final
	// result, before Done is closed.
	OnComplete func(Result)
}

// DefaultOptions returns options scanning the working directory.
func DefaultOptions() Options {
	return Options{
		Root:         ".",
		Estimate:     EstimateStatfs,
		ProgressStep: DefaultProgressStep,
	}
}

// normalize fills zero values with defaults.
func (o *Options) normalize() {
	if o.Root == "" {
		o.Root = "."
	}
	if o.ProgressStep <= 0 || o.ProgressStep > 1 {
		o.ProgressStep = DefaultProgressStep
	}
}
