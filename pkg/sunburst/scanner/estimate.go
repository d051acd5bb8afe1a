package scanner

import (
	"errors"
	"io/fs"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
)

var errCountCancelled = errors.New("count cancelled")

// estimate sets the per-entry progress increment for the chosen mode.
func (w *walker) estimate(root string, dev uint64, hasDev bool) {
	var n uint64
	switch w.s.opts.Estimate {
	case EstimateStatfs:
		n = statfsEstimate(root)
	case EstimateCount:
		n = w.count(root, dev, hasDev)
	}

	w.stats.Estimate = n
	if n > 0 {
		w.increment = 1 / float64(n)
	}
	w.s.log.Debug("entry estimate", "mode", w.s.opts.Estimate, "entries", n)
}

// count walks root in parallel and returns the number of entries the scan
// will visit, applying the same exclusion and mount rules.
func (w *walker) count(root string, dev uint64, hasDev bool) uint64 {
	var n atomic.Uint64
	conf := fastwalk.Config{Follow: false}

	err := fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
		if w.s.cancelled.Load() {
			return errCountCancelled
		}
		if err != nil || path == root {
			return nil
		}
		if excluded(path, w.s.opts.Exclude) {
			if d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}
		n.Add(1)

		if d.IsDir() && hasDev && !w.s.opts.CrossMounts {
			info, err := d.Info()
			if err != nil {
				return nil
			}
			if childDev, ok := deviceOf(path, info); ok && childDev != dev {
				return fastwalk.SkipDir
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, errCountCancelled) {
		w.s.log.Debug("entry count incomplete", "err", err)
	}
	return n.Load()
}
