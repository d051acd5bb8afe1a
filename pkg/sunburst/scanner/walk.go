package scanner

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jamesainslie/sunburst/pkg/sunburst/fstree"
)

// walker is the scan goroutine's private state. Only the fields copied into
// Scanner.st are visible to other goroutines.
type walker struct {
	s    *Scanner
	root string
	b    *fstree.Builder

	stats   Stats
	entries int64

	increment float64
	fraction  float64
	emitted   float64

	stopped bool
}

func newWalker(s *Scanner) *walker {
	return &walker{s: s, root: s.opts.Root}
}

// walk scans the root depth-first in name order and returns the tree. The
// tree is partial when w.stopped is set.
func (w *walker) walk() (*fstree.Tree, error) {
	root, err := filepath.Abs(w.s.opts.Root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRootUnreadable, w.s.opts.Root, err)
	}
	w.root = root
	w.b = fstree.NewBuilder(root)

	if w.s.cancelled.Load() {
		w.stopped = true
		return w.b.Tree(), nil
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRootUnreadable, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrRootUnreadable, root)
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRootUnreadable, err)
	}

	dev, hasDev := deviceOf(root, info)
	w.estimate(root, dev, hasDev)
	w.stats.Dirs = 1
	w.s.setProgress(Progress{CurrentPath: root})

	w.dir(w.b.Root(), root, entries, dev, hasDev)
	return w.b.Tree(), nil
}

// dir adds entries as children of id and recurses into subdirectories.
// It seals id unless the scan stopped.
func (w *walker) dir(id fstree.NodeID, path string, entries []os.DirEntry, dev uint64, hasDev bool) {
	for _, e := range entries {
		if w.s.cancelled.Load() {
			w.stopped = true
			return
		}

		child := fstree.JoinChild(path, e.Name())
		if excluded(child, w.s.opts.Exclude) {
			w.stats.Excluded++
			continue
		}
		w.visit(child)

		info, err := os.Lstat(child)
		if err != nil {
			w.s.recordError(child, err)
			continue
		}

		if !info.IsDir() {
			size := uint64(max(info.Size(), 0))
			w.b.AddFile(id, child, size)
			w.stats.Files++
			w.stats.Bytes += size
			continue
		}

		childDev, ok := deviceOf(child, info)
		if ok && hasDev && childDev != dev && !w.s.opts.CrossMounts {
			w.b.AddMount(id, child)
			w.stats.Mounts++
			w.s.log.Debug("not crossing mount point", "path", child)
			continue
		}

		sub := w.b.AddDir(id, child)
		w.stats.Dirs++

		list, err := os.ReadDir(child)
		if err != nil {
			// list holds whatever was read before the failure.
			w.s.recordError(child, err)
		}
		w.dir(sub, child, list, childDev, ok)
		if w.stopped {
			return
		}
	}
	w.b.Seal(id)
}

// visit advances progress by one entry.
func (w *walker) visit(path string) {
	w.entries++
	if w.increment > 0 && w.fraction < 1 {
		w.fraction = min(1, float64(w.entries)*w.increment)
	}

	p := Progress{
		Fraction:    w.fraction,
		CurrentPath: path,
		Entries:     w.entries,
		Bytes:       w.stats.Bytes,
	}
	w.s.setProgress(p)

	if w.fraction-w.emitted >= w.s.opts.ProgressStep {
		w.emitted = w.fraction
		w.emit(p)
	}
}

// emitFinal reports 1.0 once the scan has completed.
func (w *walker) emitFinal() {
	w.fraction = 1
	w.emitted = 1
	p := Progress{
		Fraction:    1,
		CurrentPath: w.root,
		Entries:     w.entries,
		Bytes:       w.stats.Bytes,
	}
	w.s.setProgress(p)
	w.emit(p)
}

func (w *walker) emit(p Progress) {
	if w.s.opts.OnProgress != nil {
		w.s.opts.OnProgress(p)
	}
}
