// Package output formats scan results and layouts for the command line.
//
// Formatters are looked up by name from a registry:
//
//	f, err := output.Get("json")
//	if err != nil {
//	    return err
//	}
//	var buf bytes.Buffer
//	if err := f.Format(&buf, result); err != nil {
//	    return err
//	}
package output

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jamesainslie/sunburst/pkg/sunburst/fstree"
	"github.com/jamesainslie/sunburst/pkg/sunburst/radial"
	"github.com/jamesainslie/sunburst/pkg/sunburst/render"
	"github.com/jamesainslie/sunburst/pkg/sunburst/scanner"
)

// Node is one entry of the scanned tree.
type Node struct {
	Path      string  `json:"path" yaml:"path"`
	Name      string  `json:"name" yaml:"name"`
	Kind      string  `json:"kind" yaml:"kind"`
	Type      string  `json:"type" yaml:"type"`
	Size      uint64  `json:"size" yaml:"size"`
	SizeHuman string  `json:"size_human" yaml:"size_human"`
	Percent   float64 `json:"percent" yaml:"percent"`
	Depth     int     `json:"depth" yaml:"depth"`
	Children  []Node  `json:"children,omitempty" yaml:"children,omitempty"`
}

// Arc is one laid-out segment of a sunburst.
type Arc struct {
	Path      string  `json:"path" yaml:"path"`
	Level     int     `json:"level" yaml:"level"`
	Start     float64 `json:"start" yaml:"start"`
	End       float64 `json:"end" yaml:"end"`
	Size      uint64  `json:"size" yaml:"size"`
	SizeHuman string  `json:"size_human" yaml:"size_human"`
	Color     string  `json:"color" yaml:"color"`
}

// Summary describes the scan itself.
type Summary struct {
	ID         string `json:"id" yaml:"id"`
	Root       string `json:"root" yaml:"root"`
	State      string `json:"state" yaml:"state"`
	Files      int64  `json:"files" yaml:"files"`
	Dirs       int64  `json:"dirs" yaml:"dirs"`
	Mounts     int64  `json:"mounts" yaml:"mounts"`
	Errors     int64  `json:"errors" yaml:"errors"`
	Bytes      uint64 `json:"bytes" yaml:"bytes"`
	BytesHuman string `json:"bytes_human" yaml:"bytes_human"`
	Elapsed    string `json:"elapsed" yaml:"elapsed"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Result is everything a formatter can print.
type Result struct {
	Summary  Summary  `json:"summary" yaml:"summary"`
	Tree     *Node    `json:"tree,omitempty" yaml:"tree,omitempty"`
	Largest  []Node   `json:"largest,omitempty" yaml:"largest,omitempty"`
	Arcs     []Arc    `json:"arcs,omitempty" yaml:"arcs,omitempty"`
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// FromScan converts a scan result. The tree is expanded depth levels below
// the root (0 lists the root only) and Largest holds the top files.
func FromScan(res scanner.Result, depth, top int) *Result {
	out := &Result{
		Summary: Summary{
			ID:         res.ID,
			Root:       res.Root,
			State:      res.State.String(),
			Files:      res.Stats.Files,
			Dirs:       res.Stats.Dirs,
			Mounts:     res.Stats.Mounts,
			Errors:     res.Stats.Errors,
			Bytes:      res.Stats.Bytes,
			BytesHuman: humanize.IBytes(res.Stats.Bytes),
			Elapsed:    res.Stats.Elapsed.Round(time.Millisecond).String(),
		},
	}
	if res.Err != nil {
		out.Summary.Error = res.Err.Error()
	}
	if res.Cancelled {
		out.Warnings = append(out.Warnings, "scan was cancelled; sizes are partial")
	}
	if res.Stats.Errors > 0 {
		out.Warnings = append(out.Warnings, fmt.Sprintf("%d entries could not be read", res.Stats.Errors))
	}

	t := res.Tree
	if t == nil {
		return out
	}
	total := t.Size(t.Root())
	root := nodeFor(t, t.Root(), total, 0, depth)
	out.Tree = &root

	if top > 0 {
		for _, id := range t.Largest(t.Root(), top, fstree.KindFile) {
			out.Largest = append(out.Largest, nodeFor(t, id, total, t.Depth(id), -1))
		}
	}
	return out
}

func nodeFor(t *fstree.Tree, id fstree.NodeID, total uint64, depth, maxDepth int) Node {
	e := t.Entry(id)
	n := Node{
		Path:      e.Path,
		Name:      t.Name(id),
		Kind:      e.Kind.String(),
		Type:      t.FileType(id),
		Size:      e.Size,
		SizeHuman: humanize.IBytes(e.Size),
		Percent:   percent(e.Size, total),
		Depth:     depth,
	}
	if depth >= maxDepth {
		return n
	}

	kids := append([]fstree.NodeID(nil), t.Children(id)...)
	sort.SliceStable(kids, func(i, j int) bool { return t.Size(kids[i]) > t.Size(kids[j]) })
	for _, c := range kids {
		n.Children = append(n.Children, nodeFor(t, c, total, depth+1, maxDepth))
	}
	return n
}

func percent(part, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) * 100 / float64(total)
}

// AddArcs appends the arcs of a layout in pre-order, root excluded.
func (r *Result) AddArcs(t *fstree.Tree, root *radial.Item[fstree.NodeID], c radial.Colorer[fstree.NodeID], maxLevels int) {
	root.Walk(func(it *radial.Item[fstree.NodeID]) bool {
		if it.Level == 0 {
			return true
		}
		size := t.Size(it.Value)
		r.Arcs = append(r.Arcs, Arc{
			Path:      t.Entry(it.Value).Path,
			Level:     it.Level,
			Start:     it.Start,
			End:       it.End,
			Size:      size,
			SizeHuman: humanize.IBytes(size),
			Color:     render.Hex(render.ItemColor(c, it, maxLevels)),
		})
		return true
	})
}

// Formatter writes a Result in one output format.
type Formatter interface {
	Format(w *bytes.Buffer, r *Result) error
}

// FormatterFactory creates a Formatter.
type FormatterFactory func() Formatter

// Registry maps names to formatter factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: map[string]FormatterFactory{}}
}

// Register adds or replaces a formatter.
func (r *Registry) Register(name string, f FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

// Get returns a new formatter by name.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown output format %q", name)
	}
	return f(), nil
}

// Available returns the registered names in sorted order.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry holds the built-in formatters.
var DefaultRegistry = NewRegistry()

// Register adds a formatter to DefaultRegistry.
func Register(name string, f FormatterFactory) {
	DefaultRegistry.Register(name, f)
}

// Get returns a formatter from DefaultRegistry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available lists the formatters in DefaultRegistry.
func Available() []string {
	return DefaultRegistry.Available()
}
