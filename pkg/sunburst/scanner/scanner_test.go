package scanner_test

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jamesainslie/sunburst/pkg/sunburst/fstree"
	"github.com/jamesainslie/sunburst/pkg/sunburst/scanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
}

// fixture creates root/a (10 bytes) and root/b/c (20 bytes).
func fixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a"), 10)
	writeFile(t, filepath.Join(root, "b", "c"), 20)
	return root
}

func run(t *testing.T, opts scanner.Options) scanner.Result {
	t.Helper()
	s := scanner.New(opts)
	require.NoError(t, s.Scan(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	res, err := s.Wait(ctx)
	require.NoError(t, err)
	return res
}

// assertSizesAggregate checks that every directory equals the sum of its
// children.
func assertSizesAggregate(t *testing.T, tree *fstree.Tree) {
	t.Helper()
	tree.Walk(tree.Root(), func(id fstree.NodeID, _ int) bool {
		if tree.Entry(id).Kind != fstree.KindDir {
			return true
		}
		var sum uint64
		for _, c := range tree.Children(id) {
			sum += tree.Size(c)
		}
		assert.Equal(t, sum, tree.Size(id), "size of %s", tree.Entry(id).Path)
		return true
	})
}

func TestScan_Fixture(t *testing.T) {
	root := fixture(t)

	var completions atomic.Int32
	var final scanner.Result
	res := run(t, scanner.Options{
		Root:     root,
		Estimate: scanner.EstimateNone,
		OnComplete: func(r scanner.Result) {
			completions.Add(1)
			final = r
		},
	})

	require.Equal(t, scanner.StateCompleted, res.State)
	require.NoError(t, res.Err)
	assert.False(t, res.Cancelled)
	assert.Equal(t, int32(1), completions.Load())
	assert.Equal(t, res.ID, final.ID)

	tree := res.Tree
	require.NotNil(t, tree)
	assert.Equal(t, uint64(30), tree.Size(tree.Root()))

	b := tree.Lookup(filepath.Join(root, "b"))
	require.NotEqual(t, fstree.NoNode, b)
	assert.Equal(t, uint64(20), tree.Size(b))
	assert.Equal(t, fstree.KindDir, tree.Entry(b).Kind)

	a := tree.Lookup(filepath.Join(root, "a"))
	assert.Equal(t, []fstree.NodeID{a, b}, tree.Children(tree.Root()), "name order")

	assert.Equal(t, int64(2), res.Stats.Files)
	assert.Equal(t, int64(2), res.Stats.Dirs)
	assert.Equal(t, uint64(30), res.Stats.Bytes)
	assertSizesAggregate(t, tree)
}

func TestScan_RelativeRootIsResolved(t *testing.T) {
	root := fixture(t)
	t.Chdir(root)

	res := run(t, scanner.Options{Root: ".", Estimate: scanner.EstimateNone})
	require.Equal(t, scanner.StateCompleted, res.State)
	assert.True(t, filepath.IsAbs(res.Root))
	assert.Equal(t, uint64(30), res.Tree.Size(res.Tree.Root()))
}

func TestScan_ProgressIsMonotonic(t *testing.T) {
	root := t.TempDir()
	for i := range 20 {
		writeFile(t, filepath.Join(root, fmt.Sprintf("d%d", i%4), fmt.Sprintf("f%02d", i)), i)
	}

	const step = 0.05
	var fractions []float64
	res := run(t, scanner.Options{
		Root:         root,
		Estimate:     scanner.EstimateCount,
		ProgressStep: step,
		OnProgress: func(p scanner.Progress) {
			fractions = append(fractions, p.Fraction)
		},
	})
	require.Equal(t, scanner.StateCompleted, res.State)
	assert.Equal(t, uint64(24), res.Stats.Estimate, "4 dirs and 20 files")

	require.NotEmpty(t, fractions)
	assert.Equal(t, 1.0, fractions[len(fractions)-1], "final emission is 1.0")
	for i, f := range fractions {
		assert.GreaterOrEqual(t, f, 0.0)
		assert.LessOrEqual(t, f, 1.0)
		if i == 0 {
			assert.GreaterOrEqual(t, f, step)
			continue
		}
		assert.GreaterOrEqual(t, f, fractions[i-1])
		if i < len(fractions)-1 {
			assert.GreaterOrEqual(t, f-fractions[i-1], step-1e-12, "emissions are coalesced")
		}
	}
}

func TestScan_NotIdle(t *testing.T) {
	s := scanner.New(scanner.Options{Root: fixture(t), Estimate: scanner.EstimateNone})
	require.NoError(t, s.Scan(context.Background()))
	assert.ErrorIs(t, s.Scan(context.Background()), scanner.ErrNotIdle)

	_, err := s.Wait(context.Background())
	require.NoError(t, err)
	assert.ErrorIs(t, s.Scan(context.Background()), scanner.ErrNotIdle)
}

func TestScan_CancelBeforeStart(t *testing.T) {
	s := scanner.New(scanner.Options{Root: fixture(t)})
	assert.Equal(t, scanner.StateIdle, s.State())

	s.Cancel()
	require.NoError(t, s.Scan(context.Background()))
	<-s.Done()

	res := s.Result()
	assert.Equal(t, scanner.StateCancelled, res.State)
	assert.True(t, res.Cancelled)
	assert.NoError(t, res.Err)
	require.NotNil(t, res.Tree)
	assert.Equal(t, 1, res.Tree.Len())

	s.Cancel()
	assert.Equal(t, scanner.StateCancelled, s.State(), "terminal states never change")
}

func TestScan_CancelMidScan(t *testing.T) {
	root := t.TempDir()
	for d := range 5 {
		for f := range 50 {
			writeFile(t, filepath.Join(root, fmt.Sprintf("d%d", d), fmt.Sprintf("f%02d", f)), 1)
		}
	}

	var s *scanner.Scanner
	var lastFraction float64
	s = scanner.New(scanner.Options{
		Root:         root,
		Estimate:     scanner.EstimateCount,
		ProgressStep: 0.001,
		OnProgress: func(p scanner.Progress) {
			lastFraction = p.Fraction
			s.Cancel()
		},
	})
	require.NoError(t, s.Scan(context.Background()))
	res, err := s.Wait(context.Background())
	require.NoError(t, err)

	assert.Equal(t, scanner.StateCancelled, res.State)
	assert.True(t, res.Cancelled)
	assert.NoError(t, res.Err)
	assert.LessOrEqual(t, lastFraction, 1.0)
	assert.LessOrEqual(t, s.Progress().Fraction, 1.0)

	tree := res.Tree
	require.NotNil(t, tree)
	assert.Less(t, tree.Len(), 256)
	assert.Equal(t, fstree.NoNode, tree.Lookup(filepath.Join(root, "d4")), "no entries from unstarted directories")
	assertSizesAggregate(t, tree)
}

func TestScan_ContextCancel(t *testing.T) {
	root := t.TempDir()
	for f := range 100 {
		writeFile(t, filepath.Join(root, fmt.Sprintf("f%03d", f)), 1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var s *scanner.Scanner
	s = scanner.New(scanner.Options{
		Root:         root,
		Estimate:     scanner.EstimateCount,
		ProgressStep: 0.001,
		OnProgress: func(scanner.Progress) {
			cancel()
			assert.Eventually(t, s.CancelRequested, 5*time.Second, time.Millisecond)
		},
	})
	require.NoError(t, s.Scan(ctx))
	res, err := s.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, scanner.StateCancelled, res.State)
}

func TestScan_RootUnreadable(t *testing.T) {
	file := filepath.Join(t.TempDir(), "plain")
	writeFile(t, file, 3)

	tests := []struct {
		name string
		root string
	}{
		{name: "missing", root: filepath.Join(t.TempDir(), "nope")},
		{name: "not a directory", root: file},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got scanner.Result
			res := run(t, scanner.Options{
				Root:       tt.root,
				OnComplete: func(r scanner.Result) { got = r },
			})
			assert.Equal(t, scanner.StateFailed, res.State)
			assert.ErrorIs(t, res.Err, scanner.ErrRootUnreadable)
			assert.Nil(t, res.Tree)
			assert.Equal(t, scanner.StateFailed, got.State)
		})
	}
}

func TestScan_UnreadableEntryIsSkipped(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}

	root := fixture(t)
	locked := filepath.Join(root, "locked")
	writeFile(t, filepath.Join(locked, "secret"), 100)
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	s := scanner.New(scanner.Options{Root: root, Estimate: scanner.EstimateNone})
	require.NoError(t, s.Scan(context.Background()))
	res, err := s.Wait(context.Background())
	require.NoError(t, err)

	assert.Equal(t, scanner.StateCompleted, res.State)
	assert.Error(t, s.LastError())
	assert.Equal(t, int64(1), s.ErrorCount())
	assert.Equal(t, int64(1), res.Stats.Errors)

	id := res.Tree.Lookup(locked)
	require.NotEqual(t, fstree.NoNode, id)
	assert.Equal(t, uint64(0), res.Tree.Size(id))
	assert.Equal(t, uint64(30), res.Tree.Size(res.Tree.Root()))
}

func TestScan_MountBoundary(t *testing.T) {
	root := fixture(t)
	writeFile(t, filepath.Join(root, "mnt", "big"), 1000)

	restore := scanner.SetDeviceOf(func(path string, _ fs.FileInfo) (uint64, bool) {
		if strings.HasPrefix(path, filepath.Join(root, "mnt")) {
			return 2, true
		}
		return 1, true
	})
	defer restore()

	t.Run("not crossed by default", func(t *testing.T) {
		res := run(t, scanner.Options{Root: root, Estimate: scanner.EstimateCount})
		require.Equal(t, scanner.StateCompleted, res.State)

		mnt := res.Tree.Lookup(filepath.Join(root, "mnt"))
		require.NotEqual(t, fstree.NoNode, mnt)
		assert.Equal(t, fstree.KindMount, res.Tree.Entry(mnt).Kind)
		assert.Equal(t, uint64(0), res.Tree.Size(mnt))
		assert.Empty(t, res.Tree.Children(mnt))
		assert.Equal(t, uint64(30), res.Tree.Size(res.Tree.Root()))
		assert.Equal(t, int64(1), res.Stats.Mounts)
		assert.Equal(t, uint64(4), res.Stats.Estimate, "pre-count stops at the mount too")
	})

	t.Run("crossed when enabled", func(t *testing.T) {
		res := run(t, scanner.Options{Root: root, CrossMounts: true, Estimate: scanner.EstimateNone})
		mnt := res.Tree.Lookup(filepath.Join(root, "mnt"))
		require.NotEqual(t, fstree.NoNode, mnt)
		assert.Equal(t, fstree.KindDir, res.Tree.Entry(mnt).Kind)
		assert.Equal(t, uint64(1030), res.Tree.Size(res.Tree.Root()))
	})
}

func TestScan_SymlinksAreNotFollowed(t *testing.T) {
	root := fixture(t)
	target := t.TempDir()
	writeFile(t, filepath.Join(target, "huge"), 5000)
	link := filepath.Join(root, "link")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	res := run(t, scanner.Options{Root: root, Estimate: scanner.EstimateNone})
	id := res.Tree.Lookup(link)
	require.NotEqual(t, fstree.NoNode, id)
	assert.Equal(t, fstree.KindFile, res.Tree.Entry(id).Kind)
	assert.Empty(t, res.Tree.Children(id))
	assert.Less(t, res.Tree.Size(res.Tree.Root()), uint64(5000))
}

func TestScan_Exclude(t *testing.T) {
	root := fixture(t)
	writeFile(t, filepath.Join(root, "debug.log"), 500)
	writeFile(t, filepath.Join(root, "cache", "blob"), 700)

	res := run(t, scanner.Options{
		Root:     root,
		Exclude:  []string{"*.log", filepath.Join(root, "cache")},
		Estimate: scanner.EstimateCount,
	})

	assert.Equal(t, fstree.NoNode, res.Tree.Lookup(filepath.Join(root, "debug.log")))
	assert.Equal(t, fstree.NoNode, res.Tree.Lookup(filepath.Join(root, "cache")))
	assert.Equal(t, uint64(30), res.Tree.Size(res.Tree.Root()))
	assert.Equal(t, int64(2), res.Stats.Excluded)
	assert.Equal(t, uint64(3), res.Stats.Estimate)
}

func TestWait_ContextDone(t *testing.T) {
	s := scanner.New(scanner.Options{Root: fixture(t)})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, scanner.StateIdle, s.Result().State)
}

func TestScanner_Identity(t *testing.T) {
	a := scanner.New(scanner.DefaultOptions())
	b := scanner.New(scanner.DefaultOptions())
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Len(t, a.ID(), 36)
	assert.Equal(t, ".", a.Root())
}

func TestState(t *testing.T) {
	tests := []struct {
		state    scanner.State
		name     string
		terminal bool
	}{
		{state: scanner.StateIdle, name: "idle"},
		{state: scanner.StateScanning, name: "scanning"},
		{state: scanner.StateCompleted, name: "completed", terminal: true},
		{state: scanner.StateCancelled, name: "cancelled", terminal: true},
		{state: scanner.StateFailed, name: "failed", terminal: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.state.String())
			assert.Equal(t, tt.terminal, tt.state.Terminal())
		})
	}
}

func TestParseEstimateMode(t *testing.T) {
	for _, m := range []scanner.EstimateMode{scanner.EstimateStatfs, scanner.EstimateCount, scanner.EstimateNone} {
		got, err := scanner.ParseEstimateMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := scanner.ParseEstimateMode("guess")
	assert.Error(t, err)
}

func TestMatchExclude(t *testing.T) {
	tests := []struct {
		path    string
		pattern string
		want    bool
	}{
		{path: "/proc", pattern: "/proc", want: true},
		{path: "/proc/1/maps", pattern: "/proc", want: true},
		{path: "/process", pattern: "/proc", want: false},
		{path: "/data/x/", pattern: "/data/x/", want: true},
		{path: "/a/b/node_modules", pattern: "node_modules", want: true},
		{path: "/a/b/trace.log", pattern: "*.log", want: true},
		{path: "/a/b/c", pattern: "/a/*/c", want: true},
		{path: "/a/b/c", pattern: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.path+"~"+tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.want, scanner.MatchExclude(tt.path, tt.pattern))
		})
	}
}
