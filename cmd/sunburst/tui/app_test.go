package tui

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jamesainslie/sunburst/pkg/sunburst/radial"
	"github.com/jamesainslie/sunburst/pkg/sunburst/scanner"
	"github.com/jamesainslie/sunburst/pkg/sunburst/shell"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func testOptions(root string) Options {
	return Options{
		Scan:    scanner.Options{Root: root, Estimate: scanner.EstimateNone},
		Painter: radial.DefaultPainter(),
		Colorer: "type",
	}
}

// chartModel returns a model showing sampleTree on an 80x40 chart.
func chartModel(t *testing.T) Model {
	t.Helper()
	m := NewModel(testOptions("/r"))
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 40 + chartChrome})
	m, _ = update(t, m, ScanCompleteMsg{gen: m.gen, Result: scanner.Result{
		Root:  "/r",
		State: scanner.StateCompleted,
		Tree:  sampleTree(),
		Stats: scanner.Stats{Files: 4, Dirs: 2, Bytes: 80},
	}})
	require.Equal(t, StateChart, m.state)
	return m
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestNewModel(t *testing.T) {
	m := NewModel(testOptions("/data"))

	assert.Equal(t, StateScanning, m.state)
	assert.Equal(t, 1, m.gen)
	assert.Equal(t, scanner.StateIdle, m.scanner.State())
	assert.True(t, m.scan.indeterminate)
	assert.NotNil(t, m.Init())
}

func TestModel_ScanRunsToChart(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.bin"), make([]byte, 300), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "b.txt"), make([]byte, 100), 0o644))

	m := NewModel(testOptions(root))
	msg := runScan(m.ctx, m.scanner, m.progress, m.gen)()

	done, ok := msg.(ScanCompleteMsg)
	require.True(t, ok)
	assert.Equal(t, scanner.StateCompleted, done.Result.State)

	m, _ = update(t, m, msg)
	assert.Equal(t, StateChart, m.state)
	assert.Equal(t, uint64(400), m.result.Tree.Size(m.chart.Root()))

	// Ends only because the scan closed the channel.
	for range m.progress {
	}
}

func TestModel_ProgressAndStaleMessages(t *testing.T) {
	m := NewModel(testOptions("/r"))

	m, cmd := update(t, m, ProgressMsg{gen: m.gen, Progress: scanner.Progress{Fraction: 0.4, Entries: 10}})
	assert.InDelta(t, 0.4, m.scan.progress.Fraction, 1e-9)
	assert.NotNil(t, cmd, "keeps listening")

	m, cmd = update(t, m, ProgressMsg{gen: m.gen, Progress: scanner.Progress{Fraction: 0.2}})
	assert.InDelta(t, 0.4, m.scan.progress.Fraction, 1e-9, "fraction never goes back")
	assert.NotNil(t, cmd)

	m, cmd = update(t, m, ProgressMsg{gen: m.gen - 1, Progress: scanner.Progress{Fraction: 0.9}})
	assert.InDelta(t, 0.4, m.scan.progress.Fraction, 1e-9)
	assert.Nil(t, cmd)

	m, _ = update(t, m, ScanCompleteMsg{gen: m.gen + 1, Result: scanner.Result{State: scanner.StateCompleted, Tree: sampleTree()}})
	assert.Equal(t, StateScanning, m.state)
}

func TestModel_ScanFailed(t *testing.T) {
	m := NewModel(testOptions("/missing"))
	m, _ = update(t, m, ScanCompleteMsg{gen: m.gen, Result: scanner.Result{
		State: scanner.StateFailed,
		Err:   errors.New("root unreadable"),
	}})

	assert.Equal(t, StateFailed, m.state)
	assert.Contains(t, m.View(), "root unreadable")

	m, cmd := update(t, m, keyMsg("r"))
	assert.Equal(t, StateScanning, m.state)
	assert.Equal(t, 2, m.gen)
	assert.NotNil(t, cmd)
}

func TestModel_CancelledScanShowsPartialChart(t *testing.T) {
	m := NewModel(testOptions("/r"))
	m, _ = update(t, m, keyMsg("esc"))
	assert.True(t, m.scan.stopping)

	m, _ = update(t, m, ScanCompleteMsg{gen: m.gen, Result: scanner.Result{
		State:     scanner.StateCancelled,
		Cancelled: true,
		Tree:      sampleTree(),
	}})
	assert.Equal(t, StateChart, m.state)
	assert.Contains(t, m.status, "partial")
}

func TestModel_QuitKeys(t *testing.T) {
	for _, k := range []string{"q", "ctrl+c"} {
		m := chartModel(t)
		_, cmd := update(t, m, keyMsg(k))
		assert.True(t, isQuit(cmd), k)
		assert.Error(t, m.ctx.Err(), "quitting cancels the scan context")
	}

	m := NewModel(testOptions("/r"))
	_, cmd := update(t, m, keyMsg("q"))
	assert.True(t, isQuit(cmd))
}

func TestModel_MouseHoverAndZoom(t *testing.T) {
	m := chartModel(t)
	tree := m.result.Tree

	// Chart rows start below the header line.
	m, _ = update(t, m, tea.MouseMsg{X: 48, Y: 20, Action: tea.MouseActionMotion})
	assert.Equal(t, "a.go", hoveredName(t, m.chart, tree))

	m, _ = update(t, m, tea.MouseMsg{X: 40, Y: 18, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.Equal(t, tree.Lookup("/r/b"), m.chart.Root())

	// Clicking the hole zooms back out.
	m, _ = update(t, m, tea.MouseMsg{X: 40, Y: 21, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.Equal(t, tree.Root(), m.chart.Root())
}

func TestModel_KeyboardZoom(t *testing.T) {
	m := chartModel(t)
	tree := m.result.Tree

	m, _ = update(t, m, keyMsg("l"))
	m, _ = update(t, m, keyMsg("l"))
	require.Equal(t, "b", hoveredName(t, m.chart, tree))

	m, _ = update(t, m, keyMsg("enter"))
	assert.Equal(t, tree.Lookup("/r/b"), m.chart.Root())

	m, _ = update(t, m, keyMsg("backspace"))
	assert.Equal(t, tree.Root(), m.chart.Root())
}

func TestModel_TrashConfirm(t *testing.T) {
	m := chartModel(t)

	m, cmd := update(t, m, keyMsg("d"))
	assert.Nil(t, cmd)
	assert.Equal(t, StateChart, m.state)
	assert.True(t, m.statusErr, "needs a hovered entry")

	m, _ = update(t, m, keyMsg("l"))
	m, _ = update(t, m, keyMsg("d"))
	require.Equal(t, StateConfirmTrash, m.state)
	assert.Contains(t, m.View(), "/r/a.go")

	m, cmd = update(t, m, keyMsg("n"))
	assert.Equal(t, StateChart, m.state)
	assert.Nil(t, cmd)

	m, _ = update(t, m, keyMsg("d"))
	m, cmd = update(t, m, keyMsg("y"))
	assert.Equal(t, StateChart, m.state)
	assert.NotNil(t, cmd)
	assert.Contains(t, m.status, "a.go")
}

func TestModel_ActionResults(t *testing.T) {
	m := chartModel(t)

	m, _ = update(t, m, actionDoneMsg{action: "copy", path: "/r/a.go", err: shell.ErrUnsupported})
	assert.Contains(t, m.status, "path: /r/a.go")
	assert.False(t, m.statusErr)

	m, _ = update(t, m, actionDoneMsg{action: "trash", path: "/r/a.go", err: shell.ErrNoTrash})
	assert.Contains(t, m.status, "left in place")
	assert.True(t, m.statusErr)

	m, _ = update(t, m, actionDoneMsg{action: "open", path: "/r/a.go", err: errors.New("boom")})
	assert.Contains(t, m.status, "Could not open a.go")

	m, _ = update(t, m, actionDoneMsg{action: "reveal", path: "/r/a.go"})
	assert.Equal(t, "Reveal: a.go", m.status)
	assert.Contains(t, m.View(), "Reveal: a.go")

	gen := m.gen
	m, cmd := update(t, m, actionDoneMsg{action: "trash", path: "/r/a.go"})
	assert.Equal(t, StateScanning, m.state, "trashing rescans")
	assert.Equal(t, gen+1, m.gen)
	assert.NotNil(t, cmd)
}

func TestModel_ChartView(t *testing.T) {
	m := chartModel(t)
	out := m.View()

	assert.Contains(t, out, "SUNBURST")
	assert.Contains(t, out, "4 files")
	assert.Contains(t, out, "rescan")
}
