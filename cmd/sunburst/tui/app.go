package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/jamesainslie/sunburst/pkg/sunburst/fstree"
	"github.com/jamesainslie/sunburst/pkg/sunburst/logging"
	"github.com/jamesainslie/sunburst/pkg/sunburst/radial"
	"github.com/jamesainslie/sunburst/pkg/sunburst/render"
	"github.com/jamesainslie/sunburst/pkg/sunburst/scanner"
	"github.com/jamesainslie/sunburst/pkg/sunburst/shell"
)

// AppState is the screen being shown.
type AppState int

const (
	StateScanning AppState = iota
	StateChart
	StateConfirmTrash
	StateFailed
)

// progressBuffer bounds queued progress updates; further updates are
// dropped until the UI catches up.
const progressBuffer = 100

// Options configures the TUI.
type Options struct {
	Scan    scanner.Options
	Painter radial.Painter

	// Colorer names a render colorer: angle, type or name.
	Colorer string
}

// Model is the Bubble Tea model of the application.
type Model struct {
	state   AppState
	options Options
	log     *logging.Logger

	ctx    context.Context
	cancel context.CancelFunc

	// gen numbers scans so messages from a replaced scan are ignored.
	gen      int
	scanner  *scanner.Scanner
	progress chan scanner.Progress
	result   scanner.Result

	scan  ScanModel
	chart ChartModel

	trashTarget fstree.NodeID
	status      string
	statusErr   bool

	width  int
	height int
}

// actionDoneMsg reports the outcome of a desktop action.
type actionDoneMsg struct {
	action string
	path   string
	err    error
}

// NewModel returns a model that starts scanning on Init.
func NewModel(opts Options) Model {
	ctx, cancel := context.WithCancel(context.Background())
	m := Model{
		options:     opts,
		log:         logging.Get("tui"),
		ctx:         ctx,
		cancel:      cancel,
		trashTarget: fstree.NoNode,
		width:       80,
		height:      24,
	}
	m.prepareScan()
	return m
}

// prepareScan sets up a fresh scanner and scan screen without starting it.
func (m *Model) prepareScan() {
	if m.scanner != nil {
		m.scanner.Cancel()
	}
	m.gen++
	m.progress = make(chan scanner.Progress, progressBuffer)

	opts := m.options.Scan
	ch := m.progress
	opts.OnProgress = func(p scanner.Progress) {
		select {
		case ch <- p:
		default:
		}
	}
	m.scanner = scanner.New(opts)
	m.state = StateScanning
	m.scan = NewScanModel(opts.Root, opts.Estimate == scanner.EstimateNone)
	m.scan.SetDimensions(m.width, m.height)
}

// Init starts the first scan.
func (m Model) Init() tea.Cmd {
	return m.scanCmds()
}

func (m Model) scanCmds() tea.Cmd {
	return tea.Batch(
		m.scan.Init(),
		runScan(m.ctx, m.scanner, m.progress, m.gen),
		listenForProgress(m.progress, m.gen),
	)
}

// runScan runs s to completion and closes ch afterwards; the scanner never
// reports progress once it is done.
func runScan(ctx context.Context, s *scanner.Scanner, ch chan scanner.Progress, gen int) tea.Cmd {
	return func() tea.Msg {
		defer close(ch)
		if err := s.Scan(ctx); err != nil {
			return ScanCompleteMsg{gen: gen, Result: scanner.Result{State: scanner.StateFailed, Err: err}}
		}
		res, _ := s.Wait(context.Background())
		return ScanCompleteMsg{gen: gen, Result: res}
	}
}

func listenForProgress(ch <-chan scanner.Progress, gen int) tea.Cmd {
	return func() tea.Msg {
		p, ok := <-ch
		if !ok {
			return nil
		}
		return ProgressMsg{gen: gen, Progress: p}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.scan.SetDimensions(msg.Width, msg.Height)
		m.chart.SetDimensions(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case ProgressMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.scan.SetProgress(msg.Progress)
		return m, listenForProgress(m.progress, m.gen)

	case ScanCompleteMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		return m.finishScan(msg.Result), nil

	case actionDoneMsg:
		return m.finishAction(msg)

	default:
		if m.state == StateScanning {
			var cmd tea.Cmd
			m.scan.spinner, cmd = m.scan.spinner.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m Model) finishScan(res scanner.Result) Model {
	m.result = res
	m.status, m.statusErr = "", false

	if res.State == scanner.StateFailed || res.Tree == nil {
		m.state = StateFailed
		m.log.Error("scan failed", "root", res.Root, "error", res.Err)
		return m
	}

	colorer, err := render.NewColorer(m.options.Colorer, res.Tree)
	if err != nil {
		colorer = render.AngleColorer[fstree.NodeID]{}
		m.setStatus(err.Error(), true)
	}
	m.chart = NewChartModel(res.Tree, m.options.Painter, colorer)
	m.chart.SetDimensions(m.width, m.height)
	m.state = StateChart

	if res.Cancelled {
		m.setStatus("Scan stopped early; sizes are partial", true)
	}
	return m
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		m.cancel()
		return m, tea.Quit
	}

	switch m.state {
	case StateScanning:
		switch key {
		case "q":
			m.cancel()
			return m, tea.Quit
		case "esc":
			m.scan.stopping = true
			m.scanner.Cancel()
		}

	case StateFailed:
		switch key {
		case "q", "esc", "enter":
			m.cancel()
			return m, tea.Quit
		case "r":
			m.prepareScan()
			return m, m.scanCmds()
		}

	case StateConfirmTrash:
		switch key {
		case "y", "Y":
			path := m.result.Tree.Entry(m.trashTarget).Path
			m.state = StateChart
			m.trashTarget = fstree.NoNode
			m.setStatus("Moving "+filepath.Base(path)+" to trash...", false)
			return m, runAction(m.ctx, "trash", path, shell.MoveToTrash)
		default:
			m.state = StateChart
			m.trashTarget = fstree.NoNode
		}

	case StateChart:
		return m.handleChartKey(key)
	}
	return m, nil
}

func (m Model) handleChartKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q":
		m.cancel()
		return m, tea.Quit
	case "r":
		m.prepareScan()
		return m, m.scanCmds()
	case "enter":
		if id, ok := m.chart.Hovered(); ok {
			m.chart.ZoomIn(id)
		}
	case "backspace", "esc":
		m.chart.ZoomOut()
	case "left", "h":
		m.chart.Step(-1, 0)
	case "right", "l":
		m.chart.Step(1, 0)
	case "down", "j":
		m.chart.Step(0, 1)
	case "up", "k":
		m.chart.Step(0, -1)
	case "o", "R", "c", "d":
		id, ok := m.chart.Hovered()
		if !ok {
			m.setStatus("Point at an entry first", true)
			return m, nil
		}
		path := m.result.Tree.Entry(id).Path
		switch key {
		case "o":
			return m, runAction(m.ctx, "open", path, shell.Open)
		case "R":
			return m, runAction(m.ctx, "reveal", path, shell.Reveal)
		case "c":
			return m, runAction(m.ctx, "copy", path, shell.CopyPath)
		case "d":
			m.trashTarget = id
			m.state = StateConfirmTrash
		}
	}
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.state != StateChart {
		return m, nil
	}
	col, row := msg.X, msg.Y-1
	m.chart.HoverCell(col, row)

	if msg.Action != tea.MouseActionPress {
		return m, nil
	}
	switch msg.Button {
	case tea.MouseButtonLeft, tea.MouseButtonWheelUp:
		if id, ok := m.chart.Hovered(); ok {
			m.chart.ZoomIn(id)
			m.chart.HoverCell(col, row)
		} else if m.chart.InHole(col, row) {
			m.chart.ZoomOut()
		}
	case tea.MouseButtonRight, tea.MouseButtonWheelDown:
		m.chart.ZoomOut()
		m.chart.HoverCell(col, row)
	}
	return m, nil
}

func runAction(ctx context.Context, action, path string, fn func(context.Context, string) error) tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{action: action, path: path, err: fn(ctx, path)}
	}
}

func (m Model) finishAction(msg actionDoneMsg) (tea.Model, tea.Cmd) {
	name := filepath.Base(msg.path)
	if msg.err != nil {
		m.log.Warn("action failed", "action", msg.action, "path", msg.path, "error", msg.err)
		switch {
		case msg.action == "copy" && errors.Is(msg.err, shell.ErrUnsupported):
			m.setStatus("No clipboard; path: "+msg.path, false)
		case errors.Is(msg.err, shell.ErrNoTrash):
			m.setStatus("No trash available; "+name+" was left in place", true)
		default:
			m.setStatus(fmt.Sprintf("Could not %s %s: %v", msg.action, name, msg.err), true)
		}
		return m, nil
	}

	m.log.Info("action done", "action", msg.action, "path", msg.path)
	switch msg.action {
	case "trash":
		m.prepareScan()
		return m, m.scanCmds()
	case "copy":
		m.setStatus("Copied "+msg.path, false)
	default:
		m.setStatus(fmt.Sprintf("%s: %s", strings.ToUpper(msg.action[:1])+msg.action[1:], name), false)
	}
	return m, nil
}

// View renders the current screen.
func (m Model) View() string {
	switch m.state {
	case StateScanning:
		return m.scan.View()
	case StateFailed:
		return m.renderFailed()
	case StateConfirmTrash:
		return m.renderConfirm()
	default:
		return m.renderChart()
	}
}

func (m Model) renderChart() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.chart.View())
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(" " + keyHints(
		"click", "zoom in", "bksp", "zoom out", "o", "open", "R", "reveal",
		"c", "copy", "d", "trash", "r", "rescan", "q", "quit"))
	return b.String()
}

func (m Model) renderHeader() string {
	s := m.result.Stats
	root := m.result.Tree.Entry(m.chart.Root()).Path
	stats := mutedTextStyle.Render(fmt.Sprintf("  %s files  •  %s  •  %s",
		humanize.Comma(s.Files), humanize.IBytes(s.Bytes), s.Elapsed.Round(time.Millisecond)))
	header := " " + titleStyle.Render("SUNBURST") + "  " + pathStyle.Render(truncatePath(root, m.width/2)) + stats
	if s.Mounts > 0 {
		header += mutedTextStyle.Render(fmt.Sprintf("  •  %d mounts", s.Mounts))
	}
	return header
}

// renderStatus shows the last action result, or else the newest warning
// from the log.
func (m Model) renderStatus() string {
	if m.status != "" {
		if m.statusErr {
			return " " + warningTextStyle.Render(m.status)
		}
		return " " + successTextStyle.Render(m.status)
	}
	if recent := logging.RecentEntries(1); len(recent) == 1 && recent[0].Level >= logging.LevelWarn {
		e := recent[0]
		return " " + mutedTextStyle.Render(truncatePath(e.Component+": "+e.Message, max(m.width-2, 10)))
	}
	if n := m.result.Stats.Errors; n > 0 {
		return " " + mutedTextStyle.Render(fmt.Sprintf("%d entries could not be read", n))
	}
	return ""
}

func (m Model) renderConfirm() string {
	e := m.result.Tree.Entry(m.trashTarget)
	var b strings.Builder
	b.WriteString(warningTextStyle.Bold(true).Render("Move to trash?"))
	b.WriteString("\n\n")
	b.WriteString(pathStyle.Render(truncatePath(e.Path, 60)))
	b.WriteString("\n")
	b.WriteString(sizeStyle.Render(humanize.IBytes(e.Size)))
	b.WriteString("\n\n")
	b.WriteString(keyHints("y", "trash", "any key", "cancel"))

	dialog := dialogBoxStyle.Render(b.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, dialog)
}

func (m Model) renderFailed() string {
	msg := "Scan failed"
	if m.result.Err != nil {
		msg += ": " + m.result.Err.Error()
	}
	body := errorTextStyle.Render(msg) + "\n\n" + keyHints("r", "retry", "q", "quit")
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, outerBoxStyle.Render(body))
}

// Run starts the TUI and blocks until it exits.
func Run(opts Options) error {
	m := NewModel(opts)
	defer m.cancel()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	_, err := p.Run()
	return err
}
