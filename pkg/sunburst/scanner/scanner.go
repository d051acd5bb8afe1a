// Package scanner walks a directory tree on a background goroutine and
// builds an fstree.Tree with aggregated sizes.
//
// A Scanner runs once. It moves from Idle to Scanning when Scan is called
// and ends in exactly one of Completed, Cancelled or Failed. Cancellation
// is cooperative: the walk checks a flag before each entry, stops
// descending, and delivers the partial tree built so far.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jamesainslie/sunburst/pkg/sunburst/fstree"
	"github.com/jamesainslie/sunburst/pkg/sunburst/logging"
)

var (
	// ErrNotIdle is returned by Scan on a scanner that already started.
	ErrNotIdle = errors.New("scanner already started")

	// ErrRootUnreadable means the root could not be enumerated.
	ErrRootUnreadable = errors.New("root directory unreadable")
)

// State is the lifecycle state of a Scanner.
type State int32

const (
	StateIdle State = iota
	StateScanning
	StateCompleted
	StateCancelled
	StateFailed
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanning:
		return "scanning"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Terminal reports whether s is a final state.
func (s State) Terminal() bool {
	return s >= StateCompleted
}

// Progress is a snapshot of a running scan.
type Progress struct {
	// Fraction is the estimated completed share in [0, 1]. It never
	// decreases during a scan.
	Fraction    float64 `json:"fraction"`
	CurrentPath string  `json:"current_path"`
	Entries     int64   `json:"entries"`
	Bytes       uint64  `json:"bytes"`
}

// Stats summarizes a finished scan.
type Stats struct {
	Files    int64         `json:"files"`
	Dirs     int64         `json:"dirs"`
	Mounts   int64         `json:"mounts"`
	Excluded int64         `json:"excluded"`
	Errors   int64         `json:"errors"`
	Bytes    uint64        `json:"bytes"`
	Estimate uint64        `json:"estimate"`
	Elapsed  time.Duration `json:"elapsed"`
}

// Result is the terminal outcome of a scan.
type Result struct {
	ID    string
	Root  string
	State State

	// Tree is the scanned hierarchy. It is partial when Cancelled and nil
	// when Failed.
	Tree *fstree.Tree

	// Err is the fatal error for Failed, or nil.
	Err error

	Cancelled bool
	Stats     Stats
}

// status is the state shared between the scan goroutine and readers.
type status struct {
	mu       sync.Mutex
	state    State
	progress Progress
	lastErr  error
	errCount int64
	result   Result
}

// Scanner scans one directory tree once.
type Scanner struct {
	opts Options
	id   string
	log  *logging.Logger

	cancelled atomic.Bool
	st        status
	done      chan struct{}
}

// New returns an idle scanner.
func New(opts Options) *Scanner {
	opts.normalize()
	id := uuid.NewString()
	return &Scanner{
		opts: opts,
		id:   id,
		log:  logging.Get("scanner").With("scan", id[:8]),
		done: make(chan struct{}),
	}
}

// ID returns the scan's unique identifier.
func (s *Scanner) ID() string {
	return s.id
}

// Root returns the configured root path.
func (s *Scanner) Root() string {
	return s.opts.Root
}

// Scan starts the walk on a new goroutine and returns immediately.
// Cancelling ctx has the same effect as Cancel.
func (s *Scanner) Scan(ctx context.Context) error {
	s.st.mu.Lock()
	if s.st.state != StateIdle {
		s.st.mu.Unlock()
		return ErrNotIdle
	}
	s.st.state = StateScanning
	s.st.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			s.Cancel()
		case <-s.done:
		}
	}()
	go s.run()
	return nil
}

// Cancel asks the scan to stop. It may be called at any time; before Scan
// it makes the scan stop at its first entry, and once the scan has ended it
// does nothing.
func (s *Scanner) Cancel() {
	if s.State().Terminal() {
		return
	}
	if !s.cancelled.Swap(true) {
		s.log.Debug("cancel requested")
	}
}

// Done is closed once the result is available.
func (s *Scanner) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the scan ends or ctx is done.
func (s *Scanner) Wait(ctx context.Context) (Result, error) {
	select {
	case <-s.done:
		return s.Result(), nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Result returns the final result, or a zero Result with the current state
// while the scan is running.
func (s *Scanner) Result() Result {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if !s.st.state.Terminal() {
		return Result{ID: s.id, Root: s.opts.Root, State: s.st.state}
	}
	return s.st.result
}

// State returns the current lifecycle state.
func (s *Scanner) State() State {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	return s.st.state
}

// Progress returns the latest progress snapshot.
func (s *Scanner) Progress() Progress {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	return s.st.progress
}

// LastError returns the most recent non-fatal entry error, or nil.
func (s *Scanner) LastError() error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	return s.st.lastErr
}

// ErrorCount returns the number of entries skipped because of errors.
func (s *Scanner) ErrorCount() int64 {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	return s.st.errCount
}

func (s *Scanner) setProgress(p Progress) {
	s.st.mu.Lock()
	s.st.progress = p
	s.st.mu.Unlock()
}

func (s *Scanner) recordError(path string, err error) {
	s.log.Warn("skipping entry", "path", path, "err", err)
	s.st.mu.Lock()
	s.st.lastErr = err
	s.st.errCount++
	s.st.mu.Unlock()
}

func (s *Scanner) run() {
	start := time.Now()
	w := newWalker(s)

	defer close(s.done)
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		err := fmt.Errorf("scan aborted: %v", r)
		s.log.Error("scan panicked", "err", err)
		if !s.State().Terminal() {
			s.finish(w, StateFailed, nil, err, start)
		}
	}()

	s.log.Info("scan started", "root", s.opts.Root, "estimate", s.opts.Estimate)

	tree, err := w.walk()
	switch {
	case err != nil:
		s.log.Error("scan failed", "root", s.opts.Root, "err", err)
		s.finish(w, StateFailed, nil, err, start)
	case w.stopped:
		s.finish(w, StateCancelled, tree, nil, start)
	default:
		s.finish(w, StateCompleted, tree, nil, start)
	}
}

func (s *Scanner) finish(w *walker, state State, tree *fstree.Tree, err error, start time.Time) {
	stats := w.stats
	stats.Elapsed = time.Since(start)
	stats.Errors = s.ErrorCount()

	if state == StateCompleted {
		w.emitFinal()
	}

	res := Result{
		ID:        s.id,
		Root:      w.root,
		State:     state,
		Tree:      tree,
		Err:       err,
		Cancelled: state == StateCancelled,
		Stats:     stats,
	}

	s.st.mu.Lock()
	s.st.state = state
	s.st.result = res
	s.st.mu.Unlock()

	s.log.Info("scan finished",
		"state", state,
		"files", stats.Files,
		"dirs", stats.Dirs,
		"bytes", stats.Bytes,
		"errors", stats.Errors,
		"elapsed", stats.Elapsed.Round(time.Millisecond))

	if s.opts.OnComplete != nil {
		s.opts.OnComplete(res)
	}
}
