// Package shell hands entries over to the desktop: opening them, revealing
// them in the file manager, moving them to the trash and copying their path.
package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/jamesainslie/sunburst/pkg/sunburst/logging"
)

const commandTimeout = 30 * time.Second

var (
	// ErrUnsupported is returned when no tool for the action exists on this
	// system.
	ErrUnsupported = errors.New("no desktop tool available")

	// ErrNoTrash is returned when nothing could move the entry to a trash.
	// The entry is left in place; it is never deleted permanently.
	ErrNoTrash = errors.New("no trash available")
)

// command is one candidate invocation. stdin, when set, is piped in.
type command struct {
	name  string
	args  []string
	stdin string
}

// Package hooks, replaced in tests.
var (
	goos     = runtime.GOOS
	lookPath = exec.LookPath
	run      = func(ctx context.Context, c command) error {
		cmd := exec.CommandContext(ctx, c.name, c.args...)
		if c.stdin != "" {
			cmd.Stdin = strings.NewReader(c.stdin)
		}
		out, err := cmd.CombinedOutput()
		if err != nil && len(out) > 0 {
			return fmt.Errorf("%s: %w: %s", c.name, err, strings.TrimSpace(string(out)))
		}
		return err
	}
)

// Open opens path with the default application.
func Open(ctx context.Context, path string) error {
	abs, err := existing(path)
	if err != nil {
		return err
	}
	switch goos {
	case "darwin":
		return first(ctx, "open", command{name: "open", args: []string{abs}})
	default:
		return first(ctx, "open",
			command{name: "xdg-open", args: []string{abs}},
			command{name: "gio", args: []string{"open", abs}})
	}
}

// Reveal shows path in the file manager. Where the file manager cannot
// select an entry, its parent directory is opened instead.
func Reveal(ctx context.Context, path string) error {
	abs, err := existing(path)
	if err != nil {
		return err
	}
	switch goos {
	case "darwin":
		return first(ctx, "reveal", command{name: "open", args: []string{"-R", abs}})
	default:
		uri := "file://" + abs
		return first(ctx, "reveal",
			command{name: "dbus-send", args: []string{
				"--session", "--dest=org.freedesktop.FileManager1", "--type=method_call",
				"/org/freedesktop/FileManager1", "org.freedesktop.FileManager1.ShowItems",
				"array:string:" + uri, "string:",
			}},
			command{name: "xdg-open", args: []string{filepath.Dir(abs)}})
	}
}

// MoveToTrash moves path to the system trash.
func MoveToTrash(ctx context.Context, path string) error {
	abs, err := existing(path)
	if err != nil {
		return err
	}
	var cmds []command
	switch goos {
	case "darwin":
		script := fmt.Sprintf(`tell application "Finder" to delete POSIX file %q`, abs)
		cmds = []command{{name: "osascript", args: []string{"-e", script}}}
	default:
		cmds = []command{
			{name: "gio", args: []string{"trash", abs}},
			{name: "trash-put", args: []string{abs}},
		}
	}
	if err := first(ctx, "trash", cmds...); err != nil {
		if errors.Is(err, ErrUnsupported) {
			return fmt.Errorf("trash %q: %w", abs, ErrNoTrash)
		}
		return fmt.Errorf("trash %q: %w", abs, err)
	}
	return nil
}

// CopyPath puts path on the clipboard.
func CopyPath(ctx context.Context, path string) error {
	switch goos {
	case "darwin":
		return first(ctx, "copy", command{name: "pbcopy", stdin: path})
	default:
		return first(ctx, "copy",
			command{name: "wl-copy", stdin: path},
			command{name: "xclip", args: []string{"-selection", "clipboard"}, stdin: path},
			command{name: "xsel", args: []string{"--clipboard", "--input"}, stdin: path})
	}
}

func existing(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", path, err)
	}
	if _, err := os.Lstat(abs); err != nil {
		return "", err
	}
	return abs, nil
}

// first runs the first installed candidate. A failing tool falls through to
// the next one; the last failure is returned.
func first(ctx context.Context, action string, cmds ...command) error {
	log := logging.Get("shell")
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	var lastErr error
	for _, c := range cmds {
		bin, err := lookPath(c.name)
		if err != nil {
			continue
		}
		c.name = bin
		if err := run(ctx, c); err != nil {
			log.Warn("desktop command failed", "action", action, "cmd", c.name, "error", err)
			lastErr = err
			continue
		}
		log.Debug("desktop command", "action", action, "cmd", c.name)
		return nil
	}
	if lastErr != nil {
		return lastErr
	}
	return fmt.Errorf("%s: %w", action, ErrUnsupported)
}
