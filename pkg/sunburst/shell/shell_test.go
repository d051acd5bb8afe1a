package shell

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDesktop installs the given tools and records every invocation.
type fakeDesktop struct {
	installed map[string]bool
	failing   map[string]bool
	calls     []command
}

func stub(t *testing.T, system string, tools ...string) *fakeDesktop {
	t.Helper()
	f := &fakeDesktop{installed: map[string]bool{}, failing: map[string]bool{}}
	for _, tool := range tools {
		f.installed[tool] = true
	}

	oldGOOS, oldLook, oldRun := goos, lookPath, run
	t.Cleanup(func() { goos, lookPath, run = oldGOOS, oldLook, oldRun })

	goos = system
	lookPath = func(name string) (string, error) {
		if f.installed[name] {
			return "/usr/bin/" + name, nil
		}
		return "", exec.ErrNotFound
	}
	run = func(_ context.Context, c command) error {
		f.calls = append(f.calls, c)
		if f.failing[filepath.Base(c.name)] {
			return errors.New("exit status 1")
		}
		return nil
	}
	return f
}

func tempFile(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "big.iso")
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	return p
}

func TestOpen(t *testing.T) {
	path := tempFile(t)

	f := stub(t, "darwin", "open")
	require.NoError(t, Open(context.Background(), path))
	require.Len(t, f.calls, 1)
	assert.Equal(t, "/usr/bin/open", f.calls[0].name)
	assert.Equal(t, []string{path}, f.calls[0].args)

	f = stub(t, "linux", "gio")
	require.NoError(t, Open(context.Background(), path))
	require.Len(t, f.calls, 1)
	assert.Equal(t, []string{"open", path}, f.calls[0].args)
}

func TestOpen_MissingPath(t *testing.T) {
	f := stub(t, "linux", "xdg-open")
	err := Open(context.Background(), filepath.Join(t.TempDir(), "gone"))
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Empty(t, f.calls)
}

func TestReveal_FallsBackToParent(t *testing.T) {
	path := tempFile(t)
	f := stub(t, "linux", "dbus-send", "xdg-open")
	f.failing["dbus-send"] = true

	require.NoError(t, Reveal(context.Background(), path))
	require.Len(t, f.calls, 2)
	assert.Contains(t, f.calls[0].args, "array:string:file://"+path)
	assert.Equal(t, []string{filepath.Dir(path)}, f.calls[1].args)
}

func TestReveal_Darwin(t *testing.T) {
	path := tempFile(t)
	f := stub(t, "darwin", "open")

	require.NoError(t, Reveal(context.Background(), path))
	assert.Equal(t, []string{"-R", path}, f.calls[0].args)
}

func TestMoveToTrash(t *testing.T) {
	path := tempFile(t)
	f := stub(t, "linux", "gio", "trash-put")
	f.failing["gio"] = true

	require.NoError(t, MoveToTrash(context.Background(), path))
	require.Len(t, f.calls, 2)
	assert.Equal(t, "/usr/bin/trash-put", f.calls[1].name)
}

func TestMoveToTrash_Darwin(t *testing.T) {
	path := tempFile(t)
	f := stub(t, "darwin", "osascript")

	require.NoError(t, MoveToTrash(context.Background(), path))
	require.Len(t, f.calls, 1)
	assert.Contains(t, f.calls[0].args[1], `delete POSIX file "`+path+`"`)
}

func TestMoveToTrash_NoTrashKeepsFile(t *testing.T) {
	path := tempFile(t)
	stub(t, "linux")

	err := MoveToTrash(context.Background(), path)
	assert.ErrorIs(t, err, ErrNoTrash)

	_, statErr := os.Stat(path)
	assert.NoError(t, statErr, "entry must not be deleted without a trash")
}

func TestMoveToTrash_AllToolsFail(t *testing.T) {
	path := tempFile(t)
	f := stub(t, "linux", "gio")
	f.failing["gio"] = true

	err := MoveToTrash(context.Background(), path)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoTrash)
	assert.Contains(t, err.Error(), "exit status 1")
}

func TestCopyPath(t *testing.T) {
	f := stub(t, "linux", "xclip")
	require.NoError(t, CopyPath(context.Background(), "/data/big.iso"))
	require.Len(t, f.calls, 1)
	assert.Equal(t, "/data/big.iso", f.calls[0].stdin)
	assert.Equal(t, []string{"-selection", "clipboard"}, f.calls[0].args)

	stub(t, "linux")
	assert.ErrorIs(t, CopyPath(context.Background(), "/x"), ErrUnsupported)
}
