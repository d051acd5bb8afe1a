//go:build linux || darwin || freebsd

package scanner_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/jamesainslie/sunburst/pkg/sunburst/scanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMountPoint(t *testing.T) {
	sub := filepath.Join(t.TempDir(), "plain")
	require.NoError(t, os.Mkdir(sub, 0o755))
	file := filepath.Join(sub, "f")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	assert.True(t, scanner.IsMountPoint("/"))
	assert.False(t, scanner.IsMountPoint(sub))
	assert.False(t, scanner.IsMountPoint(file))
	assert.False(t, scanner.IsMountPoint(filepath.Join(sub, "missing")))
}

func TestIsMountPoint_SeparateFilesystem(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("procfs is linux only")
	}
	if _, err := os.Stat("/proc/self"); err != nil {
		t.Skip("procfs not mounted")
	}
	assert.True(t, scanner.IsMountPoint("/proc"))
	assert.False(t, scanner.IsMountPoint("/proc/self/fd"))
}

func TestIsMountPoint_ThroughSymlink(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("procfs is linux only")
	}
	if _, err := os.Stat("/proc/self/fd"); err != nil {
		t.Skip("procfs not mounted")
	}
	link := filepath.Join(t.TempDir(), "link")
	require.NoError(t, os.Symlink("/proc/self", link))

	assert.False(t, scanner.IsMountPoint("/proc/self/fd"))
	assert.False(t, scanner.IsMountPoint(filepath.Join(link, "fd")))
	assert.False(t, scanner.IsMountPoint(filepath.Join(link, "fd")+"/"))
}
