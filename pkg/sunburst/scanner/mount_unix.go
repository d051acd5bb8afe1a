//go:build linux || darwin || freebsd

package scanner

import (
	"io/fs"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"
)

// IsMountPoint reports whether path is the root of a mounted filesystem:
// its device differs from its parent's, or it is its own parent (/).
// Errors are reported as false.
func IsMountPoint(path string) bool {
	var st, parent unix.Stat_t
	if err := unix.Lstat(path, &st); err != nil {
		return false
	}
	if st.Mode&unix.S_IFMT != unix.S_IFDIR {
		return false
	}
	// Joined without cleaning so the kernel resolves ".." to the physical
	// parent even when path runs through a symlink.
	if err := unix.Lstat(strings.TrimSuffix(path, "/")+"/..", &parent); err != nil {
		return false
	}
	if st.Dev != parent.Dev {
		return true
	}
	return st.Ino == parent.Ino
}

// deviceOf returns the device holding the entry described by info. It is a
// variable so tests can simulate mount boundaries.
var deviceOf = func(_ string, info fs.FileInfo) (uint64, bool) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, false
	}
	return uint64(st.Dev), true
}

// statfsEstimate returns the number of inodes in use on the volume holding
// path, or 0 if unknown.
func statfsEstimate(path string) uint64 {
	var sfs unix.Statfs_t
	if err := unix.Statfs(path, &sfs); err != nil {
		return 0
	}
	if uint64(sfs.Files) < uint64(sfs.Ffree) {
		return 0
	}
	return uint64(sfs.Files) - uint64(sfs.Ffree)
}
