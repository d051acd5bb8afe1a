//go:build !(linux || darwin || freebsd)

package scanner

import "io/fs"

// IsMountPoint always reports false on this platform.
func IsMountPoint(string) bool {
	return false
}

var deviceOf = func(string, fs.FileInfo) (uint64, bool) {
	return 0, false
}

func statfsEstimate(string) uint64 {
	return 0
}
