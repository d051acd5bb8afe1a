package scanner

import "io/fs"

// SetDeviceOf replaces the device lookup and returns a func restoring it.
func SetDeviceOf(f func(path string, info fs.FileInfo) (uint64, bool)) (restore func()) {
	prev := deviceOf
	deviceOf = f
	return func() { deviceOf = prev }
}

// CancelRequested reports whether the cancel flag is set.
func (s *Scanner) CancelRequested() bool {
	return s.cancelled.Load()
}

var MatchExclude = matchExclude
