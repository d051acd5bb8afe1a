package scanner

import (
	"path/filepath"
	"strings"
)

// excluded reports whether path matches any of patterns.
func excluded(path string, patterns []string) bool {
	for _, p := range patterns {
		if matchExclude(path, p) {
			return true
		}
	}
	return false
}

func matchExclude(path, pattern string) bool {
	if pattern == "" {
		return false
	}
	if path == pattern || strings.HasPrefix(path, strings.TrimSuffix(pattern, string(filepath.Separator))+string(filepath.Separator)) {
		return true
	}
	if ok, err := filepath.Match(pattern, filepath.Base(path)); err == nil && ok {
		return true
	}
	ok, err := filepath.Match(pattern, path)
	return err == nil && ok
}
