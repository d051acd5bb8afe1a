//go:build !(linux || darwin || freebsd)

package logging

import "os"

func lockFile(*os.File) error { return nil }

func unlockFile(*os.File) {}
