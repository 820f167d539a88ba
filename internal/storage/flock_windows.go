//go:build windows

package storage

import "os"

// Windows builds rely on the in-process mutex only.
func flockExclusive(_ *os.File) error { return nil }

func flockUnlock(_ *os.File) error { return nil }
