// Package fsutil provides small filesystem helpers shared by the cache model
// and the pruning operators.
package fsutil

import (
	"os"
)

// DirExists reports whether path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// FileSize returns the size of the file at path, or 0 if it cannot be
// statted. Transiently disappearing files are treated as empty.
func FileSize(path string) uint64 {
	info, err := os.Lstat(path)
	if err != nil || !info.Mode().IsRegular() {
		return 0
	}
	return uint64(info.Size())
}
