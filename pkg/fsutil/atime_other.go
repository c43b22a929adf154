//go:build !linux && !darwin && !windows

package fsutil

import (
	"os"
	"time"
)

// Atime returns the access time recorded in info. Platforms without a known
// stat layout fall back to the modification time.
func Atime(info os.FileInfo) time.Time {
	return info.ModTime()
}
