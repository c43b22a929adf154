package fsutil

import (
	"os"
	"syscall"
	"time"
)

// Atime returns the access time recorded in info.
func Atime(info os.FileInfo) time.Time {
	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(stat.Atimespec.Sec, stat.Atimespec.Nsec)
	}
	return info.ModTime()
}
