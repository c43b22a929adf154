package fsutil

import (
	"os"
	"syscall"
	"time"
)

// Atime returns the access time recorded in info.
func Atime(info os.FileInfo) time.Time {
	if data, ok := info.Sys().(*syscall.Win32FileAttributeData); ok {
		return time.Unix(0, data.LastAccessTime.Nanoseconds())
	}
	return info.ModTime()
}
