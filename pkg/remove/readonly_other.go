//go:build !windows

package remove

import "os"

// clearReadOnly is a no-op on POSIX systems: permission bits are never
// modified because a hardlinked file would leak the change outside the
// deletion subtree.
func clearReadOnly(_ *os.Root, _ string) bool {
	return false
}
