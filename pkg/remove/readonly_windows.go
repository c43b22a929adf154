package remove

import "os"

// clearReadOnly drops the FILE_ATTRIBUTE_READONLY flag, which blocks deletion
// on Windows. Go maps the attribute onto the owner write bit.
func clearReadOnly(root *os.Root, name string) bool {
	return root.Chmod(name, 0o666) == nil
}
