// Package remove deletes cache subtrees. All operations inside a subtree are
// "at" style against a held directory handle (os.Root), so replacing an
// interior path component with a symlink cannot divert a delete outside the
// subtree. Deletion is depth-first: a directory is only unlinked after all of
// its entries have been removed.
package remove

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/glorpus-work/cratecache/pkg/errutils"
)

// RemoveAll deletes the directory at path and all of its descendants. A
// missing path is not an error; removing the same path twice succeeds. The
// path itself must be a directory, not a symlink.
//
// On failure, the returned error names the first unremovable entry with its
// full traversal path. Partial progress is possible; callers must invalidate
// the affected caches afterwards.
func RemoveAll(path string) error {
	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return errutils.Wrapf(errutils.ErrRemoveFailed, "%s: %v", path, err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return errutils.Wrapf(errutils.ErrRemoveFailed, "%s is a symlink", path)
	}
	if !info.IsDir() {
		return errutils.Wrapf(errutils.ErrRemoveFailed, "%s is not a directory", path)
	}

	root, err := os.OpenRoot(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return errutils.Wrapf(errutils.ErrRemoveFailed, "%s: %v", path, err)
	}
	err = removeContents(root, path)
	closeErr := root.Close()
	if err != nil {
		return err
	}
	if closeErr != nil {
		return errutils.Wrapf(errutils.ErrRemoveFailed, "%s: %v", path, closeErr)
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errutils.Wrapf(errutils.ErrRemoveFailed, "%s: %v", path, err)
	}
	return nil
}

// RemoveFile unlinks a single non-directory entry. A missing path is not an
// error.
func RemoveFile(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errutils.Wrapf(errutils.ErrRemoveFailed, "%s: %v", path, err)
	}
	return nil
}

// RemoveItem deletes an item regardless of whether it is a file or a
// directory subtree.
func RemoveItem(path string) error {
	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return errutils.Wrapf(errutils.ErrRemoveFailed, "%s: %v", path, err)
	}
	if info.IsDir() {
		return RemoveAll(path)
	}
	return RemoveFile(path)
}

// removeContents empties the directory behind root. debugPath carries the
// traversal breadcrumbs for diagnostics.
func removeContents(root *os.Root, debugPath string) error {
	// Separate handle for iteration; deletes go through root. Sharing one
	// kernel directory cursor between readdir and unlink-at races.
	dir, err := root.Open(".")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return errutils.Wrapf(errutils.ErrRemoveFailed, "%s: %v", debugPath, err)
	}
	entries, err := dir.ReadDir(-1)
	_ = dir.Close()
	if err != nil && len(entries) == 0 {
		return errutils.Wrapf(errutils.ErrRemoveFailed, "%s: %v", debugPath, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		entryPath := filepath.Join(debugPath, name)

		if entry.IsDir() {
			sub, err := root.OpenRoot(name)
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					continue
				}
				// The entry may have been swapped for a symlink since
				// ReadDir; unlinking it directly is safe either way.
				if removeErr := unlink(root, name); removeErr == nil {
					continue
				}
				return errutils.Wrapf(errutils.ErrRemoveFailed, "%s: %v", entryPath, err)
			}
			err = removeContents(sub, entryPath)
			_ = sub.Close()
			if err != nil {
				return err
			}
		}

		if err := unlink(root, name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return errutils.Wrapf(errutils.ErrRemoveFailed, "%s: %v", entryPath, err)
		}
	}
	return nil
}

// unlink removes a single name below root, clearing a platform delete-blocking
// attribute first where one exists.
func unlink(root *os.Root, name string) error {
	err := root.Remove(name)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if clearReadOnly(root, name) {
		return root.Remove(name)
	}
	return err
}
