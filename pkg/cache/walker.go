package cache

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync/atomic"
	"time"

	"github.com/glorpus-work/cratecache/pkg/fsutil"
	"golang.org/x/sync/errgroup"
)

// walkFiles enumerates every non-directory entry below root. Entries whose
// metadata disappears mid-walk are skipped: a concurrently running build may
// delete temporaries at any time. Symlinks are listed, not followed.
func walkFiles(root string) []string {
	var files []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	return files
}

// sumFileSizes stats every file in parallel and sums the sizes of the regular
// ones. Disappeared files count as zero.
func sumFileSizes(files []string) uint64 {
	if len(files) == 0 {
		return 0
	}

	var total atomic.Uint64
	group := errgroup.Group{}
	group.SetLimit(runtime.NumCPU())

	const chunkSize = 64
	for start := 0; start < len(files); start += chunkSize {
		chunk := files[start:min(start+chunkSize, len(files))]
		group.Go(func() error {
			var sum uint64
			for _, file := range chunk {
				sum += fsutil.FileSize(file)
			}
			total.Add(sum)
			return nil
		})
	}
	_ = group.Wait()
	return total.Load()
}

// subDirs lists the immediate subdirectories of root, tolerating a missing
// root.
func subDirs(root string) []string {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil
	}
	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, filepath.Join(root, entry.Name()))
		}
	}
	return dirs
}

// dirEntries lists the immediate entries of root (files and directories).
func dirEntries(root string) []string {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil
	}
	var paths []string
	for _, entry := range entries {
		paths = append(paths, filepath.Join(root, entry.Name()))
	}
	return paths
}

// AccessTime returns the access time of an item. For a directory item this is
// the maximum access time over all files it contains; an empty directory
// falls back to the access time of the directory itself.
func AccessTime(item string) time.Time {
	info, err := os.Lstat(item)
	if err != nil {
		return time.Time{}
	}
	if !info.IsDir() {
		return fsutil.Atime(info)
	}

	newest := fsutil.Atime(info)
	for _, file := range walkFiles(item) {
		fileInfo, err := os.Lstat(file)
		if err != nil {
			continue
		}
		if atime := fsutil.Atime(fileInfo); atime.After(newest) {
			newest = atime
		}
	}
	return newest
}

// DirSize returns the cumulative size of all regular files below item, or the
// file's own size for a file item.
func DirSize(item string) uint64 {
	info, err := os.Lstat(item)
	if err != nil {
		return 0
	}
	if !info.IsDir() {
		if info.Mode().IsRegular() {
			return uint64(info.Size())
		}
		return 0
	}
	return sumFileSizes(walkFiles(item))
}

func sortedCopy(paths []string) []string {
	out := make([]string, len(paths))
	copy(out, paths)
	sort.Strings(out)
	return out
}
