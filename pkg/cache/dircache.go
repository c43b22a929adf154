package cache

import (
	"path/filepath"

	"github.com/glorpus-work/cratecache/pkg/fsutil"
)

// Cache is the aggregate interface shared by component caches, registry
// sub-caches, and registry super-caches.
type Cache interface {
	// Path returns the component root. The path may not exist.
	Path() string
	// TotalSize sums the sizes of all regular files under the root.
	TotalSize() uint64
	// Files returns every non-directory path under the root.
	Files() []string
	// FilesSorted returns Files in lexicographic order.
	FilesSorted() []string
	// Items returns the component-specific semantic units.
	Items() []string
	// ItemsSorted returns Items in lexicographic order.
	ItemsSorted() []string
	// NumberOfItems returns len(Items) without forcing a file walk.
	NumberOfItems() int
	// Invalidate clears all memoized aggregates.
	Invalidate()
	// KnownToBeEmpty sets the empty state without touching disk. Operators
	// call it right after removing the whole component.
	KnownToBeEmpty()
}

// itemMode selects how a DirCache enumerates its semantic items.
type itemMode int

const (
	// itemsAreFiles: every file is an item (binaries, registry index).
	itemsAreFiles itemMode = iota
	// itemsAreEntries: immediate entries of the root are items (crate
	// archives, extracted sources inside one registry).
	itemsAreEntries
	// itemsAreSubDirs: immediate subdirectories are items (bare mirrors).
	itemsAreSubDirs
	// itemsAreSubDirsDepth2: directories two levels below the root are items
	// (checkouts: <repo-name>/<commit-short>).
	itemsAreSubDirsDepth2
)

// DirCache memoizes the aggregates of a single component directory.
type DirCache struct {
	path string
	mode itemMode

	size     *uint64
	files    []string
	filesOK  bool
	items    []string
	itemsOK  bool
	numItems *int
}

// NewBinaryCache caches the installed-binaries component; items are the
// binaries themselves.
func NewBinaryCache(path string) *DirCache {
	return &DirCache{path: path, mode: itemsAreFiles}
}

// NewGitRepoCache caches the bare-mirrors component; items are the mirror
// directories.
func NewGitRepoCache(path string) *DirCache {
	return &DirCache{path: path, mode: itemsAreSubDirs}
}

// NewGitCheckoutCache caches the checkouts component; items are the checkout
// directories at depth 2 below the root.
func NewGitCheckoutCache(path string) *DirCache {
	return &DirCache{path: path, mode: itemsAreSubDirsDepth2}
}

// Path returns the component root.
func (c *DirCache) Path() string { return c.path }

// TotalSize sums the sizes of all regular files under the component root,
// computing and memoizing on first use.
func (c *DirCache) TotalSize() uint64 {
	if c.size != nil {
		return *c.size
	}
	size := sumFileSizes(c.Files())
	c.size = &size
	return size
}

// Files returns the recursive file list of the component.
func (c *DirCache) Files() []string {
	if c.filesOK {
		return c.files
	}
	if !fsutil.DirExists(c.path) {
		c.KnownToBeEmpty()
		return c.files
	}
	c.files = walkFiles(c.path)
	c.filesOK = true
	return c.files
}

// FilesSorted returns Files in lexicographic order.
func (c *DirCache) FilesSorted() []string {
	return sortedCopy(c.Files())
}

// Items returns the semantic items of the component.
func (c *DirCache) Items() []string {
	if c.itemsOK {
		return c.items
	}
	if !fsutil.DirExists(c.path) {
		c.KnownToBeEmpty()
		return c.items
	}

	switch c.mode {
	case itemsAreFiles:
		c.items = c.Files()
	case itemsAreEntries:
		c.items = dirEntries(c.path)
	case itemsAreSubDirs:
		c.items = subDirs(c.path)
	case itemsAreSubDirsDepth2:
		var items []string
		for _, repo := range subDirs(c.path) {
			items = append(items, subDirs(repo)...)
		}
		c.items = items
	}
	c.itemsOK = true
	return c.items
}

// ItemsSorted returns Items in lexicographic order.
func (c *DirCache) ItemsSorted() []string {
	return sortedCopy(c.Items())
}

// NumberOfItems returns the number of semantic items.
func (c *DirCache) NumberOfItems() int {
	if c.numItems != nil {
		return *c.numItems
	}
	count := len(c.Items())
	c.numItems = &count
	return count
}

// Invalidate drops every memoized aggregate; the next query recomputes from
// disk.
func (c *DirCache) Invalidate() {
	c.size = nil
	c.files = nil
	c.filesOK = false
	c.items = nil
	c.itemsOK = false
	c.numItems = nil
}

// KnownToBeEmpty records the empty state without touching disk.
func (c *DirCache) KnownToBeEmpty() {
	zero := uint64(0)
	zeroCount := 0
	c.size = &zero
	c.files = []string{}
	c.filesOK = true
	c.items = []string{}
	c.itemsOK = true
	c.numItems = &zeroCount
}

// Contains reports whether path lies below the component root.
func (c *DirCache) Contains(path string) bool {
	rel, err := filepath.Rel(c.path, path)
	if err != nil {
		return false
	}
	return rel != "." && filepath.IsLocal(rel)
}
