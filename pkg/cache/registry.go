package cache

import (
	"path/filepath"
	"strings"

	"github.com/glorpus-work/cratecache/pkg/fsutil"
)

// RegistrySubCache is a component cache scoped to a single registry below a
// registry-typed component root.
type RegistrySubCache struct {
	DirCache
	name string
}

// Name returns the registry name with the trailing hash segment stripped.
func (c *RegistrySubCache) Name() string { return c.name }

// RegistrySuperCache aggregates the per-registry sub-caches of one
// registry-typed component. Registries are discovered by scanning immediate
// subdirectories whose names contain a '-' (the name-hash pattern); other
// directory names are not absorbed silently.
type RegistrySuperCache struct {
	path   string
	mode   itemMode
	subs   []*RegistrySubCache
	subsOK bool
	empty  bool
}

// NewRegistryIndexCache aggregates registry index metadata; items follow the
// file set because the index has no finer semantic unit.
func NewRegistryIndexCache(path string) *RegistrySuperCache {
	return &RegistrySuperCache{path: path, mode: itemsAreFiles}
}

// NewRegistryArchiveCache aggregates the .crate archive files of every
// registry.
func NewRegistryArchiveCache(path string) *RegistrySuperCache {
	return &RegistrySuperCache{path: path, mode: itemsAreEntries}
}

// NewRegistrySourceCache aggregates the extracted source directories of every
// registry.
func NewRegistrySourceCache(path string) *RegistrySuperCache {
	return &RegistrySuperCache{path: path, mode: itemsAreEntries}
}

// Path returns the component root.
func (c *RegistrySuperCache) Path() string { return c.path }

// SubCaches discovers and returns the per-registry sub-caches.
func (c *RegistrySuperCache) SubCaches() []*RegistrySubCache {
	if c.subsOK {
		return c.subs
	}
	c.subs = nil
	if !c.empty && fsutil.DirExists(c.path) {
		for _, dir := range subDirs(c.path) {
			base := filepath.Base(dir)
			if !strings.Contains(base, "-") {
				continue
			}
			c.subs = append(c.subs, &RegistrySubCache{
				DirCache: DirCache{path: dir, mode: c.mode},
				name:     RegistryName(base),
			})
		}
	}
	c.subsOK = true
	return c.subs
}

// TotalSize sums the sizes over all sub-caches.
func (c *RegistrySuperCache) TotalSize() uint64 {
	var total uint64
	for _, sub := range c.SubCaches() {
		total += sub.TotalSize()
	}
	return total
}

// Files concatenates the file lists of all sub-caches.
func (c *RegistrySuperCache) Files() []string {
	var files []string
	for _, sub := range c.SubCaches() {
		files = append(files, sub.Files()...)
	}
	return files
}

// FilesSorted returns Files in lexicographic order.
func (c *RegistrySuperCache) FilesSorted() []string {
	return sortedCopy(c.Files())
}

// Items concatenates the item lists of all sub-caches.
func (c *RegistrySuperCache) Items() []string {
	var items []string
	for _, sub := range c.SubCaches() {
		items = append(items, sub.Items()...)
	}
	return items
}

// ItemsSorted returns Items in lexicographic order.
func (c *RegistrySuperCache) ItemsSorted() []string {
	return sortedCopy(c.Items())
}

// NumberOfItems sums the item counts over all sub-caches.
func (c *RegistrySuperCache) NumberOfItems() int {
	var count int
	for _, sub := range c.SubCaches() {
		count += sub.NumberOfItems()
	}
	return count
}

// Invalidate invalidates every sub-cache and re-discovers registries on the
// next query; a pruning operator may have removed whole registries.
func (c *RegistrySuperCache) Invalidate() {
	for _, sub := range c.subs {
		sub.Invalidate()
	}
	c.subs = nil
	c.subsOK = false
	c.empty = false
}

// KnownToBeEmpty records the empty state for the whole component.
func (c *RegistrySuperCache) KnownToBeEmpty() {
	c.subs = nil
	c.subsOK = true
	c.empty = true
}
