package cache

import (
	"github.com/glorpus-work/cratecache/pkg/cachedir"
)

// Inventory is the top-level composition holding one cache object per
// component. A single operator at a time takes mutable access to it.
type Inventory struct {
	Paths *cachedir.Paths

	Bin             *DirCache
	GitRepos        *DirCache
	GitCheckouts    *DirCache
	RegistryIndexes *RegistrySuperCache
	Archives        *RegistrySuperCache
	Sources         *RegistrySuperCache
}

// NewInventory builds the cache objects for every component below the
// resolved cargo home. No disk access happens until an aggregate is queried.
func NewInventory(paths *cachedir.Paths) *Inventory {
	return &Inventory{
		Paths:           paths,
		Bin:             NewBinaryCache(paths.BinDir),
		GitRepos:        NewGitRepoCache(paths.GitReposBare),
		GitCheckouts:    NewGitCheckoutCache(paths.GitCheckouts),
		RegistryIndexes: NewRegistryIndexCache(paths.RegistryIndex),
		Archives:        NewRegistryArchiveCache(paths.RegistryCache),
		Sources:         NewRegistrySourceCache(paths.RegistrySources),
	}
}

// ByKind returns the cache object for a component kind.
func (inv *Inventory) ByKind(kind ComponentKind) Cache {
	switch kind {
	case InstalledBinaries:
		return inv.Bin
	case RegistryIndex:
		return inv.RegistryIndexes
	case RegistryArchives:
		return inv.Archives
	case RegistrySources:
		return inv.Sources
	case MirrorRepos:
		return inv.GitRepos
	case MirrorCheckouts:
		return inv.GitCheckouts
	default:
		return nil
	}
}

// TotalSize sums the sizes of every component.
func (inv *Inventory) TotalSize() uint64 {
	var total uint64
	for _, kind := range AllComponents() {
		total += inv.ByKind(kind).TotalSize()
	}
	return total
}

// InvalidateAll drops the memoized aggregates of every component.
func (inv *Inventory) InvalidateAll() {
	for _, kind := range AllComponents() {
		inv.ByKind(kind).Invalidate()
	}
}
