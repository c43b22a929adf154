// Package cache implements the lazy, invalidatable inventory of the cargo
// cache: one cache object per component, per-registry sub-caches, and the
// aggregating super-caches for the registry-typed components.
//
// Every aggregate (total size, file list, item list, item count) is computed
// on first use and memoized. After any on-disk mutation the owning operator
// must call Invalidate, or KnownToBeEmpty when it removed a whole component.
package cache

// ComponentKind identifies one of the six known cache components.
type ComponentKind int

const (
	InstalledBinaries ComponentKind = iota
	RegistryIndex
	RegistryArchives
	RegistrySources
	MirrorRepos
	MirrorCheckouts
)

// String returns the human-readable component name used in reports.
func (k ComponentKind) String() string {
	switch k {
	case InstalledBinaries:
		return "installed binaries"
	case RegistryIndex:
		return "registry index"
	case RegistryArchives:
		return "crate archives"
	case RegistrySources:
		return "crate sources"
	case MirrorRepos:
		return "git db"
	case MirrorCheckouts:
		return "git checkouts"
	default:
		return "unknown"
	}
}

// AllComponents lists every component kind in report order.
func AllComponents() []ComponentKind {
	return []ComponentKind{
		InstalledBinaries,
		RegistryIndex,
		RegistryArchives,
		RegistrySources,
		MirrorRepos,
		MirrorCheckouts,
	}
}
