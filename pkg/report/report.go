// Package report renders the read-only views over the cache inventory: the
// size summary, grouped per-package statistics and regex queries.
package report

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/glorpus-work/cratecache/pkg/cache"
	"github.com/glorpus-work/cratecache/pkg/errutils"
)

// Summary renders the default overview: total size plus a per-component
// breakdown with item counts.
func Summary(inv *cache.Inventory) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Cargo cache %q:\n\n", inv.Paths.CargoHome)
	fmt.Fprintf(&b, "%-42s %12s\n", "Total:", humanize.IBytes(inv.TotalSize()))
	line := func(indent int, label string, size uint64) {
		pad := strings.Repeat(" ", indent)
		fmt.Fprintf(&b, "%-42s %12s\n", pad+label, humanize.IBytes(size))
	}

	line(2, fmt.Sprintf("%d installed binaries:", inv.Bin.NumberOfItems()), inv.Bin.TotalSize())

	registrySize := inv.RegistryIndexes.TotalSize() + inv.Archives.TotalSize() + inv.Sources.TotalSize()
	line(2, "Registry:", registrySize)
	line(4, fmt.Sprintf("%d registry indexes:", len(inv.RegistryIndexes.SubCaches())), inv.RegistryIndexes.TotalSize())
	line(4, fmt.Sprintf("%d crate archives:", inv.Archives.NumberOfItems()), inv.Archives.TotalSize())
	line(4, fmt.Sprintf("%d crate source checkouts:", inv.Sources.NumberOfItems()), inv.Sources.TotalSize())

	gitSize := inv.GitRepos.TotalSize() + inv.GitCheckouts.TotalSize()
	line(2, "Git db:", gitSize)
	line(4, fmt.Sprintf("%d bare git repos:", inv.GitRepos.NumberOfItems()), inv.GitRepos.TotalSize())
	line(4, fmt.Sprintf("%d git repo checkouts:", inv.GitCheckouts.NumberOfItems()), inv.GitCheckouts.TotalSize())

	return b.String()
}

// SizeChange renders the one-line delta printed after a mutating operation.
func SizeChange(before, after uint64) string {
	if before == after {
		return fmt.Sprintf("Size did not change: %s", humanize.IBytes(before))
	}
	if after > before {
		return fmt.Sprintf("Size changed from %s to %s (+%s)",
			humanize.IBytes(before), humanize.IBytes(after), humanize.IBytes(after-before))
	}
	freed := before - after
	percent := float64(freed) / float64(before) * 100
	return fmt.Sprintf("Size changed from %s to %s (-%s, -%.2f%%)",
		humanize.IBytes(before), humanize.IBytes(after), humanize.IBytes(freed), percent)
}

// PackageStat aggregates the archived versions of one package.
type PackageStat struct {
	Name      string
	Count     int
	TotalSize uint64
}

// Average is the mean archive size across the package's versions.
func (p PackageStat) Average() uint64 {
	if p.Count == 0 {
		return 0
	}
	return p.TotalSize / uint64(p.Count)
}

// TopByPackage groups a component's items by package name and returns the n
// largest groups by total size. n <= 0 returns all groups. The kind selects
// how an item maps onto its package name.
func TopByPackage(component cache.Cache, kind cache.ComponentKind, n int) ([]PackageStat, error) {
	groups := map[string]*PackageStat{}
	for _, item := range component.ItemsSorted() {
		name, err := packageName(kind, item)
		if err != nil {
			return nil, err
		}
		stat, ok := groups[name]
		if !ok {
			stat = &PackageStat{Name: name}
			groups[name] = stat
		}
		stat.Count++
		stat.TotalSize += cache.DirSize(item)
	}

	stats := make([]PackageStat, 0, len(groups))
	for _, stat := range groups {
		stats = append(stats, *stat)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].TotalSize != stats[j].TotalSize {
			return stats[i].TotalSize > stats[j].TotalSize
		}
		return stats[i].Name < stats[j].Name
	})

	if n > 0 && n < len(stats) {
		stats = stats[:n]
	}
	return stats, nil
}

// packageName maps one cache item onto the package it belongs to. Binaries
// group by file name, mirrors and checkouts by repo name with the hash
// stripped, registry items by the crate name in front of the version.
func packageName(kind cache.ComponentKind, item string) (string, error) {
	switch kind {
	case cache.InstalledBinaries:
		return filepath.Base(item), nil
	case cache.RegistryArchives:
		name, _, err := cache.SplitCrateFileName(filepath.Base(item))
		return name, err
	case cache.RegistrySources:
		name, _, err := cache.SplitNameVersion(filepath.Base(item))
		return name, err
	case cache.MirrorRepos:
		return cache.RepoName(filepath.Base(item)), nil
	case cache.MirrorCheckouts:
		// Checkout items are <repo>-<hash>/<rev>.
		return cache.RepoName(filepath.Base(filepath.Dir(item))), nil
	default:
		return "", errutils.Wrapf(errutils.ErrMalformedPackageName, "no package grouping for %s", kind)
	}
}

// TopTable is the grouped statistics of one cache component.
type TopTable struct {
	Kind  cache.ComponentKind
	Stats []PackageStat
}

// Top builds one grouped size table per component, registry index excluded:
// its contents are crate metadata, not per-package items.
func Top(inv *cache.Inventory, n int) ([]TopTable, error) {
	kinds := []cache.ComponentKind{
		cache.InstalledBinaries,
		cache.RegistryArchives,
		cache.RegistrySources,
		cache.MirrorRepos,
		cache.MirrorCheckouts,
	}

	tables := make([]TopTable, 0, len(kinds))
	for _, kind := range kinds {
		stats, err := TopByPackage(inv.ByKind(kind), kind, n)
		if err != nil {
			return nil, err
		}
		tables = append(tables, TopTable{Kind: kind, Stats: stats})
	}
	return tables, nil
}

// RenderTop renders the grouped statistics as a table.
func RenderTop(stats []PackageStat) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-30s %8s %12s %12s\n", "NAME", "COUNT", "AVERAGE", "TOTAL")
	for _, stat := range stats {
		fmt.Fprintf(&b, "%-30s %8d %12s %12s\n",
			stat.Name, stat.Count, humanize.IBytes(stat.Average()), humanize.IBytes(stat.TotalSize))
	}
	return b.String()
}

// RenderTopTables renders one titled table per component, empty ones
// included so the reader sees every category was considered.
func RenderTopTables(tables []TopTable) string {
	var b strings.Builder
	for i, table := range tables {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Top items: %s\n", table.Kind)
		b.WriteString(RenderTop(table.Stats))
	}
	return b.String()
}

// QueryResult is one cache item matched by a query.
type QueryResult struct {
	Path string
	Size uint64
}

// Query matches the item names of every component against the pattern and
// returns the matches. With sortBySize set, results are ordered largest
// first; otherwise by path.
func Query(inv *cache.Inventory, pattern string, sortBySize bool) ([]QueryResult, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errutils.Wrapf(errutils.ErrInvalidQueryRegex, "%q", pattern)
	}

	var results []QueryResult
	for _, kind := range cache.AllComponents() {
		for _, item := range inv.ByKind(kind).ItemsSorted() {
			if !re.MatchString(filepath.Base(item)) {
				continue
			}
			results = append(results, QueryResult{Path: item, Size: cache.DirSize(item)})
		}
	}

	if sortBySize {
		sort.Slice(results, func(i, j int) bool {
			if results[i].Size != results[j].Size {
				return results[i].Size > results[j].Size
			}
			return results[i].Path < results[j].Path
		})
	} else {
		sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	}
	return results, nil
}

// RenderQuery renders query results, one item per line. With humanReadable
// set, sizes use binary units instead of raw byte counts.
func RenderQuery(results []QueryResult, humanReadable bool) string {
	var b strings.Builder
	for _, result := range results {
		if humanReadable {
			fmt.Fprintf(&b, "%12s %s\n", humanize.IBytes(result.Size), result.Path)
		} else {
			fmt.Fprintf(&b, "%12d %s\n", result.Size, result.Path)
		}
	}
	return b.String()
}
