package prune

import (
	"path/filepath"
	"sort"

	"github.com/glorpus-work/cratecache/internal/logger"
	"github.com/glorpus-work/cratecache/pkg/cache"
	"github.com/glorpus-work/cratecache/pkg/fsutil"
	"github.com/glorpus-work/cratecache/pkg/remove"
	version "github.com/hashicorp/go-version"
)

// KeepDuplicateCrates removes, per package, every archived crate version
// beyond the newest keep. keep == 0 deletes every archive. Archives whose
// file names do not follow the <name>-<version>.crate convention abort the
// operation before anything is deleted.
func KeepDuplicateCrates(archives *cache.RegistrySuperCache, keep uint, dryRun bool) (*Report, error) {
	report := &Report{DryRun: dryRun}

	type crateFile struct {
		path    string
		version string
	}

	// Plan per registry: group by package name, newest versions first.
	var doomed []string
	for _, sub := range archives.SubCaches() {
		groups := map[string][]crateFile{}
		for _, item := range sub.ItemsSorted() {
			name, ver, err := cache.SplitCrateFileName(filepath.Base(item))
			if err != nil {
				return nil, err
			}
			groups[name] = append(groups[name], crateFile{path: item, version: ver})
		}

		for _, crates := range groups {
			sort.Slice(crates, func(i, j int) bool {
				return versionLess(crates[j].version, crates[i].version)
			})
			for i := int(keep); i < len(crates); i++ {
				doomed = append(doomed, crates[i].path)
			}
		}
	}

	sort.Strings(doomed)
	for _, path := range doomed {
		report.add(path, fsutil.FileSize(path))
	}

	if dryRun {
		return report, nil
	}

	for _, entry := range report.Planned {
		logger.Debug("removing crate archive", logger.Fields{"path": entry.Path})
		if err := remove.RemoveFile(entry.Path); err != nil {
			report.Errs = append(report.Errs, err)
			continue
		}
		report.Freed += entry.Size
	}
	if len(report.Planned) > 0 {
		archives.Invalidate()
	}
	return report, nil
}

// versionLess orders semantic versions, falling back to lexicographic order
// for versions go-version cannot parse.
func versionLess(a, b string) bool {
	av, aErr := version.NewVersion(a)
	bv, bErr := version.NewVersion(b)
	if aErr != nil || bErr != nil {
		return a < b
	}
	return av.LessThan(bv)
}
