package prune

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/cratecache/internal/logger"
	"github.com/glorpus-work/cratecache/pkg/cache"
	"github.com/glorpus-work/cratecache/pkg/manifest"
	"github.com/glorpus-work/cratecache/pkg/remove"
)

// CleanUnref removes everything from the cache that the given project does
// not depend on. Checkouts and extracted sources are removed wholesale (both
// are regenerable from mirrors and archives); mirrors and archives are
// retained only when the dependency closure references them.
//
// manifestPath may be empty, in which case the manifest is discovered by
// walking upward from the working directory.
func CleanUnref(ctx context.Context, inv *cache.Inventory, resolver manifest.Resolver, manifestPath string, dryRun bool) (*Report, error) {
	if manifestPath == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		if manifestPath, err = manifest.Find(cwd); err != nil {
			return nil, err
		}
	}

	manifests, err := resolver.DependencyManifests(ctx, manifestPath)
	if err != nil {
		return nil, err
	}

	referencedRepos := map[string]bool{}
	referencedArchives := map[string]bool{}
	for _, depManifest := range manifests {
		if !strings.HasPrefix(depManifest, inv.Paths.CargoHome+string(filepath.Separator)) {
			continue // a path or workspace dependency outside the cache
		}
		switch {
		case inv.GitCheckouts.Contains(depManifest):
			rel, _ := filepath.Rel(inv.GitCheckouts.Path(), depManifest)
			repoName := firstSegment(rel)
			referencedRepos[filepath.Join(inv.GitRepos.Path(), repoName)] = true
		case strings.HasPrefix(depManifest, inv.Sources.Path()+string(filepath.Separator)):
			rel, _ := filepath.Rel(inv.Sources.Path(), depManifest)
			segments := strings.Split(rel, string(filepath.Separator))
			if len(segments) < 2 {
				return nil, fmt.Errorf("dependency inside cargo home matches no known pattern: %s", depManifest)
			}
			registryID, stem := segments[0], segments[1]
			referencedArchives[filepath.Join(inv.Archives.Path(), registryID, stem+".crate")] = true
		default:
			// Anything else below the cargo home is a bug worth surfacing,
			// not something to guess about.
			return nil, fmt.Errorf("dependency inside cargo home matches no known pattern: %s", depManifest)
		}
	}

	report := &Report{DryRun: dryRun}

	// Checkouts and sources go entirely; they are regenerable.
	report.add(inv.GitCheckouts.Path(), inv.GitCheckouts.TotalSize())
	report.add(inv.Sources.Path(), inv.Sources.TotalSize())

	var unrefRepos, unrefArchives []string
	for _, repo := range inv.GitRepos.ItemsSorted() {
		if !referencedRepos[repo] {
			unrefRepos = append(unrefRepos, repo)
			report.add(repo, cache.DirSize(repo))
		}
	}
	for _, archive := range inv.Archives.ItemsSorted() {
		if !referencedArchives[archive] {
			unrefArchives = append(unrefArchives, archive)
			report.add(archive, cache.DirSize(archive))
		}
	}

	if dryRun {
		return report, nil
	}

	logger.Debug("removing regenerable components", logger.Fields{
		"checkouts": inv.GitCheckouts.Path(),
		"sources":   inv.Sources.Path(),
	})
	if err := remove.RemoveAll(inv.GitCheckouts.Path()); err != nil {
		report.Errs = append(report.Errs, err)
		inv.GitCheckouts.Invalidate()
	} else {
		report.Freed += report.Planned[0].Size
		inv.GitCheckouts.KnownToBeEmpty()
	}
	if err := remove.RemoveAll(inv.Sources.Path()); err != nil {
		report.Errs = append(report.Errs, err)
		inv.Sources.Invalidate()
	} else {
		report.Freed += report.Planned[1].Size
		inv.Sources.KnownToBeEmpty()
	}

	for _, repo := range unrefRepos {
		if err := remove.RemoveAll(repo); err != nil {
			report.Errs = append(report.Errs, err)
			continue
		}
		report.Freed += cacheItemSize(report, repo)
	}
	if len(unrefRepos) > 0 {
		inv.GitRepos.Invalidate()
	}

	for _, archive := range unrefArchives {
		if err := remove.RemoveFile(archive); err != nil {
			report.Errs = append(report.Errs, err)
			continue
		}
		report.Freed += cacheItemSize(report, archive)
	}
	if len(unrefArchives) > 0 {
		inv.Archives.Invalidate()
	}

	return report, nil
}

// cacheItemSize looks a planned entry's size back up by path.
func cacheItemSize(report *Report, path string) uint64 {
	for _, entry := range report.Planned {
		if entry.Path == path {
			return entry.Size
		}
	}
	return 0
}

// firstSegment returns the leading path component of a relative path.
func firstSegment(rel string) string {
	if idx := strings.IndexRune(rel, filepath.Separator); idx >= 0 {
		return rel[:idx]
	}
	return rel
}
