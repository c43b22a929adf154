// Package verify checks extracted crate sources against the archives they
// were unpacked from, reporting files that were altered, removed or added
// after extraction.
package verify

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/glorpus-work/cratecache/internal/logger"
	"github.com/glorpus-work/cratecache/pkg/cachedir"
	"github.com/mholt/archives"
	"golang.org/x/sync/errgroup"
)

// cargoOKMarker is written by cargo after a successful extraction and is
// never part of the archive.
const cargoOKMarker = ".cargo-ok"

// Pair is one extracted source directory together with the crate archive it
// was unpacked from.
type Pair struct {
	Source  string
	Archive string
}

// SizeDiff records a file whose on-disk size no longer matches the archive.
type SizeDiff struct {
	Path        string
	ArchiveSize int64
	SourceSize  int64
}

// Diff is the verification result for a single pair.
type Diff struct {
	Pair
	Missing    []string
	Additional []string
	SizeDiffs  []SizeDiff
}

// Clean reports whether the extracted source matches its archive exactly.
func (d *Diff) Clean() bool {
	return len(d.Missing) == 0 && len(d.Additional) == 0 && len(d.SizeDiffs) == 0
}

// Pairs discovers every extracted source directory below registry/src and
// maps it onto its archive below registry/cache. The archive path swaps the
// src segment for cache and appends the .crate suffix to the package stem.
// Sources whose archive no longer exists are skipped; there is nothing to
// compare them against.
func Pairs(paths *cachedir.Paths) ([]Pair, error) {
	registries, err := os.ReadDir(paths.RegistrySources)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var pairs []Pair
	for _, registry := range registries {
		if !registry.IsDir() {
			continue
		}
		packages, err := os.ReadDir(filepath.Join(paths.RegistrySources, registry.Name()))
		if err != nil {
			return nil, err
		}
		for _, pkg := range packages {
			if !pkg.IsDir() {
				continue
			}
			archive := filepath.Join(paths.RegistryCache, registry.Name(), pkg.Name()+".crate")
			if _, err := os.Stat(archive); err != nil {
				continue
			}
			pairs = append(pairs, Pair{
				Source:  filepath.Join(paths.RegistrySources, registry.Name(), pkg.Name()),
				Archive: archive,
			})
		}
	}
	return pairs, nil
}

// Sources verifies every extracted source against its archive, in parallel,
// and returns only the pairs that do not match.
func Sources(ctx context.Context, paths *cachedir.Paths) ([]Diff, error) {
	pairs, err := Pairs(paths)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	var dirty []Diff

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(runtime.NumCPU())
	for _, pair := range pairs {
		group.Go(func() error {
			diff, err := Check(ctx, pair)
			if err != nil {
				return err
			}
			if diff.Clean() {
				return nil
			}
			mu.Lock()
			dirty = append(dirty, diff)
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(dirty, func(i, j int) bool { return dirty[i].Source < dirty[j].Source })
	return dirty, nil
}

// Check verifies a single source directory against its archive. An archive
// deleted since the pair was discovered leaves nothing to compare against, so
// the pair counts as clean.
func Check(ctx context.Context, pair Pair) (Diff, error) {
	diff := Diff{Pair: pair}
	logger.Debug("verifying extracted source", logger.Fields{"source": pair.Source})

	archived, err := archiveEntries(ctx, pair.Archive)
	if err != nil {
		if os.IsNotExist(err) {
			return diff, nil
		}
		return diff, err
	}

	extracted, err := sourceEntries(pair.Source)
	if err != nil {
		return diff, err
	}

	for path, archiveSize := range archived {
		sourceSize, ok := extracted[path]
		if !ok {
			diff.Missing = append(diff.Missing, path)
			continue
		}
		if sourceSize != archiveSize {
			diff.SizeDiffs = append(diff.SizeDiffs, SizeDiff{
				Path:        path,
				ArchiveSize: archiveSize,
				SourceSize:  sourceSize,
			})
		}
	}
	for path := range extracted {
		if _, ok := archived[path]; !ok {
			diff.Additional = append(diff.Additional, path)
		}
	}

	sort.Strings(diff.Missing)
	sort.Strings(diff.Additional)
	sort.Slice(diff.SizeDiffs, func(i, j int) bool {
		return diff.SizeDiffs[i].Path < diff.SizeDiffs[j].Path
	})
	return diff, nil
}

// archiveEntries lists the files of a crate archive with their sizes, keyed
// by their path relative to the package prefix the archive carries.
func archiveEntries(ctx context.Context, archivePath string) (map[string]int64, error) {
	if _, err := os.Stat(archivePath); err != nil {
		return nil, err
	}

	fsys, err := archives.FileSystem(ctx, archivePath, nil)
	if err != nil {
		return nil, err
	}
	if closer, ok := fsys.(io.Closer); ok {
		defer func() { _ = closer.Close() }()
	}

	entries := map[string]int64{}
	err = fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == "." || d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		// Entries are prefixed with the <name>-<version> stem; strip it so
		// the key lines up with the extracted tree.
		if _, rel, ok := strings.Cut(path, "/"); ok {
			entries[rel] = info.Size()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// sourceEntries lists the files of an extracted source directory with their
// sizes, keyed by slash-separated relative path.
func sourceEntries(sourceDir string) (map[string]int64, error) {
	entries := map[string]int64{}
	err := filepath.WalkDir(sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == cargoOKMarker {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		entries[rel] = info.Size()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}
