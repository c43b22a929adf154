package manifest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/cratecache/pkg/errutils"
	"github.com/pelletier/go-toml/v2"
)

// LockfileResolver resolves dependencies offline from the project's
// Cargo.lock, mapping each registry package onto its extracted source under
// the cargo home. Git dependencies are not representable this way; callers
// wanting the complete closure use the MetadataResolver.
type LockfileResolver struct {
	// SourceRoots are the per-registry extracted-source directories
	// (registry/src/<registry-id>) to probe for locked packages.
	SourceRoots []string
}

// lockFile is the subset of Cargo.lock the resolver needs.
type lockFile struct {
	Packages []lockedPackage `toml:"package"`
}

type lockedPackage struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
	Source  string `toml:"source"`
}

// DependencyManifests parses the Cargo.lock next to manifestPath and returns
// the manifests of every locked registry package present on disk.
func (r *LockfileResolver) DependencyManifests(_ context.Context, manifestPath string) ([]string, error) {
	lockPath := filepath.Join(filepath.Dir(manifestPath), "Cargo.lock")
	data, err := os.ReadFile(lockPath)
	if err != nil {
		return nil, errutils.Wrapf(errutils.ErrUnparsableManifest, "%s: %v", lockPath, err)
	}

	var lock lockFile
	if err := toml.Unmarshal(data, &lock); err != nil {
		return nil, errutils.Wrapf(errutils.ErrUnparsableManifest, "%s: %v", lockPath, err)
	}

	var manifests []string
	for _, pkg := range lock.Packages {
		if !strings.HasPrefix(pkg.Source, "registry+") {
			continue
		}
		stem := fmt.Sprintf("%s-%s", pkg.Name, pkg.Version)
		for _, root := range r.SourceRoots {
			candidate := filepath.Join(root, stem, FileName)
			if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
				manifests = append(manifests, candidate)
			}
		}
	}
	return manifests, nil
}
