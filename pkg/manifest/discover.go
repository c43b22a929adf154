package manifest

import (
	"os"
	"path/filepath"

	"github.com/glorpus-work/cratecache/pkg/errutils"
)

// FileName is the manifest file name the upward search looks for.
const FileName = "Cargo.toml"

// Find walks upward from startDir until it finds a Cargo.toml and returns its
// path. Reaching the filesystem root without a hit is an error.
func Find(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", errutils.Wrap(err, "failed to resolve start directory")
	}

	for {
		candidate := filepath.Join(dir, FileName)
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errutils.Wrapf(errutils.ErrNoManifestFound, "searched upward from %q", startDir)
		}
		dir = parent
	}
}
