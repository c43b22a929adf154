package manifest

import (
	"context"
	"encoding/json"
	"os/exec"

	"github.com/glorpus-work/cratecache/internal/logger"
	"github.com/glorpus-work/cratecache/pkg/errutils"
)

// MetadataResolver resolves the dependency closure by invoking the package
// manager's metadata command.
type MetadataResolver struct {
	// Binary is the executable to invoke; defaults to "cargo".
	Binary string
}

// NewMetadataResolver creates a resolver backed by the cargo binary.
func NewMetadataResolver() *MetadataResolver {
	return &MetadataResolver{Binary: "cargo"}
}

// metadataOutput is the subset of `cargo metadata` JSON the resolver needs.
type metadataOutput struct {
	Packages []struct {
		ManifestPath string `json:"manifest_path"`
	} `json:"packages"`
}

// DependencyManifests runs `cargo metadata --all-features` for the given
// manifest and returns the manifest path of every package in the closure.
func (r *MetadataResolver) DependencyManifests(ctx context.Context, manifestPath string) ([]string, error) {
	binary := r.Binary
	if binary == "" {
		binary = "cargo"
	}

	cmd := exec.CommandContext(ctx, binary,
		"metadata", "--format-version", "1", "--all-features",
		"--manifest-path", manifestPath)
	logger.Debug("resolving manifest", logger.Fields{"manifest": manifestPath})

	out, err := cmd.Output()
	if err != nil {
		return nil, errutils.Wrapf(errutils.ErrUnparsableManifest, "%s: %v", manifestPath, err)
	}

	var metadata metadataOutput
	if err := json.Unmarshal(out, &metadata); err != nil {
		return nil, errutils.Wrapf(errutils.ErrUnparsableManifest, "%s: %v", manifestPath, err)
	}

	manifests := make([]string, 0, len(metadata.Packages))
	for _, pkg := range metadata.Packages {
		manifests = append(manifests, pkg.ManifestPath)
	}
	return manifests, nil
}
