// Package cachedir resolves the on-disk layout of the cargo cache: the cargo
// home itself and the fixed subdirectories of its components.
package cachedir

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/glorpus-work/cratecache/pkg/errutils"
)

// Paths holds the canonical component subpaths below a cargo home.
type Paths struct {
	CargoHome       string
	BinDir          string
	Registry        string
	RegistryIndex   string
	RegistryCache   string
	RegistrySources string
	GitReposBare    string
	GitCheckouts    string
}

// New derives the component paths for the given cargo home. The cargo home
// must be an existing directory.
func New(cargoHome string) (*Paths, error) {
	info, err := os.Stat(cargoHome)
	if err != nil || !info.IsDir() {
		return nil, errutils.Wrapf(errutils.ErrCargoHomeNotDirectory, "%q", cargoHome)
	}

	registry := filepath.Join(cargoHome, "registry")
	return &Paths{
		CargoHome:       cargoHome,
		BinDir:          filepath.Join(cargoHome, "bin"),
		Registry:        registry,
		RegistryIndex:   filepath.Join(registry, "index"),
		RegistryCache:   filepath.Join(registry, "cache"),
		RegistrySources: filepath.Join(registry, "src"),
		GitReposBare:    filepath.Join(cargoHome, "git", "db"),
		GitCheckouts:    filepath.Join(cargoHome, "git", "checkouts"),
	}, nil
}

// Default resolves the cargo home from the CARGO_HOME environment variable,
// falling back to ~/.cargo, and derives the component paths from it.
func Default() (*Paths, error) {
	if home := os.Getenv("CARGO_HOME"); home != "" {
		return New(home)
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return nil, errutils.Wrap(err, "failed to locate home directory")
	}
	return New(filepath.Join(userHome, ".cargo"))
}

// RustupHome resolves the rustup home from the RUSTUP_HOME environment
// variable, falling back to ~/.rustup. The directory must exist.
func RustupHome() (string, error) {
	home := os.Getenv("RUSTUP_HOME")
	if home == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return "", errutils.Wrap(err, "failed to locate home directory")
		}
		home = filepath.Join(userHome, ".rustup")
	}
	info, err := os.Stat(home)
	if err != nil || !info.IsDir() {
		return "", errutils.Wrapf(errutils.ErrNoRustupHome, "%q", home)
	}
	return home, nil
}

// String renders the resolved directories, one per line.
func (p *Paths) String() string {
	return fmt.Sprintf(`cargo home:                 %s
binaries directory:         %s
registry directory:         %s
registry index:             %s
crate source archives:      %s
unpacked crate sources:     %s
bare git repos:             %s
git repo checkouts:         %s
`,
		p.CargoHome,
		p.BinDir,
		p.Registry,
		p.RegistryIndex,
		p.RegistryCache,
		p.RegistrySources,
		p.GitReposBare,
		p.GitCheckouts,
	)
}
