package cache

import (
	"strings"

	"github.com/glorpus-work/cratecache/pkg/errutils"
)

// SplitNameVersion splits a `<name>-<version>` stem such as
// "serde-derive-1.0.152" into its package name and version. Segments are
// '-'-delimited; the version is the trailing run of segments starting at the
// first segment that begins with a digit. This handles names containing '-'
// as well as pre-release versions like "0.1.0-beta.1".
func SplitNameVersion(stem string) (name, version string, err error) {
	segments := strings.Split(stem, "-")
	for i, segment := range segments {
		if segment == "" || segment[0] < '0' || segment[0] > '9' {
			continue
		}
		if i == 0 {
			break // no name part
		}
		return strings.Join(segments[:i], "-"), strings.Join(segments[i:], "-"), nil
	}
	return "", "", errutils.Wrapf(errutils.ErrMalformedPackageName, "%q", stem)
}

// SplitCrateFileName splits an archive file name such as
// "serde-1.0.152.crate" into package name and version.
func SplitCrateFileName(fileName string) (name, version string, err error) {
	stem, ok := strings.CutSuffix(fileName, ".crate")
	if !ok {
		return "", "", errutils.Wrapf(errutils.ErrMalformedPackageName, "%q has no .crate suffix", fileName)
	}
	return SplitNameVersion(stem)
}

// RegistryName strips the trailing hash segment from a registry directory
// name, e.g. "github.com-1ecc6299db9ec823" becomes "github.com". Directory
// names without a '-' are returned unchanged.
func RegistryName(dirName string) string {
	idx := strings.LastIndex(dirName, "-")
	if idx <= 0 {
		return dirName
	}
	return dirName[:idx]
}

// RepoName strips the trailing hash segment from a mirror or checkout
// directory name, e.g. "cargo-cache-fb9469891e5cfbe6" becomes "cargo-cache".
func RepoName(dirName string) string {
	return RegistryName(dirName)
}
