package verify

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/glorpus-work/cratecache/pkg/cachedir"
	"github.com/mholt/archives"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRegistry = "index.crates.io-6f17d22bba15001f"

func writeFile(t *testing.T, path string, content []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, content, 0o644))
}

// packCrate archives the staged package directory into a .crate file, with
// the package stem as the leading path segment of every entry.
func packCrate(t *testing.T, stageDir, cratePath string) {
	t.Helper()
	ctx := context.Background()

	files, err := archives.FilesFromDisk(ctx, nil, map[string]string{
		stageDir: filepath.Base(stageDir),
	})
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Dir(cratePath), 0o755))
	out, err := os.Create(cratePath)
	require.NoError(t, err)
	defer func() { _ = out.Close() }()

	format := archives.CompressedArchive{Compression: archives.Gz{}, Archival: archives.Tar{}}
	require.NoError(t, format.Archive(ctx, out, files))
}

// seedPair stages a package, packs it, and extracts it verbatim into the
// source tree of a fresh cargo home.
func seedPair(t *testing.T, stem string, contents map[string]string) (*cachedir.Paths, Pair) {
	t.Helper()
	home := t.TempDir()
	paths, err := cachedir.New(home)
	require.NoError(t, err)

	stage := filepath.Join(t.TempDir(), stem)
	sourceDir := filepath.Join(paths.RegistrySources, testRegistry, stem)
	for name, content := range contents {
		writeFile(t, filepath.Join(stage, name), []byte(content))
		writeFile(t, filepath.Join(sourceDir, name), []byte(content))
	}
	writeFile(t, filepath.Join(sourceDir, ".cargo-ok"), []byte("ok"))

	cratePath := filepath.Join(paths.RegistryCache, testRegistry, stem+".crate")
	packCrate(t, stage, cratePath)

	return paths, Pair{Source: sourceDir, Archive: cratePath}
}

func TestPairsMapsSourcesOntoArchives(t *testing.T) {
	paths, pair := seedPair(t, "foo-0.2.0", map[string]string{"Cargo.toml": "[package]"})

	pairs, err := Pairs(paths)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, pair, pairs[0])
}

func TestPairsWithoutSourceTree(t *testing.T) {
	paths, err := cachedir.New(t.TempDir())
	require.NoError(t, err)

	pairs, err := Pairs(paths)
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestCheckCleanSource(t *testing.T) {
	_, pair := seedPair(t, "foo-0.2.0", map[string]string{
		"Cargo.toml":  "[package]\nname = \"foo\"\n",
		"src/lib.rs":  "pub fn foo() {}\n",
		"src/util.rs": "fn helper() {}\n",
	})

	diff, err := Check(context.Background(), pair)
	require.NoError(t, err)
	assert.True(t, diff.Clean())
}

func TestCheckDetectsModifiedFile(t *testing.T) {
	_, pair := seedPair(t, "foo-0.2.0", map[string]string{
		"Cargo.toml": "[package]\n",
		"src/lib.rs": "pub fn foo() {}\n",
	})
	writeFile(t, filepath.Join(pair.Source, "src", "lib.rs"), []byte("pub fn foo() { panic!() }\n"))

	diff, err := Check(context.Background(), pair)
	require.NoError(t, err)
	require.Len(t, diff.SizeDiffs, 1)
	assert.Equal(t, "src/lib.rs", diff.SizeDiffs[0].Path)
	assert.NotEqual(t, diff.SizeDiffs[0].ArchiveSize, diff.SizeDiffs[0].SourceSize)
	assert.False(t, diff.Clean())
}

func TestCheckDetectsMissingAndAdditionalFiles(t *testing.T) {
	_, pair := seedPair(t, "foo-0.2.0", map[string]string{
		"Cargo.toml": "[package]\n",
		"src/lib.rs": "pub fn foo() {}\n",
	})
	require.NoError(t, os.Remove(filepath.Join(pair.Source, "src", "lib.rs")))
	writeFile(t, filepath.Join(pair.Source, "src", "extra.rs"), []byte("// stray\n"))

	diff, err := Check(context.Background(), pair)
	require.NoError(t, err)
	assert.Equal(t, []string{"src/lib.rs"}, diff.Missing)
	assert.Equal(t, []string{"src/extra.rs"}, diff.Additional)
}

func TestSourceWithoutArchiveIsSkipped(t *testing.T) {
	paths, pair := seedPair(t, "foo-0.2.0", map[string]string{"Cargo.toml": "[package]\n"})
	require.NoError(t, os.Remove(pair.Archive))

	pairs, err := Pairs(paths)
	require.NoError(t, err)
	assert.Empty(t, pairs)

	// An archive vanishing between discovery and check reads the same way.
	diff, err := Check(context.Background(), pair)
	require.NoError(t, err)
	assert.True(t, diff.Clean())

	dirty, err := Sources(context.Background(), paths)
	require.NoError(t, err)
	assert.Empty(t, dirty)
}

func TestSourcesReportsOnlyDirtyPairs(t *testing.T) {
	paths, pair := seedPair(t, "foo-0.2.0", map[string]string{
		"Cargo.toml": "[package]\n",
		"src/lib.rs": "pub fn foo() {}\n",
	})

	// A second, untouched package in the same registry.
	stage := filepath.Join(t.TempDir(), "bar-1.0.0")
	writeFile(t, filepath.Join(stage, "Cargo.toml"), []byte("[package]\n"))
	barSource := filepath.Join(paths.RegistrySources, testRegistry, "bar-1.0.0")
	writeFile(t, filepath.Join(barSource, "Cargo.toml"), []byte("[package]\n"))
	packCrate(t, stage, filepath.Join(paths.RegistryCache, testRegistry, "bar-1.0.0.crate"))

	writeFile(t, filepath.Join(pair.Source, "src", "lib.rs"), []byte("tampered beyond recognition\n"))

	dirty, err := Sources(context.Background(), paths)
	require.NoError(t, err)
	require.Len(t, dirty, 1)
	assert.Equal(t, pair.Source, dirty[0].Source)
	require.Len(t, dirty[0].SizeDiffs, 1)
	assert.Equal(t, "src/lib.rs", dirty[0].SizeDiffs[0].Path)
}
