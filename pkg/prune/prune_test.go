package prune

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/glorpus-work/cratecache/pkg/cache"
	"github.com/glorpus-work/cratecache/pkg/cachedir"
	"github.com/glorpus-work/cratecache/pkg/errutils"
	"github.com/glorpus-work/cratecache/pkg/manifest/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// writeFile creates a file of n bytes, creating parent directories as needed.
func writeFile(t *testing.T, path string, n int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, make([]byte, n), 0o644))
}

// seedCargoHome builds a populated cargo home and returns its inventory.
func seedCargoHome(t *testing.T) (*cachedir.Paths, *cache.Inventory) {
	t.Helper()
	home := t.TempDir()
	paths, err := cachedir.New(home)
	require.NoError(t, err)

	reg := "index.crates.io-6f17d22bba15001f"
	writeFile(t, filepath.Join(paths.BinDir, "cargo-cache"), 300)
	writeFile(t, filepath.Join(paths.RegistryIndex, reg, ".cache", "fo", "foo"), 10)
	writeFile(t, filepath.Join(paths.RegistryCache, reg, "foo-0.1.0.crate"), 100)
	writeFile(t, filepath.Join(paths.RegistryCache, reg, "foo-0.2.0.crate"), 120)
	writeFile(t, filepath.Join(paths.RegistryCache, reg, "bar-1.0.0.crate"), 80)
	writeFile(t, filepath.Join(paths.RegistrySources, reg, "foo-0.2.0", "Cargo.toml"), 40)
	writeFile(t, filepath.Join(paths.RegistrySources, reg, "bar-1.0.0", "Cargo.toml"), 40)
	writeFile(t, filepath.Join(paths.GitReposBare, "baz-1a2b3c4d", "HEAD"), 60)
	writeFile(t, filepath.Join(paths.GitCheckouts, "baz-1a2b3c4d", "f00f", "Cargo.toml"), 30)

	return paths, cache.NewInventory(paths)
}

func TestExpandCategories(t *testing.T) {
	tests := []struct {
		name   string
		tokens string
		want   []cache.ComponentKind
	}{
		{
			name:   "git-db covers repos and checkouts",
			tokens: "git-db",
			want:   []cache.ComponentKind{cache.MirrorRepos, cache.MirrorCheckouts},
		},
		{
			name:   "registry covers index archives and sources",
			tokens: "registry",
			want: []cache.ComponentKind{
				cache.RegistryIndex, cache.RegistryArchives, cache.RegistrySources,
			},
		},
		{
			name:   "all excludes binaries",
			tokens: "all",
			want: []cache.ComponentKind{
				cache.RegistryIndex, cache.RegistryArchives, cache.RegistrySources,
				cache.MirrorRepos, cache.MirrorCheckouts,
			},
		},
		{
			name:   "duplicates and order do not matter",
			tokens: "registry-sources,git-db,registry-sources",
			want: []cache.ComponentKind{
				cache.RegistrySources, cache.MirrorRepos, cache.MirrorCheckouts,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandCategories(tt.tokens)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, got)
		})
	}
}

func TestExpandCategoriesRejectsUnknownTokens(t *testing.T) {
	_, err := ExpandCategories("registry,bogus,git-db,nope")
	require.ErrorIs(t, err, errutils.ErrInvalidDeletableDir)
	assert.Contains(t, err.Error(), "bogus")
	assert.Contains(t, err.Error(), "nope")
}

func TestRemoveByCategoryAll(t *testing.T) {
	paths, inv := seedCargoHome(t)

	report, err := RemoveByCategory(inv, "all", false)
	require.NoError(t, err)
	require.Empty(t, report.Errs)

	assert.NoDirExists(t, paths.RegistryIndex)
	assert.NoDirExists(t, paths.RegistryCache)
	assert.NoDirExists(t, paths.RegistrySources)
	assert.NoDirExists(t, paths.GitReposBare)
	assert.NoDirExists(t, paths.GitCheckouts)

	// Installed binaries are never part of "all".
	assert.FileExists(t, filepath.Join(paths.BinDir, "cargo-cache"))
	assert.Equal(t, uint64(480), report.Freed)
	assert.Equal(t, uint64(300), inv.TotalSize())
}

func TestRemoveByCategoryDryRun(t *testing.T) {
	paths, inv := seedCargoHome(t)

	report, err := RemoveByCategory(inv, "registry-crate-cache", true)
	require.NoError(t, err)
	assert.True(t, report.DryRun)
	assert.Equal(t, uint64(300), report.PlannedSize())
	assert.Zero(t, report.Freed)
	assert.FileExists(t, filepath.Join(paths.RegistryCache,
		"index.crates.io-6f17d22bba15001f", "foo-0.1.0.crate"))
}

func TestKeepDuplicateCrates(t *testing.T) {
	paths, inv := seedCargoHome(t)

	report, err := KeepDuplicateCrates(inv.Archives, 1, false)
	require.NoError(t, err)
	require.Empty(t, report.Errs)

	// Only the superseded foo version goes; bar has a single version.
	reg := filepath.Join(paths.RegistryCache, "index.crates.io-6f17d22bba15001f")
	assert.NoFileExists(t, filepath.Join(reg, "foo-0.1.0.crate"))
	assert.FileExists(t, filepath.Join(reg, "foo-0.2.0.crate"))
	assert.FileExists(t, filepath.Join(reg, "bar-1.0.0.crate"))
	assert.Equal(t, uint64(100), report.Freed)
	assert.Equal(t, uint64(200), inv.Archives.TotalSize())
}

func TestKeepDuplicateCratesZeroDeletesEverything(t *testing.T) {
	_, inv := seedCargoHome(t)

	report, err := KeepDuplicateCrates(inv.Archives, 0, false)
	require.NoError(t, err)
	assert.Len(t, report.Planned, 3)
	assert.Equal(t, 0, inv.Archives.NumberOfItems())
}

func TestKeepDuplicateCratesAbortsOnMalformedName(t *testing.T) {
	paths, inv := seedCargoHome(t)
	reg := filepath.Join(paths.RegistryCache, "index.crates.io-6f17d22bba15001f")
	writeFile(t, filepath.Join(reg, "garbage.crate"), 10)
	inv.Archives.Invalidate()

	_, err := KeepDuplicateCrates(inv.Archives, 1, false)
	require.ErrorIs(t, err, errutils.ErrMalformedPackageName)

	// Nothing may be deleted when planning fails.
	assert.FileExists(t, filepath.Join(reg, "foo-0.1.0.crate"))
}

func TestParseTrimLimit(t *testing.T) {
	tests := []struct {
		limit string
		want  uint64
	}{
		{"350B", 350},
		{"1K", 1024},
		{"1.5K", 1536},
		{"2M", 2 << 20},
		{"4g", 4 << 30},
		{"1T", 1 << 40},
		{"99999999999T", math.MaxUint64},
	}
	for _, tt := range tests {
		t.Run(tt.limit, func(t *testing.T) {
			got, err := ParseTrimLimit(tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "K", "500", "-1K", "1.5X", "K5"} {
		t.Run("rejects "+bad, func(t *testing.T) {
			_, err := ParseTrimLimit(bad)
			assert.ErrorIs(t, err, errutils.ErrTrimLimitParse)
		})
	}
}

func TestTrimDeletesOldestFirst(t *testing.T) {
	paths, inv := seedCargoHome(t)

	// Age the items so access order is deterministic: bar oldest, the git
	// mirror next, everything else recent.
	reg := filepath.Join(paths.RegistryCache, "index.crates.io-6f17d22bba15001f")
	old := time.Now().Add(-48 * time.Hour)
	older := time.Now().Add(-96 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(reg, "bar-1.0.0.crate"), older, older))
	require.NoError(t, os.Chtimes(filepath.Join(paths.GitReposBare, "baz-1a2b3c4d", "HEAD"), old, old))

	// Tracked total is 470 bytes; a 350B budget must shed the two oldest
	// items (mirror 60 + bar 80) and keep the 330 bytes of recent items.
	report, err := Trim(inv, 350, false)
	require.NoError(t, err)
	require.Empty(t, report.Errs)

	assert.NoFileExists(t, filepath.Join(reg, "bar-1.0.0.crate"))
	assert.NoDirExists(t, filepath.Join(paths.GitReposBare, "baz-1a2b3c4d"))
	assert.FileExists(t, filepath.Join(reg, "foo-0.1.0.crate"))
	assert.FileExists(t, filepath.Join(reg, "foo-0.2.0.crate"))
	assert.Equal(t, uint64(140), report.Freed)
}

func TestTrimWithinBudgetIsANoOp(t *testing.T) {
	_, inv := seedCargoHome(t)

	report, err := Trim(inv, 1<<20, false)
	require.NoError(t, err)
	assert.Empty(t, report.Planned)
	assert.Zero(t, report.Freed)
}

func TestTrimRemovesEmptyCheckoutParent(t *testing.T) {
	paths, inv := seedCargoHome(t)

	// A zero budget dooms every tracked item, among them the only revision
	// below git/checkouts/baz-1a2b3c4d. Its parent must not stay behind.
	report, err := Trim(inv, 0, false)
	require.NoError(t, err)
	require.Empty(t, report.Errs)

	assert.NoDirExists(t, filepath.Join(paths.GitCheckouts, "baz-1a2b3c4d"))
	assert.DirExists(t, paths.GitCheckouts)
}

func TestParseDateForms(t *testing.T) {
	now := time.Date(2024, 5, 17, 13, 14, 15, 0, time.Local)

	got, err := ParseDate("2022.01.05", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2022, 1, 5, 13, 14, 15, 0, time.Local), got)

	got, err = ParseDate("08:30:00", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 17, 8, 30, 0, 0, time.Local), got)

	for _, bad := range []string{"", "2022-01-05", "8:30:00", "2022.1.5", "noon"} {
		_, err := ParseDate(bad, now)
		assert.ErrorIs(t, err, errutils.ErrDateParse, bad)
	}
}

func TestRemoveByDatesRequiresADate(t *testing.T) {
	_, inv := seedCargoHome(t)
	_, err := RemoveByDates(inv, "all", "", "", false)
	require.ErrorIs(t, err, errutils.ErrDateParse)
}

func TestRemoveByDatesOlderThan(t *testing.T) {
	paths, inv := seedCargoHome(t)

	reg := filepath.Join(paths.RegistryCache, "index.crates.io-6f17d22bba15001f")
	stale := time.Now().Add(-30 * 24 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(reg, "foo-0.1.0.crate"), stale, stale))
	require.NoError(t, os.Chtimes(filepath.Join(reg, "bar-1.0.0.crate"), stale, stale))

	cutoff := time.Now().Add(-7 * 24 * time.Hour).Format("2006.01.02")
	report, err := RemoveByDates(inv, "registry-crate-cache", cutoff, "", false)
	require.NoError(t, err)
	require.Empty(t, report.Errs)

	assert.NoFileExists(t, filepath.Join(reg, "foo-0.1.0.crate"))
	assert.NoFileExists(t, filepath.Join(reg, "bar-1.0.0.crate"))
	assert.FileExists(t, filepath.Join(reg, "foo-0.2.0.crate"))
	assert.Equal(t, uint64(180), report.Freed)
	assert.Equal(t, uint64(120), inv.Archives.TotalSize())
}

func TestRemoveByDatesYoungerThan(t *testing.T) {
	paths, inv := seedCargoHome(t)

	reg := filepath.Join(paths.RegistryCache, "index.crates.io-6f17d22bba15001f")
	stale := time.Now().Add(-30 * 24 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(reg, "foo-0.1.0.crate"), stale, stale))

	cutoff := time.Now().Add(-7 * 24 * time.Hour).Format("2006.01.02")
	report, err := RemoveByDates(inv, "registry-crate-cache", "", cutoff, false)
	require.NoError(t, err)

	// Only the aged archive survives; the recently accessed ones go.
	assert.FileExists(t, filepath.Join(reg, "foo-0.1.0.crate"))
	assert.NoFileExists(t, filepath.Join(reg, "foo-0.2.0.crate"))
	assert.NoFileExists(t, filepath.Join(reg, "bar-1.0.0.crate"))
	assert.Equal(t, uint64(200), report.Freed)
}

func TestRemoveByDatesWindow(t *testing.T) {
	paths, inv := seedCargoHome(t)

	reg := filepath.Join(paths.RegistryCache, "index.crates.io-6f17d22bba15001f")
	ancient := time.Now().Add(-60 * 24 * time.Hour)
	middle := time.Now().Add(-14 * 24 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(reg, "foo-0.1.0.crate"), ancient, ancient))
	require.NoError(t, os.Chtimes(filepath.Join(reg, "bar-1.0.0.crate"), middle, middle))

	// Files accessed outside the last 30..7 days window go: the ancient one
	// and the fresh one, while the in-window archive survives.
	older := time.Now().Add(-7 * 24 * time.Hour).Format("2006.01.02")
	younger := time.Now().Add(-30 * 24 * time.Hour).Format("2006.01.02")
	report, err := RemoveByDates(inv, "registry-crate-cache", older, younger, false)
	require.NoError(t, err)

	assert.NoFileExists(t, filepath.Join(reg, "foo-0.1.0.crate"))
	assert.NoFileExists(t, filepath.Join(reg, "foo-0.2.0.crate"))
	assert.FileExists(t, filepath.Join(reg, "bar-1.0.0.crate"))
	assert.Equal(t, uint64(220), report.Freed)
}

func TestCleanUnref(t *testing.T) {
	paths, inv := seedCargoHome(t)
	reg := "index.crates.io-6f17d22bba15001f"

	// An extra mirror nothing references.
	writeFile(t, filepath.Join(paths.GitReposBare, "qux-99aabbcc", "HEAD"), 45)
	inv.GitRepos.Invalidate()

	ctrl := gomock.NewController(t)
	resolver := mocks.NewMockResolver(ctrl)
	project := filepath.Join(t.TempDir(), "Cargo.toml")
	resolver.EXPECT().DependencyManifests(gomock.Any(), project).Return([]string{
		project,
		filepath.Join(paths.RegistrySources, reg, "foo-0.2.0", "Cargo.toml"),
		filepath.Join(paths.GitCheckouts, "baz-1a2b3c4d", "f00f", "Cargo.toml"),
	}, nil)

	report, err := CleanUnref(context.Background(), inv, resolver, project, false)
	require.NoError(t, err)
	require.Empty(t, report.Errs)

	// Checkouts and sources are regenerable: gone wholesale.
	assert.NoDirExists(t, paths.GitCheckouts)
	assert.NoDirExists(t, paths.RegistrySources)

	// The referenced mirror and archive survive, the rest do not.
	assert.DirExists(t, filepath.Join(paths.GitReposBare, "baz-1a2b3c4d"))
	assert.NoDirExists(t, filepath.Join(paths.GitReposBare, "qux-99aabbcc"))
	assert.FileExists(t, filepath.Join(paths.RegistryCache, reg, "foo-0.2.0.crate"))
	assert.NoFileExists(t, filepath.Join(paths.RegistryCache, reg, "foo-0.1.0.crate"))
	assert.NoFileExists(t, filepath.Join(paths.RegistryCache, reg, "bar-1.0.0.crate"))

	// checkouts 30 + sources 80 + qux mirror 45 + two archives 180.
	assert.Equal(t, uint64(335), report.Freed)
}

func TestCleanUnrefDryRun(t *testing.T) {
	paths, inv := seedCargoHome(t)
	reg := "index.crates.io-6f17d22bba15001f"

	ctrl := gomock.NewController(t)
	resolver := mocks.NewMockResolver(ctrl)
	project := filepath.Join(t.TempDir(), "Cargo.toml")
	resolver.EXPECT().DependencyManifests(gomock.Any(), project).Return([]string{
		filepath.Join(paths.RegistrySources, reg, "foo-0.2.0", "Cargo.toml"),
	}, nil)

	report, err := CleanUnref(context.Background(), inv, resolver, project, true)
	require.NoError(t, err)
	assert.True(t, report.DryRun)
	assert.Zero(t, report.Freed)
	assert.DirExists(t, paths.GitCheckouts)
	assert.DirExists(t, paths.RegistrySources)
	assert.FileExists(t, filepath.Join(paths.RegistryCache, reg, "foo-0.1.0.crate"))
}

func TestCleanUnrefRejectsUnknownCachePath(t *testing.T) {
	paths, inv := seedCargoHome(t)

	ctrl := gomock.NewController(t)
	resolver := mocks.NewMockResolver(ctrl)
	project := filepath.Join(t.TempDir(), "Cargo.toml")
	resolver.EXPECT().DependencyManifests(gomock.Any(), project).Return([]string{
		filepath.Join(paths.CargoHome, "somewhere", "odd", "Cargo.toml"),
	}, nil)

	_, err := CleanUnref(context.Background(), inv, resolver, project, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no known pattern")
	assert.DirExists(t, paths.GitCheckouts)
}
