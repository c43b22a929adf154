package gitmaint

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/glorpus-work/cratecache/pkg/cache"
	"github.com/glorpus-work/cratecache/pkg/cachedir"
	"github.com/glorpus-work/cratecache/pkg/errutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// initBareRepo creates a bare repository with a single commit.
func initBareRepo(t *testing.T, path string) {
	t.Helper()
	run := func(dir string, args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
		)
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
	}

	work := t.TempDir()
	run(work, "init", "-q")
	require.NoError(t, os.WriteFile(filepath.Join(work, "README"), []byte("hello\n"), 0o644))
	run(work, "add", "README")
	run(work, "commit", "-q", "-m", "initial")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	run(filepath.Dir(path), "clone", "-q", "--bare", work, path)
}

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

func TestCompressBareRepo(t *testing.T) {
	requireGit(t)
	repo := filepath.Join(t.TempDir(), "mirror-1a2b3c4d")
	initBareRepo(t, repo)

	err := New().Compress(context.Background(), repo, false)
	require.NoError(t, err)
}

func TestCompressAggressive(t *testing.T) {
	requireGit(t)
	repo := filepath.Join(t.TempDir(), "mirror-1a2b3c4d")
	initBareRepo(t, repo)

	err := New().Compress(context.Background(), repo, true)
	require.NoError(t, err)
}

func TestCompressFailsOutsideRepo(t *testing.T) {
	requireGit(t)
	err := New().Compress(context.Background(), t.TempDir(), false)
	require.ErrorIs(t, err, errutils.ErrGitGCFailed)
}

func TestCompressAllCoversMirrorsAndIndexes(t *testing.T) {
	requireGit(t)
	home := t.TempDir()
	paths, err := cachedir.New(home)
	require.NoError(t, err)

	initBareRepo(t, filepath.Join(paths.GitReposBare, "tokio-1a2b3c4d"))
	initBareRepo(t, filepath.Join(paths.RegistryIndex, "index.crates.io-6f17d22bba15001f"))
	inv := cache.NewInventory(paths)

	result, err := New().CompressAll(context.Background(), inv, false)
	require.NoError(t, err)
	require.Len(t, result.Repos, 2)
	assert.Positive(t, result.TotalBefore())
	assert.Positive(t, result.TotalAfter())
}
