// Package gitmaint recompresses the git repositories the cache carries: the
// bare mirrors below git/db and the registry index clones. Compression runs
// the system git, so results match what cargo itself would produce.
package gitmaint

import (
	"context"
	"os/exec"
	"strings"

	"github.com/glorpus-work/cratecache/internal/logger"
	"github.com/glorpus-work/cratecache/pkg/cache"
	"github.com/glorpus-work/cratecache/pkg/errutils"
)

// Runner executes git maintenance commands.
type Runner struct {
	// Git is the binary to invoke, "git" unless overridden.
	Git string
}

// New returns a Runner using the git found on PATH.
func New() *Runner {
	return &Runner{Git: "git"}
}

// RepoResult records the size effect of compressing one repository.
type RepoResult struct {
	Path       string
	SizeBefore uint64
	SizeAfter  uint64
}

// Result aggregates a compression run over the whole cache.
type Result struct {
	Repos []RepoResult
}

// TotalBefore sums the repository sizes before compression.
func (r *Result) TotalBefore() uint64 {
	var total uint64
	for _, repo := range r.Repos {
		total += repo.SizeBefore
	}
	return total
}

// TotalAfter sums the repository sizes after compression.
func (r *Result) TotalAfter() uint64 {
	var total uint64
	for _, repo := range r.Repos {
		total += repo.SizeAfter
	}
	return total
}

// Compress expires the reflog, packs the refs and runs git gc on a single
// repository. With aggressive set, gc runs with --aggressive, which is slow
// but reclaims considerably more space.
func (r *Runner) Compress(ctx context.Context, repoPath string, aggressive bool) error {
	if err := r.run(ctx, repoPath, "reflog", "expire", "--expire=now", "--all"); err != nil {
		return err
	}
	if err := r.run(ctx, repoPath, "pack-refs", "--all", "--prune"); err != nil {
		return err
	}
	if aggressive {
		return r.run(ctx, repoPath, "gc", "--aggressive", "--prune=now")
	}
	return r.run(ctx, repoPath, "gc")
}

// CompressAll compresses every bare mirror and every registry index clone,
// recording per-repository sizes before and after.
func (r *Runner) CompressAll(ctx context.Context, inv *cache.Inventory, aggressive bool) (*Result, error) {
	var repos []string
	repos = append(repos, inv.GitRepos.ItemsSorted()...)
	for _, sub := range inv.RegistryIndexes.SubCaches() {
		repos = append(repos, sub.Path())
	}

	result := &Result{}
	for _, repo := range repos {
		before := cache.DirSize(repo)
		logger.Debug("compressing repository", logger.Fields{"path": repo, "aggressive": aggressive})
		if err := r.Compress(ctx, repo, aggressive); err != nil {
			return nil, err
		}
		result.Repos = append(result.Repos, RepoResult{
			Path:       repo,
			SizeBefore: before,
			SizeAfter:  cache.DirSize(repo),
		})
	}

	inv.GitRepos.Invalidate()
	inv.RegistryIndexes.Invalidate()
	return result, nil
}

func (r *Runner) run(ctx context.Context, repoPath string, args ...string) error {
	git := r.Git
	if git == "" {
		git = "git"
	}
	cmd := exec.CommandContext(ctx, git, args...)
	cmd.Dir = repoPath
	out, err := cmd.CombinedOutput()
	if err != nil {
		return errutils.Wrapf(errutils.ErrGitGCFailed,
			"git %s in %s: %s", strings.Join(args, " "), repoPath, strings.TrimSpace(string(out)))
	}
	return nil
}
