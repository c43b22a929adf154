package cli

import (
	"context"
	"fmt"

	"github.com/glorpus-work/cratecache/pkg/cachedir"
	"github.com/glorpus-work/cratecache/pkg/gitmaint"
	"github.com/glorpus-work/cratecache/pkg/prune"
	"github.com/glorpus-work/cratecache/pkg/report"
)

// RootOptions carries the top-level flags of the bare invocation.
type RootOptions struct {
	Info     bool
	ListDirs bool
	DryRun   bool

	RemoveDirs     string
	RemoveOlder    string
	RemoveYounger  string
	KeepDuplicates uint
	KeepSet        bool

	Autoclean          bool
	AutocleanExpensive bool
	GC                 bool

	TopCacheItems int
	TopSet        bool
}

// mutating reports whether any flag asks for a cache mutation.
func (o RootOptions) mutating() bool {
	return o.RemoveDirs != "" || o.KeepSet || o.Autoclean || o.AutocleanExpensive || o.GC
}

// RunRoot implements the bare invocation: informational flags print and
// return, mutation flags run in a fixed order followed by a size delta, and
// with no flags at all the size summary is printed.
func RunRoot(ctx context.Context, opts RootOptions) error {
	cfg, inv, err := loadInventory()
	if err != nil {
		return err
	}

	if opts.Info {
		fmt.Print(dirInfo(inv.Paths))
		return nil
	}
	if opts.ListDirs {
		fmt.Print(inv.Paths.String())
		return nil
	}

	if opts.TopSet {
		n := opts.TopCacheItems
		if n <= 0 {
			n = cfg.Settings.TopCount
		}
		tables, err := report.Top(inv, n)
		if err != nil {
			return err
		}
		fmt.Print(report.RenderTopTables(tables))
		if !opts.mutating() {
			return nil
		}
	}

	if !opts.mutating() {
		fmt.Print(report.Summary(inv))
		return nil
	}

	before := inv.TotalSize()

	if opts.KeepSet {
		rep, err := prune.KeepDuplicateCrates(inv.Archives, opts.KeepDuplicates, opts.DryRun)
		if err != nil {
			return err
		}
		fmt.Println(rep.Summary())
	}

	if opts.RemoveDirs != "" {
		var rep *prune.Report
		if opts.RemoveOlder != "" || opts.RemoveYounger != "" {
			rep, err = prune.RemoveByDates(inv, opts.RemoveDirs, opts.RemoveOlder, opts.RemoveYounger, opts.DryRun)
		} else {
			rep, err = prune.RemoveByCategory(inv, opts.RemoveDirs, opts.DryRun)
		}
		if err != nil {
			return err
		}
		fmt.Println(rep.Summary())
	}

	if opts.Autoclean || opts.AutocleanExpensive {
		// Checkouts and extracted sources are regenerable from the mirrors
		// and archives, so dropping them is always safe.
		rep, err := prune.RemoveByCategory(inv, "git-repos,registry-sources", opts.DryRun)
		if err != nil {
			return err
		}
		fmt.Println(rep.Summary())
	}

	if (opts.AutocleanExpensive || opts.GC) && !opts.DryRun {
		runner := gitmaint.New()
		runner.Git = cfg.Settings.GitBinary
		result, err := runner.CompressAll(ctx, inv, false)
		if err != nil {
			return err
		}
		fmt.Printf("compressed %d git repos\n", len(result.Repos))
	}

	if !opts.DryRun {
		inv.InvalidateAll()
		fmt.Println(report.SizeChange(before, inv.TotalSize()))
	}
	return nil
}

// dirInfo explains what each cache directory holds and whether removing it
// is safe.
func dirInfo(paths *cachedir.Paths) string {
	return paths.String() + `
binaries directory:     binaries installed via "cargo install". Removing them removes the tools.
registry index:         git clones of the crate registries. Removal is safe, cargo re-clones on demand.
crate source archives:  downloaded .crate archives. Removal is safe but forces re-downloads.
unpacked crate sources: sources extracted from the archives. Removal is safe, cargo re-extracts.
bare git repos:         mirrors of git dependencies. Removal is safe but forces re-clones.
git repo checkouts:     working trees checked out of the mirrors. Removal is safe, cargo re-checks-out.
`
}
