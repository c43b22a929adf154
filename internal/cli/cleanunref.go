package cli

import (
	"fmt"

	"github.com/glorpus-work/cratecache/pkg/cache"
	"github.com/glorpus-work/cratecache/pkg/manifest"
	"github.com/glorpus-work/cratecache/pkg/prune"
	"github.com/spf13/cobra"
)

// NewCleanUnrefCmd creates the clean-unref command.
func NewCleanUnrefCmd() *cobra.Command {
	var (
		manifestPath string
		useLockfile  bool
		dryRun       bool
	)

	cmd := &cobra.Command{
		Use:     "clean-unref",
		Aliases: []string{"sc"},
		Short:   "Remove everything the current project does not depend on",
		Long: `Resolve the dependency closure of a project and remove every cache
item outside it. Checkouts and extracted sources are removed entirely;
mirrors and crate archives survive only when the closure references them.

The closure comes from "cargo metadata" by default; --use-lockfile reads
Cargo.lock directly instead, which works without a cargo binary.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCleanUnref(cmd, manifestPath, useLockfile, dryRun)
		},
	}

	cmd.Flags().StringVarP(&manifestPath, "manifest-path", "m", "", "path to Cargo.toml (default: search upward from the working directory)")
	cmd.Flags().BoolVar(&useLockfile, "use-lockfile", false, "resolve dependencies from Cargo.lock instead of cargo metadata")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "d", false, "only report what would be removed")

	return cmd
}

func runCleanUnref(cmd *cobra.Command, manifestPath string, useLockfile, dryRun bool) error {
	_, inv, err := loadInventory()
	if err != nil {
		return err
	}

	var resolver manifest.Resolver
	if useLockfile {
		resolver = &manifest.LockfileResolver{
			SourceRoots: registrySourceRoots(inv),
		}
	} else {
		resolver = manifest.NewMetadataResolver()
	}

	rep, err := prune.CleanUnref(cmd.Context(), inv, resolver, manifestPath, dryRun)
	if err != nil {
		return err
	}
	fmt.Println(rep.Summary())
	return nil
}

// registrySourceRoots lists the per-registry source directories the lockfile
// resolver probes for extracted packages.
func registrySourceRoots(inv *cache.Inventory) []string {
	var roots []string
	for _, sub := range inv.Sources.SubCaches() {
		roots = append(roots, sub.Path())
	}
	return roots
}
