package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/glorpus-work/cratecache/pkg/cache"
	"github.com/glorpus-work/cratecache/pkg/manifest"
	"github.com/spf13/cobra"
)

// NewLocalCmd creates the local command.
func NewLocalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "local",
		Aliases: []string{"l"},
		Short:   "Show the size of the current project's target directory",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runLocal()
		},
	}

	return cmd
}

func runLocal() error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	manifestPath, err := manifest.Find(cwd)
	if err != nil {
		return err
	}

	targetDir := filepath.Join(filepath.Dir(manifestPath), "target")
	if _, err := os.Stat(targetDir); err != nil {
		fmt.Printf("no target directory at %s\n", targetDir)
		return nil
	}

	fmt.Printf("Project %q:\n\n", filepath.Dir(manifestPath))
	fmt.Printf("%-30s %12s\n", "target:", humanize.IBytes(cache.DirSize(targetDir)))

	entries, err := os.ReadDir(targetDir)
	if err != nil {
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		sub := filepath.Join(targetDir, entry.Name())
		fmt.Printf("%-30s %12s\n", "  "+entry.Name()+":", humanize.IBytes(cache.DirSize(sub)))
	}
	return nil
}
