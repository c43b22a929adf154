package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/glorpus-work/cratecache/pkg/cache"
	"github.com/glorpus-work/cratecache/pkg/cachedir"
	"github.com/spf13/cobra"
)

// NewToolchainCmd creates the toolchain command.
func NewToolchainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "toolchain",
		Aliases: []string{"toolchains"},
		Short:   "Show the size of the installed rustup toolchains",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runToolchain()
		},
	}

	return cmd
}

func runToolchain() error {
	if _, err := loadSettings(); err != nil {
		return err
	}

	rustupHome, err := cachedir.RustupHome()
	if err != nil {
		return err
	}

	toolchainDir := filepath.Join(rustupHome, "toolchains")
	entries, err := os.ReadDir(toolchainDir)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Printf("no toolchains installed below %s\n", rustupHome)
			return nil
		}
		return err
	}

	fmt.Printf("Toolchains below %q:\n\n", rustupHome)
	var total uint64
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		toolchain := cache.NewBinaryCache(filepath.Join(toolchainDir, entry.Name()))
		total += toolchain.TotalSize()
		fmt.Printf("%-50s %8d files %12s\n",
			entry.Name()+":", toolchain.NumberOfItems(), humanize.IBytes(toolchain.TotalSize()))
	}
	fmt.Printf("\n%-50s %21s\n", "Total:", humanize.IBytes(total))
	return nil
}
