package cli

import (
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// NewRegistryCmd creates the registry command.
func NewRegistryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "registry",
		Aliases: []string{"registries", "r"},
		Short:   "Show a per-registry size breakdown",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runRegistry()
		},
	}

	return cmd
}

func runRegistry() error {
	_, inv, err := loadInventory()
	if err != nil {
		return err
	}

	// Group the three registry components by registry name.
	type registryStats struct {
		index    uint64
		archives uint64
		sources  uint64
	}
	registries := map[string]*registryStats{}
	get := func(name string) *registryStats {
		stats, ok := registries[name]
		if !ok {
			stats = &registryStats{}
			registries[name] = stats
		}
		return stats
	}

	for _, sub := range inv.RegistryIndexes.SubCaches() {
		get(sub.Name()).index += sub.TotalSize()
	}
	for _, sub := range inv.Archives.SubCaches() {
		get(sub.Name()).archives += sub.TotalSize()
	}
	for _, sub := range inv.Sources.SubCaches() {
		get(sub.Name()).sources += sub.TotalSize()
	}

	if len(registries) == 0 {
		fmt.Println("no registries in cache")
		return nil
	}

	names := make([]string, 0, len(registries))
	for name := range registries {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		stats := registries[name]
		total := stats.index + stats.archives + stats.sources
		fmt.Printf("%s: %s\n", name, humanize.IBytes(total))
		fmt.Printf("  %-24s %12s\n", "index:", humanize.IBytes(stats.index))
		fmt.Printf("  %-24s %12s\n", "crate archives:", humanize.IBytes(stats.archives))
		fmt.Printf("  %-24s %12s\n", "crate sources:", humanize.IBytes(stats.sources))
	}
	return nil
}
