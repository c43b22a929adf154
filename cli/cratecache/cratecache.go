package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/glorpus-work/cratecache/internal/cli"
	"github.com/spf13/cobra"
)

var (
	configPath string
	cargoHome  string
	verbose    bool
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}

	cancel()
}

func newRootCmd() *cobra.Command {
	var opts cli.RootOptions

	cmd := &cobra.Command{
		Use:   "cratecache",
		Short: "Manage the cargo cache",
		Long: `cratecache shows the size of the cargo cache and cleans it up:
- summary, per-registry and per-package size breakdowns
- removal of whole components, stale files or superseded crate versions
- trimming to a size budget and git repo compression`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.KeepSet = cmd.Flags().Changed("keep-duplicate-crates")
			opts.TopSet = cmd.Flags().Changed("top-cache-items")
			return cli.RunRoot(cmd.Context(), opts)
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: auto-detect)")
	cmd.PersistentFlags().StringVar(&cargoHome, "cargo-home", "", "cargo home to operate on (default: $CARGO_HOME or ~/.cargo)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Top-level operation flags
	cmd.Flags().BoolVarP(&opts.Info, "info", "i", false, "explain what each cache directory holds")
	cmd.Flags().BoolVarP(&opts.ListDirs, "list-dirs", "l", false, "print the cache directories and exit")
	cmd.Flags().BoolVarP(&opts.DryRun, "dry-run", "d", false, "only report what would be removed")
	cmd.Flags().StringVarP(&opts.RemoveDirs, "remove-dir", "r", "", "remove whole components, e.g. git-db or registry,git-db or all")
	cmd.Flags().StringVar(&opts.RemoveOlder, "remove-if-older-than", "", "with --remove-dir: only files last accessed before this date (yyyy.mm.dd or hh:mm:ss)")
	cmd.Flags().StringVar(&opts.RemoveYounger, "remove-if-younger-than", "", "with --remove-dir: only files last accessed after this date (yyyy.mm.dd or hh:mm:ss)")
	cmd.Flags().UintVarP(&opts.KeepDuplicates, "keep-duplicate-crates", "k", 0, "retain only the N newest versions of each crate archive")
	cmd.Flags().BoolVarP(&opts.Autoclean, "autoclean", "a", false, "remove checkouts and extracted sources (regenerable)")
	cmd.Flags().BoolVarP(&opts.AutocleanExpensive, "autoclean-expensive", "e", false, "autoclean plus git repo compression")
	cmd.Flags().BoolVarP(&opts.GC, "gc", "g", false, "recompress the cached git repositories")
	cmd.Flags().IntVarP(&opts.TopCacheItems, "top-cache-items", "t", 0, "print the N largest packages per cache component (0 uses the configured top_count)")

	// Set up CLI pkg variables
	cli.ConfigPath = &configPath
	cli.CargoHome = &cargoHome
	cli.Verbose = &verbose

	// Add subcommands
	cmd.AddCommand(
		cli.NewLocalCmd(),
		cli.NewQueryCmd(),
		cli.NewRegistryCmd(),
		cli.NewToolchainCmd(),
		cli.NewTrimCmd(),
		cli.NewCleanUnrefCmd(),
		cli.NewVerifyCmd(),
		cli.NewVersionCmd(),
	)

	return cmd
}
