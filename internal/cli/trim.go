package cli

import (
	"fmt"

	"github.com/glorpus-work/cratecache/pkg/prune"
	"github.com/spf13/cobra"
)

// NewTrimCmd creates the trim command.
func NewTrimCmd() *cobra.Command {
	var (
		limit  string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "trim",
		Short: "Trim the cache down to a size limit",
		Long: `Delete the least recently used checkouts, mirrors, archives and
sources until the cache fits the given size limit. The registry index
and installed binaries are never touched.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runTrim(limit, dryRun)
		},
	}

	cmd.Flags().StringVarP(&limit, "limit", "l", "", "size limit, e.g. 4G or 500M (default: trim_limit from the settings file)")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "d", false, "only report what would be removed")

	return cmd
}

func runTrim(limit string, dryRun bool) error {
	cfg, inv, err := loadInventory()
	if err != nil {
		return err
	}

	if limit == "" {
		limit = cfg.Settings.TrimLimit
	}
	budget, err := prune.ParseTrimLimit(limit)
	if err != nil {
		return err
	}

	rep, err := prune.Trim(inv, budget, dryRun)
	if err != nil {
		return err
	}
	fmt.Println(rep.Summary())
	return nil
}
