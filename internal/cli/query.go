package cli

import (
	"fmt"

	"github.com/glorpus-work/cratecache/pkg/report"
	"github.com/spf13/cobra"
)

// NewQueryCmd creates the query command.
func NewQueryCmd() *cobra.Command {
	var (
		sortBy        string
		humanReadable bool
	)

	cmd := &cobra.Command{
		Use:     "query [regex]",
		Aliases: []string{"q"},
		Short:   "List cache items matching a regex",
		Long: `Match the item names of every cache component against a regular
expression and print the matches with their sizes. Without a pattern,
every item is listed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			pattern := ""
			if len(args) == 1 {
				pattern = args[0]
			}
			return runQuery(pattern, sortBy, humanReadable)
		},
	}

	cmd.Flags().StringVar(&sortBy, "sort", "name", "sort order: name or size")
	cmd.Flags().BoolVar(&humanReadable, "hr", false, "print sizes in binary units")

	return cmd
}

func runQuery(pattern, sortBy string, humanReadable bool) error {
	if sortBy != "name" && sortBy != "size" {
		return fmt.Errorf("invalid sort order %q, expected name or size", sortBy)
	}

	_, inv, err := loadInventory()
	if err != nil {
		return err
	}

	results, err := report.Query(inv, pattern, sortBy == "size")
	if err != nil {
		return err
	}
	fmt.Print(report.RenderQuery(results, humanReadable))
	return nil
}
