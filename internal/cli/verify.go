package cli

import (
	"fmt"

	"github.com/glorpus-work/cratecache/pkg/verify"
	"github.com/spf13/cobra"
)

// NewVerifyCmd creates the verify command.
func NewVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check extracted crate sources against their archives",
		Long: `Compare every extracted source directory below registry/src with the
crate archive it was unpacked from and report files that were changed,
removed or added after extraction.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, inv, err := loadInventory()
			if err != nil {
				return err
			}

			dirty, err := verify.Sources(cmd.Context(), inv.Paths)
			if err != nil {
				return err
			}
			if len(dirty) == 0 {
				fmt.Println("all extracted sources match their archives")
				return nil
			}

			for _, diff := range dirty {
				fmt.Printf("%s:\n", diff.Source)
				for _, path := range diff.Missing {
					fmt.Printf("  missing:    %s\n", path)
				}
				for _, path := range diff.Additional {
					fmt.Printf("  additional: %s\n", path)
				}
				for _, sd := range diff.SizeDiffs {
					fmt.Printf("  size mismatch: %s (%d bytes in archive, %d on disk)\n",
						sd.Path, sd.ArchiveSize, sd.SourceSize)
				}
			}
			return fmt.Errorf("%d extracted sources do not match their archives", len(dirty))
		},
	}

	return cmd
}
