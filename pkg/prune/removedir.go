package prune

import (
	"github.com/glorpus-work/cratecache/internal/logger"
	"github.com/glorpus-work/cratecache/pkg/cache"
	"github.com/glorpus-work/cratecache/pkg/remove"
)

// RemoveByCategory deletes whole components selected by a comma-separated
// token set (see ExpandCategories). Under dry-run the plan is returned
// without touching disk.
func RemoveByCategory(inv *cache.Inventory, tokens string, dryRun bool) (*Report, error) {
	kinds, err := ExpandCategories(tokens)
	if err != nil {
		return nil, err
	}

	report := &Report{DryRun: dryRun}

	// Plan: capture sizes before anything is unlinked.
	for _, kind := range kinds {
		component := inv.ByKind(kind)
		report.add(component.Path(), component.TotalSize())
	}

	if dryRun {
		return report, nil
	}

	for i, kind := range kinds {
		component := inv.ByKind(kind)
		logger.Debug("removing component", logger.Fields{"path": component.Path()})
		if err := remove.RemoveAll(component.Path()); err != nil {
			report.Errs = append(report.Errs, err)
			component.Invalidate()
			continue
		}
		report.Freed += report.Planned[i].Size
		component.KnownToBeEmpty()
	}
	return report, nil
}
