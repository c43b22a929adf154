package prune

import (
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/glorpus-work/cratecache/internal/logger"
	"github.com/glorpus-work/cratecache/pkg/cache"
	"github.com/glorpus-work/cratecache/pkg/errutils"
	"github.com/glorpus-work/cratecache/pkg/remove"
)

// trimUnits maps the size-limit suffix onto its power-of-1024 multiplier.
var trimUnits = map[string]uint64{
	"B": 1,
	"K": 1 << 10,
	"M": 1 << 20,
	"G": 1 << 30,
	"T": 1 << 40,
}

// ParseTrimLimit parses a human size limit such as "350B", "1.5K" or "4g".
// The unit suffix is required; the mantissa may carry a decimal fraction.
func ParseTrimLimit(limit string) (uint64, error) {
	limit = strings.TrimSpace(limit)
	if len(limit) < 2 {
		return 0, errutils.Wrapf(errutils.ErrTrimLimitParse, "%q", limit)
	}

	unit := strings.ToUpper(limit[len(limit)-1:])
	multiplier, ok := trimUnits[unit]
	if !ok {
		return 0, errutils.Wrapf(errutils.ErrTrimLimitParse, "unknown unit in %q", limit)
	}

	mantissa, err := strconv.ParseFloat(limit[:len(limit)-1], 64)
	if err != nil || mantissa < 0 {
		return 0, errutils.Wrapf(errutils.ErrTrimLimitParse, "bad mantissa in %q", limit)
	}
	// Converting a float beyond the uint64 range is undefined; saturate.
	product := mantissa * float64(multiplier)
	if product >= float64(math.MaxUint64) {
		return math.MaxUint64, nil
	}
	return uint64(product), nil
}

// trimmedItem is one deletable unit with the facts the budget walk needs.
type trimmedItem struct {
	path   string
	size   uint64
	access time.Time
}

// Trim deletes the oldest items (by access time) of the checkout, mirror,
// archive and source components until the remaining tracked size fits the
// budget. The registry index and installed binaries are never trimmed.
func Trim(inv *cache.Inventory, limit uint64, dryRun bool) (*Report, error) {
	report := &Report{DryRun: dryRun}

	tracked := []cache.Cache{inv.GitCheckouts, inv.GitRepos, inv.Archives, inv.Sources}

	var total uint64
	for _, component := range tracked {
		total += component.TotalSize()
	}
	if total <= limit {
		return report, nil
	}

	var items []trimmedItem
	for _, component := range tracked {
		for _, item := range component.Items() {
			items = append(items, trimmedItem{
				path:   item,
				size:   cache.DirSize(item),
				access: cache.AccessTime(item),
			})
		}
	}

	// Youngest first; every item whose inclusion would push the running
	// total over the budget is deleted.
	sort.Slice(items, func(i, j int) bool {
		return items[i].access.After(items[j].access)
	})

	var running uint64
	for _, item := range items {
		running += item.size
		if running > limit {
			report.add(item.path, item.size)
		}
	}

	if dryRun {
		return report, nil
	}

	for _, entry := range report.Planned {
		logger.Debug("trimming item", logger.Fields{"path": entry.Path})
		if err := remove.RemoveItem(entry.Path); err != nil {
			report.Errs = append(report.Errs, err)
			continue
		}
		report.Freed += entry.Size
		removeEmptyCheckoutParent(inv.GitCheckouts, entry.Path)
	}
	if len(report.Planned) > 0 {
		for _, component := range tracked {
			component.Invalidate()
		}
	}
	return report, nil
}

// removeEmptyCheckoutParent unlinks the <repo>-<hash> directory once its last
// revision checkout has been removed. Other components have their items
// directly below the root and never leave an empty parent behind.
func removeEmptyCheckoutParent(checkouts *cache.DirCache, itemPath string) {
	if !checkouts.Contains(itemPath) {
		return
	}
	parent := filepath.Dir(itemPath)
	if parent == checkouts.Path() {
		return
	}
	entries, err := os.ReadDir(parent)
	if err != nil || len(entries) > 0 {
		return
	}
	_ = os.Remove(parent)
}
