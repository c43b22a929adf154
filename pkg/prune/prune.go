// Package prune implements the deletion operators over the cache inventory.
// Every operator runs in three phases: plan (collect paths and sizes),
// execute (invoke the remover, skipped under dry-run), and reconcile
// (invalidate or mark known-empty every cache that may have been touched).
package prune

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// PlanEntry is one path an operator decided to delete, with its size at
// planning time.
type PlanEntry struct {
	Path string
	Size uint64
}

// Report describes what an operator removed, or would remove under dry-run.
type Report struct {
	Planned []PlanEntry
	Freed   uint64
	Errs    []error
	DryRun  bool
}

func (r *Report) add(path string, size uint64) {
	r.Planned = append(r.Planned, PlanEntry{Path: path, Size: size})
}

// PlannedSize sums the sizes of all planned entries.
func (r *Report) PlannedSize() uint64 {
	var total uint64
	for _, entry := range r.Planned {
		total += entry.Size
	}
	return total
}

// Summary renders a one-line result for the CLI.
func (r *Report) Summary() string {
	size := humanize.IBytes(r.PlannedSize())
	if r.DryRun {
		return fmt.Sprintf("dry run: would remove %d items, %s total", len(r.Planned), size)
	}
	line := fmt.Sprintf("removed %d items, %s total", len(r.Planned), humanize.IBytes(r.Freed))
	if len(r.Errs) > 0 {
		line += fmt.Sprintf(" (%d items could not be removed)", len(r.Errs))
	}
	return line
}
