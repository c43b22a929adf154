package prune

import (
	"os"
	"regexp"
	"time"

	"github.com/glorpus-work/cratecache/internal/logger"
	"github.com/glorpus-work/cratecache/pkg/cache"
	"github.com/glorpus-work/cratecache/pkg/errutils"
	"github.com/glorpus-work/cratecache/pkg/fsutil"
	"github.com/glorpus-work/cratecache/pkg/remove"
)

var (
	dateOnlyPattern = regexp.MustCompile(`^\d{4}\.\d{2}\.\d{2}$`)
	timeOnlyPattern = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}$`)
)

// ParseDate parses the two accepted date literal forms: "yyyy.mm.dd" (the
// time of day defaults to now) and "hh:mm:ss" (the date defaults to today).
func ParseDate(literal string, now time.Time) (time.Time, error) {
	switch {
	case dateOnlyPattern.MatchString(literal):
		date, err := time.ParseInLocation("2006.01.02", literal, now.Location())
		if err != nil {
			return time.Time{}, errutils.Wrapf(errutils.ErrDateParse, "%q", literal)
		}
		return time.Date(date.Year(), date.Month(), date.Day(),
			now.Hour(), now.Minute(), now.Second(), 0, now.Location()), nil
	case timeOnlyPattern.MatchString(literal):
		clock, err := time.ParseInLocation("15:04:05", literal, now.Location())
		if err != nil {
			return time.Time{}, errutils.Wrapf(errutils.ErrDateParse, "%q", literal)
		}
		return time.Date(now.Year(), now.Month(), now.Day(),
			clock.Hour(), clock.Minute(), clock.Second(), 0, now.Location()), nil
	default:
		return time.Time{}, errutils.Wrapf(errutils.ErrDateParse, "%q", literal)
	}
}

// RemoveByDates deletes files of the category-selected components by access
// time. With only older set, files accessed before that date are deleted;
// with only younger set, files accessed after it. With both, the files whose
// access time falls outside [younger..older] are deleted.
func RemoveByDates(inv *cache.Inventory, tokens, older, younger string, dryRun bool) (*Report, error) {
	if older == "" && younger == "" {
		return nil, errutils.Wrap(errutils.ErrDateParse, "no date given")
	}

	kinds, err := ExpandCategories(tokens)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var olderThan, youngerThan time.Time
	if older != "" {
		if olderThan, err = ParseDate(older, now); err != nil {
			return nil, err
		}
	}
	if younger != "" {
		if youngerThan, err = ParseDate(younger, now); err != nil {
			return nil, err
		}
	}

	doomed := func(access time.Time) bool {
		switch {
		case older != "" && younger != "":
			return access.Before(youngerThan) || access.After(olderThan)
		case older != "":
			return access.Before(olderThan)
		default:
			return access.After(youngerThan)
		}
	}

	report := &Report{DryRun: dryRun}
	touched := map[cache.ComponentKind]bool{}

	for _, kind := range kinds {
		component := inv.ByKind(kind)
		for _, file := range component.FilesSorted() {
			info, statErr := os.Lstat(file)
			if statErr != nil {
				continue
			}
			if doomed(fsutil.Atime(info)) {
				report.add(file, uint64(info.Size()))
				touched[kind] = true
			}
		}
	}

	if dryRun {
		return report, nil
	}

	for _, entry := range report.Planned {
		logger.Debug("removing by date", logger.Fields{"path": entry.Path})
		if err := remove.RemoveFile(entry.Path); err != nil {
			report.Errs = append(report.Errs, err)
			continue
		}
		report.Freed += entry.Size
	}
	for kind := range touched {
		inv.ByKind(kind).Invalidate()
	}
	return report, nil
}
