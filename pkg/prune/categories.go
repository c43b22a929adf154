package prune

import (
	"strings"

	"github.com/glorpus-work/cratecache/pkg/cache"
	"github.com/glorpus-work/cratecache/pkg/errutils"
)

// categoryTable expands each deletable-dir token into the component kinds it
// covers. Installed binaries are never deletable through categories.
var categoryTable = map[string][]cache.ComponentKind{
	"git-db":               {cache.MirrorRepos, cache.MirrorCheckouts},
	"git-repos":            {cache.MirrorCheckouts},
	"registry-sources":     {cache.RegistrySources},
	"registry-crate-cache": {cache.RegistryArchives},
	"registry-index":       {cache.RegistryIndex},
	"registry":             {cache.RegistryIndex, cache.RegistryArchives, cache.RegistrySources},
	"all": {
		cache.RegistryIndex, cache.RegistryArchives, cache.RegistrySources,
		cache.MirrorRepos, cache.MirrorCheckouts,
	},
}

// ExpandCategories resolves a comma-separated token set into the deduplicated
// component set it selects. Token order and duplicates do not influence the
// result. Unknown tokens abort the whole operation, listing every offender.
func ExpandCategories(tokens string) ([]cache.ComponentKind, error) {
	selected := map[cache.ComponentKind]bool{}
	var invalid []string

	for _, token := range strings.Split(tokens, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		kinds, ok := categoryTable[token]
		if !ok {
			invalid = append(invalid, token)
			continue
		}
		for _, kind := range kinds {
			selected[kind] = true
		}
	}

	if len(invalid) > 0 {
		return nil, errutils.Wrapf(errutils.ErrInvalidDeletableDir, "%s", strings.Join(invalid, " "))
	}

	var kinds []cache.ComponentKind
	for _, kind := range cache.AllComponents() {
		if selected[kind] {
			kinds = append(kinds, kind)
		}
	}
	return kinds, nil
}
