package loader

import (
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/crmarques/snapdiff/resource"
)

// FilterKinds keeps resources whose kind matches one of kinds,
// case-insensitively. No kinds keeps everything.
func FilterKinds(items []resource.Resource, kinds ...string) []resource.Resource {
	wanted := sets.New[string]()
	for _, kind := range kinds {
		if trimmed := strings.TrimSpace(kind); trimmed != "" {
			wanted.Insert(strings.ToLower(trimmed))
		}
	}
	if wanted.Len() == 0 {
		return items
	}

	filtered := make([]resource.Resource, 0, len(items))
	for _, item := range items {
		if wanted.Has(strings.ToLower(item.Kind)) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// Kinds returns the distinct kinds of items, sorted.
func Kinds(items []resource.Resource) []string {
	kinds := sets.New[string]()
	for _, item := range items {
		kinds.Insert(item.Kind)
	}
	return sets.List(kinds)
}
