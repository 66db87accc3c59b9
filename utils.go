package feature

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

func sortedKeys[Map ~map[string]V, V any](m Map) []string {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}
