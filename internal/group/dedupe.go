package group

import "github.com/payrecon-dev/payrecon/internal/model"

// Counts returns how many items share each non-empty key.
func Counts[T any](items []T, key func(T) model.Key) map[model.Key]int {
	counts := make(map[model.Key]int)
	for _, item := range items {
		if k := key(item); !k.IsZero() {
			counts[k]++
		}
	}
	return counts
}

// DropDuplicates removes every copy of any key that occurs more than once.
// A duplicated id is ambiguous evidence, so no copy is preferred over another.
// Items with an empty key are kept.
func DropDuplicates[T any](items []T, key func(T) model.Key) (kept, dropped []T) {
	counts := Counts(items, key)
	for _, item := range items {
		if counts[key(item)] > 1 {
			dropped = append(dropped, item)
			continue
		}
		kept = append(kept, item)
	}
	return kept, dropped
}

// FlagDuplicates keeps every item and reports, per index, whether its key
// occurs more than once.
func FlagDuplicates[T any](items []T, key func(T) model.Key) []bool {
	counts := Counts(items, key)
	flags := make([]bool, len(items))
	for i, item := range items {
		flags[i] = counts[key(item)] > 1
	}
	return flags
}
