package group

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/payrecon-dev/payrecon/internal/model"
)

// Group is every member sharing one key, with their amounts summed.
type Group[T any] struct {
	Key     model.Key
	Total   decimal.Decimal
	Members []T
}

// Groups is an ordered set of groups, ordered by first appearance of each key.
type Groups[T any] struct {
	list  []*Group[T]
	index map[model.Key]*Group[T]
}

// ByKey groups items by key(item), summing amount(item) per group. Items
// whose key is empty belong to no group.
func ByKey[T any](items []T, key func(T) model.Key, amount func(T) decimal.Decimal) *Groups[T] {
	gs := &Groups[T]{index: make(map[model.Key]*Group[T])}
	for _, item := range items {
		k := key(item)
		if k.IsZero() {
			continue
		}
		g, ok := gs.index[k]
		if !ok {
			g = &Group[T]{Key: k}
			gs.index[k] = g
			gs.list = append(gs.list, g)
		}
		g.Total = g.Total.Add(amount(item))
		g.Members = append(g.Members, item)
	}
	return gs
}

// Len returns the number of groups.
func (gs *Groups[T]) Len() int { return len(gs.list) }

// Get returns the group for k.
func (gs *Groups[T]) Get(k model.Key) (*Group[T], bool) {
	g, ok := gs.index[k]
	return g, ok
}

// List returns the groups in first-appearance order.
func (gs *Groups[T]) List() []*Group[T] { return gs.list }

// Intersect returns the keys present in both gs and other, in gs order.
func Intersect[T, U any](gs *Groups[T], other *Groups[U]) []model.Key {
	var keys []model.Key
	for _, g := range gs.list {
		if _, ok := other.index[g.Key]; ok {
			keys = append(keys, g.Key)
		}
	}
	return keys
}

// First returns the first non-blank value of field across the members.
func First[T any](members []T, field func(T) string) string {
	for _, m := range members {
		if v := field(m); strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// Distinct returns the non-blank values of field across the members with
// duplicates removed, in first-seen order.
func Distinct[T any](members []T, field func(T) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range members {
		v := strings.TrimSpace(field(m))
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
