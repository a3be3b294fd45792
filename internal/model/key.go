package model

import "strings"

// Key is a join key normalized for comparison: surrounding whitespace trimmed
// and lowercased. Login ids arrive as numbers in one source and text in the
// other, so every join goes through NewKey rather than comparing raw cells.
type Key string

// NewKey normalizes s into a Key.
func NewKey(s string) Key {
	return Key(strings.ToLower(strings.TrimSpace(s)))
}

// IsZero reports whether the key is empty after normalization.
func (k Key) IsZero() bool { return k == "" }

func (k Key) String() string { return string(k) }

// ExactKey trims s without folding case. Provider transaction ids are
// compared this way.
func ExactKey(s string) Key {
	return Key(strings.TrimSpace(s))
}
