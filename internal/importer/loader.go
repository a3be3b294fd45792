package importer

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/blake2b"
)

// Loader parses files through a Registry and caches the resulting tables by
// content hash, so the same upload is parsed once per session even under a
// different name.
type Loader struct {
	registry *Registry
	cache    map[[blake2b.Size256]byte]*Table
	hits     int
}

// NewLoader returns a Loader backed by registry.
func NewLoader(registry *Registry) *Loader {
	return &Loader{registry: registry, cache: make(map[[blake2b.Size256]byte]*Table)}
}

// LoadTable reads and parses the file at path.
func (l *Loader) LoadTable(ctx context.Context, path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return l.Parse(ctx, filepath.Base(path), data)
}

// Parse parses data as the format implied by name. Callers must not modify
// the returned table; it may be shared with later calls.
func (l *Loader) Parse(ctx context.Context, name string, data []byte) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := l.registry.ForPath(name)
	if err != nil {
		return nil, err
	}

	sum := blake2b.Sum256(append([]byte(p.Format()+"\x00"), data...))
	if t, ok := l.cache[sum]; ok {
		l.hits++
		return &Table{Name: name, Header: t.Header, Rows: t.Rows}, nil
	}

	t, err := p.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}
	t.Name = name
	l.cache[sum] = t
	return t, nil
}

// Hits returns how many loads were served from the cache.
func (l *Loader) Hits() int { return l.hits }

// Reset drops every cached table.
func (l *Loader) Reset() {
	l.cache = make(map[[blake2b.Size256]byte]*Table)
	l.hits = 0
}
