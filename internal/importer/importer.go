package importer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Table is the first sheet of a file: a header row and the rows beneath it.
// Every row has at least len(Header) cells.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Column returns the index of the named column, ignoring case and
// surrounding space, or -1.
func (t *Table) Column(name string) int {
	want := strings.TrimSpace(name)
	for i, h := range t.Header {
		if strings.EqualFold(strings.TrimSpace(h), want) {
			return i
		}
	}
	return -1
}

// Missing returns the names in cols that the header lacks, in order.
func (t *Table) Missing(cols ...string) []string {
	var missing []string
	for _, c := range cols {
		if t.Column(c) < 0 {
			missing = append(missing, c)
		}
	}
	return missing
}

// Parser converts a file into a Table.
type Parser interface {
	Parse(r io.Reader) (*Table, error)
	Format() string
}

// Registry holds parsers keyed by format, which doubles as the file extension.
type Registry struct {
	parsers map[string]Parser
}

// FileInfo describes an importable file in a directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// ForPath returns the parser for the extension of path.
func (r *Registry) ForPath(path string) (Parser, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	p := r.Get(ext)
	if p == nil {
		return nil, fmt.Errorf("unsupported file type %q: %s", ext, filepath.Base(path))
	}
	return p, nil
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&CSVParser{})
	r.Register(&XLSXParser{})
	return r
}

// Scan returns the files in dir that r can parse, in directory order. A
// missing directory yields no files.
func (r *Registry) Scan(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), "~$") {
			continue
		}
		if _, err := r.ForPath(e.Name()); err != nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// newTable builds a Table from raw records, dropping blank rows and padding
// short ones to the header width.
func newTable(records [][]string) *Table {
	t := &Table{}
	if len(records) == 0 {
		return t
	}
	t.Header = records[0]
	if len(t.Header) > 0 {
		t.Header[0] = strings.TrimPrefix(t.Header[0], "\ufeff")
	}
	for _, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		for len(rec) < len(t.Header) {
			rec = append(rec, "")
		}
		t.Rows = append(t.Rows, rec)
	}
	return t
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
