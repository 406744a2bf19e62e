package fields

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"mercator-hq/underwriter/pkg/document"
)

// LegacySeparator splits string-form navigation paths in older catalogs.
// Splitting happens once at load time; resolution only sees segments.
const LegacySeparator = "->"

// Path is a pre-split navigation path. Each segment is matched literally
// against mapping keys, so keys containing dots or arrows are safe.
type Path []string

// String renders the path for diagnostics.
func (p Path) String() string {
	return strings.Join(p, " "+LegacySeparator+" ")
}

// Entry is a single field catalog entry.
type Entry struct {
	// Path locates the field inside the source document.
	// An empty path means the field always resolves to Default.
	Path Path

	// Default is returned when the path is missing or holds null.
	Default document.Value
}

// Catalog maps (source, logical field name) to an Entry.
// A Catalog is immutable after construction and safe for concurrent use.
type Catalog struct {
	entries map[document.Source]map[string]Entry
}

// NewCatalog builds a catalog from the given entries.
func NewCatalog(entries map[document.Source]map[string]Entry) *Catalog {
	c := &Catalog{entries: make(map[document.Source]map[string]Entry, len(entries))}
	for source, fields := range entries {
		copied := make(map[string]Entry, len(fields))
		for name, e := range fields {
			path := make(Path, len(e.Path))
			copy(path, e.Path)
			copied[name] = Entry{Path: path, Default: e.Default}
		}
		c.entries[source] = copied
	}
	return c
}

// Lookup returns the entry for (source, name).
func (c *Catalog) Lookup(source document.Source, name string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	e, ok := c.entries[source][name]
	return e, ok
}

// Has reports whether name is catalogued under any source.
func (c *Catalog) Has(name string) bool {
	if c == nil {
		return false
	}
	for _, fields := range c.entries {
		if _, ok := fields[name]; ok {
			return true
		}
	}
	return false
}

// Fields returns the logical field names catalogued for source, sorted.
func (c *Catalog) Fields(source document.Source) []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.entries[source]))
	for name := range c.entries[source] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the total number of entries.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, fields := range c.entries {
		n += len(fields)
	}
	return n
}

// rawEntry is the YAML form of an entry.
type rawEntry struct {
	Path    yaml.Node   `yaml:"path"`
	Default interface{} `yaml:"default"`
}

// ParseCatalog parses a field catalog document:
//
//	los:
//	  ltv:
//	    path: ["Loan Information", "LTV"]
//	    default: null
//
// Paths may also be given as a single string using "->" between segments.
func ParseCatalog(data []byte) (*Catalog, error) {
	var raw map[string]map[string]rawEntry
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &CatalogError{Message: "parse field catalog", Cause: err}
	}

	entries := make(map[document.Source]map[string]Entry, len(raw))
	for sourceKey, fields := range raw {
		source, err := document.ParseSource(sourceKey)
		if err != nil {
			return nil, &CatalogError{Source: sourceKey, Message: "unknown source", Cause: err}
		}

		parsed := make(map[string]Entry, len(fields))
		for name, re := range fields {
			path, err := decodePath(&re.Path)
			if err != nil {
				return nil, &CatalogError{Source: sourceKey, Field: name, Message: "invalid path", Cause: err}
			}
			parsed[name] = Entry{Path: path, Default: document.FromAny(re.Default)}
		}
		entries[source] = parsed
	}

	return &Catalog{entries: entries}, nil
}

// LoadCatalog reads and parses a field catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &CatalogError{Message: fmt.Sprintf("read field catalog %q", path), Cause: err}
	}
	return ParseCatalog(data)
}

// decodePath accepts a sequence of segments or a legacy "a -> b" string.
func decodePath(node *yaml.Node) (Path, error) {
	switch node.Kind {
	case 0:
		return nil, nil
	case yaml.ScalarNode:
		if node.Tag == "!!null" || strings.TrimSpace(node.Value) == "" {
			return nil, nil
		}
		parts := strings.Split(node.Value, LegacySeparator)
		path := make(Path, 0, len(parts))
		for _, p := range parts {
			path = append(path, strings.TrimSpace(p))
		}
		return path, nil
	case yaml.SequenceNode:
		path := make(Path, 0, len(node.Content))
		for _, seg := range node.Content {
			if seg.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("path segment at line %d must be a scalar", seg.Line)
			}
			path = append(path, seg.Value)
		}
		return path, nil
	default:
		return nil, fmt.Errorf("path at line %d must be a string or a list of strings", node.Line)
	}
}
