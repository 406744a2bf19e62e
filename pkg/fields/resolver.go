package fields

import (
	"mercator-hq/underwriter/pkg/document"
)

// Resolver maps logical field names to values inside a document.Context
// using a Catalog. Resolution never fails: every miss degrades to the
// catalogued default, which may itself be null.
//
// A Resolver holds no mutable state and is safe for concurrent use.
type Resolver struct {
	catalog *Catalog
}

// NewResolver creates a resolver backed by catalog.
func NewResolver(catalog *Catalog) *Resolver {
	if catalog == nil {
		catalog = NewCatalog(nil)
	}
	return &Resolver{catalog: catalog}
}

// Catalog returns the underlying field catalog.
func (r *Resolver) Catalog() *Catalog {
	return r.catalog
}

// Resolve returns the value of name in source.
//
// Uncatalogued fields and fields with an empty path return the default
// without consulting the context. Otherwise the walk starts at the source
// document and descends one mapping key per segment; a missing key or a
// non-mapping intermediate returns the default, as does a null terminal.
func (r *Resolver) Resolve(ctx document.Context, source document.Source, name string) document.Value {
	entry, ok := r.catalog.Lookup(source, name)
	if !ok || len(entry.Path) == 0 {
		return entry.Default
	}

	cur := ctx.Get(source)
	for _, segment := range entry.Path {
		next, ok := cur.Get(segment)
		if !ok {
			return entry.Default
		}
		cur = next
	}

	if cur.IsNull() {
		return entry.Default
	}
	return cur
}

// ResolveAny resolves name in every source in priority order and returns
// the first value that is not null, an empty string or an empty collection.
// It returns document.Null when no source yields a value.
func (r *Resolver) ResolveAny(ctx document.Context, name string) document.Value {
	for _, source := range document.Priority {
		v := r.Resolve(ctx, source, name)
		if !v.IsEmpty() {
			return v
		}
	}
	return document.Null
}
