// Package fields maps stable logical field names used by rules onto the
// physical, deeply nested locations of those facts in each source document.
//
// The Field Catalog is a declarative YAML document loaded once and shared
// read-only across evaluations:
//
//	los:
//	  ltv:
//	    path: ["Loan Information", "LTV"]
//	    default: null
//	  no_units:
//	    path: ["Property", "No. Units"]
//	    default: 1
//	title:
//	  chain_title_date:
//	    path: ["Chain of Title", "Recorded Date"]
//
// Paths are lists of literal key segments. Older catalogs that spell a path
// as "Loan Information -> LTV" are accepted and split at load time.
//
// The Resolver walks a document.Context with the catalog:
//
//	r := fields.NewResolver(catalog)
//	ltv := r.Resolve(ctx, document.SourceOrigination, "ltv")
//	subject := r.ResolveAny(ctx, "subject_street")
//
// Missing paths, broken intermediate nodes and null terminals all return the
// catalogued default. Callers cannot tell "explicitly the default" from
// "absent".
package fields
