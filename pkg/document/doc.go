// Package document models the per-source loan documents that rules are
// evaluated against.
//
// Source documents arrive as loosely-typed JSON (or BSON exported to JSON)
// with arbitrary nesting. Instead of passing map[string]interface{} through
// the engine, every document is converted once into a Value: a tagged union
// of Null, Scalar, Sequence and Mapping. Traversal code switches on Kind and
// never type-asserts raw interface values.
//
// # Sources
//
// A loan is described by a fixed set of sources, searched in priority order
// when a rule does not care where a fact lives:
//
//	origination (los) → title → appraisal → credit (credit_report) → inspection (drive_report)
//
// The string in parentheses is the key used in request payloads and in the
// field catalog.
//
// # Context
//
// A Context bundles one document per source for a single evaluation. It is
// built fresh per request and treated as read-only by the engine:
//
//	ctx, err := document.ParseContext(payload)
//	los := ctx.Get(document.SourceOrigination)
//	loanID, _ := los.Get("loan_id")
package document
