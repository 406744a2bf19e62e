// Package engine evaluates underwriting rules against a loan context.
//
// Evaluation of one rule has three steps:
//
//  1. The Interpreter checks the rule trigger. A rule whose trigger does not
//     match yields NOT_APPLICABLE and its validator is never called.
//  2. The Registry resolves the rule's validator name. Unknown names yield
//     ERROR for that rule only.
//  3. The validator computes the verdict from the rule, the context and the
//     field resolver. Returned errors and recovered panics yield ERROR.
//
// Results come back in rule order, one per rule. A failing rule never
// affects any other rule.
//
// # Example
//
//	registry := engine.NewRegistry()
//	validators.RegisterAll(registry)
//
//	eng, err := engine.New(fields.NewResolver(catalog), registry,
//	    engine.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	results := eng.Evaluate(ctx, ruleList, loanContext)
package engine
