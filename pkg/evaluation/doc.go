// Package evaluation runs the rule catalog against loan documents.
//
// A Service ties the active catalog snapshot, the validator registry, the
// document store and the audit recorder together. It is shared by the HTTP
// server and the evaluate command:
//
//	svc, err := evaluation.NewService(manager, validators.NewRegistry(),
//	    evaluation.WithDocumentStore(store),
//	    evaluation.WithRecorder(recorder),
//	    evaluation.WithEngineOptions(engine.WithObserver(collector)),
//	)
//	ev, err := svc.EvaluateLoan(ctx, "L-100")
//
// Every call returns one result per rule in catalog order.
package evaluation
