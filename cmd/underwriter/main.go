// Underwriter evaluates mortgage loan files against a catalog of
// underwriting rules.
//
// It serves an HTTP API for evaluations, document storage and the audit
// trail, and offers offline commands for CI and operations:
//
//	# Start the server
//	underwriter run --config config.yaml
//
//	# Evaluate loan files without a server
//	underwriter evaluate loans/*.json --fail-on ALERT,ERROR
//
//	# Check a rule catalog
//	underwriter lint --rules rules.yaml --fields fields.yaml
//
//	# List registered validators
//	underwriter validators
//
//	# Store a source document
//	underwriter documents put L-1001 appraisal appraisal.json
//
//	# Query and prune the audit trail
//	underwriter audit query --loan L-1001 --status ALERT
//	underwriter audit prune
package main

func main() {
	Execute()
}
