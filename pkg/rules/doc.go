// Package rules defines the rule model and the declarative rule catalog.
//
// A rule catalog is a YAML document listing rules in evaluation order:
//
//	rules:
//	  - id: R12
//	    trigger:
//	      loan_program: [HomeReady, "Home Possible"]
//	      or:
//	        - ltv: GT95
//	        - cltv: GT95
//	    validator: LTVValidator
//	    thresholds: {ltv: 95, cltv: 95, hcltv: 95}
//	    alert_message: "LTV exceeds program maximum"
//
// # Triggers
//
// Every top-level trigger key except "or" is a single-field check. "or"
// holds a list of AND-blocks; at least one block must match. Allowed values
// may be a scalar or a list and may contain the case-insensitive sentinel
// "ANY" or "GT<n>" threshold tokens. Interpretation lives in package engine;
// this package only models and loads triggers.
//
// # Validation
//
// ValidateSchema checks the raw document shape with JSON schema. Lint checks
// semantic problems such as duplicate ids and validators that are not
// registered.
package rules
