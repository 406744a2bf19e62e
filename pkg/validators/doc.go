// Package validators provides the built-in underwriting validators.
//
// Each validator is stateless and registered under the capability name used
// in rule catalogs, for example "LTVValidator". Validators read loan data
// through the field resolver, so the logical field names they use (ltv,
// estimated_closing_date, and so on) must be present in the field catalog.
//
// Validators report NOT_APPLICABLE when the data they need is missing or
// unparseable, rather than failing the rule.
package validators
