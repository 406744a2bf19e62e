// Package logging builds the service's *slog.Logger.
//
// The handler chain is: context fields, then PII redaction, then the JSON,
// text or console handler.
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json", RedactPII: true})
//
//	ctx = logging.WithLoanID(ctx, "L-1001")
//	logger.InfoContext(ctx, "evaluation started")   // includes loan_id
//
// # PII Redaction
//
//   - SSN: 123-45-6789 → ***-**-****
//   - Phone: (555) 123-4567 → ***-***-****
//   - E-mail: borrower@example.com → b***@example.com
//   - Account numbers (9-17 digits): 000123456789 → ********6789
//
// Attributes whose key contains ssn, account_number, password, secret,
// token or authorization are masked whatever their value.
package logging
