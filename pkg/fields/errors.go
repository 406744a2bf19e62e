package fields

import "fmt"

// CatalogError indicates a field catalog could not be read or parsed.
type CatalogError struct {
	Source  string
	Field   string
	Message string
	Cause   error
}

// Error returns the error message.
func (e *CatalogError) Error() string {
	loc := ""
	switch {
	case e.Source != "" && e.Field != "":
		loc = fmt.Sprintf(" [%s.%s]", e.Source, e.Field)
	case e.Source != "":
		loc = fmt.Sprintf(" [%s]", e.Source)
	}
	if e.Cause != nil {
		return fmt.Sprintf("field catalog%s: %s: %v", loc, e.Message, e.Cause)
	}
	return fmt.Sprintf("field catalog%s: %s", loc, e.Message)
}

// Unwrap returns the underlying cause.
func (e *CatalogError) Unwrap() error {
	return e.Cause
}
