package query

import "fmt"

// InvalidFieldError is returned when a query references a field outside
// the resource's supported set. It is always raised at build time,
// before any network call.
type InvalidFieldError struct {
	Resource ResourceType
	Field    string
}

// Error implements the error interface.
func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("unsupported %s query field %q", e.Resource, e.Field)
}

// InvalidArgumentError is returned for a malformed builder argument,
// such as a non-positive limit.
type InvalidArgumentError struct {
	Arg    string
	Reason string
}

// Error implements the error interface.
func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid query argument %q: %s", e.Arg, e.Reason)
}
